package ui

import (
	"fyne.io/fyne/v2"

	"github.com/jukevox/jukevox/internal/playback"
)

// Preference keys
const (
	KeyEndOfTrackMode = "end_of_track_mode"
	KeyLastPlaylist   = "last_playlist"
)

// Settings wraps the Fyne preferences store for the few values the
// player persists between runs.
type Settings struct {
	app fyne.App
}

func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetMode returns the persisted end-of-track mode, defaulting to stop.
func (s *Settings) GetMode() playback.Mode {
	return playback.ModeFromString(s.app.Preferences().String(KeyEndOfTrackMode))
}

func (s *Settings) SetMode(m playback.Mode) {
	s.app.Preferences().SetString(KeyEndOfTrackMode, m.String())
}

// GetLastPlaylist returns the playlist selected when the app last ran.
func (s *Settings) GetLastPlaylist() string {
	return s.app.Preferences().String(KeyLastPlaylist)
}

func (s *Settings) SetLastPlaylist(name string) {
	s.app.Preferences().SetString(KeyLastPlaylist, name)
}
