package playback

import (
	"sync"
	"time"
)

// NowPlaying carries the resolved metadata a new playback starts from.
type NowPlaying struct {
	Title       string
	SourceURL   string
	ThumbURL    string
	VideoID     string
	DurationSec int
}

// State is the single shared description of what is playing right now.
// The controller is the only writer during playback transitions; the
// presentation timer reads snapshots. One coarse mutex guards everything
// so the timer never observes a half-updated transition.
type State struct {
	mu sync.Mutex

	title     string // empty means "nothing playing"
	sourceURL string
	thumbURL  string
	videoID   string
	duration  int // seconds, 0 if unknown

	startedAt time.Time
	paused    bool
	pausedAt  time.Time

	// endDispatched debounces the end-of-track event so the timer cannot
	// re-fire it before the dispatched action refreshes the state. It is
	// deliberately separate from paused.
	endDispatched bool

	previewPath    string
	previewLoading bool
}

func NewState() *State { return &State{} }

// Snapshot is a consistent copy of State for a single timer tick.
type Snapshot struct {
	Title       string
	SourceURL   string
	ThumbURL    string
	VideoID     string
	DurationSec int
	ElapsedSec  int
	Playing     bool
	Paused      bool
	PreviewPath string

	// EndOfTrackDue is true when this tick should fire the end-of-track
	// policy: elapsed has reached a known duration, playback is not
	// paused, and the event has not been dispatched yet.
	EndOfTrackDue bool
}

// Set fully overwrites the state for a new playback starting at now.
// No field from the previous track survives.
func (s *State) Set(np NowPlaying, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = np.Title
	s.sourceURL = np.SourceURL
	s.thumbURL = np.ThumbURL
	s.videoID = np.VideoID
	s.duration = np.DurationSec
	s.startedAt = now
	s.paused = false
	s.pausedAt = time.Time{}
	s.endDispatched = false
	s.previewPath = ""
	s.previewLoading = false
}

// Clear resets every field to its default.
func (s *State) Clear() {
	s.Set(NowPlaying{}, time.Time{})
}

// MarkPaused records the pause moment. No-op if nothing is playing or
// playback is already paused.
func (s *State) MarkPaused(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.title == "" || s.paused {
		return
	}
	s.paused = true
	s.pausedAt = now
}

// MarkResumed shifts startedAt forward by the paused duration so elapsed
// time stays continuous across the pause.
func (s *State) MarkResumed(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return
	}
	s.startedAt = s.startedAt.Add(now.Sub(s.pausedAt))
	s.paused = false
	s.pausedAt = time.Time{}
}

// MarkEndDispatched is set by the timer right after it hands the
// end-of-track event to the policy.
func (s *State) MarkEndDispatched() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endDispatched = true
}

func (s *State) elapsedLocked(now time.Time) int {
	if s.title == "" {
		return 0
	}
	var d time.Duration
	if s.paused {
		d = s.pausedAt.Sub(s.startedAt)
	} else {
		d = now.Sub(s.startedAt)
	}
	sec := int(d / time.Second)
	if sec < 0 {
		sec = 0
	}
	return sec
}

// Snapshot reads a consistent view of the state as of now.
func (s *State) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := s.elapsedLocked(now)
	// Clamp at the declared duration so the display and the progress
	// ratio stay bounded when the end event leads to no follow-up
	// action and the wall clock keeps running.
	if s.duration > 0 && elapsed > s.duration {
		elapsed = s.duration
	}
	return Snapshot{
		Title:       s.title,
		SourceURL:   s.sourceURL,
		ThumbURL:    s.thumbURL,
		VideoID:     s.videoID,
		DurationSec: s.duration,
		ElapsedSec:  elapsed,
		Playing:     s.title != "",
		Paused:      s.paused,
		PreviewPath: s.previewPath,
		EndOfTrackDue: s.title != "" && s.duration > 0 &&
			elapsed >= s.duration && !s.paused && !s.endDispatched,
	}
}

// BeginPreviewLoad claims the single outstanding thumbnail fetch for the
// current track. It returns the fetch parameters and false when a fetch is
// already running, already done, or there is nothing to fetch.
func (s *State) BeginPreviewLoad() (thumbURL, videoID string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.title == "" || s.thumbURL == "" || s.previewLoading || s.previewPath != "" {
		return "", "", false
	}
	s.previewLoading = true
	return s.thumbURL, s.videoID, true
}

// SetPreviewPath publishes the fetched preview. The video id acts as a
// generation guard: a late result for a previous track is dropped.
func (s *State) SetPreviewPath(videoID, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.videoID != videoID {
		return
	}
	s.previewPath = path
	s.previewLoading = false
}
