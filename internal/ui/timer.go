package ui

import (
	"context"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"

	"github.com/jukevox/jukevox/internal/playback"
	"github.com/jukevox/jukevox/internal/utils"
)

// tickInterval is the presentation timer period. Every tick refreshes
// the now-playing panel and checks the end-of-track policy.
const tickInterval = 500 * time.Millisecond

// StartPresentationTimer runs the tick loop until ctx is cancelled.
func (ui *RootUI) StartPresentationTimer(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ui.tick()
			}
		}
	}()
}

func (ui *RootUI) tick() {
	snap := ui.state.Snapshot(time.Now())

	fyne.Do(func() {
		ui.render(snap)
	})

	if snap.EndOfTrackDue {
		ui.onTrackEnd()
	}
	if snap.Playing {
		ui.maybeFetchPreview()
	}
}

// render applies one snapshot to the widgets. Runs on the UI thread.
func (ui *RootUI) render(snap playback.Snapshot) {
	if !snap.Playing {
		ui.nowPlaying.SetText("Nothing playing")
		ui.nowPlaying.SetURL(nil)
		ui.timeLabel.SetText("")
		ui.progress.SetValue(0)
		ui.pauseBtn.SetText("Pause")
		if ui.lastPreview != "" {
			ui.lastPreview = ""
			ui.preview.Resource = nil
			ui.preview.File = ""
			ui.preview.Refresh()
		}
	} else {
		ui.nowPlaying.SetText(snap.Title)
		ui.nowPlaying.SetURL(parseURL(snap.SourceURL))

		if snap.DurationSec > 0 {
			ui.timeLabel.SetText(utils.PrettyTime(snap.ElapsedSec) + " / " + utils.PrettyTime(snap.DurationSec))
			ui.progress.SetValue(float64(snap.ElapsedSec) / float64(snap.DurationSec))
		} else {
			ui.timeLabel.SetText(utils.PrettyTime(snap.ElapsedSec))
			ui.progress.SetValue(0)
		}

		if snap.Paused {
			ui.pauseBtn.SetText("Resume")
		} else {
			ui.pauseBtn.SetText("Pause")
		}

		if snap.PreviewPath != "" && snap.PreviewPath != ui.lastPreview {
			ui.lastPreview = snap.PreviewPath
			ui.preview.File = snap.PreviewPath
			ui.preview.Refresh()
		}
	}

	if ui.conn.Connected() {
		ui.statusLabel.SetText("Connected")
	} else {
		ui.statusLabel.SetText("Not connected")
	}
}

// maybeFetchPreview claims the single outstanding thumbnail fetch for
// the current track and runs it in the background.
func (ui *RootUI) maybeFetchPreview() {
	thumbURL, videoID, ok := ui.state.BeginPreviewLoad()
	if !ok || videoID == "" {
		return
	}
	go func() {
		p, err := ui.thumbs.Fetch(context.Background(), videoID, thumbURL)
		if err != nil {
			slog.Warn("preview fetch failed", "videoID", videoID, "err", err)
		}
		ui.state.SetPreviewPath(videoID, p)
	}()
}
