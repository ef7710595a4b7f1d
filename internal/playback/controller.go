package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jukevox/jukevox/internal/library"
	"github.com/jukevox/jukevox/internal/resolver"
)

// graceStop is how long an actively playing stream is paused before the
// hard stop when it is being replaced, to avoid audio artifacts.
const graceStop = 200 * time.Millisecond

// VoiceClient is the narrow contract the controller needs from the
// voice/streaming collaborator.
type VoiceClient interface {
	Join(ctx context.Context) error // join-or-reuse
	Connected() bool
	Playing() bool
	Paused() bool
	Play(ctx context.Context, streamURL string) error
	Pause()
	Resume()
	Stop()
	Disconnect()
}

// Resolver converts a source link into a playable stream plus metadata.
type Resolver interface {
	Resolve(ctx context.Context, url string) (resolver.Track, error)
}

// Controller orchestrates join, resolve, and stream replacement, and is
// the only writer of the playback State. Its operations serialize against
// each other through streamMu: at most one mutation of "what is currently
// streaming" is in flight at a time.
type Controller struct {
	state    *State
	voice    VoiceClient
	resolver Resolver

	streamMu sync.Mutex
	grace    time.Duration
}

func NewController(state *State, voice VoiceClient, res Resolver) *Controller {
	return &Controller{state: state, voice: voice, resolver: res, grace: graceStop}
}

// StartPlayback resolves the track, ensures a voice connection, replaces
// whatever is currently streaming, and repopulates the state. Failures are
// logged and leave the state untouched; callers must tolerate the no-op.
// Blocking, since resolve is a network call; run off the interface thread.
func (c *Controller) StartPlayback(ctx context.Context, tr library.Track) {
	if tr.URL == "" {
		return
	}
	res, err := c.resolver.Resolve(ctx, tr.URL)
	if err != nil {
		slog.Warn("track resolve failed", "url", tr.URL, "err", err)
		return
	}
	if err := c.voice.Join(ctx); err != nil {
		slog.Warn("voice join failed", "err", err)
		return
	}

	c.streamMu.Lock()
	defer c.streamMu.Unlock()

	if c.voice.Playing() {
		c.voice.Pause()
		time.Sleep(c.grace)
		c.voice.Stop()
	} else if c.voice.Paused() {
		c.voice.Stop()
	}

	if err := c.voice.Play(ctx, res.StreamURL); err != nil {
		// The old stream is already gone, so the state must not keep
		// describing it as playing.
		slog.Warn("stream start failed", "url", tr.URL, "err", err)
		c.state.Clear()
		return
	}

	title := tr.Title
	if title == "" {
		title = res.Title
	}
	c.state.Set(NowPlaying{
		Title:       title,
		SourceURL:   tr.URL,
		ThumbURL:    res.ThumbnailURL,
		VideoID:     res.ID,
		DurationSec: res.DurationSec,
	}, time.Now())
}

// PauseOrResume pauses an active stream or resumes a paused one. Resuming
// shifts the elapsed-time baseline so accounting stays continuous.
func (c *Controller) PauseOrResume() {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	if !c.voice.Connected() {
		return
	}
	switch {
	case c.voice.Playing():
		c.voice.Pause()
		c.state.MarkPaused(time.Now())
	case c.voice.Paused():
		c.voice.Resume()
		c.state.MarkResumed(time.Now())
	}
}

// Stop halts the active stream without leaving the channel and clears the
// state. Used by the end-of-track stop mode.
func (c *Controller) Stop() {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	c.voice.Stop()
	c.state.Clear()
}

// StopAndLeave disconnects from the voice channel and fully resets the
// state.
func (c *Controller) StopAndLeave() {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	c.voice.Disconnect()
	c.state.Clear()
}

// Join ensures a voice connection without starting playback (the Join
// button). Failure is logged like every other connectivity problem.
func (c *Controller) Join(ctx context.Context) {
	if err := c.voice.Join(ctx); err != nil {
		slog.Warn("voice join failed", "err", err)
	}
}
