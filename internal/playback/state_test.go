package playback

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return t0.Add(time.Duration(sec) * time.Second) }

func TestElapsedContinuousAcrossPauseResume(t *testing.T) {
	s := NewState()
	s.Set(NowPlaying{Title: "song", DurationSec: 300}, t0)

	if got := s.Snapshot(at(10)).ElapsedSec; got != 10 {
		t.Fatalf("elapsed = %d, want 10", got)
	}

	s.MarkPaused(at(10))
	// Frozen while paused, no matter how much wall time passes.
	for _, sec := range []int{11, 60, 600} {
		if got := s.Snapshot(at(sec)).ElapsedSec; got != 10 {
			t.Fatalf("elapsed while paused at +%ds = %d, want 10", sec, got)
		}
	}

	s.MarkResumed(at(25))
	// 15 seconds of pause must not appear in the accounting.
	if got := s.Snapshot(at(30)).ElapsedSec; got != 15 {
		t.Fatalf("elapsed after resume = %d, want 15", got)
	}

	// Monotonically non-decreasing through the whole sequence.
	prev := -1
	for _, sec := range []int{30, 31, 40, 100} {
		got := s.Snapshot(at(sec)).ElapsedSec
		if got < prev {
			t.Fatalf("elapsed went backward: %d after %d", got, prev)
		}
		prev = got
	}
}

func TestMarkPausedTwiceKeepsFirstPauseMoment(t *testing.T) {
	s := NewState()
	s.Set(NowPlaying{Title: "song"}, t0)
	s.MarkPaused(at(10))
	s.MarkPaused(at(50)) // no-op
	if got := s.Snapshot(at(60)).ElapsedSec; got != 10 {
		t.Fatalf("elapsed = %d, want 10", got)
	}
	s.MarkResumed(at(100))
	if got := s.Snapshot(at(105)).ElapsedSec; got != 15 {
		t.Fatalf("elapsed after resume = %d, want 15", got)
	}
}

func TestMarkResumedWithoutPauseIsNoOp(t *testing.T) {
	s := NewState()
	s.Set(NowPlaying{Title: "song"}, t0)
	s.MarkResumed(at(30))
	if got := s.Snapshot(at(30)).ElapsedSec; got != 30 {
		t.Fatalf("elapsed = %d, want 30", got)
	}
}

func TestSetFullyOverwritesPreviousTrack(t *testing.T) {
	s := NewState()
	s.Set(NowPlaying{Title: "old", SourceURL: "old-url", ThumbURL: "old-thumb", VideoID: "ooooooooooo", DurationSec: 100}, t0)
	if _, _, ok := s.BeginPreviewLoad(); !ok {
		t.Fatal("first preview load should be claimable")
	}
	s.SetPreviewPath("ooooooooooo", "/tmp/old.jpg")
	s.MarkPaused(at(10))
	s.MarkEndDispatched()

	s.Set(NowPlaying{Title: "new", SourceURL: "new-url", VideoID: "nnnnnnnnnnn", DurationSec: 200}, at(50))
	snap := s.Snapshot(at(50))
	if snap.Title != "new" || snap.SourceURL != "new-url" || snap.DurationSec != 200 {
		t.Fatalf("snapshot not repopulated: %+v", snap)
	}
	if snap.Paused || snap.ElapsedSec != 0 || snap.PreviewPath != "" || snap.ThumbURL != "" {
		t.Fatalf("old fields leaked across tracks: %+v", snap)
	}
	// endDispatched was reset too: the new track can end.
	if got := s.Snapshot(at(251)); !got.EndOfTrackDue {
		t.Fatalf("end-of-track should be due again for the new track: %+v", got)
	}
}

func TestClearMakesNothingPlaying(t *testing.T) {
	s := NewState()
	s.Set(NowPlaying{Title: "song", DurationSec: 10}, t0)
	s.Clear()
	snap := s.Snapshot(at(100))
	if snap.Playing || snap.Title != "" || snap.ElapsedSec != 0 {
		t.Fatalf("clear left residue: %+v", snap)
	}
}

func TestElapsedNeverNegative(t *testing.T) {
	s := NewState()
	s.Set(NowPlaying{Title: "song"}, at(100))
	if got := s.Snapshot(at(50)).ElapsedSec; got != 0 {
		t.Fatalf("elapsed = %d, want 0", got)
	}
}

func TestEndOfTrackDue(t *testing.T) {
	s := NewState()
	s.Set(NowPlaying{Title: "song", DurationSec: 60}, t0)

	if s.Snapshot(at(59)).EndOfTrackDue {
		t.Fatal("not due before the duration")
	}
	if !s.Snapshot(at(60)).EndOfTrackDue {
		t.Fatal("due once elapsed reaches duration")
	}

	s.MarkEndDispatched()
	if s.Snapshot(at(61)).EndOfTrackDue {
		t.Fatal("debounced after dispatch")
	}
}

func TestElapsedClampsAtDuration(t *testing.T) {
	s := NewState()
	s.Set(NowPlaying{Title: "song", DurationSec: 10}, t0)
	s.MarkEndDispatched()

	// The end event led to no follow-up action; the wall clock keeps
	// running but the display must not.
	snap := s.Snapshot(at(100))
	if snap.ElapsedSec != 10 {
		t.Fatalf("elapsed = %d, want clamped at 10", snap.ElapsedSec)
	}
	if snap.EndOfTrackDue {
		t.Fatal("debounced after dispatch")
	}

	// Unknown duration has nothing to clamp against.
	s.Set(NowPlaying{Title: "live", DurationSec: 0}, t0)
	if got := s.Snapshot(at(100)).ElapsedSec; got != 100 {
		t.Fatalf("elapsed = %d, want 100", got)
	}
}

func TestEndOfTrackNotDueWhenPausedOrUnknownDuration(t *testing.T) {
	s := NewState()
	s.Set(NowPlaying{Title: "live", DurationSec: 0}, t0)
	if s.Snapshot(at(9999)).EndOfTrackDue {
		t.Fatal("unknown duration must never fire end-of-track")
	}

	s.Set(NowPlaying{Title: "song", DurationSec: 10}, t0)
	s.MarkPaused(at(10))
	if s.Snapshot(at(20)).EndOfTrackDue {
		t.Fatal("paused playback must not fire end-of-track")
	}
}

func TestPreviewLoadSingleOutstandingFetch(t *testing.T) {
	s := NewState()
	s.Set(NowPlaying{Title: "song", ThumbURL: "https://i.example/t.jpg", VideoID: "vvvvvvvvvvv"}, t0)

	url, vid, ok := s.BeginPreviewLoad()
	if !ok || url != "https://i.example/t.jpg" || vid != "vvvvvvvvvvv" {
		t.Fatalf("claim failed: %q %q %v", url, vid, ok)
	}
	if _, _, ok := s.BeginPreviewLoad(); ok {
		t.Fatal("second claim while loading should fail")
	}

	// A stale result for another track is dropped.
	s.SetPreviewPath("other", "/tmp/stale.jpg")
	if got := s.Snapshot(t0).PreviewPath; got != "" {
		t.Fatalf("stale preview applied: %q", got)
	}

	s.SetPreviewPath("vvvvvvvvvvv", "/tmp/t.jpg")
	if got := s.Snapshot(t0).PreviewPath; got != "/tmp/t.jpg" {
		t.Fatalf("preview path = %q", got)
	}
	if _, _, ok := s.BeginPreviewLoad(); ok {
		t.Fatal("no new fetch once the preview is loaded")
	}
}

func TestPreviewLoadNeedsThumbURL(t *testing.T) {
	s := NewState()
	s.Set(NowPlaying{Title: "song"}, t0)
	if _, _, ok := s.BeginPreviewLoad(); ok {
		t.Fatal("nothing to fetch without a thumbnail URL")
	}
	s.Clear()
	if _, _, ok := s.BeginPreviewLoad(); ok {
		t.Fatal("nothing to fetch while idle")
	}
}
