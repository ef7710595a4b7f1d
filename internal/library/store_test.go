package library

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "playlists.json"))
}

func TestRoundTripPreservesOrderAndFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playlists.json")

	s := Open(path)
	s.AddPlaylist("Chill")
	s.AddPlaylist("Workout")
	s.AddPlaylist("Late Night")
	s.AddTrack("Workout", Track{Title: "One", URL: "https://youtu.be/aaaaaaaaaaa", VideoID: "aaaaaaaaaaa"})
	s.AddTrack("Workout", Track{Title: "Two", URL: "https://youtu.be/bbbbbbbbbbb"})
	s.AddTrack("Chill", Track{Title: "Three", URL: "https://example.com/stream"})

	reloaded := Open(path)
	wantNames := []string{"Chill", "Workout", "Late Night"}
	if got := reloaded.Names(); !reflect.DeepEqual(got, wantNames) {
		t.Fatalf("names = %v, want %v", got, wantNames)
	}
	if got, want := reloaded.Tracks("Workout"), s.Tracks("Workout"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Workout tracks = %+v, want %+v", got, want)
	}
	if got := reloaded.Tracks("Late Night"); len(got) != 0 {
		t.Fatalf("Late Night should be empty, got %+v", got)
	}

	// Byte-for-byte: saving the reloaded store reproduces the same file.
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	reloaded.MovePlaylist(0, 0) // no-op mutation still rewrites
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatalf("round-trip changed file contents:\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playlists.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := Open(path)
	if got := s.Names(); len(got) != 0 {
		t.Fatalf("corrupt file should load as empty store, got %v", got)
	}
}

func TestMissingTargetsAreNoOps(t *testing.T) {
	s := tempStore(t)
	s.AddPlaylist("A")
	s.AddTrack("A", Track{Title: "t", URL: "u"})

	s.AddTrack("nope", Track{Title: "x", URL: "y"})
	s.DeleteTrack("A", 5)
	s.DeleteTrack("A", -1)
	s.DeleteTrack("nope", 0)
	s.UpdateTrack("A", 2, Track{Title: "z"})
	s.RenamePlaylist("nope", "B")
	s.DeletePlaylist("nope")
	s.MoveTrack("A", 0, -1)
	s.MovePlaylist(0, 1)

	if got := s.Names(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("names = %v, want [A]", got)
	}
	want := []Track{{Title: "t", URL: "u"}}
	if got := s.Tracks("A"); !reflect.DeepEqual(got, want) {
		t.Fatalf("tracks = %+v, want %+v", got, want)
	}
}

func TestRenamePlaylistKeepsPositionAndTracks(t *testing.T) {
	s := tempStore(t)
	s.AddPlaylist("first")
	s.AddPlaylist("second")
	s.AddTrack("first", Track{Title: "t", URL: "u"})

	s.RenamePlaylist("first", "renamed")
	if got := s.Names(); !reflect.DeepEqual(got, []string{"renamed", "second"}) {
		t.Fatalf("names = %v", got)
	}
	if got := s.Tracks("renamed"); len(got) != 1 || got[0].Title != "t" {
		t.Fatalf("tracks moved incorrectly: %+v", got)
	}

	// Renaming onto an existing name is refused.
	s.RenamePlaylist("renamed", "second")
	if got := s.Names(); !reflect.DeepEqual(got, []string{"renamed", "second"}) {
		t.Fatalf("rename onto existing name should no-op, names = %v", got)
	}
}

func TestMoveTrackAndPlaylist(t *testing.T) {
	s := tempStore(t)
	s.AddPlaylist("p")
	s.AddTrack("p", Track{Title: "a"})
	s.AddTrack("p", Track{Title: "b"})
	s.AddTrack("p", Track{Title: "c"})

	s.MoveTrack("p", 2, -1)
	titles := func() []string {
		var out []string
		for _, tr := range s.Tracks("p") {
			out = append(out, tr.Title)
		}
		return out
	}
	if got := titles(); !reflect.DeepEqual(got, []string{"a", "c", "b"}) {
		t.Fatalf("after move up: %v", got)
	}
	s.MoveTrack("p", 0, +1)
	if got := titles(); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Fatalf("after move down: %v", got)
	}
	// Out of range moves do nothing.
	s.MoveTrack("p", 0, -1)
	s.MoveTrack("p", 2, +1)
	if got := titles(); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Fatalf("edge moves should no-op: %v", got)
	}

	s.AddPlaylist("q")
	s.MovePlaylist(1, -1)
	if got := s.Names(); !reflect.DeepEqual(got, []string{"q", "p"}) {
		t.Fatalf("playlist move: %v", got)
	}
}

func TestMoveTrackBetween(t *testing.T) {
	s := tempStore(t)
	s.AddPlaylist("p")
	s.AddPlaylist("q")
	s.AddTrack("p", Track{Title: "a"})
	s.AddTrack("p", Track{Title: "b"})
	s.AddTrack("q", Track{Title: "z"})

	s.MoveTrackBetween("p", 0, "q")
	if got := len(s.Tracks("p")); got != 1 {
		t.Fatalf("source should have 1 track, got %d", got)
	}
	q := s.Tracks("q")
	if len(q) != 2 || q[1].Title != "a" {
		t.Fatalf("moved track should be appended, got %+v", q)
	}

	// Missing targets and same-playlist moves do nothing.
	s.MoveTrackBetween("p", 0, "missing")
	s.MoveTrackBetween("missing", 0, "q")
	s.MoveTrackBetween("q", 0, "q")
	s.MoveTrackBetween("q", 5, "p")
	if len(s.Tracks("p")) != 1 || len(s.Tracks("q")) != 2 {
		t.Fatalf("no-op moves changed state: p=%d q=%d", len(s.Tracks("p")), len(s.Tracks("q")))
	}
}

func TestEnsureVideoIDsDerivesAndMemoizes(t *testing.T) {
	s := tempStore(t)
	s.AddPlaylist("p")
	s.AddTrack("p", Track{Title: "yt", URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})
	s.AddTrack("p", Track{Title: "search", URL: "ytsearch1:some artist some song"})

	ids := s.EnsureVideoIDs()
	if _, ok := ids["dQw4w9WgXcQ"]; !ok {
		t.Fatalf("expected derived id in set, got %v", ids)
	}
	tracks := s.Tracks("p")
	if tracks[0].VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("vid not memoized: %+v", tracks[0])
	}
	if tracks[1].VideoID != "" {
		t.Fatalf("non-YouTube url should stay without vid: %+v", tracks[1])
	}
}
