package spotify

import "testing"

func TestParseID(t *testing.T) {
	cases := []struct {
		raw     string
		typ     string
		id      string
		wantErr bool
	}{
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", "playlist", "37i9dQZF1DXcBWIGoYBM5M", false},
		{"https://open.spotify.com/album/4aawyAB9vmqN3uQ7FjRGTy?si=abc", "album", "4aawyAB9vmqN3uQ7FjRGTy", false},
		{"spotify:track:11dFghVXANMlKmJXsNCbNl", "track", "11dFghVXANMlKmJXsNCbNl", false},
		{"https://open.spotify.com/artist/0OdUWJ0sBjDrqHygGUXeCF", "", "", true},
		{"https://example.com/playlist/x", "", "", true},
		{"spotify:bogus", "", "", true},
	}
	for _, c := range cases {
		typ, id, err := ParseID(c.raw)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseID(%q): expected error, got %s/%s", c.raw, typ, id)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseID(%q): %v", c.raw, err)
			continue
		}
		if typ != c.typ || string(id) != c.id {
			t.Errorf("ParseID(%q) = %s/%s, want %s/%s", c.raw, typ, id, c.typ, c.id)
		}
	}
}

func TestSearchTrack(t *testing.T) {
	tr := searchTrack("Halcyon", "Orbital")
	if tr.URL != "ytsearch1:Orbital - Halcyon" {
		t.Fatalf("unexpected URL %q", tr.URL)
	}
	if tr.Title != "Orbital - Halcyon" {
		t.Fatalf("unexpected title %q", tr.Title)
	}
	if tr.VideoID != "" {
		t.Fatalf("search entries must not carry a video id")
	}

	tr = searchTrack("Solo", "")
	if tr.URL != "ytsearch1:Solo" {
		t.Fatalf("unexpected URL %q", tr.URL)
	}
}
