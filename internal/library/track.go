package library

import (
	"encoding/json"
	"regexp"
)

// Track is a single playable link plus its display title. VideoID is the
// 11-character YouTube identifier, derived lazily from URL and memoized
// onto the record; empty means "not derived yet" (or not a YouTube link).
type Track struct {
	Title   string
	URL     string
	VideoID string
}

var videoIDRe = regexp.MustCompile(`(?:v=|/)([A-Za-z0-9_-]{11})`)

// VideoID extracts the 11-character video identifier from a YouTube URL,
// or returns "" when the link does not look like one.
func VideoID(url string) string {
	m := videoIDRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// EnsureVideoID derives and memoizes the track's video id on first use.
func (t *Track) EnsureVideoID() string {
	if t.VideoID == "" {
		t.VideoID = VideoID(t.URL)
	}
	return t.VideoID
}

type trackJSON struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Vid   *string `json:"vid"`
}

// MarshalJSON keeps the on-disk shape {"title","url","vid"} with a JSON
// null vid while the id is unknown, matching the persisted format.
func (t Track) MarshalJSON() ([]byte, error) {
	aux := trackJSON{Title: t.Title, URL: t.URL}
	if t.VideoID != "" {
		vid := t.VideoID
		aux.Vid = &vid
	}
	return json.Marshal(aux)
}

func (t *Track) UnmarshalJSON(b []byte) error {
	var aux trackJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	t.Title = aux.Title
	t.URL = aux.URL
	t.VideoID = ""
	if aux.Vid != nil {
		t.VideoID = *aux.Vid
	}
	return nil
}
