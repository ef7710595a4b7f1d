// Package spotify imports Spotify playlists, albums and tracks into
// the library as YouTube search entries.
package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jukevox/jukevox/internal/library"
)

type Client struct {
	raw *spotify.Client
}

func NewClientCredentials(clientID, clientSecret string) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("spotify credentials not configured")
	}
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := cfg.Client(context.Background())
	return &Client{raw: spotify.New(httpClient, spotify.WithRetry(true))}, nil
}

// ParseID accepts open.spotify.com URLs and spotify: URIs.
func ParseID(raw string) (typ string, id spotify.ID, err error) {
	if strings.HasPrefix(raw, "spotify:") {
		parts := strings.Split(raw, ":")
		if len(parts) == 3 {
			return parts[1], spotify.ID(parts[2]), nil
		}
		return "", "", fmt.Errorf("invalid spotify URI")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Host != "open.spotify.com" && u.Host != "www.open.spotify.com" {
		return "", "", fmt.Errorf("not a spotify URL")
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("invalid spotify URL path")
	}
	switch parts[0] {
	case "album", "playlist", "track":
		return parts[0], spotify.ID(parts[1]), nil
	}
	return "", "", fmt.Errorf("unsupported spotify type %q", parts[0])
}

// searchTrack turns a Spotify track into a library entry whose URL is a
// one-result YouTube search, resolved lazily at play time.
func searchTrack(name, artist string) library.Track {
	query := name
	if artist != "" {
		query = artist + " - " + name
	}
	return library.Track{
		Title: query,
		URL:   "ytsearch1:" + query,
	}
}

func simpleToTrack(t spotify.SimpleTrack) library.Track {
	artist := ""
	if len(t.Artists) > 0 {
		artist = t.Artists[0].Name
	}
	return searchTrack(t.Name, artist)
}

// Import resolves raw (URL or URI) and returns a suggested playlist
// name plus the tracks to add. limit of 0 means no cap.
func (c *Client) Import(ctx context.Context, raw string, limit int) (string, []library.Track, error) {
	typ, id, err := ParseID(raw)
	if err != nil {
		return "", nil, err
	}
	switch typ {
	case "playlist":
		return c.playlistTracks(ctx, id, limit)
	case "album":
		return c.albumTracks(ctx, id, limit)
	case "track":
		t, err := c.raw.GetTrack(ctx, id)
		if err != nil {
			return "", nil, err
		}
		tr := simpleToTrack(t.SimpleTrack)
		return tr.Title, []library.Track{tr}, nil
	}
	return "", nil, fmt.Errorf("unsupported spotify type %q", typ)
}

func (c *Client) playlistTracks(ctx context.Context, id spotify.ID, limit int) (string, []library.Track, error) {
	pl, err := c.raw.GetPlaylist(ctx, id)
	if err != nil {
		return "", nil, err
	}
	page, err := c.raw.GetPlaylistItems(ctx, id)
	if err != nil {
		return "", nil, err
	}
	out := make([]library.Track, 0, page.Total)
	add := func(items []spotify.PlaylistItem) {
		for _, it := range items {
			if it.Track.Track == nil {
				continue
			}
			if limit > 0 && len(out) >= limit {
				break
			}
			out = append(out, simpleToTrack(it.Track.Track.SimpleTrack))
		}
	}
	add(page.Items)
	for page.Next != "" && (limit == 0 || len(out) < limit) {
		if err := c.raw.NextPage(ctx, page); err != nil {
			break
		}
		add(page.Items)
	}
	return pl.Name, out, nil
}

func (c *Client) albumTracks(ctx context.Context, id spotify.ID, limit int) (string, []library.Track, error) {
	alb, err := c.raw.GetAlbum(ctx, id)
	if err != nil {
		return "", nil, err
	}
	page, err := c.raw.GetAlbumTracks(ctx, id)
	if err != nil {
		return "", nil, err
	}
	out := make([]library.Track, 0, page.Total)
	add := func(items []spotify.SimpleTrack) {
		for _, t := range items {
			if limit > 0 && len(out) >= limit {
				break
			}
			out = append(out, simpleToTrack(t))
		}
	}
	add(page.Tracks)
	for page.Next != "" && (limit == 0 || len(out) < limit) {
		if err := c.raw.NextPage(ctx, page); err != nil {
			break
		}
		add(page.Tracks)
	}
	return alb.Name, out, nil
}
