// Package resolver turns a source link into a directly streamable URL plus
// the metadata the player needs, using yt-dlp. Results are memoized by
// source URL for the lifetime of the process.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	ytdlp "github.com/lrstanley/go-ytdlp"
)

// Track is the resolved form of a source link.
type Track struct {
	StreamURL    string
	Title        string
	DurationSec  int
	ThumbnailURL string
	ID           string
}

type info struct {
	id         string
	title      string
	duration   float64
	url        string
	thumbnails []string
	formats    []string
	reqFormats []string
	webpageURL string
}

type fetchFunc func(ctx context.Context, url string) (*info, error)

type Resolver struct {
	mu    sync.Mutex
	memo  map[string]Track
	fetch fetchFunc

	installOnce sync.Once
}

func New() *Resolver {
	r := &Resolver{memo: make(map[string]Track)}
	r.fetch = r.ytdlpFetch
	return r
}

// Resolve returns the playable form of url, hitting yt-dlp at most once per
// source URL per process.
func (r *Resolver) Resolve(ctx context.Context, url string) (Track, error) {
	r.mu.Lock()
	if tr, ok := r.memo[url]; ok {
		r.mu.Unlock()
		return tr, nil
	}
	r.mu.Unlock()

	inf, err := r.fetch(ctx, url)
	if err != nil {
		return Track{}, fmt.Errorf("resolve %s: %w", url, err)
	}
	tr := trackFromInfo(inf)
	if tr.StreamURL == "" {
		return Track{}, errors.New("resolve: no usable media URL")
	}

	r.mu.Lock()
	r.memo[url] = tr
	r.mu.Unlock()
	return tr, nil
}

func trackFromInfo(inf *info) Track {
	return Track{
		StreamURL:    pickStreamURL(inf),
		Title:        inf.title,
		DurationSec:  int(inf.duration),
		ThumbnailURL: pickThumbnail(inf),
		ID:           inf.id,
	}
}

// pickStreamURL prefers requested formats, then the top-level url, then the
// format list.
func pickStreamURL(inf *info) string {
	for _, u := range inf.reqFormats {
		if strings.HasPrefix(u, "http") {
			return u
		}
	}
	if strings.HasPrefix(inf.url, "http") {
		return inf.url
	}
	for _, u := range inf.formats {
		if strings.HasPrefix(u, "http") {
			return u
		}
	}
	return inf.webpageURL
}

// pickThumbnail takes the extractor's last (largest) thumbnail, falling
// back to the predictable hqdefault path when only the id is known.
func pickThumbnail(inf *info) string {
	if n := len(inf.thumbnails); n > 0 {
		return inf.thumbnails[n-1]
	}
	if inf.id != "" {
		return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", inf.id)
	}
	return ""
}

func (r *Resolver) ytdlpFetch(ctx context.Context, url string) (*info, error) {
	r.installOnce.Do(func() {
		// Availability problems surface on the first Run below.
		ytdlp.MustInstall(ctx, nil)
	})

	cmd := ytdlp.New().
		Format("ba[acodec^=opus]/ba[ext=m4a]/bestaudio/best").
		NoCheckCertificates().
		DumpJSON()

	res, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp run: %w", err)
	}
	infos, err := res.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("parse yt-dlp json: %w", err)
	}
	if len(infos) == 0 || infos[0] == nil {
		return nil, errors.New("parse yt-dlp json: no info returned")
	}
	ext := infos[0]

	// Search queries come back as a one-entry playlist container.
	if len(ext.Entries) > 0 {
		for _, e := range ext.Entries {
			if e != nil {
				ext = e
				break
			}
		}
	}

	out := &info{
		id:         ext.ID,
		title:      s(ext.Title),
		duration:   f(ext.Duration),
		url:        s(ext.URL),
		webpageURL: s(ext.WebpageURL),
	}
	for _, t := range ext.Thumbnails {
		if t != nil {
			out.thumbnails = append(out.thumbnails, t.URL)
		}
	}
	for _, fm := range ext.Formats {
		if fm != nil {
			out.formats = append(out.formats, fm.URL)
		}
	}
	for _, fm := range ext.RequestedFormats {
		if fm != nil {
			out.reqFormats = append(out.reqFormats, fm.URL)
		}
	}
	return out, nil
}

func s(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func f(ptr *float64) float64 {
	if ptr == nil {
		return 0
	}
	return *ptr
}
