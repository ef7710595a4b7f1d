// Package cache stores video thumbnails on disk, keyed by video ID,
// with a sqlite ledger driving LRU eviction.
package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jukevox/jukevox/internal/config"
	"github.com/jukevox/jukevox/internal/repository"
)

type ThumbCache struct {
	cfg  *config.Config
	repo *repository.Repo
	http *http.Client
	mu   sync.Mutex
}

func NewThumbCache(cfg *config.Config, repo *repository.Repo) *ThumbCache {
	return &ThumbCache{
		cfg:  cfg,
		repo: repo,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *ThumbCache) PathFor(videoID string) string {
	return filepath.Join(c.cfg.CacheDir, videoID+".jpg")
}

// Get returns the cached path for videoID if present on disk. A ledger
// row without a file is stale and gets removed.
func (c *ThumbCache) Get(ctx context.Context, videoID string) (string, bool) {
	p := c.PathFor(videoID)
	if _, err := os.Stat(p); err == nil {
		_ = c.repo.ThumbTouch(ctx, videoID, 0, false)
		return p, true
	}
	_ = c.repo.ThumbRemove(ctx, videoID)
	return "", false
}

// Fetch returns the on-disk path for videoID's thumbnail, downloading
// it from url first when missing. Idempotent.
func (c *ThumbCache) Fetch(ctx context.Context, videoID, url string) (string, error) {
	if videoID == "" {
		return "", fmt.Errorf("empty video id")
	}
	if p, ok := c.Get(ctx, videoID); ok {
		return p, nil
	}
	if url == "" {
		url = fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("thumbnail fetch: status %d", resp.StatusCode)
	}

	final := c.PathFor(videoID)
	tmp := final + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if n == 0 {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("thumbnail fetch: empty body")
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	_ = c.repo.ThumbTouch(ctx, videoID, n, true)
	if err := c.evictIfNeeded(ctx); err != nil {
		slog.Warn("thumb cache eviction failed", "err", err)
	}
	return final, nil
}

func (c *ThumbCache) evictIfNeeded(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	total, err := c.repo.ThumbTotalBytes(ctx)
	if err != nil {
		return err
	}
	for total > c.cfg.CacheLimitBytes {
		oldest, err := c.repo.ThumbOldest(ctx)
		if err != nil {
			return err
		}
		if oldest == "" {
			return nil
		}
		_ = os.Remove(c.PathFor(oldest))
		if err := c.repo.ThumbRemove(ctx, oldest); err != nil {
			return err
		}
		total, err = c.repo.ThumbTotalBytes(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

// Sync brings the cache in line with the library: downloads thumbnails
// for the given video IDs and prunes files for IDs no longer present.
// wanted maps video ID to a preferred thumbnail URL ("" means derive).
// progress, when non-nil, is called after each processed ID. Returns
// the number of downloads performed.
func (c *ThumbCache) Sync(ctx context.Context, wanted map[string]string, progress func(done, total int)) (int, error) {
	downloaded := 0
	done := 0
	for id, url := range wanted {
		if _, ok := c.Get(ctx, id); !ok {
			if _, err := c.Fetch(ctx, id, url); err != nil {
				slog.Warn("thumbnail download failed", "videoID", id, "err", err)
			} else {
				downloaded++
			}
		}
		done++
		if progress != nil {
			progress(done, len(wanted))
		}
	}

	entries, err := os.ReadDir(c.cfg.CacheDir)
	if err != nil {
		return downloaded, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		id := strings.TrimSuffix(name, ".jpg")
		if id == name {
			continue
		}
		if _, ok := wanted[id]; ok {
			continue
		}
		_ = os.Remove(filepath.Join(c.cfg.CacheDir, name))
		_ = c.repo.ThumbRemove(ctx, id)
	}
	return downloaded, nil
}
