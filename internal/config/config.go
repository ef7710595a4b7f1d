package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// defaultCacheLimit is 256MB of thumbnails before eviction kicks in.
const defaultCacheLimit int64 = 256 << 20

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

// parseCacheLimit rejects unparsable and non-positive limits; a limit of
// zero would evict every thumbnail right after download.
func parseCacheLimit(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		slog.Warn("invalid CACHE_LIMIT, using default", "value", s, "default", defaultCacheLimit)
		return defaultCacheLimit
	}
	return v
}

func LoadConfig() (*Config, error) {
	dataDir := getenv("DATA_DIR", "./data")
	cacheDir := filepath.Join(dataDir, "cache", "thumbs")

	// CACHE_LIMIT is a plain byte count.
	cacheLimit := getenv("CACHE_LIMIT", strconv.FormatInt(defaultCacheLimit, 10))

	cfg := &Config{
		DiscordToken:        os.Getenv("DISCORD_TOKEN"),
		VoiceChannelID:      os.Getenv("VOICE_CHANNEL_ID"),
		TargetUserID:        os.Getenv("TARGET_USER_ID"),
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		DataDir:             dataDir,
		CacheDir:            cacheDir,
		CacheLimitBytes:     parseCacheLimit(cacheLimit),
		PlaylistFile:        getenv("PLAYLIST_FILE", filepath.Join(dataDir, "playlists.json")),
	}

	if cfg.DiscordToken == "" {
		return nil, ErrConfig("DISCORD_TOKEN required")
	}
	_ = os.MkdirAll(cfg.DataDir, 0o755)
	_ = os.MkdirAll(cfg.CacheDir, 0o755)
	return cfg, nil
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
