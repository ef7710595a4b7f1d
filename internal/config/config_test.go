package config

import "testing"

func TestParseCacheLimit(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int64
	}{
		{"plain byte count", "1048576", 1048576},
		{"garbage falls back to default", "lots", defaultCacheLimit},
		{"zero would evict everything", "0", defaultCacheLimit},
		{"negative falls back to default", "-5", defaultCacheLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseCacheLimit(tc.in); got != tc.want {
				t.Fatalf("parseCacheLimit(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestLoadConfigRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DATA_DIR", t.TempDir())
	if _, err := LoadConfig(); err == nil {
		t.Fatal("missing DISCORD_TOKEN must fail")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("CACHE_LIMIT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CacheLimitBytes != defaultCacheLimit {
		t.Fatalf("CacheLimitBytes = %d, want default", cfg.CacheLimitBytes)
	}
	if cfg.DataDir != dir {
		t.Fatalf("DataDir = %q", cfg.DataDir)
	}
}
