package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jukevox/jukevox/internal/cache"
	"github.com/jukevox/jukevox/internal/config"
	"github.com/jukevox/jukevox/internal/library"
	"github.com/jukevox/jukevox/internal/playback"
	"github.com/jukevox/jukevox/internal/repository"
	"github.com/jukevox/jukevox/internal/resolver"
	"github.com/jukevox/jukevox/internal/spotify"
	"github.com/jukevox/jukevox/internal/ui"
	"github.com/jukevox/jukevox/internal/voice"
)

const (
	appID = "com.jukevox.app"

	windowWidth  = 960
	windowHeight = 560
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	db, err := repository.OpenDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	repo := repository.NewRepo(db)
	thumbs := cache.NewThumbCache(cfg, repo)
	store := library.Open(cfg.PlaylistFile)
	state := playback.NewState()
	vclient := voice.NewClient(cfg)
	ctrl := playback.NewController(state, vclient, resolver.New())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := vclient.Run(ctx); err != nil {
			slog.Error("discord session failed", "err", err)
		}
	}()

	var importer *spotify.Client
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		importer, err = spotify.NewClientCredentials(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
		if err != nil {
			slog.Warn("spotify client unavailable", "err", err)
		}
	}

	fyneApp := app.NewWithID(appID)
	window := fyneApp.NewWindow("Jukevox")
	window.Resize(fyne.NewSize(windowWidth, windowHeight))

	root := ui.NewRootUI(window, fyneApp, store, ctrl, state, thumbs, vclient, importer)
	root.StartPresentationTimer(ctx)

	// Reconcile cached thumbnails with the library in the background.
	go func() {
		ids := store.EnsureVideoIDs()
		wanted := make(map[string]string, len(ids))
		for id := range ids {
			wanted[id] = ""
		}
		n, err := thumbs.Sync(ctx, wanted, func(done, total int) {
			root.SetStatus(fmt.Sprintf("Syncing thumbnails %d/%d", done, total))
		})
		if err != nil {
			slog.Warn("thumbnail sync incomplete", "err", err)
		}
		if n > 0 {
			root.SetStatus(fmt.Sprintf("Downloaded %d thumbnails", n))
		}
	}()

	window.ShowAndRun()
	cancel()
}
