package ui

import (
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/jukevox/jukevox/internal/library"
)

// promptName shows a single-entry form dialog and calls cb with the
// trimmed result. Empty input is dropped silently.
func (ui *RootUI) promptName(title, initial string, cb func(string)) {
	entry := widget.NewEntry()
	entry.SetText(initial)
	items := []*widget.FormItem{widget.NewFormItem("Name", entry)}
	dialog.ShowForm(title, "OK", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		name := strings.TrimSpace(entry.Text)
		if name == "" {
			return
		}
		cb(name)
	}, ui.window)
}

// promptTrack shows the title/URL form used by both add and edit.
func (ui *RootUI) promptTrack(title string, initial library.Track, cb func(library.Track)) {
	titleEntry := widget.NewEntry()
	titleEntry.SetText(initial.Title)
	urlEntry := widget.NewEntry()
	urlEntry.SetText(initial.URL)
	items := []*widget.FormItem{
		widget.NewFormItem("Title", titleEntry),
		widget.NewFormItem("URL", urlEntry),
	}
	dialog.ShowForm(title, "OK", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		tr := library.Track{
			Title: strings.TrimSpace(titleEntry.Text),
			URL:   strings.TrimSpace(urlEntry.Text),
		}
		if tr.URL == "" {
			return
		}
		if tr.Title == "" {
			tr.Title = tr.URL
		}
		tr.EnsureVideoID()
		cb(tr)
	}, ui.window)
}

func (ui *RootUI) onAddPlaylist() {
	ui.promptName("Add playlist", "", func(name string) {
		ui.store.AddPlaylist(name)
		ui.playlistList.Refresh()
	})
}

func (ui *RootUI) onRenamePlaylist() {
	cur := ui.currentPlaylistName()
	if cur == "" {
		return
	}
	ui.promptName("Rename playlist", cur, func(name string) {
		ui.store.RenamePlaylist(cur, name)
		ui.playlistList.Refresh()
		ui.settings.SetLastPlaylist(ui.currentPlaylistName())
	})
}

func (ui *RootUI) onDeletePlaylist() {
	cur := ui.currentPlaylistName()
	if cur == "" {
		return
	}
	dialog.ShowConfirm("Delete playlist",
		fmt.Sprintf("Delete playlist %q and its %d tracks?", cur, ui.store.Len(cur)),
		func(ok bool) {
			if !ok {
				return
			}
			ui.store.DeletePlaylist(cur)
			ui.selectedPlaylist = -1
			ui.selectedTrack = -1
			ui.playlistList.UnselectAll()
			ui.playlistList.Refresh()
			ui.trackList.Refresh()
		}, ui.window)
}

func (ui *RootUI) onMovePlaylist(delta int) {
	if ui.selectedPlaylist < 0 {
		return
	}
	ui.store.MovePlaylist(ui.selectedPlaylist, delta)
	target := ui.selectedPlaylist + delta
	if target >= 0 && target < len(ui.store.Names()) {
		ui.playlistList.Select(target)
	}
	ui.playlistList.Refresh()
}

func (ui *RootUI) onAddTrack() {
	name := ui.currentPlaylistName()
	if name == "" {
		return
	}
	ui.promptTrack("Add track", library.Track{}, func(tr library.Track) {
		ui.store.AddTrack(name, tr)
		ui.trackList.Refresh()
	})
}

// onEditTrack edits title and URL in place; picking a different
// playlist in the form moves the track there.
func (ui *RootUI) onEditTrack() {
	name := ui.currentPlaylistName()
	if name == "" || ui.selectedTrack < 0 {
		return
	}
	tr, ok := ui.store.TrackAt(name, ui.selectedTrack)
	if !ok {
		return
	}
	idx := ui.selectedTrack

	titleEntry := widget.NewEntry()
	titleEntry.SetText(tr.Title)
	urlEntry := widget.NewEntry()
	urlEntry.SetText(tr.URL)
	playlistSelect := widget.NewSelect(ui.store.Names(), nil)
	playlistSelect.SetSelected(name)

	items := []*widget.FormItem{
		widget.NewFormItem("Title", titleEntry),
		widget.NewFormItem("URL", urlEntry),
		widget.NewFormItem("Playlist", playlistSelect),
	}
	dialog.ShowForm("Edit track", "OK", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		edited := library.Track{
			Title: strings.TrimSpace(titleEntry.Text),
			URL:   strings.TrimSpace(urlEntry.Text),
		}
		if edited.URL == "" {
			return
		}
		if edited.Title == "" {
			edited.Title = edited.URL
		}
		edited.EnsureVideoID()
		ui.store.UpdateTrack(name, idx, edited)
		if target := playlistSelect.Selected; target != "" && target != name {
			ui.store.MoveTrackBetween(name, idx, target)
			ui.selectedTrack = -1
			ui.trackList.UnselectAll()
		}
		ui.trackList.Refresh()
	}, ui.window)
}

func (ui *RootUI) onDeleteTrack() {
	name := ui.currentPlaylistName()
	if name == "" || ui.selectedTrack < 0 {
		return
	}
	ui.store.DeleteTrack(name, ui.selectedTrack)
	ui.selectedTrack = -1
	ui.trackList.UnselectAll()
	ui.trackList.Refresh()
}

func (ui *RootUI) onMoveTrack(delta int) {
	name := ui.currentPlaylistName()
	if name == "" || ui.selectedTrack < 0 {
		return
	}
	ui.store.MoveTrack(name, ui.selectedTrack, delta)
	target := ui.selectedTrack + delta
	if target >= 0 && target < ui.store.Len(name) {
		ui.trackList.Select(target)
	}
	ui.trackList.Refresh()
}

// onImportSpotify pulls a Spotify playlist, album or track in as a new
// playlist of YouTube search entries.
func (ui *RootUI) onImportSpotify() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("https://open.spotify.com/playlist/...")
	items := []*widget.FormItem{widget.NewFormItem("Link", entry)}
	dialog.ShowForm("Import from Spotify", "Import", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		raw := strings.TrimSpace(entry.Text)
		if raw == "" {
			return
		}
		ui.SetStatus("Importing from Spotify...")
		go func() {
			name, tracks, err := ui.importer.Import(context.Background(), raw, 0)
			fyne.Do(func() {
				if err != nil {
					ui.statusLabel.SetText("Import failed")
					dialog.ShowError(err, ui.window)
					return
				}
				ui.store.AddPlaylist(name)
				for _, tr := range tracks {
					ui.store.AddTrack(name, tr)
				}
				ui.playlistList.Refresh()
				ui.statusLabel.SetText(fmt.Sprintf("Imported %d tracks into %q", len(tracks), name))
			})
		}()
	}, ui.window)
}
