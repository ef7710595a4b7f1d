// Package ui is the Fyne interface: playlist and track lists on the
// left, transport and now-playing panel on the right, and the 500 ms
// presentation timer that keeps the panel and the end-of-track policy
// running.
package ui

import (
	"context"
	"math/rand"
	"net/url"
	"os"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/jukevox/jukevox/internal/cache"
	"github.com/jukevox/jukevox/internal/library"
	"github.com/jukevox/jukevox/internal/playback"
	"github.com/jukevox/jukevox/internal/spotify"
)

// Mode labels shown in the radio group, in display order.
var modeLabels = []string{"Stop", "Loop", "Next", "Random"}

// Connection reports whether the voice link is up; satisfied by the
// voice client.
type Connection interface {
	Connected() bool
}

// RootUI owns every widget and the selection/playing bookkeeping.
type RootUI struct {
	window   fyne.Window
	app      fyne.App
	settings *Settings

	store    *library.Store
	ctrl     *playback.Controller
	state    *playback.State
	thumbs   *cache.ThumbCache
	conn     Connection
	importer *spotify.Client // nil when credentials are absent

	playlistList *widget.List
	trackList    *widget.List
	urlEntry     *widget.Entry
	modeRadio    *widget.RadioGroup
	nowPlaying   *widget.Hyperlink
	timeLabel    *widget.Label
	progress     *widget.ProgressBar
	preview      *canvas.Image
	pauseBtn     *widget.Button
	statusLabel  *widget.Label

	selectedPlaylist int
	selectedTrack    int

	// Which track is streaming and where it came from, for replay and
	// for moving the visible selection after an automatic advance.
	// Next/random act on the user's current selection, not on these.
	mu              sync.Mutex
	playingPlaylist string
	playingIndex    int
	playingTrack    library.Track

	lastPreview string

	intn func(int) int
}

func NewRootUI(
	window fyne.Window,
	app fyne.App,
	store *library.Store,
	ctrl *playback.Controller,
	state *playback.State,
	thumbs *cache.ThumbCache,
	conn Connection,
	importer *spotify.Client,
) *RootUI {
	ui := &RootUI{
		window:           window,
		app:              app,
		settings:         NewSettings(app),
		store:            store,
		ctrl:             ctrl,
		state:            state,
		thumbs:           thumbs,
		conn:             conn,
		importer:         importer,
		selectedPlaylist: -1,
		selectedTrack:    -1,
		playingIndex:     -1,
		intn:             rand.Intn,
	}

	window.SetTitle("Jukevox")
	ui.setupUI()
	ui.restoreSelection()
	return ui
}

func (ui *RootUI) setupUI() {
	ui.playlistList = widget.NewList(
		func() int { return len(ui.store.Names()) },
		func() fyne.CanvasObject { return widget.NewLabel("playlist") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			names := ui.store.Names()
			if id < len(names) {
				obj.(*widget.Label).SetText(names[id])
			}
		},
	)
	ui.playlistList.OnSelected = ui.onPlaylistSelected

	ui.trackList = widget.NewList(
		func() int { return ui.store.Len(ui.currentPlaylistName()) },
		func() fyne.CanvasObject {
			icon := canvas.NewImageFromResource(nil)
			icon.FillMode = canvas.ImageFillContain
			icon.SetMinSize(fyne.NewSize(48, 27))
			return container.NewHBox(icon, widget.NewLabel("track"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			tr, ok := ui.store.TrackAt(ui.currentPlaylistName(), id)
			if !ok {
				return
			}
			row := obj.(*fyne.Container)
			icon := row.Objects[0].(*canvas.Image)
			label := row.Objects[1].(*widget.Label)
			label.SetText(tr.Title)
			icon.File = ui.trackIconPath(tr)
			icon.Refresh()
		},
	)
	ui.trackList.OnSelected = func(id widget.ListItemID) {
		ui.selectedTrack = id
	}

	playlistBar := container.NewHBox(
		widget.NewButton("Add", ui.onAddPlaylist),
		widget.NewButton("Rename", ui.onRenamePlaylist),
		widget.NewButton("Delete", ui.onDeletePlaylist),
		widget.NewButton("Up", func() { ui.onMovePlaylist(-1) }),
		widget.NewButton("Down", func() { ui.onMovePlaylist(1) }),
	)
	if ui.importer != nil {
		playlistBar.Add(widget.NewButton("Import", ui.onImportSpotify))
	}

	trackBar := container.NewHBox(
		widget.NewButton("Play", ui.onPlaySelected),
		widget.NewButton("Add", ui.onAddTrack),
		widget.NewButton("Edit", ui.onEditTrack),
		widget.NewButton("Delete", ui.onDeleteTrack),
		widget.NewButton("Up", func() { ui.onMoveTrack(-1) }),
		widget.NewButton("Down", func() { ui.onMoveTrack(1) }),
	)

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder("YouTube URL or ytsearch1: query")
	ui.urlEntry.OnSubmitted = func(string) { ui.onPlayURL() }
	urlRow := container.NewBorder(nil, nil, nil, widget.NewButton("Play URL", ui.onPlayURL), ui.urlEntry)

	ui.pauseBtn = widget.NewButton("Pause", ui.onPauseResume)
	transport := container.NewHBox(
		ui.pauseBtn,
		widget.NewButton("Stop", func() { go ui.ctrl.Stop() }),
		widget.NewButton("Join", func() { go ui.ctrl.Join(context.Background()) }),
		widget.NewButton("Leave", func() { go ui.ctrl.StopAndLeave() }),
	)

	ui.modeRadio = widget.NewRadioGroup(modeLabels, ui.onModeChanged)
	ui.modeRadio.Horizontal = true
	ui.modeRadio.SetSelected(titleCase(ui.settings.GetMode().String()))

	ui.nowPlaying = widget.NewHyperlink("Nothing playing", nil)
	ui.timeLabel = widget.NewLabel("")
	ui.progress = widget.NewProgressBar()
	ui.preview = canvas.NewImageFromResource(nil)
	ui.preview.FillMode = canvas.ImageFillContain
	ui.preview.SetMinSize(fyne.NewSize(240, 135))
	ui.statusLabel = widget.NewLabel("Not connected")

	nowPanel := container.NewVBox(
		ui.preview,
		ui.nowPlaying,
		ui.progress,
		ui.timeLabel,
		ui.modeRadio,
		transport,
		ui.statusLabel,
	)

	left := container.NewBorder(nil, playlistBar, nil, nil, ui.playlistList)
	center := container.NewBorder(nil, trackBar, nil, nil, ui.trackList)
	lists := container.NewHSplit(left, center)
	lists.SetOffset(0.3)

	main := container.NewHSplit(lists, nowPanel)
	main.SetOffset(0.65)

	ui.window.SetContent(container.NewBorder(urlRow, nil, nil, nil, main))
	ui.window.Resize(fyne.NewSize(960, 560))
}

// restoreSelection reselects the playlist from the previous run.
func (ui *RootUI) restoreSelection() {
	last := ui.settings.GetLastPlaylist()
	for i, name := range ui.store.Names() {
		if name == last {
			ui.playlistList.Select(i)
			return
		}
	}
	if len(ui.store.Names()) > 0 {
		ui.playlistList.Select(0)
	}
}

// trackIconPath returns the cached thumbnail file for a track row, or
// "" when none has been downloaded yet.
func (ui *RootUI) trackIconPath(tr library.Track) string {
	vid := tr.VideoID
	if vid == "" {
		vid = library.VideoID(tr.URL)
	}
	if vid == "" {
		return ""
	}
	p := ui.thumbs.PathFor(vid)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func (ui *RootUI) currentPlaylistName() string {
	names := ui.store.Names()
	if ui.selectedPlaylist < 0 || ui.selectedPlaylist >= len(names) {
		return ""
	}
	return names[ui.selectedPlaylist]
}

func (ui *RootUI) onPlaylistSelected(id widget.ListItemID) {
	ui.selectedPlaylist = id
	ui.selectedTrack = -1
	ui.trackList.UnselectAll()
	ui.trackList.Refresh()
	ui.settings.SetLastPlaylist(ui.currentPlaylistName())
}

func (ui *RootUI) onModeChanged(label string) {
	ui.settings.SetMode(playback.ModeFromString(strings.ToLower(label)))
}

// playTrack records the origin of the stream and hands off to the
// controller. Blocking work runs off the interface thread.
func (ui *RootUI) playTrack(name string, idx int) {
	tr, ok := ui.store.TrackAt(name, idx)
	if !ok {
		return
	}
	ui.mu.Lock()
	ui.playingPlaylist = name
	ui.playingIndex = idx
	ui.playingTrack = tr
	ui.mu.Unlock()
	go ui.ctrl.StartPlayback(context.Background(), tr)
}

func (ui *RootUI) onPlaySelected() {
	name := ui.currentPlaylistName()
	if name == "" || ui.selectedTrack < 0 {
		return
	}
	ui.playTrack(name, ui.selectedTrack)
}

// onPlayURL plays an ad-hoc link outside any playlist. Next and random
// have no playlist to act on afterwards; loop still works.
func (ui *RootUI) onPlayURL() {
	raw := strings.TrimSpace(ui.urlEntry.Text)
	if raw == "" {
		return
	}
	tr := library.Track{URL: raw}
	tr.EnsureVideoID()
	ui.mu.Lock()
	ui.playingPlaylist = ""
	ui.playingIndex = -1
	ui.playingTrack = tr
	ui.mu.Unlock()
	go ui.ctrl.StartPlayback(context.Background(), tr)
}

func (ui *RootUI) onPauseResume() {
	go ui.ctrl.PauseOrResume()
}

// onTrackEnd runs on the timer goroutine when elapsed reaches the
// duration. The dispatch flag is set first so the next tick cannot
// fire again while the follow-up action is still starting. Next and
// random act on the playlist and row the user has selected, which may
// differ from where the finished track came from.
func (ui *RootUI) onTrackEnd() {
	ui.state.MarkEndDispatched()

	ui.mu.Lock()
	cur := ui.playingTrack
	ui.mu.Unlock()

	name, idx := ui.selection()

	d := playback.Decide(ui.settings.GetMode(), cur.URL != "", ui.store.Len(name), idx, ui.intn)
	switch d.Action {
	case playback.ActionReplay:
		go ui.ctrl.StartPlayback(context.Background(), cur)
	case playback.ActionPlayIndex:
		tr, ok := ui.store.TrackAt(name, d.Index)
		if !ok {
			go ui.ctrl.Stop()
			return
		}
		ui.mu.Lock()
		ui.playingPlaylist = name
		ui.playingIndex = d.Index
		ui.playingTrack = tr
		ui.mu.Unlock()
		go ui.ctrl.StartPlayback(context.Background(), tr)
		fyne.Do(func() {
			ui.trackList.Select(d.Index)
		})
	case playback.ActionStop:
		go ui.ctrl.Stop()
	}
}

// selection reads the current playlist name and track row on the
// interface thread, since the selection fields are only ever written
// there.
func (ui *RootUI) selection() (string, int) {
	var name string
	idx := -1
	fyne.DoAndWait(func() {
		name = ui.currentPlaylistName()
		idx = ui.selectedTrack
	})
	return name, idx
}

// SetStatus replaces the status bar text. Safe from any goroutine.
func (ui *RootUI) SetStatus(msg string) {
	fyne.Do(func() {
		ui.statusLabel.SetText(msg)
	})
}

func parseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil
	}
	return u
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
