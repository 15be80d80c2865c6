package present

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
	"github.com/soehlert/tunedisplay/pkg/lastfm"
)

const idleText = "Currently not playing anything"

// TUI is a terminal presenter that fills the screen with the track's
// title, artist, and album, in the spirit of a kiosk display.
//
// Album art cannot be drawn in a terminal, so the art path passed to
// Show is ignored; run with --no-art to skip downloads entirely when
// using this presenter.
type TUI struct {
	app    *tview.Application
	title  *tview.TextView
	artist *tview.TextView
	album  *tview.TextView
	status *tview.TextView
	logger zerolog.Logger
}

// NewTUI creates the terminal presenter.
func NewTUI(logger zerolog.Logger) *TUI {
	t := &TUI{
		app:    tview.NewApplication(),
		logger: logger.With().Str("component", "tui").Logger(),
	}
	t.setupUI()
	return t
}

// setupUI creates the UI layout
func (t *TUI) setupUI() {
	t.title = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	t.title.SetBorder(false)

	t.artist = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	t.album = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	t.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]q:quit[-]")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.title, 3, 0, false).
		AddItem(t.artist, 2, 0, false).
		AddItem(t.album, 2, 0, false).
		AddItem(tview.NewBox(), 0, 1, false).
		AddItem(t.status, 1, 0, false)
	flex.SetBorder(true).
		SetTitle(" tunedisplay ").
		SetTitleAlign(tview.AlignLeft)

	t.app.SetRoot(flex, true)

	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEscape, event.Key() == tcell.KeyCtrlC:
			t.app.Stop()
			return nil
		case event.Rune() == 'q':
			t.app.Stop()
			return nil
		}
		return event
	})

	t.renderIdle()
}

// Run starts the terminal UI and blocks until the user quits or the
// context is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		t.app.Stop()
	}()

	t.logger.Debug().Msg("Starting terminal UI")
	return t.app.Run()
}

// Stop tears down the terminal UI.
func (t *TUI) Stop() {
	t.app.Stop()
}

// Show renders the track metadata. The art path is ignored; see the
// type doc.
func (t *TUI) Show(ctx context.Context, track *lastfm.Track, artPath string) error {
	title, artist, album := track.Title, track.Artist, track.Album
	t.app.QueueUpdateDraw(func() {
		t.title.SetText("[::b]" + tview.Escape(title) + "[-:-:-]")
		t.artist.SetText(tview.Escape(artist))
		t.album.SetText("[gray]" + tview.Escape(album) + "[-]")
	})
	return nil
}

// Hide puts the idle placeholder back up.
func (t *TUI) Hide(ctx context.Context) error {
	t.app.QueueUpdateDraw(func() {
		t.renderIdle()
	})
	return nil
}

func (t *TUI) renderIdle() {
	t.title.SetText("[gray]" + idleText + "[-]")
	t.artist.SetText("")
	t.album.SetText("")
}
