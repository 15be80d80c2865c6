// Package present renders the currently playing track to the user.
//
// Two presenters exist: a viewer that prints metadata to stdout and
// hands the art file to the platform's image opener, and a tview-based
// terminal UI. The watch loop only depends on the Presenter contract
// and treats presenter failures as non-fatal.
package present

import (
	"context"

	"github.com/soehlert/tunedisplay/pkg/lastfm"
)

// Presenter shows or hides the currently playing track.
type Presenter interface {
	// Show renders the track. artPath points at the cached album art
	// file, or is empty when art is unavailable or disabled.
	Show(ctx context.Context, track *lastfm.Track, artPath string) error

	// Hide clears whatever Show put up.
	Hide(ctx context.Context) error
}
