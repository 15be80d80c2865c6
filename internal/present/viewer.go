package present

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/soehlert/tunedisplay/pkg/lastfm"
)

// Viewer prints track metadata to a writer and opens the album art
// file with the platform's default image opener (open on macOS,
// xdg-open elsewhere).
//
// Hiding is best-effort: an already-spawned viewer process cannot be
// closed from here, so Hide only announces that playback stopped.
type Viewer struct {
	opener string // empty if no opener was found
	out    io.Writer
	logger zerolog.Logger
}

// NewViewer creates a Viewer writing metadata to stdout.
//
// A missing image opener is not an error: the viewer degrades to
// text-only output and says so once at startup.
func NewViewer(logger zerolog.Logger) *Viewer {
	v := &Viewer{
		opener: detectOpener(),
		out:    os.Stdout,
		logger: logger.With().Str("component", "viewer").Logger(),
	}
	if v.opener == "" {
		v.logger.Warn().Msg("No image opener found; album art will not be displayed")
	}
	return v
}

// detectOpener finds the platform command that opens a file with its
// default application.
func detectOpener() string {
	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}
	if _, err := exec.LookPath(name); err != nil {
		return ""
	}
	return name
}

// Show prints the track metadata and, if an art path was given and an
// opener exists, spawns the opener on it.
func (v *Viewer) Show(ctx context.Context, track *lastfm.Track, artPath string) error {
	fmt.Fprintf(v.out, "Artist: %s\nTrack: %s\nAlbum: %s\n", track.Artist, track.Title, track.Album)

	if artPath == "" {
		return nil
	}
	if v.opener == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, v.opener, artPath)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("opening %s with %s: %w", artPath, v.opener, err)
	}
	return nil
}

// Hide announces that nothing is playing.
func (v *Viewer) Hide(ctx context.Context) error {
	fmt.Fprintln(v.out, "Nothing playing.")
	return nil
}
