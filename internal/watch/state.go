package watch

import (
	"github.com/soehlert/tunedisplay/pkg/lastfm"
)

// PlaybackState tracks what is currently displayed.
//
// It is owned by a single Reconciler and mutated only between ticks of
// one sequential loop, so it carries no locking. Invariant: the art
// path is non-empty only while a track is displayed with art enabled,
// and the file at that path was last written for that track's art URL.
type PlaybackState struct {
	lastDisplayed *lastfm.Track
	lastArtPath   string
}

// NewPlaybackState returns an empty (Idle) state.
func NewPlaybackState() *PlaybackState {
	return &PlaybackState{}
}

// Showing reports whether a track is currently displayed.
func (s *PlaybackState) Showing() bool {
	return s.lastDisplayed != nil
}

// LastDisplayed returns the displayed track, or nil when Idle.
func (s *PlaybackState) LastDisplayed() *lastfm.Track {
	return s.lastDisplayed
}

// LastArtURL returns the art URL the cached file corresponds to, or
// empty when nothing is displayed.
func (s *PlaybackState) LastArtURL() string {
	if s.lastDisplayed == nil {
		return ""
	}
	return s.lastDisplayed.ArtURL
}

// LastArtPath returns the path of the displayed art file, or empty.
func (s *PlaybackState) LastArtPath() string {
	return s.lastArtPath
}

// SetDisplayed records that track is now shown, with its art at
// artPath (empty for text-only display).
func (s *PlaybackState) SetDisplayed(track *lastfm.Track, artPath string) {
	s.lastDisplayed = track
	s.lastArtPath = artPath
}

// Clear resets to Idle.
func (s *PlaybackState) Clear() {
	s.lastDisplayed = nil
	s.lastArtPath = ""
}
