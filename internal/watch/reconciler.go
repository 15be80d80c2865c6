// Package watch implements the poll loop that reconciles what Last.fm
// says is playing against what is currently displayed.
package watch

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/soehlert/tunedisplay/internal/artcache"
	"github.com/soehlert/tunedisplay/internal/present"
	"github.com/soehlert/tunedisplay/pkg/lastfm"
)

// Fetcher answers the now-playing query. A nil track with a nil error
// means nothing is playing.
type Fetcher interface {
	NowPlaying(ctx context.Context) (*lastfm.Track, error)
}

// ArtCache keeps the art file at destPath in sync with artURL.
type ArtCache interface {
	Ensure(ctx context.Context, artURL, lastURL, destPath string) (artcache.Result, error)
}

// Config holds reconciler configuration.
type Config struct {
	Interval   time.Duration // Poll interval (clamped to 1s minimum)
	ArtPath    string        // Where the cached art file lives
	ArtEnabled bool          // False in --no-art mode
}

// Reconciler drives the poll loop: fetch the current track, compare it
// to the displayed one, and update art and display only on change.
//
// Steady-state ticks where nothing changed are no-ops beyond the
// single fetch, so polling stays cheap and idempotent.
type Reconciler struct {
	cfg       Config
	fetcher   Fetcher
	cache     ArtCache
	presenter present.Presenter
	state     *PlaybackState
	logger    zerolog.Logger
}

// New creates a Reconciler in the Idle state.
func New(cfg Config, fetcher Fetcher, cache ArtCache, presenter present.Presenter, logger zerolog.Logger) *Reconciler {
	if cfg.Interval < time.Second {
		cfg.Interval = time.Second
	}
	return &Reconciler{
		cfg:       cfg,
		fetcher:   fetcher,
		cache:     cache,
		presenter: presenter,
		state:     NewPlaybackState(),
		logger:    logger.With().Str("component", "reconciler").Logger(),
	}
}

// Run polls until the context is cancelled, then hides the display and
// removes the cached art file. A tick always runs to completion before
// the next sleep begins; the interval itself is the backoff after
// transient failures.
//
// Returns nil on clean shutdown.
func (r *Reconciler) Run(ctx context.Context) error {
	r.logger.Info().
		Dur("interval", r.cfg.Interval).
		Bool("art", r.cfg.ArtEnabled).
		Msg("Starting watch loop")

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	// Tick immediately on start
	r.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Watch loop stopping")
			r.shutdown()
			return nil
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick runs one reconcile pass. No error is returned: every failure
// mode is logged and the loop carries on, per the resilience contract.
func (r *Reconciler) Tick(ctx context.Context) {
	track, err := r.fetcher.NowPlaying(ctx)
	if err != nil {
		r.logFetchError(err)
		return // state unchanged; next tick is the retry
	}

	// Nothing playing: clear the display once, then stay Idle.
	if track == nil {
		if r.state.Showing() {
			r.logger.Info().
				Str("previous", r.state.LastDisplayed().String()).
				Msg("Playback stopped")
			if err := r.presenter.Hide(ctx); err != nil {
				r.logger.Warn().Err(err).Msg("Failed to hide display")
			}
			r.state.Clear()
		}
		return
	}

	// Common case: same track as last tick, nothing to do.
	if track.SameAs(r.state.LastDisplayed()) {
		return
	}

	event := "Playback started"
	if r.state.Showing() {
		event = "Track changed"
	}
	r.logger.Info().
		Str("artist", track.Artist).
		Str("title", track.Title).
		Str("album", track.Album).
		Msg(event)

	displayed := track
	artPath := ""
	if r.cfg.ArtEnabled {
		_, err := r.cache.Ensure(ctx, track.ArtURL, r.state.LastArtURL(), r.cfg.ArtPath)
		switch {
		case err != nil:
			// A failed art fetch never blocks showing the track
			// change. Record the track without its art URL so the
			// stale file is not mistaken for this URL later.
			r.logger.Warn().Err(err).Str("url", track.ArtURL).Msg("Art download failed, showing metadata only")
			copied := *track
			copied.ArtURL = ""
			displayed = &copied
		case track.ArtURL != "":
			artPath = r.cfg.ArtPath
		}
	}

	if err := r.presenter.Show(ctx, track, artPath); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to update display")
	}
	r.state.SetDisplayed(displayed, artPath)
}

// logFetchError classifies a fetch failure. Credential errors repeat
// every tick until fixed, so they warn loudly; they are still not
// fatal, in case the credential service is having a bad day.
func (r *Reconciler) logFetchError(err error) {
	switch {
	case lastfm.IsAuthError(err):
		r.logger.Warn().Err(err).Msg("Last.fm rejected the configured credentials; check LASTFM_API_KEY and LASTFM_USERNAME")
	case lastfm.IsTransient(err):
		r.logger.Debug().Err(err).Msg("Transient fetch error")
	default:
		r.logger.Error().Err(err).Msg("Unexpected Last.fm response")
	}
}

// shutdown clears the display and removes the art file.
func (r *Reconciler) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if r.state.Showing() {
		if err := r.presenter.Hide(ctx); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to hide display during shutdown")
		}
		r.state.Clear()
	}

	if r.cfg.ArtEnabled && r.cfg.ArtPath != "" {
		err := os.Remove(r.cfg.ArtPath)
		switch {
		case err == nil:
			r.logger.Info().Str("path", r.cfg.ArtPath).Msg("Removed cached art file")
		case !os.IsNotExist(err):
			r.logger.Warn().Err(err).Str("path", r.cfg.ArtPath).Msg("Failed to remove cached art file")
		}
	}
}
