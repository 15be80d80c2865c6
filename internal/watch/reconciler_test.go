package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/soehlert/tunedisplay/internal/artcache"
	"github.com/soehlert/tunedisplay/pkg/lastfm"
)

type fetchResult struct {
	track *lastfm.Track
	err   error
}

// fakeFetcher replays a scripted sequence of now-playing answers.
// The last entry repeats once the script is exhausted.
type fakeFetcher struct {
	script []fetchResult
	calls  int
}

func (f *fakeFetcher) NowPlaying(ctx context.Context) (*lastfm.Track, error) {
	i := f.calls
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	f.calls++
	res := f.script[i]
	return res.track, res.err
}

type ensureCall struct {
	artURL  string
	lastURL string
	dest    string
}

type fakeCache struct {
	calls     []ensureCall
	downloads int
	err       error
}

func (c *fakeCache) Ensure(ctx context.Context, artURL, lastURL, destPath string) (artcache.Result, error) {
	c.calls = append(c.calls, ensureCall{artURL: artURL, lastURL: lastURL, dest: destPath})
	if artURL == "" || artURL == lastURL {
		return artcache.ResultSkipped, nil
	}
	if c.err != nil {
		return artcache.ResultSkipped, c.err
	}
	c.downloads++
	return artcache.ResultDownloaded, nil
}

type shownTrack struct {
	track   *lastfm.Track
	artPath string
}

type fakePresenter struct {
	shows []shownTrack
	hides int
}

func (p *fakePresenter) Show(ctx context.Context, track *lastfm.Track, artPath string) error {
	p.shows = append(p.shows, shownTrack{track: track, artPath: artPath})
	return nil
}

func (p *fakePresenter) Hide(ctx context.Context) error {
	p.hides++
	return nil
}

func newTestReconciler(fetcher *fakeFetcher, cache *fakeCache, presenter *fakePresenter, artEnabled bool) *Reconciler {
	return New(Config{
		Interval:   3 * time.Second,
		ArtPath:    "/tmp/test_art.png",
		ArtEnabled: artEnabled,
	}, fetcher, cache, presenter, zerolog.Nop())
}

func trackA() *lastfm.Track {
	return &lastfm.Track{Artist: "Radiohead", Title: "Airbag", Album: "OK Computer", ArtURL: "https://img.example/u1.png"}
}

func trackB() *lastfm.Track {
	return &lastfm.Track{Artist: "Idles", Title: "Danny Nedelko", Album: "Joy as an Act of Resistance", ArtURL: "https://img.example/u2.png"}
}

func TestTick_SameTrackIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{script: []fetchResult{{track: trackA()}}}
	cache := &fakeCache{}
	presenter := &fakePresenter{}
	r := newTestReconciler(fetcher, cache, presenter, true)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		r.Tick(ctx)
	}

	if len(presenter.shows) != 1 {
		t.Errorf("Show called %d times, want 1", len(presenter.shows))
	}
	if cache.downloads != 1 {
		t.Errorf("art downloaded %d times, want 1", cache.downloads)
	}
	if len(cache.calls) != 1 {
		t.Errorf("cache consulted %d times, want 1 (no network on steady state)", len(cache.calls))
	}
}

func TestTick_ArtURLOnlyChangeIsNoOp(t *testing.T) {
	changedArt := trackA()
	changedArt.ArtURL = "https://img.example/u1-other-cdn.png"

	fetcher := &fakeFetcher{script: []fetchResult{
		{track: trackA()},
		{track: changedArt},
	}}
	cache := &fakeCache{}
	presenter := &fakePresenter{}
	r := newTestReconciler(fetcher, cache, presenter, true)

	ctx := context.Background()
	r.Tick(ctx)
	r.Tick(ctx)

	if len(presenter.shows) != 1 {
		t.Errorf("Show called %d times, want 1 (art URL change alone must not redisplay)", len(presenter.shows))
	}
	if cache.downloads != 1 {
		t.Errorf("art downloaded %d times, want 1", cache.downloads)
	}
}

func TestTick_NothingPlayingClearsOnce(t *testing.T) {
	fetcher := &fakeFetcher{script: []fetchResult{
		{track: trackA()},
		{track: nil},
		{track: nil},
		{track: nil},
	}}
	cache := &fakeCache{}
	presenter := &fakePresenter{}
	r := newTestReconciler(fetcher, cache, presenter, true)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		r.Tick(ctx)
	}

	if presenter.hides != 1 {
		t.Errorf("Hide called %d times, want exactly 1", presenter.hides)
	}
	if r.state.Showing() {
		t.Error("state still Showing after nothing-playing ticks")
	}
}

func TestTick_IdleNothingPlayingIsNoOp(t *testing.T) {
	fetcher := &fakeFetcher{script: []fetchResult{{track: nil}}}
	cache := &fakeCache{}
	presenter := &fakePresenter{}
	r := newTestReconciler(fetcher, cache, presenter, true)

	ctx := context.Background()
	r.Tick(ctx)
	r.Tick(ctx)

	if presenter.hides != 0 {
		t.Errorf("Hide called %d times while already Idle, want 0", presenter.hides)
	}
	if len(presenter.shows) != 0 {
		t.Errorf("Show called %d times, want 0", len(presenter.shows))
	}
}

func TestTick_FullScenario(t *testing.T) {
	// tick1: A → Showing(A), one download
	// tick2: A → no-op
	// tick3: B → one more download, display update
	// tick4: nil → hide, Idle
	// tick5: nil → no-op
	fetcher := &fakeFetcher{script: []fetchResult{
		{track: trackA()},
		{track: trackA()},
		{track: trackB()},
		{track: nil},
		{track: nil},
	}}
	cache := &fakeCache{}
	presenter := &fakePresenter{}
	r := newTestReconciler(fetcher, cache, presenter, true)

	ctx := context.Background()

	r.Tick(ctx)
	if !r.state.Showing() || cache.downloads != 1 || len(presenter.shows) != 1 {
		t.Fatalf("after tick1: showing=%v downloads=%d shows=%d", r.state.Showing(), cache.downloads, len(presenter.shows))
	}

	r.Tick(ctx)
	if cache.downloads != 1 || len(presenter.shows) != 1 || len(cache.calls) != 1 {
		t.Fatalf("after tick2 (same track): downloads=%d shows=%d cacheCalls=%d, want all unchanged",
			cache.downloads, len(presenter.shows), len(cache.calls))
	}

	r.Tick(ctx)
	if cache.downloads != 2 || len(presenter.shows) != 2 {
		t.Fatalf("after tick3 (track B): downloads=%d shows=%d", cache.downloads, len(presenter.shows))
	}
	if got := presenter.shows[1].track.Title; got != "Danny Nedelko" {
		t.Errorf("displayed track = %q, want Danny Nedelko", got)
	}
	if last := cache.calls[1]; last.lastURL != trackA().ArtURL {
		t.Errorf("Ensure lastURL = %q, want previous track's art URL", last.lastURL)
	}

	r.Tick(ctx)
	if presenter.hides != 1 || r.state.Showing() {
		t.Fatalf("after tick4 (nothing): hides=%d showing=%v", presenter.hides, r.state.Showing())
	}

	r.Tick(ctx)
	if presenter.hides != 1 {
		t.Errorf("after tick5 (still nothing): hides=%d, want 1", presenter.hides)
	}
}

func TestTick_NoArtModeNeverTouchesCache(t *testing.T) {
	fetcher := &fakeFetcher{script: []fetchResult{
		{track: trackA()},
		{track: trackB()},
	}}
	cache := &fakeCache{}
	presenter := &fakePresenter{}
	r := newTestReconciler(fetcher, cache, presenter, false)

	ctx := context.Background()
	r.Tick(ctx)
	r.Tick(ctx)

	if len(cache.calls) != 0 {
		t.Errorf("cache consulted %d times in no-art mode, want 0", len(cache.calls))
	}
	if len(presenter.shows) != 2 {
		t.Errorf("Show called %d times, want 2", len(presenter.shows))
	}
	for _, s := range presenter.shows {
		if s.artPath != "" {
			t.Errorf("art path %q passed to presenter in no-art mode", s.artPath)
		}
	}
}

func TestTick_TransientErrorKeepsState(t *testing.T) {
	fetcher := &fakeFetcher{script: []fetchResult{
		{track: trackA()},
		{err: &lastfm.Error{Code: lastfm.ErrCodeTempUnavailable, Message: "down"}},
		{err: errors.New("connection refused")},
		{track: trackA()},
	}}
	cache := &fakeCache{}
	presenter := &fakePresenter{}
	r := newTestReconciler(fetcher, cache, presenter, true)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		r.Tick(ctx)
	}

	if !r.state.Showing() {
		t.Error("state lost across transient errors")
	}
	if len(presenter.shows) != 1 {
		t.Errorf("Show called %d times, want 1 (errors must not redisplay)", len(presenter.shows))
	}
	if presenter.hides != 0 {
		t.Errorf("Hide called %d times during errors, want 0", presenter.hides)
	}
}

func TestTick_AuthErrorDoesNotStopLoop(t *testing.T) {
	fetcher := &fakeFetcher{script: []fetchResult{
		{err: &lastfm.Error{Code: lastfm.ErrCodeInvalidAPIKey, Message: "Invalid API key"}},
		{track: trackA()},
	}}
	cache := &fakeCache{}
	presenter := &fakePresenter{}
	r := newTestReconciler(fetcher, cache, presenter, true)

	ctx := context.Background()
	r.Tick(ctx)
	r.Tick(ctx)

	if len(presenter.shows) != 1 {
		t.Errorf("Show called %d times, want 1 (loop should recover after auth error)", len(presenter.shows))
	}
}

func TestTick_DownloadFailureDegradesToTextOnly(t *testing.T) {
	fetcher := &fakeFetcher{script: []fetchResult{{track: trackA()}}}
	cache := &fakeCache{err: artcache.ErrDownload}
	presenter := &fakePresenter{}
	r := newTestReconciler(fetcher, cache, presenter, true)

	ctx := context.Background()
	r.Tick(ctx)

	// Track change still displays, just without art.
	if len(presenter.shows) != 1 {
		t.Fatalf("Show called %d times, want 1", len(presenter.shows))
	}
	if presenter.shows[0].artPath != "" {
		t.Errorf("art path = %q after failed download, want empty", presenter.shows[0].artPath)
	}

	// Bookkeeping still updated: the same track on the next tick is a
	// no-op, not a retry storm.
	r.Tick(ctx)
	if len(presenter.shows) != 1 {
		t.Errorf("Show called %d times after repeat tick, want 1", len(presenter.shows))
	}
	if !r.state.Showing() {
		t.Error("lastDisplayed not updated after download failure")
	}
}

func TestTick_DownloadFailureDoesNotPoisonURLTracking(t *testing.T) {
	// A's art downloads fine; B's art fails; a later change to a track
	// sharing B's art URL must re-attempt the download rather than
	// assume the file already matches.
	trackC := &lastfm.Track{Artist: "Someone", Title: "Else", Album: "X", ArtURL: trackB().ArtURL}

	fetcher := &fakeFetcher{script: []fetchResult{
		{track: trackA()},
		{track: trackB()},
		{track: trackC},
	}}
	cache := &fakeCache{}
	presenter := &fakePresenter{}
	r := newTestReconciler(fetcher, cache, presenter, true)

	ctx := context.Background()
	r.Tick(ctx)

	cache.err = artcache.ErrDownload
	r.Tick(ctx)

	cache.err = nil
	r.Tick(ctx)

	last := cache.calls[len(cache.calls)-1]
	if last.lastURL == trackB().ArtURL {
		t.Errorf("lastURL = %q after failed download of that URL; stale file would be reused", last.lastURL)
	}
	if cache.downloads != 2 {
		t.Errorf("downloads = %d, want 2 (A once, C's retry of B's URL once)", cache.downloads)
	}
}

func TestNew_ClampsInterval(t *testing.T) {
	r := New(Config{Interval: 100 * time.Millisecond}, &fakeFetcher{script: []fetchResult{{}}}, &fakeCache{}, &fakePresenter{}, zerolog.Nop())
	if r.cfg.Interval != time.Second {
		t.Errorf("interval = %v, want clamped to 1s", r.cfg.Interval)
	}
}

// runUntilCancelled starts Run, lets the immediate first tick land,
// cancels, and waits for a clean return.
func runUntilCancelled(t *testing.T, r *Reconciler) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v on clean shutdown, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestRun_ShutdownRemovesArtFile(t *testing.T) {
	artPath := filepath.Join(t.TempDir(), "art.png")
	if err := os.WriteFile(artPath, []byte("cached art"), 0644); err != nil {
		t.Fatalf("seed art file: %v", err)
	}

	fetcher := &fakeFetcher{script: []fetchResult{{track: trackA()}}}
	r := New(Config{
		Interval:   3 * time.Second,
		ArtPath:    artPath,
		ArtEnabled: true,
	}, fetcher, &fakeCache{}, &fakePresenter{}, zerolog.Nop())

	runUntilCancelled(t, r)

	if _, err := os.Stat(artPath); !os.IsNotExist(err) {
		t.Errorf("art file still present after shutdown (stat err: %v)", err)
	}
}

func TestRun_ShutdownWithMissingArtFileIsQuiet(t *testing.T) {
	// Art enabled but nothing was ever downloaded: shutdown must not
	// complain about the absent file.
	artPath := filepath.Join(t.TempDir(), "art.png")

	var logBuf bytes.Buffer
	logger := zerolog.New(&logBuf)

	fetcher := &fakeFetcher{script: []fetchResult{{track: nil}}}
	r := New(Config{
		Interval:   3 * time.Second,
		ArtPath:    artPath,
		ArtEnabled: true,
	}, fetcher, &fakeCache{}, &fakePresenter{}, logger)

	runUntilCancelled(t, r)

	if strings.Contains(logBuf.String(), "Failed to remove") {
		t.Errorf("shutdown logged a removal failure for a missing file:\n%s", logBuf.String())
	}
}

func TestRun_CleanShutdownHidesAndStops(t *testing.T) {
	fetcher := &fakeFetcher{script: []fetchResult{{track: trackA()}}}
	cache := &fakeCache{}
	presenter := &fakePresenter{}
	r := newTestReconciler(fetcher, cache, presenter, false)

	// The immediate first tick shows track A; then interrupt.
	runUntilCancelled(t, r)

	if presenter.hides != 1 {
		t.Errorf("Hide called %d times during shutdown, want 1", presenter.hides)
	}
	if r.state.Showing() {
		t.Error("state still Showing after shutdown")
	}
}
