// Package artcache downloads album art and keeps a single cached copy
// on disk at a stable path.
//
// The file is replaced atomically (temp file + rename in the same
// directory) because an external viewer may be reading it while a new
// download lands. A failed download never disturbs the previous file.
package artcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

// maxImageSize caps downloads; anything bigger is not album art.
const maxImageSize = 10 * 1024 * 1024 // 10 MB

// ErrDownload is wrapped by all failures to fetch or store art.
var ErrDownload = errors.New("artcache: download failed")

// Result reports what Ensure did.
type Result int

const (
	// ResultSkipped means no download happened: either there was no
	// art URL, or the cached file already corresponds to it.
	ResultSkipped Result = iota

	// ResultDownloaded means fresh art was fetched and written.
	ResultDownloaded
)

// String returns a human-readable representation of the Result
func (r Result) String() string {
	switch r {
	case ResultSkipped:
		return "skipped"
	case ResultDownloaded:
		return "downloaded"
	default:
		return "unknown"
	}
}

// Cache downloads art images over HTTP into a local file.
type Cache struct {
	client    *http.Client
	userAgent string
	logger    zerolog.Logger
}

// New creates a Cache with a bounded-timeout HTTP client.
func New(userAgent string, logger zerolog.Logger) *Cache {
	return &Cache{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		userAgent: userAgent,
		logger:    logger.With().Str("component", "artcache").Logger(),
	}
}

// Ensure makes the file at destPath hold the image behind artURL.
//
// lastURL is the URL the current file contents were downloaded from
// (empty if unknown). When artURL is empty or equals lastURL the call
// is a no-op and returns ResultSkipped with no network traffic.
//
// On any failure the previous file at destPath is left untouched and
// the returned error wraps ErrDownload.
func (c *Cache) Ensure(ctx context.Context, artURL, lastURL, destPath string) (Result, error) {
	if artURL == "" {
		return ResultSkipped, nil
	}
	if artURL == lastURL {
		c.logger.Debug().Str("url", artURL).Msg("Art already cached")
		return ResultSkipped, nil
	}

	data, err := c.fetch(ctx, artURL)
	if err != nil {
		return ResultSkipped, fmt.Errorf("%w: %v", ErrDownload, err)
	}

	// Make sure the bytes are actually a decodable image before they
	// replace a known-good file.
	if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
		return ResultSkipped, fmt.Errorf("%w: decoding image: %v", ErrDownload, err)
	}

	if err := writeAtomic(destPath, data); err != nil {
		return ResultSkipped, fmt.Errorf("%w: %v", ErrDownload, err)
	}

	c.logger.Debug().
		Str("url", artURL).
		Str("path", destPath).
		Int("bytes", len(data)).
		Msg("Art downloaded")

	return ResultDownloaded, nil
}

// fetch downloads the image bytes from url.
func (c *Cache) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("url is not an image: %s", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return data, nil
}

// writeAtomic replaces path with data via a temp file in the same
// directory, so readers never observe a half-written image.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return nil
}
