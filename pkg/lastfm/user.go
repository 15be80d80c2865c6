package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// UserService exposes read-only queries about a Last.fm user.
type UserService struct {
	client *Client
}

// NowPlaying returns the track the user is playing right now, or nil
// if nothing is playing.
//
// A nil track is not an error: it is the normal answer whenever the
// user's player is stopped or the most recent scrobble has finished.
//
// Classify failures with IsAuthError and IsTransient; anything else is
// a malformed response and wraps ErrMalformedResponse.
func (s *UserService) NowPlaying(ctx context.Context) (*Track, error) {
	body, err := s.client.get(ctx, "user.getrecenttracks", map[string]string{
		"user":  s.client.username,
		"limit": "1",
	})
	if err != nil {
		return nil, err
	}

	var resp recentTracksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	tracks := resp.RecentTracks.Track
	if len(tracks) == 0 {
		return nil, nil
	}

	latest := tracks[0]
	if latest.Attr.NowPlaying != "true" {
		// Most recent track is a finished scrobble, not a live play.
		return nil, nil
	}

	return &Track{
		Artist: latest.Artist.Text,
		Title:  latest.Name,
		Album:  latest.Album.Text,
		ArtURL: pickArtURL(latest.Image),
	}, nil
}

// pickArtURL selects the best art URL from the image list.
// Prefers the "extralarge" rendition, falling back to the last
// non-empty entry (Last.fm orders sizes ascending).
func pickArtURL(images []trackImage) string {
	for _, img := range images {
		if img.Size == "extralarge" && img.URL != "" {
			return img.URL
		}
	}
	for i := len(images) - 1; i >= 0; i-- {
		if images[i].URL != "" {
			return images[i].URL
		}
	}
	return ""
}

// get makes a single GET request to the Last.fm JSON API.
//
// No retries happen here: callers of this package poll on an interval,
// and that interval is the backoff. Responses carrying an API error
// body are surfaced as *Error regardless of HTTP status, since Last.fm
// reports some failures with a 200.
func (c *Client) get(ctx context.Context, method string, params map[string]string) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	query.Set("method", method)
	query.Set("api_key", c.apiKey)
	query.Set("format", "json")

	c.logDebugf("lastfm: calling %s", method)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// An error body takes precedence over the status code.
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		return nil, &Error{Code: apiErr.Error, Message: apiErr.Message}
	}

	if resp.StatusCode >= 500 {
		return nil, &Error{Code: ErrCodeTempUnavailable, Message: resp.Status}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrMalformedResponse, resp.StatusCode)
	}

	c.logDebugf("lastfm: %s succeeded", method)
	return body, nil
}
