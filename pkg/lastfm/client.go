// Package lastfm provides a client for the read-only parts of the
// Last.fm API 2.0.
//
// This package implements the unauthenticated JSON endpoints used to
// query a user's listening state. It is designed to be used as a
// standalone SDK.
//
// Example usage:
//
//	import "github.com/soehlert/tunedisplay/pkg/lastfm"
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey:   "your-api-key",
//	    Username: "your-username",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	track, err := client.User().NowPlaying(ctx)
package lastfm

import (
	"fmt"
	"net/http"
	"time"
)

// Config holds client configuration.
type Config struct {
	APIKey     string       // Required: Last.fm API key
	Username   string       // Required: Last.fm username to query
	HTTPClient *http.Client // Optional: HTTP client (defaults to a 10s-timeout client)
	BaseURL    string       // Optional: Base URL for API (defaults to Last.fm API, used for testing)
	UserAgent  string       // Optional: User-Agent header (defaults to DefaultUserAgent)
	Logger     Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for Last.fm API operations.
type Client struct {
	apiKey     string
	username   string
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     Logger

	user *UserService
}

const (
	// DefaultBaseURL is the default Last.fm API endpoint.
	DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

	// DefaultUserAgent identifies this client to Last.fm, as their API
	// terms ask of library authors.
	DefaultUserAgent = "tunedisplay/1.0 (https://github.com/soehlert/tunedisplay)"
)

// NewClient creates a new Last.fm API client.
//
// Returns an error if required configuration (APIKey, Username) is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("lastfm: APIKey is required")
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("lastfm: Username is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		username:   cfg.Username,
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		logger:     cfg.Logger,
	}

	c.user = &UserService{client: c}

	return c, nil
}

// User returns the user query service.
func (c *Client) User() *UserService {
	return c.user
}

// Username returns the configured Last.fm username.
func (c *Client) Username() string {
	return c.username
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
