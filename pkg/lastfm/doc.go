// Package lastfm provides a client library for the read side of the
// Last.fm API 2.0.
//
// # Overview
//
// This package implements a Go client for the Last.fm JSON API,
// focusing on the unauthenticated user queries: what a user is playing
// right now. It provides a small, type-safe API with context support
// and structured errors.
//
// # Quick Start
//
// Create a client with an API key and the username to watch:
//
//	import "github.com/soehlert/tunedisplay/pkg/lastfm"
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey:   "your-api-key",
//	    Username: "some-user",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Querying
//
// The now-playing query returns a *Track, or nil when nothing is
// playing:
//
//	track, err := client.User().NowPlaying(ctx)
//	if err != nil {
//	    // handle
//	}
//	if track == nil {
//	    fmt.Println("nothing playing")
//	} else {
//	    fmt.Println(track)
//	}
//
// # Error Handling
//
// The package provides structured errors with classification helpers:
//
//	track, err := client.User().NowPlaying(ctx)
//	if err != nil {
//	    switch {
//	    case lastfm.IsAuthError(err):
//	        // credentials are wrong; will repeat until fixed
//	    case lastfm.IsTransient(err):
//	        // network or service hiccup; try again later
//	    default:
//	        // malformed response (wraps lastfm.ErrMalformedResponse)
//	    }
//	}
//
// # Context Support
//
// All API methods accept a context.Context for cancellation and
// timeouts:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	track, err := client.User().NowPlaying(ctx)
//
// # Configuration
//
// The client can be configured with custom HTTP clients, base URLs
// (for testing), and optional loggers:
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey:     "your-api-key",
//	    Username:   "some-user",
//	    HTTPClient: &http.Client{Timeout: 5 * time.Second},
//	    Logger:     myLogger, // Implements lastfm.Logger interface
//	})
//
// # API Coverage
//
// Currently implemented:
//   - user.getRecentTracks (now-playing detection)
//
// # Last.fm API Documentation
//
// For more information about the Last.fm API:
// https://www.last.fm/api/show/user.getRecentTracks
package lastfm
