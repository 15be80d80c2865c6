package lastfm

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Error represents a Last.fm API error.
//
// The Error type provides structured error information including
// the Last.fm error code and message. It implements error, and
// provides additional methods for classifying the failure.
type Error struct {
	Code    int    // Last.fm error code
	Message string // Error message from Last.fm
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("lastfm: error %d: %s", e.Code, e.Message)
}

// Is checks if the target error is a Last.fm error with the same code.
//
// This allows errors.Is() to work with *Error types.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Temporary returns true if the error is temporary and the call is
// worth repeating on a later poll.
//
// The following Last.fm error codes are considered temporary:
//   - 8: Operation Failed - backend error, try again
//   - 11: Service Offline - temporarily unavailable
//   - 16: Service Temporarily Unavailable
//   - 29: Rate Limit Exceeded
func (e *Error) Temporary() bool {
	switch e.Code {
	case ErrCodeOperationFailed,
		ErrCodeServiceOffline,
		ErrCodeTempUnavailable,
		ErrCodeRateLimitExceeded:
		return true
	default:
		return false
	}
}

// Auth returns true if the error indicates invalid credentials.
//
// Callers polling in a loop should log these loudly: the same failure
// will repeat every tick until the API key is fixed.
func (e *Error) Auth() bool {
	switch e.Code {
	case ErrCodeAuthenticationFailed,
		ErrCodeInvalidSessionKey,
		ErrCodeInvalidAPIKey,
		ErrCodeSuspendedAPIKey:
		return true
	default:
		return false
	}
}

// Common Last.fm error codes.
const (
	ErrCodeInvalidService       = 2
	ErrCodeInvalidMethod        = 3
	ErrCodeAuthenticationFailed = 4
	ErrCodeInvalidFormat        = 5
	ErrCodeInvalidParameters    = 6
	ErrCodeInvalidResourceSpec  = 7
	ErrCodeOperationFailed      = 8
	ErrCodeInvalidSessionKey    = 9
	ErrCodeInvalidAPIKey        = 10
	ErrCodeServiceOffline       = 11
	ErrCodeSubscribersOnly      = 12
	ErrCodeSuspendedAPIKey      = 26
	ErrCodeRateLimitExceeded    = 29

	// ErrCodeTempUnavailable is returned when the service is up but
	// briefly refusing requests.
	ErrCodeTempUnavailable = 16
)

// ErrMalformedResponse is returned when the API responds with a body
// that does not match the documented shape. Wrapped errors carry the
// parse detail.
var ErrMalformedResponse = errors.New("lastfm: malformed response")

// IsAuthError reports whether err is a Last.fm credentials failure.
func IsAuthError(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Auth()
	}
	return false
}

// IsTransient reports whether err is worth retrying on a later poll:
// network failures, timeouts, server errors, and temporary API errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	return false
}
