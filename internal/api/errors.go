package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// The error taxonomy is closed: every failure leaving this package is one
// of the types below (or a context error). Callers match with errors.As
// and decide the fallback policy; the client itself never retries.

// NetworkError covers timeouts, refused connections and cancelled
// requests. It signals remote unavailability rather than a remote
// decision, so the caller may absorb it with a local fallback.
type NetworkError struct {
	Op  string // "analyze", "extract", "news", "chat", "health"
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Canceled reports whether the failure came from the caller's context.
func (e *NetworkError) Canceled() bool {
	return errors.Is(e.Err, context.Canceled)
}

// ServerError is a non-2xx response that is not 401 or 429.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error during %s: %d (%s)", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error during %s: %d", e.Op, e.StatusCode)
}

// Transient reports whether the status indicates remote unavailability
// (500 or 503) rather than a request the server rejected on purpose.
func (e *ServerError) Transient() bool {
	return e.StatusCode == http.StatusInternalServerError ||
		e.StatusCode == http.StatusServiceUnavailable
}

// AuthenticationError is a 401. Never absorbed by fallback.
type AuthenticationError struct {
	Op string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed during %s", e.Op)
}

// RateLimitedError is a 429. The caller owns any backoff policy.
type RateLimitedError struct {
	Op         string
	RetryAfter string // Raw Retry-After header, if present
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter != "" {
		return fmt.Sprintf("rate limited during %s (retry after %s)", e.Op, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited during %s", e.Op)
}

// CrawlerError is a URL extraction failure reported by the backend.
type CrawlerError struct {
	URL string
	Err error
}

func (e *CrawlerError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.URL, e.Err)
}

func (e *CrawlerError) Unwrap() error { return e.Err }

// IsUnavailability reports whether err means the remote service cannot be
// reached or is failing, i.e. the one class of errors the analysis facade
// absorbs by falling back to a local result.
func IsUnavailability(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return !netErr.Canceled()
	}
	var srvErr *ServerError
	if errors.As(err, &srvErr) {
		return srvErr.Transient()
	}
	return false
}
