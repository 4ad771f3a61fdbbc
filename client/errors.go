package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUpstreamDown is returned when a host's circuit breaker is open.
var ErrUpstreamDown = errors.New("upstream unavailable")

// HTTPError represents a non-2xx HTTP response.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error represents a 404 response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is, or wraps, an *HTTPError with status 404.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.IsNotFound()
}
