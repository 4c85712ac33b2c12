package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every upstream request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when the upstream reports a package as missing.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned when an upstream could not be reached (timeouts, connection errors).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with the given timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// NormalizePkgName converts a raw package identifier to its canonical form:
// surrounding whitespace trimmed and lowercased. An empty result means the
// input is not a usable name.
func NormalizePkgName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// EscapePath percent-encodes a package name for use as one URL path segment.
// Scoped names keep their "@" but the "/" separator is encoded.
func EscapePath(name string) string {
	return url.PathEscape(name)
}
