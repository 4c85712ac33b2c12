// Package cache provides the byte-level backing cache used behind the
// request coordinators.
//
// # Overview
//
// The coordinators in [fetch] keep decoded results in memory for the life of
// the process. A [Cache] sits behind that layer so several pkgtrack processes
// (for example a CLI and a server) can share upstream responses:
//
//   - [NullCache]: never stores anything (the default)
//   - [MemoryCache]: in-process map with TTL, useful for tests and servers
//   - [RedisCache]: shared Redis instance via go-redis
//
// Keys are produced by a [Keyer] so that every backend uses the same layout.
//
// [fetch]: github.com/matzehuels/pkgtrack/pkg/fetch
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a cache that has been closed.
var ErrClosed = errors.New("cache closed")

// Cache stores opaque byte payloads under string keys.
type Cache interface {
	// Get returns the payload for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Flusher is implemented by caches that can drop every key under a prefix.
type Flusher interface {
	// Flush deletes all keys starting with prefix and reports how many were removed.
	Flush(ctx context.Context, prefix string) (int, error)
}
