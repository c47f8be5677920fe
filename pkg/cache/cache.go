// Package cache stores traversal reports keyed by input and options.
//
// Three backends implement [Cache]:
//   - [FileCache] stores entries as files, for the CLI
//   - [RedisCache] stores entries in Redis, for the HTTP server
//   - [NullCache] stores nothing, for --no-cache and tests
//
// Keys are built with [ReportKey] so that the same input traversed with
// the same options maps to the same entry. [Scoped] prefixes every key,
// which lets several servers share one Redis instance.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is reported
	// as a miss with a nil error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// keyType returns the prefix of a key built by hashKey, used to label
// observability events.
func keyType(key string) string {
	if i := strings.LastIndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
