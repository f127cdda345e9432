// Package cache provides the caching layer for the diagram pipeline:
// parsed graphs, computed layouts, and rendered artifacts are stored by
// content-derived keys so repeated runs over identical input skip work.
//
// Three backends are provided: FileCache for CLI usage, RedisCache for
// the HTTP serve mode, and NullCache to disable caching entirely.
package cache

import (
	"context"
	"time"
)

// TTLs per cached stage. Graphs and layouts are pure functions of their
// keys and could live forever; bounded TTLs keep stale experiments from
// accumulating.
const (
	TTLGraph    = 7 * 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque byte values under string keys with a TTL.
// Implementations must treat missing keys as a miss, not an error.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
