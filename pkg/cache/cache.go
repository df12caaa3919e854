// Package cache provides stage-result caching for the design pipeline.
//
// Keys are derived from the canonical parameter encoding, so a rerun with
// identical parameters can reuse the derived-geometry and layout results
// without recomputing them. The file cache backs the CLI; the null cache is
// the default when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys with an optional TTL.
type Cache interface {
	// Get retrieves a value. The bool reports a hit; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
