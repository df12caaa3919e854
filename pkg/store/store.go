// Package store persists design snapshots.
//
// Three backends implement the Store interface:
//   - file: JSON files under a config directory, the CLI default
//   - redis: Redis-backed storage for the HTTP service
//   - mongo: MongoDB-backed storage for the HTTP service
//
// Open dispatches on the DSN scheme so callers select a backend with a flag
// (`--store redis://localhost:6379`) rather than code.
package store

import (
	"context"
	"strings"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/errors"
)

// Store is the interface for snapshot storage backends.
type Store interface {
	// Get retrieves a snapshot by run ID.
	// Returns SNAPSHOT_NOT_FOUND if no snapshot has that ID.
	Get(ctx context.Context, runID string) (*design.Snapshot, error)

	// Set stores a snapshot under its run ID.
	Set(ctx context.Context, snap *design.Snapshot) error

	// List returns the stored run IDs, newest first.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// Open creates a store from a DSN. An empty DSN or a bare path selects the
// file store; redis:// and mongodb:// select the corresponding backend.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case dsn == "" || strings.HasPrefix(dsn, "file://"):
		return NewFileStore(strings.TrimPrefix(dsn, "file://"))
	case strings.HasPrefix(dsn, "redis://") || strings.HasPrefix(dsn, "rediss://"):
		return NewRedisStore(ctx, dsn)
	case strings.HasPrefix(dsn, "mongodb://") || strings.HasPrefix(dsn, "mongodb+srv://"):
		return NewMongoStore(ctx, dsn)
	default:
		// No scheme: treat as a directory for the file store.
		if !strings.Contains(dsn, "://") {
			return NewFileStore(dsn)
		}
		return nil, errors.New(errors.ErrCodeInvalidOptions, "unsupported store DSN %q", dsn)
	}
}

// notFound builds the shared lookup-failure error.
func notFound(runID string) error {
	return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", runID)
}
