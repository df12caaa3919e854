package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/errors"
)

// FileStore is a file-based snapshot store for CLI usage.
// Snapshots are stored as JSON files in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based snapshot store.
// If baseDir is empty, defaults to ~/.config/stirlingforge/designs/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "stirlingforge", "designs")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create design dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) snapshotPath(runID string) string {
	return filepath.Join(s.baseDir, runID+".json")
}

func (s *FileStore) Get(ctx context.Context, runID string) (*design.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.snapshotPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(runID)
		}
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read snapshot file")
	}
	snap, err := design.UnmarshalSnapshot(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "parse snapshot %s", runID)
	}
	return snap, nil
}

func (s *FileStore) Set(ctx context.Context, snap *design.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := design.MarshalSnapshot(snap)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "marshal snapshot")
	}
	if err := os.WriteFile(s.snapshotPath(snap.RunID), data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write snapshot file")
	}
	return nil
}

// List returns run IDs sorted by file modification time, newest first.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read design dir")
	}

	type item struct {
		id  string
		mod int64
	}
	items := make([]item, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, item{
			id:  strings.TrimSuffix(entry.Name(), ".json"),
			mod: info.ModTime().UnixNano(),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].mod != items[j].mod {
			return items[i].mod > items[j].mod
		}
		return items[i].id < items[j].id
	})

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.id
	}
	return ids, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for snapshot files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
