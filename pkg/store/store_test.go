package store

import (
	"context"
	"testing"
	"time"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/errors"
	"github.com/mvollan/stirlingforge/pkg/units"
)

func sampleSnapshot(runID string, created time.Time) *design.Snapshot {
	return &design.Snapshot{
		RunID:     runID,
		CreatedAt: created,
		Metrics: []design.Metric{
			{Name: "swept_volume", Value: 1809.56, Unit: units.Volume},
		},
		Components: []design.ComponentSpec{
			{ID: "frame", Shape: design.ShapePlate, Quantity: 1},
		},
		Placements: []design.Placement{
			{ComponentID: "frame", Orientation: design.Identity()},
		},
		PhaseOffsetDeg: 90,
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()

	snap := sampleSnapshot("run-1", time.Now().UTC().Truncate(time.Second))
	if err := s.Set(ctx, snap); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RunID != snap.RunID || got.PhaseOffsetDeg != 90 {
		t.Errorf("round trip lost data: %+v", got)
	}
	if m, ok := got.Metric("swept_volume"); !ok || m.Value != 1809.56 {
		t.Errorf("metric lost in round trip: %+v, %v", m, ok)
	}
}

func TestFileStoreNotFound(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Get(context.Background(), "missing")
	if !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
		t.Fatalf("want SNAPSHOT_NOT_FOUND, got %v", err)
	}
}

func TestFileStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"first", "second", "third"} {
		if err := s.Set(ctx, sampleSnapshot(id, time.Now())); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond) // distinct mtimes
	}

	ids, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("got %d ids, want 3", len(ids))
	}
	if ids[0] != "third" || ids[2] != "first" {
		t.Errorf("ids not newest first: %v", ids)
	}
}

func TestOpenDispatch(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	s, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open(dir): %v", err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("bare path should open a FileStore, got %T", s)
	}
	s.Close()

	if _, err := Open(ctx, "ftp://example.com"); !errors.Is(err, errors.ErrCodeInvalidOptions) {
		t.Errorf("unsupported scheme should be INVALID_OPTIONS, got %v", err)
	}
}
