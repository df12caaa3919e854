package backend

import (
	"context"
	"fmt"
	"testing"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/errors"
)

func fixtures() ([]design.ComponentSpec, []design.Placement) {
	specs := []design.ComponentSpec{
		{ID: "frame", Shape: design.ShapePlate, Quantity: 1},
		{ID: "crankshaft", Shape: design.ShapeCompound, Quantity: 1},
		{ID: "flywheel", Shape: design.ShapeDisc, Quantity: 1},
	}
	placements := make([]design.Placement, len(specs))
	for i, s := range specs {
		placements[i] = design.Placement{ComponentID: s.ID, Orientation: design.Identity()}
	}
	return specs, placements
}

func TestNullDeterministicHandles(t *testing.T) {
	b := NewNull()
	specs, placements := fixtures()

	first, errs := BuildAll(context.Background(), b, specs, placements)
	if len(errs) != 0 {
		t.Fatalf("null backend should not fail: %v", errs)
	}
	second, _ := BuildAll(context.Background(), b, specs, placements)

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("handle %d differs across runs: %+v vs %+v", i, first[i], second[i])
		}
		if first[i].Handle != "null:"+specs[i].ID {
			t.Errorf("handle = %q, want null:%s", first[i].Handle, specs[i].ID)
		}
	}
}

func TestBuildAllToleratesPerComponentFailure(t *testing.T) {
	rec := NewRecording(nil)
	rec.Fail = map[string]error{"crankshaft": fmt.Errorf("kernel rejected sweep")}
	specs, placements := fixtures()

	refs, errs := BuildAll(context.Background(), rec, specs, placements)
	if len(refs) != len(placements) {
		t.Fatalf("got %d refs, want one per placement (%d)", len(refs), len(placements))
	}
	if len(errs) != 1 {
		t.Fatalf("got %d failures, want 1: %v", len(errs), errs)
	}
	if !errors.Is(errs[0], errors.ErrCodeGeometryBackend) {
		t.Errorf("failure should be GEOMETRY_BACKEND, got %v", errs[0])
	}

	// The failing component carries its error; the rest still built.
	for _, ref := range refs {
		if ref.ComponentID == "crankshaft" {
			if ref.Handle != "" || ref.Error == "" {
				t.Errorf("failed component ref = %+v", ref)
			}
			continue
		}
		if ref.Handle == "" || ref.Error != "" {
			t.Errorf("component %s should have built, got %+v", ref.ComponentID, ref)
		}
	}
}

func TestRecordingKeepsCallOrder(t *testing.T) {
	rec := NewRecording(nil)
	specs, placements := fixtures()
	if _, errs := BuildAll(context.Background(), rec, specs, placements); len(errs) != 0 {
		t.Fatal(errs)
	}

	calls := rec.Calls()
	if len(calls) != len(placements) {
		t.Fatalf("recorded %d calls, want %d", len(calls), len(placements))
	}
	for i, c := range calls {
		if c.Spec.ID != placements[i].ComponentID {
			t.Errorf("call %d built %q, want %q", i, c.Spec.ID, placements[i].ComponentID)
		}
	}
}

func TestBuildAllUnknownComponent(t *testing.T) {
	specs, _ := fixtures()
	placements := []design.Placement{{ComponentID: "ghost", Orientation: design.Identity()}}

	refs, errs := BuildAll(context.Background(), NewNull(), specs, placements)
	if len(refs) != 1 || refs[0].Error == "" {
		t.Fatalf("unknown component should yield an errored ref, got %+v", refs)
	}
	if len(errs) != 1 || !errors.Is(errs[0], errors.ErrCodeGeometryBackend) {
		t.Errorf("want GEOMETRY_BACKEND, got %v", errs)
	}
}
