package design

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mvollan/stirlingforge/pkg/formula"
	"github.com/mvollan/stirlingforge/pkg/params"
)

// Snapshot is the finished design record emitted by a successful run: one
// immutable bundle of everything the pipeline computed. Fatal failures
// produce no snapshot; non-fatal catalog issues leave Warnings set on an
// otherwise complete snapshot.
type Snapshot struct {
	RunID     string    `json:"run_id" bson:"run_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Parameters []params.Parameter `json:"parameters" bson:"parameters"`
	Derived    []formula.Value    `json:"derived" bson:"derived"`
	Metrics    []Metric           `json:"metrics" bson:"metrics"`
	Components []ComponentSpec    `json:"components" bson:"components"`
	Placements []Placement        `json:"placements" bson:"placements"`
	Bodies     []BodyRef          `json:"bodies,omitempty" bson:"bodies,omitempty"`
	Verdicts   []Verdict          `json:"verdicts" bson:"verdicts"`
	BOM        []BOMEntry         `json:"bom" bson:"bom"`

	// PhaseOffsetDeg is the kinematic policy's metadata stub: the intended
	// phase offset between the reciprocating components. No motion data is
	// derived from it.
	PhaseOffsetDeg float64 `json:"phase_offset_deg" bson:"phase_offset_deg"`

	Warnings []string `json:"warnings,omitempty" bson:"warnings,omitempty"`
}

// Metric returns the named performance metric and whether it exists.
func (s *Snapshot) Metric(name string) (Metric, bool) {
	for _, m := range s.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Placement returns the placement for a component ID and whether it exists.
func (s *Snapshot) Placement(componentID string) (Placement, bool) {
	for _, p := range s.Placements {
		if p.ComponentID == componentID {
			return p, true
		}
	}
	return Placement{}, false
}

// Verdict returns the manufacturability verdict for a component ID.
func (s *Snapshot) Verdict(componentID string) (Verdict, bool) {
	for _, v := range s.Verdicts {
		if v.ComponentID == componentID {
			return v, true
		}
	}
	return Verdict{}, false
}

// MarshalSnapshot serializes a snapshot as indented JSON. Field and slice
// order is fixed, so identical runs marshal byte-identically.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalSnapshot deserializes JSON bytes to a snapshot.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}
