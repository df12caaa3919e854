// Package layout assigns each component a placement in global space.
//
// Two policies exist. The scatter policy (primary) spreads components apart
// for inspection using deterministic formulas over the derived dimensions:
// cylinders stack symmetrically about the Y=0 plane, pistons float above
// their cylinders, and the crank and flywheel sit above the taller of the
// two strokes. The work side is always the negative-offset side, so reruns
// with identical parameters reproduce identical coordinates.
//
// The kinematic policy is a metadata stub: it records the intended phase
// offset between the reciprocating components and nothing else. It never
// computes joints or time-varying positions.
//
// The scatter policy's defining contract is the non-overlap invariant:
// after placement the engine verifies that every pair of transformed
// bounding boxes has disjoint interiors and fails with LAYOUT_OVERLAP,
// naming the offending pair, rather than emit an interpenetrating design.
package layout

import (
	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/errors"
	"github.com/mvollan/stirlingforge/pkg/formula"
	"github.com/mvollan/stirlingforge/pkg/geometry"
	"github.com/mvollan/stirlingforge/pkg/params"
)

// Policy names a placement policy.
type Policy string

const (
	// PolicyScatter spaces components apart for inspection.
	PolicyScatter Policy = "scatter"
	// PolicyKinematic is a metadata-only stub recording a phase offset.
	PolicyKinematic Policy = "kinematic"
)

// Kinematic is the kinematic policy's entire output.
type Kinematic struct {
	PhaseOffsetDeg float64 `json:"phase_offset_deg" bson:"phase_offset_deg"`
}

// KinematicStub reads the phase offset parameter. No motion data is derived.
func KinematicStub(reg *params.Registry) (Kinematic, error) {
	p, ok := reg.Get("phase_offset")
	if !ok {
		return Kinematic{}, errors.New(errors.ErrCodeMissingInput, "kinematic stub: parameter %q not registered", "phase_offset")
	}
	return Kinematic{PhaseOffsetDeg: p.Value}, nil
}

// about90X is the quarter turn about the X axis used to lay the crankshaft
// along the global Y axis.
var about90X = design.Orientation{Axis: design.Vec3{X: 1}, Angle: 90}

// Scatter places every component and verifies the non-overlap invariant.
// Components are placed in dependency order: frame first, cylinders before
// pistons, crank before flywheel and linkage.
func Scatter(reg *params.Registry, derived map[string]formula.Value, specs []design.ComponentSpec) ([]design.Placement, error) {
	need := []string{
		"base_thickness", "scatter_gap", "cylinder_separation",
		"displacer_cylinder_length", "power_cylinder_length",
		"displacer_piston_length", "power_piston_length",
		"power_stroke", "displacer_stroke",
		"crank_web_diameter", "flywheel_diameter",
	}
	d := make(map[string]float64, len(need))
	for _, n := range need {
		v, err := geometry.Lookup(reg, derived, n)
		if err != nil {
			return nil, err
		}
		d[n] = v
	}

	frameTop := d["base_thickness"]
	gap := d["scatter_gap"]
	halfSep := d["cylinder_separation"] / 2

	maxStroke := d["power_stroke"]
	if d["displacer_stroke"] > maxStroke {
		maxStroke = d["displacer_stroke"]
	}

	dcylZ := frameTop + gap + d["displacer_cylinder_length"]/2
	pcylZ := frameTop + gap + d["power_cylinder_length"]/2
	crankZ := frameTop + gap + maxStroke + d["crank_web_diameter"]/2
	wheelX := d["flywheel_diameter"]/2 + gap

	// Position formulas keyed by component ID. The displacer (hot) side is
	// the work side and always takes the negative offset.
	positions := map[string]design.Placement{
		geometry.CompFrame: {
			Position: design.Vec3{Z: d["base_thickness"] / 2}, Orientation: design.Identity(),
		},
		geometry.CompDisplacerCylinder: {
			Position: design.Vec3{Y: -halfSep, Z: dcylZ}, Orientation: design.Identity(),
		},
		geometry.CompPowerCylinder: {
			Position: design.Vec3{Y: +halfSep, Z: pcylZ}, Orientation: design.Identity(),
		},
		geometry.CompDisplacerPiston: {
			Position: design.Vec3{
				Y: -halfSep,
				Z: dcylZ + (d["displacer_cylinder_length"]+d["displacer_piston_length"])/2 + gap,
			},
			Orientation: design.Identity(),
		},
		geometry.CompPowerPiston: {
			Position: design.Vec3{
				Y: +halfSep,
				Z: pcylZ + (d["power_cylinder_length"]+d["power_piston_length"])/2 + gap,
			},
			Orientation: design.Identity(),
		},
		geometry.CompCrankshaft: {
			Position: design.Vec3{Z: crankZ}, Orientation: about90X,
		},
		geometry.CompFlywheel: {
			Position: design.Vec3{X: -wheelX, Z: crankZ}, Orientation: design.Identity(),
		},
		geometry.CompConrod: {
			Position: design.Vec3{X: +wheelX, Z: crankZ}, Orientation: design.Identity(),
		},
	}

	placements := make([]design.Placement, 0, len(specs))
	for _, spec := range specs {
		p, ok := positions[spec.ID]
		if !ok {
			return nil, errors.New(errors.ErrCodeMissingInput, "scatter: no placement formula for component %q", spec.ID)
		}
		p.ComponentID = spec.ID
		placements = append(placements, p)
	}

	if err := VerifyNonOverlap(specs, placements); err != nil {
		return nil, err
	}
	return placements, nil
}

// VerifyNonOverlap checks that the transformed bounding boxes of all placed
// components have pairwise disjoint interiors. On violation it returns
// LAYOUT_OVERLAP naming the offending pair.
func VerifyNonOverlap(specs []design.ComponentSpec, placements []design.Placement) error {
	byID := make(map[string]design.ComponentSpec, len(specs))
	for _, s := range specs {
		byID[s.ID] = s
	}

	boxes := make([]AABB, len(placements))
	for i, p := range placements {
		spec, ok := byID[p.ComponentID]
		if !ok {
			return errors.New(errors.ErrCodeMissingInput, "placement references unknown component %q", p.ComponentID)
		}
		boxes[i] = WorldAABB(spec, p)
	}

	for i := range placements {
		for j := i + 1; j < len(placements); j++ {
			if boxes[i].Overlaps(boxes[j]) {
				return errors.New(errors.ErrCodeLayoutOverlap,
					"components %q and %q overlap", placements[i].ComponentID, placements[j].ComponentID)
			}
		}
	}
	return nil
}
