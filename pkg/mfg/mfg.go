// Package mfg validates component envelopes against the machine park and
// enriches the bill of materials from the material catalog.
//
// The checker degrades gracefully: with no machine catalog every verdict is
// "unknown" - validation is skipped, never silently passed and never fatal.
// The same contract applies to BOM enrichment, where a missing material
// catalog yields entries with unknown unit price.
package mfg

import (
	"fmt"
	"math"

	"github.com/mvollan/stirlingforge/pkg/catalog"
	"github.com/mvollan/stirlingforge/pkg/design"
)

// orientations returns the candidate bounding-box orientations the shape
// class permits, as (x, y, z) extents. Plates and discs may be laid on any
// face; cylinders and rods may only be stood upright or laid on their side
// (the two diameter extents stay together); compound parts are checked
// as-modeled only.
func orientations(spec design.ComponentSpec) [][3]float64 {
	l, w, h := spec.Bounds.Length, spec.Bounds.Width, spec.Bounds.Height
	switch spec.Shape {
	case design.ShapePlate, design.ShapeDisc:
		return [][3]float64{
			{l, w, h}, {l, h, w}, {w, l, h}, {w, h, l}, {h, l, w}, {h, w, l},
		}
	case design.ShapeCylinder, design.ShapeRod:
		return [][3]float64{{l, w, h}, {h, w, l}, {l, h, w}}
	default:
		return [][3]float64{{l, w, h}}
	}
}

// turnable reports whether the shape class may be held between centers.
func turnable(s design.ShapeClass) bool {
	switch s {
	case design.ShapeCylinder, design.ShapeRod, design.ShapeDisc:
		return true
	}
	return false
}

// sawable reports whether the shape class can be cut from saw stock.
func sawable(s design.ShapeClass) bool {
	return s == design.ShapePlate || s == design.ShapeRod
}

// fit is the outcome of testing one component against one machine:
// shortfall <= 0 means the component fits; a positive shortfall is the
// smallest amount by which the best orientation still exceeds a limit.
type fit struct {
	shortfall float64
	detail    string
}

// machineFit tests a component against a single machine profile across the
// orientations its shape class permits.
func machineFit(spec design.ComponentSpec, m catalog.MachineProfile) fit {
	switch m.Kind {
	case catalog.KindPrinter, catalog.KindMill:
		if m.Envelope == nil {
			return fit{shortfall: math.Inf(1), detail: "no envelope declared"}
		}
		return envelopeFit(spec, [3]float64{m.Envelope.X, m.Envelope.Y, m.Envelope.Z})

	case catalog.KindLathe:
		if !turnable(spec.Shape) {
			return fit{shortfall: math.Inf(1), detail: fmt.Sprintf("%s stock cannot be turned", spec.Shape)}
		}
		// Long axis between centers, diameter against the swing.
		dia := math.Max(spec.Bounds.Length, spec.Bounds.Width)
		length := spec.Bounds.Height
		short := math.Max(dia-m.SwingDiameterMM, length-m.BetweenCentersMM)
		if short > 0 {
			if dia-m.SwingDiameterMM >= length-m.BetweenCentersMM {
				return fit{shortfall: short, detail: fmt.Sprintf("diameter %.3g mm exceeds swing %.3g mm", dia, m.SwingDiameterMM)}
			}
			return fit{shortfall: short, detail: fmt.Sprintf("length %.3g mm exceeds centers %.3g mm", length, m.BetweenCentersMM)}
		}
		return fit{shortfall: short}

	case catalog.KindSaw:
		if !sawable(spec.Shape) {
			return fit{shortfall: math.Inf(1), detail: fmt.Sprintf("%s stock cannot be sawn", spec.Shape)}
		}
		// The saw cuts stock to length; the two smaller extents must pass
		// the blade's max section.
		dims := spec.Bounds.Dims()
		sortDims(&dims)
		short := dims[1] - m.MaxSectionMM
		if short > 0 {
			return fit{shortfall: short, detail: fmt.Sprintf("section %.3g mm exceeds %.3g mm", dims[1], m.MaxSectionMM)}
		}
		return fit{shortfall: short}
	}
	return fit{shortfall: math.Inf(1), detail: fmt.Sprintf("unknown machine kind %q", m.Kind)}
}

// envelopeFit finds the orientation with the smallest worst-axis shortfall.
func envelopeFit(spec design.ComponentSpec, limit [3]float64) fit {
	best := fit{shortfall: math.Inf(1)}
	for _, dims := range orientations(spec) {
		worst := 0.0
		axis := -1
		for i := 0; i < 3; i++ {
			if over := dims[i] - limit[i]; over > worst {
				worst = over
				axis = i
			}
		}
		if worst < best.shortfall {
			best.shortfall = worst
			if axis >= 0 {
				best.detail = fmt.Sprintf("%.3g mm over the %.3g mm limit", worst, limit[axis])
			} else {
				best.detail = ""
			}
		}
	}
	return best
}

func sortDims(d *[3]float64) {
	if d[0] > d[1] {
		d[0], d[1] = d[1], d[0]
	}
	if d[1] > d[2] {
		d[1], d[2] = d[2], d[1]
	}
	if d[0] > d[1] {
		d[0], d[1] = d[1], d[0]
	}
}

// Check validates one component against the machine park. With an empty
// catalog the verdict is "unknown": the check is skipped, not passed.
// Otherwise the component is feasible if at least one machine accommodates
// it; an infeasible verdict names the closest machine and its smallest
// shortfall.
func Check(spec design.ComponentSpec, machines []catalog.MachineProfile) design.Verdict {
	if len(machines) == 0 {
		return design.Verdict{
			ComponentID: spec.ID,
			Feasible:    design.Unknown,
			Reason:      "machine catalog unavailable",
		}
	}

	bestShort := math.Inf(1)
	bestMachine := ""
	bestDetail := ""
	for _, m := range machines {
		f := machineFit(spec, m)
		if f.shortfall <= 0 {
			return design.Verdict{ComponentID: spec.ID, MachineID: m.ID, Feasible: design.Feasible}
		}
		if f.shortfall < bestShort {
			bestShort = f.shortfall
			bestMachine = m.ID
			bestDetail = f.detail
		}
	}

	return design.Verdict{
		ComponentID: spec.ID,
		MachineID:   bestMachine,
		Feasible:    design.Infeasible,
		Reason:      bestDetail,
	}
}

// CheckAll runs Check over every component, preserving component order.
func CheckAll(specs []design.ComponentSpec, machines []catalog.MachineProfile) []design.Verdict {
	verdicts := make([]design.Verdict, len(specs))
	for i, spec := range specs {
		verdicts[i] = Check(spec, machines)
	}
	return verdicts
}

// BuildBOM derives bill-of-materials lines from components and the material
// catalog. A nil catalog (unavailable) leaves every cost unknown. A line
// whose material is marked unavailable is flagged and its line cost left
// uncomputed rather than priced.
func BuildBOM(specs []design.ComponentSpec, materials []catalog.MaterialRecord) []design.BOMEntry {
	entries := make([]design.BOMEntry, len(specs))
	for i, spec := range specs {
		entry := design.BOMEntry{
			ComponentID:  spec.ID,
			MaterialCode: spec.Material,
			Quantity:     spec.Quantity,
		}

		if materials != nil {
			if rec, ok := catalog.FindMaterial(materials, spec.Material); ok {
				avail := rec.Available
				entry.Available = &avail
				if rec.UnitPrice != nil {
					unit := *rec.UnitPrice
					entry.UnitCost = &unit
					if avail {
						line := float64(spec.Quantity) * unit
						entry.LineCost = &line
					}
				}
			}
		}
		entries[i] = entry
	}
	return entries
}
