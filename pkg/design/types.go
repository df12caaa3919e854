// Package design defines the design record produced by one generation run.
//
// The types here are the contract between the computational pipeline and its
// consumers (reporting, export, the HTTP API, the snapshot store). They are
// serialization-friendly: json tags for export and the API, bson tags for
// the mongo-backed snapshot store. Slices keep pipeline order so that two
// runs over identical parameters serialize byte-identically.
package design

import (
	"github.com/mvollan/stirlingforge/pkg/units"
)

// =============================================================================
// Geometry primitives
// =============================================================================

// Vec3 is a point or direction in global millimeter coordinates, z up.
type Vec3 struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	Z float64 `json:"z" bson:"z"`
}

// BoundingBox is a component's local axis-aligned extent in millimeters.
// Length runs along local X, Width along Y, Height along Z.
type BoundingBox struct {
	Length float64 `json:"length" bson:"length"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Volume returns the box volume in mm³.
func (b BoundingBox) Volume() float64 { return b.Length * b.Width * b.Height }

// Dims returns the three extents as a slice in L, W, H order.
func (b BoundingBox) Dims() [3]float64 { return [3]float64{b.Length, b.Width, b.Height} }

// Orientation is an axis-angle rotation applied to a component's local
// frame before translation. Angle is degrees.
type Orientation struct {
	Axis  Vec3    `json:"axis" bson:"axis"`
	Angle float64 `json:"angle" bson:"angle"`
}

// Identity is the no-rotation orientation (z axis, zero angle).
func Identity() Orientation {
	return Orientation{Axis: Vec3{Z: 1}, Angle: 0}
}

// =============================================================================
// Components and placements
// =============================================================================

// ShapeClass categorizes a component's gross form. The class decides which
// reorientations the manufacturability checker may attempt.
type ShapeClass string

const (
	ShapePlate    ShapeClass = "plate"
	ShapeCylinder ShapeClass = "cylinder"
	ShapeRod      ShapeClass = "rod"
	ShapeDisc     ShapeClass = "disc"
	ShapeCompound ShapeClass = "compound"
)

// Valid reports whether s is a declared shape class.
func (s ShapeClass) Valid() bool {
	switch s {
	case ShapePlate, ShapeCylinder, ShapeRod, ShapeDisc, ShapeCompound:
		return true
	}
	return false
}

// ComponentSpec describes one component's shape independent of placement.
// Created by the derived-geometry stage; read-only thereafter.
type ComponentSpec struct {
	ID       string      `json:"id" bson:"id"`
	Shape    ShapeClass  `json:"shape" bson:"shape"`
	Bounds   BoundingBox `json:"bounds" bson:"bounds"`
	Origin   string      `json:"origin,omitempty" bson:"origin,omitempty"` // local-origin geometry reference
	Material string      `json:"material,omitempty" bson:"material,omitempty"`
	Quantity int         `json:"quantity" bson:"quantity"`
}

// Placement assigns a component a position and orientation in global space.
// Created by the layout engine in one pass; never mutated afterward.
type Placement struct {
	ComponentID string      `json:"component_id" bson:"component_id"`
	Position    Vec3        `json:"position" bson:"position"`
	Orientation Orientation `json:"orientation" bson:"orientation"`
}

// =============================================================================
// Metrics, verdicts, BOM
// =============================================================================

// Metric is one computed performance quantity.
type Metric struct {
	Name  string     `json:"name" bson:"name"`
	Value float64    `json:"value" bson:"value"`
	Unit  units.Kind `json:"unit" bson:"unit"`
}

// Feasibility is the outcome of a manufacturability check.
type Feasibility string

const (
	Feasible   Feasibility = "feasible"
	Infeasible Feasibility = "infeasible"
	// Unknown means the machine catalog was unavailable; the check was
	// skipped rather than passed or failed.
	Unknown Feasibility = "unknown"
)

// Verdict is the per-component manufacturability result. MachineID names
// the accommodating machine when feasible, or the closest machine (smallest
// shortfall) when infeasible.
type Verdict struct {
	ComponentID string      `json:"component_id" bson:"component_id"`
	MachineID   string      `json:"machine_id,omitempty" bson:"machine_id,omitempty"`
	Feasible    Feasibility `json:"feasible" bson:"feasible"`
	Reason      string      `json:"reason,omitempty" bson:"reason,omitempty"`
}

// BOMEntry is one bill-of-materials line. Cost fields are pointers: nil
// means unknown (material catalog absent or material unavailable), which is
// distinct from zero cost.
type BOMEntry struct {
	ComponentID  string   `json:"component_id" bson:"component_id"`
	MaterialCode string   `json:"material_code" bson:"material_code"`
	Quantity     int      `json:"quantity" bson:"quantity"`
	UnitCost     *float64 `json:"unit_cost,omitempty" bson:"unit_cost,omitempty"`
	LineCost     *float64 `json:"line_cost,omitempty" bson:"line_cost,omitempty"`
	Available    *bool    `json:"available,omitempty" bson:"available,omitempty"`
}

// BodyRef records the opaque handle returned by the geometry backend for a
// component, or the error that kept it from building. Per-component backend
// failures do not abort the run.
type BodyRef struct {
	ComponentID string `json:"component_id" bson:"component_id"`
	Handle      string `json:"handle,omitempty" bson:"handle,omitempty"`
	Error       string `json:"error,omitempty" bson:"error,omitempty"`
}
