// Package geometry declares the Stirling engine's parameter table and the
// derived-geometry formula graph, and turns evaluated values into component
// shape specs.
//
// Shape description is placement-independent: nothing in this package knows
// where a component ends up. The layout engine consumes the specs and the
// derived values separately.
package geometry

import (
	"math"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/errors"
	"github.com/mvollan/stirlingforge/pkg/formula"
	"github.com/mvollan/stirlingforge/pkg/params"
	"github.com/mvollan/stirlingforge/pkg/units"
)

// ParamSpec is one top-level parameter with its default and validated band.
type ParamSpec struct {
	Name    string
	Default float64
	Min     float64
	Max     float64
	Unit    units.Kind
	Comment string
}

// Parameters is the engine family's top-level parameter table. Order is the
// registration order and therefore fixed.
var Parameters = []ParamSpec{
	{"power_bore", 12, 8, 20, units.Length, "power cylinder bore"},
	{"power_stroke", 16, 12, 20, units.Length, "power piston stroke"},
	{"displacer_bore", 22, 14, 36, units.Length, "displacer cylinder bore"},
	{"displacer_stroke", 20, 12, 28, units.Length, "displacer stroke"},
	{"piston_clearance", 0.15, 0.05, 0.5, units.Length, "radial piston clearance"},
	{"clearance_height", 2, 0.5, 6, units.Length, "top dead center clearance"},
	{"cylinder_offset", 28, 10, 80, units.Length, "configured cylinder spacing"},
	{"base_thickness", 8, 4, 20, units.Length, "frame plate thickness"},
	{"flywheel_diameter", 60, 30, 120, units.Length, "flywheel outer diameter"},
	{"crank_pin_margin", 4, 2, 10, units.Length, "web margin beyond crank throw"},
	{"phase_offset", 90, 60, 120, units.Angle, "displacer-to-piston phase"},
	{"scatter_gap", 15, 5, 50, units.Length, "scatter layout spacing"},
}

// Register fills a registry from the parameter table, applying overrides by
// name. An override for an unknown name is rejected so a typo cannot
// silently fall back to a default.
func Register(reg *params.Registry, overrides map[string]float64) error {
	known := make(map[string]bool, len(Parameters))
	for _, spec := range Parameters {
		known[spec.Name] = true
	}
	for name := range overrides {
		if !known[name] {
			return errors.New(errors.ErrCodeInvalidParameter, "unknown parameter %q", name)
		}
	}

	for _, spec := range Parameters {
		value := spec.Default
		if v, ok := overrides[spec.Name]; ok {
			value = v
		}
		if _, err := reg.Register(spec.Name, value, spec.Unit, params.Range(spec.Min, spec.Max)); err != nil {
			return err
		}
	}
	return nil
}

// mm declares a length input.
func mm(name string) formula.Input { return formula.In(name, units.Length) }

// constant builds a zero-input formula, used for fixed design dimensions so
// they appear in the derived-value record with provenance like everything else.
func constant(name string, v float64, unit units.Kind) formula.Formula {
	return formula.Formula{
		Name: name,
		Unit: unit,
		Eval: func(formula.Args) float64 { return v },
	}
}

// Formulas builds the derived-geometry DAG. Every quantity downstream of the
// registry is declared here with its exact input set.
func Formulas() *formula.Graph {
	g := formula.NewGraph()

	// Fixed design dimensions.
	g.MustAdd(constant("cylinder_wall", 2, units.Length))
	g.MustAdd(constant("crank_pin_diameter", 4, units.Length))
	g.MustAdd(constant("conrod_diameter", 3, units.Length))
	g.MustAdd(constant("flywheel_thickness", 8, units.Length))
	g.MustAdd(constant("frame_width", 70, units.Length))

	g.MustAdd(formula.Formula{
		Name: "power_radius", Unit: units.Length,
		Inputs: []formula.Input{mm("power_bore")},
		Eval:   func(in formula.Args) float64 { return in["power_bore"] / 2 },
	})
	g.MustAdd(formula.Formula{
		Name: "power_piston_diameter", Unit: units.Length,
		Inputs: []formula.Input{mm("power_bore"), mm("piston_clearance")},
		Eval:   func(in formula.Args) float64 { return in["power_bore"] - 2*in["piston_clearance"] },
	})
	g.MustAdd(formula.Formula{
		Name: "displacer_piston_diameter", Unit: units.Length,
		Inputs: []formula.Input{mm("displacer_bore"), mm("piston_clearance")},
		Eval:   func(in formula.Args) float64 { return in["displacer_bore"] - 2*in["piston_clearance"] },
	})
	g.MustAdd(formula.Formula{
		Name: "piston_area", Unit: units.Area,
		Inputs: []formula.Input{mm("power_bore")},
		Eval:   func(in formula.Args) float64 { return math.Pi / 4 * in["power_bore"] * in["power_bore"] },
	})
	g.MustAdd(formula.Formula{
		Name: "displacer_area", Unit: units.Area,
		Inputs: []formula.Input{mm("displacer_bore")},
		Eval: func(in formula.Args) float64 {
			return math.Pi / 4 * in["displacer_bore"] * in["displacer_bore"]
		},
	})
	g.MustAdd(formula.Formula{
		Name: "swept_volume", Unit: units.Volume,
		Inputs: []formula.Input{formula.In("piston_area", units.Area), mm("power_stroke")},
		Eval:   func(in formula.Args) float64 { return in["piston_area"] * in["power_stroke"] },
	})
	g.MustAdd(formula.Formula{
		Name: "displacer_swept_volume", Unit: units.Volume,
		Inputs: []formula.Input{formula.In("displacer_area", units.Area), mm("displacer_stroke")},
		Eval:   func(in formula.Args) float64 { return in["displacer_area"] * in["displacer_stroke"] },
	})
	g.MustAdd(formula.Formula{
		Name: "transfer_port_volume", Unit: units.Volume,
		Inputs: []formula.Input{mm("power_bore"), mm("cylinder_offset")},
		Eval: func(in formula.Args) float64 {
			port := in["power_bore"] / 4
			return math.Pi / 4 * port * port * in["cylinder_offset"]
		},
	})
	g.MustAdd(formula.Formula{
		Name: "dead_volume", Unit: units.Volume,
		Inputs: []formula.Input{
			formula.In("piston_area", units.Area),
			mm("clearance_height"),
			formula.In("transfer_port_volume", units.Volume),
		},
		Eval: func(in formula.Args) float64 {
			return in["piston_area"]*in["clearance_height"] + in["transfer_port_volume"]
		},
	})
	g.MustAdd(formula.Formula{
		Name: "cylinder_separation", Unit: units.Length,
		Inputs: []formula.Input{mm("cylinder_offset"), mm("power_bore"), mm("displacer_bore")},
		Eval: func(in formula.Args) float64 {
			return in["cylinder_offset"] + (in["power_bore"]+in["displacer_bore"])/2
		},
	})
	g.MustAdd(formula.Formula{
		Name: "crank_radius", Unit: units.Length,
		Inputs: []formula.Input{mm("power_stroke")},
		Eval:   func(in formula.Args) float64 { return in["power_stroke"] / 2 },
	})
	g.MustAdd(formula.Formula{
		Name: "crank_web_diameter", Unit: units.Length,
		Inputs: []formula.Input{mm("power_stroke"), mm("crank_pin_margin")},
		Eval:   func(in formula.Args) float64 { return in["power_stroke"] + 2*in["crank_pin_margin"] },
	})
	g.MustAdd(formula.Formula{
		Name: "power_cylinder_length", Unit: units.Length,
		Inputs: []formula.Input{mm("power_stroke"), mm("clearance_height"), mm("cylinder_wall")},
		Eval: func(in formula.Args) float64 {
			return in["power_stroke"] + in["clearance_height"] + 2*in["cylinder_wall"]
		},
	})
	g.MustAdd(formula.Formula{
		Name: "displacer_cylinder_length", Unit: units.Length,
		Inputs: []formula.Input{mm("displacer_stroke"), mm("clearance_height"), mm("cylinder_wall")},
		Eval: func(in formula.Args) float64 {
			return in["displacer_stroke"] + in["clearance_height"] + 2*in["cylinder_wall"]
		},
	})
	g.MustAdd(formula.Formula{
		Name: "power_piston_length", Unit: units.Length,
		Inputs: []formula.Input{mm("power_stroke")},
		Eval:   func(in formula.Args) float64 { return in["power_stroke"] + 8 },
	})
	g.MustAdd(formula.Formula{
		Name: "displacer_piston_length", Unit: units.Length,
		Inputs: []formula.Input{mm("displacer_stroke")},
		Eval:   func(in formula.Args) float64 { return in["displacer_stroke"] + 10 },
	})
	g.MustAdd(formula.Formula{
		Name: "conrod_length", Unit: units.Length,
		Inputs: []formula.Input{mm("power_stroke")},
		Eval:   func(in formula.Args) float64 { return in["power_stroke"] + 30 },
	})
	g.MustAdd(formula.Formula{
		Name: "crank_length", Unit: units.Length,
		Inputs: []formula.Input{mm("cylinder_separation"), mm("crank_web_diameter")},
		Eval:   func(in formula.Args) float64 { return in["cylinder_separation"] + in["crank_web_diameter"] },
	})
	g.MustAdd(formula.Formula{
		Name: "frame_length", Unit: units.Length,
		Inputs: []formula.Input{mm("cylinder_separation"), mm("flywheel_diameter")},
		Eval:   func(in formula.Args) float64 { return in["cylinder_separation"] + in["flywheel_diameter"] },
	})

	return g
}

// Component IDs, in placement dependency order: the frame comes first since
// everything is placed relative to it, cylinders before their pistons, the
// crank before the flywheel and linkage.
const (
	CompFrame             = "frame"
	CompDisplacerCylinder = "displacer_cylinder"
	CompPowerCylinder     = "power_cylinder"
	CompDisplacerPiston   = "displacer_piston"
	CompPowerPiston       = "power_piston"
	CompCrankshaft        = "crankshaft"
	CompFlywheel          = "flywheel"
	CompConrod            = "conrod"
)

// Lookup resolves a name against derived values first, then the registry.
// It is the shared resolution rule for the component builder and the layout
// engine's placement formulas.
func Lookup(reg *params.Registry, v map[string]formula.Value, name string) (float64, error) {
	if val, ok := v[name]; ok {
		return val.Value, nil
	}
	if p, ok := reg.Get(name); ok {
		return p.Value, nil
	}
	return 0, errors.New(errors.ErrCodeMissingInput, "%q matches no derived value or parameter", name)
}

// Components builds the component shape specs from the registry and the
// evaluated derived values. Cylinders, rods and discs use their diameter for
// both horizontal extents; the long axis is local Z.
func Components(reg *params.Registry, v map[string]formula.Value) ([]design.ComponentSpec, error) {
	names := []string{
		"frame_length", "frame_width", "cylinder_wall",
		"displacer_cylinder_length", "power_cylinder_length",
		"displacer_piston_diameter", "displacer_piston_length",
		"power_piston_diameter", "power_piston_length",
		"crank_pin_diameter", "crank_length",
		"flywheel_thickness", "conrod_diameter", "conrod_length",
		"base_thickness", "displacer_bore", "power_bore", "flywheel_diameter",
	}
	d := make(map[string]float64, len(names))
	for _, n := range names {
		val, err := Lookup(reg, v, n)
		if err != nil {
			return nil, err
		}
		d[n] = val
	}

	baseThickness := d["base_thickness"]
	displacerBore := d["displacer_bore"]
	powerBore := d["power_bore"]
	flywheelDia := d["flywheel_diameter"]

	displacerOD := displacerBore + 2*d["cylinder_wall"]
	powerOD := powerBore + 2*d["cylinder_wall"]

	specs := []design.ComponentSpec{
		{
			ID: CompFrame, Shape: design.ShapePlate,
			Bounds:   design.BoundingBox{Length: d["frame_length"], Width: d["frame_width"], Height: baseThickness},
			Origin:   "plate center",
			Material: "AL6061", Quantity: 1,
		},
		{
			ID: CompDisplacerCylinder, Shape: design.ShapeCylinder,
			Bounds:   design.BoundingBox{Length: displacerOD, Width: displacerOD, Height: d["displacer_cylinder_length"]},
			Origin:   "bore axis, closed end",
			Material: "GLASS_QUARTZ", Quantity: 1,
		},
		{
			ID: CompPowerCylinder, Shape: design.ShapeCylinder,
			Bounds:   design.BoundingBox{Length: powerOD, Width: powerOD, Height: d["power_cylinder_length"]},
			Origin:   "bore axis, closed end",
			Material: "BRASS_360", Quantity: 1,
		},
		{
			ID: CompDisplacerPiston, Shape: design.ShapeCylinder,
			Bounds:   design.BoundingBox{Length: d["displacer_piston_diameter"], Width: d["displacer_piston_diameter"], Height: d["displacer_piston_length"]},
			Origin:   "piston axis, crown",
			Material: "PLA_175", Quantity: 1,
		},
		{
			ID: CompPowerPiston, Shape: design.ShapeCylinder,
			Bounds:   design.BoundingBox{Length: d["power_piston_diameter"], Width: d["power_piston_diameter"], Height: d["power_piston_length"]},
			Origin:   "piston axis, crown",
			Material: "BRASS_360", Quantity: 1,
		},
		{
			ID: CompCrankshaft, Shape: design.ShapeRod,
			Bounds:   design.BoundingBox{Length: d["crank_pin_diameter"], Width: d["crank_pin_diameter"], Height: d["crank_length"]},
			Origin:   "shaft axis, midpoint",
			Material: "STEEL_4140", Quantity: 1,
		},
		{
			ID: CompFlywheel, Shape: design.ShapeDisc,
			Bounds:   design.BoundingBox{Length: flywheelDia, Width: flywheelDia, Height: d["flywheel_thickness"]},
			Origin:   "hub center",
			Material: "AL6061", Quantity: 1,
		},
		{
			ID: CompConrod, Shape: design.ShapeRod,
			Bounds:   design.BoundingBox{Length: d["conrod_diameter"], Width: d["conrod_diameter"], Height: d["conrod_length"]},
			Origin:   "small end",
			Material: "BRASS_360", Quantity: 1,
		},
	}
	return specs, nil
}
