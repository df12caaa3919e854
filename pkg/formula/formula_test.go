package formula

import (
	"reflect"
	"testing"

	"github.com/mvollan/stirlingforge/pkg/errors"
	"github.com/mvollan/stirlingforge/pkg/params"
	"github.com/mvollan/stirlingforge/pkg/units"
)

func registryWith(t *testing.T, entries map[string]struct {
	v float64
	u units.Kind
}) *params.Registry {
	t.Helper()
	r := params.NewRegistry()
	for name, e := range entries {
		if _, err := r.Register(name, e.v, e.u, nil); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}
	return r
}

func TestEvaluateInDependencyOrder(t *testing.T) {
	reg := params.NewRegistry()
	if _, err := reg.Register("bore", 12, units.Length, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Register("stroke", 16, units.Length, nil); err != nil {
		t.Fatal(err)
	}

	g := NewGraph()
	// Declared out of dependency order on purpose.
	g.MustAdd(Formula{
		Name:   "swept_volume",
		Unit:   units.Volume,
		Inputs: []Input{In("area", units.Area), In("stroke", units.Length)},
		Eval:   func(in Args) float64 { return in["area"] * in["stroke"] },
	})
	g.MustAdd(Formula{
		Name:   "area",
		Unit:   units.Area,
		Inputs: []Input{In("bore", units.Length)},
		Eval:   func(in Args) float64 { return in["bore"] * in["bore"] },
	})

	values, order, err := g.Evaluate(reg)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if want := []string{"area", "swept_volume"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if got := values["swept_volume"].Value; got != 12*12*16 {
		t.Errorf("swept_volume = %v, want %v", got, 12*12*16)
	}
	if want := []string{"area", "stroke"}; !reflect.DeepEqual(values["swept_volume"].Inputs, want) {
		t.Errorf("provenance = %v, want %v", values["swept_volume"].Inputs, want)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	build := func() (*Graph, *params.Registry) {
		reg := params.NewRegistry()
		_, _ = reg.Register("x", 3, units.Length, nil)
		g := NewGraph()
		g.MustAdd(Formula{Name: "a", Unit: units.Length, Inputs: []Input{In("x", units.Length)},
			Eval: func(in Args) float64 { return in["x"] * 2 }})
		g.MustAdd(Formula{Name: "b", Unit: units.Length, Inputs: []Input{In("x", units.Length)},
			Eval: func(in Args) float64 { return in["x"] + 1 }})
		g.MustAdd(Formula{Name: "c", Unit: units.Length,
			Inputs: []Input{In("a", units.Length), In("b", units.Length)},
			Eval:   func(in Args) float64 { return in["a"] + in["b"] }})
		return g, reg
	}

	g1, r1 := build()
	g2, r2 := build()
	v1, o1, err1 := g1.Evaluate(r1)
	v2, o2, err2 := g2.Evaluate(r2)
	if err1 != nil || err2 != nil {
		t.Fatalf("Evaluate: %v, %v", err1, err2)
	}
	if !reflect.DeepEqual(o1, o2) {
		t.Errorf("orders differ: %v vs %v", o1, o2)
	}
	if !reflect.DeepEqual(v1, v2) {
		t.Errorf("values differ: %v vs %v", v1, v2)
	}
}

func TestCycleDetectedBeforeEvaluation(t *testing.T) {
	reg := params.NewRegistry()
	evaluated := false

	g := NewGraph()
	g.MustAdd(Formula{Name: "a", Unit: units.Length, Inputs: []Input{In("b", units.Length)},
		Eval: func(in Args) float64 { evaluated = true; return 0 }})
	g.MustAdd(Formula{Name: "b", Unit: units.Length, Inputs: []Input{In("a", units.Length)},
		Eval: func(in Args) float64 { evaluated = true; return 0 }})

	_, _, err := g.Evaluate(reg)
	if !errors.Is(err, errors.ErrCodeCyclicDependency) {
		t.Fatalf("want CYCLIC_DEPENDENCY, got %v", err)
	}
	if evaluated {
		t.Error("no formula may be evaluated when the graph has a cycle")
	}
}

func TestMissingInput(t *testing.T) {
	g := NewGraph()
	g.MustAdd(Formula{Name: "a", Unit: units.Length, Inputs: []Input{In("ghost", units.Length)},
		Eval: func(in Args) float64 { return in["ghost"] }})

	_, _, err := g.Evaluate(params.NewRegistry())
	if !errors.Is(err, errors.ErrCodeMissingInput) {
		t.Fatalf("want MISSING_INPUT, got %v", err)
	}
}

func TestUnitMismatch(t *testing.T) {
	reg := params.NewRegistry()
	if _, err := reg.Register("phase", 90, units.Angle, nil); err != nil {
		t.Fatal(err)
	}

	g := NewGraph()
	g.MustAdd(Formula{Name: "a", Unit: units.Length, Inputs: []Input{In("phase", units.Length)},
		Eval: func(in Args) float64 { return in["phase"] }})

	_, _, err := g.Evaluate(reg)
	if !errors.Is(err, errors.ErrCodeUnitMismatch) {
		t.Fatalf("want UNIT_MISMATCH, got %v", err)
	}
}

func TestUnitMismatchOnDerivedInput(t *testing.T) {
	reg := params.NewRegistry()
	if _, err := reg.Register("bore", 12, units.Length, nil); err != nil {
		t.Fatal(err)
	}

	g := NewGraph()
	g.MustAdd(Formula{Name: "area", Unit: units.Area, Inputs: []Input{In("bore", units.Length)},
		Eval: func(in Args) float64 { return in["bore"] * in["bore"] }})
	g.MustAdd(Formula{Name: "wrong", Unit: units.Length, Inputs: []Input{In("area", units.Length)},
		Eval: func(in Args) float64 { return in["area"] }})

	_, _, err := g.Evaluate(reg)
	if !errors.Is(err, errors.ErrCodeUnitMismatch) {
		t.Fatalf("want UNIT_MISMATCH on derived input, got %v", err)
	}
}

func TestAddRejectsDuplicatesAndBadFormulas(t *testing.T) {
	g := NewGraph()
	f := Formula{Name: "a", Unit: units.Length, Eval: func(in Args) float64 { return 1 }}
	if err := g.Add(f); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := g.Add(f); err == nil {
		t.Error("duplicate formula name should be rejected")
	}
	if err := g.Add(Formula{Name: "b", Unit: units.Length}); err == nil {
		t.Error("formula without evaluator should be rejected")
	}
	if err := g.Add(Formula{Name: "c", Unit: units.Kind("furlong"), Eval: f.Eval}); err == nil {
		t.Error("formula with unknown unit should be rejected")
	}
}

func TestDependenciesExcludeParameters(t *testing.T) {
	reg := registryWith(t, map[string]struct {
		v float64
		u units.Kind
	}{"x": {1, units.Length}})
	_ = reg

	g := NewGraph()
	g.MustAdd(Formula{Name: "a", Unit: units.Length, Inputs: []Input{In("x", units.Length)},
		Eval: func(in Args) float64 { return in["x"] }})
	g.MustAdd(Formula{Name: "b", Unit: units.Length,
		Inputs: []Input{In("a", units.Length), In("x", units.Length)},
		Eval:   func(in Args) float64 { return in["a"] }})

	if deps := g.Dependencies("b"); len(deps) != 1 || deps[0] != "a" {
		t.Errorf("Dependencies(b) = %v, want [a]", deps)
	}
	if deps := g.Dependencies("a"); deps != nil {
		t.Errorf("Dependencies(a) = %v, want nil", deps)
	}
}
