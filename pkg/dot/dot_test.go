package dot

import (
	"strings"
	"testing"

	"github.com/mvollan/stirlingforge/pkg/formula"
	"github.com/mvollan/stirlingforge/pkg/geometry"
	"github.com/mvollan/stirlingforge/pkg/params"
	"github.com/mvollan/stirlingforge/pkg/units"
)

func TestToDOTStructure(t *testing.T) {
	g := formula.NewGraph()
	g.MustAdd(formula.Formula{
		Name: "area", Unit: units.Area,
		Inputs: []formula.Input{formula.In("bore", units.Length)},
		Eval:   func(a formula.Args) float64 { return a["bore"] * a["bore"] },
	})
	g.MustAdd(formula.Formula{
		Name: "volume", Unit: units.Volume,
		Inputs: []formula.Input{
			formula.In("area", units.Area),
			formula.In("stroke", units.Length),
		},
		Eval: func(a formula.Args) float64 { return a["area"] * a["stroke"] },
	})

	reg := params.NewRegistry()
	if _, err := reg.Register("bore", 12, units.Length, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Register("stroke", 16, units.Length, nil); err != nil {
		t.Fatal(err)
	}

	out := ToDOT(g, reg, nil, Options{})
	for _, want := range []string{
		`"bore" -> "area"`,
		`"area" -> "volume"`,
		`"stroke" -> "volume"`,
		"digraph G {",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT missing %q:\n%s", want, out)
		}
	}
	// Parameters render as boxes, derived values keep the default ellipse.
	if !strings.Contains(out, `"bore" [label="bore", shape=box`) {
		t.Errorf("parameter node not boxed:\n%s", out)
	}
}

func TestToDOTDetailedLabels(t *testing.T) {
	reg := params.NewRegistry()
	if err := geometry.Register(reg, nil); err != nil {
		t.Fatal(err)
	}
	g := geometry.Formulas()
	values, _, err := g.Evaluate(reg)
	if err != nil {
		t.Fatal(err)
	}

	out := ToDOT(g, reg, values, Options{Detailed: true})
	if !strings.Contains(out, "power_bore\\n12 mm") {
		t.Errorf("detailed parameter label missing:\n%s", out)
	}
	if !strings.Contains(out, "swept_volume\\n") {
		t.Error("detailed derived label missing")
	}
}

func TestToDOTDeterministic(t *testing.T) {
	reg := params.NewRegistry()
	if err := geometry.Register(reg, nil); err != nil {
		t.Fatal(err)
	}
	g := geometry.Formulas()
	a := ToDOT(g, reg, nil, Options{})
	b := ToDOT(g, reg, nil, Options{})
	if a != b {
		t.Error("DOT output must be deterministic")
	}
}

func TestFormatForPath(t *testing.T) {
	cases := map[string]string{
		"graph.svg": "svg",
		"graph.png": "png",
		"graph.dot": "dot",
		"graph":     "dot",
	}
	for path, want := range cases {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", path, got, want)
		}
	}
}
