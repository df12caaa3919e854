package geometry

import (
	"math"
	"testing"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/errors"
	"github.com/mvollan/stirlingforge/pkg/formula"
	"github.com/mvollan/stirlingforge/pkg/params"
)

func evaluateDefaults(t *testing.T) (*params.Registry, map[string]formula.Value) {
	t.Helper()
	reg := params.NewRegistry()
	if err := Register(reg, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	values, _, err := Formulas().Evaluate(reg)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	return reg, values
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRegisterDefaults(t *testing.T) {
	reg := params.NewRegistry()
	if err := Register(reg, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Len() != len(Parameters) {
		t.Errorf("registered %d parameters, want %d", reg.Len(), len(Parameters))
	}
	if p, _ := reg.Get("power_stroke"); p.Value != 16 {
		t.Errorf("power_stroke default = %v, want 16", p.Value)
	}
}

func TestRegisterOverrides(t *testing.T) {
	reg := params.NewRegistry()
	if err := Register(reg, map[string]float64{"power_stroke": 18}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if p, _ := reg.Get("power_stroke"); p.Value != 18 {
		t.Errorf("override not applied: %v", p.Value)
	}
}

func TestRegisterRejectsOutOfBandOverride(t *testing.T) {
	reg := params.NewRegistry()
	err := Register(reg, map[string]float64{"power_stroke": 25})
	if !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Fatalf("stroke 25 mm is outside [12, 20]; want INVALID_PARAMETER, got %v", err)
	}
}

func TestRegisterRejectsUnknownOverride(t *testing.T) {
	reg := params.NewRegistry()
	err := Register(reg, map[string]float64{"bore_typo": 12})
	if !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Fatalf("want INVALID_PARAMETER for unknown name, got %v", err)
	}
	if reg.Len() != 0 {
		t.Error("nothing may register when an override is unknown")
	}
}

func TestDerivedValues(t *testing.T) {
	_, values := evaluateDefaults(t)

	tests := []struct {
		name string
		want float64
	}{
		{"power_radius", 6},
		{"power_piston_diameter", 11.7},
		{"displacer_piston_diameter", 21.7},
		{"piston_area", math.Pi / 4 * 144},
		{"swept_volume", math.Pi / 4 * 144 * 16},
		{"cylinder_separation", 45},
		{"crank_radius", 8},
		{"crank_web_diameter", 24},
		{"power_cylinder_length", 22},
		{"displacer_cylinder_length", 26},
		{"crank_length", 69},
		{"frame_length", 105},
	}

	for _, tt := range tests {
		v, ok := values[tt.name]
		if !ok {
			t.Errorf("%s not evaluated", tt.name)
			continue
		}
		if !approx(v.Value, tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, v.Value, tt.want)
		}
	}

	// Dead volume: clearance volume plus transfer port volume.
	port := 12.0 / 4
	wantDead := math.Pi/4*144*2 + math.Pi/4*port*port*28
	if v := values["dead_volume"]; !approx(v.Value, wantDead) {
		t.Errorf("dead_volume = %v, want %v", v.Value, wantDead)
	}
}

func TestProvenanceRecorded(t *testing.T) {
	_, values := evaluateDefaults(t)
	v := values["dead_volume"]
	want := map[string]bool{"piston_area": true, "clearance_height": true, "transfer_port_volume": true}
	if len(v.Inputs) != len(want) {
		t.Fatalf("dead_volume inputs = %v", v.Inputs)
	}
	for _, in := range v.Inputs {
		if !want[in] {
			t.Errorf("unexpected input %q", in)
		}
	}
}

func TestComponents(t *testing.T) {
	reg, values := evaluateDefaults(t)
	specs, err := Components(reg, values)
	if err != nil {
		t.Fatalf("Components: %v", err)
	}

	wantOrder := []string{
		CompFrame, CompDisplacerCylinder, CompPowerCylinder,
		CompDisplacerPiston, CompPowerPiston, CompCrankshaft,
		CompFlywheel, CompConrod,
	}
	if len(specs) != len(wantOrder) {
		t.Fatalf("got %d components, want %d", len(specs), len(wantOrder))
	}
	for i, id := range wantOrder {
		if specs[i].ID != id {
			t.Errorf("component %d = %s, want %s", i, specs[i].ID, id)
		}
		if !specs[i].Shape.Valid() {
			t.Errorf("component %s has invalid shape %q", id, specs[i].Shape)
		}
		if specs[i].Quantity != 1 {
			t.Errorf("component %s quantity = %d", id, specs[i].Quantity)
		}
	}

	byID := make(map[string]design.ComponentSpec)
	for _, s := range specs {
		byID[s.ID] = s
	}

	if b := byID[CompFrame].Bounds; !approx(b.Length, 105) || !approx(b.Width, 70) || !approx(b.Height, 8) {
		t.Errorf("frame bounds = %+v", b)
	}
	if b := byID[CompDisplacerCylinder].Bounds; !approx(b.Length, 26) || !approx(b.Height, 26) {
		t.Errorf("displacer cylinder bounds = %+v", b)
	}
	if b := byID[CompCrankshaft].Bounds; !approx(b.Height, 69) || !approx(b.Length, 4) {
		t.Errorf("crankshaft bounds = %+v", b)
	}
	if m := byID[CompDisplacerCylinder].Material; m != "GLASS_QUARTZ" {
		t.Errorf("displacer cylinder material = %s", m)
	}
}

func TestComponentsMissingDerivedValue(t *testing.T) {
	reg := params.NewRegistry()
	if err := Register(reg, nil); err != nil {
		t.Fatal(err)
	}
	_, err := Components(reg, map[string]formula.Value{})
	if !errors.Is(err, errors.ErrCodeMissingInput) {
		t.Fatalf("want MISSING_INPUT, got %v", err)
	}
}
