package perf

import (
	"testing"

	"github.com/mvollan/stirlingforge/pkg/errors"
	"github.com/mvollan/stirlingforge/pkg/formula"
	"github.com/mvollan/stirlingforge/pkg/units"
)

func volumes(swept, dead float64) map[string]formula.Value {
	return map[string]formula.Value{
		MetricSweptVolume: {Name: MetricSweptVolume, Value: swept, Unit: units.Volume},
		MetricDeadVolume:  {Name: MetricDeadVolume, Value: dead, Unit: units.Volume},
	}
}

func TestEstimate(t *testing.T) {
	metrics, err := Estimate(volumes(1800, 400))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if len(metrics) != 3 {
		t.Fatalf("got %d metrics, want 3", len(metrics))
	}

	byName := make(map[string]float64)
	for _, m := range metrics {
		byName[m.Name] = m.Value
	}
	if want := (1800.0 + 400.0) / 400.0; byName[MetricCompressionRatio] != want {
		t.Errorf("compression ratio = %v, want %v", byName[MetricCompressionRatio], want)
	}
}

func TestEstimateRejectsZeroDeadVolume(t *testing.T) {
	// Division by a zero dead volume must surface as PHYSICALLY_INVALID,
	// never as an infinite ratio.
	_, err := Estimate(volumes(1800, 0))
	if !errors.Is(err, errors.ErrCodePhysicallyInvalid) {
		t.Fatalf("want PHYSICALLY_INVALID, got %v", err)
	}
}

func TestEstimateRejectsNonPhysicalVolumes(t *testing.T) {
	tests := []struct {
		name        string
		swept, dead float64
	}{
		{"negative swept", -1, 400},
		{"zero swept", 0, 400},
		{"negative dead", 1800, -5},
	}

	for _, tt := range tests {
		if _, err := Estimate(volumes(tt.swept, tt.dead)); !errors.Is(err, errors.ErrCodePhysicallyInvalid) {
			t.Errorf("%s: want PHYSICALLY_INVALID, got %v", tt.name, err)
		}
	}
}

func TestEstimateRequiresVolumes(t *testing.T) {
	_, err := Estimate(map[string]formula.Value{})
	if !errors.Is(err, errors.ErrCodeMissingInput) {
		t.Fatalf("want MISSING_INPUT, got %v", err)
	}
}
