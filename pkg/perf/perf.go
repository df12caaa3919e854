// Package perf computes performance metrics from derived geometry and gates
// the pipeline on their physical validity.
//
// This stage is a terminal validation gate: a compression ratio at or below
// one, or a non-positive volume, describes an engine that cannot run, so the
// estimator fails the run rather than letting layout and manufacturability
// work proceed on a meaningless design.
package perf

import (
	"math"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/errors"
	"github.com/mvollan/stirlingforge/pkg/formula"
	"github.com/mvollan/stirlingforge/pkg/units"
)

// Metric names produced by Estimate.
const (
	MetricSweptVolume      = "swept_volume"
	MetricDeadVolume       = "dead_volume"
	MetricCompressionRatio = "compression_ratio"
)

// Estimate derives the performance metrics from evaluated geometry.
//
// Fails with PHYSICALLY_INVALID if the swept or dead volume is not strictly
// positive or the compression ratio does not exceed one. The dead volume is
// checked before the ratio is formed, so a zero dead volume is reported as
// an invalid design rather than a division blowing up to infinity.
func Estimate(values map[string]formula.Value) ([]design.Metric, error) {
	swept, ok := values[MetricSweptVolume]
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingInput, "performance: %q not evaluated", MetricSweptVolume)
	}
	dead, ok := values[MetricDeadVolume]
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingInput, "performance: %q not evaluated", MetricDeadVolume)
	}

	if swept.Value <= 0 || math.IsNaN(swept.Value) {
		return nil, errors.New(errors.ErrCodePhysicallyInvalid,
			"swept volume %v mm3 must be positive", swept.Value)
	}
	if dead.Value <= 0 || math.IsNaN(dead.Value) {
		return nil, errors.New(errors.ErrCodePhysicallyInvalid,
			"dead volume %v mm3 must be positive", dead.Value)
	}

	ratio := (swept.Value + dead.Value) / dead.Value
	if ratio <= 1 || math.IsInf(ratio, 0) {
		return nil, errors.New(errors.ErrCodePhysicallyInvalid,
			"compression ratio %v must exceed 1", ratio)
	}

	return []design.Metric{
		{Name: MetricSweptVolume, Value: swept.Value, Unit: units.Volume},
		{Name: MetricDeadVolume, Value: dead.Value, Unit: units.Volume},
		{Name: MetricCompressionRatio, Value: ratio, Unit: units.Ratio},
	}, nil
}
