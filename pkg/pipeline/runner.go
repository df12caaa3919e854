package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mvollan/stirlingforge/pkg/backend"
	"github.com/mvollan/stirlingforge/pkg/cache"
	"github.com/mvollan/stirlingforge/pkg/catalog"
	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/formula"
	"github.com/mvollan/stirlingforge/pkg/geometry"
	"github.com/mvollan/stirlingforge/pkg/layout"
	"github.com/mvollan/stirlingforge/pkg/mfg"
	"github.com/mvollan/stirlingforge/pkg/observability"
	"github.com/mvollan/stirlingforge/pkg/params"
	"github.com/mvollan/stirlingforge/pkg/perf"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store run results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// cache TTLs per stage payload.
const (
	ttlDerived = 7 * 24 * time.Hour
	ttlLayout  = 7 * 24 * time.Hour
)

// derivedPayload is the cached form of the derived-geometry stage: values in
// topological order so the map can be rebuilt deterministically.
type derivedPayload struct {
	Order  []string        `json:"order"`
	Values []formula.Value `json:"values"`
}

// Execute runs the complete derive → estimate → layout → build → check
// pipeline and assembles the snapshot.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	reg := params.NewRegistry()
	if err := geometry.Register(reg, opts.Overrides); err != nil {
		return nil, err
	}

	result := &Result{ParamsHash: cache.ParamsHash(reg)}
	runStart := time.Now()
	observability.Pipeline().OnRunStart(ctx, result.ParamsHash)

	var warnings []string

	// Stage 1: Derive
	derivedStart := time.Now()
	values, order, derivedHit, err := r.deriveWithCacheInfo(ctx, reg, result.ParamsHash, opts)
	observability.Pipeline().OnStageComplete(ctx, StageDerived, len(values), time.Since(derivedStart), err)
	if err != nil {
		observability.Pipeline().OnRunComplete(ctx, "", time.Since(runStart), err)
		return nil, err
	}
	result.Stats.DerivedTime = time.Since(derivedStart)
	result.Stats.DerivedCount = len(values)
	result.CacheInfo.DerivedHit = derivedHit

	logger.Info("derived geometry",
		"values", len(values),
		"cached", derivedHit,
		"duration", result.Stats.DerivedTime)

	// Stage 2: Estimate (strict gate)
	metrics, err := perf.Estimate(values)
	observability.Pipeline().OnStageComplete(ctx, StageMetrics, len(metrics), 0, err)
	if err != nil {
		observability.Pipeline().OnRunComplete(ctx, "", time.Since(runStart), err)
		return nil, err
	}

	components, err := geometry.Components(reg, values)
	if err != nil {
		observability.Pipeline().OnRunComplete(ctx, "", time.Since(runStart), err)
		return nil, err
	}
	result.Stats.ComponentCount = len(components)

	// Stage 3: Layout (strict gate under the scatter policy)
	layoutStart := time.Now()
	placements, layoutHit, err := r.placeWithCacheInfo(ctx, reg, values, components, result.ParamsHash, opts)
	observability.Pipeline().OnStageComplete(ctx, StageLayout, len(placements), time.Since(layoutStart), err)
	if err != nil {
		observability.Pipeline().OnRunComplete(ctx, "", time.Since(runStart), err)
		return nil, err
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("placed components",
		"policy", opts.Policy,
		"placements", len(placements),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	kin, err := layout.KinematicStub(reg)
	if err != nil {
		observability.Pipeline().OnRunComplete(ctx, "", time.Since(runStart), err)
		return nil, err
	}

	// Stage 4: Build (per-component failures tolerated)
	backendStart := time.Now()
	bodies, failures := backend.BuildAll(ctx, opts.Backend, components, placements)
	result.Stats.BackendTime = time.Since(backendStart)
	observability.Pipeline().OnStageComplete(ctx, StageBackend, len(bodies), result.Stats.BackendTime, nil)
	for _, f := range failures {
		warnings = append(warnings, f.Error())
		logger.Warn("backend build failed", "err", f)
	}

	logger.Info("built bodies",
		"backend", opts.Backend.Name(),
		"bodies", len(bodies)-len(failures),
		"failed", len(failures),
		"duration", result.Stats.BackendTime)

	// Stage 5: Check (non-fatal; catalogs loaded eagerly, once per run)
	mfgStart := time.Now()
	machines, materials, catalogWarnings := r.loadCatalogs(opts)
	warnings = append(warnings, catalogWarnings...)

	verdicts := mfg.CheckAll(components, machines)
	bom := mfg.BuildBOM(components, materials)
	result.Stats.MfgTime = time.Since(mfgStart)
	observability.Pipeline().OnStageComplete(ctx, StageMfg, len(verdicts), result.Stats.MfgTime, nil)

	feasible := 0
	for _, v := range verdicts {
		if v.Feasible == design.Feasible {
			feasible++
		}
	}
	logger.Info("checked manufacturability",
		"feasible", feasible,
		"total", len(verdicts),
		"duration", result.Stats.MfgTime)

	snap := &design.Snapshot{
		RunID:          uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Parameters:     reg.All(),
		Derived:        orderedValues(values, order),
		Metrics:        metrics,
		Components:     components,
		Placements:     placements,
		Bodies:         bodies,
		Verdicts:       verdicts,
		BOM:            bom,
		PhaseOffsetDeg: kin.PhaseOffsetDeg,
		Warnings:       warnings,
	}
	result.Snapshot = snap

	observability.Pipeline().OnRunComplete(ctx, snap.RunID, time.Since(runStart), nil)
	logger.Info("run complete", "run_id", snap.RunID, "duration", time.Since(runStart))
	return result, nil
}

// deriveWithCacheInfo evaluates the formula graph with caching and reports
// whether the result came from cache.
func (r *Runner) deriveWithCacheInfo(ctx context.Context, reg *params.Registry, paramsHash string, opts Options) (map[string]formula.Value, []string, bool, error) {
	observability.Pipeline().OnStageStart(ctx, StageDerived)
	key := cache.StageKey(StageDerived, paramsHash)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var payload derivedPayload
			if err := json.Unmarshal(data, &payload); err == nil {
				observability.Cache().OnCacheHit(ctx, StageDerived)
				values := make(map[string]formula.Value, len(payload.Values))
				for _, v := range payload.Values {
					values[v.Name] = v
				}
				return values, payload.Order, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, StageDerived)
	}

	values, order, err := geometry.Formulas().Evaluate(reg)
	if err != nil {
		return nil, nil, false, err
	}

	if !opts.Refresh {
		payload := derivedPayload{Order: order, Values: orderedValues(values, order)}
		if data, err := json.Marshal(payload); err == nil {
			_ = r.Cache.Set(ctx, key, data, ttlDerived)
			observability.Cache().OnCacheSet(ctx, StageDerived, len(data))
		}
	}
	return values, order, false, nil
}

// placeWithCacheInfo runs the placement policy with caching. The kinematic
// policy produces no placements; only the scatter result is cached.
func (r *Runner) placeWithCacheInfo(ctx context.Context, reg *params.Registry, values map[string]formula.Value, components []design.ComponentSpec, paramsHash string, opts Options) ([]design.Placement, bool, error) {
	observability.Pipeline().OnStageStart(ctx, StageLayout)
	if opts.Policy == layout.PolicyKinematic {
		return nil, false, nil
	}

	key := cache.StageKey(StageLayout, paramsHash)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var placements []design.Placement
			if err := json.Unmarshal(data, &placements); err == nil {
				// Verify the invariant even on cached placements: the
				// component set may have changed shape since the write.
				if err := layout.VerifyNonOverlap(components, placements); err == nil {
					observability.Cache().OnCacheHit(ctx, StageLayout)
					return placements, true, nil
				}
			}
		}
		observability.Cache().OnCacheMiss(ctx, StageLayout)
	}

	placements, err := layout.Scatter(reg, values, components)
	if err != nil {
		return nil, false, err
	}

	if !opts.Refresh {
		if data, err := json.Marshal(placements); err == nil {
			_ = r.Cache.Set(ctx, key, data, ttlLayout)
			observability.Cache().OnCacheSet(ctx, StageLayout, len(data))
		}
	}
	return placements, false, nil
}

// loadCatalogs reads the machine park and material catalog once per run.
// Failures degrade to warnings: verdicts become unknown, BOM costs nil.
func (r *Runner) loadCatalogs(opts Options) ([]catalog.MachineProfile, []catalog.MaterialRecord, []string) {
	if opts.CatalogDir == "" {
		return nil, nil, []string{"no catalog directory configured; manufacturability unknown"}
	}

	var warnings []string
	machines, err := catalog.LoadMachines(catalog.MachinesPath(opts.CatalogDir))
	if err != nil {
		warnings = append(warnings, err.Error())
		opts.Logger.Warn("machine catalog unavailable", "err", err)
		machines = nil
	}
	materials, err := catalog.LoadMaterials(catalog.MaterialsPath(opts.CatalogDir))
	if err != nil {
		warnings = append(warnings, err.Error())
		opts.Logger.Warn("material catalog unavailable", "err", err)
		materials = nil
	}
	return machines, materials, warnings
}

// orderedValues flattens the value map into evaluation order so snapshots
// serialize deterministically.
func orderedValues(values map[string]formula.Value, order []string) []formula.Value {
	out := make([]formula.Value, 0, len(order))
	for _, name := range order {
		if v, ok := values[name]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
