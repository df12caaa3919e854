// Package pipeline provides the core design-generation pipeline.
//
// This package implements the complete derive → estimate → layout → build →
// check pipeline that is shared by the CLI and the HTTP API. Centralizing it
// keeps behavior identical across entry points.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Derive: evaluate the geometry formula graph over the parameter registry
//  2. Estimate: compute performance metrics and gate physical validity
//  3. Layout: place components and verify the non-overlap invariant
//  4. Build: hand each placed component to the geometry backend
//  5. Check: validate manufacturability and price the BOM (non-fatal)
//
// The first three stages are strict gates: a violation aborts the run and no
// snapshot is produced. Backend failures are per-component and catalog
// problems degrade to warnings, so a run never fails because a machine park
// is unconfigured.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    Overrides: map[string]float64{"power_bore": 14},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	snap := result.Snapshot
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mvollan/stirlingforge/pkg/backend"
	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/errors"
	"github.com/mvollan/stirlingforge/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultPolicy is the placement policy used when none is requested.
const DefaultPolicy = layout.PolicyScatter

// ValidPolicies is the set of supported placement policies.
var ValidPolicies = map[layout.Policy]bool{
	layout.PolicyScatter:   true,
	layout.PolicyKinematic: true,
}

// Stage names used in logs, cache keys and observability events.
const (
	StageDerived = "derived"
	StageMetrics = "metrics"
	StageLayout  = "layout"
	StageBackend = "backend"
	StageMfg     = "mfg"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one generation run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Overrides replaces default parameter values by name. Unknown names
	// are rejected before any formula is evaluated.
	Overrides map[string]float64 `json:"overrides,omitempty"`

	// Policy selects the placement policy (scatter by default).
	Policy layout.Policy `json:"policy,omitempty"`

	// CatalogDir is the directory holding machines.toml and materials.toml.
	// Empty means no catalogs: verdicts degrade to unknown.
	CatalogDir string `json:"catalog_dir,omitempty"`

	// Refresh bypasses the stage cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger  *log.Logger     `json:"-"`
	Backend backend.Backend `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Policy == "" {
		o.Policy = DefaultPolicy
	}
	if !ValidPolicies[o.Policy] {
		return errors.New(errors.ErrCodeInvalidOptions,
			"invalid policy %q (must be one of: scatter, kinematic)", o.Policy)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Backend == nil {
		o.Backend = backend.NewNull()
	}
	o.validated = true
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the complete design record. Nil only when Execute errors.
	Snapshot *design.Snapshot

	// ParamsHash is the content hash of the resolved parameter set.
	ParamsHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	DerivedCount   int
	ComponentCount int
	DerivedTime    time.Duration
	LayoutTime     time.Duration
	BackendTime    time.Duration
	MfgTime        time.Duration
}

// CacheInfo tracks cache hits for each cacheable pipeline stage.
type CacheInfo struct {
	DerivedHit bool // Whether derived values came from cache
	LayoutHit  bool // Whether placements came from cache
}
