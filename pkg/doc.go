// Package pkg provides the core libraries for StirlingForge design generation.
//
// # Overview
//
// StirlingForge derives a complete gamma-type Stirling engine design from a
// dozen top-level parameters. The pkg directory is organized into four main
// areas:
//
//  1. Domain logic - parameters, formulas, geometry, performance, layout
//  2. Checking - manufacturability verdicts against a machine park
//  3. Infrastructure - caching, snapshot stores, observability
//  4. Orchestration - the pipeline tying the stages together
//
// # Architecture
//
// The typical data flow through StirlingForge:
//
//	Parameter overrides (TOML, flags, API request)
//	         ↓
//	    [params] package (registry + range constraints)
//	         ↓
//	    [geometry] + [formula] packages (derived value DAG)
//	         ↓
//	    [perf] package (physical validity gate + metrics)
//	         ↓
//	    [layout] package (placement + non-overlap verification)
//	         ↓
//	    [backend] package (solid body construction)
//	         ↓
//	    [mfg] package (machine fit verdicts + bill of materials)
//	         ↓
//	    Snapshot (JSON export, store, report tables)
//
// # Quick Start
//
// Run the full pipeline with a couple of overrides:
//
//	import (
//	    "context"
//	    "github.com/mvollan/stirlingforge/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Overrides: map[string]float64{"power_bore": 14},
//	})
//	if err != nil {
//	    // Out-of-range parameters, formula cycles and physically invalid
//	    // configurations all surface here with typed error codes.
//	}
//	snap := result.Snapshot
//
// # Main Packages
//
// ## Domain Logic
//
// [params] - Parameter registry with unit kinds and range constraints.
// Registration is the single validation point; everything downstream
// trusts registered values.
//
// [formula] - Derived value graph: named formulas over parameters and other
// formulas, topologically evaluated with cycle detection.
//
// [geometry] - The engine's parameter set, formula definitions and component
// specs (frame, cylinders, pistons, crankshaft, flywheel, conrod).
//
// [perf] - First-order performance estimation (swept volumes, compression
// ratio, power class) and the physical validity gate.
//
// [layout] - Placement policies (scatter, kinematic stub) and post-hoc
// axis-aligned bounding box overlap verification.
//
// ## Checking
//
// [mfg] - Manufacturability verdicts per component against machine profiles
// (mill, lathe, printer, saw) and bill-of-materials pricing.
//
// [catalog] - TOML machine park and material catalog loading, with built-in
// defaults for seeding.
//
// ## Infrastructure
//
// [cache] - Stage result cache keyed by parameter-set hash. File-backed for
// the CLI, null cache for tests.
//
// [store] - Snapshot persistence: file (CLI default), Redis, and MongoDB
// backends behind one interface, selected by DSN.
//
// [backend] - Geometry backend seam. The null backend stands in until a CAD
// kernel is wired up; the recording backend supports tests.
//
// [observability] - Pipeline, cache, and store hooks for metrics and tracing
// integration.
//
// ## Orchestration and Output
//
// [pipeline] - Complete design pipeline (derive → estimate → place → build →
// check) used by both CLI and API. Ensures consistent behavior across entry
// points.
//
// [report] - Terminal report tables (metrics, verdicts, BOM) rendered with
// lipgloss.
//
// [export] - Deterministic JSON snapshot export and changelog lines.
//
// [dot] - Graphviz rendering of the formula graph.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/geometry/... # Specific package
//
// [params]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/params
// [formula]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/formula
// [geometry]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/geometry
// [perf]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/perf
// [layout]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/layout
// [mfg]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/mfg
// [catalog]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/catalog
// [cache]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/cache
// [store]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/store
// [backend]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/backend
// [observability]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/pipeline
// [report]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/report
// [export]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/export
// [dot]: https://pkg.go.dev/github.com/mvollan/stirlingforge/pkg/dot
package pkg
