// Package backend is the seam between the design pipeline and solid-geometry
// construction.
//
// The pipeline never imports a CAD kernel directly: it hands each component
// spec and its placement to a Backend and records the opaque handle that
// comes back. A failure to build one component is recorded on that
// component's BodyRef and does not abort the run - the rest of the design
// remains inspectable.
//
// Two implementations ship with the module. Null is the CLI default; it
// fabricates deterministic handles without constructing anything. Recording
// wraps another backend and keeps the build calls it saw, which is what the
// tests use to assert ordering and failure tolerance.
package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/errors"
)

// Backend constructs solid bodies for placed components. Implementations
// must be safe for reuse across runs but are called sequentially within one.
type Backend interface {
	// Name identifies the backend in logs and snapshots.
	Name() string

	// Build constructs the body for one placed component and returns an
	// opaque handle. Errors are per-component; callers record them and
	// continue.
	Build(ctx context.Context, spec design.ComponentSpec, placement design.Placement) (string, error)
}

// Null is a backend that builds nothing. Handles are deterministic so that
// snapshots of identical runs stay byte-identical.
type Null struct{}

// NewNull returns the no-op backend.
func NewNull() *Null { return &Null{} }

func (*Null) Name() string { return "null" }

func (*Null) Build(_ context.Context, spec design.ComponentSpec, _ design.Placement) (string, error) {
	return "null:" + spec.ID, nil
}

// Call is one recorded Build invocation.
type Call struct {
	Spec      design.ComponentSpec
	Placement design.Placement
}

// Recording wraps another backend and remembers every Build call. Fail maps
// component IDs to errors injected instead of delegating, which lets tests
// exercise per-component failure tolerance.
type Recording struct {
	Inner Backend
	Fail  map[string]error

	mu    sync.Mutex
	calls []Call
}

// NewRecording wraps inner (Null when nil).
func NewRecording(inner Backend) *Recording {
	if inner == nil {
		inner = NewNull()
	}
	return &Recording{Inner: inner}
}

func (r *Recording) Name() string { return "recording(" + r.Inner.Name() + ")" }

func (r *Recording) Build(ctx context.Context, spec design.ComponentSpec, placement design.Placement) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Spec: spec, Placement: placement})
	r.mu.Unlock()

	if err, ok := r.Fail[spec.ID]; ok {
		return "", err
	}
	return r.Inner.Build(ctx, spec, placement)
}

// Calls returns a copy of the recorded invocations in order.
func (r *Recording) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// BuildAll runs the backend over every placed component. Per-component
// failures become GEOMETRY_BACKEND errors recorded on the BodyRef; the first
// return value always has one entry per placement. The error slice carries
// the same failures for the caller's warning log.
func BuildAll(ctx context.Context, b Backend, specs []design.ComponentSpec, placements []design.Placement) ([]design.BodyRef, []error) {
	byID := make(map[string]design.ComponentSpec, len(specs))
	for _, s := range specs {
		byID[s.ID] = s
	}

	refs := make([]design.BodyRef, 0, len(placements))
	var failures []error
	for _, p := range placements {
		spec, ok := byID[p.ComponentID]
		if !ok {
			err := errors.New(errors.ErrCodeGeometryBackend, "backend %s: placement references unknown component %q", b.Name(), p.ComponentID)
			refs = append(refs, design.BodyRef{ComponentID: p.ComponentID, Error: err.Error()})
			failures = append(failures, err)
			continue
		}

		handle, err := b.Build(ctx, spec, p)
		if err != nil {
			wrapped := errors.Wrap(errors.ErrCodeGeometryBackend, err, "backend %s: component %q", b.Name(), spec.ID)
			refs = append(refs, design.BodyRef{ComponentID: spec.ID, Error: wrapped.Error()})
			failures = append(failures, wrapped)
			continue
		}
		refs = append(refs, design.BodyRef{ComponentID: spec.ID, Handle: handle})
	}
	return refs, failures
}

var _ Backend = (*Null)(nil)
var _ Backend = (*Recording)(nil)

// String implements fmt.Stringer for log lines.
func (c Call) String() string {
	return fmt.Sprintf("%s@(%g,%g,%g)", c.Spec.ID, c.Placement.Position.X, c.Placement.Position.Y, c.Placement.Position.Z)
}
