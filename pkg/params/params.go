// Package params implements the parameter registry at the root of the
// generation pipeline.
//
// Every downstream stage is a pure function of the registered parameter set,
// so the registry fails fast: a duplicate name or a value outside its
// declared band rejects the registration before any derived computation
// runs, rather than letting a sentinel value propagate.
//
// Parameters are immutable once registered. A Registry is built once per
// generation run and never shared across runs.
package params

import (
	"math"
	"slices"

	"github.com/mvollan/stirlingforge/pkg/errors"
	"github.com/mvollan/stirlingforge/pkg/units"
)

// Parameter is a user-declared top-level quantity.
type Parameter struct {
	Name  string     `json:"name" bson:"name"`
	Value float64    `json:"value" bson:"value"`
	Unit  units.Kind `json:"unit" bson:"unit"`
}

// Constraint restricts the admissible values of a parameter.
type Constraint struct {
	Min float64
	Max float64
}

// Range builds an inclusive [min, max] constraint.
func Range(min, max float64) *Constraint {
	return &Constraint{Min: min, Max: max}
}

// Check returns a validation error if v falls outside the constraint band.
func (c *Constraint) Check(name string, v float64) error {
	if c == nil {
		return nil
	}
	if v < c.Min || v > c.Max {
		return errors.New(errors.ErrCodeInvalidParameter,
			"parameter %q: value %v outside [%v, %v]", name, v, c.Min, c.Max)
	}
	return nil
}

// Registry holds the immutable parameter set for one generation run.
// The zero value is not usable - use NewRegistry.
// Registry is not safe for concurrent registration; reads after the
// build phase are safe from any goroutine.
type Registry struct {
	byName map[string]Parameter
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Parameter)}
}

// Register validates and stores a parameter.
// Returns DUPLICATE_PARAMETER if the name is already present,
// INVALID_PARAMETER if the unit kind is undeclared, the value is not finite,
// or a constraint is violated.
func (r *Registry) Register(name string, value float64, unit units.Kind, c *Constraint) (Parameter, error) {
	if name == "" {
		return Parameter{}, errors.New(errors.ErrCodeInvalidParameter, "parameter name must not be empty")
	}
	if _, exists := r.byName[name]; exists {
		return Parameter{}, errors.New(errors.ErrCodeDuplicateParameter, "parameter %q already registered", name)
	}
	if !unit.Valid() {
		return Parameter{}, errors.New(errors.ErrCodeInvalidParameter, "parameter %q: unknown unit %q", name, unit)
	}
	if !finite(value) {
		return Parameter{}, errors.New(errors.ErrCodeInvalidParameter, "parameter %q: value must be finite", name)
	}
	if err := c.Check(name, value); err != nil {
		return Parameter{}, err
	}

	p := Parameter{Name: name, Value: value, Unit: unit}
	r.byName[name] = p
	r.order = append(r.order, name)
	return p, nil
}

// Get returns the parameter with the given name.
// The boolean reports whether it exists.
func (r *Registry) Get(name string) (Parameter, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Has reports whether a parameter with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Len returns the number of registered parameters.
func (r *Registry) Len() int { return len(r.byName) }

// Names returns parameter names in registration order.
func (r *Registry) Names() []string { return slices.Clone(r.order) }

// All returns the parameters in registration order.
func (r *Registry) All() []Parameter {
	out := make([]Parameter, len(r.order))
	for i, name := range r.order {
		out[i] = r.byName[name]
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
