// Package formula evaluates a set of named formulas in dependency order.
//
// Each formula declares its exact input set. Inputs resolve either to a
// registered parameter or to another formula in the same graph, which makes
// the formula set a DAG by construction: the graph is topologically sorted
// before evaluation and a cycle is rejected before evaluating any member.
//
// Unit kinds are checked at resolution time. A formula that declares an
// input as millimeters while the registry stores it as degrees fails with
// UNIT_MISMATCH rather than silently coercing.
//
// Evaluation is deterministic: insertion order breaks ties in the
// topological order, so identical inputs always produce identical outputs.
package formula

import (
	"slices"
	"strings"

	"github.com/mvollan/stirlingforge/pkg/errors"
	"github.com/mvollan/stirlingforge/pkg/params"
	"github.com/mvollan/stirlingforge/pkg/units"
)

// Input declares one named dependency of a formula together with the unit
// kind the formula expects it in.
type Input struct {
	Name string
	Unit units.Kind
}

// In is shorthand for declaring an input.
func In(name string, unit units.Kind) Input { return Input{Name: name, Unit: unit} }

// Args carries resolved input values into an Eval func, keyed by input name.
type Args map[string]float64

// Formula is a pure function from declared inputs to one derived value.
type Formula struct {
	Name   string
	Unit   units.Kind
	Inputs []Input
	Eval   func(in Args) float64
}

// Value is an evaluated derived value with formula provenance.
type Value struct {
	Name   string     `json:"name" bson:"name"`
	Value  float64    `json:"value" bson:"value"`
	Unit   units.Kind `json:"unit" bson:"unit"`
	Inputs []string   `json:"inputs,omitempty" bson:"inputs,omitempty"`
}

// Graph is an ordered set of formulas. The zero value is not usable - use
// NewGraph. Graph is not safe for concurrent mutation.
type Graph struct {
	formulas map[string]Formula
	order    []string
}

// NewGraph creates an empty formula graph.
func NewGraph() *Graph {
	return &Graph{formulas: make(map[string]Formula)}
}

// Add registers a formula. Names must be unique within the graph and must
// not be resolvable before evaluation (inputs are checked lazily, since a
// formula may reference one added later).
func (g *Graph) Add(f Formula) error {
	if f.Name == "" {
		return errors.New(errors.ErrCodeInvalidOptions, "formula name must not be empty")
	}
	if _, exists := g.formulas[f.Name]; exists {
		return errors.New(errors.ErrCodeInvalidOptions, "formula %q already declared", f.Name)
	}
	if f.Eval == nil {
		return errors.New(errors.ErrCodeInvalidOptions, "formula %q has no evaluator", f.Name)
	}
	if !f.Unit.Valid() {
		return errors.New(errors.ErrCodeUnitMismatch, "formula %q: unknown output unit %q", f.Name, f.Unit)
	}
	g.formulas[f.Name] = f
	g.order = append(g.order, f.Name)
	return nil
}

// MustAdd is Add for statically-declared formula tables; it panics on the
// programming errors Add reports.
func (g *Graph) MustAdd(f Formula) {
	if err := g.Add(f); err != nil {
		panic(err)
	}
}

// Names returns formula names in insertion order.
func (g *Graph) Names() []string { return slices.Clone(g.order) }

// Formula returns the named formula and whether it exists.
func (g *Graph) Formula(name string) (Formula, bool) {
	f, ok := g.formulas[name]
	return f, ok
}

// Dependencies returns, in declaration order, the input names of the named
// formula that resolve to other formulas in the graph (parameters excluded).
func (g *Graph) Dependencies(name string) []string {
	f, ok := g.formulas[name]
	if !ok {
		return nil
	}
	var deps []string
	for _, in := range f.Inputs {
		if _, isFormula := g.formulas[in.Name]; isFormula {
			deps = append(deps, in.Name)
		}
	}
	return deps
}

// Evaluate resolves every formula against the registry in topological order
// and returns the derived values keyed by name plus the evaluation order.
//
// Fails with CYCLIC_DEPENDENCY before evaluating any formula if the graph
// has a cycle, MISSING_INPUT if an input matches neither a parameter nor a
// formula, and UNIT_MISMATCH if a declared input unit disagrees with the
// stored unit of the parameter or upstream formula.
func (g *Graph) Evaluate(reg *params.Registry) (map[string]Value, []string, error) {
	order, err := g.topoOrder()
	if err != nil {
		return nil, nil, err
	}

	values := make(map[string]Value, len(order))
	for _, name := range order {
		f := g.formulas[name]
		args := make(Args, len(f.Inputs))
		provenance := make([]string, 0, len(f.Inputs))

		for _, in := range f.Inputs {
			v, unit, err := g.resolve(reg, values, name, in)
			if err != nil {
				return nil, nil, err
			}
			if unit != in.Unit {
				return nil, nil, errors.New(errors.ErrCodeUnitMismatch,
					"formula %q: input %q declared as %s but stored as %s", name, in.Name, in.Unit, unit)
			}
			args[in.Name] = v
			provenance = append(provenance, in.Name)
		}

		values[name] = Value{
			Name:   name,
			Value:  f.Eval(args),
			Unit:   f.Unit,
			Inputs: provenance,
		}
	}
	return values, order, nil
}

// resolve looks up one input: evaluated formulas shadow nothing (names are
// disjoint from parameters by convention; a formula name wins if both exist).
func (g *Graph) resolve(reg *params.Registry, values map[string]Value, formula string, in Input) (float64, units.Kind, error) {
	if v, ok := values[in.Name]; ok {
		return v.Value, v.Unit, nil
	}
	if _, isFormula := g.formulas[in.Name]; isFormula {
		// Present in the graph but not yet evaluated: topological order
		// guarantees this cannot happen unless resolve is misused.
		return 0, "", errors.New(errors.ErrCodeMissingInput,
			"formula %q: input %q not yet evaluated", formula, in.Name)
	}
	if p, ok := reg.Get(in.Name); ok {
		return p.Value, p.Unit, nil
	}
	return 0, "", errors.New(errors.ErrCodeMissingInput,
		"formula %q: input %q matches no parameter or formula", formula, in.Name)
}

// topoOrder sorts formulas so every formula follows its in-graph inputs.
// Ties break by insertion order. Cycles are detected with depth-first
// search using white/gray/black coloring; the error names the cycle.
func (g *Graph) topoOrder() ([]string, error) {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.order))
	order := make([]string, 0, len(g.order))
	var stack []string
	var cycle []string

	var dfs func(name string) bool
	dfs = func(name string) bool {
		color[name] = gray
		stack = append(stack, name)
		for _, dep := range g.Dependencies(name) {
			switch color[dep] {
			case white:
				if !dfs(dep) {
					return false
				}
			case gray:
				cycle = cyclePath(stack, dep)
				return false
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
		order = append(order, name)
		return true
	}

	for _, name := range g.order {
		if color[name] == white {
			if !dfs(name) {
				return nil, errors.New(errors.ErrCodeCyclicDependency,
					"formula cycle: %s", strings.Join(cycle, " -> "))
			}
		}
	}
	return order, nil
}

// cyclePath extracts the cycle members from the DFS stack, starting at the
// first occurrence of the revisited node and closing the loop.
func cyclePath(stack []string, start string) []string {
	i := slices.Index(stack, start)
	if i < 0 {
		return append(slices.Clone(stack), start)
	}
	return append(slices.Clone(stack[i:]), start)
}
