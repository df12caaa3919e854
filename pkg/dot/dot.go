// Package dot renders the derived-value provenance graph to Graphviz DOT
// and, through go-graphviz, to SVG or PNG.
//
// Parameters render as rounded boxes, derived values as ellipses; edges run
// from each input to the value computed from it. The DOT output is the
// stable contract; image rendering is a convenience on top of it.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/mvollan/stirlingforge/pkg/formula"
	"github.com/mvollan/stirlingforge/pkg/params"
)

// Options configures provenance graph rendering.
type Options struct {
	// Detailed includes units (and values, when present) in node labels.
	// When false, only the name is shown.
	Detailed bool
}

// ToDOT converts the formula graph to Graphviz DOT. Parameters the formulas
// reference are included as source nodes. When values is non-nil the
// evaluated numbers appear in detailed labels.
func ToDOT(g *formula.Graph, reg *params.Registry, values map[string]formula.Value, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	// Parameter nodes first: every formula input that is not itself a
	// formula must come from the registry.
	paramNames := map[string]bool{}
	for _, name := range g.Names() {
		f, _ := g.Formula(name)
		for _, in := range f.Inputs {
			if _, isFormula := g.Formula(in.Name); !isFormula {
				paramNames[in.Name] = true
			}
		}
	}
	sorted := make([]string, 0, len(paramNames))
	for name := range paramNames {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		label := name
		if opts.Detailed {
			if p, ok := reg.Get(name); ok {
				label = fmt.Sprintf("%s\n%g %s", name, p.Value, p.Unit)
			}
		}
		fmt.Fprintf(&buf, "  %q [label=%q, shape=box, style=\"rounded,filled\", fillcolor=lightgrey];\n", name, label)
	}

	buf.WriteString("\n")
	for _, name := range g.Names() {
		f, _ := g.Formula(name)
		label := name
		if opts.Detailed {
			if v, ok := values[name]; ok {
				label = fmt.Sprintf("%s\n%.4g %s", name, v.Value, v.Unit)
			} else {
				label = fmt.Sprintf("%s\n%s", name, f.Unit)
			}
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", name, label)
	}

	buf.WriteString("\n")
	for _, name := range g.Names() {
		f, _ := g.Formula(name)
		inputs := make([]string, 0, len(f.Inputs))
		for _, in := range f.Inputs {
			inputs = append(inputs, in.Name)
		}
		sort.Strings(inputs)
		for _, in := range inputs {
			fmt.Fprintf(&buf, "  %q -> %q;\n", in, name)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// render runs Graphviz over a DOT string in the requested format.
func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

// FormatForPath picks the render format from a file extension, defaulting to
// DOT text for unknown extensions.
func FormatForPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".svg"):
		return "svg"
	case strings.HasSuffix(path, ".png"):
		return "png"
	default:
		return "dot"
	}
}
