package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvollan/stirlingforge/pkg/dot"
	"github.com/mvollan/stirlingforge/pkg/geometry"
	"github.com/mvollan/stirlingforge/pkg/params"
)

// graphCommand creates the graph command for visualizing the formula DAG.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		paramsPath string
		sets       []string
		output     string
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the derived-geometry formula graph",
		Long: `Render the derived-geometry formula graph.

Parameters appear as boxes, derived values as ellipses, and edges follow
the direction of computation. With --detailed each node also shows the
value it evaluates to under the given parameters.

The output format follows the file extension: .svg, .png, or .dot for
the raw Graphviz source. Without --output the DOT source is printed to
stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), paramsPath, sets, output, detailed)
		},
	}

	cmd.Flags().StringVarP(&paramsPath, "params", "p", "", "TOML file with parameter overrides")
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "override one parameter (name=value, repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.svg, .png, or .dot)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "annotate nodes with evaluated values")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, paramsPath string, sets []string, output string, detailed bool) error {
	overrides, _, err := collectOverrides(paramsPath, sets)
	if err != nil {
		return err
	}

	reg := params.NewRegistry()
	if err := geometry.Register(reg, overrides); err != nil {
		return err
	}
	g := geometry.Formulas()
	values, _, err := g.Evaluate(reg)
	if err != nil {
		return err
	}

	src := dot.ToDOT(g, reg, values, dot.Options{Detailed: detailed})

	if output == "" {
		fmt.Print(src)
		return nil
	}

	var data []byte
	switch format := dot.FormatForPath(output); format {
	case "dot":
		data = []byte(src)
	case "svg":
		data, err = dot.RenderSVG(ctx, src)
	case "png":
		data, err = dot.RenderPNG(ctx, src)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Wrote %s", output)
	return nil
}
