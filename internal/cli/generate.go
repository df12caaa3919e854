package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvollan/stirlingforge/pkg/export"
	"github.com/mvollan/stirlingforge/pkg/layout"
	"github.com/mvollan/stirlingforge/pkg/pipeline"
	"github.com/mvollan/stirlingforge/pkg/report"
	"github.com/mvollan/stirlingforge/pkg/store"
)

// generateOptions holds the flag state for the generate command.
type generateOptions struct {
	paramsPath    string
	sets          []string
	policy        string
	catalogDir    string
	output        string
	changelogPath string
	storeDSN      string
	showDerived   bool
	noCache       bool
	noStore       bool
	refresh       bool
}

// generateCommand creates the generate command, the main entry point of the tool.
func (c *CLI) generateCommand() *cobra.Command {
	var o generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an engine design from parameters",
		Long: `Generate a complete engine design.

The pipeline derives the full geometry from the top-level parameters,
estimates performance, places the components, builds solid bodies through
the geometry backend, and checks every part against the machine park.
The resulting snapshot is persisted and can be exported as JSON.

Parameters come from a TOML file (--params) and/or repeated --set flags;
--set wins on conflicts. Unset parameters use their defaults.

Derived geometry and placements are cached per parameter-set hash, so a
repeat run with identical parameters is nearly instant. Use --refresh to
force recomputation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), o)
		},
	}

	cmd.Flags().StringVarP(&o.paramsPath, "params", "p", "", "TOML file with parameter overrides")
	cmd.Flags().StringArrayVarP(&o.sets, "set", "s", nil, "override one parameter (name=value, repeatable)")
	cmd.Flags().StringVar(&o.policy, "policy", "", "placement policy: scatter (default), kinematic")
	cmd.Flags().StringVar(&o.catalogDir, "catalog", defaultCatalogDir(), "machine/material catalog directory")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "export the snapshot as JSON to this path")
	cmd.Flags().StringVar(&o.changelogPath, "changelog", "", "append a one-line run summary to this file")
	cmd.Flags().StringVar(&o.storeDSN, "store", "", "snapshot store DSN (file path, redis:// or mongodb://)")
	cmd.Flags().BoolVar(&o.showDerived, "derived", false, "print the full derived value table")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable stage caching")
	cmd.Flags().BoolVar(&o.noStore, "no-store", false, "do not persist the snapshot")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "recompute even when cached results exist")

	return cmd
}

// runGenerate executes the pipeline and reports, persists and exports the result.
func (c *CLI) runGenerate(ctx context.Context, o generateOptions) error {
	overrides, filePolicy, err := collectOverrides(o.paramsPath, o.sets)
	if err != nil {
		return err
	}
	policy := o.policy
	if policy == "" {
		policy = filePolicy
	}

	opts := pipeline.Options{
		Overrides:  overrides,
		CatalogDir: o.catalogDir,
		Refresh:    o.refresh,
		Logger:     c.Logger,
	}
	if policy != "" {
		opts.Policy = layout.Policy(policy)
	}

	runner := c.newRunner(o.noCache)
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Generating design...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	snap := result.Snapshot
	prog.done(fmt.Sprintf("Generated design %s", snap.RunID))

	printSuccess("%s", report.Summary(snap))
	printDetail("parameters %s  derived %s  layout %s",
		result.ParamsHash[:12], cacheTag(result.CacheInfo.DerivedHit), cacheTag(result.CacheInfo.LayoutHit))

	fmt.Println(report.Metrics(snap))
	fmt.Println(report.Verdicts(snap))
	fmt.Println(report.BOM(snap))
	if o.showDerived {
		fmt.Println(report.Derived(snap))
	}
	if len(snap.Warnings) > 0 {
		fmt.Println(report.Warnings(snap))
	}

	if !o.noStore {
		st, err := store.Open(ctx, o.storeDSN)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Set(ctx, snap); err != nil {
			return err
		}
		printInfo("Stored as %s", StyleHighlight.Render(snap.RunID))
	}

	if o.output != "" {
		if err := export.ExportJSON(snap, o.output); err != nil {
			return err
		}
		printInfo("Exported %s", o.output)
	}
	if o.changelogPath != "" {
		if err := export.AppendChangelog(o.changelogPath, snap); err != nil {
			return err
		}
	}
	return nil
}
