package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mvollan/stirlingforge/pkg/export"
	"github.com/mvollan/stirlingforge/pkg/report"
	"github.com/mvollan/stirlingforge/pkg/store"
)

// designsCommand creates the stored-design management command.
func (c *CLI) designsCommand() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "designs",
		Short: "Work with stored design snapshots",
	}
	cmd.PersistentFlags().StringVar(&dsn, "store", "", "snapshot store DSN (file path, redis:// or mongodb://)")

	cmd.AddCommand(c.designsListCommand(&dsn))
	cmd.AddCommand(c.designsShowCommand(&dsn))
	cmd.AddCommand(c.designsExportCommand(&dsn))
	cmd.AddCommand(c.designsBrowseCommand(&dsn))

	return cmd
}

// openStore opens the snapshot store selected by --store.
func openStore(ctx context.Context, dsn string) (store.Store, error) {
	return store.Open(ctx, dsn)
}

// designsListCommand creates the "designs list" subcommand.
func (c *CLI) designsListCommand(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored design run IDs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), *dsn)
			if err != nil {
				return err
			}
			defer st.Close()

			ids, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				printInfo("No stored designs")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

// designsShowCommand creates the "designs show" subcommand.
func (c *CLI) designsShowCommand(dsn *string) *cobra.Command {
	var showDerived bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the report for a stored design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), *dsn)
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(report.Summary(snap))
			fmt.Println(report.Metrics(snap))
			fmt.Println(report.Verdicts(snap))
			fmt.Println(report.BOM(snap))
			if showDerived {
				fmt.Println(report.Derived(snap))
			}
			if len(snap.Warnings) > 0 {
				fmt.Println(report.Warnings(snap))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDerived, "derived", false, "print the full derived value table")
	return cmd
}

// designsExportCommand creates the "designs export" subcommand.
func (c *CLI) designsExportCommand(dsn *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export a stored design snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), *dsn)
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = snap.RunID + ".json"
			}
			if err := export.ExportJSON(snap, output); err != nil {
				return err
			}
			printSuccess("Exported %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default <run-id>.json)")
	return cmd
}

// designsBrowseCommand creates the "designs browse" subcommand, an
// interactive snapshot browser.
func (c *CLI) designsBrowseCommand(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse stored designs interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), *dsn)
			if err != nil {
				return err
			}
			defer st.Close()

			ids, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				printInfo("No stored designs")
				return nil
			}

			model := newDesignListModel(st, ids)
			program := tea.NewProgram(model, tea.WithContext(cmd.Context()))
			_, err = program.Run()
			return err
		},
	}
}
