package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mvollan/stirlingforge/pkg/catalog"
)

// catalogCommand creates the catalog management command.
func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage machine and material catalogs",
	}

	cmd.AddCommand(c.catalogInitCommand())
	cmd.AddCommand(c.catalogShowCommand())
	cmd.AddCommand(c.catalogPathCommand())

	return cmd
}

// catalogInitCommand creates the "catalog init" subcommand.
func (c *CLI) catalogInitCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Seed the catalog directory with the built-in machine park",
		Long: `Seed the catalog directory with the built-in machine park and
material catalog. Existing files are left untouched, so it is safe to
re-run after editing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := catalog.WriteDefaults(dir); err != nil {
				return err
			}
			printSuccess("Catalog initialized")
			printDetail("%s", catalog.MachinesPath(dir))
			printDetail("%s", catalog.MaterialsPath(dir))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", defaultCatalogDir(), "catalog directory")
	return cmd
}

// catalogShowCommand creates the "catalog show" subcommand.
func (c *CLI) catalogShowCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the loaded machine park and material catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			machines, err := catalog.LoadMachines(catalog.MachinesPath(dir))
			if err != nil {
				return err
			}
			materials, err := catalog.LoadMaterials(catalog.MaterialsPath(dir))
			if err != nil {
				return err
			}
			fmt.Println(machinesTable(machines))
			fmt.Println(materialsTable(materials))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", defaultCatalogDir(), "catalog directory")
	return cmd
}

// catalogPathCommand creates the "catalog path" subcommand.
func (c *CLI) catalogPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the default catalog directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(defaultCatalogDir())
			return nil
		},
	}
}

func newCatalogTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Bold(true).Foreground(colorGray).Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		}).
		Headers(headers...)
}

// machinesTable renders the machine park with the limits relevant per kind.
func machinesTable(machines []catalog.MachineProfile) string {
	t := newCatalogTable("Machine", "Kind", "Limits")
	for _, m := range machines {
		limits := ""
		switch m.Kind {
		case catalog.KindMill, catalog.KindPrinter:
			if m.Envelope != nil {
				limits = fmt.Sprintf("%.0f × %.0f × %.0f mm", m.Envelope.X, m.Envelope.Y, m.Envelope.Z)
			}
		case catalog.KindLathe:
			limits = fmt.Sprintf("swing %.0f mm, centers %.0f mm", m.SwingDiameterMM, m.BetweenCentersMM)
		case catalog.KindSaw:
			limits = fmt.Sprintf("blade %.0f mm, section %.0f mm", m.BladeDiameterMM, m.MaxSectionMM)
		}
		t.Row(m.ID, string(m.Kind), limits)
	}
	return t.Render()
}

// materialsTable renders the material catalog.
func materialsTable(materials []catalog.MaterialRecord) string {
	t := newCatalogTable("Code", "Name", "Stock", "Unit Price", "Available")
	for _, m := range materials {
		price := "—"
		if m.UnitPrice != nil {
			price = fmt.Sprintf("%.2f", *m.UnitPrice)
		}
		avail := "yes"
		if !m.Available {
			avail = "NO"
		}
		t.Row(m.Code, m.Name, string(m.Kind), price, avail)
	}
	return t.Render()
}
