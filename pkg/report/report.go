// Package report renders design snapshots as styled terminal tables.
//
// Rendering is pure string building: callers decide where the output goes,
// so the same tables serve the CLI and tests. Colors degrade automatically
// on dumb terminals via lipgloss.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mvollan/stirlingforge/pkg/design"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleHeader     = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleTitle      = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleFeasible   = lipgloss.NewStyle().Foreground(colorGreen)
	styleInfeasible = lipgloss.NewStyle().Foreground(colorRed)
	styleUnknown    = lipgloss.NewStyle().Foreground(colorYellow)
	styleDim        = lipgloss.NewStyle().Foreground(colorDim)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return lipgloss.NewStyle()
		})
}

// Metrics renders the performance metrics table.
func Metrics(snap *design.Snapshot) string {
	t := newTable("Metric", "Value", "Unit")
	for _, m := range snap.Metrics {
		t.Row(m.Name, fmt.Sprintf("%.4g", m.Value), string(m.Unit))
	}
	return styleTitle.Render("Performance") + "\n" + t.Render()
}

// Verdicts renders the manufacturability table with per-row status colors.
func Verdicts(snap *design.Snapshot) string {
	rows := make([][]string, len(snap.Verdicts))
	for i, v := range snap.Verdicts {
		rows[i] = []string{v.ComponentID, string(v.Feasible), v.MachineID, v.Reason}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Component", "Verdict", "Machine", "Reason").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col != 1 || row >= len(snap.Verdicts) {
				return lipgloss.NewStyle()
			}
			switch snap.Verdicts[row].Feasible {
			case design.Feasible:
				return styleFeasible
			case design.Infeasible:
				return styleInfeasible
			default:
				return styleUnknown
			}
		})
	return styleTitle.Render("Manufacturability") + "\n" + t.Render()
}

// BOM renders the bill of materials. Unknown costs render as a dash,
// unavailable materials are flagged.
func BOM(snap *design.Snapshot) string {
	t := newTable("Component", "Material", "Qty", "Unit", "Line", "Stock")
	total := 0.0
	priced := 0
	for _, e := range snap.BOM {
		unit, line := "-", "-"
		if e.UnitCost != nil {
			unit = fmt.Sprintf("%.2f", *e.UnitCost)
		}
		if e.LineCost != nil {
			line = fmt.Sprintf("%.2f", *e.LineCost)
			total += *e.LineCost
			priced++
		}
		stock := "?"
		switch {
		case e.Available == nil:
		case *e.Available:
			stock = "yes"
		default:
			stock = "NO"
		}
		t.Row(e.ComponentID, e.MaterialCode, fmt.Sprintf("%d", e.Quantity), unit, line, stock)
	}

	out := styleTitle.Render("Bill of Materials") + "\n" + t.Render()
	if priced > 0 {
		out += "\n" + styleDim.Render(fmt.Sprintf("  priced lines: %d, total %.2f", priced, total))
	}
	return out
}

// Derived renders the derived geometry values with their provenance inputs.
func Derived(snap *design.Snapshot) string {
	t := newTable("Name", "Value", "Unit", "Inputs")
	for _, v := range snap.Derived {
		t.Row(v.Name, fmt.Sprintf("%.4g", v.Value), string(v.Unit), strings.Join(v.Inputs, ", "))
	}
	return styleTitle.Render("Derived Geometry") + "\n" + t.Render()
}

// Warnings renders non-fatal run warnings, or an empty string when none.
func Warnings(snap *design.Snapshot) string {
	if len(snap.Warnings) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(styleUnknown.Render("Warnings"))
	for _, w := range snap.Warnings {
		b.WriteString("\n  ")
		b.WriteString(styleDim.Render("! "))
		b.WriteString(w)
	}
	return b.String()
}

// Summary renders the full run report: metrics, verdicts, BOM and warnings.
func Summary(snap *design.Snapshot) string {
	sections := []string{
		Metrics(snap),
		Verdicts(snap),
		BOM(snap),
	}
	if w := Warnings(snap); w != "" {
		sections = append(sections, w)
	}
	return strings.Join(sections, "\n\n")
}
