package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/report"
	"github.com/mvollan/stirlingforge/pkg/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// designListModel - Interactive design snapshot browser
// =============================================================================

// snapshotLoadedMsg carries a fetched snapshot into the update loop.
type snapshotLoadedMsg struct {
	snap *design.Snapshot
	err  error
}

// designListModel is the bubbletea model for browsing stored designs.
// It has two views: the run ID list and a detail report for one snapshot.
type designListModel struct {
	store  store.Store
	ids    []string
	cursor int
	height int
	offset int

	detail *design.Snapshot
	err    error
}

// newDesignListModel creates a browser over the given run IDs.
func newDesignListModel(st store.Store, ids []string) designListModel {
	return designListModel{store: st, ids: ids, height: 15}
}

func (m designListModel) Init() tea.Cmd {
	return nil
}

// loadSnapshot fetches one snapshot off the update loop.
func (m designListModel) loadSnapshot(id string) tea.Cmd {
	st := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		snap, err := st.Get(ctx, id)
		return snapshotLoadedMsg{snap: snap, err: err}
	}
}

func (m designListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotLoadedMsg:
		m.detail = msg.snap
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.detail != nil || m.err != nil {
				m.detail = nil
				m.err = nil
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.detail == nil && m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.detail == nil && m.cursor < len(m.ids)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if m.detail == nil && len(m.ids) > 0 {
				return m, m.loadSnapshot(m.ids[m.cursor])
			}
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m designListModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s\n",
			StyleWarning.Render(m.err.Error()),
			listDimStyle.Render("esc back  q quit"))
	}
	if m.detail != nil {
		return m.detailView()
	}
	return m.listView()
}

func (m designListModel) listView() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Stored Designs"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.ids) {
		end = len(m.ids)
	}
	for i := m.offset; i < end; i++ {
		line := "  " + listNormalStyle.Render(m.ids[i])
		if i == m.cursor {
			line = listSelectedStyle.Render("▸ " + m.ids[i])
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.ids) > m.height {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%d/%d", m.cursor+1, len(m.ids))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m designListModel) detailView() string {
	var b strings.Builder

	snap := m.detail
	b.WriteString(StyleTitle.Render(snap.RunID))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(snap.CreatedAt.Format(time.RFC3339) + "  " + report.Summary(snap)))
	b.WriteString("\n\n")
	b.WriteString(report.Metrics(snap))
	b.WriteString("\n")
	b.WriteString(report.Verdicts(snap))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n")
	return b.String()
}
