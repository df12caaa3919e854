package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/store"
)

func browserFixture(t *testing.T) (designListModel, []string) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	ids := []string{"run-a", "run-b", "run-c"}
	for _, id := range ids {
		snap := &design.Snapshot{RunID: id, CreatedAt: time.Now().UTC()}
		if err := st.Set(context.Background(), snap); err != nil {
			t.Fatal(err)
		}
	}
	return newDesignListModel(st, ids), ids
}

func TestBrowserNavigation(t *testing.T) {
	m, ids := browserFixture(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(designListModel)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(designListModel)
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.cursor)
	}

	// Cannot move above the first entry.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(designListModel)
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.cursor)
	}

	view := m.View()
	for _, id := range ids {
		if !strings.Contains(view, id) {
			t.Errorf("list view missing %q", id)
		}
	}
}

func TestBrowserOpenAndBack(t *testing.T) {
	m, ids := browserFixture(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(designListModel)
	if cmd == nil {
		t.Fatal("enter should load the selected snapshot")
	}

	next, _ = m.Update(cmd())
	m = next.(designListModel)
	if m.err != nil {
		t.Fatalf("load: %v", m.err)
	}
	if m.detail == nil || m.detail.RunID != ids[0] {
		t.Fatalf("detail = %+v, want %s", m.detail, ids[0])
	}
	if !strings.Contains(m.View(), ids[0]) {
		t.Error("detail view missing run ID")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = next.(designListModel)
	if m.detail != nil {
		t.Error("esc should return to the list")
	}
}

func TestBrowserQuit(t *testing.T) {
	m, _ := browserFixture(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit")
	}
}
