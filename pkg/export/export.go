// Package export writes design snapshots to files and maintains the run
// changelog.
//
// The snapshot export is the reporting contract: a single self-describing
// JSON document with the inputs, derived values, metrics, placements,
// verdicts and BOM of one run. The changelog records one line per exported
// run; it is an append-only audit trail, not a revision history.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mvollan/stirlingforge/pkg/design"
)

// WriteJSON encodes a snapshot as indented JSON and writes it to w.
// The output can be re-read with [design.UnmarshalSnapshot].
func WriteJSON(snap *design.Snapshot, w io.Writer) error {
	data, err := design.MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ExportJSON writes a snapshot to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(snap *design.Snapshot, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(snap, f)
}

// ChangelogFile is the default changelog basename.
const ChangelogFile = "CHANGELOG"

// Summary builds the one-line description recorded in the changelog:
// component count, feasibility tally and warning count.
func Summary(snap *design.Snapshot) string {
	feasible := 0
	for _, v := range snap.Verdicts {
		if v.Feasible == design.Feasible {
			feasible++
		}
	}
	parts := []string{
		fmt.Sprintf("%d components", len(snap.Components)),
		fmt.Sprintf("%d/%d feasible", feasible, len(snap.Verdicts)),
	}
	if len(snap.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", len(snap.Warnings)))
	}
	return strings.Join(parts, ", ")
}

// AppendChangelog appends one run line to the changelog at path:
//
//	<RFC3339 timestamp> <run id> <summary>
func AppendChangelog(path string, snap *design.Snapshot) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open changelog: %w", err)
	}
	defer f.Close()

	ts := snap.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	line := fmt.Sprintf("%s %s %s\n", ts.UTC().Format(time.RFC3339), snap.RunID, Summary(snap))
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append changelog: %w", err)
	}
	return nil
}
