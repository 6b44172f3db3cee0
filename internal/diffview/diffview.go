// Package diffview renders a unified diff between two DSL turns for the
// action-log viewer (SPEC_FULL.md §6's log-viewer sub-surface): consecutive
// AI turns against the same space commonly differ by a line or two, and a
// diff is far more readable than two full scripts side by side.
package diffview

import (
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Unified computes a unified diff of before -> after, labelled label for
// both sides (there is no filesystem path backing either string, only an
// action_log row id). Returns "" if the two are identical.
func Unified(label, before, after string) string {
	if before == after {
		return ""
	}
	uri := span.URIFromPath(label)
	edits := myers.ComputeEdits(uri, before, after)
	if len(edits) == 0 {
		return ""
	}
	diff := fmt.Sprint(gotextdiff.ToUnified(label, label, before, edits))
	if strings.TrimSpace(diff) == "" {
		return ""
	}
	return diff
}
