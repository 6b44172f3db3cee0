package diffview

import (
	"strings"
	"testing"
)

func TestUnified_IdenticalTextsReturnEmpty(t *testing.T) {
	if got := Unified("row-1", "note_create a \"x\" (0,0) (1,1)", "note_create a \"x\" (0,0) (1,1)"); got != "" {
		t.Fatalf("expected no diff for identical text, got %q", got)
	}
}

func TestUnified_ChangedLineProducesUnifiedDiff(t *testing.T) {
	before := "note_create a \"x\" (0,0) (1,1)\n"
	after := "note_create a \"y\" (0,0) (1,1)\n"
	got := Unified("row-2", before, after)
	if got == "" {
		t.Fatalf("expected a non-empty diff")
	}
	if !strings.Contains(got, "-note_create a \"x\"") || !strings.Contains(got, "+note_create a \"y\"") {
		t.Fatalf("expected unified +/- lines, got %q", got)
	}
}
