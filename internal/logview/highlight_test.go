package logview

import (
	"strings"
	"testing"
)

func TestHighlightDSL_EmitsANSIEscapes(t *testing.T) {
	out := highlightDSL("note_create a \"hi\" (0,0) (1,1) # a comment")
	if out == "" {
		t.Fatalf("expected non-empty highlighted output")
	}
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("expected ANSI escape sequences in highlighted output, got %q", out)
	}
}

func TestHighlightDSL_EmptyInputYieldsEmptyOutput(t *testing.T) {
	if got := highlightDSL(""); got != "" {
		t.Fatalf("expected empty output for empty input, got %q", got)
	}
}
