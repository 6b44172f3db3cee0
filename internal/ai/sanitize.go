package ai

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize recovers a candidate DSL script from a provider's raw stdout
// (spec.md §4.8 step 3: "Strips ANSI sequences, provider chrome, and
// code-fence markers from stdout to recover a candidate DSL"). ANSI
// stripping is delegated to charmbracelet/x/ansi (already a direct
// dependency of the teacher, used there for terminal-width-aware
// rendering rather than stripping, but the same library covers both).
func Sanitize(raw string) string {
	text := ansi.Strip(raw)
	text = extractFencedBlock(text)
	text = stripChromeLines(text)
	return strings.TrimSpace(text)
}

// extractFencedBlock returns the contents of the first ``` fenced block, if
// one exists (providers commonly wrap DSL in a markdown code fence, with
// or without a language tag). Text with no fence is returned unchanged.
func extractFencedBlock(text string) string {
	lines := strings.Split(text, "\n")
	start, end := -1, -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if start == -1 {
				start = i
			} else {
				end = i
				break
			}
		}
	}
	if start == -1 || end == -1 {
		return text
	}
	return strings.Join(lines[start+1:end], "\n")
}

// stripChromeLines drops CLI chrome lines some providers print around
// their actual output, e.g. "[12:03:04] codex" or
// "[tokens used: 512]" — grounded on the original implementation's
// extract_codex_segment heuristic. Only these two shapes (a bracketed clock
// time, a bracketed token count) are dropped; anything else is assumed to
// be DSL (or a comment the DSL lexer already tolerates).
func stripChromeLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		isTokenCount := strings.HasPrefix(strings.ToLower(trimmed), "[tokens used")
		if strings.HasPrefix(trimmed, "[") && strings.Contains(trimmed, "]") && (looksLikeTimestampChrome(trimmed) || isTokenCount) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func looksLikeTimestampChrome(line string) bool {
	closeIdx := strings.Index(line, "]")
	if closeIdx < 0 {
		return false
	}
	inside := line[1:closeIdx]
	if inside == "" {
		return false
	}
	for _, r := range inside {
		if r != ':' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
