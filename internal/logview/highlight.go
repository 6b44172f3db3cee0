package logview

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// dslLexer is a minimal Chroma lexer for the canvas DSL's surface syntax
// (command identifiers, string/number literals, `#` comments, punctuation)
// so the log viewer can show a script action's DSL payload with syntax
// coloring instead of a flat wall of text. Grounded on the teacher's
// internal/highlight package, which wraps Chroma's Tokenise/Format pair
// the same way; there the language is looked up by name (Go, Python, ...)
// since the teacher highlights source files it didn't invent, whereas here
// the language itself is ours, so it's registered as a Chroma lexer rather
// than looked up.
var dslLexer = lexers.Register(chroma.MustNewLexer(
	&chroma.Config{
		Name:      "revel-dsl",
		Filenames: []string{"*.dsl"},
	},
	chroma.Rules{
		"root": {
			{Pattern: `#.*$`, Type: chroma.Comment},
			{Pattern: `"(\\.|[^"\\])*"`, Type: chroma.LiteralString},
			{Pattern: `-?\d+\.\d+|-?\d+`, Type: chroma.LiteralNumber},
			{Pattern: `\b(let|set|on|for|in|bind|if|else)\b`, Type: chroma.Keyword},
			{Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Type: chroma.NameFunction},
			{Pattern: `[(),=.+\-*/<>!&|]`, Type: chroma.Operator},
			{Pattern: `\s+`, Type: chroma.Whitespace},
		},
	},
))

// highlightDSL returns an ANSI-colored rendering of a DSL script for
// terminal display, falling back to the plain text if tokenizing fails.
func highlightDSL(text string) string {
	sty := styles.Get("monokai")
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	it, err := dslLexer.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, sty, it); err != nil {
		return text
	}
	return strings.TrimRight(buf.String(), "\n")
}
