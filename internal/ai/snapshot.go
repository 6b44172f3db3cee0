package ai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xonecas/revel/internal/model"
)

// RenderSpaceDSL renders every live element of spaceID back into DSL
// source, in z-order, so it can be fed to a provider as "what the canvas
// currently looks like" (spec.md §4.8 step 1's "truncated current-space
// snapshot as DSL"). Aliases are synthesized (e0, e1, ...) since the
// element id itself isn't a valid DSL identifier.
func RenderSpaceDSL(graph *model.Graph, spaceID string) string {
	elements := graph.Elements(spaceID)
	sort.Slice(elements, func(i, j int) bool {
		return elements[i].Pos.Get().Z < elements[j].Pos.Get().Z
	})

	var b strings.Builder
	for i, e := range elements {
		alias := fmt.Sprintf("e%d", i)
		line := renderElement(alias, e)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func renderElement(alias string, e *model.Element) string {
	pos := e.Pos.Get()
	sz := e.Sz.Get()
	point := func(x, y int) string { return fmt.Sprintf("(%d,%d)", x, y) }

	switch e.Kind {
	case model.KindNote:
		return fmt.Sprintf("note_create %s %s %s %s", alias, quote(e.Text.Get()), point(pos.X, pos.Y), point(sz.W, sz.H))
	case model.KindPaperNote:
		return fmt.Sprintf("paper_note_create %s %s %s %s", alias, quote(e.Text.Get()), point(pos.X, pos.Y), point(sz.W, sz.H))
	case model.KindInlineText:
		return fmt.Sprintf("text_create %s %s %s %s", alias, quote(e.Text.Get()), point(pos.X, pos.Y), point(sz.W, sz.H))
	case model.KindShape:
		kind := "rectangle"
		if e.Shape != nil {
			kind = string(e.Shape.ShapeKind)
		}
		return fmt.Sprintf("shape_create %s %s %s %s %s", alias, kind, quote(e.Text.Get()), point(pos.X, pos.Y), point(sz.W, sz.H))
	case model.KindMedia:
		if e.MediaData == nil {
			return ""
		}
		cmd := map[model.MediaKind]string{
			model.MediaImage: "image_create",
			model.MediaVideo: "video_create",
			model.MediaAudio: "audio_create",
		}[e.MediaData.Kind]
		if cmd == "" {
			return ""
		}
		return fmt.Sprintf("%s %s %s %s", cmd, alias, point(pos.X, pos.Y), point(sz.W, sz.H))
	case model.KindConnection:
		if e.Conn == nil {
			return ""
		}
		return fmt.Sprintf("# connection %s -> %s", e.Conn.FromElementID, e.Conn.ToElementID)
	case model.KindSpaceRef:
		return fmt.Sprintf("# space_ref %s -> space %s", alias, e.Text.Get())
	case model.KindFreehand:
		return fmt.Sprintf("# freehand drawing %s", alias)
	default:
		return ""
	}
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// truncateUTF8 trims s to at most maxBytes without splitting a multi-byte
// rune (spec.md §4.8: "Truncation is UTF-8-boundary-safe to
// max_context_bytes"). Returns the possibly-truncated text and whether any
// trimming happened.
func truncateUTF8(s string, maxBytes int) (string, bool) {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s, false
	}
	cut := maxBytes
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
