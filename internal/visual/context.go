// Package visual implements the per-kind visual behavior of elements: draw
// routines, connection-point/resize-handle picking, inline-edit overlays,
// and the quadtree spatial index that backs picking queries (spec.md §4.4).
//
// Rendering is abstracted behind DrawContext so the package has no
// dependency on a specific graphics toolkit; a terminal, a GTK cairo
// surface, or (as here) a test recorder can all implement it.
package visual

import "github.com/xonecas/revel/internal/model"

// DrawContext is the minimal vector-drawing surface a draw routine needs:
// filled/stroked rectangles, lines, text, and circular handles. Coordinates
// are canvas space; the caller is responsible for any screen transform.
type DrawContext interface {
	FillRect(x, y, w, h float64, c model.Color)
	StrokeRect(x, y, w, h float64, c model.Color, width float64)
	Line(x1, y1, x2, y2 float64, c model.Color, width float64)
	Text(x, y float64, text string, c model.Color)
	Circle(cx, cy, r float64, c model.Color, filled bool)
}

// RecordingContext is a DrawContext that appends every call to Ops instead
// of rendering anything, used by tests.
type RecordingContext struct {
	Ops []Op
}

// Op is one recorded drawing call.
type Op struct {
	Kind string
	X, Y, X2, Y2, W, H, R, Width float64
	Text                         string
	Color                        model.Color
	Filled                       bool
}

func (c *RecordingContext) FillRect(x, y, w, h float64, col model.Color) {
	c.Ops = append(c.Ops, Op{Kind: "fill_rect", X: x, Y: y, W: w, H: h, Color: col})
}

func (c *RecordingContext) StrokeRect(x, y, w, h float64, col model.Color, width float64) {
	c.Ops = append(c.Ops, Op{Kind: "stroke_rect", X: x, Y: y, W: w, H: h, Color: col, Width: width})
}

func (c *RecordingContext) Line(x1, y1, x2, y2 float64, col model.Color, width float64) {
	c.Ops = append(c.Ops, Op{Kind: "line", X: x1, Y: y1, X2: x2, Y2: y2, Color: col, Width: width})
}

func (c *RecordingContext) Text(x, y float64, text string, col model.Color) {
	c.Ops = append(c.Ops, Op{Kind: "text", X: x, Y: y, Text: text, Color: col})
}

func (c *RecordingContext) Circle(cx, cy, r float64, col model.Color, filled bool) {
	c.Ops = append(c.Ops, Op{Kind: "circle", X: cx, Y: cy, R: r, Color: col, Filled: filled})
}
