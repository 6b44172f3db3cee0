package visual

import (
	"math"

	"github.com/xonecas/revel/internal/model"
)

// EditOverlay is the inline text-editing widget an element hands control
// to on BeginEdit; the canvas controller supplies a concrete overlay
// (screen-space anchored) and reads back its content on CommitEdit.
type EditOverlay interface {
	SetText(text string)
	Text() string
	Focus()
}

// resizeHandleMinSize is spec.md §4.4's floor below which the resize handle
// is suppressed entirely.
const resizeHandleMinSize = 50.0

// connectionPointMinSize is spec.md §4.4's floor below which connection
// points are suppressed entirely.
const connectionPointMinSize = 100.0

// connectionPickRadius is how close (px) a click must land to a connection
// path segment to select it.
const connectionPickRadius = 6.0

// Element is the capability set every visual variant implements, wrapping
// a *model.Element and rendering/picking against it (spec.md §4.4).
type Element interface {
	ID() string
	Draw(ctx DrawContext, selected bool)
	ConnectionPoint(index int) (x, y float64)
	PickResizeHandle(x, y float64) (handle int, ok bool)
	PickConnectionPoint(x, y float64) (index int, ok bool)
	PickRotationHandle(x, y float64) (ok bool)
	BeginEdit(overlay EditOverlay)
	CommitEdit(graph *model.Graph)
	Bounds() (x, y, w, h float64)
}

// Wrap returns the visual counterpart for e's kind. Every element
// exclusively owns its visual counterpart; callers should not construct one
// more than once per element (the registry in internal/canvas enforces
// this by caching on id).
func Wrap(e *model.Element) Element {
	if e.Kind == model.KindConnection {
		return &connectionElement{e: e}
	}
	return &boxElement{e: e}
}

// boxElement is the visual behavior shared by notes, paper notes, inline
// text, shapes, media, space refs, and freehand drawings: all of them are
// positioned/sized rectangles with the same handle/connection-point rules.
// Kind-specific draw differences are handled inside Draw's switch.
type boxElement struct {
	e       *model.Element
	overlay EditOverlay
}

func (b *boxElement) ID() string { return b.e.ID }

func (b *boxElement) Bounds() (x, y, w, h float64) {
	pos := b.e.Pos.Get()
	sz := b.e.Sz.Get()
	return float64(pos.X), float64(pos.Y), float64(sz.W), float64(sz.H)
}

func (b *boxElement) Draw(ctx DrawContext, selected bool) {
	x, y, w, h := b.Bounds()
	bg := b.e.BG.Get()

	switch b.e.Kind {
	case model.KindShape:
		b.drawShape(ctx, x, y, w, h)
	case model.KindFreehand:
		b.drawFreehand(ctx)
	default:
		ctx.FillRect(x, y, w, h, bg)
		if text := b.e.Text.Get(); text != "" {
			ctx.Text(x+4, y+4, text, model.Color{A: 1})
		}
	}

	if selected {
		ctx.StrokeRect(x, y, w, h, model.Color{R: 0.2, G: 0.5, B: 1, A: 1}, 2)
		if w >= resizeHandleMinSize && h >= resizeHandleMinSize {
			ctx.Circle(x+w, y+h, 4, model.Color{R: 0.2, G: 0.5, B: 1, A: 1}, true)
		}
		// Rotation handle: above the bounding-box center, rotated with it.
		hx, hy := b.rotationHandlePos(x, y, w)
		ctx.Circle(hx, hy, 3, model.Color{R: 1, G: 0.6, A: 1}, true)
	}
}

func (b *boxElement) drawShape(ctx DrawContext, x, y, w, h float64) {
	opts := b.e.Shape
	if opts == nil {
		ctx.StrokeRect(x, y, w, h, model.Color{A: 1}, 1)
		return
	}
	switch opts.ShapeKind {
	case model.ShapeLine, model.ShapeArrow, model.ShapeBezier:
		ctx.Line(float64(opts.LineStart.X), float64(opts.LineStart.Y),
			float64(opts.LineEnd.X), float64(opts.LineEnd.Y), opts.StrokeColor, opts.Stroke)
	default:
		if opts.Filled {
			ctx.FillRect(x, y, w, h, b.e.BG.Get())
		}
		ctx.StrokeRect(x, y, w, h, opts.StrokeColor, opts.Stroke)
	}
}

func (b *boxElement) drawFreehand(ctx DrawContext) {
	d := b.e.DrawingPay
	if d == nil || len(d.Points) < 2 {
		return
	}
	x, y, w, h := b.Bounds()
	for i := 0; i+1 < len(d.Points); i++ {
		p1, p2 := d.Points[i], d.Points[i+1]
		ctx.Line(x+p1.X*w, y+p1.Y*h, x+p2.X*w, y+p2.Y*h, d.Color, d.StrokeWidth)
	}
}

// ConnectionPoint returns N/E/S/W (index 0..3) for box-shaped elements, or
// the line/bezier endpoints for line-like shapes.
func (b *boxElement) ConnectionPoint(index int) (float64, float64) {
	if b.e.Kind == model.KindShape && b.e.Shape != nil {
		switch b.e.Shape.ShapeKind {
		case model.ShapeLine, model.ShapeArrow, model.ShapeBezier:
			if index == 0 {
				return float64(b.e.Shape.LineStart.X), float64(b.e.Shape.LineStart.Y)
			}
			return float64(b.e.Shape.LineEnd.X), float64(b.e.Shape.LineEnd.Y)
		}
	}
	x, y, w, h := b.Bounds()
	switch index % 4 {
	case 0:
		return x + w/2, y // N
	case 1:
		return x + w, y + h/2 // E
	case 2:
		return x + w/2, y + h // S
	default:
		return x, y + h/2 // W
	}
}

func (b *boxElement) PickResizeHandle(px, py float64) (int, bool) {
	x, y, w, h := b.Bounds()
	if w < resizeHandleMinSize || h < resizeHandleMinSize {
		return 0, false
	}
	hx, hy := x+w, y+h
	if math.Hypot(px-hx, py-hy) <= 8 {
		return 0, true // only the bottom-right handle is exposed
	}
	return 0, false
}

// rotationHandleDistance is how far (px) above the bounding box's top edge
// the rotation handle is drawn, measured from the box's horizontal center.
const rotationHandleDistance = 20.0

// rotationHandlePos returns the rotation handle's screen position, rotated
// about (x+w/2, y) by the element's current rotation.
func (b *boxElement) rotationHandlePos(x, y, w float64) (float64, float64) {
	cx := x + w/2
	rad := b.e.RotationDegrees * math.Pi / 180
	return cx + math.Sin(rad)*rotationHandleDistance, y - math.Cos(rad)*rotationHandleDistance
}

func (b *boxElement) PickRotationHandle(px, py float64) bool {
	x, y, w, h := b.Bounds()
	if w < resizeHandleMinSize || h < resizeHandleMinSize {
		return false
	}
	hx, hy := b.rotationHandlePos(x, y, w)
	return math.Hypot(px-hx, py-hy) <= 8
}

func (b *boxElement) PickConnectionPoint(px, py float64) (int, bool) {
	_, _, w, h := b.Bounds()
	if w < connectionPointMinSize || h < connectionPointMinSize {
		return 0, false
	}
	for i := 0; i < 4; i++ {
		cx, cy := b.ConnectionPoint(i)
		if math.Hypot(px-cx, py-cy) <= 8 {
			return i, true
		}
	}
	return 0, false
}

func (b *boxElement) BeginEdit(overlay EditOverlay) {
	b.overlay = overlay
	overlay.SetText(b.e.Text.Get())
	overlay.Focus()
}

func (b *boxElement) CommitEdit(graph *model.Graph) {
	if b.overlay == nil {
		return
	}
	graph.UpdateText(b.e, b.overlay.Text())
	b.overlay = nil
}

// connectionElement draws and hit-tests a connection between two other
// elements, resolved by id through the graph at draw/pick time (never held
// as a pointer) — connections are always drawn after other elements in the
// same z-band, per spec.md §4.4.
type connectionElement struct {
	e *model.Element
}

func (c *connectionElement) ID() string { return c.e.ID }

func (c *connectionElement) Bounds() (float64, float64, float64, float64) { return 0, 0, 0, 0 }

func (c *connectionElement) Draw(ctx DrawContext, selected bool) {
	// The canvas controller resolves endpoint coordinates through the graph
	// and calls DrawResolved; Draw alone has no endpoint geometry to offer.
}

// DrawResolved draws the connection given its resolved endpoint coordinates,
// called by the canvas controller after looking up both endpoints by id.
func (c *connectionElement) DrawResolved(ctx DrawContext, x1, y1, x2, y2 float64, selected bool) {
	width := 1.5
	col := model.Color{A: 1}
	if selected {
		col = model.Color{R: 0.2, G: 0.5, B: 1, A: 1}
		width = 2.5
	}
	ctx.Line(x1, y1, x2, y2, col, width)
}

func (c *connectionElement) ConnectionPoint(int) (float64, float64)           { return 0, 0 }
func (c *connectionElement) PickResizeHandle(float64, float64) (int, bool)    { return 0, false }
func (c *connectionElement) PickConnectionPoint(float64, float64) (int, bool) { return 0, false }
func (c *connectionElement) PickRotationHandle(float64, float64) bool        { return false }
func (c *connectionElement) BeginEdit(EditOverlay)                           {}
func (c *connectionElement) CommitEdit(*model.Graph)                        {}

// PickSegment reports whether (px,py) lands within connectionPickRadius of
// the segment (x1,y1)-(x2,y2).
func PickSegment(px, py, x1, y1, x2, y2 float64) bool {
	return distToSegment(px, py, x1, y1, x2, y2) <= connectionPickRadius
}

func distToSegment(px, py, x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-x1, py-y1)
	}
	t := ((px-x1)*dx + (py-y1)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	projX, projY := x1+t*dx, y1+t*dy
	return math.Hypot(px-projX, py-projY)
}
