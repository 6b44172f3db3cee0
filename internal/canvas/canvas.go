package canvas

import (
	"github.com/xonecas/revel/internal/model"
	"github.com/xonecas/revel/internal/visual"
)

// Mode is the pointer input-mode state machine's current state.
type Mode string

const (
	ModeIdle        Mode = "idle"
	ModeSelecting   Mode = "selecting"
	ModeMoving      Mode = "moving"
	ModeResizing    Mode = "resizing"
	ModeRotating    Mode = "rotating"
	ModeConnecting  Mode = "connecting"
	ModeDrawing     Mode = "drawing"
	ModeEditingText Mode = "editing_text"
	ModePanning     Mode = "panning"
)

// dragStartThreshold is spec.md §4.5's 3px drag-start gate before a press
// on an element body transitions from idle into moving.
const dragStartThreshold = 3.0

// doubleClickWindowMs is the max gap between two primary presses on the
// same element body that counts as a double-click, entering editing_text.
const doubleClickWindowMs = 400

// ClipboardEntry is a deep copy of one selected element's state (sub-
// payloads included, media bytes excluded — those are by id and loaded
// lazily), used by Copy/Paste.
type ClipboardEntry struct {
	Kind     model.Kind
	Position model.Position
	Size     model.Size
	BGColor  model.Color
	Text     string
	Shape    *model.ShapeOptions
	Drawing  *model.Drawing
}

// ToolParams holds the current drawing-tool parameters (freehand color and
// stroke width) used when Mode is ModeDrawing.
type ToolParams struct {
	Color       model.Color
	StrokeWidth float64
}

// Controller is the canvas controller: viewport, selection, pointer FSM,
// clipboard, and drawing-tool parameters (spec.md §4.5).
type Controller struct {
	Graph *model.Graph
	Index *visual.Quadtree

	Viewport  Viewport
	Selection map[string]bool
	Mode      Mode
	Clipboard []ClipboardEntry
	Tool      ToolParams

	wrapped map[string]visual.Element

	dragStart    [2]float64
	dragging     bool
	activeID     string
	activeHandle int
	rubberBand   [4]float64 // x1,y1,x2,y2 in canvas space
	lastPressAt  int64      // unix millis, for double-click detection
	lastPressID  string
	spaceHeld    bool
}

// New returns a Controller over graph, indexed by index.
func New(graph *model.Graph, index *visual.Quadtree) *Controller {
	return &Controller{
		Graph:     graph,
		Index:     index,
		Viewport:  NewViewport(),
		Selection: make(map[string]bool),
		Mode:      ModeIdle,
		wrapped:   make(map[string]visual.Element),
	}
}

// VisualFor returns the cached visual counterpart for id, wrapping it on
// first use — each element exclusively owns its visual counterpart.
func (c *Controller) VisualFor(id string) visual.Element {
	if v, ok := c.wrapped[id]; ok {
		return v
	}
	e := c.Graph.ByID(id)
	if e == nil {
		return nil
	}
	v := visual.Wrap(e)
	c.wrapped[id] = v
	return v
}

// DropVisual discards the cached wrapper for id (called on delete so a
// revived-by-undo element gets a fresh wrapper rather than a stale one).
func (c *Controller) DropVisual(id string) {
	delete(c.wrapped, id)
}

// SelectSingle replaces the selection with just id (empty id clears it).
func (c *Controller) SelectSingle(id string) {
	c.Selection = make(map[string]bool)
	if id != "" {
		c.Selection[id] = true
	}
}

// ToggleSelection adds or removes id from the selection (shift+click).
func (c *Controller) ToggleSelection(id string) {
	if c.Selection[id] {
		delete(c.Selection, id)
	} else {
		c.Selection[id] = true
	}
}

// SelectRect replaces the selection with every element whose bounding box
// intersects r (rubber-band selection).
func (c *Controller) SelectRect(r visual.Rect) {
	c.Selection = make(map[string]bool)
	for _, id := range c.Index.Query(r) {
		c.Selection[id] = true
	}
}

// SelectedIDs returns the current selection as a slice, order unspecified.
func (c *Controller) SelectedIDs() []string {
	out := make([]string, 0, len(c.Selection))
	for id := range c.Selection {
		out = append(out, id)
	}
	return out
}

// ClearClipboard empties the clipboard, called by the space navigator on
// every space switch.
func (c *Controller) ClearClipboard() {
	c.Clipboard = nil
}

// Copy snapshots the current selection into the clipboard.
func (c *Controller) Copy() {
	c.Clipboard = c.Clipboard[:0]
	for id := range c.Selection {
		e := c.Graph.ByID(id)
		if e == nil {
			continue
		}
		c.Clipboard = append(c.Clipboard, ClipboardEntry{
			Kind:     e.Kind,
			Position: e.Pos.Get(),
			Size:     e.Sz.Get(),
			BGColor:  e.BG.Get(),
			Text:     e.Text.Get(),
			Shape:    cloneShapeOptions(e.Shape),
			Drawing:  e.DrawingPay,
		})
	}
}

// pasteOffset is spec.md §4.5's fixed paste offset in canvas units.
const pasteOffset = 20

// Paste instantiates new elements from the clipboard into spaceID, offset
// by (+20,+20), with new ids, replacing the selection with the pasted set.
func (c *Controller) Paste(spaceID string) []*model.Element {
	var pasted []*model.Element
	newSelection := make(map[string]bool)
	for _, entry := range c.Clipboard {
		e := c.Graph.CreateElement(model.ElementConfig{
			SpaceID:  spaceID,
			Kind:     entry.Kind,
			Position: model.Position{X: entry.Position.X + pasteOffset, Y: entry.Position.Y + pasteOffset},
			Size:     entry.Size,
			BGColor:  entry.BGColor,
			Text:     entry.Text,
			Shape:    cloneShapeOptions(entry.Shape),
			Drawing:  entry.Drawing,
		})
		pasted = append(pasted, e)
		newSelection[e.ID] = true
	}
	c.Selection = newSelection
	return pasted
}

func cloneShapeOptions(s *model.ShapeOptions) *model.ShapeOptions {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// SetZoom parses and clamps a user-entered zoom string, returning false
// (leaving Viewport.Zoom unchanged) on invalid input per spec.md §4.5.
func (c *Controller) SetZoom(s string) bool {
	z, err := ParseZoom(s)
	if err != nil {
		return false
	}
	c.Viewport.Zoom = z
	return true
}
