package canvas

import (
	"math"

	"github.com/xonecas/revel/internal/visual"
)

// Button identifies which pointer button an event is for.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// EventKind discriminates a pointer event's phase.
type EventKind int

const (
	EventPress EventKind = iota
	EventMove
	EventRelease
	EventScroll
)

// PointerEvent is one input-adapter-delivered pointer event, already in
// screen coordinates (the controller converts to canvas space itself).
type PointerEvent struct {
	Kind       EventKind
	Button     Button
	X, Y       float64
	ScrollDY   float64
	ZoomMod    bool // modifier held during scroll = zoom instead of pan
	SpaceHeld  bool // space bar held during drag = pan regardless of hit
	TimeMillis int64
}

// HandlePointer dispatches one pointer event through the mode state
// machine (spec.md §4.5). spaceID is the space currently on screen, used
// to resolve hit-tested element ids through Graph.
func (c *Controller) HandlePointer(ev PointerEvent, spaceID string) {
	if ev.Kind == EventScroll {
		c.handleScroll(ev)
		return
	}

	cx, cy := c.Viewport.ScreenToCanvas(ev.X, ev.Y)

	switch ev.Kind {
	case EventPress:
		c.handlePress(ev, cx, cy, spaceID)
	case EventMove:
		c.handleMove(ev, cx, cy)
	case EventRelease:
		c.handleRelease(ev, cx, cy)
	}
}

func (c *Controller) handleScroll(ev PointerEvent) {
	if ev.ZoomMod {
		factor := 1.0
		if ev.ScrollDY > 0 {
			factor = 1.1
		} else if ev.ScrollDY < 0 {
			factor = 1 / 1.1
		}
		c.Viewport.ZoomAt(ev.X, ev.Y, c.Viewport.Zoom*factor)
		return
	}
	c.Viewport.PanX -= ev.ScrollDY
}

func (c *Controller) handlePress(ev PointerEvent, cx, cy float64, spaceID string) {
	if ev.SpaceHeld {
		c.Mode = ModePanning
		c.dragStart = [2]float64{ev.X, ev.Y}
		return
	}

	if ev.Button == ButtonSecondary {
		// Context menu: caller (UI adapter) handles the menu itself; the
		// controller only needs to resolve which element was under it.
		c.pickAt(cx, cy, spaceID)
		return
	}

	// Rotation/resize handles on a currently-selected element take
	// priority over picking a new element or starting a rubber-band.
	for id := range c.Selection {
		v := c.VisualFor(id)
		if v == nil {
			continue
		}
		if v.PickRotationHandle(cx, cy) {
			c.Mode = ModeRotating
			c.activeID = id
			c.dragStart = [2]float64{cx, cy}
			return
		}
		if handle, ok := v.PickResizeHandle(cx, cy); ok {
			c.Mode = ModeResizing
			c.activeID = id
			c.activeHandle = handle
			c.dragStart = [2]float64{cx, cy}
			return
		}
		if idx, ok := v.PickConnectionPoint(cx, cy); ok {
			c.Mode = ModeConnecting
			c.activeID = id
			c.activeHandle = idx
			return
		}
	}

	hitID := c.pickAt(cx, cy, spaceID)
	if hitID == "" {
		c.Mode = ModeSelecting
		c.rubberBand = [4]float64{cx, cy, cx, cy}
		return
	}

	if c.isDoubleClick(hitID, ev.TimeMillis) {
		c.Mode = ModeEditingText
		c.activeID = hitID
		c.lastPressID = ""
		return
	}
	c.lastPressID = hitID
	c.lastPressAt = ev.TimeMillis

	c.SelectSingle(hitID)
	c.activeID = hitID
	c.dragStart = [2]float64{cx, cy}
	c.dragging = false // waits for dragStartThreshold before entering moving
}

func (c *Controller) isDoubleClick(id string, atMillis int64) bool {
	return c.lastPressID == id && atMillis-c.lastPressAt <= doubleClickWindowMs
}

func (c *Controller) pickAt(cx, cy float64, spaceID string) string {
	r := visual.Rect{X: cx - 1, Y: cy - 1, W: 2, H: 2}
	candidates := c.Index.Query(r)

	var best string
	bestZ := -1
	for _, id := range candidates {
		e := c.Graph.ByID(id)
		if e == nil {
			continue
		}
		pos := e.Pos.Get()
		sz := e.Sz.Get()
		if cx < float64(pos.X) || cx > float64(pos.X+sz.W) || cy < float64(pos.Y) || cy > float64(pos.Y+sz.H) {
			continue
		}
		if pos.Z > bestZ {
			bestZ = pos.Z
			best = id
		}
	}
	return best
}

func (c *Controller) handleMove(ev PointerEvent, cx, cy float64) {
	switch c.Mode {
	case ModePanning:
		c.Viewport.PanX += ev.X - c.dragStart[0]
		c.Viewport.PanY += ev.Y - c.dragStart[1]
		c.dragStart = [2]float64{ev.X, ev.Y}
	case ModeSelecting:
		c.rubberBand[2], c.rubberBand[3] = cx, cy
	case ModeResizing:
		e := c.Graph.ByID(c.activeID)
		if e == nil {
			return
		}
		w := cx - float64(e.Pos.Get().X)
		h := cy - float64(e.Pos.Get().Y)
		if w > 1 && h > 1 {
			c.Graph.UpdateSize(e, int(w), int(h))
		}
	case ModeRotating:
		e := c.Graph.ByID(c.activeID)
		if e == nil {
			return
		}
		pos, sz := e.Pos.Get(), e.Sz.Get()
		centerX := float64(pos.X) + float64(sz.W)/2
		centerY := float64(pos.Y) + float64(sz.H)/2
		degrees := math.Atan2(cx-centerX, centerY-cy) * 180 / math.Pi
		c.Graph.UpdateRotation(e, degrees)
	default:
		if c.activeID == "" {
			return
		}
		dx, dy := cx-c.dragStart[0], cy-c.dragStart[1]
		if !c.dragging {
			if dx*dx+dy*dy < dragStartThreshold*dragStartThreshold {
				return
			}
			c.dragging = true
			c.Mode = ModeMoving
		}
		if c.Mode == ModeMoving {
			e := c.Graph.ByID(c.activeID)
			if e == nil {
				return
			}
			pos := e.Pos.Get()
			c.Graph.UpdatePosition(e, pos.X+int(dx), pos.Y+int(dy))
			c.dragStart = [2]float64{cx, cy}
		}
	}
}

func (c *Controller) handleRelease(ev PointerEvent, cx, cy float64) {
	switch c.Mode {
	case ModeSelecting:
		r := rectFromCorners(c.rubberBand[0], c.rubberBand[1], c.rubberBand[2], c.rubberBand[3])
		c.SelectRect(r)
	case ModeConnecting:
		// The caller (UI adapter) resolves the target element under
		// release and calls Connect explicitly; the controller only needs
		// to drop back to idle here.
	}
	c.Mode = ModeIdle
	c.dragging = false
	c.activeID = ""
}

func rectFromCorners(x1, y1, x2, y2 float64) visual.Rect {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return visual.Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}
