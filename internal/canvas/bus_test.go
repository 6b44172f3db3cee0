package canvas

import (
	"testing"

	"github.com/xonecas/revel/internal/eventbus"
	"github.com/xonecas/revel/internal/model"
)

func TestWire_PrimaryPressSelectsElementUnderCursor(t *testing.T) {
	c, g := newTestController()
	e := g.CreateElement(model.ElementConfig{
		SpaceID:  "space-a",
		Kind:     model.KindNote,
		Position: model.Position{X: 0, Y: 0},
		Size:     model.Size{W: 50, H: 50},
	})

	bus := eventbus.New()
	c.Wire(bus, func() string { return "space-a" })

	handled := bus.Publish(eventbus.Event{Kind: eventbus.KindPrimaryPress, X: 10, Y: 10})

	if !handled {
		t.Fatalf("expected primary_press to be reported handled")
	}
	if !c.Selection[e.ID] {
		t.Fatalf("expected element under cursor to be selected, selection=%v", c.Selection)
	}
}

func TestWire_ScrollWithModifierZooms(t *testing.T) {
	c, _ := newTestController()
	bus := eventbus.New()
	c.Wire(bus, func() string { return "space-a" })

	before := c.Viewport.Zoom
	bus.Publish(eventbus.Event{
		Kind:      eventbus.KindScroll,
		X:         100,
		Y:         100,
		Modifiers: eventbus.ModCtrl,
		Data:      &eventbus.ScrollData{DeltaY: 1},
	})

	if c.Viewport.Zoom <= before {
		t.Fatalf("expected zoom to increase, before=%v after=%v", before, c.Viewport.Zoom)
	}
}

func TestWire_ScrollWithoutModifierPans(t *testing.T) {
	c, _ := newTestController()
	bus := eventbus.New()
	c.Wire(bus, func() string { return "space-a" })

	beforePan := c.Viewport.PanX
	bus.Publish(eventbus.Event{Kind: eventbus.KindScroll, Data: &eventbus.ScrollData{DeltaY: 5}})

	if c.Viewport.PanX == beforePan {
		t.Fatalf("expected pan to change on unmodified scroll")
	}
}

func TestWire_UsesCurrentSpaceIDAtDispatchTime(t *testing.T) {
	c, g := newTestController()
	g.PutSpace(&model.Space{ID: "space-b"})
	e := g.CreateElement(model.ElementConfig{
		SpaceID:  "space-b",
		Kind:     model.KindNote,
		Position: model.Position{X: 0, Y: 0},
		Size:     model.Size{W: 50, H: 50},
	})

	active := "space-a"
	bus := eventbus.New()
	c.Wire(bus, func() string { return active })

	active = "space-b"
	bus.Publish(eventbus.Event{Kind: eventbus.KindPrimaryPress, X: 10, Y: 10})

	if !c.Selection[e.ID] {
		t.Fatalf("expected hit test to use space-b once active switched, selection=%v", c.Selection)
	}
}
