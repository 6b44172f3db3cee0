package canvas

import "github.com/xonecas/revel/internal/eventbus"

// Wire subscribes the controller to the pointer/scroll/drag kinds the
// event bus carries (spec.md §4.9's pointer dispatch is the first hop
// of the "input adapters -> event bus -> canvas controller" data flow).
// currentSpaceID is called on every delivered event so the controller
// always hit-tests against whichever space is on screen at dispatch
// time, not whichever was on screen when Wire was called. Returns the
// subscription ids, for an adapter that wants to Unsubscribe on teardown.
func (c *Controller) Wire(bus *eventbus.Bus, currentSpaceID func() string) []int {
	press := func(button Button) eventbus.Handler {
		return func(ev eventbus.Event) bool {
			c.HandlePointer(PointerEvent{
				Kind:      EventPress,
				Button:    button,
				X:         ev.X,
				Y:         ev.Y,
				SpaceHeld: ev.Modifiers.Has(eventbus.ModSpace),
			}, currentSpaceID())
			return true
		}
	}
	release := func(ev eventbus.Event) bool {
		c.HandlePointer(PointerEvent{Kind: EventRelease, X: ev.X, Y: ev.Y}, currentSpaceID())
		return true
	}
	motion := func(ev eventbus.Event) bool {
		c.HandlePointer(PointerEvent{Kind: EventMove, X: ev.X, Y: ev.Y}, currentSpaceID())
		return false // motion is observational for other subscribers too
	}
	scroll := func(ev eventbus.Event) bool {
		data, _ := ev.Data.(*eventbus.ScrollData)
		dy := 0.0
		if data != nil {
			dy = data.DeltaY
		}
		c.HandlePointer(PointerEvent{
			Kind:     EventScroll,
			X:        ev.X,
			Y:        ev.Y,
			ScrollDY: dy,
			ZoomMod:  ev.Modifiers.Has(eventbus.ModCtrl) || ev.Modifiers.Has(eventbus.ModMeta),
		}, currentSpaceID())
		return true
	}

	var ids []int
	ids = append(ids, bus.Subscribe(eventbus.KindPrimaryPress, press(ButtonPrimary), nil))
	ids = append(ids, bus.Subscribe(eventbus.KindSecondaryPress, press(ButtonSecondary), nil))
	ids = append(ids, bus.Subscribe(eventbus.KindPrimaryRelease, release, nil))
	ids = append(ids, bus.Subscribe(eventbus.KindSecondaryRelease, release, nil))
	ids = append(ids, bus.Subscribe(eventbus.KindMotion, motion, nil))
	ids = append(ids, bus.Subscribe(eventbus.KindDragUpdate, motion, nil))
	ids = append(ids, bus.Subscribe(eventbus.KindScroll, scroll, nil))
	return ids
}
