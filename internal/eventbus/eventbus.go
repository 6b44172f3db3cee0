// Package eventbus is the typed publish/subscribe carrier between toolkit-
// specific input adapters and the canvas controller and DSL-owned
// interactive handlers (spec.md §4.9). Dispatch is synchronous and
// single-threaded: Publish runs every subscriber for the event's kind, in
// subscription order, until one reports the event handled.
package eventbus

import "sync"

// Kind enumerates the event kinds the bus carries.
type Kind string

const (
	KindPrimaryPress     Kind = "primary_press"
	KindPrimaryRelease   Kind = "primary_release"
	KindSecondaryPress   Kind = "secondary_press"
	KindSecondaryRelease Kind = "secondary_release"
	KindMotion           Kind = "motion"
	KindLeave            Kind = "leave"
	KindScroll           Kind = "scroll"
	KindKeyPress         Kind = "key_press"
	KindDragBegin        Kind = "drag_begin"
	KindDragUpdate       Kind = "drag_update"
	KindDragEnd          Kind = "drag_end"
)

// Modifier is a bitmask of held modifier keys at the time of the event.
type Modifier int

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
	ModSpace
)

// Has reports whether m includes mod.
func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

// Event is one dispatched occurrence. Data holds kind-specific payload
// (e.g. *ScrollData, *KeyData) — handlers type-assert on what they expect
// for the kinds they subscribed to.
type Event struct {
	Kind      Kind
	CanvasID  string
	Modifiers Modifier
	X, Y      float64
	Data      any
}

// ScrollData is Event.Data for KindScroll.
type ScrollData struct {
	DeltaX, DeltaY float64
}

// KeyData is Event.Data for KindKeyPress.
type KeyData struct {
	Key string
}

// Handler processes an event and reports whether it was handled; once a
// handler reports true for a dispatch, no further handler receives it.
type Handler func(Event) (handled bool)

// subscription pairs a handler with an optional cleanup hook run on
// Unsubscribe, and the user data it closed over (for the hook's own use).
type subscription struct {
	id      int
	kind    Kind
	handler Handler
	cleanup func()
}

// Bus is the event bus. Zero value is not usable; use New.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	subsByKind map[Kind][]*subscription
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{subsByKind: make(map[Kind][]*subscription)}
}

// Subscribe registers handler for kind and returns a subscription id.
// cleanup, if non-nil, runs once when this subscription is later removed
// by Unsubscribe.
func (b *Bus) Subscribe(kind Kind, handler Handler, cleanup func()) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subsByKind[kind] = append(b.subsByKind[kind], &subscription{id: id, kind: kind, handler: handler, cleanup: cleanup})
	return id
}

// Unsubscribe removes the subscription with id, running its cleanup hook
// if one was given. A missing id is a no-op.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for kind, subs := range b.subsByKind {
		for i, s := range subs {
			if s.id != id {
				continue
			}
			b.subsByKind[kind] = append(subs[:i], subs[i+1:]...)
			if s.cleanup != nil {
				s.cleanup()
			}
			return
		}
	}
}

// Publish dispatches ev to every subscriber of ev.Kind, in subscription
// order, stopping as soon as one reports the event handled. Returns
// whether any subscriber handled it.
func (b *Bus) Publish(ev Event) bool {
	b.mu.Lock()
	subs := make([]*subscription, len(b.subsByKind[ev.Kind]))
	copy(subs, b.subsByKind[ev.Kind])
	b.mu.Unlock()

	for _, s := range subs {
		if s.handler(ev) {
			return true
		}
	}
	return false
}
