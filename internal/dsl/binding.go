package dsl

import "github.com/xonecas/revel/internal/model"

// binding is a live text_bind/position_bind registration: Kind is "text" or
// "position" (spec.md §4.7). Kept by Element, not by id, since a binding is
// only ever created against an already-resolved alias and lives only as
// long as the runtime that declared it.
type binding struct {
	Kind    string
	Element *model.Element
	VarName string
}

// applyBinding pushes the current value of b.VarName onto b.Element
// (`text_bind` replaces the element's text, `position_bind` interprets a
// length-2 array variable as (x, y)).
func (r *Runtime) applyBinding(b *binding) error {
	v, ok := r.lookup(b.VarName)
	if !ok {
		return rtErr(Pos{}, "%s_bind: variable %q is not declared", b.Kind, b.VarName)
	}
	switch b.Kind {
	case "text":
		r.Graph.UpdateText(b.Element, v.val.String())
	case "position":
		if len(v.array) < 2 {
			return rtErr(Pos{}, "position_bind: %q must be a length-2 array", b.VarName)
		}
		r.Graph.UpdatePosition(b.Element, int(v.array[0]), int(v.array[1]))
	}
	return nil
}

// writeBackPosition is the inverse of applyBinding's position case: called
// when the bound element moves by some other means (canvas drag, animation
// tick), it writes the element's current position back into the array
// variable ("element_moved" notification, spec.md §4.7).
func (r *Runtime) writeBackPosition(b *binding) {
	v, ok := r.lookup(b.VarName)
	if !ok || len(v.array) < 2 {
		return
	}
	pos := b.Element.Pos.Get()
	v.array[0] = float64(pos.X)
	v.array[1] = float64(pos.Y)
}

// OnElementMoved is called by BindingRecorder.RecordMove after every
// recorded move of an element, whatever caused it (drag, undo, a script,
// or a position_bind write itself); it writes back into every position
// binding on that element and re-notifies their variables so on-variable
// handlers see the new coordinates.
func (r *Runtime) OnElementMoved(elementID string) error {
	for _, b := range r.bindings {
		if b.Kind == "position" && b.Element.ID == elementID {
			r.writeBackPosition(b)
			if err := r.notifyVariable(b.VarName); err != nil {
				return err
			}
		}
	}
	return nil
}

// BindingRecorder wraps an inner model.ActionRecorder (the undo manager)
// and fans every call out to it, additionally routing RecordMove through
// the runtime's position-binding write-back so that element edits which
// change a bound attribute propagate back into the owning variable without
// widening model.Graph's own recorder interface (spec.md §4.7's binding
// write-back contract). Installed only at the composition root in place of
// the bare undo.Manager.
type BindingRecorder struct {
	Inner   model.ActionRecorder
	Runtime *Runtime
}

func (b *BindingRecorder) RecordCreate(e *model.Element) { b.Inner.RecordCreate(e) }
func (b *BindingRecorder) RecordDelete(e *model.Element) { b.Inner.RecordDelete(e) }

func (b *BindingRecorder) RecordMove(e *model.Element, oldPos, newPos model.Position) {
	b.Inner.RecordMove(e, oldPos, newPos)
	_ = b.Runtime.OnElementMoved(e.ID)
}

func (b *BindingRecorder) RecordResize(e *model.Element, oldSize, newSize model.Size) {
	b.Inner.RecordResize(e, oldSize, newSize)
}

func (b *BindingRecorder) RecordText(e *model.Element, oldText, newText string) {
	b.Inner.RecordText(e, oldText, newText)
}

func (b *BindingRecorder) RecordColor(e *model.Element, oldColor, newColor model.Color) {
	b.Inner.RecordColor(e, oldColor, newColor)
}

func (b *BindingRecorder) RecordRotation(e *model.Element, oldDeg, newDeg float64) {
	b.Inner.RecordRotation(e, oldDeg, newDeg)
}

func (b *BindingRecorder) RecordConnect(e *model.Element) { b.Inner.RecordConnect(e) }

func (b *BindingRecorder) RecordReorderZ(e *model.Element, oldZ, newZ int) {
	b.Inner.RecordReorderZ(e, oldZ, newZ)
}

func (b *BindingRecorder) RecordClone(src, clone *model.Element) { b.Inner.RecordClone(src, clone) }

func (b *BindingRecorder) RecordBackground(space *model.Space, oldColor, newColor model.Color) {
	b.Inner.RecordBackground(space, oldColor, newColor)
}

func (b *BindingRecorder) RecordGrid(space *model.Space, oldColor model.Color, oldEnabled bool, newColor model.Color, newEnabled bool) {
	b.Inner.RecordGrid(space, oldColor, oldEnabled, newColor, newEnabled)
}
