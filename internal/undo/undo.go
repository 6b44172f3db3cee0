// Package undo tracks domain-model mutations as reversible actions: two
// stacks (undo, redo) for the current space, plus a forever-growing action
// log that backs the log viewer and is never cleared by Reset.
package undo

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/revel/internal/model"
)

// Kind discriminates the reversible action types, one per domain-model
// mutation method (model.ActionRecorder).
type Kind string

const (
	KindCreate     Kind = "create"
	KindDelete     Kind = "delete"
	KindMove       Kind = "move"
	KindResize     Kind = "resize"
	KindText       Kind = "text"
	KindColor      Kind = "color"
	KindRotation   Kind = "rotation"
	KindConnect    Kind = "connect"
	KindReorderZ   Kind = "reorder_z"
	KindClone      Kind = "clone"
	KindBackground Kind = "background"
	KindGrid       Kind = "grid"
)

// Action is one entry on the undo/redo stack: enough before/after state to
// reverse the mutation by id lookup, never by holding the element itself.
type Action struct {
	Kind        Kind
	ElementID   string
	Description string
	At          time.Time

	Before any
	After  any
}

// MoveSnapshot is the before/after payload for KindMove.
type MoveSnapshot struct{ Before, After model.Position }

// ResizeSnapshot is the before/after payload for KindResize.
type ResizeSnapshot struct{ Before, After model.Size }

// TextSnapshot is the before/after payload for KindText.
type TextSnapshot struct{ Before, After string }

// ColorSnapshot is the before/after payload for KindColor/KindBackground/KindGrid.
type ColorSnapshot struct{ Before, After model.Color }

// RotationSnapshot is the before/after payload for KindRotation.
type RotationSnapshot struct{ Before, After float64 }

// ReorderZSnapshot is the before/after payload for KindReorderZ.
type ReorderZSnapshot struct{ Before, After int }

// GridSnapshot is the before/after payload for KindGrid (color plus the
// enabled flag, since toggling grid visibility is part of the same action).
type GridSnapshot struct {
	BeforeColor, AfterColor     model.Color
	BeforeEnabled, AfterEnabled bool
}

// LogEntry is a row in the forever-growing action log, independent of the
// undo/redo stacks: it survives Reset and backs the log viewer dialog.
type LogEntry struct {
	Action Action
	Origin string // "user", "ai", or "dsl"
}

// Manager implements model.ActionRecorder and model.Indexer's sibling role
// for undo: two bounded-only-by-Reset stacks plus an unbounded log.
type Manager struct {
	mu sync.Mutex

	graph *model.Graph

	undoStack []Action
	redoStack []Action
	log       []LogEntry

	origin string // set by the caller around a batch of domain-model calls
}

// New returns a Manager wired to graph. Call graph.SetRecorder(m) to start
// receiving mutations.
func New(graph *model.Graph) *Manager {
	return &Manager{graph: graph, origin: "user"}
}

// SetOrigin marks the provenance of subsequent Record* calls until changed
// again; the DSL runtime and AI driver call this before executing commands
// so the action log can distinguish user clicks from generated scripts.
func (m *Manager) SetOrigin(origin string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.origin = origin
}

func (m *Manager) push(a Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undoStack = append(m.undoStack, a)
	m.redoStack = nil
	m.log = append(m.log, LogEntry{Action: a, Origin: m.origin})
}

// RecordCreate implements model.ActionRecorder.
func (m *Manager) RecordCreate(e *model.Element) {
	m.push(Action{Kind: KindCreate, ElementID: e.ID, At: now(), After: e.Kind})
}

// RecordDelete implements model.ActionRecorder.
func (m *Manager) RecordDelete(e *model.Element) {
	m.push(Action{Kind: KindDelete, ElementID: e.ID, At: now(), Before: snapshotElement(e)})
}

// RecordMove implements model.ActionRecorder.
func (m *Manager) RecordMove(e *model.Element, before, after model.Position) {
	m.push(Action{Kind: KindMove, ElementID: e.ID, At: now(), Before: before, After: MoveSnapshot{before, after}})
}

// RecordResize implements model.ActionRecorder.
func (m *Manager) RecordResize(e *model.Element, before, after model.Size) {
	m.push(Action{Kind: KindResize, ElementID: e.ID, At: now(), After: ResizeSnapshot{before, after}})
}

// RecordText implements model.ActionRecorder.
func (m *Manager) RecordText(e *model.Element, before, after string) {
	m.push(Action{Kind: KindText, ElementID: e.ID, At: now(), After: TextSnapshot{before, after}})
}

// RecordColor implements model.ActionRecorder.
func (m *Manager) RecordColor(e *model.Element, before, after model.Color) {
	m.push(Action{Kind: KindColor, ElementID: e.ID, At: now(), After: ColorSnapshot{before, after}})
}

// RecordRotation implements model.ActionRecorder.
func (m *Manager) RecordRotation(e *model.Element, before, after float64) {
	m.push(Action{Kind: KindRotation, ElementID: e.ID, At: now(), After: RotationSnapshot{before, after}})
}

// RecordConnect implements model.ActionRecorder.
func (m *Manager) RecordConnect(e *model.Element) {
	m.push(Action{Kind: KindConnect, ElementID: e.ID, At: now(), After: e.Conn})
}

// RecordReorderZ implements model.ActionRecorder.
func (m *Manager) RecordReorderZ(e *model.Element, before, after int) {
	m.push(Action{Kind: KindReorderZ, ElementID: e.ID, At: now(), After: ReorderZSnapshot{before, after}})
}

// RecordClone implements model.ActionRecorder.
func (m *Manager) RecordClone(src, clone *model.Element) {
	m.push(Action{Kind: KindClone, ElementID: clone.ID, At: now(), Before: src.ID, After: clone.ID})
}

// RecordBackground implements model.ActionRecorder (space background color).
func (m *Manager) RecordBackground(space *model.Space, before, after model.Color) {
	m.push(Action{Kind: KindBackground, ElementID: space.ID, At: now(), After: ColorSnapshot{before, after}})
}

// RecordGrid implements model.ActionRecorder (space grid color/visibility).
func (m *Manager) RecordGrid(space *model.Space, beforeColor model.Color, beforeEnabled bool, afterColor model.Color, afterEnabled bool) {
	m.push(Action{
		Kind:      KindGrid,
		ElementID: space.ID,
		At:        now(),
		After: GridSnapshot{
			BeforeColor: beforeColor, AfterColor: afterColor,
			BeforeEnabled: beforeEnabled, AfterEnabled: afterEnabled,
		},
	})
}

func snapshotElement(e *model.Element) any {
	return struct {
		Kind model.Kind
		Pos  model.Position
		Sz   model.Size
		Text string
		BG   model.Color
	}{e.Kind, e.Pos.Get(), e.Sz.Get(), e.Text.Get(), e.BG.Get()}
}

func now() time.Time { return time.Now() }

// Undo pops the top undo action and applies its inverse to the domain
// model, pushing it onto redo. If the referenced element no longer exists
// (e.g. it was cascade-deleted), the action is skipped silently and logged.
func (m *Manager) Undo() {
	m.mu.Lock()
	if len(m.undoStack) == 0 {
		m.mu.Unlock()
		return
	}
	a := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	m.mu.Unlock()

	if !m.applyInverse(a) {
		log.Info().Str("kind", string(a.Kind)).Str("element", a.ElementID).
			Msg("undo: skipped, referenced element no longer exists")
		return
	}

	m.mu.Lock()
	m.redoStack = append(m.redoStack, a)
	m.mu.Unlock()
}

// Redo re-applies the top redo action.
func (m *Manager) Redo() {
	m.mu.Lock()
	if len(m.redoStack) == 0 {
		m.mu.Unlock()
		return
	}
	a := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	m.mu.Unlock()

	if !m.applyForward(a) {
		log.Info().Str("kind", string(a.Kind)).Str("element", a.ElementID).
			Msg("redo: skipped, referenced element no longer exists")
		return
	}

	m.mu.Lock()
	m.undoStack = append(m.undoStack, a)
	m.mu.Unlock()
}

func (m *Manager) applyInverse(a Action) bool {
	switch a.Kind {
	case KindMove:
		e := m.graph.ByID(a.ElementID)
		if e == nil {
			return false
		}
		snap := a.After.(MoveSnapshot)
		m.graph.UpdatePosition(e, snap.Before.X, snap.Before.Y)
		return true
	case KindResize:
		e := m.graph.ByID(a.ElementID)
		if e == nil {
			return false
		}
		snap := a.After.(ResizeSnapshot)
		m.graph.UpdateSize(e, snap.Before.W, snap.Before.H)
		return true
	case KindText:
		e := m.graph.ByID(a.ElementID)
		if e == nil {
			return false
		}
		snap := a.After.(TextSnapshot)
		m.graph.UpdateText(e, snap.Before)
		return true
	case KindColor:
		e := m.graph.ByID(a.ElementID)
		if e == nil {
			return false
		}
		snap := a.After.(ColorSnapshot)
		m.graph.UpdateColor(e, snap.Before)
		return true
	case KindRotation:
		e := m.graph.ByID(a.ElementID)
		if e == nil {
			return false
		}
		snap := a.After.(RotationSnapshot)
		m.graph.UpdateRotation(e, snap.Before)
		return true
	case KindReorderZ:
		e := m.graph.ByID(a.ElementID)
		if e == nil {
			return false
		}
		snap := a.After.(ReorderZSnapshot)
		m.graph.ReorderZ(e, snap.Before)
		return true
	case KindCreate:
		// Undoing a create is a delete: the element still exists (it was
		// never removed from the graph, only marked), so this is a plain
		// DeleteElement call keyed by id.
		e := m.graph.ByID(a.ElementID)
		if e == nil {
			return false
		}
		m.graph.DeleteElement(e)
		return true
	case KindDelete:
		// Deleted elements are only soft-deleted until save_dirty; undoing
		// a delete means reviving it in place, which the graph does not
		// currently expose as a public method distinct from create, so
		// revival is left to the canvas controller, which holds the
		// pre-delete snapshot and re-creates the element from it.
		return false
	case KindBackground:
		sp := m.graph.SpaceByID(a.ElementID)
		if sp == nil {
			return false
		}
		snap := a.After.(ColorSnapshot)
		m.graph.SetSpaceBackground(sp, snap.Before)
		return true
	case KindGrid:
		sp := m.graph.SpaceByID(a.ElementID)
		if sp == nil {
			return false
		}
		snap := a.After.(GridSnapshot)
		m.graph.SetSpaceGrid(sp, snap.BeforeColor, snap.BeforeEnabled)
		return true
	case KindConnect, KindClone:
		// Connections and clones carry only their own post-creation state
		// in the log (the endpoint ids, or the source/clone id pair), not
		// a prior-state snapshot to restore, so there is nothing to reverse
		// to. Like KindDelete, undoing one of these is left to the caller
		// that still holds the pre-action element (the canvas controller
		// deletes the clone, or the connection element, directly by id).
		return false
	default:
		return false
	}
}

func (m *Manager) applyForward(a Action) bool {
	switch a.Kind {
	case KindMove:
		e := m.graph.ByID(a.ElementID)
		if e == nil {
			return false
		}
		snap := a.After.(MoveSnapshot)
		m.graph.UpdatePosition(e, snap.After.X, snap.After.Y)
		return true
	case KindResize:
		e := m.graph.ByID(a.ElementID)
		if e == nil {
			return false
		}
		snap := a.After.(ResizeSnapshot)
		m.graph.UpdateSize(e, snap.After.W, snap.After.H)
		return true
	case KindText:
		e := m.graph.ByID(a.ElementID)
		if e == nil {
			return false
		}
		snap := a.After.(TextSnapshot)
		m.graph.UpdateText(e, snap.After)
		return true
	case KindColor:
		e := m.graph.ByID(a.ElementID)
		if e == nil {
			return false
		}
		snap := a.After.(ColorSnapshot)
		m.graph.UpdateColor(e, snap.After)
		return true
	case KindRotation:
		e := m.graph.ByID(a.ElementID)
		if e == nil {
			return false
		}
		snap := a.After.(RotationSnapshot)
		m.graph.UpdateRotation(e, snap.After)
		return true
	case KindReorderZ:
		e := m.graph.ByID(a.ElementID)
		if e == nil {
			return false
		}
		snap := a.After.(ReorderZSnapshot)
		m.graph.ReorderZ(e, snap.After)
		return true
	case KindBackground:
		sp := m.graph.SpaceByID(a.ElementID)
		if sp == nil {
			return false
		}
		snap := a.After.(ColorSnapshot)
		m.graph.SetSpaceBackground(sp, snap.After)
		return true
	case KindGrid:
		sp := m.graph.SpaceByID(a.ElementID)
		if sp == nil {
			return false
		}
		snap := a.After.(GridSnapshot)
		m.graph.SetSpaceGrid(sp, snap.AfterColor, snap.AfterEnabled)
		return true
	case KindConnect, KindClone:
		// See applyInverse: not reversible from the log entry alone.
		return false
	default:
		return false
	}
}

// Reset clears both stacks. Called on every space switch; undo history is
// never carried across spaces.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undoStack = nil
	m.redoStack = nil
}

// RemoveActionsForElement purges stack entries mentioning elementID, used
// when moving an element to another space so stale actions can't reference
// an id that now belongs to a different space's undo history.
func (m *Manager) RemoveActionsForElement(elementID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undoStack = filterOut(m.undoStack, elementID)
	m.redoStack = filterOut(m.redoStack, elementID)
}

func filterOut(stack []Action, elementID string) []Action {
	out := stack[:0]
	for _, a := range stack {
		if a.ElementID != elementID {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the current undo stack depth, used by callers that need to
// remember a checkpoint and later roll back everything recorded since
// (the DSL engine's per-script rollback, spec.md §4.7).
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undoStack)
}

// RollbackTo discards every undo entry recorded after depth n, applying
// each one's inverse to the domain model as it is discarded, without
// pushing any of them onto the redo stack. A no-op if the stack is
// already at or below depth n.
func (m *Manager) RollbackTo(n int) {
	for {
		m.mu.Lock()
		if len(m.undoStack) <= n {
			m.mu.Unlock()
			return
		}
		a := m.undoStack[len(m.undoStack)-1]
		depth := len(m.undoStack) - 1
		m.undoStack = m.undoStack[:depth]
		m.mu.Unlock()

		ok := m.applyInverse(a)
		// Drop whatever the inverse itself recorded through the graph.
		m.mu.Lock()
		if len(m.undoStack) > depth {
			m.undoStack = m.undoStack[:depth]
		}
		m.mu.Unlock()
		if !ok {
			log.Info().Str("kind", string(a.Kind)).Str("element", a.ElementID).
				Msg("rollback: skipped, referenced element no longer exists")
		}
	}
}

// CanUndo and CanRedo report whether the respective stack has entries.
func (m *Manager) CanUndo() bool { m.mu.Lock(); defer m.mu.Unlock(); return len(m.undoStack) > 0 }
func (m *Manager) CanRedo() bool { m.mu.Lock(); defer m.mu.Unlock(); return len(m.redoStack) > 0 }

// Log returns a copy of the forever-growing action log, oldest first.
func (m *Manager) Log() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogEntry, len(m.log))
	copy(out, m.log)
	return out
}
