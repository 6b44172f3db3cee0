package model

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Graph holds the live element/space map for one open database. All cross-
// references are ids resolved through ByID/SpaceByID, never raw pointers,
// so the graph can be rebuilt (space switch) or an element relocated
// (move_element_to_space) without invalidating anything that merely
// remembers an id.
type Graph struct {
	mu sync.Mutex

	elements map[string]*Element
	spaces   map[string]*Space
	dirty    map[string]struct{}

	recorder ActionRecorder
	indexer  Indexer
}

// NewGraph returns an empty Graph. SetRecorder and SetIndexer should be
// called before any mutating method if undo recording or spatial indexing
// is wanted; both default to no-ops.
func NewGraph() *Graph {
	return &Graph{
		elements: make(map[string]*Element),
		spaces:   make(map[string]*Space),
		dirty:    make(map[string]struct{}),
		recorder: noopRecorder{},
		indexer:  noopIndexer{},
	}
}

// SetRecorder installs the undo manager's sink. Pass nil to suppress
// recording (a no-op recorder is installed instead).
func (g *Graph) SetRecorder(r ActionRecorder) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r == nil {
		r = noopRecorder{}
	}
	g.recorder = r
}

// SetIndexer installs the spatial index's sink.
func (g *Graph) SetIndexer(idx Indexer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if idx == nil {
		idx = noopIndexer{}
	}
	g.indexer = idx
}

// ElementConfig is the input to CreateElement. Z is ignored: CreateElement
// always assigns max+1 among the space's currently-live elements, per
// spec.md §4.2.
type ElementConfig struct {
	ID              string
	SpaceID         string
	Kind            Kind
	Position        Position
	Size            Size
	RotationDegrees float64
	BGColor         Color
	Text            string
	Shape           *ShapeOptions
	Media           *Media
	Drawing         *Drawing
	Conn            *Connection
	Hidden          bool
	Locked          bool
}

// CreateElement assigns an id (if Config.ID is empty), sets state New,
// computes Z as max+1 within the space's live elements, links sub-payloads,
// and records a create action.
func (g *Graph) CreateElement(cfg ElementConfig) *Element {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}

	e := &Element{
		ID:              id,
		SpaceID:         cfg.SpaceID,
		Kind:            cfg.Kind,
		Pos:             NewRef(Position{X: cfg.Position.X, Y: cfg.Position.Y, Z: g.nextZLocked(cfg.SpaceID)}),
		Sz:              NewRef(cfg.Size),
		RotationDegrees: cfg.RotationDegrees,
		BG:              NewRef(cfg.BGColor),
		Text:            NewRef(cfg.Text),
		Shape:           cfg.Shape,
		MediaData:       cfg.Media,
		DrawingPay:      cfg.Drawing,
		Conn:            cfg.Conn,
		State:           StateNew,
		Hidden:          cfg.Hidden,
		Locked:          cfg.Locked,
	}

	g.elements[id] = e
	g.dirty[id] = struct{}{}
	g.indexer.Reindex(e)
	g.recorder.RecordCreate(e)
	return e
}

// nextZLocked returns one past the highest z among the space's live
// (non-deleted) elements. Caller must hold g.mu.
func (g *Graph) nextZLocked(spaceID string) int {
	maxZ := -1
	for _, e := range g.elements {
		if e.SpaceID != spaceID || e.State == StateDeleted {
			continue
		}
		if z := e.Pos.Get().Z; z > maxZ {
			maxZ = z
		}
	}
	return maxZ + 1
}

// ByID returns the element with the given id, or nil if it doesn't exist
// or has been deleted.
func (g *Graph) ByID(id string) *Element {
	g.mu.Lock()
	defer g.mu.Unlock()
	e := g.elements[id]
	if e == nil || e.State == StateDeleted {
		return nil
	}
	return e
}

// rawByID returns the element regardless of state, including deleted ones.
// Used internally for cascades that need to reach an already-deleted node.
func (g *Graph) rawByID(id string) *Element {
	return g.elements[id]
}

// ByIDIncludingDeleted returns the element regardless of state, including
// deleted ones — used by the space navigator to flush a deleted element's
// tombstone row through save_dirty before resetting the graph.
func (g *Graph) ByIDIncludingDeleted(id string) *Element {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.elements[id]
}

// Adopt registers an already-built element (State Saved, loaded from the
// store) into the graph without assigning a new id or touching the dirty
// set, and reindexes it. Used by the space navigator when rebuilding the
// graph after a space switch.
func (g *Graph) Adopt(e *Element) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.elements[e.ID] = e
	g.indexer.Reindex(e)
}

// SpaceByID returns the space with the given id, or nil.
func (g *Graph) SpaceByID(id string) *Space {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.spaces[id]
}

// PutSpace registers or replaces a space (used when loading from the store).
func (g *Graph) PutSpace(s *Space) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.spaces[s.ID] = s
}

// Elements returns every live (non-deleted) element in the given space.
func (g *Graph) Elements(spaceID string) []*Element {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Element, 0, len(g.elements))
	for _, e := range g.elements {
		if e.SpaceID == spaceID && e.State != StateDeleted {
			out = append(out, e)
		}
	}
	return out
}

func (g *Graph) markDirtyLocked(e *Element) {
	if e.State == StateSaved {
		e.State = StateDirty
	}
	g.dirty[e.ID] = struct{}{}
}

// UpdatePosition mutates an element's position in memory, marks it dirty,
// and reindexes it. The recorder is called after g.mu is released, so a
// recorder that reacts to moves (dsl.BindingRecorder) may call back into
// the graph.
func (g *Graph) UpdatePosition(e *Element, x, y int) {
	g.mu.Lock()
	old := e.Pos.Get()
	e.Pos.Set(Position{X: x, Y: y, Z: old.Z})
	g.markDirtyLocked(e)
	g.indexer.Reindex(e)
	newPos := e.Pos.Get()
	rec := g.recorder
	g.mu.Unlock()
	rec.RecordMove(e, old, newPos)
}

// UpdateSize mutates an element's size, marks it dirty, and reindexes it.
func (g *Graph) UpdateSize(e *Element, w, h int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	old := e.Sz.Get()
	e.Sz.Set(Size{W: w, H: h})
	g.markDirtyLocked(e)
	g.indexer.Reindex(e)
	g.recorder.RecordResize(e, old, e.Sz.Get())
}

// UpdateText replaces an element's text and marks it dirty.
func (g *Graph) UpdateText(e *Element, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	old := e.Text.Get()
	e.Text.Set(text)
	g.markDirtyLocked(e)
	g.recorder.RecordText(e, old, text)
}

// UpdateColor replaces an element's background color and marks it dirty.
func (g *Graph) UpdateColor(e *Element, c Color) {
	g.mu.Lock()
	defer g.mu.Unlock()
	old := e.BG.Get()
	e.BG.Set(c)
	g.markDirtyLocked(e)
	g.recorder.RecordColor(e, old, c)
}

// UpdateRotation sets an element's rotation in degrees and marks it dirty.
func (g *Graph) UpdateRotation(e *Element, degrees float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	old := e.RotationDegrees
	e.RotationDegrees = degrees
	g.markDirtyLocked(e)
	g.recorder.RecordRotation(e, old, degrees)
}

// ReorderZ sets an element's z-index directly, bypassing the create-time
// auto-assignment. Used by paste/clone (which render atop the source) and
// by z-compaction at commit.
func (g *Graph) ReorderZ(e *Element, z int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	old := e.Pos.Get()
	e.Pos.Set(Position{X: old.X, Y: old.Y, Z: z})
	g.markDirtyLocked(e)
	g.recorder.RecordReorderZ(e, old.Z, z)
}

// DeleteElement sets an element's state to Deleted and cascades to any
// connection referencing it (also set to Deleted). Physical removal is
// deferred to the store's save_dirty.
func (g *Graph) DeleteElement(e *Element) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleteElementLocked(e)
}

func (g *Graph) deleteElementLocked(e *Element) {
	if e.State == StateDeleted {
		return
	}
	e.State = StateDeleted
	g.dirty[e.ID] = struct{}{}
	g.indexer.Remove(e.ID)
	g.recorder.RecordDelete(e)

	for _, other := range g.elements {
		if other.Kind != KindConnection || other.Conn == nil || other.State == StateDeleted {
			continue
		}
		if other.Conn.FromElementID == e.ID || other.Conn.ToElementID == e.ID {
			g.deleteElementLocked(other)
		}
	}
}

// CloneFlags selects, per attribute, whether the clone shares the source's
// Ref box (edits propagate both ways) or gets an independent copy.
type CloneFlags struct {
	Text     bool
	Size     bool
	Position bool
	BGColor  bool
}

// CloneElement produces a copy of e. Shared fields (per flags) alias e's
// Ref boxes; unshared fields are deep-copied. An unshared position gets z
// one past the highest z in the space so the clone renders atop it
// (spec.md §4.2); a shared position keeps the source's z.
func (g *Graph) CloneElement(e *Element, flags CloneFlags) *Element {
	g.mu.Lock()
	defer g.mu.Unlock()

	clone := &Element{
		ID:              uuid.NewString(),
		SpaceID:         e.SpaceID,
		Kind:            e.Kind,
		RotationDegrees: e.RotationDegrees,
		Shape:           cloneShapeOptions(e.Shape),
		MediaData:       e.MediaData, // media bytes are never duplicated unless flagged elsewhere
		DrawingPay:      e.DrawingPay,
		State:           StateNew,
		Hidden:          e.Hidden,
		Locked:          e.Locked,
	}

	if flags.Text {
		clone.Text = e.Text.Share()
	} else {
		clone.Text = e.Text.Detach()
	}
	if flags.BGColor {
		clone.BG = e.BG.Share()
	} else {
		clone.BG = e.BG.Detach()
	}
	if flags.Size {
		clone.Sz = e.Sz.Share()
	} else {
		clone.Sz = e.Sz.Detach()
	}

	srcPos := e.Pos.Get()
	if flags.Position {
		clone.Pos = e.Pos.Share()
		// A shared position still needs its own z so draw order differs;
		// bumping it here would also move the source, so z is kept equal
		// and the caller must reorder explicitly if overlap is unwanted.
	} else {
		clone.Pos = NewRef(Position{X: srcPos.X, Y: srcPos.Y, Z: g.nextZLocked(e.SpaceID)})
	}

	g.elements[clone.ID] = clone
	g.dirty[clone.ID] = struct{}{}
	g.indexer.Reindex(clone)
	g.recorder.RecordClone(e, clone)
	return clone
}

func cloneShapeOptions(s *ShapeOptions) *ShapeOptions {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// MoveElementToSpace changes an element's space_id and removes any
// connection that now crosses spaces.
func (g *Graph) MoveElementToSpace(e *Element, targetSpaceID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e.SpaceID = targetSpaceID
	g.markDirtyLocked(e)
	g.indexer.Remove(e.ID)
	g.indexer.Reindex(e)

	for _, other := range g.elements {
		if other.Kind != KindConnection || other.Conn == nil || other.State == StateDeleted {
			continue
		}
		if other.Conn.FromElementID != e.ID && other.Conn.ToElementID != e.ID {
			continue
		}
		from := g.elements[other.Conn.FromElementID]
		to := g.elements[other.Conn.ToElementID]
		if from == nil || to == nil || from.SpaceID != to.SpaceID {
			g.deleteElementLocked(other)
		}
	}
}

// DirtyIDs returns the id of every element changed since its last
// ClearDirty. Graph itself only tracks which ids are dirty — persistence is
// the store package's responsibility (spec.md §4.1's save_dirty).
func (g *Graph) DirtyIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.dirty))
	for id := range g.dirty {
		ids = append(ids, id)
	}
	return ids
}

// ClearDirty flips every element named in ids from New/Dirty to Saved, or
// removes it from the graph entirely if it was Deleted. Called after a
// successful store.SaveDirty.
func (g *Graph) ClearDirty(ids []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		e, ok := g.elements[id]
		if !ok {
			continue
		}
		if e.State == StateDeleted {
			delete(g.elements, id)
		} else {
			e.State = StateSaved
		}
		delete(g.dirty, id)
	}
}

// Reset clears the entire graph. Called by the space navigator before
// loading a new space.
func (g *Graph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.elements = make(map[string]*Element)
	g.dirty = make(map[string]struct{})
	g.indexer.Clear()
}

// String implements fmt.Stringer for debug logging.
func (e *Element) String() string {
	return fmt.Sprintf("%s(%s in %s @%v)", e.Kind, e.ID, e.SpaceID, e.Pos.Get())
}
