package model

// ActionRecorder receives a notification for every mutation Graph performs,
// in before/after form, so the undo manager (internal/undo) can build a
// reversible Action without Graph importing undo or vice versa. Graph calls
// these synchronously, in the same goroutine as the mutating call, before
// returning — per spec.md §5, all writes are main-thread and a single
// dispatch runs to completion.
//
// Graph defaults to a no-op recorder, and Graph.SetRecorder(nil) installs
// one, so recording is suppressed. Graph.Adopt, which the space navigator
// uses to load a space's elements from the store, records nothing.
type ActionRecorder interface {
	RecordCreate(e *Element)
	RecordDelete(e *Element)
	RecordMove(e *Element, oldPos, newPos Position)
	RecordResize(e *Element, oldSize, newSize Size)
	RecordText(e *Element, oldText, newText string)
	RecordColor(e *Element, oldColor, newColor Color)
	RecordRotation(e *Element, oldDeg, newDeg float64)
	RecordConnect(e *Element)
	RecordReorderZ(e *Element, oldZ, newZ int)
	RecordClone(src, clone *Element)
	RecordBackground(space *Space, oldColor, newColor Color)
	RecordGrid(space *Space, oldColor Color, oldEnabled bool, newColor Color, newEnabled bool)
}

// Indexer receives notification when an element's geometry changes enough
// to require a spatial-index update, and when the index should be dropped
// entirely (space switch, batch rebuild). Implemented by the quadtree in
// internal/visual; Graph holds only this narrow interface so the domain
// model never imports the visual layer.
type Indexer interface {
	Reindex(e *Element)
	Remove(id string)
	Clear()
}

// noopRecorder discards every call. Used as Graph's zero-value recorder so
// callers never need a nil check.
type noopRecorder struct{}

func (noopRecorder) RecordCreate(*Element)                                       {}
func (noopRecorder) RecordDelete(*Element)                                       {}
func (noopRecorder) RecordMove(*Element, Position, Position)                     {}
func (noopRecorder) RecordResize(*Element, Size, Size)                           {}
func (noopRecorder) RecordText(*Element, string, string)                         {}
func (noopRecorder) RecordColor(*Element, Color, Color)                          {}
func (noopRecorder) RecordRotation(*Element, float64, float64)                   {}
func (noopRecorder) RecordConnect(*Element)                                      {}
func (noopRecorder) RecordReorderZ(*Element, int, int)                           {}
func (noopRecorder) RecordClone(*Element, *Element)                              {}
func (noopRecorder) RecordBackground(*Space, Color, Color)                       {}
func (noopRecorder) RecordGrid(*Space, Color, bool, Color, bool)                 {}

type noopIndexer struct{}

func (noopIndexer) Reindex(*Element) {}
func (noopIndexer) Remove(string)    {}
func (noopIndexer) Clear()           {}
