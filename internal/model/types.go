// Package model implements the typed element graph: spaces, elements (notes,
// shapes, media, connections, freehand drawings), and the dirty-state
// machine that mediates between in-memory edits and the persistence store.
package model

import "time"

// Kind discriminates the element variants.
type Kind string

const (
	KindNote       Kind = "note"
	KindPaperNote  Kind = "paper_note"
	KindInlineText Kind = "inline_text"
	KindShape      Kind = "shape"
	KindMedia      Kind = "media"
	KindSpaceRef   Kind = "space_ref"
	KindConnection Kind = "connection"
	KindFreehand   Kind = "freehand"
)

// State is the element's position in the dirty-state machine. Transitions
// are monotonic toward Deleted: New -> Saved -> Dirty -> Saved, or any of
// those -> Deleted.
type State string

const (
	StateNew     State = "new"
	StateSaved   State = "saved"
	StateDirty   State = "dirty"
	StateDeleted State = "deleted"
)

// ShapeKind enumerates the shape sub-variant.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeDiamond   ShapeKind = "diamond"
	ShapeLine      ShapeKind = "line"
	ShapeArrow     ShapeKind = "arrow"
	ShapeBezier    ShapeKind = "bezier"
)

// StrokeStyle and FillStyle are shape rendering options, validated by the
// DSL type checker and consumed by the visual layer's draw routine.
type StrokeStyle string

const (
	StrokeSolid  StrokeStyle = "solid"
	StrokeDashed StrokeStyle = "dashed"
	StrokeDotted StrokeStyle = "dotted"
)

type FillStyle string

const (
	FillSolid      FillStyle = "solid"
	FillHachure    FillStyle = "hachure"
	FillCrosshatch FillStyle = "crosshatch"
)

// Color is a 4-channel color with components in [0,1].
type Color struct {
	R, G, B, A float64
}

// Point is an integer canvas-space coordinate.
type Point struct {
	X, Y int
}

// UnitPoint is a point in the unit [0,1] space used by drawing payloads.
type UnitPoint struct {
	X, Y float64
}

// Position is an element's canvas-space placement. Z is the draw order;
// it is unique within a space's currently-live elements at commit time.
type Position struct {
	X, Y, Z int
}

// Size is an element's bounding-box dimensions in canvas units.
type Size struct {
	W, H int
}

// MediaKind discriminates a media payload's underlying asset type.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// Media is an element's media payload. Bytes is the value itself (not a
// path); it is lazily loaded from the store and never duplicated across
// elements unless explicitly cloned.
type Media struct {
	Kind            MediaKind
	Bytes           []byte
	Thumbnail       []byte // still frame for video, per spec.md §6 drop targets
	DurationSeconds float64
}

// Drawing is a freehand element's payload: an immutable sequence of unit-
// space points plus stroke styling. Must have at least 2 points.
type Drawing struct {
	Points      []UnitPoint
	StrokeWidth float64
	Color       Color
}

// Connection is the connection-kind element's endpoint data. Point indices
// are 0..3 (N, E, S, W), or an endpoint offset along a line/bezier geometry
// for shape endpoints, per the visual layer's override.
type Connection struct {
	FromElementID string
	ToElementID   string
	FromPoint     int
	ToPoint       int
}

// ShapeOptions holds the options accepted by `shape_create` and validated by
// the DSL type checker (spec.md §4.7).
type ShapeOptions struct {
	ShapeKind   ShapeKind
	Filled      bool
	Stroke      float64
	StrokeColor Color
	StrokeStyle StrokeStyle
	FillStyle   FillStyle
	LineStart   Point
	LineEnd     Point
	TextColor   Color
	Font        string
}

// Element is the central, tagged-variant graph node. Cross-references
// (connections, handlers, visual back-references) are always ids resolved
// through Graph.ByID — never raw pointers — so the graph can be rebuilt and
// elements relocated without invalidating anything that merely remembers an
// id.
type Element struct {
	ID      string
	SpaceID string
	Kind    Kind

	Pos Ref[Position]
	Sz  Ref[Size]

	RotationDegrees float64
	BG              Ref[Color]
	Text            Ref[string]

	Shape      *ShapeOptions
	MediaData  *Media
	DrawingPay *Drawing
	Conn       *Connection

	State  State
	Hidden bool
	Locked bool
}

// Space is a named container of elements, optionally nested within a
// parent space. The parent chain is acyclic and forms a tree rooted at a
// single root space (root's ParentID is nil).
type Space struct {
	ID              string
	Name            string
	ParentID        *string
	BackgroundColor Color
	ShowGrid        bool
	GridColor       Color
	CreatedAt       time.Time
}
