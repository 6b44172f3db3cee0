package dsl

import (
	"math"

	"github.com/xonecas/revel/internal/model"
)

// Interpolation is one of the nine named easing functions spec.md §4.7
// allows on an animate_* command's trailing argument.
type Interpolation string

const (
	InterpImmediate Interpolation = "immediate"
	InterpLinear    Interpolation = "linear"
	InterpBezier    Interpolation = "bezier"
	InterpEaseIn    Interpolation = "ease-in"
	InterpEaseOut   Interpolation = "ease-out"
	InterpBounce    Interpolation = "bounce"
	InterpElastic   Interpolation = "elastic"
	InterpBack      Interpolation = "back"
	InterpCurve     Interpolation = "curve"
)

// ease maps a normalized progress t in [0,1] to an eased progress, per the
// named interpolation kind. bezier and curve are both treated as a cubic
// ease (smoothstep-derived); the DSL only ever needs the shape of the
// curve, not a caller-supplied control-point pair (spec.md leaves the
// textual grammar for control points unspecified).
func ease(kind Interpolation, t float64) float64 {
	switch kind {
	case InterpImmediate:
		if t >= 1 {
			return 1
		}
		return 0
	case InterpLinear:
		return t
	case InterpEaseIn:
		return t * t
	case InterpEaseOut:
		return 1 - (1-t)*(1-t)
	case InterpBezier, InterpCurve:
		return t * t * (3 - 2*t)
	case InterpBounce:
		return bounce(t)
	case InterpElastic:
		return elastic(t)
	case InterpBack:
		return back(t)
	default:
		return t
	}
}

func bounce(t float64) float64 {
	const n1, d1 = 7.5625, 2.75
	if t < 1/d1 {
		return n1 * t * t
	} else if t < 2/d1 {
		t -= 1.5 / d1
		return n1*t*t + 0.75
	} else if t < 2.5/d1 {
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	}
	t -= 2.625 / d1
	return n1*t*t + 0.984375
}

func elastic(t float64) float64 {
	if t == 0 || t == 1 {
		return t
	}
	const c4 = 2 * math.Pi / 3
	return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1
}

func back(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	t--
	return 1 + c3*t*t*t + c1*t*t
}

// channel discriminates which element attribute an animation entry drives.
type channel string

const (
	chPosition channel = "position"
	chSize     channel = "size"
	chRotation channel = "rotation"
	chColor    channel = "color"
	chOpacity  channel = "opacity"
)

// animEntry is one scheduled animation (spec.md §4.7: element_id, channel,
// from, to, start_time, duration, interpolation).
type animEntry struct {
	Element     *model.Element
	Channel     channel
	FromPoint   model.Position
	ToPoint     model.Position
	FromSize    model.Size
	ToSize      model.Size
	FromNum     float64
	ToNum       float64
	FromColor   model.Color
	ToColor     model.Color
	Start       float64
	Duration    float64
	Interp      Interpolation
	OnComplete  func(*model.Graph) // create/delete need a one-shot side effect at completion
	completed   bool
}

// AnimationEngine drives every scheduled animation off a single monotonic
// clock, applying interpolated values through the graph's Update* methods.
// Each applied tick is recorded by the graph's recorder as its own undo
// action; no single coalesced entry per animation is recorded.
type AnimationEngine struct {
	graph   *model.Graph
	entries []*animEntry
}

// NewAnimationEngine returns an engine with nothing scheduled.
func NewAnimationEngine(graph *model.Graph) *AnimationEngine {
	return &AnimationEngine{graph: graph}
}

// Schedule adds entry to the engine's active set.
func (a *AnimationEngine) Schedule(e *animEntry) {
	a.entries = append(a.entries, e)
}

// Advance ticks the engine to time t (seconds since script start),
// applying every active entry's interpolated value in start-time order,
// and returns the ids of elements touched this tick (for binding
// write-back). Completed entries fire OnComplete once and are retired.
func (a *AnimationEngine) Advance(t float64) []string {
	var touched []string

	sortByStart(a.entries)
	for _, e := range a.entries {
		if e.completed || t < e.Start {
			continue
		}
		progress := 1.0
		if e.Duration > 0 {
			progress = (t - e.Start) / e.Duration
			if progress > 1 {
				progress = 1
			}
		}
		eased := ease(e.Interp, progress)
		a.apply(e, eased)
		touched = append(touched, e.Element.ID)

		if progress >= 1 {
			e.completed = true
			if e.OnComplete != nil {
				e.OnComplete(a.graph)
			}
		}
	}

	live := a.entries[:0]
	for _, e := range a.entries {
		if !e.completed {
			live = append(live, e)
		}
	}
	a.entries = live

	return touched
}

func sortByStart(entries []*animEntry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Start < entries[j-1].Start; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

func lerp(from, to, t float64) float64 { return from + (to-from)*t }

func (a *AnimationEngine) apply(e *animEntry, t float64) {
	switch e.Channel {
	case chPosition:
		x := int(lerp(float64(e.FromPoint.X), float64(e.ToPoint.X), t))
		y := int(lerp(float64(e.FromPoint.Y), float64(e.ToPoint.Y), t))
		a.graph.UpdatePosition(e.Element, x, y)
	case chSize:
		w := int(lerp(float64(e.FromSize.W), float64(e.ToSize.W), t))
		h := int(lerp(float64(e.FromSize.H), float64(e.ToSize.H), t))
		a.graph.UpdateSize(e.Element, w, h)
	case chRotation:
		a.graph.UpdateRotation(e.Element, lerp(e.FromNum, e.ToNum, t))
	case chColor:
		c := model.Color{
			R: lerp(e.FromColor.R, e.ToColor.R, t),
			G: lerp(e.FromColor.G, e.ToColor.G, t),
			B: lerp(e.FromColor.B, e.ToColor.B, t),
			A: lerp(e.FromColor.A, e.ToColor.A, t),
		}
		a.graph.UpdateColor(e.Element, c)
	case chOpacity:
		c := e.Element.BG.Get()
		c.A = lerp(e.FromNum, e.ToNum, t)
		a.graph.UpdateColor(e.Element, c)
	}
}
