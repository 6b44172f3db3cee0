package dsl

import (
	"testing"

	"github.com/xonecas/revel/internal/model"
)

func TestAnimationEngine_LinearMoveInterpolatesPosition(t *testing.T) {
	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "s"})
	e := g.CreateElement(model.ElementConfig{SpaceID: "s", Position: model.Position{X: 0, Y: 0}})

	eng := NewAnimationEngine(g)
	eng.Schedule(&animEntry{
		Element:   e,
		Channel:   chPosition,
		FromPoint: model.Position{X: 0, Y: 0},
		ToPoint:   model.Position{X: 100, Y: 0},
		Start:     0, Duration: 10, Interp: InterpLinear,
	})

	eng.Advance(5)
	if pos := e.Pos.Get(); pos.X != 50 {
		t.Fatalf("expected halfway x=50, got %d", pos.X)
	}

	eng.Advance(10)
	if pos := e.Pos.Get(); pos.X != 100 {
		t.Fatalf("expected final x=100, got %d", pos.X)
	}
}

func TestAnimationEngine_CompletedEntryRetired(t *testing.T) {
	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "s"})
	e := g.CreateElement(model.ElementConfig{SpaceID: "s"})

	eng := NewAnimationEngine(g)
	completed := false
	eng.Schedule(&animEntry{
		Element: e, Channel: chRotation,
		FromNum: 0, ToNum: 90,
		Start: 0, Duration: 1, Interp: InterpLinear,
		OnComplete: func(*model.Graph) { completed = true },
	})

	eng.Advance(0.5)
	if completed {
		t.Fatalf("should not have completed yet")
	}
	eng.Advance(1)
	if !completed {
		t.Fatalf("expected OnComplete to fire at duration end")
	}
	if len(eng.entries) != 0 {
		t.Fatalf("expected completed entry retired, have %d left", len(eng.entries))
	}
}

func TestAnimationEngine_EntriesBeforeStartAreIgnored(t *testing.T) {
	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "s"})
	e := g.CreateElement(model.ElementConfig{SpaceID: "s", Position: model.Position{X: 5, Y: 5}})

	eng := NewAnimationEngine(g)
	eng.Schedule(&animEntry{
		Element: e, Channel: chPosition,
		FromPoint: model.Position{X: 0, Y: 0}, ToPoint: model.Position{X: 10, Y: 10},
		Start: 5, Duration: 1, Interp: InterpLinear,
	})
	eng.Advance(1)
	if pos := e.Pos.Get(); pos.X != 5 || pos.Y != 5 {
		t.Fatalf("expected untouched position before start_time, got %+v", pos)
	}
}

func TestEase_ImmediateIsStepFunction(t *testing.T) {
	if ease(InterpImmediate, 0.5) != 0 {
		t.Fatalf("expected 0 before progress completes")
	}
	if ease(InterpImmediate, 1) != 1 {
		t.Fatalf("expected 1 at completion")
	}
}

func TestEase_LinearIsIdentity(t *testing.T) {
	for _, v := range []float64{0, 0.25, 0.5, 1} {
		if got := ease(InterpLinear, v); got != v {
			t.Fatalf("ease(linear, %v) = %v", v, got)
		}
	}
}

func TestEase_BounceStaysWithinUnitRangeAtSamples(t *testing.T) {
	for _, v := range []float64{0, 0.2, 0.4, 0.6, 0.8, 1} {
		got := ease(InterpBounce, v)
		if got < -0.01 || got > 1.01 {
			t.Fatalf("ease(bounce, %v) = %v out of expected range", v, got)
		}
	}
}

func TestRuntime_AnimateMoveSchedulesAndTicks(t *testing.T) {
	rt, _ := newTestRuntime()
	runOK(t, rt, `note_create a "x" (0,0) (10,10)
animate_move a (0,0) (100,100) 0 10 linear`)

	if err := rt.Tick(5); err != nil {
		t.Fatalf("tick: %v", err)
	}
	pos := rt.elements["a"].Pos.Get()
	if pos.X != 50 || pos.Y != 50 {
		t.Fatalf("expected halfway position, got %+v", pos)
	}
}
