package dsl

import (
	"testing"

	"github.com/xonecas/revel/internal/model"
	"github.com/xonecas/revel/internal/undo"
)

func newTestRuntime() (*Runtime, *model.Graph) {
	g := model.NewGraph()
	g.PutSpace(&model.Space{ID: "space-a"})
	return NewRuntime(g, "space-a"), g
}

func runOK(t *testing.T, rt *Runtime, src string) {
	t.Helper()
	prog, err := Parse("t.dsl", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	result := Check("t.dsl", prog, rt)
	if !result.OK() {
		t.Fatalf("type errors: %s", result.FormatErrors())
	}
	if err := rt.Run(prog); err != nil {
		t.Fatalf("run error: %v", err)
	}
}

func TestRuntime_NoteCreateRegistersAlias(t *testing.T) {
	rt, g := newTestRuntime()
	runOK(t, rt, `note_create a "hello" (10,20) (100,50)`)

	e, ok := rt.elements["a"]
	if !ok {
		t.Fatalf("expected alias 'a' to be registered")
	}
	if e.Text.Get() != "hello" {
		t.Fatalf("got text %q", e.Text.Get())
	}
	if g.ByID(e.ID) == nil {
		t.Fatalf("expected element present in graph")
	}
	pos := e.Pos.Get()
	if pos.X != 10 || pos.Y != 20 {
		t.Fatalf("got position %+v", pos)
	}
}

func TestRuntime_TextUpdateWithInterpolation(t *testing.T) {
	rt, _ := newTestRuntime()
	runOK(t, rt, `note_create a "start" (0,0) (10,10)
int n 3
text_update a "count: ${n}"`)
	e := rt.elements["a"]
	if got := e.Text.Get(); got != "count: 3" {
		t.Fatalf("got %q", got)
	}
}

func TestRuntime_ElementDeleteSoftDeletes(t *testing.T) {
	rt, g := newTestRuntime()
	prog, err := Parse("t", `note_create a "x" (0,0) (10,10)`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res := Check("t", prog, rt); !res.OK() {
		t.Fatalf("type errors: %s", res.FormatErrors())
	}
	if err := rt.Run(prog); err != nil {
		t.Fatalf("run: %v", err)
	}
	id := rt.elements["a"].ID

	runOK(t, rt, "element_delete a")

	if _, ok := rt.elements["a"]; ok {
		t.Fatalf("expected alias removed after delete")
	}
	if g.ByID(id) != nil {
		t.Fatalf("expected soft-deleted element to no longer resolve via ByID")
	}
	if g.ByIDIncludingDeleted(id) == nil {
		t.Fatalf("expected element to still exist in the graph, only marked deleted")
	}
}

func TestRuntime_ConnectCreatesConnectionElement(t *testing.T) {
	rt, g := newTestRuntime()
	runOK(t, rt, `note_create a "a" (0,0) (10,10)
note_create b "b" (100,0) (10,10)
connect a b`)
	found := false
	for _, e := range g.Elements("space-a") {
		if e.Kind == model.KindConnection {
			found = true
			if e.Conn.FromElementID != rt.elements["a"].ID || e.Conn.ToElementID != rt.elements["b"].ID {
				t.Fatalf("connection endpoints wrong: %+v", e.Conn)
			}
		}
	}
	if !found {
		t.Fatalf("expected a connection element to be created")
	}
}

func TestRuntime_ForLoopCreatesMultipleElements(t *testing.T) {
	rt, g := newTestRuntime()
	runOK(t, rt, `for i 0 3
note_create n "hi" (i * 10, 0) (10,10)
element_delete n
end`)
	// each iteration declares and then deletes its own "n" alias, so the
	// loop must not error on redeclaration across iterations
	if len(g.Elements("space-a")) != 0 {
		t.Fatalf("expected all looped elements deleted, got %d live", len(g.Elements("space-a")))
	}
}

func TestRuntime_DivisionByZeroIsRuntimeError(t *testing.T) {
	rt, _ := newTestRuntime()
	prog, err := Parse("t", "int x 5\nint y 0\nset x x / y")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	result := Check("t", prog, rt)
	if !result.OK() {
		t.Fatalf("unexpected type errors: %s", result.FormatErrors())
	}
	if err := rt.Run(prog); err == nil {
		t.Fatalf("expected a runtime division-by-zero error")
	}
}

func TestRuntime_TextBindUpdatesElementOnVariableChange(t *testing.T) {
	rt, _ := newTestRuntime()
	runOK(t, rt, `note_create a "placeholder" (0,0) (10,10)
string label "initial"
text_bind a label`)
	if got := rt.elements["a"].Text.Get(); got != "initial" {
		t.Fatalf("expected binding to apply immediately, got %q", got)
	}

	runOK(t, rt, `set label "updated"`)
	if got := rt.elements["a"].Text.Get(); got != "updated" {
		t.Fatalf("expected bound text to follow the variable, got %q", got)
	}
}

func TestRuntime_PositionBindWritesBackOnElementMove(t *testing.T) {
	rt, g := newTestRuntime()
	runOK(t, rt, `note_create a "x" (0,0) (10,10)
global int pos[2]
position_bind a pos`)

	e := rt.elements["a"]
	g.UpdatePosition(e, 42, 7) // simulate a drag, bypassing the DSL
	if err := rt.OnElementMoved(e.ID); err != nil {
		t.Fatalf("OnElementMoved: %v", err)
	}

	v := rt.globals["pos"]
	if v.array[0] != 42 || v.array[1] != 7 {
		t.Fatalf("expected write-back to array, got %v", v.array)
	}
}

func TestRuntime_OnClickHandlerRuns(t *testing.T) {
	rt, g := newTestRuntime()
	runOK(t, rt, `note_create a "x" (0,0) (10,10)
on click a
element_delete a
end`)
	if err := rt.DispatchClick("a"); err != nil {
		t.Fatalf("dispatch click: %v", err)
	}
	if len(g.Elements("space-a")) != 0 {
		t.Fatalf("expected click handler to delete the element")
	}
}

func TestRuntime_ResetClearsEverything(t *testing.T) {
	rt, _ := newTestRuntime()
	runOK(t, rt, `note_create a "x" (0,0) (10,10)
global int counter 1`)
	rt.Reset()
	if len(rt.elements) != 0 || len(rt.globals) != 0 {
		t.Fatalf("expected Reset to wipe elements and globals")
	}
}

func TestRuntime_CanvasBackgroundRecordsUndoActions(t *testing.T) {
	rt, g := newTestRuntime()
	mgr := undo.New(g)
	g.SetRecorder(mgr)

	wantBG, err := rt.resolveColor(Pos{}, "#112233")
	if err != nil {
		t.Fatalf("resolveColor: %v", err)
	}
	wantGrid, err := rt.resolveColor(Pos{}, "#445566")
	if err != nil {
		t.Fatalf("resolveColor: %v", err)
	}

	runOK(t, rt, `canvas_background "#112233" "#445566"`)

	sp := g.SpaceByID("space-a")
	if !colorsClose(sp.BackgroundColor, wantBG) {
		t.Fatalf("expected background color applied, got %+v", sp.BackgroundColor)
	}
	if !sp.ShowGrid || !colorsClose(sp.GridColor, wantGrid) {
		t.Fatalf("expected grid enabled with the given color, got %v/%+v", sp.ShowGrid, sp.GridColor)
	}
	if !mgr.CanUndo() {
		t.Fatalf("expected canvas_background to record an undoable action")
	}

	// canvas_background with a grid color pushes two actions (background,
	// then grid); undoing the most recent one reverts the grid only.
	mgr.Undo()
	if sp.ShowGrid || !colorsClose(sp.GridColor, model.Color{}) {
		t.Fatalf("expected grid reverted by undo, got %v/%+v", sp.ShowGrid, sp.GridColor)
	}
	if !colorsClose(sp.BackgroundColor, wantBG) {
		t.Fatalf("expected background color untouched by the grid undo, got %+v", sp.BackgroundColor)
	}
}

func colorsClose(a, b model.Color) bool {
	const eps = 0.01
	diff := func(x, y float64) float64 {
		if x > y {
			return x - y
		}
		return y - x
	}
	return diff(a.R, b.R) < eps && diff(a.G, b.G) < eps && diff(a.B, b.B) < eps && diff(a.A, b.A) < eps
}
