package dsl

import (
	"testing"

	"github.com/xonecas/revel/internal/model"
	"github.com/xonecas/revel/internal/undo"
)

func TestBindingRecorder_MoveWritesBackIntoBoundVariable(t *testing.T) {
	rt, g := newTestRuntime()
	runOK(t, rt, `note_create a "x" (0,0) (10,10)
global int pos[2]
position_bind a pos`)

	mgr := undo.New(g)
	g.SetRecorder(&BindingRecorder{Inner: mgr, Runtime: rt})

	e := rt.elements["a"]
	g.UpdatePosition(e, 30, 40)

	v := rt.globals["pos"]
	if v.array[0] != 30 || v.array[1] != 40 {
		t.Fatalf("expected position binding to write back on move, got %v", v.array)
	}
	if !mgr.CanUndo() {
		t.Fatalf("expected the move to still be recorded on the undo stack")
	}
}

func TestBindingRecorder_DelegatesEveryOtherCall(t *testing.T) {
	rt, g := newTestRuntime()
	mgr := undo.New(g)
	g.SetRecorder(&BindingRecorder{Inner: mgr, Runtime: rt})

	g.CreateElement(model.ElementConfig{SpaceID: "space-a"})
	if !mgr.CanUndo() {
		t.Fatalf("expected create to be recorded through the fan-out wrapper")
	}
}
