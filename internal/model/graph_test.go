package model

import "testing"

func newTestGraph() *Graph {
	g := NewGraph()
	root := &Space{ID: "space-a"}
	g.PutSpace(root)
	return g
}

func TestCreateElement_DefaultZ(t *testing.T) {
	g := newTestGraph()
	a := g.CreateElement(ElementConfig{SpaceID: "space-a", Kind: KindNote, Position: Position{X: 0, Y: 0}})
	b := g.CreateElement(ElementConfig{SpaceID: "space-a", Kind: KindNote, Position: Position{X: 10, Y: 10}})

	if a.Pos.Get().Z != 0 {
		t.Fatalf("first element z = %d, want 0", a.Pos.Get().Z)
	}
	if b.Pos.Get().Z != 1 {
		t.Fatalf("second element z = %d, want 1", b.Pos.Get().Z)
	}
	if a.State != StateNew || b.State != StateNew {
		t.Fatalf("new elements should be StateNew")
	}
}

func TestUpdatePosition_MarksDirty(t *testing.T) {
	g := newTestGraph()
	e := g.CreateElement(ElementConfig{SpaceID: "space-a", Kind: KindNote})
	g.ClearDirty(g.DirtyIDs())
	if e.State != StateSaved {
		t.Fatalf("expected Saved after ClearDirty, got %s", e.State)
	}

	g.UpdatePosition(e, 300, 400)
	if e.State != StateDirty {
		t.Fatalf("expected Dirty after UpdatePosition, got %s", e.State)
	}
	if e.Pos.Get() != (Position{X: 300, Y: 400, Z: 0}) {
		t.Fatalf("position = %+v", e.Pos.Get())
	}
}

func TestDeleteElement_CascadesConnection(t *testing.T) {
	g := newTestGraph()
	a := g.CreateElement(ElementConfig{SpaceID: "space-a", Kind: KindNote})
	b := g.CreateElement(ElementConfig{SpaceID: "space-a", Kind: KindNote})
	conn := g.CreateElement(ElementConfig{
		SpaceID: "space-a",
		Kind:    KindConnection,
		Conn:    &Connection{FromElementID: a.ID, ToElementID: b.ID},
	})

	g.DeleteElement(a)

	if a.State != StateDeleted {
		t.Fatalf("a should be deleted")
	}
	if conn.State != StateDeleted {
		t.Fatalf("connection referencing a deleted endpoint should cascade-delete")
	}
	if b.State == StateDeleted {
		t.Fatalf("b should survive")
	}
}

func TestCloneElement_SharedAndIndependentFields(t *testing.T) {
	g := newTestGraph()
	src := g.CreateElement(ElementConfig{
		SpaceID:  "space-a",
		Kind:     KindNote,
		Position: Position{X: 100, Y: 100},
		Size:     Size{W: 50, H: 50},
		Text:     "hello",
	})

	clone := g.CloneElement(src, CloneFlags{Text: true, Position: false, Size: false, BGColor: false})

	// Shared text: editing the clone's text must be visible via src's Ref.
	clone.Text.Set("changed")
	if src.Text.Get() != "changed" {
		t.Fatalf("shared text field did not propagate: got %q", src.Text.Get())
	}

	// Independent position: editing clone's position must not affect src.
	clone.Pos.Set(Position{X: 999, Y: 999, Z: clone.Pos.Get().Z})
	if src.Pos.Get().X == 999 {
		t.Fatalf("independent position field leaked to source")
	}

	if clone.Pos.Get().Z <= src.Pos.Get().Z {
		t.Fatalf("clone z (%d) should render atop source z (%d)", clone.Pos.Get().Z, src.Pos.Get().Z)
	}
}

func TestMoveElementToSpace_RemovesCrossSpaceConnection(t *testing.T) {
	g := newTestGraph()
	other := &Space{ID: "space-b"}
	g.PutSpace(other)

	a := g.CreateElement(ElementConfig{SpaceID: "space-a", Kind: KindNote})
	b := g.CreateElement(ElementConfig{SpaceID: "space-a", Kind: KindNote})
	conn := g.CreateElement(ElementConfig{
		SpaceID: "space-a",
		Kind:    KindConnection,
		Conn:    &Connection{FromElementID: a.ID, ToElementID: b.ID},
	})

	g.MoveElementToSpace(a, "space-b")

	if conn.State != StateDeleted {
		t.Fatalf("connection crossing spaces should be removed")
	}
	if a.SpaceID != "space-b" {
		t.Fatalf("a should now belong to space-b")
	}
}

func TestParentChain_DetectsCycle(t *testing.T) {
	g := NewGraph()
	idA, idB := "a", "b"
	g.PutSpace(&Space{ID: idA, ParentID: &idB})
	g.PutSpace(&Space{ID: idB, ParentID: &idA})

	_, err := g.ParentChain(idA)
	if err != ErrCyclicSpace {
		t.Fatalf("expected ErrCyclicSpace, got %v", err)
	}
}

func TestParentChain_Acyclic(t *testing.T) {
	g := NewGraph()
	g.PutSpace(&Space{ID: "root"})
	parent := "root"
	g.PutSpace(&Space{ID: "child", ParentID: &parent})

	chain, err := g.ParentChain("child")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chain) != 2 || chain[0] != "child" || chain[1] != "root" {
		t.Fatalf("chain = %v", chain)
	}
}
