package dsl

import "testing"

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Parse("test.dsl", src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return prog
}

func TestParser_DeclWithInitializer(t *testing.T) {
	prog := mustParse(t, "int x 5")
	if len(prog.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Stmts))
	}
	d, ok := prog.Stmts[0].(*DeclStmt)
	if !ok {
		t.Fatalf("expected *DeclStmt, got %T", prog.Stmts[0])
	}
	if d.Type != TypeInt || d.Name != "x" {
		t.Fatalf("got %+v", d)
	}
	if lit, ok := d.Init.(*IntLit); !ok || lit.Val != 5 {
		t.Fatalf("expected init literal 5, got %+v", d.Init)
	}
}

func TestParser_GlobalArrayDecl(t *testing.T) {
	prog := mustParse(t, "global int xs[10]")
	d := prog.Stmts[0].(*DeclStmt)
	if !d.Global || d.Type != TypeArray {
		t.Fatalf("got %+v", d)
	}
	if lit, ok := d.ArraySize.(*IntLit); !ok || lit.Val != 10 {
		t.Fatalf("expected array size 10, got %+v", d.ArraySize)
	}
}

func TestParser_TwoConsecutiveCommandsStaySeparate(t *testing.T) {
	prog := mustParse(t, `note_create a "hi" (0,0) (10,10)
text_update a "bye"`)
	if len(prog.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %+v", len(prog.Stmts), prog.Stmts)
	}
	c1, ok := prog.Stmts[0].(*CommandStmt)
	if !ok || c1.Name != "note_create" || len(c1.Args) != 4 {
		t.Fatalf("first command wrong: %+v", prog.Stmts[0])
	}
	c2, ok := prog.Stmts[1].(*CommandStmt)
	if !ok || c2.Name != "text_update" || len(c2.Args) != 2 {
		t.Fatalf("second command wrong: %+v", prog.Stmts[1])
	}
}

func TestParser_ShapeCreateWithOptions(t *testing.T) {
	prog := mustParse(t, `shape_create s rectangle "box" (0,0) (20,20) filled:true stroke:2`)
	c := prog.Stmts[0].(*CommandStmt)
	if c.Name != "shape_create" || len(c.Args) != 5 {
		t.Fatalf("got %+v", c)
	}
	if _, ok := c.Options["filled"]; !ok {
		t.Fatalf("missing filled option: %+v", c.Options)
	}
	if _, ok := c.Options["stroke"]; !ok {
		t.Fatalf("missing stroke option: %+v", c.Options)
	}
}

func TestParser_ForLoopBody(t *testing.T) {
	prog := mustParse(t, `for i 0 5
set x i
end`)
	f := prog.Stmts[0].(*ForStmt)
	if f.Var != "i" || len(f.Body) != 1 {
		t.Fatalf("got %+v", f)
	}
}

func TestParser_OnClickBlock(t *testing.T) {
	prog := mustParse(t, `on click a
element_delete a
end`)
	on := prog.Stmts[0].(*OnClickStmt)
	if on.ElementID != "a" || len(on.Body) != 1 {
		t.Fatalf("got %+v", on)
	}
}

func TestParser_PointLiteralVsParenGrouping(t *testing.T) {
	prog := mustParse(t, `set x (1,2)`)
	s := prog.Stmts[0].(*SetStmt)
	if _, ok := s.Value.(*PointLit); !ok {
		t.Fatalf("expected point literal, got %T", s.Value)
	}

	prog = mustParse(t, `set x (1 + 2)`)
	s = prog.Stmts[0].(*SetStmt)
	if _, ok := s.Value.(*BinaryExpr); !ok {
		t.Fatalf("expected grouped binary expr, got %T", s.Value)
	}
}

func TestParser_StringInterpolationBuildsExprParts(t *testing.T) {
	prog := mustParse(t, `set s "count: ${n}"`)
	s := prog.Stmts[0].(*SetStmt)
	lit := s.Value.(*StringLit)
	if lit.ExprParts[1] == nil {
		t.Fatalf("expected parsed expr for interpolation part")
	}
	if _, ok := lit.ExprParts[1].(*Ident); !ok {
		t.Fatalf("expected identifier expr, got %T", lit.ExprParts[1])
	}
}

func TestParser_BindStatements(t *testing.T) {
	prog := mustParse(t, "text_bind a label\nposition_bind b pos")
	b1 := prog.Stmts[0].(*BindStmt)
	if b1.Kind != "text" || b1.ElementID != "a" || b1.VarName != "label" {
		t.Fatalf("got %+v", b1)
	}
	b2 := prog.Stmts[1].(*BindStmt)
	if b2.Kind != "position" || b2.ElementID != "b" || b2.VarName != "pos" {
		t.Fatalf("got %+v", b2)
	}
}

func TestParser_UnknownEndProducesError(t *testing.T) {
	if _, err := Parse("t", "for i 0 5\nset x i"); err == nil {
		t.Fatalf("expected error for missing 'end'")
	}
}
