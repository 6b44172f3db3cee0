package dsl

import "fmt"

// TypeError is one accumulated type-checking error (spec.md §4.7: errors
// accumulate into a list with FILE:LINE:COL formatting).
type TypeError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *TypeError) Error() string {
	file := e.File
	if file == "" {
		file = "<dsl>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", file, e.Line, e.Col, e.Msg)
}

// argKind classifies one positional command argument for validation.
type argKind int

const (
	akDeclareID argKind = iota // introduces a new element id into scope
	akRefID                    // must refer to an already-known element id
	akPoint
	akString
	akNumeric
	akIdentEnum // a bare identifier naming an enum literal (shape type, interpolation kind, stroke/fill style); checkCommand also checks stroke_style/fill_style membership, other membership is a runtime concern
)

// commandSchema describes one command's expected argument shape plus
// which option keys it accepts and their kinds.
type commandSchema struct {
	required []argKind
	optional []argKind // appended after required, all optional (animate_* for the trailing interpolation arg, canvas_background for its second color)
	options  map[string]argKind
}

var shapeOptionSchema = map[string]argKind{
	"filled":       akIdentEnum, // bool literal, checked specially below
	"stroke":       akNumeric,
	"stroke_color": akString,
	"stroke_style": akIdentEnum,
	"fill_style":   akIdentEnum,
	"rotation":     akNumeric,
	"line_start":   akPoint,
	"line_end":     akPoint,
	"bg":           akString,
	"text_color":   akString,
	"font":         akString,
}

var commandSchemas = map[string]commandSchema{
	"note_create":       {required: []argKind{akDeclareID, akString, akPoint, akPoint}, options: shapeOptionSchema},
	"paper_note_create": {required: []argKind{akDeclareID, akString, akPoint, akPoint}, options: shapeOptionSchema},
	"text_create":       {required: []argKind{akDeclareID, akString, akPoint, akPoint}, options: shapeOptionSchema},
	"shape_create":      {required: []argKind{akDeclareID, akIdentEnum, akString, akPoint, akPoint}, options: shapeOptionSchema},
	"image_create":      {required: []argKind{akDeclareID, akString, akPoint, akPoint}, options: shapeOptionSchema},
	"video_create":      {required: []argKind{akDeclareID, akString, akPoint, akPoint}, options: shapeOptionSchema},
	"audio_create":      {required: []argKind{akDeclareID, akString, akPoint, akPoint}, options: shapeOptionSchema},
	"space_create":      {required: []argKind{akDeclareID, akString, akPoint, akPoint}, options: shapeOptionSchema},
	"connect":           {required: []argKind{akRefID, akRefID}},
	"element_delete":    {required: []argKind{akRefID}},
	"text_update":       {required: []argKind{akRefID, akString}},
	"animate_move":      {required: []argKind{akRefID, akPoint, akPoint, akNumeric, akNumeric}, optional: []argKind{akIdentEnum}},
	"animate_resize":    {required: []argKind{akRefID, akPoint, akPoint, akNumeric, akNumeric}, optional: []argKind{akIdentEnum}},
	"animate_rotate":    {required: []argKind{akRefID, akNumeric, akNumeric, akNumeric, akNumeric}, optional: []argKind{akIdentEnum}},
	"animate_color":     {required: []argKind{akRefID, akString, akString, akNumeric, akNumeric}, optional: []argKind{akIdentEnum}},
	"animate_appear":    {required: []argKind{akRefID, akNumeric, akNumeric}, optional: []argKind{akIdentEnum}},
	"animate_disappear": {required: []argKind{akRefID, akNumeric, akNumeric}, optional: []argKind{akIdentEnum}},
	"animate_create":    {required: []argKind{akRefID, akNumeric, akNumeric}, optional: []argKind{akIdentEnum}},
	"animate_delete":    {required: []argKind{akRefID, akNumeric, akNumeric}, optional: []argKind{akIdentEnum}},
	"canvas_background": {required: []argKind{akString}, optional: []argKind{akString}},
	"presentation_next": {},
	"presentation_auto_next_if": {required: []argKind{akIdentEnum /* var name */, akIdentEnum /* literal */}},
}

var validInterpolations = map[string]bool{
	"immediate": true, "linear": true, "bezier": true, "ease-in": true,
	"ease-out": true, "bounce": true, "elastic": true, "back": true, "curve": true,
}

var validShapeTypes = map[string]bool{
	"rectangle": true, "circle": true, "diamond": true, "line": true, "arrow": true, "bezier": true, "curve": true,
}

var validStrokeStyles = map[string]bool{"solid": true, "dashed": true, "dotted": true}
var validFillStyles = map[string]bool{"solid": true, "hachure": true, "crosshatch": true}

// varInfo is what the checker knows about one variable.
type varInfo struct {
	typ   ValueType
	array bool
}

// Checker performs the single-pass type check described in spec.md §4.7.
type Checker struct {
	file      string
	vars      map[string]varInfo
	elements  map[string]bool
	errs      []*TypeError
}

// NewChecker returns a Checker seeded with already-declared globals
// (persisted from a prior interactive execution) and element ids already
// present in the domain model.
func NewChecker(file string, priorGlobals map[string]ValueType, existingElements []string) *Checker {
	c := &Checker{file: file, vars: make(map[string]varInfo), elements: make(map[string]bool)}
	for name, t := range priorGlobals {
		c.vars[name] = varInfo{typ: t}
	}
	for _, id := range existingElements {
		c.elements[id] = true
	}
	return c
}

// Check type-checks prog and returns the accumulated errors (empty slice
// on success, never nil on failure).
func (c *Checker) Check(prog *Program) []*TypeError {
	for _, s := range prog.Stmts {
		c.checkStmt(s)
	}
	return c.errs
}

func (c *Checker) errorf(pos Pos, format string, args ...any) {
	c.errs = append(c.errs, &TypeError{File: c.file, Line: pos.Line, Col: pos.Col, Msg: fmt.Sprintf(format, args...)})
}

func (c *Checker) checkStmt(s Stmt) {
	switch st := s.(type) {
	case *DeclStmt:
		c.checkDecl(st)
	case *SetStmt:
		c.checkSet(st)
	case *CommandStmt:
		c.checkCommand(st)
	case *OnClickStmt:
		if !c.elements[st.ElementID] {
			c.errorf(st.Pos, "on click: element %q is not defined", st.ElementID)
		}
		c.checkBlock(st.Body)
	case *OnVariableStmt:
		if _, ok := c.vars[st.VarName]; !ok {
			c.errorf(st.Pos, "on variable: %q is not declared", st.VarName)
		}
		c.checkBlock(st.Body)
	case *ForStmt:
		c.checkNumeric(st.Start)
		c.checkNumeric(st.End)
		prior, hadPrior := c.vars[st.Var]
		c.vars[st.Var] = varInfo{typ: TypeInt}
		c.checkBlock(st.Body)
		if hadPrior {
			c.vars[st.Var] = prior
		} else {
			delete(c.vars, st.Var)
		}
	case *BindStmt:
		if !c.elements[st.ElementID] {
			c.errorf(st.Pos, "%s_bind: element %q is not defined", st.Kind, st.ElementID)
		}
		if _, ok := c.vars[st.VarName]; !ok {
			c.errorf(st.Pos, "%s_bind: variable %q is not declared", st.Kind, st.VarName)
		}
	default:
		c.errorf(Pos{}, "internal: unknown statement type %T", s)
	}
}

func (c *Checker) checkBlock(body []Stmt) {
	for _, s := range body {
		c.checkStmt(s)
	}
}

func (c *Checker) checkDecl(d *DeclStmt) {
	if _, exists := c.vars[d.Name]; exists {
		c.errorf(d.Pos, "variable %q is already declared", d.Name)
	}
	info := varInfo{typ: d.Type}
	if d.Type == TypeArray {
		info.array = true
		c.checkNumeric(d.ArraySize)
	}
	c.vars[d.Name] = info
	if d.Init != nil {
		t := c.checkExpr(d.Init)
		if d.Type != TypeArray && t != d.Type && !(isNumericType(d.Type) && isNumericType(t)) {
			c.errorf(d.Pos, "cannot initialize %s variable %q with a %s value", d.Type, d.Name, t)
		}
	}
}

func isNumericType(t ValueType) bool { return t == TypeInt || t == TypeReal }

func (c *Checker) checkSet(s *SetStmt) {
	info, ok := c.vars[s.Name]
	if !ok {
		c.errorf(s.Pos, "variable %q is not declared", s.Name)
		c.checkExpr(s.Value)
		return
	}
	if s.Index != nil {
		if !info.array {
			c.errorf(s.Pos, "%q is not an array", s.Name)
		}
		c.checkNumeric(s.Index)
	}
	t := c.checkExpr(s.Value)
	target := info.typ
	if s.Index != nil {
		target = TypeReal
	}
	if target != TypeArray && t != target && !(isNumericType(target) && isNumericType(t)) {
		c.errorf(s.Pos, "cannot assign a %s value to %q", t, s.Name)
	}
}

func (c *Checker) checkCommand(cmd *CommandStmt) {
	schema, ok := commandSchemas[cmd.Name]
	if !ok {
		c.errorf(cmd.Pos, "unknown command %q", cmd.Name)
		return
	}

	maxArgs := len(schema.required) + len(schema.optional)
	if len(cmd.Args) < len(schema.required) || len(cmd.Args) > maxArgs {
		c.errorf(cmd.Pos, "%s expects %d-%d arguments, got %d", cmd.Name, len(schema.required), maxArgs, len(cmd.Args))
	}

	for i, arg := range cmd.Args {
		var kind argKind
		switch {
		case i < len(schema.required):
			kind = schema.required[i]
		case i-len(schema.required) < len(schema.optional):
			kind = schema.optional[i-len(schema.required)]
		default:
			continue
		}
		c.checkArg(cmd.Name, arg, kind)
	}

	for key, val := range cmd.Options {
		optKind, ok := schema.options[key]
		if !ok {
			c.errorf(cmd.Pos, "%s: unknown option %q", cmd.Name, key)
			continue
		}
		if key == "filled" {
			if _, isBool := val.(*BoolLit); !isBool {
				c.errorf(val.exprPos(), "option filled expects a boolean literal")
			}
			continue
		}
		if key == "stroke_style" || key == "fill_style" {
			valid := validStrokeStyles
			if key == "fill_style" {
				valid = validFillStyles
			}
			if id, isIdent := val.(*Ident); isIdent && !valid[id.Name] {
				c.errorf(val.exprPos(), "%s: invalid %s %q", cmd.Name, key, id.Name)
			}
		}
		c.checkArg(cmd.Name, val, optKind)
	}

	if cmd.Name == "presentation_auto_next_if" && len(cmd.Args) == 2 {
		if id, ok := cmd.Args[0].(*Ident); ok {
			if info, known := c.vars[id.Name]; !known || info.typ != TypeBool {
				c.errorf(cmd.Pos, "presentation_auto_next_if: %q is not a declared bool variable", id.Name)
			}
		}
	}
}

func (c *Checker) checkArg(cmdName string, arg Expr, kind argKind) {
	switch kind {
	case akDeclareID:
		id, ok := arg.(*Ident)
		if !ok {
			c.errorf(arg.exprPos(), "%s: expected an element id", cmdName)
			return
		}
		if c.elements[id.Name] {
			c.errorf(arg.exprPos(), "%s: element %q is already defined", cmdName, id.Name)
		}
		c.elements[id.Name] = true
	case akRefID:
		id, ok := arg.(*Ident)
		if !ok {
			c.errorf(arg.exprPos(), "%s: expected an element id", cmdName)
			return
		}
		if !c.elements[id.Name] {
			c.errorf(arg.exprPos(), "%s: element %q is not defined", cmdName, id.Name)
		}
	case akPoint:
		pt, ok := arg.(*PointLit)
		if !ok {
			c.errorf(arg.exprPos(), "%s: expected a point literal (x,y)", cmdName)
			return
		}
		c.checkNumeric(pt.X)
		c.checkNumeric(pt.Y)
	case akString:
		t := c.checkExpr(arg)
		if t != TypeString {
			c.errorf(arg.exprPos(), "%s: expected a string, got %s", cmdName, t)
		}
	case akNumeric:
		c.checkNumeric(arg)
	case akIdentEnum:
		if _, ok := arg.(*Ident); !ok {
			if _, okBool := arg.(*BoolLit); !okBool {
				c.errorf(arg.exprPos(), "%s: expected an identifier", cmdName)
			}
		}
	}
}

func (c *Checker) checkNumeric(e Expr) {
	t := c.checkExpr(e)
	if t != TypeInt && t != TypeReal {
		c.errorf(e.exprPos(), "expected a numeric value, got %s", t)
	}
}

// checkExpr type-checks e and returns its static type, recording errors
// for undeclared references and invalid operand types along the way.
func (c *Checker) checkExpr(e Expr) ValueType {
	switch ex := e.(type) {
	case *IntLit:
		return TypeInt
	case *RealLit:
		return TypeReal
	case *BoolLit:
		return TypeBool
	case *StringLit:
		for _, sub := range ex.ExprParts {
			if sub != nil {
				c.checkExpr(sub)
			}
		}
		return TypeString
	case *PointLit:
		c.checkNumeric(ex.X)
		c.checkNumeric(ex.Y)
		return TypeArray
	case *Ident:
		info, ok := c.vars[ex.Name]
		if !ok {
			c.errorf(ex.Pos, "variable %q is not declared", ex.Name)
			return TypeInt
		}
		return info.typ
	case *IndexExpr:
		info, ok := c.vars[ex.Array]
		if !ok {
			c.errorf(ex.Pos, "variable %q is not declared", ex.Array)
			return TypeReal
		}
		if !info.array {
			c.errorf(ex.Pos, "%q is not an array", ex.Array)
		}
		c.checkNumeric(ex.Index)
		return TypeReal
	case *UnaryExpr:
		t := c.checkExpr(ex.X)
		if ex.Op == OpNot && t != TypeBool {
			c.errorf(ex.Pos, "! expects a bool operand, got %s", t)
		}
		return t
	case *BinaryExpr:
		return c.checkBinary(ex)
	default:
		c.errorf(Pos{}, "internal: unknown expression type %T", e)
		return TypeInt
	}
}

func (c *Checker) checkBinary(ex *BinaryExpr) ValueType {
	lt := c.checkExpr(ex.Left)
	rt := c.checkExpr(ex.Right)
	switch ex.Op {
	case OpAnd, OpOr:
		if lt != TypeBool {
			c.errorf(ex.Left.exprPos(), "logical operator expects a bool operand, got %s", lt)
		}
		if rt != TypeBool {
			c.errorf(ex.Right.exprPos(), "logical operator expects a bool operand, got %s", rt)
		}
		return TypeBool
	case OpEq, OpNe:
		return TypeBool
	case OpLt, OpLe, OpGt, OpGe:
		c.requireNumericOperand(ex.Left, lt)
		c.requireNumericOperand(ex.Right, rt)
		return TypeBool
	default: // arithmetic
		c.requireNumericOperand(ex.Left, lt)
		c.requireNumericOperand(ex.Right, rt)
		if lt == TypeReal || rt == TypeReal {
			return TypeReal
		}
		return TypeInt
	}
}

func (c *Checker) requireNumericOperand(e Expr, t ValueType) {
	if t != TypeInt && t != TypeReal {
		c.errorf(e.exprPos(), "expected a numeric value, got %s", t)
	}
}
