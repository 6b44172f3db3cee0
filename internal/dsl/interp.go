package dsl

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/xonecas/revel/internal/model"
)

// variable is one runtime binding: a scalar value or an array backing slice.
type variable struct {
	val   Value
	array []float64
}

// Runtime executes parsed programs against a domain model graph, holding
// the global variable table, element-id alias table, registered handlers,
// bindings, and the animation engine across interactive invocations
// (spec.md §4.7's "reset wipes... not invoked during AI turn-taking").
type Runtime struct {
	Graph   *model.Graph
	SpaceID string

	// SpaceStore persists a space_create command's new space row; nil in
	// tests that only exercise the in-memory graph.
	SpaceStore SpaceCreator

	globals map[string]*variable
	locals  map[string]*variable // scoped to the statement currently executing; nil outside one

	elements map[string]*model.Element // alias id -> live element

	clickHandlers map[string][]Stmt // element id -> body
	varHandlers   map[string][]Stmt // variable name -> body

	bindings []*binding

	Anim *AnimationEngine

	watchers map[string]bool // variables with at least one on-variable handler or binding

	presentationIndex int
	presentationOrder  []string

	seenThisFrame map[string]bool // cycle-breaking set for notification flush
}

// NewRuntime returns a Runtime wired to graph/spaceID, with no variables,
// handlers, bindings, or scheduled animations.
func NewRuntime(graph *model.Graph, spaceID string) *Runtime {
	return &Runtime{
		Graph:         graph,
		SpaceID:       spaceID,
		globals:       make(map[string]*variable),
		elements:      make(map[string]*model.Element),
		clickHandlers: make(map[string][]Stmt),
		varHandlers:   make(map[string][]Stmt),
		Anim:          NewAnimationEngine(graph),
		watchers:      make(map[string]bool),
	}
}

// Reset wipes variables, handlers, bindings, element aliases, and the
// animation engine (spec.md §4.7). Never called between AI turns, so that
// element ids referenced by a follow-up prompt stay resolvable.
func (r *Runtime) Reset() {
	r.globals = make(map[string]*variable)
	r.elements = make(map[string]*model.Element)
	r.clickHandlers = make(map[string][]Stmt)
	r.varHandlers = make(map[string][]Stmt)
	r.bindings = nil
	r.Anim = NewAnimationEngine(r.Graph)
	r.watchers = make(map[string]bool)
	r.presentationIndex = 0
	r.presentationOrder = nil
}

// SeedElement registers an already-existing element under id so later
// scripts can refer to it by that alias (used when loading a script that
// continues editing a space the AI driver has already populated).
func (r *Runtime) SeedElement(id string, e *model.Element) {
	r.elements[id] = e
}

// KnownElementIDs returns every alias id currently resolvable, for handing
// to NewChecker before running a follow-up script.
func (r *Runtime) KnownElementIDs() []string {
	ids := make([]string, 0, len(r.elements))
	for id := range r.elements {
		ids = append(ids, id)
	}
	return ids
}

// GlobalTypes returns the declared type of every global variable, for
// handing to NewChecker before running a follow-up script.
func (r *Runtime) GlobalTypes() map[string]ValueType {
	out := make(map[string]ValueType, len(r.globals))
	for name, v := range r.globals {
		out[name] = v.val.Type
	}
	return out
}

// RuntimeError is a failure during Run/dispatch, carrying the failing
// statement's position for FILE:LINE:COL reporting alongside type errors.
type RuntimeError struct {
	Pos Pos
	Msg string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Col, e.Msg)
}

func rtErr(pos Pos, format string, args ...any) *RuntimeError {
	return &RuntimeError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Run executes every top-level statement of prog in order, flushing
// watcher notifications after each one completes (spec.md §4.7).
func (r *Runtime) Run(prog *Program) error {
	for _, s := range prog.Stmts {
		if err := r.execTopLevel(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) execTopLevel(s Stmt) error {
	r.seenThisFrame = make(map[string]bool)
	return r.exec(s)
}

func (r *Runtime) exec(s Stmt) error {
	switch st := s.(type) {
	case *DeclStmt:
		return r.execDecl(st)
	case *SetStmt:
		return r.execSet(st)
	case *CommandStmt:
		return r.execCommand(st)
	case *OnClickStmt:
		r.clickHandlers[st.ElementID] = st.Body
		return nil
	case *OnVariableStmt:
		r.varHandlers[st.VarName] = st.Body
		r.watchers[st.VarName] = true
		return nil
	case *ForStmt:
		return r.execFor(st)
	case *BindStmt:
		return r.execBind(st)
	default:
		return rtErr(Pos{}, "unknown statement %T", s)
	}
}

func (r *Runtime) execBlock(body []Stmt) error {
	for _, s := range body {
		if err := r.exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) lookup(name string) (*variable, bool) {
	if r.locals != nil {
		if v, ok := r.locals[name]; ok {
			return v, true
		}
	}
	v, ok := r.globals[name]
	return v, ok
}

func (r *Runtime) declare(name string, global bool, v *variable) {
	if global || r.locals == nil {
		r.globals[name] = v
		return
	}
	r.locals[name] = v
}

func (r *Runtime) execDecl(d *DeclStmt) error {
	v := &variable{}
	switch d.Type {
	case TypeArray:
		n, err := r.evalInt(d.ArraySize)
		if err != nil {
			return err
		}
		v.array = make([]float64, n)
		v.val = Value{Type: TypeArray}
	case TypeInt:
		v.val = intVal(0)
	case TypeReal:
		v.val = realVal(0)
	case TypeBool:
		v.val = boolVal(false)
	case TypeString:
		v.val = strVal("")
	}
	if d.Init != nil {
		val, err := r.eval(d.Init)
		if err != nil {
			return err
		}
		v.val = coerce(val, d.Type)
	}
	r.declare(d.Name, d.Global, v)
	return nil
}

// coerce promotes an int value to real when the declared type is real;
// every other combination is already validated by the type checker.
func coerce(v Value, want ValueType) Value {
	if want == TypeReal && v.Type == TypeInt {
		return realVal(float64(v.I))
	}
	return v
}

func (r *Runtime) execSet(s *SetStmt) error {
	v, ok := r.lookup(s.Name)
	if !ok {
		return rtErr(s.Pos, "variable %q is not declared", s.Name)
	}
	val, err := r.eval(s.Value)
	if err != nil {
		return err
	}
	if s.Index != nil {
		idx, err := r.evalInt(s.Index)
		if err != nil {
			return err
		}
		if idx < 0 || int(idx) >= len(v.array) {
			return rtErr(s.Pos, "array index %d out of range for %q", idx, s.Name)
		}
		v.array[idx] = val.AsFloat()
	} else {
		v.val = coerce(val, v.val.Type)
	}
	if r.watchers[s.Name] {
		r.notifyVariable(s.Name)
	}
	return nil
}

// notifyVariable dispatches s.Name's on-variable handler (if any) and
// flushes bound elements, depth-first, breaking cycles via the per-frame
// seen set (spec.md §4.7).
func (r *Runtime) notifyVariable(name string) error {
	if r.seenThisFrame[name] {
		return nil
	}
	r.seenThisFrame[name] = true

	for _, b := range r.bindings {
		if b.VarName == name {
			if err := r.applyBinding(b); err != nil {
				return err
			}
		}
	}
	if body, ok := r.varHandlers[name]; ok {
		if err := r.execBlock(body); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) execFor(f *ForStmt) error {
	start, err := r.evalInt(f.Start)
	if err != nil {
		return err
	}
	end, err := r.evalInt(f.End)
	if err != nil {
		return err
	}

	prevLocals := r.locals
	locals := make(map[string]*variable)
	if prevLocals != nil {
		for k, v := range prevLocals {
			locals[k] = v
		}
	}
	r.locals = locals

	loopVar := &variable{}
	defer func() { r.locals = prevLocals }()

	if start <= end {
		for i := start; i < end; i++ {
			loopVar.val = intVal(i)
			r.locals[f.Var] = loopVar
			if err := r.execBlock(f.Body); err != nil {
				return err
			}
		}
	} else {
		for i := start; i > end; i-- {
			loopVar.val = intVal(i)
			r.locals[f.Var] = loopVar
			if err := r.execBlock(f.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runtime) execBind(b *BindStmt) error {
	e, ok := r.elements[b.ElementID]
	if !ok {
		return rtErr(b.Pos, "%s_bind: element %q is not defined", b.Kind, b.ElementID)
	}
	bnd := &binding{Kind: b.Kind, Element: e, VarName: b.VarName}
	r.bindings = append(r.bindings, bnd)
	r.watchers[b.VarName] = true
	return r.applyBinding(bnd)
}

// DispatchClick runs elementID's click handler, if one is registered. A
// no-op (not an error) if nothing is bound, since most elements have no
// click behavior.
func (r *Runtime) DispatchClick(elementID string) error {
	body, ok := r.clickHandlers[elementID]
	if !ok {
		return nil
	}
	r.seenThisFrame = make(map[string]bool)
	return r.execBlock(body)
}

// Tick advances the animation engine to t (seconds since script start) and
// applies bound write-backs triggered by any element_moved-equivalent
// channel the animation touched.
func (r *Runtime) Tick(t float64) error {
	touched := r.Anim.Advance(t)
	for _, id := range touched {
		for _, b := range r.bindings {
			if b.Kind == "position" && b.Element.ID == id {
				r.writeBackPosition(b)
			}
		}
	}
	return nil
}

func (r *Runtime) resolveColor(pos Pos, s string) (model.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		named, ok := namedColors[s]
		if !ok {
			return model.Color{}, rtErr(pos, "invalid color %q", s)
		}
		return named, nil
	}
	return model.Color{R: c.R, G: c.G, B: c.B, A: 1}, nil
}

// namedColors supplements go-colorful's hex-only parsing with the small
// palette the DSL's option literals are expected to use (spec.md §4.7's
// `bg`/`stroke_color`/`text_color` string options).
var namedColors = map[string]model.Color{
	"black":       {0, 0, 0, 1},
	"white":       {1, 1, 1, 1},
	"red":         {0.86, 0.15, 0.15, 1},
	"green":       {0.13, 0.55, 0.13, 1},
	"blue":        {0.12, 0.35, 0.85, 1},
	"yellow":      {0.95, 0.82, 0.12, 1},
	"orange":      {0.92, 0.53, 0.1, 1},
	"purple":      {0.55, 0.25, 0.75, 1},
	"gray":        {0.5, 0.5, 0.5, 1},
	"transparent": {0, 0, 0, 0},
}
