package dsl

import (
	"fmt"
)

// ParseError is a syntax error with source position, formatted per
// spec.md §7 as FILE:LINE:COL: message by Error().
type ParseError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	file := e.File
	if file == "" {
		file = "<dsl>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", file, e.Line, e.Col, e.Msg)
}

// Parser builds a Program from DSL source by recursive descent.
type Parser struct {
	lex  *Lexer
	file string
	cur  Token
	err  error
}

// Parse lexes and parses src, returning the Program or the first syntax
// error encountered. file is used only to decorate error messages.
func Parse(file, src string) (*Program, error) {
	p := &Parser{lex: NewLexer(src), file: file}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) fail(format string, args ...any) error {
	return &ParseError{File: p.file, Line: p.cur.Line, Col: p.cur.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(k TokenKind, what string) (Token, error) {
	if p.cur.Kind != k {
		return Token{}, p.fail("expected %s, got %q", what, p.cur.Text)
	}
	t := p.cur
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return t, nil
}

func (p *Parser) pos() Pos { return Pos{Line: p.cur.Line, Col: p.cur.Col} }

func (p *Parser) parseProgram() (*Program, error) {
	prog := &Program{}
	for p.cur.Kind != TokEOF {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, s)
	}
	return prog, nil
}

// parseBlockUntilEnd parses statements until the `end` keyword, which it
// consumes.
func (p *Parser) parseBlockUntilEnd() ([]Stmt, error) {
	var stmts []Stmt
	for {
		if p.cur.Kind == TokIdent && p.cur.Text == "end" {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return stmts, nil
		}
		if p.cur.Kind == TokEOF {
			return nil, p.fail("unexpected end of input, expected 'end'")
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
}

func (p *Parser) parseStmt() (Stmt, error) {
	if p.cur.Kind != TokIdent {
		return nil, p.fail("expected a statement, got %q", p.cur.Text)
	}

	switch p.cur.Text {
	case "global", "int", "real", "bool", "string":
		return p.parseDecl()
	case "set":
		return p.parseSet()
	case "on":
		return p.parseOn()
	case "for":
		return p.parseFor()
	case "connect":
		return p.parseConnectOrCommand()
	case "text_bind", "position_bind":
		return p.parseBind()
	default:
		return p.parseCommand()
	}
}

func (p *Parser) parseDecl() (Stmt, error) {
	pos := p.pos()
	global := false
	if p.cur.Text == "global" {
		global = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	var typ ValueType
	switch p.cur.Text {
	case "int":
		typ = TypeInt
	case "real":
		typ = TypeReal
	case "bool":
		typ = TypeBool
	case "string":
		typ = TypeString
	default:
		return nil, p.fail("expected a type keyword, got %q", p.cur.Text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	name, err := p.expect(TokIdent, "variable name")
	if err != nil {
		return nil, err
	}

	decl := &DeclStmt{Pos: pos, Type: typ, Name: name.Text, Global: global}

	if p.cur.Kind == TokLBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}
		size, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBracket, "']'"); err != nil {
			return nil, err
		}
		decl.Type = TypeArray
		decl.ArraySize = size
		return decl, nil
	}

	if p.atExprStart() {
		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}
	return decl, nil
}

// atExprStart reports whether the current token can begin an expression,
// used to decide whether a declaration has a trailing initializer (the
// grammar has no other terminator between statements, since whitespace —
// not punctuation — separates tokens).
func (p *Parser) atExprStart() bool {
	switch p.cur.Kind {
	case TokInt, TokReal, TokString, TokLParen, TokMinus:
		return true
	case TokIdent:
		return p.cur.Text == "true" || p.cur.Text == "false" || !keywords[p.cur.Text]
	default:
		return false
	}
}

func (p *Parser) parseSet() (Stmt, error) {
	pos := p.pos()
	if err := p.advance(); err != nil { // consume 'set'
		return nil, err
	}
	name, err := p.expect(TokIdent, "variable name")
	if err != nil {
		return nil, err
	}
	s := &SetStmt{Pos: pos, Name: name.Text}
	if p.cur.Kind == TokLBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBracket, "']'"); err != nil {
			return nil, err
		}
		s.Index = idx
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	s.Value = val
	return s, nil
}

func (p *Parser) parseOn() (Stmt, error) {
	pos := p.pos()
	if err := p.advance(); err != nil { // 'on'
		return nil, err
	}
	switch p.cur.Text {
	case "click":
		if err := p.advance(); err != nil {
			return nil, err
		}
		id, err := p.expect(TokIdent, "element id")
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlockUntilEnd()
		if err != nil {
			return nil, err
		}
		return &OnClickStmt{Pos: pos, ElementID: id.Text, Body: body}, nil
	case "variable":
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.expect(TokIdent, "variable name")
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlockUntilEnd()
		if err != nil {
			return nil, err
		}
		return &OnVariableStmt{Pos: pos, VarName: name.Text, Body: body}, nil
	default:
		return nil, p.fail("expected 'click' or 'variable' after 'on', got %q", p.cur.Text)
	}
}

func (p *Parser) parseFor() (Stmt, error) {
	pos := p.pos()
	if err := p.advance(); err != nil { // 'for'
		return nil, err
	}
	v, err := p.expect(TokIdent, "loop variable")
	if err != nil {
		return nil, err
	}
	start, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntilEnd()
	if err != nil {
		return nil, err
	}
	return &ForStmt{Pos: pos, Var: v.Text, Start: start, End: end, Body: body}, nil
}

func (p *Parser) parseBind() (Stmt, error) {
	pos := p.pos()
	kind := "text"
	if p.cur.Text == "position_bind" {
		kind = "position"
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	id, err := p.expect(TokIdent, "element id")
	if err != nil {
		return nil, err
	}
	v, err := p.expect(TokIdent, "variable name")
	if err != nil {
		return nil, err
	}
	return &BindStmt{Pos: pos, Kind: kind, ElementID: id.Text, VarName: v.Text}, nil
}

func (p *Parser) parseConnectOrCommand() (Stmt, error) {
	return p.parseCommand()
}

// parseCommand parses any of the create/mutate/animate/misc commands as a
// name followed by positional arguments and `key:value` options. Since the
// grammar has no statement terminator (whitespace separates tokens, full
// stop — spec.md §4.7), the number of positional arguments to consume must
// come from the command's schema in typecheck.go; without that bound, a
// second command's name on the next line would itself parse as a trailing
// identifier argument of the first. A name absent from the schema table
// consumes zero positional args, leaving type-checking to report "unknown
// command" against the now-correctly-separated next statement.
func (p *Parser) parseCommand() (Stmt, error) {
	pos := p.pos()
	name := p.cur.Text
	if err := p.advance(); err != nil {
		return nil, err
	}

	maxArgs := 0
	if schema, ok := commandSchemas[name]; ok {
		maxArgs = len(schema.required) + len(schema.optional)
	}

	cmd := &CommandStmt{Pos: pos, Name: name, Options: make(map[string]Expr)}
	for len(cmd.Args) < maxArgs && p.atExprStart() {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cmd.Args = append(cmd.Args, arg)
	}
	for p.atOptionStart() {
		key := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cmd.Options[key] = val
	}
	return cmd, nil
}

// atOptionStart reports whether the parser is looking at `ident :`,
// which only option syntax uses (plain identifiers used as expression
// arguments are never followed directly by a colon).
func (p *Parser) atOptionStart() bool {
	if p.cur.Kind != TokIdent || keywords[p.cur.Text] {
		return false
	}
	save := *p.lex
	savedCur := p.cur
	defer func() { *p.lex = save; p.cur = savedCur }()

	next, err := p.lex.Next()
	if err != nil {
		return false
	}
	return next.Kind == TokColon
}

// --- Expressions -----------------------------------------------------

func (p *Parser) parseExpr() (Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokOr {
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: pos, Op: OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokAnd {
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: pos, Op: OpAnd, Left: left, Right: right}
	}
	return left, nil
}

var comparisonOps = map[TokenKind]BinOp{
	TokLt: OpLt, TokLe: OpLe, TokGt: OpGt, TokGe: OpGe, TokEq: OpEq, TokNe: OpNe,
}

func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisonOps[p.cur.Kind]
		if !ok {
			return left, nil
		}
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokPlus || p.cur.Kind == TokMinus {
		op := OpAdd
		if p.cur.Kind == TokMinus {
			op = OpSub
		}
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokStar || p.cur.Kind == TokSlash || p.cur.Kind == TokPercent {
		var op BinOp
		switch p.cur.Kind {
		case TokStar:
			op = OpMul
		case TokSlash:
			op = OpDiv
		case TokPercent:
			op = OpMod
		}
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.cur.Kind == TokNot {
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Pos: pos, Op: OpNot, X: x}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	pos := p.pos()
	switch p.cur.Kind {
	case TokInt:
		v, err := parseIntLiteral(p.cur.Text)
		if err != nil {
			return nil, p.fail("%v", err)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &IntLit{Pos: pos, Val: v}, nil
	case TokReal:
		v, err := parseRealLiteral(p.cur.Text)
		if err != nil {
			return nil, p.fail("%v", err)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &RealLit{Pos: pos, Val: v}, nil
	case TokString:
		return p.parseStringLit(pos)
	case TokLParen:
		return p.parsePointOrGroup(pos)
	case TokLBrace:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBrace, "'}'"); err != nil {
			return nil, err
		}
		return e, nil
	case TokIdent:
		return p.parseIdentOrIndex(pos)
	default:
		return nil, p.fail("expected an expression, got %q", p.cur.Text)
	}
}

func (p *Parser) parseIdentOrIndex(pos Pos) (Expr, error) {
	switch p.cur.Text {
	case "true":
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &BoolLit{Pos: pos, Val: true}, nil
	case "false":
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &BoolLit{Pos: pos, Val: false}, nil
	}
	name := p.cur.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Kind == TokLBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBracket, "']'"); err != nil {
			return nil, err
		}
		return &IndexExpr{Pos: pos, Array: name, Index: idx}, nil
	}
	return &Ident{Pos: pos, Name: name}, nil
}

// parsePointOrGroup parses either a `(x,y)` point literal or a
// parenthesized sub-expression `(expr)`.
func (p *Parser) parsePointOrGroup(pos Pos) (Expr, error) {
	if err := p.advance(); err != nil { // '('
		return nil, err
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind == TokComma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		second, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, "')'"); err != nil {
			return nil, err
		}
		return &PointLit{Pos: pos, X: first, Y: second}, nil
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	return first, nil
}

func (p *Parser) parseStringLit(pos Pos) (Expr, error) {
	tok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	lit := &StringLit{Pos: pos, Parts: tok.Parts, ExprParts: make([]Expr, len(tok.Parts))}
	for i, part := range tok.Parts {
		if part.ExprSrc == "" {
			continue
		}
		expr, err := parseExprString(p.file, part.ExprSrc)
		if err != nil {
			return nil, err
		}
		lit.ExprParts[i] = expr
	}
	return lit, nil
}

// parseExprString parses src as a single standalone expression, used for
// `${expr}` interpolation spans extracted by the lexer.
func parseExprString(file, src string) (Expr, error) {
	sub := &Parser{lex: NewLexer(src), file: file}
	if err := sub.advance(); err != nil {
		return nil, err
	}
	expr, err := sub.parseExpr()
	if err != nil {
		return nil, err
	}
	if sub.cur.Kind != TokEOF {
		return nil, sub.fail("unexpected trailing token %q in interpolation", sub.cur.Text)
	}
	return expr, nil
}
