package dsl

import (
	"fmt"
	"strings"
)

// Lexer tokenizes DSL source. Comments start with `#` and run to end of
// line; whitespace separates tokens (spec.md §4.7's lexical rules).
type Lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

// NewLexer returns a Lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) rune {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		r := l.peek()
		if r == '#' {
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			l.advance()
			continue
		}
		break
	}
}

// Next returns the next token. At end of input it returns a TokEOF token
// forever.
func (l *Lexer) Next() (Token, error) {
	l.skipSpaceAndComments()
	line, col := l.line, l.col
	if l.pos >= len(l.src) {
		return Token{Kind: TokEOF, Line: line, Col: col}, nil
	}

	r := l.peek()
	switch {
	case r == '"':
		return l.lexString(line, col)
	case r == '(':
		l.advance()
		return Token{Kind: TokLParen, Text: "(", Line: line, Col: col}, nil
	case r == ')':
		l.advance()
		return Token{Kind: TokRParen, Text: ")", Line: line, Col: col}, nil
	case r == '{':
		l.advance()
		return Token{Kind: TokLBrace, Text: "{", Line: line, Col: col}, nil
	case r == '}':
		l.advance()
		return Token{Kind: TokRBrace, Text: "}", Line: line, Col: col}, nil
	case r == '[':
		l.advance()
		return Token{Kind: TokLBracket, Text: "[", Line: line, Col: col}, nil
	case r == ']':
		l.advance()
		return Token{Kind: TokRBracket, Text: "]", Line: line, Col: col}, nil
	case r == ',':
		l.advance()
		return Token{Kind: TokComma, Text: ",", Line: line, Col: col}, nil
	case r == ':':
		l.advance()
		return Token{Kind: TokColon, Text: ":", Line: line, Col: col}, nil
	case r == '+':
		l.advance()
		return Token{Kind: TokPlus, Text: "+", Line: line, Col: col}, nil
	case r == '-':
		if isDigit(l.peekAt(1)) && l.canStartNumberHere() {
			return l.lexNumber(line, col)
		}
		l.advance()
		return Token{Kind: TokMinus, Text: "-", Line: line, Col: col}, nil
	case r == '*':
		l.advance()
		return Token{Kind: TokStar, Text: "*", Line: line, Col: col}, nil
	case r == '/':
		l.advance()
		return Token{Kind: TokSlash, Text: "/", Line: line, Col: col}, nil
	case r == '%':
		l.advance()
		return Token{Kind: TokPercent, Text: "%", Line: line, Col: col}, nil
	case r == '<':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: TokLe, Text: "<=", Line: line, Col: col}, nil
		}
		return Token{Kind: TokLt, Text: "<", Line: line, Col: col}, nil
	case r == '>':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: TokGe, Text: ">=", Line: line, Col: col}, nil
		}
		return Token{Kind: TokGt, Text: ">", Line: line, Col: col}, nil
	case r == '=':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: TokEq, Text: "==", Line: line, Col: col}, nil
		}
		return Token{Kind: TokAssign, Text: "=", Line: line, Col: col}, nil
	case r == '!':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: TokNe, Text: "!=", Line: line, Col: col}, nil
		}
		return Token{Kind: TokNot, Text: "!", Line: line, Col: col}, nil
	case r == '&':
		l.advance()
		if l.peek() == '&' {
			l.advance()
		}
		return Token{Kind: TokAnd, Text: "&&", Line: line, Col: col}, nil
	case r == '|':
		l.advance()
		if l.peek() == '|' {
			l.advance()
		}
		return Token{Kind: TokOr, Text: "||", Line: line, Col: col}, nil
	case isDigit(r):
		return l.lexNumber(line, col)
	case isIdentStart(r):
		return l.lexIdent(line, col)
	default:
		return Token{}, fmt.Errorf("LINE:%d:%d: unexpected character %q", line, col, r)
	}
}

// canStartNumberHere decides whether a '-' directly followed by a digit
// starts a negative-number literal rather than a binary minus. It always
// returns true, so `-5` is lexed as one literal token wherever it appears:
// `a -5` is two operands, and a binary minus needs whitespace (or a
// non-digit) after it, as in `a - 5`.
func (l *Lexer) canStartNumberHere() bool { return true }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func (l *Lexer) lexNumber(line, col int) (Token, error) {
	var b strings.Builder
	if l.peek() == '-' {
		b.WriteRune(l.advance())
	}
	for isDigit(l.peek()) {
		b.WriteRune(l.advance())
	}
	isReal := false
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		isReal = true
		b.WriteRune(l.advance())
		for isDigit(l.peek()) {
			b.WriteRune(l.advance())
		}
	}
	kind := TokInt
	if isReal {
		kind = TokReal
	}
	return Token{Kind: kind, Text: b.String(), Line: line, Col: col}, nil
}

func (l *Lexer) lexIdent(line, col int) (Token, error) {
	var b strings.Builder
	for isIdentCont(l.peek()) {
		b.WriteRune(l.advance())
	}
	return Token{Kind: TokIdent, Text: b.String(), Line: line, Col: col}, nil
}

// lexString decodes a double-quoted string literal with \n \t \" escapes
// and ${expr} interpolation spans, recorded as StringPart entries.
func (l *Lexer) lexString(line, col int) (Token, error) {
	l.advance() // opening quote
	var parts []StringPart
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, StringPart{Literal: lit.String()})
			lit.Reset()
		}
	}

	for {
		if l.pos >= len(l.src) {
			return Token{}, fmt.Errorf("LINE:%d:%d: unterminated string literal", line, col)
		}
		r := l.peek()
		if r == '"' {
			l.advance()
			break
		}
		if r == '\\' {
			l.advance()
			esc := l.advance()
			switch esc {
			case 'n':
				lit.WriteRune('\n')
			case 't':
				lit.WriteRune('\t')
			case '"':
				lit.WriteRune('"')
			case '\\':
				lit.WriteRune('\\')
			default:
				lit.WriteRune(esc)
			}
			continue
		}
		if r == '$' && l.peekAt(1) == '{' {
			flush()
			l.advance() // $
			l.advance() // {
			depth := 1
			var expr strings.Builder
			for depth > 0 {
				if l.pos >= len(l.src) {
					return Token{}, fmt.Errorf("LINE:%d:%d: unterminated interpolation", line, col)
				}
				c := l.advance()
				if c == '{' {
					depth++
				} else if c == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				expr.WriteRune(c)
			}
			parts = append(parts, StringPart{ExprSrc: expr.String()})
			continue
		}
		lit.WriteRune(l.advance())
	}
	flush()

	// Text carries the concatenation of literal parts for the simple
	// (non-interpolated) case, so callers that don't care about
	// interpolation can just use Text.
	var plain strings.Builder
	for _, p := range parts {
		plain.WriteString(p.Literal)
	}
	return Token{Kind: TokString, Text: plain.String(), Parts: parts, Line: line, Col: col}, nil
}
