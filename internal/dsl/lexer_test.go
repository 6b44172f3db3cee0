package dsl

import "testing"

func tokenize(t *testing.T, src string) []Token {
	t.Helper()
	lex := NewLexer(src)
	var toks []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			t.Fatalf("lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			return toks
		}
	}
}

func TestLexer_NegativeLiteralImmediatelyAfterIdentifier(t *testing.T) {
	toks := tokenize(t, "set x -5")
	kinds := []TokenKind{TokIdent, TokIdent, TokInt, TokEOF}
	if len(toks) != len(kinds) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(kinds))
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got kind %v, want %v", i, toks[i].Kind, k)
		}
	}
	if toks[2].Text != "-5" {
		t.Fatalf("expected literal text -5, got %q", toks[2].Text)
	}
}

func TestLexer_BinaryMinusBetweenOperands(t *testing.T) {
	toks := tokenize(t, "set x a - 5")
	if toks[2].Kind != TokIdent || toks[2].Text != "a" {
		t.Fatalf("expected ident 'a', got %+v", toks[2])
	}
	if toks[3].Kind != TokMinus {
		t.Fatalf("expected minus operator, got %+v", toks[3])
	}
	if toks[4].Kind != TokInt || toks[4].Text != "5" {
		t.Fatalf("expected int literal 5, got %+v", toks[4])
	}
}

func TestLexer_CommentsAreSkipped(t *testing.T) {
	toks := tokenize(t, "int x 5 # trailing comment\nint y 6")
	var idents []string
	for _, tok := range toks {
		if tok.Kind == TokIdent {
			idents = append(idents, tok.Text)
		}
	}
	want := []string{"int", "x", "int", "y"}
	if len(idents) != len(want) {
		t.Fatalf("got idents %v, want %v", idents, want)
	}
	for i := range want {
		if idents[i] != want[i] {
			t.Fatalf("got idents %v, want %v", idents, want)
		}
	}
}

func TestLexer_StringEscapes(t *testing.T) {
	toks := tokenize(t, `"a\nb\tc\"d"`)
	if toks[0].Kind != TokString {
		t.Fatalf("expected string token, got %+v", toks[0])
	}
	want := "a\nb\tc\"d"
	if toks[0].Text != want {
		t.Fatalf("got %q, want %q", toks[0].Text, want)
	}
}

func TestLexer_StringInterpolationParts(t *testing.T) {
	toks := tokenize(t, `"count: ${n} items"`)
	tok := toks[0]
	if len(tok.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d: %+v", len(tok.Parts), tok.Parts)
	}
	if tok.Parts[0].Literal != "count: " {
		t.Fatalf("part 0 = %+v", tok.Parts[0])
	}
	if tok.Parts[1].ExprSrc != "n" {
		t.Fatalf("part 1 = %+v", tok.Parts[1])
	}
	if tok.Parts[2].Literal != " items" {
		t.Fatalf("part 2 = %+v", tok.Parts[2])
	}
}

func TestLexer_RealLiteral(t *testing.T) {
	toks := tokenize(t, "3.14")
	if toks[0].Kind != TokReal || toks[0].Text != "3.14" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexer_PointPunctuation(t *testing.T) {
	toks := tokenize(t, "(1,2)")
	kinds := []TokenKind{TokLParen, TokInt, TokComma, TokInt, TokRParen, TokEOF}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLexer_UnterminatedStringErrors(t *testing.T) {
	lex := NewLexer(`"unterminated`)
	if _, err := lex.Next(); err == nil {
		t.Fatalf("expected an error for an unterminated string")
	}
}
