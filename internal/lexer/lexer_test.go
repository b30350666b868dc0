package lexer

import (
	"testing"

	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeDeclaration(t *testing.T) {
	sink := diag.NewSink()
	toks := New("pub fn add(this, other: i32): i32 { this + other }", 0, sink).Tokenize()
	want := []token.Kind{
		token.KwPub, token.KwFn, token.Ident, token.LParen, token.KwThis, token.Comma,
		token.Ident, token.Colon, token.Ident, token.RParen, token.Colon, token.Ident,
		token.LBrace, token.KwThis, token.Plus, token.Ident, token.RBrace, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
}

func TestTokenizeOperators(t *testing.T) {
	sink := diag.NewSink()
	toks := New("a ?? b ??= c <<= d >>= e == f != g", 0, sink).Tokenize()
	got := kinds(toks)
	want := []token.Kind{
		token.Ident, token.QuestionQuestion, token.Ident, token.QuestionQuestionEqual,
		token.Ident, token.ShlEqual, token.Ident, token.ShrEqual, token.Ident,
		token.EqualEqual, token.Ident, token.BangEqual, token.Ident, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUnterminatedStringReported(t *testing.T) {
	sink := diag.NewSink()
	New(`"unterminated`, 0, sink).Tokenize()
	if !sink.HasErrors() {
		t.Fatal("expected an unterminated-string diagnostic")
	}
}

func TestLeadingZeroDecimalWarns(t *testing.T) {
	sink := diag.NewSink()
	toks := New("042", 0, sink).Tokenize()
	if toks[0].Kind != token.Int || toks[0].Text != "042" {
		t.Fatalf("unexpected token: %+v", toks[0])
	}
	if len(sink.Warnings()) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(sink.Warnings()))
	}
}

func TestStringEscapes(t *testing.T) {
	sink := diag.NewSink()
	toks := New(`"a\nb\tc"`, 0, sink).Tokenize()
	if toks[0].Text != "a\nb\tc" {
		t.Fatalf("got %q", toks[0].Text)
	}
}
