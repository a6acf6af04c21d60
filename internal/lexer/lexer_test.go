package lexer_test

import (
	"testing"

	"ferrule/internal/diag"
	"ferrule/internal/lexer"
	"ferrule/internal/source"
	"ferrule/internal/token"
)

func lexAll(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rs", []byte(src))
	bag := diag.NewBag(16)
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return lx.All(), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func TestLexSignature(t *testing.T) {
	toks, bag := lexAll(t, "async fn f<'a>(x: &'a u8, ...) -> impl Fn(&'_ u8) + 'a {}")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []token.Kind{
		token.KwAsync, token.KwFn, token.Ident, token.Lt, token.Lifetime, token.Gt,
		token.LParen, token.Ident, token.Colon, token.Amp, token.Lifetime, token.Ident, token.Comma,
		token.DotDotDot, token.RParen, token.Arrow, token.KwImpl, token.Ident, token.LParen,
		token.Amp, token.Lifetime, token.Ident, token.RParen, token.Plus, token.Lifetime,
		token.LBrace, token.RBrace, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v (%q), want %v", i, got[i], toks[i].Text, want[i])
		}
	}
	if toks[4].Text != "'a" || toks[20].Text != "'_" {
		t.Fatalf("lifetime texts = %q, %q", toks[4].Text, toks[20].Text)
	}
}

func TestLexNestedGenericsCloseSeparately(t *testing.T) {
	toks, _ := lexAll(t, "Vec<Vec<u8>>")
	got := kinds(toks)
	if got[len(got)-2] != token.Gt || got[len(got)-3] != token.Gt {
		t.Fatalf("`>>` was merged: %v", got)
	}
}

func TestLexCommentsBecomeTrivia(t *testing.T) {
	toks, _ := lexAll(t, "/// doc\n/* a /* nested */ b */ fn")
	if toks[0].Kind != token.KwFn {
		t.Fatalf("first token = %v", toks[0].Kind)
	}
	if !toks[0].IsDocComment() {
		t.Fatalf("doc comment not attached as trivia")
	}
}

func TestLexBadLifetime(t *testing.T) {
	toks, bag := lexAll(t, "' 'x'")
	if toks[0].Kind != token.Invalid || toks[1].Kind != token.Invalid {
		t.Fatalf("kinds = %v", kinds(toks))
	}
	if bag.Count(diag.LexBadLifetime) != 2 {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
}

func TestLexNumbersAndFieldAccess(t *testing.T) {
	toks, _ := lexAll(t, "1u8 2.5 x.0 0..3")
	got := kinds(toks)
	want := []token.Kind{
		token.IntLit, token.FloatLit, token.Ident, token.Dot, token.IntLit,
		token.IntLit, token.DotDot, token.IntLit, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
	if toks[0].Text != "1u8" {
		t.Fatalf("suffix lost: %q", toks[0].Text)
	}
}

func TestLexCommentKinds(t *testing.T) {
	cases := []struct {
		src  string
		want token.TriviaKind
	}{
		{"// plain\nfn", token.TriviaLineComment},
		{"/// doc\nfn", token.TriviaDocLine},
		{"//// rule\nfn", token.TriviaLineComment},
		{"//! inner\nfn", token.TriviaLineComment},
		{"/* block */fn", token.TriviaBlockComment},
		{"/** doc */fn", token.TriviaDocBlock},
		{"/**/fn", token.TriviaBlockComment},
		{"/*** rule */fn", token.TriviaBlockComment},
	}
	for _, c := range cases {
		toks, bag := lexAll(t, c.src)
		if bag.Len() != 0 || toks[0].Kind != token.KwFn {
			t.Errorf("%q: first token %v, %d diagnostics", c.src, toks[0].Kind, bag.Len())
			continue
		}
		if got := toks[0].Leading[0].Kind; got != c.want {
			t.Errorf("%q: trivia kind = %d, want %d", c.src, got, c.want)
		}
	}
}

func TestLexUnterminatedBlockComment(t *testing.T) {
	toks, bag := lexAll(t, "fn /* a /* b */")
	if toks[1].Kind != token.EOF {
		t.Fatalf("kinds = %v", kinds(toks))
	}
	if bag.Count(diag.LexUnterminatedBlockComment) != 1 {
		t.Fatalf("missing unterminated comment diagnostic")
	}
}

func TestLexStringsSpanLines(t *testing.T) {
	toks, bag := lexAll(t, "\"a\nb\\\"\" \"open")
	if toks[0].Kind != token.StringLit || toks[0].Text != "\"a\nb\\\"\"" {
		t.Fatalf("first = %v %q", toks[0].Kind, toks[0].Text)
	}
	if toks[1].Kind != token.Invalid || bag.Count(diag.LexUnterminatedString) != 1 {
		t.Fatalf("unterminated literal not reported: %v", kinds(toks))
	}
}

func TestLexIdentifiersAndUnderscore(t *testing.T) {
	toks, bag := lexAll(t, "_ _x héllo '_ ¤")
	want := []token.Kind{token.Underscore, token.Ident, token.Ident, token.Lifetime, token.Invalid, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
	if toks[2].Text != "héllo" || toks[4].Text != "¤" {
		t.Fatalf("texts = %q %q", toks[2].Text, toks[4].Text)
	}
	if bag.Count(diag.LexUnknownChar) != 1 {
		t.Fatalf("unknown char reported %d times", bag.Count(diag.LexUnknownChar))
	}
}

func TestLexRadixNeedsDigits(t *testing.T) {
	toks, bag := lexAll(t, "0x1F 0b 1.e3")
	if toks[0].Kind != token.IntLit || toks[0].Text != "0x1F" {
		t.Fatalf("hex = %v %q", toks[0].Kind, toks[0].Text)
	}
	if toks[1].Kind != token.Invalid || bag.Count(diag.LexBadNumber) != 1 {
		t.Fatalf("bare radix prefix accepted: %v", kinds(toks))
	}
	// `1.e3` is a field access on an integer
	if toks[2].Kind != token.IntLit || toks[3].Kind != token.Dot || toks[4].Kind != token.Ident {
		t.Fatalf("kinds = %v", kinds(toks))
	}
}
