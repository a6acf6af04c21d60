package token

import "testing"

func TestLookupKeyword(t *testing.T) {
	cases := []struct {
		text string
		want Kind
		ok   bool
	}{
		{"fn", KwFn, true},
		{"Self", KwSelfType, true},
		{"self", KwSelfValue, true},
		{"dyn", KwDyn, true},
		{"Fn", Invalid, false},
		{"FN", Invalid, false},
	}
	for _, tc := range cases {
		got, ok := LookupKeyword(tc.text)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("LookupKeyword(%q) = %v, %v", tc.text, got, ok)
		}
	}
}

func TestKindString(t *testing.T) {
	if KwImpl.String() != "`impl`" {
		t.Fatalf("KwImpl.String() = %s", KwImpl.String())
	}
	if Lifetime.String() != "lifetime" || ColonColon.String() != "`::`" {
		t.Fatalf("unexpected kind names")
	}
	tok := Token{Kind: KwAsync}
	if !tok.IsKeyword() || tok.IsLiteral() {
		t.Fatalf("KwAsync classification")
	}
}
