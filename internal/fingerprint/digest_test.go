package fingerprint

import "testing"

func TestCombineOrderMatters(t *testing.T) {
	a, b := OfString("a"), OfString("b")
	if Combine(a, b) == Combine(b, a) {
		t.Fatalf("Combine must depend on order")
	}
	if Combine(a, b) != Combine(a, b) {
		t.Fatalf("Combine must be deterministic")
	}
}

func TestHasherPrefixesStrings(t *testing.T) {
	h1 := New()
	h1.WriteString("ab")
	h1.WriteString("c")
	h2 := New()
	h2.WriteString("a")
	h2.WriteString("bc")
	if h1.Sum() == h2.Sum() {
		t.Fatalf("adjacent strings aliased")
	}
}

func TestDigestString(t *testing.T) {
	if Zero.String() != "0000000000000000000000000000000000000000000000000000000000000000" {
		t.Fatalf("Zero.String() = %s", Zero.String())
	}
	if len(OfString("x").Short()) != 16 {
		t.Fatalf("Short length")
	}
	if !Zero.IsZero() || OfString("").IsZero() {
		t.Fatalf("IsZero")
	}
}
