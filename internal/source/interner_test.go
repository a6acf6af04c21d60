package source

import "testing"

func TestInternerDedup(t *testing.T) {
	in := NewInterner()
	a := in.Intern("'a")
	b := in.Intern("'b")
	if a == b {
		t.Fatalf("distinct strings got the same id %d", a)
	}
	if again := in.Intern("'a"); again != a {
		t.Fatalf("Intern not idempotent: %d vs %d", again, a)
	}
	if s, ok := in.Lookup(b); !ok || s != "'b" {
		t.Fatalf("Lookup(%d) = %q, %v", b, s, ok)
	}
	if in.Len() != 3 {
		t.Fatalf("Len = %d, want 3", in.Len())
	}
}

func TestInternerNormalizesNFC(t *testing.T) {
	in := NewInterner()
	composed := in.Intern("caf\u00e9")
	decomposed := in.Intern("café")
	if composed != decomposed {
		t.Fatalf("NFC forms interned separately: %d vs %d", composed, decomposed)
	}
}

func TestInternerLookupInvalid(t *testing.T) {
	in := NewInterner()
	if _, ok := in.Lookup(StringID(42)); ok {
		t.Fatalf("Lookup of unknown id succeeded")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("MustLookup of unknown id did not panic")
		}
	}()
	in.MustLookup(StringID(42))
}
