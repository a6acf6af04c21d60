package source

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 15}
	got := a.Cover(b)
	if got.Start != 5 || got.End != 20 {
		t.Fatalf("Cover = %v, want 1:5-20", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if a.Cover(other) != a {
		t.Fatalf("Cover across files must return receiver")
	}
}

func TestSpanShift(t *testing.T) {
	s := Span{Start: 4, End: 9}
	if got := s.ShiftLeft(4); got.Start != 0 || got.End != 5 {
		t.Errorf("ShiftLeft(4) = %v", got)
	}
	if got := s.ShiftLeft(5); got != s {
		t.Errorf("ShiftLeft past zero must be a no-op, got %v", got)
	}
	if got := s.ShiftRight(3); got.Start != 7 || got.End != 12 {
		t.Errorf("ShiftRight(3) = %v", got)
	}
}

func TestSpanPoints(t *testing.T) {
	s := Span{File: 0, Start: 3, End: 8}
	lo := s.ShrinkToLo()
	if !lo.Empty() || lo.Start != 3 {
		t.Fatalf("ShrinkToLo = %v", lo)
	}
	next := lo.NextPoint()
	if !next.Empty() || next.Start != 4 {
		t.Fatalf("NextPoint = %v", next)
	}
}

func TestSpanParentAndCtxt(t *testing.T) {
	s := Span{Start: 1, End: 2}
	if s.IsDesugared() {
		t.Fatalf("user span reported as desugared")
	}
	p := s.WithParent(7)
	if p.Parent != 7 || p.String() != "0:1-2^7" {
		t.Fatalf("WithParent = %v", p)
	}
	if s.String() != "0:1-2" {
		t.Fatalf("String = %q", s.String())
	}
	if !s.WithCtxt(3).IsDesugared() {
		t.Fatalf("span with ctxt 3 should be desugared")
	}
}
