package source

import (
	"fmt"
)

// Span is a half-open byte range inside a file.
//
// Parent is the LocalDefID of the item the span was lowered under (0 when the
// span is absolute). Ctxt points into the Hygiene table and is zero for spans
// written by the user.
type Span struct {
	File   FileID
	Start  uint32 // в байтах включительно
	End    uint32 // в байтах не включительно
	Ctxt   SyntaxContext
	Parent uint32
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	if s.Parent != 0 {
		return fmt.Sprintf("%d:%d-%d^%d", s.File, s.Start, s.End, s.Parent)
	}
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

func (s Span) ShiftLeft(n uint32) Span {
	if n > s.Start {
		return s
	}
	s.Start -= n
	s.End -= n
	return s
}

func (s Span) ShiftRight(n uint32) Span {
	s.Start += n
	s.End += n
	return s
}

// ShrinkToLo returns an empty span positioned at the start of s.
func (s Span) ShrinkToLo() Span {
	s.End = s.Start
	return s
}

// NextPoint returns the empty span right after the first byte of s, used as
// the position of a region elided after `&`.
func (s Span) NextPoint() Span {
	s.Start++
	s.End = s.Start
	return s
}

// WithParent attaches the owning item.
func (s Span) WithParent(parent uint32) Span {
	s.Parent = parent
	return s
}

// WithCtxt replaces the syntax context.
func (s Span) WithCtxt(ctxt SyntaxContext) Span {
	s.Ctxt = ctxt
	return s
}

// IsDesugared reports whether the span was produced by a compiler rewrite.
func (s Span) IsDesugared() bool {
	return s.Ctxt != RootContext
}
