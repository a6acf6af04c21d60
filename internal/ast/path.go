package ast

import "ferrule/internal/source"

type Path struct {
	Segments []*PathSegment
	Global   bool // ::a::b
	Span     source.Span
}

type PathSegment struct {
	ID    NodeID
	Ident Ident
	Args  *GenericArgs
}

// Last returns the final segment.
func (p *Path) Last() *PathSegment {
	if len(p.Segments) == 0 {
		return nil
	}
	return p.Segments[len(p.Segments)-1]
}

// IsIdent reports whether the path is a single plain segment named name.
func (p *Path) IsIdent(name string) bool {
	return !p.Global && len(p.Segments) == 1 && p.Segments[0].Args == nil && p.Segments[0].Ident.Name == name
}

type GenericArgsKind uint8

const (
	ArgsAngleBracketed GenericArgsKind = iota
	ArgsParenthesized                  // Fn(A, B) -> C
)

type GenericArgs struct {
	Kind        GenericArgsKind
	Args        []*GenericArg
	Constraints []*AssocConstraint
	Inputs      []*Ty
	Output      FnRetTy
	Span        source.Span
}

type GenericArgKind uint8

const (
	ArgLifetime GenericArgKind = iota
	ArgType
	ArgConst
)

type GenericArg struct {
	Kind     GenericArgKind
	Lifetime Lifetime
	Ty       *Ty
	Const    *AnonConst
}

type AssocConstraintKind uint8

const (
	ConstraintEquality AssocConstraintKind = iota // Item = Ty
	ConstraintBound                               // Item: Bounds
)

// AssocConstraint is an associated item binding inside angle brackets.
type AssocConstraint struct {
	ID      NodeID
	Ident   Ident
	GenArgs *GenericArgs
	Kind    AssocConstraintKind
	Ty      *Ty
	Bounds  []*GenericBound
	Span    source.Span
}
