package hir

import (
	"ferrule/internal/defs"
	"ferrule/internal/source"
)

type Generics struct {
	Params         []*GenericParam
	Predicates     []*WherePredicate
	HasWhereClause bool
	WhereSpan      source.Span
	Span           source.Span
}

// EmptyGenerics is the parameter list of an owner that declared none.
func EmptyGenerics(span source.Span) *Generics {
	return &Generics{Span: span, WhereSpan: span}
}

// Lifetimes returns the lifetime parameters in order.
func (g *Generics) Lifetimes() []*GenericParam {
	var out []*GenericParam
	for _, p := range g.Params {
		if p.Kind == ParamLifetimeKind {
			out = append(out, p)
		}
	}
	return out
}

type GenericParamKind uint8

const (
	ParamLifetimeKind GenericParamKind = iota
	ParamTypeKind
	ParamConstKind
)

func (k GenericParamKind) String() string {
	switch k {
	case ParamLifetimeKind:
		return "lifetime"
	case ParamTypeKind:
		return "type"
	default:
		return "const"
	}
}

// LifetimeParamKind says where a lifetime parameter came from.
type LifetimeParamKind uint8

const (
	LifetimeParamExplicit LifetimeParamKind = iota
	// introduced by use under in-band lifetimes
	LifetimeParamInBand
	// synthesized for an anonymous region
	LifetimeParamElided
	// the declaration was invalid (`'_` as a parameter name)
	LifetimeParamError
)

func (k LifetimeParamKind) String() string {
	switch k {
	case LifetimeParamInBand:
		return "in-band"
	case LifetimeParamElided:
		return "elided"
	case LifetimeParamError:
		return "error"
	default:
		return "explicit"
	}
}

type GenericParam struct {
	HirID HirID
	DefID defs.LocalDefID
	Name  ParamName
	Span  source.Span
	Kind  GenericParamKind

	Bounds []*GenericBound

	LifetimeKind LifetimeParamKind
	// type parameters
	Default   *Ty
	Synthetic bool // argument-position `impl Trait`
	// const parameters
	ConstTy      *Ty
	ConstDefault *AnonConst
}

type WherePredicateKind uint8

const (
	WhereBound WherePredicateKind = iota
	WhereRegion
)

type WherePredicate struct {
	Kind               WherePredicateKind
	Span               source.Span
	BoundGenericParams []*GenericParam
	BoundedTy          *Ty
	Lifetime           *Lifetime
	Bounds             []*GenericBound
}
