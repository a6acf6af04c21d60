package ast

import "ferrule/internal/source"

type Generics struct {
	Params []*GenericParam
	Where  WhereClause
	Span   source.Span
}

type GenericParamKind uint8

const (
	ParamLifetime GenericParamKind = iota
	ParamType
	ParamConst
)

func (k GenericParamKind) String() string {
	switch k {
	case ParamLifetime:
		return "lifetime"
	case ParamType:
		return "type"
	default:
		return "const"
	}
}

// GenericParam is `'a: 'b`, `T: Bound = Default` or `const N: usize = 3`.
type GenericParam struct {
	ID     NodeID
	Ident  Ident
	Attrs  []Attr
	Bounds []*GenericBound
	Kind   GenericParamKind
	// ParamType: optional default. ParamConst: the declared type.
	Ty           *Ty
	ConstDefault *AnonConst
	Span         source.Span
}

type WhereClause struct {
	Predicates []*WherePredicate
	Span       source.Span
}

type WherePredicateKind uint8

const (
	WhereBound WherePredicateKind = iota
	WhereRegion
)

// WherePredicate is `for<'a> T: Bounds` or `'a: 'b + 'c`.
type WherePredicate struct {
	ID                 NodeID
	Kind               WherePredicateKind
	BoundGenericParams []*GenericParam
	BoundedTy          *Ty
	Lifetime           Lifetime
	Bounds             []*GenericBound
	Span               source.Span
}

type GenericBoundKind uint8

const (
	BoundTrait GenericBoundKind = iota
	BoundOutlives
)

type TraitBoundModifier uint8

const (
	ModifierNone  TraitBoundModifier = iota
	ModifierMaybe                    // ?Trait
)

type GenericBound struct {
	Kind     GenericBoundKind
	Trait    PolyTraitRef
	Modifier TraitBoundModifier
	Lifetime Lifetime
	Span     source.Span
}

// PolyTraitRef is `for<'a> Trait<'a>`. Lifetimes it declares are bound by
// TraitRef.RefID.
type PolyTraitRef struct {
	BoundGenericParams []*GenericParam
	TraitRef           TraitRef
	Span               source.Span
}

type TraitRef struct {
	Path  *Path
	RefID NodeID
}

type Lifetime struct {
	ID    NodeID
	Ident Ident
}

// AnonConst is an expression in a const context: array lengths, const
// generic arguments and defaults.
type AnonConst struct {
	ID    NodeID
	Value *Expr
}
