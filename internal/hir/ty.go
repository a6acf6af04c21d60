package hir

import (
	"strconv"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/resolve"
	"ferrule/internal/source"
)

type Ident struct {
	Name string
	Span source.Span
}

type TyKind uint8

const (
	TyInfer TyKind = iota
	TySlice
	TyArray
	TyPtr
	TyRef
	TyBareFn
	TyNever
	TyTup
	TyPath
	// TyOpaqueDef references a synthesized opaque item with call-site arguments.
	TyOpaqueDef
	TyTraitObject
	// TyErr stands in for a type that failed to lower; a diagnostic was emitted.
	TyErr
)

var tyKindNames = [...]string{
	TyInfer:       "Infer",
	TySlice:       "Slice",
	TyArray:       "Array",
	TyPtr:         "Ptr",
	TyRef:         "Ref",
	TyBareFn:      "BareFn",
	TyNever:       "Never",
	TyTup:         "Tup",
	TyPath:        "Path",
	TyOpaqueDef:   "OpaqueDef",
	TyTraitObject: "TraitObject",
	TyErr:         "Err",
}

func (k TyKind) String() string {
	if int(k) < len(tyKindNames) {
		return tyKindNames[k]
	}
	return "Ty?"
}

type Ty struct {
	HirID HirID
	Kind  TyKind
	Span  source.Span
	Data  TyData // nil for Infer, Never and Err
}

type TyData interface{ tyData() }

type SliceTy struct{ Elem *Ty }

type ArrayTy struct {
	Elem *Ty
	Len  *AnonConst
}

type PtrTy struct {
	Mut  bool
	Elem *Ty
}

type RefTy struct {
	Lifetime *Lifetime
	Mut      bool
	Elem     *Ty
}

type BareFnTy struct {
	GenericParams []*GenericParam
	Unsafe        bool
	Extern        bool
	Decl          *FnDecl
	ParamNames    []Ident
}

type TupTy struct{ Elems []*Ty }

type PathTy struct{ QPath *QPath }

// OpaqueDefTy is the use of an opaque type at its defining site. Args has
// one lifetime argument per region the opaque item captured.
type OpaqueDefTy struct {
	Item ItemID
	Args []*GenericArg
}

type TraitObjectTy struct {
	Bounds   []*PolyTraitRef
	Lifetime *Lifetime
	Syntax   ast.TraitObjectSyntax
}

func (*SliceTy) tyData()       {}
func (*ArrayTy) tyData()       {}
func (*PtrTy) tyData()         {}
func (*RefTy) tyData()         {}
func (*BareFnTy) tyData()      {}
func (*TupTy) tyData()         {}
func (*PathTy) tyData()        {}
func (*OpaqueDefTy) tyData()   {}
func (*TraitObjectTy) tyData() {}

// --- lifetimes ---

type LifetimeNameKind uint8

const (
	// LifetimeParam names a generic parameter (declared, in-band or fresh).
	LifetimeParam LifetimeNameKind = iota
	// LifetimeImplicit is an elided region left for later inference.
	LifetimeImplicit
	// LifetimeUnderscore is `'_` left for later inference.
	LifetimeUnderscore
	// LifetimeImplicitObjectDefault is the region of `dyn Trait` without one.
	LifetimeImplicitObjectDefault
	LifetimeStatic
	LifetimeError
)

type ParamNameKind uint8

const (
	ParamPlain ParamNameKind = iota
	// ParamFresh is a parameter synthesized for an anonymous region.
	ParamFresh
	ParamError
)

// ParamName is the name of a generic parameter as HIR sees it.
type ParamName struct {
	Kind  ParamNameKind
	Ident Ident
	Fresh uint32
}

func (n ParamName) String() string {
	switch n.Kind {
	case ParamFresh:
		return "'_"
	case ParamError:
		return "{error}"
	default:
		return n.Ident.Name
	}
}

type LifetimeName struct {
	Kind  LifetimeNameKind
	Param ParamName
}

func (n LifetimeName) String() string {
	switch n.Kind {
	case LifetimeParam:
		if n.Param.Kind == ParamFresh {
			return "'_#" + strconv.FormatUint(uint64(n.Param.Fresh), 10)
		}
		return n.Param.String()
	case LifetimeImplicit:
		return "'{elided}"
	case LifetimeUnderscore:
		return "'_"
	case LifetimeImplicitObjectDefault:
		return "'{object default}"
	case LifetimeStatic:
		return "'static"
	default:
		return "'{error}"
	}
}

// IsElided reports whether the region was not named by the user.
func (n LifetimeName) IsElided() bool {
	switch n.Kind {
	case LifetimeImplicit, LifetimeUnderscore, LifetimeImplicitObjectDefault:
		return true
	case LifetimeParam:
		return n.Param.Kind == ParamFresh
	default:
		return false
	}
}

type Lifetime struct {
	HirID HirID
	Span  source.Span
	Name  LifetimeName
}

// --- paths ---

// Res is a resolution with local bindings mapped to their HirID.
type Res struct {
	Kind    resolve.ResKind
	DefKind resolve.DefKind
	Def     defs.LocalDefID
	Extern  string
	Prim    string
	Local   HirID
	SelfOf  defs.LocalDefID
}

// ErrRes is the resolution of a path that failed to resolve.
var ErrRes = Res{Kind: resolve.ResErr}

func (r Res) IsErr() bool { return r.Kind == resolve.ResErr }

type QPathKind uint8

const (
	// QPathResolved: every segment resolved; Path.Res is final.
	QPathResolved QPathKind = iota
	// QPathTypeRelative: `<SelfTy>::Segment`, left for type checking.
	QPathTypeRelative
)

type QPath struct {
	Kind    QPathKind
	Path    *Path        // QPathResolved
	SelfTy  *Ty          // QPathTypeRelative
	Segment *PathSegment // QPathTypeRelative
	Span    source.Span
}

type Path struct {
	Span     source.Span
	Res      Res
	Segments []*PathSegment
}

type PathSegment struct {
	HirID HirID
	Ident Ident
	Res   Res
	Args  *GenericArgs
}

type GenericArgs struct {
	Args          []*GenericArg
	Bindings      []*TypeBinding
	Parenthesized bool
	Span          source.Span
}

type GenericArgKind uint8

const (
	ArgLifetime GenericArgKind = iota
	ArgType
	ArgConst
)

type GenericArg struct {
	Kind     GenericArgKind
	Lifetime *Lifetime
	Ty       *Ty
	Const    *AnonConst
}

type TypeBindingKind uint8

const (
	BindingEquality TypeBindingKind = iota
	BindingConstraint
)

// TypeBinding is `Item = Ty` or `Item: Bounds` inside generic arguments.
type TypeBinding struct {
	HirID   HirID
	Ident   Ident
	GenArgs *GenericArgs
	Kind    TypeBindingKind
	Ty      *Ty
	Bounds  []*GenericBound
	Span    source.Span
}

type GenericBoundKind uint8

const (
	BoundTrait GenericBoundKind = iota
	BoundOutlives
)

type GenericBound struct {
	Kind     GenericBoundKind
	Trait    *PolyTraitRef
	Modifier ast.TraitBoundModifier
	Lifetime *Lifetime
	Span     source.Span
}

type PolyTraitRef struct {
	BoundGenericParams []*GenericParam
	TraitRef           TraitRef
	Span               source.Span
}

type TraitRef struct {
	Path  *Path
	HirID HirID
}
