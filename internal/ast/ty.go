package ast

import "ferrule/internal/source"

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
	TyTraitObject
	TyImplTrait
	TyParen
	TyImplicitSelf
	TyCVarArgs
	TyErr
)

func (k TyKind) String() string {
	switch k {
	case TyInfer:
		return "Infer"
	case TySlice:
		return "Slice"
	case TyArray:
		return "Array"
	case TyPtr:
		return "Ptr"
	case TyRef:
		return "Ref"
	case TyBareFn:
		return "BareFn"
	case TyNever:
		return "Never"
	case TyTup:
		return "Tup"
	case TyPath:
		return "Path"
	case TyTraitObject:
		return "TraitObject"
	case TyImplTrait:
		return "ImplTrait"
	case TyParen:
		return "Paren"
	case TyImplicitSelf:
		return "ImplicitSelf"
	case TyCVarArgs:
		return "CVarArgs"
	default:
		return "Err"
	}
}

type Ty struct {
	ID   NodeID
	Kind TyKind
	Span source.Span
	Data TyData // nil for Infer, Never, ImplicitSelf, CVarArgs, Err
}

// TyData is the kind-specific payload of a Ty.
type TyData interface {
	tyData()
}

type SliceTy struct{ Elem *Ty }

type ArrayTy struct {
	Elem *Ty
	Len  *AnonConst
}

type PtrTy struct {
	Mut  bool
	Elem *Ty
}

// RefTy is `&'a mut T`. Lifetime is nil when elided.
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
}

type TupTy struct{ Elems []*Ty }

type PathTy struct{ Path *Path }

type TraitObjectSyntax uint8

const (
	TraitObjectDyn TraitObjectSyntax = iota
	TraitObjectNone
)

type TraitObjectTy struct {
	Bounds []*GenericBound
	Syntax TraitObjectSyntax
}

// ImplTraitTy is `impl Bounds`. DefID is the node the resolver registers the
// opaque (or synthetic type parameter) definition under.
type ImplTraitTy struct {
	DefID  NodeID
	Bounds []*GenericBound
}

type ParenTy struct{ Inner *Ty }

func (*SliceTy) tyData()       {}
func (*ArrayTy) tyData()       {}
func (*PtrTy) tyData()         {}
func (*RefTy) tyData()         {}
func (*BareFnTy) tyData()      {}
func (*TupTy) tyData()         {}
func (*PathTy) tyData()        {}
func (*TraitObjectTy) tyData() {}
func (*ImplTraitTy) tyData()   {}
func (*ParenTy) tyData()       {}

// IsUnit reports whether t is `()`.
func (t *Ty) IsUnit() bool {
	if t.Kind != TyTup {
		return false
	}
	d, ok := t.Data.(*TupTy)
	return ok && len(d.Elems) == 0
}
