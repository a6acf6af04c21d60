package ast

import "ferrule/internal/source"

type ItemKind uint8

const (
	ItemFn ItemKind = iota
	ItemTyAlias
	ItemStruct
	ItemConst
	ItemMod
	ItemImpl
	ItemTrait
)

func (k ItemKind) String() string {
	switch k {
	case ItemFn:
		return "fn"
	case ItemTyAlias:
		return "type"
	case ItemStruct:
		return "struct"
	case ItemConst:
		return "const"
	case ItemMod:
		return "mod"
	case ItemImpl:
		return "impl"
	case ItemTrait:
		return "trait"
	default:
		return "item"
	}
}

// Item is a module-level item, or an associated item inside an impl or trait.
type Item struct {
	ID    NodeID
	Ident Ident
	Vis   Visibility
	Attrs []Attr
	Kind  ItemKind
	Span  source.Span
	Data  ItemData
}

// ItemData is the kind-specific payload of an Item.
type ItemData interface {
	itemData()
}

// FnData holds data for ItemFn. Body is nil for trait method declarations.
type FnData struct {
	Sig      FnSig
	Generics Generics
	Body     *Block
}

func (*FnData) itemData() {}

type FnSig struct {
	Header FnHeader
	Decl   *FnDecl
	Span   source.Span
}

type FnHeader struct {
	Async  Async
	Unsafe bool
	Extern bool
}

// Async marks `async fn`. ClosureID names the desugared body, ReturnID the
// opaque `impl Future` the signature returns.
type Async struct {
	IsAsync   bool
	ClosureID NodeID
	ReturnID  NodeID
	Span      source.Span
}

type FnDecl struct {
	Inputs []*Param
	Output FnRetTy
}

// CVariadic reports whether the last input is `...`.
func (d *FnDecl) CVariadic() bool {
	if len(d.Inputs) == 0 {
		return false
	}
	return d.Inputs[len(d.Inputs)-1].Ty.Kind == TyCVarArgs
}

type Param struct {
	ID    NodeID
	Attrs []Attr
	Pat   *Pat
	Ty    *Ty
	Span  source.Span
}

// IsSelf reports whether the param was written as `self`, `&self` or `&mut self`.
func (p *Param) IsSelf() bool {
	if p.Pat == nil || p.Pat.Kind != PatIdent {
		return false
	}
	return p.Pat.Ident.Name == "self"
}

// FnRetTy is the return type. Ty is nil for the default `()` return; Span
// then points where the type would have been.
type FnRetTy struct {
	Ty   *Ty
	Span source.Span
}

func (r FnRetTy) IsDefault() bool { return r.Ty == nil }

type TyAliasData struct {
	Generics Generics
	Bounds   []*GenericBound // associated type bounds in traits
	Ty       *Ty             // nil for a trait associated type without default
}

func (*TyAliasData) itemData() {}

type StructData struct {
	Generics Generics
	Fields   []*FieldDef
	Tuple    bool
}

func (*StructData) itemData() {}

type FieldDef struct {
	ID    NodeID
	Ident Ident // empty for tuple fields
	Vis   Visibility
	Attrs []Attr
	Ty    *Ty
	Span  source.Span
}

type ConstData struct {
	Ty   *Ty
	Expr *Expr // nil for a trait associated const without default
}

func (*ConstData) itemData() {}

type ModData struct {
	Items []*Item
}

func (*ModData) itemData() {}

type ImplData struct {
	Generics Generics
	Unsafe   bool
	OfTrait  *TraitRef // nil for inherent impls
	SelfTy   *Ty
	Items    []*Item
}

func (*ImplData) itemData() {}

type TraitData struct {
	Generics Generics
	Unsafe   bool
	Bounds   []*GenericBound
	Items    []*Item
}

func (*TraitData) itemData() {}

// Fn returns the payload of an ItemFn, or nil.
func (it *Item) Fn() *FnData {
	d, _ := it.Data.(*FnData)
	return d
}

// Generics returns the generics of items that declare them.
func (it *Item) Generics() *Generics {
	switch d := it.Data.(type) {
	case *FnData:
		return &d.Generics
	case *TyAliasData:
		return &d.Generics
	case *StructData:
		return &d.Generics
	case *ImplData:
		return &d.Generics
	case *TraitData:
		return &d.Generics
	default:
		return nil
	}
}
