package hir

import (
	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/source"
)

type ItemKind uint8

const (
	ItemFn ItemKind = iota
	ItemTyAlias
	ItemOpaqueTy
	ItemStruct
	ItemConst
	ItemMod
	ItemImpl
	ItemTrait
)

var itemKindNames = [...]string{
	ItemFn:       "fn",
	ItemTyAlias:  "type",
	ItemOpaqueTy: "opaque",
	ItemStruct:   "struct",
	ItemConst:    "const",
	ItemMod:      "mod",
	ItemImpl:     "impl",
	ItemTrait:    "trait",
}

func (k ItemKind) String() string {
	if int(k) < len(itemKindNames) {
		return itemKindNames[k]
	}
	return "item?"
}

// Item is the root node of an owner.
type Item struct {
	HirID HirID
	DefID defs.LocalDefID
	Ident Ident
	Kind  ItemKind
	Vis   ast.Visibility
	Span  source.Span
	Data  ItemData
}

type ItemData interface{ itemData() }

// Generics returns the item's generics, if its kind has any.
func (it *Item) Generics() *Generics {
	switch d := it.Data.(type) {
	case *FnItem:
		return d.Generics
	case *TyAliasItem:
		return d.Generics
	case *OpaqueTyItem:
		return d.Generics
	case *StructItem:
		return d.Generics
	case *ImplItem:
		return d.Generics
	case *TraitItem:
		return d.Generics
	default:
		return nil
	}
}

type FnItem struct {
	Sig      FnSig
	Generics *Generics
	Body     BodyID // zero for a required trait method
}

type FnSig struct {
	Header FnHeader
	Decl   *FnDecl
	Span   source.Span
}

type FnHeader struct {
	Async  bool
	Unsafe bool
	Extern bool
}

// ImplicitSelfKind records how a method takes `self`.
type ImplicitSelfKind uint8

const (
	SelfNone   ImplicitSelfKind = iota
	SelfImm                     // self
	SelfMut                     // mut self
	SelfImmRef                  // &self
	SelfMutRef                  // &mut self
)

func (k ImplicitSelfKind) String() string {
	switch k {
	case SelfImm:
		return "self"
	case SelfMut:
		return "mut self"
	case SelfImmRef:
		return "&self"
	case SelfMutRef:
		return "&mut self"
	default:
		return "none"
	}
}

type FnDecl struct {
	Inputs       []*Ty
	Output       FnRetTy
	CVariadic    bool
	ImplicitSelf ImplicitSelfKind
}

type FnRetTy struct {
	// Ty is nil for the default return; Span then points where `-> T` would go.
	Ty   *Ty
	Span source.Span
}

type TyAliasItem struct {
	Generics *Generics
	Bounds   []*GenericBound // associated types in traits
	Ty       *Ty             // nil for an associated type without default
}

// OpaqueOrigin says what produced an opaque item.
type OpaqueOrigin uint8

const (
	OriginFnReturn OpaqueOrigin = iota
	OriginAsyncFn
	OriginTyAlias
)

func (o OpaqueOrigin) String() string {
	switch o {
	case OriginAsyncFn:
		return "async fn"
	case OriginTyAlias:
		return "type alias"
	default:
		return "fn return"
	}
}

type OpaqueTyItem struct {
	Generics *Generics
	Bounds   []*GenericBound
	Origin   OpaqueOrigin
	// Fn is the function whose return type this is (OriginFnReturn, OriginAsyncFn).
	Fn defs.LocalDefID
}

type StructItem struct {
	Generics *Generics
	Fields   []*FieldDef
	Tuple    bool
}

type FieldDef struct {
	HirID HirID
	DefID defs.LocalDefID
	Ident Ident
	Vis   ast.Visibility
	Ty    *Ty
	Span  source.Span
}

type ConstItem struct {
	Ty   *Ty
	Body BodyID // zero for an associated const without default
}

type ModItem struct {
	Items []ItemID
	Span  source.Span
}

type ImplItem struct {
	Generics *Generics
	Unsafe   bool
	OfTrait  *TraitRef
	SelfTy   *Ty
	Items    []ItemID
}

type TraitItem struct {
	Generics *Generics
	Unsafe   bool
	Bounds   []*GenericBound
	Items    []ItemID
}

func (*FnItem) itemData()       {}
func (*TyAliasItem) itemData()  {}
func (*OpaqueTyItem) itemData() {}
func (*StructItem) itemData()   {}
func (*ConstItem) itemData()    {}
func (*ModItem) itemData()      {}
func (*ImplItem) itemData()     {}
func (*TraitItem) itemData()    {}
