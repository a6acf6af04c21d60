package resolve

import (
	"fmt"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
)

// DefKind classifies a definition a path can resolve to.
type DefKind uint8

const (
	DefMod DefKind = iota
	DefStruct
	DefTrait
	DefTyAlias
	DefFn
	DefConst
	DefTyParam
	DefConstParam
	DefLifetimeParam
	DefOpaqueTy
	DefAssocFn
	DefAssocConst
	DefAssocTy
	DefField
	DefAnonConst
	DefImpl
	DefClosure
)

var defKindNames = [...]string{
	DefMod:           "mod",
	DefStruct:        "struct",
	DefTrait:         "trait",
	DefTyAlias:       "type alias",
	DefFn:            "fn",
	DefConst:         "const",
	DefTyParam:       "type parameter",
	DefConstParam:    "const parameter",
	DefLifetimeParam: "lifetime parameter",
	DefOpaqueTy:      "opaque type",
	DefAssocFn:       "associated fn",
	DefAssocConst:    "associated const",
	DefAssocTy:       "associated type",
	DefField:         "field",
	DefAnonConst:     "constant",
	DefImpl:          "impl",
	DefClosure:       "closure",
}

func (k DefKind) String() string {
	if int(k) < len(defKindNames) {
		return defKindNames[k]
	}
	return fmt.Sprintf("DefKind(%d)", uint8(k))
}

// InValueNs reports whether definitions of this kind live in the value namespace.
func (k DefKind) InValueNs() bool {
	switch k {
	case DefFn, DefConst, DefConstParam, DefAssocFn, DefAssocConst:
		return true
	default:
		return false
	}
}

type ResKind uint8

const (
	ResErr ResKind = iota
	ResDef
	ResPrimTy
	ResSelfTy
	ResLocal
)

// Res is what a path resolves to.
//
// ResDef with Def == NoDefID names a definition outside the crate; Extern
// then holds its path (`core::future::Future`). ResLocal names a binding by
// the NodeID of its pattern.
type Res struct {
	Kind    ResKind
	DefKind DefKind
	Def     defs.LocalDefID
	Extern  string
	Prim    string
	Local   ast.NodeID
	// ResSelfTy: the impl (or trait) whose `Self` this is.
	SelfOf defs.LocalDefID
}

func DefRes(kind DefKind, def defs.LocalDefID) Res {
	return Res{Kind: ResDef, DefKind: kind, Def: def}
}

func ExternRes(kind DefKind, path string) Res {
	return Res{Kind: ResDef, DefKind: kind, Extern: path}
}

func PrimRes(name string) Res { return Res{Kind: ResPrimTy, Prim: name} }

func LocalRes(pat ast.NodeID) Res { return Res{Kind: ResLocal, Local: pat} }

func SelfTyRes(of defs.LocalDefID) Res { return Res{Kind: ResSelfTy, SelfOf: of} }

// ErrRes is the resolution of a path that failed to resolve.
var ErrRes = Res{Kind: ResErr}

func (r Res) IsErr() bool { return r.Kind == ResErr }

// IsTrait reports whether r names a trait.
func (r Res) IsTrait() bool { return r.Kind == ResDef && r.DefKind == DefTrait }

func (r Res) String() string {
	switch r.Kind {
	case ResDef:
		if r.Def == defs.NoDefID {
			return fmt.Sprintf("Def(%s, %s)", r.DefKind, r.Extern)
		}
		return fmt.Sprintf("Def(%s, %s)", r.DefKind, r.Def)
	case ResPrimTy:
		return "PrimTy(" + r.Prim + ")"
	case ResSelfTy:
		return fmt.Sprintf("SelfTy(%s)", r.SelfOf)
	case ResLocal:
		return fmt.Sprintf("Local(%s)", r.Local)
	default:
		return "Err"
	}
}

// PartialRes is a resolution of a path prefix. UnresolvedSegments counts
// trailing segments left for type-relative resolution (`T::Assoc`).
type PartialRes struct {
	Base               Res
	UnresolvedSegments int
}

// Full returns the base resolution when every segment resolved.
func (p PartialRes) Full() (Res, bool) {
	if p.UnresolvedSegments != 0 {
		return Res{}, false
	}
	return p.Base, true
}
