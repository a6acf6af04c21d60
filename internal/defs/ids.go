package defs

import (
	"fmt"
)

// LocalDefID identifies a definition of the crate being compiled. Zero is the
// sentinel; the crate root is always 1.
type LocalDefID uint32

const (
	NoDefID    LocalDefID = 0
	CrateDefID LocalDefID = 1
)

func (id LocalDefID) IsValid() bool { return id != NoDefID }

func (id LocalDefID) String() string {
	return fmt.Sprintf("DefId(%d)", uint32(id))
}

// DefPathKind names the namespace a path component lives in.
type DefPathKind uint8

const (
	PathCrateRoot DefPathKind = iota
	PathTypeNs
	PathValueNs
	PathLifetimeNs
	PathMacroNs
	PathImpl
	PathImplTrait
	PathAnonConst
	PathClosureExpr
	PathField
)

var pathKindNames = [...]string{
	PathCrateRoot:   "crate",
	PathTypeNs:      "type",
	PathValueNs:     "value",
	PathLifetimeNs:  "lifetime",
	PathMacroNs:     "macro",
	PathImpl:        "impl",
	PathImplTrait:   "opaque",
	PathAnonConst:   "constant",
	PathClosureExpr: "closure",
	PathField:       "field",
}

func (k DefPathKind) String() string {
	if int(k) < len(pathKindNames) {
		return pathKindNames[k]
	}
	return fmt.Sprintf("DefPathKind(%d)", uint8(k))
}

// hasName reports whether components of this kind carry a symbol.
func (k DefPathKind) hasName() bool {
	switch k {
	case PathTypeNs, PathValueNs, PathLifetimeNs, PathMacroNs, PathField:
		return true
	default:
		return false
	}
}

// DefPathData is one component of a definition path.
type DefPathData struct {
	Kind DefPathKind
	Name string
}

func TypeNs(name string) DefPathData     { return DefPathData{Kind: PathTypeNs, Name: name} }
func ValueNs(name string) DefPathData    { return DefPathData{Kind: PathValueNs, Name: name} }
func LifetimeNs(name string) DefPathData { return DefPathData{Kind: PathLifetimeNs, Name: name} }
func FieldNs(name string) DefPathData    { return DefPathData{Kind: PathField, Name: name} }

var (
	ImplTrait   = DefPathData{Kind: PathImplTrait}
	AnonConst   = DefPathData{Kind: PathAnonConst}
	ImplData    = DefPathData{Kind: PathImpl}
	ClosureExpr = DefPathData{Kind: PathClosureExpr}
)

func (d DefPathData) String() string {
	if d.Kind.hasName() {
		return d.Name
	}
	return "{" + d.Kind.String() + "}"
}

// DefKey locates a definition relative to its parent. The disambiguator
// separates siblings with identical data.
type DefKey struct {
	Parent        LocalDefID
	Data          DefPathData
	Disambiguator uint32
}
