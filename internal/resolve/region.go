package resolve

import (
	"fmt"

	"ferrule/internal/ast"
)

type RegionResKind uint8

const (
	RegionParam RegionResKind = iota
	RegionAnonymous
	RegionStatic
	RegionError
)

// RegionRes is the resolver's answer for a region reference.
//
// RegionParam: the reference names the parameter declared by node Param,
// bound by Binder. InBand marks parameters introduced by use; Fresh marks
// parameters synthesized for `'_` with FreshIndex as their display index.
//
// RegionAnonymous: `'_` or an elided region whose innermost binder is
// Binder. Elided distinguishes `&T` from `&'_ T`.
type RegionRes struct {
	Kind       RegionResKind
	Param      ast.NodeID
	Binder     ast.NodeID
	InBand     bool
	Fresh      bool
	FreshIndex uint32
	Elided     bool
}

func BoundParameter(param, binder ast.NodeID) RegionRes {
	return RegionRes{Kind: RegionParam, Param: param, Binder: binder}
}

func InBandParameter(param, binder ast.NodeID) RegionRes {
	return RegionRes{Kind: RegionParam, Param: param, Binder: binder, InBand: true}
}

func FreshParameter(param, binder ast.NodeID, index uint32) RegionRes {
	return RegionRes{Kind: RegionParam, Param: param, Binder: binder, InBand: true, Fresh: true, FreshIndex: index}
}

func Anonymous(binder ast.NodeID, elided bool) RegionRes {
	return RegionRes{Kind: RegionAnonymous, Binder: binder, Elided: elided}
}

var (
	StaticRegion = RegionRes{Kind: RegionStatic}
	ErrorRegion  = RegionRes{Kind: RegionError}
)

func (r RegionRes) String() string {
	switch r.Kind {
	case RegionParam:
		s := fmt.Sprintf("Param(%s, binder=%s", r.Param, r.Binder)
		if r.InBand {
			s += ", in-band"
		}
		if r.Fresh {
			s += fmt.Sprintf(", fresh=%d", r.FreshIndex)
		}
		return s + ")"
	case RegionAnonymous:
		return fmt.Sprintf("Anonymous(binder=%s, elided=%t)", r.Binder, r.Elided)
	case RegionStatic:
		return "Static"
	default:
		return "Error"
	}
}
