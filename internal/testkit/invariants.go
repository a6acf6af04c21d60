// Package testkit holds checks shared by the lowering tests: HIR invariants
// and golden-file comparison.
package testkit

import (
	"errors"
	"fmt"

	"ferrule/internal/defs"
	"ferrule/internal/hir"
	"ferrule/internal/source"
)

// CheckOptions selects the optional invariants.
type CheckOptions struct {
	// RelativeSpans requires every span to be parented to its owner.
	RelativeSpans bool
}

// CheckCrate runs the invariants a lowered crate must satisfy:
//  1. hir.Validate (dense local ids, parent links, sorted bodies)
//  2. every owner and every def-carrying node is reachable through
//     Definitions.HirRef with the same owner/local pair
//  3. spans are well formed, and parented to their owner when requested
func CheckCrate(c *hir.Crate, d *defs.Definitions, opts CheckOptions) error {
	if c == nil || d == nil {
		return fmt.Errorf("nil crate or definitions")
	}
	errs := []error{hir.Validate(c)}
	for _, def := range c.OwnerDefs() {
		o := c.Owner(def)
		errs = append(errs, checkMapping(d, def, o)...)
		errs = append(errs, checkSpans(def, o, opts)...)
	}
	return errors.Join(errs...)
}

func checkMapping(d *defs.Definitions, def defs.LocalDefID, o *hir.OwnerInfo) []error {
	var errs []error
	if ref, ok := d.HirRef(def); !ok || ref != hir.OwnerID(def).Ref() {
		errs = append(errs, fmt.Errorf("owner %s maps to %+v (found=%v)", def, ref, ok))
	}
	for local, mapped := range o.Nodes.LocalIDToDefID {
		want := hir.HirID{Owner: def, Local: local}.Ref()
		if ref, ok := d.HirRef(mapped); !ok || ref != want {
			errs = append(errs, fmt.Errorf("%s maps to %+v, lowered at %s", mapped, ref, hir.HirID{Owner: def, Local: local}))
		}
	}
	return errs
}

func checkSpans(def defs.LocalDefID, o *hir.OwnerInfo, opts CheckOptions) []error {
	var errs []error
	for i, pn := range o.Nodes.Nodes {
		sp, ok := spanOf(pn.Node)
		if !ok {
			continue
		}
		if sp.End < sp.Start {
			errs = append(errs, fmt.Errorf("owner %s: %s at %d has inverted span %s", def, hir.NodeKind(pn.Node), i, sp))
		}
		if opts.RelativeSpans && sp.Parent != uint32(def) {
			errs = append(errs, fmt.Errorf("owner %s: %s at %d has span parented to %d", def, hir.NodeKind(pn.Node), i, sp.Parent))
		}
	}
	return errs
}

// spanOf returns the span of nodes that carry one.
func spanOf(n hir.Node) (source.Span, bool) {
	switch n := n.(type) {
	case *hir.Item:
		return n.Span, true
	case *hir.Ty:
		return n.Span, true
	case *hir.Lifetime:
		return n.Span, true
	case *hir.GenericParam:
		return n.Span, true
	case *hir.TypeBinding:
		return n.Span, true
	case *hir.FieldDef:
		return n.Span, true
	case *hir.Param:
		return n.Span, true
	case *hir.Pat:
		return n.Span, true
	case *hir.Expr:
		return n.Span, true
	case *hir.Block:
		return n.Span, true
	case *hir.Stmt:
		return n.Span, true
	case *hir.Local:
		return n.Span, true
	default:
		// PathSegment, TraitRef and AnonConst carry no span
		return source.Span{}, false
	}
}
