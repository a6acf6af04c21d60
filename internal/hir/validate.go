package hir

import (
	"errors"
	"fmt"

	"ferrule/internal/defs"
)

// Validate checks the id invariants of a lowered crate. Every owner's node
// table must be dense and carry its own ids, parent links must point at
// existing nodes, and the side tables must stay in range.
func Validate(c *Crate) error {
	var errs []error
	for _, def := range c.OwnerDefs() {
		errs = append(errs, validateOwner(c, def, c.Owner(def))...)
	}
	return errors.Join(errs...)
}

func validateOwner(c *Crate, def defs.LocalDefID, o *OwnerInfo) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("owner %s: "+format, append([]any{def}, args...)...))
	}
	nodes := o.Nodes.Nodes
	if len(nodes) == 0 {
		fail("empty node table")
		return errs
	}
	root, ok := nodes[RootLocalID].Node.(*Item)
	if !ok {
		fail("local id 0 is %s, not the owner item", NodeKind(nodes[RootLocalID].Node))
		return errs
	}
	if root.HirID != OwnerID(def) || root.DefID != def {
		fail("root item carries %s / %s", root.HirID, root.DefID)
	}
	for i, pn := range nodes {
		local := LocalIndex(i)
		if pn.Node == nil {
			fail("local id %d has no node", i)
			continue
		}
		if id := pn.Node.hirID(); id.Owner != def || id.Local != local {
			fail("slot %d holds %s %s", i, NodeKind(pn.Node), id)
		}
		if local != RootLocalID {
			if int(pn.Parent) >= len(nodes) || nodes[pn.Parent].Node == nil {
				fail("%s at %d has dangling parent %d", NodeKind(pn.Node), i, pn.Parent)
			}
		}
	}
	for child, at := range o.Parenting {
		if c.Owner(child) == nil {
			fail("references %s which is not an owner", child)
		}
		if int(at) >= len(nodes) {
			fail("nested owner %s parented at out-of-range %d", child, at)
		}
	}
	for local, mapped := range o.Nodes.LocalIDToDefID {
		if int(local) >= len(nodes) {
			fail("%s mapped to out-of-range local id %d", mapped, local)
		}
	}
	for list := range o.Attrs {
		if len(o.Attrs[list]) == 0 {
			fail("empty attribute list stored for local id %d", list)
		}
	}
	for i := 1; i < len(o.Nodes.Bodies); i++ {
		if o.Nodes.Bodies[i-1].Local >= o.Nodes.Bodies[i].Local {
			fail("bodies not sorted at %d", i)
		}
	}
	return errs
}
