package hir

import (
	"errors"
	"fmt"

	"ferrule/internal/defs"
)

// IndexOwner builds the node table of an owner and checks that exactly the
// local ids 0..allocated-1 occur, each once, all under owner.
func IndexOwner(owner defs.LocalDefID, root *Item, bodies []BodyEntry, allocated int) ([]ParentedNode, map[defs.LocalDefID]ItemLocalID, error) {
	nodes := make([]ParentedNode, allocated)
	parenting := make(map[defs.LocalDefID]ItemLocalID)
	var errs []error
	byLocal := OwnerNodes{Bodies: bodies}

	Walk(root, Visitor{
		Node: func(n, parent Node) {
			id := n.hirID()
			if id.Owner != owner {
				errs = append(errs, fmt.Errorf("%s %s belongs to owner %s, found under %s", NodeKind(n), id, id.Owner, owner))
				return
			}
			if int(id.Local) >= allocated {
				errs = append(errs, fmt.Errorf("%s %s was never allocated (%d ids allocated)", NodeKind(n), id, allocated))
				return
			}
			if prev := nodes[id.Local].Node; prev != nil {
				errs = append(errs, fmt.Errorf("%s: %s and %s share an id", id, NodeKind(prev), NodeKind(n)))
				return
			}
			var p ItemLocalID
			if parent != nil {
				p = parent.hirID().Local
			}
			nodes[id.Local] = ParentedNode{Parent: p, Node: n}
		},
		Nested: func(item ItemID, parent Node) {
			parenting[item.Def] = parent.hirID().Local
		},
		Body: func(id BodyID) *Body {
			if id.HirID.Owner != owner {
				errs = append(errs, fmt.Errorf("body %s referenced from owner %s", id.HirID, owner))
				return nil
			}
			b := byLocal.Body(id.HirID.Local)
			if b == nil {
				errs = append(errs, fmt.Errorf("body %s is missing", id.HirID))
			}
			return b
		},
	})

	for i, n := range nodes {
		if n.Node == nil {
			errs = append(errs, fmt.Errorf("%s was allocated but no node carries it", HirID{Owner: owner, Local: LocalIndex(i)}))
		}
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return nodes, parenting, nil
}
