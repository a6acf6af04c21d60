package hir

import (
	"slices"

	"ferrule/internal/defs"
	"ferrule/internal/fingerprint"
)

// Node is anything with a HirID.
type Node interface {
	hirID() HirID
}

func (n *Item) hirID() HirID         { return n.HirID }
func (n *Ty) hirID() HirID           { return n.HirID }
func (n *Lifetime) hirID() HirID     { return n.HirID }
func (n *GenericParam) hirID() HirID { return n.HirID }
func (n *PathSegment) hirID() HirID  { return n.HirID }
func (n *TypeBinding) hirID() HirID  { return n.HirID }
func (n *TraitRef) hirID() HirID     { return n.HirID }
func (n *FieldDef) hirID() HirID     { return n.HirID }
func (n *Param) hirID() HirID        { return n.HirID }
func (n *Pat) hirID() HirID          { return n.HirID }
func (n *AnonConst) hirID() HirID    { return n.HirID }
func (n *Expr) hirID() HirID         { return n.HirID }
func (n *Block) hirID() HirID        { return n.HirID }
func (n *Stmt) hirID() HirID         { return n.HirID }
func (n *Local) hirID() HirID        { return n.HirID }

// IDOf returns the id of n.
func IDOf(n Node) HirID { return n.hirID() }

// NodeKind names the variant of n for diagnostics and dumps.
func NodeKind(n Node) string {
	switch n.(type) {
	case *Item:
		return "Item"
	case *Ty:
		return "Ty"
	case *Lifetime:
		return "Lifetime"
	case *GenericParam:
		return "GenericParam"
	case *PathSegment:
		return "PathSegment"
	case *TypeBinding:
		return "TypeBinding"
	case *TraitRef:
		return "TraitRef"
	case *FieldDef:
		return "Field"
	case *Param:
		return "Param"
	case *Pat:
		return "Pat"
	case *AnonConst:
		return "AnonConst"
	case *Expr:
		return "Expr"
	case *Block:
		return "Block"
	case *Stmt:
		return "Stmt"
	case *Local:
		return "Local"
	default:
		return "Node"
	}
}

// ParentedNode is one entry of an owner's node table.
type ParentedNode struct {
	Parent ItemLocalID
	Node   Node
}

type BodyEntry struct {
	Local ItemLocalID
	Body  *Body
}

// OwnerNodes is the finalized node table of one owner.
type OwnerNodes struct {
	// Hash covers the owner with all nested bodies; HashWithoutBodies stops
	// at body references.
	Hash              fingerprint.Digest
	HashWithoutBodies fingerprint.Digest
	// Nodes is indexed by ItemLocalID; Nodes[0] is the owner's Item.
	Nodes []ParentedNode
	// Bodies is sorted by Local.
	Bodies []BodyEntry
	// LocalIDToDefID maps nodes that carry their own definition (generic
	// parameters, anonymous constants, closures, fields).
	LocalIDToDefID map[ItemLocalID]defs.LocalDefID
}

// Node returns the node with the given local id, or nil.
func (o *OwnerNodes) Node(local ItemLocalID) Node {
	if int(local) >= len(o.Nodes) {
		return nil
	}
	return o.Nodes[local].Node
}

// Body looks up a body of this owner.
func (o *OwnerNodes) Body(local ItemLocalID) *Body {
	i, ok := slices.BinarySearchFunc(o.Bodies, local, func(e BodyEntry, l ItemLocalID) int {
		switch {
		case e.Local < l:
			return -1
		case e.Local > l:
			return 1
		default:
			return 0
		}
	})
	if !ok {
		return nil
	}
	return o.Bodies[i].Body
}

// OwnerInfo is everything lowering produced for one owner.
type OwnerInfo struct {
	Def   defs.LocalDefID
	Nodes OwnerNodes
	// Parenting maps nested owners to the local id of the node that
	// references them.
	Parenting map[defs.LocalDefID]ItemLocalID
	Attrs     AttributeMap
	AttrHash  fingerprint.Digest
}

// Item returns the owner's root node.
func (o *OwnerInfo) Item() *Item {
	return o.Nodes.Nodes[RootLocalID].Node.(*Item)
}

// Crate is the lowered crate.
type Crate struct {
	Name string
	// Owners is indexed by LocalDefID; entries for definitions that are not
	// owners are nil.
	Owners []*OwnerInfo
	Hash   fingerprint.Digest
}

// Owner returns the info of def, or nil when def is not an owner.
func (c *Crate) Owner(def defs.LocalDefID) *OwnerInfo {
	if int(def) >= len(c.Owners) {
		return nil
	}
	return c.Owners[def]
}

// OwnerDefs lists owners in definition order.
func (c *Crate) OwnerDefs() []defs.LocalDefID {
	var out []defs.LocalDefID
	for i, o := range c.Owners {
		if o != nil {
			out = append(out, defs.Index(i))
		}
	}
	return out
}

// Item returns the root node of an item reference.
func (c *Crate) Item(id ItemID) *Item {
	o := c.Owner(id.Def)
	if o == nil {
		return nil
	}
	return o.Item()
}

// Body resolves a body reference.
func (c *Crate) Body(id BodyID) *Body {
	o := c.Owner(id.HirID.Owner)
	if o == nil {
		return nil
	}
	return o.Nodes.Body(id.HirID.Local)
}

// Root returns the crate root module.
func (c *Crate) Root() *Item {
	return c.Item(ItemID{Def: defs.CrateDefID})
}
