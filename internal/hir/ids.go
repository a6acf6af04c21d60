// Package hir is the desugared tree produced by lowering.
//
// Every node carries a HirID: the definition that owns it plus a local
// index dense within that owner. Owners are items (including associated
// items, synthesized opaque types and the crate root). Each owner is
// finalized into an OwnerInfo holding its node table, attributes, bodies
// and two content hashes.
package hir

import (
	"fmt"

	"fortio.org/safecast"

	"ferrule/internal/defs"
)

// ItemLocalID indexes a node within its owner. 0 is the owner itself.
type ItemLocalID uint32

// RootLocalID is the local id of an owner's root node.
const RootLocalID ItemLocalID = 0

// LocalIndex converts a slice position into an ItemLocalID.
func LocalIndex(i int) ItemLocalID {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("hir: local index overflow: %w", err))
	}
	return ItemLocalID(v)
}

// HirID identifies one node of the tree.
type HirID struct {
	Owner defs.LocalDefID
	Local ItemLocalID
}

// NoHirID is the zero value; it never names a node.
var NoHirID = HirID{}

// OwnerID returns the id of owner's root node.
func OwnerID(owner defs.LocalDefID) HirID {
	return HirID{Owner: owner, Local: RootLocalID}
}

func (id HirID) IsValid() bool { return id.Owner.IsValid() }

func (id HirID) IsOwner() bool { return id.Local == RootLocalID }

func (id HirID) String() string {
	return fmt.Sprintf("HirId(%d.%d)", uint32(id.Owner), id.Local)
}

// Ref converts the id for storage in the definitions table.
func (id HirID) Ref() defs.HirRef {
	return defs.HirRef{Owner: id.Owner, Local: uint32(id.Local)}
}

// BodyID names a body by the HirID of its value expression.
type BodyID struct {
	HirID HirID
}

func (b BodyID) IsValid() bool { return b.HirID.IsValid() }

// ItemID references an owner from its parent.
type ItemID struct {
	Def defs.LocalDefID
}
