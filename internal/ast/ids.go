package ast

import "fmt"

// NodeID identifies a surface node. Zero is the sentinel.
type NodeID uint32

const (
	NoNodeID    NodeID = 0
	CrateNodeID NodeID = 1
)

func (id NodeID) IsValid() bool { return id != NoNodeID }

func (id NodeID) String() string {
	if id == NoNodeID {
		return "node#none"
	}
	return fmt.Sprintf("node#%d", uint32(id))
}
