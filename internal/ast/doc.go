// Package ast is the surface syntax tree consumed by the lowering stage.
//
// The tree is pointer based. Every node that later stages need to refer to
// carries a NodeID; ids are assigned by the resolver (see resolve.Collect),
// never by the parser, so a freshly parsed tree has all ids equal to NoNodeID.
package ast
