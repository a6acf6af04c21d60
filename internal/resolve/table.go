package resolve

import (
	"fmt"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/source"
)

// Resolver is everything lowering asks of name resolution.
type Resolver interface {
	Definitions() *defs.Definitions
	OptLocalDefID(node ast.NodeID) (defs.LocalDefID, bool)
	// LocalDefID panics when node has no definition.
	LocalDefID(node ast.NodeID) defs.LocalDefID
	PartialRes(node ast.NodeID) (PartialRes, bool)
	RegionRes(node ast.NodeID) (RegionRes, bool)
	// ElidedRegionRes answers for the region omitted in the `&T` type node.
	ElidedRegionRes(refTy ast.NodeID) (RegionRes, bool)
	NextNodeID() ast.NodeID
	CreateDef(parent defs.LocalDefID, node ast.NodeID, data defs.DefPathData, provenance source.SyntaxContext, span source.Span) defs.LocalDefID
}

// Table is the in-memory Resolver.
type Table struct {
	defs      *defs.Definitions
	next      ast.NodeID
	nodeToDef map[ast.NodeID]defs.LocalDefID
	defToNode map[defs.LocalDefID]ast.NodeID
	partial   map[ast.NodeID]PartialRes
	regions   map[ast.NodeID]RegionRes
	elided    map[ast.NodeID]RegionRes
}

var _ Resolver = (*Table)(nil)

// NewTable creates a table whose crate root is CrateNodeID / CrateDefID.
func NewTable(crateName string, rootSpan source.Span) *Table {
	t := &Table{
		defs:      defs.NewDefinitions(crateName, rootSpan),
		next:      ast.CrateNodeID + 1,
		nodeToDef: make(map[ast.NodeID]defs.LocalDefID),
		defToNode: make(map[defs.LocalDefID]ast.NodeID),
		partial:   make(map[ast.NodeID]PartialRes),
		regions:   make(map[ast.NodeID]RegionRes),
		elided:    make(map[ast.NodeID]RegionRes),
	}
	t.nodeToDef[ast.CrateNodeID] = defs.CrateDefID
	t.defToNode[defs.CrateDefID] = ast.CrateNodeID
	return t
}

func (t *Table) Definitions() *defs.Definitions { return t.defs }

func (t *Table) OptLocalDefID(node ast.NodeID) (defs.LocalDefID, bool) {
	def, ok := t.nodeToDef[node]
	return def, ok
}

func (t *Table) LocalDefID(node ast.NodeID) defs.LocalDefID {
	def, ok := t.nodeToDef[node]
	if !ok {
		panic(fmt.Errorf("resolve: no definition for %s", node))
	}
	return def
}

// NodeOf returns the node a definition was created for.
func (t *Table) NodeOf(def defs.LocalDefID) (ast.NodeID, bool) {
	node, ok := t.defToNode[def]
	return node, ok
}

func (t *Table) PartialRes(node ast.NodeID) (PartialRes, bool) {
	pr, ok := t.partial[node]
	return pr, ok
}

func (t *Table) RegionRes(node ast.NodeID) (RegionRes, bool) {
	r, ok := t.regions[node]
	return r, ok
}

func (t *Table) ElidedRegionRes(refTy ast.NodeID) (RegionRes, bool) {
	r, ok := t.elided[refTy]
	return r, ok
}

// NextNodeID hands out ids monotonically; they are never reused.
func (t *Table) NextNodeID() ast.NodeID {
	id := t.next
	if id == 0 {
		panic(fmt.Errorf("resolve: node id overflow"))
	}
	t.next++
	return id
}

// PeekNextNodeID reports the id NextNodeID would return without consuming it.
func (t *Table) PeekNextNodeID() ast.NodeID { return t.next }

func (t *Table) CreateDef(parent defs.LocalDefID, node ast.NodeID, data defs.DefPathData, provenance source.SyntaxContext, span source.Span) defs.LocalDefID {
	if !node.IsValid() {
		panic(fmt.Errorf("resolve: CreateDef for sentinel node (%s under %s)", data, parent))
	}
	if prev, ok := t.nodeToDef[node]; ok {
		panic(fmt.Errorf("resolve: %s already has definition %s (%s)", node, prev, t.defs.PathString(prev)))
	}
	def := t.defs.Create(parent, data, provenance, span)
	t.nodeToDef[node] = def
	t.defToNode[def] = node
	return def
}

func (t *Table) RecordPartialRes(node ast.NodeID, pr PartialRes) {
	t.partial[node] = pr
}

// RecordRes records a fully resolved path.
func (t *Table) RecordRes(node ast.NodeID, res Res) {
	t.partial[node] = PartialRes{Base: res}
}

func (t *Table) RecordRegionRes(node ast.NodeID, r RegionRes) {
	t.regions[node] = r
}

func (t *Table) RecordElidedRegion(refTy ast.NodeID, r RegionRes) {
	t.elided[refTy] = r
}
