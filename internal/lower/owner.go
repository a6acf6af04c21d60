package lower

import (
	"fmt"
	"slices"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/hir"
	"ferrule/internal/resolve"
	"ferrule/internal/trace"
)

// ownerState is the part of the lowerer that belongs to the owner being
// built. withOwner swaps it out wholesale.
type ownerState struct {
	def     defs.LocalDefID
	counter hir.ItemLocalID
	attrs   hir.AttributeMap
	bodies  []hir.BodyEntry
	// localNodes lists the surface nodes lowered in this owner, in
	// allocation order.
	localNodes []ast.NodeID
}

// withOwner makes node's definition the current owner, runs build and
// finalizes the item it returns. The enclosing owner's state is restored
// afterwards, so nested owners never see each other's counters or tables.
func (l *lowerer) withOwner(node ast.NodeID, build func() *hir.Item) hir.ItemID {
	def := l.r.LocalDefID(node)
	saved := l.cur
	l.cur = ownerState{
		def:     def,
		counter: hir.RootLocalID + 1,
		attrs:   make(hir.AttributeMap),
	}
	defer func() { l.cur = saved }()

	// The owner itself is local 0.
	l.nodeToHir[node] = hir.OwnerID(def)
	l.cur.localNodes = append(l.cur.localNodes, node)

	span := trace.Begin(l.tracer, trace.ScopeOwner, l.defs.PathString(def), l.spanID)
	item := build()
	if item.DefID != def || item.HirID != hir.OwnerID(def) {
		panic(fmt.Errorf("lower: owner %s built item %s / %s", def, item.HirID, item.DefID))
	}
	l.finalizeOwner(item)
	span.End(fmt.Sprintf("nodes=%d", l.cur.counter))
	return hir.ItemID{Def: def}
}

func (l *lowerer) finalizeOwner(item *hir.Item) {
	def := l.cur.def
	if _, dup := l.owners[def]; dup {
		panic(fmt.Errorf("lower: owner %s finalized twice", def))
	}
	if l.opts.DebugAssertions {
		for local, list := range l.cur.attrs {
			if len(list) == 0 {
				panic(fmt.Errorf("lower: owner %s stores an empty attribute list for local %d", def, local))
			}
		}
	}

	bodies := l.cur.bodies
	slices.SortFunc(bodies, func(a, b hir.BodyEntry) int {
		switch {
		case a.Local < b.Local:
			return -1
		case a.Local > b.Local:
			return 1
		default:
			return 0
		}
	})
	hash, hashWithoutBodies := hir.HashOwner(l.defs, l.hygiene, item, bodies)
	nodes, parenting, err := hir.IndexOwner(def, item, bodies, int(l.cur.counter))
	if err != nil {
		panic(fmt.Errorf("lower: owner %s: %w", def, err))
	}

	localToDef := make(map[hir.ItemLocalID]defs.LocalDefID)
	for _, node := range l.cur.localNodes {
		id := l.nodeToHir[node]
		if id.Local == hir.RootLocalID {
			continue
		}
		if d, ok := l.r.OptLocalDefID(node); ok {
			localToDef[id.Local] = d
		}
	}

	l.owners[def] = &hir.OwnerInfo{
		Def: def,
		Nodes: hir.OwnerNodes{
			Hash:              hash,
			HashWithoutBodies: hashWithoutBodies,
			Nodes:             nodes,
			Bodies:            bodies,
			LocalIDToDefID:    localToDef,
		},
		Parenting: parenting,
		Attrs:     l.cur.attrs,
		AttrHash:  hir.HashAttributes(l.defs, l.hygiene, l.cur.attrs),
	}
}

// lowerNodeID returns the HirID of node, allocating one in the current
// owner on first use.
func (l *lowerer) lowerNodeID(node ast.NodeID) hir.HirID {
	if !node.IsValid() {
		panic(fmt.Errorf("lower: lowering the sentinel node id in owner %s", l.cur.def))
	}
	if id, ok := l.nodeToHir[node]; ok {
		return id
	}
	if !l.cur.def.IsValid() {
		panic(fmt.Errorf("lower: %s lowered outside of any owner", node))
	}
	id := hir.HirID{Owner: l.cur.def, Local: l.cur.counter}
	l.cur.counter++
	l.nodeToHir[node] = id
	l.cur.localNodes = append(l.cur.localNodes, node)
	return id
}

// nextID allocates a HirID for a node that has no surface counterpart.
func (l *lowerer) nextID() hir.HirID {
	return l.lowerNodeID(l.r.NextNodeID())
}

// lowerRes maps local bindings to the HirID of their pattern.
func (l *lowerer) lowerRes(r resolve.Res) hir.Res {
	out := hir.Res{
		Kind:    r.Kind,
		DefKind: r.DefKind,
		Def:     r.Def,
		Extern:  r.Extern,
		Prim:    r.Prim,
		SelfOf:  r.SelfOf,
	}
	if r.Kind == resolve.ResLocal {
		id, ok := l.nodeToHir[r.Local]
		if !ok {
			panic(fmt.Errorf("lower: binding %s used before it was lowered", r.Local))
		}
		out.Local = id
	}
	return out
}

func (l *lowerer) addBody(params []*hir.Param, value *hir.Expr, gen hir.GeneratorKind) hir.BodyID {
	body := &hir.Body{Params: params, Value: value, Generator: gen}
	id := body.ID()
	l.cur.bodies = append(l.cur.bodies, hir.BodyEntry{Local: id.HirID.Local, Body: body})
	return id
}

// withItemScope clears the per-item lowering modes for a nested item and
// restores them afterwards.
func (l *lowerer) withItemScope(fn func()) {
	mode, collecting, inBand := l.mode, l.collecting, l.inBand
	captures, inDyn, gen := l.captures, l.inDynType, l.generator
	l.mode = modePassThrough
	l.collecting = defs.NoDefID
	l.inBand = nil
	l.captures = nil
	l.inDynType = false
	l.generator = hir.GenNone
	defer func() {
		l.mode, l.collecting, l.inBand = mode, collecting, inBand
		l.captures, l.inDynType, l.generator = captures, inDyn, gen
	}()
	fn()
}
