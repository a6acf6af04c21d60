package hir

import (
	"bytes"
	"slices"

	"ferrule/internal/defs"
	"ferrule/internal/fingerprint"
	"ferrule/internal/source"
)

// hasher feeds HIR into a fingerprint. Definitions are hashed by their
// DefPathHash and spans relative to their parent item, so unrelated edits
// elsewhere in the crate leave the digest unchanged. Syntax contexts are
// hashed through their expansion data: the context index itself is a
// crate-wide counter.
type hasher struct {
	h       *fingerprint.Hasher
	defs    *defs.Definitions
	hygiene *source.Hygiene
}

func newHasher(d *defs.Definitions, hy *source.Hygiene) *hasher {
	return &hasher{h: fingerprint.New(), defs: d, hygiene: hy}
}

func (s *hasher) def(id defs.LocalDefID) {
	if !id.IsValid() {
		s.h.WriteDigest(fingerprint.Zero)
		return
	}
	s.h.WriteDigest(s.defs.PathHash(id))
}

func (s *hasher) hirID(id HirID) {
	s.def(id.Owner)
	s.h.WriteU32(uint32(id.Local))
}

func (s *hasher) span(sp source.Span) {
	parent := defs.LocalDefID(sp.Parent)
	s.ctxt(sp.Ctxt, parent)
	s.location(sp, parent)
}

// location hashes sp relative to parent, or absolutely when parent is not
// set.
func (s *hasher) location(sp source.Span, parent defs.LocalDefID) {
	if !parent.IsValid() {
		s.h.WriteBool(false)
		s.h.WriteU32(uint32(sp.File))
		s.h.WriteU32(sp.Start)
		s.h.WriteU32(sp.Len())
		return
	}
	base := s.defs.Span(parent)
	s.h.WriteBool(true)
	s.def(parent)
	s.h.WriteU64(uint64(int64(sp.Start) - int64(base.Start)))
	s.h.WriteU32(sp.Len())
}

// ctxt hashes the chain of expansions behind ctxt, innermost first. Call
// sites are placed relative to the span's parent, the same way the span is.
func (s *hasher) ctxt(ctxt source.SyntaxContext, parent defs.LocalDefID) {
	for ctxt != source.RootContext {
		d, ok := s.hygiene.Data(ctxt)
		if !ok {
			// контекст из чужой таблицы: различаем хотя бы факт десахаринга
			s.h.WriteU8(0xff)
			break
		}
		s.h.WriteU8(uint8(d.Reason) + 1)
		s.h.WriteU8(uint8(d.Edition))
		s.h.WriteU64(uint64(len(d.AllowInternal)))
		for _, f := range d.AllowInternal {
			s.h.WriteString(f)
		}
		s.location(d.CallSite, parent)
		ctxt = d.Parent
	}
	s.h.WriteU8(0)
}

func (s *hasher) ident(id Ident) {
	s.h.WriteString(id.Name)
	s.span(id.Span)
}

func (s *hasher) res(r Res) {
	s.h.WriteU8(uint8(r.Kind))
	s.h.WriteU8(uint8(r.DefKind))
	s.def(r.Def)
	s.h.WriteString(r.Extern)
	s.h.WriteString(r.Prim)
	s.hirID(r.Local)
	s.def(r.SelfOf)
}

func (s *hasher) paramName(n ParamName) {
	s.h.WriteU8(uint8(n.Kind))
	s.ident(n.Ident)
	s.h.WriteU32(n.Fresh)
}

func (s *hasher) path(p *Path) {
	if p == nil {
		s.h.WriteBool(false)
		return
	}
	s.h.WriteBool(true)
	s.span(p.Span)
	s.res(p.Res)
	s.h.WriteU64(uint64(len(p.Segments)))
}

func (s *hasher) qpath(q *QPath) {
	s.h.WriteU8(uint8(q.Kind))
	s.span(q.Span)
	s.path(q.Path)
}

func (s *hasher) generics(g *Generics) {
	if g == nil {
		s.h.WriteBool(false)
		return
	}
	s.h.WriteBool(true)
	s.span(g.Span)
	s.h.WriteBool(g.HasWhereClause)
	s.span(g.WhereSpan)
	s.h.WriteU64(uint64(len(g.Params)))
	for _, pred := range g.Predicates {
		s.h.WriteU8(uint8(pred.Kind))
		s.span(pred.Span)
		s.h.WriteU64(uint64(len(pred.Bounds)))
	}
}

func (s *hasher) bounds(bounds []*GenericBound) {
	s.h.WriteU64(uint64(len(bounds)))
	for _, b := range bounds {
		s.h.WriteU8(uint8(b.Kind))
		s.h.WriteU8(uint8(b.Modifier))
		s.span(b.Span)
		if b.Trait != nil {
			s.span(b.Trait.Span)
		}
	}
}

func (s *hasher) fnDecl(d *FnDecl) {
	s.h.WriteU64(uint64(len(d.Inputs)))
	s.h.WriteBool(d.Output.Ty != nil)
	s.span(d.Output.Span)
	s.h.WriteBool(d.CVariadic)
	s.h.WriteU8(uint8(d.ImplicitSelf))
}

func (s *hasher) genericArgs(a *GenericArgs) {
	s.h.WriteBool(a.Parenthesized)
	s.span(a.Span)
	s.h.WriteU64(uint64(len(a.Args)))
	for _, arg := range a.Args {
		s.h.WriteU8(uint8(arg.Kind))
	}
	s.h.WriteU64(uint64(len(a.Bindings)))
}

// node hashes the payload of n that is not itself a node. Child nodes are
// hashed when the walk reaches them.
func (s *hasher) node(n, parent Node) {
	s.h.WriteString(NodeKind(n))
	s.hirID(n.hirID())
	if parent != nil {
		s.h.WriteU32(uint32(parent.hirID().Local))
	}
	switch n := n.(type) {
	case *Item:
		s.itemPayload(n)
	case *Ty:
		s.tyPayload(n)
	case *Lifetime:
		s.span(n.Span)
		s.h.WriteU8(uint8(n.Name.Kind))
		s.paramName(n.Name.Param)
	case *GenericParam:
		s.def(n.DefID)
		s.paramName(n.Name)
		s.span(n.Span)
		s.h.WriteU8(uint8(n.Kind))
		s.h.WriteU8(uint8(n.LifetimeKind))
		s.h.WriteBool(n.Synthetic)
		s.bounds(n.Bounds)
	case *PathSegment:
		s.ident(n.Ident)
		s.res(n.Res)
		s.h.WriteBool(n.Args != nil)
		if n.Args != nil {
			s.genericArgs(n.Args)
		}
	case *TypeBinding:
		s.ident(n.Ident)
		s.h.WriteU8(uint8(n.Kind))
		s.span(n.Span)
		s.bounds(n.Bounds)
	case *TraitRef:
		s.path(n.Path)
	case *FieldDef:
		s.def(n.DefID)
		s.ident(n.Ident)
		s.h.WriteU8(uint8(n.Vis))
		s.span(n.Span)
	case *Param:
		s.span(n.Span)
	case *Pat:
		s.h.WriteU8(uint8(n.Kind))
		s.ident(n.Ident)
		s.h.WriteBool(n.ByRef)
		s.h.WriteBool(n.Mut)
		s.span(n.Span)
	case *AnonConst:
		s.def(n.DefID)
		s.hirID(n.Body.HirID)
	case *Expr:
		s.exprPayload(n)
	case *Block:
		s.span(n.Span)
		s.h.WriteU64(uint64(len(n.Stmts)))
		s.h.WriteBool(n.Expr != nil)
	case *Stmt:
		s.h.WriteU8(uint8(n.Kind))
		s.span(n.Span)
		if n.Kind == StmtItem {
			s.def(n.Item.Def)
		}
	case *Local:
		s.span(n.Span)
	}
}

func (s *hasher) itemPayload(it *Item) {
	s.def(it.DefID)
	s.ident(it.Ident)
	s.h.WriteU8(uint8(it.Kind))
	s.h.WriteU8(uint8(it.Vis))
	s.span(it.Span)
	switch d := it.Data.(type) {
	case *FnItem:
		s.h.WriteBool(d.Sig.Header.Async)
		s.h.WriteBool(d.Sig.Header.Unsafe)
		s.h.WriteBool(d.Sig.Header.Extern)
		s.span(d.Sig.Span)
		s.fnDecl(d.Sig.Decl)
		s.generics(d.Generics)
		s.hirID(d.Body.HirID)
	case *TyAliasItem:
		s.generics(d.Generics)
		s.bounds(d.Bounds)
	case *OpaqueTyItem:
		s.generics(d.Generics)
		s.bounds(d.Bounds)
		s.h.WriteU8(uint8(d.Origin))
		s.def(d.Fn)
	case *StructItem:
		s.generics(d.Generics)
		s.h.WriteBool(d.Tuple)
	case *ConstItem:
		s.hirID(d.Body.HirID)
	case *ModItem:
		s.span(d.Span)
		for _, id := range d.Items {
			s.def(id.Def)
		}
	case *ImplItem:
		s.generics(d.Generics)
		s.h.WriteBool(d.Unsafe)
		for _, id := range d.Items {
			s.def(id.Def)
		}
	case *TraitItem:
		s.generics(d.Generics)
		s.h.WriteBool(d.Unsafe)
		s.bounds(d.Bounds)
		for _, id := range d.Items {
			s.def(id.Def)
		}
	}
}

func (s *hasher) tyPayload(t *Ty) {
	s.h.WriteU8(uint8(t.Kind))
	s.span(t.Span)
	switch d := t.Data.(type) {
	case *PtrTy:
		s.h.WriteBool(d.Mut)
	case *RefTy:
		s.h.WriteBool(d.Mut)
	case *BareFnTy:
		s.h.WriteBool(d.Unsafe)
		s.h.WriteBool(d.Extern)
		s.fnDecl(d.Decl)
		for _, name := range d.ParamNames {
			s.ident(name)
		}
	case *TupTy:
		s.h.WriteU64(uint64(len(d.Elems)))
	case *PathTy:
		s.qpath(d.QPath)
	case *OpaqueDefTy:
		s.def(d.Item.Def)
		s.h.WriteU64(uint64(len(d.Args)))
	case *TraitObjectTy:
		s.h.WriteU8(uint8(d.Syntax))
		s.h.WriteU64(uint64(len(d.Bounds)))
	}
}

func (s *hasher) exprPayload(e *Expr) {
	s.h.WriteU8(uint8(e.Kind))
	s.span(e.Span)
	switch d := e.Data.(type) {
	case *LitExpr:
		s.h.WriteU8(uint8(d.Kind))
		s.h.WriteString(d.Text)
	case *PathExpr:
		s.qpath(d.QPath)
	case *CallExpr:
		s.h.WriteU64(uint64(len(d.Args)))
	case *UnaryExpr:
		s.h.WriteString(d.Op)
	case *BinaryExpr:
		s.h.WriteString(d.Op)
	case *FieldExpr:
		s.ident(d.Ident)
	case *ClosureExpr:
		s.def(d.Def)
		s.hirID(d.Body.HirID)
		s.h.WriteU8(uint8(d.Generator))
	case *TupExpr:
		s.h.WriteU64(uint64(len(d.Elems)))
	case *ArrayExpr:
		s.h.WriteU64(uint64(len(d.Elems)))
	}
}

// HashOwner computes the two content hashes of an owner: with nested bodies
// and without them.
func HashOwner(d *defs.Definitions, hy *source.Hygiene, root *Item, bodies []BodyEntry) (withBodies, withoutBodies fingerprint.Digest) {
	lookup := OwnerNodes{Bodies: bodies}
	full := newHasher(d, hy)
	Walk(root, Visitor{
		Node:   full.node,
		Nested: func(id ItemID, _ Node) { full.def(id.Def) },
		Body: func(id BodyID) *Body {
			b := lookup.Body(id.HirID.Local)
			if b != nil {
				full.h.WriteU8(uint8(b.Generator))
				full.h.WriteU64(uint64(len(b.Params)))
			}
			return b
		},
	})
	shallow := newHasher(d, hy)
	Walk(root, Visitor{
		Node:   shallow.node,
		Nested: func(id ItemID, _ Node) { shallow.def(id.Def) },
	})
	return full.h.Sum(), shallow.h.Sum()
}

// HashAttributes hashes an attribute map in local id order.
func HashAttributes(d *defs.Definitions, hy *source.Hygiene, attrs AttributeMap) fingerprint.Digest {
	s := newHasher(d, hy)
	keys := make([]ItemLocalID, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		s.h.WriteU32(uint32(k))
		list := attrs[k]
		s.h.WriteU64(uint64(len(list)))
		for _, a := range list {
			s.h.WriteU8(uint8(a.Style))
			s.h.WriteString(a.Name)
			s.h.WriteString(a.Args)
			s.h.WriteBool(a.Doc)
			s.span(a.Span)
		}
	}
	return s.h.Sum()
}

// HashCrate combines owner hashes in DefPathHash order, so the result does
// not depend on the order definitions were created in.
func HashCrate(d *defs.Definitions, c *Crate) fingerprint.Digest {
	type entry struct {
		path  fingerprint.Digest
		owner *OwnerInfo
	}
	var entries []entry
	for _, def := range c.OwnerDefs() {
		entries = append(entries, entry{path: d.PathHash(def), owner: c.Owner(def)})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return bytes.Compare(a.path[:], b.path[:])
	})
	s := fingerprint.New()
	s.WriteString(c.Name)
	for _, e := range entries {
		s.WriteDigest(e.path)
		s.WriteDigest(e.owner.Nodes.Hash)
		s.WriteDigest(e.owner.AttrHash)
	}
	return s.Sum()
}
