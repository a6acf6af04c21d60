package hir

// Visitor receives the nodes of one owner in pre-order together with their
// parent node. Nested owners are reported through Nested and never entered.
type Visitor struct {
	Node   func(n, parent Node)
	Nested func(item ItemID, parent Node)
	// Body resolves body references. A nil func, or a nil result, skips the body.
	Body func(id BodyID) *Body
}

// Walk visits root and everything it owns.
func Walk(root *Item, v Visitor) {
	w := walker{v: v}
	w.node(root, nil)
	w.itemChildren(root)
}

type walker struct {
	v Visitor
}

func (w walker) node(n, parent Node) {
	if w.v.Node != nil {
		w.v.Node(n, parent)
	}
}

func (w walker) nested(id ItemID, parent Node) {
	if w.v.Nested != nil {
		w.v.Nested(id, parent)
	}
}

func (w walker) body(id BodyID, parent Node) {
	if w.v.Body == nil || !id.IsValid() {
		return
	}
	b := w.v.Body(id)
	if b == nil {
		return
	}
	for _, p := range b.Params {
		w.node(p, parent)
		w.pat(p.Pat, p)
	}
	w.expr(b.Value, parent)
}

func (w walker) itemChildren(it *Item) {
	switch d := it.Data.(type) {
	case *FnItem:
		w.generics(d.Generics, it)
		w.fnDecl(d.Sig.Decl, it)
		w.body(d.Body, it)
	case *TyAliasItem:
		w.generics(d.Generics, it)
		w.bounds(d.Bounds, it)
		w.ty(d.Ty, it)
	case *OpaqueTyItem:
		w.generics(d.Generics, it)
		w.bounds(d.Bounds, it)
	case *StructItem:
		w.generics(d.Generics, it)
		for _, f := range d.Fields {
			w.node(f, it)
			w.ty(f.Ty, f)
		}
	case *ConstItem:
		w.ty(d.Ty, it)
		w.body(d.Body, it)
	case *ModItem:
		for _, id := range d.Items {
			w.nested(id, it)
		}
	case *ImplItem:
		w.generics(d.Generics, it)
		if d.OfTrait != nil {
			w.traitRef(d.OfTrait, it)
		}
		w.ty(d.SelfTy, it)
		for _, id := range d.Items {
			w.nested(id, it)
		}
	case *TraitItem:
		w.generics(d.Generics, it)
		w.bounds(d.Bounds, it)
		for _, id := range d.Items {
			w.nested(id, it)
		}
	}
}

func (w walker) generics(g *Generics, parent Node) {
	if g == nil {
		return
	}
	w.genericParams(g.Params, parent)
	for _, pred := range g.Predicates {
		w.genericParams(pred.BoundGenericParams, parent)
		w.ty(pred.BoundedTy, parent)
		w.lifetime(pred.Lifetime, parent)
		w.bounds(pred.Bounds, parent)
	}
}

func (w walker) genericParams(params []*GenericParam, parent Node) {
	for _, p := range params {
		w.node(p, parent)
		w.bounds(p.Bounds, p)
		w.ty(p.Default, p)
		w.ty(p.ConstTy, p)
		if p.ConstDefault != nil {
			w.anonConst(p.ConstDefault, p)
		}
	}
}

func (w walker) bounds(bounds []*GenericBound, parent Node) {
	for _, b := range bounds {
		switch b.Kind {
		case BoundTrait:
			w.polyTraitRef(b.Trait, parent)
		case BoundOutlives:
			w.lifetime(b.Lifetime, parent)
		}
	}
}

func (w walker) polyTraitRef(p *PolyTraitRef, parent Node) {
	w.genericParams(p.BoundGenericParams, parent)
	w.traitRef(&p.TraitRef, parent)
}

func (w walker) traitRef(tr *TraitRef, parent Node) {
	w.node(tr, parent)
	w.path(tr.Path, tr)
}

func (w walker) lifetime(l *Lifetime, parent Node) {
	if l != nil {
		w.node(l, parent)
	}
}

func (w walker) fnDecl(d *FnDecl, parent Node) {
	if d == nil {
		return
	}
	for _, in := range d.Inputs {
		w.ty(in, parent)
	}
	w.ty(d.Output.Ty, parent)
}

func (w walker) qpath(q *QPath, parent Node) {
	switch q.Kind {
	case QPathResolved:
		w.path(q.Path, parent)
	case QPathTypeRelative:
		w.ty(q.SelfTy, parent)
		w.segment(q.Segment, parent)
	}
}

func (w walker) path(p *Path, parent Node) {
	if p == nil {
		return
	}
	for _, seg := range p.Segments {
		w.segment(seg, parent)
	}
}

func (w walker) segment(seg *PathSegment, parent Node) {
	w.node(seg, parent)
	if seg.Args != nil {
		w.genericArgs(seg.Args, seg)
	}
}

func (w walker) genericArgs(a *GenericArgs, parent Node) {
	for _, arg := range a.Args {
		w.genericArg(arg, parent)
	}
	for _, b := range a.Bindings {
		w.node(b, parent)
		if b.GenArgs != nil {
			w.genericArgs(b.GenArgs, b)
		}
		w.ty(b.Ty, b)
		w.bounds(b.Bounds, b)
	}
}

func (w walker) genericArg(arg *GenericArg, parent Node) {
	switch arg.Kind {
	case ArgLifetime:
		w.lifetime(arg.Lifetime, parent)
	case ArgType:
		w.ty(arg.Ty, parent)
	case ArgConst:
		w.anonConst(arg.Const, parent)
	}
}

func (w walker) ty(t *Ty, parent Node) {
	if t == nil {
		return
	}
	w.node(t, parent)
	switch d := t.Data.(type) {
	case *SliceTy:
		w.ty(d.Elem, t)
	case *ArrayTy:
		w.ty(d.Elem, t)
		w.anonConst(d.Len, t)
	case *PtrTy:
		w.ty(d.Elem, t)
	case *RefTy:
		w.lifetime(d.Lifetime, t)
		w.ty(d.Elem, t)
	case *BareFnTy:
		w.genericParams(d.GenericParams, t)
		w.fnDecl(d.Decl, t)
	case *TupTy:
		for _, e := range d.Elems {
			w.ty(e, t)
		}
	case *PathTy:
		w.qpath(d.QPath, t)
	case *OpaqueDefTy:
		w.nested(d.Item, t)
		for _, arg := range d.Args {
			w.genericArg(arg, t)
		}
	case *TraitObjectTy:
		for _, b := range d.Bounds {
			w.polyTraitRef(b, t)
		}
		w.lifetime(d.Lifetime, t)
	}
}

func (w walker) anonConst(c *AnonConst, parent Node) {
	if c == nil {
		return
	}
	w.node(c, parent)
	w.body(c.Body, c)
}

func (w walker) pat(p *Pat, parent Node) {
	if p == nil {
		return
	}
	w.node(p, parent)
	for _, e := range p.Elems {
		w.pat(e, p)
	}
}

func (w walker) expr(e *Expr, parent Node) {
	if e == nil {
		return
	}
	w.node(e, parent)
	switch d := e.Data.(type) {
	case *PathExpr:
		w.qpath(d.QPath, e)
	case *CallExpr:
		w.expr(d.Callee, e)
		for _, a := range d.Args {
			w.expr(a, e)
		}
	case *UnaryExpr:
		w.expr(d.X, e)
	case *BinaryExpr:
		w.expr(d.X, e)
		w.expr(d.Y, e)
	case *FieldExpr:
		w.expr(d.X, e)
	case *BlockExpr:
		w.block(d.Block, e)
	case *ClosureExpr:
		w.body(d.Body, e)
	case *AwaitExpr:
		w.expr(d.X, e)
	case *CastExpr:
		w.expr(d.X, e)
		w.ty(d.Ty, e)
	case *RetExpr:
		w.expr(d.X, e)
	case *TupExpr:
		for _, x := range d.Elems {
			w.expr(x, e)
		}
	case *ArrayExpr:
		for _, x := range d.Elems {
			w.expr(x, e)
		}
	case *RepeatExpr:
		w.expr(d.Elem, e)
		w.anonConst(d.Count, e)
	}
}

func (w walker) block(b *Block, parent Node) {
	if b == nil {
		return
	}
	w.node(b, parent)
	for _, s := range b.Stmts {
		w.node(s, b)
		switch s.Kind {
		case StmtLocal:
			l := s.Local
			w.node(l, s)
			w.pat(l.Pat, l)
			w.ty(l.Ty, l)
			w.expr(l.Init, l)
		case StmtItem:
			w.nested(s.Item, s)
		case StmtExpr, StmtSemi:
			w.expr(s.Expr, s)
		}
	}
	w.expr(b.Expr, b)
}
