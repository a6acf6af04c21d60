package resolve

import "ferrule/internal/ast"

// numberer hands out node ids to a freshly parsed crate in pre-order.
type numberer struct {
	t *Table
}

func (n numberer) id(dst *ast.NodeID) {
	*dst = n.t.NextNodeID()
}

func (n numberer) items(items []*ast.Item) {
	for _, it := range items {
		n.item(it)
	}
}

func (n numberer) item(it *ast.Item) {
	n.id(&it.ID)
	switch d := it.Data.(type) {
	case *ast.FnData:
		if d.Sig.Header.Async.IsAsync {
			n.id(&d.Sig.Header.Async.ClosureID)
			n.id(&d.Sig.Header.Async.ReturnID)
		}
		n.generics(&d.Generics)
		n.decl(d.Sig.Decl)
		if d.Body != nil {
			n.block(d.Body)
		}
	case *ast.TyAliasData:
		n.generics(&d.Generics)
		n.bounds(d.Bounds)
		n.ty(d.Ty)
	case *ast.StructData:
		n.generics(&d.Generics)
		for _, f := range d.Fields {
			n.id(&f.ID)
			n.ty(f.Ty)
		}
	case *ast.ConstData:
		n.ty(d.Ty)
		n.expr(d.Expr)
	case *ast.ModData:
		n.items(d.Items)
	case *ast.ImplData:
		n.generics(&d.Generics)
		if d.OfTrait != nil {
			n.traitRef(d.OfTrait)
		}
		n.ty(d.SelfTy)
		n.items(d.Items)
	case *ast.TraitData:
		n.generics(&d.Generics)
		n.bounds(d.Bounds)
		n.items(d.Items)
	}
}

func (n numberer) generics(g *ast.Generics) {
	n.params(g.Params)
	for _, pred := range g.Where.Predicates {
		n.id(&pred.ID)
		n.params(pred.BoundGenericParams)
		switch pred.Kind {
		case ast.WhereBound:
			n.ty(pred.BoundedTy)
		case ast.WhereRegion:
			n.id(&pred.Lifetime.ID)
		}
		n.bounds(pred.Bounds)
	}
}

func (n numberer) params(params []*ast.GenericParam) {
	for _, p := range params {
		n.id(&p.ID)
		n.bounds(p.Bounds)
		n.ty(p.Ty)
		if p.ConstDefault != nil {
			n.anonConst(p.ConstDefault)
		}
	}
}

func (n numberer) bounds(bounds []*ast.GenericBound) {
	for _, b := range bounds {
		switch b.Kind {
		case ast.BoundTrait:
			n.params(b.Trait.BoundGenericParams)
			n.traitRef(&b.Trait.TraitRef)
		case ast.BoundOutlives:
			n.id(&b.Lifetime.ID)
		}
	}
}

func (n numberer) traitRef(tr *ast.TraitRef) {
	n.id(&tr.RefID)
	n.path(tr.Path)
}

func (n numberer) path(p *ast.Path) {
	if p == nil {
		return
	}
	for _, seg := range p.Segments {
		n.id(&seg.ID)
		if seg.Args != nil {
			n.args(seg.Args)
		}
	}
}

func (n numberer) args(a *ast.GenericArgs) {
	switch a.Kind {
	case ast.ArgsAngleBracketed:
		for _, arg := range a.Args {
			switch arg.Kind {
			case ast.ArgLifetime:
				n.id(&arg.Lifetime.ID)
			case ast.ArgType:
				n.ty(arg.Ty)
			case ast.ArgConst:
				n.anonConst(arg.Const)
			}
		}
		for _, c := range a.Constraints {
			n.id(&c.ID)
			if c.GenArgs != nil {
				n.args(c.GenArgs)
			}
			n.ty(c.Ty)
			n.bounds(c.Bounds)
		}
	case ast.ArgsParenthesized:
		for _, in := range a.Inputs {
			n.ty(in)
		}
		n.ty(a.Output.Ty)
	}
}

func (n numberer) decl(d *ast.FnDecl) {
	if d == nil {
		return
	}
	for _, p := range d.Inputs {
		n.id(&p.ID)
		n.pat(p.Pat)
		n.ty(p.Ty)
	}
	n.ty(d.Output.Ty)
}

func (n numberer) ty(t *ast.Ty) {
	if t == nil {
		return
	}
	n.id(&t.ID)
	switch d := t.Data.(type) {
	case *ast.SliceTy:
		n.ty(d.Elem)
	case *ast.ArrayTy:
		n.ty(d.Elem)
		n.anonConst(d.Len)
	case *ast.PtrTy:
		n.ty(d.Elem)
	case *ast.RefTy:
		if d.Lifetime != nil {
			n.id(&d.Lifetime.ID)
		}
		n.ty(d.Elem)
	case *ast.BareFnTy:
		n.params(d.GenericParams)
		n.decl(d.Decl)
	case *ast.TupTy:
		for _, e := range d.Elems {
			n.ty(e)
		}
	case *ast.PathTy:
		n.path(d.Path)
	case *ast.TraitObjectTy:
		n.bounds(d.Bounds)
	case *ast.ImplTraitTy:
		n.id(&d.DefID)
		n.bounds(d.Bounds)
	case *ast.ParenTy:
		n.ty(d.Inner)
	}
}

func (n numberer) anonConst(c *ast.AnonConst) {
	if c == nil {
		return
	}
	n.id(&c.ID)
	n.expr(c.Value)
}

func (n numberer) pat(p *ast.Pat) {
	if p == nil {
		return
	}
	n.id(&p.ID)
	for _, e := range p.Elems {
		n.pat(e)
	}
}

func (n numberer) block(b *ast.Block) {
	if b == nil {
		return
	}
	n.id(&b.ID)
	for _, s := range b.Stmts {
		n.id(&s.ID)
		switch s.Kind {
		case ast.StmtLet:
			l := s.Local
			n.id(&l.ID)
			n.pat(l.Pat)
			n.ty(l.Ty)
			n.expr(l.Init)
		case ast.StmtItem:
			n.item(s.Item)
		case ast.StmtExpr, ast.StmtSemi:
			n.expr(s.Expr)
		}
	}
}

func (n numberer) expr(e *ast.Expr) {
	if e == nil {
		return
	}
	n.id(&e.ID)
	switch d := e.Data.(type) {
	case *ast.PathExpr:
		n.path(d.Path)
	case *ast.CallExpr:
		n.expr(d.Callee)
		for _, a := range d.Args {
			n.expr(a)
		}
	case *ast.UnaryExpr:
		n.expr(d.X)
	case *ast.BinaryExpr:
		n.expr(d.X)
		n.expr(d.Y)
	case *ast.FieldExpr:
		n.expr(d.X)
	case *ast.BlockExpr:
		n.block(d.Block)
	case *ast.AsyncExpr:
		n.id(&d.ClosureID)
		n.block(d.Block)
	case *ast.AwaitExpr:
		n.expr(d.X)
	case *ast.CastExpr:
		n.expr(d.X)
		n.ty(d.Ty)
	case *ast.ReturnExpr:
		n.expr(d.X)
	case *ast.TupExpr:
		for _, x := range d.Elems {
			n.expr(x)
		}
	case *ast.ArrayExpr:
		for _, x := range d.Elems {
			n.expr(x)
		}
	case *ast.RepeatExpr:
		n.expr(d.Elem)
		n.anonConst(d.Count)
	}
}
