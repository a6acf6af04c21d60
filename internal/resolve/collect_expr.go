package resolve

import (
	"ferrule/internal/ast"
	"ferrule/internal/defs"
)

func (c *Collector) resolveExpr(e *ast.Expr) {
	if e == nil {
		return
	}
	switch d := e.Data.(type) {
	case *ast.PathExpr:
		c.resolvePath(d.Path, nsValue, e.ID)
	case *ast.CallExpr:
		c.resolveExpr(d.Callee)
		c.resolveExprs(d.Args)
	case *ast.UnaryExpr:
		c.resolveExpr(d.X)
	case *ast.BinaryExpr:
		c.resolveExpr(d.X)
		c.resolveExpr(d.Y)
	case *ast.FieldExpr:
		c.resolveExpr(d.X)
	case *ast.BlockExpr:
		c.resolveBlock(d.Block)
	case *ast.AsyncExpr:
		def := c.createDef(d.ClosureID, defs.ClosureExpr, e.Span)
		c.withParent(def, func() { c.resolveBlock(d.Block) })
	case *ast.AwaitExpr:
		c.resolveExpr(d.X)
	case *ast.CastExpr:
		c.resolveExpr(d.X)
		c.resolveTy(d.Ty)
	case *ast.ReturnExpr:
		c.resolveExpr(d.X)
	case *ast.TupExpr:
		c.resolveExprs(d.Elems)
	case *ast.ArrayExpr:
		c.resolveExprs(d.Elems)
	case *ast.RepeatExpr:
		c.resolveExpr(d.Elem)
		c.resolveAnonConst(d.Count)
	}
}

func (c *Collector) resolveExprs(es []*ast.Expr) {
	for _, e := range es {
		c.resolveExpr(e)
	}
}

// resolveBlock declares the block's items up front, then walks statements
// in order so a `let` is visible only after itself.
func (c *Collector) resolveBlock(b *ast.Block) {
	if b == nil {
		return
	}
	r := c.pushRib()
	defer c.popRib()
	sc := scope{types: r.types, values: r.values, items: r.items}
	for _, s := range b.Stmts {
		if s.Kind == ast.StmtItem {
			c.declareItem(s.Item, sc, nil)
		}
	}
	for _, s := range b.Stmts {
		switch s.Kind {
		case ast.StmtLet:
			l := s.Local
			c.resolveTy(l.Ty)
			c.resolveExpr(l.Init)
			c.bindPat(l.Pat)
		case ast.StmtItem:
			restore := c.enterItem()
			c.resolveItem(s.Item)
			restore()
		case ast.StmtExpr, ast.StmtSemi:
			c.resolveExpr(s.Expr)
		}
	}
}

// bindPat introduces the bindings of p into the innermost rib.
func (c *Collector) bindPat(p *ast.Pat) {
	if p == nil {
		return
	}
	switch p.Kind {
	case ast.PatIdent:
		r := c.ribs[len(c.ribs)-1]
		r.values[p.Ident.Name] = LocalRes(p.ID)
		r.items.Remove(p.Ident.Name)
	case ast.PatTuple:
		for _, e := range p.Elems {
			c.bindPat(e)
		}
	}
}
