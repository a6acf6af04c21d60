package lower

import (
	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/hir"
)

func (l *lowerer) lowerExprs(es []*ast.Expr) []*hir.Expr {
	out := make([]*hir.Expr, 0, len(es))
	for _, e := range es {
		out = append(out, l.lowerExpr(e))
	}
	return out
}

func (l *lowerer) lowerExpr(e *ast.Expr) *hir.Expr {
	if e == nil {
		return nil
	}
	// An async block is replaced by its generator closure; the closure node
	// stands in for the expression.
	if d, ok := e.Data.(*ast.AsyncExpr); ok {
		closure := l.asyncClosure(d.ClosureID, d.Block, hir.GenAsyncBlock)
		l.lowerAttrs(closure.HirID, e.Attrs)
		return closure
	}

	out := &hir.Expr{HirID: l.lowerNodeID(e.ID), Span: l.lowerSpan(e.Span)}
	l.lowerAttrs(out.HirID, e.Attrs)

	switch d := e.Data.(type) {
	case *ast.LitExpr:
		out.Kind = hir.ExprLit
		out.Data = &hir.LitExpr{Kind: d.Kind, Text: d.Text}
	case *ast.PathExpr:
		out.Kind = hir.ExprPath
		out.Data = &hir.PathExpr{QPath: l.lowerQPath(e.ID, d.Path, disallowed())}
	case *ast.CallExpr:
		out.Kind = hir.ExprCall
		callee := l.lowerExpr(d.Callee)
		out.Data = &hir.CallExpr{Callee: callee, Args: l.lowerExprs(d.Args)}
	case *ast.UnaryExpr:
		out.Kind = hir.ExprUnary
		out.Data = &hir.UnaryExpr{Op: d.Op, X: l.lowerExpr(d.X)}
	case *ast.BinaryExpr:
		out.Kind = hir.ExprBinary
		x := l.lowerExpr(d.X)
		out.Data = &hir.BinaryExpr{Op: d.Op, X: x, Y: l.lowerExpr(d.Y)}
	case *ast.FieldExpr:
		out.Kind = hir.ExprField
		out.Data = &hir.FieldExpr{X: l.lowerExpr(d.X), Ident: l.lowerIdent(d.Ident)}
	case *ast.BlockExpr:
		out.Kind = hir.ExprBlock
		out.Data = &hir.BlockExpr{Block: l.lowerBlock(d.Block)}
	case *ast.AwaitExpr:
		if l.generator == hir.GenNone {
			l.report(diag.LowAwaitOutsideAsync, e.Span, "`await` is only allowed inside `async` functions and blocks")
			// The operand is dropped with the expression.
			out.Kind = hir.ExprErr
			return out
		}
		out.Kind = hir.ExprAwait
		out.Data = &hir.AwaitExpr{X: l.lowerExpr(d.X)}
	case *ast.CastExpr:
		out.Kind = hir.ExprCast
		x := l.lowerExpr(d.X)
		out.Data = &hir.CastExpr{X: x, Ty: l.lowerTy(d.Ty, disallowed())}
	case *ast.ReturnExpr:
		out.Kind = hir.ExprRet
		out.Data = &hir.RetExpr{X: l.lowerExpr(d.X)}
	case *ast.TupExpr:
		out.Kind = hir.ExprTup
		out.Data = &hir.TupExpr{Elems: l.lowerExprs(d.Elems)}
	case *ast.ArrayExpr:
		out.Kind = hir.ExprArray
		out.Data = &hir.ArrayExpr{Elems: l.lowerExprs(d.Elems)}
	case *ast.RepeatExpr:
		out.Kind = hir.ExprRepeat
		elem := l.lowerExpr(d.Elem)
		out.Data = &hir.RepeatExpr{Elem: elem, Count: l.lowerAnonConst(d.Count)}
	default:
		out.Kind = hir.ExprErr
	}
	return out
}

// lowerBlockExpr wraps a block in an expression with a synthesized id.
func (l *lowerer) lowerBlockExpr(b *ast.Block) *hir.Expr {
	id := l.nextID()
	block := l.lowerBlock(b)
	return &hir.Expr{HirID: id, Kind: hir.ExprBlock, Span: block.Span, Data: &hir.BlockExpr{Block: block}}
}

func (l *lowerer) lowerBlock(b *ast.Block) *hir.Block {
	out := &hir.Block{HirID: l.lowerNodeID(b.ID), Span: l.lowerSpan(b.Span)}
	for i, s := range b.Stmts {
		switch s.Kind {
		case ast.StmtEmpty:
			continue
		case ast.StmtExpr:
			if i == len(b.Stmts)-1 {
				out.Expr = l.lowerExpr(s.Expr)
				continue
			}
		}
		out.Stmts = append(out.Stmts, l.lowerStmt(s))
	}
	return out
}

func (l *lowerer) lowerStmt(s *ast.Stmt) *hir.Stmt {
	out := &hir.Stmt{HirID: l.lowerNodeID(s.ID), Span: l.lowerSpan(s.Span)}
	switch s.Kind {
	case ast.StmtLet:
		out.Kind = hir.StmtLocal
		out.Local = l.lowerLocal(s.Local)
	case ast.StmtItem:
		out.Kind = hir.StmtItem
		out.Item = l.lowerItem(s.Item)
	case ast.StmtSemi:
		out.Kind = hir.StmtSemi
		out.Expr = l.lowerExpr(s.Expr)
	default:
		out.Kind = hir.StmtExpr
		out.Expr = l.lowerExpr(s.Expr)
	}
	return out
}

// lowerLocal lowers the initializer before the pattern: the binding is not
// in scope in its own initializer.
func (l *lowerer) lowerLocal(loc *ast.Local) *hir.Local {
	out := &hir.Local{HirID: l.lowerNodeID(loc.ID), Span: l.lowerSpan(loc.Span)}
	l.lowerAttrs(out.HirID, loc.Attrs)
	out.Ty = l.lowerTy(loc.Ty, disallowedIn(posBinding))
	out.Init = l.lowerExpr(loc.Init)
	out.Pat = l.lowerPat(loc.Pat)
	return out
}

func (l *lowerer) lowerPat(p *ast.Pat) *hir.Pat {
	if p == nil {
		return nil
	}
	out := &hir.Pat{
		HirID: l.lowerNodeID(p.ID),
		Ident: l.lowerIdent(p.Ident),
		ByRef: p.ByRef,
		Mut:   p.Mut,
		Span:  l.lowerSpan(p.Span),
	}
	switch p.Kind {
	case ast.PatIdent:
		out.Kind = hir.PatBinding
	case ast.PatTuple:
		out.Kind = hir.PatTuple
		for _, e := range p.Elems {
			out.Elems = append(out.Elems, l.lowerPat(e))
		}
	default:
		out.Kind = hir.PatWild
	}
	return out
}
