package lower

import (
	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/hir"
)

func (l *lowerer) lowerGenerics(g *ast.Generics, it implTraitContext) *hir.Generics {
	out := &hir.Generics{
		Params:         l.lowerGenericParams(g.Params, it.reborrow()),
		HasWhereClause: len(g.Where.Predicates) > 0,
		WhereSpan:      l.lowerSpan(g.Where.Span),
		Span:           l.lowerSpan(g.Span),
	}
	l.withMode(modeReportError, func() {
		for _, pred := range g.Where.Predicates {
			out.Predicates = append(out.Predicates, l.lowerWherePredicate(pred))
		}
	})
	return out
}

func (l *lowerer) lowerGenericParams(params []*ast.GenericParam, it implTraitContext) []*hir.GenericParam {
	out := make([]*hir.GenericParam, 0, len(params))
	for _, p := range params {
		out = append(out, l.lowerGenericParam(p, it.reborrow()))
	}
	return out
}

func (l *lowerer) lowerGenericParam(p *ast.GenericParam, it implTraitContext) *hir.GenericParam {
	out := &hir.GenericParam{
		HirID: l.lowerNodeID(p.ID),
		DefID: l.r.LocalDefID(p.ID),
		Name:  hir.ParamName{Kind: hir.ParamPlain, Ident: l.lowerIdent(p.Ident)},
		Span:  l.lowerSpan(p.Span),
	}
	l.lowerAttrs(out.HirID, p.Attrs)

	l.withMode(modeReportError, func() {
		out.Bounds = l.lowerBounds(p.Bounds, it.reborrow())
	})

	switch p.Kind {
	case ast.ParamLifetime:
		out.Kind = hir.ParamLifetimeKind
		out.LifetimeKind = hir.LifetimeParamExplicit
		if p.Ident.IsUnderscoreLifetime() {
			l.report(diag.LowUnderscoreLifetimeParam, p.Ident.Span, "`'_` cannot be used here")
			out.Name = hir.ParamName{Kind: hir.ParamError, Ident: out.Name.Ident}
			out.LifetimeKind = hir.LifetimeParamError
		}
	case ast.ParamType:
		out.Kind = hir.ParamTypeKind
		if p.Ty != nil {
			out.Default = l.lowerTy(p.Ty, disallowed())
		}
	case ast.ParamConst:
		out.Kind = hir.ParamConstKind
		l.withMode(modeReportError, func() {
			out.ConstTy = l.lowerTy(p.Ty, disallowed())
		})
		if p.ConstDefault != nil {
			out.ConstDefault = l.lowerAnonConst(p.ConstDefault)
		}
	}
	return out
}

func (l *lowerer) lowerWherePredicate(pred *ast.WherePredicate) *hir.WherePredicate {
	out := &hir.WherePredicate{Span: l.lowerSpan(pred.Span)}
	switch pred.Kind {
	case ast.WhereRegion:
		out.Kind = hir.WhereRegion
		out.Lifetime = l.lowerLifetime(&pred.Lifetime)
		out.Bounds = l.lowerBounds(pred.Bounds, disallowed())
	default:
		out.Kind = hir.WhereBound
		out.BoundGenericParams = l.lowerGenericParams(pred.BoundGenericParams, disallowed())
		out.BoundedTy = l.lowerTy(pred.BoundedTy, disallowed())
		out.Bounds = l.lowerBounds(pred.Bounds, disallowed())
	}
	return out
}
