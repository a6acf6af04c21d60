package lower

import (
	"github.com/hashicorp/go-set/v3"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/diag"
	"ferrule/internal/hir"
	"ferrule/internal/resolve"
	"ferrule/internal/source"
)

func (l *lowerer) partialRes(node ast.NodeID) resolve.PartialRes {
	pr, ok := l.r.PartialRes(node)
	if !ok {
		return resolve.PartialRes{Base: resolve.ErrRes}
	}
	return pr
}

// lowerQPath lowers a path whose resolution was recorded on node. Segments
// the resolver left unresolved become nested type-relative paths:
// `T::A::B` is `<<T>::A>::B`.
func (l *lowerer) lowerQPath(node ast.NodeID, p *ast.Path, it implTraitContext) *hir.QPath {
	pr := l.partialRes(node)
	unresolved := pr.UnresolvedSegments
	if unresolved < 0 || unresolved >= len(p.Segments) {
		unresolved = 0
	}
	projStart := len(p.Segments) - unresolved
	res := l.lowerRes(pr.Base)

	path := &hir.Path{Span: l.lowerSpan(p.Span), Res: res}
	for i, seg := range p.Segments[:projStart] {
		segRes := hir.ErrRes
		if i == projStart-1 {
			segRes = res
		}
		path.Segments = append(path.Segments, l.lowerPathSegment(seg, segRes, it.reborrow()))
	}
	if unresolved == 0 {
		return &hir.QPath{Kind: hir.QPathResolved, Path: path, Span: path.Span}
	}

	// The resolved prefix is the self type of the first projection.
	ty := &hir.Ty{
		HirID: l.nextID(),
		Kind:  hir.TyPath,
		Span:  path.Span,
		Data:  &hir.PathTy{QPath: &hir.QPath{Kind: hir.QPathResolved, Path: path, Span: path.Span}},
	}
	for i, seg := range p.Segments[projStart:] {
		qpath := &hir.QPath{
			Kind:    hir.QPathTypeRelative,
			SelfTy:  ty,
			Segment: l.lowerPathSegment(seg, hir.ErrRes, it.reborrow()),
			Span:    l.lowerSpan(p.Span),
		}
		if projStart+i == len(p.Segments)-1 {
			return qpath
		}
		ty = &hir.Ty{HirID: l.nextID(), Kind: hir.TyPath, Span: qpath.Span, Data: &hir.PathTy{QPath: qpath}}
	}
	panic("unreachable")
}

// lowerPath lowers a path that must resolve completely, such as the path
// of a trait reference.
func (l *lowerer) lowerPath(node ast.NodeID, p *ast.Path, it implTraitContext) *hir.Path {
	pr := l.partialRes(node)
	res := hir.ErrRes
	if full, ok := pr.Full(); ok {
		res = l.lowerRes(full)
	}
	path := &hir.Path{Span: l.lowerSpan(p.Span), Res: res}
	for i, seg := range p.Segments {
		segRes := hir.ErrRes
		if i == len(p.Segments)-1 {
			segRes = res
		}
		path.Segments = append(path.Segments, l.lowerPathSegment(seg, segRes, it.reborrow()))
	}
	return path
}

func (l *lowerer) lowerPathSegment(seg *ast.PathSegment, res hir.Res, it implTraitContext) *hir.PathSegment {
	out := &hir.PathSegment{HirID: l.lowerNodeID(seg.ID), Ident: l.lowerIdent(seg.Ident), Res: res}
	if seg.Args != nil {
		switch seg.Args.Kind {
		case ast.ArgsParenthesized:
			out.Args = l.lowerParenthesizedArgs(seg.Args)
		default:
			out.Args = l.lowerAngleBracketedArgs(seg.Args, it)
		}
	}
	return out
}

func (l *lowerer) lowerAngleBracketedArgs(a *ast.GenericArgs, it implTraitContext) *hir.GenericArgs {
	out := &hir.GenericArgs{Span: l.lowerSpan(a.Span)}
	for _, arg := range a.Args {
		out.Args = append(out.Args, l.lowerGenericArg(arg, it.reborrow()))
	}
	for _, c := range a.Constraints {
		out.Bindings = append(out.Bindings, l.lowerAssocConstraint(c, it.reborrow()))
	}
	return out
}

// lowerParenthesizedArgs turns `Fn(A, B) -> C` sugar into `Fn<(A, B), Output = C>`.
// Regions inside are never turned into parameters, and `impl Trait` is not
// allowed in them.
func (l *lowerer) lowerParenthesizedArgs(a *ast.GenericArgs) *hir.GenericArgs {
	var out *hir.GenericArgs
	l.withMode(modePassThrough, func() {
		span := l.lowerSpan(a.Span)
		inputs := make([]*hir.Ty, 0, len(a.Inputs))
		for _, in := range a.Inputs {
			inputs = append(inputs, l.lowerTy(in, disallowed()))
		}
		tup := &hir.Ty{HirID: l.nextID(), Kind: hir.TyTup, Span: span, Data: &hir.TupTy{Elems: inputs}}
		var output *hir.Ty
		if a.Output.Ty != nil {
			output = l.lowerTy(a.Output.Ty, disallowed())
		} else {
			output = l.unitTy(a.Output.Span)
		}
		out = &hir.GenericArgs{
			Args: []*hir.GenericArg{{Kind: hir.ArgType, Ty: tup}},
			Bindings: []*hir.TypeBinding{{
				HirID: l.nextID(),
				Ident: hir.Ident{Name: "Output", Span: output.Span},
				Kind:  hir.BindingEquality,
				Ty:    output,
				Span:  output.Span,
			}},
			Parenthesized: true,
			Span:          span,
		}
	})
	return out
}

func (l *lowerer) lowerGenericArg(arg *ast.GenericArg, it implTraitContext) *hir.GenericArg {
	switch arg.Kind {
	case ast.ArgLifetime:
		return &hir.GenericArg{Kind: hir.ArgLifetime, Lifetime: l.lowerLifetime(&arg.Lifetime)}
	case ast.ArgConst:
		return &hir.GenericArg{Kind: hir.ArgConst, Const: l.lowerAnonConst(arg.Const)}
	}
	if ct := l.constArgFromTy(arg.Ty); ct != nil {
		return &hir.GenericArg{Kind: hir.ArgConst, Const: ct}
	}
	return &hir.GenericArg{Kind: hir.ArgType, Ty: l.lowerTy(arg.Ty, it)}
}

// constArgFromTy handles `Foo<N>` where the parser could not tell that N is
// a value. When the resolver found N in the value namespace, the argument
// is a constant whose body is the path N.
func (l *lowerer) constArgFromTy(t *ast.Ty) *hir.AnonConst {
	d, ok := t.Data.(*ast.PathTy)
	if !ok {
		return nil
	}
	pr, ok := l.r.PartialRes(t.ID)
	if !ok {
		return nil
	}
	res, full := pr.Full()
	if !full || res.Kind != resolve.ResDef || !res.DefKind.InValueNs() {
		return nil
	}

	node := l.r.NextNodeID()
	l.r.CreateDef(l.cur.def, node, defs.AnonConst, source.RootContext, t.Span)
	pathExpr := &ast.Expr{ID: t.ID, Kind: ast.ExprPath, Span: t.Span, Data: &ast.PathExpr{Path: d.Path}}
	return l.lowerAnonConst(&ast.AnonConst{ID: node, Value: pathExpr})
}

// lowerAssocConstraint lowers `Item = T` and `Item: Bounds`. Where a fresh
// opaque type is possible, `Item: Bounds` is rewritten to
// `Item = impl Bounds`.
func (l *lowerer) lowerAssocConstraint(c *ast.AssocConstraint, it implTraitContext) *hir.TypeBinding {
	b := &hir.TypeBinding{HirID: l.lowerNodeID(c.ID), Ident: l.lowerIdent(c.Ident), Span: l.lowerSpan(c.Span)}
	if c.GenArgs != nil {
		if c.GenArgs.Kind == ast.ArgsParenthesized {
			l.report(diag.LowParenthesizedAssocArgs, c.GenArgs.Span,
				"parenthesized generic arguments cannot be used in associated type constraints")
			args := &hir.GenericArgs{Span: l.lowerSpan(c.GenArgs.Span)}
			for _, in := range c.GenArgs.Inputs {
				args.Args = append(args.Args, &hir.GenericArg{Kind: hir.ArgType, Ty: l.lowerTy(in, it.reborrow())})
			}
			b.GenArgs = args
		} else {
			b.GenArgs = l.lowerAngleBracketedArgs(c.GenArgs, it.reborrow())
		}
	}

	if c.Kind == ast.ConstraintEquality {
		b.Kind = hir.BindingEquality
		b.Ty = l.lowerTy(c.Ty, it)
		return b
	}

	parent := l.cur.def
	desugar := false
	switch {
	case it.kind == itReturnOpaque || it.kind == itAliasOpaque:
		desugar = true
	case it.kind == itUniversal && l.inDynType:
		parent = it.parent
		desugar = true
	case it.kind == itDisallowed && l.inDynType:
		it = aliasOpaque(set.New[string](0))
		desugar = true
	}
	if !desugar {
		b.Kind = hir.BindingConstraint
		b.Bounds = l.lowerBounds(c.Bounds, it)
		return b
	}

	implNode := l.r.NextNodeID()
	l.r.CreateDef(parent, implNode, defs.ImplTrait, source.RootContext, c.Span)
	b.Kind = hir.BindingEquality
	l.withDynScope(false, func() {
		synth := &ast.Ty{
			ID:   l.r.NextNodeID(),
			Kind: ast.TyImplTrait,
			Span: c.Span,
			Data: &ast.ImplTraitTy{DefID: implNode, Bounds: c.Bounds},
		}
		b.Ty = l.lowerTy(synth, it)
	})
	return b
}
