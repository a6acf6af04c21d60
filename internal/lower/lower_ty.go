package lower

import (
	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/hir"
	"ferrule/internal/source"
)

func (l *lowerer) lowerTy(t *ast.Ty, it implTraitContext) *hir.Ty {
	if t == nil {
		return nil
	}
	switch d := t.Data.(type) {
	case *ast.SliceTy:
		return l.mkTy(t, hir.TySlice, &hir.SliceTy{Elem: l.lowerTy(d.Elem, it.reborrow())})
	case *ast.ArrayTy:
		ty := l.mkTy(t, hir.TyArray, nil)
		ty.Data = &hir.ArrayTy{Elem: l.lowerTy(d.Elem, it.reborrow()), Len: l.lowerAnonConst(d.Len)}
		return ty
	case *ast.PtrTy:
		return l.mkTy(t, hir.TyPtr, &hir.PtrTy{Mut: d.Mut, Elem: l.lowerTy(d.Elem, it.reborrow())})
	case *ast.RefTy:
		var lt *hir.Lifetime
		if d.Lifetime != nil {
			lt = l.lowerLifetime(d.Lifetime)
		} else {
			lt = l.elidedRefLifetime(t)
		}
		ty := l.mkTy(t, hir.TyRef, nil)
		ty.Data = &hir.RefTy{Lifetime: lt, Mut: d.Mut, Elem: l.lowerTy(d.Elem, it.reborrow())}
		return ty
	case *ast.BareFnTy:
		return l.lowerBareFnTy(t, d)
	case *ast.TupTy:
		ty := l.mkTy(t, hir.TyTup, nil)
		elems := make([]*hir.Ty, 0, len(d.Elems))
		for _, e := range d.Elems {
			elems = append(elems, l.lowerTy(e, it.reborrow()))
		}
		ty.Data = &hir.TupTy{Elems: elems}
		return ty
	case *ast.ParenTy:
		return l.lowerTy(d.Inner, it)
	case *ast.PathTy:
		return l.lowerPathTy(t, d.Path, it)
	case *ast.TraitObjectTy:
		if d.Syntax == ast.TraitObjectNone {
			l.lintBareTraitObject(t)
		}
		return l.lowerTraitObject(t, d, it)
	case *ast.ImplTraitTy:
		return l.lowerImplTrait(t, d, it)
	}

	switch t.Kind {
	case ast.TyInfer:
		return l.mkTy(t, hir.TyInfer, nil)
	case ast.TyNever:
		return l.mkTy(t, hir.TyNever, nil)
	case ast.TyImplicitSelf:
		return l.implicitSelfTy(t)
	default:
		// `...` outside of a C-variadic position, or a parse error.
		return l.errTy(t)
	}
}

// mkTy allocates the id of t before its children, so ids follow source
// order.
func (l *lowerer) mkTy(t *ast.Ty, kind hir.TyKind, data hir.TyData) *hir.Ty {
	return &hir.Ty{HirID: l.lowerNodeID(t.ID), Kind: kind, Span: l.lowerSpan(t.Span), Data: data}
}

func (l *lowerer) errTy(t *ast.Ty) *hir.Ty {
	return &hir.Ty{HirID: l.lowerNodeID(t.ID), Kind: hir.TyErr, Span: l.lowerSpan(t.Span)}
}

// unitTy is `()` synthesized at span.
func (l *lowerer) unitTy(span source.Span) *hir.Ty {
	return &hir.Ty{HirID: l.nextID(), Kind: hir.TyTup, Span: l.lowerSpan(span), Data: &hir.TupTy{}}
}

func (l *lowerer) implicitSelfTy(t *ast.Ty) *hir.Ty {
	pr, ok := l.r.PartialRes(t.ID)
	res := hir.ErrRes
	if ok {
		res = l.lowerRes(pr.Base)
	}
	ty := l.mkTy(t, hir.TyPath, nil)
	ident := hir.Ident{Name: "Self", Span: l.lowerSpan(t.Span)}
	ty.Data = &hir.PathTy{QPath: &hir.QPath{
		Kind: hir.QPathResolved,
		Span: ty.Span,
		Path: &hir.Path{
			Span:     ty.Span,
			Res:      res,
			Segments: []*hir.PathSegment{{HirID: l.nextID(), Ident: ident, Res: res}},
		},
	}}
	return ty
}

func (l *lowerer) lowerBareFnTy(t *ast.Ty, d *ast.BareFnTy) *hir.Ty {
	ty := l.mkTy(t, hir.TyBareFn, nil)
	l.withBinder(t.ID, func() {
		l.withMode(modePassThrough, func() {
			params := l.lowerGenericParams(d.GenericParams, disallowed())
			decl := l.lowerFnDecl(d.Decl, fnDeclOptions{})
			names := make([]hir.Ident, 0, len(d.Decl.Inputs))
			for _, in := range d.Decl.Inputs {
				if in.Pat != nil && in.Pat.Kind == ast.PatIdent {
					names = append(names, l.lowerIdent(in.Pat.Ident))
				} else {
					names = append(names, hir.Ident{Span: l.lowerSpan(in.Span)})
				}
			}
			ty.Data = &hir.BareFnTy{
				GenericParams: params,
				Unsafe:        d.Unsafe,
				Extern:        d.Extern,
				Decl:          decl,
				ParamNames:    names,
			}
		})
	})
	return ty
}

func (l *lowerer) lowerTraitObject(t *ast.Ty, d *ast.TraitObjectTy, it implTraitContext) *hir.Ty {
	ty := l.mkTy(t, hir.TyTraitObject, nil)
	var refs []*hir.PolyTraitRef
	var lifetime *hir.Lifetime
	l.withDynScope(true, func() {
		for _, b := range d.Bounds {
			switch b.Kind {
			case ast.BoundTrait:
				if b.Modifier == ast.ModifierMaybe {
					continue
				}
				refs = append(refs, l.lowerPolyTraitRef(&b.Trait, it.reborrow()))
			case ast.BoundOutlives:
				if lifetime == nil {
					lifetime = l.lowerLifetime(&b.Lifetime)
				}
			}
		}
	})
	if lifetime == nil {
		lifetime = l.elidedDynBound(t.Span)
	}
	ty.Data = &hir.TraitObjectTy{Bounds: refs, Lifetime: lifetime, Syntax: d.Syntax}
	return ty
}

func (l *lowerer) withDynScope(inDyn bool, fn func()) {
	saved := l.inDynType
	l.inDynType = inDyn
	defer func() { l.inDynType = saved }()
	fn()
}

// lintBareTraitObject reports a trait object written without `dyn`. It is
// a warning before the 2021 edition and an error from then on.
func (l *lowerer) lintBareTraitObject(t *ast.Ty) {
	fix := diag.FixEdit{Span: t.Span.ShrinkToLo(), NewText: "dyn "}
	if l.opts.Edition < source.Edition2021 {
		diag.ReportWarning(l.reporter, diag.LowBareTraitObject, t.Span, "trait objects without an explicit `dyn` are deprecated").
			WithFix("use `dyn`", fix).
			Emit()
		return
	}
	diag.ReportError(l.reporter, diag.LowBareTraitObject, t.Span, "trait objects must include the `dyn` keyword").
		WithFix("add `dyn` keyword before this trait", fix).
		Emit()
}

// lowerPathTy lowers a path in type position. A path that names a trait is
// a bare trait object and becomes one.
func (l *lowerer) lowerPathTy(t *ast.Ty, path *ast.Path, it implTraitContext) *hir.Ty {
	pr, ok := l.r.PartialRes(t.ID)
	if ok && pr.UnresolvedSegments == 0 && pr.Base.IsTrait() {
		l.lintBareTraitObject(t)
		principal := &hir.PolyTraitRef{
			Span: l.lowerSpan(t.Span),
			TraitRef: hir.TraitRef{
				HirID: l.lowerNodeID(t.ID),
				Path:  l.lowerPath(t.ID, path, it.reborrow()),
			},
		}
		return &hir.Ty{
			HirID: l.nextID(),
			Kind:  hir.TyTraitObject,
			Span:  l.lowerSpan(t.Span),
			Data: &hir.TraitObjectTy{
				Bounds:   []*hir.PolyTraitRef{principal},
				Lifetime: l.elidedDynBound(t.Span),
				Syntax:   ast.TraitObjectNone,
			},
		}
	}
	ty := l.mkTy(t, hir.TyPath, nil)
	ty.Data = &hir.PathTy{QPath: l.lowerQPath(t.ID, path, it.reborrow())}
	return ty
}

func (l *lowerer) lowerBounds(bounds []*ast.GenericBound, it implTraitContext) []*hir.GenericBound {
	out := make([]*hir.GenericBound, 0, len(bounds))
	for _, b := range bounds {
		out = append(out, l.lowerBound(b, it.reborrow()))
	}
	return out
}

func (l *lowerer) lowerBound(b *ast.GenericBound, it implTraitContext) *hir.GenericBound {
	switch b.Kind {
	case ast.BoundOutlives:
		return &hir.GenericBound{Kind: hir.BoundOutlives, Lifetime: l.lowerLifetime(&b.Lifetime), Span: l.lowerSpan(b.Span)}
	default:
		return &hir.GenericBound{
			Kind:     hir.BoundTrait,
			Trait:    l.lowerPolyTraitRef(&b.Trait, it),
			Modifier: b.Modifier,
			Span:     l.lowerSpan(b.Span),
		}
	}
}

func (l *lowerer) lowerPolyTraitRef(p *ast.PolyTraitRef, it implTraitContext) *hir.PolyTraitRef {
	params := l.lowerGenericParams(p.BoundGenericParams, disallowed())

	var added []string
	if it.kind == itAliasOpaque {
		for _, gp := range p.BoundGenericParams {
			if gp.Kind == ast.ParamLifetime && it.capturable.Insert(gp.Ident.Name) {
				added = append(added, gp.Ident.Name)
			}
		}
	}
	var tr hir.TraitRef
	l.withBinder(p.TraitRef.RefID, func() {
		tr = l.lowerTraitRef(&p.TraitRef, it)
	})
	for _, name := range added {
		it.capturable.Remove(name)
	}

	return &hir.PolyTraitRef{BoundGenericParams: params, TraitRef: tr, Span: l.lowerSpan(p.Span)}
}

func (l *lowerer) lowerTraitRef(tr *ast.TraitRef, it implTraitContext) hir.TraitRef {
	id := l.lowerNodeID(tr.RefID)
	return hir.TraitRef{HirID: id, Path: l.lowerPath(tr.RefID, tr.Path, it)}
}
