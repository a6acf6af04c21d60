package lower

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/diag"
	"ferrule/internal/hir"
	"ferrule/internal/resolve"
	"ferrule/internal/source"
)

type implTraitKind uint8

const (
	// itUniversal: argument position, `impl Trait` becomes a synthetic type
	// parameter of parent.
	itUniversal implTraitKind = iota
	// itReturnOpaque: return position of fn.
	itReturnOpaque
	// itAliasOpaque: `type A = impl Trait`; only regions in capturable may
	// be captured.
	itAliasOpaque
	// itDisallowed: `impl Trait` is an error here.
	itDisallowed
)

type disallowedPosition uint8

const (
	posOther disallowedPosition = iota
	posBinding
)

// implTraitContext says what an `impl Trait` in the type being lowered
// turns into.
type implTraitContext struct {
	kind implTraitKind

	universal *[]*hir.GenericParam
	parent    defs.LocalDefID

	fn     defs.LocalDefID
	origin hir.OpaqueOrigin

	capturable *set.Set[string]

	position disallowedPosition
}

func disallowed() implTraitContext {
	return implTraitContext{kind: itDisallowed}
}

func disallowedIn(pos disallowedPosition) implTraitContext {
	return implTraitContext{kind: itDisallowed, position: pos}
}

func returnOpaque(fn defs.LocalDefID, origin hir.OpaqueOrigin) implTraitContext {
	return implTraitContext{kind: itReturnOpaque, fn: fn, origin: origin}
}

func aliasOpaque(capturable *set.Set[string]) implTraitContext {
	return implTraitContext{kind: itAliasOpaque, capturable: capturable, origin: hir.OriginTyAlias}
}

// reborrow is the context for types nested in another type. Universal
// parameters keep accumulating into the same list.
func (it implTraitContext) reborrow() implTraitContext { return it }

func (l *lowerer) lowerImplTrait(t *ast.Ty, d *ast.ImplTraitTy, it implTraitContext) *hir.Ty {
	switch it.kind {
	case itReturnOpaque, itAliasOpaque:
		return l.lowerOpaqueImplTrait(t.Span, d.DefID, it, func() []*hir.GenericBound {
			return l.lowerBounds(d.Bounds, it)
		})
	case itUniversal:
		def := l.r.LocalDefID(d.DefID)
		name := "impl " + ast.BoundsString(d.Bounds)
		param := &hir.GenericParam{
			HirID:     l.lowerNodeID(d.DefID),
			DefID:     def,
			Name:      hir.ParamName{Kind: hir.ParamPlain, Ident: hir.Ident{Name: name, Span: l.lowerSpan(t.Span)}},
			Span:      l.lowerSpan(t.Span),
			Kind:      hir.ParamTypeKind,
			Synthetic: true,
		}
		param.Bounds = l.lowerBounds(d.Bounds, it.reborrow())
		*it.universal = append(*it.universal, param)

		res := l.lowerRes(resolve.DefRes(resolve.DefTyParam, def))
		return &hir.Ty{
			HirID: l.lowerNodeID(t.ID),
			Kind:  hir.TyPath,
			Span:  l.lowerSpan(t.Span),
			Data: &hir.PathTy{QPath: &hir.QPath{
				Kind: hir.QPathResolved,
				Span: l.lowerSpan(t.Span),
				Path: &hir.Path{
					Span: l.lowerSpan(t.Span),
					Res:  res,
					Segments: []*hir.PathSegment{{
						HirID: l.nextID(),
						Ident: hir.Ident{Name: name, Span: l.lowerSpan(t.Span)},
						Res:   res,
					}},
				},
			}},
		}
	default:
		msg := "`impl Trait` not allowed outside of function and method return types"
		if it.position == posBinding {
			msg = "`impl Trait` not allowed in the type of a variable binding"
		}
		l.report(diag.LowImplTraitNotAllowed, t.Span, msg)
		return l.errTy(t)
	}
}

// lowerOpaqueImplTrait turns a bound list into a standalone opaque item and
// returns the type that refers to it. lowerBounds runs inside the new owner
// with a fresh capture table.
func (l *lowerer) lowerOpaqueImplTrait(span source.Span, opaqueNode ast.NodeID, it implTraitContext, lowerBounds func() []*hir.GenericBound) *hir.Ty {
	return l.lowerOpaque(span, opaqueNode, it, source.DesugarOpaqueTy, newCaptureState(), lowerBounds)
}

func (l *lowerer) lowerOpaque(span source.Span, opaqueNode ast.NodeID, it implTraitContext, reason source.DesugaringKind, captures *captureState, lowerBounds func() []*hir.GenericBound) *hir.Ty {
	if it.kind != itReturnOpaque && it.kind != itAliasOpaque {
		panic(fmt.Errorf("lower: opaque type at %s lowered in a disallowed position", span))
	}
	opaqueDef := l.r.LocalDefID(opaqueNode)
	marked := l.markSpanWithReason(reason, span, nil)

	if it.kind == itAliasOpaque {
		captures.capturable = it.capturable
	}
	var entries []*capture
	item := l.withOwner(opaqueNode, func() *hir.Item {
		saved := l.captures
		l.captures = captures
		bounds := lowerBounds()
		l.captures = saved

		for _, e := range captures.entries.All() {
			if captures.keeps(e) {
				entries = append(entries, e)
			}
		}

		generics := hir.EmptyGenerics(l.lowerSpan(marked))
		for _, e := range entries {
			defName := "'_"
			if e.name.Kind == hir.ParamPlain {
				defName = e.name.Ident.Name
			}
			kind := e.paramKind()
			paramDef := l.r.CreateDef(opaqueDef, e.param, defs.LifetimeNs(defName), source.RootContext, e.span.WithParent(0))
			generics.Params = append(generics.Params, &hir.GenericParam{
				HirID:        l.lowerNodeID(e.param),
				DefID:        paramDef,
				Name:         e.name,
				Span:         l.lowerSpan(e.span),
				Kind:         hir.ParamLifetimeKind,
				LifetimeKind: kind,
			})
		}

		return &hir.Item{
			HirID: hir.OwnerID(opaqueDef),
			DefID: opaqueDef,
			Kind:  hir.ItemOpaqueTy,
			Span:  l.lowerSpan(marked),
			Data: &hir.OpaqueTyItem{
				Generics: generics,
				Bounds:   bounds,
				Origin:   it.origin,
				Fn:       it.fn,
			},
		}
	})

	args := make([]*hir.GenericArg, 0, len(entries))
	for _, e := range entries {
		lt := l.newLifetime(l.r.NextNodeID(), e.span, e.name.Ident.Name, e.res)
		args = append(args, &hir.GenericArg{Kind: hir.ArgLifetime, Lifetime: lt})
	}
	if n := len(l.owners[opaqueDef].Item().Generics().Lifetimes()); n != len(args) {
		panic(fmt.Errorf("lower: opaque %s declares %d regions but is used with %d", opaqueDef, n, len(args)))
	}

	return &hir.Ty{
		HirID: l.nextID(),
		Kind:  hir.TyOpaqueDef,
		Span:  l.lowerSpan(marked),
		Data:  &hir.OpaqueDefTy{Item: item, Args: args},
	}
}

// futureLangItem is the trait an async fn's return type implements.
var futureLangItem = resolve.ExternRes(resolve.DefTrait, "core::future::Future")

// lowerAsyncFnRetTy builds `impl Future<Output = T>` for an async fn. The
// future captures every region parameter of the signature so it may borrow
// from its inputs.
func (l *lowerer) lowerAsyncFnRetTy(output ast.FnRetTy, fnNode ast.NodeID, g *ast.Generics, opaqueNode ast.NodeID, span source.Span) *hir.Ty {
	fnDef := l.r.LocalDefID(fnNode)
	it := returnOpaque(fnDef, hir.OriginAsyncFn)

	captures := newCaptureState()
	for _, p := range g.Params {
		if p.Kind != ast.ParamLifetime || p.Ident.IsUnderscoreLifetime() {
			continue
		}
		name := hir.ParamName{Kind: hir.ParamPlain, Ident: hir.Ident{Name: p.Ident.Name, Span: l.lowerSpan(p.Ident.Span)}}
		captures.entries.Set(p.ID, &capture{
			span:  p.Ident.Span,
			param: l.r.NextNodeID(),
			name:  name,
			lname: hir.LifetimeName{Kind: hir.LifetimeParam, Param: name},
			res:   resolve.BoundParameter(p.ID, fnNode),
		})
	}
	if l.inBand != nil {
		for node, p := range l.inBand.All() {
			res := resolve.InBandParameter(node, fnNode)
			if p.name.Kind == hir.ParamFresh {
				res = resolve.FreshParameter(node, fnNode, p.name.Fresh)
			}
			captures.entries.Set(node, &capture{
				span:  p.span,
				param: l.r.NextNodeID(),
				name:  p.name,
				lname: hir.LifetimeName{Kind: hir.LifetimeParam, Param: p.name},
				res:   res,
			})
		}
	}

	var ty *hir.Ty
	l.withMode(modePassThrough, func() {
		ty = l.lowerOpaque(span, opaqueNode, it, source.DesugarAsync, captures, func() []*hir.GenericBound {
			return []*hir.GenericBound{l.futureBound(output, returnOpaque(fnDef, hir.OriginFnReturn), span)}
		})
	})
	return ty
}

// futureBound is `Future<Output = T>`, with `()` for a default return.
func (l *lowerer) futureBound(output ast.FnRetTy, it implTraitContext, span source.Span) *hir.GenericBound {
	var outTy *hir.Ty
	if output.Ty != nil {
		outTy = l.lowerTy(output.Ty, it)
	} else {
		outTy = l.unitTy(output.Span)
	}
	lowered := l.lowerSpan(span)
	res := l.lowerRes(futureLangItem)
	return &hir.GenericBound{
		Kind: hir.BoundTrait,
		Span: lowered,
		Trait: &hir.PolyTraitRef{
			Span: lowered,
			TraitRef: hir.TraitRef{
				HirID: l.nextID(),
				Path: &hir.Path{
					Span: lowered,
					Res:  res,
					Segments: []*hir.PathSegment{{
						HirID: l.nextID(),
						Ident: hir.Ident{Name: "Future", Span: lowered},
						Res:   res,
						Args: &hir.GenericArgs{
							Span: lowered,
							Bindings: []*hir.TypeBinding{{
								HirID: l.nextID(),
								Ident: hir.Ident{Name: "Output", Span: lowered},
								Kind:  hir.BindingEquality,
								Ty:    outTy,
								Span:  outTy.Span,
							}},
						},
					}},
				},
			},
		},
	}
}
