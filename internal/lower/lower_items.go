package lower

import (
	"strconv"

	"github.com/hashicorp/go-set/v3"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/hir"
	"ferrule/internal/source"
)

// itemPlace is where an item is written; it changes which positions allow
// `impl Trait` and whether bodies are optional.
type itemPlace uint8

const (
	placeFree itemPlace = iota
	placeTrait
	placeImpl
)

// lowerItem lowers it into its own owner.
func (l *lowerer) lowerItem(it *ast.Item) hir.ItemID {
	return l.lowerItemIn(it, placeFree)
}

func (l *lowerer) lowerItemIn(it *ast.Item, place itemPlace) hir.ItemID {
	var id hir.ItemID
	l.withItemScope(func() {
		id = l.withOwner(it.ID, func() *hir.Item {
			return l.lowerItemKind(it, place)
		})
	})
	return id
}

func (l *lowerer) lowerItemKind(it *ast.Item, place itemPlace) *hir.Item {
	def := l.cur.def
	out := &hir.Item{
		HirID: hir.OwnerID(def),
		DefID: def,
		Ident: l.lowerIdent(it.Ident),
		Vis:   it.Vis,
		Span:  l.lowerSpan(it.Span),
	}
	l.lowerAttrs(out.HirID, it.Attrs)

	switch d := it.Data.(type) {
	case *ast.FnData:
		out.Kind = hir.ItemFn
		out.Data = l.lowerFnItem(it, d, place)
	case *ast.TyAliasData:
		out.Kind = hir.ItemTyAlias
		out.Data = l.lowerTyAlias(d, place)
	case *ast.StructData:
		out.Kind = hir.ItemStruct
		out.Data = l.lowerStruct(d)
	case *ast.ConstData:
		out.Kind = hir.ItemConst
		item := &hir.ConstItem{Ty: l.lowerTy(d.Ty, disallowed())}
		if d.Expr != nil {
			item.Body = l.lowerConstBody(d.Expr)
		}
		out.Data = item
	case *ast.ModData:
		out.Kind = hir.ItemMod
		items := make([]hir.ItemID, 0, len(d.Items))
		for _, child := range d.Items {
			items = append(items, l.lowerItem(child))
		}
		out.Data = &hir.ModItem{Items: items, Span: out.Span}
	case *ast.ImplData:
		out.Kind = hir.ItemImpl
		out.Data = l.lowerImpl(d, def)
	case *ast.TraitData:
		out.Kind = hir.ItemTrait
		item := &hir.TraitItem{
			Generics: l.lowerGenerics(&d.Generics, disallowed()),
			Unsafe:   d.Unsafe,
		}
		l.withMode(modeReportError, func() {
			item.Bounds = l.lowerBounds(d.Bounds, disallowed())
		})
		for _, assoc := range d.Items {
			item.Items = append(item.Items, l.lowerItemIn(assoc, placeTrait))
		}
		out.Data = item
	}
	return out
}

func (l *lowerer) lowerFnItem(it *ast.Item, d *ast.FnData, place itemPlace) *hir.FnItem {
	def := l.cur.def
	async := d.Sig.Header.Async
	var decl *hir.FnDecl
	generics := l.addInBandDefs(&d.Generics, def, modePassThrough, func(universal *[]*hir.GenericParam) {
		decl = l.lowerFnDecl(d.Sig.Decl, fnDeclOptions{
			fnNode:          it.ID,
			fnDef:           def,
			universal:       universal,
			generics:        &d.Generics,
			allowReturnImpl: place != placeTrait,
			async:           async,
		})
	})

	item := &hir.FnItem{
		Sig: hir.FnSig{
			Header: hir.FnHeader{Async: async.IsAsync, Unsafe: d.Sig.Header.Unsafe, Extern: d.Sig.Header.Extern},
			Decl:   decl,
			Span:   l.lowerSpan(d.Sig.Span),
		},
		Generics: generics,
	}
	if d.Body != nil {
		item.Body = l.lowerFnBody(d.Sig.Decl, d.Body, async)
	}
	return item
}

type fnDeclOptions struct {
	// fnNode and fnDef are set for item signatures and left zero for bare
	// fn types.
	fnNode    ast.NodeID
	fnDef     defs.LocalDefID
	universal *[]*hir.GenericParam
	generics  *ast.Generics
	// allowReturnImpl permits `-> impl Trait`.
	allowReturnImpl bool
	async           ast.Async
}

func (l *lowerer) lowerFnDecl(decl *ast.FnDecl, opts fnDeclOptions) *hir.FnDecl {
	out := &hir.FnDecl{CVariadic: decl.CVariadic()}
	inputs := decl.Inputs
	if out.CVariadic {
		inputs = inputs[:len(inputs)-1]
	}

	inputCtx := disallowed()
	if opts.universal != nil {
		inputCtx = implTraitContext{kind: itUniversal, universal: opts.universal, parent: opts.fnDef}
	}
	mode := l.mode
	if opts.async.IsAsync {
		// Elided input regions become parameters so the future can name them.
		mode = modeCreateParameter
	}
	l.withMode(mode, func() {
		for _, in := range inputs {
			out.Inputs = append(out.Inputs, l.lowerTy(in.Ty, inputCtx))
		}
	})

	switch {
	case opts.async.IsAsync && opts.fnDef.IsValid():
		span := decl.Output.Span
		if decl.Output.Ty != nil {
			span = decl.Output.Ty.Span
		}
		out.Output = hir.FnRetTy{
			Ty:   l.lowerAsyncFnRetTy(decl.Output, opts.fnNode, opts.generics, opts.async.ReturnID, span),
			Span: l.lowerSpan(span),
		}
	case decl.Output.Ty != nil:
		ctx := disallowed()
		if opts.fnDef.IsValid() && opts.allowReturnImpl {
			ctx = returnOpaque(opts.fnDef, hir.OriginFnReturn)
		}
		out.Output = hir.FnRetTy{Ty: l.lowerTy(decl.Output.Ty, ctx), Span: l.lowerSpan(decl.Output.Ty.Span)}
	default:
		out.Output = hir.FnRetTy{Span: l.lowerSpan(decl.Output.Span)}
	}

	if len(inputs) > 0 && inputs[0].IsSelf() {
		out.ImplicitSelf = implicitSelfKind(inputs[0])
	}
	return out
}

func implicitSelfKind(p *ast.Param) hir.ImplicitSelfKind {
	switch {
	case p.Ty.Kind == ast.TyImplicitSelf:
		if p.Pat.Mut {
			return hir.SelfMut
		}
		return hir.SelfImm
	case p.Ty.Kind == ast.TyRef:
		ref := p.Ty.Data.(*ast.RefTy)
		if ref.Elem.Kind != ast.TyImplicitSelf {
			return hir.SelfNone
		}
		if ref.Mut {
			return hir.SelfMutRef
		}
		return hir.SelfImmRef
	default:
		return hir.SelfNone
	}
}

func (l *lowerer) lowerTyAlias(d *ast.TyAliasData, place itemPlace) *hir.TyAliasItem {
	item := &hir.TyAliasItem{Generics: l.lowerGenerics(&d.Generics, disallowed())}
	l.withMode(modeReportError, func() {
		item.Bounds = l.lowerBounds(d.Bounds, disallowed())
	})
	if d.Ty != nil {
		ctx := aliasOpaque(set.New[string](0))
		if place == placeTrait {
			ctx = disallowed()
		}
		item.Ty = l.lowerTy(d.Ty, ctx)
	}
	return item
}

func (l *lowerer) lowerStruct(d *ast.StructData) *hir.StructItem {
	item := &hir.StructItem{Generics: l.lowerGenerics(&d.Generics, disallowed()), Tuple: d.Tuple}
	for i, f := range d.Fields {
		id := l.lowerNodeID(f.ID)
		ident := l.lowerIdent(f.Ident)
		if f.Ident.IsEmpty() {
			ident = hir.Ident{Name: strconv.Itoa(i), Span: l.lowerSpan(f.Span.ShrinkToLo())}
		}
		l.lowerAttrs(id, f.Attrs)
		item.Fields = append(item.Fields, &hir.FieldDef{
			HirID: id,
			DefID: l.r.LocalDefID(f.ID),
			Ident: ident,
			Vis:   f.Vis,
			Ty:    l.lowerTy(f.Ty, disallowed()),
			Span:  l.lowerSpan(f.Span),
		})
	}
	return item
}

func (l *lowerer) lowerImpl(d *ast.ImplData, def defs.LocalDefID) *hir.ImplItem {
	item := &hir.ImplItem{Unsafe: d.Unsafe}
	item.Generics = l.addInBandDefs(&d.Generics, def, modeCreateParameter, func(*[]*hir.GenericParam) {
		if d.OfTrait != nil {
			tr := l.lowerTraitRef(d.OfTrait, disallowed())
			item.OfTrait = &tr
		}
		item.SelfTy = l.lowerTy(d.SelfTy, disallowed())
	})
	for _, assoc := range d.Items {
		item.Items = append(item.Items, l.lowerItemIn(assoc, placeImpl))
	}
	return item
}

// lowerFnBody lowers the parameters and body of a fn. An async fn's body is
// wrapped in an async block the fn returns.
func (l *lowerer) lowerFnBody(decl *ast.FnDecl, body *ast.Block, async ast.Async) hir.BodyID {
	params := make([]*hir.Param, 0, len(decl.Inputs))
	for _, in := range decl.Inputs {
		params = append(params, l.lowerParam(in))
	}
	if !async.IsAsync {
		var value *hir.Expr
		l.withGenerator(hir.GenNone, func() { value = l.lowerBlockExpr(body) })
		return l.addBody(params, value, hir.GenNone)
	}

	closure := l.asyncClosure(async.ClosureID, body, hir.GenAsyncFn)
	return l.addBody(params, closure, hir.GenNone)
}

// asyncClosure desugars an async body into a generator closure that owns a
// body of its own.
func (l *lowerer) asyncClosure(closureNode ast.NodeID, block *ast.Block, gen hir.GeneratorKind) *hir.Expr {
	id := l.lowerNodeID(closureNode)
	span := l.markSpanWithReason(source.DesugarAsync, block.Span, nil)
	var inner *hir.Expr
	l.withGenerator(gen, func() { inner = l.lowerBlockExpr(block) })
	return &hir.Expr{
		HirID: id,
		Kind:  hir.ExprClosure,
		Span:  l.lowerSpan(span),
		Data: &hir.ClosureExpr{
			Def:       l.r.LocalDefID(closureNode),
			Body:      l.addBody(nil, inner, gen),
			Generator: gen,
		},
	}
}

func (l *lowerer) lowerParam(p *ast.Param) *hir.Param {
	id := l.lowerNodeID(p.ID)
	l.lowerAttrs(id, p.Attrs)
	return &hir.Param{HirID: id, Pat: l.lowerPat(p.Pat), Span: l.lowerSpan(p.Span)}
}

func (l *lowerer) withGenerator(gen hir.GeneratorKind, fn func()) {
	saved := l.generator
	l.generator = gen
	defer func() { l.generator = saved }()
	fn()
}

func (l *lowerer) lowerConstBody(e *ast.Expr) hir.BodyID {
	var value *hir.Expr
	l.withGenerator(hir.GenNone, func() { value = l.lowerExpr(e) })
	return l.addBody(nil, value, hir.GenNone)
}

func (l *lowerer) lowerAnonConst(ac *ast.AnonConst) *hir.AnonConst {
	if ac == nil {
		return nil
	}
	return &hir.AnonConst{
		HirID: l.lowerNodeID(ac.ID),
		DefID: l.r.LocalDefID(ac.ID),
		Body:  l.lowerConstBody(ac.Value),
	}
}
