package resolve

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-set/v3"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/diag"
	"ferrule/internal/source"
)

// Options tunes Collect.
type Options struct {
	Reporter diag.Reporter
	// InBandLifetimes lets fns and impls use lifetimes they never declared.
	// The crate feature `in_band_lifetimes` turns it on as well.
	InBandLifetimes bool
}

// Collector is a lexical name resolver for one crate. It is not a full
// implementation of the language's resolution rules: there are no imports,
// no glob re-exports and no type-relative lookups beyond recording how many
// trailing segments were left.
type Collector struct {
	t        *Table
	reporter diag.Reporter
	inBand   bool

	root    *module
	mod     *module
	modules map[ast.NodeID]*module

	// parent is the definition new definitions are created under.
	parent    defs.LocalDefID
	ribs      []*rib
	lifetimes []*lifetimeRib
	selfRes   *Res
}

// Collect assigns node ids to crate, creates its definitions and resolves
// its paths and lifetimes into a fresh Table.
func Collect(crate *ast.Crate, opts Options) *Table {
	t := NewTable(crate.Name, crate.Span)
	crate.ID = ast.CrateNodeID
	numberer{t: t}.items(crate.Items)

	c := &Collector{
		t:        t,
		reporter: opts.Reporter,
		inBand:   opts.InBandLifetimes || crate.HasFeature("in_band_lifetimes"),
		modules:  make(map[ast.NodeID]*module),
		parent:   defs.CrateDefID,
	}
	c.root = newModule(defs.CrateDefID, nil)
	c.mod = c.root
	c.declareModule(crate.Items, c.root)
	c.resolveItems(crate.Items)
	return t
}

func (c *Collector) report(code diag.Code, span source.Span, msg string) {
	diag.ReportError(c.reporter, code, span, msg).Emit()
}

func (c *Collector) createDef(node ast.NodeID, data defs.DefPathData, span source.Span) defs.LocalDefID {
	return c.t.CreateDef(c.parent, node, data, source.RootContext, span)
}

// withParent runs fn with def as the parent of new definitions.
func (c *Collector) withParent(def defs.LocalDefID, fn func()) {
	saved := c.parent
	c.parent = def
	defer func() { c.parent = saved }()
	fn()
}

// --- declarations ---

func itemDefData(it *ast.Item) defs.DefPathData {
	switch it.Kind {
	case ast.ItemFn, ast.ItemConst:
		return defs.ValueNs(it.Ident.Name)
	case ast.ItemImpl:
		return defs.ImplData
	default:
		return defs.TypeNs(it.Ident.Name)
	}
}

func itemDefKind(it *ast.Item, assoc bool) DefKind {
	switch it.Kind {
	case ast.ItemFn:
		if assoc {
			return DefAssocFn
		}
		return DefFn
	case ast.ItemConst:
		if assoc {
			return DefAssocConst
		}
		return DefConst
	case ast.ItemTyAlias:
		if assoc {
			return DefAssocTy
		}
		return DefTyAlias
	case ast.ItemStruct:
		return DefStruct
	case ast.ItemMod:
		return DefMod
	case ast.ItemImpl:
		return DefImpl
	default:
		return DefTrait
	}
}

// scope is where declared item names land: a module or a block rib.
type scope struct {
	types, values map[string]Res
	mods          map[string]*module
	items         *set.Set[string]
}

func (c *Collector) declareModule(items []*ast.Item, m *module) {
	sc := scope{types: m.types, values: m.values, mods: m.mods}
	for _, it := range items {
		c.declareItem(it, sc, m)
	}
}

func (c *Collector) declareItem(it *ast.Item, sc scope, m *module) {
	def := c.createDef(it.ID, itemDefData(it), it.Span)
	res := DefRes(itemDefKind(it, false), def)
	name := it.Ident.Name

	switch d := it.Data.(type) {
	case *ast.StructData:
		c.bind(sc.types, sc.items, name, res, it.Ident.Span)
		if d.Tuple || len(d.Fields) == 0 {
			sc.values[name] = res
		}
	case *ast.FnData:
		c.bind(sc.values, sc.items, name, res, it.Ident.Span)
	case *ast.ConstData:
		if name != "_" {
			c.bind(sc.values, sc.items, name, res, it.Ident.Span)
		}
	case *ast.TyAliasData, *ast.TraitData:
		c.bind(sc.types, sc.items, name, res, it.Ident.Span)
	case *ast.ModData:
		c.bind(sc.types, sc.items, name, res, it.Ident.Span)
		parentMod := m
		if parentMod == nil {
			parentMod = c.mod
		}
		child := newModule(def, parentMod)
		c.modules[it.ID] = child
		if sc.mods != nil {
			sc.mods[name] = child
		}
		saved := c.mod
		c.mod = child
		c.withParent(def, func() { c.declareModule(d.Items, child) })
		c.mod = saved
	}

	switch d := it.Data.(type) {
	case *ast.ImplData:
		c.withParent(def, func() { c.declareAssoc(d.Items) })
	case *ast.TraitData:
		c.withParent(def, func() { c.declareAssoc(d.Items) })
	}
}

// declareAssoc creates definitions for associated items. They are reached
// through their impl or trait, never by a bare name.
func (c *Collector) declareAssoc(items []*ast.Item) {
	for _, it := range items {
		c.createDef(it.ID, itemDefData(it), it.Span)
	}
}

func (c *Collector) bind(ns map[string]Res, items *set.Set[string], name string, res Res, span source.Span) {
	if _, dup := ns[name]; dup {
		c.report(diag.ResDuplicateDefinition, span, fmt.Sprintf("the name `%s` is defined multiple times", name))
		return
	}
	ns[name] = res
	if items != nil {
		items.Insert(name)
	}
}

// --- items ---

func (c *Collector) resolveItems(items []*ast.Item) {
	for _, it := range items {
		restore := c.enterItem()
		c.resolveItem(it)
		restore()
	}
}

func (c *Collector) resolveItem(it *ast.Item) {
	def := c.t.LocalDefID(it.ID)
	saved := c.parent
	c.parent = def
	defer func() { c.parent = saved }()

	switch d := it.Data.(type) {
	case *ast.FnData:
		c.resolveFn(it, d, def)
	case *ast.TyAliasData:
		c.withGenerics(&d.Generics, it.ID, def, false, func() {
			c.resolveBounds(d.Bounds, true)
			if d.Ty != nil {
				c.withLifetimeRib(lrAnonymous, it.ID, func() { c.resolveTy(d.Ty) })
			}
		})
	case *ast.StructData:
		c.withGenerics(&d.Generics, it.ID, def, false, func() {
			c.withLifetimeRib(lrAnonymous, it.ID, func() {
				for i, f := range d.Fields {
					name := f.Ident.Name
					if f.Ident.IsEmpty() {
						name = strconv.Itoa(i)
					}
					c.createDef(f.ID, defs.FieldNs(name), f.Span)
					c.resolveTy(f.Ty)
				}
			})
		})
	case *ast.ConstData:
		c.withLifetimeRib(lrStatic, it.ID, func() { c.resolveTy(d.Ty) })
		if d.Expr != nil {
			c.withLifetimeRib(lrBody, it.ID, func() { c.resolveExpr(d.Expr) })
		}
	case *ast.ModData:
		savedMod := c.mod
		c.mod = c.modules[it.ID]
		c.resolveItems(d.Items)
		c.mod = savedMod
	case *ast.ImplData:
		self := SelfTyRes(def)
		c.selfRes = &self
		c.withGenerics(&d.Generics, it.ID, def, c.inBand, func() {
			c.withLifetimeRib(lrAnonymous, it.ID, func() {
				if d.OfTrait != nil {
					c.resolveTraitRef(d.OfTrait)
				}
				c.resolveTy(d.SelfTy)
			})
			for _, assocItem := range d.Items {
				c.resolveItem(assocItem)
			}
		})
	case *ast.TraitData:
		self := SelfTyRes(def)
		c.selfRes = &self
		c.withGenerics(&d.Generics, it.ID, def, false, func() {
			c.resolveBounds(d.Bounds, true)
			for _, assocItem := range d.Items {
				c.resolveItem(assocItem)
			}
		})
	}
}

func (c *Collector) resolveFn(it *ast.Item, d *ast.FnData, def defs.LocalDefID) {
	async := &d.Sig.Header.Async
	var closure defs.LocalDefID
	if async.IsAsync {
		c.createDef(async.ReturnID, defs.ImplTrait, async.Span)
		closure = c.createDef(async.ClosureID, defs.ClosureExpr, it.Span)
	}

	c.withGenerics(&d.Generics, it.ID, def, c.inBand, func() {
		c.withLifetimeRib(lrAnonymous, it.ID, func() { c.resolveDecl(d.Sig.Decl) })
		if d.Body == nil {
			return
		}
		c.pushRib()
		defer c.popRib()
		for _, p := range d.Sig.Decl.Inputs {
			c.bindPat(p.Pat)
		}
		body := func() {
			c.withLifetimeRib(lrBody, it.ID, func() { c.resolveBlock(d.Body) })
		}
		if async.IsAsync {
			c.withParent(closure, body)
		} else {
			body()
		}
	})
}

func (c *Collector) resolveDecl(decl *ast.FnDecl) {
	for _, p := range decl.Inputs {
		c.resolveTy(p.Ty)
	}
	if decl.Output.Ty != nil {
		c.resolveTy(decl.Output.Ty)
	}
}

// --- generics ---

// withGenerics declares the parameters of g, resolves their bounds and the
// where clause, then runs fn with the parameters in scope. binder is the
// node of the item that owns g.
func (c *Collector) withGenerics(g *ast.Generics, binder ast.NodeID, owner defs.LocalDefID, inBand bool, fn func()) {
	r := c.pushRib()
	lr := c.pushLifetimeRib(lrGenerics, binder)
	lr.inBand = inBand
	lr.item = owner
	defer func() {
		c.popLifetimeRib()
		c.popRib()
	}()

	c.declareParams(g.Params, r, lr)
	c.resolveParams(g.Params)
	for _, pred := range g.Where.Predicates {
		c.resolveWherePredicate(pred)
	}
	fn()
}

func (c *Collector) declareParams(params []*ast.GenericParam, r *rib, lr *lifetimeRib) {
	seen := set.New[string](len(params))
	for _, p := range params {
		name := p.Ident.Name
		if seen.Contains(name) && !p.Ident.IsUnderscoreLifetime() {
			c.report(diag.ResDuplicateDefinition, p.Ident.Span,
				fmt.Sprintf("the name `%s` is already used for a generic parameter", name))
		}
		seen.Insert(name)
		switch p.Kind {
		case ast.ParamLifetime:
			c.createDef(p.ID, defs.LifetimeNs(name), p.Span)
			lr.params[name] = p.ID
		case ast.ParamType:
			def := c.createDef(p.ID, defs.TypeNs(name), p.Span)
			if r != nil {
				r.types[name] = DefRes(DefTyParam, def)
			}
		case ast.ParamConst:
			def := c.createDef(p.ID, defs.ValueNs(name), p.Span)
			if r != nil {
				r.values[name] = DefRes(DefConstParam, def)
			}
		}
	}
}

func (c *Collector) resolveParams(params []*ast.GenericParam) {
	for _, p := range params {
		switch p.Kind {
		case ast.ParamLifetime:
			c.resolveBounds(p.Bounds, true)
		case ast.ParamType:
			c.resolveBounds(p.Bounds, true)
			if p.Ty != nil {
				c.resolveTy(p.Ty)
			}
		case ast.ParamConst:
			c.withLifetimeRib(lrAnonForbidden, ast.NoNodeID, func() { c.resolveTy(p.Ty) })
			if p.ConstDefault != nil {
				c.resolveAnonConst(p.ConstDefault)
			}
		}
	}
}

func (c *Collector) resolveWherePredicate(pred *ast.WherePredicate) {
	switch pred.Kind {
	case ast.WhereRegion:
		c.withLifetimeRib(lrAnonForbidden, ast.NoNodeID, func() {
			c.resolveLifetime(&pred.Lifetime)
			c.resolveBounds(pred.Bounds, false)
		})
	case ast.WhereBound:
		lr := c.pushLifetimeRib(lrPoly, pred.ID)
		defer c.popLifetimeRib()
		c.declareParams(pred.BoundGenericParams, nil, lr)
		c.resolveParams(pred.BoundGenericParams)
		c.withLifetimeRib(lrAnonForbidden, ast.NoNodeID, func() { c.resolveTy(pred.BoundedTy) })
		c.resolveBounds(pred.Bounds, true)
	}
}

// resolveBounds resolves a bound list. With forbidAnon set, anonymous
// regions directly inside the bounds are errors.
func (c *Collector) resolveBounds(bounds []*ast.GenericBound, forbidAnon bool) {
	if forbidAnon {
		c.pushLifetimeRib(lrAnonForbidden, ast.NoNodeID)
		defer c.popLifetimeRib()
	}
	for _, b := range bounds {
		switch b.Kind {
		case ast.BoundOutlives:
			c.resolveLifetime(&b.Lifetime)
		case ast.BoundTrait:
			c.resolvePolyTraitRef(&b.Trait)
		}
	}
}

func (c *Collector) resolvePolyTraitRef(p *ast.PolyTraitRef) {
	lr := c.pushLifetimeRib(lrPoly, p.TraitRef.RefID)
	defer c.popLifetimeRib()
	c.declareParams(p.BoundGenericParams, nil, lr)
	c.resolveParams(p.BoundGenericParams)
	c.resolveTraitRef(&p.TraitRef)
}

func (c *Collector) resolveTraitRef(tr *ast.TraitRef) {
	res := c.resolvePath(tr.Path, nsType, tr.RefID)
	switch {
	case res.Base.IsErr():
	case res.UnresolvedSegments != 0:
		c.report(diag.ResUnresolvedName, tr.Path.Span,
			fmt.Sprintf("cannot find trait `%s`", ast.PathString(tr.Path)))
		c.t.RecordRes(tr.RefID, ErrRes)
	case !res.Base.IsTrait():
		c.report(diag.ResUnresolvedName, tr.Path.Span,
			fmt.Sprintf("expected trait, found %s `%s`", res.Base.DefKind, ast.PathString(tr.Path)))
		c.t.RecordRes(tr.RefID, ErrRes)
	}
}

func (c *Collector) resolveAnonConst(ac *ast.AnonConst) {
	def := c.createDef(ac.ID, defs.AnonConst, ac.Value.Span)
	c.withParent(def, func() { c.resolveExpr(ac.Value) })
}
