package resolve

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-set/v3"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/diag"
	"ferrule/internal/source"
)

type namespace uint8

const (
	nsType namespace = iota
	nsValue
)

// Paths starting with these names leave the crate.
var externCrates = map[string]bool{"std": true, "core": true, "alloc": true}

func (c *Collector) resolveTy(t *ast.Ty) {
	if t == nil {
		return
	}
	switch d := t.Data.(type) {
	case *ast.SliceTy:
		c.resolveTy(d.Elem)
	case *ast.ArrayTy:
		c.resolveTy(d.Elem)
		if d.Len != nil {
			c.resolveAnonConst(d.Len)
		}
	case *ast.PtrTy:
		c.resolveTy(d.Elem)
	case *ast.RefTy:
		if d.Lifetime == nil {
			c.t.RecordElidedRegion(t.ID, c.resolveAnonRegion(t.Span, true))
		} else {
			c.resolveLifetime(d.Lifetime)
		}
		c.resolveTy(d.Elem)
	case *ast.BareFnTy:
		lr := c.pushLifetimeRib(lrBareFn, t.ID)
		defer c.popLifetimeRib()
		c.declareParams(d.GenericParams, nil, lr)
		c.resolveParams(d.GenericParams)
		c.resolveDecl(d.Decl)
	case *ast.TupTy:
		for _, e := range d.Elems {
			c.resolveTy(e)
		}
	case *ast.PathTy:
		c.resolvePath(d.Path, nsType, t.ID)
	case *ast.TraitObjectTy:
		c.resolveBounds(d.Bounds, false)
	case *ast.ImplTraitTy:
		def := c.createDef(d.DefID, defs.ImplTrait, t.Span)
		c.withParent(def, func() { c.resolveBounds(d.Bounds, false) })
	case *ast.ParenTy:
		c.resolveTy(d.Inner)
	default:
		if t.Kind == ast.TyImplicitSelf {
			c.t.RecordRes(t.ID, c.selfType(t.Span))
		}
	}
}

func (c *Collector) selfType(span source.Span) Res {
	if c.selfRes == nil {
		c.report(diag.ResSelfOutsideImpl, span, "`Self` is only available in impls and traits")
		return ErrRes
	}
	return *c.selfRes
}

// resolveGenericArgTy resolves a type-position generic argument. A bare
// name that is not a type may still name a const parameter or item.
func (c *Collector) resolveGenericArgTy(t *ast.Ty) {
	d, ok := t.Data.(*ast.PathTy)
	if !ok || d.Path.Global || len(d.Path.Segments) != 1 || d.Path.Segments[0].Args != nil {
		c.resolveTy(t)
		return
	}
	name := d.Path.Segments[0].Ident.Name
	if _, ok := c.lookupType(name); ok || name == "Self" {
		c.resolveTy(t)
		return
	}
	if res, ok := c.lookupValue(name); ok {
		c.t.RecordRes(t.ID, res)
		return
	}
	c.resolveTy(t)
}

func (c *Collector) resolveGenericArgs(a *ast.GenericArgs) {
	switch a.Kind {
	case ast.ArgsAngleBracketed:
		for _, arg := range a.Args {
			switch arg.Kind {
			case ast.ArgLifetime:
				c.resolveLifetime(&arg.Lifetime)
			case ast.ArgType:
				c.resolveGenericArgTy(arg.Ty)
			case ast.ArgConst:
				c.resolveAnonConst(arg.Const)
			}
		}
		for _, ct := range a.Constraints {
			if ct.GenArgs != nil {
				c.resolveGenericArgs(ct.GenArgs)
			}
			switch ct.Kind {
			case ast.ConstraintEquality:
				c.resolveTy(ct.Ty)
			case ast.ConstraintBound:
				c.resolveBounds(ct.Bounds, false)
			}
		}
	case ast.ArgsParenthesized:
		c.withLifetimeRib(lrFnSugar, c.innermostPolyBinder(), func() {
			for _, in := range a.Inputs {
				c.resolveTy(in)
			}
			if a.Output.Ty != nil {
				c.resolveTy(a.Output.Ty)
			}
		})
	}
}

func (c *Collector) innermostPolyBinder() ast.NodeID {
	for i := len(c.lifetimes) - 1; i >= 0; i-- {
		if c.lifetimes[i].kind == lrPoly {
			return c.lifetimes[i].binder
		}
	}
	return ast.NoNodeID
}

// --- lifetimes ---

func (c *Collector) resolveLifetime(lt *ast.Lifetime) {
	var r RegionRes
	switch {
	case lt.Ident.IsStatic():
		r = StaticRegion
	case lt.Ident.IsUnderscoreLifetime():
		r = c.resolveAnonRegion(lt.Ident.Span, false)
	default:
		r = c.resolveNamedLifetime(lt.Ident)
	}
	c.t.RecordRegionRes(lt.ID, r)
}

func (c *Collector) resolveNamedLifetime(id ast.Ident) RegionRes {
	var inBand *lifetimeRib
	inBody := false
	for i := len(c.lifetimes) - 1; i >= 0; i-- {
		r := c.lifetimes[i]
		if param, ok := r.params[id.Name]; ok {
			if r.introduced != nil && r.introduced.Contains(id.Name) {
				return InBandParameter(param, r.binder)
			}
			return BoundParameter(param, r.binder)
		}
		if r.kind == lrBody {
			inBody = true
		}
		if inBand == nil && !inBody && r.kind == lrGenerics && r.inBand {
			inBand = r
		}
	}
	if inBand == nil {
		c.report(diag.ResUnresolvedLifetime, id.Span, fmt.Sprintf("use of undeclared lifetime name `%s`", id.Name))
		return ErrorRegion
	}
	node := c.t.NextNodeID()
	c.t.CreateDef(inBand.item, node, defs.LifetimeNs(id.Name), source.RootContext, id.Span)
	inBand.params[id.Name] = node
	if inBand.introduced == nil {
		inBand.introduced = set.New[string](1)
	}
	inBand.introduced.Insert(id.Name)
	return InBandParameter(node, inBand.binder)
}

// resolveAnonRegion answers for `'_` or an elided `&` region.
func (c *Collector) resolveAnonRegion(span source.Span, elided bool) RegionRes {
	for i := len(c.lifetimes) - 1; i >= 0; i-- {
		r := c.lifetimes[i]
		switch r.kind {
		case lrBareFn, lrFnSugar, lrAnonymous, lrBody:
			return Anonymous(r.binder, elided)
		case lrStatic:
			return StaticRegion
		case lrAnonForbidden:
			return c.anonForbidden(span, elided)
		}
	}
	return c.anonForbidden(span, elided)
}

func (c *Collector) anonForbidden(span source.Span, elided bool) RegionRes {
	msg := "`'_` cannot be used here"
	if elided {
		msg = "`&` without an explicit lifetime name cannot be used here"
	}
	c.report(diag.ResAnonRegionForbidden, span, msg)
	return ErrorRegion
}

// --- paths ---

// resolvePath resolves p in ns, records the outcome on node and walks the
// generic arguments of every segment.
func (c *Collector) resolvePath(p *ast.Path, ns namespace, node ast.NodeID) PartialRes {
	pr := c.lookupPath(p, ns)
	c.t.RecordPartialRes(node, pr)
	for _, seg := range p.Segments {
		if seg.Args != nil {
			c.resolveGenericArgs(seg.Args)
		}
	}
	return pr
}

func (c *Collector) lookupPath(p *ast.Path, ns namespace) PartialRes {
	segs := p.Segments
	if len(segs) == 0 {
		return PartialRes{Base: ErrRes}
	}
	first := segs[0].Ident.Name
	if externCrates[first] && len(segs) > 1 {
		return PartialRes{Base: externPathRes(p, ns)}
	}

	var m *module
	i := 0
	switch {
	case p.Global || first == "crate":
		m = c.root
		if first == "crate" {
			i = 1
		}
	case first == "self" && len(segs) > 1:
		m, i = c.mod, 1
	case first == "super":
		m = c.mod
		for ; i < len(segs) && segs[i].Ident.Name == "super"; i++ {
			if m.parent == nil {
				c.report(diag.ResUnresolvedName, p.Span, "there are too many leading `super` keywords")
				return PartialRes{Base: ErrRes}
			}
			m = m.parent
		}
	}

	if m == nil {
		if len(segs) == 1 {
			res, ok := c.lookupNs(ns, first)
			if !ok {
				return c.unresolved(p, first)
			}
			return PartialRes{Base: res}
		}
		if sub, ok := c.mod.mods[first]; ok {
			m, i = sub, 1
		} else {
			res, ok := c.lookupType(first)
			if !ok {
				return c.unresolved(p, first)
			}
			return PartialRes{Base: res, UnresolvedSegments: len(segs) - 1}
		}
	}

	for ; i < len(segs); i++ {
		name := segs[i].Ident.Name
		if i == len(segs)-1 {
			table := m.types
			if ns == nsValue {
				table = m.values
			}
			if res, ok := table[name]; ok {
				return PartialRes{Base: res}
			}
			return c.unresolved(p, name)
		}
		if sub, ok := m.mods[name]; ok {
			m = sub
			continue
		}
		if res, ok := m.types[name]; ok {
			return PartialRes{Base: res, UnresolvedSegments: len(segs) - 1 - i}
		}
		return c.unresolved(p, name)
	}
	return PartialRes{Base: DefRes(DefMod, m.def)}
}

func (c *Collector) lookupNs(ns namespace, name string) (Res, bool) {
	if ns == nsValue {
		return c.lookupValue(name)
	}
	return c.lookupType(name)
}

func (c *Collector) unresolved(p *ast.Path, name string) PartialRes {
	if name == "Self" {
		return PartialRes{Base: c.selfType(p.Span)}
	}
	c.report(diag.ResUnresolvedName, p.Span, fmt.Sprintf("cannot find `%s` in this scope", name))
	return PartialRes{Base: ErrRes}
}

func externPathRes(p *ast.Path, ns namespace) Res {
	names := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		names[i] = seg.Ident.Name
	}
	last := names[len(names)-1]
	kind := DefStruct
	if ns == nsValue {
		kind = DefFn
	}
	if known, ok := preludeTypes[last]; ok && ns == nsType {
		kind = known.DefKind
	}
	return ExternRes(kind, strings.Join(names, "::"))
}
