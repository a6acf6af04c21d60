package resolve

import (
	"github.com/hashicorp/go-set/v3"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
)

// module is the item namespace of a `mod` (or the crate root).
type module struct {
	def    defs.LocalDefID
	parent *module
	types  map[string]Res
	values map[string]Res
	mods   map[string]*module
}

func newModule(def defs.LocalDefID, parent *module) *module {
	return &module{
		def:    def,
		parent: parent,
		types:  make(map[string]Res),
		values: make(map[string]Res),
		mods:   make(map[string]*module),
	}
}

// rib is one lexical scope of names. Item entries stay visible from nested
// items; everything else is cut off at an item boundary.
type rib struct {
	types  map[string]Res
	values map[string]Res
	items  *set.Set[string]
}

func newRib() *rib {
	return &rib{types: make(map[string]Res), values: make(map[string]Res), items: set.New[string](0)}
}

type lifetimeRibKind uint8

const (
	// generic parameters of an item; Binder is the item node
	lrGenerics lifetimeRibKind = iota
	// for<'a> on a trait ref or where predicate
	lrPoly
	// bare fn type: its own params plus anonymous regions
	lrBareFn
	// Fn(&T) -> &U sugar: anonymous regions bound by the enclosing trait ref
	lrFnSugar
	// bounds and const param types: anonymous regions are errors
	lrAnonForbidden
	// anonymous regions bound by Binder (fn signature, item header)
	lrAnonymous
	// a body: anonymous like lrAnonymous, but lifetimes are never introduced in band
	lrBody
	// anonymous regions are 'static (const and static item types)
	lrStatic
)

type lifetimeRib struct {
	kind   lifetimeRibKind
	binder ast.NodeID
	params map[string]ast.NodeID
	// inBand permits introducing undeclared lifetimes here; introduced
	// records the names that were.
	inBand     bool
	introduced *set.Set[string]
	item       defs.LocalDefID
}

func (c *Collector) pushRib() *rib {
	r := newRib()
	c.ribs = append(c.ribs, r)
	return r
}

func (c *Collector) popRib() {
	c.ribs = c.ribs[:len(c.ribs)-1]
}

func (c *Collector) pushLifetimeRib(kind lifetimeRibKind, binder ast.NodeID) *lifetimeRib {
	r := &lifetimeRib{kind: kind, binder: binder, params: make(map[string]ast.NodeID)}
	c.lifetimes = append(c.lifetimes, r)
	return r
}

func (c *Collector) popLifetimeRib() {
	c.lifetimes = c.lifetimes[:len(c.lifetimes)-1]
}

func (c *Collector) withLifetimeRib(kind lifetimeRibKind, binder ast.NodeID, fn func()) {
	c.pushLifetimeRib(kind, binder)
	defer c.popLifetimeRib()
	fn()
}

// enterItem cuts off locals and outer generics while an item nested in a
// module or block is visited. Items declared in enclosing blocks stay
// visible. The returned func restores the scopes.
func (c *Collector) enterItem() func() {
	savedRibs, savedLifetimes, savedSelf := c.ribs, c.lifetimes, c.selfRes
	carried := newRib()
	for _, r := range savedRibs {
		for name := range r.items.Items() {
			if res, ok := r.types[name]; ok {
				carried.types[name] = res
			}
			if res, ok := r.values[name]; ok {
				carried.values[name] = res
			}
			carried.items.Insert(name)
		}
	}
	c.ribs = []*rib{carried}
	c.lifetimes = nil
	c.selfRes = nil
	return func() {
		c.ribs, c.lifetimes, c.selfRes = savedRibs, savedLifetimes, savedSelf
	}
}

func (c *Collector) lookupType(name string) (Res, bool) {
	if name == "Self" {
		if c.selfRes != nil {
			return *c.selfRes, true
		}
		return Res{}, false
	}
	for i := len(c.ribs) - 1; i >= 0; i-- {
		if res, ok := c.ribs[i].types[name]; ok {
			return res, true
		}
	}
	if res, ok := c.mod.types[name]; ok {
		return res, true
	}
	if res, ok := preludeTypes[name]; ok {
		return res, true
	}
	if primTypes[name] {
		return PrimRes(name), true
	}
	return Res{}, false
}

func (c *Collector) lookupValue(name string) (Res, bool) {
	for i := len(c.ribs) - 1; i >= 0; i-- {
		if res, ok := c.ribs[i].values[name]; ok {
			return res, true
		}
	}
	if res, ok := c.mod.values[name]; ok {
		return res, true
	}
	res, ok := preludeValues[name]
	return res, ok
}
