package resolve_test

import (
	"testing"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/diag"
	"ferrule/internal/parser"
	"ferrule/internal/resolve"
	"ferrule/internal/source"
)

func collect(t *testing.T, src string) (*ast.Crate, *resolve.Table, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("lib.rs", []byte(src))
	bag := diag.NewBag(32)
	res := parser.ParseFile(fs.Get(id), "demo", parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.HasErrors() {
		for _, d := range bag.Items() {
			t.Errorf("%s: %s", d.Code.ID(), d.Message)
		}
		t.FailNow()
	}
	table := resolve.Collect(res.Crate, resolve.Options{Reporter: diag.BagReporter{Bag: bag}})
	return res.Crate, table, bag
}

func refOf(t *testing.T, ty *ast.Ty) *ast.RefTy {
	t.Helper()
	ref, ok := ty.Data.(*ast.RefTy)
	if !ok {
		t.Fatalf("expected reference type, got %s", ty.Kind)
	}
	return ref
}

func regionOf(t *testing.T, table *resolve.Table, node ast.NodeID) resolve.RegionRes {
	t.Helper()
	r, ok := table.RegionRes(node)
	if !ok {
		t.Fatalf("no region resolution for %s", node)
	}
	return r
}

func TestCollectNumbersNodes(t *testing.T) {
	crate, table, _ := collect(t, "struct S { a: u8 } fn f(x: u8) -> u8 { x }")
	if crate.ID != ast.CrateNodeID {
		t.Fatalf("crate id = %s", crate.ID)
	}
	seen := map[ast.NodeID]bool{}
	fn := crate.Items[1].Fn()
	for _, id := range []ast.NodeID{
		crate.Items[0].ID, crate.Items[1].ID,
		crate.Items[0].Data.(*ast.StructData).Fields[0].ID,
		fn.Sig.Decl.Inputs[0].ID, fn.Sig.Decl.Inputs[0].Pat.ID, fn.Sig.Decl.Inputs[0].Ty.ID,
		fn.Sig.Decl.Output.Ty.ID, fn.Body.ID,
	} {
		if !id.IsValid() || id == ast.CrateNodeID {
			t.Fatalf("unassigned node id %s", id)
		}
		if seen[id] {
			t.Fatalf("node id %s assigned twice", id)
		}
		if id >= table.PeekNextNodeID() {
			t.Fatalf("node id %s not below next id %s", id, table.PeekNextNodeID())
		}
		seen[id] = true
	}
}

func TestCollectItemDefs(t *testing.T) {
	crate, table, _ := collect(t, "mod m { pub struct S(u8); } impl m::S { fn get(&self) -> u8 { 0 } }")
	d := table.Definitions()
	mod := table.LocalDefID(crate.Items[0].ID)
	if got := d.PathString(mod); got != "demo::m" {
		t.Fatalf("mod path = %q", got)
	}
	inner := crate.Items[0].Data.(*ast.ModData).Items[0]
	s := table.LocalDefID(inner.ID)
	if d.Parent(s) != mod {
		t.Fatalf("struct parent = %s, want %s", d.Parent(s), mod)
	}
	field := table.LocalDefID(inner.Data.(*ast.StructData).Fields[0].ID)
	if key := d.Key(field); key.Data != defs.FieldNs("0") {
		t.Fatalf("tuple field data = %s", key.Data)
	}
	impl := crate.Items[1].Data.(*ast.ImplData)
	get := table.LocalDefID(impl.Items[0].ID)
	if d.Parent(get) != table.LocalDefID(crate.Items[1].ID) {
		t.Fatalf("assoc fn not parented to impl")
	}
	pr, ok := table.PartialRes(impl.SelfTy.ID)
	if !ok || pr.Base != resolve.DefRes(resolve.DefStruct, s) {
		t.Fatalf("impl self type = %+v", pr)
	}
	self := impl.Items[0].Fn().Sig.Decl.Inputs[0].Ty
	inner2 := refOf(t, self).Elem
	if pr, _ := table.PartialRes(inner2.ID); pr.Base != resolve.SelfTyRes(table.LocalDefID(crate.Items[1].ID)) {
		t.Fatalf("self param type = %+v", pr.Base)
	}
}

func TestCollectAsyncFnDefs(t *testing.T) {
	crate, table, _ := collect(t, "async fn f(x: &u8) -> u8 { *x }")
	d := table.Definitions()
	it := crate.Items[0]
	fn := table.LocalDefID(it.ID)
	async := it.Fn().Sig.Header.Async
	ret := table.LocalDefID(async.ReturnID)
	closure := table.LocalDefID(async.ClosureID)
	if d.Parent(ret) != fn || d.Key(ret).Data != defs.ImplTrait {
		t.Fatalf("return def = %+v", d.Key(ret))
	}
	if d.Parent(closure) != fn || d.Key(closure).Data != defs.ClosureExpr {
		t.Fatalf("closure def = %+v", d.Key(closure))
	}
}

func TestCollectLifetimes(t *testing.T) {
	crate, table, bag := collect(t, "fn f<'a>(x: &'a u8, y: &u8, z: &'_ u8) -> &'static u8 { x }")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	it := crate.Items[0]
	fn := it.Fn()
	param := fn.Generics.Params[0].ID
	in := fn.Sig.Decl.Inputs

	if got := regionOf(t, table, refOf(t, in[0].Ty).Lifetime.ID); got != resolve.BoundParameter(param, it.ID) {
		t.Errorf("x region = %s", got)
	}
	elided, ok := table.ElidedRegionRes(in[1].Ty.ID)
	if !ok || elided != resolve.Anonymous(it.ID, true) {
		t.Errorf("y region = %s", elided)
	}
	if got := regionOf(t, table, refOf(t, in[2].Ty).Lifetime.ID); got != resolve.Anonymous(it.ID, false) {
		t.Errorf("z region = %s", got)
	}
	if got := regionOf(t, table, refOf(t, fn.Sig.Decl.Output.Ty).Lifetime.ID); got != resolve.StaticRegion {
		t.Errorf("return region = %s", got)
	}
}

func TestCollectBareFnBindsItsRegions(t *testing.T) {
	crate, table, _ := collect(t, "fn f(g: for<'a> fn(&'a u8, &u8)) {}")
	g := crate.Items[0].Fn().Sig.Decl.Inputs[0].Ty
	bare := g.Data.(*ast.BareFnTy)
	inputs := bare.Decl.Inputs
	if got := regionOf(t, table, refOf(t, inputs[0].Ty).Lifetime.ID); got != resolve.BoundParameter(bare.GenericParams[0].ID, g.ID) {
		t.Errorf("'a = %s", got)
	}
	if got, _ := table.ElidedRegionRes(inputs[1].Ty.ID); got != resolve.Anonymous(g.ID, true) {
		t.Errorf("elided = %s", got)
	}
}

func TestCollectInBandLifetimes(t *testing.T) {
	crate, table, bag := collect(t, "#![feature(in_band_lifetimes)]\nfn f(x: &'a u8, y: &'a u8) {}")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	it := crate.Items[0]
	in := it.Fn().Sig.Decl.Inputs
	x := regionOf(t, table, refOf(t, in[0].Ty).Lifetime.ID)
	y := regionOf(t, table, refOf(t, in[1].Ty).Lifetime.ID)
	if x.Kind != resolve.RegionParam || !x.InBand || x.Binder != it.ID {
		t.Fatalf("x = %s", x)
	}
	if x != y {
		t.Fatalf("uses of 'a differ: %s vs %s", x, y)
	}
	def := table.LocalDefID(x.Param)
	d := table.Definitions()
	if d.Parent(def) != table.LocalDefID(it.ID) || d.Key(def).Data != defs.LifetimeNs("'a") {
		t.Fatalf("in-band def = %+v", d.Key(def))
	}
}

func TestCollectUndeclaredLifetime(t *testing.T) {
	_, _, bag := collect(t, "fn f(x: &'a u8) {}")
	if got := bag.Count(diag.ResUnresolvedLifetime); got != 1 {
		t.Fatalf("RES3002 count = %d", got)
	}
}

func TestCollectAnonymousRegionInBounds(t *testing.T) {
	_, _, bag := collect(t, "trait Tr<X> {}\nfn f<T: Tr<&u8>>() where T: Tr<&'_ u8> {}")
	if got := bag.Count(diag.ResAnonRegionForbidden); got != 2 {
		t.Fatalf("RES3003 count = %d", got)
	}
}

func TestCollectPaths(t *testing.T) {
	crate, table, bag := collect(t, "mod m { pub struct S; }\nfn f<T: Iterator>(a: m::S, b: T::Item, c: crate::m::S, d: core::fmt::Debug) {}")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	in := crate.Items[1].Fn().Sig.Decl.Inputs
	s := table.LocalDefID(crate.Items[0].Data.(*ast.ModData).Items[0].ID)

	a, _ := table.PartialRes(in[0].Ty.ID)
	if a.Base != resolve.DefRes(resolve.DefStruct, s) || a.UnresolvedSegments != 0 {
		t.Errorf("a = %+v", a)
	}
	b, _ := table.PartialRes(in[1].Ty.ID)
	if b.Base.DefKind != resolve.DefTyParam || b.UnresolvedSegments != 1 {
		t.Errorf("b = %+v", b)
	}
	c, _ := table.PartialRes(in[2].Ty.ID)
	if c.Base != a.Base {
		t.Errorf("c = %+v", c)
	}
	d, _ := table.PartialRes(in[3].Ty.ID)
	if !d.Base.IsTrait() || d.Base.Extern != "core::fmt::Debug" {
		t.Errorf("d = %+v", d)
	}
}

func TestCollectNameErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"unresolved type", "fn f() -> Missing {}", diag.ResUnresolvedName},
		{"unresolved value", "fn f() { g() }", diag.ResUnresolvedName},
		{"self outside impl", "fn f() -> Self {}", diag.ResSelfOutsideImpl},
		{"duplicate fn", "fn a() {} fn a() {}", diag.ResDuplicateDefinition},
		{"local not visible in nested item", "fn f(x: u8) { fn g() -> u8 { x } }", diag.ResUnresolvedName},
		{"duplicate type param", "fn f<T, T>() {}", diag.ResDuplicateDefinition},
		{"duplicate lifetime param", "fn f<'a, 'a>() {}", diag.ResDuplicateDefinition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := collect(t, tt.src)
			if bag.Count(tt.code) != 1 {
				t.Fatalf("%s count = %d (total %d)", tt.code.ID(), bag.Count(tt.code), bag.Len())
			}
		})
	}
}

func TestCollectLocalsAndConstParams(t *testing.T) {
	crate, table, bag := collect(t, "struct W<const N: usize>;\nfn f<const N: usize>(w: W<N>) -> [u8; N] { let b = w; b }")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	fn := crate.Items[1].Fn()
	n := table.LocalDefID(fn.Generics.Params[0].ID)

	w := fn.Sig.Decl.Inputs[0].Ty.Data.(*ast.PathTy)
	arg := w.Path.Segments[0].Args.Args[0]
	if pr, _ := table.PartialRes(arg.Ty.ID); pr.Base != resolve.DefRes(resolve.DefConstParam, n) {
		t.Errorf("generic arg N = %+v", pr.Base)
	}

	arr := fn.Sig.Decl.Output.Ty.Data.(*ast.ArrayTy)
	if _, ok := table.OptLocalDefID(arr.Len.ID); !ok {
		t.Errorf("array length has no anon const def")
	}
	if pr, _ := table.PartialRes(arr.Len.Value.ID); pr.Base != resolve.DefRes(resolve.DefConstParam, n) {
		t.Errorf("array length N = %+v", pr.Base)
	}

	stmts := fn.Body.Stmts
	let := stmts[0].Local
	if pr, _ := table.PartialRes(let.Init.ID); pr.Base != resolve.LocalRes(fn.Sig.Decl.Inputs[0].Pat.ID) {
		t.Errorf("let init = %+v", pr.Base)
	}
	if pr, _ := table.PartialRes(stmts[1].Expr.ID); pr.Base != resolve.LocalRes(let.Pat.ID) {
		t.Errorf("tail expr = %+v", pr.Base)
	}
}

func TestCollectBlockItemsVisibleInNestedItems(t *testing.T) {
	_, _, bag := collect(t, "fn f() { fn g() {} fn h() { g() } }")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
}
