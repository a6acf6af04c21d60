package lower_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/hir"
	"ferrule/internal/lower"
	"ferrule/internal/parser"
	"ferrule/internal/resolve"
	"ferrule/internal/source"
)

type lowered struct {
	crate *hir.Crate
	table *resolve.Table
	bag   *diag.Bag
}

func lowerSrc(t *testing.T, src string, opts lower.Options) lowered {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("lib.rs", []byte(src))
	bag := diag.NewBag(64)
	rep := diag.BagReporter{Bag: bag}
	res := parser.ParseFile(fs.Get(id), "demo", parser.Options{Reporter: rep})
	if bag.HasErrors() {
		for _, d := range bag.Items() {
			t.Errorf("%s: %s", d.Code.ID(), d.Message)
		}
		t.FailNow()
	}
	table := resolve.Collect(res.Crate, resolve.Options{Reporter: rep})
	opts.Reporter = rep
	opts.DebugAssertions = true
	c, err := lower.Crate(context.Background(), res.Crate, table, opts)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	return lowered{crate: c, table: table, bag: bag}
}

// item finds a top-level item by name.
func (l lowered) item(t *testing.T, name string) *hir.Item {
	t.Helper()
	mod := l.crate.Root().Data.(*hir.ModItem)
	for _, id := range mod.Items {
		if it := l.crate.Item(id); it.Ident.Name == name {
			return it
		}
	}
	t.Fatalf("no item %q", name)
	return nil
}

func fnOf(t *testing.T, it *hir.Item) *hir.FnItem {
	t.Helper()
	fn, ok := it.Data.(*hir.FnItem)
	if !ok {
		t.Fatalf("%s is a %s, not a fn", it.Ident.Name, it.Kind)
	}
	return fn
}

func (l lowered) opaqueOf(t *testing.T, ty *hir.Ty) (*hir.Item, *hir.OpaqueDefTy) {
	t.Helper()
	d, ok := ty.Data.(*hir.OpaqueDefTy)
	if !ok {
		t.Fatalf("return type is %s, not an opaque type", ty.Kind)
	}
	return l.crate.Item(d.Item), d
}

func TestElidedRefStaysImplicit(t *testing.T) {
	l := lowerSrc(t, "fn f<T>(x: &T) {}", lower.Options{})
	fn := fnOf(t, l.item(t, "f"))
	if n := len(fn.Generics.Params); n != 1 {
		t.Fatalf("generics = %d params, want only T", n)
	}
	if got := len(fn.Generics.Lifetimes()); got != 0 {
		t.Fatalf("lifetime params = %d", got)
	}
	ref := fn.Sig.Decl.Inputs[0].Data.(*hir.RefTy)
	if ref.Lifetime.Name.Kind != hir.LifetimeImplicit {
		t.Fatalf("region = %s, want implicit", ref.Lifetime.Name)
	}
}

func TestReturnImplTraitCapturesNamedRegion(t *testing.T) {
	l := lowerSrc(t, "trait Tr {} fn f<'a>(x: &'a u8) -> impl Tr + 'a { x }", lower.Options{})
	f := l.item(t, "f")
	fn := fnOf(t, f)
	opaque, ty := l.opaqueOf(t, fn.Sig.Decl.Output.Ty)

	data := opaque.Data.(*hir.OpaqueTyItem)
	if data.Origin != hir.OriginFnReturn || data.Fn != f.DefID {
		t.Fatalf("origin = %s fn = %s", data.Origin, data.Fn)
	}
	params := data.Generics.Lifetimes()
	if len(params) != 1 || len(ty.Args) != 1 {
		t.Fatalf("params = %d args = %d, want 1/1", len(params), len(ty.Args))
	}
	if params[0].Name.Ident.Name != "'a" || params[0].LifetimeKind != hir.LifetimeParamExplicit {
		t.Fatalf("param = %+v", params[0].Name)
	}
	if arg := ty.Args[0].Lifetime; arg.Name.Kind != hir.LifetimeParam || arg.Name.Param.Ident.Name != "'a" {
		t.Fatalf("arg = %s", arg.Name)
	}
	if parent := l.table.Definitions().Parent(params[0].DefID); parent != opaque.DefID {
		t.Fatalf("captured region parented to %v", parent)
	}
}

func TestAsyncFnCapturesElidedRegions(t *testing.T) {
	l := lowerSrc(t, "async fn f(x: &u8) -> &u8 { x }", lower.Options{})
	f := l.item(t, "f")
	fn := fnOf(t, f)

	lts := fn.Generics.Lifetimes()
	if len(lts) != 1 || lts[0].LifetimeKind != hir.LifetimeParamElided || lts[0].Name.Kind != hir.ParamFresh {
		t.Fatalf("fn lifetimes = %+v", lts)
	}
	in := fn.Sig.Decl.Inputs[0].Data.(*hir.RefTy)
	if in.Lifetime.Name.Param != lts[0].Name {
		t.Fatalf("input region %s does not name the fresh parameter %s", in.Lifetime.Name, lts[0].Name)
	}

	opaque, ty := l.opaqueOf(t, fn.Sig.Decl.Output.Ty)
	data := opaque.Data.(*hir.OpaqueTyItem)
	if data.Origin != hir.OriginAsyncFn {
		t.Fatalf("origin = %s", data.Origin)
	}
	if n := len(data.Generics.Lifetimes()); n != 2 || len(ty.Args) != 2 {
		t.Fatalf("opaque params = %d args = %d, want 2/2", n, len(ty.Args))
	}
	if arg := ty.Args[0].Lifetime.Name; arg.Param != lts[0].Name {
		t.Fatalf("first argument %s should pass the fn's fresh region", arg)
	}
	if arg := ty.Args[1].Lifetime.Name; arg.Kind != hir.LifetimeImplicit {
		t.Fatalf("second argument %s should stay elided", arg)
	}

	body := l.crate.Body(fn.Body)
	closure, ok := body.Value.Data.(*hir.ClosureExpr)
	if !ok || closure.Generator != hir.GenAsyncFn {
		t.Fatalf("async fn body = %s", body.Value.Kind)
	}
	if inner := l.crate.Body(closure.Body); inner == nil || inner.Generator != hir.GenAsyncFn {
		t.Fatalf("generator body missing")
	}
	if !body.Value.Span.IsDesugared() {
		t.Fatalf("closure span not marked as desugared")
	}
}

func TestSiblingOwnersRestartNumbering(t *testing.T) {
	var b strings.Builder
	b.WriteString("fn big() -> (")
	for i := 0; i < 40; i++ {
		b.WriteString("u8, ")
	}
	b.WriteString(") {}\nfn small(x: u8) -> u8 { x }")
	l := lowerSrc(t, b.String(), lower.Options{})

	big := l.crate.Owner(l.item(t, "big").DefID)
	if n := len(big.Nodes.Nodes); n < 40 {
		t.Fatalf("big has %d nodes", n)
	}
	alone := lowerSrc(t, "fn small(x: u8) -> u8 { x }", lower.Options{})
	got := l.crate.Owner(l.item(t, "small").DefID)
	want := alone.crate.Owner(alone.item(t, "small").DefID)
	if len(got.Nodes.Nodes) != len(want.Nodes.Nodes) {
		t.Fatalf("small has %d nodes after a sibling, %d alone", len(got.Nodes.Nodes), len(want.Nodes.Nodes))
	}
	for i, pn := range got.Nodes.Nodes {
		if id := hir.IDOf(pn.Node); int(id.Local) != i {
			t.Fatalf("slot %d holds %s", i, id)
		}
	}
}

func TestUnderscoreLifetimeParam(t *testing.T) {
	l := lowerSrc(t, "fn f<'_>() {}", lower.Options{})
	if got := l.bag.Count(diag.LowUnderscoreLifetimeParam); got != 1 {
		t.Fatalf("LOW4001 reported %d times", got)
	}
	p := fnOf(t, l.item(t, "f")).Generics.Params[0]
	if p.Name.Kind != hir.ParamError || p.LifetimeKind != hir.LifetimeParamError {
		t.Fatalf("param = %+v / %s", p.Name, p.LifetimeKind)
	}
}

func TestInBandLifetimes(t *testing.T) {
	l := lowerSrc(t, "#![feature(in_band_lifetimes)]\nfn f(x: &'a u8, y: &'a u8) {}", lower.Options{})
	lts := fnOf(t, l.item(t, "f")).Generics.Lifetimes()
	if len(lts) != 1 {
		t.Fatalf("lifetimes = %d, want one in-band 'a", len(lts))
	}
	if lts[0].LifetimeKind != hir.LifetimeParamInBand || lts[0].Name.Ident.Name != "'a" {
		t.Fatalf("param = %+v (%s)", lts[0].Name, lts[0].LifetimeKind)
	}
}

func TestImplHeaderCreatesElidedParams(t *testing.T) {
	l := lowerSrc(t, "struct S<'a>(&'a u8); impl S<'_> { fn get(&self) -> u8 { 0 } }", lower.Options{})
	var impl *hir.Item
	for _, def := range l.crate.OwnerDefs() {
		if it := l.crate.Owner(def).Item(); it.Kind == hir.ItemImpl {
			impl = it
		}
	}
	if impl == nil {
		t.Fatalf("no impl lowered")
	}
	data := impl.Data.(*hir.ImplItem)
	lts := data.Generics.Lifetimes()
	if len(lts) != 1 || lts[0].LifetimeKind != hir.LifetimeParamElided {
		t.Fatalf("impl lifetimes = %+v", lts)
	}
	get := fnOf(t, l.crate.Item(data.Items[0]))
	if get.Sig.Decl.ImplicitSelf != hir.SelfImmRef {
		t.Fatalf("implicit self = %s", get.Sig.Decl.ImplicitSelf)
	}
}

func TestArgumentImplTraitIsSynthetic(t *testing.T) {
	l := lowerSrc(t, "trait Tr {} fn f(x: impl Tr) {}", lower.Options{})
	fn := fnOf(t, l.item(t, "f"))
	if len(fn.Generics.Params) != 1 {
		t.Fatalf("params = %d", len(fn.Generics.Params))
	}
	p := fn.Generics.Params[0]
	if !p.Synthetic || p.Kind != hir.ParamTypeKind || !strings.HasPrefix(p.Name.Ident.Name, "impl ") {
		t.Fatalf("param = %+v", p)
	}
	path := fn.Sig.Decl.Inputs[0].Data.(*hir.PathTy).QPath.Path
	if path.Res.Def != p.DefID {
		t.Fatalf("argument type resolves to %v, want %v", path.Res.Def, p.DefID)
	}
}

func TestImplTraitRejectedOutsideSignatures(t *testing.T) {
	l := lowerSrc(t, "trait Tr {} struct S { a: impl Tr } fn f() { let x: impl Tr = 1; }", lower.Options{})
	if got := l.bag.Count(diag.LowImplTraitNotAllowed); got != 2 {
		t.Fatalf("LOW4002 reported %d times, want 2", got)
	}
	var binding bool
	for _, d := range l.bag.Items() {
		if d.Code == diag.LowImplTraitNotAllowed && strings.Contains(d.Message, "variable binding") {
			binding = true
		}
	}
	if !binding {
		t.Fatalf("let binding message not used")
	}
	field := l.item(t, "S").Data.(*hir.StructItem).Fields[0]
	if field.Ty.Kind != hir.TyErr {
		t.Fatalf("field type = %s", field.Ty.Kind)
	}
}

func TestAwaitOutsideAsync(t *testing.T) {
	l := lowerSrc(t, "fn g() {} fn f() { g().await; async { g().await }; }", lower.Options{})
	if got := l.bag.Count(diag.LowAwaitOutsideAsync); got != 1 {
		t.Fatalf("LOW4004 reported %d times, want 1", got)
	}
	body := l.crate.Body(fnOf(t, l.item(t, "f")).Body)
	block := body.Value.Data.(*hir.BlockExpr).Block
	if block.Stmts[0].Expr.Kind != hir.ExprErr {
		t.Fatalf("await outside async lowered to %s", block.Stmts[0].Expr.Kind)
	}
	closure, ok := block.Stmts[1].Expr.Data.(*hir.ClosureExpr)
	if !ok || closure.Generator != hir.GenAsyncBlock {
		t.Fatalf("async block lowered to %s", block.Stmts[1].Expr.Kind)
	}
}

func TestBareTraitObjectByEdition(t *testing.T) {
	src := "trait Tr {} fn f(x: &Tr) {}"
	cases := []struct {
		edition source.Edition
		sev     diag.Severity
		fix     string
	}{
		{source.Edition2018, diag.SevWarning, "use `dyn`"},
		{source.Edition2021, diag.SevError, "add `dyn` keyword before this trait"},
	}
	for _, tc := range cases {
		t.Run(tc.edition.String(), func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual("lib.rs", []byte(src))
			bag := diag.NewBag(16)
			rep := diag.BagReporter{Bag: bag}
			res := parser.ParseFile(fs.Get(id), "demo", parser.Options{Reporter: rep})
			table := resolve.Collect(res.Crate, resolve.Options{Reporter: rep})
			c, err := lower.Crate(context.Background(), res.Crate, table, lower.Options{Reporter: rep, Edition: tc.edition})
			if err != nil {
				t.Fatalf("lower: %v", err)
			}
			if bag.Count(diag.LowBareTraitObject) != 1 {
				t.Fatalf("LOW4003 reported %d times", bag.Count(diag.LowBareTraitObject))
			}
			d := bag.Items()[0]
			if d.Severity != tc.sev || len(d.Fixes) != 1 || d.Fixes[0].Title != tc.fix {
				t.Fatalf("diagnostic = %+v", d)
			}
			if edit := d.Fixes[0].Edits[0]; edit.NewText != "dyn " || edit.Span.Len() != 0 {
				t.Fatalf("edit = %+v", edit)
			}
			mod := c.Root().Data.(*hir.ModItem)
			fn := c.Item(mod.Items[1]).Data.(*hir.FnItem)
			elem := fn.Sig.Decl.Inputs[0].Data.(*hir.RefTy).Elem
			obj, ok := elem.Data.(*hir.TraitObjectTy)
			if !ok || obj.Lifetime.Name.Kind != hir.LifetimeImplicitObjectDefault {
				t.Fatalf("bare trait lowered to %s", elem.Kind)
			}
		})
	}
}

func TestLoweringIsDeterministic(t *testing.T) {
	src := `trait Tr {}
struct P<'a, T> { r: &'a T }
async fn a(x: &u8) -> u8 { *x }
fn b<'a>(x: &'a u8) -> impl Tr + 'a { x }
const N: usize = 3;
fn c(xs: [u8; N]) -> u8 { let (p, q) = (1, 2); p + q }`
	first := lowerSrc(t, src, lower.Options{IncrementalRelativeSpans: true})
	second := lowerSrc(t, src, lower.Options{IncrementalRelativeSpans: true})
	if first.crate.Hash != second.crate.Hash {
		t.Fatalf("crate hashes differ: %x vs %x", first.crate.Hash, second.crate.Hash)
	}
	if err := hir.Validate(first.crate); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestRelativeSpansAndHirMapping(t *testing.T) {
	l := lowerSrc(t, "struct S { a: u8 } fn f<T>() {}", lower.Options{IncrementalRelativeSpans: true})
	f := l.item(t, "f")
	if f.Span.Parent != uint32(f.DefID) {
		t.Fatalf("fn span parent = %d, want %d", f.Span.Parent, f.DefID)
	}
	p := fnOf(t, f).Generics.Params[0]
	ref, ok := l.table.Definitions().HirRef(p.DefID)
	if !ok || ref != p.HirID.Ref() {
		t.Fatalf("T maps to %+v, lowered as %s", ref, p.HirID)
	}
	field := l.item(t, "S").Data.(*hir.StructItem).Fields[0]
	owner := l.crate.Owner(field.HirID.Owner)
	if owner.Nodes.LocalIDToDefID[field.HirID.Local] != field.DefID {
		t.Fatalf("field local id not mapped to its definition")
	}
}

func TestAttributesStoredPerNode(t *testing.T) {
	l := lowerSrc(t, "#[inline]\nfn f() {}\nfn g() {}", lower.Options{})
	f := l.crate.Owner(l.item(t, "f").DefID)
	if got := f.Attrs.Get(hir.RootLocalID); len(got) != 1 || got[0].Name != "inline" {
		t.Fatalf("attrs = %+v", got)
	}
	g := l.crate.Owner(l.item(t, "g").DefID)
	if len(g.Attrs) != 0 {
		t.Fatalf("g stores %d attribute lists", len(g.Attrs))
	}
	if f.AttrHash == g.AttrHash {
		t.Fatalf("attribute hashes should differ")
	}
}

// forgetful drops every elided-region answer.
type forgetful struct{ *resolve.Table }

func (forgetful) ElidedRegionRes(ast.NodeID) (resolve.RegionRes, bool) {
	return resolve.RegionRes{}, false
}

func TestInternalErrorIsReported(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("lib.rs", []byte("fn f(x: &u8) {}"))
	res := parser.ParseFile(fs.Get(id), "demo", parser.Options{Reporter: diag.NopReporter{}})
	table := resolve.Collect(res.Crate, resolve.Options{Reporter: diag.NopReporter{}})

	_, err := lower.Crate(context.Background(), res.Crate, forgetful{table}, lower.Options{})
	var ice *lower.InternalError
	if !errors.As(err, &ice) {
		t.Fatalf("err = %v, want InternalError", err)
	}
	if ice.Code() != diag.LowInternalCompilerError || ice.Crate != "demo" {
		t.Fatalf("ice = %+v", ice)
	}
	if !strings.Contains(ice.Error(), "never resolved") {
		t.Fatalf("message = %q", ice.Error())
	}
}
