package parser

import (
	"testing"

	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/source"
)

func parseSrc(t *testing.T, src string) (*ast.Crate, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rs", []byte(src))
	bag := diag.NewBag(32)
	res := ParseFile(fs.Get(id), "demo", Options{Reporter: diag.BagReporter{Bag: bag}})
	return res.Crate, bag
}

func mustParse(t *testing.T, src string) *ast.Crate {
	t.Helper()
	crate, bag := parseSrc(t, src)
	if bag.Len() != 0 {
		for _, d := range bag.Items() {
			t.Errorf("%s: %s", d.Code.ID(), d.Message)
		}
		t.FailNow()
	}
	return crate
}

func TestParseFnSignature(t *testing.T) {
	crate := mustParse(t, "pub async fn f<'a, T: Debug + 'a, const N: usize>(x: &'a T, y: &mut [u8; N]) -> impl Future<Output = u8> + 'a where T: Clone { x }")
	if len(crate.Items) != 1 {
		t.Fatalf("items = %d", len(crate.Items))
	}
	item := crate.Items[0]
	if item.Kind != ast.ItemFn || item.Ident.Name != "f" || item.Vis != ast.VisPublic {
		t.Fatalf("item = %+v", item)
	}
	fn := item.Fn()
	if !fn.Sig.Header.Async.IsAsync {
		t.Fatalf("async not recorded")
	}
	params := fn.Generics.Params
	if len(params) != 3 || params[0].Kind != ast.ParamLifetime || params[1].Kind != ast.ParamType || params[2].Kind != ast.ParamConst {
		t.Fatalf("generic params = %+v", params)
	}
	if len(params[1].Bounds) != 2 || params[1].Bounds[1].Kind != ast.BoundOutlives {
		t.Fatalf("bounds of T = %+v", params[1].Bounds)
	}
	if len(fn.Generics.Where.Predicates) != 1 {
		t.Fatalf("where predicates = %d", len(fn.Generics.Where.Predicates))
	}
	out := fn.Sig.Decl.Output.Ty
	if out == nil || out.Kind != ast.TyImplTrait {
		t.Fatalf("output = %+v", out)
	}
	if got := ast.TyString(out); got != "impl Future<Output = u8> + 'a" {
		t.Fatalf("output = %q", got)
	}
	arr := fn.Sig.Decl.Inputs[1].Ty.Data.(*ast.RefTy).Elem
	if arr.Kind != ast.TyArray {
		t.Fatalf("second input elem = %v", arr.Kind)
	}
	if len(fn.Body.Stmts) != 1 || fn.Body.Stmts[0].Kind != ast.StmtExpr {
		t.Fatalf("body = %+v", fn.Body.Stmts)
	}
}

func TestParseSelfParams(t *testing.T) {
	crate := mustParse(t, `
struct S;
impl S {
    fn a(self) {}
    fn b(mut self) {}
    fn c(&self) {}
    fn d(&'x mut self) {}
}`)
	impl := crate.Items[1].Data.(*ast.ImplData)
	if len(impl.Items) != 4 {
		t.Fatalf("impl items = %d", len(impl.Items))
	}
	tests := []struct {
		kind   ast.TyKind
		patMut bool
	}{
		{ast.TyImplicitSelf, false},
		{ast.TyImplicitSelf, true},
		{ast.TyRef, false},
		{ast.TyRef, false},
	}
	for i, tt := range tests {
		in := impl.Items[i].Fn().Sig.Decl.Inputs[0]
		if !in.IsSelf() || in.Ty.Kind != tt.kind || in.Pat.Mut != tt.patMut {
			t.Errorf("method %d: self param %+v ty %v", i, in.Pat, in.Ty.Kind)
		}
	}
	d := impl.Items[3].Fn().Sig.Decl.Inputs[0].Ty.Data.(*ast.RefTy)
	if d.Lifetime == nil || d.Lifetime.Ident.Name != "'x" || !d.Mut {
		t.Fatalf("&'x mut self = %+v", d)
	}
}

func TestParseTypes(t *testing.T) {
	cases := []struct {
		src  string
		kind ast.TyKind
		str  string
	}{
		{"type A = &&u8;", ast.TyRef, "&&u8"},
		{"type A = dyn Fn(&u8) -> u8 + Send;", ast.TyTraitObject, "dyn Fn(&u8) -> u8 + Send"},
		{"type A = for<'a> fn(&'a u8) -> &'a u8;", ast.TyBareFn, "for<'a> fn(&'a u8) -> &'a u8"},
		{"type A = Box<Debug + 'static>;", ast.TyPath, "Box<Debug + 'static>"},
		{"type A = (u8, (u16,), ());", ast.TyTup, "(u8, (u16,), ())"},
		{"type A = *const [u8];", ast.TyPtr, "*const [u8]"},
		{"type A = impl Iterator<Item: Copy>;", ast.TyImplTrait, "impl Iterator<Item: Copy>"},
		{"type A = !;", ast.TyNever, "!"},
	}
	for _, tc := range cases {
		crate := mustParse(t, tc.src)
		ty := crate.Items[0].Data.(*ast.TyAliasData).Ty
		if ty.Kind != tc.kind {
			t.Errorf("%s: kind = %v, want %v", tc.src, ty.Kind, tc.kind)
		}
		if got := ast.TyString(ty); got != tc.str {
			t.Errorf("%s: TyString = %q, want %q", tc.src, got, tc.str)
		}
	}
}

func TestParseDoubleRefSpans(t *testing.T) {
	crate := mustParse(t, "type A = &&u8;")
	outer := crate.Items[0].Data.(*ast.TyAliasData).Ty
	inner := outer.Data.(*ast.RefTy).Elem
	if inner.Kind != ast.TyRef || inner.Span.Start != outer.Span.Start+1 {
		t.Fatalf("outer %v inner %v", outer.Span, inner.Span)
	}
}

func TestParseCVariadic(t *testing.T) {
	crate := mustParse(t, "extern \"C\" fn printf(fmt: *const u8, ...);")
	decl := crate.Items[0].Fn().Sig.Decl
	if !decl.CVariadic() {
		t.Fatalf("expected c-variadic decl")
	}
	_, bag := parseSrc(t, "fn f(..., x: u8) {}")
	if bag.Count(diag.SynVariadicMustBeLast) != 1 {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
}

func TestParseAttributes(t *testing.T) {
	crate := mustParse(t, `#![feature(in_band_lifetimes)]
/// Docs.
#[inline]
#[must_use = "value"]
fn f() {}
mod m {
    #![allow(dead_code)]
    const _: u8 = 1;
}`)
	if !crate.HasFeature("in_band_lifetimes") {
		t.Fatalf("feature not collected: %+v", crate.Attrs)
	}
	attrs := crate.Items[0].Attrs
	if len(attrs) != 3 || !attrs[0].Doc || attrs[0].Args != "Docs." || attrs[1].Name != "inline" || attrs[2].Args != "value" {
		t.Fatalf("attrs = %+v", attrs)
	}
	mod := crate.Items[1]
	if len(mod.Attrs) != 1 || mod.Attrs[0].Style != ast.AttrInner {
		t.Fatalf("mod attrs = %+v", mod.Attrs)
	}
}

func TestParseExpressions(t *testing.T) {
	crate := mustParse(t, `async fn f() -> u8 {
    let x: [u8; 2] = [1; 2];
    let (a, mut b) = (1, 2);
    g(x.0, a + b * 2 as u8).await;
    async { 1 };
    return h::<u8>() >= 3;
}`)
	stmts := crate.Items[0].Fn().Body.Stmts
	if len(stmts) != 5 {
		t.Fatalf("stmts = %d", len(stmts))
	}
	if stmts[2].Expr.Kind != ast.ExprAwait {
		t.Fatalf("stmt 2 = %v", stmts[2].Expr.Kind)
	}
	call := stmts[2].Expr.Data.(*ast.AwaitExpr).X.Data.(*ast.CallExpr)
	sum := call.Args[1].Data.(*ast.BinaryExpr)
	if sum.Op != "+" || sum.Y.Data.(*ast.BinaryExpr).Op != "*" {
		t.Fatalf("precedence broken: %+v", sum)
	}
	if stmts[3].Expr.Kind != ast.ExprAsync {
		t.Fatalf("stmt 3 = %v", stmts[3].Expr.Kind)
	}
	ret := stmts[4].Expr.Data.(*ast.ReturnExpr)
	if ret.X.Data.(*ast.BinaryExpr).Op != ">=" {
		t.Fatalf("return = %+v", ret.X)
	}
}

func TestParseRecoversAfterBadItem(t *testing.T) {
	crate, bag := parseSrc(t, "fn a(x: ) {} struct ; fn b() {}")
	if bag.Len() == 0 {
		t.Fatalf("expected diagnostics")
	}
	if len(crate.Items) != 2 || crate.Items[1].Ident.Name != "b" {
		t.Fatalf("did not recover, items = %d", len(crate.Items))
	}
}
