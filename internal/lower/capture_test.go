package lower_test

import (
	"testing"

	"ferrule/internal/diag"
	"ferrule/internal/hir"
	"ferrule/internal/lower"
)

// capturedNames lists the lifetime parameters of the opaque item and the
// arguments the use site passes for them.
func capturedNames(t *testing.T, l lowered, ty *hir.Ty) (params, args []string) {
	t.Helper()
	opaque, def := l.opaqueOf(t, ty)
	for _, p := range opaque.Data.(*hir.OpaqueTyItem).Generics.Lifetimes() {
		params = append(params, p.Name.String())
	}
	for _, a := range def.Args {
		args = append(args, a.Lifetime.Name.String())
	}
	return params, args
}

func sameNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestCaptureOrderFollowsFirstUse(t *testing.T) {
	src := `trait Tr<'x, 'y, 'z> {}
fn f<'a, 'b, 'c>(x: &'a u8, y: &'b u8, z: &'c u8) -> impl Tr<'c, 'a, 'b> + 'a { x }`
	l := lowerSrc(t, src, lower.Options{})
	params, args := capturedNames(t, l, fnOf(t, l.item(t, "f")).Sig.Decl.Output.Ty)
	want := []string{"'c", "'a", "'b"}
	if !sameNames(params, want) || !sameNames(args, want) {
		t.Fatalf("params = %v args = %v, want %v", params, args, want)
	}
}

func TestBinderRegionsAreNotCaptured(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"poly trait ref", `trait Tr<'x> {}
fn f<'a>(x: &'a u8) -> impl for<'k> Tr<'k> + 'a { x }`},
		{"bare fn binder", `trait Gen<T> {}
fn f<'a>(x: &'a u8) -> impl Gen<for<'k> fn(&'k u8)> + 'a { x }`},
		{"bare fn elision", `trait Gen<T> {}
fn f<'a>(x: &'a u8) -> impl Gen<fn(&u8) -> &u8> + 'a { x }`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := lowerSrc(t, tc.src, lower.Options{})
			params, args := capturedNames(t, l, fnOf(t, l.item(t, "f")).Sig.Decl.Output.Ty)
			if !sameNames(params, []string{"'a"}) || !sameNames(args, []string{"'a"}) {
				t.Fatalf("params = %v args = %v, want only 'a", params, args)
			}
		})
	}
}

func TestAliasOpaqueLeavesAnonymousRegionsUnnamed(t *testing.T) {
	l := lowerSrc(t, "trait Seq { type Item; }\ntype A = impl Seq<Item = &u8>;", lower.Options{})
	alias := l.item(t, "A").Data.(*hir.TyAliasItem)
	opaque, def := l.opaqueOf(t, alias.Ty)
	data := opaque.Data.(*hir.OpaqueTyItem)
	if data.Origin != hir.OriginTyAlias {
		t.Fatalf("origin = %s", data.Origin)
	}
	if n := len(data.Generics.Lifetimes()); n != 0 || len(def.Args) != 0 {
		t.Fatalf("alias opaque captured %d regions (%d args)", n, len(def.Args))
	}
	seg := data.Bounds[0].Trait.TraitRef.Path.Segments
	binding := seg[len(seg)-1].Args.Bindings[0]
	ref, ok := binding.Ty.Data.(*hir.RefTy)
	if !ok {
		t.Fatalf("Item = %s, want a reference", binding.Ty.Kind)
	}
	if got := ref.Lifetime.Name; got.Kind != hir.LifetimeImplicit {
		t.Fatalf("region = %s, want an implicit one", got)
	}
}

func TestAnonymousRegionInLifetimeBoundIsReported(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"bare fn binder", "fn f(x: for<'a: '_> fn(&'a u8)) {}"},
		{"dyn binder", "trait Tr<'a> {}\nfn g(x: &dyn for<'a: '_> Tr<'a>) {}"},
		{"impl binder", "trait Tr<'a> {}\nfn h(x: impl for<'a: '_> Tr<'a>) {}"},
		{"generics", "fn k<'a: '_>(x: &'a u8) {}"},
		{"where clause", "fn w<'a>(x: &'a u8) where 'a: '_ {}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := lowerSrc(t, tc.src, lower.Options{})
			if got := l.bag.Count(diag.ResAnonRegionForbidden); got != 1 {
				t.Fatalf("RES3003 count = %d, want 1", got)
			}
			if got := l.bag.Count(diag.LowInternalCompilerError); got != 0 {
				t.Fatalf("internal error reported")
			}
		})
	}
}

func TestBareFnBinderBoundLowersToErrorRegion(t *testing.T) {
	l := lowerSrc(t, "fn f(x: for<'a: '_> fn(&'a u8)) {}", lower.Options{})
	bare, ok := fnOf(t, l.item(t, "f")).Sig.Decl.Inputs[0].Data.(*hir.BareFnTy)
	if !ok {
		t.Fatalf("input is not a bare fn")
	}
	bounds := bare.GenericParams[0].Bounds
	if len(bounds) != 1 || bounds[0].Lifetime == nil {
		t.Fatalf("bounds = %+v", bounds)
	}
	if got := bounds[0].Lifetime.Name.Kind; got != hir.LifetimeError {
		t.Fatalf("bound region = %s, want error", bounds[0].Lifetime.Name)
	}
}

func TestOwnerHashIgnoresSiblingDesugaring(t *testing.T) {
	const tail = "fn b() -> impl Tr { 1 }"
	cases := []struct {
		name    string
		sibling string
	}{
		{"plain", "fn y() {}\n"},
		{"async", "async fn z() {}\n"},
		{"async with elision", "async fn z(x: &u8) -> &u8 { x }\n"},
	}
	hashes := func(t *testing.T, src string) (fn, opaque hir.OwnerNodes) {
		t.Helper()
		l := lowerSrc(t, src, lower.Options{IncrementalRelativeSpans: true})
		b := l.item(t, "b")
		o, _ := l.opaqueOf(t, fnOf(t, b).Sig.Decl.Output.Ty)
		return l.crate.Owner(b.DefID).Nodes, l.crate.Owner(o.DefID).Nodes
	}
	baseFn, baseOpaque := hashes(t, "trait Tr {}\n"+tail)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fn, opaque := hashes(t, "trait Tr {}\n"+tc.sibling+tail)
			if fn.Hash != baseFn.Hash {
				t.Errorf("b changed: %x vs %x", fn.Hash, baseFn.Hash)
			}
			if opaque.Hash != baseOpaque.Hash {
				t.Errorf("opaque of b changed: %x vs %x", opaque.Hash, baseOpaque.Hash)
			}
		})
	}
}
