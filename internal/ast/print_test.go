package ast

import "testing"

func path(names ...string) *Path {
	p := &Path{}
	for _, n := range names {
		p.Segments = append(p.Segments, &PathSegment{Ident: Ident{Name: n}})
	}
	return p
}

func traitBound(names ...string) *GenericBound {
	return &GenericBound{Kind: BoundTrait, Trait: PolyTraitRef{TraitRef: TraitRef{Path: path(names...)}}}
}

func TestTyStringImplTrait(t *testing.T) {
	ty := &Ty{Kind: TyImplTrait, Data: &ImplTraitTy{Bounds: []*GenericBound{
		traitBound("Debug"),
		traitBound("std", "Clone"),
		{Kind: BoundOutlives, Lifetime: Lifetime{Ident: Ident{Name: "'a"}}},
	}}}
	if got := TyString(ty); got != "impl Debug + std::Clone + 'a" {
		t.Fatalf("TyString = %q", got)
	}
}

func TestTyStringShapes(t *testing.T) {
	u8 := &Ty{Kind: TyPath, Data: &PathTy{Path: path("u8")}}
	cases := []struct {
		ty   *Ty
		want string
	}{
		{&Ty{Kind: TyRef, Data: &RefTy{Elem: u8}}, "&u8"},
		{&Ty{Kind: TyRef, Data: &RefTy{Lifetime: &Lifetime{Ident: Ident{Name: "'a"}}, Mut: true, Elem: u8}}, "&'a mut u8"},
		{&Ty{Kind: TyTup, Data: &TupTy{}}, "()"},
		{&Ty{Kind: TyTup, Data: &TupTy{Elems: []*Ty{u8}}}, "(u8,)"},
		{&Ty{Kind: TySlice, Data: &SliceTy{Elem: u8}}, "[u8]"},
		{&Ty{Kind: TyArray, Data: &ArrayTy{Elem: u8, Len: &AnonConst{Value: &Expr{Kind: ExprLit, Data: &LitExpr{Text: "4"}}}}}, "[u8; 4]"},
		{&Ty{Kind: TyNever}, "!"},
	}
	for _, tc := range cases {
		if got := TyString(tc.ty); got != tc.want {
			t.Errorf("TyString = %q, want %q", got, tc.want)
		}
	}
}

func TestCrateFeatures(t *testing.T) {
	c := &Crate{Attrs: []Attr{
		{Style: AttrInner, Name: "feature", Args: "in_band_lifetimes, foo"},
		{Style: AttrInner, Name: "feature", Args: "foo"},
		{Style: AttrOuter, Name: "feature", Args: "bar"},
	}}
	got := c.Features()
	if len(got) != 2 || got[0] != "in_band_lifetimes" || got[1] != "foo" {
		t.Fatalf("Features = %v", got)
	}
	if !c.HasFeature("foo") || c.HasFeature("bar") {
		t.Fatalf("HasFeature mismatch")
	}
}
