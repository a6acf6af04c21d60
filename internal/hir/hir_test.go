package hir

import (
	"strings"
	"testing"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/resolve"
	"ferrule/internal/source"
)

// fixture: `fn f() -> u8 { 1 }` lowered by hand, with every span relative
// to the fn and the fn starting at base.
type fnFixture struct {
	defs   *defs.Definitions
	fn     defs.LocalDefID
	item   *Item
	lit    *Expr
	seg    *PathSegment
	bodies []BodyEntry
}

func newFnFixture(base uint32) *fnFixture {
	d := defs.NewDefinitions("demo", source.Span{Start: 0, End: base + 100})
	fn := d.Create(defs.CrateDefID, defs.ValueNs("f"), source.RootContext, source.Span{Start: base, End: base + 20})
	sp := func(lo, hi uint32) source.Span {
		return source.Span{Start: base + lo, End: base + hi, Parent: uint32(fn)}
	}
	id := func(local ItemLocalID) HirID { return HirID{Owner: fn, Local: local} }

	seg := &PathSegment{HirID: id(2), Ident: Ident{Name: "u8", Span: sp(10, 12)}, Res: Res{Kind: resolve.ResPrimTy, Prim: "u8"}}
	ret := &Ty{HirID: id(1), Kind: TyPath, Span: sp(10, 12), Data: &PathTy{QPath: &QPath{
		Kind: QPathResolved,
		Path: &Path{Span: sp(10, 12), Res: seg.Res, Segments: []*PathSegment{seg}},
		Span: sp(10, 12),
	}}}
	lit := &Expr{HirID: id(5), Kind: ExprLit, Span: sp(15, 16), Data: &LitExpr{Kind: ast.LitInt, Text: "1"}}
	block := &Block{HirID: id(4), Expr: lit, Span: sp(13, 18)}
	value := &Expr{HirID: id(3), Kind: ExprBlock, Span: sp(13, 18), Data: &BlockExpr{Block: block}}
	body := &Body{Value: value}
	item := &Item{
		HirID: OwnerID(fn),
		DefID: fn,
		Ident: Ident{Name: "f", Span: sp(3, 4)},
		Kind:  ItemFn,
		Span:  sp(0, 18),
		Data: &FnItem{
			Sig:      FnSig{Decl: &FnDecl{Output: FnRetTy{Ty: ret, Span: ret.Span}}, Span: sp(0, 12)},
			Generics: EmptyGenerics(sp(4, 4)),
			Body:     body.ID(),
		},
	}
	return &fnFixture{defs: d, fn: fn, item: item, lit: lit, seg: seg, bodies: []BodyEntry{{Local: 3, Body: body}}}
}

func (f *fnFixture) crate(t *testing.T) *Crate {
	t.Helper()
	nodes, parenting, err := IndexOwner(f.fn, f.item, f.bodies, 6)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	full, shallow := HashOwner(f.defs, nil, f.item, f.bodies)
	fnOwner := &OwnerInfo{
		Def:       f.fn,
		Nodes:     OwnerNodes{Hash: full, HashWithoutBodies: shallow, Nodes: nodes, Bodies: f.bodies},
		Parenting: parenting,
		Attrs:     AttributeMap{},
	}
	root := &Item{HirID: OwnerID(defs.CrateDefID), DefID: defs.CrateDefID, Ident: Ident{Name: "demo"}, Kind: ItemMod,
		Data: &ModItem{Items: []ItemID{{Def: f.fn}}}}
	rootNodes, rootParenting, err := IndexOwner(defs.CrateDefID, root, nil, 1)
	if err != nil {
		t.Fatalf("index root: %v", err)
	}
	rootHash, rootShallow := HashOwner(f.defs, nil, root, nil)
	c := &Crate{Name: "demo", Owners: make([]*OwnerInfo, f.defs.Len()+1)}
	c.Owners[defs.CrateDefID] = &OwnerInfo{
		Def:       defs.CrateDefID,
		Nodes:     OwnerNodes{Hash: rootHash, HashWithoutBodies: rootShallow, Nodes: rootNodes},
		Parenting: rootParenting,
		Attrs:     AttributeMap{},
	}
	c.Owners[f.fn] = fnOwner
	c.Hash = HashCrate(f.defs, c)
	return c
}

func TestIndexOwnerParents(t *testing.T) {
	f := newFnFixture(0)
	nodes, _, err := IndexOwner(f.fn, f.item, f.bodies, 6)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	wantParents := []ItemLocalID{0, 0, 1, 0, 3, 4}
	for i, want := range wantParents {
		if nodes[i].Parent != want {
			t.Errorf("parent of %d = %d, want %d", i, nodes[i].Parent, want)
		}
	}
	if _, ok := nodes[5].Node.(*Expr); !ok {
		t.Fatalf("node 5 is %s", NodeKind(nodes[5].Node))
	}
}

func TestIndexOwnerRejectsBrokenTables(t *testing.T) {
	t.Run("hole", func(t *testing.T) {
		f := newFnFixture(0)
		_, _, err := IndexOwner(f.fn, f.item, f.bodies, 7)
		if err == nil || !strings.Contains(err.Error(), "no node carries it") {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("duplicate", func(t *testing.T) {
		f := newFnFixture(0)
		f.seg.HirID.Local = 1
		_, _, err := IndexOwner(f.fn, f.item, f.bodies, 6)
		if err == nil || !strings.Contains(err.Error(), "share an id") {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("foreign owner", func(t *testing.T) {
		f := newFnFixture(0)
		f.lit.HirID.Owner = defs.CrateDefID
		_, _, err := IndexOwner(f.fn, f.item, f.bodies, 6)
		if err == nil || !strings.Contains(err.Error(), "belongs to owner") {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("missing body", func(t *testing.T) {
		f := newFnFixture(0)
		_, _, err := IndexOwner(f.fn, f.item, nil, 6)
		if err == nil || !strings.Contains(err.Error(), "is missing") {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestHashOwnerSeparatesBodies(t *testing.T) {
	a := newFnFixture(0)
	fullA, shallowA := HashOwner(a.defs, nil, a.item, a.bodies)
	fullA2, shallowA2 := HashOwner(a.defs, nil, a.item, a.bodies)
	if fullA != fullA2 || shallowA != shallowA2 {
		t.Fatalf("hash is not deterministic")
	}

	b := newFnFixture(0)
	b.lit.Data = &LitExpr{Kind: ast.LitInt, Text: "2"}
	fullB, shallowB := HashOwner(b.defs, nil, b.item, b.bodies)
	if fullA == fullB {
		t.Fatalf("body edit did not change the full hash")
	}
	if shallowA != shallowB {
		t.Fatalf("body edit changed the hash without bodies")
	}
}

func TestHashOwnerIgnoresItemPosition(t *testing.T) {
	a := newFnFixture(0)
	b := newFnFixture(40)
	fullA, shallowA := HashOwner(a.defs, nil, a.item, a.bodies)
	fullB, shallowB := HashOwner(b.defs, nil, b.item, b.bodies)
	if fullA != fullB || shallowA != shallowB {
		t.Fatalf("moving the item changed its hash")
	}
}

func TestValidateCrate(t *testing.T) {
	f := newFnFixture(0)
	c := f.crate(t)
	if err := Validate(c); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := c.Owner(defs.CrateDefID).Parenting[f.fn]; got != RootLocalID {
		t.Fatalf("fn parented at %d", got)
	}

	c.Owners[f.fn].Nodes.Nodes[4].Parent = 99
	c.Owners[f.fn].Attrs[2] = nil
	err := Validate(c)
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{"dangling parent 99", "empty attribute list"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %v", want, err)
		}
	}
}

func TestDumpString(t *testing.T) {
	f := newFnFixture(0)
	out := DumpString(f.crate(t), f.defs)
	for _, want := range []string{
		"crate demo\n",
		"owner DefId(2) demo::f nodes=6 bodies=1\n",
		"  fn f() -> u8\n",
		"  body: { 1 }\n",
		"  crate { demo::f }\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump lacks %q:\n%s", want, out)
		}
	}
}
