package defs

import (
	"testing"

	"ferrule/internal/source"
)

func TestDefinitionsDisambiguates(t *testing.T) {
	d := NewDefinitions("demo", source.Span{})
	fn := d.Create(CrateDefID, ValueNs("foo"), source.RootContext, source.Span{Start: 0, End: 10})
	o1 := d.Create(fn, ImplTrait, source.RootContext, source.Span{})
	o2 := d.Create(fn, ImplTrait, source.RootContext, source.Span{})

	if d.Key(o1).Disambiguator != 0 || d.Key(o2).Disambiguator != 1 {
		t.Fatalf("disambiguators = %d, %d", d.Key(o1).Disambiguator, d.Key(o2).Disambiguator)
	}
	if d.PathHash(o1) == d.PathHash(o2) {
		t.Fatalf("siblings share a path hash")
	}
	if got := d.PathString(o2); got != "demo::foo::{opaque#1}" {
		t.Fatalf("PathString = %q", got)
	}
	if d.Parent(o1) != fn || d.Parent(CrateDefID) != NoDefID {
		t.Fatalf("unexpected parents")
	}
	if id, ok := d.ByHash(d.PathHash(fn)); !ok || id != fn {
		t.Fatalf("ByHash(%v) = %v, %v", fn, id, ok)
	}
}

func TestDefPathHashIndependentOfCreationOrder(t *testing.T) {
	a := NewDefinitions("demo", source.Span{})
	af := a.Create(CrateDefID, ValueNs("f"), source.RootContext, source.Span{Start: 5})
	a.Create(CrateDefID, ValueNs("g"), source.RootContext, source.Span{})

	b := NewDefinitions("demo", source.Span{})
	b.Create(CrateDefID, ValueNs("g"), source.RootContext, source.Span{})
	bf := b.Create(CrateDefID, ValueNs("f"), source.RootContext, source.Span{Start: 500})

	if a.PathHash(af) != b.PathHash(bf) {
		t.Fatalf("path hash depends on creation order or span")
	}
	if a.PathHash(CrateDefID) == NewDefinitions("other", source.Span{}).PathHash(CrateDefID) {
		t.Fatalf("crate name not part of the root hash")
	}
}

func TestHirMappingOnce(t *testing.T) {
	d := NewDefinitions("demo", source.Span{})
	f := d.Create(CrateDefID, ValueNs("f"), source.RootContext, source.Span{})
	if _, ok := d.HirRef(f); ok {
		t.Fatalf("mapping visible before init")
	}
	d.InitHirMapping(map[LocalDefID]HirRef{f: {Owner: f}})
	if ref, ok := d.HirRef(f); !ok || ref.Owner != f || ref.Local != 0 {
		t.Fatalf("HirRef = %+v, %v", ref, ok)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("second InitHirMapping did not panic")
		}
	}()
	d.InitHirMapping(nil)
}

func TestCreateUnderUnknownParentPanics(t *testing.T) {
	d := NewDefinitions("demo", source.Span{})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	d.Create(LocalDefID(99), ValueNs("x"), source.RootContext, source.Span{})
}
