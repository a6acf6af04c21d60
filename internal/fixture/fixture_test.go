package fixture_test

import (
	"context"
	"strings"
	"testing"

	"ferrule/internal/diag"
	"ferrule/internal/fixture"
	"ferrule/internal/lower"
	"ferrule/internal/source"
)

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown key", "crate: a\nsrc: fn f() {}\n", "field src not found"},
		{"no name", "source: fn f() {}\n", "crate name is empty"},
		{"bad edition", "crate: a\nedition: 2030\n", "invalid edition"},
		{"unknown feature", "crate: a\nfeatures: [specialization]\n", `unknown feature "specialization"`},
		{"duplicate", "crate: a\n---\ncrate: a\n", `crate "a" is defined by documents 0 and 1`},
		{"conflict", "crate: a\nexpect:\n  no_diagnostics: true\n  diagnostics: [{code: LOW4001}]\n", "conflicts"},
		{"bad severity", "crate: a\nexpect:\n  diagnostics: [{code: LOW4001, severity: fatal}]\n", `unknown severity "fatal"`},
		{"empty", "", "no crate documents"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fixture.Decode(strings.NewReader(tc.doc), "x.yaml")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestScenarios(t *testing.T) {
	fixtures, err := fixture.Load("testdata/scenarios.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(fixtures) != 4 {
		t.Fatalf("expected 4 documents, got %d", len(fixtures))
	}
	if ed, _ := fixtures[2].EditionValue(); ed != source.Edition2018 {
		t.Fatalf("bare_trait edition = %s", ed)
	}
	fs := source.NewFileSet()
	for _, f := range fixtures {
		t.Run(f.Crate, func(t *testing.T) {
			bag := diag.NewBag(32)
			rep := diag.BagReporter{Bag: bag}
			c, err := f.Build(fs, rep)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			lowered, err := lower.Crate(context.Background(), c.AST, c.Table, lower.Options{
				Reporter:        rep,
				Edition:         c.Edition,
				DebugAssertions: true,
			})
			if err != nil {
				t.Fatalf("lower: %v", err)
			}
			if err := f.Check(lowered, c.Table.Definitions(), bag.Items()); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestCheckReportsMismatches(t *testing.T) {
	docs, err := fixture.Decode(strings.NewReader(`
crate: demo
source: "trait Tr {} fn f(x: &Tr) {}"
expect:
  owners: 7
  hir: "crate nothing\n"
  diagnostics:
    - code: LOW4002
`), "inline.yaml")
	if err != nil {
		t.Fatal(err)
	}
	f := docs[0]
	bag := diag.NewBag(8)
	rep := diag.BagReporter{Bag: bag}
	c, err := f.Build(source.NewFileSet(), rep)
	if err != nil {
		t.Fatal(err)
	}
	lowered, err := lower.Crate(context.Background(), c.AST, c.Table, lower.Options{Reporter: rep, Edition: c.Edition})
	if err != nil {
		t.Fatal(err)
	}
	err = f.Check(lowered, c.Table.Definitions(), bag.Items())
	if err == nil {
		t.Fatal("expected mismatches")
	}
	msg := err.Error()
	for _, want := range []string{"owners: got 3, want 7", "missing diagnostic LOW4002", "unexpected error LOW4003", "hir differs", "+++ lowered"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error lacks %q:\n%s", want, msg)
		}
	}
}

func TestBuildStopsOnSyntaxErrors(t *testing.T) {
	docs, err := fixture.Decode(strings.NewReader("crate: broken\nsource: \"fn (\"\n"), "broken.yaml")
	if err != nil {
		t.Fatal(err)
	}
	bag := diag.NewBag(8)
	if _, err := docs[0].Build(source.NewFileSet(), diag.BagReporter{Bag: bag}); err == nil {
		t.Fatal("expected a syntax error")
	}
	if !bag.HasErrors() {
		t.Fatal("syntax errors were not reported")
	}
}
