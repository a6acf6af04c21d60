package fix

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ferrule/internal/diag"
	"ferrule/internal/source"
)

const bareSrc = "fn f(x: &Tr, y: &Tr) {}\n"

func bareTraitDiag(file source.FileID, at uint32) diag.Diagnostic {
	span := source.Span{File: file, Start: at, End: at + 2}
	return diag.New(diag.SevWarning, diag.LowBareTraitObject, span, "trait objects without an explicit `dyn` are deprecated").
		WithFix("use `dyn`", diag.FixEdit{Span: span.ShrinkToLo(), NewText: "dyn "})
}

func TestApplyAllDryRun(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("a.rs", []byte(bareSrc))
	diags := []diag.Diagnostic{bareTraitDiag(file, 17), bareTraitDiag(file, 9)}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 2 || len(res.Files) != 1 {
		t.Fatalf("applied %d fixes to %d files", len(res.Applied), len(res.Files))
	}
	if got, want := string(res.Files[0].After), "fn f(x: &dyn Tr, y: &dyn Tr) {}\n"; got != want {
		t.Fatalf("after = %q, want %q", got, want)
	}
	if string(res.Files[0].Before) != bareSrc {
		t.Fatalf("before was modified: %q", res.Files[0].Before)
	}
	if res.Applied[0].Code != diag.LowBareTraitObject {
		t.Fatalf("applied code = %v", res.Applied[0].Code)
	}
}

func TestApplyOnceTakesFirstInSourceOrder(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("a.rs", []byte(bareSrc))
	diags := []diag.Diagnostic{bareTraitDiag(file, 17), bareTraitDiag(file, 9)}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeOnce, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got, want := string(res.Files[0].After), "fn f(x: &dyn Tr, y: &Tr) {}\n"; got != want {
		t.Fatalf("after = %q, want %q", got, want)
	}
}

func TestApplySkipsConflictsAndFixtures(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("a.rs", []byte(bareSrc))
	doc := fs.AddVirtual("tests.yaml#demo.rs", []byte(bareSrc))
	diags := []diag.Diagnostic{
		bareTraitDiag(file, 9),
		bareTraitDiag(file, 9),
		bareTraitDiag(doc, 9),
		diag.NewError(diag.LowImplTraitNotAllowed, source.Span{File: file, Start: 0, End: 2}, "no fix"),
	}
	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 {
		t.Fatalf("applied = %+v", res.Applied)
	}
	reasons := map[string]bool{}
	for _, s := range res.Skipped {
		reasons[s.Reason] = true
	}
	for _, want := range []string{"conflicts with a previously applied edit", "target is a fixture document"} {
		if !reasons[want] {
			t.Errorf("missing skip reason %q in %+v", want, res.Skipped)
		}
	}
}

func TestApplyWritesFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.rs")
	if err := os.WriteFile(path, []byte(bareSrc), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	file, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Apply(fs, []diag.Diagnostic{bareTraitDiag(file, 9)}, ApplyOptions{Mode: ApplyModeAll}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "fn f(x: &dyn Tr, y: &Tr) {}\n" {
		t.Fatalf("file = %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestApplyWithoutFixes(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("a.rs", []byte(bareSrc))
	if _, err := Apply(fs, nil, ApplyOptions{}); !errors.Is(err, ErrNoFixes) {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}
}
