package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"ferrule/internal/diag"
	"ferrule/internal/source"
)

func bareTraitBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("lib.rs", []byte("trait Tr {}\nfn f(x: &Tr) {}\n"))
	bag := diag.NewBag(10)
	tr := source.Span{File: id, Start: 21, End: 23}
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.LowBareTraitObject,
		Message:  "trait objects without an explicit `dyn` are deprecated",
		Primary:  tr,
		Notes:    []diag.Note{{Span: tr, Msg: "trait declared here"}},
		Fixes: []diag.Fix{{
			Title: "use `dyn`",
			Edits: []diag.FixEdit{{Span: source.Span{File: id, Start: 21, End: 21}, NewText: "dyn "}},
		}},
	})
	bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.LowInternalCompilerError, Message: "internal compiler error"})
	return bag, fs
}

func TestPretty(t *testing.T) {
	bag, fs := bareTraitBag(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true, ShowFixes: true, ShowPreview: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"lib.rs:2:10: WARNING LOW4003: trait objects",
		"2 | fn f(x: &Tr) {}",
		"  |          ^^",
		"  note: lib.rs:2:10: trait declared here",
		"  fix: use `dyn`",
		"- fn f(x: &Tr) {}",
		"+ fn f(x: &dyn Tr) {}",
		"\nERROR LOW4099: internal compiler error\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("color codes with Color=false:\n%q", out)
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := bareTraitBag(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Color: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected ANSI escapes:\n%q", buf.String())
	}
}

func TestJSON(t *testing.T) {
	bag, fs := bareTraitBag(t)
	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeFixes: true, IncludePreviews: true})
	if err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 {
		t.Fatalf("count = %d", out.Count)
	}
	first := out.Diagnostics[0]
	if first.Location == nil || first.Location.StartLine != 2 || first.Location.StartCol != 10 {
		t.Errorf("location = %+v", first.Location)
	}
	if len(first.Notes) != 0 {
		t.Errorf("notes included without IncludeNotes")
	}
	if len(first.Fixes) != 1 || first.Fixes[0].Edits[0].NewText != "dyn " {
		t.Errorf("fixes = %+v", first.Fixes)
	}
	if got := first.Fixes[0].Edits[0].AfterLines; len(got) != 1 || got[0] != "fn f(x: &dyn Tr) {}" {
		t.Errorf("preview = %q", got)
	}
	if out.Diagnostics[1].Location != nil {
		t.Errorf("internal error carries a location")
	}
}

func TestJSONMax(t *testing.T) {
	bag, fs := bareTraitBag(t)
	out, err := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 {
		t.Fatalf("count = %d", out.Count)
	}
}
