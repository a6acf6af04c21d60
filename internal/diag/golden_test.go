package diag

import (
	"testing"

	"ferrule/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Add("./testdata/sample.rs", []byte("fn f<'_>() {}\nfn g() -> impl X {}\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     LowBareTraitObject,
			Message:  "trait objects without an explicit `dyn` are deprecated",
			Primary:  source.Span{File: file, Start: 24, End: 30},
		},
		{
			Severity: SevError,
			Code:     LowUnderscoreLifetimeParam,
			Message:  "`'_` cannot be used\nhere",
			Primary:  source.Span{File: file, Start: 5, End: 7},
			Notes: []Note{
				{Span: source.Span{File: file, Start: 0, End: 2}, Msg: "in this item"},
			},
		},
	}

	expected := "note LOW4001 testdata/sample.rs:1:1 in this item\n" +
		"error LOW4001 testdata/sample.rs:1:6 `'_` cannot be used here\n" +
		"warning LOW4003 testdata/sample.rs:2:11 trait objects without an explicit `dyn` are deprecated"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	b := NewBag(3)
	r := BagReporter{Bag: b}
	ReportError(r, LowImplTraitNotAllowed, source.Span{Start: 9, End: 10}, "b").Emit()
	ReportError(r, LowUnderscoreLifetimeParam, source.Span{Start: 1, End: 2}, "a").Emit()
	ReportError(r, LowUnderscoreLifetimeParam, source.Span{Start: 1, End: 2}, "a").Emit()
	if b.Add(NewError(LowInfo, source.Span{}, "over")) {
		t.Fatalf("bag accepted more than its cap")
	}
	b.Sort()
	b.Dedup()
	items := b.Items()
	if len(items) != 2 || items[0].Code != LowUnderscoreLifetimeParam {
		t.Fatalf("unexpected items %+v", items)
	}
	if !b.HasErrors() || b.Count(LowImplTraitNotAllowed) != 1 {
		t.Fatalf("HasErrors/Count mismatch")
	}
}

func TestDedupReporter(t *testing.T) {
	b := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: b})
	at := source.Span{File: 1, Start: 4, End: 8}
	reports := []source.Span{
		at,
		at.WithParent(3),
		at.WithCtxt(2),
		{File: 1, Start: 4, End: 9},
		{File: 2, Start: 4, End: 8},
	}
	for _, sp := range reports {
		ReportWarning(r, LowBareTraitObject, sp, "dyn").Emit()
	}
	ReportError(r, LowBareTraitObject, at, "dyn").Emit()
	ReportWarning(r, LowBareTraitObject, at, "other").Emit()
	if b.Len() != 5 {
		t.Fatalf("Len = %d, want 5", b.Len())
	}
	if got := r.Suppressed(); got != 2 {
		t.Fatalf("Suppressed = %d, want 2", got)
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		LowUnderscoreLifetimeParam: "LOW4001",
		SynUnexpectedToken:         "SYN2001",
		ResUnresolvedName:          "RES3001",
		LexBadLifetime:             "LEX1005",
		IOFixtureError:             "IO5002",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %s, want %s", code, got, want)
		}
	}
}

func TestFormatGoldenSpanless(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Add("a.rs", []byte("fn f() {}\n"), 0)
	diags := []Diagnostic{
		{Severity: SevError, Code: LowImplTraitNotAllowed, Message: "x", Primary: source.Span{File: file, Start: 3, End: 4}},
		{Severity: SevError, Code: LowInternalCompilerError, Message: "boom"},
	}
	want := "error LOW4099 boom\nerror LOW4002 a.rs:1:4 x"
	if got := FormatGoldenDiagnostics(diags, fs, false); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
	if LowBareTraitObject.Spanless() || !IOCacheError.Spanless() {
		t.Fatalf("Spanless classification is wrong")
	}
}

func TestParseSeverity(t *testing.T) {
	cases := map[string]Severity{
		"error":   SevError,
		"Warning": SevWarning,
		"warn":    SevWarning,
		" note ":  SevInfo,
		"INFO":    SevInfo,
	}
	for in, want := range cases {
		got, err := ParseSeverity(in)
		if err != nil || got != want {
			t.Errorf("ParseSeverity(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Errorf("ParseSeverity(fatal) accepted")
	}
	if got := Severity(7).String(); got != "UNKNOWN" {
		t.Errorf("String = %q", got)
	}
}

func TestWithNoteDoesNotShareNotes(t *testing.T) {
	base := NewError(LowImplTraitNotAllowed, source.Span{}, "x")
	base.Notes = make([]Note, 1, 4)
	a := base.WithNote(source.Span{Start: 1}, "a")
	b := base.WithNote(source.Span{Start: 2}, "b")
	if a.Notes[1].Msg != "a" || b.Notes[1].Msg != "b" {
		t.Fatalf("notes aliased: %+v %+v", a.Notes, b.Notes)
	}
}
