package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetResolveAndSnippet(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("lib.rs", []byte("fn a() {}\nfn b<'x>() {}\n"))
	span := Span{File: id, Start: 15, End: 17}
	start, end := fs.Resolve(span)
	if start.Line != 2 || start.Col != 6 || end.Col != 8 {
		t.Fatalf("Resolve = %+v %+v", start, end)
	}
	if got := fs.Snippet(span); got != "'x" {
		t.Fatalf("Snippet = %q", got)
	}
	if got := fs.Snippet(Span{File: id, Start: 5, End: 500}); got != "" {
		t.Fatalf("out of range Snippet = %q", got)
	}
}

func TestFileSetLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.rs")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFfn main() {}\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "fn main() {}\n" {
		t.Fatalf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b", f.Flags)
	}
	if f.Path != filepath.ToSlash(filepath.Clean(path)) {
		t.Fatalf("path = %q", f.Path)
	}
}

func TestFileLineBounds(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("lib.rs", []byte("ab\ncd\nef")))
	cases := []struct {
		line   uint32
		lo, hi uint32
	}{
		{0, 0, 0},
		{1, 0, 3},
		{2, 3, 6},
		{3, 6, 8},
		{9, 8, 8},
	}
	for _, c := range cases {
		lo, hi := f.LineBounds(c.line)
		if lo != c.lo || hi != c.hi {
			t.Errorf("LineBounds(%d) = [%d,%d), want [%d,%d)", c.line, lo, hi, c.lo, c.hi)
		}
	}
}
