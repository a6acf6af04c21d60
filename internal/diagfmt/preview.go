package diagfmt

import (
	"errors"
	"fmt"
	"strings"

	"ferrule/internal/diag"
	"ferrule/internal/source"
)

var errNoFileSet = errors.New("diagfmt: preview needs a file set")

// editPreview returns the whole lines an edit touches, before and after the
// edit is applied.
func editPreview(fs *source.FileSet, edit diag.FixEdit) (before, after []string, err error) {
	if fs == nil {
		return nil, nil, errNoFileSet
	}
	sp := edit.Span
	if int(sp.File) >= fs.Len() {
		return nil, nil, fmt.Errorf("diagfmt: fix edit in unknown file %d", sp.File)
	}
	f := fs.Get(sp.File)
	if sp.End < sp.Start || int(sp.End) > len(f.Content) {
		return nil, nil, fmt.Errorf("diagfmt: fix edit %s outside %s", sp, f.Path)
	}
	first, last := fs.Resolve(sp)
	lo, _ := f.LineBounds(first.Line)
	_, hi := f.LineBounds(max(first.Line, last.Line))

	old := string(f.Content[lo:hi])
	var b strings.Builder
	b.Grow(len(old) + len(edit.NewText))
	b.WriteString(old[:sp.Start-lo])
	b.WriteString(edit.NewText)
	b.WriteString(old[sp.End-lo:])
	return previewLines(old), previewLines(b.String()), nil
}

func previewLines(block string) []string {
	block = strings.TrimRight(block, "\n")
	if block == "" {
		return nil
	}
	return strings.Split(block, "\n")
}
