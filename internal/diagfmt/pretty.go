package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"ferrule/internal/diag"
	"ferrule/internal/source"
)

type palette struct {
	err, warn, info, code, gutter, caret, removed, added *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:     color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgCyan),
		code:    color.New(color.Bold),
		gutter:  color.New(color.FgBlue),
		caret:   color.New(color.FgRed),
		removed: color.New(color.FgRed),
		added:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gutter, p.caret, p.removed, p.added} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждой диагностики печатает
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем строку исходника с подчёркиванием ^^^ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	pw := &prettyWriter{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	for _, d := range bag.Items() {
		pw.diagnostic(&d)
	}
	return pw.err
}

type prettyWriter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
	err  error
}

func (pw *prettyWriter) printf(format string, args ...any) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.w, format, args...)
}

func (pw *prettyWriter) location(span source.Span) string {
	f := pw.fs.Get(span.File)
	start, _ := pw.fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, pw.opts.PathMode, pw.opts.BaseDir), start.Line, start.Col)
}

func (pw *prettyWriter) diagnostic(d *diag.Diagnostic) {
	hasLoc := located(d, pw.fs)
	if hasLoc {
		pw.printf("%s: ", pw.location(d.Primary))
	}
	pw.printf("%s %s: %s\n",
		pw.pal.severity(d.Severity).Sprint(d.Severity.String()),
		pw.pal.code.Sprint(d.Code.ID()),
		d.Message)
	if hasLoc {
		pw.snippet(d.Primary)
	}
	if pw.opts.ShowNotes {
		for _, n := range d.Notes {
			pw.printf("  note: %s: %s\n", pw.location(n.Span), n.Msg)
		}
	}
	if pw.opts.ShowFixes {
		for _, fix := range d.Fixes {
			pw.printf("  fix: %s\n", fix.Title)
			if !pw.opts.ShowPreview {
				continue
			}
			for _, edit := range fix.Edits {
				before, after, err := editPreview(pw.fs, edit)
				if err != nil {
					continue
				}
				for _, line := range before {
					pw.printf("      %s\n", pw.pal.removed.Sprint("- "+line))
				}
				for _, line := range after {
					pw.printf("      %s\n", pw.pal.added.Sprint("+ "+line))
				}
			}
		}
	}
}

// snippet prints the first line of span with a caret underline.
func (pw *prettyWriter) snippet(span source.Span) {
	f := pw.fs.Get(span.File)
	start, end := pw.fs.Resolve(span)
	lo, hi := f.LineBounds(start.Line)
	text := strings.TrimRight(string(f.Content[lo:hi]), "\r\n")
	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		width = int(end.Col - start.Col)
	}
	num := fmt.Sprintf("%d", start.Line)
	pad := strings.Repeat(" ", len(num))
	pw.printf("%s %s %s\n", pw.pal.gutter.Sprint(num), pw.pal.gutter.Sprint("|"), text)
	pw.printf("%s %s %s%s\n", pad, pw.pal.gutter.Sprint("|"),
		strings.Repeat(" ", int(start.Col-1)),
		pw.pal.caret.Sprint(strings.Repeat("^", width)))
}
