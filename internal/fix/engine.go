// Package fix applies the edits suggested by diagnostics to source files.
package fix

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"ferrule/internal/diag"
	"ferrule/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	// ApplyModeOnce applies the first fix in source order.
	ApplyModeOnce ApplyMode = iota
	ApplyModeAll
)

// ApplyOptions configures how fixes are selected and whether files are
// written.
type ApplyOptions struct {
	Mode   ApplyMode
	DryRun bool
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	Title     string
	Code      diag.Code
	Message   string
	Path      string
	EditCount int
}

// SkippedFix captures a skipped fix with a reason.
type SkippedFix struct {
	Title  string
	Path   string
	Reason string
}

// FileChange is the new content of one file.
type FileChange struct {
	Path      string
	Before    []byte
	After     []byte
	EditCount int
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied []AppliedFix
	Skipped []SkippedFix
	Files   []FileChange
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

// Apply collects fixes from diagnostics, selects a subset according to opts
// and applies them. Files are written unless opts.DryRun is set.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	candidates, skips := gatherCandidates(fs, diagnostics)
	result.Skipped = append(result.Skipped, skips...)
	sortCandidates(candidates)
	if opts.Mode == ApplyModeOnce && len(candidates) > 1 {
		candidates = candidates[:1]
	}
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}

	applied, skipped, accepted := stage(fs, candidates)
	result.Applied = applied
	result.Skipped = append(result.Skipped, skipped...)
	if len(applied) == 0 {
		return result, ErrNoFixes
	}

	result.Files = render(fs, accepted)
	if opts.DryRun {
		return result, nil
	}
	for _, ch := range result.Files {
		mode := os.FileMode(0o644)
		if info, err := os.Stat(ch.Path); err == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(ch.Path, ch.After, mode); err != nil {
			return result, fmt.Errorf("write %s: %w", ch.Path, err)
		}
	}
	return result, nil
}

// Writable reports whether path names a file of its own. Crates read from
// fixture documents live in virtual files named `doc.yaml#crate.rs`.
func Writable(path string) bool {
	return path != "" && !strings.Contains(path, "#")
}

func gatherCandidates(fs *source.FileSet, diagnostics []diag.Diagnostic) ([]candidate, []SkippedFix) {
	var (
		cands []candidate
		skips []SkippedFix
	)
	order := 0
	for _, d := range diagnostics {
		for _, f := range d.Fixes {
			if reason := unusable(fs, f); reason != "" {
				skips = append(skips, SkippedFix{Title: f.Title, Path: pathOf(fs, d.Primary.File), Reason: reason})
				continue
			}
			cands = append(cands, candidate{diag: d, fix: f, order: order})
			order++
		}
	}
	return cands, skips
}

func unusable(fs *source.FileSet, f diag.Fix) string {
	if len(f.Edits) == 0 {
		return "fix has no edits"
	}
	for _, e := range f.Edits {
		if int(e.Span.File) >= fs.Len() {
			return "edit targets an unknown file"
		}
		file := fs.Get(e.Span.File)
		if !Writable(file.Path) {
			return "target is a fixture document"
		}
		if e.Span.Start > e.Span.End || int(e.Span.End) > len(file.Content) {
			return "edit span out of range"
		}
	}
	return ""
}

// sortCandidates orders fixes by file, then span, then the order they were
// reported in.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].diag, candidates[j].diag
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		return candidates[i].order < candidates[j].order
	})
}

// stage accepts fixes whose edits do not collide with an edit accepted
// before them. Edits keep their original coordinates.
func stage(fs *source.FileSet, candidates []candidate) ([]AppliedFix, []SkippedFix, map[source.FileID][]diag.FixEdit) {
	accepted := make(map[source.FileID][]diag.FixEdit)
	var (
		applied []AppliedFix
		skipped []SkippedFix
	)
	for _, cand := range candidates {
		path := pathOf(fs, cand.diag.Primary.File)
		if conflicts(accepted, cand.fix.Edits) {
			skipped = append(skipped, SkippedFix{Title: cand.fix.Title, Path: path, Reason: "conflicts with a previously applied edit"})
			continue
		}
		for _, e := range cand.fix.Edits {
			accepted[e.Span.File] = append(accepted[e.Span.File], e)
		}
		applied = append(applied, AppliedFix{
			Title:     cand.fix.Title,
			Code:      cand.diag.Code,
			Message:   cand.diag.Message,
			Path:      path,
			EditCount: len(cand.fix.Edits),
		})
	}
	return applied, skipped, accepted
}

func conflicts(accepted map[source.FileID][]diag.FixEdit, edits []diag.FixEdit) bool {
	for i, e := range edits {
		for _, prev := range accepted[e.Span.File] {
			if spansConflict(prev, e) {
				return true
			}
		}
		for _, other := range edits[:i] {
			if other.Span.File == e.Span.File && spansConflict(other, e) {
				return true
			}
		}
	}
	return false
}

// spansConflict reports whether two edits overlap. Spans are half-open; two
// insertions conflict only when they are the same insertion.
func spansConflict(a, b diag.FixEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return aStart == bStart && a.NewText == b.NewText
	}
	if aStart == aEnd {
		return bStart <= aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart <= bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

// render applies the accepted edits back to front so earlier offsets stay
// valid.
func render(fs *source.FileSet, accepted map[source.FileID][]diag.FixEdit) []FileChange {
	changes := make([]FileChange, 0, len(accepted))
	for id, edits := range accepted {
		file := fs.Get(id)
		sort.SliceStable(edits, func(i, j int) bool {
			if edits[i].Span.Start == edits[j].Span.Start {
				return edits[i].Span.End > edits[j].Span.End
			}
			return edits[i].Span.Start > edits[j].Span.Start
		})
		buf := append([]byte(nil), file.Content...)
		for _, e := range edits {
			suffix := append([]byte(nil), buf[e.Span.End:]...)
			buf = append(append(buf[:e.Span.Start], e.NewText...), suffix...)
		}
		changes = append(changes, FileChange{
			Path:      file.Path,
			Before:    file.Content,
			After:     buf,
			EditCount: len(edits),
		})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

func pathOf(fs *source.FileSet, id source.FileID) string {
	if int(id) >= fs.Len() {
		return ""
	}
	return fs.Get(id).Path
}
