package diag

import (
	"sync"

	"github.com/hashicorp/go-set/v3"

	"ferrule/internal/source"
)

// seenKey identifies a diagnostic as the user sees it. Parent and Ctxt are
// dropped from the span: a relative span produced while lowering an owner and
// the absolute span the resolver reported point at the same text.
type seenKey struct {
	code  Code
	sev   Severity
	file  source.FileID
	start uint32
	end   uint32
	msg   string
}

func keyOf(code Code, sev Severity, sp source.Span, msg string) seenKey {
	return seenKey{code: code, sev: sev, file: sp.File, start: sp.Start, end: sp.End, msg: msg}
}

// DedupReporter forwards each distinct diagnostic once and counts the rest.
type DedupReporter struct {
	next Reporter

	mu         sync.Mutex
	seen       *set.Set[seenKey]
	suppressed int
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: set.New[seenKey](16)}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []Fix) {
	if r == nil {
		return
	}
	r.mu.Lock()
	fresh := r.seen.Insert(keyOf(code, sev, primary, msg))
	if !fresh {
		r.suppressed++
	}
	r.mu.Unlock()
	if fresh && r.next != nil {
		r.next.Report(code, sev, primary, msg, notes, fixes)
	}
}

// Suppressed returns how many reports were dropped as duplicates.
func (r *DedupReporter) Suppressed() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suppressed
}
