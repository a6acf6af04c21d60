package source

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// SyntaxContext indexes expansion data in a Hygiene table.
type SyntaxContext uint32

// RootContext marks code written by the user.
const RootContext SyntaxContext = 0

// DesugaringKind explains why the compiler synthesized a piece of code.
type DesugaringKind uint8

const (
	DesugarNone DesugaringKind = iota
	// DesugarOpaqueTy marks `impl Trait` rewritten into a standalone opaque item.
	DesugarOpaqueTy
	// DesugarAsync marks the implicit future of an `async fn`.
	DesugarAsync
)

func (k DesugaringKind) String() string {
	switch k {
	case DesugarOpaqueTy:
		return "opaque type"
	case DesugarAsync:
		return "async fn"
	default:
		return "none"
	}
}

// ExpnData describes one synthesized context.
type ExpnData struct {
	Reason        DesugaringKind
	CallSite      Span
	Edition       Edition
	AllowInternal []string
	Parent        SyntaxContext
}

// Hygiene records expansion data for every desugared span. Index 0 is the
// root context and never carries data.
type Hygiene struct {
	data []ExpnData
}

func NewHygiene() *Hygiene {
	return &Hygiene{data: []ExpnData{{}}}
}

// MarkWithReason registers a new context nested in span's current context and
// returns span tagged with it.
func (h *Hygiene) MarkWithReason(span Span, reason DesugaringKind, edition Edition, allowInternal []string) Span {
	raw, err := safecast.Conv[uint32](len(h.data))
	if err != nil {
		panic(fmt.Errorf("source: syntax context overflow: %w", err))
	}
	h.data = append(h.data, ExpnData{
		Reason:        reason,
		CallSite:      span,
		Edition:       edition,
		AllowInternal: slices.Clone(allowInternal),
		Parent:        span.Ctxt,
	})
	return span.WithCtxt(SyntaxContext(raw))
}

// Data returns the expansion data of ctxt.
func (h *Hygiene) Data(ctxt SyntaxContext) (ExpnData, bool) {
	if h == nil || ctxt == RootContext || int(ctxt) >= len(h.data) {
		return ExpnData{}, false
	}
	return h.data[ctxt], true
}

// Allows reports whether the context (or one of its parents) enables the named
// internal feature.
func (h *Hygiene) Allows(ctxt SyntaxContext, feature string) bool {
	for ctxt != RootContext {
		d, ok := h.Data(ctxt)
		if !ok {
			return false
		}
		if slices.Contains(d.AllowInternal, feature) {
			return true
		}
		ctxt = d.Parent
	}
	return false
}

// Len returns the number of contexts, the root included.
func (h *Hygiene) Len() int {
	return len(h.data)
}
