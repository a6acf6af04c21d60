package lower

import (
	"ferrule/internal/ast"
	"ferrule/internal/hir"
	"ferrule/internal/source"
)

// lowerSpan makes span relative to the current owner when incremental
// relative spans are on.
func (l *lowerer) lowerSpan(span source.Span) source.Span {
	if !l.opts.IncrementalRelativeSpans {
		return span
	}
	return span.WithParent(uint32(l.cur.def))
}

func (l *lowerer) lowerIdent(id ast.Ident) hir.Ident {
	return hir.Ident{Name: id.Name, Span: l.lowerSpan(id.Span)}
}

// markSpanWithReason tags span as produced by a desugaring. The span keeps
// its position; only the syntax context changes.
func (l *lowerer) markSpanWithReason(reason source.DesugaringKind, span source.Span, allowInternal []string) source.Span {
	return l.hygiene.MarkWithReason(span, reason, l.opts.Edition, allowInternal)
}
