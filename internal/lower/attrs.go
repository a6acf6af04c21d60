package lower

import (
	"fmt"

	"ferrule/internal/ast"
	"ferrule/internal/hir"
)

// lowerAttrs records attrs under id in the current owner. Nodes without
// attributes get no entry.
func (l *lowerer) lowerAttrs(id hir.HirID, attrs []ast.Attr) {
	if len(attrs) == 0 {
		return
	}
	if id.Owner != l.cur.def {
		panic(fmt.Errorf("lower: attributes for %s stored in owner %s", id, l.cur.def))
	}
	list := make([]hir.Attribute, 0, len(attrs))
	for _, a := range attrs {
		list = append(list, hir.Attribute{
			Style: a.Style,
			Name:  a.Name,
			Args:  a.Args,
			Doc:   a.Doc,
			Span:  l.lowerSpan(a.Span),
		})
	}
	l.cur.attrs[id.Local] = list
}
