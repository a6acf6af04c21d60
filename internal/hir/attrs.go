package hir

import (
	"ferrule/internal/ast"
	"ferrule/internal/source"
)

type Attribute struct {
	Style ast.AttrStyle
	Name  string
	Args  string
	Doc   bool
	Span  source.Span
}

// AttributeMap holds the attributes of one owner keyed by local id. Nodes
// without attributes have no entry.
type AttributeMap map[ItemLocalID][]Attribute

// Get returns the attributes of local (nil when it has none).
func (m AttributeMap) Get(local ItemLocalID) []Attribute {
	return m[local]
}
