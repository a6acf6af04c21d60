package ast

import (
	"slices"

	"ferrule/internal/source"
)

// Crate is the root of a parsed compilation unit.
type Crate struct {
	ID    NodeID
	Name  string
	Attrs []Attr // inner attributes, `#![...]`
	Items []*Item
	Span  source.Span
}

// Features collects the names enabled with `#![feature(...)]`.
func (c *Crate) Features() []string {
	var out []string
	for _, a := range c.Attrs {
		if a.Style != AttrInner || a.Name != "feature" {
			continue
		}
		for _, f := range a.ListArgs() {
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	return out
}

// HasFeature reports whether name is enabled on the crate.
func (c *Crate) HasFeature(name string) bool {
	return slices.Contains(c.Features(), name)
}
