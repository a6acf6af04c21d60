package ast

import (
	"strings"

	"ferrule/internal/source"
)

// Ident is a name with its position. Lifetime idents keep the leading quote.
type Ident struct {
	Name string
	Span source.Span
}

func (id Ident) IsEmpty() bool { return id.Name == "" }

// IsUnderscoreLifetime reports whether the ident is the reserved `'_`.
func (id Ident) IsUnderscoreLifetime() bool { return id.Name == "'_" }

// IsStatic reports whether the ident is `'static`.
func (id Ident) IsStatic() bool { return id.Name == "'static" }

// Visibility описывает доступность элемента (private/public).
type Visibility uint8

const (
	VisInherited Visibility = iota
	VisPublic
)

func (v Visibility) String() string {
	switch v {
	case VisPublic:
		return "pub"
	default:
		return "inherited"
	}
}

type AttrStyle uint8

const (
	AttrOuter AttrStyle = iota
	AttrInner
)

// Attr is `#[name]`, `#[name = "value"]`, `#[name(args)]` or a doc comment.
// Args keeps the raw source text between the parentheses (or after `=`).
type Attr struct {
	Style AttrStyle
	Name  string
	Args  string
	Doc   bool
	Span  source.Span
}

// ListArgs splits `feature(a, b)`-style arguments.
func (a Attr) ListArgs() []string {
	if a.Args == "" {
		return nil
	}
	parts := strings.Split(a.Args, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
