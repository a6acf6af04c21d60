package token

import (
	"ferrule/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric, boolean, or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwFn && t.Kind <= KwExtern
}

func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsDocComment reports whether any leading trivia is a `///` or `/** */`
// comment.
func (t Token) IsDocComment() bool {
	for _, tr := range t.Leading {
		if tr.Kind == TriviaDocLine || tr.Kind == TriviaDocBlock {
			return true
		}
	}
	return false
}
