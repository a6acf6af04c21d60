package token

import "ferrule/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
	TriviaDocLine
	TriviaDocBlock
)

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}
