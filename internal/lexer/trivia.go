package lexer

import (
	"ferrule/internal/diag"
	"ferrule/internal/token"
)

func isBlank(b byte) bool { return b == ' ' || b == '\t' || b == '\r' || b == '\f' }

func isNewline(b byte) bool { return b == '\n' }

// collectLeadingTrivia gathers whitespace and comments in front of the next
// token into lx.hold. Runs of blanks and runs of newlines each become one
// trivia.
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.r.eof() {
		start := lx.r.mark()
		var kind token.TriviaKind
		switch {
		case lx.r.skipWhile(isBlank):
			kind = token.TriviaSpace
		case lx.r.skipWhile(isNewline):
			kind = token.TriviaNewline
		case lx.r.eatSeq("//"):
			kind = lx.lineComment()
		case lx.r.eatSeq("/*"):
			kind = lx.blockComment(start)
		default:
			return
		}
		sp := lx.r.spanFrom(start)
		lx.hold = append(lx.hold, token.Trivia{Kind: kind, Span: sp, Text: lx.r.text(sp)})
	}
}

// lineComment finishes a comment after `//`. Only `///` followed by
// something other than `/` documents the next item; `////` is a plain
// comment and `//!` inner docs are kept as plain comments too.
func (lx *Lexer) lineComment() token.TriviaKind {
	kind := token.TriviaLineComment
	if lx.r.peek() == '/' && lx.r.at(1) != '/' {
		kind = token.TriviaDocLine
	}
	lx.r.skipWhile(func(b byte) bool { return !isNewline(b) })
	return kind
}

// blockComment finishes a possibly nested comment after `/*`. `/** */` is
// a doc comment unless it is `/**/` or starts with `/***`.
func (lx *Lexer) blockComment(start mark) token.TriviaKind {
	kind := token.TriviaBlockComment
	if lx.r.peek() == '*' && lx.r.at(1) != '*' && lx.r.at(1) != '/' {
		kind = token.TriviaDocBlock
	}
	for depth := 1; depth > 0; {
		switch {
		case lx.r.eof():
			lx.errLex(diag.LexUnterminatedBlockComment, lx.r.spanFrom(start), "unterminated block comment")
			return kind
		case lx.r.eatSeq("/*"):
			depth++
		case lx.r.eatSeq("*/"):
			depth--
		default:
			lx.r.bump()
		}
	}
	return kind
}
