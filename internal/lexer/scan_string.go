package lexer

import (
	"ferrule/internal/diag"
	"ferrule/internal/token"
)

// scanString reads "..." literals. Newlines are part of the literal and
// escapes are only skipped here: their values never reach lowering.
func (lx *Lexer) scanString() token.Token {
	start := lx.r.mark()
	lx.r.bump() // "
	for !lx.r.eof() {
		switch lx.r.bump() {
		case '"':
			return lx.emit(token.StringLit, start)
		case '\\':
			lx.r.bump()
		}
	}
	return lx.invalid(diag.LexUnterminatedString, start, "unterminated string literal")
}
