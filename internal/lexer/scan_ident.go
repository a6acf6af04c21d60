package lexer

import (
	"ferrule/internal/diag"
	"ferrule/internal/token"
)

// scanIdentOrKeyword сканирует [Ident] и проверяет через LookupKeyword.
// Ключевые слова регистрозависимые, Token.Text ровно исходный срез.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.r.mark()
	if lx.r.eatIdentRunes() == 0 {
		return lx.scanOperatorOrPunct()
	}
	tok := lx.emit(token.Ident, start)
	switch k, ok := token.LookupKeyword(tok.Text); {
	case tok.Text == "_":
		tok.Kind = token.Underscore
	case ok:
		tok.Kind = k
	}
	return tok
}

// scanLifetime сканирует 'ident. `'_` тоже лайфтайм: анонимный регион.
func (lx *Lexer) scanLifetime() token.Token {
	start := lx.r.mark()
	lx.r.bump() // '
	if ch, size := lx.r.char(); size == 0 || !isIdentStart(ch) {
		return lx.invalid(diag.LexBadLifetime, start, "expected lifetime name after '")
	}
	lx.r.eatIdentRunes()
	if lx.r.eat('\'') {
		return lx.invalid(diag.LexBadLifetime, start, "character literals are not supported")
	}
	return lx.emit(token.Lifetime, start)
}
