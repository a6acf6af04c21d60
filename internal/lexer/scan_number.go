package lexer

import (
	"ferrule/internal/diag"
	"ferrule/internal/token"
)

// scanNumber reads 0, 1_000, 0b.., 0o.., 0x.., 1.0, 1e-3 and 1.0e+10. A type
// suffix (1u8, 2usize) stays in Token.Text.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.r.mark()
	if lx.r.peek() == '0' {
		radix := 0
		switch lx.r.at(1) {
		case 'b', 'B':
			radix = 2
		case 'o', 'O':
			radix = 8
		case 'x', 'X':
			radix = 16
		}
		if radix != 0 {
			lx.r.bump()
			lx.r.bump()
			if !lx.r.skipWhile(digitIn(radix)) {
				return lx.invalid(diag.LexBadNumber, start, "expected digits after the radix prefix")
			}
			return lx.numberSuffix(token.IntLit, start)
		}
	}

	kind := token.IntLit
	lx.r.skipWhile(digitIn(10))
	// `1..2` and `t.0.1` keep the dot for the parser; `1.` and `1.5` are floats
	if next := lx.r.at(1); lx.r.peek() == '.' && next != '.' && !isIdentStart(rune(next)) {
		lx.r.bump()
		kind = token.FloatLit
		lx.r.skipWhile(digitIn(10))
	}
	if e := lx.r.peek(); e == 'e' || e == 'E' {
		kind = token.FloatLit
		lx.r.bump()
		if s := lx.r.peek(); s == '+' || s == '-' {
			lx.r.bump()
		}
		if !isDigit(lx.r.peek()) {
			return lx.invalid(diag.LexBadNumber, start, "expected digit after exponent")
		}
		lx.r.skipWhile(digitIn(10))
	}
	return lx.numberSuffix(kind, start)
}

func (lx *Lexer) numberSuffix(kind token.Kind, start mark) token.Token {
	lx.r.eatIdentRunes()
	return lx.emit(kind, start)
}
