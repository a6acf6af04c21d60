package lexer

import (
	"ferrule/internal/diag"
	"ferrule/internal/token"
)

// Longest match first. `>>` and `>=` are never joined so that
// `Vec<Vec<u8>>` closes one angle at a time; `<=` is safe to join.
var multiPunct = []struct {
	seq  string
	kind token.Kind
}{
	{"...", token.DotDotDot},
	{"..", token.DotDot},
	{"::", token.ColonColon},
	{"->", token.Arrow},
	{"=>", token.FatArrow},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"==", token.EqEq},
	{"!=", token.BangEq},
	{"<=", token.LtEq},
}

var singlePunct = [128]token.Kind{
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash,
	'%': token.Percent, '=': token.Assign, '!': token.Bang, '<': token.Lt,
	'>': token.Gt, '&': token.Amp, '|': token.Pipe, '?': token.Question,
	':': token.Colon, ';': token.Semicolon, ',': token.Comma, '.': token.Dot,
	'(': token.LParen, ')': token.RParen, '{': token.LBrace, '}': token.RBrace,
	'[': token.LBracket, ']': token.RBracket, '#': token.Pound, '_': token.Underscore,
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.r.mark()
	for _, p := range multiPunct {
		if lx.r.eatSeq(p.seq) {
			return lx.emit(p.kind, start)
		}
	}
	ch, size := lx.r.char()
	lx.r.off += size
	if ch < 128 && singlePunct[ch] != token.Invalid {
		return lx.emit(singlePunct[ch], start)
	}
	return lx.invalid(diag.LexUnknownChar, start, "unknown character")
}
