package lexer

import (
	"unicode/utf8"

	"ferrule/internal/diag"
	"ferrule/internal/source"
	"ferrule/internal/token"
)

type Lexer struct {
	r    reader
	opts Options
	look *token.Token   // 1 элементный буфер для токена
	hold []token.Trivia // накопленные leading trivia
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{r: newReader(file), opts: opts}
}

// Next возвращает следующий **значимый** токен с уже собранным Leading.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()
	if lx.r.eof() {
		// leading trivia is not attached to EOF
		return token.Token{Kind: token.EOF, Span: lx.r.spanFrom(lx.r.mark())}
	}

	var tok token.Token
	switch ch, _ := lx.r.char(); {
	case ch == '_' && !isIdentContinue(rune(lx.r.at(1))):
		tok = lx.scanOperatorOrPunct()
	case isIdentStart(ch):
		tok = lx.scanIdentOrKeyword()
	case ch < utf8.RuneSelf && isDigit(byte(ch)):
		tok = lx.scanNumber()
	case ch == '"':
		tok = lx.scanString()
	case ch == '\'':
		tok = lx.scanLifetime()
	default:
		tok = lx.scanOperatorOrPunct()
	}
	tok.Leading = lx.hold
	lx.hold = nil
	return tok
}

// All lexes the whole file, EOF included.
func (lx *Lexer) All() []token.Token {
	var out []token.Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// emit builds a token of kind covering everything since m.
func (lx *Lexer) emit(kind token.Kind, m mark) token.Token {
	sp := lx.r.spanFrom(m)
	return token.Token{Kind: kind, Span: sp, Text: lx.r.text(sp)}
}

// invalid reports code over everything since m and returns an Invalid token.
func (lx *Lexer) invalid(code diag.Code, m mark, msg string) token.Token {
	tok := lx.emit(token.Invalid, m)
	lx.errLex(code, tok.Span, msg)
	return tok
}
