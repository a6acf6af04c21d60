package lexer

import (
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"

	"ferrule/internal/source"
)

// reader walks the bytes of one file. Offsets are absolute, so spans built
// from marks can be handed to diagnostics as is.
type reader struct {
	file source.FileID
	src  []byte
	off  uint32
	end  uint32
}

func newReader(f *source.File) reader {
	return reader{file: f.ID, src: f.Content, end: safecast.MustConv[uint32](len(f.Content))}
}

func (r *reader) eof() bool { return r.off >= r.end }

// at returns the byte n positions ahead, or 0 past the end. Source text never
// contains NUL where a lookahead matters, so 0 doubles as "nothing".
func (r *reader) at(n uint32) byte {
	if r.off+n >= r.end {
		return 0
	}
	return r.src[r.off+n]
}

func (r *reader) peek() byte { return r.at(0) }

func (r *reader) bump() byte {
	b := r.peek()
	if !r.eof() {
		r.off++
	}
	return b
}

func (r *reader) eat(b byte) bool {
	if r.eof() || r.src[r.off] != b {
		return false
	}
	r.off++
	return true
}

// eatSeq consumes seq only when all of it is next.
func (r *reader) eatSeq(seq string) bool {
	n := safecast.MustConv[uint32](len(seq))
	if r.off+n > r.end || string(r.src[r.off:r.off+n]) != seq {
		return false
	}
	r.off += n
	return true
}

// skipWhile consumes bytes matching keep and reports whether any were taken.
func (r *reader) skipWhile(keep func(byte) bool) bool {
	from := r.off
	for !r.eof() && keep(r.src[r.off]) {
		r.off++
	}
	return r.off != from
}

type mark uint32

func (r *reader) mark() mark { return mark(r.off) }

func (r *reader) rewind(m mark) { r.off = uint32(m) }

func (r *reader) spanFrom(m mark) source.Span {
	return source.Span{File: r.file, Start: uint32(m), End: r.off}
}

// text returns the source covered by sp.
func (r *reader) text(sp source.Span) string {
	return string(r.src[sp.Start:sp.End])
}

// rune decodes the character at the cursor; size is 0 at the end.
func (r *reader) char() (ch rune, size uint32) {
	if r.eof() {
		return utf8.RuneError, 0
	}
	if b := r.src[r.off]; b < utf8.RuneSelf {
		return rune(b), 1
	}
	ch, n := utf8.DecodeRune(r.src[r.off:r.end])
	return ch, safecast.MustConv[uint32](n)
}

// eatIdentRunes consumes an identifier tail and returns how many characters
// were taken.
func (r *reader) eatIdentRunes() int {
	n := 0
	for {
		ch, size := r.char()
		if size == 0 || !isIdentContinue(ch) {
			return n
		}
		r.off += size
		n++
	}
}

// Identifier characters approximate XID_Start and XID_Continue.
func isIdentStart(ch rune) bool {
	if ch < utf8.RuneSelf {
		return ch == '_' || 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
	}
	return unicode.In(ch, unicode.Letter, unicode.Nl)
}

func isIdentContinue(ch rune) bool {
	if ch < utf8.RuneSelf {
		return isIdentStart(ch) || isDigit(byte(ch))
	}
	return isIdentStart(ch) || unicode.In(ch, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc)
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

// digitIn reports whether b is a digit of the radix or a `_` separator.
func digitIn(radix int) func(byte) bool {
	return func(b byte) bool {
		switch {
		case b == '_':
			return true
		case isDigit(b):
			return int(b-'0') < radix
		case radix == 16:
			return 'a' <= b && b <= 'f' || 'A' <= b && b <= 'F'
		}
		return false
	}
}
