package parser

import (
	"slices"

	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/lexer"
	"ferrule/internal/source"
	"ferrule/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Crate  *ast.Crate
	Errors uint
}

// Parser: состояние парсера на один файл
type Parser struct {
	file     *source.File
	toks     []token.Token // весь поток значимых токенов, последний, EOF
	pos      int
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
}

// ParseFile lexes and parses one file into a crate named crateName.
// Node ids are left unassigned.
func ParseFile(file *source.File, crateName string, opts Options) Result {
	lx := lexer.New(file, lexer.Options{Reporter: opts.Reporter})
	p := Parser{
		file: file,
		toks: lx.All(),
		opts: opts,
	}
	p.lastSpan = source.Span{File: file.ID}

	crate := &ast.Crate{Name: crateName}
	start := p.peek().Span
	crate.Attrs = p.parseInnerAttrs()
	crate.Items = p.parseItemsUntil(token.EOF)
	crate.Span = start.Cover(p.lastSpan)
	crate.Span.Start = 0
	return Result{Crate: crate, Errors: p.opts.CurrentErrors}
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

// peekN смотрит на n токенов вперёд; за концом потока всегда EOF.
func (p *Parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

func (p *Parser) IsError() bool {
	return p.opts.CurrentErrors != 0
}

// parseItemsUntil: основной цикл: пока не end (или EOF), parseItem.
func (p *Parser) parseItemsUntil(end token.Kind) []*ast.Item {
	var items []*ast.Item
	for !p.at(end) && !p.at(token.EOF) {
		item, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			continue
		}
		items = append(items, item)
	}
	return items
}

// resyncTop: восстановление после ошибки на верхнем уровне:
// прокручиваем до ';' ИЛИ до стартового токена следующего item ИЛИ EOF.
func (p *Parser) resyncTop() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		default:
			if depth == 0 && isItemStarter(p.peek().Kind) {
				return
			}
		}
		p.advance()
	}
}

// isItemStarter reports whether k can begin an item.
func isItemStarter(k token.Kind) bool {
	switch k {
	case token.KwFn, token.KwConst, token.KwType, token.KwStruct, token.KwMod, token.KwImpl,
		token.KwTrait, token.KwPub, token.KwAsync, token.KwUnsafe, token.KwExtern, token.Pound:
		return true
	default:
		return false
	}
}
