package parser

import (
	"strings"

	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/source"
	"ferrule/internal/token"
)

// parseInnerAttrs разбирает `#![...]` в начале файла или модуля.
func (p *Parser) parseInnerAttrs() []ast.Attr {
	var attrs []ast.Attr
	for p.at(token.Pound) && p.peekN(1).Kind == token.Bang {
		start := p.advance().Span
		p.advance() // !
		if a, ok := p.parseAttrBody(start, ast.AttrInner); ok {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

// parseOuterAttrs собирает doc-комментарии из leading trivia и `#[...]`.
func (p *Parser) parseOuterAttrs() []ast.Attr {
	var attrs []ast.Attr
	for {
		attrs = append(attrs, docAttrs(p.peek())...)
		if !p.at(token.Pound) || p.peekN(1).Kind == token.Bang {
			return attrs
		}
		start := p.advance().Span
		if a, ok := p.parseAttrBody(start, ast.AttrOuter); ok {
			attrs = append(attrs, a)
		}
	}
}

func docAttrs(tok token.Token) []ast.Attr {
	var out []ast.Attr
	for _, tr := range tok.Leading {
		var text string
		switch tr.Kind {
		case token.TriviaDocLine:
			text = strings.TrimPrefix(tr.Text, "///")
		case token.TriviaDocBlock:
			text = strings.TrimSuffix(strings.TrimPrefix(tr.Text, "/**"), "*/")
		default:
			continue
		}
		out = append(out, ast.Attr{
			Style: ast.AttrOuter,
			Name:  "doc",
			Args:  strings.TrimSpace(text),
			Doc:   true,
			Span:  tr.Span,
		})
	}
	return out
}

// parseAttrBody: '[' Ident ( '=' Lit | '(' raw ')' )? ']'
func (p *Parser) parseAttrBody(start source.Span, style ast.AttrStyle) (ast.Attr, bool) {
	if _, ok := p.expect(token.LBracket, diag.SynUnexpectedToken, "expected `[` after `#`"); !ok {
		return ast.Attr{}, false
	}
	name, ok := p.parseIdent()
	if !ok {
		p.skipTo(token.RBracket)
		p.eat(token.RBracket)
		return ast.Attr{}, false
	}
	attr := ast.Attr{Style: style, Name: name.Name}
	switch {
	case p.eat(token.Assign):
		if !p.peek().IsLiteral() {
			p.unexpected("literal")
		} else {
			attr.Args = strings.Trim(p.advance().Text, `"`)
		}
	case p.at(token.LParen):
		open := p.advance().Span
		p.skipTo(token.RParen)
		closeTok := p.peek()
		attr.Args = strings.TrimSpace(string(p.file.Content[open.End:closeTok.Span.Start]))
		p.expectClose(token.RParen)
	}
	p.expectClose(token.RBracket)
	attr.Span = p.spanFrom(start)
	return attr, true
}
