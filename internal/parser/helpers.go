package parser

import (
	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/source"
	"ferrule/internal/token"
)

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
		p.lastSpan = tok.Span
	}
	return tok
}

// eat съедает токен k, если он следующий.
func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// getDiagnosticSpan: возвращает лучший span для диагностики:
// на EOF указываем сразу за последним съеденным токеном.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect: ожидаем конкретный токен. Если нет, репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	diagSpan := p.getDiagnosticSpan()
	p.report(code, diag.SevError, diagSpan, msg)
	return token.Token{Kind: token.Invalid, Span: diagSpan, Text: p.peek().Text}, false
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Reporter == nil || p.opts.Enough() {
		return false
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil, nil)
	return true
}

func (p *Parser) unexpected(what string) {
	tok := p.peek()
	p.err(diag.SynUnexpectedToken, "expected "+what+", found "+tok.Kind.String())
}

// spanFrom: от начала start до конца последнего съеденного токена.
func (p *Parser) spanFrom(start source.Span) source.Span {
	if p.lastSpan.End < start.Start {
		return start.ShrinkToLo()
	}
	return start.Cover(p.lastSpan)
}

// ident конвертирует токен в ast.Ident с NFC-нормализацией имени.
func ident(tok token.Token) ast.Ident {
	return ast.Ident{Name: source.Normalize(tok.Text), Span: tok.Span}
}

// parseIdent: утилита: ожидает Ident.
// На ошибке репорт SynExpectIdentifier.
func (p *Parser) parseIdent() (ast.Ident, bool) {
	if p.at(token.Ident) {
		return ident(p.advance()), true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, found "+p.peek().Kind.String())
	return ast.Ident{Span: p.getDiagnosticSpan()}, false
}

func (p *Parser) parseLifetime() (ast.Lifetime, bool) {
	if p.at(token.Lifetime) {
		return ast.Lifetime{Ident: ident(p.advance())}, true
	}
	p.err(diag.SynExpectLifetime, "expected lifetime, found "+p.peek().Kind.String())
	return ast.Lifetime{Ident: ast.Ident{Name: "'_", Span: p.getDiagnosticSpan()}}, false
}

// expectClose ищет закрывающий разделитель, пропуская мусор до него.
func (p *Parser) expectClose(k token.Kind) bool {
	if p.eat(k) {
		return true
	}
	p.report(diag.SynUnclosedDelimiter, diag.SevError, p.getDiagnosticSpan(), "expected "+k.String())
	p.skipTo(k)
	return p.eat(k)
}

// skipTo прокручивает до токена k на текущем уровне вложенности.
func (p *Parser) skipTo(k token.Kind) {
	depth := 0
	for !p.at(token.EOF) {
		cur := p.peek().Kind
		if depth == 0 && cur == k {
			return
		}
		switch cur {
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBrace, token.RBracket:
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}
