package parser

import (
	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/token"
)

// parseGenerics: ('<' param (',' param)* ','? '>')?
func (p *Parser) parseGenerics() ast.Generics {
	if !p.at(token.Lt) {
		sp := p.lastSpan
		sp.Start = sp.End
		return ast.Generics{Span: sp}
	}
	start := p.advance().Span
	params := p.parseGenericParamList()
	p.expectClose(token.Gt)
	return ast.Generics{Params: params, Span: p.spanFrom(start)}
}

func (p *Parser) parseGenericParamList() []*ast.GenericParam {
	var params []*ast.GenericParam
	for !p.at(token.Gt) && !p.at(token.EOF) {
		param, ok := p.parseGenericParam()
		if !ok {
			p.skipTo(token.Gt)
			break
		}
		params = append(params, param)
		if !p.eat(token.Comma) {
			break
		}
	}
	return params
}

func (p *Parser) parseGenericParam() (*ast.GenericParam, bool) {
	attrs := p.parseOuterAttrs()
	start := p.peek().Span
	param := &ast.GenericParam{Attrs: attrs}
	switch p.peek().Kind {
	case token.Lifetime:
		param.Kind = ast.ParamLifetime
		param.Ident = ident(p.advance())
		if p.eat(token.Colon) {
			param.Bounds = p.parseLifetimeBounds()
		}
	case token.KwConst:
		p.advance()
		param.Kind = ast.ParamConst
		name, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		param.Ident = name
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected `:` after const parameter name"); !ok {
			return nil, false
		}
		param.Ty = p.parseTy(false)
		if p.eat(token.Assign) {
			param.ConstDefault = p.parseConstArg()
		}
	case token.Ident:
		param.Kind = ast.ParamType
		param.Ident = ident(p.advance())
		if p.eat(token.Colon) {
			param.Bounds = p.parseBounds()
		}
		if p.eat(token.Assign) {
			param.Ty = p.parseTy(false)
		}
	default:
		p.unexpected("generic parameter")
		return nil, false
	}
	param.Span = p.spanFrom(start)
	return param, true
}

// parseForBinder: 'for' '<' params '>'
func (p *Parser) parseForBinder() []*ast.GenericParam {
	if !p.at(token.KwFor) || p.peekN(1).Kind != token.Lt {
		return nil
	}
	p.advance()
	p.advance()
	params := p.parseGenericParamList()
	p.expectClose(token.Gt)
	return params
}

// parseWhereClause: ('where' predicate (',' predicate)* ','?)?
func (p *Parser) parseWhereClause() ast.WhereClause {
	if !p.at(token.KwWhere) {
		sp := p.lastSpan
		sp.Start = sp.End
		return ast.WhereClause{Span: sp}
	}
	start := p.advance().Span
	var wc ast.WhereClause
	for !p.atOr(token.LBrace, token.Semicolon, token.Assign, token.EOF) {
		pstart := p.peek().Span
		pred := &ast.WherePredicate{}
		if p.at(token.Lifetime) {
			pred.Kind = ast.WhereRegion
			pred.Lifetime = ast.Lifetime{Ident: ident(p.advance())}
			p.expect(token.Colon, diag.SynUnexpectedToken, "expected `:` in where clause")
			pred.Bounds = p.parseLifetimeBounds()
		} else {
			pred.Kind = ast.WhereBound
			pred.BoundGenericParams = p.parseForBinder()
			pred.BoundedTy = p.parseTy(false)
			p.expect(token.Colon, diag.SynUnexpectedToken, "expected `:` in where clause")
			pred.Bounds = p.parseBounds()
		}
		pred.Span = p.spanFrom(pstart)
		wc.Predicates = append(wc.Predicates, pred)
		if !p.eat(token.Comma) {
			break
		}
	}
	wc.Span = p.spanFrom(start)
	return wc
}

func (p *Parser) parseLifetimeBounds() []*ast.GenericBound {
	var bounds []*ast.GenericBound
	for p.at(token.Lifetime) {
		tok := p.advance()
		bounds = append(bounds, &ast.GenericBound{
			Kind:     ast.BoundOutlives,
			Lifetime: ast.Lifetime{Ident: ident(tok)},
			Span:     tok.Span,
		})
		if !p.eat(token.Plus) {
			break
		}
	}
	return bounds
}

// parseBounds: bound ('+' bound)*
func (p *Parser) parseBounds() []*ast.GenericBound {
	var bounds []*ast.GenericBound
	for p.canBeginBound() {
		b, ok := p.parseBound()
		if !ok {
			break
		}
		bounds = append(bounds, b)
		if !p.eat(token.Plus) {
			break
		}
	}
	return bounds
}

func (p *Parser) canBeginBound() bool {
	switch p.peek().Kind {
	case token.Lifetime, token.Question, token.KwFor, token.Ident, token.KwSelfType, token.ColonColon, token.LParen:
		return true
	default:
		return false
	}
}

// parseBound: Lifetime | '(' bound ')' | '?'? for-binder? path
func (p *Parser) parseBound() (*ast.GenericBound, bool) {
	start := p.peek().Span
	if p.at(token.Lifetime) {
		tok := p.advance()
		return &ast.GenericBound{Kind: ast.BoundOutlives, Lifetime: ast.Lifetime{Ident: ident(tok)}, Span: tok.Span}, true
	}
	if p.eat(token.LParen) {
		b, ok := p.parseBound()
		p.expectClose(token.RParen)
		if ok {
			b.Span = p.spanFrom(start)
		}
		return b, ok
	}
	b := &ast.GenericBound{Kind: ast.BoundTrait}
	if p.eat(token.Question) {
		b.Modifier = ast.ModifierMaybe
	}
	b.Trait.BoundGenericParams = p.parseForBinder()
	tstart := p.peek().Span
	path, ok := p.parsePath(pathType)
	if !ok {
		return nil, false
	}
	b.Trait.TraitRef = ast.TraitRef{Path: path}
	b.Trait.Span = p.spanFrom(tstart)
	if len(b.Trait.BoundGenericParams) > 0 {
		b.Trait.Span = p.spanFrom(start)
	}
	b.Span = p.spanFrom(start)
	return b, true
}
