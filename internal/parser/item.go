package parser

import (
	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/source"
	"ferrule/internal/token"
)

// parseItem выбирает по первому токену нужный распознаватель item.
func (p *Parser) parseItem() (*ast.Item, bool) {
	attrs := p.parseOuterAttrs()
	start := p.peek().Span
	vis := ast.VisInherited
	if p.eat(token.KwPub) {
		vis = ast.VisPublic
	}

	var item *ast.Item
	var ok bool
	switch p.peek().Kind {
	case token.KwFn, token.KwAsync, token.KwExtern:
		item, ok = p.parseFnItem(start)
	case token.KwUnsafe:
		switch p.peekN(1).Kind {
		case token.KwImpl:
			p.advance()
			item, ok = p.parseImplItem()
			if ok {
				item.Data.(*ast.ImplData).Unsafe = true
			}
		case token.KwTrait:
			p.advance()
			item, ok = p.parseTraitItem()
			if ok {
				item.Data.(*ast.TraitData).Unsafe = true
			}
		default:
			item, ok = p.parseFnItem(start)
		}
	case token.KwType:
		item, ok = p.parseTyAliasItem()
	case token.KwStruct:
		item, ok = p.parseStructItem()
	case token.KwConst:
		item, ok = p.parseConstItem()
	case token.KwMod:
		item, ok = p.parseModItem()
	case token.KwImpl:
		item, ok = p.parseImplItem()
	case token.KwTrait:
		item, ok = p.parseTraitItem()
	default:
		p.err(diag.SynExpectItem, "expected item, found "+p.peek().Kind.String())
		return nil, false
	}
	if !ok {
		return nil, false
	}
	item.Vis = vis
	item.Attrs = append(attrs, item.Attrs...)
	item.Span = p.spanFrom(start)
	return item, true
}

// parseFnItem: header 'fn' Ident generics? '(' params ')' ('->' ty)? where? (block | ';')
func (p *Parser) parseFnItem(start source.Span) (*ast.Item, bool) {
	header := p.parseFnHeader()
	if _, ok := p.expect(token.KwFn, diag.SynUnexpectedToken, "expected `fn`"); !ok {
		return nil, false
	}
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	data := &ast.FnData{}
	data.Generics = p.parseGenerics()
	decl, ok := p.parseFnDecl(true)
	if !ok {
		return nil, false
	}
	data.Sig = ast.FnSig{Header: header, Decl: decl, Span: p.spanFrom(start)}
	data.Generics.Where = p.parseWhereClause()
	if !p.eat(token.Semicolon) {
		body, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		data.Body = body
	}
	return &ast.Item{Ident: name, Kind: ast.ItemFn, Data: data}, true
}

func (p *Parser) parseFnHeader() ast.FnHeader {
	var h ast.FnHeader
	for {
		switch p.peek().Kind {
		case token.KwAsync:
			h.Async = ast.Async{IsAsync: true, Span: p.advance().Span}
		case token.KwUnsafe:
			p.advance()
			h.Unsafe = true
		case token.KwExtern:
			p.advance()
			h.Extern = true
			if p.at(token.StringLit) {
				p.advance() // ABI
			}
		default:
			return h
		}
	}
}

// parseFnDecl: '(' params ')' ('->' ty)?
// item разрешает self-параметр и `+` в типе результата.
func (p *Parser) parseFnDecl(item bool) (*ast.FnDecl, bool) {
	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected `(`")
	if !ok {
		return nil, false
	}
	decl := &ast.FnDecl{}
	for !p.at(token.RParen) && !p.at(token.EOF) {
		param, ok := p.parseParam(item && len(decl.Inputs) == 0)
		if !ok {
			p.skipTo(token.RParen)
			break
		}
		decl.Inputs = append(decl.Inputs, param)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expectClose(token.RParen)
	for i, in := range decl.Inputs {
		if in.Ty.Kind == ast.TyCVarArgs && i != len(decl.Inputs)-1 {
			p.report(diag.SynVariadicMustBeLast, diag.SevError, in.Span, "`...` must be the last argument of a C-variadic function")
		}
	}
	if item {
		decl.Output = p.parseRetTy(p.spanFrom(open.Span))
	} else {
		decl.Output = p.parseRetTyNoPlus(p.spanFrom(open.Span))
	}
	return decl, true
}

func (p *Parser) parseRetTy(before source.Span) ast.FnRetTy {
	return p.retTy(before, true)
}

func (p *Parser) parseRetTyNoPlus(before source.Span) ast.FnRetTy {
	return p.retTy(before, false)
}

func (p *Parser) retTy(before source.Span, allowPlus bool) ast.FnRetTy {
	if p.eat(token.Arrow) {
		ty := p.parseTy(allowPlus)
		return ast.FnRetTy{Ty: ty, Span: ty.Span}
	}
	sp := source.Span{File: before.File, Start: before.End, End: before.End}
	return ast.FnRetTy{Span: sp}
}

// parseParam: attrs (self-param | '...' | pat ':' ty)
func (p *Parser) parseParam(allowSelf bool) (*ast.Param, bool) {
	attrs := p.parseOuterAttrs()
	start := p.peek().Span
	if allowSelf {
		if param, ok := p.tryParseSelfParam(start); ok {
			param.Attrs = attrs
			return param, true
		}
	}
	if p.at(token.DotDotDot) {
		tok := p.advance()
		return &ast.Param{
			Attrs: attrs,
			Pat:   &ast.Pat{Kind: ast.PatWild, Span: tok.Span},
			Ty:    &ast.Ty{Kind: ast.TyCVarArgs, Span: tok.Span},
			Span:  tok.Span,
		}, true
	}
	pat, ok := p.parsePat()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected `:` after parameter pattern"); !ok {
		return nil, false
	}
	var ty *ast.Ty
	if p.at(token.DotDotDot) {
		tok := p.advance()
		ty = &ast.Ty{Kind: ast.TyCVarArgs, Span: tok.Span}
	} else {
		ty = p.parseTy(true)
	}
	return &ast.Param{Attrs: attrs, Pat: pat, Ty: ty, Span: p.spanFrom(start)}, true
}

// tryParseSelfParam: self | mut self | &self | &mut self | &'a self | &'a mut self | self: Ty
func (p *Parser) tryParseSelfParam(start source.Span) (*ast.Param, bool) {
	n := 0
	ref := false
	var lt *ast.Lifetime
	mutRef := false
	if p.peekN(n).Kind == token.Amp {
		ref = true
		n++
		if p.peekN(n).Kind == token.Lifetime {
			n++
		}
		if p.peekN(n).Kind == token.KwMut {
			n++
		}
	} else if p.peekN(n).Kind == token.KwMut {
		n++
	}
	if p.peekN(n).Kind != token.KwSelfValue {
		return nil, false
	}

	pat := &ast.Pat{Kind: ast.PatIdent}
	if ref {
		p.advance() // &
		if p.at(token.Lifetime) {
			l := ast.Lifetime{Ident: ident(p.advance())}
			lt = &l
		}
		mutRef = p.eat(token.KwMut)
	} else {
		pat.Mut = p.eat(token.KwMut)
	}
	selfTok := p.advance()
	pat.Ident = ast.Ident{Name: "self", Span: selfTok.Span}
	pat.Span = p.spanFrom(start)

	var ty *ast.Ty
	switch {
	case ref:
		inner := &ast.Ty{Kind: ast.TyImplicitSelf, Span: selfTok.Span}
		ty = &ast.Ty{Kind: ast.TyRef, Span: p.spanFrom(start), Data: &ast.RefTy{Lifetime: lt, Mut: mutRef, Elem: inner}}
	case p.eat(token.Colon):
		ty = p.parseTy(true)
	default:
		ty = &ast.Ty{Kind: ast.TyImplicitSelf, Span: selfTok.Span}
	}
	return &ast.Param{Pat: pat, Ty: ty, Span: p.spanFrom(start)}, true
}

// parseTyAliasItem: 'type' Ident generics? (':' bounds)? where? ('=' ty)? ';'
func (p *Parser) parseTyAliasItem() (*ast.Item, bool) {
	p.advance() // type
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	data := &ast.TyAliasData{Generics: p.parseGenerics()}
	if p.eat(token.Colon) {
		data.Bounds = p.parseBounds()
	}
	data.Generics.Where = p.parseWhereClause()
	if p.eat(token.Assign) {
		data.Ty = p.parseTy(true)
	}
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected `;` after type alias")
	return &ast.Item{Ident: name, Kind: ast.ItemTyAlias, Data: data}, true
}

// parseStructItem: 'struct' Ident generics? where? ('{' fields '}' | '(' tys ')' ';' | ';')
func (p *Parser) parseStructItem() (*ast.Item, bool) {
	p.advance() // struct
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	data := &ast.StructData{Generics: p.parseGenerics()}
	switch {
	case p.at(token.LParen):
		p.advance()
		data.Tuple = true
		for !p.at(token.RParen) && !p.at(token.EOF) {
			attrs := p.parseOuterAttrs()
			fstart := p.peek().Span
			vis := ast.VisInherited
			if p.eat(token.KwPub) {
				vis = ast.VisPublic
			}
			ty := p.parseTy(true)
			data.Fields = append(data.Fields, &ast.FieldDef{Vis: vis, Attrs: attrs, Ty: ty, Span: p.spanFrom(fstart)})
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expectClose(token.RParen)
		data.Generics.Where = p.parseWhereClause()
		p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected `;` after tuple struct")
	case p.eat(token.Semicolon):
	default:
		data.Generics.Where = p.parseWhereClause()
		if p.eat(token.Semicolon) {
			break
		}
		if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected `{` or `;` after struct name"); !ok {
			return nil, false
		}
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			attrs := p.parseOuterAttrs()
			fstart := p.peek().Span
			vis := ast.VisInherited
			if p.eat(token.KwPub) {
				vis = ast.VisPublic
			}
			fname, ok := p.parseIdent()
			if !ok {
				p.skipTo(token.RBrace)
				break
			}
			p.expect(token.Colon, diag.SynUnexpectedToken, "expected `:` after field name")
			ty := p.parseTy(true)
			data.Fields = append(data.Fields, &ast.FieldDef{Ident: fname, Vis: vis, Attrs: attrs, Ty: ty, Span: p.spanFrom(fstart)})
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expectClose(token.RBrace)
	}
	return &ast.Item{Ident: name, Kind: ast.ItemStruct, Data: data}, true
}

// parseConstItem: 'const' Ident ':' ty ('=' expr)? ';'
func (p *Parser) parseConstItem() (*ast.Item, bool) {
	p.advance() // const
	var name ast.Ident
	if p.at(token.Underscore) {
		name = ident(p.advance())
	} else {
		var ok bool
		if name, ok = p.parseIdent(); !ok {
			return nil, false
		}
	}
	data := &ast.ConstData{}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected `:` after const name"); !ok {
		return nil, false
	}
	data.Ty = p.parseTy(true)
	if p.eat(token.Assign) {
		data.Expr = p.parseExpr()
	}
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected `;` after const item")
	return &ast.Item{Ident: name, Kind: ast.ItemConst, Data: data}, true
}

// parseModItem: 'mod' Ident ('{' inner-attrs items '}' | ';')
func (p *Parser) parseModItem() (*ast.Item, bool) {
	p.advance() // mod
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	item := &ast.Item{Ident: name, Kind: ast.ItemMod}
	data := &ast.ModData{}
	item.Data = data
	if p.eat(token.Semicolon) {
		return item, true
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected `{` or `;` after module name"); !ok {
		return nil, false
	}
	item.Attrs = p.parseInnerAttrs()
	data.Items = p.parseItemsUntil(token.RBrace)
	p.expectClose(token.RBrace)
	return item, true
}

// parseImplItem: 'impl' generics? ty ('for' ty)? where? '{' assoc-items '}'
func (p *Parser) parseImplItem() (*ast.Item, bool) {
	p.advance() // impl
	data := &ast.ImplData{}
	if p.at(token.Lt) {
		data.Generics = p.parseGenerics()
	}
	first := p.parseTy(false)
	if p.eat(token.KwFor) {
		pathTy, ok := first.Data.(*ast.PathTy)
		if !ok {
			p.report(diag.SynUnexpectedToken, diag.SevError, first.Span, "expected a trait path before `for`")
		} else {
			data.OfTrait = &ast.TraitRef{Path: pathTy.Path}
		}
		data.SelfTy = p.parseTy(false)
	} else {
		data.SelfTy = first
	}
	data.Generics.Where = p.parseWhereClause()
	items, ok := p.parseAssocItems()
	if !ok {
		return nil, false
	}
	data.Items = items
	return &ast.Item{Kind: ast.ItemImpl, Data: data}, true
}

// parseTraitItem: 'trait' Ident generics? (':' bounds)? where? '{' assoc-items '}'
func (p *Parser) parseTraitItem() (*ast.Item, bool) {
	p.advance() // trait
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	data := &ast.TraitData{Generics: p.parseGenerics()}
	if p.eat(token.Colon) {
		data.Bounds = p.parseBounds()
	}
	data.Generics.Where = p.parseWhereClause()
	items, ok := p.parseAssocItems()
	if !ok {
		return nil, false
	}
	data.Items = items
	return &ast.Item{Ident: name, Kind: ast.ItemTrait, Data: data}, true
}

func (p *Parser) parseAssocItems() ([]*ast.Item, bool) {
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected `{`"); !ok {
		return nil, false
	}
	var items []*ast.Item
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		item, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			continue
		}
		switch item.Kind {
		case ast.ItemFn, ast.ItemConst, ast.ItemTyAlias:
			items = append(items, item)
		default:
			p.report(diag.SynExpectItem, diag.SevError, item.Span, "only fns, consts and types may appear inside an impl or trait")
		}
	}
	p.expectClose(token.RBrace)
	return items, true
}
