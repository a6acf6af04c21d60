package parser

import (
	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/source"
	"ferrule/internal/token"
)

// parseTy разбирает тип. allowPlus разрешает `A + B` на верхнем уровне
// (`impl A + B`, `dyn A + B`, голые trait-объекты).
// Никогда не возвращает nil: при ошибке TyErr.
func (p *Parser) parseTy(allowPlus bool) *ast.Ty {
	start := p.peek().Span
	switch p.peek().Kind {
	case token.Underscore:
		return &ast.Ty{Kind: ast.TyInfer, Span: p.advance().Span}
	case token.Bang:
		return &ast.Ty{Kind: ast.TyNever, Span: p.advance().Span}
	case token.LParen:
		return p.parseTupleOrParenTy()
	case token.LBracket:
		p.advance()
		elem := p.parseTy(true)
		if p.eat(token.Semicolon) {
			length := &ast.AnonConst{Value: p.parseExpr()}
			p.expectClose(token.RBracket)
			return &ast.Ty{Kind: ast.TyArray, Span: p.spanFrom(start), Data: &ast.ArrayTy{Elem: elem, Len: length}}
		}
		p.expectClose(token.RBracket)
		return &ast.Ty{Kind: ast.TySlice, Span: p.spanFrom(start), Data: &ast.SliceTy{Elem: elem}}
	case token.Star:
		p.advance()
		mut := false
		switch {
		case p.eat(token.KwMut):
			mut = true
		case p.eat(token.KwConst):
		default:
			p.err(diag.SynUnexpectedToken, "expected `mut` or `const` after `*` in a pointer type")
		}
		elem := p.parseTy(false)
		return &ast.Ty{Kind: ast.TyPtr, Span: p.spanFrom(start), Data: &ast.PtrTy{Mut: mut, Elem: elem}}
	case token.Amp:
		p.advance()
		return p.parseRefTail(start)
	case token.AndAnd:
		// `&&T`: две ссылки; внутренняя начинается со второго `&`
		p.advance()
		innerStart := source.Span{File: start.File, Start: start.Start + 1, End: start.End, Ctxt: start.Ctxt}
		inner := p.parseRefTail(innerStart)
		return &ast.Ty{Kind: ast.TyRef, Span: p.spanFrom(start), Data: &ast.RefTy{Elem: inner}}
	case token.KwFn, token.KwUnsafe, token.KwExtern:
		return p.parseBareFnTy(start, nil)
	case token.KwFor:
		binder := p.parseForBinder()
		if p.atOr(token.KwFn, token.KwUnsafe, token.KwExtern) {
			return p.parseBareFnTy(start, binder)
		}
		// for<'a> Trait<'a>: голый trait-объект
		path, ok := p.parsePath(pathType)
		if !ok {
			return &ast.Ty{Kind: ast.TyErr, Span: p.spanFrom(start)}
		}
		first := &ast.GenericBound{
			Kind:  ast.BoundTrait,
			Trait: ast.PolyTraitRef{BoundGenericParams: binder, TraitRef: ast.TraitRef{Path: path}, Span: p.spanFrom(start)},
			Span:  p.spanFrom(start),
		}
		return p.finishBareTraitObject(start, first, allowPlus)
	case token.KwDyn:
		p.advance()
		bounds := p.parseTyBounds(allowPlus)
		return &ast.Ty{Kind: ast.TyTraitObject, Span: p.spanFrom(start), Data: &ast.TraitObjectTy{Bounds: bounds, Syntax: ast.TraitObjectDyn}}
	case token.KwImpl:
		p.advance()
		bounds := p.parseTyBounds(allowPlus)
		if len(bounds) == 0 {
			p.err(diag.SynExpectType, "at least one trait must be specified after `impl`")
		}
		return &ast.Ty{Kind: ast.TyImplTrait, Span: p.spanFrom(start), Data: &ast.ImplTraitTy{Bounds: bounds}}
	case token.Ident, token.KwSelfType, token.ColonColon:
		path, ok := p.parsePath(pathType)
		if !ok {
			return &ast.Ty{Kind: ast.TyErr, Span: p.spanFrom(start)}
		}
		if allowPlus && p.at(token.Plus) {
			first := &ast.GenericBound{
				Kind:  ast.BoundTrait,
				Trait: ast.PolyTraitRef{TraitRef: ast.TraitRef{Path: path}, Span: path.Span},
				Span:  path.Span,
			}
			return p.finishBareTraitObject(start, first, true)
		}
		return &ast.Ty{Kind: ast.TyPath, Span: p.spanFrom(start), Data: &ast.PathTy{Path: path}}
	default:
		p.err(diag.SynExpectType, "expected type, found "+p.peek().Kind.String())
		return &ast.Ty{Kind: ast.TyErr, Span: p.getDiagnosticSpan()}
	}
}

// parseRefTail: Lifetime? 'mut'? ty: после съеденного `&`.
func (p *Parser) parseRefTail(start source.Span) *ast.Ty {
	ref := &ast.RefTy{}
	if p.at(token.Lifetime) {
		l := ast.Lifetime{Ident: ident(p.advance())}
		ref.Lifetime = &l
	}
	ref.Mut = p.eat(token.KwMut)
	ref.Elem = p.parseTy(false)
	return &ast.Ty{Kind: ast.TyRef, Span: p.spanFrom(start), Data: ref}
}

func (p *Parser) parseTupleOrParenTy() *ast.Ty {
	start := p.advance().Span // (
	var elems []*ast.Ty
	trailingComma := false
	for !p.at(token.RParen) && !p.at(token.EOF) {
		elems = append(elems, p.parseTy(true))
		trailingComma = false
		if !p.eat(token.Comma) {
			break
		}
		trailingComma = true
	}
	p.expectClose(token.RParen)
	if len(elems) == 1 && !trailingComma {
		return &ast.Ty{Kind: ast.TyParen, Span: p.spanFrom(start), Data: &ast.ParenTy{Inner: elems[0]}}
	}
	return &ast.Ty{Kind: ast.TyTup, Span: p.spanFrom(start), Data: &ast.TupTy{Elems: elems}}
}

// parseBareFnTy: 'unsafe'? 'extern' Abi? 'fn' '(' tys ')' ('->' ty)?
func (p *Parser) parseBareFnTy(start source.Span, binder []*ast.GenericParam) *ast.Ty {
	f := &ast.BareFnTy{GenericParams: binder}
	f.Unsafe = p.eat(token.KwUnsafe)
	if p.eat(token.KwExtern) {
		f.Extern = true
		if p.at(token.StringLit) {
			p.advance()
		}
	}
	if _, ok := p.expect(token.KwFn, diag.SynUnexpectedToken, "expected `fn`"); !ok {
		return &ast.Ty{Kind: ast.TyErr, Span: p.spanFrom(start)}
	}
	decl, ok := p.parseBareFnDecl()
	if !ok {
		return &ast.Ty{Kind: ast.TyErr, Span: p.spanFrom(start)}
	}
	f.Decl = decl
	return &ast.Ty{Kind: ast.TyBareFn, Span: p.spanFrom(start), Data: f}
}

// parseBareFnDecl: параметры bare fn: `fn(u8, x: &u8, ...)`.
func (p *Parser) parseBareFnDecl() (*ast.FnDecl, bool) {
	if !p.at(token.LParen) {
		p.unexpected("`(`")
		return nil, false
	}
	// имена параметров необязательны: `name: Ty` или просто `Ty`
	save := p.pos
	p.advance()
	named := false
	if (p.at(token.Ident) || p.at(token.Underscore)) && p.peekN(1).Kind == token.Colon {
		named = true
	}
	p.pos = save
	if named {
		return p.parseFnDecl(false)
	}
	open := p.advance().Span
	decl := &ast.FnDecl{}
	for !p.at(token.RParen) && !p.at(token.EOF) {
		pstart := p.peek().Span
		var ty *ast.Ty
		if p.at(token.DotDotDot) {
			ty = &ast.Ty{Kind: ast.TyCVarArgs, Span: p.advance().Span}
		} else {
			ty = p.parseTy(true)
		}
		sp := p.spanFrom(pstart)
		decl.Inputs = append(decl.Inputs, &ast.Param{
			Pat:  &ast.Pat{Kind: ast.PatWild, Span: sp.ShrinkToLo()},
			Ty:   ty,
			Span: sp,
		})
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expectClose(token.RParen)
	decl.Output = p.parseRetTyNoPlus(p.spanFrom(open))
	return decl, true
}

func (p *Parser) finishBareTraitObject(start source.Span, first *ast.GenericBound, allowPlus bool) *ast.Ty {
	bounds := []*ast.GenericBound{first}
	if allowPlus && p.eat(token.Plus) {
		bounds = append(bounds, p.parseBounds()...)
	}
	return &ast.Ty{Kind: ast.TyTraitObject, Span: p.spanFrom(start), Data: &ast.TraitObjectTy{Bounds: bounds, Syntax: ast.TraitObjectNone}}
}

func (p *Parser) parseTyBounds(allowPlus bool) []*ast.GenericBound {
	if allowPlus {
		return p.parseBounds()
	}
	if !p.canBeginBound() {
		return nil
	}
	b, ok := p.parseBound()
	if !ok {
		return nil
	}
	return []*ast.GenericBound{b}
}
