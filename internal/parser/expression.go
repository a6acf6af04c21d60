package parser

import (
	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/token"
)

const precCast = 13

// binaryPrec возвращает приоритет бинарного оператора и его текст;
// `>=` склеивается из соседних `>` и `=`.
func (p *Parser) binaryPrec() (int, string, int) {
	tok := p.peek()
	switch tok.Kind {
	case token.OrOr:
		return 5, "||", 1
	case token.AndAnd:
		return 6, "&&", 1
	case token.EqEq:
		return 7, "==", 1
	case token.BangEq:
		return 7, "!=", 1
	case token.Lt:
		return 7, "<", 1
	case token.LtEq:
		return 7, "<=", 1
	case token.Gt:
		next := p.peekN(1)
		if next.Kind == token.Assign && next.Span.Start == tok.Span.End {
			return 7, ">=", 2
		}
		return 7, ">", 1
	case token.Plus:
		return 11, "+", 1
	case token.Minus:
		return 11, "-", 1
	case token.Star:
		return 12, "*", 1
	case token.Slash:
		return 12, "/", 1
	case token.Percent:
		return 12, "%", 1
	default:
		return 0, "", 0
	}
}

func (p *Parser) parseExpr() *ast.Expr {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) *ast.Expr {
	lhs := p.parseUnary()
	for {
		if p.at(token.KwAs) {
			if precCast < minPrec {
				return lhs
			}
			p.advance()
			ty := p.parseTy(false)
			lhs = &ast.Expr{Kind: ast.ExprCast, Span: lhs.Span.Cover(ty.Span), Data: &ast.CastExpr{X: lhs, Ty: ty}}
			continue
		}
		prec, op, width := p.binaryPrec()
		if prec == 0 || prec < minPrec {
			return lhs
		}
		for range width {
			p.advance()
		}
		rhs := p.parseBinary(prec + 1)
		lhs = &ast.Expr{Kind: ast.ExprBinary, Span: lhs.Span.Cover(rhs.Span), Data: &ast.BinaryExpr{Op: op, X: lhs, Y: rhs}}
	}
}

func (p *Parser) parseUnary() *ast.Expr {
	start := p.peek().Span
	var op string
	switch p.peek().Kind {
	case token.Minus:
		op = "-"
	case token.Bang:
		op = "!"
	case token.Star:
		op = "*"
	case token.Amp:
		op = "&"
	default:
		return p.parsePostfix(p.parsePrimary())
	}
	p.advance()
	if op == "&" && p.eat(token.KwMut) {
		op = "&mut "
	}
	x := p.parseUnary()
	return &ast.Expr{Kind: ast.ExprUnary, Span: p.spanFrom(start), Data: &ast.UnaryExpr{Op: op, X: x}}
}

func (p *Parser) parsePostfix(e *ast.Expr) *ast.Expr {
	for {
		switch {
		case p.at(token.LParen):
			p.advance()
			args := p.parseExprList(token.RParen)
			e = &ast.Expr{Kind: ast.ExprCall, Span: p.spanFrom(e.Span), Data: &ast.CallExpr{Callee: e, Args: args}}
		case p.at(token.Dot) && p.peekN(1).Kind == token.KwAwait:
			p.advance()
			p.advance()
			e = &ast.Expr{Kind: ast.ExprAwait, Span: p.spanFrom(e.Span), Data: &ast.AwaitExpr{X: e}}
		case p.at(token.Dot) && (p.peekN(1).Kind == token.Ident || p.peekN(1).Kind == token.IntLit):
			p.advance()
			name := ident(p.advance())
			e = &ast.Expr{Kind: ast.ExprField, Span: p.spanFrom(e.Span), Data: &ast.FieldExpr{X: e, Ident: name}}
		default:
			return e
		}
	}
}

// parseExprList: expr (',' expr)* ','? close
func (p *Parser) parseExprList(closeKind token.Kind) []*ast.Expr {
	var out []*ast.Expr
	for !p.at(closeKind) && !p.at(token.EOF) {
		out = append(out, p.parseExpr())
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expectClose(closeKind)
	return out
}

func (p *Parser) parsePrimary() *ast.Expr {
	start := p.peek().Span
	switch p.peek().Kind {
	case token.IntLit:
		return litExpr(p.advance(), ast.LitInt)
	case token.FloatLit:
		return litExpr(p.advance(), ast.LitFloat)
	case token.StringLit:
		return litExpr(p.advance(), ast.LitStr)
	case token.KwTrue, token.KwFalse:
		return litExpr(p.advance(), ast.LitBool)
	case token.Ident, token.KwSelfType, token.KwSelfValue, token.ColonColon:
		path, ok := p.parsePath(pathExpr)
		if !ok {
			return &ast.Expr{Kind: ast.ExprErr, Span: p.spanFrom(start)}
		}
		return &ast.Expr{Kind: ast.ExprPath, Span: path.Span, Data: &ast.PathExpr{Path: path}}
	case token.LParen:
		p.advance()
		var elems []*ast.Expr
		trailingComma := false
		for !p.at(token.RParen) && !p.at(token.EOF) {
			elems = append(elems, p.parseExpr())
			trailingComma = false
			if !p.eat(token.Comma) {
				break
			}
			trailingComma = true
		}
		p.expectClose(token.RParen)
		if len(elems) == 1 && !trailingComma {
			return elems[0]
		}
		return &ast.Expr{Kind: ast.ExprTup, Span: p.spanFrom(start), Data: &ast.TupExpr{Elems: elems}}
	case token.LBracket:
		p.advance()
		if p.eat(token.RBracket) {
			return &ast.Expr{Kind: ast.ExprArray, Span: p.spanFrom(start), Data: &ast.ArrayExpr{}}
		}
		first := p.parseExpr()
		if p.eat(token.Semicolon) {
			count := &ast.AnonConst{Value: p.parseExpr()}
			p.expectClose(token.RBracket)
			return &ast.Expr{Kind: ast.ExprRepeat, Span: p.spanFrom(start), Data: &ast.RepeatExpr{Elem: first, Count: count}}
		}
		elems := []*ast.Expr{first}
		if p.eat(token.Comma) {
			elems = append(elems, p.parseExprList(token.RBracket)...)
		} else {
			p.expectClose(token.RBracket)
		}
		return &ast.Expr{Kind: ast.ExprArray, Span: p.spanFrom(start), Data: &ast.ArrayExpr{Elems: elems}}
	case token.LBrace:
		block, _ := p.parseBlock()
		return &ast.Expr{Kind: ast.ExprBlock, Span: block.Span, Data: &ast.BlockExpr{Block: block}}
	case token.KwAsync:
		p.advance()
		block, _ := p.parseBlock()
		return &ast.Expr{Kind: ast.ExprAsync, Span: p.spanFrom(start), Data: &ast.AsyncExpr{Block: block}}
	case token.KwReturn:
		p.advance()
		ret := &ast.ReturnExpr{}
		if !p.atOr(token.Semicolon, token.RBrace, token.RParen, token.Comma, token.EOF) {
			ret.X = p.parseExpr()
		}
		return &ast.Expr{Kind: ast.ExprReturn, Span: p.spanFrom(start), Data: ret}
	default:
		p.err(diag.SynExpectExpression, "expected expression, found "+p.peek().Kind.String())
		return &ast.Expr{Kind: ast.ExprErr, Span: p.getDiagnosticSpan()}
	}
}

func litExpr(tok token.Token, kind ast.LitKind) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLit, Span: tok.Span, Data: &ast.LitExpr{Kind: kind, Text: tok.Text}}
}

// parseBlock: '{' stmt* '}'
func (p *Parser) parseBlock() (*ast.Block, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected `{`")
	if !ok {
		return &ast.Block{Span: open.Span}, false
	}
	block := &ast.Block{}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.pos
		if st := p.parseStmt(); st != nil {
			block.Stmts = append(block.Stmts, st)
		}
		if p.pos == before {
			p.advance()
		}
	}
	p.expectClose(token.RBrace)
	block.Span = p.spanFrom(open.Span)
	return block, true
}

func (p *Parser) atItemStart() bool {
	switch p.peek().Kind {
	case token.KwFn, token.KwType, token.KwStruct, token.KwMod, token.KwImpl, token.KwTrait,
		token.KwPub, token.KwExtern, token.KwUnsafe, token.Pound:
		return true
	case token.KwConst:
		next := p.peekN(1).Kind
		return next == token.Ident || next == token.Underscore
	case token.KwAsync:
		return p.peekN(1).Kind == token.KwFn
	default:
		return false
	}
}

func (p *Parser) parseStmt() *ast.Stmt {
	start := p.peek().Span
	switch {
	case p.at(token.Semicolon):
		return &ast.Stmt{Kind: ast.StmtEmpty, Span: p.advance().Span}
	case p.at(token.KwLet):
		local := p.parseLocal()
		return &ast.Stmt{Kind: ast.StmtLet, Local: local, Span: local.Span}
	case p.atItemStart():
		item, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			return nil
		}
		return &ast.Stmt{Kind: ast.StmtItem, Item: item, Span: item.Span}
	}

	e := p.parseExpr()
	if p.eat(token.Semicolon) {
		return &ast.Stmt{Kind: ast.StmtSemi, Expr: e, Span: p.spanFrom(start)}
	}
	if !p.at(token.RBrace) && !isBlockLike(e) {
		p.report(diag.SynExpectSemicolon, diag.SevError, p.getDiagnosticSpan(), "expected `;` after expression")
	}
	return &ast.Stmt{Kind: ast.StmtExpr, Expr: e, Span: e.Span}
}

func isBlockLike(e *ast.Expr) bool {
	return e.Kind == ast.ExprBlock || e.Kind == ast.ExprAsync
}

// parseLocal: 'let' pat (':' ty)? ('=' expr)? ';'
func (p *Parser) parseLocal() *ast.Local {
	start := p.advance().Span // let
	local := &ast.Local{}
	pat, ok := p.parsePat()
	if !ok {
		pat = &ast.Pat{Kind: ast.PatWild, Span: p.getDiagnosticSpan()}
	}
	local.Pat = pat
	if p.eat(token.Colon) {
		local.Ty = p.parseTy(true)
	}
	if p.eat(token.Assign) {
		local.Init = p.parseExpr()
	}
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected `;` after `let`")
	local.Span = p.spanFrom(start)
	return local
}

// parsePat: '_' | 'mut'? Ident | '(' pats ')'
func (p *Parser) parsePat() (*ast.Pat, bool) {
	start := p.peek().Span
	switch p.peek().Kind {
	case token.Underscore:
		return &ast.Pat{Kind: ast.PatWild, Span: p.advance().Span}, true
	case token.KwMut, token.Ident, token.KwSelfValue:
		mut := p.eat(token.KwMut)
		if !p.at(token.Ident) && !p.at(token.KwSelfValue) {
			p.err(diag.SynExpectIdentifier, "expected identifier after `mut`")
			return nil, false
		}
		name := ident(p.advance())
		return &ast.Pat{Kind: ast.PatIdent, Ident: name, Mut: mut, Span: p.spanFrom(start)}, true
	case token.LParen:
		p.advance()
		pat := &ast.Pat{Kind: ast.PatTuple}
		for !p.at(token.RParen) && !p.at(token.EOF) {
			elem, ok := p.parsePat()
			if !ok {
				p.skipTo(token.RParen)
				break
			}
			pat.Elems = append(pat.Elems, elem)
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expectClose(token.RParen)
		pat.Span = p.spanFrom(start)
		return pat, true
	default:
		p.err(diag.SynUnexpectedToken, "expected pattern, found "+p.peek().Kind.String())
		return nil, false
	}
}
