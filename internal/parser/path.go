package parser

import (
	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/token"
)

type pathMode uint8

const (
	pathType pathMode = iota // Vec<u8>, Fn(u8) -> u8
	pathExpr                 // Vec::<u8>::new
)

// parsePath: '::'? segment ('::' segment)*
func (p *Parser) parsePath(mode pathMode) (*ast.Path, bool) {
	start := p.peek().Span
	path := &ast.Path{}
	if p.eat(token.ColonColon) {
		path.Global = true
	}
	for {
		var seg *ast.PathSegment
		switch p.peek().Kind {
		case token.Ident, token.KwSelfType, token.KwSelfValue:
			seg = &ast.PathSegment{Ident: ident(p.advance())}
		default:
			p.err(diag.SynExpectIdentifier, "expected path segment, found "+p.peek().Kind.String())
			return nil, false
		}
		path.Segments = append(path.Segments, seg)

		switch mode {
		case pathType:
			if p.at(token.ColonColon) && p.peekN(1).Kind == token.Lt {
				p.advance()
			}
			if p.at(token.Lt) {
				seg.Args = p.parseAngleArgs()
			} else if p.at(token.LParen) {
				seg.Args = p.parseParenArgs()
			}
		case pathExpr:
			if p.at(token.ColonColon) && p.peekN(1).Kind == token.Lt {
				p.advance()
				seg.Args = p.parseAngleArgs()
			}
		}
		if !p.at(token.ColonColon) || !isSegmentStart(p.peekN(1).Kind) {
			break
		}
		p.advance()
	}
	path.Span = p.spanFrom(start)
	return path, true
}

func isSegmentStart(k token.Kind) bool {
	return k == token.Ident || k == token.KwSelfType || k == token.KwSelfValue
}

// parseAngleArgs: '<' (arg | constraint) (',' ...)* ','? '>'
func (p *Parser) parseAngleArgs() *ast.GenericArgs {
	start := p.advance().Span // <
	args := &ast.GenericArgs{Kind: ast.ArgsAngleBracketed}
	for !p.at(token.Gt) && !p.at(token.EOF) {
		if p.at(token.Ident) && (p.peekN(1).Kind == token.Assign || p.peekN(1).Kind == token.Colon) {
			args.Constraints = append(args.Constraints, p.parseAssocConstraint())
		} else if arg, ok := p.parseGenericArg(); ok {
			args.Args = append(args.Args, arg)
		} else {
			p.skipTo(token.Gt)
			break
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expectClose(token.Gt)
	args.Span = p.spanFrom(start)
	return args
}

func (p *Parser) parseAssocConstraint() *ast.AssocConstraint {
	start := p.peek().Span
	c := &ast.AssocConstraint{Ident: ident(p.advance())}
	if p.eat(token.Assign) {
		c.Kind = ast.ConstraintEquality
		c.Ty = p.parseTy(true)
	} else {
		p.advance() // :
		c.Kind = ast.ConstraintBound
		c.Bounds = p.parseBounds()
	}
	c.Span = p.spanFrom(start)
	return c
}

func (p *Parser) parseGenericArg() (*ast.GenericArg, bool) {
	switch p.peek().Kind {
	case token.Lifetime:
		return &ast.GenericArg{Kind: ast.ArgLifetime, Lifetime: ast.Lifetime{Ident: ident(p.advance())}}, true
	case token.LBrace, token.IntLit, token.FloatLit, token.StringLit, token.KwTrue, token.KwFalse, token.Minus:
		return &ast.GenericArg{Kind: ast.ArgConst, Const: p.parseConstArg()}, true
	default:
		ty := p.parseTy(true)
		if ty.Kind == ast.TyErr {
			return nil, false
		}
		return &ast.GenericArg{Kind: ast.ArgType, Ty: ty}, true
	}
}

// parseConstArg: '{' expr '}' | literal | '-' literal
func (p *Parser) parseConstArg() *ast.AnonConst {
	if p.at(token.LBrace) {
		block, _ := p.parseBlock()
		return &ast.AnonConst{Value: &ast.Expr{Kind: ast.ExprBlock, Span: block.Span, Data: &ast.BlockExpr{Block: block}}}
	}
	return &ast.AnonConst{Value: p.parseUnary()}
}

// parseParenArgs: '(' tys ')' ('->' ty)?
func (p *Parser) parseParenArgs() *ast.GenericArgs {
	start := p.advance().Span // (
	args := &ast.GenericArgs{Kind: ast.ArgsParenthesized}
	for !p.at(token.RParen) && !p.at(token.EOF) {
		args.Inputs = append(args.Inputs, p.parseTy(true))
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expectClose(token.RParen)
	args.Output = p.parseRetTyNoPlus(p.lastSpan)
	args.Span = p.spanFrom(start)
	return args
}
