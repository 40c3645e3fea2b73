package parser

import (
	"strconv"

	"shkola/internal/ast"
	"shkola/internal/lexer"
	"shkola/internal/types"
)

// parseExpr is the entry point for expression parsing, lowest precedence
// first: or, and, not, comparison, additive, multiplicative, unary, primary.

func (p *Parser) parseExpr() ast.Expr { return p.parseOr() }

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for !p.failed() && p.at(lexer.TokOr) {
		tok := p.advance()
		right := p.parseAnd()
		left = ast.NewBinOp(types.OpOr, left, right, pos(tok))
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()
	for !p.failed() && p.at(lexer.TokAnd) {
		tok := p.advance()
		right := p.parseNot()
		left = ast.NewBinOp(types.OpAnd, left, right, pos(tok))
	}
	return left
}

func (p *Parser) parseNot() ast.Expr {
	if p.at(lexer.TokNot) {
		tok := p.advance()
		operand := p.parseNot()
		return ast.NewUnaryOp(types.OpNot, operand, pos(tok))
	}
	return p.parseComparison()
}

var comparisonOps = map[lexer.TokenType]string{
	lexer.TokEq: types.OpEq, lexer.TokNe: types.OpNe,
	lexer.TokLt: types.OpLt, lexer.TokLe: types.OpLe,
	lexer.TokGt: types.OpGt, lexer.TokGe: types.OpGe,
}

// parseComparison is non-chaining: `a < b < c` is not a valid expression in
// this language (spec.md §2's grammar has a single comparison level between
// two additive expressions, not a chain).
func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	if !p.failed() {
		if op, ok := comparisonOps[p.cur().Type]; ok {
			tok := p.advance()
			right := p.parseAdditive()
			return ast.NewBinOp(op, left, right, pos(tok))
		}
	}
	return left
}

var additiveOps = map[lexer.TokenType]string{
	lexer.TokPlus: types.OpAdd, lexer.TokMinus: types.OpSub,
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for !p.failed() {
		op, ok := additiveOps[p.cur().Type]
		if !ok {
			break
		}
		tok := p.advance()
		right := p.parseMultiplicative()
		left = ast.NewBinOp(op, left, right, pos(tok))
	}
	return left
}

var multiplicativeOps = map[lexer.TokenType]string{
	lexer.TokStar: types.OpMul, lexer.TokSlash: types.OpDiv,
	lexer.TokIDiv: types.OpIDiv, lexer.TokMod: types.OpMod,
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for !p.failed() {
		op, ok := multiplicativeOps[p.cur().Type]
		if !ok {
			break
		}
		tok := p.advance()
		right := p.parseUnary()
		left = ast.NewBinOp(op, left, right, pos(tok))
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.at(lexer.TokPlus) || p.at(lexer.TokMinus) {
		tok := p.advance()
		op := types.OpAdd
		if tok.Type == lexer.TokMinus {
			op = types.OpSub
		}
		operand := p.parseUnary()
		return ast.NewUnaryOp(op, operand, pos(tok))
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.cur()
	switch tok.Type {
	case lexer.TokIntLit:
		p.advance()
		n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.fail("malformed integer literal " + tok.Lexeme)
			return ast.NewInt(0, pos(tok))
		}
		return ast.NewInt(n, pos(tok))
	case lexer.TokCharLit:
		p.advance()
		r := []rune(tok.Lexeme)
		return ast.NewChar(r[0], pos(tok))
	case lexer.TokStrLit:
		p.advance()
		return ast.NewString(tok.Lexeme, pos(tok))
	case lexer.TokTrue:
		p.advance()
		return ast.NewBool(true, pos(tok))
	case lexer.TokFalse:
		p.advance()
		return ast.NewBool(false, pos(tok))
	case lexer.TokLParen:
		p.advance()
		e := p.parseExpr()
		p.expect(lexer.TokRParen)
		return e
	case lexer.TokIdent:
		return p.parseIdentExpr()
	default:
		p.fail("unexpected token " + string(tok.Type) + " in expression")
		return ast.NewInt(0, pos(tok))
	}
}

// parseIdentExpr disambiguates a call, an array access and a bare
// identifier, all of which start with an identifier token.
func (p *Parser) parseIdentExpr() ast.Expr {
	nameTok := p.expect(lexer.TokIdent)
	if p.at(lexer.TokLParen) {
		return p.parseCallArgs(nameTok)
	}
	var e ast.Expr = ast.NewIdentifier(nameTok.Lexeme, pos(nameTok))
	if p.at(lexer.TokLBrack) {
		p.advance()
		idx := p.parseExpr()
		p.expect(lexer.TokRBrack)
		e = ast.NewArrayAccess(e, idx, pos(nameTok))
	}
	return e
}

// parseCallArgs parses `(arg, arg, ...)` after an already-consumed
// identifier token and returns the resulting Call node.
func (p *Parser) parseCallArgs(nameTok lexer.Token) *ast.Call {
	p.expect(lexer.TokLParen)
	var args []ast.Expr
	for !p.at(lexer.TokRParen) && !p.failed() {
		args = append(args, p.parseExpr())
		if p.at(lexer.TokComma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.TokRParen)
	return ast.NewCall(nameTok.Lexeme, args, pos(nameTok))
}
