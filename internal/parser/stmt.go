package parser

import (
	"shkola/internal/ast"
	"shkola/internal/lexer"
)

func (p *Parser) parseStmt() ast.Stmt {
	start := p.cur()
	switch start.Type {
	case lexer.TokIf:
		return p.parseIf()
	case lexer.TokFor:
		return p.parseFor()
	case lexer.TokWhile:
		return p.parseWhile()
	case lexer.TokDo:
		return p.parseDoUntil()
	case lexer.TokBreak:
		p.advance()
		return &ast.Break{}
	case lexer.TokContinue:
		p.advance()
		return &ast.Continue{}
	case lexer.TokReturn:
		p.advance()
		r := &ast.Return{}
		if !p.atAny(lexer.TokSemi) {
			r.Value = p.parseExpr()
		}
		return r
	case lexer.TokIdent:
		return p.parseIdentStmt()
	default:
		p.fail("unexpected token " + string(start.Type) + " at start of statement")
		return &ast.Break{}
	}
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.expect(lexer.TokIf)
	cond := p.parseExpr()
	p.expect(lexer.TokThen)
	n := &ast.If{Cond: cond}
	n.Pos = pos(start)
	n.ThenStmts = p.parseStmtList(lexer.TokElse, lexer.TokFi)
	if p.at(lexer.TokElse) {
		p.advance()
		n.ElseStmts = p.parseStmtList(lexer.TokFi)
	}
	p.expect(lexer.TokFi)
	return n
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.expect(lexer.TokFor)
	nameTok := p.expect(lexer.TokIdent)
	p.expect(lexer.TokFrom)
	startExpr := p.parseExpr()
	p.expect(lexer.TokTo)
	endExpr := p.parseExpr()
	var step ast.Expr
	if p.at(lexer.TokStep) {
		p.advance()
		step = p.parseExpr()
	}
	p.expect(lexer.TokDo)
	n := &ast.For{VarName: nameTok.Lexeme, Start: startExpr, End: endExpr, Step: step}
	n.Pos = pos(start)
	n.Body = p.parseStmtList(lexer.TokOd)
	p.expect(lexer.TokOd)
	return n
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.expect(lexer.TokWhile)
	cond := p.parseExpr()
	p.expect(lexer.TokDo)
	n := &ast.While{Cond: cond}
	n.Pos = pos(start)
	n.Body = p.parseStmtList(lexer.TokOd)
	p.expect(lexer.TokOd)
	return n
}

// parseDoUntil parses `цикл … до cond` (spec.md §4.4's DoUntil): executes
// body until cond becomes true.
func (p *Parser) parseDoUntil() ast.Stmt {
	start := p.expect(lexer.TokDo)
	n := &ast.DoUntil{}
	n.Pos = pos(start)
	n.Body = p.parseStmtList(lexer.TokTo)
	p.expect(lexer.TokTo)
	n.Cond = p.parseExpr()
	return n
}

// parseIdentStmt disambiguates assignment (to an identifier or an array
// element) from a call used as a statement, both of which start with an
// identifier.
func (p *Parser) parseIdentStmt() ast.Stmt {
	nameTok := p.expect(lexer.TokIdent)

	if p.at(lexer.TokLParen) {
		call := p.parseCallArgs(nameTok)
		return &ast.CallStmt{Call: call}
	}

	var target ast.Expr = ast.NewIdentifier(nameTok.Lexeme, pos(nameTok))
	if p.at(lexer.TokLBrack) {
		p.advance()
		idx := p.parseExpr()
		p.expect(lexer.TokRBrack)
		target = ast.NewArrayAccess(target, idx, pos(nameTok))
	}
	p.expect(lexer.TokAssign)
	value := p.parseExpr()
	n := &ast.Assign{Target: target, Value: value}
	n.Pos = pos(nameTok)
	return n
}
