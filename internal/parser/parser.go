// Package parser implements a hand-written recursive-descent parser over
// the lexer's token stream, in the teacher's style (internal/parser) —
// reworked to build shkola/internal/ast nodes for this language's grammar
// instead of the teacher's own expression/statement set. Out of the
// specified core (spec.md §1), the parser's only contract is: given source
// text, yield an *ast.Program or a positioned ParseError.
package parser

import (
	"shkola/internal/ast"
	"shkola/internal/errors"
	"shkola/internal/lexer"
)

// Parser consumes a token slice produced by the lexer.
type Parser struct {
	toks []lexer.Token
	pos  int
	err  *errors.LangError
}

// Parse scans src and parses it into a Program.
func Parse(src string) (*ast.Program, *errors.LangError) {
	toks := lexer.NewScanner(src).ScanTokens()
	for _, t := range toks {
		if t.Type == lexer.TokEOF && t.Line < 0 {
			return nil, errors.NewParseError(t.Lexeme, -t.Line, t.Column)
		}
	}
	p := &Parser{toks: toks}
	prog := p.parseProgram()
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

func (p *Parser) fail(msg string) {
	if p.err == nil {
		tok := p.cur()
		p.err = errors.NewParseError(msg, tok.Line, tok.Column)
	}
}

func (p *Parser) failed() bool { return p.err != nil }

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) at(tt lexer.TokenType) bool { return p.cur().Type == tt }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	if p.failed() {
		return p.cur()
	}
	if !p.at(tt) {
		p.fail("expected " + string(tt) + ", got " + string(p.cur().Type))
		return p.cur()
	}
	return p.advance()
}

func pos(t lexer.Token) ast.Position { return ast.Position{Line: t.Line, Column: t.Column} }

func (p *Parser) parseProgram() *ast.Program {
	start := p.cur()
	p.expect(lexer.TokAlg)
	name := p.expect(lexer.TokIdent).Lexeme
	p.expect(lexer.TokSemi)
	// Function declarations may also precede the program's own нач … кон.
	var funcs []*ast.FuncDecl
	for p.at(lexer.TokFunction) && !p.failed() {
		funcs = append(funcs, p.parseFuncDecl())
	}
	p.expect(lexer.TokNach)
	block := p.parseBlock(true)
	p.expect(lexer.TokKon)
	if p.failed() {
		return nil
	}
	block.FuncDecls = append(funcs, block.FuncDecls...)
	return &ast.Program{Name: name, Block: block, Pos: pos(start)}
}

// parseBlock parses the ordered var/func/statement sections of spec.md §3.
// func_decls is only populated when topLevel (they are always global).
func (p *Parser) parseBlock(topLevel bool) *ast.Block {
	start := p.cur()
	b := &ast.Block{Pos: pos(start)}

	for p.isVarDeclStart() && !p.failed() {
		b.VarDecls = append(b.VarDecls, p.parseVarDecl())
	}

	if topLevel {
		for p.at(lexer.TokFunction) && !p.failed() {
			b.FuncDecls = append(b.FuncDecls, p.parseFuncDecl())
		}
	}

	b.Stmts = p.parseStmtList(lexer.TokKon)
	return b
}

// isVarDeclStart looks ahead for `ident ':'`, the only pattern that
// distinguishes a VarDecl from an assignment (`ident :=`) or call
// statement (`ident (`).
func (p *Parser) isVarDeclStart() bool {
	if !p.at(lexer.TokIdent) {
		return false
	}
	if p.pos+1 >= len(p.toks) {
		return false
	}
	return p.toks[p.pos+1].Type == lexer.TokColon
}

func (p *Parser) parseVarDecl() *ast.VarDecl {
	nameTok := p.expect(lexer.TokIdent)
	p.expect(lexer.TokColon)
	tn := p.parseTypeNode()
	p.expect(lexer.TokSemi)
	return &ast.VarDecl{Name: nameTok.Lexeme, DeclaredType: tn, Pos: pos(nameTok)}
}

func (p *Parser) parseTypeNode() ast.TypeNode {
	start := p.cur()
	switch start.Type {
	case lexer.TokInt, lexer.TokBool, lexer.TokChar, lexer.TokString:
		p.advance()
		return &ast.SimpleTypeNode{Name: string(start.Type), Pos: pos(start)}
	case lexer.TokTab:
		p.advance()
		p.expect(lexer.TokLBrack)
		size := p.parseExpr()
		p.expect(lexer.TokRBrack)
		elem := p.parseTypeNode()
		return &ast.ArrayTypeNode{SizeExpr: size, ElementType: elem, Pos: pos(start)}
	default:
		p.fail("expected a type, got " + string(start.Type))
		return &ast.SimpleTypeNode{Name: "цел", Pos: pos(start)}
	}
}

func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	start := p.expect(lexer.TokFunction)
	name := p.expect(lexer.TokIdent).Lexeme
	p.expect(lexer.TokLParen)
	var params []*ast.Param
	for !p.at(lexer.TokRParen) && !p.failed() {
		pTok := p.expect(lexer.TokIdent)
		p.expect(lexer.TokColon)
		tn := p.parseTypeNode()
		params = append(params, &ast.Param{Name: pTok.Lexeme, DeclaredType: tn, Pos: pos(pTok)})
		if p.at(lexer.TokComma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.TokRParen)
	var ret ast.TypeNode
	if p.at(lexer.TokColon) {
		p.advance()
		ret = p.parseTypeNode()
	}
	p.expect(lexer.TokSemi)
	p.expect(lexer.TokNach)
	block := p.parseBlock(false)
	p.expect(lexer.TokKon)
	p.expect(lexer.TokSemi)
	return &ast.FuncDecl{Name: name, Params: params, ReturnType: ret, Block: block, Pos: pos(start)}
}

// parseStmtList parses statements, each terminated by ';', until the
// current token matches any of the given terminators (not consumed).
func (p *Parser) parseStmtList(terminators ...lexer.TokenType) []ast.Stmt {
	var stmts []ast.Stmt
	for !p.failed() && !p.atAny(terminators...) {
		stmts = append(stmts, p.parseStmt())
		if p.failed() {
			break
		}
		p.expect(lexer.TokSemi)
	}
	return stmts
}

func (p *Parser) atAny(tts ...lexer.TokenType) bool {
	for _, tt := range tts {
		if p.at(tt) {
			return true
		}
	}
	return false
}
