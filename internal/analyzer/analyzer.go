// Package analyzer implements the two-pass semantic analyzer of spec.md
// §4.1: declare, then analyze; accumulate diagnostics rather than abort on
// the first one. Grounded on the reference implementation's
// semantics.py (SemanticAnalyzer) and scope.py (ScopeManager), generalized
// from Python exceptions to an explicit error-accumulator in the teacher's
// style (the analyzer never panics on a user error — only a defensive
// internal one).
package analyzer

import (
	"fmt"

	"shkola/internal/ast"
	"shkola/internal/errors"
	"shkola/internal/scope"
	"shkola/internal/types"
)

// funcSig is a declared function's signature, recorded during the
// signature pass so bodies (including forward references) can be checked
// against it.
type funcSig struct {
	Params []types.Type
	Return *types.Type // nil for a procedure
}

// Analyzer drives the traversal described in spec.md §4.1. The program's
// top-level block IS the global scope (spec.md §3: "Root is 'global'").
type Analyzer struct {
	scopes  *scope.Manager
	errs    []*errors.LangError
	sigs    map[string]funcSig
	curFunc *funcSig // signature of the function body currently being analyzed, nil at top level
}

// New creates an Analyzer with a fresh global scope seeded with builtins.
func New() *Analyzer {
	return &Analyzer{scopes: scope.NewManager(), sigs: map[string]funcSig{}}
}

// Analyze runs the full two-pass traversal over program and returns every
// diagnostic collected, in source order. An empty slice means the program
// is well-typed and safe to interpret or compile.
func Analyze(program *ast.Program) []*errors.LangError {
	a := New()
	a.visitProgram(program)
	return a.errs
}

func (a *Analyzer) addErrorAt(pos ast.Position, format string, args ...any) {
	a.errs = append(a.errs, errors.NewSemanticError(fmt.Sprintf(format, args...), pos.Line, pos.Column))
}

func (a *Analyzer) visitProgram(p *ast.Program) {
	a.visitBlock(p.Block, true)
}

// visitBlock implements the four-step traversal of spec.md §4.1: declare
// vars, declare function signatures, analyze function bodies, analyze
// top-level statements.
func (a *Analyzer) visitBlock(b *ast.Block, isGlobal bool) {
	for _, vd := range b.VarDecls {
		a.visitVarDecl(vd)
	}

	if isGlobal {
		for _, fd := range b.FuncDecls {
			a.declareFuncSignature(fd)
		}
		for _, fd := range b.FuncDecls {
			a.visitFuncDecl(fd)
		}
	}

	for _, stmt := range b.Stmts {
		a.visitStatement(stmt)
	}
}

func (a *Analyzer) visitVarDecl(vd *ast.VarDecl) {
	t, ok := a.resolveTypeNode(vd.DeclaredType)
	if !ok {
		return
	}
	vd.Type = t
	sym := &scope.Symbol{Name: vd.Name, Type: t, Kind: scope.KindVariable, Pos: vd.Pos}
	if err := a.scopes.Declare(sym); err != nil {
		a.errs = append(a.errs, err)
	}
}

// resolveTypeNode turns an AST type node into a semantic types.Type,
// enforcing "array sizes are positive integers known at analysis time"
// (spec.md §3 invariants). The array-size expression must already be an
// Int literal (or a node carrying an integer constant): analysis runs
// before astfold, and astfold does not rewrite size expressions, so a
// size written as an expression such as `-1` or `2+1` is reported as
// non-constant.
func (a *Analyzer) resolveTypeNode(tn ast.TypeNode) (types.Type, bool) {
	switch n := tn.(type) {
	case *ast.SimpleTypeNode:
		switch n.Name {
		case "цел":
			return types.Integer, true
		case "лог":
			return types.Boolean, true
		case "сим":
			return types.Char, true
		case "строка":
			return types.String, true
		}
		a.addErrorAt(n.Pos, "unknown type '%s'", n.Name)
		return types.Void, false
	case *ast.ArrayTypeNode:
		elem, ok := a.resolveTypeNode(n.ElementType)
		if !ok {
			return types.Void, false
		}
		size, isConst := literalInt(n.SizeExpr)
		if !isConst {
			a.addErrorAt(n.Pos, "array size must be a constant integer")
			return types.Void, false
		}
		if size < 1 {
			a.addErrorAt(n.Pos, "array size must be positive, got %d", size)
			return types.Void, false
		}
		return types.Array(elem, int(size)), true
	default:
		a.addErrorAt(ast.Position{}, "unknown type node %T", tn)
		return types.Void, false
	}
}

func literalInt(e ast.Expr) (int64, bool) {
	if lit, ok := e.(*ast.Int); ok {
		return lit.Value, true
	}
	if v, ok := e.Const(); ok {
		if i, ok := v.(int64); ok {
			return i, true
		}
	}
	return 0, false
}

func (a *Analyzer) declareFuncSignature(fd *ast.FuncDecl) {
	params := make([]types.Type, len(fd.Params))
	ok := true
	for i, p := range fd.Params {
		pt, pok := a.resolveTypeNode(p.DeclaredType)
		if !pok {
			ok = false
			continue
		}
		p.Type = pt
		params[i] = pt
	}
	var ret *types.Type
	if fd.ReturnType != nil {
		rt, rok := a.resolveTypeNode(fd.ReturnType)
		if !rok {
			ok = false
		} else {
			ret = &rt
		}
	}
	if !ok {
		return
	}

	sym := &scope.Symbol{Name: fd.Name, Type: types.Function(params, ret), Kind: scope.KindFunction, Pos: fd.Pos, IsGlobal: true}
	if err := a.scopes.DeclareGlobal(sym); err != nil {
		a.errs = append(a.errs, err)
		return
	}
	a.sigs[fd.Name] = funcSig{Params: params, Return: ret}
}

func (a *Analyzer) visitFuncDecl(fd *ast.FuncDecl) {
	sig, ok := a.sigs[fd.Name]
	if !ok {
		return // signature failed to declare; already reported
	}
	a.scopes.Enter()
	defer a.scopes.Exit()

	for _, p := range fd.Params {
		sym := &scope.Symbol{Name: p.Name, Type: p.Type, Kind: scope.KindParameter, Pos: p.Pos}
		if err := a.scopes.Declare(sym); err != nil {
			a.errs = append(a.errs, err)
		}
	}

	prevFunc := a.curFunc
	a.curFunc = &sig
	a.visitBlock(fd.Block, false)
	a.curFunc = prevFunc
}
