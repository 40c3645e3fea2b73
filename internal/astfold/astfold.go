// Package astfold implements the AST constant folder of spec.md §4.6: a
// bottom-up rewrite that replaces constant subexpressions and dead
// branches with their values, applying algebraic and logical identities
// where sound.
package astfold

import "shkola/internal/ast"

// Result reports how many transformations a Fold pass applied.
type Result struct {
	Applied int
}

// Fold rewrites program in place and returns a count of applied
// transformations.
func Fold(program *ast.Program) Result {
	f := &folder{}
	program.Block.Stmts = f.foldStmts(program.Block.Stmts)
	for _, fd := range program.Block.FuncDecls {
		fd.Block.Stmts = f.foldStmts(fd.Block.Stmts)
	}
	return Result{Applied: f.applied}
}

type folder struct {
	applied int
}

// isPure reports whether e contains no Call subexpression — only Call
// nodes can have side effects in this language (spec.md §4.6), so an
// identity that would duplicate or discard e is sound only when isPure(e).
func isPure(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.Call:
		return false
	case *ast.BinOp:
		return isPure(n.Left) && isPure(n.Right)
	case *ast.UnaryOp:
		return isPure(n.Operand)
	case *ast.ArrayAccess:
		return isPure(n.Array) && isPure(n.Index)
	default:
		return true
	}
}

func litInt(e ast.Expr) (int64, bool) {
	if v, ok := e.Const(); ok {
		if i, ok := v.(int64); ok {
			return i, true
		}
	}
	return 0, false
}

func litBool(e ast.Expr) (bool, bool) {
	if v, ok := e.Const(); ok {
		if b, ok := v.(bool); ok {
			return b, true
		}
	}
	return false, false
}
