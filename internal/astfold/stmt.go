package astfold

import "shkola/internal/ast"

// foldStmts folds each statement and drops statements that fold away to
// nothing (an eliminated `if false` with no else, a removed `while false`).
func (f *folder) foldStmts(stmts []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		if rewritten := f.foldStmt(s); rewritten != nil {
			out = append(out, rewritten...)
		}
	}
	return out
}

// foldStmt folds one statement, returning the replacement statement list:
// nil to drop it, a single-element slice for an unchanged or in-place
// rewritten statement, or the hoisted body of a branch that statically
// always (or never) runs.
func (f *folder) foldStmt(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case *ast.Assign:
		n.Value = f.foldExpr(n.Value)
		if arr, ok := n.Target.(*ast.ArrayAccess); ok {
			arr.Array = f.foldExpr(arr.Array)
			arr.Index = f.foldExpr(arr.Index)
		}
		return []ast.Stmt{n}

	case *ast.If:
		n.Cond = f.foldExpr(n.Cond)
		n.ThenStmts = f.foldStmts(n.ThenStmts)
		n.ElseStmts = f.foldStmts(n.ElseStmts)
		if b, ok := litBool(n.Cond); ok {
			f.applied++
			if b {
				return n.ThenStmts
			}
			return n.ElseStmts
		}
		return []ast.Stmt{n}

	case *ast.For:
		n.Start = f.foldExpr(n.Start)
		n.End = f.foldExpr(n.End)
		if n.Step != nil {
			n.Step = f.foldExpr(n.Step)
		}
		n.Body = f.foldStmts(n.Body)
		return []ast.Stmt{n}

	case *ast.While:
		n.Cond = f.foldExpr(n.Cond)
		n.Body = f.foldStmts(n.Body)
		if b, ok := litBool(n.Cond); ok && !b {
			f.applied++
			return nil
		}
		return []ast.Stmt{n}

	case *ast.DoUntil:
		n.Body = f.foldStmts(n.Body)
		n.Cond = f.foldExpr(n.Cond)
		return []ast.Stmt{n}

	case *ast.Return:
		if n.Value != nil {
			n.Value = f.foldExpr(n.Value)
		}
		return []ast.Stmt{n}

	case *ast.CallStmt:
		for i, arg := range n.Call.Args {
			n.Call.Args[i] = f.foldExpr(arg)
		}
		return []ast.Stmt{s}

	default:
		return []ast.Stmt{s}
	}
}
