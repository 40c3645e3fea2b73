package analyzer

import (
	"shkola/internal/ast"
	"shkola/internal/types"
)

func (a *Analyzer) visitStatement(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Assign:
		a.visitAssign(s)
	case *ast.If:
		a.visitExpr(s.Cond)
		if t := s.Cond.ExprType(); !t.Equal(types.Boolean) && !isVoid(t) {
			a.addErrorAt(s.Cond.Position(), "condition must be boolean, got %s", t)
		}
		for _, st := range s.ThenStmts {
			a.visitStatement(st)
		}
		for _, st := range s.ElseStmts {
			a.visitStatement(st)
		}
	case *ast.For:
		a.visitFor(s)
	case *ast.While:
		a.visitExpr(s.Cond)
		if t := s.Cond.ExprType(); !t.Equal(types.Boolean) && !isVoid(t) {
			a.addErrorAt(s.Cond.Position(), "condition must be boolean, got %s", t)
		}
		for _, st := range s.Body {
			a.visitStatement(st)
		}
	case *ast.DoUntil:
		for _, st := range s.Body {
			a.visitStatement(st)
		}
		a.visitExpr(s.Cond)
		if t := s.Cond.ExprType(); !t.Equal(types.Boolean) && !isVoid(t) {
			a.addErrorAt(s.Cond.Position(), "condition must be boolean, got %s", t)
		}
	case *ast.Break:
		// Loop nesting is not checked here: a `стоп` or `далее` outside
		// any loop is rejected by the code generator, and under the
		// tree-walking interpreter it stops the enclosing program or
		// function body.
	case *ast.Continue:
	case *ast.Return:
		a.visitReturn(s)
	case *ast.CallStmt:
		a.visitExpr(s.Call)
	}
}

func (a *Analyzer) visitAssign(s *ast.Assign) {
	a.visitExpr(s.Target)
	a.visitExpr(s.Value)

	switch s.Target.(type) {
	case *ast.Identifier, *ast.ArrayAccess:
	default:
		a.addErrorAt(s.Target.Position(), "invalid assignment target")
		return
	}

	tt, vt := s.Target.ExprType(), s.Value.ExprType()
	if isVoid(tt) || isVoid(vt) {
		return // already reported by the sub-expression visit
	}
	if !types.IsAssignable(vt, tt) {
		a.addErrorAt(s.Value.Position(), "cannot assign %s to %s", vt, tt)
	}
}

func (a *Analyzer) visitFor(s *ast.For) {
	sym, ok := a.scopes.Resolve(s.VarName)
	if !ok {
		a.addErrorAt(s.Position(), "undeclared loop variable '%s'", s.VarName)
	} else if !sym.Type.Equal(types.Integer) {
		a.addErrorAt(s.Position(), "loop variable '%s' must be цел, got %s", s.VarName, sym.Type)
	}

	a.visitExpr(s.Start)
	a.visitExpr(s.End)
	a.requireInteger(s.Start)
	a.requireInteger(s.End)
	if s.Step != nil {
		a.visitExpr(s.Step)
		a.requireInteger(s.Step)
	}
	for _, st := range s.Body {
		a.visitStatement(st)
	}
}

func (a *Analyzer) requireInteger(e ast.Expr) {
	if t := e.ExprType(); !isVoid(t) && !t.Equal(types.Integer) {
		a.addErrorAt(e.Position(), "expected цел, got %s", t)
	}
}

func (a *Analyzer) visitReturn(s *ast.Return) {
	if s.Value != nil {
		a.visitExpr(s.Value)
	}
	if a.curFunc == nil {
		if s.Value != nil {
			a.addErrorAt(s.Position(), "'знач' with a value is only valid inside a function")
		}
		return
	}
	switch {
	case a.curFunc.Return == nil && s.Value != nil:
		a.addErrorAt(s.Position(), "procedure cannot return a value")
	case a.curFunc.Return != nil && s.Value == nil:
		a.addErrorAt(s.Position(), "function must return a value of type %s", *a.curFunc.Return)
	case a.curFunc.Return != nil && s.Value != nil:
		if vt := s.Value.ExprType(); !isVoid(vt) && !types.IsAssignable(vt, *a.curFunc.Return) {
			a.addErrorAt(s.Value.Position(), "returned %s, expected %s", vt, *a.curFunc.Return)
		}
	}
}

func isVoid(t types.Type) bool { return t.Equal(types.Void) }
