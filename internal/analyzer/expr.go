package analyzer

import (
	"shkola/internal/ast"
	"shkola/internal/scope"
	"shkola/internal/types"
)

func (a *Analyzer) visitExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Int:
		n.SetExprType(types.Integer)
	case *ast.Bool:
		n.SetExprType(types.Boolean)
	case *ast.Char:
		n.SetExprType(types.Char)
	case *ast.String:
		n.SetExprType(types.String)
	case *ast.Identifier:
		a.visitIdentifier(n)
	case *ast.ArrayAccess:
		a.visitArrayAccess(n)
	case *ast.BinOp:
		a.visitBinOp(n)
	case *ast.UnaryOp:
		a.visitUnaryOp(n)
	case *ast.Call:
		a.visitCall(n)
	default:
		a.addErrorAt(e.Position(), "unknown expression node %T", e)
	}
}

func (a *Analyzer) visitIdentifier(n *ast.Identifier) {
	sym, ok := a.scopes.Resolve(n.Name)
	if !ok {
		a.addErrorAt(n.Position(), "undeclared identifier '%s'", n.Name)
		n.SetExprType(types.Void)
		return
	}
	if sym.Kind == scope.KindFunction || sym.Kind == scope.KindBuiltin {
		a.addErrorAt(n.Position(), "'%s' is a function, not a value", n.Name)
		n.SetExprType(types.Void)
		return
	}
	n.SetExprType(sym.Type)
}

func (a *Analyzer) visitArrayAccess(n *ast.ArrayAccess) {
	a.visitExpr(n.Array)
	a.visitExpr(n.Index)
	a.requireInteger(n.Index)

	at := n.Array.ExprType()
	if isVoid(at) {
		n.SetExprType(types.Void)
		return
	}
	if at.Kind != types.KindArray {
		a.addErrorAt(n.Array.Position(), "cannot index non-array type %s", at)
		n.SetExprType(types.Void)
		return
	}
	n.SetExprType(*at.Elem)
}

func (a *Analyzer) visitBinOp(n *ast.BinOp) {
	a.visitExpr(n.Left)
	a.visitExpr(n.Right)
	lt, rt := n.Left.ExprType(), n.Right.ExprType()
	if isVoid(lt) || isVoid(rt) {
		n.SetExprType(types.Void)
		return
	}
	rtype, ok := types.BinaryResultType(n.Op, lt, rt)
	if !ok {
		a.addErrorAt(n.Position(), "operator '%s' not defined for %s and %s", n.Op, lt, rt)
		n.SetExprType(types.Void)
		return
	}
	n.SetExprType(rtype)
}

func (a *Analyzer) visitUnaryOp(n *ast.UnaryOp) {
	a.visitExpr(n.Operand)
	ot := n.Operand.ExprType()
	if isVoid(ot) {
		n.SetExprType(types.Void)
		return
	}
	rtype, ok := types.UnaryResultType(n.Op, ot)
	if !ok {
		a.addErrorAt(n.Position(), "unary '%s' not defined for %s", n.Op, ot)
		n.SetExprType(types.Void)
		return
	}
	n.SetExprType(rtype)
}

// visitCall implements spec.md §4.1's call-checking rule, including the
// three builtins' special cases: print accepts one argument of any type,
// inc/dec require a single integer lvalue, abs requires one integer and
// returns one.
func (a *Analyzer) visitCall(n *ast.Call) {
	for _, arg := range n.Args {
		a.visitExpr(arg)
	}

	if scope.IsPolymorphicBuiltin(n.Name) {
		if len(n.Args) != 1 {
			a.addErrorAt(n.Position(), "'%s' takes exactly 1 argument, got %d", n.Name, len(n.Args))
		}
		n.SetExprType(types.Void)
		return
	}

	switch n.Name {
	case "inc", "dec":
		a.visitIncDec(n)
		return
	case "abs":
		if len(n.Args) != 1 {
			a.addErrorAt(n.Position(), "'abs' takes exactly 1 argument, got %d", len(n.Args))
			n.SetExprType(types.Void)
			return
		}
		a.requireInteger(n.Args[0])
		n.SetExprType(types.Integer)
		return
	}

	sym, ok := a.scopes.Resolve(n.Name)
	if !ok {
		a.addErrorAt(n.Position(), "call to undeclared function '%s'", n.Name)
		n.SetExprType(types.Void)
		return
	}
	if sym.Kind != scope.KindFunction && sym.Kind != scope.KindBuiltin {
		a.addErrorAt(n.Position(), "'%s' is not callable", n.Name)
		n.SetExprType(types.Void)
		return
	}

	sig := sym.Type
	if len(n.Args) != len(sig.Params) {
		a.addErrorAt(n.Position(), "'%s' expects %d argument(s), got %d", n.Name, len(sig.Params), len(n.Args))
	} else {
		for i, arg := range n.Args {
			at := arg.ExprType()
			if isVoid(at) {
				continue
			}
			if !types.IsAssignable(at, sig.Params[i]) {
				a.addErrorAt(arg.Position(), "argument %d to '%s': expected %s, got %s", i+1, n.Name, sig.Params[i], at)
			}
		}
	}

	if sig.ReturnType != nil {
		n.SetExprType(*sig.ReturnType)
	} else {
		n.SetExprType(types.Void)
	}
}

func (a *Analyzer) visitIncDec(n *ast.Call) {
	if len(n.Args) != 1 {
		a.addErrorAt(n.Position(), "'%s' takes exactly 1 argument, got %d", n.Name, len(n.Args))
		n.SetExprType(types.Void)
		return
	}
	arg := n.Args[0]
	switch arg.(type) {
	case *ast.Identifier, *ast.ArrayAccess:
	default:
		a.addErrorAt(arg.Position(), "'%s' requires a variable, not an expression", n.Name)
	}
	a.requireInteger(arg)
	n.SetExprType(types.Void)
}
