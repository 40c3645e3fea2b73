package astfold

import (
	"shkola/internal/ast"
	"shkola/internal/types"
)

// foldExpr rewrites e bottom-up and returns the (possibly replaced) node.
func (f *folder) foldExpr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.BinOp:
		return f.foldBinOp(n)
	case *ast.UnaryOp:
		return f.foldUnaryOp(n)
	case *ast.ArrayAccess:
		n.Array = f.foldExpr(n.Array)
		n.Index = f.foldExpr(n.Index)
		return n
	case *ast.Call:
		for i, arg := range n.Args {
			n.Args[i] = f.foldExpr(arg)
		}
		return n
	default:
		return e
	}
}

func (f *folder) foldBinOp(n *ast.BinOp) ast.Expr {
	n.Left = f.foldExpr(n.Left)
	n.Right = f.foldExpr(n.Right)

	if folded := f.foldLiteralBinOp(n); folded != nil {
		return folded
	}
	if folded := f.foldIdentityBinOp(n); folded != nil {
		return folded
	}
	return n
}

// foldLiteralBinOp evaluates n when both operands are literal-valued.
// Division/modulo by zero is deliberately left unfolded so the runtime
// error is preserved (spec.md §4.6).
func (f *folder) foldLiteralBinOp(n *ast.BinOp) ast.Expr {
	pos := n.Position()

	if li, lok := litInt(n.Left); lok {
		if ri, rok := litInt(n.Right); rok {
			switch n.Op {
			case types.OpAdd:
				return f.replaceInt(li+ri, pos)
			case types.OpSub:
				return f.replaceInt(li-ri, pos)
			case types.OpMul:
				return f.replaceInt(li*ri, pos)
			case types.OpDiv, types.OpIDiv:
				if ri == 0 {
					return nil
				}
				return f.replaceInt(li/ri, pos)
			case types.OpMod:
				if ri == 0 {
					return nil
				}
				return f.replaceInt(li-(li/ri)*ri, pos)
			case types.OpEq:
				return f.replaceBool(li == ri, pos)
			case types.OpNe:
				return f.replaceBool(li != ri, pos)
			case types.OpLt:
				return f.replaceBool(li < ri, pos)
			case types.OpLe:
				return f.replaceBool(li <= ri, pos)
			case types.OpGt:
				return f.replaceBool(li > ri, pos)
			case types.OpGe:
				return f.replaceBool(li >= ri, pos)
			}
		}
	}

	if lb, lok := litBool(n.Left); lok {
		if rb, rok := litBool(n.Right); rok {
			switch n.Op {
			case types.OpAnd:
				return f.replaceBool(lb && rb, pos)
			case types.OpOr:
				return f.replaceBool(lb || rb, pos)
			case types.OpEq:
				return f.replaceBool(lb == rb, pos)
			case types.OpNe:
				return f.replaceBool(lb != rb, pos)
			}
		}
	}
	return nil
}

// foldIdentityBinOp applies the algebraic/logical identities of spec.md
// §4.6. An identity that would drop the side (and keep only x) is applied
// unconditionally — x itself is retained, never discarded, so no purity
// check is needed there. An identity that replaces the WHOLE expression
// with a fresh literal (discarding x entirely, e.g. `x*0 -> 0`) only
// applies when x is pure, since x's side effects (if any, i.e. a Call)
// would otherwise be silently dropped.
func (f *folder) foldIdentityBinOp(n *ast.BinOp) ast.Expr {
	switch n.Op {
	case types.OpAdd:
		if ri, ok := litInt(n.Right); ok && ri == 0 {
			f.applied++
			return n.Left
		}
		if li, ok := litInt(n.Left); ok && li == 0 {
			f.applied++
			return n.Right
		}
	case types.OpSub:
		if ri, ok := litInt(n.Right); ok && ri == 0 {
			f.applied++
			return n.Left
		}
	case types.OpMul:
		if ri, ok := litInt(n.Right); ok {
			if ri == 1 {
				f.applied++
				return n.Left
			}
			if ri == 0 && isPure(n.Left) {
				f.applied++
				return ast.NewInt(0, n.Position())
			}
		}
		if li, ok := litInt(n.Left); ok {
			if li == 1 {
				f.applied++
				return n.Right
			}
			if li == 0 && isPure(n.Right) {
				f.applied++
				return ast.NewInt(0, n.Position())
			}
		}
	case types.OpDiv, types.OpIDiv:
		if ri, ok := litInt(n.Right); ok && ri == 1 {
			f.applied++
			return n.Left
		}
	case types.OpAnd:
		if rb, ok := litBool(n.Right); ok {
			if rb {
				f.applied++
				return n.Left
			}
			if isPure(n.Left) {
				f.applied++
				return ast.NewBool(false, n.Position())
			}
		}
		if lb, ok := litBool(n.Left); ok {
			if lb {
				f.applied++
				return n.Right
			}
			if isPure(n.Right) {
				f.applied++
				return ast.NewBool(false, n.Position())
			}
		}
	case types.OpOr:
		if rb, ok := litBool(n.Right); ok {
			if !rb {
				f.applied++
				return n.Left
			}
			if isPure(n.Left) {
				f.applied++
				return ast.NewBool(true, n.Position())
			}
		}
		if lb, ok := litBool(n.Left); ok {
			if !lb {
				f.applied++
				return n.Right
			}
			if isPure(n.Right) {
				f.applied++
				return ast.NewBool(true, n.Position())
			}
		}
	}
	return nil
}

func (f *folder) foldUnaryOp(n *ast.UnaryOp) ast.Expr {
	n.Operand = f.foldExpr(n.Operand)
	pos := n.Position()
	switch n.Op {
	case types.OpSub:
		if i, ok := litInt(n.Operand); ok {
			return f.replaceInt(-i, pos)
		}
	case types.OpAdd:
		if i, ok := litInt(n.Operand); ok {
			return f.replaceInt(i, pos)
		}
	case types.OpNot:
		if b, ok := litBool(n.Operand); ok {
			return f.replaceBool(!b, pos)
		}
	}
	return n
}

func (f *folder) replaceInt(v int64, pos ast.Position) ast.Expr {
	f.applied++
	return ast.NewInt(v, pos)
}

func (f *folder) replaceBool(v bool, pos ast.Position) ast.Expr {
	f.applied++
	return ast.NewBool(v, pos)
}
