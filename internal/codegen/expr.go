package codegen

import (
	"shkola/internal/ast"
	"shkola/internal/bytecode"
	"shkola/internal/errors"
	"shkola/internal/types"
)

func (g *Generator) genExpr(e ast.Expr) {
	if g.err != nil {
		return
	}
	switch n := e.(type) {
	case *ast.Int:
		g.prog.Emit(bytecode.PushInt, n.Value)
	case *ast.Bool:
		g.prog.Emit(bytecode.PushBool, n.Value)
	case *ast.Char:
		g.prog.Emit(bytecode.PushChar, n.Value)
	case *ast.String:
		g.prog.Emit(bytecode.PushString, n.Value)
	case *ast.Identifier:
		g.loadIdentifier(n.Name)
	case *ast.ArrayAccess:
		g.genExpr(n.Array)
		g.genExpr(n.Index)
		g.prog.Emit(bytecode.LoadArray, nil)
	case *ast.BinOp:
		g.genBinOp(n)
	case *ast.UnaryOp:
		g.genUnaryOp(n)
	case *ast.Call:
		g.genCall(n)
	default:
		g.fail(errors.NewCodegenError("unsupported expression", e.Position().Line, e.Position().Column))
	}
}

// genBinOp implements spec.md §4.4: arithmetic/comparison evaluate both
// operands then emit the opcode; `and`/`or` lower to the short-circuit
// dup/jump/pop pattern, preserving the left value on the short-circuit
// path and replacing it with the right value otherwise.
func (g *Generator) genBinOp(n *ast.BinOp) {
	if n.Op == types.OpAnd || n.Op == types.OpOr {
		g.genShortCircuit(n)
		return
	}

	g.genExpr(n.Left)
	g.genExpr(n.Right)
	op, ok := arithOrCompareOpcode(n.Op)
	if !ok {
		g.fail(errors.NewCodegenError("unsupported operator '"+n.Op+"'", n.Position().Line, n.Position().Column))
		return
	}
	g.prog.Emit(op, nil)
}

func arithOrCompareOpcode(op string) (bytecode.OpCode, bool) {
	switch op {
	case types.OpAdd:
		return bytecode.Add, true
	case types.OpSub:
		return bytecode.Sub, true
	case types.OpMul:
		return bytecode.Mul, true
	case types.OpDiv:
		return bytecode.Div, true
	case types.OpIDiv:
		return bytecode.IDiv, true
	case types.OpMod:
		return bytecode.Mod, true
	case types.OpEq:
		return bytecode.Eq, true
	case types.OpNe:
		return bytecode.Ne, true
	case types.OpLt:
		return bytecode.Lt, true
	case types.OpLe:
		return bytecode.Le, true
	case types.OpGt:
		return bytecode.Gt, true
	case types.OpGe:
		return bytecode.Ge, true
	default:
		return 0, false
	}
}

func (g *Generator) genShortCircuit(n *ast.BinOp) {
	shortLabel := g.newLabel()
	endLabel := g.newLabel()

	g.genExpr(n.Left)
	g.prog.Emit(bytecode.Dup, nil)
	if n.Op == types.OpAnd {
		g.emitJump(bytecode.JmpIfFalse, shortLabel)
	} else {
		g.emitJump(bytecode.JmpIfTrue, shortLabel)
	}
	g.prog.Emit(bytecode.Pop, nil)
	g.genExpr(n.Right)
	g.emitJump(bytecode.Jmp, endLabel)
	g.markLabel(shortLabel)
	g.markLabel(endLabel)
}

func (g *Generator) genUnaryOp(n *ast.UnaryOp) {
	g.genExpr(n.Operand)
	switch n.Op {
	case types.OpAdd:
		// unary plus is a no-op once the operand is on the stack
	case types.OpSub:
		g.prog.Emit(bytecode.Neg, nil)
	case types.OpNot:
		g.prog.Emit(bytecode.Not, nil)
	default:
		g.fail(errors.NewCodegenError("unsupported unary operator '"+n.Op+"'", n.Position().Line, n.Position().Column))
	}
}

// genCall implements spec.md §4.4's builtin and user-call lowering.
func (g *Generator) genCall(n *ast.Call) {
	switch n.Name {
	case "print":
		g.genExpr(n.Args[0])
		g.prog.Emit(bytecode.Print, nil)
		g.prog.Emit(bytecode.PushInt, int64(0))
		return
	case "inc", "dec":
		g.genIncDec(n)
		return
	case "abs":
		g.genExpr(n.Args[0])
		g.prog.Emit(bytecode.Abs, nil)
		return
	}
	g.genUserCall(n)
}

// genIncDec matches spec.md §4.4 literally: it requires the argument to be
// an Identifier (array elements are accepted by the analyzer and the
// tree-walking interpreter but not by this lowering).
func (g *Generator) genIncDec(n *ast.Call) {
	ident, ok := n.Args[0].(*ast.Identifier)
	if !ok {
		g.fail(errors.NewCodegenError("'"+n.Name+"' requires a variable, not an array element", n.Position().Line, n.Position().Column))
		return
	}
	op := bytecode.Inc
	if n.Name == "dec" {
		op = bytecode.Dec
	}
	if idx, ok := g.globalIndex[ident.Name]; ok {
		g.prog.Emit(op, idx)
		g.prog.Emit(bytecode.PushInt, int64(0))
		return
	}
	if idx, ok := g.localIndex[ident.Name]; ok {
		g.prog.Emit(bytecode.LoadLocal, idx)
		g.prog.Emit(bytecode.PushInt, int64(1))
		if n.Name == "inc" {
			g.prog.Emit(bytecode.Add, nil)
		} else {
			g.prog.Emit(bytecode.Sub, nil)
		}
		g.prog.Emit(bytecode.StoreLocal, idx)
		g.prog.Emit(bytecode.PushInt, int64(0))
		return
	}
	g.fail(errors.NewCodegenError("unresolved identifier '"+ident.Name+"'", n.Position().Line, n.Position().Column))
}

// genUserCall implements the Call ABI of spec.md §4.4: arguments are
// pushed left-to-right; the VM pops them right-to-left and binds them to
// local slots 0..nparams-1 in their original left-to-right order (see
// internal/vm's execCall for why this differs from the reference
// implementation's unreversed pop, a confirmed argument-order bug for
// multi-parameter calls).
//
// A procedure (return type absent, n.ExprType() is Void) leaves nothing
// on the stack after Return, but every call expression must leave exactly
// one value — CallStmt unconditionally Pops (the same stack discipline
// print/inc/dec/abs honor). So a void call gets the same PushInt 0
// placeholder those builtins push after their effect.
func (g *Generator) genUserCall(n *ast.Call) {
	for _, arg := range n.Args {
		g.genExpr(arg)
	}
	idx := g.prog.Emit(bytecode.Call, bytecode.CallArg{NParams: len(n.Args)})
	g.pending = append(g.pending, pendingCall{index: idx, name: n.Name})
	if n.ExprType().Kind == types.KindVoid {
		g.prog.Emit(bytecode.PushInt, int64(0))
	}
}
