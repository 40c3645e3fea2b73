package interp

import (
	"shkola/internal/ast"
	"shkola/internal/errors"
	"shkola/internal/types"
)

// eval evaluates e against env. On a runtime error it records the error
// (via it.fail) and returns a sentinel outcome; callers check it.failed().
func (it *Interpreter) eval(e ast.Expr, env *Environment) (Value, outcome) {
	switch n := e.(type) {
	case *ast.Int:
		return n.Value, normalOutcome
	case *ast.Bool:
		return n.Value, normalOutcome
	case *ast.Char:
		return n.Value, normalOutcome
	case *ast.String:
		return n.Value, normalOutcome
	case *ast.Identifier:
		v, ok := env.Get(n.Name)
		if !ok {
			return nil, it.fail(errors.NewRuntimeError("unbound identifier '%s'", n.Name))
		}
		return v, normalOutcome
	case *ast.ArrayAccess:
		arr, idx, o := it.evalArrayTarget(n, env)
		if it.failed() {
			return nil, o
		}
		if idx < 1 || idx > int64(len(arr.Data)) {
			return nil, it.fail(errors.NewRuntimeError("array index %d out of bounds [1,%d]", idx, len(arr.Data)))
		}
		return arr.Data[idx-1], normalOutcome
	case *ast.BinOp:
		return it.evalBinOp(n, env)
	case *ast.UnaryOp:
		return it.evalUnaryOp(n, env)
	case *ast.Call:
		return it.evalCall(n, env)
	default:
		return nil, it.fail(errors.NewRuntimeError("unknown expression %T", e))
	}
}

func (it *Interpreter) evalUnaryOp(n *ast.UnaryOp, env *Environment) (Value, outcome) {
	v, o := it.eval(n.Operand, env)
	if it.failed() {
		return nil, o
	}
	switch n.Op {
	case types.OpAdd:
		return v, normalOutcome
	case types.OpSub:
		i, _ := v.(int64)
		return -i, normalOutcome
	case types.OpNot:
		b, _ := v.(bool)
		return !b, normalOutcome
	default:
		return nil, it.fail(errors.NewRuntimeError("unknown unary operator '%s'", n.Op))
	}
}

// evalBinOp implements left-to-right evaluation with short-circuit and/or
// (spec.md §4.2, §5).
func (it *Interpreter) evalBinOp(n *ast.BinOp, env *Environment) (Value, outcome) {
	if n.Op == types.OpAnd || n.Op == types.OpOr {
		lv, o := it.eval(n.Left, env)
		if it.failed() {
			return nil, o
		}
		lb, _ := lv.(bool)
		if n.Op == types.OpAnd && !lb {
			return false, normalOutcome
		}
		if n.Op == types.OpOr && lb {
			return true, normalOutcome
		}
		rv, o := it.eval(n.Right, env)
		if it.failed() {
			return nil, o
		}
		rb, _ := rv.(bool)
		return rb, normalOutcome
	}

	lv, o := it.eval(n.Left, env)
	if it.failed() {
		return nil, o
	}
	rv, o := it.eval(n.Right, env)
	if it.failed() {
		return nil, o
	}

	if types.IsArithmetic(n.Op) {
		li, _ := lv.(int64)
		ri, _ := rv.(int64)
		switch n.Op {
		case types.OpAdd:
			return li + ri, normalOutcome
		case types.OpSub:
			return li - ri, normalOutcome
		case types.OpMul:
			return li * ri, normalOutcome
		case types.OpDiv, types.OpIDiv:
			if ri == 0 {
				return nil, it.fail(errors.NewRuntimeError("division by zero"))
			}
			return truncDiv(li, ri), normalOutcome
		case types.OpMod:
			if ri == 0 {
				return nil, it.fail(errors.NewRuntimeError("modulo by zero"))
			}
			return li - truncDiv(li, ri)*ri, normalOutcome
		}
	}

	if types.IsComparison(n.Op) {
		return compareValues(n.Op, lv, rv), normalOutcome
	}

	return nil, it.fail(errors.NewRuntimeError("unknown binary operator '%s'", n.Op))
}

// truncDiv implements truncated (toward-zero) integer division, matching
// host-arithmetic Go semantics for `/` on int64 — spec.md §3 requires both
// `/` and `div` to denote truncated division.
func truncDiv(a, b int64) int64 { return a / b }

func compareValues(op string, l, r Value) bool {
	switch lv := l.(type) {
	case int64:
		rv, _ := r.(int64)
		switch op {
		case types.OpEq:
			return lv == rv
		case types.OpNe:
			return lv != rv
		case types.OpLt:
			return lv < rv
		case types.OpLe:
			return lv <= rv
		case types.OpGt:
			return lv > rv
		case types.OpGe:
			return lv >= rv
		}
	case bool:
		rv, _ := r.(bool)
		switch op {
		case types.OpEq:
			return lv == rv
		case types.OpNe:
			return lv != rv
		}
	case rune:
		rv, _ := r.(rune)
		switch op {
		case types.OpEq:
			return lv == rv
		case types.OpNe:
			return lv != rv
		case types.OpLt:
			return lv < rv
		case types.OpLe:
			return lv <= rv
		case types.OpGt:
			return lv > rv
		case types.OpGe:
			return lv >= rv
		}
	}
	return false
}

// evalCall dispatches to a builtin or a user-defined function. Arguments
// are evaluated left-to-right before either (spec.md §5).
func (it *Interpreter) evalCall(n *ast.Call, env *Environment) (Value, outcome) {
	switch n.Name {
	case "print":
		v, o := it.eval(n.Args[0], env)
		if it.failed() {
			return nil, o
		}
		it.out.WriteString(Format(v))
		it.out.WriteByte('\n')
		return int64(0), normalOutcome
	case "inc", "dec":
		return it.evalIncDec(n, env)
	case "abs":
		v, o := it.eval(n.Args[0], env)
		if it.failed() {
			return nil, o
		}
		i, _ := v.(int64)
		if i < 0 {
			i = -i
		}
		return i, normalOutcome
	}

	fd, ok := it.funcs[n.Name]
	if !ok {
		return nil, it.fail(errors.NewRuntimeError("call to undeclared function '%s'", n.Name))
	}
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, o := it.eval(a, env)
		if it.failed() {
			return nil, o
		}
		args[i] = v
	}

	frame := NewEnvironment(it.global)
	for i, p := range fd.Params {
		frame.Declare(p.Name, args[i])
	}
	o := it.execBlockIn(fd.Block, frame, false)
	if it.failed() {
		return nil, o
	}
	if o.sig == sigReturn {
		return o.value, normalOutcome
	}
	return nil, normalOutcome
}

func (it *Interpreter) evalIncDec(n *ast.Call, env *Environment) (Value, outcome) {
	switch t := n.Args[0].(type) {
	case *ast.Identifier:
		v, ok := env.Get(t.Name)
		if !ok {
			return nil, it.fail(errors.NewRuntimeError("unbound identifier '%s'", t.Name))
		}
		i, _ := v.(int64)
		if n.Name == "inc" {
			i++
		} else {
			i--
		}
		env.Set(t.Name, i)
	case *ast.ArrayAccess:
		arr, idx, o := it.evalArrayTarget(t, env)
		if it.failed() {
			return nil, o
		}
		if idx < 1 || idx > int64(len(arr.Data)) {
			return nil, it.fail(errors.NewRuntimeError("array index %d out of bounds [1,%d]", idx, len(arr.Data)))
		}
		i, _ := arr.Data[idx-1].(int64)
		if n.Name == "inc" {
			i++
		} else {
			i--
		}
		arr.Data[idx-1] = i
	}
	return int64(0), normalOutcome
}
