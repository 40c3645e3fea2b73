package interp

import (
	"shkola/internal/ast"
	"shkola/internal/errors"
)

func (it *Interpreter) execStmt(stmt ast.Stmt, env *Environment) outcome {
	switch s := stmt.(type) {
	case *ast.Assign:
		return it.execAssign(s, env)
	case *ast.If:
		cond, o := it.evalBool(s.Cond, env)
		if it.failed() {
			return o
		}
		if cond {
			return it.execStmts(s.ThenStmts, env)
		}
		return it.execStmts(s.ElseStmts, env)
	case *ast.While:
		return it.execWhile(s, env)
	case *ast.DoUntil:
		return it.execDoUntil(s, env)
	case *ast.For:
		return it.execFor(s, env)
	case *ast.Break:
		return outcome{sig: sigBreak}
	case *ast.Continue:
		return outcome{sig: sigContinue}
	case *ast.Return:
		if s.Value == nil {
			return outcome{sig: sigReturn}
		}
		v, o := it.eval(s.Value, env)
		if it.failed() {
			return o
		}
		return outcome{sig: sigReturn, value: v}
	case *ast.CallStmt:
		_, o := it.eval(s.Call, env)
		if it.failed() {
			return o
		}
		return normalOutcome
	default:
		return it.fail(errors.NewRuntimeError("unknown statement %T", stmt))
	}
}

func (it *Interpreter) execStmts(stmts []ast.Stmt, env *Environment) outcome {
	frame := NewEnvironment(env)
	for _, stmt := range stmts {
		o := it.execStmt(stmt, frame)
		if o.sig != sigNormal || it.failed() {
			return o
		}
	}
	return normalOutcome
}

func (it *Interpreter) evalBool(e ast.Expr, env *Environment) (bool, outcome) {
	v, o := it.eval(e, env)
	if it.failed() {
		return false, o
	}
	b, _ := v.(bool)
	return b, normalOutcome
}

// execAssign evaluates target before value for an array element (array,
// then index, then value), matching codegen's emission order in
// internal/codegen/statement.go's genAssign exactly, so a side-effecting
// subexpression (a Call) prints in the same order under both backends.
func (it *Interpreter) execAssign(s *ast.Assign, env *Environment) outcome {
	switch t := s.Target.(type) {
	case *ast.Identifier:
		v, o := it.eval(s.Value, env)
		if it.failed() {
			return o
		}
		if !env.Set(t.Name, v) {
			return it.fail(errors.NewRuntimeError("unbound identifier '%s'", t.Name))
		}
	case *ast.ArrayAccess:
		arr, idx, o := it.evalArrayTarget(t, env)
		if it.failed() {
			return o
		}
		v, o := it.eval(s.Value, env)
		if it.failed() {
			return o
		}
		if idx < 1 || idx > int64(len(arr.Data)) {
			return it.fail(errors.NewRuntimeError("array index %d out of bounds [1,%d]", idx, len(arr.Data)))
		}
		arr.Data[idx-1] = v
	default:
		return it.fail(errors.NewRuntimeError("invalid assignment target %T", s.Target))
	}
	return normalOutcome
}

func (it *Interpreter) evalArrayTarget(t *ast.ArrayAccess, env *Environment) (*Array, int64, outcome) {
	av, o := it.eval(t.Array, env)
	if it.failed() {
		return nil, 0, o
	}
	arr, ok := av.(*Array)
	if !ok {
		return nil, 0, it.fail(errors.NewRuntimeError("indexing a non-array value"))
	}
	iv, o := it.eval(t.Index, env)
	if it.failed() {
		return nil, 0, o
	}
	idx, _ := iv.(int64)
	return arr, idx, normalOutcome
}

// execWhile implements `пока cond … кц`: test, then body, repeat.
func (it *Interpreter) execWhile(s *ast.While, env *Environment) outcome {
	for {
		cond, o := it.evalBool(s.Cond, env)
		if it.failed() {
			return o
		}
		if !cond {
			return normalOutcome
		}
		o = it.execStmts(s.Body, env)
		switch o.sig {
		case sigBreak:
			return normalOutcome
		case sigContinue, sigNormal:
			if it.failed() {
				return o
			}
		default:
			return o
		}
	}
}

// execDoUntil implements `цикл … до cond`: execute body until cond becomes
// true (spec.md §4.4: "executes body until cond is true").
func (it *Interpreter) execDoUntil(s *ast.DoUntil, env *Environment) outcome {
	for {
		o := it.execStmts(s.Body, env)
		switch o.sig {
		case sigBreak:
			return normalOutcome
		case sigContinue, sigNormal:
			if it.failed() {
				return o
			}
		default:
			return o
		}
		cond, o := it.evalBool(s.Cond, env)
		if it.failed() {
			return o
		}
		if cond {
			return normalOutcome
		}
	}
}

// execFor implements spec.md §4.2's For-loop semantics: evaluate start/end/
// step once, assign the loop var, then iterate with the direction-aware
// comparison (resolving Open Question #1 — the reference codegen always
// uses "<=" even for a negative step, which is a confirmed bug; the
// reference interpreter already does this correctly and that is the
// behavior generalized here).
func (it *Interpreter) execFor(s *ast.For, env *Environment) outcome {
	startV, o := it.eval(s.Start, env)
	if it.failed() {
		return o
	}
	endV, o := it.eval(s.End, env)
	if it.failed() {
		return o
	}
	var stepV Value = int64(1)
	if s.Step != nil {
		stepV, o = it.eval(s.Step, env)
		if it.failed() {
			return o
		}
	}
	start, _ := startV.(int64)
	end, _ := endV.(int64)
	step, _ := stepV.(int64)

	if !env.Set(s.VarName, start) {
		return it.fail(errors.NewRuntimeError("unbound loop variable '%s'", s.VarName))
	}

	inRange := func(cur int64) bool {
		if step >= 0 {
			return cur <= end
		}
		return cur >= end
	}

	for {
		cur, ok := env.Get(s.VarName)
		if !ok {
			return it.fail(errors.NewRuntimeError("unbound loop variable '%s'", s.VarName))
		}
		curI, _ := cur.(int64)
		if !inRange(curI) {
			return normalOutcome
		}

		o := it.execStmts(s.Body, env)
		switch o.sig {
		case sigBreak:
			return normalOutcome
		case sigContinue, sigNormal:
			if it.failed() {
				return o
			}
		default:
			return o
		}

		cur, _ = env.Get(s.VarName)
		curI, _ = cur.(int64)
		env.Set(s.VarName, curI+step)
	}
}
