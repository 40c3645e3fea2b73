package vm

import (
	"shkola/internal/bytecode"
	"shkola/internal/errors"
)

// execArith implements spec.md §4.3's arithmetic group: binary operators
// consume (right, left) off the stack in that order (top = right-hand
// side) and push one result. Div/IDiv denote the same truncated
// (toward-zero) integer division; Div/IDiv/Mod by zero is a runtime
// error.
func (v *VM) execArith(op bytecode.OpCode) *errors.LangError {
	right, err := v.popInt()
	if err != nil {
		return err
	}
	left, err := v.popInt()
	if err != nil {
		return err
	}
	switch op {
	case bytecode.Add:
		v.push(left + right)
	case bytecode.Sub:
		v.push(left - right)
	case bytecode.Mul:
		v.push(left * right)
	case bytecode.Div, bytecode.IDiv:
		if right == 0 {
			return errors.NewRuntimeError("division by zero")
		}
		v.push(left / right)
	case bytecode.Mod:
		if right == 0 {
			return errors.NewRuntimeError("modulo by zero")
		}
		v.push(left - (left/right)*right)
	}
	return nil
}

func (v *VM) execCompare(op bytecode.OpCode) *errors.LangError {
	right, err := v.pop()
	if err != nil {
		return err
	}
	left, err := v.pop()
	if err != nil {
		return err
	}
	result, cerr := compareValues(op, left, right)
	if cerr != nil {
		return cerr
	}
	v.push(result)
	return nil
}

func compareValues(op bytecode.OpCode, left, right any) (bool, *errors.LangError) {
	switch l := left.(type) {
	case int64:
		r, ok := right.(int64)
		if !ok {
			return false, errors.NewRuntimeError("comparison operand type mismatch")
		}
		switch op {
		case bytecode.Eq:
			return l == r, nil
		case bytecode.Ne:
			return l != r, nil
		case bytecode.Lt:
			return l < r, nil
		case bytecode.Le:
			return l <= r, nil
		case bytecode.Gt:
			return l > r, nil
		case bytecode.Ge:
			return l >= r, nil
		}
	case bool:
		r, ok := right.(bool)
		if !ok {
			return false, errors.NewRuntimeError("comparison operand type mismatch")
		}
		switch op {
		case bytecode.Eq:
			return l == r, nil
		case bytecode.Ne:
			return l != r, nil
		}
	case rune:
		r, ok := right.(rune)
		if !ok {
			return false, errors.NewRuntimeError("comparison operand type mismatch")
		}
		switch op {
		case bytecode.Eq:
			return l == r, nil
		case bytecode.Ne:
			return l != r, nil
		case bytecode.Lt:
			return l < r, nil
		case bytecode.Le:
			return l <= r, nil
		case bytecode.Gt:
			return l > r, nil
		case bytecode.Ge:
			return l >= r, nil
		}
	}
	return false, errors.NewRuntimeError("unsupported comparison operand type")
}

func (v *VM) execLogical(combine func(a, b bool) bool) *errors.LangError {
	right, err := v.popBool()
	if err != nil {
		return err
	}
	left, err := v.popBool()
	if err != nil {
		return err
	}
	v.push(combine(left, right))
	return nil
}

func (v *VM) execIncDec(ins bytecode.Instruction, delta int64) *errors.LangError {
	idx := ins.Arg.(int)
	if idx < 0 || idx >= len(v.globals) {
		return errors.NewRuntimeError("global index %d out of range", idx)
	}
	i, ok := v.globals[idx].(int64)
	if !ok {
		return errors.NewRuntimeError("Inc/Dec target is not an integer")
	}
	v.globals[idx] = i + delta
	return nil
}

// execCall implements the Call ABI of spec.md §4.4: arguments sit on the
// stack in push order (first argument deepest). The VM pops them
// right-to-left and binds them to local slots nparams-1 down to 0 — the
// slot assignment falls out naturally from popping in LIFO order, so the
// first-pushed argument lands in slot 0, exactly its original left-to-
// right position (this is where the reference implementation instead
// collects pops into a list without reversing, silently swapping
// multi-parameter calls).
func (v *VM) execCall(ins bytecode.Instruction) *errors.LangError {
	c := ins.Arg.(bytecode.CallArg)
	locals := make([]any, c.NLocals)
	for i := c.NParams - 1; i >= 0; i-- {
		val, err := v.pop()
		if err != nil {
			return err
		}
		locals[i] = val
	}
	v.frames = append(v.frames, &Frame{Locals: locals, ReturnAddress: v.ip + 1})
	v.ip = c.Addr
	return nil
}

// execReturn implements spec.md §4.5: "Return with an empty call stack
// terminates execution."
func (v *VM) execReturn() *errors.LangError {
	if len(v.frames) == 0 {
		v.halted = true
		return nil
	}
	frame := v.frames[len(v.frames)-1]
	v.frames = v.frames[:len(v.frames)-1]
	v.ip = frame.ReturnAddress
	return nil
}
