package vm

import (
	"shkola/internal/bytecode"
	"shkola/internal/errors"
)

// step executes one instruction and reports whether it altered ip itself
// (a jump, call or return), in which case run must not advance ip again.
func (v *VM) step(ins bytecode.Instruction) (bool, *errors.LangError) {
	switch ins.Op {
	case bytecode.PushInt, bytecode.PushBool, bytecode.PushChar, bytecode.PushString:
		v.push(ins.Arg)
		return false, nil
	case bytecode.PushConst:
		return false, v.execPushConst(ins)

	case bytecode.LoadGlobal:
		return false, v.execLoadGlobal(ins)
	case bytecode.StoreGlobal:
		return false, v.execStoreGlobal(ins)
	case bytecode.LoadLocal:
		return false, v.execLoadLocal(ins)
	case bytecode.StoreLocal:
		return false, v.execStoreLocal(ins)

	case bytecode.LoadArray:
		return false, v.execLoadArray()
	case bytecode.StoreArray:
		return false, v.execStoreArray()

	case bytecode.Add, bytecode.Sub, bytecode.Mul, bytecode.Div, bytecode.IDiv, bytecode.Mod:
		return false, v.execArith(ins.Op)
	case bytecode.Neg:
		i, err := v.popInt()
		if err != nil {
			return false, err
		}
		v.push(-i)
		return false, nil

	case bytecode.Eq, bytecode.Ne, bytecode.Lt, bytecode.Le, bytecode.Gt, bytecode.Ge:
		return false, v.execCompare(ins.Op)

	case bytecode.And:
		return false, v.execLogical(func(a, b bool) bool { return a && b })
	case bytecode.Or:
		return false, v.execLogical(func(a, b bool) bool { return a || b })
	case bytecode.Not:
		b, err := v.popBool()
		if err != nil {
			return false, err
		}
		v.push(!b)
		return false, nil

	case bytecode.Jmp:
		v.ip = ins.Arg.(int)
		return true, nil
	case bytecode.JmpIfFalse:
		b, err := v.popBool()
		if err != nil {
			return false, err
		}
		if !b {
			v.ip = ins.Arg.(int)
			return true, nil
		}
		return false, nil
	case bytecode.JmpIfTrue:
		b, err := v.popBool()
		if err != nil {
			return false, err
		}
		if b {
			v.ip = ins.Arg.(int)
			return true, nil
		}
		return false, nil

	case bytecode.Call:
		return true, v.execCall(ins)
	case bytecode.Return:
		return true, v.execReturn()

	case bytecode.Print:
		val, err := v.pop()
		if err != nil {
			return false, err
		}
		v.out.WriteString(bytecode.Format(val))
		v.out.WriteByte('\n')
		return false, nil
	case bytecode.Inc:
		return false, v.execIncDec(ins, 1)
	case bytecode.Dec:
		return false, v.execIncDec(ins, -1)
	case bytecode.Abs:
		i, err := v.popInt()
		if err != nil {
			return false, err
		}
		if i < 0 {
			i = -i
		}
		v.push(i)
		return false, nil

	case bytecode.Pop:
		_, err := v.pop()
		return false, err
	case bytecode.Dup:
		if len(v.stack) == 0 {
			return false, errors.NewRuntimeError("stack underflow")
		}
		v.push(v.stack[len(v.stack)-1])
		return false, nil

	case bytecode.Nop:
		return false, nil
	case bytecode.Halt:
		v.halted = true
		return true, nil

	default:
		return false, errors.NewRuntimeError("invalid opcode %v", ins.Op)
	}
}

// execPushConst clones array-valued constants so every push yields storage
// independent of the shared constant-table template (spec.md §4.5's
// scope-owned array lifetime).
func (v *VM) execPushConst(ins bytecode.Instruction) *errors.LangError {
	idx, ok := ins.Arg.(int)
	if !ok || idx < 0 || idx >= len(v.prog.Constants) {
		return errors.NewRuntimeError("invalid constant index")
	}
	c := v.prog.Constants[idx]
	if arr, ok := c.(*bytecode.ArrayValue); ok {
		v.push(arr.Clone())
	} else {
		v.push(c)
	}
	return nil
}

func (v *VM) execLoadGlobal(ins bytecode.Instruction) *errors.LangError {
	idx := ins.Arg.(int)
	if idx < 0 || idx >= len(v.globals) {
		return errors.NewRuntimeError("global index %d out of range", idx)
	}
	v.push(v.globals[idx])
	return nil
}

func (v *VM) execStoreGlobal(ins bytecode.Instruction) *errors.LangError {
	idx := ins.Arg.(int)
	if idx < 0 || idx >= len(v.globals) {
		return errors.NewRuntimeError("global index %d out of range", idx)
	}
	val, err := v.pop()
	if err != nil {
		return err
	}
	v.globals[idx] = val
	return nil
}

func (v *VM) execLoadLocal(ins bytecode.Instruction) *errors.LangError {
	frame, err := v.currentFrame()
	if err != nil {
		return err
	}
	idx := ins.Arg.(int)
	if idx < 0 || idx >= len(frame.Locals) {
		return errors.NewRuntimeError("local index %d out of range", idx)
	}
	v.push(frame.Locals[idx])
	return nil
}

func (v *VM) execStoreLocal(ins bytecode.Instruction) *errors.LangError {
	frame, err := v.currentFrame()
	if err != nil {
		return err
	}
	idx := ins.Arg.(int)
	if idx < 0 || idx >= len(frame.Locals) {
		return errors.NewRuntimeError("local index %d out of range", idx)
	}
	val, perr := v.pop()
	if perr != nil {
		return perr
	}
	frame.Locals[idx] = val
	return nil
}

// execLoadArray implements the fixed VM contract of spec.md §4.5: stack
// (top-down) is index, array; pushes the element.
func (v *VM) execLoadArray() *errors.LangError {
	idx, err := v.popInt()
	if err != nil {
		return err
	}
	arr, err := v.popArray()
	if err != nil {
		return err
	}
	if idx < 1 || int(idx) > len(arr.Data) {
		return errors.NewRuntimeError("array index %d out of bounds [1,%d]", idx, len(arr.Data))
	}
	v.push(arr.Data[idx-1])
	return nil
}

// execStoreArray implements this VM's chosen StoreArray contract (spec.md
// §4.5 leaves the exact stack order an implementer's call once the
// documented mismatch is resolved — see DESIGN.md): stack (top-down) is
// value, index, array; writes array[index] = value.
func (v *VM) execStoreArray() *errors.LangError {
	val, err := v.pop()
	if err != nil {
		return err
	}
	idx, err := v.popInt()
	if err != nil {
		return err
	}
	arr, err := v.popArray()
	if err != nil {
		return err
	}
	if idx < 1 || int(idx) > len(arr.Data) {
		return errors.NewRuntimeError("array index %d out of bounds [1,%d]", idx, len(arr.Data))
	}
	arr.Data[idx-1] = val
	return nil
}
