package peephole

import (
	"testing"

	"shkola/internal/bytecode"
)

func prog(code ...bytecode.Instruction) *bytecode.Program {
	p := bytecode.New()
	p.Code = code
	return p
}

func ins(op bytecode.OpCode, arg any) bytecode.Instruction {
	return bytecode.Instruction{Op: op, Arg: arg}
}

func TestPushPopRemoved(t *testing.T) {
	p := prog(
		ins(bytecode.PushInt, int64(5)),
		ins(bytecode.Pop, nil),
		ins(bytecode.Halt, nil),
	)
	r := Optimize(p)
	if r.Applied != 1 {
		t.Errorf("Applied = %d, want 1", r.Applied)
	}
	if len(p.Code) != 1 || p.Code[0].Op != bytecode.Halt {
		t.Errorf("code = %#v, want just Halt", p.Code)
	}
}

func TestAddZeroIdentity(t *testing.T) {
	p := prog(
		ins(bytecode.PushInt, int64(0)),
		ins(bytecode.Add, nil),
		ins(bytecode.Halt, nil),
	)
	Optimize(p)
	if len(p.Code) != 1 || p.Code[0].Op != bytecode.Halt {
		t.Errorf("code = %#v, want just Halt", p.Code)
	}
}

func TestMulZeroCollapsesToPushZero(t *testing.T) {
	p := prog(
		ins(bytecode.PushInt, int64(0)),
		ins(bytecode.Mul, nil),
		ins(bytecode.Halt, nil),
	)
	Optimize(p)
	if len(p.Code) != 2 || p.Code[0].Op != bytecode.PushInt || p.Code[0].Arg.(int64) != 0 {
		t.Errorf("code = %#v, want [PushInt 0, Halt]", p.Code)
	}
}

func TestConstantFold(t *testing.T) {
	p := prog(
		ins(bytecode.PushInt, int64(2)),
		ins(bytecode.PushInt, int64(3)),
		ins(bytecode.Add, nil),
		ins(bytecode.Halt, nil),
	)
	Optimize(p)
	if len(p.Code) != 2 {
		t.Fatalf("len(code) = %d, want 2", len(p.Code))
	}
	if p.Code[0].Op != bytecode.PushInt || p.Code[0].Arg.(int64) != 5 {
		t.Errorf("folded instruction = %#v, want PushInt 5", p.Code[0])
	}
}

func TestNopRemoved(t *testing.T) {
	p := prog(
		ins(bytecode.Nop, nil),
		ins(bytecode.Halt, nil),
	)
	Optimize(p)
	if len(p.Code) != 1 || p.Code[0].Op != bytecode.Halt {
		t.Errorf("code = %#v, want just Halt", p.Code)
	}
}

func TestJmpIfFalseThenJmpBecomesJmpIfTrue(t *testing.T) {
	// if !cond goto 2; goto 5   =>   if cond goto 5
	p := prog(
		ins(bytecode.JmpIfFalse, 2),
		ins(bytecode.Jmp, 5),
		ins(bytecode.Halt, nil),
	)
	Optimize(p)
	if len(p.Code) != 2 {
		t.Fatalf("len(code) = %d, want 2", len(p.Code))
	}
	if p.Code[0].Op != bytecode.JmpIfTrue {
		t.Errorf("code[0].Op = %v, want JmpIfTrue", p.Code[0].Op)
	}
}

// TestJumpTargetsRemapAcrossDeletion exercises the §9 open-question-3
// resolution: a jump landing past a deleted instruction must be rewritten
// to point at that instruction's replacement address, not its stale index.
func TestJumpTargetsRemapAcrossDeletion(t *testing.T) {
	// 0: PushInt 1
	// 1: Pop          <- instructions 0,1 are deleted by the push/pop rule
	// 2: PushInt 9     <- jump target, must resolve to new address 0
	// 3: Jmp 2
	// 4: Halt
	p := prog(
		ins(bytecode.PushInt, int64(1)),
		ins(bytecode.Pop, nil),
		ins(bytecode.PushInt, int64(9)),
		ins(bytecode.Jmp, 2),
		ins(bytecode.Halt, nil),
	)
	Optimize(p)

	// After push/pop removal: [PushInt 9, Jmp ?, Halt]
	if len(p.Code) != 3 {
		t.Fatalf("len(code) = %d: %#v", len(p.Code), p.Code)
	}
	if p.Code[0].Op != bytecode.PushInt || p.Code[0].Arg.(int64) != 9 {
		t.Fatalf("code[0] = %#v, want PushInt 9", p.Code[0])
	}
	jmp := p.Code[1]
	if jmp.Op != bytecode.Jmp || jmp.Arg.(int) != 0 {
		t.Errorf("Jmp target = %#v, want 0 (the new address of PushInt 9)", jmp.Arg)
	}
}

func TestJumpPastEndOfProgram(t *testing.T) {
	p := prog(
		ins(bytecode.PushInt, int64(0)),
		ins(bytecode.Pop, nil),
		ins(bytecode.Jmp, 3), // jumps one past the end of the original program
	)
	Optimize(p)
	if len(p.Code) != 1 {
		t.Fatalf("len(code) = %d, want 1", len(p.Code))
	}
	if p.Code[0].Arg.(int) != 1 {
		t.Errorf("Jmp target = %v, want 1 (new end of program)", p.Code[0].Arg)
	}
}
