package bytecode

import "testing"

func buildSample() *Program {
	p := New()
	p.GlobalsCount = 2
	ci := p.AddConstant(int64(7))
	ca := p.AddConstant(&ArrayValue{Data: []any{int64(1), int64(2), int64(3)}})
	p.Emit(PushInt, int64(42))
	p.Emit(PushBool, true)
	p.Emit(PushChar, 'x')
	p.Emit(PushString, "hi")
	p.Emit(PushConst, ci)
	p.Emit(PushConst, ca)
	p.Emit(StoreGlobal, 0)
	p.Emit(LoadGlobal, 0)
	p.Emit(Call, CallArg{Addr: 3, NParams: 1, NLocals: 2})
	p.Emit(Jmp, 0)
	p.Emit(Halt, nil)
	return p
}

func TestProgramJSONRoundTrip(t *testing.T) {
	orig := buildSample()
	data, err := orig.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	got := New()
	if err := got.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}

	if got.GlobalsCount != orig.GlobalsCount {
		t.Errorf("GlobalsCount = %d, want %d", got.GlobalsCount, orig.GlobalsCount)
	}
	if len(got.Code) != len(orig.Code) {
		t.Fatalf("len(Code) = %d, want %d", len(got.Code), len(orig.Code))
	}
	for i, ins := range orig.Code {
		if got.Code[i].Op != ins.Op {
			t.Errorf("instruction %d: op = %v, want %v", i, got.Code[i].Op, ins.Op)
		}
	}

	if len(got.Constants) != 2 {
		t.Fatalf("len(Constants) = %d, want 2", len(got.Constants))
	}
	if got.Constants[0].(int64) != 7 {
		t.Errorf("constant 0 = %v, want 7", got.Constants[0])
	}
	arr, ok := got.Constants[1].(*ArrayValue)
	if !ok || len(arr.Data) != 3 {
		t.Fatalf("constant 1 did not round-trip as a 3-element array: %#v", got.Constants[1])
	}

	call, ok := got.Code[8].Arg.(CallArg)
	if !ok || call.Addr != 3 || call.NParams != 1 || call.NLocals != 2 {
		t.Errorf("Call arg round-tripped as %#v", got.Code[8].Arg)
	}

	b, ok := got.Code[1].Arg.(bool)
	if !ok || b != true {
		t.Errorf("PushBool arg round-tripped as %#v, want true", got.Code[1].Arg)
	}
	ch, ok := got.Code[2].Arg.(rune)
	if !ok || ch != 'x' {
		t.Errorf("PushChar arg round-tripped as %#v, want 'x'", got.Code[2].Arg)
	}
	s, ok := got.Code[3].Arg.(string)
	if !ok || s != "hi" {
		t.Errorf("PushString arg round-tripped as %#v, want \"hi\"", got.Code[3].Arg)
	}
}

func TestParseOpCode(t *testing.T) {
	op, ok := ParseOpCode("PushInt")
	if !ok || op != PushInt {
		t.Errorf("ParseOpCode(PushInt) = %v, %v", op, ok)
	}
	if _, ok := ParseOpCode("NotAnOpcode"); ok {
		t.Error("ParseOpCode should reject an unknown name")
	}
}

func TestUnmarshalRejectsUnknownOpcode(t *testing.T) {
	p := New()
	err := p.UnmarshalJSON([]byte(`{"constants":[],"code":[{"op":"Bogus"}],"globals_count":0}`))
	if err == nil {
		t.Error("expected an error for an unknown opcode name")
	}
}
