package bytecode

import (
	"encoding/json"
	"fmt"
)

// Program is the serializable container of spec.md §4.3/§6:
// {constants, code, globals_count}.
type Program struct {
	Constants    []any
	Code         []Instruction
	GlobalsCount int

	// Lines maps each instruction's index to the source line that emitted
	// it, at statement granularity (spec.md's debugging Non-goal stops at
	// line/column, not sub-expression resolution). Debug metadata only —
	// not part of the persisted record in spec.md §6.
	Lines []int
}

// New returns an empty program with no globals.
func New() *Program {
	return &Program{}
}

// AddConstant appends v to the constant table and returns its new index.
// No deduplication is done, here or in the code generator: adding an
// equal value twice yields two entries.
func (p *Program) AddConstant(v any) int {
	p.Constants = append(p.Constants, v)
	return len(p.Constants) - 1
}

// Emit appends an instruction and returns its index, used by the code
// generator's label-patching protocol to record jump-reference sites.
func (p *Program) Emit(op OpCode, arg any) int {
	p.Code = append(p.Code, Instruction{Op: op, Arg: arg})
	return len(p.Code) - 1
}

// --- JSON persistence (spec.md §6) ---
//
// The record is self-describing: constants carry an explicit type tag
// (JSON numbers alone can't distinguish int from bool from a single
// character), and each instruction is a (name, argument) pair using the
// opcode's exact enumerator name.

type taggedConst struct {
	Type   string        `json:"type"`
	Int    int64         `json:"int,omitempty"`
	Bool   bool          `json:"bool,omitempty"`
	Char   string        `json:"char,omitempty"`
	Str    string        `json:"str,omitempty"`
	Values []taggedConst `json:"values,omitempty"`
}

func marshalConst(v any) (taggedConst, error) {
	switch x := v.(type) {
	case int64:
		return taggedConst{Type: "int", Int: x}, nil
	case bool:
		return taggedConst{Type: "bool", Bool: x}, nil
	case rune:
		return taggedConst{Type: "char", Char: string(x)}, nil
	case string:
		return taggedConst{Type: "str", Str: x}, nil
	case *ArrayValue:
		vals := make([]taggedConst, len(x.Data))
		for i, e := range x.Data {
			tc, err := marshalConst(e)
			if err != nil {
				return taggedConst{}, err
			}
			vals[i] = tc
		}
		return taggedConst{Type: "array", Values: vals}, nil
	default:
		return taggedConst{}, fmt.Errorf("bytecode: unrepresentable constant of type %T", v)
	}
}

func (c taggedConst) value() (any, error) {
	switch c.Type {
	case "int":
		return c.Int, nil
	case "bool":
		return c.Bool, nil
	case "char":
		r := []rune(c.Char)
		if len(r) != 1 {
			return nil, fmt.Errorf("bytecode: malformed char constant %q", c.Char)
		}
		return r[0], nil
	case "array":
		data := make([]any, len(c.Values))
		for i, tc := range c.Values {
			v, err := tc.value()
			if err != nil {
				return nil, err
			}
			data[i] = v
		}
		return &ArrayValue{Data: data}, nil
	case "str":
		return c.Str, nil
	default:
		return nil, fmt.Errorf("bytecode: unknown constant tag %q", c.Type)
	}
}

type jsonInstruction struct {
	Op  string          `json:"op"`
	Arg json.RawMessage `json:"arg,omitempty"`
}

type jsonProgram struct {
	Constants    []taggedConst     `json:"constants"`
	Code         []jsonInstruction `json:"code"`
	GlobalsCount int               `json:"globals_count"`
}

// argHasCallShape reports whether op's argument is a call descriptor,
// which needs its own struct shape rather than a bare number.
func argHasCallShape(op OpCode) bool { return op == Call }

// argIsBool reports whether op's literal argument is a boolean (PushBool),
// which must round-trip as JSON `true`/`false`, not 0/1.
func argIsBool(op OpCode) bool { return op == PushBool }

// argIsChar reports whether op's literal argument is a single rune
// (PushChar).
func argIsChar(op OpCode) bool { return op == PushChar }

// argIsString reports whether op's literal argument is a string
// (PushString).
func argIsString(op OpCode) bool { return op == PushString }

// MarshalJSON implements the textual record of spec.md §6.
func (p *Program) MarshalJSON() ([]byte, error) {
	jp := jsonProgram{GlobalsCount: p.GlobalsCount}
	for _, c := range p.Constants {
		tc, err := marshalConst(c)
		if err != nil {
			return nil, err
		}
		jp.Constants = append(jp.Constants, tc)
	}
	for _, ins := range p.Code {
		ji := jsonInstruction{Op: ins.Op.String()}
		var raw []byte
		var err error
		switch {
		case ins.Arg == nil:
			raw = nil
		case argHasCallShape(ins.Op):
			raw, err = json.Marshal(ins.Arg)
		case argIsBool(ins.Op):
			b, _ := ins.Arg.(bool)
			raw, err = json.Marshal(b)
		case argIsChar(ins.Op):
			r, _ := ins.Arg.(rune)
			raw, err = json.Marshal(string(r))
		case argIsString(ins.Op):
			s, _ := ins.Arg.(string)
			raw, err = json.Marshal(s)
		default:
			raw, err = json.Marshal(ins.Arg)
		}
		if err != nil {
			return nil, err
		}
		ji.Arg = raw
		jp.Code = append(jp.Code, ji)
	}
	return json.Marshal(jp)
}

// UnmarshalJSON is the inverse of MarshalJSON; the pair round-trips to an
// equivalent program (spec.md §6).
func (p *Program) UnmarshalJSON(data []byte) error {
	var jp jsonProgram
	if err := json.Unmarshal(data, &jp); err != nil {
		return err
	}
	p.GlobalsCount = jp.GlobalsCount
	p.Constants = nil
	for _, tc := range jp.Constants {
		v, err := tc.value()
		if err != nil {
			return err
		}
		p.Constants = append(p.Constants, v)
	}
	p.Code = nil
	for _, ji := range jp.Code {
		op, ok := ParseOpCode(ji.Op)
		if !ok {
			return fmt.Errorf("bytecode: unknown opcode %q", ji.Op)
		}
		var arg any
		if len(ji.Arg) > 0 {
			switch {
			case argHasCallShape(op):
				var c CallArg
				if err := json.Unmarshal(ji.Arg, &c); err != nil {
					return err
				}
				arg = c
			case argIsBool(op):
				var b bool
				if err := json.Unmarshal(ji.Arg, &b); err != nil {
					return err
				}
				arg = b
			case argIsChar(op):
				var s string
				if err := json.Unmarshal(ji.Arg, &s); err != nil {
					return err
				}
				r := []rune(s)
				if len(r) != 1 {
					return fmt.Errorf("bytecode: malformed PushChar argument %q", s)
				}
				arg = r[0]
			case argIsString(op):
				var s string
				if err := json.Unmarshal(ji.Arg, &s); err != nil {
					return err
				}
				arg = s
			default:
				var n int
				if err := json.Unmarshal(ji.Arg, &n); err != nil {
					return err
				}
				arg = n
			}
		}
		p.Code = append(p.Code, Instruction{Op: op, Arg: arg})
	}
	return nil
}
