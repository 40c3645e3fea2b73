// Package peephole implements the bytecode peephole optimizer of spec.md
// §4.7: a linear, single-pass scan over a fixed 2-3 instruction window
// that rewrites a handful of wasteful patterns (push-then-pop, add/mul
// identities, constant-folds two adjacent pushes, drops Nop, and turns a
// JmpIfFalse-then-Jmp pair into a single JmpIfTrue).
//
// spec.md §9's open question 3 is resolved here as a single pass (matching
// "the source is single-pass") that records, for every original
// instruction index consumed by a rewrite, the new address its control
// flow now lands on, then rewrites every jump argument through that table
// once the whole pass is complete — so no jump target is ever left
// pointing at a stale address.
package peephole

import "shkola/internal/bytecode"

// Result reports how many rewrites were applied.
type Result struct {
	Applied int
}

// Optimize applies the peephole rewrites of spec.md §4.7 once, replaces
// p.Code with the rewritten sequence, remaps every jump argument that
// pointed into the original sequence (or exactly at its end) to the
// matching address in the new one, and returns the number of rewrites
// applied.
func Optimize(p *bytecode.Program) Result {
	in := p.Code
	out := make([]bytecode.Instruction, 0, len(in))
	// origToNew[i] is the address, in out, that control reaching original
	// instruction i now resumes at (whether or not i itself survived).
	origToNew := make([]int, len(in))
	applied := 0

	land := func(from, to int) {
		for i := from; i < to; i++ {
			origToNew[i] = len(out)
		}
	}

	i := 0
	for i < len(in) {
		// Push* ... Pop
		if isPush(in[i].Op) && i+1 < len(in) && in[i+1].Op == bytecode.Pop {
			land(i, i+2)
			applied++
			i += 2
			continue
		}
		// PushInt 0 ; Add
		if in[i].Op == bytecode.PushInt && asInt(in[i].Arg) == 0 && i+1 < len(in) && in[i+1].Op == bytecode.Add {
			land(i, i+2)
			applied++
			i += 2
			continue
		}
		// PushInt 1 ; Mul
		if in[i].Op == bytecode.PushInt && asInt(in[i].Arg) == 1 && i+1 < len(in) && in[i+1].Op == bytecode.Mul {
			land(i, i+2)
			applied++
			i += 2
			continue
		}
		// PushInt 1 ; Div
		if in[i].Op == bytecode.PushInt && asInt(in[i].Arg) == 1 && i+1 < len(in) && in[i+1].Op == bytecode.Div {
			land(i, i+2)
			applied++
			i += 2
			continue
		}
		// PushInt 0 ; Mul -> PushInt 0
		if in[i].Op == bytecode.PushInt && asInt(in[i].Arg) == 0 && i+1 < len(in) && in[i+1].Op == bytecode.Mul {
			out = append(out, bytecode.Instruction{Op: bytecode.PushInt, Arg: int64(0)})
			land(i, i+2)
			applied++
			i += 2
			continue
		}
		// PushInt a ; PushInt b ; Add/Sub/Mul -> PushInt (a op b)
		if in[i].Op == bytecode.PushInt && i+2 < len(in) && in[i+1].Op == bytecode.PushInt {
			if folded, ok := foldArith(asInt(in[i].Arg), asInt(in[i+1].Arg), in[i+2].Op); ok {
				out = append(out, bytecode.Instruction{Op: bytecode.PushInt, Arg: folded})
				land(i, i+3)
				applied++
				i += 3
				continue
			}
		}
		// Nop
		if in[i].Op == bytecode.Nop {
			land(i, i+1)
			applied++
			i++
			continue
		}
		// JmpIfFalse t1 ; Jmp t2 where t1 == i+2 (the instruction right
		// after the Jmp) -> JmpIfTrue t2
		if in[i].Op == bytecode.JmpIfFalse && i+1 < len(in) && in[i+1].Op == bytecode.Jmp && in[i].Arg == i+2 {
			out = append(out, bytecode.Instruction{Op: bytecode.JmpIfTrue, Arg: in[i+1].Arg})
			land(i, i+2)
			applied++
			i += 2
			continue
		}

		out = append(out, in[i])
		origToNew[i] = len(out) - 1
		i++
	}

	for idx := range out {
		if isJump(out[idx].Op) {
			oldTarget := out[idx].Arg.(int)
			if oldTarget >= 0 && oldTarget < len(origToNew) {
				out[idx].Arg = origToNew[oldTarget]
			} else if oldTarget == len(in) {
				out[idx].Arg = len(out)
			}
		}
	}

	p.Code = out
	return Result{Applied: applied}
}

func isPush(op bytecode.OpCode) bool {
	switch op {
	case bytecode.PushInt, bytecode.PushBool, bytecode.PushChar, bytecode.PushString, bytecode.PushConst:
		return true
	default:
		return false
	}
}

func isJump(op bytecode.OpCode) bool {
	return op == bytecode.Jmp || op == bytecode.JmpIfFalse || op == bytecode.JmpIfTrue
}

func asInt(v any) int64 {
	i, _ := v.(int64)
	return i
}

func foldArith(a, b int64, op bytecode.OpCode) (int64, bool) {
	switch op {
	case bytecode.Add:
		return a + b, true
	case bytecode.Sub:
		return a - b, true
	case bytecode.Mul:
		return a * b, true
	default:
		return 0, false
	}
}
