package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders p as a human-readable listing, one instruction per
// line prefixed with its address — a supplemented feature (original_source
// has no such tool; the `-S` compile flag exposes it) useful for the same
// reason the teacher's own debugger prints frames: visibility into what
// codegen produced.
func Disassemble(p *Program) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; constants: %d, globals: %d\n", len(p.Constants), p.GlobalsCount)
	for i, c := range p.Constants {
		fmt.Fprintf(&sb, "; k%d = %v\n", i, c)
	}
	for addr, ins := range p.Code {
		fmt.Fprintf(&sb, "%4d  %-12s", addr, ins.Op.String())
		if ins.Arg != nil {
			if c, ok := ins.Arg.(CallArg); ok {
				fmt.Fprintf(&sb, " addr=%d nparams=%d nlocals=%d", c.Addr, c.NParams, c.NLocals)
			} else {
				fmt.Fprintf(&sb, " %v", ins.Arg)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
