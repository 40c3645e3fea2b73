package debugger

import (
	"fmt"

	"shkola/internal/vm"
)

// VMDebugHook adapts a Debugger to vm.DebugHook — the VM-facing surface
// (BeforeStep) kept separate from the CLI-facing one (Break, StepMode),
// the way the teacher splits its own debugger from its VM hook
// (internal/debugger/vm_hook.go).
type VMDebugHook struct {
	d *Debugger
}

// BeforeStep pauses into the debugger's command loop when stepping or at
// a registered line breakpoint.
func (h *VMDebugHook) BeforeStep(v *vm.VM, ip int, line int) {
	d := h.d
	if d.quit {
		return
	}
	shouldPause := d.st == stepping || d.breakLines[line]
	if !shouldPause {
		return
	}
	fmt.Fprintf(d.out, "-> line %d (ip=%d)\n", line, ip)
	d.repl(v, line)
}
