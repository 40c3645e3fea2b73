package codegen

import (
	"shkola/internal/bytecode"
	"shkola/internal/types"
)

// pushDefault emits the default value for t (spec.md §4.4: "VarDecl: push
// the default for the declared type"). Scalars use the dedicated Push*
// opcodes directly; arrays add one constant template per declaration and
// pushed with PushConst, which the VM clones on every execution so each
// scope activation gets independent storage.
func (g *Generator) pushDefault(t types.Type) {
	switch t.Kind {
	case types.KindInteger:
		g.prog.Emit(bytecode.PushInt, int64(0))
	case types.KindBoolean:
		g.prog.Emit(bytecode.PushBool, false)
	case types.KindChar:
		g.prog.Emit(bytecode.PushChar, rune(0))
	case types.KindString:
		g.prog.Emit(bytecode.PushString, "")
	case types.KindArray:
		k := g.prog.AddConstant(bytecode.DefaultForType(t))
		g.prog.Emit(bytecode.PushConst, k)
	}
}
