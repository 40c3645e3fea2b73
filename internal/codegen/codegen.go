package codegen

import (
	"shkola/internal/ast"
	"shkola/internal/bytecode"
	"shkola/internal/errors"
)

type pendingCall struct {
	index int
	name  string
}

// Generator lowers an analyzed *ast.Program to a *bytecode.Program in a
// single pass (spec.md §4.4). It aborts on the first error, matching
// spec.md §7's propagation policy for the code generator.
type Generator struct {
	prog *bytecode.Program

	globalIndex    map[string]int
	nextGlobalTemp int // first unused global slot, for top-level For-loop temporaries
	localIndex     map[string]int
	nextLocal      int
	inFunction     bool

	funcAddr    map[string]int
	funcNLocals map[string]int
	pending     []pendingCall

	breakLabels    []*label
	continueLabels []*label
	labels         []*label

	lineMarks []lineMark

	err *errors.LangError
}

// lineMark records that instruction index Addr begins source line Line,
// letting the debugger map an instruction pointer back to a line without
// threading a line argument through every Emit call site.
type lineMark struct {
	Addr int
	Line int
}

// Generate runs the generator over program and returns the resulting
// bytecode program, or the first CodegenError encountered.
func Generate(program *ast.Program) (*bytecode.Program, *errors.LangError) {
	g := &Generator{
		prog:        bytecode.New(),
		globalIndex: map[string]int{},
		funcAddr:    map[string]int{},
		funcNLocals: map[string]int{},
	}

	for _, vd := range program.Block.VarDecls {
		g.globalIndex[vd.Name] = len(g.globalIndex)
	}
	g.nextGlobalTemp = len(g.globalIndex)

	mainLabel := g.newLabel()
	g.emitJump(bytecode.Jmp, mainLabel)

	for _, fd := range program.Block.FuncDecls {
		if g.err != nil {
			break
		}
		g.genFunction(fd)
	}

	if g.err == nil {
		g.markLabel(mainLabel)
		g.inFunction = false
		for _, vd := range program.Block.VarDecls {
			g.genGlobalVarDeclInit(vd)
		}
		for _, stmt := range program.Block.Stmts {
			g.genStmt(stmt)
		}
		g.prog.Emit(bytecode.Halt, nil)
	}

	if g.err == nil {
		g.patchCalls()
	}
	if g.err == nil {
		if lerr := g.resolveLabels(); lerr != nil {
			g.err = lerr
		}
	}

	if g.err != nil {
		return nil, g.err
	}
	g.prog.GlobalsCount = g.nextGlobalTemp
	g.prog.Lines = g.buildLineTable()
	return g.prog, nil
}

// buildLineTable expands the sparse lineMarks recorded during genStmt
// into one entry per instruction, forward-filling each mark's line until
// the next one.
func (g *Generator) buildLineTable() []int {
	lines := make([]int, len(g.prog.Code))
	mi := 0
	cur := 0
	for addr := range lines {
		for mi < len(g.lineMarks) && g.lineMarks[mi].Addr == addr {
			cur = g.lineMarks[mi].Line
			mi++
		}
		lines[addr] = cur
	}
	return lines
}

func (g *Generator) fail(err *errors.LangError) {
	if g.err == nil {
		g.err = err
	}
}

func (g *Generator) newLabel() *label {
	l := newLabel()
	g.labels = append(g.labels, l)
	return l
}

func (g *Generator) emitJump(op bytecode.OpCode, lbl *label) {
	if g.err != nil {
		return
	}
	idx := g.prog.Emit(op, 0)
	lbl.references = append(lbl.references, idx)
}

func (g *Generator) markLabel(lbl *label) {
	if g.err != nil {
		return
	}
	lbl.address = len(g.prog.Code)
	lbl.resolved = true
}

// resolveLabels is the final fix-up pass of spec.md §4.4: it writes every
// label's resolved address into every instruction that referenced it.
// Because each label is its own heap object rather than an index into a
// reused counter, there is no possibility of two sibling loops colliding
// on the same id (see the design note on loop-label identity).
func (g *Generator) resolveLabels() *errors.LangError {
	for _, lbl := range g.labels {
		if !lbl.resolved {
			return errors.NewCodegenError("unresolved label at fix-up", 0, 0)
		}
		for _, idx := range lbl.references {
			ins := g.prog.Code[idx]
			ins.Arg = lbl.address
			g.prog.Code[idx] = ins
		}
	}
	return nil
}

// patchCalls fills in every Call instruction's address and locals count
// once all functions have finished generating — both are deferred the same
// way (self-recursive and mutually forward-referencing calls resolve
// identically, see §4.1's "forward references permitted").
func (g *Generator) patchCalls() {
	for _, pc := range g.pending {
		addr, ok := g.funcAddr[pc.name]
		if !ok {
			g.fail(errors.NewCodegenError("call to undefined function '"+pc.name+"'", 0, 0))
			return
		}
		ins := g.prog.Code[pc.index]
		c := ins.Arg.(bytecode.CallArg)
		c.Addr = addr
		c.NLocals = g.funcNLocals[pc.name]
		ins.Arg = c
		g.prog.Code[pc.index] = ins
	}
}

func (g *Generator) genGlobalVarDeclInit(vd *ast.VarDecl) {
	g.pushDefault(vd.Type)
	g.prog.Emit(bytecode.StoreGlobal, g.globalIndex[vd.Name])
}

func (g *Generator) genFunction(fd *ast.FuncDecl) {
	if g.err != nil {
		return
	}
	g.funcAddr[fd.Name] = len(g.prog.Code)

	g.inFunction = true
	g.localIndex = map[string]int{}
	g.nextLocal = 0
	for _, p := range fd.Params {
		g.localIndex[p.Name] = g.nextLocal
		g.nextLocal++
	}
	for _, vd := range fd.Block.VarDecls {
		idx := g.nextLocal
		g.localIndex[vd.Name] = idx
		g.nextLocal++
		g.pushDefault(vd.Type)
		g.prog.Emit(bytecode.StoreLocal, idx)
	}
	for _, stmt := range fd.Block.Stmts {
		g.genStmt(stmt)
	}
	// A procedure's block is followed by an implicit Return (spec.md
	// §4.4); emitting one unconditionally after a function's body is
	// harmless dead code when every path already returned explicitly.
	g.prog.Emit(bytecode.Return, nil)
	g.funcNLocals[fd.Name] = g.nextLocal
}
