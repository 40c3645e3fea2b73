package codegen

import (
	"shkola/internal/ast"
	"shkola/internal/bytecode"
	"shkola/internal/errors"
)

func (g *Generator) genStmt(stmt ast.Stmt) {
	if g.err != nil {
		return
	}
	g.lineMarks = append(g.lineMarks, lineMark{Addr: len(g.prog.Code), Line: stmt.Position().Line})
	switch s := stmt.(type) {
	case *ast.Assign:
		g.genAssign(s)
	case *ast.If:
		g.genIf(s)
	case *ast.While:
		g.genWhile(s)
	case *ast.DoUntil:
		g.genDoUntil(s)
	case *ast.For:
		g.genFor(s)
	case *ast.Break:
		if len(g.breakLabels) == 0 {
			g.fail(errors.NewCodegenError("'стоп' outside a loop", s.Position().Line, s.Position().Column))
			return
		}
		g.emitJump(bytecode.Jmp, g.breakLabels[len(g.breakLabels)-1])
	case *ast.Continue:
		if len(g.continueLabels) == 0 {
			g.fail(errors.NewCodegenError("'далее' outside a loop", s.Position().Line, s.Position().Column))
			return
		}
		g.emitJump(bytecode.Jmp, g.continueLabels[len(g.continueLabels)-1])
	case *ast.Return:
		if s.Value != nil {
			g.genExpr(s.Value)
		}
		g.prog.Emit(bytecode.Return, nil)
	case *ast.CallStmt:
		g.genExpr(s.Call)
		g.prog.Emit(bytecode.Pop, nil)
	default:
		g.fail(errors.NewCodegenError("unsupported statement", stmt.Position().Line, stmt.Position().Column))
	}
}

func (g *Generator) genStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		if g.err != nil {
			return
		}
		g.genStmt(s)
	}
}

func (g *Generator) genAssign(s *ast.Assign) {
	switch t := s.Target.(type) {
	case *ast.Identifier:
		g.genExpr(s.Value)
		g.storeIdentifier(t.Name)
	case *ast.ArrayAccess:
		// Chosen emission order: array, index, value (push order), so the
		// VM's StoreArray can pop in the natural top-down order value,
		// index, array that spec.md §4.5 fixes as the opcode's contract.
		// See DESIGN.md for why this departs from the spec's suggested
		// "evaluate RHS first" emission order.
		g.genExpr(t.Array)
		g.genExpr(t.Index)
		g.genExpr(s.Value)
		g.prog.Emit(bytecode.StoreArray, nil)
	default:
		g.fail(errors.NewCodegenError("unsupported assignment target", s.Position().Line, s.Position().Column))
	}
}

func (g *Generator) storeIdentifier(name string) {
	if idx, ok := g.localIndex[name]; ok {
		g.prog.Emit(bytecode.StoreLocal, idx)
		return
	}
	if idx, ok := g.globalIndex[name]; ok {
		g.prog.Emit(bytecode.StoreGlobal, idx)
		return
	}
	g.fail(errors.NewCodegenError("unresolved identifier '"+name+"'", 0, 0))
}

// genIf implements spec.md §4.4: cond; JmpIfFalse else; then; Jmp end;
// mark else; else-block; mark end.
func (g *Generator) genIf(s *ast.If) {
	elseLabel := g.newLabel()
	endLabel := g.newLabel()

	g.genExpr(s.Cond)
	g.emitJump(bytecode.JmpIfFalse, elseLabel)
	g.genStmts(s.ThenStmts)
	g.emitJump(bytecode.Jmp, endLabel)
	g.markLabel(elseLabel)
	g.genStmts(s.ElseStmts)
	g.markLabel(endLabel)
}

// genWhile implements `пока cond … кц`: mark start; cond; JmpIfFalse end;
// body; Jmp start; mark end.
func (g *Generator) genWhile(s *ast.While) {
	startLabel := g.newLabel()
	endLabel := g.newLabel()

	g.markLabel(startLabel)
	g.genExpr(s.Cond)
	g.emitJump(bytecode.JmpIfFalse, endLabel)

	g.breakLabels = append(g.breakLabels, endLabel)
	g.continueLabels = append(g.continueLabels, startLabel)
	g.genStmts(s.Body)
	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
	g.continueLabels = g.continueLabels[:len(g.continueLabels)-1]

	g.emitJump(bytecode.Jmp, startLabel)
	g.markLabel(endLabel)
}

// genDoUntil implements `цикл … до cond` (spec.md §4.4): mark start; body;
// mark continue; cond; JmpIfFalse start; mark end — runs body until cond
// becomes true.
func (g *Generator) genDoUntil(s *ast.DoUntil) {
	startLabel := g.newLabel()
	continueLabel := g.newLabel()
	endLabel := g.newLabel()

	g.markLabel(startLabel)
	g.breakLabels = append(g.breakLabels, endLabel)
	g.continueLabels = append(g.continueLabels, continueLabel)
	g.genStmts(s.Body)
	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
	g.continueLabels = g.continueLabels[:len(g.continueLabels)-1]

	g.markLabel(continueLabel)
	g.genExpr(s.Cond)
	g.emitJump(bytecode.JmpIfFalse, startLabel)
	g.markLabel(endLabel)
}

// genFor implements spec.md §4.4's For lowering. `end` and `step` are each
// evaluated exactly once (per spec.md §4.2) into hidden temporary slots,
// not re-evaluated every iteration. Open Question #1 is resolved by
// choosing the comparison direction at runtime from the evaluated step's
// sign — `Le` when the step is non-negative, `Ge` when negative — mirroring
// the reference interpreter's `if step_value > 0: ... else: ...` rather
// than the reference codegen, which always emits `Le` even for a negative
// step (a confirmed bug; see DESIGN.md).
func (g *Generator) genFor(s *ast.For) {
	startLabel := g.newLabel()
	continueLabel := g.newLabel()
	endLabel := g.newLabel()
	useGeLabel := g.newLabel()
	testDoneLabel := g.newLabel()

	g.genExpr(s.Start)
	g.storeIdentifier(s.VarName)

	endTemp := g.allocTemp()
	g.genExpr(s.End)
	g.storeTemp(endTemp)

	stepTemp := g.allocTemp()
	if s.Step != nil {
		g.genExpr(s.Step)
	} else {
		g.prog.Emit(bytecode.PushInt, int64(1))
	}
	g.storeTemp(stepTemp)

	g.markLabel(startLabel)
	// ascending = step >= 0
	g.loadTemp(stepTemp)
	g.prog.Emit(bytecode.PushInt, int64(0))
	g.prog.Emit(bytecode.Ge, nil)
	g.emitJump(bytecode.JmpIfFalse, useGeLabel)
	g.loadIdentifier(s.VarName)
	g.loadTemp(endTemp)
	g.prog.Emit(bytecode.Le, nil)
	g.emitJump(bytecode.Jmp, testDoneLabel)
	g.markLabel(useGeLabel)
	g.loadIdentifier(s.VarName)
	g.loadTemp(endTemp)
	g.prog.Emit(bytecode.Ge, nil)
	g.markLabel(testDoneLabel)
	g.emitJump(bytecode.JmpIfFalse, endLabel)

	g.breakLabels = append(g.breakLabels, endLabel)
	g.continueLabels = append(g.continueLabels, continueLabel)
	g.genStmts(s.Body)
	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
	g.continueLabels = g.continueLabels[:len(g.continueLabels)-1]

	g.markLabel(continueLabel)
	g.loadIdentifier(s.VarName)
	g.loadTemp(stepTemp)
	g.prog.Emit(bytecode.Add, nil)
	g.storeIdentifier(s.VarName)
	g.emitJump(bytecode.Jmp, startLabel)
	g.markLabel(endLabel)
}

func (g *Generator) loadIdentifier(name string) {
	if idx, ok := g.localIndex[name]; ok {
		g.prog.Emit(bytecode.LoadLocal, idx)
		return
	}
	if idx, ok := g.globalIndex[name]; ok {
		g.prog.Emit(bytecode.LoadGlobal, idx)
		return
	}
	g.fail(errors.NewCodegenError("unresolved identifier '"+name+"'", 0, 0))
}

// allocTemp reserves a fresh hidden slot for a For loop's cached end/step
// value: a local slot inside a function body, a global slot at top level.
func (g *Generator) allocTemp() int {
	if g.inFunction {
		idx := g.nextLocal
		g.nextLocal++
		return idx
	}
	idx := g.nextGlobalTemp
	g.nextGlobalTemp++
	return idx
}

func (g *Generator) storeTemp(idx int) {
	if g.inFunction {
		g.prog.Emit(bytecode.StoreLocal, idx)
		return
	}
	g.prog.Emit(bytecode.StoreGlobal, idx)
}

func (g *Generator) loadTemp(idx int) {
	if g.inFunction {
		g.prog.Emit(bytecode.LoadLocal, idx)
		return
	}
	g.prog.Emit(bytecode.LoadGlobal, idx)
}
