// Package interp implements the tree-walking interpreter of spec.md §4.2:
// it evaluates an analyzed AST directly against a lexical environment
// chain, using typed control-flow signals instead of panics for
// break/continue/return (§1's systems-language mapping guidance).
package interp

import (
	"strings"

	"shkola/internal/ast"
	"shkola/internal/errors"
)

// signal classifies how a statement's execution completed.
type signal int

const (
	sigNormal signal = iota
	sigBreak
	sigContinue
	sigReturn
)

// outcome is the result-shaped substitute for exceptions described in
// spec.md §4.2.
type outcome struct {
	sig   signal
	value Value
}

var normalOutcome = outcome{sig: sigNormal}

// Interpreter owns the global environment, the function table, and the
// captured output buffer.
type Interpreter struct {
	global *Environment
	funcs  map[string]*ast.FuncDecl
	out    strings.Builder
	err    *errors.LangError
}

// New creates an Interpreter ready to run program (which must already have
// passed semantic analysis — see internal/analyzer).
func New() *Interpreter {
	return &Interpreter{global: NewEnvironment(nil), funcs: map[string]*ast.FuncDecl{}}
}

// Run executes program to completion and returns the captured output
// buffer. On a runtime error, execution stops and the error is returned
// (spec.md §7: "the interpreter... abort[s] on first runtime error").
func Run(program *ast.Program) (string, *errors.LangError) {
	it := New()
	it.err = nil
	for _, fd := range program.Block.FuncDecls {
		it.funcs[fd.Name] = fd
	}
	it.execBlockIn(program.Block, it.global, false)
	if it.err != nil {
		return it.out.String(), it.err
	}
	return it.out.String(), nil
}

func (it *Interpreter) fail(err *errors.LangError) outcome {
	if it.err == nil {
		it.err = err
	}
	return outcome{sig: sigReturn} // unwind everything
}

func (it *Interpreter) failed() bool { return it.err != nil }

// execBlockIn runs a block's var_decls, then its statements, in a fresh
// child frame of env (spec.md §4.2: "a block always pushes a fresh
// frame"). topLevel blocks (the program's own block and function bodies)
// do not get an extra frame beyond the one already pushed by the caller.
func (it *Interpreter) execBlockIn(b *ast.Block, env *Environment, pushFrame bool) outcome {
	frame := env
	if pushFrame {
		frame = NewEnvironment(env)
	}
	for _, vd := range b.VarDecls {
		if it.failed() {
			return outcome{sig: sigReturn}
		}
		frame.Declare(vd.Name, Default(vd.Type))
	}
	for _, stmt := range b.Stmts {
		o := it.execStmt(stmt, frame)
		if o.sig != sigNormal || it.failed() {
			return o
		}
	}
	return normalOutcome
}
