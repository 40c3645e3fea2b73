// Package formatter renders an analyzed AST as an indented, human-readable
// tree — adapted from the teacher's AST/value pretty printer
// (internal/formatter), repurposed from a source-code formatter into the
// `parse` subcommand's AST dump (spec.md §6: "parse-and-print-AST").
// Runtime value formatting lives next to its value representations
// instead (bytecode.Format, interp.Format).
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"shkola/internal/ast"
)

// Formatter accumulates an indented AST dump.
type Formatter struct {
	indent int
	out    strings.Builder
}

// New creates an empty Formatter.
func New() *Formatter { return &Formatter{} }

// DumpProgram renders prog's full tree.
func DumpProgram(prog *ast.Program) string {
	f := New()
	f.writeLine("Program " + prog.Name)
	f.indent++
	f.dumpBlock(prog.Block)
	f.indent--
	return f.out.String()
}

func (f *Formatter) writeLine(s string) {
	f.out.WriteString(strings.Repeat("  ", f.indent))
	f.out.WriteString(s)
	f.out.WriteByte('\n')
}

func (f *Formatter) dumpBlock(b *ast.Block) {
	for _, vd := range b.VarDecls {
		f.writeLine(fmt.Sprintf("VarDecl %s : %s", vd.Name, typeNodeString(vd.DeclaredType)))
	}
	for _, fd := range b.FuncDecls {
		f.dumpFuncDecl(fd)
	}
	for _, s := range b.Stmts {
		f.dumpStmt(s)
	}
}

func (f *Formatter) dumpFuncDecl(fd *ast.FuncDecl) {
	var params []string
	for _, p := range fd.Params {
		params = append(params, p.Name+": "+typeNodeString(p.DeclaredType))
	}
	ret := "void"
	if fd.ReturnType != nil {
		ret = typeNodeString(fd.ReturnType)
	}
	f.writeLine(fmt.Sprintf("FuncDecl %s(%s) -> %s", fd.Name, strings.Join(params, ", "), ret))
	f.indent++
	f.dumpBlock(fd.Block)
	f.indent--
}

func typeNodeString(tn ast.TypeNode) string {
	switch t := tn.(type) {
	case *ast.SimpleTypeNode:
		return t.Name
	case *ast.ArrayTypeNode:
		return "таб[" + exprString(t.SizeExpr) + "] " + typeNodeString(t.ElementType)
	default:
		return "?"
	}
}

func (f *Formatter) dumpStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Assign:
		f.writeLine(fmt.Sprintf("Assign %s := %s", exprString(n.Target), exprString(n.Value)))
	case *ast.If:
		f.writeLine("If " + exprString(n.Cond))
		f.indent++
		for _, st := range n.ThenStmts {
			f.dumpStmt(st)
		}
		f.indent--
		if n.ElseStmts != nil {
			f.writeLine("Else")
			f.indent++
			for _, st := range n.ElseStmts {
				f.dumpStmt(st)
			}
			f.indent--
		}
	case *ast.For:
		step := "1"
		if n.Step != nil {
			step = exprString(n.Step)
		}
		f.writeLine(fmt.Sprintf("For %s from %s to %s step %s", n.VarName, exprString(n.Start), exprString(n.End), step))
		f.indent++
		for _, st := range n.Body {
			f.dumpStmt(st)
		}
		f.indent--
	case *ast.While:
		f.writeLine("While " + exprString(n.Cond))
		f.indent++
		for _, st := range n.Body {
			f.dumpStmt(st)
		}
		f.indent--
	case *ast.DoUntil:
		f.writeLine("DoUntil")
		f.indent++
		for _, st := range n.Body {
			f.dumpStmt(st)
		}
		f.indent--
		f.writeLine("Until " + exprString(n.Cond))
	case *ast.Break:
		f.writeLine("Break")
	case *ast.Continue:
		f.writeLine("Continue")
	case *ast.Return:
		if n.Value != nil {
			f.writeLine("Return " + exprString(n.Value))
		} else {
			f.writeLine("Return")
		}
	case *ast.CallStmt:
		f.writeLine("CallStmt " + exprString(n.Call))
	default:
		f.writeLine(fmt.Sprintf("<unknown statement %T>", s))
	}
}

// exprString renders an expression as a single-line s-expression; deep
// enough for the `parse` dump without needing its own indentation level.
func exprString(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.BinOp:
		return "(" + exprString(n.Left) + " " + n.Op + " " + exprString(n.Right) + ")"
	case *ast.UnaryOp:
		return "(" + n.Op + " " + exprString(n.Operand) + ")"
	case *ast.Identifier:
		return n.Name
	case *ast.ArrayAccess:
		return exprString(n.Array) + "[" + exprString(n.Index) + "]"
	case *ast.Call:
		var args []string
		for _, a := range n.Args {
			args = append(args, exprString(a))
		}
		return n.Name + "(" + strings.Join(args, ", ") + ")"
	case *ast.Int:
		return strconv.FormatInt(n.Value, 10)
	case *ast.Bool:
		if n.Value {
			return "да"
		}
		return "нет"
	case *ast.Char:
		return "'" + string(n.Value) + "'"
	case *ast.String:
		return strconv.Quote(n.Value)
	default:
		return fmt.Sprintf("<unknown expr %T>", e)
	}
}
