// Package repl implements an interactive read-compile-run loop, adapted
// from the teacher's internal/repl/repl.go (scan-a-line, lex, parse,
// compile, reset-VM-with-chunk, run) onto this language's own front end
// and VM. Each accepted line is analyzed and compiled as a tiny
// throwaway program sharing nothing with prior lines (spec.md's core has
// no notion of an incremental top-level environment); this matches the
// teacher's own "fresh chunk per line" REPL shape rather than inventing
// session-persistent globals.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"shkola/internal/analyzer"
	"shkola/internal/astfold"
	"shkola/internal/codegen"
	"shkola/internal/parser"
	"shkola/internal/vm"
)

// Start runs the loop against stdin/stdout until EOF or the "exit" line.
// The prompt is suppressed when stdin is not a terminal, matching how a
// teacher-style CLI tool behaves under scripting (a piped script shouldn't
// have ">>> " interleaved into its output).
func Start() {
	interactive := isatty.IsTerminal(os.Stdin.Fd())
	run(os.Stdin, os.Stdout, interactive)
}

func run(in io.Reader, out io.Writer, interactive bool) {
	if interactive {
		fmt.Fprintln(out, "shkola REPL | type 'exit' to quit")
	}
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, ">>> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}
		evalLine(line, out)
	}
}

// evalLine wraps a bare statement line in the minimal program shell this
// language requires (`алг ... нач ... кон`) so the existing parser can
// consume it unmodified — the REPL's only concession to the fact that
// spec.md's grammar has no "bare statement" production of its own.
func evalLine(line string, out io.Writer) {
	src := "алг repl;\nнач\n" + line + ";\nкон\n"

	prog, perr := parser.Parse(src)
	if perr != nil {
		fmt.Fprintln(out, perr.Error())
		return
	}

	if errs := analyzer.Analyze(prog); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(out, e.Error())
		}
		return
	}

	astfold.Fold(prog)

	bc, cerr := codegen.Generate(prog)
	if cerr != nil {
		fmt.Fprintln(out, cerr.Error())
		return
	}

	output, rerr := vm.Run(bc)
	fmt.Fprint(out, output)
	if rerr != nil {
		fmt.Fprintln(out, rerr.Error())
	}
}
