// cmd/shkola/main.go
//
// A hand-rolled os.Args dispatcher, exactly like the teacher's own
// cmd/sentra/main.go (no cobra/viper in the teacher, so none here).
// Subcommands map onto spec.md §6's four core entry points — parse,
// run, compile, exec — plus the ambient additions of SPEC_FULL.md §2:
// repl, serve, catalog, test.
package main

import (
	"fmt"
	"os"
	"strings"

	"shkola/internal/analyzer"
	"shkola/internal/ast"
	"shkola/internal/errors"
	"shkola/internal/parser"
	"shkola/internal/repl"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "parse":
		err = cmdParse(args[1:])
	case "run":
		err = cmdRun(args[1:])
	case "compile":
		err = cmdCompile(args[1:])
	case "exec":
		err = cmdExec(args[1:])
	case "repl":
		repl.Start()
	case "serve":
		err = cmdServe(args[1:])
	case "catalog":
		err = cmdCatalog(args[1:])
	case "test":
		err = cmdTest(args[1:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `shkola <command> [args]

  parse   <file>                  parse source and print its AST
  run     <file> [-fold] [-debug] [-step]
                                   analyze and interpret (tree-walking)
  compile <file> [-o out.json] [-S] [-peephole] [-catalog db]
                                   analyze and lower to bytecode
  exec    <file.json> [-debug] [-step]
                                   load a persisted program and run it on the VM
  repl                            interactive read-compile-run loop
  serve   [-addr :8089]           websocket remote-eval server
  catalog <db> list|show <id>     inspect a build catalog
  test    <dir>                   run every *.alg fixture in dir concurrently`)
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// frontend parses and analyzes src, returning the typed AST ready for
// folding/interpretation/codegen, or the first diagnostic batch.
func frontend(src string) (*ast.Program, error) {
	prog, perr := parser.Parse(src)
	if perr != nil {
		return nil, perr
	}
	if errs := analyzer.Analyze(prog); len(errs) > 0 {
		return nil, diagnosticsError(errs)
	}
	return prog, nil
}

func diagnosticsError(errs []*errors.LangError) error {
	var sb strings.Builder
	for i, e := range errs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(e.Error())
	}
	return fmt.Errorf("%s", sb.String())
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}

func flagValue(args []string, name, def string) string {
	for i, a := range args {
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
	}
	return def
}

func positional(args []string) []string {
	var out []string
	skip := false
	for _, a := range args {
		if skip {
			skip = false
			continue
		}
		if strings.HasPrefix(a, "-") {
			if a == "-o" || a == "-addr" || a == "-catalog" || a == "-break" {
				skip = true
			}
			continue
		}
		out = append(out, a)
	}
	return out
}
