package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shkola/internal/astfold"
	"shkola/internal/bytecode"
	"shkola/internal/catalog"
	"shkola/internal/codegen"
	"shkola/internal/debugger"
	"shkola/internal/formatter"
	"shkola/internal/interp"
	"shkola/internal/netrepl"
	"shkola/internal/parser"
	"shkola/internal/peephole"
	"shkola/internal/vm"

	"golang.org/x/sync/errgroup"
)

// cmdParse implements spec.md §6's "parse-and-print-AST": given a source
// string, yield the AST or a positioned parse error.
func cmdParse(args []string) error {
	pos := positional(args)
	if len(pos) < 1 {
		return fmt.Errorf("usage: shkola parse <file>")
	}
	src, err := readSource(pos[0])
	if err != nil {
		return err
	}
	prog, perr := parser.Parse(src)
	if perr != nil {
		return perr
	}
	fmt.Print(formatter.DumpProgram(prog))
	return nil
}

// cmdRun implements "analyze-and-interpret": the tree-walking path of
// spec.md §4.2, with -fold running the AST constant folder first (spec.md
// §8 invariant 2: folding must not change observable output) and -debug
// routing execution through the bytecode VM instead, since the debugger
// observes instruction pointers and line numbers the interpreter doesn't
// expose.
func cmdRun(args []string) error {
	pos := positional(args)
	if len(pos) < 1 {
		return fmt.Errorf("usage: shkola run <file> [-fold] [-debug] [-step]")
	}
	src, err := readSource(pos[0])
	if err != nil {
		return err
	}
	prog, err := frontend(src)
	if err != nil {
		return err
	}
	if hasFlag(args, "-fold") {
		astfold.Fold(prog)
	}

	if hasFlag(args, "-debug") || hasFlag(args, "-step") {
		bc, cerr := codegen.Generate(prog)
		if cerr != nil {
			return cerr
		}
		out, rerr := runWithDebugger(bc, args)
		fmt.Print(out)
		if rerr != nil {
			return rerr
		}
		return nil
	}

	out, rerr := interp.Run(prog)
	fmt.Print(out)
	if rerr != nil {
		return rerr
	}
	return nil
}

// cmdCompile implements "analyze-and-compile (optionally persist)":
// lowers the analyzed AST to bytecode (spec.md §4.4), optionally runs the
// peephole optimizer (§4.7), and either writes the textual persisted
// record (§6), prints a disassembly (-S), or records the build in a
// catalog.
func cmdCompile(args []string) error {
	pos := positional(args)
	if len(pos) < 1 {
		return fmt.Errorf("usage: shkola compile <file> [-o out.json] [-S] [-peephole] [-catalog db]")
	}
	src, err := readSource(pos[0])
	if err != nil {
		return err
	}
	prog, err := frontend(src)
	if err != nil {
		return err
	}
	astfold.Fold(prog)

	bc, cerr := codegen.Generate(prog)
	if cerr != nil {
		return cerr
	}
	if hasFlag(args, "-peephole") {
		peephole.Optimize(bc)
	}

	if hasFlag(args, "-S") {
		fmt.Print(bytecode.Disassemble(bc))
	}

	if out := flagValue(args, "-o", ""); out != "" {
		data, err := bc.MarshalJSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
	}

	if db := flagValue(args, "-catalog", ""); db != "" {
		c, err := catalog.Open(db)
		if err != nil {
			return err
		}
		defer c.Close()
		name := strings.TrimSuffix(filepath.Base(pos[0]), filepath.Ext(pos[0]))
		id, err := c.Put(name, src, bc)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "catalog: stored build %s as %q\n", id, name)
	}
	return nil
}

// cmdExec implements "load-persisted-and-run": read a persisted bytecode
// record and execute it on the VM directly, with no front end involved.
func cmdExec(args []string) error {
	pos := positional(args)
	var bc *bytecode.Program

	if db := flagValue(args, "-catalog", ""); db != "" {
		if len(pos) < 1 {
			return fmt.Errorf("usage: shkola exec -catalog <db> <build-id-or-name>")
		}
		c, err := catalog.Open(db)
		if err != nil {
			return err
		}
		defer c.Close()
		loaded, err := c.Load(pos[0])
		if err != nil {
			loaded, err = c.LoadLatestByName(pos[0])
			if err != nil {
				return err
			}
		}
		bc = loaded
	} else {
		if len(pos) < 1 {
			return fmt.Errorf("usage: shkola exec <file.json>")
		}
		data, err := os.ReadFile(pos[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", pos[0], err)
		}
		bc = bytecode.New()
		if err := bc.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("decoding %s: %w", pos[0], err)
		}
	}

	out, rerr := runWithDebugger(bc, args)
	fmt.Print(out)
	if rerr != nil {
		return rerr
	}
	return nil
}

func runWithDebugger(bc *bytecode.Program, args []string) (string, error) {
	if !hasFlag(args, "-debug") && !hasFlag(args, "-step") {
		out, rerr := vm.Run(bc)
		if rerr != nil {
			return out, rerr
		}
		return out, nil
	}
	dbg := debugger.New(os.Stdin, os.Stderr)
	if hasFlag(args, "-step") {
		dbg.StepMode()
	}
	for _, ln := range strings.Split(flagValue(args, "-break", ""), ",") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(ln, "%d", &n); err == nil {
			dbg.Break(n)
		}
	}
	out, rerr := vm.RunWithHook(bc, dbg.Hook())
	if rerr != nil {
		return out, rerr
	}
	return out, nil
}

// cmdServe implements the ambient websocket remote-eval transport
// (SPEC_FULL.md §3).
func cmdServe(args []string) error {
	addr := flagValue(args, "-addr", ":8089")
	fmt.Fprintf(os.Stderr, "shkola: serving websocket eval on %s/eval\n", addr)
	return netrepl.ListenAndServe(addr)
}

// cmdCatalog implements a small inspector over the build catalog
// (SPEC_FULL.md §3: "the exec and catalog subcommands can list and load
// from" it).
func cmdCatalog(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: shkola catalog <db> list|show <id>")
	}
	c, err := catalog.Open(args[0])
	if err != nil {
		return err
	}
	defer c.Close()

	switch args[1] {
	case "list":
		builds, err := c.List()
		if err != nil {
			return err
		}
		for _, b := range builds {
			fmt.Printf("%s  %-20s  %s  %s\n", b.ID, b.Name, b.Digest[:12], b.CreatedAt)
		}
		return nil
	case "show":
		if len(args) < 3 {
			return fmt.Errorf("usage: shkola catalog <db> show <id>")
		}
		bc, err := c.Load(args[2])
		if err != nil {
			return err
		}
		fmt.Print(bytecode.Disassemble(bc))
		return nil
	default:
		return fmt.Errorf("unknown catalog subcommand %q", args[1])
	}
}

// cmdTest runs every *.alg fixture in dir concurrently through its own
// analyzer+interpreter pair, one goroutine per fixture joined by an
// errgroup (no concurrency limit is set) — orchestration of
// independent per-file runs, not concurrency inside a single VM, so it
// does not conflict with spec.md §5's single-threaded execution model.
// A fixture named foo.alg with a sibling foo.out is checked against that
// expected output; without one, the fixture only needs to analyze and run
// without a reported error.
func cmdTest(args []string) error {
	pos := positional(args)
	if len(pos) < 1 {
		return fmt.Errorf("usage: shkola test <dir>")
	}
	entries, err := os.ReadDir(pos[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", pos[0], err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".alg") {
			files = append(files, filepath.Join(pos[0], e.Name()))
		}
	}

	results := make([]string, len(files))
	var g errgroup.Group
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			results[i] = runFixture(f)
			return nil
		})
	}
	_ = g.Wait()

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	failed := 0
	for i, f := range files {
		fmt.Fprintf(w, "%-40s %s\n", filepath.Base(f), results[i])
		if results[i] != "ok" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d/%d fixtures failed", failed, len(files))
	}
	return nil
}

func runFixture(path string) string {
	src, err := os.ReadFile(path)
	if err != nil {
		return "FAIL (read: " + err.Error() + ")"
	}
	prog, err := frontend(string(src))
	if err != nil {
		return "FAIL (" + err.Error() + ")"
	}
	out, rerr := interp.Run(prog)
	if rerr != nil {
		return "FAIL (" + rerr.Error() + ")"
	}
	expected, err := os.ReadFile(strings.TrimSuffix(path, ".alg") + ".out")
	if err == nil && string(expected) != out {
		return "FAIL (output mismatch)"
	}
	return "ok"
}
