package vm_test

// End-to-end tests driving the full parse -> analyze -> fold -> {interp |
// codegen -> vm} pipeline against the small programs spec.md §8 describes,
// checking that the tree-walking interpreter and the compiled bytecode VM
// agree on every scenario (spec.md §1: "two execution paths, one observable
// behavior").

import (
	"strings"
	"testing"

	"shkola/internal/analyzer"
	"shkola/internal/astfold"
	"shkola/internal/codegen"
	"shkola/internal/errors"
	"shkola/internal/interp"
	"shkola/internal/parser"
	"shkola/internal/vm"
)

// frontend parses and analyzes src, failing the test on any diagnostic.
func frontend(t *testing.T, src string) *parsedProgram {
	t.Helper()
	prog, perr := parser.Parse(src)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	if errs := analyzer.Analyze(prog); len(errs) > 0 {
		var b strings.Builder
		for _, e := range errs {
			b.WriteString(e.Error())
			b.WriteByte('\n')
		}
		t.Fatalf("unexpected semantic errors:\n%s", b.String())
	}
	return &parsedProgram{src: src}
}

// parsedProgram re-parses per execution path so folding one path's AST
// never affects the other's (the interpreter and the VM must each start
// from their own copy of the analyzed tree).
type parsedProgram struct{ src string }

func (pp *parsedProgram) runInterp(t *testing.T, fold bool) (string, *errors.LangError) {
	t.Helper()
	prog, perr := parser.Parse(pp.src)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	if errs := analyzer.Analyze(prog); len(errs) > 0 {
		t.Fatalf("unexpected semantic errors: %v", errs)
	}
	if fold {
		astfold.Fold(prog)
	}
	return interp.Run(prog)
}

func (pp *parsedProgram) runVM(t *testing.T, fold bool) (string, *errors.LangError) {
	t.Helper()
	prog, perr := parser.Parse(pp.src)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	if errs := analyzer.Analyze(prog); len(errs) > 0 {
		t.Fatalf("unexpected semantic errors: %v", errs)
	}
	if fold {
		astfold.Fold(prog)
	}
	bc, cerr := codegen.Generate(prog)
	if cerr != nil {
		t.Fatalf("codegen error: %v", cerr)
	}
	return vm.Run(bc)
}

// assertBothAgree runs src through both execution paths, with and without
// constant folding, and requires identical output from all four runs.
func assertBothAgree(t *testing.T, src, wantOut string) {
	t.Helper()
	pp := frontend(t, src)

	out, err := pp.runInterp(t, false)
	if err != nil {
		t.Fatalf("interp (unfolded): %v", err)
	}
	if out != wantOut {
		t.Errorf("interp (unfolded) output = %q, want %q", out, wantOut)
	}

	out, err = pp.runInterp(t, true)
	if err != nil {
		t.Fatalf("interp (folded): %v", err)
	}
	if out != wantOut {
		t.Errorf("interp (folded) output = %q, want %q", out, wantOut)
	}

	out, err = pp.runVM(t, false)
	if err != nil {
		t.Fatalf("vm (unfolded): %v", err)
	}
	if out != wantOut {
		t.Errorf("vm (unfolded) output = %q, want %q", out, wantOut)
	}

	out, err = pp.runVM(t, true)
	if err != nil {
		t.Fatalf("vm (folded): %v", err)
	}
	if out != wantOut {
		t.Errorf("vm (folded) output = %q, want %q", out, wantOut)
	}
}

func TestArithmeticPrecedence(t *testing.T) {
	assertBothAgree(t, `
алг demo;
нач
  y: цел;
  y := 2 + 3 * 4;
  print(y);
кон`, "14\n")
}

func TestShortCircuitAvoidsDivisionByZero(t *testing.T) {
	assertBothAgree(t, `
алг demo;
нач
  x: цел;
  b: лог;
  x := 0;
  b := (x > 0) и (10 / x > 1);
  print(b);
кон`, "нет\n")
}

func TestForLoopSum(t *testing.T) {
	assertBothAgree(t, `
алг demo;
нач
  s: цел;
  i: цел;
  s := 0;
  для i от 1 до 5 цикл
    s := s + i;
  кц;
  print(s);
кон`, "15\n")
}

func TestFactorialViaWhile(t *testing.T) {
	assertBothAgree(t, `
алг demo;
нач
  n: цел;
  f: цел;
  n := 5;
  f := 1;
  пока n > 0 цикл
    f := f * n;
    n := n - 1;
  кц;
  print(f);
кон`, "120\n")
}

func TestArrayRoundTrip(t *testing.T) {
	assertBothAgree(t, `
алг demo;
нач
  a: таб[3] цел;
  a[1] := 10;
  a[2] := 20;
  a[3] := a[1] + a[2];
  print(a[3]);
  print(a);
кон`, "30\n[10, 20, 30]\n")
}

func TestUserFunctionCall(t *testing.T) {
	assertBothAgree(t, `
алг demo;
функция сложить(a: цел, b: цел): цел;
нач
  знач a + b;
кон;
нач
  r: цел;
  r := сложить(3, 4);
  print(r);
кон`, "7\n")
}

func TestVoidProcedureCallStatement(t *testing.T) {
	// A procedure (no return type) called as a statement must not
	// underflow the operand stack: CallStmt unconditionally Pops, so the
	// call must leave a placeholder value the same way print/inc/dec do.
	assertBothAgree(t, `
алг demo;
функция p(x: цел);
нач
  print(x);
кон;
нач
  p(5);
  p(6);
кон`, "5\n6\n")
}

func TestForLoopNegativeStep(t *testing.T) {
	// Open-question-1 resolution: a negative step must count down, not loop
	// forever or skip entirely.
	assertBothAgree(t, `
алг demo;
нач
  s: цел;
  i: цел;
  s := 0;
  для i от 5 до 1 шаг -1 цикл
    s := s + i;
  кц;
  print(s);
кон`, "15\n")
}

func TestArrayAssignEvaluationOrder(t *testing.T) {
	// The array target (array, then index) must be evaluated before the
	// RHS value under both backends (Open Question decision §0.4), so a
	// side-effecting index expression prints before a side-effecting RHS.
	assertBothAgree(t, `
алг demo;
функция se(t: цел): цел;
нач
  print(t);
  знач 0;
кон;
нач
  a: таб[3] цел;
  a[se(1) + 1] := se(2);
кон`, "1\n2\n")
}

func TestOutOfBoundsArrayAccessIsRuntimeError(t *testing.T) {
	pp := frontend(t, `
алг demo;
нач
  a: таб[2] цел;
  print(a[5]);
кон`)

	if _, err := pp.runInterp(t, false); err == nil {
		t.Fatal("interp: expected a runtime error on out-of-bounds access, got none")
	} else if err.Type != errors.RuntimeError {
		t.Errorf("interp: error type = %v, want RuntimeError", err.Type)
	}

	if _, err := pp.runVM(t, false); err == nil {
		t.Fatal("vm: expected a runtime error on out-of-bounds access, got none")
	} else if err.Type != errors.RuntimeError {
		t.Errorf("vm: error type = %v, want RuntimeError", err.Type)
	}
}
