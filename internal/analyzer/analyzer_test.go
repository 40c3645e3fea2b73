package analyzer_test

import (
	"testing"

	"shkola/internal/analyzer"
	"shkola/internal/parser"
)

func TestAnalyzeAcceptsWellTypedProgram(t *testing.T) {
	prog, err := parser.Parse(`
алг demo;
нач
  x: цел;
  y: лог;
  x := 1 + 2;
  y := x > 0;
  print(y);
кон`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if errs := analyzer.Analyze(prog); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestAnalyzeRejectsUndeclaredIdentifier(t *testing.T) {
	prog, err := parser.Parse(`
алг demo;
нач
  x: цел;
  x := y;
кон`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	errs := analyzer.Analyze(prog)
	if len(errs) == 0 {
		t.Fatal("expected a semantic error for undeclared identifier 'y'")
	}
}

func TestAnalyzeRejectsTypeMismatchInAssignment(t *testing.T) {
	prog, err := parser.Parse(`
алг demo;
нач
  x: цел;
  b: лог;
  x := b;
кон`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	errs := analyzer.Analyze(prog)
	if len(errs) == 0 {
		t.Fatal("expected a semantic error assigning лог to цел")
	}
}

func TestAnalyzeRejectsNonBooleanCondition(t *testing.T) {
	prog, err := parser.Parse(`
алг demo;
нач
  x: цел;
  если x то
    x := 1;
  все;
кон`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	errs := analyzer.Analyze(prog)
	if len(errs) == 0 {
		t.Fatal("expected a semantic error: if condition must be boolean")
	}
}

func TestAnalyzeRejectsDuplicateDeclaration(t *testing.T) {
	prog, err := parser.Parse(`
алг demo;
нач
  x: цел;
  x: лог;
кон`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	errs := analyzer.Analyze(prog)
	if len(errs) == 0 {
		t.Fatal("expected a semantic error for duplicate declaration of 'x'")
	}
}

func TestAnalyzeAcceptsForwardReferencedFunction(t *testing.T) {
	// spec.md §4.1: function signatures are all declared before any body is
	// analyzed, so mutual/forward references between functions must resolve.
	prog, err := parser.Parse(`
алг demo;
функция звонок(n: цел): лог;
нач
  знач чёт(n);
кон;
функция чёт(n: цел): лог;
нач
  знач n mod 2 = 0;
кон;
нач
  print(звонок(4));
кон`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if errs := analyzer.Analyze(prog); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestAnalyzeRejectsWrongArgumentCount(t *testing.T) {
	prog, err := parser.Parse(`
алг demo;
функция добавить(a: цел, b: цел): цел;
нач
  знач a + b;
кон;
нач
  print(добавить(1));
кон`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	errs := analyzer.Analyze(prog)
	if len(errs) == 0 {
		t.Fatal("expected a semantic error for wrong argument count")
	}
}

func TestAnalyzeRejectsReturnValueFromProcedure(t *testing.T) {
	prog, err := parser.Parse(`
алг demo;
функция напечатать(x: цел);
нач
  знач x;
кон;
нач
  напечатать(1);
кон`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	errs := analyzer.Analyze(prog)
	if len(errs) == 0 {
		t.Fatal("expected a semantic error: procedure cannot return a value")
	}
}

func TestAnalyzeRejectsIndexingNonArray(t *testing.T) {
	prog, err := parser.Parse(`
алг demo;
нач
  x: цел;
  y: цел;
  x := 1;
  y := x[1];
кон`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	errs := analyzer.Analyze(prog)
	if len(errs) == 0 {
		t.Fatal("expected a semantic error: cannot index a non-array type")
	}
}

func TestAnalyzeRejectsNonPositiveArraySize(t *testing.T) {
	prog, err := parser.Parse(`
алг demo;
нач
  a: таб[0] цел;
кон`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	errs := analyzer.Analyze(prog)
	if len(errs) == 0 {
		t.Fatal("expected a semantic error: array size must be positive")
	}
}
