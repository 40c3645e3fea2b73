package astfold

import (
	"testing"

	"shkola/internal/ast"
	"shkola/internal/types"
)

var noPos ast.Position

func binOp(op string, l, r ast.Expr) *ast.BinOp {
	return &ast.BinOp{Op: op, Left: l, Right: r}
}

func TestFoldLiteralArithmetic(t *testing.T) {
	f := &folder{}
	expr := binOp(types.OpAdd, ast.NewInt(2, noPos), ast.NewInt(3, noPos))
	got := f.foldExpr(expr)
	i, ok := got.(*ast.Int)
	if !ok || i.Value != 5 {
		t.Fatalf("fold(2+3) = %#v, want Int(5)", got)
	}
	if f.applied == 0 {
		t.Error("expected Applied > 0")
	}
}

func TestFoldAddZeroIdentity(t *testing.T) {
	f := &folder{}
	ident := &ast.Identifier{Name: "x"}
	expr := binOp(types.OpAdd, ident, ast.NewInt(0, noPos))
	got := f.foldExpr(expr)
	if got != ast.Expr(ident) {
		t.Fatalf("fold(x+0) = %#v, want the original identifier node", got)
	}
}

func TestFoldMulZeroDropsPureOperand(t *testing.T) {
	f := &folder{}
	ident := &ast.Identifier{Name: "x"}
	expr := binOp(types.OpMul, ident, ast.NewInt(0, noPos))
	got := f.foldExpr(expr)
	i, ok := got.(*ast.Int)
	if !ok || i.Value != 0 {
		t.Fatalf("fold(x*0) = %#v, want Int(0)", got)
	}
}

// TestFoldMulZeroPreservesCallSideEffect is the purity-check open-question
// decision: x*0 must NOT collapse to a bare 0 when x is a Call, since the
// call's side effect would otherwise silently vanish.
func TestFoldMulZeroPreservesCallSideEffect(t *testing.T) {
	f := &folder{}
	call := &ast.Call{Name: "print", Args: []ast.Expr{ast.NewInt(1, noPos)}}
	expr := binOp(types.OpMul, call, ast.NewInt(0, noPos))
	got := f.foldExpr(expr)
	asBinOp, ok := got.(*ast.BinOp)
	if !ok {
		t.Fatalf("fold(print(1)*0) = %#v, want an unfolded BinOp (side effect preserved)", got)
	}
	if asBinOp.Left != ast.Expr(call) {
		t.Error("the call must survive folding unchanged")
	}
}

func TestFoldDivisionByZeroNotFolded(t *testing.T) {
	f := &folder{}
	expr := binOp(types.OpDiv, ast.NewInt(5, noPos), ast.NewInt(0, noPos))
	got := f.foldExpr(expr)
	if _, ok := got.(*ast.Int); ok {
		t.Fatal("division by a literal zero must not be folded away (preserve the runtime error)")
	}
}

func TestFoldShortCircuitAnd(t *testing.T) {
	f := &folder{}
	ident := &ast.Identifier{Name: "x"}
	// нет и x  ->  нет  (short-circuit, x discarded; x is pure here so it's fine)
	expr := binOp(types.OpAnd, ast.NewBool(false, noPos), ident)
	got := f.foldExpr(expr)
	b, ok := got.(*ast.Bool)
	if !ok || b.Value != false {
		t.Fatalf("fold(нет и x) = %#v, want Bool(false)", got)
	}
}

func TestFoldIfConstantConditionHoistsBranch(t *testing.T) {
	f := &folder{}
	thenStmt := &ast.CallStmt{Call: &ast.Call{Name: "print", Args: []ast.Expr{ast.NewInt(1, noPos)}}}
	elseStmt := &ast.CallStmt{Call: &ast.Call{Name: "print", Args: []ast.Expr{ast.NewInt(2, noPos)}}}
	n := &ast.If{
		Cond:      ast.NewBool(true, noPos),
		ThenStmts: []ast.Stmt{thenStmt},
		ElseStmts: []ast.Stmt{elseStmt},
	}
	out := f.foldStmt(n)
	if len(out) != 1 || out[0] != ast.Stmt(thenStmt) {
		t.Fatalf("fold(if да then A else B) = %#v, want [A]", out)
	}
}

func TestFoldWhileFalseDropsLoop(t *testing.T) {
	f := &folder{}
	n := &ast.While{Cond: ast.NewBool(false, noPos), Body: []ast.Stmt{&ast.Break{}}}
	out := f.foldStmt(n)
	if out != nil {
		t.Fatalf("fold(while нет ... кц) = %#v, want nil (loop dropped entirely)", out)
	}
}

func TestFoldProgramCountsApplications(t *testing.T) {
	prog := &ast.Program{
		Block: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.Assign{
					Target: &ast.Identifier{Name: "y"},
					Value:  binOp(types.OpAdd, ast.NewInt(1, noPos), ast.NewInt(1, noPos)),
				},
			},
		},
	}
	r := Fold(prog)
	if r.Applied == 0 {
		t.Error("expected at least one fold application")
	}
	assign := prog.Block.Stmts[0].(*ast.Assign)
	lit, ok := assign.Value.(*ast.Int)
	if !ok || lit.Value != 2 {
		t.Fatalf("y := 1+1 folded to %#v, want Int(2)", assign.Value)
	}
}
