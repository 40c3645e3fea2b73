package ast

import "shkola/internal/types"

// Expr is any expression node. Every Expr carries a post-analysis Type and,
// for nodes the AST folder can derive, a ConstValue.
type Expr interface {
	isExpr()
	Position() Position
	ExprType() types.Type
	SetExprType(types.Type)
	Const() (any, bool)
	SetConst(any)
}

// exprBase factors the Type/ConstValue bookkeeping shared by every
// expression node.
type exprBase struct {
	Pos       Position
	Type      types.Type
	ConstVal  any
	HasConst  bool
}

func (e *exprBase) Position() Position         { return e.Pos }
func (e *exprBase) ExprType() types.Type        { return e.Type }
func (e *exprBase) SetExprType(t types.Type)    { e.Type = t }
func (e *exprBase) Const() (any, bool)          { return e.ConstVal, e.HasConst }
func (e *exprBase) SetConst(v any) {
	e.ConstVal = v
	e.HasConst = true
}

// BinOp is a binary operator application.
type BinOp struct {
	exprBase
	Op    string
	Left  Expr
	Right Expr
}

func (*BinOp) isExpr() {}

// UnaryOp is a unary operator application.
type UnaryOp struct {
	exprBase
	Op      string
	Operand Expr
}

func (*UnaryOp) isExpr() {}

// Identifier references a variable, parameter or function by name.
type Identifier struct {
	exprBase
	Name string
}

func (*Identifier) isExpr() {}

// ArrayAccess is `arr[index]`, 1-based at the source level.
type ArrayAccess struct {
	exprBase
	Array Expr
	Index Expr
}

func (*ArrayAccess) isExpr() {}

// Call is a function (or builtin) invocation used as an expression.
type Call struct {
	exprBase
	Name string
	Args []Expr
}

func (*Call) isExpr() {}

// Int is an integer literal.
type Int struct {
	exprBase
	Value int64
}

func (*Int) isExpr() {}

// Bool is a boolean literal.
type Bool struct {
	exprBase
	Value bool
}

func (*Bool) isExpr() {}

// Char is a character literal.
type Char struct {
	exprBase
	Value rune
}

func (*Char) isExpr() {}

// String is a string literal.
type String struct {
	exprBase
	Value string
}

func (*String) isExpr() {}

// NewIdentifier, NewArrayAccess, NewCall, NewBinOp and NewUnaryOp construct
// non-literal expression nodes. The parser lives in a separate package and
// cannot write exprBase's unexported fields directly, so every node shape
// it needs gets a constructor here rather than exposing exprBase itself.
func NewIdentifier(name string, pos Position) *Identifier {
	return &Identifier{exprBase: exprBase{Pos: pos}, Name: name}
}

func NewArrayAccess(arr, index Expr, pos Position) *ArrayAccess {
	return &ArrayAccess{exprBase: exprBase{Pos: pos}, Array: arr, Index: index}
}

func NewCall(name string, args []Expr, pos Position) *Call {
	return &Call{exprBase: exprBase{Pos: pos}, Name: name, Args: args}
}

func NewBinOp(op string, left, right Expr, pos Position) *BinOp {
	return &BinOp{exprBase: exprBase{Pos: pos}, Op: op, Left: left, Right: right}
}

func NewUnaryOp(op string, operand Expr, pos Position) *UnaryOp {
	return &UnaryOp{exprBase: exprBase{Pos: pos}, Op: op, Operand: operand}
}

// NewInt, NewBool, NewChar, NewString construct literal nodes with
// ConstValue already populated, matching spec.md §3 ("literals initially
// carry const_value").
func NewInt(v int64, pos Position) *Int {
	n := &Int{exprBase: exprBase{Pos: pos, Type: types.Integer}, Value: v}
	n.SetConst(v)
	return n
}

func NewBool(v bool, pos Position) *Bool {
	n := &Bool{exprBase: exprBase{Pos: pos, Type: types.Boolean}, Value: v}
	n.SetConst(v)
	return n
}

func NewChar(v rune, pos Position) *Char {
	n := &Char{exprBase: exprBase{Pos: pos, Type: types.Char}, Value: v}
	n.SetConst(v)
	return n
}

func NewString(v string, pos Position) *String {
	n := &String{exprBase: exprBase{Pos: pos, Type: types.String}, Value: v}
	n.SetConst(v)
	return n
}
