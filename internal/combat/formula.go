// Package combat evaluates stat formulas and resolves attacks.
package combat

import (
	"fmt"
	"math"
	"strings"
)

// Stats is a read-only stat block. Absent stats must read as 0.
type Stats interface {
	Stat(name string) float64
}

// StatMap adapts a plain map to Stats.
type StatMap map[string]float64

func (m StatMap) Stat(name string) float64 { return m[name] }

// Op tags an expression node.
type Op uint8

const (
	OpConst Op = iota
	OpVar
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow
	OpLn
	OpLog10
)

var opNames = [...]string{"const", "var", "add", "sub", "mul", "div", "pow", "ln", "log10"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", o)
}

// ParseOp maps a lower-case operator name to its Op.
func ParseOp(s string) (Op, bool) {
	for i, n := range opNames {
		if n == s {
			return Op(i), true
		}
	}
	return 0, false
}

// Expr is one node of a formula tree. Unary ops use L only.
type Expr struct {
	Op    Op
	Value float64 // OpConst
	Name  string  // OpVar
	L, R  *Expr
}

func Const(v float64) *Expr     { return &Expr{Op: OpConst, Value: v} }
func Var(name string) *Expr     { return &Expr{Op: OpVar, Name: name} }
func Add(l, r *Expr) *Expr      { return &Expr{Op: OpAdd, L: l, R: r} }
func Sub(l, r *Expr) *Expr      { return &Expr{Op: OpSub, L: l, R: r} }
func Mul(l, r *Expr) *Expr      { return &Expr{Op: OpMul, L: l, R: r} }
func Div(l, r *Expr) *Expr      { return &Expr{Op: OpDiv, L: l, R: r} }
func Pow(base, exp *Expr) *Expr { return &Expr{Op: OpPow, L: base, R: exp} }
func Ln(x *Expr) *Expr          { return &Expr{Op: OpLn, L: x} }
func Log10(x *Expr) *Expr       { return &Expr{Op: OpLog10, L: x} }

// Binary builds a node for any two-operand op.
func Binary(op Op, l, r *Expr) *Expr { return &Expr{Op: op, L: l, R: r} }

// Eval walks the tree. A nil expression is 0 and division by exactly zero
// is 0. Variable names are upper-cased before the lookup.
func Eval(e *Expr, s Stats) float64 {
	if e == nil {
		return 0
	}
	switch e.Op {
	case OpConst:
		return e.Value
	case OpVar:
		if s == nil {
			return 0
		}
		return s.Stat(strings.ToUpper(e.Name))
	case OpAdd:
		return Eval(e.L, s) + Eval(e.R, s)
	case OpSub:
		return Eval(e.L, s) - Eval(e.R, s)
	case OpMul:
		return Eval(e.L, s) * Eval(e.R, s)
	case OpDiv:
		d := Eval(e.R, s)
		if d == 0 {
			return 0
		}
		return Eval(e.L, s) / d
	case OpPow:
		return math.Pow(Eval(e.L, s), Eval(e.R, s))
	case OpLn:
		return math.Log(Eval(e.L, s))
	case OpLog10:
		return math.Log10(Eval(e.L, s))
	default:
		return 0
	}
}

// String renders the tree in prefix form, e.g. add(var(AP), const(10)).
func (e *Expr) String() string {
	if e == nil {
		return "nil"
	}
	switch e.Op {
	case OpConst:
		return fmt.Sprintf("const(%g)", e.Value)
	case OpVar:
		return fmt.Sprintf("var(%s)", e.Name)
	case OpLn, OpLog10:
		return fmt.Sprintf("%s(%s)", e.Op, e.L)
	default:
		return fmt.Sprintf("%s(%s, %s)", e.Op, e.L, e.R)
	}
}
