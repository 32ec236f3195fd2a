package data

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/simcore/internal/combat"
)

// Formulas resolves named formulas referenced as {formula: name}.
type Formulas interface {
	Formula(name string) (*combat.Expr, bool)
}

// Formula is a formula as written in a definition file. The YAML node is
// kept until Build, because named references can only be resolved once the
// formula library is loaded.
//
//	100                 constant
//	AP                  stat reference
//	{add: [AP, 10]}     binary op: add sub mul div pow
//	{ln: MAP}           unary op: ln log10
//	{formula: fireball} named formula
type Formula struct {
	node yaml.Node
	set  bool
}

func (f *Formula) UnmarshalYAML(n *yaml.Node) error {
	f.node = *n
	f.set = true
	return nil
}

// IsZero reports whether the formula was absent from the file.
func (f Formula) IsZero() bool { return !f.set }

// Build turns the node into an expression tree. An absent formula builds to
// nil, which evaluates to 0.
func (f Formula) Build(lib Formulas) (*combat.Expr, error) {
	if !f.set {
		return nil, nil
	}
	return buildNode(&f.node, lib)
}

// ParseFormula decodes a YAML snippet and builds it. Used by tests and the
// driver's command line.
func ParseFormula(src string, lib Formulas) (*combat.Expr, error) {
	var f Formula
	if err := yaml.Unmarshal([]byte(src), &f); err != nil {
		return nil, fmt.Errorf("parse formula: %w", err)
	}
	return f.Build(lib)
}

func buildNode(n *yaml.Node, lib Formulas) (*combat.Expr, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return buildNode(n.Content[0], lib)
	case yaml.ScalarNode:
		if v, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return combat.Const(v), nil
		}
		if n.Value == "" {
			return nil, fmt.Errorf("line %d: empty formula", n.Line)
		}
		return combat.Var(strings.ToUpper(n.Value)), nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return nil, fmt.Errorf("line %d: formula mapping needs exactly one operator", n.Line)
		}
		return buildOp(n.Content[0].Value, n.Content[1], lib)
	default:
		return nil, fmt.Errorf("line %d: unexpected formula node", n.Line)
	}
}

func buildOp(name string, arg *yaml.Node, lib Formulas) (*combat.Expr, error) {
	if name == "formula" {
		if lib == nil {
			return nil, fmt.Errorf("line %d: formula %q referenced without a formula library", arg.Line, arg.Value)
		}
		e, ok := lib.Formula(arg.Value)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown formula %q", arg.Line, arg.Value)
		}
		return e, nil
	}

	op, ok := combat.ParseOp(name)
	if !ok || op == combat.OpConst || op == combat.OpVar {
		return nil, fmt.Errorf("line %d: unknown operator %q", arg.Line, name)
	}

	switch op {
	case combat.OpLn, combat.OpLog10:
		x, err := buildNode(arg, lib)
		if err != nil {
			return nil, err
		}
		return &combat.Expr{Op: op, L: x}, nil
	}

	if arg.Kind != yaml.SequenceNode || len(arg.Content) != 2 {
		return nil, fmt.Errorf("line %d: %s takes two operands", arg.Line, name)
	}
	l, err := buildNode(arg.Content[0], lib)
	if err != nil {
		return nil, err
	}
	r, err := buildNode(arg.Content[1], lib)
	if err != nil {
		return nil, err
	}
	return combat.Binary(op, l, r), nil
}
