// Package expr parses the arithmetic body of a plotted expression into a
// syntax tree.
//
// Besides ordinary arithmetic and calls, the tree has nodes for the two
// operators that the evaluator implements numerically: the derivative f'(a)
// of a user-defined function, and the inline definite integral
// int(integrand, lower, upper).
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"src.graf.sh/pkg/diag"
	"src.graf.sh/pkg/integral"
)

// Node is a node in the syntax tree.
type Node interface {
	diag.Ranger
	// String renders the node fully parenthesized.
	String() string
}

// Num is a numeric literal.
type Num struct {
	diag.Ranging
	Value float64
}

// Var is a variable or named constant.
type Var struct {
	diag.Ranging
	Name string
}

// Unary is a prefix operation. Op is '-'.
type Unary struct {
	diag.Ranging
	Op      byte
	Operand Node
}

// Binary is an infix operation. Op is one of + - * / % ^.
type Binary struct {
	diag.Ranging
	Op          byte
	Left, Right Node
}

// Call is a call to a builtin or user-defined function.
type Call struct {
	diag.Ranging
	Name string
	Args []Node
}

// Deriv is the derivative of a user-defined function, written f'(a).
type Deriv struct {
	diag.Ranging
	Name string
	Arg  Node
}

// Integral is int(integrand, lower, upper). Spec holds the trimmed source
// text of the three arguments.
type Integral struct {
	diag.Ranging
	Spec                    integral.Spec
	Integrand, Lower, Upper Node
}

func (n *Num) String() string   { return strconv.FormatFloat(n.Value, 'g', -1, 64) }
func (n *Var) String() string   { return n.Name }
func (n *Unary) String() string { return fmt.Sprintf("(%c%s)", n.Op, n.Operand) }

func (n *Binary) String() string {
	return fmt.Sprintf("(%s %c %s)", n.Left, n.Op, n.Right)
}

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.String()
	}
	return n.Name + "(" + strings.Join(args, ", ") + ")"
}

func (n *Deriv) String() string { return n.Name + "'(" + n.Arg.String() + ")" }

func (n *Integral) String() string {
	return fmt.Sprintf("int(%s, %s, %s)", n.Integrand, n.Lower, n.Upper)
}

// Children returns the direct children of n.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Unary:
		return []Node{n.Operand}
	case *Binary:
		return []Node{n.Left, n.Right}
	case *Call:
		return n.Args
	case *Deriv:
		return []Node{n.Arg}
	case *Integral:
		return []Node{n.Integrand, n.Lower, n.Upper}
	}
	return nil
}

// Walk calls f on n and its descendants in depth-first order. Children of a
// node are skipped when f returns false for it.
func Walk(n Node, f func(Node) bool) {
	if !f(n) {
		return
	}
	for _, ch := range Children(n) {
		Walk(ch, f)
	}
}

// CountIntegrals returns the number of Integral nodes in the tree, including
// nested ones.
func CountIntegrals(n Node) int {
	count := 0
	Walk(n, func(n Node) bool {
		if _, ok := n.(*Integral); ok {
			count++
		}
		return true
	})
	return count
}
