// Package parse turns a line of user input into a plotted expression.
//
// The accepted forms are
//
//	[y =] body [{constraint}]
//	name(x) = body [{constraint}]
//	x = number [{constraint}]
//
// where the constraint is a list of clauses such as 0<=x<10 joined with &&.
// Parsing never fails: input that does not fit any form is treated as a
// function body, and will simply fail to evaluate.
package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"src.graf.sh/pkg/constraint"
)

// Kind is the kind of a parsed expression.
type Kind int

// Possible values of Kind.
const (
	// Function is a curve y = f(x).
	Function Kind = iota
	// Vertical is the line x = c.
	Vertical
)

func (k Kind) String() string {
	if k == Vertical {
		return "vertical"
	}
	return "function"
}

// Expr is a parsed line of input.
type Expr struct {
	Kind Kind
	// Body is the expression in x for Function. It is empty for Vertical.
	Body string
	// X is the position of a Vertical line. It is NaN when the right-hand side
	// of "x =" is not a number, and for Function.
	X float64
	// Constraint restricts where the expression is drawn. It is nil when the
	// input has no constraint or all its clauses were ignored.
	Constraint *constraint.Constraint
}

// FunctionDefinition is a named function introduced by "name(x) = body".
type FunctionDefinition struct {
	Name string
	Body string
}

var definitionPattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(\s*[xX]\s*\)\s*=(.*)$`)

// Parse parses a line of input.
func Parse(text string) *Expr {
	base, c := splitConstraint(text)
	if def, ok := parseDefinition(base); ok {
		return &Expr{Kind: Function, Body: def.Body, X: math.NaN(), Constraint: c}
	}
	return parseBase(base, c)
}

// ParseFunctionDefinition returns the function defined by text, if it has the
// form "name(x) = body". A trailing constraint is not part of the body.
func ParseFunctionDefinition(text string) (FunctionDefinition, bool) {
	base, _ := splitConstraint(text)
	return parseDefinition(base)
}

func parseDefinition(base string) (FunctionDefinition, bool) {
	m := definitionPattern.FindStringSubmatch(base)
	if m == nil {
		return FunctionDefinition{}, false
	}
	return FunctionDefinition{Name: m[1], Body: strings.TrimSpace(m[2])}, true
}

// Splits text into the base expression and the constraint in the last pair of
// braces.
func splitConstraint(text string) (string, *constraint.Constraint) {
	start := strings.LastIndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return text, nil
	}
	base := strings.TrimSpace(text[:start])
	if base == "" {
		base = text
	}
	return base, ParseConstraint(text[start+1 : end])
}

func parseBase(base string, c *constraint.Constraint) *Expr {
	trimmed := strings.TrimSpace(base)
	if eq := strings.IndexByte(trimmed, '='); eq >= 0 {
		left := strings.TrimSpace(trimmed[:eq])
		right := strings.TrimSpace(trimmed[eq+1:])
		switch {
		case left == "" || strings.EqualFold(left, "y"):
			return &Expr{Kind: Function, Body: right, X: math.NaN(), Constraint: c}
		case strings.EqualFold(left, "x"):
			x, ok := parseNumber(right)
			if !ok {
				x = math.NaN()
			}
			return &Expr{Kind: Vertical, X: x, Constraint: c}
		}
	}
	return &Expr{Kind: Function, Body: trimmed, X: math.NaN(), Constraint: c}
}

// ParseConstraint parses the text between the braces of a constraint. It
// returns nil if no clause could be used.
//
// Each clause mentions x or y, with an optional bound on each side: "5<x",
// "x<=10", "-1<y<1". When a clause mentions both x and y, it is treated as an
// x clause. Clauses that cannot be parsed are ignored.
func ParseConstraint(text string) *constraint.Constraint {
	c := &constraint.Constraint{}
	for _, raw := range strings.Split(text, "&&") {
		s := strings.ReplaceAll(raw, " ", "")
		switch {
		case strings.IndexByte(s, 'x') >= 0:
			applyClause(c, s, constraint.X)
		case strings.IndexByte(s, 'y') >= 0:
			applyClause(c, s, constraint.Y)
		}
	}
	if c.IsEmpty() {
		return nil
	}
	return c
}

func applyClause(c *constraint.Constraint, s string, axis constraint.Axis) {
	idx := strings.IndexByte(s, axis.String()[0])
	// "a < x" bounds x from below, "a > x" from above.
	if op, v, ok := leftBound(s[:idx]); ok {
		switch op {
		case "<", "<=":
			c.ApplyMin(v, op == "<=", axis)
		case ">", ">=":
			c.ApplyMax(v, op == ">=", axis)
		}
	}
	// "x < b" bounds x from above, "x > b" from below.
	if op, v, ok := rightBound(s[idx+1:]); ok {
		switch op {
		case "<", "<=":
			c.ApplyMax(v, op == "<=", axis)
		case ">", ">=":
			c.ApplyMin(v, op == ">=", axis)
		}
	}
}

var comparators = []string{"<=", ">=", "<", ">"}

// Parses "<num><op>", the part of a clause left of the variable.
func leftBound(s string) (string, float64, bool) {
	for _, op := range comparators {
		if strings.HasSuffix(s, op) {
			v, ok := parseNumber(s[:len(s)-len(op)])
			return op, v, ok
		}
	}
	return "", 0, false
}

// Parses "<op><num>", the part of a clause right of the variable.
func rightBound(s string) (string, float64, bool) {
	for _, op := range comparators {
		if strings.HasPrefix(s, op) {
			v, ok := parseNumber(s[len(op):])
			return op, v, ok
		}
	}
	return "", 0, false
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}
