package parse

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"src.graf.sh/pkg/constraint"
	"src.graf.sh/pkg/tt"
)

func b(v float64, inclusive bool) *constraint.Bound {
	return &constraint.Bound{Value: v, Inclusive: inclusive}
}

var nan = math.NaN()

var parseTests = []struct {
	name string
	text string
	want *Expr
}{
	{
		name: "y = body",
		text: "y = x^2",
		want: &Expr{Kind: Function, Body: "x^2", X: nan},
	},
	{
		name: "bare body",
		text: "x^2",
		want: &Expr{Kind: Function, Body: "x^2", X: nan},
	},
	{
		name: "empty left-hand side",
		text: " = x^2",
		want: &Expr{Kind: Function, Body: "x^2", X: nan},
	},
	{
		name: "upper-case Y",
		text: "Y=sin(x)",
		want: &Expr{Kind: Function, Body: "sin(x)", X: nan},
	},
	{
		name: "vertical line",
		text: "x = 3",
		want: &Expr{Kind: Vertical, X: 3},
	},
	{
		name: "vertical line with non-numeric position",
		text: "X = abc",
		want: &Expr{Kind: Vertical, X: nan},
	},
	{
		name: "unknown left-hand side keeps whole text",
		text: "  z = x + 1 ",
		want: &Expr{Kind: Function, Body: "z = x + 1", X: nan},
	},
	{
		name: "function definition",
		text: "f(x) = sin(x) {0<=x<10}",
		want: &Expr{Kind: Function, Body: "sin(x)", X: nan, Constraint: &constraint.Constraint{
			XMin: b(0, true), XMax: b(10, false)}},
	},
	{
		name: "constraint on both axes",
		text: "x^2 {0<=x<10 && y>-5}",
		want: &Expr{Kind: Function, Body: "x^2", X: nan, Constraint: &constraint.Constraint{
			XMin: b(0, true), XMax: b(10, false), YMin: b(-5, false)}},
	},
	{
		name: "reversed comparisons",
		text: "x {5 > x && 1 >= y && x >= -2}",
		want: &Expr{Kind: Function, Body: "x", X: nan, Constraint: &constraint.Constraint{
			XMin: b(-2, true), XMax: b(5, false), YMax: b(1, true)}},
	},
	{
		name: "clauses tighten each other",
		text: "x {x < 10 && x <= 4 && x < 4}",
		want: &Expr{Kind: Function, Body: "x", X: nan, Constraint: &constraint.Constraint{
			XMax: b(4, true)}},
	},
	{
		name: "unparsable clauses are ignored",
		text: "x {x ~ 3 && y < foo}",
		want: &Expr{Kind: Function, Body: "x", X: nan},
	},
	{
		name: "clause naming both variables is an x clause",
		text: "x {0 < x < y}",
		want: &Expr{Kind: Function, Body: "x", X: nan, Constraint: &constraint.Constraint{
			XMin: b(0, false)}},
	},
	{
		name: "vertical line with y constraint",
		text: "x = -1.5 {y >= 0}",
		want: &Expr{Kind: Vertical, X: -1.5, Constraint: &constraint.Constraint{
			YMin: b(0, true)}},
	},
	{
		name: "only the last braces are a constraint",
		text: "x {x > 1} {x < 2}",
		want: &Expr{Kind: Function, Body: "x {x > 1}", X: nan, Constraint: &constraint.Constraint{
			XMax: b(2, false)}},
	},
	{
		name: "braces in the wrong order are not a constraint",
		text: "x } {",
		want: &Expr{Kind: Function, Body: "x } {", X: nan},
	},
	{
		name: "constraint with empty base falls back to whole text",
		text: "{x > 0}",
		want: &Expr{Kind: Function, Body: "{x > 0}", X: nan, Constraint: &constraint.Constraint{
			XMin: b(0, false)}},
	},
}

func TestParse(t *testing.T) {
	for _, test := range parseTests {
		t.Run(test.name, func(t *testing.T) {
			got := Parse(test.text)
			if diff := cmp.Diff(test.want, got, cmpopts.EquateNaNs()); diff != "" {
				t.Errorf("Parse(%q) (-want +got):\n%s", test.text, diff)
			}
		})
	}
}

func TestParse_UndefinedVerticalNeverInRange(t *testing.T) {
	e := Parse("x = abc")
	if e.X >= -1e300 && e.X <= 1e300 {
		t.Errorf("undefined vertical x %v is inside a range", e.X)
	}
}

func TestParseFunctionDefinition(t *testing.T) {
	tt.Test(t, tt.Fn("ParseFunctionDefinition", ParseFunctionDefinition), tt.Table{
		tt.Args("f(x) = x^2").Rets(FunctionDefinition{"f", "x^2"}, true),
		tt.Args("  my_fn2 ( X )=sin(x) + 1").Rets(FunctionDefinition{"my_fn2", "sin(x) + 1"}, true),
		tt.Args("g(x) = int(x, 0, 1) {x > 0}").Rets(FunctionDefinition{"g", "int(x, 0, 1)"}, true),
		tt.Args("f(y) = y^2").Rets(FunctionDefinition{}, false),
		tt.Args("2f(x) = x").Rets(FunctionDefinition{}, false),
		tt.Args("y = x").Rets(FunctionDefinition{}, false),
		tt.Args("f(x)").Rets(FunctionDefinition{}, false),
	})
}

func TestKindString(t *testing.T) {
	if Function.String() != "function" || Vertical.String() != "vertical" {
		t.Errorf("unexpected Kind strings %q, %q", Function, Vertical)
	}
}
