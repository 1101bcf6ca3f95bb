// Package eval evaluates expression bodies at a given x.
//
// An Evaler holds the user-defined functions that bodies may call. Evaluation
// never fails: anything that cannot be computed, from an unknown name to a
// runaway recursive definition, evaluates to NaN.
package eval

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"src.graf.sh/pkg/expr"
	"src.graf.sh/pkg/integral"
	"src.graf.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[eval] ")

const (
	// MaxDepth is how deep evaluations may nest through user-defined
	// functions, derivatives and integrals.
	MaxDepth = 20
	// MaxIntegrals is the maximum number of int(...) calls in one expression.
	MaxIntegrals = 50
	// DefaultSubintervals is the default number of subintervals used for
	// Simpson's rule.
	DefaultSubintervals = 200
)

var errTooManyIntegrals = fmt.Errorf("more than %d integrals", MaxIntegrals)

// Evaler evaluates expressions. It is safe for concurrent use.
type Evaler struct {
	mu  sync.Mutex // serializes writers
	tbl atomic.Pointer[table]
}

// A snapshot of the user-defined functions, with everything derived from
// them. Replaced wholesale, never modified, except for the caches.
type table struct {
	fns          map[string]*function
	subintervals int

	compiled  sync.Map // string -> compiled
	integrals sync.Map // integral.Spec -> float64
}

type function struct {
	name string
	body string
	compiled
}

type compiled struct {
	node expr.Node
	err  error
}

// NewEvaler creates a new Evaler with no user-defined functions.
func NewEvaler() *Evaler {
	ev := &Evaler{}
	ev.tbl.Store(newTable(nil, DefaultSubintervals))
	return ev
}

func newTable(defs map[string]string, subintervals int) *table {
	tbl := &table{fns: make(map[string]*function, len(defs)), subintervals: subintervals}
	for name, body := range defs {
		fn := &function{name: name, body: body, compiled: compile("function "+name, body)}
		if fn.err != nil {
			logger.Printf("function %s does not compile: %v", name, fn.err)
		}
		tbl.fns[name] = fn
	}
	return tbl
}

func compile(name, text string) compiled {
	n, err := expr.Parse(name, text)
	if err == nil && expr.CountIntegrals(n) > MaxIntegrals {
		err = errTooManyIntegrals
	}
	return compiled{n, err}
}

// SetFunctions replaces all user-defined functions. Each entry maps a function
// name to a body in terms of x. Cached integral values are discarded.
func (ev *Evaler) SetFunctions(defs map[string]string) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.tbl.Store(newTable(defs, ev.tbl.Load().subintervals))
}

// Functions returns a copy of the current user-defined functions.
func (ev *Evaler) Functions() map[string]string {
	fns := ev.tbl.Load().fns
	defs := make(map[string]string, len(fns))
	for name, fn := range fns {
		defs[name] = fn.body
	}
	return defs
}

// FunctionNames returns the sorted names of the user-defined functions.
func (ev *Evaler) FunctionNames() []string {
	fns := ev.tbl.Load().fns
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetSubintervals sets the number of subintervals used for Simpson's rule.
// Odd numbers are rounded up; numbers below 2 restore the default. Cached
// integral values are discarded.
func (ev *Evaler) SetSubintervals(n int) {
	if n < 2 {
		n = DefaultSubintervals
	}
	n += n % 2
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.tbl.Store(newTable(ev.Functions(), n))
}

// Subintervals returns the number of subintervals used for Simpson's rule.
func (ev *Evaler) Subintervals() int {
	return ev.tbl.Load().subintervals
}

// Evaluate evaluates the expression text at x. It returns NaN if the text
// does not parse, refers to an unknown name, or cannot be computed at x.
func (ev *Evaler) Evaluate(text string, x float64) float64 {
	return frame{ev.tbl.Load(), 0}.evalText(text, x)
}

// Compile parses text the same way Evaluate does, and returns the syntax
// tree. The error is a *diag.Error when the text does not parse.
func (ev *Evaler) Compile(text string) (expr.Node, error) {
	c := ev.tbl.Load().compile(text)
	return c.node, c.err
}

func (tbl *table) compile(text string) compiled {
	if c, ok := tbl.compiled.Load(text); ok {
		return c.(compiled)
	}
	c := compile("expression", text)
	tbl.compiled.Store(text, c)
	return c
}

// A frame is one level of nested evaluation. Frames are values, so every
// chain of nested calls carries its own depth.
type frame struct {
	tbl   *table
	depth int
}

func (fr frame) inner() (frame, bool) {
	next := frame{fr.tbl, fr.depth + 1}
	return next, next.depth <= MaxDepth
}

func (fr frame) evalText(text string, x float64) float64 {
	c := fr.tbl.compile(text)
	if c.err != nil {
		return math.NaN()
	}
	return fr.eval(c.node, x)
}

func (fr frame) eval(n expr.Node, x float64) float64 {
	switch n := n.(type) {
	case *expr.Num:
		return n.Value
	case *expr.Var:
		if n.Name == expr.Variable {
			return x
		}
		if v, ok := expr.Constants[n.Name]; ok {
			return v
		}
		return math.NaN()
	case *expr.Unary:
		return -fr.eval(n.Operand, x)
	case *expr.Binary:
		return binary(n.Op, fr.eval(n.Left, x), fr.eval(n.Right, x))
	case *expr.Call:
		return fr.call(n, x)
	case *expr.Deriv:
		fn, ok := fr.tbl.fns[n.Name]
		if !ok {
			return math.NaN()
		}
		return fr.derivative(fn, fr.eval(n.Arg, x))
	case *expr.Integral:
		return fr.integral(n, x)
	}
	return math.NaN()
}

func binary(op byte, a, b float64) float64 {
	switch op {
	case '+':
		return a + b
	case '-':
		return a - b
	case '*':
		return a * b
	case '/':
		if b == 0 {
			return math.NaN()
		}
		return a / b
	case '%':
		return math.Mod(a, b)
	case '^':
		return math.Pow(a, b)
	}
	return math.NaN()
}

func (fr frame) call(n *expr.Call, x float64) float64 {
	if fn, ok := fr.tbl.fns[n.Name]; ok {
		if len(n.Args) != 1 {
			return math.NaN()
		}
		return fr.apply(fn, fr.eval(n.Args[0], x))
	}
	if fn, ok := fr.derivativeAlias(n.Name); ok {
		if len(n.Args) != 1 {
			return math.NaN()
		}
		return fr.derivative(fn, fr.eval(n.Args[0], x))
	}
	b, ok := expr.Builtins[n.Name]
	if !ok || len(n.Args) != b.Arity {
		return math.NaN()
	}
	args := make([]float64, len(n.Args))
	for i, arg := range n.Args {
		args[i] = fr.eval(arg, x)
	}
	return b.Fn(args)
}

// Resolves name_d to the user-defined function name, unless name_d is itself
// user-defined.
func (fr frame) derivativeAlias(name string) (*function, bool) {
	const suffix = "_d"
	if len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
		return nil, false
	}
	fn, ok := fr.tbl.fns[name[:len(name)-len(suffix)]]
	return fn, ok
}

// Evaluates a user-defined function at a.
func (fr frame) apply(fn *function, a float64) float64 {
	inner, ok := fr.inner()
	if !ok || fn.err != nil {
		return math.NaN()
	}
	return inner.eval(fn.node, a)
}

// Computes the derivative of a user-defined function at a by central
// difference.
func (fr frame) derivative(fn *function, a float64) float64 {
	h := 1e-5 * (1 + math.Abs(a))
	f1 := fr.apply(fn, a+h)
	f2 := fr.apply(fn, a-h)
	if !valid(f1) || !valid(f2) {
		return math.NaN()
	}
	return (f1 - f2) / (2 * h)
}

func (fr frame) integral(n *expr.Integral, x float64) float64 {
	constant := !integral.ReferencesVar(n.Spec.Lower, expr.Variable) &&
		!integral.ReferencesVar(n.Spec.Upper, expr.Variable)
	if constant {
		if v, ok := fr.tbl.integrals.Load(n.Spec); ok {
			return v.(float64)
		}
	}
	inner, ok := fr.inner()
	if !ok {
		return math.NaN()
	}
	a := inner.eval(n.Lower, x)
	b := inner.eval(n.Upper, x)
	v := simpson(func(t float64) float64 { return inner.eval(n.Integrand, t) },
		a, b, fr.tbl.subintervals)
	// A NaN may come from running out of depth rather than from the integral
	// itself, so it is not remembered.
	if constant && !math.IsNaN(v) {
		fr.tbl.integrals.Store(n.Spec, v)
	}
	return v
}

// Integrates f over [a, b] with the composite Simpson's rule using n
// subintervals, n even. The result is negated when a > b.
func simpson(f func(float64) float64, a, b float64, n int) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	if a == b {
		return 0
	}
	lo, hi := math.Min(a, b), math.Max(a, b)
	h := (hi - lo) / float64(n)
	sum := 0.0
	for i := 0; i <= n; i++ {
		y := f(lo + float64(i)*h)
		if math.IsNaN(y) {
			return math.NaN()
		}
		switch {
		case i == 0 || i == n:
			sum += y
		case i%2 == 1:
			sum += 4 * y
		default:
			sum += 2 * y
		}
	}
	result := sum * h / 3
	if a > b {
		return -result
	}
	return result
}

func valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsTooManyIntegrals returns whether err is the error Compile returns for an
// expression with more than MaxIntegrals integrals.
func IsTooManyIntegrals(err error) bool {
	return errors.Is(err, errTooManyIntegrals)
}
