package expr

import "math"

// Builtin is a builtin function.
type Builtin struct {
	Arity int
	Fn    func(args []float64) float64
}

func unary(f func(float64) float64) Builtin {
	return Builtin{1, func(a []float64) float64 { return f(a[0]) }}
}

func binary(f func(float64, float64) float64) Builtin {
	return Builtin{2, func(a []float64) float64 { return f(a[0], a[1]) }}
}

// Builtins maps names to builtin functions.
var Builtins = map[string]Builtin{
	"abs":    unary(math.Abs),
	"acos":   unary(math.Acos),
	"asin":   unary(math.Asin),
	"atan":   unary(math.Atan),
	"cbrt":   unary(math.Cbrt),
	"ceil":   unary(math.Ceil),
	"cos":    unary(math.Cos),
	"cosh":   unary(math.Cosh),
	"exp":    unary(math.Exp),
	"expm1":  unary(math.Expm1),
	"floor":  unary(math.Floor),
	"log":    unary(math.Log),
	"log10":  unary(math.Log10),
	"log1p":  unary(math.Log1p),
	"log2":   unary(math.Log2),
	"signum": unary(signum),
	"sin":    unary(math.Sin),
	"sinh":   unary(math.Sinh),
	"sqrt":   unary(math.Sqrt),
	"tan":    unary(math.Tan),
	"tanh":   unary(math.Tanh),

	"atan2": binary(math.Atan2),
	"max":   binary(math.Max),
	"min":   binary(math.Min),
	"pow":   binary(math.Pow),
}

// Constants maps names to builtin constants.
var Constants = map[string]float64{
	"pi": math.Pi,
	"π":  math.Pi,
	"e":  math.E,
	"φ":  math.Phi,
}

func signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	// 0, -0 and NaN are returned unchanged.
	return x
}
