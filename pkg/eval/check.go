package eval

import (
	"fmt"

	"src.graf.sh/pkg/diag"
	"src.graf.sh/pkg/expr"
)

// Check compiles text and reports the problems that would make it evaluate to
// NaN everywhere: parse errors, unknown names and calls with the wrong number
// of arguments. The name is used in the contexts of the returned errors.
func (ev *Evaler) Check(name, text string) []*diag.Error {
	n, err := expr.Parse(name, text)
	if err != nil {
		return []*diag.Error{err.(*diag.Error)}
	}
	fr := frame{ev.tbl.Load(), 0}
	var errs []*diag.Error
	report := func(r diag.Ranger, format string, args ...any) {
		errs = append(errs, &diag.Error{
			Type:    "compile error",
			Message: fmt.Sprintf(format, args...),
			Context: *diag.NewContext(name, text, r),
		})
	}
	if count := expr.CountIntegrals(n); count > MaxIntegrals {
		report(n, "%d integrals, at most %d allowed", count, MaxIntegrals)
	}
	expr.Walk(n, func(n expr.Node) bool {
		switch n := n.(type) {
		case *expr.Var:
			if _, ok := expr.Constants[n.Name]; !ok && n.Name != expr.Variable {
				report(n, "undefined variable %s", n.Name)
			}
		case *expr.Call:
			arity := -1
			if _, ok := fr.tbl.fns[n.Name]; ok {
				arity = 1
			} else if _, ok := fr.derivativeAlias(n.Name); ok {
				arity = 1
			} else if b, ok := expr.Builtins[n.Name]; ok {
				arity = b.Arity
			}
			switch {
			case arity < 0:
				report(n, "undefined function %s", n.Name)
			case arity != len(n.Args):
				report(n, "%s takes %d arguments, got %d", n.Name, arity, len(n.Args))
			}
		case *expr.Deriv:
			if _, ok := fr.tbl.fns[n.Name]; !ok {
				report(n, "%s is not a user-defined function", n.Name)
			}
		}
		return true
	})
	return errs
}
