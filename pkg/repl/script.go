package repl

import (
	"strconv"

	"src.graf.sh/pkg/prog"
)

// Answers the queries requested by flags, in the order -eval, -points,
// -integrals.
func batch(s *Session, f *prog.Flags) error {
	if f.Eval != "" {
		x, err := strconv.ParseFloat(f.Eval, 64)
		if err != nil {
			return prog.BadUsage("-eval needs a number, got " + strconv.Quote(f.Eval))
		}
		s.evalAt(x)
	}
	if f.Points {
		s.points(nil)
	}
	if f.Integrals {
		s.integrals(nil)
	}
	return nil
}
