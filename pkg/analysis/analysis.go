// Package analysis finds axis intercepts and intersections of plotted
// expressions by sampling them over a range of x.
//
// Crossings are detected as sign changes between consecutive samples and then
// refined by bisection. Everything is computed through an Evaluator; the
// package keeps no state between calls.
package analysis

import (
	"math"

	"src.graf.sh/pkg/parse"
)

const (
	// BisectionSteps is the number of halvings used to refine a crossing.
	BisectionSteps = 18
	// DefaultRadius is the default distance, in screen units, within which two
	// points are considered the same.
	DefaultRadius = 6.0
	// Tolerance is the default radius in math coordinates, used when there
	// is no projection. It is well above the error left by bisection over
	// sampling steps of a pixel.
	Tolerance = 1e-6
)

// Point is a point in math coordinates.
type Point struct{ X, Y float64 }

// Evaluator evaluates an expression body at x. It is satisfied by
// *eval.Evaler.
type Evaluator interface {
	Evaluate(text string, x float64) float64
}

// Projection maps math coordinates to screen coordinates.
type Projection interface {
	ToScreen(p Point) (sx, sy float64)
}

// Analyzer finds interesting points of plotted expressions.
type Analyzer struct {
	Eval Evaluator
	// Project is used to deduplicate points in screen space, so that results
	// do not depend on the zoom level. If nil, math coordinates are used
	// as-is.
	Project Projection
	// Radius is the deduplication distance in the units of Project, or of
	// math coordinates without one. When zero, DefaultRadius is used with a
	// projection and Tolerance without.
	Radius float64
}

// Valid returns whether v is neither NaN nor infinite.
func Valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValueAt evaluates a Function expression at x, honoring its constraint. It
// returns NaN for Vertical expressions, for x outside the constraint, and for
// y outside the constraint.
func (a *Analyzer) ValueAt(e *parse.Expr, x float64) float64 {
	if e.Kind != parse.Function || !e.Constraint.AllowsX(x) {
		return math.NaN()
	}
	y := a.Eval.Evaluate(e.Body, x)
	if !Valid(y) {
		return y
	}
	if !e.Constraint.AllowsY(y) {
		return math.NaN()
	}
	return y
}

// Points returns the axis intercepts of every expression and the
// intersections of every pair, within [left, right] sampled every step,
// with points closer than the radius merged.
func (a *Analyzer) Points(exprs []*parse.Expr, left, right, step float64) []Point {
	set := a.newSet()
	for i, ei := range exprs {
		a.intercepts(ei, left, right, step, set)
		for _, ej := range exprs[i+1:] {
			a.intersect(ei, ej, left, right, step, set)
		}
	}
	return set.points
}

// Intercepts returns where e crosses the axes within [left, right].
func (a *Analyzer) Intercepts(e *parse.Expr, left, right, step float64) []Point {
	set := a.newSet()
	a.intercepts(e, left, right, step, set)
	return set.points
}

// Intersect returns where e1 and e2 cross within [left, right].
func (a *Analyzer) Intersect(e1, e2 *parse.Expr, left, right, step float64) []Point {
	set := a.newSet()
	a.intersect(e1, e2, left, right, step, set)
	return set.points
}

func (a *Analyzer) intercepts(e *parse.Expr, left, right, step float64, set *pointSet) {
	if e.Kind == parse.Vertical {
		if math.IsNaN(e.X) || !e.Constraint.AllowsX(e.X) || e.X < left || e.X > right {
			return
		}
		if y := e.Constraint.ClampY(0); !math.IsNaN(y) {
			set.add(Point{e.X, y})
		}
		return
	}

	if left <= 0 && right >= 0 {
		if y := a.ValueAt(e, 0); Valid(y) {
			set.add(Point{0, y})
		}
	}

	f := func(x float64) float64 { return a.ValueAt(e, x) }
	scan(f, left, right, step, func(x0, x1 float64) {
		if x, ok := bisect(f, x0, x1); ok {
			set.add(Point{x, 0})
		}
	})
}

func (a *Analyzer) intersect(e1, e2 *parse.Expr, left, right, step float64, set *pointSet) {
	switch {
	case e1.Kind == parse.Vertical && e2.Kind == parse.Vertical:
		return
	case e1.Kind == parse.Vertical:
		a.intersectVertical(e1, e2, left, right, set)
		return
	case e2.Kind == parse.Vertical:
		a.intersectVertical(e2, e1, left, right, set)
		return
	}

	diff := func(x float64) float64 { return a.ValueAt(e1, x) - a.ValueAt(e2, x) }
	scan(diff, left, right, step, func(x0, x1 float64) {
		x, ok := bisect(diff, x0, x1)
		if !ok {
			return
		}
		if y := a.ValueAt(e1, x); Valid(y) {
			set.add(Point{x, y})
		}
	})
}

func (a *Analyzer) intersectVertical(v, f *parse.Expr, left, right float64, set *pointSet) {
	if math.IsNaN(v.X) || v.X < left || v.X > right || !v.Constraint.AllowsX(v.X) {
		return
	}
	y := a.ValueAt(f, v.X)
	if !Valid(y) || !v.Constraint.AllowsY(y) {
		return
	}
	set.add(Point{v.X, y})
}

// Samples f at left, left+step, ... up to right, and calls found with each
// pair of consecutive samples where f changes sign or the first sample is
// exactly zero. An invalid sample on either side of a pair never counts.
func scan(f func(float64) float64, left, right, step float64, found func(x0, x1 float64)) {
	if !(step > 0) || !(right >= left) {
		return
	}
	x0, y0 := left, f(left)
	for i := 1; ; i++ {
		x1 := left + float64(i)*step
		if x1 > right {
			break
		}
		y1 := f(x1)
		if Valid(y0) && Valid(y1) && (y0 == 0 || y0*y1 < 0) {
			found(x0, x1)
		}
		x0, y0 = x1, y1
	}
}

// Narrows a sign change of f within [a, b] by repeated halving, keeping the
// half whose ends still have opposite signs, and returns the midpoint of the
// final bracket.
func bisect(f func(float64) float64, a, b float64) (float64, bool) {
	fa, fb := f(a), f(b)
	if !Valid(fa) || !Valid(fb) {
		return 0, false
	}
	if fa == 0 {
		return a, true
	}
	lo, hi := a, b
	for k := 0; k < BisectionSteps; k++ {
		mid := (lo + hi) / 2
		fm := f(mid)
		if !Valid(fm) {
			return 0, false
		}
		if fa*fm <= 0 {
			hi = mid
		} else {
			lo, fa = mid, fm
		}
	}
	return (lo + hi) / 2, true
}

// An ordered set of points that ignores additions close to an existing
// member.
type pointSet struct {
	project func(Point) (float64, float64)
	radius  float64
	points  []Point
}

func (a *Analyzer) newSet() *pointSet {
	s := &pointSet{radius: a.Radius}
	if a.Project != nil {
		s.project = a.Project.ToScreen
		if s.radius == 0 {
			s.radius = DefaultRadius
		}
	} else {
		s.project = func(p Point) (float64, float64) { return p.X, p.Y }
		if s.radius == 0 {
			s.radius = Tolerance
		}
	}
	return s
}

func (s *pointSet) add(p Point) {
	px, py := s.project(p)
	for _, q := range s.points {
		qx, qy := s.project(q)
		if math.Hypot(px-qx, py-qy) <= s.radius {
			return
		}
	}
	s.points = append(s.points, p)
}
