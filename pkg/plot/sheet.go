// Package plot keeps the list of expressions being plotted and produces the
// geometry a renderer needs: curve segments, vertical lines, integral areas
// and the points of interest.
package plot

import (
	"math"
	"sort"

	"src.graf.sh/pkg/analysis"
	"src.graf.sh/pkg/eval"
	"src.graf.sh/pkg/integral"
	"src.graf.sh/pkg/logutil"
	"src.graf.sh/pkg/parse"
	"src.graf.sh/pkg/view"
)

var logger = logutil.GetLogger("[plot] ")

// Segment is a run of consecutive valid samples of a curve.
type Segment []analysis.Point

// Area is the shaded region of an integral within the window. Each polygon
// starts and ends on the x axis and follows the integrand in between.
type Area struct {
	Spec     integral.Spec
	Polygons []Segment
}

// Label is a shown integral value, placed where the user asked for it.
type Label struct {
	Key   string
	At    analysis.Point
	Value float64
}

// Sheet is an ordered list of expressions plotted together. It is not safe
// for concurrent use.
type Sheet struct {
	Eval *eval.Evaler
	View *view.Viewport
	// Radius is the distance in pixels within which points are merged and
	// selections are matched.
	Radius float64

	lines    []string
	parsed   map[string]*parse.Expr
	labels   map[string]Label
	selected []analysis.Point
}

// NewSheet creates an empty sheet.
func NewSheet(ev *eval.Evaler, v *view.Viewport) *Sheet {
	return &Sheet{Eval: ev, View: v, Radius: analysis.DefaultRadius,
		parsed: map[string]*parse.Expr{}, labels: map[string]Label{}}
}

// SetExpressions replaces the expression list. Function definitions among
// the lines are handed to the evaluator, and the parse cache and integral
// labels are dropped, since their values may have changed.
func (s *Sheet) SetExpressions(lines []string) {
	s.lines = append([]string(nil), lines...)
	s.parsed = map[string]*parse.Expr{}
	s.labels = map[string]Label{}
	defs := map[string]string{}
	for _, line := range s.lines {
		if def, ok := parse.ParseFunctionDefinition(line); ok {
			defs[def.Name] = def.Body
		}
	}
	s.Eval.SetFunctions(defs)
	logger.Printf("%d expressions, %d definitions", len(s.lines), len(defs))
}

// Expressions returns a copy of the expression list.
func (s *Sheet) Expressions() []string {
	return append([]string(nil), s.lines...)
}

// Parsed returns the parsed form of line, parsing it on first use.
func (s *Sheet) Parsed(line string) *parse.Expr {
	if e, ok := s.parsed[line]; ok {
		return e
	}
	e := parse.Parse(line)
	s.parsed[line] = e
	return e
}

func (s *Sheet) all() []*parse.Expr {
	es := make([]*parse.Expr, len(s.lines))
	for i, line := range s.lines {
		es[i] = s.Parsed(line)
	}
	return es
}

// Analyzer returns an analyzer that deduplicates in the sheet's screen space.
func (s *Sheet) Analyzer() *analysis.Analyzer {
	return &analysis.Analyzer{Eval: s.Eval, Project: s.View, Radius: s.Radius}
}

// Points returns the intercepts and intersections of all expressions within
// the window.
func (s *Sheet) Points() []analysis.Point {
	left, right, _, _ := s.View.Bounds()
	return s.Analyzer().Points(s.all(), left, right, s.View.Step())
}

// Sample samples the i-th expression once per pixel across the window. A
// vertical line yields at most one segment of two points.
func (s *Sheet) Sample(i int) []Segment {
	e := s.Parsed(s.lines[i])
	if e.Kind == parse.Vertical {
		x, lo, hi, ok := s.VerticalSpan(e)
		if !ok {
			return nil
		}
		return []Segment{{{X: x, Y: lo}, {X: x, Y: hi}}}
	}

	left, right, _, _ := s.View.Bounds()
	step := s.View.Step()
	a := s.Analyzer()
	var segs []Segment
	var cur Segment
	for k := 0; ; k++ {
		x := left + float64(k)*step
		if x > right {
			break
		}
		y := a.ValueAt(e, x)
		if !analysis.Valid(y) {
			if len(cur) > 0 {
				segs = append(segs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, analysis.Point{X: x, Y: y})
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

// VerticalSpan returns the visible extent of a vertical line, clipped to its
// y constraint. It returns ok=false when nothing of the line is visible.
func (s *Sheet) VerticalSpan(e *parse.Expr) (x, lo, hi float64, ok bool) {
	if e.Kind != parse.Vertical || math.IsNaN(e.X) || !e.Constraint.AllowsX(e.X) {
		return 0, 0, 0, false
	}
	left, right, bottom, top := s.View.Bounds()
	if e.X < left || e.X > right {
		return 0, 0, 0, false
	}
	lo, hi, ok = e.Constraint.YSpan(bottom, top)
	return e.X, lo, hi, ok
}

// IntegralAreas returns the visible area of every integral in every
// expression. The bounds of an integral are evaluated at x=0; integrals with
// a NaN bound or equal bounds have no area.
func (s *Sheet) IntegralAreas() []Area {
	left, right, _, _ := s.View.Bounds()
	var areas []Area
	for _, e := range s.all() {
		if e.Kind != parse.Function {
			continue
		}
		for _, spec := range integral.Extract(e.Body) {
			if polys := s.area(spec, left, right); len(polys) > 0 {
				areas = append(areas, Area{spec, polys})
			}
		}
	}
	return areas
}

func (s *Sheet) area(spec integral.Spec, left, right float64) []Segment {
	a := s.Eval.Evaluate(spec.Lower, 0)
	b := s.Eval.Evaluate(spec.Upper, 0)
	if math.IsNaN(a) || math.IsNaN(b) || a == b {
		return nil
	}
	start, end := math.Min(a, b), math.Max(a, b)
	if end < left || start > right {
		return nil
	}
	start, end = math.Max(start, left), math.Min(end, right)
	samples := int(math.Max(2, s.View.Width))
	step := (end - start) / float64(samples)
	if !(step > 0) {
		return nil
	}

	var polys []Segment
	var cur Segment
	closeAt := func(x float64) {
		polys = append(polys, append(cur, analysis.Point{X: x}))
		cur = nil
	}
	for i := 0; i <= samples; i++ {
		x := start + float64(i)*step
		y := s.Eval.Evaluate(spec.Integrand, x)
		if !analysis.Valid(y) {
			if cur != nil {
				closeAt(cur[len(cur)-1].X)
			}
			continue
		}
		if cur == nil {
			cur = Segment{{X: x}}
		}
		cur = append(cur, analysis.Point{X: x, Y: y})
	}
	if cur != nil {
		closeAt(end)
	}
	return polys
}

// AreaAt returns the integral area containing p, if any.
func (s *Sheet) AreaAt(p analysis.Point) (Area, bool) {
	for _, area := range s.IntegralAreas() {
		for _, poly := range area.Polygons {
			if contains(poly, p) {
				return area, true
			}
		}
	}
	return Area{}, false
}

// Even-odd rule.
func contains(poly Segment, p analysis.Point) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// ToggleLabel shows the value of spec at p, or hides it if it is already
// shown. It returns whether the label is now shown.
func (s *Sheet) ToggleLabel(spec integral.Spec, p analysis.Point) bool {
	key := spec.Key()
	if _, ok := s.labels[key]; ok {
		delete(s.labels, key)
		return false
	}
	s.labels[key] = Label{key, p, s.Eval.Evaluate(spec.String(), 0)}
	return true
}

// Labels returns the shown labels ordered by key.
func (s *Sheet) Labels() []Label {
	keys := make([]string, 0, len(s.labels))
	for k := range s.labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	labels := make([]Label, len(keys))
	for i, k := range keys {
		labels[i] = s.labels[k]
	}
	return labels
}

// ToggleSelection selects the point of interest nearest to p on screen, or
// deselects it if it is already selected. It returns false when no point of
// interest lies within the radius of p.
func (s *Sheet) ToggleSelection(p analysis.Point) bool {
	px, py := s.View.ToScreen(p)
	near := func(q analysis.Point) bool {
		qx, qy := s.View.ToScreen(q)
		return math.Hypot(px-qx, py-qy) <= s.Radius
	}
	for i, q := range s.selected {
		if near(q) {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return true
		}
	}
	for _, q := range s.Points() {
		if near(q) {
			s.selected = append(s.selected, q)
			return true
		}
	}
	return false
}

// Selected returns the selected points in selection order.
func (s *Sheet) Selected() []analysis.Point {
	return append([]analysis.Point(nil), s.selected...)
}

// ClearSelection drops all selected points and integral labels.
func (s *Sheet) ClearSelection() {
	s.selected = nil
	s.labels = map[string]Label{}
}
