// Package constraint implements axis-aligned domain and range restrictions
// attached to plotted expressions.
package constraint

import (
	"math"
	"strconv"
	"strings"
)

// Axis names the axis a bound applies to.
type Axis int

// Possible values of Axis.
const (
	X Axis = iota
	Y
)

func (a Axis) String() string {
	if a == Y {
		return "y"
	}
	return "x"
}

// Bound is one end of an interval. A nil *Bound means the interval is
// unbounded on that end.
type Bound struct {
	Value     float64
	Inclusive bool
}

// Constraint restricts x and y to intervals whose ends are independently open
// or closed. The zero value allows everything; so does a nil *Constraint.
//
// Bounds only ever tighten: once a bound is set, later calls for the same
// bound can raise a minimum or lower a maximum, and turn an exclusive bound
// into an inclusive one at the same value, but never loosen it.
type Constraint struct {
	XMin, XMax, YMin, YMax *Bound
}

// IsEmpty returns whether no bound has been set.
func (c *Constraint) IsEmpty() bool {
	return c == nil || (c.XMin == nil && c.XMax == nil && c.YMin == nil && c.YMax == nil)
}

// ApplyMin tightens the minimum bound of the given axis.
func (c *Constraint) ApplyMin(v float64, inclusive bool, axis Axis) {
	p := &c.XMin
	if axis == Y {
		p = &c.YMin
	}
	if *p == nil || v > (*p).Value || (v == (*p).Value && inclusive) {
		*p = &Bound{v, inclusive}
	}
}

// ApplyMax tightens the maximum bound of the given axis.
func (c *Constraint) ApplyMax(v float64, inclusive bool, axis Axis) {
	p := &c.XMax
	if axis == Y {
		p = &c.YMax
	}
	if *p == nil || v < (*p).Value || (v == (*p).Value && inclusive) {
		*p = &Bound{v, inclusive}
	}
}

// AllowsX returns whether x lies within the x interval.
func (c *Constraint) AllowsX(x float64) bool {
	if c == nil {
		return true
	}
	return allows(c.XMin, c.XMax, x)
}

// AllowsY returns whether y lies within the y interval.
func (c *Constraint) AllowsY(y float64) bool {
	if c == nil {
		return true
	}
	return allows(c.YMin, c.YMax, y)
}

func allows(min, max *Bound, v float64) bool {
	if min != nil && (v < min.Value || (v == min.Value && !min.Inclusive)) {
		return false
	}
	if max != nil && (v > max.Value || (v == max.Value && !max.Inclusive)) {
		return false
	}
	return true
}

// ClampY moves y onto the nearest y bound when it falls outside the y
// interval. A y sitting exactly on an exclusive bound is moved onto it too,
// which makes the result a boundary value rather than a member.
func (c *Constraint) ClampY(y float64) float64 {
	if c == nil {
		return y
	}
	if b := c.YMin; b != nil && (y < b.Value || (y == b.Value && !b.Inclusive)) {
		y = b.Value
	}
	if b := c.YMax; b != nil && (y > b.Value || (y == b.Value && !b.Inclusive)) {
		y = b.Value
	}
	return y
}

// YSpan intersects [bottom, top] with the y interval. Exclusive bounds are
// nudged inward by one ulp. It returns ok=false when the result is empty.
func (c *Constraint) YSpan(bottom, top float64) (lo, hi float64, ok bool) {
	lo, hi = bottom, top
	if c != nil {
		if b := c.YMin; b != nil {
			lo = math.Max(lo, b.Value)
			if !b.Inclusive {
				lo = math.Nextafter(lo, math.Inf(1))
			}
		}
		if b := c.YMax; b != nil {
			hi = math.Min(hi, b.Value)
			if !b.Inclusive {
				hi = math.Nextafter(hi, math.Inf(-1))
			}
		}
	}
	return lo, hi, lo <= hi
}

// String renders the constraint in the same clause syntax the parser
// accepts, for example "0<=x<10 && y>-5". An empty constraint renders as "".
func (c *Constraint) String() string {
	if c.IsEmpty() {
		return ""
	}
	var clauses []string
	if s := clause(c.XMin, c.XMax, X); s != "" {
		clauses = append(clauses, s)
	}
	if s := clause(c.YMin, c.YMax, Y); s != "" {
		clauses = append(clauses, s)
	}
	return strings.Join(clauses, " && ")
}

func clause(min, max *Bound, axis Axis) string {
	var sb strings.Builder
	if min != nil {
		sb.WriteString(formatFloat(min.Value))
		sb.WriteString(op("<", min.Inclusive))
	}
	if min != nil || max != nil {
		sb.WriteString(axis.String())
	}
	if max != nil {
		sb.WriteString(op("<", max.Inclusive))
		sb.WriteString(formatFloat(max.Value))
	}
	return sb.String()
}

func op(base string, inclusive bool) string {
	if inclusive {
		return base + "="
	}
	return base
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
