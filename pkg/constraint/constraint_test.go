package constraint

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.graf.sh/pkg/tt"
)

func TestApplyMin_OnlyTightens(t *testing.T) {
	var c Constraint
	c.ApplyMin(1, false, X)
	c.ApplyMin(0, true, X)
	c.ApplyMin(3, false, X)
	c.ApplyMin(2, true, X)
	if diff := cmp.Diff(&Bound{3, false}, c.XMin); diff != "" {
		t.Errorf("XMin (-want +got):\n%s", diff)
	}
}

func TestApplyMax_OnlyTightens(t *testing.T) {
	var c Constraint
	c.ApplyMax(10, true, Y)
	c.ApplyMax(12, false, Y)
	c.ApplyMax(4, false, Y)
	c.ApplyMax(7, true, Y)
	if diff := cmp.Diff(&Bound{4, false}, c.YMax); diff != "" {
		t.Errorf("YMax (-want +got):\n%s", diff)
	}
	if c.XMax != nil || c.XMin != nil || c.YMin != nil {
		t.Errorf("other bounds changed: %+v", c)
	}
}

func TestApply_TieFavorsInclusive(t *testing.T) {
	var c Constraint
	c.ApplyMin(5, false, X)
	c.ApplyMin(5, true, X)
	c.ApplyMin(5, false, X)
	c.ApplyMax(9, true, X)
	c.ApplyMax(9, false, X)
	want := Constraint{XMin: &Bound{5, true}, XMax: &Bound{9, true}}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("constraint (-want +got):\n%s", diff)
	}
}

func TestApply_MatchesTightestOfSequence(t *testing.T) {
	mins := []float64{-3, 4, 2, 4, 7.5, -10, 7.5}
	var c Constraint
	best := math.Inf(-1)
	for _, v := range mins {
		c.ApplyMin(v, false, Y)
		best = math.Max(best, v)
	}
	if c.YMin.Value != best {
		t.Errorf("YMin = %v, want %v", c.YMin.Value, best)
	}
}

func TestIsEmpty(t *testing.T) {
	var nilC *Constraint
	if !nilC.IsEmpty() {
		t.Errorf("nil constraint is not empty")
	}
	c := &Constraint{}
	if !c.IsEmpty() {
		t.Errorf("zero constraint is not empty")
	}
	c.ApplyMax(1, true, Y)
	if c.IsEmpty() {
		t.Errorf("constraint with YMax is empty")
	}
}

func inclusiveMax5() *Constraint {
	c := &Constraint{}
	c.ApplyMax(5, true, X)
	return c
}

func exclusiveMax5() *Constraint {
	c := &Constraint{}
	c.ApplyMax(5, false, X)
	return c
}

func TestAllowsX(t *testing.T) {
	tt.Test(t, tt.Fn("AllowsX", (*Constraint).AllowsX), tt.Table{
		tt.Args(inclusiveMax5(), 5.0).Rets(true),
		tt.Args(inclusiveMax5(), 5.0000001).Rets(false),
		tt.Args(inclusiveMax5(), -1e9).Rets(true),
		tt.Args(exclusiveMax5(), 5.0).Rets(false),
		tt.Args(exclusiveMax5(), 4.999).Rets(true),
		tt.Args((*Constraint)(nil), 1e300).Rets(true),
		tt.Args(&Constraint{XMin: &Bound{0, false}}, 0.0).Rets(false),
		tt.Args(&Constraint{XMin: &Bound{0, true}}, 0.0).Rets(true),
		tt.Args(&Constraint{XMin: &Bound{0, true}}, math.NaN()).Rets(true),
	})
}

func TestAllowsY(t *testing.T) {
	c := &Constraint{YMin: &Bound{-5, false}, YMax: &Bound{5, true}, XMax: &Bound{0, false}}
	tt.Test(t, tt.Fn("AllowsY", c.AllowsY), tt.Table{
		tt.Args(-5.0).Rets(false),
		tt.Args(-4.0).Rets(true),
		tt.Args(5.0).Rets(true),
		tt.Args(6.0).Rets(false),
	})
}

func TestClampY(t *testing.T) {
	c := &Constraint{YMin: &Bound{1, false}, YMax: &Bound{3, true}}
	tt.Test(t, tt.Fn("ClampY", c.ClampY), tt.Table{
		tt.Args(0.0).Rets(1.0),
		tt.Args(1.0).Rets(1.0),
		tt.Args(2.0).Rets(2.0),
		tt.Args(4.0).Rets(3.0),
	})
}

func TestYSpan(t *testing.T) {
	c := &Constraint{YMin: &Bound{1, true}, YMax: &Bound{3, false}}
	lo, hi, ok := c.YSpan(-10, 10)
	if !ok || lo != 1 || hi != math.Nextafter(3, 0) {
		t.Errorf("YSpan = (%v, %v, %v)", lo, hi, ok)
	}
	_, _, ok = c.YSpan(5, 10)
	if ok {
		t.Errorf("YSpan outside constraint reported ok")
	}
	lo, hi, ok = (*Constraint)(nil).YSpan(-1, 1)
	if !ok || lo != -1 || hi != 1 {
		t.Errorf("nil YSpan = (%v, %v, %v)", lo, hi, ok)
	}
}

func TestString(t *testing.T) {
	c := &Constraint{}
	c.ApplyMin(0, true, X)
	c.ApplyMax(10, false, X)
	c.ApplyMin(-5, false, Y)
	if got := c.String(); got != "0<=x<10 && -5<y" {
		t.Errorf("String() = %q", got)
	}
	if got := (&Constraint{}).String(); got != "" {
		t.Errorf("empty String() = %q", got)
	}
}
