// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.graf.sh/pkg/store/storedefs"
)

var exprs = []string{"y = x", "f(x) = x^2 {x > 0}", "x = 3"}

// TestExpr tests the expression list functionality of a Store.
func TestExpr(t *testing.T, store storedefs.Store) {
	for i, text := range exprs {
		seq, err := store.AddExpr(text)
		if err != nil || seq != i+1 {
			t.Errorf("store.AddExpr(%q) -> %v, %v, want %v, nil", text, seq, err, i+1)
		}
	}

	text, err := store.Expr(2)
	if text != exprs[1] || err != nil {
		t.Errorf("store.Expr(2) -> %q, %v, want %q, nil", text, err, exprs[1])
	}
	if _, err := store.Expr(10); !matchErr(err, storedefs.ErrNoMatchingExpr) {
		t.Errorf("store.Expr(10) -> error %v, want %v", err, storedefs.ErrNoMatchingExpr)
	}

	if err := store.DelExpr(2); err != nil {
		t.Errorf("store.DelExpr(2) -> %v", err)
	}
	if err := store.DelExpr(2); !matchErr(err, storedefs.ErrNoMatchingExpr) {
		t.Errorf("second store.DelExpr(2) -> %v, want %v", err, storedefs.ErrNoMatchingExpr)
	}
	got, err := store.Exprs()
	want := []storedefs.Expr{{Text: exprs[0], Seq: 1}, {Text: exprs[2], Seq: 3}}
	if err != nil {
		t.Errorf("store.Exprs() -> error %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("store.Exprs() (-want +got):\n%s", diff)
	}

	if err := store.ClearExprs(); err != nil {
		t.Errorf("store.ClearExprs() -> %v", err)
	}
	if got, _ := store.Exprs(); len(got) != 0 {
		t.Errorf("store.Exprs() after clear -> %v, want none", got)
	}
	if seq, _ := store.AddExpr("y = 1"); seq != 4 {
		t.Errorf("store.AddExpr after clear -> %v, want 4", seq)
	}
}

// TestView tests the viewport parameter functionality of a Store.
func TestView(t *testing.T, store storedefs.Store) {
	if _, err := store.View("scale"); !matchErr(err, storedefs.ErrNoView) {
		t.Errorf("store.View on empty store -> error %v, want %v", err, storedefs.ErrNoView)
	}
	for _, v := range []float64{50, 0.2, -1.25e-7} {
		if err := store.SetView("scale", v); err != nil {
			t.Errorf("store.SetView(scale, %v) -> %v", v, err)
		}
		if got, err := store.View("scale"); got != v || err != nil {
			t.Errorf("store.View(scale) -> %v, %v, want %v, nil", got, err, v)
		}
	}
}

func matchErr(e1, e2 error) bool {
	return (e1 == nil && e2 == nil) || (e1 != nil && e2 != nil && e1.Error() == e2.Error())
}
