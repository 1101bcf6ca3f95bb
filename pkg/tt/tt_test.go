package tt

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// testT implements the T interface and is used to verify the Test function's
// interaction with T.
type testT []string

func (t *testT) Helper() {}

func (t *testT) Errorf(format string, args ...any) {
	*t = append(*t, fmt.Sprintf(format, args...))
}

// Simple functions to test.

func half(x float64) float64 {
	return x / 2
}

func divmod(x, y float64) (float64, float64) {
	return math.Floor(x / y), math.Mod(x, y)
}

func TestTTPass(t *testing.T) {
	var testT testT
	Test(&testT, Fn("divmod", divmod), Table{
		Args(7.0, 2.0).Rets(3.0, 1.0),
		Args(7.0, 0.0).Rets(Any, NaN),
	})
	if len(testT) > 0 {
		t.Errorf("Test errors when test should pass: %v", testT)
	}
}

func TestTTApprox(t *testing.T) {
	var testT testT
	Test(&testT, Fn("half", half), Table{
		Args(1.0).Rets(Approx(0.5, 0)),
		Args(1.0).Rets(Approx(0.51, 0.02)),
	})
	if len(testT) > 0 {
		t.Errorf("Test errors when test should pass: %v", testT)
	}
}

func TestTTFailDefaultFmtOneReturn(t *testing.T) {
	var testT testT
	Test(&testT,
		Fn("half", half),
		Table{Args(1.0).Rets(Approx(0.6, 0.01))},
	)
	assertOneError(t, testT, "half(1) returns (-Wanted +Actual):\n")
}

func TestTTFailDefaultFmtMultiReturn(t *testing.T) {
	var testT testT
	Test(&testT,
		Fn("divmod", divmod),
		Table{Args(7.0, 2.0).Rets(3.0, NaN)},
	)
	assertOneError(t, testT, "divmod(7, 2) returns (-Wanted +Actual):\n")
}

func TestTTFailCustomFmt(t *testing.T) {
	var testT testT
	Test(&testT,
		Fn("divmod", divmod).ArgsFmt("x = %v, y = %v").RetsFmt("(q = %v, r = %v)"),
		Table{Args(7.0, 2.0).Rets(3.0, 0.0)},
	)
	assertOneError(t, testT,
		"divmod(x = 7, y = 2) returns (-Wanted +Actual):\n")
}

func assertOneError(t *testing.T, testT testT, wantPrefix string) {
	t.Helper()
	switch len(testT) {
	case 0:
		t.Errorf("Test didn't error when it should have done so")
	case 1:
		if !strings.HasPrefix(testT[0], wantPrefix) {
			t.Errorf("Test wrote message:\nWanted: %q...\nActual: %q", wantPrefix, testT[0])
		}
	default:
		t.Errorf("Test wrote too many error messages")
	}
}
