package eval

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCheck(t *testing.T) {
	ev := NewEvaler()
	ev.SetFunctions(map[string]string{"f": "x^2"})
	tests := []struct {
		text string
		want []string
	}{
		{"f(x) + f'(x) + f_d(x) + sin(x) + pi", nil},
		{"int(x, 0, 1)", nil},
		{"x +", []string{"unexpected end of expression"}},
		{"y + z", []string{"undefined variable y", "undefined variable z"}},
		{"g(x) + sin(x, 2)", []string{"undefined function g", "sin takes 1 arguments, got 2"}},
		{"f(1, 2)", []string{"f takes 1 arguments, got 2"}},
		{"sin'(x)", []string{"sin is not a user-defined function"}},
	}
	for _, test := range tests {
		var got []string
		for _, err := range ev.Check("test", test.text) {
			got = append(got, err.Message)
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Check(%q) (-want +got):\n%s", test.text, diff)
		}
	}
}

func TestCheck_Ranges(t *testing.T) {
	ev := NewEvaler()
	errs := ev.Check("test", "1 + foo(x)")
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if r := errs[0].Range(); r.From != 4 || r.To != 10 {
		t.Errorf("error range = %v, want 4-10", r)
	}
}
