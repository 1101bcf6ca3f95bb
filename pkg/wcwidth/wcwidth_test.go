package wcwidth

import (
	"testing"

	"src.graf.sh/pkg/tt"
)

var Args = tt.Args

func TestOf(t *testing.T) {
	tt.Test(t, tt.Fn("Of", Of), tt.Table{
		Args("\u0301").Rets(0), // Combining acute accent
		Args("a").Rets(1),
		Args("π").Rets(1),
		Args("好").Rets(2),
		Args("か").Rets(2),

		Args("x^2").Rets(3),
		Args("你好").Rets(4),
	})
}

func TestTrim(t *testing.T) {
	tt.Test(t, tt.Fn("Trim", Trim), tt.Table{
		Args("abc", 1).Rets("a"),
		Args("abc", 3).Rets("abc"),
		Args("abc", 4).Rets("abc"),

		Args("你好", 1).Rets(""),
		Args("你好", 3).Rets("你"),
		Args("你好", 4).Rets("你好"),
	})
}
