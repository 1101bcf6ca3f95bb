package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"src.graf.sh/pkg/diag"
	"src.graf.sh/pkg/integral"
)

// Variable is the name of the free variable.
const Variable = "x"

const integralName = "int"

// Parse parses the source text of an expression body. The name is used in
// error messages. The returned error, if any, is a *diag.Error.
//
// Operators in increasing order of precedence are: + and -; *, / and %,
// including implicit multiplication ("2x", "(x+1)(x-1)"); prefix - and +;
// and the right-associative ^. Hence -2^2 is -4 and 2^3^2 is 512.
func Parse(name, src string) (Node, error) {
	ps := &parser{name: name, src: src}
	n := ps.sum()
	ps.skipSpace()
	if ps.err == nil && ps.pos < len(ps.src) {
		r, _ := utf8.DecodeRuneInString(ps.src[ps.pos:])
		ps.errorf(ps.pos, "unexpected %q", r)
	}
	if ps.err != nil {
		return nil, ps.err
	}
	return n, nil
}

type parser struct {
	name string
	src  string
	pos  int
	err  *diag.Error
}

const eof rune = -1

func (ps *parser) peek() rune {
	if ps.pos >= len(ps.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(ps.src[ps.pos:])
	return r
}

func (ps *parser) skipSpace() {
	for ps.pos < len(ps.src) && unicode.IsSpace(ps.peek()) {
		_, size := utf8.DecodeRuneInString(ps.src[ps.pos:])
		ps.pos += size
	}
}

// Records the first error. Parsing functions keep going after an error, but
// their results are discarded.
func (ps *parser) errorf(from int, format string, args ...any) {
	if ps.err != nil {
		return
	}
	to := from
	if to < len(ps.src) {
		_, size := utf8.DecodeRuneInString(ps.src[to:])
		to += size
	}
	ps.err = &diag.Error{
		Type:    "parse error",
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(ps.name, ps.src, diag.Ranging{From: from, To: to}),
	}
}

func (ps *parser) sum() Node {
	left := ps.product()
	for ps.err == nil {
		ps.skipSpace()
		op := ps.peek()
		if op != '+' && op != '-' {
			break
		}
		ps.pos++
		right := ps.product()
		left = &Binary{diag.MixedRanging(left, right), byte(op), left, right}
	}
	return left
}

func (ps *parser) product() Node {
	left := ps.unary()
	for ps.err == nil {
		ps.skipSpace()
		var right Node
		op := ps.peek()
		switch {
		case op == '*' || op == '/' || op == '%':
			ps.pos++
			right = ps.unary()
		case startsOperand(op):
			op = '*'
			right = ps.power()
		default:
			return left
		}
		left = &Binary{diag.MixedRanging(left, right), byte(op), left, right}
	}
	return left
}

func startsOperand(r rune) bool {
	return r == '(' || r == '.' || isIdentStart(r) || ('0' <= r && r <= '9')
}

func (ps *parser) unary() Node {
	ps.skipSpace()
	begin := ps.pos
	switch ps.peek() {
	case '-':
		ps.pos++
		operand := ps.unary()
		return &Unary{diag.Ranging{From: begin, To: operand.Range().To}, '-', operand}
	case '+':
		ps.pos++
		return ps.unary()
	}
	return ps.power()
}

func (ps *parser) power() Node {
	base := ps.primary()
	ps.skipSpace()
	if ps.err != nil || ps.peek() != '^' {
		return base
	}
	ps.pos++
	exp := ps.unary()
	return &Binary{diag.MixedRanging(base, exp), '^', base, exp}
}

func (ps *parser) primary() Node {
	ps.skipSpace()
	begin := ps.pos
	r := ps.peek()
	switch {
	case r == '(':
		ps.pos++
		inner := ps.sum()
		ps.expect(')')
		return inner
	case r == '.' || ('0' <= r && r <= '9'):
		return ps.number()
	case isIdentStart(r):
		return ps.named()
	case r == eof:
		ps.errorf(begin, "unexpected end of expression")
	default:
		ps.errorf(begin, "unexpected %q", r)
	}
	return &Num{diag.PointRanging(begin), 0}
}

func (ps *parser) expect(r rune) {
	ps.skipSpace()
	if ps.err != nil {
		return
	}
	if ps.peek() != r {
		if ps.peek() == eof {
			ps.errorf(ps.pos, "missing %q", r)
		} else {
			ps.errorf(ps.pos, "expected %q, found %q", r, ps.peek())
		}
		return
	}
	ps.pos++
}

func (ps *parser) number() Node {
	begin := ps.pos
	for ps.pos < len(ps.src) && (isDigit(ps.src[ps.pos]) || ps.src[ps.pos] == '.') {
		ps.pos++
	}
	// An exponent needs at least one digit; otherwise the "e" is left for
	// implicit multiplication, as in "2e".
	if ps.pos < len(ps.src) && (ps.src[ps.pos] == 'e' || ps.src[ps.pos] == 'E') {
		i := ps.pos + 1
		if i < len(ps.src) && (ps.src[i] == '+' || ps.src[i] == '-') {
			i++
		}
		if i < len(ps.src) && isDigit(ps.src[i]) {
			for i < len(ps.src) && isDigit(ps.src[i]) {
				i++
			}
			ps.pos = i
		}
	}
	text := ps.src[begin:ps.pos]
	v, err := strconv.ParseFloat(text, 64)
	// Out-of-range literals become ±Inf or 0.
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		ps.errorf(begin, "bad number %q", text)
	}
	return &Num{diag.Ranging{From: begin, To: ps.pos}, v}
}

// Parses an identifier and what it introduces: a variable or constant, a
// call, a derivative or an integral.
func (ps *parser) named() Node {
	begin := ps.pos
	for ps.pos < len(ps.src) && isIdentPart(ps.peek()) {
		_, size := utf8.DecodeRuneInString(ps.src[ps.pos:])
		ps.pos += size
	}
	name := ps.src[begin:ps.pos]
	afterName := ps.pos

	if ps.peek() == '\'' {
		ps.pos++
		ps.skipSpace()
		if ps.peek() != '(' {
			ps.errorf(ps.pos, "derivative of %s needs an argument", name)
			return &Var{diag.Ranging{From: begin, To: ps.pos}, name}
		}
		args := ps.args()
		if len(args) != 1 {
			ps.errorf(begin, "derivative of %s takes one argument, got %d", name, len(args))
			return &Var{diag.Ranging{From: begin, To: ps.pos}, name}
		}
		return &Deriv{diag.Ranging{From: begin, To: ps.pos}, name, args[0]}
	}

	ps.skipSpace()
	_, isConst := Constants[name]
	if ps.peek() != '(' || name == Variable || isConst {
		ps.pos = afterName
		return &Var{diag.Ranging{From: begin, To: afterName}, name}
	}
	argsBegin := ps.pos
	args := ps.args()
	r := diag.Ranging{From: begin, To: ps.pos}
	if name == integralName && len(args) == 3 {
		return &Integral{r, ps.integralSpec(argsBegin, ps.pos), args[0], args[1], args[2]}
	}
	return &Call{r, name, args}
}

// Parses a parenthesized, comma-separated argument list.
func (ps *parser) args() []Node {
	ps.pos++ // '('
	ps.skipSpace()
	if ps.peek() == ')' {
		ps.pos++
		return nil
	}
	var args []Node
	for {
		args = append(args, ps.sum())
		ps.skipSpace()
		if ps.err != nil || ps.peek() != ',' {
			break
		}
		ps.pos++
	}
	ps.expect(')')
	return args
}

// Builds the Spec from the source of the argument list src[from:to], which
// includes the parentheses. This is the same text integral.Extract sees.
func (ps *parser) integralSpec(from, to int) integral.Spec {
	if ps.err != nil {
		return integral.Spec{}
	}
	parts := integral.SplitTopLevel(ps.src[from+1 : to-1])
	if len(parts) != 3 {
		return integral.Spec{}
	}
	return integral.Spec{
		Integrand: strings.TrimSpace(parts[0]),
		Lower:     strings.TrimSpace(parts[1]),
		Upper:     strings.TrimSpace(parts[2]),
	}
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
