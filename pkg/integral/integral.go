// Package integral finds inline definite integrals of the form
// int(integrand, lower, upper) in expression text.
//
// The scanner works on raw text so that it can be used for display purposes
// (listing and labelling the integrals a plotted expression contains) without
// compiling the expression.
package integral

import "strings"

const opener = "int("

// Spec identifies an inline integral by the source text of its three
// arguments. Two integrals with the same Spec always have the same value for
// the same outer x.
type Spec struct {
	Integrand string
	Lower     string
	Upper     string
}

// Key returns a string that uniquely identifies the Spec.
func (s Spec) Key() string {
	return s.Integrand + "|" + s.Lower + "|" + s.Upper
}

// String renders the Spec as an int(...) call.
func (s Spec) String() string {
	return opener + s.Integrand + "," + s.Lower + "," + s.Upper + ")"
}

// Match is an occurrence of an inline integral in some text. Text[From:To]
// is the whole int(...) call.
type Match struct {
	Spec
	From, To int
}

// Extract returns the specs of all well-formed integrals in text, in the
// order they appear. Integrals nested inside another integral's arguments are
// not reported separately.
func Extract(text string) []Spec {
	var specs []Spec
	for _, m := range FindAll(text) {
		specs = append(specs, m.Spec)
	}
	return specs
}

// FindAll is like Extract, but also returns the position of each match.
//
// An occurrence with the wrong number of arguments is skipped and scanning
// continues after its opening parenthesis. An occurrence whose parenthesis is
// never closed ends the scan, since nothing after it can be balanced either.
func FindAll(text string) []Match {
	var matches []Match
	idx := 0
	for idx < len(text) {
		i := strings.Index(text[idx:], opener)
		if i < 0 {
			break
		}
		start := idx + i
		m, balanced := parseAt(text, start)
		if !balanced {
			break
		}
		if m == nil {
			idx = start + len(opener)
			continue
		}
		matches = append(matches, *m)
		idx = m.To
	}
	return matches
}

// IsSingle returns whether the trimmed text is exactly one int(...) call.
func IsSingle(text string) bool {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, opener) {
		return false
	}
	m, _ := parseAt(text, 0)
	return m != nil && m.To == len(text)
}

// Parses the integral whose opener starts at text[start:]. The second return
// value is false when the opening parenthesis has no matching closing one;
// the first is nil whenever no well-formed integral was found.
func parseAt(text string, start int) (*Match, bool) {
	open := start + len(opener) - 1
	close := ClosingParen(text, open)
	if close < 0 {
		return nil, false
	}
	parts := SplitTopLevel(text[open+1 : close])
	if len(parts) != 3 {
		return nil, true
	}
	return &Match{
		Spec: Spec{
			Integrand: strings.TrimSpace(parts[0]),
			Lower:     strings.TrimSpace(parts[1]),
			Upper:     strings.TrimSpace(parts[2]),
		},
		From: start,
		To:   close + 1,
	}, true
}

// ClosingParen returns the index of the parenthesis that balances the one at
// s[open], or -1 if there is none.
func ClosingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// SplitTopLevel splits s on commas that are not nested inside parentheses.
// The parts are not trimmed.
func SplitTopLevel(s string) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

// ReferencesVar returns whether text mentions the variable name as a whole
// identifier, so that "x" counts in "2*x" and "2x" but not in "max(1, 2)" or
// "exp(1)".
func ReferencesVar(text, name string) bool {
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case isDigit(c) || c == '.':
			i = skipNumber(text, i)
		case isIdentStart(c):
			j := i + 1
			for j < len(text) && isIdentPart(text[j]) {
				j++
			}
			if text[i:j] == name {
				return true
			}
			i = j
		default:
			i++
		}
	}
	return false
}

// Returns the index just past the numeric literal starting at s[i].
func skipNumber(s string, i int) int {
	for i < len(s) && (isDigit(s[i]) || s[i] == '.') {
		i++
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			return j
		}
	}
	return i
}

func isDigit(c byte) bool      { return '0' <= c && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
