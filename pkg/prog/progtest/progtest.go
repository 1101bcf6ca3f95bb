// Package progtest contains utilities for testing prog.Program instances.
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/creack/pty"
	"src.graf.sh/pkg/must"
	"src.graf.sh/pkg/prog"
)

// Case is a test case for a program.
type Case struct {
	args        []string
	stdin       string
	interactive bool
	want        result
}

type result struct {
	exitCode       int
	stdout, stderr output
}

type output struct {
	content string
	partial bool
}

func (o output) String() string {
	if o.partial {
		return "text containing " + quote(o.content)
	}
	return quote(o.content)
}

// ThatGraf returns a new Case with the specified CLI arguments.
//
// The new Case expects the program run to exit with 0, and write nothing to
// stdout or stderr.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that "graf -c foo" writes "bar" to stdout
// reads:
//
//	ThatGraf("-c", "foo").WritesStdout("bar")
func ThatGraf(args ...string) Case {
	return Case{args: append([]string{"graf"}, args...)}
}

// WithStdin returns an altered Case that provides the given input to stdin of
// the program.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// Interactive returns an altered Case whose stdin is a terminal. The input is
// typed into the terminal, so it should end with a command that makes the
// program quit.
func (c Case) Interactive() Case {
	c.interactive = true
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise don't
// have any expectations, for example:
//
//	ThatGraf("-help").DoesNothing()
func (c Case) DoesNothing() Case {
	return c
}

// ExitsWith returns an altered Case that requires the program run to return
// with the given exit code.
func (c Case) ExitsWith(code int) Case {
	c.want.exitCode = code
	return c
}

// WritesStdout returns an altered Case that requires the program run to write
// exactly the given text to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{content: s}
	return c
}

// WritesStdoutContaining returns an altered Case that requires the program run
// to write output to stdout that contains the given text as a substring.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{content: s, partial: true}
	return c
}

// WritesStderr returns an altered Case that requires the program run to write
// exactly the given text to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{content: s}
	return c
}

// WritesStderrContaining returns an altered Case that requires the program run
// to write output to stderr that contains the given text as a substring.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{content: s, partial: true}
	return c
}

// Test runs test cases against a given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			r := run(p, c)
			if r.exitCode != c.want.exitCode {
				t.Errorf("got exit code %v, want %v", r.exitCode, c.want.exitCode)
			}
			if !matchOutput(r.stdout.content, c.want.stdout) {
				t.Errorf("got stdout %v, want %v", r.stdout, c.want.stdout)
			}
			if !matchOutput(r.stderr.content, c.want.stderr) {
				t.Errorf("got stderr %v, want %v", r.stderr, c.want.stderr)
			}
		})
	}
}

// Run runs a Program with the given arguments. It returns the Program's exit
// code and output to stdout and stderr.
func Run(p prog.Program, args ...string) (exit int, stdout, stderr string) {
	r := run(p, Case{args: append([]string{"graf"}, args...)})
	return r.exitCode, r.stdout.content, r.stderr.content
}

func run(p prog.Program, c Case) result {
	stdin, feed := openStdin(c)
	defer stdin.Close()
	go func() {
		feed.WriteString(c.stdin)
		if !c.interactive {
			feed.Close()
		}
	}()
	if c.interactive {
		defer feed.Close()
		// Drain the echo of the terminal so that it never blocks.
		go io.Copy(io.Discard, feed)
	}

	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()
	stdout := readAllAsync(r1)
	stderr := readAllAsync(r2)

	exitCode := prog.Run([3]*os.File{stdin, w1, w2}, c.args, p)
	w1.Close()
	w2.Close()
	return result{exitCode, output{content: <-stdout}, output{content: <-stderr}}
}

// Returns the file to use as stdin of the program, and the file to write input
// to.
func openStdin(c Case) (stdin, feed *os.File) {
	if c.interactive {
		ptmx, tty := must.OK2(pty.Open())
		return tty, ptmx
	}
	return must.Pipe()
}

func readAllAsync(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		ch <- string(must.ReadAllAndClose(r))
	}()
	return ch
}

func matchOutput(got string, want output) bool {
	if want.partial {
		return strings.Contains(got, want.content)
	}
	return got == want.content
}

func quote(s string) string {
	if !strings.Contains(s, "\n") {
		return "`" + s + "`"
	}
	return "\n" + s
}
