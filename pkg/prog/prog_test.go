package prog_test

import (
	"os"
	"path/filepath"
	"testing"

	. "src.graf.sh/pkg/prog"
	"src.graf.sh/pkg/prog/progtest"
	"src.graf.sh/pkg/testutil"
)

var (
	Test     = progtest.Test
	ThatGraf = progtest.ThatGraf
)

func TestCommonFlagHandling(t *testing.T) {
	testutil.InTempDir(t)

	Test(t, testProgram{},
		ThatGraf("-bad-flag").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -bad-flag\nUsage:"),
		// -h is treated as a bad flag
		ThatGraf("-h").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -h\nUsage:"),

		ThatGraf("-help").
			WritesStdoutContaining("Usage: graf [flags] [file]"),

		ThatGraf("-log", "debug.log").DoesNothing(),
	)

	if _, err := os.Stat(filepath.Join(".", "debug.log")); err != nil {
		t.Errorf("log file does not exist: %v", err)
	}
}

func TestFlagsReachProgram(t *testing.T) {
	var got *Flags
	p := flagsProgram{&got}
	Test(t, p, ThatGraf("-c", "-eval", "2", "-points", "-db", "x.db", "y = x").DoesNothing())
	if got == nil || !got.CodeInArg || got.Eval != "2" || !got.Points || got.DB != "x.db" {
		t.Errorf("program got flags %+v", got)
	}
}

func TestNoSuitableSubprogram(t *testing.T) {
	Test(t, testProgram{notSuitable: true},
		ThatGraf().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{writeOut: "program 2"}),
		ThatGraf().WritesStdout("program 2"),
	)
}

func TestComposite_PreferEarlierSubprogram(t *testing.T) {
	Test(t,
		Composite(
			testProgram{writeOut: "program 1"}, testProgram{writeOut: "program 2"}),
		ThatGraf().WritesStdout("program 1"),
	)
}

func TestBadUsageError(t *testing.T) {
	Test(t,
		testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatGraf().ExitsWith(2).WritesStderrContaining("lorem ipsum\n"),
	)
}

func TestExitError(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(3)},
		ThatGraf().ExitsWith(3),
	)
	Test(t, testProgram{returnErr: Exit(0)},
		ThatGraf().ExitsWith(0),
	)
}

type testProgram struct {
	notSuitable bool
	writeOut    string
	returnErr   error
}

func (p testProgram) Run(fds [3]*os.File, _ *Flags, args []string) error {
	if p.notSuitable {
		return ErrNotSuitable
	}
	fds[1].WriteString(p.writeOut)
	return p.returnErr
}

type flagsProgram struct{ got **Flags }

func (p flagsProgram) Run(fds [3]*os.File, f *Flags, args []string) error {
	*p.got = f
	return nil
}
