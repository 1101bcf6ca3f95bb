// Package repl is the entry point for the plotting sheet of graf: it loads
// expressions, answers batch queries, and runs the interactive command loop.
package repl

import (
	"fmt"
	"os"
	"strings"

	"src.graf.sh/pkg/config"
	"src.graf.sh/pkg/errutil"
	"src.graf.sh/pkg/eval"
	"src.graf.sh/pkg/logutil"
	"src.graf.sh/pkg/plot"
	"src.graf.sh/pkg/prog"
	"src.graf.sh/pkg/store"
	"src.graf.sh/pkg/strutil"
	"src.graf.sh/pkg/sys"
	"src.graf.sh/pkg/view"
)

var logger = logutil.GetLogger("[repl] ")

// Program is the REPL subprogram. It always runs.
type Program struct{}

func (Program) Run(fds [3]*os.File, f *prog.Flags, args []string) (err error) {
	cfg, err := config.Load(f.Config)
	if err != nil {
		return err
	}

	lines, err := sourceLines(f, args)
	if err != nil {
		return err
	}

	s := NewSession(cfg, fds[1], fds[2])
	if _, col := sys.WinSize(fds[1]); col > 0 {
		s.Width = col
	}

	dbPath := f.DB
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	if dbPath != "" {
		st, openErr := store.NewStore(dbPath)
		if openErr != nil {
			return fmt.Errorf("cannot open database %s: %w", dbPath, openErr)
		}
		defer func() { err = errutil.Multi(err, st.Close()) }()
		if err := s.Attach(st); err != nil {
			return err
		}
	}

	for _, line := range lines {
		if err := s.Add(line); err != nil {
			return err
		}
	}

	if f.Eval != "" || f.Points || f.Integrals {
		return batch(s, f)
	}
	return interact(fds, s)
}

// Returns the expressions given on the command line: the arguments themselves
// with -c, or the lines of the file named by the only argument.
func sourceLines(f *prog.Flags, args []string) ([]string, error) {
	if f.CodeInArg {
		return args, nil
	}
	switch len(args) {
	case 0:
		return nil, nil
	case 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, err
		}
		return fileLines(string(data)), nil
	default:
		return nil, prog.BadUsage("at most one file may be given")
	}
}

// Splits a sheet file into expressions. Blank lines and lines starting with
// '#' are skipped.
func fileLines(data string) []string {
	var lines []string
	for _, line := range strings.SplitAfter(data, "\n") {
		line = strutil.ChopLineEnding(line)
		if trimmed := strings.TrimSpace(line); trimmed == "" || trimmed[0] == '#' {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func newSheet(cfg *config.Config) *plot.Sheet {
	ev := eval.NewEvaler()
	ev.SetSubintervals(cfg.Integral.Subintervals)
	v := &view.Viewport{
		Width: cfg.Viewport.Width, Height: cfg.Viewport.Height,
		Scale:   cfg.Viewport.Scale,
		OffsetX: cfg.Viewport.Offset[0], OffsetY: cfg.Viewport.Offset[1],
	}
	sheet := plot.NewSheet(ev, v)
	sheet.Radius = cfg.Analysis.DedupeRadius
	return sheet
}
