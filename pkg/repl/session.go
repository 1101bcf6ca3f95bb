package repl

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"src.graf.sh/pkg/analysis"
	"src.graf.sh/pkg/config"
	"src.graf.sh/pkg/diag"
	"src.graf.sh/pkg/integral"
	"src.graf.sh/pkg/parse"
	"src.graf.sh/pkg/plot"
	"src.graf.sh/pkg/store/storedefs"
	"src.graf.sh/pkg/wcwidth"
)

// View parameters kept in the store.
const (
	viewScale   = "scale"
	viewOffsetX = "offset-x"
	viewOffsetY = "offset-y"
)

var errQuit = errors.New("quit")

// Session is a sheet together with the store that mirrors it.
type Session struct {
	Sheet *plot.Sheet
	// Width is the number of columns listings are trimmed to. Zero means no
	// limit.
	Width int

	store storedefs.Store
	seqs  []int
	out   io.Writer
	err   io.Writer
}

// NewSession creates an empty session writing results to out and problems to
// errOut.
func NewSession(cfg *config.Config, out, errOut io.Writer) *Session {
	return &Session{Sheet: newSheet(cfg), out: out, err: errOut}
}

// Attach loads the expressions and view kept in st, and keeps st updated
// afterwards.
func (s *Session) Attach(st storedefs.Store) error {
	exprs, err := st.Exprs()
	if err != nil {
		return err
	}
	lines := make([]string, len(exprs))
	s.seqs = make([]int, len(exprs))
	for i, e := range exprs {
		lines[i], s.seqs[i] = e.Text, e.Seq
	}
	s.Sheet.SetExpressions(lines)
	s.store = st

	v := s.Sheet.View
	for name, p := range map[string]*float64{
		viewScale: &v.Scale, viewOffsetX: &v.OffsetX, viewOffsetY: &v.OffsetY} {
		value, err := st.View(name)
		switch {
		case err == nil:
			*p = value
		case !errors.Is(err, storedefs.ErrNoView):
			return err
		}
	}
	logger.Printf("loaded %d expressions from store", len(lines))
	return nil
}

// Add appends an expression to the sheet, and reports problems in its body
// without rejecting it.
func (s *Session) Add(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if s.store != nil {
		seq, err := s.store.AddExpr(line)
		if err != nil {
			return err
		}
		s.seqs = append(s.seqs, seq)
	}
	lines := append(s.Sheet.Expressions(), line)
	s.Sheet.SetExpressions(lines)
	s.check(len(lines), line)
	return nil
}

func (s *Session) check(i int, line string) {
	e := s.Sheet.Parsed(line)
	if e.Kind != parse.Function {
		if e.Kind == parse.Vertical && math.IsNaN(e.X) {
			fmt.Fprintf(s.err, "[line %d] right-hand side of x = is not a number\n", i)
		}
		return
	}
	for _, err := range s.Sheet.Eval.Check(fmt.Sprintf("[line %d]", i), e.Body) {
		diag.ShowError(s.err, err)
	}
}

// Remove deletes the i-th expression, counting from 1.
func (s *Session) Remove(i int) error {
	lines := s.Sheet.Expressions()
	if i < 1 || i > len(lines) {
		return fmt.Errorf("no expression %d", i)
	}
	if s.store != nil {
		if err := s.store.DelExpr(s.seqs[i-1]); err != nil {
			return err
		}
		s.seqs = append(s.seqs[:i-1], s.seqs[i:]...)
	}
	s.Sheet.SetExpressions(append(lines[:i-1], lines[i:]...))
	return nil
}

// Clear deletes all expressions.
func (s *Session) Clear() error {
	if s.store != nil {
		if err := s.store.ClearExprs(); err != nil {
			return err
		}
		s.seqs = nil
	}
	s.Sheet.SetExpressions(nil)
	s.Sheet.ClearSelection()
	return nil
}

func (s *Session) saveView() error {
	if s.store == nil {
		return nil
	}
	v := s.Sheet.View
	for name, value := range map[string]float64{
		viewScale: v.Scale, viewOffsetX: v.OffsetX, viewOffsetY: v.OffsetY} {
		if err := s.store.SetView(name, value); err != nil {
			return err
		}
	}
	return nil
}

// Exec runs one line of input: a command starting with ':' or an expression
// to add. It returns errQuit for ":q".
func (s *Session) Exec(line string) error {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		return s.Add(line)
	}
	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		return errors.New("empty command")
	}
	name, args := fields[0], fields[1:]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command :%s; try :help", name)
	}
	if cmd.nargs >= 0 && len(args) != cmd.nargs {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	nums := make([]float64, len(args))
	if cmd.numeric {
		for i, arg := range args {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return fmt.Errorf("usage: %s", cmd.usage)
			}
			nums[i] = v
		}
	}
	return cmd.fn(s, nums)
}

type command struct {
	nargs   int
	numeric bool
	usage   string
	help    string
	fn      func(s *Session, args []float64) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"ls": {0, false, ":ls", "list expressions", (*Session).list},
		"rm": {1, true, ":rm N", "remove expression N", func(s *Session, a []float64) error {
			return s.Remove(int(a[0]))
		}},
		"clear": {0, false, ":clear", "remove all expressions", func(s *Session, _ []float64) error {
			return s.Clear()
		}},
		"eval": {1, true, ":eval X", "evaluate every function at X", func(s *Session, a []float64) error {
			s.evalAt(a[0])
			return nil
		}},
		"points":    {0, false, ":points", "list intercepts and intersections in view", (*Session).points},
		"integrals": {0, false, ":integrals", "list integral values", (*Session).integrals},
		"zoom": {1, true, ":zoom F", "zoom by factor F around the center", func(s *Session, a []float64) error {
			v := s.Sheet.View
			v.ZoomBy(a[0], v.Width/2, v.Height/2)
			return s.saveView()
		}},
		"pan": {2, true, ":pan DX DY", "move the view by DX, DY pixels", func(s *Session, a []float64) error {
			s.Sheet.View.Pan(a[0], a[1])
			return s.saveView()
		}},
		"view": {0, false, ":view", "show the visible range", (*Session).showView},
		"select": {2, true, ":select X Y", "toggle selection of the point near (X, Y)", func(s *Session, a []float64) error {
			if !s.Sheet.ToggleSelection(analysis.Point{X: a[0], Y: a[1]}) {
				return fmt.Errorf("no point near (%s, %s)", formatNum(a[0]), formatNum(a[1]))
			}
			for _, p := range s.Sheet.Selected() {
				fmt.Fprintln(s.out, formatPoint(p))
			}
			return nil
		}},
		"label": {2, true, ":label X Y", "toggle the label of the integral area at (X, Y)", (*Session).label},
		"help":  {0, false, ":help", "show this help", (*Session).help},
		"q": {0, false, ":q", "quit", func(*Session, []float64) error {
			return errQuit
		}},
	}
}

func (s *Session) list(_ []float64) error {
	for i, line := range s.Sheet.Expressions() {
		entry := fmt.Sprintf("%d: %s", i+1, line)
		if s.Width > 0 {
			entry = wcwidth.Trim(entry, s.Width)
		}
		fmt.Fprintln(s.out, entry)
	}
	return nil
}

func (s *Session) evalAt(x float64) {
	a := s.Sheet.Analyzer()
	for i, line := range s.Sheet.Expressions() {
		e := s.Sheet.Parsed(line)
		if e.Kind != parse.Function {
			continue
		}
		fmt.Fprintf(s.out, "%d: %s\n", i+1, formatNum(a.ValueAt(e, x)))
	}
}

func (s *Session) points(_ []float64) error {
	for _, p := range s.Sheet.Points() {
		fmt.Fprintln(s.out, formatPoint(p))
	}
	return nil
}

func (s *Session) integrals(_ []float64) error {
	for _, line := range s.Sheet.Expressions() {
		e := s.Sheet.Parsed(line)
		if e.Kind != parse.Function {
			continue
		}
		for _, spec := range integral.Extract(e.Body) {
			fmt.Fprintf(s.out, "%s = %s\n", spec, formatNum(s.Sheet.Eval.Evaluate(spec.String(), 0)))
		}
	}
	return nil
}

func (s *Session) showView(_ []float64) error {
	left, right, bottom, top := s.Sheet.View.Bounds()
	fmt.Fprintf(s.out, "x: [%s, %s] y: [%s, %s] scale: %s\n",
		formatNum(left), formatNum(right), formatNum(bottom), formatNum(top),
		formatNum(s.Sheet.View.Scale))
	return nil
}

func (s *Session) label(a []float64) error {
	p := analysis.Point{X: a[0], Y: a[1]}
	area, ok := s.Sheet.AreaAt(p)
	if !ok {
		return fmt.Errorf("no integral area at (%s, %s)", formatNum(a[0]), formatNum(a[1]))
	}
	if !s.Sheet.ToggleLabel(area.Spec, p) {
		fmt.Fprintf(s.out, "hid %s\n", area.Spec)
		return nil
	}
	for _, l := range s.Sheet.Labels() {
		if l.Key == area.Spec.Key() {
			fmt.Fprintf(s.out, "%s = %s\n", area.Spec, formatNum(l.Value))
		}
	}
	return nil
}

func (s *Session) help(_ []float64) error {
	fmt.Fprintln(s.out, "Type an expression to add it, or a command:")
	for _, name := range []string{"ls", "rm", "clear", "eval", "points", "integrals",
		"zoom", "pan", "view", "select", "label", "help", "q"} {
		cmd := commands[name]
		fmt.Fprintf(s.out, "  %-12s %s\n", cmd.usage, cmd.help)
	}
	return nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func formatPoint(p analysis.Point) string {
	return fmt.Sprintf("(%s, %s)",
		strconv.FormatFloat(p.X, 'g', 6, 64), strconv.FormatFloat(p.Y, 'g', 6, 64))
}
