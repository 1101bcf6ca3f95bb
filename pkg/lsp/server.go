package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.graf.sh/pkg/diag"
	"src.graf.sh/pkg/eval"
	"src.graf.sh/pkg/expr"
	"src.graf.sh/pkg/integral"
	"src.graf.sh/pkg/parse"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// A sheet being edited. Each document has its own evaluator, since function
// definitions are scoped to the sheet that makes them.
type document struct {
	content string
	evaler  *eval.Evaler
}

func newDocument(content string) *document {
	d := &document{content, eval.NewEvaler()}
	defs := map[string]string{}
	for _, line := range lines(content) {
		if def, ok := parse.ParseFunctionDefinition(line.text); ok {
			defs[def.Name] = def.Body
		}
	}
	d.evaler.SetFunctions(defs)
	return d
}

type server struct {
	docs map[lsp.DocumentURI]*document
}

func newServer() *server {
	return &server{make(map[lsp.DocumentURI]*document)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/hover":      s.hover,
		"textDocument/completion": s.completion,

		"initialized":                     noop,
		"shutdown":                        noop,
		"exit":                            noop,
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider:      true,
			CompletionProvider: &lsp.CompletionOptions{},
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.update(ctx, conn, params.TextDocument.URI, params.TextDocument.Text)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}
	// ContentChanges includes full text since the server is only advertised to
	// support that; see the initialize method.
	s.update(ctx, conn, params.TextDocument.URI, params.ContentChanges[0].Text)
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	delete(s.docs, params.TextDocument.URI)
	return nil, nil
}

func (s *server) update(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	d := newDocument(content)
	s.docs[uri] = d
	diags := d.diagnostics(string(uri))
	go conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diags})
}

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	d, ok := s.docs[params.TextDocument.URI]
	if !ok {
		return lsp.Hover{}, nil
	}
	idx := lspPositionToIdx(d.content, params.Position)
	for _, l := range lines(d.content) {
		if idx < l.from || idx > l.to() || strings.TrimSpace(l.text) == "" {
			continue
		}
		rg := lspRangeFromRange(d.content, diag.Ranging{From: l.from, To: l.to()})
		return lsp.Hover{
			Contents: []lsp.MarkedString{lsp.RawMarkedString(d.describe(l.text))},
			Range:    &rg,
		}, nil
	}
	return lsp.Hover{}, nil
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	d, ok := s.docs[params.TextDocument.URI]
	if !ok {
		return []lsp.CompletionItem{}, nil
	}
	dot := lspPositionToIdx(d.content, params.Position)
	begin := dot
	for begin > 0 && isIdent(d.content[begin-1]) {
		begin--
	}
	prefix := d.content[begin:dot]
	replace := lspRangeFromRange(d.content, diag.Ranging{From: begin, To: dot})

	items := []lsp.CompletionItem{}
	add := func(name string, kind lsp.CompletionItemKind, detail string) {
		if strings.HasPrefix(name, prefix) {
			items = append(items, lsp.CompletionItem{
				Label: name, Kind: kind, Detail: detail,
				TextEdit: &lsp.TextEdit{Range: replace, NewText: name},
			})
		}
	}
	defs := d.evaler.Functions()
	for _, name := range d.evaler.FunctionNames() {
		add(name, lsp.CIKFunction, name+"(x) = "+defs[name])
	}
	for _, name := range sortedKeys(expr.Builtins) {
		if _, shadowed := defs[name]; !shadowed {
			add(name, lsp.CIKFunction, fmt.Sprintf("builtin, %d argument(s)", expr.Builtins[name].Arity))
		}
	}
	for _, name := range sortedKeys(expr.Constants) {
		add(name, lsp.CIKConstant, strconv.FormatFloat(expr.Constants[name], 'g', -1, 64))
	}
	add("int", lsp.CIKKeyword, "int(integrand, lower, upper)")
	return items, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isIdent(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

// Describes the expression on a line for hovering.
func (d *document) describe(text string) string {
	e := parse.Parse(text)
	var sb strings.Builder
	switch e.Kind {
	case parse.Vertical:
		if math.IsNaN(e.X) {
			sb.WriteString("vertical line at an invalid position")
		} else {
			fmt.Fprintf(&sb, "vertical line x = %s", formatNum(e.X))
		}
	default:
		if def, ok := parse.ParseFunctionDefinition(text); ok {
			fmt.Fprintf(&sb, "function %s(x) = %s", def.Name, def.Body)
		} else if integral.IsSingle(e.Body) {
			sb.WriteString("integral")
		} else {
			fmt.Fprintf(&sb, "y = %s", e.Body)
		}
		if _, err := d.evaler.Compile(e.Body); eval.IsTooManyIntegrals(err) {
			fmt.Fprintf(&sb, "\nmore than %d integrals, not plotted", eval.MaxIntegrals)
		}
	}
	if c := e.Constraint.String(); c != "" {
		fmt.Fprintf(&sb, "\nwhere %s", c)
	}
	for _, spec := range integral.Extract(e.Body) {
		fmt.Fprintf(&sb, "\n%s = %s", spec, formatNum(d.evaler.Evaluate(spec.String(), 0)))
	}
	return sb.String()
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func (d *document) diagnostics(name string) []lsp.Diagnostic {
	diags := []lsp.Diagnostic{}
	for _, l := range lines(d.content) {
		e := parse.Parse(l.text)
		switch e.Kind {
		case parse.Vertical:
			if math.IsNaN(e.X) {
				diags = append(diags, lsp.Diagnostic{
					Range:    lspRangeFromRange(d.content, diag.Ranging{From: l.from, To: l.to()}),
					Severity: lsp.Warning,
					Source:   "parse",
					Message:  "right-hand side of x = is not a number",
				})
			}
		case parse.Function:
			if strings.TrimSpace(e.Body) == "" {
				continue
			}
			offset := l.from + bodyOffset(l.text, e.Body)
			for _, err := range d.evaler.Check(name, e.Body) {
				diags = append(diags, lsp.Diagnostic{
					Range:    lspRangeFromRange(d.content, err.Range().Shift(offset)),
					Severity: lsp.Error,
					Source:   strings.TrimSuffix(err.Type, " error"),
					Message:  err.Message,
				})
			}
		}
	}
	return diags
}

// Returns where body starts within the line it was parsed from.
func bodyOffset(text, body string) int {
	start := 0
	if eq := strings.IndexByte(text, '='); eq >= 0 && !strings.HasPrefix(strings.TrimSpace(text), body) {
		start = eq + 1
	}
	if i := strings.Index(text[start:], body); i >= 0 {
		return start + i
	}
	return 0
}

type line struct {
	from int
	text string
}

func (l line) to() int { return l.from + len(l.text) }

func lines(content string) []line {
	var ls []line
	from := 0
	for _, text := range strings.SplitAfter(content, "\n") {
		trimmed := strings.TrimRight(text, "\r\n")
		ls = append(ls, line{from, trimmed})
		from += len(text)
	}
	return ls
}

func lspRangeFromRange(s string, r diag.Ranger) lsp.Range {
	rg := r.Range()
	return lsp.Range{
		Start: lspPositionFromIdx(s, rg.From),
		End:   lspPositionFromIdx(s, rg.To),
	}
}

func lspPositionToIdx(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		// The \n of a \r\n pair shares the position of what follows it.
		if !(lastCR && r == '\n') && !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if !lastCR {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// One UTF-16 unit.
			p.Character++
		default:
			// Two UTF-16 units.
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
