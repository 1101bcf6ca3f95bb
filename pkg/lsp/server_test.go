package lsp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.graf.sh/pkg/eval"
	"src.graf.sh/pkg/tt"
)

const uri = lsp.DocumentURI("file:///sheet.graf")

// Records notifications instead of sending them.
type fakeConn struct{ notes chan any }

func newFakeConn() *fakeConn { return &fakeConn{make(chan any, 16)} }

func (c *fakeConn) Call(context.Context, string, any, any, ...jsonrpc2.CallOption) error {
	return nil
}

func (c *fakeConn) Notify(_ context.Context, _ string, params any, _ ...jsonrpc2.CallOption) error {
	c.notes <- params
	return nil
}

func (c *fakeConn) Close() error { return nil }

func raw(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func open(t *testing.T, s *server, conn *fakeConn, content string) []lsp.Diagnostic {
	t.Helper()
	_, err := s.didOpen(context.Background(), conn, raw(lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, Text: content}}))
	if err != nil {
		t.Fatalf("didOpen -> %v", err)
	}
	return (<-conn.notes).(lsp.PublishDiagnosticsParams).Diagnostics
}

func TestDiagnostics(t *testing.T) {
	s, conn := newServer(), newFakeConn()
	diags := open(t, s, conn, "y = x^2\nf(x) = foo(x)\nx = a\ny = 1 +")
	want := []lsp.Diagnostic{
		{
			Range:    lsp.Range{Start: lsp.Position{Line: 1, Character: 7}, End: lsp.Position{Line: 1, Character: 13}},
			Severity: lsp.Error, Source: "compile", Message: "undefined function foo",
		},
		{
			Range:    lsp.Range{Start: lsp.Position{Line: 2}, End: lsp.Position{Line: 2, Character: 5}},
			Severity: lsp.Warning, Source: "parse", Message: "right-hand side of x = is not a number",
		},
		{
			Range:    lsp.Range{Start: lsp.Position{Line: 3, Character: 7}, End: lsp.Position{Line: 3, Character: 7}},
			Severity: lsp.Error, Source: "parse", Message: "unexpected end of expression",
		},
	}
	if diff := cmp.Diff(want, diags); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}

	_, err := s.didChange(context.Background(), conn, raw(lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "f(x) = x\ny = f(x)"}},
	}))
	if err != nil {
		t.Fatalf("didChange -> %v", err)
	}
	if diags := (<-conn.notes).(lsp.PublishDiagnosticsParams).Diagnostics; len(diags) != 0 {
		t.Errorf("diagnostics after fix: %v", diags)
	}
}

func TestInvalidParams(t *testing.T) {
	s, conn := newServer(), newFakeConn()
	for name, m := range map[string]method{
		"didOpen": s.didOpen, "didChange": s.didChange, "hover": s.hover, "completion": s.completion,
	} {
		if _, err := m(context.Background(), conn, json.RawMessage("[]")); err != errInvalidParams {
			t.Errorf("%s with bad params -> %v, want errInvalidParams", name, err)
		}
	}
}

func hoverText(t *testing.T, s *server, pos lsp.Position) string {
	t.Helper()
	result, err := s.hover(context.Background(), nil, raw(lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri}, Position: pos}))
	if err != nil {
		t.Fatalf("hover -> %v", err)
	}
	h := result.(lsp.Hover)
	if len(h.Contents) == 0 {
		return ""
	}
	return h.Contents[0].Value
}

func TestHover(t *testing.T) {
	s, conn := newServer(), newFakeConn()
	open(t, s, conn, "f(x) = x^2 {x > 0}\ny = int(f(x), 0, 3)\nx = 2\n\ny = "+
		strings.Repeat("int(1, 0, 1)+", eval.MaxIntegrals)+"int(1, 0, 1)\ny = 2int(x, 0, 1)")

	hover := func(line, char int) string {
		return hoverText(t, s, lsp.Position{Line: line, Character: char})
	}
	tt.Test(t, tt.Fn("hover", hover), tt.Table{
		tt.Args(0, 3).Rets("function f(x) = x^2\nwhere 0<x"),
		tt.Args(1, 0).Rets("integral\nint(f(x),0,3) = 9"),
		tt.Args(2, 5).Rets("vertical line x = 2"),
		tt.Args(3, 0).Rets(""),
		tt.Args(5, 0).Rets("y = 2int(x, 0, 1)\nint(x,0,1) = 0.5"),
	})
	if got := hover(4, 0); !strings.Contains(got, "\nmore than 50 integrals, not plotted\n") {
		t.Errorf("hover on a line with too many integrals -> %q", got)
	}
}

func TestCompletion(t *testing.T) {
	s, conn := newServer(), newFakeConn()
	open(t, s, conn, "sq(x) = x^2\nsinc(x) = sin(x)/x\ny = s")

	result, err := s.completion(context.Background(), conn, raw(lsp.CompletionParams{
		TextDocumentPositionParams: lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: uri},
			Position:     lsp.Position{Line: 2, Character: 5}}}))
	if err != nil {
		t.Fatalf("completion -> %v", err)
	}
	var labels []string
	for _, item := range result.([]lsp.CompletionItem) {
		labels = append(labels, item.Label)
		if item.TextEdit.Range.Start.Character != 4 {
			t.Errorf("item %s replaces from %v, want character 4", item.Label, item.TextEdit.Range.Start)
		}
	}
	want := []string{"sinc", "sq", "signum", "sin", "sinh", "sqrt"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("completion labels (-want +got):\n%s", diff)
	}
}

func TestPositionConversion(t *testing.T) {
	s := "a\r\nπ𝑥\nb"
	tt.Test(t, tt.Fn("lspPositionFromIdx", func(i int) lsp.Position { return lspPositionFromIdx(s, i) }), tt.Table{
		tt.Args(0).Rets(lsp.Position{Line: 0, Character: 0}),
		tt.Args(3).Rets(lsp.Position{Line: 1, Character: 0}),
		tt.Args(5).Rets(lsp.Position{Line: 1, Character: 1}),
		tt.Args(9).Rets(lsp.Position{Line: 1, Character: 3}),
		tt.Args(10).Rets(lsp.Position{Line: 2, Character: 0}),
	})
	if idx := lspPositionToIdx(s, lsp.Position{Line: 2, Character: 1}); idx != len(s) {
		t.Errorf("lspPositionToIdx at end -> %d, want %d", idx, len(s))
	}
	if !strings.HasPrefix(s[lspPositionToIdx(s, lsp.Position{Line: 1}):], "π") {
		t.Errorf("lspPositionToIdx(line 1) does not point at π")
	}
	if idx := lspPositionToIdx(s, lsp.Position{Line: 0, Character: 1}); idx != 1 {
		t.Errorf("lspPositionToIdx at end of line 0 -> %d, want 1", idx)
	}
}
