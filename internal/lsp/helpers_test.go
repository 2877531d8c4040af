package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"textlintls/internal/config"
	"textlintls/internal/textlint"
)

type fakeLinter struct {
	extensions []string
	lint       func(text, path string) (*textlint.Result, error)
	calls      atomic.Int32
}

func (f *fakeLinter) LintText(_ context.Context, text, path string) (*textlint.Result, error) {
	f.calls.Add(1)
	if f.lint == nil {
		return &textlint.Result{FilePath: path}, nil
	}
	return f.lint(text, path)
}

func (f *fakeLinter) LintFiles(context.Context, []string) ([]textlint.Result, error) {
	return nil, nil
}

func (f *fakeLinter) FixText(_ context.Context, text, path string) (*textlint.FixResult, error) {
	return &textlint.FixResult{FilePath: path, Output: text}, nil
}

func (f *fakeLinter) FixFiles(context.Context, []string) ([]textlint.FixResult, error) {
	return nil, nil
}

func (f *fakeLinter) AvailableExtensions() []string {
	if f.extensions == nil {
		return []string{".txt", ".md"}
	}
	return f.extensions
}

type scanningLinter struct {
	*fakeLinter
	ignored string
}

func (l *scanningLinter) ScanFilePath(_ context.Context, path string) (textlint.ScanResult, error) {
	if path == l.ignored {
		return textlint.ScanResult{Status: textlint.ScanIgnored}, nil
	}
	return textlint.ScanResult{Status: textlint.ScanOK}, nil
}

func severity(n int) *int { return &n }

func todoFinding(line, col, start, end int) textlint.Message {
	return textlint.Message{
		Type:     "lint",
		RuleID:   "no-todo",
		Message:  `Found TODO: "TODO"`,
		Line:     line,
		Column:   col,
		Index:    start,
		Severity: severity(2),
		Fix:      &textlint.FixCommand{Range: [2]int{start, end}, Text: ""},
	}
}

func staticLint(msgs ...textlint.Message) func(string, string) (*textlint.Result, error) {
	return func(_, path string) (*textlint.Result, error) {
		return &textlint.Result{FilePath: path, Messages: msgs}, nil
	}
}

type harness struct {
	t      *testing.T
	server *Server
	out    *bytes.Buffer
	root   string
	nextID int
}

func newHarness(t *testing.T, linter textlint.Linter, tweak ...func(*config.Settings)) *harness {
	t.Helper()
	settings := config.Default()
	for _, fn := range tweak {
		fn(&settings)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	out := &bytes.Buffer{}
	server := NewServer(bytes.NewReader(nil), out, ServerOptions{
		Settings: settings,
		Logger:   logger,
		Configure: func(_ context.Context, opts textlint.Options) (*textlint.Engine, error) {
			return &textlint.Engine{Root: opts.Root, Linter: linter, Digest: "test"}, nil
		},
	})
	root := t.TempDir()
	server.folders = []workspaceFolder{{URI: pathToURI(root)}}
	server.configureEngines()
	return &harness{t: t, server: server, out: out, root: root}
}

func (h *harness) uri(name string) string {
	return pathToURI(filepath.Join(h.root, name))
}

func (h *harness) notify(method string, params any) {
	h.t.Helper()
	payload, err := json.Marshal(params)
	if err != nil {
		h.t.Fatalf("marshal %s: %v", method, err)
	}
	if err := h.server.handleMessage(&rpcMessage{JSONRPC: "2.0", Method: method, Params: payload}); err != nil {
		h.t.Fatalf("%s: %v", method, err)
	}
}

// request sends a request and returns its response along with every other
// message written while handling it.
func (h *harness) request(method string, params any) (rpcMessage, []rpcMessage) {
	h.t.Helper()
	h.nextID++
	id := json.RawMessage(fmtID(h.nextID))
	payload, err := json.Marshal(params)
	if err != nil {
		h.t.Fatalf("marshal %s: %v", method, err)
	}
	if err := h.server.handleMessage(&rpcMessage{JSONRPC: "2.0", ID: id, Method: method, Params: payload}); err != nil {
		h.t.Fatalf("%s: %v", method, err)
	}
	var (
		resp   *rpcMessage
		others []rpcMessage
	)
	for _, msg := range h.messages() {
		if msg.Method == "" && string(msg.ID) == string(id) {
			resp = &msg
			continue
		}
		others = append(others, msg)
	}
	if resp == nil {
		h.t.Fatalf("no response to %s", method)
	}
	return *resp, others
}

func fmtID(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func (h *harness) open(name string, version int, text string) string {
	h.t.Helper()
	uri := h.uri(name)
	h.notify("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: "markdown", Version: version, Text: text},
	})
	return uri
}

// settle runs the event loop until every engine call has completed.
func (h *harness) settle() {
	h.t.Helper()
	deadline := time.After(5 * time.Second)
	for h.server.pending > 0 {
		select {
		case ev := <-h.server.events:
			if err := h.server.dispatch(ev); err != nil {
				h.t.Fatalf("dispatch: %v", err)
			}
		case <-deadline:
			h.t.Fatalf("timed out with %d pending validations", h.server.pending)
		}
	}
}

// step dispatches the next event posted to the loop.
func (h *harness) step() {
	h.t.Helper()
	select {
	case ev := <-h.server.events:
		if err := h.server.dispatch(ev); err != nil {
			h.t.Fatalf("dispatch: %v", err)
		}
	case <-time.After(5 * time.Second):
		h.t.Fatalf("timed out waiting for an event")
	}
}

// messages decodes and drains everything written so far. Messages stay
// available through the returned slice only.
func (h *harness) messages() []rpcMessage {
	h.t.Helper()
	return readAll(h.t, h.out)
}

func readAll(t *testing.T, out *bytes.Buffer) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(bytes.Clone(out.Bytes())))
	out.Reset()
	var msgs []rpcMessage
	for {
		payload, err := readMessage(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return msgs
			}
			t.Fatalf("read message: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		msgs = append(msgs, msg)
	}
}

func withMethod(msgs []rpcMessage, method string) []rpcMessage {
	var out []rpcMessage
	for _, msg := range msgs {
		if msg.Method == method {
			out = append(out, msg)
		}
	}
	return out
}

type publishedDiagnostics struct {
	URI         string            `json:"uri"`
	Version     *int              `json:"version"`
	Diagnostics []json.RawMessage `json:"diagnostics"`
}

func decodeParams[T any](t *testing.T, msg rpcMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(msg.Params, &v); err != nil {
		t.Fatalf("decode %s params: %v", msg.Method, err)
	}
	return v
}
