package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"textlintls/internal/config"
	"textlintls/internal/diag"
	"textlintls/internal/fix"
	"textlintls/internal/textlint"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// JSON-RPC error codes.
const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// ConfigureFunc builds the engine serving one workspace root.
type ConfigureFunc func(ctx context.Context, opts textlint.Options) (*textlint.Engine, error)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	// Settings are the starting settings; initializationOptions and
	// workspace/didChangeConfiguration are merged on top.
	Settings config.Settings
	// Configure defaults to textlint.Configure.
	Configure ConfigureFunc
	// Cache, when non-nil, memoizes lint results of every engine.
	Cache *textlint.Cache
	// Logger defaults to a logrus logger writing to stderr.
	Logger *logrus.Logger
	// Watch enables the server-side watcher on configuration files.
	Watch   bool
	Version string
}

type document struct {
	uri     string
	path    string
	text    string
	version int
}

// Server handles stdio JSON-RPC for the textlint language server.
//
// All state is owned by the goroutine running Run. Engine calls run on their
// own goroutines and report back through the event channel.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	events chan event
	ctx    context.Context
	log    *logrus.Logger

	configure    ConfigureFunc
	cache        *textlint.Cache
	version      string
	watchEnabled bool
	watcher      *configWatcher

	settings   config.Settings
	traceLevel string
	folders    []workspaceFolder
	engines    map[string]*textlint.Engine
	docs       map[string]*document
	registries map[string]*fix.Registry

	progress          int
	pending           int
	nextID            int64
	outstanding       map[int64]string
	shutdownRequested bool
}

type event any

type messageEvent struct {
	msg *rpcMessage
}

type readErrorEvent struct {
	err error
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	configure := opts.Configure
	if configure == nil {
		configure = textlint.Configure
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	settings := opts.Settings
	if settings.Run == "" {
		settings = config.Default()
	}
	return &Server{
		in:           bufio.NewReader(in),
		out:          bufio.NewWriter(out),
		events:       make(chan event, 64),
		ctx:          context.Background(),
		log:          logger,
		configure:    configure,
		cache:        opts.Cache,
		version:      opts.Version,
		watchEnabled: opts.Watch,
		settings:     settings,
		traceLevel:   settings.Trace,
		engines:      make(map[string]*textlint.Engine),
		docs:         make(map[string]*document),
		registries:   make(map[string]*fix.Registry),
		outstanding:  make(map[int64]string),
	}
}

// Run serves LSP requests until exit, end of input or cancellation of ctx.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.ctx = ctx
	defer s.stopWatcher()

	go s.readLoop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			if err := s.dispatch(ev); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		}
	}
}

func (s *Server) readLoop() {
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			s.post(readErrorEvent{err: err})
			return
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		s.post(messageEvent{msg: &msg})
	}
}

// post hands ev to the event loop. It gives up once the server stops.
func (s *Server) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

func (s *Server) dispatch(ev event) error {
	switch ev := ev.(type) {
	case messageEvent:
		return s.handleMessage(ev.msg)
	case lintEvent:
		return s.handleLintEvent(ev)
	case watchEvent:
		s.traceEvent("config file changed", ev.path)
		s.reconfigure()
		return nil
	case readErrorEvent:
		return ev.err
	default:
		return fmt.Errorf("unknown event %T", ev)
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	if msg.Method == "" {
		if len(msg.ID) > 0 {
			s.handleResponse(msg)
		}
		return nil
	}
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		s.configureEngines()
		s.restartWatcher()
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "$/setTrace":
		return s.handleSetTrace(msg)
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "workspace/didChangeWorkspaceFolders":
		return s.handleDidChangeWorkspaceFolders(msg)
	case "workspace/didChangeWatchedFiles":
		return s.handleDidChangeWatchedFiles(msg)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	case methodAllFixes:
		return s.handleAllFixes(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	if merged, err := s.settings.Merge(params.InitializationOptions); err != nil {
		s.logf("ignoring initializationOptions: %v", err)
	} else {
		s.settings = merged
	}
	s.traceLevel = s.settings.Trace
	if s.traceLevel == config.TraceOff && validTrace(params.Trace) {
		s.traceLevel = params.Trace
	}

	switch {
	case len(params.WorkspaceFolders) > 0:
		s.folders = append([]workspaceFolder(nil), params.WorkspaceFolders...)
	case params.RootURI != "":
		s.folders = []workspaceFolder{{URI: params.RootURI}}
	case params.RootPath != "":
		s.folders = []workspaceFolder{{URI: pathToURI(params.RootPath)}}
	}

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
			CodeActionProvider: &codeActionOptions{
				CodeActionKinds: []string{codeActionQuickFix},
			},
			ExecuteCommandProvider: &executeCommandOptions{
				Commands: []string{commandApplyTextEdits, commandExecuteAutofix, commandShowOutputChannel},
			},
			Workspace: workspaceServerCapabilities{
				WorkspaceFolders: workspaceFoldersServerCapabilities{
					Supported:           true,
					ChangeNotifications: true,
				},
			},
		},
		ServerInfo: serverInfo{Name: "textlintls", Version: s.version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.shutdownRequested = true
	s.stopWatcher()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleResponse(msg *rpcMessage) {
	var id int64
	if err := json.Unmarshal(msg.ID, &id); err != nil {
		return
	}
	method, ok := s.outstanding[id]
	if !ok {
		return
	}
	delete(s.outstanding, id)
	if msg.Error != nil {
		s.logf("%s request failed: %s", method, msg.Error.Message)
		return
	}
	if method == "workspace/applyEdit" {
		var result applyWorkspaceEditResult
		if err := json.Unmarshal(msg.Result, &result); err == nil && !result.Applied {
			s.logf("client did not apply edits: %s", result.FailureReason)
		}
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendNotification(method string, params any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
	}
	if params != nil {
		msg["params"] = params
	}
	return s.send(msg)
}

// notify sends a notification whose delivery failure only needs logging.
func (s *Server) notify(method string, params any) {
	if err := s.sendNotification(method, params); err != nil {
		s.logf("failed to send %s: %v", method, err)
	}
}

// sendRequest issues a server-to-client request. The response is matched
// by id in handleResponse.
func (s *Server) sendRequest(method string, params any) (int64, error) {
	s.nextID++
	id := s.nextID
	s.outstanding[id] = method
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	}
	return id, s.send(msg)
}

func (s *Server) sendPublish(uri string, version *int, list []diag.Diagnostic) error {
	if list == nil {
		list = []diag.Diagnostic{}
	}
	return s.sendNotification("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: list,
	})
}

func (s *Server) showMessage(kind int, message string) error {
	return s.sendNotification("window/showMessage", showMessageParams{Type: kind, Message: message})
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	s.log.Warnf("lsp: "+format, args...)
}
