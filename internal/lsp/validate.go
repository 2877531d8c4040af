package lsp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"textlintls/internal/diag"
	"textlintls/internal/textlint"
)

// lintEvent carries the outcome of one engine call back to the event loop.
type lintEvent struct {
	uri     string
	version int
	batch   *batch
	result  *textlint.Result
	ignored bool
	err     error
}

// batch tracks a validateMany run. Failures are reported once, when the
// last document of the batch completes.
type batch struct {
	remaining int
	seen      map[string]struct{}
	errs      []error
}

func (b *batch) fail(err error) {
	msg := err.Error()
	if _, ok := b.seen[msg]; ok {
		return
	}
	b.seen[msg] = struct{}{}
	b.errs = append(b.errs, err)
}

func (s *Server) progressStart() {
	if s.progress == 0 {
		s.notify(methodProgressStart, nil)
	}
	s.progress++
}

func (s *Server) progressStop() {
	if s.progress == 0 {
		return
	}
	s.progress--
	if s.progress == 0 {
		s.notify(methodProgressStop, nil)
	}
}

// sendStatus reports the outcome of a single validation. cause carries the
// chain of wrapped errors below the top-level message.
func (s *Server) sendStatus(status int, err error) {
	params := statusParams{Status: status}
	if err != nil {
		params.Message = err.Error()
		var chain []string
		for e := errors.Unwrap(err); e != nil; e = errors.Unwrap(e) {
			chain = append(chain, e.Error())
		}
		params.Cause = strings.Join(chain, "\n")
	}
	s.notify(methodStatus, params)
}

func (s *Server) validateSingle(doc *document) {
	s.progressStart()
	if !s.startValidation(doc, nil) {
		s.sendStatus(statusOK, nil)
		s.progressStop()
	}
}

func (s *Server) validateMany(docs []*document) {
	s.progressStart()
	b := &batch{seen: make(map[string]struct{})}
	for _, doc := range docs {
		if s.startValidation(doc, b) {
			b.remaining++
		}
	}
	if b.remaining == 0 {
		s.finishBatch(b)
	}
}

func (s *Server) finishBatch(b *batch) {
	if len(b.errs) > 0 {
		if err := s.showMessage(messageError, errors.Join(b.errs...).Error()); err != nil {
			s.logf("failed to report batch errors: %v", err)
		}
	}
	s.progressStop()
}

// startValidation clears the document's registry and starts the engine call.
// It reports false when the document is not validated at all: it has no
// registry, no engine claims it, or the engine does not handle its extension
// or target path.
func (s *Server) startValidation(doc *document, b *batch) bool {
	s.traceEvent("validate "+doc.uri, nil)
	reg := s.registries[doc.uri]
	if reg == nil {
		return false
	}
	root, engine := s.lookupEngine(doc.path)
	if engine == nil {
		s.traceEvent("no engine for "+doc.uri, nil)
		return false
	}
	if !supportsExtension(engine, doc.path) || !s.isTarget(root, doc.path) {
		s.traceEvent("validation skipped for "+doc.uri, nil)
		return false
	}
	reg.Clear()
	s.pending++

	ctx, linter := s.ctx, engine.Linter
	text, file := doc.text, doc.path
	ev := lintEvent{uri: doc.uri, version: doc.version, batch: b}
	go func() {
		ev.result, ev.ignored, ev.err = runLint(ctx, linter, text, file)
		s.post(ev)
	}()
	return true
}

func runLint(ctx context.Context, linter textlint.Linter, text, file string) (*textlint.Result, bool, error) {
	scan, err := textlint.Scan(ctx, linter, file)
	if err != nil {
		return nil, false, fmt.Errorf("scan %s: %w", file, err)
	}
	if scan.Status != textlint.ScanOK {
		return nil, true, nil
	}
	res, err := linter.LintText(ctx, text, file)
	if err != nil {
		return nil, false, fmt.Errorf("lint %s: %w", file, err)
	}
	return res, false, nil
}

func (s *Server) handleLintEvent(ev lintEvent) error {
	s.pending--
	switch {
	case ev.err != nil:
		s.logf("validation failed: %v", ev.err)
		if ev.batch != nil {
			ev.batch.fail(ev.err)
		} else {
			s.sendStatus(statusError, ev.err)
		}
	case ev.ignored:
		s.traceEvent("ignore "+ev.uri, nil)
	default:
		s.publish(ev)
	}
	if ev.batch == nil {
		if ev.err == nil {
			s.sendStatus(statusOK, nil)
		}
		s.progressStop()
		return nil
	}
	ev.batch.remaining--
	if ev.batch.remaining == 0 {
		s.finishBatch(ev.batch)
	}
	return nil
}

// publish registers the fixes of a completed run and sends its diagnostics.
// The registry is rebuilt from this run alone, so when runs of one document
// complete out of order the last completion wins.
func (s *Server) publish(ev lintEvent) {
	reg := s.registries[ev.uri]
	if reg == nil || ev.result == nil {
		return
	}
	reg.Clear()
	diagnostics := make([]diag.Diagnostic, 0, len(ev.result.Messages))
	for _, m := range ev.result.Messages {
		m, d := diag.FromFinding(m)
		reg.Register(ev.version, d, m)
		diagnostics = append(diagnostics, d)
	}
	s.traceEvent("sendDiagnostics "+ev.uri, len(diagnostics))
	version := ev.version
	if err := s.sendPublish(ev.uri, &version, diagnostics); err != nil {
		s.logf("failed to publish diagnostics: %v", err)
	}
}

// reconfigure rebuilds every engine, clears published diagnostics and
// revalidates every tracked document as one batch.
func (s *Server) reconfigure() {
	s.traceEvent("reconfigure", nil)
	s.configureEngines()
	s.restartWatcher()

	uris := make([]string, 0, len(s.registries))
	for uri := range s.registries {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	docs := make([]*document, 0, len(uris))
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics for %s: %v", uri, err)
		}
		if doc := s.docs[uri]; doc != nil {
			docs = append(docs, doc)
		}
	}
	s.validateMany(docs)
}
