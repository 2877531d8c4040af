package lsp

import (
	"encoding/json"
	"fmt"

	"textlintls/internal/diag"
	"textlintls/internal/fix"
)

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	selected := decodeDiagnostics(params.Context.Diagnostics)
	return s.sendResponse(msg.ID, s.buildCodeActions(params.TextDocument.URI, selected))
}

// decodeDiagnostics keeps the diagnostics that have the shape this server
// publishes. Others cannot match a registered fix.
func decodeDiagnostics(raw []json.RawMessage) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(raw))
	for _, r := range raw {
		var d diag.Diagnostic
		if err := json.Unmarshal(r, &d); err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}

// buildCodeActions offers, for every selected diagnostic with a registered
// fix, a single fix and a fix-all for its rule, followed by one fix-all over
// every rule. Versions are not checked here; applying a stale action is
// rejected by executeCommand.
func (s *Server) buildCodeActions(uri string, selected []diag.Diagnostic) []codeAction {
	actions := []codeAction{}
	reg := s.registries[uri]
	doc := s.docs[uri]
	if reg == nil || reg.IsEmpty() || doc == nil {
		return actions
	}
	version := reg.Version()
	toAction := func(title string, fixes []fix.AutoFix) codeAction {
		return codeAction{
			Title: title,
			Kind:  codeActionQuickFix,
			Command: &command{
				Title:     title,
				Command:   commandApplyTextEdits,
				Arguments: []any{uri, version, fix.ToTextEdits(doc.text, fixes)},
			},
		}
	}

	for _, af := range reg.Find(selected) {
		actions = append(actions, toAction(fmt.Sprintf("Fix this %s problem", af.RuleID), []fix.AutoFix{af}))
		if same := reg.SeparatedValues(fix.SameRule(af.RuleID)); len(same) > 0 {
			actions = append(actions, toAction(fmt.Sprintf("Fix all %s problems", af.RuleID), same))
		}
	}
	if all := reg.SeparatedValues(); len(all) > 0 {
		actions = append(actions, toAction("Fix all auto-fixable problems", all))
	}
	return actions
}

func (s *Server) handleAllFixes(msg *rpcMessage) error {
	var params allFixesParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	uri := params.TextDocument.URI
	s.traceEvent("allFixes "+uri, nil)
	result, ok := s.allFixes(uri)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) allFixes(uri string) (allFixesResult, bool) {
	reg := s.registries[uri]
	doc := s.docs[uri]
	if reg == nil || reg.IsEmpty() || doc == nil {
		return allFixesResult{}, false
	}
	return allFixesResult{
		DocumentVersion: reg.Version(),
		Edits:           fix.ToTextEdits(doc.text, reg.SeparatedValues()),
	}, true
}
