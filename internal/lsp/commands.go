package lsp

import (
	"encoding/json"
	"errors"
	"fmt"

	"textlintls/internal/fix"
)

func (s *Server) handleExecuteCommand(msg *rpcMessage) error {
	var params executeCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	s.traceEvent("executeCommand "+params.Command, params.Arguments)

	var (
		uri string
		err error
	)
	switch params.Command {
	case commandApplyTextEdits:
		var (
			version int
			edits   []fix.TextEdit
		)
		if !decodeArgs(params.Arguments, &uri, &version, &edits) {
			return s.sendError(msg.ID, codeInvalidParams, "expected arguments (uri, version, edits)")
		}
		err = s.applyTextEdits(uri, version, edits)
	case commandExecuteAutofix:
		if !decodeArgs(params.Arguments, &uri) {
			return s.sendError(msg.ID, codeInvalidParams, "expected argument (uri)")
		}
		if result, ok := s.allFixes(uri); ok {
			err = s.applyTextEdits(uri, result.DocumentVersion, result.Edits)
		}
	case commandShowOutputChannel:
		return s.sendResponse(msg.ID, nil)
	default:
		return s.sendError(msg.ID, codeInvalidParams, fmt.Sprintf("unknown command %q", params.Command))
	}

	switch {
	case errors.Is(err, fix.ErrStaleFixes):
		s.traceEvent("stale fixes for "+uri, err)
		if err := s.showMessage(messageInfo, fmt.Sprintf("textlint fixes are outdated and can't be applied to %s", uri)); err != nil {
			return err
		}
	case err != nil:
		return s.sendError(msg.ID, codeInternalError, err.Error())
	}
	return s.sendResponse(msg.ID, nil)
}

// decodeArgs decodes positional command arguments into dst. It reports false
// when the count or any type does not match.
func decodeArgs(args []json.RawMessage, dst ...any) bool {
	if len(args) != len(dst) {
		return false
	}
	for i, raw := range args {
		if err := json.Unmarshal(raw, dst[i]); err != nil {
			return false
		}
	}
	return true
}

// applyTextEdits asks the client to apply edits computed for version. Edits
// for any other version than the live document's are rejected with
// fix.ErrStaleFixes.
func (s *Server) applyTextEdits(uri string, version int, edits []fix.TextEdit) error {
	doc := s.docs[uri]
	if doc == nil {
		return fmt.Errorf("document %s is not open", uri)
	}
	if err := fix.CheckVersion(version, doc.version); err != nil {
		return err
	}
	if len(edits) == 0 {
		return nil
	}
	_, err := s.sendRequest("workspace/applyEdit", applyWorkspaceEditParams{
		Label: "textlint: autofix",
		Edit: workspaceEdit{
			DocumentChanges: []textDocumentEdit{{
				TextDocument: versionedTextDocumentIdentifier{URI: uri, Version: version},
				Edits:        edits,
			}},
		},
	})
	return err
}
