package lsp

import (
	"encoding/json"
	"slices"

	"textlintls/internal/config"
)

func validTrace(level string) bool {
	switch level {
	case config.TraceOff, config.TraceMessages, config.TraceVerbose:
		return true
	}
	return false
}

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	var section lspSettings
	if len(params.Settings) > 0 {
		if err := json.Unmarshal(params.Settings, &section); err != nil {
			s.logf("ignoring settings: %v", err)
			return nil
		}
	}
	merged, err := s.settings.Merge(section.Textlint)
	if err != nil {
		s.logf("ignoring settings: %v", err)
		return s.showMessage(messageWarning, "textlint: "+err.Error())
	}
	s.settings = merged
	s.traceLevel = merged.Trace
	s.traceEvent("didChangeConfiguration", merged)
	s.reconfigure()
	return nil
}

func (s *Server) handleSetTrace(msg *rpcMessage) error {
	var params setTraceParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	if validTrace(params.Value) {
		s.traceLevel = params.Value
	}
	return nil
}

func (s *Server) handleDidChangeWorkspaceFolders(msg *rpcMessage) error {
	var params didChangeWorkspaceFoldersParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	for _, removed := range params.Event.Removed {
		s.folders = slices.DeleteFunc(s.folders, func(f workspaceFolder) bool {
			return f.URI == removed.URI
		})
	}
	for _, added := range params.Event.Added {
		exists := slices.ContainsFunc(s.folders, func(f workspaceFolder) bool {
			return f.URI == added.URI
		})
		if !exists {
			s.folders = append(s.folders, added)
		}
	}
	s.reconfigure()
	return nil
}

func (s *Server) handleDidChangeWatchedFiles(msg *rpcMessage) error {
	var params didChangeWatchedFilesParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.traceEvent("didChangeWatchedFiles", params.Changes)
	s.reconfigure()
	return nil
}
