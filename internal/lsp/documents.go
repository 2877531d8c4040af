package lsp

import (
	"encoding/json"

	"textlintls/internal/config"
	"textlintls/internal/fix"
)

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	item := params.TextDocument
	s.traceEvent("didOpen "+item.URI, nil)
	if !isFileURI(item.URI) {
		return nil
	}
	doc := &document{
		uri:     item.URI,
		path:    uriToPath(item.URI),
		text:    item.Text,
		version: item.Version,
	}
	s.docs[doc.uri] = doc
	if _, ok := s.registries[doc.uri]; ok {
		return nil
	}
	s.registries[doc.uri] = fix.NewRegistry()
	s.validateSingle(doc)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	doc := s.docs[params.TextDocument.URI]
	if doc == nil {
		return nil
	}
	doc.text = applyChanges(doc.text, params.ContentChanges)
	doc.version = params.TextDocument.Version
	s.traceEvent("didChange "+doc.uri, s.settings.Run)
	if s.settings.Run == config.RunOnType {
		s.validateSingle(doc)
	}
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	doc := s.docs[params.TextDocument.URI]
	if doc == nil {
		return nil
	}
	if params.Text != nil {
		doc.text = *params.Text
	}
	s.traceEvent("didSave "+doc.uri, s.settings.Run)
	if s.settings.Run == config.RunOnSave {
		s.validateSingle(doc)
	}
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	s.traceEvent("didClose "+uri, nil)
	delete(s.docs, uri)
	if !isFileURI(uri) {
		return nil
	}
	delete(s.registries, uri)
	return s.sendPublish(uri, nil, nil)
}
