package lsp

import (
	"encoding/json"
	"fmt"

	"textlintls/internal/config"
)

// traceEvent logs message at debug level and mirrors it to the client as
// $/logTrace when tracing is on. In verbose mode data is attached as JSON.
func (s *Server) traceEvent(message string, data any) {
	s.log.WithField("data", data).Debug("lsp: " + message)
	switch s.traceLevel {
	case config.TraceMessages:
		s.notify("$/logTrace", logTraceParams{Message: message})
	case config.TraceVerbose:
		s.notify("$/logTrace", logTraceParams{Message: message, Verbose: verbose(data)})
	}
}

func verbose(data any) string {
	switch v := data.(type) {
	case nil:
		return ""
	case string:
		return v
	case error:
		return v.Error()
	}
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprint(data)
	}
	return string(b)
}
