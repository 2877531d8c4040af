package diag

import "fortio.org/safecast"

// Severity is the LSP diagnostic severity.
type Severity int

const (
	SevError Severity = iota + 1
	SevWarning
	SevInformation
	SevHint
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "ERROR"
	case SevWarning:
		return "WARNING"
	case SevInformation:
		return "INFO"
	case SevHint:
		return "HINT"
	}
	return "UNKNOWN"
}

// textlint severity levels.
const (
	levelInfo uint8 = iota
	levelWarning
	levelError
)

// SeverityFromLevel maps a textlint severity level. Absent or unknown levels
// are reported as information.
func SeverityFromLevel(level *int) Severity {
	if level == nil {
		return SevInformation
	}
	// Conv rejects levels that would wrap when narrowed, so 258 never reads
	// as an error.
	lv, err := safecast.Conv[uint8](*level)
	if err != nil {
		return SevInformation
	}
	switch lv {
	case levelError:
		return SevError
	case levelWarning:
		return SevWarning
	case levelInfo:
		return SevInformation
	}
	return SevInformation
}
