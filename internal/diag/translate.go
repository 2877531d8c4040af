package diag

import (
	"strings"

	"textlintls/internal/textlint"
)

// Source tags every diagnostic produced from a textlint finding.
const Source = "textlint"

// FromFinding converts a finding into a diagnostic. The finding is returned
// unchanged so callers can pair both when registering fixes.
func FromFinding(msg textlint.Message) (textlint.Message, Diagnostic) {
	text := msg.Message
	if msg.RuleID != "" {
		text = msg.Message + " (" + msg.RuleID + ")"
	}
	start := Position{
		Line:      max(0, msg.Line-1),
		Character: max(0, msg.Column-1),
	}
	end := Position{
		Line:      start.Line,
		Character: max(start.Character, start.Character+underlineLength(msg.Message)),
	}
	return msg, Diagnostic{
		Range:    Range{Start: start, End: end},
		Severity: SeverityFromLevel(msg.Severity),
		Code:     msg.RuleID,
		Source:   Source,
		Message:  text,
	}
}

// underlineLength guesses how much of the line the finding covers: the
// length of the first quoted excerpt, else the position of an arrow marker,
// else nothing. Offsets count UTF-16 code units like the editor does.
func underlineLength(message string) int {
	if first := strings.Index(message, `"`); first >= 0 {
		rest := message[first+1:]
		second := strings.Index(rest, `"`)
		if second < 0 {
			return 0
		}
		return utf16Len(rest[:second])
	}
	if strings.Contains(message, "->") {
		idx := strings.Index(message, " ->")
		if idx < 0 {
			return 0
		}
		return utf16Len(message[:idx])
	}
	return 0
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}
