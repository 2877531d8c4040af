package lsp

import (
	"unicode/utf8"

	"textlintls/internal/diag"
)

// applyChanges replays incremental and full content changes in order.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := offsetForPosition(text, change.Range.Start)
		end := max(start, offsetForPosition(text, change.Range.End))
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

// offsetForPosition returns the byte offset of pos in text. Characters count
// UTF-16 code units; "\n", "\r\n" and "\r" end a line. Positions past the end
// of a line clamp to the line end, positions past the last line to len(text).
func offsetForPosition(text string, pos diag.Position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	i := 0
	for line := 0; line < pos.Line; line++ {
		next := lineEnd(text, i)
		if next >= len(text) {
			return len(text)
		}
		if text[next] == '\r' && next+1 < len(text) && text[next+1] == '\n' {
			next++
		}
		i = next + 1
	}
	end := lineEnd(text, i)
	units := 0
	for i < end && units < pos.Character {
		r, size := utf8.DecodeRuneInString(text[i:])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		i += size
	}
	return i
}

// lineEnd returns the index of the first line break at or after from.
func lineEnd(text string, from int) int {
	for i := from; i < len(text); i++ {
		if text[i] == '\n' || text[i] == '\r' {
			return i
		}
	}
	return len(text)
}
