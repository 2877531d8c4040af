package fix

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"textlintls/internal/diag"
)

var (
	// ErrStaleFixes is returned when fixes were computed for another version
	// of the document than the one they would be applied to.
	ErrStaleFixes = errors.New("fixes are outdated")
	// ErrOverlap is returned when a fix set contains overlapping ranges.
	ErrOverlap = errors.New("fix ranges overlap")
	// ErrOutOfRange is returned when a fix range does not fit the text.
	ErrOutOfRange = errors.New("fix range out of bounds")
)

// TextEdit replaces the text covered by Range with NewText.
type TextEdit struct {
	Range   diag.Range `json:"range"`
	NewText string     `json:"newText"`
}

// CheckVersion guards application of fixes computed for recorded against a
// document currently at live.
func CheckVersion(recorded, live int) error {
	if recorded != live {
		return fmt.Errorf("%w: computed for version %d, document is at version %d", ErrStaleFixes, recorded, live)
	}
	return nil
}

// PositionAt maps a UTF-16 offset into text to a line/character position.
// Offsets outside the text are clamped. "\n", "\r\n" and "\r" end a line.
func PositionAt(text string, offset int) diag.Position {
	var pos diag.Position
	units := 0
	for i := 0; i < len(text) && units < offset; {
		r, size := utf8.DecodeRuneInString(text[i:])
		n := utf16Units(r)
		if units+n > offset {
			break
		}
		units += n
		i += size
		switch {
		case r == '\n':
			pos.Line++
			pos.Character = 0
		case r == '\r' && (i >= len(text) || text[i] != '\n'):
			pos.Line++
			pos.Character = 0
		default:
			pos.Character += n
		}
	}
	return pos
}

// byteOffset maps a UTF-16 offset into text to a byte offset. ok is false when
// the offset lies beyond the text or inside a surrogate pair.
func byteOffset(text string, offset int) (int, bool) {
	if offset < 0 {
		return 0, false
	}
	units := 0
	for i, r := range text {
		if units == offset {
			return i, true
		}
		units += utf16Units(r)
		if units > offset {
			return 0, false
		}
	}
	if units == offset {
		return len(text), true
	}
	return 0, false
}

func utf16Units(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

// ToTextEdit converts a fix into an edit over text.
func ToTextEdit(text string, af AutoFix) TextEdit {
	return TextEdit{
		Range: diag.Range{
			Start: PositionAt(text, af.Fix.Start()),
			End:   PositionAt(text, af.Fix.End()),
		},
		NewText: af.Fix.Text,
	}
}

// ToTextEdits converts every fix into an edit over text.
func ToTextEdits(text string, fixes []AutoFix) []TextEdit {
	edits := make([]TextEdit, 0, len(fixes))
	for _, af := range fixes {
		edits = append(edits, ToTextEdit(text, af))
	}
	return edits
}

// ApplyText applies a non-overlapping fix set to text.
func ApplyText(text string, fixes []AutoFix) (string, error) {
	if len(fixes) == 0 {
		return text, nil
	}
	type span struct {
		start, end int
		newText    string
	}
	spans := make([]span, 0, len(fixes))
	for _, af := range fixes {
		start, okStart := byteOffset(text, af.Fix.Start())
		end, okEnd := byteOffset(text, af.Fix.End())
		if !okStart || !okEnd || end < start {
			return text, fmt.Errorf("%w: [%d,%d) rule %s", ErrOutOfRange, af.Fix.Start(), af.Fix.End(), af.RuleID)
		}
		spans = append(spans, span{start: start, end: end, newText: af.Fix.Text})
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return text, ErrOverlap
		}
	}

	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, s := range spans {
		b.WriteString(text[prev:s.start])
		b.WriteString(s.newText)
		prev = s.end
	}
	b.WriteString(text[prev:])
	return b.String(), nil
}
