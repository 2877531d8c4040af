package fix

import (
	"context"
	"fmt"

	"textlintls/internal/diag"
	"textlintls/internal/textlint"
)

// TextLinter lints a document held in memory.
type TextLinter interface {
	LintText(ctx context.Context, text, filePath string) (*textlint.Result, error)
}

// Outcome describes the result of FixText.
type Outcome struct {
	Output  string
	Applied []AutoFix
	// Remaining counts findings still reported by the last lint pass.
	Remaining int
	Passes    int
}

// Changed reports whether any fix was applied.
func (o Outcome) Changed() bool {
	return len(o.Applied) > 0
}

// FixText lints text and applies the separated fixes of every pass until a
// pass finds nothing to fix or maxPasses passes have run. Fixes that overlap
// a kept fix are retried in the next pass against the updated text.
func FixText(ctx context.Context, l TextLinter, text, filePath string, maxPasses int) (Outcome, error) {
	out := Outcome{Output: text}
	maxPasses = max(1, maxPasses)
	for pass := 1; pass <= maxPasses; pass++ {
		res, err := l.LintText(ctx, out.Output, filePath)
		if err != nil {
			return out, err
		}
		reg := NewRegistry()
		for _, m := range res.Messages {
			m, d := diag.FromFinding(m)
			reg.Register(pass, d, m)
		}
		out.Remaining = len(res.Messages)
		fixes := reg.SeparatedValues()
		if len(fixes) == 0 {
			break
		}
		next, err := ApplyText(out.Output, fixes)
		if err != nil {
			return out, fmt.Errorf("pass %d: %w", pass, err)
		}
		out.Output = next
		out.Applied = append(out.Applied, fixes...)
		out.Passes = pass
		out.Remaining -= len(fixes)
	}
	return out, nil
}
