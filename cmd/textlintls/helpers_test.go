package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"textlintls/internal/textlint"
)

// todoLinter reports every "TODO " and fixes it by deleting it.
type todoLinter struct {
	ignored string
}

func severity(n int) *int { return &n }

func (todoLinter) LintText(_ context.Context, text, filePath string) (*textlint.Result, error) {
	res := &textlint.Result{FilePath: filePath}
	line, col := 1, 1
	for i := 0; i < len(text); i++ {
		if strings.HasPrefix(text[i:], "TODO ") {
			res.Messages = append(res.Messages, textlint.Message{
				Type:     "lint",
				RuleID:   "no-todo",
				Message:  `Found TODO: "TODO"`,
				Line:     line,
				Column:   col,
				Index:    i,
				Severity: severity(2),
				Fix:      &textlint.FixCommand{Range: [2]int{i, i + 5}, Text: ""},
			})
		}
		if text[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return res, nil
}

func (l todoLinter) LintFiles(ctx context.Context, files []string) ([]textlint.Result, error) {
	var out []textlint.Result
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		res, _ := l.LintText(ctx, string(data), f)
		out = append(out, *res)
	}
	return out, nil
}

func (l todoLinter) FixText(ctx context.Context, text, filePath string) (*textlint.FixResult, error) {
	res, _ := l.LintText(ctx, text, filePath)
	return &textlint.FixResult{
		FilePath:         filePath,
		Output:           strings.ReplaceAll(text, "TODO ", ""),
		Messages:         res.Messages,
		ApplyingMessages: res.Messages,
	}, nil
}

func (todoLinter) FixFiles(context.Context, []string) ([]textlint.FixResult, error) {
	return nil, nil
}

func (todoLinter) AvailableExtensions() []string {
	return []string{".md", ".txt"}
}

func (l todoLinter) ScanFilePath(_ context.Context, path string) (textlint.ScanResult, error) {
	if l.ignored != "" && filepath.Base(path) == l.ignored {
		return textlint.ScanResult{Status: textlint.ScanIgnored}, nil
	}
	return textlint.ScanResult{Status: textlint.ScanOK}, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
