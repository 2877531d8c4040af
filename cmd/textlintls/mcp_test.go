package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"textlintls/internal/textlint"
)

func newTestTools(t *testing.T) *mcpTools {
	t.Helper()
	return &mcpTools{
		root:   t.TempDir(),
		passes: 5,
		open: func(context.Context) (textlint.Linter, error) {
			return todoLinter{}, nil
		},
	}
}

func resultText(r *mcp.CallToolResult) string {
	var b strings.Builder
	for _, c := range r.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func TestMCPLintText(t *testing.T) {
	plainColor(t)
	tools := newTestTools(t)
	res := tools.lintText(context.Background(), textArg{Text: "a\nTODO b\n", Filename: "notes.md"})
	text := resultText(res)
	if res.IsError {
		t.Fatalf("unexpected error: %s", text)
	}
	if !strings.Contains(text, "1 problem(s)") || !strings.Contains(text, `notes.md:2:1: ERROR Found TODO: "TODO" (no-todo) [fixable]`) {
		t.Fatalf("unexpected output:\n%s", text)
	}

	res = tools.lintText(context.Background(), textArg{Text: "fine", Filename: "notes.md"})
	if got := resultText(res); got != "No problems found." {
		t.Fatalf("unexpected clean output %q", got)
	}
}

func TestMCPFixText(t *testing.T) {
	tools := newTestTools(t)
	res := tools.fixText(context.Background(), fixArg{Text: "TODO a TODO b", Filename: "notes.md"})
	text := resultText(res)
	if !strings.HasPrefix(text, "Applied 2 fix(es) in 1 pass(es); 0 finding(s) remain.") {
		t.Fatalf("unexpected header:\n%s", text)
	}
	if !strings.HasSuffix(text, "\n\na b") {
		t.Fatalf("unexpected output:\n%s", text)
	}

	res = tools.fixText(context.Background(), fixArg{Text: "TODO a", Filename: "notes.md", Rule: "other"})
	if got := resultText(res); got != "Nothing to fix." {
		t.Fatalf("rule filter not applied: %q", got)
	}
}

func TestMCPFixEdits(t *testing.T) {
	tools := newTestTools(t)
	res := tools.fixEdits(context.Background(), fixArg{Text: "x TODO y", Filename: "notes.md"})
	text := resultText(res)
	if !strings.Contains(text, `"newText": ""`) || !strings.Contains(text, `"character": 2`) {
		t.Fatalf("unexpected edits:\n%s", text)
	}

	res = tools.fixEdits(context.Background(), fixArg{Text: "x TODO y", Filename: "notes.md", Rule: "other"})
	if got := resultText(res); got != "[]" {
		t.Fatalf("expected no edits, got %q", got)
	}
}

func TestMCPEngineErrors(t *testing.T) {
	tools := &mcpTools{
		root: t.TempDir(),
		open: func(context.Context) (textlint.Linter, error) {
			return nil, textlint.ErrNoConfig
		},
	}
	res := tools.lintText(context.Background(), textArg{Text: "x", Filename: "a.md"})
	if !res.IsError || !strings.Contains(resultText(res), "no configuration found") {
		t.Fatalf("expected engine error, got %q", resultText(res))
	}
	if _, err := tools.engineLinter(context.Background()); !errors.Is(err, textlint.ErrNoConfig) {
		t.Fatalf("engineLinter error = %v", err)
	}
}
