package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"textlintls/internal/textlint"
)

func plainColor(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func TestLintFilesKeepsOrder(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.md")
	b := filepath.Join(root, "b.md")
	writeFile(t, a, "clean\n")
	writeFile(t, b, "one\nTODO two TODO three\n")

	results, err := lintFiles(context.Background(), todoLinter{}, []string{a, b}, 2)
	if err != nil {
		t.Fatalf("lintFiles: %v", err)
	}
	if len(results) != 2 || results[0].FilePath != a || results[1].FilePath != b {
		t.Fatalf("unexpected results order: %+v", results)
	}
	if len(results[0].Messages) != 0 || len(results[1].Messages) != 2 {
		t.Fatalf("unexpected findings: %+v", results)
	}
	s := summarize(results)
	if s.errors != 2 || s.fixable != 2 || s.total() != 2 {
		t.Fatalf("summary = %+v", s)
	}
}

func TestLintFilesMissingFile(t *testing.T) {
	_, err := lintFiles(context.Background(), todoLinter{}, []string{filepath.Join(t.TempDir(), "gone.md")}, 1)
	if err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestFormatFinding(t *testing.T) {
	plainColor(t)
	m := textlint.Message{
		RuleID:   "no-todo",
		Message:  `Found TODO: "TODO"`,
		Line:     2,
		Column:   5,
		Severity: severity(1),
	}
	got := formatFinding("docs/a.md", m)
	want := `docs/a.md:2:5: WARNING Found TODO: "TODO" (no-todo)`
	if got != want {
		t.Fatalf("formatFinding = %q, want %q", got, want)
	}
}

func TestPrintResults(t *testing.T) {
	plainColor(t)
	root := t.TempDir()
	results := []textlint.Result{{
		FilePath: filepath.Join(root, "a.md"),
		Messages: []textlint.Message{
			{RuleID: "r2", Message: "later", Line: 3, Column: 1, Severity: severity(2)},
			{RuleID: "r1", Message: "earlier", Line: 1, Column: 4},
		},
	}}
	var out bytes.Buffer
	printResults(&out, root, results)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
	if lines[0] != "a.md:1:4: INFO earlier (r1)" || lines[1] != "a.md:3:1: ERROR later (r2)" {
		t.Fatalf("unexpected findings:\n%s", out.String())
	}
	if !strings.Contains(lines[3], "2 problem(s) (1 error(s), 0 warning(s)), 0 fixable") {
		t.Fatalf("unexpected summary %q", lines[3])
	}

	out.Reset()
	printResults(&out, root, []textlint.Result{{FilePath: filepath.Join(root, "a.md")}})
	if got := strings.TrimSpace(out.String()); got != "No problems found in 1 file(s)" {
		t.Fatalf("unexpected clean output %q", got)
	}
}
