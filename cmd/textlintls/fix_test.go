package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"textlintls/internal/ui"
)

func TestFixFilesWritesChanges(t *testing.T) {
	root := t.TempDir()
	dirty := filepath.Join(root, "dirty.md")
	clean := filepath.Join(root, "clean.md")
	writeFile(t, dirty, "TODO fix\nok TODO here\n")
	writeFile(t, clean, "nothing\n")

	events := make(chan ui.Event, 16)
	opts := fixOptions{root: root, jobs: 2, passes: 5}
	results, err := fixFiles(context.Background(), todoLinter{}, []string{clean, dirty}, opts, events)
	close(events)
	if err != nil {
		t.Fatalf("fixFiles: %v", err)
	}
	if got := readFile(t, dirty); got != "fix\nok here\n" {
		t.Fatalf("dirty.md = %q", got)
	}
	if got := readFile(t, clean); got != "nothing\n" {
		t.Fatalf("clean.md = %q", got)
	}
	if results[0].changed || !results[1].changed || results[1].fixes != 2 || results[1].remaining != 0 {
		t.Fatalf("unexpected results: %+v", results)
	}

	final := make(map[string]ui.Event)
	count := 0
	for ev := range events {
		count++
		final[ev.File] = ev
	}
	if count != 4 {
		t.Fatalf("expected 4 events, got %d", count)
	}
	if final["dirty.md"].Status != ui.StatusFixed || final["dirty.md"].Fixes != 2 {
		t.Fatalf("dirty.md event = %+v", final["dirty.md"])
	}
	if final["clean.md"].Status != ui.StatusClean {
		t.Fatalf("clean.md event = %+v", final["clean.md"])
	}
}

func TestFixFilesDryRun(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.md")
	writeFile(t, file, "TODO a\n")

	opts := fixOptions{root: root, jobs: 1, passes: 3, dryRun: true}
	results, err := fixFiles(context.Background(), todoLinter{}, []string{file}, opts, nil)
	if err != nil {
		t.Fatalf("fixFiles: %v", err)
	}
	if got := readFile(t, file); got != "TODO a\n" {
		t.Fatalf("dry run modified file: %q", got)
	}
	if !results[0].changed || results[0].fixes != 1 {
		t.Fatalf("unexpected result %+v", results[0])
	}

	var out bytes.Buffer
	plainColor(t)
	printFixes(&out, opts, results)
	if !strings.Contains(out.String(), "Would apply 1 fix(es) to a.md") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestFixFilesNative(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.md")
	writeFile(t, file, "TODO a TODO b\n")

	opts := fixOptions{root: root, jobs: 1, native: true}
	results, err := fixFiles(context.Background(), todoLinter{}, []string{file}, opts, nil)
	if err != nil {
		t.Fatalf("fixFiles: %v", err)
	}
	if got := readFile(t, file); got != "a b\n" {
		t.Fatalf("a.md = %q", got)
	}
	if results[0].fixes != 2 {
		t.Fatalf("unexpected result %+v", results[0])
	}
}

func TestFixFilesReportsFailures(t *testing.T) {
	root := t.TempDir()
	ok := filepath.Join(root, "ok.md")
	writeFile(t, ok, "TODO x\n")
	missing := filepath.Join(root, "missing.md")

	opts := fixOptions{root: root, jobs: 2, passes: 2}
	results, err := fixFiles(context.Background(), todoLinter{}, []string{missing, ok}, opts, nil)
	if err == nil {
		t.Fatal("expected an error for the missing file")
	}
	if results[0].err == nil || results[1].err != nil {
		t.Fatalf("unexpected results %+v", results)
	}
	if got := readFile(t, ok); got != "x\n" {
		t.Fatalf("ok.md = %q", got)
	}
}

func TestParseProgressMode(t *testing.T) {
	for in, want := range map[string]progressMode{"": progressAuto, "AUTO": progressAuto, "on": progressOn, " off ": progressOff} {
		got, err := parseProgressMode(in)
		if err != nil || got != want {
			t.Fatalf("parseProgressMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := parseProgressMode("sometimes"); err == nil {
		t.Fatal("expected error")
	}
}

func TestUseProgressViewFollowsWriter(t *testing.T) {
	var buf bytes.Buffer
	if useProgressView(progressAuto, &buf) {
		t.Fatal("auto mode must not draw on a buffer")
	}
	if !useProgressView(progressOn, &buf) {
		t.Fatal("on mode must always draw")
	}
	if useProgressView(progressOff, os.Stdout) {
		t.Fatal("off mode must never draw")
	}
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if useProgressView(progressAuto, f) {
		t.Fatal("auto mode must not draw on a regular file")
	}
}

func TestFixFilesSkipsAfterCancel(t *testing.T) {
	root := t.TempDir()
	dirty := filepath.Join(root, "dirty.md")
	writeFile(t, dirty, "TODO fix\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	events := make(chan ui.Event, 4)
	results, err := fixFiles(ctx, todoLinter{}, []string{dirty}, fixOptions{root: root, jobs: 1, passes: 5}, events)
	close(events)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if !errors.Is(results[0].err, context.Canceled) || results[0].changed {
		t.Fatalf("unexpected result %+v", results[0])
	}
	if got := readFile(t, dirty); got != "TODO fix\n" {
		t.Fatalf("dirty.md rewritten after cancel: %q", got)
	}
	for ev := range events {
		if ev.Status != ui.StatusSkipped {
			t.Fatalf("unexpected event %+v", ev)
		}
	}
}

func TestQuittingProgressViewCancelsWork(t *testing.T) {
	orig := runProgram
	t.Cleanup(func() { runProgram = orig })
	// The view quits at once, as it does on ctrl+c.
	runProgram = func(tea.Model, io.Writer) error { return nil }

	started := make(chan struct{})
	work := func(ctx context.Context, events chan<- ui.Event) ([]fileFix, error) {
		close(started)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return nil, errors.New("work was not cancelled")
		}
	}
	_, err := runFixWithUI(context.Background(), io.Discard, "fix", []string{"a.md"}, work)
	<-started
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestFinishedWorkIsNotCancelled(t *testing.T) {
	orig := runProgram
	t.Cleanup(func() { runProgram = orig })
	// The real view, headless: it quits only once the work closes events.
	runProgram = func(model tea.Model, out io.Writer) error {
		_, err := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil), tea.WithoutRenderer()).Run()
		return err
	}

	want := []fileFix{{path: "a.md", changed: true, fixes: 1}}
	work := func(ctx context.Context, events chan<- ui.Event) ([]fileFix, error) {
		return want, ctx.Err()
	}
	got, err := runFixWithUI(context.Background(), io.Discard, "fix", []string{"a.md"}, work)
	if err != nil || len(got) != 1 || !got[0].changed {
		t.Fatalf("runFixWithUI = %+v, %v", got, err)
	}
}
