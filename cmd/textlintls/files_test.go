package main

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestCollectFilesWalksDirectories(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.md", "b.txt", "c.go", "node_modules/x.md", ".git/y.md", "sub/d.md"} {
		writeFile(t, filepath.Join(root, name), "text\n")
	}
	files, err := collectFiles(context.Background(), todoLinter{ignored: "b.txt"}, []string{root})
	if err != nil {
		t.Fatalf("collectFiles: %v", err)
	}
	want := []string{filepath.Join(root, "a.md"), filepath.Join(root, "sub", "d.md")}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
}

func TestCollectFilesGlobAndDedup(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), "x")
	writeFile(t, filepath.Join(root, "docs", "b.md"), "x")
	writeFile(t, filepath.Join(root, "node_modules", "c.md"), "x")

	pattern := filepath.Join(root, "**", "*.md")
	files, err := collectFiles(context.Background(), todoLinter{}, []string{pattern, filepath.Join(root, "a.md")})
	if err != nil {
		t.Fatalf("collectFiles: %v", err)
	}
	want := []string{filepath.Join(root, "a.md"), filepath.Join(root, "docs", "b.md")}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
}

func TestCollectFilesNoMatch(t *testing.T) {
	root := t.TempDir()
	_, err := collectFiles(context.Background(), todoLinter{}, []string{filepath.Join(root, "*.md")})
	if err == nil || !strings.Contains(err.Error(), "no files match") {
		t.Fatalf("expected no match error, got %v", err)
	}
}

func TestDisplayPath(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work", "proj")
	cases := []struct {
		path string
		want string
	}{
		{filepath.Join(root, "docs", "a.md"), filepath.Join("docs", "a.md")},
		{filepath.Join(string(filepath.Separator), "work", "other.md"), filepath.Join(string(filepath.Separator), "work", "other.md")},
	}
	for _, tc := range cases {
		if got := displayPath(root, tc.path); got != tc.want {
			t.Fatalf("displayPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
