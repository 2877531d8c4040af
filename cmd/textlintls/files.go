package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"textlintls/internal/textlint"
)

// skippedDirs are never descended into when expanding a directory.
var skippedDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
}

func skipPath(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if _, ok := skippedDirs[part]; ok {
			return true
		}
	}
	return false
}

// collectFiles expands args into the documents linter handles. Directories
// are walked recursively and arguments that do not exist are treated as glob
// patterns. Files the engine ignores are dropped. The result is sorted.
func collectFiles(ctx context.Context, linter textlint.Linter, args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	exts := make(map[string]struct{})
	for _, ext := range linter.AvailableExtensions() {
		exts[ext] = struct{}{}
	}
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if _, ok := seen[abs]; ok {
			return nil
		}
		seen[abs] = struct{}{}
		if _, ok := exts[filepath.Ext(abs)]; !ok {
			logger.Debugf("skip %s: unsupported extension", abs)
			return nil
		}
		scan, err := textlint.Scan(ctx, linter, abs)
		if err != nil {
			return fmt.Errorf("scan %s: %w", abs, err)
		}
		if scan.Status != textlint.ScanOK {
			logger.Debugf("skip %s: %s", abs, scan.Status)
			return nil
		}
		files = append(files, abs)
		return nil
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			matches, err := doublestar.Glob(os.DirFS(arg), "**/*", doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("walk %s: %w", arg, err)
			}
			for _, m := range matches {
				if skipPath(m) {
					continue
				}
				if err := add(filepath.Join(arg, filepath.FromSlash(m))); err != nil {
					return nil, err
				}
			}
		case err == nil:
			if err := add(arg); err != nil {
				return nil, err
			}
		case errors.Is(err, fs.ErrNotExist) && doublestar.ValidatePattern(filepath.ToSlash(arg)):
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, err
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match %s", arg)
			}
			for _, m := range matches {
				if skipPath(filepath.ToSlash(m)) {
					continue
				}
				if err := add(m); err != nil {
					return nil, err
				}
			}
		default:
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// displayPath shortens path relative to root when it lies inside it.
func displayPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
