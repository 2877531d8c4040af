package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
)

// isFileURI reports whether uri uses the file scheme. Only such documents
// get a fix registry and are validated.
func isFileURI(uri string) bool {
	return strings.HasPrefix(uri, "file:")
}

func uriToPath(uri string) string {
	if !isFileURI(uri) {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	path := parsed.Path
	if path == "" {
		path = parsed.Opaque
	}
	// file:///c:/x arrives as /c:/x on Windows.
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	path = filepath.Clean(filepath.FromSlash(path))
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return u.String()
}

// pathWithin reports whether path equals root or lies below it, comparing
// whole path elements so that /work/a does not contain /work/ab.
func pathWithin(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
