package textlint

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type ignoreRule struct {
	pattern string
	negate  bool
}

// IgnoreMatcher evaluates .textlintignore rules (gitignore syntax) against
// paths relative to the directory holding the ignore file.
type IgnoreMatcher struct {
	base  string
	rules []ignoreRule
}

// LoadIgnore reads an ignore file. An empty path yields a matcher that
// ignores nothing.
func LoadIgnore(path string) (*IgnoreMatcher, error) {
	m := &IgnoreMatcher{}
	if path == "" {
		return m, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return m, err
	}
	defer f.Close()
	m.base = filepath.Dir(path)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m.add(scanner.Text())
	}
	return m, scanner.Err()
}

// ParseIgnore builds a matcher from ignore file content rooted at base.
func ParseIgnore(base, content string) *IgnoreMatcher {
	m := &IgnoreMatcher{base: base}
	for _, line := range strings.Split(content, "\n") {
		m.add(line)
	}
	return m
}

func (m *IgnoreMatcher) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	rule := ignoreRule{}
	if strings.HasPrefix(line, "!") {
		rule.negate = true
		line = line[1:]
	}
	dirOnly := strings.HasSuffix(line, "/")
	line = strings.TrimSuffix(line, "/")
	anchored := strings.HasPrefix(line, "/") || strings.Contains(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return
	}
	if !anchored {
		line = "**/" + line
	}
	if dirOnly {
		line += "/**"
	}
	rule.pattern = line
	m.rules = append(m.rules, rule)
}

// Ignored reports whether path is excluded. Later rules override earlier ones.
func (m *IgnoreMatcher) Ignored(path string) bool {
	if m == nil || len(m.rules) == 0 {
		return false
	}
	rel := path
	if m.base != "" && filepath.IsAbs(path) {
		r, err := filepath.Rel(m.base, path)
		if err != nil || strings.HasPrefix(r, "..") {
			return false
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)
	ignored := false
	for _, rule := range m.rules {
		if matchRule(rule.pattern, rel) {
			ignored = !rule.negate
		}
	}
	return ignored
}

func matchRule(pattern, rel string) bool {
	if ok, _ := doublestar.Match(pattern, rel); ok {
		return true
	}
	ok, _ := doublestar.Match(pattern+"/**", rel)
	return ok
}
