package textlint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

const configGlob = ".textlintrc{,.json,.yaml,.yml,.js,.cjs}"

// configRank orders config file names the way textlint's own loader does.
var configRank = map[string]int{
	".textlintrc.js":   0,
	".textlintrc.cjs":  1,
	".textlintrc.json": 2,
	".textlintrc.yaml": 3,
	".textlintrc.yml":  4,
	".textlintrc":      5,
}

// DefaultExtensions are handled by the builtin text and markdown plugins.
var DefaultExtensions = []string{".txt", ".md"}

var pluginExtensions = map[string][]string{
	"text":        {".txt", ".text"},
	"markdown":    {".md", ".markdown", ".mdown", ".mkdn", ".mkd", ".mdwn", ".mkdown", ".ron"},
	"html":        {".html", ".htm"},
	"review":      {".re"},
	"latex2e":     {".tex"},
	"asciidoc":    {".adoc", ".asciidoc", ".asc"},
	"asciidoctor": {".adoc", ".asciidoc", ".asc"},
	"rst":         {".rst"},
	"org":         {".org"},
}

// candidates returns config files directly inside dir, best first.
func candidates(dir string) []string {
	if dir == "" {
		return nil
	}
	matches, err := doublestar.Glob(os.DirFS(dir), configGlob, doublestar.WithFilesOnly())
	if err != nil || len(matches) == 0 {
		return nil
	}
	sort.Slice(matches, func(i, j int) bool {
		return configRank[matches[i]] < configRank[matches[j]]
	})
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(dir, m))
	}
	return out
}

// LookupConfig finds the configuration governing root. The workspace root is
// searched first, then configPath, then the user's home directory.
func LookupConfig(root, configPath string) (string, error) {
	if files := candidates(root); len(files) > 0 {
		return files[0], nil
	}
	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			return configPath, nil
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		if files := candidates(home); len(files) > 0 {
			return files[0], nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoConfig, root)
}

// LookupIgnore returns the ignore file for root, or "" when there is none.
func LookupIgnore(root, ignorePath string) string {
	path := ignorePath
	if path == "" {
		path = filepath.Join(root, ".textlintignore")
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

type rcFile struct {
	Plugins yaml.Node `yaml:"plugins"`
}

// ConfigExtensions derives the extensions enabled by the plugins of a config
// file. Script configs cannot be evaluated and yield the defaults.
func ConfigExtensions(configFile string) ([]string, error) {
	exts := slices.Clone(DefaultExtensions)
	switch filepath.Ext(configFile) {
	case ".js", ".cjs", ".mjs":
		return exts, nil
	}
	data, err := os.ReadFile(configFile)
	if err != nil {
		return exts, err
	}
	var rc rcFile
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return exts, fmt.Errorf("parse %s: %w", configFile, err)
	}
	for name, opts := range pluginEntries(&rc.Plugins) {
		exts = append(exts, pluginExtensions[normalizePluginName(name)]...)
		if opts == nil {
			continue
		}
		var custom struct {
			Extensions []string `yaml:"extensions"`
		}
		if err := opts.Decode(&custom); err == nil {
			exts = append(exts, custom.Extensions...)
		}
	}
	return MergeExtensions(exts), nil
}

func pluginEntries(node *yaml.Node) map[string]*yaml.Node {
	out := make(map[string]*yaml.Node)
	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode {
				out[item.Value] = nil
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if value.Kind == yaml.ScalarNode && value.Value == "false" {
				continue
			}
			if value.Kind == yaml.MappingNode {
				out[key.Value] = value
			} else {
				out[key.Value] = nil
			}
		}
	}
	return out
}

func normalizePluginName(name string) string {
	for _, prefix := range []string{"@textlint/textlint-plugin-", "@textlint/", "textlint-plugin-"} {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimPrefix(name, prefix)
		}
	}
	return name
}

// MergeExtensions normalizes extensions to a leading dot and removes duplicates,
// keeping first-seen order.
func MergeExtensions(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, ext := range list {
			ext = strings.TrimSpace(ext)
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			if _, ok := seen[ext]; ok {
				continue
			}
			seen[ext] = struct{}{}
			out = append(out, ext)
		}
	}
	return out
}

// configDigest identifies the content of a config file for cache keys.
func configDigest(configFile string) string {
	h := sha256.New()
	h.Write([]byte(configFile))
	if data, err := os.ReadFile(configFile); err == nil {
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil))
}
