package lsp

import (
	"errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"textlintls/internal/textlint"
)

// configureEngines rebuilds the engine of every workspace folder. Folders
// without configuration or without an executable get no engine and the
// client is told why.
func (s *Server) configureEngines() {
	engines := make(map[string]*textlint.Engine, len(s.folders))
	for _, folder := range s.folders {
		root := uriToPath(folder.URI)
		if root == "" {
			continue
		}
		s.traceEvent("configureEngine "+folder.URI, nil)
		engine, err := s.configure(s.ctx, textlint.Options{
			Root:       root,
			ConfigPath: s.settings.ConfigPath,
			IgnorePath: s.settings.IgnorePath,
			NodePath:   s.settings.NodePath,
			Extensions: s.settings.Extensions,
		})
		switch {
		case errors.Is(err, textlint.ErrNoConfig):
			s.notify(methodNoConfig, folderParams{WorkspaceFolder: root})
			continue
		case errors.Is(err, textlint.ErrNoLibrary):
			s.notify(methodNoLibrary, folderParams{WorkspaceFolder: root})
			continue
		case err != nil:
			s.logf("failed to configure engine for %s: %v", root, err)
			continue
		}
		engine.Linter = s.cache.Wrap(engine.Linter, engine.Digest)
		s.log.WithFields(logrus.Fields{
			"root":    root,
			"version": engine.Version,
			"config":  engine.ConfigFile,
		}).Debug("lsp: engine configured")
		engines[root] = engine
	}
	s.engines = engines
}

// lookupEngine returns the engine of the first workspace folder, in folder
// order, that contains path.
func (s *Server) lookupEngine(path string) (string, *textlint.Engine) {
	for _, folder := range s.folders {
		root := uriToPath(folder.URI)
		engine := s.engines[root]
		if engine != nil && pathWithin(root, path) {
			return root, engine
		}
	}
	return "", nil
}

func supportsExtension(engine *textlint.Engine, file string) bool {
	ext := filepath.Ext(file)
	for _, e := range engine.Linter.AvailableExtensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// isTarget applies the targetPath glob to file relative to root. Patterns
// without a slash match the base name at any depth.
func (s *Server) isTarget(root, file string) bool {
	pattern := s.settings.TargetPath
	if pattern == "" {
		return true
	}
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if !strings.Contains(pattern, "/") {
		ok, err := doublestar.Match(pattern, path.Base(rel))
		return err == nil && ok
	}
	ok, err := doublestar.Match(strings.TrimPrefix(pattern, "/"), rel)
	return err == nil && ok
}
