package lsp

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle coalesces the burst of events an editor save produces.
const watchSettle = 200 * time.Millisecond

type watchEvent struct {
	path string
}

// configWatcher observes workspace roots for textlint configuration and
// ignore files and posts one watchEvent per burst of changes.
type configWatcher struct {
	w     *fsnotify.Watcher
	files map[string]struct{}
}

func isConfigName(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".textlintrc") || base == ".textlintignore"
}

func (cw *configWatcher) relevant(name string) bool {
	if _, ok := cw.files[filepath.Clean(name)]; ok {
		return true
	}
	return isConfigName(name)
}

func (cw *configWatcher) run(s *Server) {
	var (
		settle <-chan time.Time
		last   string
	)
	for {
		select {
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !cw.relevant(ev.Name) {
				continue
			}
			last = ev.Name
			settle = time.After(watchSettle)
		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			s.logf("watcher: %v", err)
		case <-settle:
			settle = nil
			s.post(watchEvent{path: last})
		}
	}
}

// restartWatcher points the watcher at the current folders and engine files.
func (s *Server) restartWatcher() {
	if !s.watchEnabled {
		return
	}
	s.stopWatcher()
	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logf("watcher disabled: %v", err)
		return
	}
	cw := &configWatcher{w: w, files: make(map[string]struct{})}
	dirs := make(map[string]struct{})
	for _, folder := range s.folders {
		if root := uriToPath(folder.URI); root != "" {
			dirs[root] = struct{}{}
		}
	}
	for _, engine := range s.engines {
		for _, file := range []string{engine.ConfigFile, engine.IgnoreFile} {
			if file == "" {
				continue
			}
			cw.files[filepath.Clean(file)] = struct{}{}
			dirs[filepath.Dir(file)] = struct{}{}
		}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			s.logf("watch %s: %v", dir, err)
		}
	}
	s.watcher = cw
	go cw.run(s)
}

func (s *Server) stopWatcher() {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.w.Close(); err != nil {
		s.logf("close watcher: %v", err)
	}
	s.watcher = nil
}
