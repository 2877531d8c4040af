package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"textlintls/internal/config"
	"textlintls/internal/observ"
	"textlintls/internal/textlint"
)

const appName = "textlintls"

// openCache returns nil when caching is disabled.
func openCache(s config.Settings) (*textlint.Cache, error) {
	if !s.Cache.Enabled {
		return nil, nil
	}
	dir := s.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = textlint.DefaultCacheDir(appName); err != nil {
			return nil, err
		}
	}
	return textlint.NewCache(textlint.CacheOptions{
		Size: s.Cache.Size,
		TTL:  s.Cache.TTL,
		Dir:  dir,
	})
}

// openEngine configures the engine for root and routes its lint calls
// through cache.
func openEngine(ctx context.Context, s config.Settings, root string, cache *textlint.Cache) (*textlint.Engine, error) {
	engine, err := textlint.Configure(ctx, textlint.Options{
		Root:       root,
		ConfigPath: s.ConfigPath,
		IgnorePath: s.IgnorePath,
		NodePath:   s.NodePath,
		Extensions: s.Extensions,
	})
	if err != nil {
		return nil, err
	}
	engine.Linter = cache.Wrap(engine.Linter, engine.Digest)
	logger.WithFields(logrus.Fields{
		"root":    engine.Root,
		"config":  engine.ConfigFile,
		"version": engine.Version,
	}).Debug("engine configured")
	return engine, nil
}

// workingRoot resolves the --root flag, defaulting to the working directory.
func workingRoot(root string) (string, error) {
	if root == "" {
		return os.Getwd()
	}
	return filepath.Abs(root)
}

// newTimer returns nil unless --timings is set.
func newTimer(cmd *cobra.Command) *observ.Timer {
	if on, _ := cmd.Flags().GetBool("timings"); on {
		return observ.NewTimer()
	}
	return nil
}

func reportTimings(cmd *cobra.Command, timer *observ.Timer) {
	if err := timer.WriteSummary(cmd.ErrOrStderr()); err != nil {
		logger.Warnf("write timings: %v", err)
	}
}
