package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"textlintls/internal/config"
	"textlintls/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "textlintls",
	Short: "textlint language server and autofix tools",
	Long: `textlintls runs textlint behind the Language Server Protocol and applies
textlint autofixes from the command line or over MCP.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// settings and logger are populated by setup before any subcommand runs.
var (
	settings config.Settings
	logger   = logrus.New()
)

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "settings file (default "+config.DefaultFile+" when present)")
	flags.String("log-level", "warn", "log level (trace|debug|info|warn|error)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "print phase timings to stderr")
	flags.String("run", "", "when the server validates documents (onType|onSave)")
	flags.String("textlint-config", "", "path to the textlint configuration file")
	flags.String("ignore-path", "", "path to the textlint ignore file")
	flags.String("node-path", "", "directory searched for node_modules")
	flags.String("target-path", "", "glob restricting which documents are validated")
	flags.String("trace", "", "initial trace level (off|messages|verbose)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	if err := applyColor(colorMode); err != nil {
		return err
	}

	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return err
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger.SetOutput(os.Stderr)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: color.NoColor,
	})

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	settings, err = config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"run":   settings.Run,
		"trace": settings.Trace,
		"cache": settings.Cache.Enabled,
	}).Debug("settings loaded")
	return nil
}

func applyColor(mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
