package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"textlintls/internal/lsp"
	"textlintls/internal/version"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the textlint language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Bool("no-watch", false, "do not watch textlint configuration files")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	noWatch, err := cmd.Flags().GetBool("no-watch")
	if err != nil {
		return err
	}
	cache, err := openCache(settings)
	if err != nil {
		logger.Warnf("lint cache disabled: %v", err)
		cache = nil
	}
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Settings: settings,
		Cache:    cache,
		Logger:   logger,
		Watch:    !noWatch,
		Version:  version.Version,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
