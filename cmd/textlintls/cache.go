package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the lint result cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove every cached lint result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s := settings
		s.Cache.Enabled = true
		cache, err := openCache(s)
		if err != nil {
			return err
		}
		if err := cache.Purge(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache purged")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
}
