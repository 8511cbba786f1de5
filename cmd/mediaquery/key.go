package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/mediaquery/cache"
)

func newKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <domain> [selectors...]",
		Short: "Derive the cache key for a domain and ordered selectors",
		Long: "Derive the cache key for a domain and ordered selectors.\n" +
			"Empty selectors keep their position: mediaquery key topics Lisbon '' 7d PT",
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), cache.DeriveKey(args[0], args[1:]...))
		},
	}
}
