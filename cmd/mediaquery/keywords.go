package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/mediaquery/keywords"
)

func newKeywordsCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "keywords <narration...>",
		Short: "Show the queries synthesized from a narration",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			bundle := keywords.New(cfg.Keywords).Synthesize(strings.Join(args, " "))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(bundle)
			}
			fmt.Fprintf(out, "phrase:      %s\n", bundle.PhraseQuery)
			fmt.Fprintf(out, "words:       %s\n", bundle.WordQuery())
			for i, s := range bundle.Suggestions {
				fmt.Fprintf(out, "suggestion %d: %s\n", i+1, s)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the query bundle as JSON")
	return cmd
}
