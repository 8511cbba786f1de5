package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/mediaquery/observe"
	"github.com/jonwraymond/mediaquery/search"
	"github.com/jonwraymond/mediaquery/selection"
)

type searchOptions struct {
	scene    string
	query    string
	page     int
	pageSize int
	pick     string
	keyword  string
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <narration...>",
		Short: "Search every configured provider for a narration",
		Long: "Search every configured provider for a narration.\n" +
			"With --pick, the result with that URL is selected and committed for the scene.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.close(ctx)) }()

			providers, err := a.cfg.SearchProviders()
			if err != nil {
				return err
			}
			mw, err := observe.MiddlewareFromObserver(a.obs)
			if err != nil {
				return err
			}
			svc, err := search.New(a.adapter, providers, a.cfg.SearchOptions(mw)...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if prev, ok := svc.LastSelection(ctx, opts.scene); ok {
				fmt.Fprintf(out, "previous selection: %s from %s\n", prev.SelectedURL, prev.Provider)
			}

			sess := svc.NewSession(opts.scene, strings.Join(args, " "))
			resp, err := sess.Search(ctx, search.Query{
				Text:     opts.query,
				Page:     opts.page,
				PageSize: opts.pageSize,
			})
			if err != nil {
				return err
			}
			printResponse(out, resp)

			if opts.pick == "" {
				return resp.Errors()
			}
			id, ok := findProvider(resp, opts.pick)
			if !ok {
				return fmt.Errorf("no result has url %q", opts.pick)
			}
			if _, err := sess.Select(id, opts.pick); err != nil {
				return err
			}
			sel, _, err := sess.Commit(ctx, opts.keyword)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "committed %s from %s for scene %q\n", sel.SelectedURL, sel.Provider, opts.scene)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.scene, "scene", "default", "scene the selection belongs to")
	cmd.Flags().StringVar(&opts.query, "query", "", "search text overriding the synthesized queries")
	cmd.Flags().IntVar(&opts.page, "page", 1, "result page")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "results per page (default from config)")
	cmd.Flags().StringVar(&opts.pick, "pick", "", "URL of the result to select and commit")
	cmd.Flags().StringVar(&opts.keyword, "keyword", "", "keyword recorded with the committed selection")
	return cmd
}

func printResponse(w io.Writer, resp search.Response) {
	for _, pr := range resp.Providers {
		fmt.Fprintf(w, "%s [%s] %q\n", pr.Provider, pr.Outcome, pr.Query)
		if pr.Err != nil {
			fmt.Fprintf(w, "  error: %v\n", pr.Err)
		}
		for _, item := range pr.Results {
			fmt.Fprintf(w, "  %s  %s\n", item.ID, item.URL)
		}
	}
}

func findProvider(resp search.Response, url string) (selection.ProviderID, bool) {
	for _, pr := range resp.Providers {
		if slices.ContainsFunc(pr.Results, func(it selection.ResultItem) bool { return it.URL == url }) {
			return pr.Provider, true
		}
	}
	return "", false
}
