package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/mediaquery/cache"
	"github.com/jonwraymond/mediaquery/storage"
)

var errNoEntry = errors.New("no fresh entry")

func newCacheCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage cache entries",
	}
	cmd.AddCommand(
		newCacheGetCmd(root),
		newCacheAgeCmd(root),
		newCacheRmCmd(root),
		newCacheLsCmd(root),
	)
	return cmd
}

func newCacheGetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the data of a fresh entry as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.close(cmd.Context())) }()

			store := cache.NewStore[json.RawMessage](a.adapter)
			data, ok := store.Get(cmd.Context(), args[0], a.cfg.Policy().Retention())
			if !ok {
				return fmt.Errorf("%s: %w", args[0], errNoEntry)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newCacheAgeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "age <key>",
		Short: "Print how long ago an entry was written",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.close(cmd.Context())) }()

			store := cache.NewStore[json.RawMessage](a.adapter)
			age, ok := store.Age(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("%s: %w", args[0], errNoEntry)
			}
			state := "fresh"
			if age >= a.cfg.Policy().Retention() {
				state = "expired"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", age.Round(time.Second), state)
			return nil
		},
	}
}

func newCacheRmCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <key>...",
		Short: "Remove entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.close(cmd.Context())) }()

			store := cache.NewStore[json.RawMessage](a.adapter)
			for _, key := range args {
				if err := store.Remove(cmd.Context(), key); err != nil {
					return fmt.Errorf("remove %s: %w", key, err)
				}
			}
			return nil
		},
	}
}

func newCacheLsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List stored keys, optionally under a prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.close(cmd.Context())) }()

			lister, ok := a.raw.(storage.Lister)
			if !ok {
				return fmt.Errorf("backend %q cannot list keys", a.cfg.Storage.Backend)
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			keys, err := lister.Keys(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}
