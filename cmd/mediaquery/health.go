package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/mediaquery/health"
)

func newHealthCmd(root *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the cache backend and codec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.close(cmd.Context())) }()

			agg := health.NewAggregator(timeout)
			agg.Register(health.NewStorageChecker("storage", a.raw, a.cfg.Storage.SlowPing))
			agg.Register(health.NewRoundTripChecker(a.adapter))

			rep := agg.Run(cmd.Context())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return err
			}
			if rep.Status == health.StatusUnhealthy {
				return fmt.Errorf("backend %s is %s", a.cfg.Storage.Backend, rep.Status)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", health.DefaultTimeout, "deadline for all checks")
	return cmd
}
