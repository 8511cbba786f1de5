package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/mediaquery/config"
	"github.com/jonwraymond/mediaquery/observe"
	"github.com/jonwraymond/mediaquery/storage"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "mediaquery",
		Short:        "Narration-driven media search cache",
		Long:         "mediaquery synthesizes search queries from narration, caches provider results and tracks the selected result per scene.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default $"+config.EnvPath+")")

	cmd.AddCommand(
		newVersionCmd(),
		newKeywordsCmd(opts),
		newKeyCmd(),
		newCacheCmd(opts),
		newHealthCmd(opts),
		newSearchCmd(opts),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mediaquery %s (commit: %s)\n", version, commit)
		},
	}
}

// loadConfig loads the configured file, or defaults when none is named.
func (o *rootOptions) loadConfig() (config.Config, error) {
	path := config.Path(o.configPath)
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// app holds the runtime built from a config.
type app struct {
	cfg     config.Config
	obs     observe.Observer
	raw     storage.RawStore
	adapter *storage.Adapter
}

func (o *rootOptions) open(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, err
	}
	if err := cfg.ResolveSecrets(ctx, resolver); err != nil {
		return nil, err
	}

	obs, err := observe.NewObserver(ctx, cfg.Observe, observe.WithOutput(cmd.ErrOrStderr()))
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}

	raw, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}
	codec, err := cfg.Codec()
	if err != nil {
		_ = raw.Close()
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	return &app{
		cfg:     cfg,
		obs:     obs,
		raw:     raw,
		adapter: storage.NewAdapter(raw, codec, obs.Logger()),
	}, nil
}

func (a *app) close(ctx context.Context) error {
	return errors.Join(a.raw.Close(), a.obs.Shutdown(context.WithoutCancel(ctx)))
}
