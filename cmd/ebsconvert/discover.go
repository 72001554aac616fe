package main

import (
	"fmt"

	"github.com/juju/clock"
	"github.com/spf13/cobra"

	"github.com/younsl/ebsconvert/internal/pipeline"
	"github.com/younsl/ebsconvert/pkg/aws"
	"github.com/younsl/ebsconvert/pkg/formatter"
)

func newDiscoverCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "List volumes that would be converted, without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			if err := cfg.ValidateScan(); err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			awsCfg, err := aws.LoadConfig(ctx, cfg.Region)
			if err != nil {
				return err
			}

			discoverer := pipeline.NewDiscoverer(aws.NewEBSClient(awsCfg), cfg.SourceVolumeTypes, cfg.OptInTag, clock.WallClock, logger)

			started := clock.WallClock.Now()
			stop := startSpinner(fmt.Sprintf("Scanning %v volumes in %s", cfg.SourceVolumeTypes, awsCfg.Region))
			result, err := discoverer.Discover(ctx)
			stop("")
			if err != nil {
				return err
			}

			formatter.PrintCandidatesTable(cmd.OutOrStdout(), result, clock.WallClock.Now().Sub(started))
			return nil
		},
	}
}
