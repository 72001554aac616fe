package main

import (
	"github.com/spf13/cobra"

	"github.com/younsl/ebsconvert/internal/config"
	"github.com/younsl/ebsconvert/pkg/aws"
	"github.com/younsl/ebsconvert/pkg/formatter"
)

func newReportCommand(root *rootOptions) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "report VOLUME_ID",
		Short: "Show the audit history of a volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("audit-backend") {
				cfg.Audit.Backend = normalizeBackend(backend)
			}
			if cfg.Audit.Backend == config.BackendDynamoDB && cfg.Audit.Table == "" {
				return config.ErrMissingTable
			}

			awsCfg, err := aws.LoadConfig(ctx, cfg.Region)
			if err != nil {
				return err
			}
			store, closeStore, err := newAuditStore(ctx, cfg, awsCfg)
			if err != nil {
				return err
			}
			defer closeStore()

			records, err := store.History(ctx, args[0])
			if err != nil {
				return err
			}
			formatter.PrintAuditHistory(cmd.OutOrStdout(), args[0], records)
			return nil
		},
	}
	cmd.Flags().StringVar(&backend, "audit-backend", "", "audit store: dynamodb or sqlite")
	return cmd
}
