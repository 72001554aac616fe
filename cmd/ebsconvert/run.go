package main

import (
	"fmt"

	"github.com/juju/clock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/younsl/ebsconvert/internal/config"
	"github.com/younsl/ebsconvert/internal/metrics"
	"github.com/younsl/ebsconvert/internal/pipeline"
	"github.com/younsl/ebsconvert/pkg/aws"
	"github.com/younsl/ebsconvert/pkg/formatter"
	"github.com/younsl/ebsconvert/pkg/pricing"
	"github.com/younsl/ebsconvert/pkg/utils"
)

type runOptions struct {
	targetType        string
	dryRun            bool
	maxPollSeconds    int
	pollInterval      int
	verifyConcurrency int
	auditBackend      string
	notifyBackend     string
	estimateSavings   bool
	output            string
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full conversion pipeline once",
		Example: `  # Convert opted-in gp2 volumes to gp3
  DDB_TABLE=ebs-conversions SNS_TOPIC_ARN=arn:aws:sns:us-east-1:123456789012:ebs ebsconvert run

  # See what would happen without modifying anything
  ebsconvert run --config ebsconvert.toml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if opts.output != "table" && opts.output != "json" {
				return fmt.Errorf("output: unsupported value %q", opts.output)
			}
			return runPipeline(cmd, cfg, opts.output)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.targetType, "target-type", "", "volume type to convert to (default gp3)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "record and verify without requesting modifications")
	flags.IntVar(&opts.maxPollSeconds, "max-poll-seconds", 0, "verification deadline in seconds (default 300)")
	flags.IntVar(&opts.pollInterval, "poll-interval", 0, "seconds between verification passes (default 10)")
	flags.IntVar(&opts.verifyConcurrency, "verify-concurrency", 0, "parallel status queries per pass (default 1)")
	flags.StringVar(&opts.auditBackend, "audit-backend", "", "audit store: dynamodb or sqlite")
	flags.StringVar(&opts.notifyBackend, "notify-backend", "", "summary publisher: sns or nats")
	flags.BoolVar(&opts.estimateSavings, "estimate-savings", false, "estimate monthly savings with the AWS Pricing API")
	flags.StringVarP(&opts.output, "output", "o", "table", "result output: table or json")
	return cmd
}

func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("target-type") {
		cfg.TargetVolumeType = o.targetType
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = o.dryRun
	}
	if flags.Changed("max-poll-seconds") {
		cfg.MaxPollSeconds = o.maxPollSeconds
	}
	if flags.Changed("poll-interval") {
		cfg.PollIntervalSeconds = o.pollInterval
	}
	if flags.Changed("verify-concurrency") && o.verifyConcurrency > 0 {
		cfg.VerifyConcurrency = o.verifyConcurrency
	}
	if flags.Changed("audit-backend") {
		cfg.Audit.Backend = normalizeBackend(o.auditBackend)
	}
	if flags.Changed("notify-backend") {
		cfg.Notify.Backend = normalizeBackend(o.notifyBackend)
	}
	if flags.Changed("estimate-savings") {
		cfg.EstimateSavings = o.estimateSavings
	}
}

func runPipeline(cmd *cobra.Command, cfg config.Config, output string) error {
	ctx := cmd.Context()

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	awsCfg, err := aws.LoadConfig(ctx, cfg.Region)
	if err != nil {
		return err
	}
	if cfg.Region == "" {
		cfg.Region = awsCfg.Region
	}
	if !utils.IsValidRegion(cfg.Region) {
		logger.Warn("region is not in the known region list", zap.String("region", cfg.Region))
	}

	store, closeStore, err := newAuditStore(ctx, cfg, awsCfg)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher, err := newPublisher(cfg, awsCfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	runner := &pipeline.Runner{
		Provider:  aws.NewEBSClient(awsCfg),
		Store:     store,
		Publisher: publisher,
		Clock:     clock.WallClock,
		Logger:    logger,
		Config: pipeline.RunnerConfig{
			Region:            cfg.Region,
			SourceVolumeTypes: cfg.SourceVolumeTypes,
			TargetVolumeType:  cfg.TargetVolumeType,
			OptInTag:          cfg.OptInTag,
			DryRun:            cfg.DryRun,
			Verifier: pipeline.VerifierConfig{
				MaxWait:      cfg.MaxWait(),
				PollInterval: cfg.PollInterval(),
				Concurrency:  cfg.VerifyConcurrency,
				ConvertedBy:  cfg.ConvertedBy,
			},
		},
	}
	if cfg.EstimateSavings {
		runner.Estimator = pricing.NewEstimator(awsCfg)
	}
	if cfg.Report.Bucket != "" {
		runner.Archiver = aws.NewReportArchiver(awsCfg, cfg.Report.Bucket, cfg.Report.Prefix)
	}
	if cfg.Metrics.Namespace != "" {
		runner.Sinks = append(runner.Sinks, aws.NewCloudWatchMetrics(awsCfg, cfg.Metrics.Namespace))
	}
	if cfg.Metrics.Textfile != "" {
		runner.Sinks = append(runner.Sinks, metrics.NewTextfile(cfg.Metrics.Textfile))
	}

	stop := startSpinner(fmt.Sprintf("Converting %v volumes to %s in %s", cfg.SourceVolumeTypes, cfg.TargetVolumeType, cfg.Region))
	report, err := runner.Run(ctx)
	stop("")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if output == "json" {
		encoded, err := utils.FormatJSON(report)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, encoded)
		return nil
	}

	formatter.PrintRunReport(out, report)
	if cfg.EstimateSavings {
		formatter.PrintPricingAPIStats(out)
	}
	if !report.Notification.Published {
		fmt.Fprintln(cmd.ErrOrStderr(), "\nThe summary below was not delivered:")
		fmt.Fprintln(cmd.ErrOrStderr(), formatter.ConversionReport(report.Outcomes))
	}
	return nil
}
