package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/younsl/ebsconvert/internal/config"
	"github.com/younsl/ebsconvert/internal/logging"
)

// rootOptions holds flags shared by every subcommand. Flags override the
// config file and the environment only when set explicitly.
type rootOptions struct {
	configPath  string
	region      string
	volumeTypes []string
	optInTag    string
	logLevel    string
	logFormat   string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	return buildRootCommand(&rootOptions{})
}

func buildRootCommand(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ebsconvert",
		Short: "Convert opted-in EBS volumes to a new volume type",
		Long: `ebsconvert finds EBS volumes tagged for automatic conversion, requests
the volume type change, waits for each modification to settle and
publishes a summary of the run.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	flags.StringVarP(&opts.region, "region", "r", "", "AWS region (default: SDK resolution, instance metadata, us-east-1)")
	flags.StringSliceVarP(&opts.volumeTypes, "volume-types", "t", nil, "source volume types to convert (default gp2)")
	flags.StringVar(&opts.optInTag, "opt-in-tag", "", "tag key that opts a volume in (default AutoConvert)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: console or json")

	rootCmd.AddCommand(
		newRunCommand(opts),
		newDiscoverCommand(opts),
		newReportCommand(opts),
		newVersionCommand(),
	)
	return rootCmd
}

// loadConfig layers explicitly set flags over the file and environment
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("region") {
		cfg.Region = strings.TrimSpace(opts.region)
	}
	if flags.Changed("volume-types") && len(opts.volumeTypes) > 0 {
		cfg.SourceVolumeTypes = opts.volumeTypes
	}
	if flags.Changed("opt-in-tag") {
		cfg.OptInTag = opts.optInTag
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = opts.logFormat
	}
	return cfg, nil
}

// normalizeBackend matches the casing config.Load applies to file and environment values
func normalizeBackend(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

// startSpinner starts a progress spinner when stdout is a terminal. The
// returned stop function is always safe to call.
func startSpinner(message string) func(finalMsg string) {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return func(string) {}
	}

	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond)
	s.Suffix = fmt.Sprintf(" %s ...", message)
	s.Start()
	return func(finalMsg string) {
		s.FinalMSG = finalMsg
		s.Stop()
	}
}
