package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/younsl/ebsconvert/pkg/utils"
)

// Audit selects where audit records are written
type Audit struct {
	Backend    string `toml:"backend"`
	Table      string `toml:"table"`
	SQLitePath string `toml:"sqlite_path"`
}

// Notify selects where the run summary is published
type Notify struct {
	Backend string `toml:"backend"`
	Topic   string `toml:"topic"`
	NATSURL string `toml:"nats_url"`
}

// Report configures archiving of the JSON run report to S3
type Report struct {
	Bucket string `toml:"bucket"`
	Prefix string `toml:"prefix"`
}

// Metrics configures run metrics sinks. Empty values disable a sink.
type Metrics struct {
	Namespace string `toml:"cloudwatch_namespace"`
	Textfile  string `toml:"textfile"`
}

// Logging configures the zap logger
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config holds every knob of a conversion run
type Config struct {
	Region              string   `toml:"region"`
	SourceVolumeTypes   []string `toml:"volume_types"`
	TargetVolumeType    string   `toml:"target_volume_type"`
	OptInTag            string   `toml:"opt_in_tag"`
	ConvertedBy         string   `toml:"converted_by"`
	DryRun              bool     `toml:"dry_run"`
	MaxPollSeconds      int      `toml:"max_poll_seconds"`
	PollIntervalSeconds int      `toml:"poll_interval_seconds"`
	VerifyConcurrency   int      `toml:"verify_concurrency"`
	EstimateSavings     bool     `toml:"estimate_savings"`

	Audit   Audit   `toml:"audit"`
	Notify  Notify  `toml:"notify"`
	Report  Report  `toml:"report"`
	Metrics Metrics `toml:"metrics"`
	Logging Logging `toml:"logging"`
}

// Load builds a Config from defaults, the TOML file at path (optional) and the
// environment. It does not validate; call Validate once flags are applied.
func Load(path string) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return cfg, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return cfg, fmt.Errorf("error reading config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("error parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.EqualFold(strings.TrimSpace(v), "true")
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("REGION", &c.Region)
	if v, ok := lookup("VOLUME_TYPES"); ok {
		if types := utils.SplitList(v); len(types) > 0 {
			c.SourceVolumeTypes = types
		}
	}
	str("TARGET_VOLUME_TYPE", &c.TargetVolumeType)
	str("OPT_IN_TAG", &c.OptInTag)
	str("CONVERTED_BY", &c.ConvertedBy)
	boolean("DRY_RUN", &c.DryRun)
	boolean("ESTIMATE_SAVINGS", &c.EstimateSavings)
	str("DDB_TABLE", &c.Audit.Table)
	str("AUDIT_BACKEND", &c.Audit.Backend)
	str("SQLITE_PATH", &c.Audit.SQLitePath)
	str("SNS_TOPIC_ARN", &c.Notify.Topic)
	str("NOTIFY_BACKEND", &c.Notify.Backend)
	str("NATS_URL", &c.Notify.NATSURL)
	str("REPORT_BUCKET", &c.Report.Bucket)
	str("REPORT_PREFIX", &c.Report.Prefix)
	str("METRICS_NAMESPACE", &c.Metrics.Namespace)
	str("METRICS_TEXTFILE", &c.Metrics.Textfile)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)

	for key, dst := range map[string]*int{
		"MAX_POLL_SECONDS":      &c.MaxPollSeconds,
		"POLL_INTERVAL_SECONDS": &c.PollIntervalSeconds,
		"VERIFY_CONCURRENCY":    &c.VerifyConcurrency,
	} {
		if err := integer(key, dst); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) normalize() {
	var types []string
	for _, t := range c.SourceVolumeTypes {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		types = []string{defaultSourceVolumeType}
	}
	c.SourceVolumeTypes = types
	c.TargetVolumeType = strings.TrimSpace(c.TargetVolumeType)
	c.Audit.Backend = strings.ToLower(strings.TrimSpace(c.Audit.Backend))
	c.Notify.Backend = strings.ToLower(strings.TrimSpace(c.Notify.Backend))
	if c.VerifyConcurrency <= 0 {
		c.VerifyConcurrency = defaultVerifyConcurrency
	}
}

// MaxWait returns the verification deadline
func (c Config) MaxWait() time.Duration {
	return utils.SecondsToDuration(c.MaxPollSeconds)
}

// PollInterval returns the pause between verification passes
func (c Config) PollInterval() time.Duration {
	return utils.SecondsToDuration(c.PollIntervalSeconds)
}
