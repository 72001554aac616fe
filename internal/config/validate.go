package config

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrMissingTable is returned when no audit table is configured
	ErrMissingTable = errors.New("audit table is required (set DDB_TABLE or audit.table)")

	// ErrMissingTopic is returned when no notification topic is configured
	ErrMissingTopic = errors.New("notification topic is required (set SNS_TOPIC_ARN or notify.topic)")
)

// Validate ensures the configuration is usable for a full conversion run
func (c *Config) Validate() error {
	if c.Audit.Table == "" {
		return ErrMissingTable
	}
	if c.Notify.Topic == "" {
		return ErrMissingTopic
	}
	if err := c.ValidateScan(); err != nil {
		return err
	}
	if c.TargetVolumeType == "" {
		return errors.New("target_volume_type must be set")
	}
	if slices.Contains(c.SourceVolumeTypes, c.TargetVolumeType) {
		return fmt.Errorf("target volume type %q is also a source type", c.TargetVolumeType)
	}
	if c.MaxPollSeconds < 0 {
		return fmt.Errorf("max_poll_seconds must not be negative, got %d", c.MaxPollSeconds)
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive, got %d", c.PollIntervalSeconds)
	}
	switch c.Audit.Backend {
	case BackendDynamoDB:
	case BackendSQLite:
		if c.Audit.SQLitePath == "" {
			return errors.New("audit.sqlite_path must be set for the sqlite backend")
		}
	default:
		return fmt.Errorf("audit.backend: unsupported value %q", c.Audit.Backend)
	}
	switch c.Notify.Backend {
	case BackendSNS:
	case BackendNATS:
		if c.Notify.NATSURL == "" {
			return errors.New("notify.nats_url must be set for the nats backend")
		}
	default:
		return fmt.Errorf("notify.backend: unsupported value %q", c.Notify.Backend)
	}
	return nil
}

// ValidateScan checks only what a discovery scan needs
func (c *Config) ValidateScan() error {
	if len(c.SourceVolumeTypes) == 0 {
		return errors.New("at least one source volume type is required")
	}
	if c.OptInTag == "" {
		return errors.New("opt_in_tag must be set")
	}
	return nil
}
