// Package config loads and validates ebsconvert settings.
//
// Values are layered: built-in defaults, an optional TOML file, then the
// environment variables used by the original Lambda deployment (REGION,
// VOLUME_TYPES, DDB_TABLE, SNS_TOPIC_ARN, ...). Command-line flags are applied
// on top by the CLI. Validate refuses to hand back a config without an audit
// table and a notification topic.
package config
