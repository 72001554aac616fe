package config

const (
	defaultSourceVolumeType    = "gp2"
	defaultTargetVolumeType    = "gp3"
	defaultOptInTag            = "AutoConvert"
	defaultConvertedBy         = "IntelligentEBS"
	defaultMaxPollSeconds      = 300
	defaultPollIntervalSeconds = 10
	defaultVerifyConcurrency   = 1
	defaultAuditBackend        = BackendDynamoDB
	defaultSQLitePath          = "ebsconvert.db"
	defaultNotifyBackend       = BackendSNS
	defaultNATSURL             = "nats://127.0.0.1:4222"
	defaultReportPrefix        = "ebsconvert/reports"
	defaultLogLevel            = "info"
	defaultLogFormat           = "console"
)

// Backend names accepted by audit.backend and notify.backend
const (
	BackendDynamoDB = "dynamodb"
	BackendSQLite   = "sqlite"
	BackendSNS      = "sns"
	BackendNATS     = "nats"
)

// Default returns a Config populated with built-in defaults
func Default() Config {
	return Config{
		SourceVolumeTypes:   []string{defaultSourceVolumeType},
		TargetVolumeType:    defaultTargetVolumeType,
		OptInTag:            defaultOptInTag,
		ConvertedBy:         defaultConvertedBy,
		MaxPollSeconds:      defaultMaxPollSeconds,
		PollIntervalSeconds: defaultPollIntervalSeconds,
		VerifyConcurrency:   defaultVerifyConcurrency,
		Audit: Audit{
			Backend:    defaultAuditBackend,
			SQLitePath: defaultSQLitePath,
		},
		Notify: Notify{
			Backend: defaultNotifyBackend,
			NATSURL: defaultNATSURL,
		},
		Report: Report{
			Prefix: defaultReportPrefix,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
