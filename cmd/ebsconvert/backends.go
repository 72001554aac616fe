package main

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"

	"github.com/younsl/ebsconvert/internal/audit"
	"github.com/younsl/ebsconvert/internal/config"
	"github.com/younsl/ebsconvert/internal/models"
	"github.com/younsl/ebsconvert/internal/notify"
	"github.com/younsl/ebsconvert/internal/pipeline"
	"github.com/younsl/ebsconvert/pkg/aws"
)

// historyStore is an audit store that can also list a volume's records
type historyStore interface {
	pipeline.AuditStore
	History(ctx context.Context, volumeID string) ([]models.AuditRecord, error)
}

func newAuditStore(ctx context.Context, cfg config.Config, awsCfg awssdk.Config) (historyStore, func(), error) {
	switch cfg.Audit.Backend {
	case config.BackendSQLite:
		store, err := audit.OpenSQLite(ctx, cfg.Audit.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.BackendDynamoDB:
		return aws.NewDynamoAuditStore(awsCfg, cfg.Audit.Table), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("audit.backend: unsupported value %q", cfg.Audit.Backend)
	}
}

func newPublisher(cfg config.Config, awsCfg awssdk.Config, logger *zap.Logger) (pipeline.Publisher, func(), error) {
	switch cfg.Notify.Backend {
	case config.BackendNATS:
		// the topic doubles as the NATS subject
		publisher := notify.NewNATSPublisher(cfg.Notify.NATSURL, cfg.Notify.Topic, logger)
		return publisher, func() { _ = publisher.Close() }, nil
	case config.BackendSNS:
		return aws.NewSNSPublisher(awsCfg, cfg.Notify.Topic), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("notify.backend: unsupported value %q", cfg.Notify.Backend)
	}
}
