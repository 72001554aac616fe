package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/younsl/ebsconvert/internal/models"
	"github.com/younsl/ebsconvert/pkg/formatter"
)

// ReportSubject is the subject of every published run summary
const ReportSubject = formatter.ReportHeader

// Publisher delivers a message and returns the broker's message id
type Publisher interface {
	Publish(ctx context.Context, subject, message string) (string, error)
}

// Notifier publishes the run summary
type Notifier struct {
	publisher Publisher
	logger    *zap.Logger
}

// NewNotifier creates a Notifier
func NewNotifier(publisher Publisher, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{publisher: publisher, logger: logger}
}

// Notify publishes one message summarizing outcomes. A publish failure is
// reported on the result and not retried.
func (n *Notifier) Notify(ctx context.Context, outcomes []models.VerificationOutcome) models.NotificationResult {
	message := formatter.ConversionReport(outcomes)

	messageID, err := n.publisher.Publish(ctx, ReportSubject, message)
	if err != nil {
		n.logger.Error("failed to publish conversion report", zap.Error(err))
		return models.NotificationResult{Error: err.Error()}
	}

	n.logger.Info("conversion report published",
		zap.String("message_id", messageID),
		zap.Int("volumes", len(outcomes)),
	)
	return models.NotificationResult{Published: true, MessageID: messageID}
}
