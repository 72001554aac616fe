package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/younsl/ebsconvert/internal/models"
)

// EBSProvider is everything the pipeline needs from the block storage provider
type EBSProvider interface {
	VolumeLister
	VolumeModifier
	ModificationChecker
	VolumeTagger
}

// AuditStore creates audit records and moves them to a terminal status
type AuditStore interface {
	AuditWriter
	StatusUpdater
}

// SavingsEstimator estimates the monthly saving of converting candidates
type SavingsEstimator interface {
	EstimateMonthlySavings(ctx context.Context, candidates []models.VolumeCandidate, targetType, region string) (float64, string)
}

// ReportArchiver stores the finished run report and returns its location
type ReportArchiver interface {
	Archive(ctx context.Context, report models.RunReport) (string, error)
}

// MetricsSink records metrics for a finished run
type MetricsSink interface {
	Record(ctx context.Context, report models.RunReport) error
}

// RunnerConfig holds the settings of a conversion run
type RunnerConfig struct {
	Region            string
	SourceVolumeTypes []string
	TargetVolumeType  string
	OptInTag          string
	DryRun            bool
	Verifier          VerifierConfig
}

// Runner executes one conversion run end to end. Estimator, Archiver and
// Sinks are optional.
type Runner struct {
	Provider  EBSProvider
	Store     AuditStore
	Publisher Publisher
	Estimator SavingsEstimator
	Archiver  ReportArchiver
	Sinks     []MetricsSink

	Clock  clock.Clock
	Logger *zap.Logger
	Config RunnerConfig

	newRunID func() string
}

// Run executes every stage in order. Only a discovery failure returns an
// error; every other failure is reported on the RunReport.
func (r *Runner) Run(ctx context.Context) (models.RunReport, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newRunID := r.newRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}

	report := models.RunReport{
		RunID:             newRunID(),
		Region:            r.Config.Region,
		DryRun:            r.Config.DryRun,
		SourceVolumeTypes: r.Config.SourceVolumeTypes,
		TargetVolumeType:  r.Config.TargetVolumeType,
		StartedAt:         r.Clock.Now().UTC(),
	}
	logger = logger.With(zap.String("run_id", report.RunID))
	logger.Info("conversion run started",
		zap.String("region", report.Region),
		zap.Strings("source_types", report.SourceVolumeTypes),
		zap.String("target_type", report.TargetVolumeType),
		zap.Bool("dry_run", report.DryRun),
	)

	discovery, err := NewDiscoverer(r.Provider, r.Config.SourceVolumeTypes, r.Config.OptInTag, r.Clock, logger).Discover(ctx)
	if err != nil {
		return report, err
	}
	report.ScannedCount = discovery.ScannedCount

	if r.Estimator != nil && len(discovery.Candidates) > 0 {
		report.EstimatedMonthlySavings, report.PricingSource = r.Estimator.EstimateMonthlySavings(
			ctx, discovery.Candidates, r.Config.TargetVolumeType, r.Config.Region)
		logger.Info("estimated monthly savings",
			zap.Float64("usd", report.EstimatedMonthlySavings),
			zap.String("pricing_source", report.PricingSource),
		)
	}

	recorded := NewRecorder(r.Store, r.Clock, logger, RecorderConfig{
		RunID:            report.RunID,
		Region:           r.Config.Region,
		TargetVolumeType: r.Config.TargetVolumeType,
	}).Record(ctx, discovery.Candidates)
	report.Candidates = recorded.Candidates
	report.LoggedCount = recorded.LoggedCount

	mutated := NewMutator(r.Provider, r.Config.TargetVolumeType, r.Config.DryRun, logger).Mutate(ctx, recorded.Candidates)
	report.ModifyResults = mutated.Results

	verified := NewVerifier(r.Provider, r.Provider, r.Store, r.Clock, logger, r.Config.Verifier).Verify(ctx, mutated.Results)
	report.Outcomes = verified.Outcomes

	report.Notification = NewNotifier(r.Publisher, logger).Notify(ctx, verified.Outcomes)
	report.FinishedAt = r.Clock.Now().UTC()

	if r.Archiver != nil {
		if location, err := r.Archiver.Archive(ctx, report); err != nil {
			logger.Error("failed to archive run report", zap.Error(err))
		} else {
			logger.Info("run report archived", zap.String("location", location))
		}
	}
	for _, sink := range r.Sinks {
		if err := sink.Record(ctx, report); err != nil {
			logger.Error("failed to record run metrics", zap.Error(err))
		}
	}

	logger.Info("conversion run finished",
		zap.Int("scanned", report.ScannedCount),
		zap.Int("candidates", len(report.Candidates)),
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", report.Failed()),
		zap.Int("timed_out", report.TimedOut()),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}
