package pipeline

import (
	"context"

	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/younsl/ebsconvert/internal/models"
	"github.com/younsl/ebsconvert/pkg/utils"
)

// AuditWriter persists new audit records
type AuditWriter interface {
	Put(ctx context.Context, record models.AuditRecord) error
}

// RecorderConfig identifies the run the records belong to
type RecorderConfig struct {
	RunID            string
	Region           string
	TargetVolumeType string
}

// RecordResult is the output of the recording stage
type RecordResult struct {
	Candidates  []models.VolumeCandidate
	LoggedCount int
}

// Recorder writes a PENDING audit record for each candidate
type Recorder struct {
	store  AuditWriter
	clock  clock.Clock
	logger *zap.Logger
	cfg    RecorderConfig
}

// NewRecorder creates a Recorder
func NewRecorder(store AuditWriter, clk clock.Clock, logger *zap.Logger, cfg RecorderConfig) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, clock: clk, logger: logger, cfg: cfg}
}

// Record forwards every candidate, annotated with its LoggedAt key and, if the
// write failed, the reason in LogError.
func (r *Recorder) Record(ctx context.Context, candidates []models.VolumeCandidate) RecordResult {
	result := RecordResult{Candidates: make([]models.VolumeCandidate, 0, len(candidates))}

	for _, candidate := range candidates {
		candidate.LoggedAt = utils.Timestamp(r.clock.Now())

		record := models.AuditRecord{
			VolumeID:         candidate.VolumeID,
			LoggedAt:         candidate.LoggedAt,
			RunID:            r.cfg.RunID,
			InstanceID:       candidate.InstanceID,
			PrevVolumeType:   candidate.VolumeType,
			TargetVolumeType: r.cfg.TargetVolumeType,
			Size:             candidate.Size,
			AvailabilityZone: candidate.AvailabilityZone,
			Region:           r.cfg.Region,
			Tags:             candidate.Tags,
			ConversionStatus: models.StatusPending,
		}

		if err := r.store.Put(ctx, record); err != nil {
			candidate.LogError = err.Error()
			r.logger.Error("failed to write audit record",
				zap.String("volume_id", candidate.VolumeID),
				zap.Error(err),
			)
		} else {
			result.LoggedCount++
		}
		result.Candidates = append(result.Candidates, candidate)
	}

	r.logger.Info("audit records written",
		zap.String("run_id", r.cfg.RunID),
		zap.Int("candidates", len(candidates)),
		zap.Int("logged", result.LoggedCount),
	)
	return result
}
