package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/younsl/ebsconvert/internal/models"
)

// VolumeModifier requests a volume type change
type VolumeModifier interface {
	ModifyVolumeType(ctx context.Context, volumeID, targetType string) (*models.ModifyAck, error)
}

// Mutator requests the type change for every candidate
type Mutator struct {
	modifier   VolumeModifier
	targetType string
	dryRun     bool
	logger     *zap.Logger
}

// NewMutator creates a Mutator. In dry-run mode the modifier is never called.
func NewMutator(modifier VolumeModifier, targetType string, dryRun bool, logger *zap.Logger) *Mutator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mutator{
		modifier:   modifier,
		targetType: targetType,
		dryRun:     dryRun,
		logger:     logger,
	}
}

// Mutate returns one result per candidate. Per-volume errors are reported on
// the result and do not stop the stage.
func (m *Mutator) Mutate(ctx context.Context, candidates []models.VolumeCandidate) models.MutateResult {
	results := make([]models.ModifyResult, 0, len(candidates))

	for _, candidate := range candidates {
		result := models.ModifyResult{
			VolumeID: candidate.VolumeID,
			LoggedAt: candidate.LoggedAt,
		}

		if m.dryRun {
			result.DryRun = true
			m.logger.Info("dry run, skipping volume modification",
				zap.String("volume_id", candidate.VolumeID),
				zap.String("target_type", m.targetType),
			)
			results = append(results, result)
			continue
		}

		ack, err := m.modifier.ModifyVolumeType(ctx, candidate.VolumeID, m.targetType)
		if err != nil {
			result.Error = err.Error()
			m.logger.Error("failed to modify volume",
				zap.String("volume_id", candidate.VolumeID),
				zap.String("target_type", m.targetType),
				zap.Error(err),
			)
		} else {
			result.Response = ack
			m.logger.Info("volume modification requested",
				zap.String("volume_id", candidate.VolumeID),
				zap.String("from", candidate.VolumeType),
				zap.String("to", m.targetType),
			)
		}
		results = append(results, result)
	}

	return models.MutateResult{
		Results:    results,
		Candidates: candidates,
	}
}
