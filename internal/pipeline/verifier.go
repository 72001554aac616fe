package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/younsl/ebsconvert/internal/audit"
	"github.com/younsl/ebsconvert/internal/models"
	"github.com/younsl/ebsconvert/pkg/utils"
)

// Completion tags applied to a volume once its modification succeeds
const (
	TagAutoConverted = "AutoConverted"
	TagConvertedBy   = "ConvertedBy"
	TagConvertedAt   = "ConvertedAt"
)

// TimeoutMessage is stored on audit records of volumes that never settled
const TimeoutMessage = "Timed out waiting for modification"

// Classification is the verifier's view of a provider modification state
type Classification int

const (
	Pending Classification = iota
	Succeeded
	Failed
)

func (c Classification) String() string {
	switch c {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// ClassifyState maps a provider modification state to a Classification.
// "optimizing" counts as success: the new type is already in effect.
func ClassifyState(state string) Classification {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "completed", "optimizing":
		return Succeeded
	case "failed", "failed-io", "error":
		return Failed
	default:
		return Pending
	}
}

// ModificationChecker queries the current modification state of a volume
type ModificationChecker interface {
	GetModificationState(ctx context.Context, volumeID string) (models.ModificationState, error)
}

// VolumeTagger applies tags to a volume
type VolumeTagger interface {
	TagVolume(ctx context.Context, volumeID string, tags map[string]string) error
}

// StatusUpdater moves an existing audit record to a terminal status
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, update models.StatusUpdate) error
}

// VerifierConfig holds the polling parameters
type VerifierConfig struct {
	MaxWait      time.Duration
	PollInterval time.Duration

	// Concurrency bounds parallel status queries within one pass
	Concurrency int
	ConvertedBy string
}

// Verifier polls requested modifications until each one succeeds, fails or
// runs out of time, and records the terminal status of every volume.
type Verifier struct {
	checker ModificationChecker
	tagger  VolumeTagger
	store   StatusUpdater
	clock   clock.Clock
	logger  *zap.Logger
	cfg     VerifierConfig
}

// NewVerifier creates a Verifier
func NewVerifier(checker ModificationChecker, tagger VolumeTagger, store StatusUpdater, clk clock.Clock, logger *zap.Logger, cfg VerifierConfig) *Verifier {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		checker: checker,
		tagger:  tagger,
		store:   store,
		clock:   clk,
		logger:  logger,
		cfg:     cfg,
	}
}

// trackedVolume is one entry of the working set
type trackedVolume struct {
	volumeID string
	loggedAt string
}

// Verify returns exactly one outcome per input result. Volumes are not
// deduplicated: every input entry gets its own terminal update.
func (v *Verifier) Verify(ctx context.Context, results []models.ModifyResult) models.VerifyResult {
	start := v.clock.Now()

	pending := make([]trackedVolume, 0, len(results))
	for _, r := range results {
		pending = append(pending, trackedVolume{volumeID: r.VolumeID, loggedAt: r.LoggedAt})
	}
	outcomes := make([]models.VerificationOutcome, 0, len(results))

	pass := 0
	for len(pending) > 0 && v.clock.Now().Sub(start) < v.cfg.MaxWait {
		pass++
		states := v.checkAll(ctx, pending)

		remaining := pending[:0:0]
		for i, tv := range pending {
			state := states[i]
			switch ClassifyState(state.State) {
			case Succeeded:
				outcomes = append(outcomes, v.complete(ctx, tv, state))
			case Failed:
				outcomes = append(outcomes, v.fail(ctx, tv, state))
			default:
				remaining = append(remaining, tv)
			}
		}
		pending = remaining

		v.logger.Debug("verification pass finished",
			zap.Int("pass", pass),
			zap.Int("pending", len(pending)),
			zap.Int("resolved", len(outcomes)),
		)

		if len(pending) == 0 {
			break
		}
		// Skip a sleep that would wake up past the deadline
		if v.clock.Now().Sub(start)+v.cfg.PollInterval >= v.cfg.MaxWait {
			break
		}
		<-v.clock.After(v.cfg.PollInterval)
	}

	for _, tv := range pending {
		outcomes = append(outcomes, v.timeout(ctx, tv))
	}

	return models.VerifyResult{
		Outcomes:  outcomes,
		CheckedAt: v.clock.Now().UTC(),
	}
}

// checkAll queries every tracked volume, at most cfg.Concurrency at a time.
// The returned states are index-aligned with pending.
func (v *Verifier) checkAll(ctx context.Context, pending []trackedVolume) []models.ModificationState {
	states := make([]models.ModificationState, len(pending))

	var g errgroup.Group
	g.SetLimit(v.cfg.Concurrency)
	for i, tv := range pending {
		g.Go(func() error {
			states[i] = v.check(ctx, tv.volumeID)
			return nil
		})
	}
	_ = g.Wait()

	return states
}

// check never fails: query errors leave the volume pending
func (v *Verifier) check(ctx context.Context, volumeID string) models.ModificationState {
	state, err := v.checker.GetModificationState(ctx, volumeID)
	if err != nil {
		v.logger.Warn("failed to query modification state",
			zap.String("volume_id", volumeID),
			zap.Error(err),
		)
		return models.ModificationState{VolumeID: volumeID, Error: err.Error()}
	}
	if state.VolumeID == "" {
		state.VolumeID = volumeID
	}
	return state
}

func (v *Verifier) complete(ctx context.Context, tv trackedVolume, state models.ModificationState) models.VerificationOutcome {
	now := v.clock.Now().UTC()

	tags := map[string]string{
		TagAutoConverted: "true",
		TagConvertedBy:   v.cfg.ConvertedBy,
		TagConvertedAt:   now.Format(time.RFC3339),
	}
	tagged := true
	if err := v.tagger.TagVolume(ctx, tv.volumeID, tags); err != nil {
		tagged = false
		v.logger.Error("failed to tag converted volume",
			zap.String("volume_id", tv.volumeID),
			zap.Error(err),
		)
	}

	recorded := v.record(ctx, tv, models.StatusCompleted, state.StatusMessage, now)
	v.logger.Info("volume conversion completed",
		zap.String("volume_id", tv.volumeID),
		zap.String("state", state.State),
	)

	return models.VerificationOutcome{
		VolumeID: tv.volumeID,
		Success:  true,
		State:    state,
		Tagged:   tagged,
		Recorded: recorded,
	}
}

func (v *Verifier) fail(ctx context.Context, tv trackedVolume, state models.ModificationState) models.VerificationOutcome {
	recorded := v.record(ctx, tv, models.StatusFailed, state.StatusMessage, v.clock.Now().UTC())
	v.logger.Warn("volume conversion failed",
		zap.String("volume_id", tv.volumeID),
		zap.String("state", state.State),
		zap.String("status_message", state.StatusMessage),
	)

	return models.VerificationOutcome{
		VolumeID: tv.volumeID,
		State:    state,
		Recorded: recorded,
	}
}

func (v *Verifier) timeout(ctx context.Context, tv trackedVolume) models.VerificationOutcome {
	state := v.check(ctx, tv.volumeID)
	recorded := v.record(ctx, tv, models.StatusFailed, TimeoutMessage, v.clock.Now().UTC())
	v.logger.Warn("timed out waiting for volume modification",
		zap.String("volume_id", tv.volumeID),
		zap.String("last_state", state.Describe()),
		zap.Duration("max_wait", v.cfg.MaxWait),
	)

	return models.VerificationOutcome{
		VolumeID: tv.volumeID,
		State:    state,
		Recorded: recorded,
		TimedOut: true,
	}
}

// record reports whether the audit update was applied
func (v *Verifier) record(ctx context.Context, tv trackedVolume, status models.ConversionStatus, message string, now time.Time) bool {
	err := v.store.UpdateStatus(ctx, models.StatusUpdate{
		VolumeID:      tv.volumeID,
		LoggedAt:      tv.loggedAt,
		Status:        status,
		StatusMessage: message,
		CheckedAt:     utils.Timestamp(now),
	})
	switch {
	case err == nil:
		return true
	case errors.Is(err, audit.ErrRecordNotFound):
		v.logger.Warn("audit record missing, status not recorded",
			zap.String("volume_id", tv.volumeID),
			zap.String("logged_at", tv.loggedAt),
			zap.String("status", string(status)),
		)
	default:
		v.logger.Error("failed to update audit record",
			zap.String("volume_id", tv.volumeID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
	return false
}
