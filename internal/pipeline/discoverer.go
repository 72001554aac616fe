package pipeline

import (
	"context"
	"fmt"

	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/younsl/ebsconvert/internal/models"
	"github.com/younsl/ebsconvert/pkg/utils"
)

// VolumeLister enumerates volumes of the given types
type VolumeLister interface {
	ListVolumes(ctx context.Context, volumeTypes []string) ([]models.VolumeCandidate, error)
}

// Discoverer selects opted-in volumes of the source types
type Discoverer struct {
	lister      VolumeLister
	volumeTypes []string
	optInTag    string
	clock       clock.Clock
	logger      *zap.Logger
}

// NewDiscoverer creates a Discoverer
func NewDiscoverer(lister VolumeLister, volumeTypes []string, optInTag string, clk clock.Clock, logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{
		lister:      lister,
		volumeTypes: volumeTypes,
		optInTag:    optInTag,
		clock:       clk,
		logger:      logger,
	}
}

// Discover lists every volume of the source types and keeps the opted-in ones.
// An enumeration error aborts discovery.
func (d *Discoverer) Discover(ctx context.Context) (models.DiscoveryResult, error) {
	volumes, err := d.lister.ListVolumes(ctx, d.volumeTypes)
	if err != nil {
		return models.DiscoveryResult{}, fmt.Errorf("error listing volumes: %w", err)
	}

	candidates := make([]models.VolumeCandidate, 0, len(volumes))
	for _, volume := range volumes {
		if !utils.IsOptedIn(volume.Tags, d.optInTag) {
			continue
		}
		candidates = append(candidates, volume)
	}

	d.logger.Info("volume discovery finished",
		zap.Strings("volume_types", d.volumeTypes),
		zap.Int("scanned", len(volumes)),
		zap.Int("candidates", len(candidates)),
	)

	return models.DiscoveryResult{
		Candidates:   candidates,
		ScannedCount: len(volumes),
		Timestamp:    d.clock.Now().UTC(),
	}, nil
}
