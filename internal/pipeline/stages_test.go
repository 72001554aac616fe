package pipeline

import (
	"context"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/younsl/ebsconvert/internal/models"
)

func TestDiscoverFiltersOptedInVolumes(t *testing.T) {
	c := qt.New(t)
	provider := newFakeProvider()
	provider.volumes = []models.VolumeCandidate{
		{VolumeID: "vol-1", VolumeType: "gp2", Tags: map[string]string{"AutoConvert": "true"}},
		{VolumeID: "vol-2", VolumeType: "gp2", Tags: map[string]string{"AutoConvert": "TRUE"}},
		{VolumeID: "vol-3", VolumeType: "gp2", Tags: map[string]string{"AutoConvert": "false"}},
		{VolumeID: "vol-4", VolumeType: "gp2"},
		{VolumeID: "vol-5", VolumeType: "gp2", Tags: map[string]string{"autoconvert": "true"}},
	}

	got, err := NewDiscoverer(provider, []string{"gp2"}, "AutoConvert", newFakeClock(), nil).Discover(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(got.ScannedCount, qt.Equals, 5)
	c.Assert(got.Candidates, qt.HasLen, 2)
	c.Assert(got.Candidates[0].VolumeID, qt.Equals, "vol-1")
	c.Assert(got.Candidates[1].VolumeID, qt.Equals, "vol-2")
	c.Assert(got.Timestamp, qt.Equals, epoch)
}

func TestDiscoverReturnsListError(t *testing.T) {
	c := qt.New(t)
	provider := newFakeProvider()
	provider.listErr = errors.New("UnauthorizedOperation")

	_, err := NewDiscoverer(provider, []string{"gp2"}, "AutoConvert", newFakeClock(), nil).Discover(context.Background())
	c.Assert(err, qt.ErrorMatches, "error listing volumes: UnauthorizedOperation")
}

func TestRecordWritesPendingRecords(t *testing.T) {
	c := qt.New(t)
	store := newFakeStore()
	store.putErr["vol-2"] = errors.New("ProvisionedThroughputExceededException")
	clk := newFakeClock()

	recorder := NewRecorder(store, clk, nil, RecorderConfig{RunID: "run-1", Region: "us-east-1", TargetVolumeType: "gp3"})
	got := recorder.Record(context.Background(), []models.VolumeCandidate{
		{VolumeID: "vol-1", VolumeType: "gp2", Size: 100, AvailabilityZone: "us-east-1a", InstanceID: "i-1",
			Tags: map[string]string{"AutoConvert": "true"}},
		{VolumeID: "vol-2", VolumeType: "gp2", Size: 50},
	})

	c.Assert(got.LoggedCount, qt.Equals, 1)
	c.Assert(got.Candidates, qt.HasLen, 2)
	c.Assert(got.Candidates[0].LoggedAt, qt.Equals, "2026-03-01T12:00:00Z")
	c.Assert(got.Candidates[0].LogError, qt.Equals, "")
	c.Assert(got.Candidates[1].LoggedAt, qt.Equals, "2026-03-01T12:00:00Z")
	c.Assert(got.Candidates[1].LogError, qt.Equals, "ProvisionedThroughputExceededException")

	c.Assert(store.records[recordKey("vol-1", "2026-03-01T12:00:00Z")], qt.DeepEquals, models.AuditRecord{
		VolumeID:         "vol-1",
		LoggedAt:         "2026-03-01T12:00:00Z",
		RunID:            "run-1",
		InstanceID:       "i-1",
		PrevVolumeType:   "gp2",
		TargetVolumeType: "gp3",
		Size:             100,
		AvailabilityZone: "us-east-1a",
		Region:           "us-east-1",
		Tags:             map[string]string{"AutoConvert": "true"},
		ConversionStatus: models.StatusPending,
	})
}

func TestMutateRequestsTypeChange(t *testing.T) {
	c := qt.New(t)
	provider := newFakeProvider()
	provider.modifyErr["vol-2"] = errors.New("IncorrectModificationState")
	candidates := []models.VolumeCandidate{
		{VolumeID: "vol-1", VolumeType: "gp2", LoggedAt: "t1"},
		{VolumeID: "vol-2", VolumeType: "gp2", LoggedAt: "t2"},
	}

	got := NewMutator(provider, "gp3", false, nil).Mutate(context.Background(), candidates)

	c.Assert(provider.modified, qt.DeepEquals, []string{"vol-1", "vol-2"})
	c.Assert(got.Candidates, qt.DeepEquals, candidates)
	c.Assert(got.Results, qt.HasLen, 2)
	c.Assert(got.Results[0].LoggedAt, qt.Equals, "t1")
	c.Assert(got.Results[0].Error, qt.Equals, "")
	c.Assert(got.Results[0].Response.TargetVolumeType, qt.Equals, "gp3")
	c.Assert(got.Results[1].Response, qt.IsNil)
	c.Assert(got.Results[1].Error, qt.Equals, "IncorrectModificationState")
}

func TestMutateDryRun(t *testing.T) {
	c := qt.New(t)
	provider := newFakeProvider()

	got := NewMutator(provider, "gp3", true, nil).Mutate(context.Background(), []models.VolumeCandidate{
		{VolumeID: "vol-1", LoggedAt: "t1"},
	})

	c.Assert(provider.modified, qt.HasLen, 0)
	c.Assert(got.Results, qt.DeepEquals, []models.ModifyResult{{VolumeID: "vol-1", LoggedAt: "t1", DryRun: true}})
}

func TestNotifyPublishesReport(t *testing.T) {
	c := qt.New(t)
	publisher := &fakePublisher{}

	got := NewNotifier(publisher, nil).Notify(context.Background(), []models.VerificationOutcome{
		{VolumeID: "vol-1", Success: true, State: models.ModificationState{State: "completed"}},
	})

	c.Assert(got, qt.DeepEquals, models.NotificationResult{Published: true, MessageID: "msg-1"})
	c.Assert(publisher.subject, qt.Equals, "EBS Volume Conversion Report")
	c.Assert(publisher.message, qt.Equals, "EBS Volume Conversion Report\n\nVolume: vol-1 | Success: true | State: completed")
}

func TestNotifyReportsPublishFailure(t *testing.T) {
	c := qt.New(t)
	publisher := &fakePublisher{err: errors.New("NotFound: topic does not exist")}

	got := NewNotifier(publisher, nil).Notify(context.Background(), nil)

	c.Assert(got.Published, qt.IsFalse)
	c.Assert(got.Error, qt.Equals, "NotFound: topic does not exist")
	c.Assert(publisher.message, qt.Equals, "No conversions required during this run.")
	c.Assert(publisher.calls, qt.Equals, 1)
}
