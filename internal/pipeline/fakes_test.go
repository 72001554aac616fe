package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/juju/clock"

	"github.com/younsl/ebsconvert/internal/audit"
	"github.com/younsl/ebsconvert/internal/models"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeClock advances only when After is called, so sleeps are instantaneous
type fakeClock struct {
	clock.Clock

	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: epoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) sleepCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sleeps)
}

// fakeProvider replays a scripted sequence of states per volume. The last
// state repeats once the script runs out.
type fakeProvider struct {
	mu sync.Mutex

	volumes   []models.VolumeCandidate
	listErr   error
	modifyErr map[string]error
	modified  []string

	states   map[string][]string
	messages map[string]string
	queryErr map[string]error
	queries  map[string]int

	tagErr   error
	tagged   map[string]map[string]string
	tagCalls map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		modifyErr: map[string]error{},
		states:    map[string][]string{},
		messages:  map[string]string{},
		queryErr:  map[string]error{},
		queries:   map[string]int{},
		tagged:    map[string]map[string]string{},
		tagCalls:  map[string]int{},
	}
}

func (p *fakeProvider) ListVolumes(_ context.Context, _ []string) ([]models.VolumeCandidate, error) {
	return p.volumes, p.listErr
}

func (p *fakeProvider) ModifyVolumeType(_ context.Context, volumeID, targetType string) (*models.ModifyAck, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modified = append(p.modified, volumeID)
	if err := p.modifyErr[volumeID]; err != nil {
		return nil, err
	}
	return &models.ModifyAck{OriginalVolumeType: "gp2", TargetVolumeType: targetType, ModificationState: "modifying"}, nil
}

func (p *fakeProvider) GetModificationState(_ context.Context, volumeID string) (models.ModificationState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := p.queries[volumeID]
	p.queries[volumeID] = n + 1
	if err := p.queryErr[volumeID]; err != nil {
		return models.ModificationState{}, err
	}
	script := p.states[volumeID]
	if len(script) == 0 {
		return models.ModificationState{}, nil
	}
	if n >= len(script) {
		n = len(script) - 1
	}
	return models.ModificationState{
		VolumeID:      volumeID,
		State:         script[n],
		StatusMessage: p.messages[volumeID],
	}, nil
}

func (p *fakeProvider) TagVolume(_ context.Context, volumeID string, tags map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tagCalls[volumeID]++
	if p.tagErr != nil {
		return p.tagErr
	}
	p.tagged[volumeID] = tags
	return nil
}

func (p *fakeProvider) queryCount(volumeID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries[volumeID]
}

// fakeStore keeps records in memory and enforces the conditional update
type fakeStore struct {
	mu        sync.Mutex
	putErr    map[string]error
	updateErr error
	records   map[string]models.AuditRecord
	updates   []models.StatusUpdate
}

func newFakeStore() *fakeStore {
	return &fakeStore{putErr: map[string]error{}, records: map[string]models.AuditRecord{}}
}

func recordKey(volumeID, loggedAt string) string {
	return volumeID + "|" + loggedAt
}

func (s *fakeStore) Put(_ context.Context, record models.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.putErr[record.VolumeID]; err != nil {
		return err
	}
	s.records[recordKey(record.VolumeID, record.LoggedAt)] = record
	return nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, update models.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update)
	if s.updateErr != nil {
		return s.updateErr
	}
	key := recordKey(update.VolumeID, update.LoggedAt)
	record, ok := s.records[key]
	if !ok {
		return audit.ErrRecordNotFound
	}
	record.ConversionStatus = update.Status
	if update.StatusMessage != "" {
		record.StatusMessage = update.StatusMessage
	}
	record.LastCheckedAt = update.CheckedAt
	s.records[key] = record
	return nil
}

// seed stores a PENDING record for each result, as the recorder would
func (s *fakeStore) seed(results []models.ModifyResult) {
	for _, r := range results {
		_ = s.Put(context.Background(), models.AuditRecord{
			VolumeID:         r.VolumeID,
			LoggedAt:         r.LoggedAt,
			ConversionStatus: models.StatusPending,
		})
	}
}

type fakePublisher struct {
	subject string
	message string
	err     error
	calls   int
}

func (p *fakePublisher) Publish(_ context.Context, subject, message string) (string, error) {
	p.calls++
	p.subject = subject
	p.message = message
	if p.err != nil {
		return "", p.err
	}
	return "msg-1", nil
}

var errThrottled = errors.New("RequestLimitExceeded: throttled")
