package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"adboard-sync/internal/config/configs"
	"adboard-sync/internal/core/domain"
	"adboard-sync/internal/core/port"
)

// fakeStore is an in-memory port.EntityStore. Saves store copies so tests
// observe exactly what was persisted.
type fakeStore struct {
	mu             sync.Mutex
	advertisers    map[uuid.UUID]domain.Advertiser
	zones          map[uuid.UUID]domain.Zone
	campaigns      map[uuid.UUID]domain.Campaign
	placements     map[uuid.UUID]domain.Placement
	advertisements map[int]bool

}

func newFakeStore() *fakeStore {
	return &fakeStore{
		advertisers:    make(map[uuid.UUID]domain.Advertiser),
		zones:          make(map[uuid.UUID]domain.Zone),
		campaigns:      make(map[uuid.UUID]domain.Campaign),
		placements:     make(map[uuid.UUID]domain.Placement),
		advertisements: make(map[int]bool),
	}
}

func (f *fakeStore) UnsyncedAdvertisers(_ context.Context, networkID int) ([]domain.Advertiser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Advertiser
	for _, a := range f.advertisers {
		if a.NetworkID == networkID && !a.SyncedWithAPI {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAdvertiser(_ context.Context, id uuid.UUID) (*domain.Advertiser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.advertisers[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (f *fakeStore) SaveAdvertiser(_ context.Context, a *domain.Advertiser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advertisers[a.ID] = *a
	return nil
}

func (f *fakeStore) UnsyncedZones(_ context.Context, networkID int) ([]domain.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Zone
	for _, z := range f.zones {
		if z.NetworkID == networkID && !z.SyncedWithAPI {
			out = append(out, z)
		}
	}
	return out, nil
}

func (f *fakeStore) GetZone(_ context.Context, id uuid.UUID) (*domain.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if z, ok := f.zones[id]; ok {
		return &z, nil
	}
	return nil, nil
}

func (f *fakeStore) SaveZone(_ context.Context, z *domain.Zone) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zones[z.ID] = *z
	return nil
}

func (f *fakeStore) UnsyncedCampaigns(_ context.Context, networkID int) ([]domain.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Campaign
	for _, c := range f.campaigns {
		if c.NetworkID == networkID && !c.SyncedWithAPI {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCampaign(_ context.Context, id uuid.UUID) (*domain.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.campaigns[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeStore) SaveCampaign(_ context.Context, c *domain.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campaigns[c.ID] = *c
	return nil
}

func (f *fakeStore) CampaignsWithEmbeddedPlacements(_ context.Context, networkID int) ([]domain.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Campaign
	for _, c := range f.campaigns {
		if c.NetworkID == networkID && len(c.Placements) > 0 {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) UnsyncedPlacements(_ context.Context, networkID int) ([]domain.Placement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Placement
	for _, p := range f.placements {
		if p.NetworkID == networkID && !p.SyncedWithAPI {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) PlacementsByNetwork(_ context.Context, networkID int) ([]domain.Placement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Placement
	for _, p := range f.placements {
		if p.NetworkID == networkID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) SavePlacement(_ context.Context, p *domain.Placement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placements[p.ID] = *p
	return nil
}

func (f *fakeStore) AdvertisementExists(_ context.Context, advertisementID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.advertisements[advertisementID], nil
}

func (f *fakeStore) ClearStaleSyncErrors(_ context.Context, networkID int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, a := range f.advertisers {
		if a.NetworkID == networkID && a.SyncedWithAPI && len(a.SyncErrors) > 0 {
			a.SyncErrors = nil
			f.advertisers[id] = a
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) BackfillSyncedAt(_ context.Context, networkID int, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, a := range f.advertisers {
		if a.NetworkID == networkID && a.SyncedWithAPI && a.SyncedAt == nil {
			t := now
			a.SyncedAt = &t
			f.advertisers[id] = a
			n++
		}
	}
	return n, nil
}

// fakePlatform scripts the remote API. Existence and find results are
// keyed by scope and name; create calls consume an error queue before
// succeeding with sequential remote ids. Every call is recorded so tests
// can assert which (and how many) remote calls were made.
type fakePlatform struct {
	mu sync.Mutex

	networkErr error

	existing map[string]bool
	findable map[string]*port.RemoteEntity

	createErrs map[string][]error
	nextID     int

	calls []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		existing:   make(map[string]bool),
		findable:   make(map[string]*port.RemoteEntity),
		createErrs: make(map[string][]error),
		nextID:     100,
	}
}

func scopeKey(kind string, scope int, name string) string {
	return fmt.Sprintf("%s:%d:%s", kind, scope, name)
}

func (f *fakePlatform) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakePlatform) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakePlatform) popCreateErr(kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.createErrs[kind]
	if len(q) == 0 {
		return nil
	}
	err := q[0]
	f.createErrs[kind] = q[1:]
	return err
}

func (f *fakePlatform) created(name string) *port.RemoteEntity {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return &port.RemoteEntity{ID: f.nextID, Name: name}
}

func (f *fakePlatform) GetNetwork(_ context.Context, id int) (*port.RemoteNetwork, error) {
	f.record("GetNetwork")
	if f.networkErr != nil {
		return nil, f.networkErr
	}
	return &port.RemoteNetwork{ID: id, Name: "net"}, nil
}

func (f *fakePlatform) AdvertiserExists(_ context.Context, networkID int, name string) (bool, error) {
	f.record("AdvertiserExists")
	return f.existing[scopeKey("advertiser", networkID, name)], nil
}

func (f *fakePlatform) FindAdvertiserByName(_ context.Context, networkID int, name string) (*port.RemoteEntity, error) {
	f.record("FindAdvertiserByName")
	return f.findable[scopeKey("advertiser", networkID, name)], nil
}

func (f *fakePlatform) CreateAdvertiser(_ context.Context, p port.AdvertiserPayload) (*port.RemoteEntity, error) {
	f.record("CreateAdvertiser")
	if err := f.popCreateErr("advertiser"); err != nil {
		return nil, err
	}
	return f.created(p.Name), nil
}

func (f *fakePlatform) ZoneExists(_ context.Context, networkID int, name string) (bool, error) {
	f.record("ZoneExists")
	return f.existing[scopeKey("zone", networkID, name)], nil
}

func (f *fakePlatform) CreateZone(_ context.Context, p port.ZonePayload) (*port.RemoteEntity, error) {
	f.record("CreateZone")
	if err := f.popCreateErr("zone"); err != nil {
		return nil, err
	}
	return f.created(p.Name), nil
}

func (f *fakePlatform) CampaignExists(_ context.Context, advertiserID int, name string) (bool, error) {
	f.record("CampaignExists")
	return f.existing[scopeKey("campaign", advertiserID, name)], nil
}

func (f *fakePlatform) FindCampaignByName(_ context.Context, advertiserID int, name string) (*port.RemoteEntity, error) {
	f.record("FindCampaignByName")
	return f.findable[scopeKey("campaign", advertiserID, name)], nil
}

func (f *fakePlatform) CreateCampaign(_ context.Context, p port.CampaignPayload) (*port.RemoteEntity, error) {
	f.record("CreateCampaign")
	if err := f.popCreateErr("campaign"); err != nil {
		return nil, err
	}
	return f.created(p.Name), nil
}

func (f *fakePlatform) CreatePlacement(_ context.Context, p port.PlacementPayload) (*port.RemoteEntity, error) {
	f.record("CreatePlacement")
	if err := f.popCreateErr("placement"); err != nil {
		return nil, err
	}
	return f.created(fmt.Sprintf("placement-%d", p.AdvertisementID)), nil
}

// fakeAudit collects pushed audit events in memory.
type fakeAudit struct {
	mu         sync.Mutex
	logID      uuid.UUID
	createErr  error
	phases     []string
	operations []domain.SyncOperation
	completed  []string
	status     string
}

func newFakeAudit() *fakeAudit {
	return &fakeAudit{logID: uuid.New()}
}

func (f *fakeAudit) CreateSyncLog(_ context.Context, _ int, _ string) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	return f.logID, nil
}

func (f *fakeAudit) StartPhase(_ context.Context, _ uuid.UUID, phase domain.Phase, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phases = append(f.phases, string(phase))
	return nil
}

func (f *fakeAudit) LogOperation(_ context.Context, _ uuid.UUID, _ domain.Phase, op domain.SyncOperation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operations = append(f.operations, op)
	return nil
}

func (f *fakeAudit) CompletePhase(_ context.Context, _ uuid.UUID, phase domain.Phase, status, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, string(phase)+":"+status)
	return nil
}

func (f *fakeAudit) CompleteSyncLog(_ context.Context, _ uuid.UUID, status, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	return nil
}

func (f *fakeAudit) UpdateProgress(_ context.Context, _ uuid.UUID, _ int) error { return nil }

// fakeProgress counts pushed progress events.
type fakeProgress struct {
	mu        sync.Mutex
	started   int
	updates   int
	completed bool
	success   bool
}

func (f *fakeProgress) StartSync(_ uuid.UUID, _, _ int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
}

func (f *fakeProgress) UpdatePhaseProgress(_ uuid.UUID, _ domain.Phase, _, _ int, _, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
}

func (f *fakeProgress) UpdateEntityCounts(_ uuid.UUID, _, _, _ int) {}

func (f *fakeProgress) CompleteSync(_ uuid.UUID, success bool, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = true
	f.success = success
}

// testService builds a SyncService over the fakes with instant sleeps and
// a fixed clock, recording requested backoff delays.
func testService(store *fakeStore, platform *fakePlatform) (*SyncService, *fakeAudit, *fakeProgress, *[]time.Duration) {
	audit := newFakeAudit()
	progress := &fakeProgress{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewSyncService(store, platform, audit, progress, logger, configs.Sync{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	})
	delays := &[]time.Duration{}
	svc.now = func() time.Time { return time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC) }
	svc.sleep = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return svc, audit, progress, delays
}
