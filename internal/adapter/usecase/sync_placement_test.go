package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adboard-sync/internal/core/domain"
)

func unsyncedPlacement(networkID, advertisementID int) domain.Placement {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return domain.Placement{
		ID:              uuid.New(),
		NetworkID:       networkID,
		AdvertisementID: advertisementID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestSyncPlacementCreates(t *testing.T) {
	store := newFakeStore()
	platform := newFakePlatform()
	svc, _, _, _ := testService(store, platform)

	campaign := unsyncedCampaign(7, "spring-sale")
	campaign.MarkSynced(99, time.Now())
	store.campaigns[campaign.ID] = campaign
	zone := unsyncedZone(7, "leaderboard")
	zone.MarkSynced(12, time.Now())
	store.zones[zone.ID] = zone

	p := unsyncedPlacement(7, 300)
	p.LocalCampaignID = &campaign.ID
	p.LocalZoneID = &zone.ID
	res := svc.syncPlacement(context.Background(), &p)

	require.True(t, res.Success)
	saved := store.placements[p.ID]
	assert.True(t, saved.SyncedWithAPI)
	assert.Equal(t, 1, platform.callCount("CreatePlacement"))
}

func TestSyncPlacementUnsyncedZoneIsDependencyFailure(t *testing.T) {
	store := newFakeStore()
	platform := newFakePlatform()
	svc, _, _, _ := testService(store, platform)

	campaign := unsyncedCampaign(7, "spring-sale")
	campaign.MarkSynced(99, time.Now())
	store.campaigns[campaign.ID] = campaign
	zone := unsyncedZone(7, "leaderboard")
	store.zones[zone.ID] = zone

	p := unsyncedPlacement(7, 300)
	p.LocalCampaignID = &campaign.ID
	p.LocalZoneID = &zone.ID
	res := svc.syncPlacement(context.Background(), &p)

	require.False(t, res.Success)
	assert.Equal(t, domain.CodeDependency, res.Code)
	assert.Contains(t, res.Error, "zone")
	assert.Empty(t, platform.calls)
}

func TestSyncPlacementMissingCampaignIsDependencyFailure(t *testing.T) {
	store := newFakeStore()
	platform := newFakePlatform()
	svc, _, _, _ := testService(store, platform)

	zoneID := 12
	p := unsyncedPlacement(7, 300)
	p.RemoteZoneID = &zoneID
	res := svc.syncPlacement(context.Background(), &p)

	require.False(t, res.Success)
	assert.Equal(t, domain.CodeDependency, res.Code)
	assert.Contains(t, res.Error, "campaign")
	assert.Empty(t, platform.calls)
}

func TestSyncPlacementRemoteReferencesPassThrough(t *testing.T) {
	store := newFakeStore()
	platform := newFakePlatform()
	svc, _, _, _ := testService(store, platform)

	campaignID, zoneID := 99, 12
	p := unsyncedPlacement(7, 300)
	p.RemoteCampaignID = &campaignID
	p.RemoteZoneID = &zoneID
	p.Restrictions = []string{"no-adult"}
	res := svc.syncPlacement(context.Background(), &p)

	require.True(t, res.Success)
	// Remote ids need no store lookups at all.
	assert.Equal(t, []string{"CreatePlacement"}, platform.calls)
}
