package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"adboard-sync/internal/core/domain"
)

// EntityStore defines the persistence layer for locally created entities.
// It is an outbound port; the engine performs plain read-modify-write
// against it with last-writer-wins semantics. Callers are expected to
// serialize sync runs per network; the store does not lock records.
type EntityStore interface {
	// UnsyncedAdvertisers returns advertisers of the network with
	// synced_with_api = false, oldest first.
	UnsyncedAdvertisers(ctx context.Context, networkID int) ([]domain.Advertiser, error)
	// GetAdvertiser returns an advertiser by local id, or nil when absent.
	GetAdvertiser(ctx context.Context, id uuid.UUID) (*domain.Advertiser, error)
	// SaveAdvertiser persists the full record, inserting it when new.
	SaveAdvertiser(ctx context.Context, a *domain.Advertiser) error

	UnsyncedZones(ctx context.Context, networkID int) ([]domain.Zone, error)
	GetZone(ctx context.Context, id uuid.UUID) (*domain.Zone, error)
	SaveZone(ctx context.Context, z *domain.Zone) error

	UnsyncedCampaigns(ctx context.Context, networkID int) ([]domain.Campaign, error)
	GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	SaveCampaign(ctx context.Context, c *domain.Campaign) error
	// CampaignsWithEmbeddedPlacements returns campaigns of the network that
	// still carry legacy embedded placements, regardless of sync state.
	CampaignsWithEmbeddedPlacements(ctx context.Context, networkID int) ([]domain.Campaign, error)

	UnsyncedPlacements(ctx context.Context, networkID int) ([]domain.Placement, error)
	// PlacementsByNetwork returns every standalone placement of the
	// network, synced or not. Used to match embedded placements against
	// their standalone counterparts during migration and pruning.
	PlacementsByNetwork(ctx context.Context, networkID int) ([]domain.Placement, error)
	SavePlacement(ctx context.Context, p *domain.Placement) error

	// AdvertisementExists reports whether a local advertisement record with
	// the given remote id is known.
	AdvertisementExists(ctx context.Context, advertisementID int) (bool, error)

	// ClearStaleSyncErrors empties sync_errors on records of the network
	// that are synced but still carry error text from earlier attempts.
	// Returns the number of records modified across all entity kinds.
	ClearStaleSyncErrors(ctx context.Context, networkID int) (int64, error)
	// BackfillSyncedAt stamps synced_at on synced records that are missing
	// it. Returns the number of records modified.
	BackfillSyncedAt(ctx context.Context, networkID int, now time.Time) (int64, error)
}
