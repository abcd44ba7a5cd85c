package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"adboard-sync/internal/core/domain"
)

// EntityRepository implements port.EntityStore using pgxpool for
// PostgreSQL. Saves are full-row upserts: records are created elsewhere
// (forms, seed) and the sync engine performs read-modify-write with
// last-writer-wins semantics.
type EntityRepository struct {
	pool *pgxpool.Pool
}

// NewEntityRepository returns a new repository instance.
func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

const advertiserColumns = `id, network_id, name, contact_email, synced_with_api,
	original_remote_id, synced_at, sync_errors, created_at, updated_at`

func scanAdvertiser(row pgx.CollectableRow) (domain.Advertiser, error) {
	var a domain.Advertiser
	err := row.Scan(
		&a.ID, &a.NetworkID, &a.Name, &a.ContactEmail, &a.SyncedWithAPI,
		&a.OriginalRemoteID, &a.SyncedAt, &a.SyncErrors, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func (r *EntityRepository) UnsyncedAdvertisers(ctx context.Context, networkID int) ([]domain.Advertiser, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+advertiserColumns+`
		FROM advertisers WHERE network_id = $1 AND NOT synced_with_api
		ORDER BY created_at`, networkID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanAdvertiser)
}

func (r *EntityRepository) GetAdvertiser(ctx context.Context, id uuid.UUID) (*domain.Advertiser, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+advertiserColumns+`
		FROM advertisers WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	a, err := pgx.CollectOneRow(rows, scanAdvertiser)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *EntityRepository) SaveAdvertiser(ctx context.Context, a *domain.Advertiser) error {
	a.UpdatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `INSERT INTO advertisers
		(id, network_id, name, contact_email, synced_with_api, original_remote_id, synced_at, sync_errors, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			contact_email = EXCLUDED.contact_email,
			synced_with_api = EXCLUDED.synced_with_api,
			original_remote_id = EXCLUDED.original_remote_id,
			synced_at = EXCLUDED.synced_at,
			sync_errors = EXCLUDED.sync_errors,
			updated_at = EXCLUDED.updated_at`,
		a.ID, a.NetworkID, a.Name, a.ContactEmail, a.SyncedWithAPI,
		a.OriginalRemoteID, a.SyncedAt, a.SyncErrors, a.CreatedAt, a.UpdatedAt)
	return err
}

const zoneColumns = `id, network_id, name, width, height, zone_type, synced_with_api,
	original_remote_id, synced_at, sync_errors, created_at, updated_at`

func scanZone(row pgx.CollectableRow) (domain.Zone, error) {
	var z domain.Zone
	err := row.Scan(
		&z.ID, &z.NetworkID, &z.Name, &z.Width, &z.Height, &z.ZoneType, &z.SyncedWithAPI,
		&z.OriginalRemoteID, &z.SyncedAt, &z.SyncErrors, &z.CreatedAt, &z.UpdatedAt,
	)
	return z, err
}

func (r *EntityRepository) UnsyncedZones(ctx context.Context, networkID int) ([]domain.Zone, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+zoneColumns+`
		FROM zones WHERE network_id = $1 AND NOT synced_with_api
		ORDER BY created_at`, networkID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanZone)
}

func (r *EntityRepository) GetZone(ctx context.Context, id uuid.UUID) (*domain.Zone, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+zoneColumns+` FROM zones WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	z, err := pgx.CollectOneRow(rows, scanZone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

func (r *EntityRepository) SaveZone(ctx context.Context, z *domain.Zone) error {
	z.UpdatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `INSERT INTO zones
		(id, network_id, name, width, height, zone_type, synced_with_api, original_remote_id, synced_at, sync_errors, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			zone_type = EXCLUDED.zone_type,
			synced_with_api = EXCLUDED.synced_with_api,
			original_remote_id = EXCLUDED.original_remote_id,
			synced_at = EXCLUDED.synced_at,
			sync_errors = EXCLUDED.sync_errors,
			updated_at = EXCLUDED.updated_at`,
		z.ID, z.NetworkID, z.Name, z.Width, z.Height, z.ZoneType, z.SyncedWithAPI,
		z.OriginalRemoteID, z.SyncedAt, z.SyncErrors, z.CreatedAt, z.UpdatedAt)
	return err
}

const campaignColumns = `id, network_id, name, remote_advertiser_id, local_advertiser_id,
	start_date, end_date, weight, display_type, active, placements, synced_with_api,
	original_remote_id, synced_at, sync_errors, created_at, updated_at`

func scanCampaign(row pgx.CollectableRow) (domain.Campaign, error) {
	var (
		c   domain.Campaign
		raw []byte
	)
	err := row.Scan(
		&c.ID, &c.NetworkID, &c.Name, &c.RemoteAdvertiserID, &c.LocalAdvertiserID,
		&c.StartDate, &c.EndDate, &c.Weight, &c.DisplayType, &c.Active, &raw,
		&c.SyncedWithAPI, &c.OriginalRemoteID, &c.SyncedAt, &c.SyncErrors,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.Placements); err != nil {
			return c, fmt.Errorf("decode embedded placements of campaign %s: %w", c.ID, err)
		}
	}
	return c, nil
}

func (r *EntityRepository) UnsyncedCampaigns(ctx context.Context, networkID int) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+campaignColumns+`
		FROM campaigns WHERE network_id = $1 AND NOT synced_with_api
		ORDER BY created_at`, networkID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanCampaign)
}

func (r *EntityRepository) GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	c, err := pgx.CollectOneRow(rows, scanCampaign)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *EntityRepository) CampaignsWithEmbeddedPlacements(ctx context.Context, networkID int) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+campaignColumns+`
		FROM campaigns WHERE network_id = $1 AND jsonb_array_length(placements) > 0
		ORDER BY created_at`, networkID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanCampaign)
}

func (r *EntityRepository) SaveCampaign(ctx context.Context, c *domain.Campaign) error {
	placements := c.Placements
	if placements == nil {
		placements = []domain.EmbeddedPlacement{}
	}
	raw, err := json.Marshal(placements)
	if err != nil {
		return fmt.Errorf("encode embedded placements: %w", err)
	}
	c.UpdatedAt = time.Now().UTC()
	_, err = r.pool.Exec(ctx, `INSERT INTO campaigns
		(id, network_id, name, remote_advertiser_id, local_advertiser_id, start_date, end_date,
		 weight, display_type, active, placements, synced_with_api, original_remote_id, synced_at,
		 sync_errors, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			remote_advertiser_id = EXCLUDED.remote_advertiser_id,
			local_advertiser_id = EXCLUDED.local_advertiser_id,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			weight = EXCLUDED.weight,
			display_type = EXCLUDED.display_type,
			active = EXCLUDED.active,
			placements = EXCLUDED.placements,
			synced_with_api = EXCLUDED.synced_with_api,
			original_remote_id = EXCLUDED.original_remote_id,
			synced_at = EXCLUDED.synced_at,
			sync_errors = EXCLUDED.sync_errors,
			updated_at = EXCLUDED.updated_at`,
		c.ID, c.NetworkID, c.Name, c.RemoteAdvertiserID, c.LocalAdvertiserID,
		c.StartDate, c.EndDate, c.Weight, c.DisplayType, c.Active, raw,
		c.SyncedWithAPI, c.OriginalRemoteID, c.SyncedAt, c.SyncErrors,
		c.CreatedAt, c.UpdatedAt)
	return err
}

const placementColumns = `id, network_id, advertisement_id, remote_zone_id, local_zone_id,
	remote_campaign_id, local_campaign_id, restrictions, synced_with_api,
	original_remote_id, synced_at, sync_errors, created_at, updated_at`

func scanPlacement(row pgx.CollectableRow) (domain.Placement, error) {
	var p domain.Placement
	err := row.Scan(
		&p.ID, &p.NetworkID, &p.AdvertisementID, &p.RemoteZoneID, &p.LocalZoneID,
		&p.RemoteCampaignID, &p.LocalCampaignID, &p.Restrictions, &p.SyncedWithAPI,
		&p.OriginalRemoteID, &p.SyncedAt, &p.SyncErrors, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *EntityRepository) UnsyncedPlacements(ctx context.Context, networkID int) ([]domain.Placement, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+placementColumns+`
		FROM placements WHERE network_id = $1 AND NOT synced_with_api
		ORDER BY created_at`, networkID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanPlacement)
}

func (r *EntityRepository) PlacementsByNetwork(ctx context.Context, networkID int) ([]domain.Placement, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+placementColumns+`
		FROM placements WHERE network_id = $1 ORDER BY created_at`, networkID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanPlacement)
}

func (r *EntityRepository) SavePlacement(ctx context.Context, p *domain.Placement) error {
	p.UpdatedAt = time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO placements
		(id, network_id, advertisement_id, remote_zone_id, local_zone_id, remote_campaign_id,
		 local_campaign_id, restrictions, synced_with_api, original_remote_id, synced_at,
		 sync_errors, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO UPDATE SET
			remote_zone_id = EXCLUDED.remote_zone_id,
			local_zone_id = EXCLUDED.local_zone_id,
			remote_campaign_id = EXCLUDED.remote_campaign_id,
			local_campaign_id = EXCLUDED.local_campaign_id,
			restrictions = EXCLUDED.restrictions,
			synced_with_api = EXCLUDED.synced_with_api,
			original_remote_id = EXCLUDED.original_remote_id,
			synced_at = EXCLUDED.synced_at,
			sync_errors = EXCLUDED.sync_errors,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.NetworkID, p.AdvertisementID, p.RemoteZoneID, p.LocalZoneID,
		p.RemoteCampaignID, p.LocalCampaignID, p.Restrictions, p.SyncedWithAPI,
		p.OriginalRemoteID, p.SyncedAt, p.SyncErrors, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *EntityRepository) AdvertisementExists(ctx context.Context, advertisementID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM advertisements WHERE id = $1)`, advertisementID).Scan(&exists)
	return exists, err
}

// ClearStaleSyncErrors empties sync_errors on synced records of the
// network across all entity tables in one transaction.
func (r *EntityRepository) ClearStaleSyncErrors(ctx context.Context, networkID int) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	var total int64
	for _, table := range []string{"advertisers", "zones", "campaigns", "placements"} {
		var tag pgconn.CommandTag
		tag, err = tx.Exec(ctx, `UPDATE `+table+`
			SET sync_errors = '{}', updated_at = now()
			WHERE network_id = $1 AND synced_with_api AND cardinality(sync_errors) > 0`, networkID)
		if err != nil {
			return 0, fmt.Errorf("clear sync errors on %s: %w", table, err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}

// BackfillSyncedAt stamps synced_at on synced records missing it.
func (r *EntityRepository) BackfillSyncedAt(ctx context.Context, networkID int, now time.Time) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	var total int64
	for _, table := range []string{"advertisers", "zones", "campaigns", "placements"} {
		var tag pgconn.CommandTag
		tag, err = tx.Exec(ctx, `UPDATE `+table+`
			SET synced_at = $2, updated_at = now()
			WHERE network_id = $1 AND synced_with_api AND synced_at IS NULL`, networkID, now)
		if err != nil {
			return 0, fmt.Errorf("backfill synced_at on %s: %w", table, err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}
