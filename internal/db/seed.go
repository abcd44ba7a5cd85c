package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo data for local development: a handful of unsynced
// advertisers, zones and campaigns for network 1, one campaign with legacy
// embedded placements, and the advertisements those placements reference.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	const networkID = 1

	for i := 1; i <= 200; i++ {
		_, err := db.Exec(ctx, `INSERT INTO advertisements (id, name)
VALUES ($1, $2) ON CONFLICT DO NOTHING`, i, fmt.Sprintf("Advertisement %d", i))
		if err != nil {
			return err
		}
	}

	advertiserIDs := make([]uuid.UUID, 0, 3)
	for i := 1; i <= 3; i++ {
		id := uuid.New()
		advertiserIDs = append(advertiserIDs, id)
		_, err := db.Exec(ctx, `INSERT INTO advertisers
    (id, network_id, name, contact_email, created_at, updated_at)
VALUES ($1,$2,$3,$4,now(),now()) ON CONFLICT DO NOTHING`,
			id, networkID, fmt.Sprintf("Demo Advertiser %d", i), fmt.Sprintf("advertiser%d@example.com", i))
		if err != nil {
			return err
		}
	}

	zoneIDs := make([]uuid.UUID, 0, 4)
	sizes := [][2]int{{728, 90}, {300, 250}, {160, 600}, {970, 250}}
	for _, size := range sizes {
		id := uuid.New()
		zoneIDs = append(zoneIDs, id)
		_, err := db.Exec(ctx, `INSERT INTO zones
    (id, network_id, name, width, height, zone_type, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,now(),now()) ON CONFLICT DO NOTHING`,
			id, networkID, fmt.Sprintf("Demo Zone %dx%d", size[0], size[1]), size[0], size[1], "banner")
		if err != nil {
			return err
		}
	}

	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().AddDate(0, 1, 0)
	for i := 1; i <= 5; i++ {
		id := uuid.New()
		advertiserID := advertiserIDs[(i-1)%len(advertiserIDs)]

		// One campaign keeps legacy embedded placements to exercise the
		// migration step of the placements phase.
		placements := []map[string]any{}
		if i == 1 {
			placements = append(placements, map[string]any{
				"advertisement_id": i,
				"local_zone_id":    zoneIDs[0],
				"restrictions":     []string{"no-alcohol"},
			})
		}
		raw, err := json.Marshal(placements)
		if err != nil {
			return err
		}

		_, err = db.Exec(ctx, `INSERT INTO campaigns
    (id, network_id, name, local_advertiser_id, start_date, end_date, weight, display_type, active,
     placements, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now()) ON CONFLICT DO NOTHING`,
			id, networkID, fmt.Sprintf("Demo Campaign %d", i), advertiserID,
			start, end, i, "standard", true, raw)
		if err != nil {
			return err
		}
	}
	return nil
}
