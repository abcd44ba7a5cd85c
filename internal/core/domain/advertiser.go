package domain

import (
	"time"

	"github.com/google/uuid"
)

// Advertiser represents a locally created advertiser account that may or
// may not exist on the remote platform yet. Names are not guaranteed
// unique; the sync engine deduplicates by name within a network.
type Advertiser struct {
	ID           uuid.UUID
	NetworkID    int
	Name         string
	ContactEmail string
	SyncState
	CreatedAt time.Time
	UpdatedAt time.Time
}
