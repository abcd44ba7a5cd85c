package domain

import (
	"time"

	"github.com/google/uuid"
)

// Zone represents an ad slot on a site within a network. Width and height
// describe the slot geometry in pixels.
type Zone struct {
	ID        uuid.UUID
	NetworkID int
	Name      string
	Width     int
	Height    int
	// ZoneType is the platform zone kind (e.g. "banner", "interstitial").
	// Empty means the platform default and is omitted from create payloads.
	ZoneType string
	SyncState
	CreatedAt time.Time
	UpdatedAt time.Time
}
