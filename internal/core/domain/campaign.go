package domain

import (
	"time"

	"github.com/google/uuid"
)

// Campaign represents an advertising campaign. Its advertiser reference is
// either a remote numeric id (the advertiser already exists on the platform)
// or the id of a local advertiser record; exactly one should be set.
type Campaign struct {
	ID        uuid.UUID
	NetworkID int
	Name      string

	RemoteAdvertiserID *int
	LocalAdvertiserID  *uuid.UUID

	// StartDate and EndDate carry a time-of-day component locally but are
	// transmitted date-only.
	StartDate *time.Time
	EndDate   *time.Time
	// Weight influences delivery priority. Zero means unset.
	Weight int
	// DisplayType is omitted from payloads when it equals the platform
	// default ("standard") or is empty.
	DisplayType string
	Active      bool

	// Placements still embedded in the campaign record, pending migration
	// to the standalone placement store.
	Placements []EmbeddedPlacement

	SyncState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmbeddedPlacement is the legacy in-campaign representation of a placement.
// The placements sync phase migrates these to standalone Placement records
// and prunes them once the standalone counterpart is synced.
type EmbeddedPlacement struct {
	AdvertisementID int        `json:"advertisement_id"`
	RemoteZoneID    *int       `json:"remote_zone_id,omitempty"`
	LocalZoneID     *uuid.UUID `json:"local_zone_id,omitempty"`
	Restrictions    []string   `json:"restrictions,omitempty"`
}
