package domain

import (
	"time"

	"github.com/google/uuid"
)

// Placement associates one advertisement with one zone under one campaign.
// Zone and campaign references follow the same remote-or-local convention as
// Campaign's advertiser reference. This is the standalone representation;
// see EmbeddedPlacement for the legacy in-campaign form.
type Placement struct {
	ID              uuid.UUID
	NetworkID       int
	AdvertisementID int

	RemoteZoneID *int
	LocalZoneID  *uuid.UUID

	RemoteCampaignID *int
	LocalCampaignID  *uuid.UUID

	Restrictions []string

	SyncState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPlacementFromEmbedded builds a standalone placement from the legacy
// embedded form, owned by the given campaign.
func NewPlacementFromEmbedded(c *Campaign, ep EmbeddedPlacement, now time.Time) Placement {
	cid := c.ID
	return Placement{
		ID:              uuid.New(),
		NetworkID:       c.NetworkID,
		AdvertisementID: ep.AdvertisementID,
		RemoteZoneID:    ep.RemoteZoneID,
		LocalZoneID:     ep.LocalZoneID,
		LocalCampaignID: &cid,
		Restrictions:    ep.Restrictions,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
