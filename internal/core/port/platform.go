package port

import (
	"context"
	"fmt"
)

// RemoteNetwork is the platform's view of an ad network.
type RemoteNetwork struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RemoteEntity is the platform's view of a created or found entity. Only
// the id and name are relevant to the engine.
type RemoteEntity struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AdvertiserPayload is the creation payload for an advertiser. Optional
// fields are omitted when empty so server-side defaults apply.
type AdvertiserPayload struct {
	NetworkID    int    `json:"network_id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// ZonePayload is the creation payload for a zone.
type ZonePayload struct {
	NetworkID int    `json:"network_id"`
	Name      string `json:"name"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	ZoneType  string `json:"zone_type,omitempty"`
}

// CampaignPayload is the creation payload for a campaign. Dates are
// date-only strings (YYYY-MM-DD). Weight, DisplayType and Active are
// pointers/omitted so platform defaults are not overridden unintentionally.
type CampaignPayload struct {
	AdvertiserID int    `json:"advertiser_id"`
	Name         string `json:"name"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	Weight       *int   `json:"weight,omitempty"`
	DisplayType  string `json:"display_type,omitempty"`
	Active       *bool  `json:"active,omitempty"`
}

// PlacementPayload is the creation payload for a placement. All references
// are remote ids; the engine resolves local references before building it.
type PlacementPayload struct {
	CampaignID      int      `json:"campaign_id"`
	ZoneID          int      `json:"zone_id"`
	AdvertisementID int      `json:"advertisement_id"`
	Restrictions    []string `json:"restrictions,omitempty"`
}

// PlatformClient is the remote ad-platform API. Implementations route every
// call through the rate-limited gateway, submitting existence checks and
// network reads at higher priority than creates. Failures surface as
// *PlatformError where a status or transport code is known.
type PlatformClient interface {
	GetNetwork(ctx context.Context, id int) (*RemoteNetwork, error)

	AdvertiserExists(ctx context.Context, networkID int, name string) (bool, error)
	FindAdvertiserByName(ctx context.Context, networkID int, name string) (*RemoteEntity, error)
	CreateAdvertiser(ctx context.Context, p AdvertiserPayload) (*RemoteEntity, error)

	ZoneExists(ctx context.Context, networkID int, name string) (bool, error)
	CreateZone(ctx context.Context, p ZonePayload) (*RemoteEntity, error)

	CampaignExists(ctx context.Context, advertiserID int, name string) (bool, error)
	FindCampaignByName(ctx context.Context, advertiserID int, name string) (*RemoteEntity, error)
	CreateCampaign(ctx context.Context, p CampaignPayload) (*RemoteEntity, error)

	CreatePlacement(ctx context.Context, p PlacementPayload) (*RemoteEntity, error)
}

// Transport codes carried by PlatformError when the failure happened below
// HTTP. The names follow the usual socket error mnemonics.
const (
	TransportRefused = "ECONNREFUSED"
	TransportTimeout = "ETIMEDOUT"
	TransportReset   = "ECONNRESET"
)

// PlatformError is a classifiable remote-call failure. Exactly one of
// StatusCode or TransportCode is normally set; both zero means the cause is
// unknown.
type PlatformError struct {
	StatusCode    int
	TransportCode string
	Message       string
}

func (e *PlatformError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("platform: status %d: %s", e.StatusCode, e.Message)
	case e.TransportCode != "":
		return fmt.Sprintf("platform: %s: %s", e.TransportCode, e.Message)
	default:
		return fmt.Sprintf("platform: %s", e.Message)
	}
}
