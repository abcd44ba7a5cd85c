package usecase

import (
	"time"

	"adboard-sync/internal/core/domain"
	"adboard-sync/internal/core/port"
)

// Platform-side defaults. Fields equal to these are omitted from create
// payloads so server-side defaults are not overridden unintentionally.
const (
	defaultDisplayType    = "standard"
	defaultCampaignWeight = 1
)

func advertiserPayload(a *domain.Advertiser) port.AdvertiserPayload {
	return port.AdvertiserPayload{
		NetworkID:    a.NetworkID,
		Name:         a.Name,
		ContactEmail: a.ContactEmail,
	}
}

func zonePayload(z *domain.Zone) port.ZonePayload {
	p := port.ZonePayload{
		NetworkID: z.NetworkID,
		Name:      z.Name,
		Width:     z.Width,
		Height:    z.Height,
	}
	if z.ZoneType != "" {
		p.ZoneType = z.ZoneType
	}
	return p
}

func campaignPayload(c *domain.Campaign, advertiserID int) port.CampaignPayload {
	p := port.CampaignPayload{
		AdvertiserID: advertiserID,
		Name:         c.Name,
	}
	if c.StartDate != nil {
		p.StartDate = dateOnly(*c.StartDate)
	}
	if c.EndDate != nil {
		p.EndDate = dateOnly(*c.EndDate)
	}
	if c.Weight != 0 && c.Weight != defaultCampaignWeight {
		w := c.Weight
		p.Weight = &w
	}
	if c.DisplayType != "" && c.DisplayType != defaultDisplayType {
		p.DisplayType = c.DisplayType
	}
	// Campaigns are active by default on the platform; only an explicit
	// pause needs transmitting.
	if !c.Active {
		f := false
		p.Active = &f
	}
	return p
}

func placementPayload(p *domain.Placement, campaignID, zoneID int) port.PlacementPayload {
	return port.PlacementPayload{
		CampaignID:      campaignID,
		ZoneID:          zoneID,
		AdvertisementID: p.AdvertisementID,
		Restrictions:    p.Restrictions,
	}
}

// dateOnly strips the time-of-day component before transmission.
func dateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}
