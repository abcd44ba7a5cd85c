package usecase

import (
	"context"
	"fmt"

	"adboard-sync/internal/core/domain"
	"adboard-sync/internal/core/port"
)

// DryRun inspects all unsynced entities of the network without performing
// any remote mutation and reports what a full run would reject. Name
// collisions are errors, not warnings: the dry run is conservative and
// treats any collision as blocking. No record is modified.
func (s *SyncService) DryRun(ctx context.Context, networkID int) (*port.DryRunReport, error) {
	report := &port.DryRunReport{
		Warnings:            []string{},
		Errors:              []string{},
		AdvertiserConflicts: []string{},
		ZoneConflicts:       []string{},
		CampaignConflicts:   []string{},
		MissingDependencies: []string{},
	}

	advertisers, err := s.store.UnsyncedAdvertisers(ctx, networkID)
	if err != nil {
		return nil, fmt.Errorf("load advertisers: %w", err)
	}
	for i := range advertisers {
		a := &advertisers[i]
		exists, err := s.platform.AdvertiserExists(ctx, networkID, a.Name)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("advertiser %q: existence check failed: %v", a.Name, err))
			continue
		}
		if exists {
			msg := fmt.Sprintf("advertiser %q already exists remotely", a.Name)
			report.AdvertiserConflicts = append(report.AdvertiserConflicts, msg)
			report.Errors = append(report.Errors, msg)
		}
	}

	zones, err := s.store.UnsyncedZones(ctx, networkID)
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}
	for i := range zones {
		z := &zones[i]
		exists, err := s.platform.ZoneExists(ctx, networkID, z.Name)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("zone %q: existence check failed: %v", z.Name, err))
			continue
		}
		if exists {
			msg := fmt.Sprintf("zone %q already exists remotely", z.Name)
			report.ZoneConflicts = append(report.ZoneConflicts, msg)
			report.Errors = append(report.Errors, msg)
		}
	}

	campaigns, err := s.store.UnsyncedCampaigns(ctx, networkID)
	if err != nil {
		return nil, fmt.Errorf("load campaigns: %w", err)
	}
	for i := range campaigns {
		c := &campaigns[i]
		if c.RemoteAdvertiserID == nil && c.LocalAdvertiserID == nil {
			msg := fmt.Sprintf("campaign %q has no advertiser reference", c.Name)
			report.MissingDependencies = append(report.MissingDependencies, msg)
			report.Errors = append(report.Errors, msg)
			continue
		}
		advertiserID, err := s.resolveAdvertiserRemoteID(ctx, c.RemoteAdvertiserID, c.LocalAdvertiserID)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("campaign %q: %v", c.Name, err))
			continue
		}
		if advertiserID == nil {
			msg := fmt.Sprintf("campaign %q references an advertiser that is not synced yet", c.Name)
			report.MissingDependencies = append(report.MissingDependencies, msg)
			report.Errors = append(report.Errors, msg)
		} else {
			exists, err := s.platform.CampaignExists(ctx, *advertiserID, c.Name)
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("campaign %q: existence check failed: %v", c.Name, err))
			} else if exists {
				msg := fmt.Sprintf("campaign %q already exists under advertiser %d", c.Name, *advertiserID)
				report.CampaignConflicts = append(report.CampaignConflicts, msg)
				report.Errors = append(report.Errors, msg)
			}
		}

		s.dryRunEmbeddedPlacements(ctx, c, report)
	}

	report.Valid = len(report.Errors) == 0
	return report, nil
}

// dryRunEmbeddedPlacements checks a campaign's embedded placements. An
// unknown advertisement is only a warning (advertisements are rarely
// user-created); an unsynced zone is an error because a placement cannot
// reference a zone without a remote id.
func (s *SyncService) dryRunEmbeddedPlacements(ctx context.Context, c *domain.Campaign, report *port.DryRunReport) {
	for _, ep := range c.Placements {
		known, err := s.store.AdvertisementExists(ctx, ep.AdvertisementID)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("campaign %q: advertisement %d lookup failed: %v", c.Name, ep.AdvertisementID, err))
		} else if !known {
			report.Warnings = append(report.Warnings, fmt.Sprintf("campaign %q references unknown advertisement %d", c.Name, ep.AdvertisementID))
		}

		zoneID, err := s.resolveZoneRemoteID(ctx, ep.RemoteZoneID, ep.LocalZoneID)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("campaign %q: placement zone lookup failed: %v", c.Name, err))
			continue
		}
		if zoneID == nil {
			msg := fmt.Sprintf("campaign %q has a placement referencing an unsynced zone", c.Name)
			report.MissingDependencies = append(report.MissingDependencies, msg)
			report.Errors = append(report.Errors, msg)
		}
	}
}
