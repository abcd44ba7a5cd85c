package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"adboard-sync/internal/core/domain"
	"adboard-sync/internal/core/port"
)

// syncPlacement reconciles one standalone placement. Both the campaign and
// the zone reference must already carry a remote id; otherwise the result
// is a DEPENDENCY failure and no remote call is made. Placements have no
// name, so there is no duplicate check.
func (s *SyncService) syncPlacement(ctx context.Context, p *domain.Placement) port.SyncResult {
	campaignID, err := s.resolveCampaignRemoteID(ctx, p.RemoteCampaignID, p.LocalCampaignID)
	if err != nil {
		return s.failPlacement(ctx, p, err)
	}
	zoneID, err := s.resolveZoneRemoteID(ctx, p.RemoteZoneID, p.LocalZoneID)
	if err != nil {
		return s.failPlacement(ctx, p, err)
	}
	if campaignID == nil || zoneID == nil {
		missing := "campaign"
		if campaignID != nil {
			missing = "zone"
		}
		res := dependencyFailure(fmt.Sprintf("placement for advertisement %d: %s is not synced yet", p.AdvertisementID, missing))
		p.RecordSyncError(res.Error)
		s.persistPlacement(ctx, p)
		return res
	}

	remote, err := s.platform.CreatePlacement(ctx, placementPayload(p, *campaignID, *zoneID))
	if err != nil {
		return s.failPlacement(ctx, p, err)
	}
	p.MarkSynced(remote.ID, s.now())
	if err := s.persistPlacement(ctx, p); err != nil {
		return port.SyncResult{Error: err.Error()}
	}
	return port.SyncResult{Success: true, Entity: remote}
}

func (s *SyncService) failPlacement(ctx context.Context, p *domain.Placement, err error) port.SyncResult {
	res := failure(err)
	p.RecordSyncError(res.Error)
	s.persistPlacement(ctx, p)
	return res
}

func (s *SyncService) persistPlacement(ctx context.Context, p *domain.Placement) error {
	if err := s.store.SavePlacement(ctx, p); err != nil {
		s.logger.Error("save placement failed",
			slog.String("id", p.ID.String()), slog.Any("error", err))
		return fmt.Errorf("save placement %s: %w", p.ID, err)
	}
	return nil
}
