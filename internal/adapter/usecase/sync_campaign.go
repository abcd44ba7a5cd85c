package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"adboard-sync/internal/core/domain"
	"adboard-sync/internal/core/port"
)

// syncCampaign reconciles one local campaign. The advertiser reference must
// resolve to a remote id before any remote call; an unresolved reference is
// a DEPENDENCY failure with no call attempted. Duplicate checks are scoped
// to the resolved advertiser.
func (s *SyncService) syncCampaign(ctx context.Context, c *domain.Campaign) port.SyncResult {
	advertiserID, err := s.resolveAdvertiserRemoteID(ctx, c.RemoteAdvertiserID, c.LocalAdvertiserID)
	if err != nil {
		return s.failCampaign(ctx, c, err)
	}
	if advertiserID == nil {
		res := dependencyFailure(fmt.Sprintf("campaign %q: advertiser is not synced yet", c.Name))
		c.RecordSyncError(res.Error)
		s.persistCampaign(ctx, c)
		return res
	}

	exists, err := s.platform.CampaignExists(ctx, *advertiserID, c.Name)
	if err != nil {
		return s.failCampaign(ctx, c, err)
	}

	if exists {
		remote, err := s.platform.FindCampaignByName(ctx, *advertiserID, c.Name)
		if err != nil {
			return s.failCampaign(ctx, c, err)
		}
		if remote == nil {
			res := port.SyncResult{
				Error: fmt.Sprintf("campaign %q already exists remotely but could not be resolved by name", c.Name),
				Code:  domain.CodeDuplicate,
			}
			c.RecordSyncError(res.Error)
			s.persistCampaign(ctx, c)
			return res
		}
		c.MarkSynced(remote.ID, s.now())
		if err := s.persistCampaign(ctx, c); err != nil {
			return port.SyncResult{Error: err.Error()}
		}
		return port.SyncResult{Success: true, Entity: remote, Code: domain.CodeLinkedDuplicate}
	}

	remote, err := s.platform.CreateCampaign(ctx, campaignPayload(c, *advertiserID))
	if err != nil {
		return s.failCampaign(ctx, c, err)
	}
	c.MarkSynced(remote.ID, s.now())
	if err := s.persistCampaign(ctx, c); err != nil {
		return port.SyncResult{Error: err.Error()}
	}
	return port.SyncResult{Success: true, Entity: remote}
}

func (s *SyncService) failCampaign(ctx context.Context, c *domain.Campaign, err error) port.SyncResult {
	res := failure(err)
	c.RecordSyncError(res.Error)
	s.persistCampaign(ctx, c)
	return res
}

func (s *SyncService) persistCampaign(ctx context.Context, c *domain.Campaign) error {
	if err := s.store.SaveCampaign(ctx, c); err != nil {
		s.logger.Error("save campaign failed",
			slog.String("id", c.ID.String()), slog.Any("error", err))
		return fmt.Errorf("save campaign %s: %w", c.ID, err)
	}
	return nil
}
