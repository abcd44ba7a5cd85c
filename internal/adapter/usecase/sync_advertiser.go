package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"adboard-sync/internal/core/domain"
	"adboard-sync/internal/core/port"
)

// syncAdvertiser reconciles one local advertiser with the platform:
// duplicate-check by name within the network, then link or create. On any
// remote failure the classified message is appended to the record's
// sync_errors and persisted; the synced flag is never set on failure.
func (s *SyncService) syncAdvertiser(ctx context.Context, a *domain.Advertiser) port.SyncResult {
	exists, err := s.platform.AdvertiserExists(ctx, a.NetworkID, a.Name)
	if err != nil {
		return s.failAdvertiser(ctx, a, err)
	}

	if exists {
		remote, err := s.platform.FindAdvertiserByName(ctx, a.NetworkID, a.Name)
		if err != nil {
			return s.failAdvertiser(ctx, a, err)
		}
		if remote == nil {
			// A same-named advertiser exists but could not be resolved
			// to a concrete id; treated as a hard duplicate.
			res := port.SyncResult{
				Error: fmt.Sprintf("advertiser %q already exists remotely but could not be resolved by name", a.Name),
				Code:  domain.CodeDuplicate,
			}
			a.RecordSyncError(res.Error)
			s.persistAdvertiser(ctx, a)
			return res
		}
		a.MarkSynced(remote.ID, s.now())
		if err := s.persistAdvertiser(ctx, a); err != nil {
			return port.SyncResult{Error: err.Error()}
		}
		return port.SyncResult{Success: true, Entity: remote, Code: domain.CodeLinkedDuplicate}
	}

	remote, err := s.platform.CreateAdvertiser(ctx, advertiserPayload(a))
	if err != nil {
		return s.failAdvertiser(ctx, a, err)
	}
	a.MarkSynced(remote.ID, s.now())
	if err := s.persistAdvertiser(ctx, a); err != nil {
		return port.SyncResult{Error: err.Error()}
	}
	return port.SyncResult{Success: true, Entity: remote}
}

func (s *SyncService) failAdvertiser(ctx context.Context, a *domain.Advertiser, err error) port.SyncResult {
	res := failure(err)
	a.RecordSyncError(res.Error)
	s.persistAdvertiser(ctx, a)
	return res
}

func (s *SyncService) persistAdvertiser(ctx context.Context, a *domain.Advertiser) error {
	if err := s.store.SaveAdvertiser(ctx, a); err != nil {
		s.logger.Error("save advertiser failed",
			slog.String("id", a.ID.String()), slog.Any("error", err))
		return fmt.Errorf("save advertiser %s: %w", a.ID, err)
	}
	return nil
}
