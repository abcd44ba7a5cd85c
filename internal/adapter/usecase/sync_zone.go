package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"adboard-sync/internal/core/domain"
	"adboard-sync/internal/core/port"
)

// syncZone reconciles one local zone: duplicate-check by name within the
// network, then create. Zones have no find-by-name endpoint on the
// platform, so an existing same-named zone is a hard duplicate.
func (s *SyncService) syncZone(ctx context.Context, z *domain.Zone) port.SyncResult {
	exists, err := s.platform.ZoneExists(ctx, z.NetworkID, z.Name)
	if err != nil {
		return s.failZone(ctx, z, err)
	}
	if exists {
		res := port.SyncResult{
			Error: fmt.Sprintf("zone %q already exists remotely", z.Name),
			Code:  domain.CodeDuplicate,
		}
		z.RecordSyncError(res.Error)
		s.persistZone(ctx, z)
		return res
	}

	remote, err := s.platform.CreateZone(ctx, zonePayload(z))
	if err != nil {
		return s.failZone(ctx, z, err)
	}
	z.MarkSynced(remote.ID, s.now())
	if err := s.persistZone(ctx, z); err != nil {
		return port.SyncResult{Error: err.Error()}
	}
	return port.SyncResult{Success: true, Entity: remote}
}

func (s *SyncService) failZone(ctx context.Context, z *domain.Zone, err error) port.SyncResult {
	res := failure(err)
	z.RecordSyncError(res.Error)
	s.persistZone(ctx, z)
	return res
}

func (s *SyncService) persistZone(ctx context.Context, z *domain.Zone) error {
	if err := s.store.SaveZone(ctx, z); err != nil {
		s.logger.Error("save zone failed",
			slog.String("id", z.ID.String()), slog.Any("error", err))
		return fmt.Errorf("save zone %s: %w", z.ID, err)
	}
	return nil
}
