package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// resolveAdvertiserRemoteID resolves a campaign's advertiser reference to
// the remote id required by the platform. A remote id passes through
// unchanged; a local id resolves only if that advertiser is already synced.
// It never guesses: (nil, nil) means the dependency is not satisfiable yet
// and must propagate as a DEPENDENCY failure upstream.
func (s *SyncService) resolveAdvertiserRemoteID(ctx context.Context, remoteID *int, localID *uuid.UUID) (*int, error) {
	if remoteID != nil {
		return remoteID, nil
	}
	if localID == nil {
		return nil, nil
	}
	adv, err := s.store.GetAdvertiser(ctx, *localID)
	if err != nil {
		return nil, fmt.Errorf("look up advertiser %s: %w", localID, err)
	}
	if adv == nil || !adv.SyncedWithAPI {
		return nil, nil
	}
	return adv.OriginalRemoteID, nil
}

// resolveZoneRemoteID is the zone analogue, used by the placement
// synchronizer and the dry-run validator.
func (s *SyncService) resolveZoneRemoteID(ctx context.Context, remoteID *int, localID *uuid.UUID) (*int, error) {
	if remoteID != nil {
		return remoteID, nil
	}
	if localID == nil {
		return nil, nil
	}
	z, err := s.store.GetZone(ctx, *localID)
	if err != nil {
		return nil, fmt.Errorf("look up zone %s: %w", localID, err)
	}
	if z == nil || !z.SyncedWithAPI {
		return nil, nil
	}
	return z.OriginalRemoteID, nil
}

// resolveCampaignRemoteID is the campaign analogue for placements.
func (s *SyncService) resolveCampaignRemoteID(ctx context.Context, remoteID *int, localID *uuid.UUID) (*int, error) {
	if remoteID != nil {
		return remoteID, nil
	}
	if localID == nil {
		return nil, nil
	}
	c, err := s.store.GetCampaign(ctx, *localID)
	if err != nil {
		return nil, fmt.Errorf("look up campaign %s: %w", localID, err)
	}
	if c == nil || !c.SyncedWithAPI {
		return nil, nil
	}
	return c.OriginalRemoteID, nil
}
