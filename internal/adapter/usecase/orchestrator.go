package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"adboard-sync/internal/core/domain"
	"adboard-sync/internal/core/port"
)

// phaseWork is one entity attempt within a phase: an identifier pair for
// audit records plus the synchronizer closure to run under retry.
type phaseWork struct {
	entityType string
	id         string
	name       string
	run        func(context.Context) port.SyncResult
}

// SyncAll runs the ordered phases validation → advertisers → zones →
// campaigns → placements → cleanup. A later phase never starts while an
// earlier one is still looping: dependency resolution assumes earlier
// phases are fully applied. Per-entity failures never abort a phase; only
// a validation failure aborts the run. Entities within a phase are
// processed strictly sequentially because duplicate-check-then-create is
// not atomic remotely.
func (s *SyncService) SyncAll(ctx context.Context, networkID int) (*port.SyncReport, error) {
	report := &port.SyncReport{
		NetworkID: networkID,
		StartTime: s.now(),
		Results:   []port.SyncResult{},
		Errors:    []string{},
	}

	advertisers, err := s.store.UnsyncedAdvertisers(ctx, networkID)
	if err != nil {
		return nil, fmt.Errorf("load advertisers: %w", err)
	}
	zones, err := s.store.UnsyncedZones(ctx, networkID)
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}
	campaigns, err := s.store.UnsyncedCampaigns(ctx, networkID)
	if err != nil {
		return nil, fmt.Errorf("load campaigns: %w", err)
	}
	// Placements are counted after the migration step inside their phase.
	report.TotalEntities = len(advertisers) + len(zones) + len(campaigns)

	logID, err := s.audit.CreateSyncLog(ctx, networkID, "full")
	if err != nil {
		// Audit is a side effect, not a dependency; the run proceeds.
		s.logger.Warn("create sync log failed", slog.Any("error", err))
	}
	report.LogID = logID
	s.progress.StartSync(logID, networkID, report.TotalEntities)

	if fatal := s.validateNetwork(ctx, logID, networkID, report); fatal {
		s.finishRun(ctx, logID, report, true)
		return report, nil
	}

	s.runPhase(ctx, logID, report, domain.PhaseAdvertisers, advertiserWork(s, advertisers))
	s.runPhase(ctx, logID, report, domain.PhaseZones, zoneWork(s, zones))
	s.runPhase(ctx, logID, report, domain.PhaseCampaigns, campaignWork(s, campaigns))
	s.runPlacementsPhase(ctx, logID, networkID, report)
	s.runCleanupPhase(ctx, logID, networkID, report)

	s.finishRun(ctx, logID, report, false)
	return report, nil
}

// validateNetwork is the run-fatal pre-flight: one high-priority remote
// call confirming the network is reachable and the credentials work.
func (s *SyncService) validateNetwork(ctx context.Context, logID uuid.UUID, networkID int, report *port.SyncReport) (fatal bool) {
	s.auditStartPhase(ctx, logID, domain.PhaseValidation, 1)
	if _, err := s.platform.GetNetwork(ctx, networkID); err != nil {
		_, msg := classifyError(err)
		msg = fmt.Sprintf("network %d validation failed: %s", networkID, msg)
		report.Errors = append(report.Errors, msg)
		s.auditCompletePhase(ctx, logID, domain.PhaseValidation, domain.StatusError, msg)
		s.logger.Error("sync aborted", slog.Int("network_id", networkID), slog.String("error", msg))
		return true
	}
	s.auditCompletePhase(ctx, logID, domain.PhaseValidation, domain.StatusSuccess, "")
	return false
}

// runPhase processes one ordered batch of entities, forwarding every
// outcome to the audit and progress reporters and accumulating the report.
func (s *SyncService) runPhase(ctx context.Context, logID uuid.UUID, report *port.SyncReport, phase domain.Phase, work []phaseWork) {
	s.auditStartPhase(ctx, logID, phase, len(work))

	failures := 0
	for i, w := range work {
		s.progress.UpdatePhaseProgress(logID, phase, i, len(work), w.name, "syncing")

		res := s.executeWithRetry(ctx, w.entityType+" "+w.name, w.run)
		report.Results = append(report.Results, res)
		if res.Success {
			report.SuccessfulSyncs++
		} else {
			report.FailedSyncs++
			failures++
			report.Errors = append(report.Errors, fmt.Sprintf("%s %q: %s", w.entityType, w.name, res.Error))
		}

		s.auditLogOperation(ctx, logID, phase, operationFor(w, res, s))
		s.progress.UpdateEntityCounts(logID, report.SuccessfulSyncs+report.FailedSyncs, report.SuccessfulSyncs, report.FailedSyncs)
	}
	s.progress.UpdatePhaseProgress(logID, phase, len(work), len(work), "", "done")

	status := domain.StatusSuccess
	summary := ""
	if failures > 0 {
		status = domain.StatusError
		summary = fmt.Sprintf("%d of %d failed", failures, len(work))
	}
	s.auditCompletePhase(ctx, logID, phase, status, summary)
	s.auditUpdateProgress(ctx, logID, report)
}

// runPlacementsPhase migrates legacy embedded placements to the standalone
// store, syncs every unsynced standalone placement, then prunes embedded
// copies that have a synced standalone counterpart.
func (s *SyncService) runPlacementsPhase(ctx context.Context, logID uuid.UUID, networkID int, report *port.SyncReport) {
	if err := s.migrateEmbeddedPlacements(ctx, networkID); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("placement migration: %v", err))
		s.logger.Error("placement migration failed", slog.Any("error", err))
	}

	placements, err := s.store.UnsyncedPlacements(ctx, networkID)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("load placements: %v", err))
		s.auditStartPhase(ctx, logID, domain.PhasePlacements, 0)
		s.auditCompletePhase(ctx, logID, domain.PhasePlacements, domain.StatusError, err.Error())
		return
	}
	report.TotalEntities += len(placements)

	s.runPhase(ctx, logID, report, domain.PhasePlacements, placementWork(s, placements))

	if err := s.pruneMigratedPlacements(ctx, networkID); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("placement cleanup: %v", err))
		s.logger.Error("embedded placement pruning failed", slog.Any("error", err))
	}
}

// runCleanupPhase is best-effort housekeeping: its failures are recorded in
// the report but never flip the run to failure.
func (s *SyncService) runCleanupPhase(ctx context.Context, logID uuid.UUID, networkID int, report *port.SyncReport) {
	s.auditStartPhase(ctx, logID, domain.PhaseCleanup, 0)

	var errs []string
	if n, err := s.store.ClearStaleSyncErrors(ctx, networkID); err != nil {
		errs = append(errs, fmt.Sprintf("clear stale sync errors: %v", err))
	} else if n > 0 {
		s.logger.Info("cleared stale sync errors", slog.Int64("records", n))
	}
	if n, err := s.store.BackfillSyncedAt(ctx, networkID, s.now()); err != nil {
		errs = append(errs, fmt.Sprintf("backfill synced_at: %v", err))
	} else if n > 0 {
		s.logger.Info("backfilled synced_at", slog.Int64("records", n))
	}

	if len(errs) > 0 {
		report.Errors = append(report.Errors, errs...)
		s.auditCompletePhase(ctx, logID, domain.PhaseCleanup, domain.StatusError, strings.Join(errs, "; "))
		return
	}
	s.auditCompletePhase(ctx, logID, domain.PhaseCleanup, domain.StatusSuccess, "")
}

// migrateEmbeddedPlacements copies embedded placements that have no
// standalone counterpart into the standalone store as unsynced records.
func (s *SyncService) migrateEmbeddedPlacements(ctx context.Context, networkID int) error {
	campaigns, err := s.store.CampaignsWithEmbeddedPlacements(ctx, networkID)
	if err != nil {
		return fmt.Errorf("load campaigns with embedded placements: %w", err)
	}
	if len(campaigns) == 0 {
		return nil
	}
	existing, err := s.store.PlacementsByNetwork(ctx, networkID)
	if err != nil {
		return fmt.Errorf("load placements: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for i := range existing {
		seen[placementKey(&existing[i])] = true
	}

	for i := range campaigns {
		c := &campaigns[i]
		for _, ep := range c.Placements {
			sp := domain.NewPlacementFromEmbedded(c, ep, s.now())
			key := placementKey(&sp)
			if seen[key] {
				continue
			}
			if err := s.store.SavePlacement(ctx, &sp); err != nil {
				return fmt.Errorf("migrate placement of campaign %s: %w", c.ID, err)
			}
			seen[key] = true
		}
	}
	return nil
}

// pruneMigratedPlacements removes embedded placements whose standalone
// counterpart is now synced, persisting the slimmed campaign records.
func (s *SyncService) pruneMigratedPlacements(ctx context.Context, networkID int) error {
	campaigns, err := s.store.CampaignsWithEmbeddedPlacements(ctx, networkID)
	if err != nil {
		return fmt.Errorf("load campaigns with embedded placements: %w", err)
	}
	if len(campaigns) == 0 {
		return nil
	}
	placements, err := s.store.PlacementsByNetwork(ctx, networkID)
	if err != nil {
		return fmt.Errorf("load placements: %w", err)
	}
	synced := make(map[string]bool, len(placements))
	for i := range placements {
		if placements[i].SyncedWithAPI {
			synced[placementKey(&placements[i])] = true
		}
	}

	for i := range campaigns {
		c := &campaigns[i]
		kept := c.Placements[:0:0]
		for _, ep := range c.Placements {
			sp := domain.NewPlacementFromEmbedded(c, ep, s.now())
			if !synced[placementKey(&sp)] {
				kept = append(kept, ep)
			}
		}
		if len(kept) == len(c.Placements) {
			continue
		}
		c.Placements = kept
		if err := s.store.SaveCampaign(ctx, c); err != nil {
			return fmt.Errorf("prune placements of campaign %s: %w", c.ID, err)
		}
	}
	return nil
}

// placementKey identifies a placement by its campaign and zone references
// plus the advertisement, for matching embedded against standalone forms.
func placementKey(p *domain.Placement) string {
	campaign := "-"
	switch {
	case p.RemoteCampaignID != nil:
		campaign = fmt.Sprintf("r%d", *p.RemoteCampaignID)
	case p.LocalCampaignID != nil:
		campaign = "l" + p.LocalCampaignID.String()
	}
	zone := "-"
	switch {
	case p.RemoteZoneID != nil:
		zone = fmt.Sprintf("r%d", *p.RemoteZoneID)
	case p.LocalZoneID != nil:
		zone = "l" + p.LocalZoneID.String()
	}
	return fmt.Sprintf("%s|%d|%s", campaign, p.AdvertisementID, zone)
}

// finishRun stamps times, derives overall success and closes out the audit
// log and live progress.
func (s *SyncService) finishRun(ctx context.Context, logID uuid.UUID, report *port.SyncReport, aborted bool) {
	report.EndTime = s.now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	// Cleanup and migration errors land in report.Errors but only
	// per-entity failures (or a fatal abort) make the run unsuccessful.
	report.Success = report.FailedSyncs == 0 && !aborted

	status := domain.StatusCompleted
	msg := fmt.Sprintf("synced %d of %d entities", report.SuccessfulSyncs, report.TotalEntities)
	switch {
	case aborted:
		status = domain.StatusFailed
		msg = "run aborted during validation"
	case report.FailedSyncs > 0:
		status = domain.StatusPartial
	}
	summary := strings.Join(report.Errors, "; ")

	if err := s.audit.CompleteSyncLog(ctx, logID, status, summary); err != nil {
		s.logger.Warn("complete sync log failed", slog.Any("error", err))
	}
	s.progress.CompleteSync(logID, report.Success, msg)
	s.logger.Info("sync run finished",
		slog.Int("network_id", report.NetworkID),
		slog.Int("total", report.TotalEntities),
		slog.Int("succeeded", report.SuccessfulSyncs),
		slog.Int("failed", report.FailedSyncs),
		slog.Bool("success", report.Success))
}

// operationFor builds the audit record for one attempt.
func operationFor(w phaseWork, res port.SyncResult, s *SyncService) domain.SyncOperation {
	op := domain.SyncOperation{
		EntityType:   w.entityType,
		EntityID:     w.id,
		EntityName:   w.name,
		Action:       "create",
		Status:       domain.StatusSuccess,
		ErrorCode:    res.Code,
		ErrorMessage: res.Error,
		RetryCount:   res.RetryCount,
		Timestamp:    s.now(),
	}
	if res.Code == domain.CodeLinkedDuplicate {
		op.Action = "link"
	}
	if !res.Success {
		op.Status = domain.StatusError
	}
	if res.Entity != nil {
		id := res.Entity.ID
		op.RemoteID = &id
	}
	return op
}

func advertiserWork(s *SyncService, advertisers []domain.Advertiser) []phaseWork {
	work := make([]phaseWork, len(advertisers))
	for i := range advertisers {
		a := &advertisers[i]
		work[i] = phaseWork{
			entityType: "advertiser",
			id:         a.ID.String(),
			name:       a.Name,
			run:        func(ctx context.Context) port.SyncResult { return s.syncAdvertiser(ctx, a) },
		}
	}
	return work
}

func zoneWork(s *SyncService, zones []domain.Zone) []phaseWork {
	work := make([]phaseWork, len(zones))
	for i := range zones {
		z := &zones[i]
		work[i] = phaseWork{
			entityType: "zone",
			id:         z.ID.String(),
			name:       z.Name,
			run:        func(ctx context.Context) port.SyncResult { return s.syncZone(ctx, z) },
		}
	}
	return work
}

func campaignWork(s *SyncService, campaigns []domain.Campaign) []phaseWork {
	work := make([]phaseWork, len(campaigns))
	for i := range campaigns {
		c := &campaigns[i]
		work[i] = phaseWork{
			entityType: "campaign",
			id:         c.ID.String(),
			name:       c.Name,
			run:        func(ctx context.Context) port.SyncResult { return s.syncCampaign(ctx, c) },
		}
	}
	return work
}

func placementWork(s *SyncService, placements []domain.Placement) []phaseWork {
	work := make([]phaseWork, len(placements))
	for i := range placements {
		p := &placements[i]
		work[i] = phaseWork{
			entityType: "placement",
			id:         p.ID.String(),
			name:       fmt.Sprintf("advertisement %d", p.AdvertisementID),
			run:        func(ctx context.Context) port.SyncResult { return s.syncPlacement(ctx, p) },
		}
	}
	return work
}

// Audit helpers: reporter failures are logged and otherwise ignored so a
// broken audit store cannot abort a run.

func (s *SyncService) auditStartPhase(ctx context.Context, logID uuid.UUID, phase domain.Phase, total int) {
	if err := s.audit.StartPhase(ctx, logID, phase, total); err != nil {
		s.logger.Warn("start phase audit failed", slog.String("phase", string(phase)), slog.Any("error", err))
	}
}

func (s *SyncService) auditCompletePhase(ctx context.Context, logID uuid.UUID, phase domain.Phase, status, summary string) {
	if err := s.audit.CompletePhase(ctx, logID, phase, status, summary); err != nil {
		s.logger.Warn("complete phase audit failed", slog.String("phase", string(phase)), slog.Any("error", err))
	}
}

func (s *SyncService) auditLogOperation(ctx context.Context, logID uuid.UUID, phase domain.Phase, op domain.SyncOperation) {
	if err := s.audit.LogOperation(ctx, logID, phase, op); err != nil {
		s.logger.Warn("log operation audit failed", slog.String("phase", string(phase)), slog.Any("error", err))
	}
}

func (s *SyncService) auditUpdateProgress(ctx context.Context, logID uuid.UUID, report *port.SyncReport) {
	if report.TotalEntities == 0 {
		return
	}
	pct := (report.SuccessfulSyncs + report.FailedSyncs) * 100 / report.TotalEntities
	if pct > 100 {
		pct = 100
	}
	if err := s.audit.UpdateProgress(ctx, logID, pct); err != nil {
		s.logger.Warn("update progress audit failed", slog.Any("error", err))
	}
}
