package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"adboard-sync/internal/core/domain"
)

// SyncLogRepository persists the hierarchical audit record of sync runs.
// It implements port.AuditReporter and port.SyncLogReader.
type SyncLogRepository struct {
	pool *pgxpool.Pool
}

// NewSyncLogRepository returns a new repository instance.
func NewSyncLogRepository(pool *pgxpool.Pool) *SyncLogRepository {
	return &SyncLogRepository{pool: pool}
}

func (r *SyncLogRepository) CreateSyncLog(ctx context.Context, networkID int, syncType string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `INSERT INTO sync_logs
		(id, network_id, type, status, progress, error, start_time)
		VALUES ($1,$2,$3,$4,0,'',now())`,
		id, networkID, syncType, domain.StatusRunning)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *SyncLogRepository) StartPhase(ctx context.Context, logID uuid.UUID, phase domain.Phase, total int) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO sync_phases
		(log_id, name, status, total, error, start_time)
		VALUES ($1,$2,$3,$4,'',now())
		ON CONFLICT (log_id, name) DO UPDATE SET
			status = EXCLUDED.status,
			total = EXCLUDED.total,
			start_time = EXCLUDED.start_time`,
		logID, phase, domain.StatusRunning, total)
	return err
}

func (r *SyncLogRepository) LogOperation(ctx context.Context, logID uuid.UUID, phase domain.Phase, op domain.SyncOperation) error {
	ts := op.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO sync_operations
		(log_id, phase, entity_type, entity_id, entity_name, action, status,
		 error_code, error_message, retry_count, remote_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		logID, phase, op.EntityType, op.EntityID, op.EntityName, op.Action, op.Status,
		op.ErrorCode, op.ErrorMessage, op.RetryCount, op.RemoteID, ts)
	return err
}

func (r *SyncLogRepository) CompletePhase(ctx context.Context, logID uuid.UUID, phase domain.Phase, status, errorSummary string) error {
	_, err := r.pool.Exec(ctx, `UPDATE sync_phases
		SET status = $3, error = $4, end_time = now()
		WHERE log_id = $1 AND name = $2`,
		logID, phase, status, errorSummary)
	return err
}

func (r *SyncLogRepository) CompleteSyncLog(ctx context.Context, logID uuid.UUID, status, errorSummary string) error {
	_, err := r.pool.Exec(ctx, `UPDATE sync_logs
		SET status = $2, error = $3, progress = 100, end_time = now()
		WHERE id = $1`,
		logID, status, errorSummary)
	return err
}

func (r *SyncLogRepository) UpdateProgress(ctx context.Context, logID uuid.UUID, pct int) error {
	_, err := r.pool.Exec(ctx, `UPDATE sync_logs SET progress = $2 WHERE id = $1`, logID, pct)
	return err
}

// GetSyncLog returns the full hierarchical record of a run, or nil when
// the id is unknown.
func (r *SyncLogRepository) GetSyncLog(ctx context.Context, logID uuid.UUID) (*domain.SyncLog, error) {
	var log domain.SyncLog
	err := r.pool.QueryRow(ctx, `SELECT id, network_id, type, status, progress, error, start_time, end_time
		FROM sync_logs WHERE id = $1`, logID).Scan(
		&log.ID, &log.NetworkID, &log.Type, &log.Status, &log.Progress,
		&log.Error, &log.StartTime, &log.EndTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	phaseRows, err := r.pool.Query(ctx, `SELECT name, status, total, error, start_time, end_time
		FROM sync_phases WHERE log_id = $1 ORDER BY start_time`, logID)
	if err != nil {
		return nil, err
	}
	log.Phases, err = pgx.CollectRows(phaseRows, func(row pgx.CollectableRow) (domain.SyncPhase, error) {
		var p domain.SyncPhase
		err := row.Scan(&p.Name, &p.Status, &p.Total, &p.Error, &p.StartTime, &p.EndTime)
		return p, err
	})
	if err != nil {
		return nil, err
	}

	opRows, err := r.pool.Query(ctx, `SELECT phase, entity_type, entity_id, entity_name, action,
		status, error_code, error_message, retry_count, remote_id, created_at
		FROM sync_operations WHERE log_id = $1 ORDER BY created_at, id`, logID)
	if err != nil {
		return nil, err
	}
	type phasedOp struct {
		phase domain.Phase
		op    domain.SyncOperation
	}
	ops, err := pgx.CollectRows(opRows, func(row pgx.CollectableRow) (phasedOp, error) {
		var po phasedOp
		err := row.Scan(&po.phase, &po.op.EntityType, &po.op.EntityID, &po.op.EntityName,
			&po.op.Action, &po.op.Status, &po.op.ErrorCode, &po.op.ErrorMessage,
			&po.op.RetryCount, &po.op.RemoteID, &po.op.Timestamp)
		return po, err
	})
	if err != nil {
		return nil, err
	}
	for _, po := range ops {
		for i := range log.Phases {
			if log.Phases[i].Name == po.phase {
				log.Phases[i].Operations = append(log.Phases[i].Operations, po.op)
				break
			}
		}
	}
	return &log, nil
}

// ListSyncLogs returns recent runs of a network, newest first, without
// their phase and operation details.
func (r *SyncLogRepository) ListSyncLogs(ctx context.Context, networkID int, limit int) ([]domain.SyncLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `SELECT id, network_id, type, status, progress, error, start_time, end_time
		FROM sync_logs WHERE network_id = $1 ORDER BY start_time DESC LIMIT $2`, networkID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SyncLog, error) {
		var l domain.SyncLog
		err := row.Scan(&l.ID, &l.NetworkID, &l.Type, &l.Status, &l.Progress,
			&l.Error, &l.StartTime, &l.EndTime)
		return l, err
	})
}
