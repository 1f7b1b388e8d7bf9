package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"worklog/internal/model"
)

type PhaseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPhaseRepository(db *pgxpool.Pool, logger *zap.Logger) *PhaseRepository {
	return &PhaseRepository{db: db, logger: logger}
}

const phaseColumns = "id, project_id, phase_name, description, status, phase_order, start_date, end_date, created_at"

func scanPhase(row pgx.Row, p *model.Phase, extra ...any) error {
	var start, end *time.Time
	dest := append([]any{
		&p.ID, &p.ProjectID, &p.PhaseName, &p.Description, &p.Status,
		&p.PhaseOrder, &start, &end, &p.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	p.StartDate = model.DateFromDB(start)
	p.EndDate = model.DateFromDB(end)
	return nil
}

// ListByProject returns the project's phases with work-log totals in phase_order.
func (r *PhaseRepository) ListByProject(ctx context.Context, projectID int64) ([]model.PhaseSummary, error) {
	query := `
        SELECT ph.id, ph.project_id, ph.phase_name, ph.description, ph.status, ph.phase_order,
               ph.start_date, ph.end_date, ph.created_at,
               COUNT(w.id) AS total_worklogs,
               COALESCE(SUM(w.hours_spent), 0)::float8 AS total_hours
        FROM phases ph
        LEFT JOIN work_logs w ON ph.id = w.phase_id
        WHERE ph.project_id = $1
        GROUP BY ph.id
        ORDER BY ph.phase_order
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	defer rows.Close()

	phases := make([]model.PhaseSummary, 0)
	for rows.Next() {
		var s model.PhaseSummary
		var hours float64
		if err := scanPhase(rows, &s.Phase, &s.TotalWorkLogs, &hours); err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		s.TotalHours = model.Hours(hours)
		phases = append(phases, s)
	}
	return phases, rows.Err()
}

// GetDetail returns the phase with its project name and totals.
func (r *PhaseRepository) GetDetail(ctx context.Context, id int64) (*model.PhaseDetail, error) {
	query := `
        SELECT ph.id, ph.project_id, ph.phase_name, ph.description, ph.status, ph.phase_order,
               ph.start_date, ph.end_date, ph.created_at,
               COUNT(w.id) AS total_worklogs,
               COALESCE(SUM(w.hours_spent), 0)::float8 AS total_hours,
               p.name AS project_name
        FROM phases ph
        LEFT JOIN projects p ON ph.project_id = p.id
        LEFT JOIN work_logs w ON ph.id = w.phase_id
        WHERE ph.id = $1
        GROUP BY ph.id, p.name
    `
	var d model.PhaseDetail
	var hours float64
	if err := scanPhase(r.db.QueryRow(ctx, query, id), &d.Phase, &d.TotalWorkLogs, &hours, &d.ProjectName); err != nil {
		return nil, dbError("get phase", err)
	}
	d.TotalHours = model.Hours(hours)
	return &d, nil
}

func (r *PhaseRepository) Get(ctx context.Context, id int64) (*model.Phase, error) {
	var p model.Phase
	if err := scanPhase(r.db.QueryRow(ctx, `SELECT `+phaseColumns+` FROM phases WHERE id = $1`, id), &p); err != nil {
		return nil, dbError("get phase", err)
	}
	return &p, nil
}

// OrderTaken reports whether another phase of the project already uses order.
// excludeID skips the phase being updated (0 for none).
func (r *PhaseRepository) OrderTaken(ctx context.Context, projectID int64, order int, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM phases WHERE project_id = $1 AND phase_order = $2 AND id <> $3
        )`, projectID, order, excludeID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check phase order: %w", err)
	}
	return taken, nil
}

// BelongsTo reports whether phaseID is a phase of projectID.
func (r *PhaseRepository) BelongsTo(ctx context.Context, phaseID, projectID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM phases WHERE id = $1 AND project_id = $2)`, phaseID, projectID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check phase project: %w", err)
	}
	return ok, nil
}

// CountWorkLogs 统计引用该阶段的工时记录数
func (r *PhaseRepository) CountWorkLogs(ctx context.Context, id int64) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM work_logs WHERE phase_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count phase work logs: %w", err)
	}
	return n, nil
}

func (r *PhaseRepository) Create(ctx context.Context, actorID int64, in model.CreatePhaseInput) (*model.Phase, error) {
	query := `
        INSERT INTO phases (project_id, phase_name, description, status, phase_order, start_date, end_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + phaseColumns

	var p model.Phase
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := scanPhase(tx.QueryRow(ctx, query,
			in.ProjectID,
			in.PhaseName,
			in.Description,
			in.Status,
			in.PhaseOrder,
			model.DateArg(in.StartDate),
			model.DateArg(in.EndDate),
		), &p)
		if err != nil {
			return phaseWriteError("insert phase", err)
		}
		return recordChange(ctx, tx, phaseEvent(&p, model.ActionCreated, actorID))
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Phase created",
		zap.Int64("phase_id", p.ID),
		zap.Int64("project_id", p.ProjectID),
		zap.Int("phase_order", p.PhaseOrder),
	)
	return &p, nil
}

// Update keeps the stored value for every nil member.
func (r *PhaseRepository) Update(ctx context.Context, id, actorID int64, in model.UpdatePhaseInput) (*model.Phase, error) {
	query := `
        UPDATE phases
        SET phase_name  = COALESCE($1, phase_name),
            description = COALESCE($2, description),
            status      = COALESCE($3, status),
            phase_order = COALESCE($4, phase_order),
            start_date  = COALESCE($5::date, start_date),
            end_date    = COALESCE($6::date, end_date)
        WHERE id = $7
        RETURNING ` + phaseColumns

	var p model.Phase
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := scanPhase(tx.QueryRow(ctx, query,
			in.PhaseName,
			in.Description,
			in.Status,
			in.PhaseOrder,
			model.DateArg(in.StartDate),
			model.DateArg(in.EndDate),
			id,
		), &p)
		if err != nil {
			return phaseWriteError("update phase", err)
		}
		return recordChange(ctx, tx, phaseEvent(&p, model.ActionUpdated, actorID))
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete fails with ErrPhaseInUse while work logs still reference the phase.
func (r *PhaseRepository) Delete(ctx context.Context, id, actorID int64) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var p model.Phase
		if err := scanPhase(tx.QueryRow(ctx, `DELETE FROM phases WHERE id = $1 RETURNING `+phaseColumns, id), &p); err != nil {
			return phaseWriteError("delete phase", err)
		}
		return recordChange(ctx, tx, phaseEvent(&p, model.ActionDeleted, actorID))
	})
}

// phaseWriteError maps constraint violations that lose a check-then-act race.
func phaseWriteError(op string, err error) error {
	switch code, constraint := pgErrorCode(err); {
	case code == pgUniqueViolation && constraint == phasesProjectOrderKey:
		return ErrDuplicatePhaseOrder
	case code == pgForeignKeyViolation && op == "delete phase":
		return ErrPhaseInUse
	}
	return dbError(op, err)
}

func phaseEvent(p *model.Phase, action string, actorID int64) model.ChangeEvent {
	return model.ChangeEvent{
		EntityType: model.EntityPhase,
		EntityID:   p.ID,
		Action:     action,
		ProjectID:  p.ProjectID,
		UserID:     actorID,
	}
}
