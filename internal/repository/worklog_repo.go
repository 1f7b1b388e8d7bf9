package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"worklog/internal/model"
)

type WorkLogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewWorkLogRepository(db *pgxpool.Pool, logger *zap.Logger) *WorkLogRepository {
	return &WorkLogRepository{db: db, logger: logger}
}

// scanWorkLog scans workLogColumns followed by any extra destinations.
func scanWorkLog(row pgx.Row, w *model.WorkLog, extra ...any) error {
	var logDate time.Time
	dest := append([]any{
		&w.ID, &w.UserID, &w.ProjectID, &w.PhaseID, &logDate,
		&w.WorkDescription, &w.HoursSpent, &w.Notes, &w.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	w.LogDate = model.NewDate(logDate)
	return nil
}

// List returns the joined listing; author columns are included when withUser is set.
func (r *WorkLogRepository) List(ctx context.Context, f model.WorkLogFilter, withUser bool) ([]model.WorkLogView, error) {
	sql, args, err := buildWorkLogList(f, withUser).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build work log list: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list work logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.WorkLogView, 0)
	for rows.Next() {
		var v model.WorkLogView
		extra := []any{&v.ProjectName, &v.PhaseName}
		if withUser {
			extra = []any{&v.UserName, &v.UserEmail, &v.ProjectName, &v.PhaseName}
		}
		if err := scanWorkLog(rows, &v.WorkLog, extra...); err != nil {
			return nil, fmt.Errorf("scan work log: %w", err)
		}
		logs = append(logs, v)
	}
	return logs, rows.Err()
}

// GetView returns one work log with its joined names.
func (r *WorkLogRepository) GetView(ctx context.Context, id int64) (*model.WorkLogView, error) {
	sql, args, err := buildWorkLogByID(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build work log query: %w", err)
	}

	var v model.WorkLogView
	err = scanWorkLog(r.db.QueryRow(ctx, sql, args...), &v.WorkLog,
		&v.UserName, &v.UserEmail, &v.ProjectName, &v.PhaseName)
	if err != nil {
		return nil, dbError("get work log", err)
	}
	return &v, nil
}

// Get returns the bare row (used for ownership checks).
func (r *WorkLogRepository) Get(ctx context.Context, id int64) (*model.WorkLog, error) {
	query := `SELECT ` + strings.Join(unqualified(workLogColumns), ", ") + ` FROM work_logs WHERE id = $1`

	var w model.WorkLog
	if err := scanWorkLog(r.db.QueryRow(ctx, query, id), &w); err != nil {
		return nil, dbError("get work log", err)
	}
	return &w, nil
}

// Create inserts the log for userID and records worklog.created in the same transaction.
func (r *WorkLogRepository) Create(ctx context.Context, userID int64, in model.CreateWorkLogInput) (*model.WorkLog, error) {
	logDate := model.Today()
	if in.LogDate != nil {
		logDate = *in.LogDate
	}

	query := `
        INSERT INTO work_logs (user_id, project_id, phase_id, log_date, work_description, hours_spent, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + strings.Join(unqualified(workLogColumns), ", ")

	var w model.WorkLog
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := scanWorkLog(tx.QueryRow(ctx, query,
			userID,
			in.ProjectID,
			in.PhaseID,
			logDate.String(),
			strings.TrimSpace(in.WorkDescription),
			in.HoursSpent,
			trimmedOrNil(in.Notes),
		), &w)
		if err != nil {
			return fmt.Errorf("insert work log: %w", err)
		}
		return recordChange(ctx, tx, workLogEvent(&w, model.ActionCreated, userID))
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Work log created",
		zap.Int64("worklog_id", w.ID),
		zap.Int64("user_id", userID),
		zap.Int64("project_id", w.ProjectID),
	)
	return &w, nil
}

// Update applies the present members of in. Returns ErrNotFound if the row vanished.
func (r *WorkLogRepository) Update(ctx context.Context, id, actorID int64, in model.UpdateWorkLogInput) (*model.WorkLog, error) {
	q, ok := buildWorkLogUpdate(id, in)
	if !ok {
		return nil, fmt.Errorf("update work log %d: no fields", id)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build work log update: %w", err)
	}

	var w model.WorkLog
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := scanWorkLog(tx.QueryRow(ctx, sql, args...), &w); err != nil {
			return dbError("update work log", err)
		}
		return recordChange(ctx, tx, workLogEvent(&w, model.ActionUpdated, actorID))
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Delete removes the log and records worklog.deleted.
func (r *WorkLogRepository) Delete(ctx context.Context, id, actorID int64) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var w model.WorkLog
		err := scanWorkLog(tx.QueryRow(ctx,
			`DELETE FROM work_logs WHERE id = $1 RETURNING `+strings.Join(unqualified(workLogColumns), ", "), id), &w)
		if err != nil {
			return dbError("delete work log", err)
		}
		return recordChange(ctx, tx, workLogEvent(&w, model.ActionDeleted, actorID))
	})
}

// Stats aggregates userID's logs in the range.
func (r *WorkLogRepository) Stats(ctx context.Context, userID int64, rng model.DateRange) (*model.StatsReport, error) {
	sql, args, err := buildStatsTotals(userID, rng).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats query: %w", err)
	}

	report := &model.StatsReport{ProjectBreakdown: make([]model.ProjectHours, 0)}
	var total float64
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&report.Stats.TotalLogs,
		&total,
		&report.Stats.ProjectsWorkedOn,
		&report.Stats.DaysLogged,
	)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	report.Stats.TotalHours = model.Hours(total)

	sql, args, err = buildProjectBreakdown(userID, rng).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build breakdown query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query project breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.ProjectHours
		var hours float64
		if err := rows.Scan(&p.ID, &p.ProjectName, &p.LogCount, &hours); err != nil {
			return nil, fmt.Errorf("scan project breakdown: %w", err)
		}
		p.TotalHours = model.Hours(hours)
		report.ProjectBreakdown = append(report.ProjectBreakdown, p)
	}
	return report, rows.Err()
}

func workLogEvent(w *model.WorkLog, action string, actorID int64) model.ChangeEvent {
	return model.ChangeEvent{
		EntityType: model.EntityWorkLog,
		EntityID:   w.ID,
		Action:     action,
		ProjectID:  w.ProjectID,
		UserID:     actorID,
	}
}
