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

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

const projectColumns = "id, name, description, user_id, project_manager_id, status, start_date, end_date, created_at"

func scanProject(row pgx.Row, p *model.Project, extra ...any) error {
	var start, end *time.Time
	dest := append([]any{
		&p.ID, &p.Name, &p.Description, &p.UserID, &p.ProjectManagerID,
		&p.Status, &start, &end, &p.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	p.StartDate = model.DateFromDB(start)
	p.EndDate = model.DateFromDB(end)
	return nil
}

// List returns every project with its manager name and child counts, newest first.
func (r *ProjectRepository) List(ctx context.Context) ([]model.ProjectSummary, error) {
	query := `
        SELECT p.id, p.name, p.description, p.user_id, p.project_manager_id, p.status,
               p.start_date, p.end_date, p.created_at,
               u.full_name AS manager_name,
               (SELECT COUNT(*) FROM phases ph WHERE ph.project_id = p.id) AS total_phases,
               (SELECT COUNT(*) FROM work_logs w WHERE w.project_id = p.id) AS total_worklogs
        FROM projects p
        LEFT JOIN users u ON p.project_manager_id = u.id
        ORDER BY p.created_at DESC, p.id DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.ProjectSummary, 0)
	for rows.Next() {
		var s model.ProjectSummary
		if err := scanProject(rows, &s.Project, &s.ManagerName, &s.TotalPhases, &s.TotalWorkLogs); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, s)
	}
	return projects, rows.Err()
}

// GetDetail returns the project with its manager name and phases ordered by phase_order.
func (r *ProjectRepository) GetDetail(ctx context.Context, id int64) (*model.ProjectDetail, error) {
	query := `
        SELECT p.id, p.name, p.description, p.user_id, p.project_manager_id, p.status,
               p.start_date, p.end_date, p.created_at, u.full_name AS manager_name
        FROM projects p
        LEFT JOIN users u ON p.project_manager_id = u.id
        WHERE p.id = $1
    `
	var d model.ProjectDetail
	if err := scanProject(r.db.QueryRow(ctx, query, id), &d.Project, &d.ManagerName); err != nil {
		return nil, dbError("get project", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+phaseColumns+` FROM phases WHERE project_id = $1 ORDER BY phase_order`, id)
	if err != nil {
		return nil, fmt.Errorf("list project phases: %w", err)
	}
	defer rows.Close()

	d.Phases = make([]model.Phase, 0)
	for rows.Next() {
		var ph model.Phase
		if err := scanPhase(rows, &ph); err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		d.Phases = append(d.Phases, ph)
	}
	return &d, rows.Err()
}

// Exists 检查项目是否存在
func (r *ProjectRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check project: %w", err)
	}
	return ok, nil
}

func (r *ProjectRepository) Create(ctx context.Context, ownerID int64, in model.CreateProjectInput) (*model.Project, error) {
	r.logger.Debug("Inserting project",
		zap.Int64("user_id", ownerID),
		zap.String("name", in.Name),
	)

	query := `
        INSERT INTO projects (name, description, user_id, project_manager_id, status, start_date, end_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + projectColumns

	var p model.Project
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := scanProject(tx.QueryRow(ctx, query,
			in.Name,
			in.Description,
			ownerID,
			in.ProjectManagerID,
			in.Status,
			model.DateArg(in.StartDate),
			model.DateArg(in.EndDate),
		), &p)
		if err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		return recordChange(ctx, tx, projectEvent(p.ID, model.ActionCreated, ownerID))
	})
	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return nil, err
	}

	r.logger.Info("Project inserted successfully",
		zap.Int64("id", p.ID),
		zap.Int64("user_id", ownerID),
	)
	return &p, nil
}

// Update applies the present members of in; ErrNotFound when the id does not exist.
func (r *ProjectRepository) Update(ctx context.Context, id, actorID int64, in model.UpdateProjectInput) (*model.Project, error) {
	q, ok := buildProjectUpdate(id, in)
	if !ok {
		return nil, fmt.Errorf("update project %d: no fields", id)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build project update: %w", err)
	}

	var p model.Project
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := scanProject(tx.QueryRow(ctx, sql, args...), &p); err != nil {
			return dbError("update project", err)
		}
		return recordChange(ctx, tx, projectEvent(p.ID, model.ActionUpdated, actorID))
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes the project; phases and work logs go with it.
func (r *ProjectRepository) Delete(ctx context.Context, id, actorID int64) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var deleted int64
		if err := tx.QueryRow(ctx, `DELETE FROM projects WHERE id = $1 RETURNING id`, id).Scan(&deleted); err != nil {
			return dbError("delete project", err)
		}
		return recordChange(ctx, tx, projectEvent(deleted, model.ActionDeleted, actorID))
	})
}

func projectEvent(id int64, action string, actorID int64) model.ChangeEvent {
	return model.ChangeEvent{
		EntityType: model.EntityProject,
		EntityID:   id,
		Action:     action,
		ProjectID:  id,
		UserID:     actorID,
	}
}
