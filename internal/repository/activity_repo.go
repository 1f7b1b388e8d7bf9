package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"worklog/internal/model"
)

type ActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert is idempotent on event_id; it reports whether a row was written.
func (r *ActivityRepository) Insert(ctx context.Context, e *model.ActivityEntry) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        INSERT INTO project_activity (event_id, project_id, user_id, entity_type, entity_id, action, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (event_id) DO NOTHING
    `, e.EventID, e.ProjectID, e.UserID, e.EntityType, e.EntityID, e.Action, e.OccurredAt)
	if err != nil {
		return false, fmt.Errorf("insert activity: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteByProject drops the feed of a deleted project.
func (r *ActivityRepository) DeleteByProject(ctx context.Context, projectID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM project_activity WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, fmt.Errorf("delete activity: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListByProject returns the newest limit entries.
func (r *ActivityRepository) ListByProject(ctx context.Context, projectID int64, limit int) ([]model.ActivityEntry, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, event_id, project_id, user_id, entity_type, entity_id, action, occurred_at
        FROM project_activity
        WHERE project_id = $1
        ORDER BY occurred_at DESC, id DESC
        LIMIT $2
    `, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	entries := make([]model.ActivityEntry, 0)
	for rows.Next() {
		var e model.ActivityEntry
		if err := rows.Scan(&e.ID, &e.EventID, &e.ProjectID, &e.UserID, &e.EntityType, &e.EntityID, &e.Action, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
