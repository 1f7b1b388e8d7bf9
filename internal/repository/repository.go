package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"worklog/internal/model"
	"worklog/pkg/outbox"
	"worklog/pkg/trace"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail 邮箱已被注册
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicatePhaseOrder phase_order 在项目内重复
	ErrDuplicatePhaseOrder = errors.New("phase order already exists for project")
	// ErrPhaseInUse 仍有工时记录引用该阶段
	ErrPhaseInUse = errors.New("phase is referenced by work logs")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	usersEmailKey         = "users_email_key"
	phasesProjectOrderKey = "phases_project_order_key"
)

// psql compiles squirrel builders with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// dbError maps pgx.ErrNoRows to ErrNotFound and wraps everything else with op.
func dbError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func pgErrorCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// recordChange writes the change event into the outbox inside the caller's transaction.
func recordChange(ctx context.Context, tx pgx.Tx, e model.ChangeEvent) error {
	e.TraceID = trace.FromContext(ctx)
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	entityID := e.EntityID
	if err := outbox.InsertEventInTx(ctx, tx, e.EntityType, &entityID, e.RoutingKey(), e); err != nil {
		return fmt.Errorf("record %s: %w", e.RoutingKey(), err)
	}
	return nil
}
