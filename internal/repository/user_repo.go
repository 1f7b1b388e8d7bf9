package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"worklog/internal/model"
)

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = "id, email, password_hash, full_name, role, sub_category, created_at"

// Create inserts a new user; the email must already be lower-cased.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (email, password_hash, full_name, role, sub_category)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, u.Email, u.PasswordHash, u.FullName, u.Role, u.SubCategory).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == pgUniqueViolation && constraint == usersEmailKey {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	r.logger.Info("User created", zap.Int64("user_id", u.ID))
	return nil
}

// FindByEmail returns user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "find user by email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByID returns user by id.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findOne(ctx, "find user by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) findOne(ctx context.Context, op, query string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.SubCategory, &u.CreatedAt,
	)
	if err != nil {
		return nil, dbError(op, err)
	}
	return &u, nil
}
