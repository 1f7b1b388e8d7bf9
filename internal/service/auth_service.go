package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/internal/repository"
	"worklog/pkg/rbac"
	"worklog/pkg/util"
	"worklog/pkg/validation"
)

type AuthService struct {
	users     UserStore
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewAuthService(users UserStore, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = util.DefaultTokenTTL
	}
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	Role        string
	SubCategory string
}

// Register creates a new user. Emails are compared case-insensitively.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := validation.ValidateRegister(validation.RegisterInput{
		Email:    in.Email,
		Password: in.Password,
		FullName: in.FullName,
	}); err != nil {
		return nil, ValidationError(err.Error())
	}
	if rbac.IsReserved(in.Role) {
		return nil, ValidationError(MsgInvalidRole)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, InternalError("register: find user", err)
	}
	if existing != nil {
		return nil, ConflictError(MsgUserExists)
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, InternalError("register: hash password", err)
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         orDefault(in.Role, model.DefaultRole),
		SubCategory:  orDefault(in.SubCategory, model.DefaultSubCategory),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ConflictError(MsgUserExists)
		}
		return nil, InternalError("register: create user", err)
	}

	return u, nil
}

// Login checks user credentials and returns a signed token plus the user.
// Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	if err := validation.ValidateLogin(email, password); err != nil {
		return "", nil, ValidationError(err.Error())
	}

	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ValidationError(MsgInvalidCredentials)
		}
		return "", nil, InternalError("login: find user", err)
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		s.logger.Info("Login rejected", zap.Int64("user_id", u.ID))
		return "", nil, ValidationError(MsgInvalidCredentials)
	}

	token, err := util.GenerateJWT(util.Identity{ID: u.ID, Email: u.Email, Role: u.Role}, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", nil, InternalError("login: sign token", err)
	}

	return token, u, nil
}

// Me returns the caller's user record.
func (s *AuthService) Me(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError(MsgUserNotFound)
		}
		return nil, InternalError("me: find user", err)
	}
	return u, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
