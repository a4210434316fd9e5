package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Common errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailAlreadyInUse = errors.New("email already in use")
	ErrInvalidUser       = errors.New("name and email are required")
)

// Service handles user business logic
type Service struct {
	repo   *Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new user service with repository dependency injected
func NewService(repo *Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create registers a new user. The email is normalized before use.
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	return s.create(ctx, s.repo, req)
}

// CreateInTx registers a new user inside an existing transaction
func (s *Service) CreateInTx(ctx context.Context, tx *sql.Tx, req *CreateUserRequest) (*User, error) {
	return s.create(ctx, s.repo.WithTx(tx), req)
}

func (s *Service) create(ctx context.Context, repo *Repository, req *CreateUserRequest) (*User, error) {
	user := &User{
		Email:     NormalizeEmail(req.Email),
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: s.now().Truncate(time.Second),
	}
	if user.Email == "" || user.Name == "" {
		return nil, ErrInvalidUser
	}

	existing, err := repo.GetByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailAlreadyInUse, user.Email)
	}

	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user created", "email", user.Email)
	return user, nil
}

// GetByEmail retrieves a user by email
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List retrieves all users with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}
