package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitsmart/internal/database"
	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/internal/metrics"
	"github.com/fkhayef/splitsmart/internal/user"
	"github.com/fkhayef/splitsmart/pkg/logging"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrGroupNameTaken      = errors.New("group name already in use")
	ErrInvalidGroup        = errors.New("invalid group")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
	ErrNotMember           = errors.New("user is not a member of this group")
)

// MutateFunc changes a group's ledger inside the group's transaction. The
// ledger is persisted only if it returns nil.
type MutateFunc func(tx *sql.Tx, g *Group, l *ledger.Ledger) error

// Service handles group business logic
type Service struct {
	db       *sql.DB
	repo     *Repository
	users    *user.Repository
	locks    *Locks
	metrics  *metrics.Metrics
	logger   *slog.Logger
	currency string
	now      func() time.Time
}

// NewService creates a new group service
func NewService(db *sql.DB, repo *Repository, users *user.Repository, locks *Locks, m *metrics.Metrics, logger *slog.Logger, currency string) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		users:    users,
		locks:    locks,
		metrics:  m,
		logger:   logger,
		currency: currency,
		now:      time.Now,
	}
}

// Currency returns the symbol used in summaries
func (s *Service) Currency() string {
	return s.currency
}

// Create creates a new group with existing users as members
func (s *Service) Create(ctx context.Context, req *CreateGroupRequest) (*Group, error) {
	var group *Group
	err := database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		group, err = s.CreateInTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "group created", "group_id", group.ID, "name", group.Name, "members", len(group.Members))
	return group, nil
}

// CreateInTx creates a group inside an existing transaction
func (s *Service) CreateInTx(ctx context.Context, tx *sql.Tx, req *CreateGroupRequest) (*Group, error) {
	repo, users := s.repo.WithTx(tx), s.users.WithTx(tx)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidGroup)
	}

	existing, err := repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrGroupNameTaken, name)
	}

	group := &Group{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: s.now().Truncate(time.Second),
	}

	seen := make(map[string]struct{}, len(req.Members))
	for _, raw := range req.Members {
		email := user.NormalizeEmail(raw)
		if _, dup := seen[email]; dup {
			return nil, fmt.Errorf("%w: %s listed more than once", ErrInvalidGroup, email)
		}
		seen[email] = struct{}{}

		u, err := users.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, fmt.Errorf("%w: %s", user.ErrUserNotFound, email)
		}
		group.Members = append(group.Members, &Member{Email: u.Email, Name: u.Name, Position: len(group.Members)})
	}

	if err := repo.Create(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

// GetByID retrieves a group with its members
func (s *Service) GetByID(ctx context.Context, id string) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// List retrieves groups with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

// AddMember appends an existing user to a group
func (s *Service) AddMember(ctx context.Context, groupID string, req *AddMemberRequest) (*Group, error) {
	email := user.NormalizeEmail(req.Email)

	unlock, err := s.lock(ctx, groupID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var group *Group
	err = database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.repo.WithTx(tx)

		g, err := repo.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		if g == nil {
			return ErrGroupNotFound
		}
		if g.HasMember(email) {
			return fmt.Errorf("%w: %s", ErrMemberAlreadyExists, email)
		}

		u, err := s.users.WithTx(tx).GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("%w: %s", user.ErrUserNotFound, email)
		}

		if err := repo.AddMember(ctx, groupID, email); err != nil {
			return err
		}

		group, err = repo.GetByID(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "member added", "group_id", groupID, "email", email)
	return group, nil
}

// Ledger loads a group and its collapsed ledger
func (s *Service) Ledger(ctx context.Context, groupID string) (*Group, *ledger.Ledger, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	debts, err := s.repo.ListDebts(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	l, err := ledger.FromDebts(debts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ledger for group %s: %w", groupID, err)
	}

	return group, l, nil
}

// Summary renders the group's outstanding debts as text lines
func (s *Service) Summary(ctx context.Context, groupID string) ([]string, error) {
	group, l, err := s.Ledger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return l.Summarize(group.Directory(), s.currency), nil
}

// Balances returns every member's net balance in membership order
func (s *Service) Balances(ctx context.Context, groupID string) ([]*BalanceResponse, error) {
	group, l, err := s.Ledger(ctx, groupID)
	if err != nil {
		return nil, err
	}

	net := l.Balances()
	out := make([]*BalanceResponse, 0, len(group.Members))
	for _, m := range group.Members {
		out = append(out, &BalanceResponse{Email: m.Email, Balance: net[m.Email]})
		delete(net, m.Email)
	}
	for email, bal := range net {
		out = append(out, &BalanceResponse{Email: email, Balance: bal})
	}

	return out, nil
}

// Mutate runs fn against the group's ledger while holding the group's lock,
// then persists the collapsed ledger in the same transaction. Nothing is
// written if fn or the persist step fails.
func (s *Service) Mutate(ctx context.Context, groupID string, fn MutateFunc) (*Group, *ledger.Ledger, error) {
	unlock, err := s.lock(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	var (
		group *Group
		l     *ledger.Ledger
	)
	err = database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.repo.WithTx(tx)

		g, err := repo.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		if g == nil {
			return ErrGroupNotFound
		}

		debts, err := repo.ListDebts(ctx, groupID)
		if err != nil {
			return err
		}
		current, err := ledger.FromDebts(debts)
		if err != nil {
			return fmt.Errorf("failed to load ledger for group %s: %w", groupID, err)
		}

		if err := fn(tx, g, current); err != nil {
			return err
		}

		if err := repo.ReplaceDebts(ctx, groupID, current.Debts()); err != nil {
			return err
		}

		group, l = g, current
		return nil
	})
	if err != nil {
		if !isClientError(err) {
			s.logger.ErrorContext(ctx, "ledger mutation failed", "group_id", groupID, logging.Err(err))
		}
		return nil, nil, err
	}

	s.metrics.ObserveLedger(l.Len())
	return group, l, nil
}

// lock takes the group's lock. Unknown ids never reach the lock table; groups
// are never deleted, so the check holds once the lock is taken.
func (s *Service) lock(ctx context.Context, groupID string) (func(), error) {
	exists, err := s.repo.Exists(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrGroupNotFound
	}
	return s.locks.Lock(ctx, groupID)
}

// isClientError reports errors caused by the request rather than the system.
func isClientError(err error) bool {
	return errors.Is(err, ErrGroupNotFound) ||
		errors.Is(err, ErrNotMember) ||
		errors.Is(err, user.ErrUserNotFound) ||
		errors.Is(err, split.ErrInvalidSplit) ||
		errors.Is(err, ledger.ErrNonPositiveSettlement)
}
