package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/group"
	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/internal/metrics"
	"github.com/fkhayef/splitsmart/internal/money"
	"github.com/fkhayef/splitsmart/internal/notification"
	"github.com/fkhayef/splitsmart/internal/user"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
)

// Service handles expense business logic
type Service struct {
	repo         *Repository
	groups       *group.Service
	splitFactory *split.Factory // Factory pattern for creating split strategies
	notifier     *notification.Service
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

// NewService creates a new expense service with dependencies injected
func NewService(repo *Repository, groups *group.Service, splitFactory *split.Factory, notifier *notification.Service, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		groups:       groups,
		splitFactory: splitFactory,
		notifier:     notifier,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// Create records an expense in a group: shares are computed and validated
// first, then folded into the group's ledger, which is collapsed and
// persisted together with the expense.
func (s *Service) Create(ctx context.Context, req *CreateExpenseRequest) (*Expense, *ledger.Ledger, error) {
	var expense *Expense
	g, l, err := s.groups.Mutate(ctx, req.GroupID, func(tx *sql.Tx, g *group.Group, l *ledger.Ledger) error {
		var err error
		expense, err = s.CreateInTx(ctx, tx, g, l, req)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.ExpenseApplied(string(expense.Policy))
	s.logger.InfoContext(ctx, "expense recorded",
		"group_id", g.ID,
		"expense_id", expense.ID,
		"payer", expense.Payer,
		"amount", expense.Amount.String(),
		"split_type", expense.SplitType,
	)
	s.notifier.NotifyExpenseAdded(ctx, g.ID, g.Name, expense.Payer, expense.Description, expense.Amount, l)

	return expense, l, nil
}

// CreateInTx validates and stores an expense and applies it to l. The caller
// owns the transaction and the group lock and persists l afterwards.
func (s *Service) CreateInTx(ctx context.Context, tx *sql.Tx, g *group.Group, l *ledger.Ledger, req *CreateExpenseRequest) (*Expense, error) {
	payer := user.NormalizeEmail(req.Payer)
	if !g.HasMember(payer) {
		return nil, fmt.Errorf("%w: payer %s in group %q", group.ErrNotMember, payer, g.Name)
	}

	participants := g.MemberEmails()
	if len(req.Participants) > 0 {
		participants = make([]string, len(req.Participants))
		for i, p := range req.Participants {
			participants[i] = user.NormalizeEmail(p)
			if !g.HasMember(participants[i]) {
				return nil, fmt.Errorf("%w: %s in group %q", group.ErrNotMember, participants[i], g.Name)
			}
		}
	}

	details := normalizeDetails(req.Details)
	policy, shares, err := s.computeShares(req.SplitType, req.Amount, participants, details)
	if err != nil {
		return nil, err
	}

	expense := &Expense{
		ID:           uuid.NewString(),
		GroupID:      g.ID,
		Description:  strings.TrimSpace(req.Description),
		Amount:       req.Amount,
		Payer:        payer,
		Participants: participants,
		SplitType:    strings.ToLower(strings.TrimSpace(req.SplitType)),
		Details:      details,
		CreatedAt:    s.now().Truncate(time.Second),
		Shares:       orderByParticipants(shares, participants),
		Policy:       policy,
	}

	if err := s.repo.WithTx(tx).Create(ctx, expense); err != nil {
		return nil, err
	}

	if err := l.ApplyExpense(payer, shares); err != nil {
		return nil, err
	}

	return expense, nil
}

// Preview computes shares without recording anything
func (s *Service) Preview(ctx context.Context, req *PreviewRequest) (split.Shares, error) {
	participants := make([]string, len(req.Participants))
	for i, p := range req.Participants {
		participants[i] = user.NormalizeEmail(p)
	}
	_, shares, err := s.computeShares(req.SplitType, req.Amount, participants, normalizeDetails(req.Details))
	return shares, err
}

func (s *Service) computeShares(selector string, amount money.Amount, participants []string, details split.Details) (split.Policy, split.Shares, error) {
	// Use FACTORY PATTERN to get the appropriate split strategy
	strategy, err := s.splitFactory.CreateFromString(selector)
	if err != nil {
		s.metrics.SplitRejected(selector, false)
		return "", nil, err
	}

	shares, err := strategy.Calculate(amount, participants, details)
	if err != nil {
		s.metrics.SplitRejected(string(strategy.Policy()), true)
		return "", nil, err
	}
	return strategy.Policy(), shares, nil
}

// normalizeDetails applies email normalization to parameter keys, keeping order.
func normalizeDetails(d split.Details) split.Details {
	norm := func(p split.Params) split.Params {
		if p == nil {
			return nil
		}
		out := make(split.Params, len(p))
		for i, e := range p {
			out[i] = split.Entry{Key: user.NormalizeEmail(e.Key), Value: e.Value}
		}
		return out
	}
	return split.Details{
		Amounts:  norm(d.Amounts),
		Percents: norm(d.Percents),
		Shares:   norm(d.Shares),
	}
}

func orderByParticipants(shares split.Shares, participants []string) split.Shares {
	owed := shares.Map()
	out := make(split.Shares, len(participants))
	for i, p := range participants {
		out[i] = split.Share{Participant: p, Amount: owed[p]}
	}
	return out
}

// GetByID retrieves an expense with its shares
func (s *Service) GetByID(ctx context.Context, id string) (*Expense, error) {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}
	return expense, nil
}

// ListByGroupID retrieves a group's expenses in recording order
func (s *Service) ListByGroupID(ctx context.Context, groupID string, page, perPage int) ([]*Expense, int, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroupID(ctx, groupID, perPage, offset)
}
