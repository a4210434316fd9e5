package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fkhayef/splitsmart/internal/database"
	"github.com/fkhayef/splitsmart/internal/expense"
	"github.com/fkhayef/splitsmart/internal/group"
	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/internal/metrics"
	"github.com/fkhayef/splitsmart/internal/notification"
	"github.com/fkhayef/splitsmart/internal/user"
)

// Deps are the collaborators of Service
type Deps struct {
	DB          *sql.DB
	Users       *user.Service
	UserRepo    *user.Repository
	Groups      *group.Service
	GroupRepo   *group.Repository
	Expenses    *expense.Service
	ExpenseRepo *expense.Repository
	Notifier    *notification.Service
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Service exports the store to a Document and imports Documents into it
type Service struct {
	Deps
}

// NewService creates a new snapshot service
func NewService(deps Deps) *Service {
	return &Service{Deps: deps}
}

// GroupResult reports one imported group
type GroupResult struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Debts []ledger.Debt `json:"debts"`
}

// ImportResult reports what an import created
type ImportResult struct {
	Mode         Mode          `json:"mode"`
	UsersCreated int           `json:"users_created"`
	Groups       []GroupResult `json:"groups"`
}

// Export reads the whole store inside one transaction
func (s *Service) Export(ctx context.Context) (*Document, error) {
	doc := &Document{Users: []User{}, Groups: []Group{}}

	err := database.RunInTx(ctx, s.DB, func(tx *sql.Tx) error {
		users, _, err := s.UserRepo.WithTx(tx).List(ctx, 0, 0)
		if err != nil {
			return err
		}
		for _, u := range users {
			doc.Users = append(doc.Users, User{Name: u.Name, Email: u.Email})
		}

		groupRepo := s.GroupRepo.WithTx(tx)
		groups, _, err := groupRepo.List(ctx, 0, 0)
		if err != nil {
			return err
		}
		for _, summary := range groups {
			g, err := groupRepo.GetByID(ctx, summary.ID)
			if err != nil {
				return err
			}
			gd, err := s.exportGroup(ctx, tx, g)
			if err != nil {
				return err
			}
			doc.Groups = append(doc.Groups, *gd)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export snapshot: %w", err)
	}

	return doc, nil
}

func (s *Service) exportGroup(ctx context.Context, tx *sql.Tx, g *group.Group) (*Group, error) {
	expenses, _, err := s.ExpenseRepo.WithTx(tx).ListByGroupID(ctx, g.ID, 0, 0)
	if err != nil {
		return nil, err
	}
	debts, err := s.GroupRepo.WithTx(tx).ListDebts(ctx, g.ID)
	if err != nil {
		return nil, err
	}

	gd := &Group{
		Name:     g.Name,
		Members:  g.MemberEmails(),
		Expenses: make([]Expense, len(expenses)),
		Debts:    debts,
	}
	for i, e := range expenses {
		gd.Expenses[i] = Expense{
			Description:  e.Description,
			Amount:       e.Amount,
			Payer:        e.Payer,
			Participants: e.Participants,
			Strategy:     e.SplitType,
			Details:      e.Details,
		}
	}
	return gd, nil
}

// Import loads a document in one transaction. Users that already exist are
// kept; groups must be new. Each group's ledger is rebuilt per mode and its
// expense history is stored as-is.
func (s *Service) Import(ctx context.Context, doc *Document, mode Mode) (*ImportResult, error) {
	result := &ImportResult{Mode: mode, Groups: []GroupResult{}}
	ledgers := make([]*ledger.Ledger, 0, len(doc.Groups))

	err := database.RunInTx(ctx, s.DB, func(tx *sql.Tx) error {
		userRepo := s.UserRepo.WithTx(tx)
		for _, u := range doc.Users {
			existing, err := userRepo.GetByEmail(ctx, user.NormalizeEmail(u.Email))
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			if _, err := s.Users.CreateInTx(ctx, tx, &user.CreateUserRequest{Name: u.Name, Email: u.Email}); err != nil {
				return fmt.Errorf("user %q: %w", u.Email, err)
			}
			result.UsersCreated++
		}

		for i := range doc.Groups {
			gd := &doc.Groups[i]

			l, err := Rebuild(gd, mode)
			if err != nil {
				return err
			}

			g, err := s.Groups.CreateInTx(ctx, tx, &group.CreateGroupRequest{Name: gd.Name, Members: gd.Members})
			if err != nil {
				return fmt.Errorf("group %q: %w", gd.Name, err)
			}

			// history is stored against a scratch ledger; l is authoritative
			scratch := ledger.New()
			for j, e := range gd.Expenses {
				_, err := s.Expenses.CreateInTx(ctx, tx, g, scratch, &expense.CreateExpenseRequest{
					GroupID:      g.ID,
					Description:  e.Description,
					Amount:       e.Amount,
					Payer:        e.Payer,
					Participants: e.Participants,
					SplitType:    e.Strategy,
					Details:      e.Details,
				})
				if err != nil {
					return fmt.Errorf("group %q expense %d: %w", gd.Name, j, err)
				}
			}

			if err := s.GroupRepo.WithTx(tx).ReplaceDebts(ctx, g.ID, l.Debts()); err != nil {
				return err
			}

			result.Groups = append(result.Groups, GroupResult{ID: g.ID, Name: g.Name, Debts: l.Debts()})
			ledgers = append(ledgers, l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, gr := range result.Groups {
		s.Metrics.ObserveLedger(ledgers[i].Len())
		s.Notifier.NotifyLedgerImported(ctx, gr.ID, gr.Name, ledgers[i])
	}
	s.Logger.InfoContext(ctx, "snapshot imported",
		"mode", mode,
		"users_created", result.UsersCreated,
		"groups", len(result.Groups),
	)

	return result, nil
}

// Empty reports whether the store has no users yet
func (s *Service) Empty(ctx context.Context) (bool, error) {
	_, total, err := s.UserRepo.List(ctx, 1, 0)
	if err != nil {
		return false, err
	}
	return total == 0, nil
}
