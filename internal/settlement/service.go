package settlement

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/fkhayef/splitsmart/internal/group"
	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/internal/metrics"
	"github.com/fkhayef/splitsmart/internal/notification"
	"github.com/fkhayef/splitsmart/internal/user"
)

// Service handles settlement business logic
type Service struct {
	groups   *group.Service
	notifier *notification.Service
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new settlement service
func NewService(groups *group.Service, notifier *notification.Service, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		groups:   groups,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// SettleUp records a payment from payer to receiver and collapses the group's debts.
// Paying more than is owed does not create a credit; the excess is dropped.
func (s *Service) SettleUp(ctx context.Context, req *SettleUpRequest) (*Settlement, *ledger.Ledger, error) {
	settlement := &Settlement{
		GroupID:   req.GroupID,
		Payer:     user.NormalizeEmail(req.Payer),
		Receiver:  user.NormalizeEmail(req.Receiver),
		Amount:    req.Amount,
		CreatedAt: s.now().Truncate(time.Second),
	}

	g, l, err := s.groups.Mutate(ctx, req.GroupID, func(_ *sql.Tx, g *group.Group, l *ledger.Ledger) error {
		for _, who := range []string{settlement.Payer, settlement.Receiver} {
			if !g.HasMember(who) {
				return fmt.Errorf("%w: %s in group %q", group.ErrNotMember, who, g.Name)
			}
		}
		return l.SettleUp(settlement.Payer, settlement.Receiver, settlement.Amount)
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.SettlementRecorded()
	s.logger.InfoContext(ctx, "settlement recorded",
		"group_id", g.ID,
		"payer", settlement.Payer,
		"receiver", settlement.Receiver,
		"amount", settlement.Amount.String(),
	)
	s.notifier.NotifySettlement(ctx, g.ID, g.Name, settlement.Payer, settlement.Receiver, settlement.Amount, l)

	return settlement, l, nil
}

// NetBalances lists who email owes and who owes email within a group
func (s *Service) NetBalances(ctx context.Context, groupID, email string) ([]*NetBalance, error) {
	email = user.NormalizeEmail(email)

	g, l, err := s.groups.Ledger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.HasMember(email) {
		return nil, fmt.Errorf("%w: %s in group %q", group.ErrNotMember, email, g.Name)
	}

	names := g.Directory()
	balances := []*NetBalance{}
	for _, d := range l.Debts() {
		switch email {
		case d.Debtor:
			balances = append(balances, &NetBalance{Email: d.Creditor, Name: names[d.Creditor], Amount: d.Amount})
		case d.Creditor:
			balances = append(balances, &NetBalance{Email: d.Debtor, Name: names[d.Debtor], Amount: -d.Amount})
		}
	}

	return balances, nil
}
