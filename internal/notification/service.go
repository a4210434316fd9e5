package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/internal/money"
	"github.com/fkhayef/splitsmart/pkg/logging"
)

// Service turns committed ledger changes into events. Delivery failures are
// logged and never fail the caller, since the change is already committed.
type Service struct {
	publisher Publisher
	logger    *slog.Logger
	currency  string
	now       func() time.Time
}

// NewService creates a new notification service
func NewService(publisher Publisher, logger *slog.Logger, currency string) *Service {
	return &Service{publisher: publisher, logger: logger, currency: currency, now: time.Now}
}

// NotifyExpenseAdded announces a newly recorded expense
func (s *Service) NotifyExpenseAdded(ctx context.Context, groupID, groupName, payer, description string, amount money.Amount, l *ledger.Ledger) *Event {
	message := fmt.Sprintf("%s paid %s for %q", payer, amount.Format(s.currency), description)
	return s.publish(ctx, TypeExpenseAdded, groupID, groupName, message, l)
}

// NotifySettlement announces a recorded payment between two members
func (s *Service) NotifySettlement(ctx context.Context, groupID, groupName, payer, receiver string, amount money.Amount, l *ledger.Ledger) *Event {
	message := fmt.Sprintf("%s paid %s %s", payer, receiver, amount.Format(s.currency))
	return s.publish(ctx, TypeSettlement, groupID, groupName, message, l)
}

// NotifyLedgerImported announces a ledger rebuilt from a snapshot
func (s *Service) NotifyLedgerImported(ctx context.Context, groupID, groupName string, l *ledger.Ledger) *Event {
	return s.publish(ctx, TypeLedgerImported, groupID, groupName, "ledger loaded from snapshot", l)
}

func (s *Service) publish(ctx context.Context, typ Type, groupID, groupName, message string, l *ledger.Ledger) *Event {
	event := &Event{
		ID:        uuid.NewString(),
		Type:      typ,
		GroupID:   groupID,
		GroupName: groupName,
		Message:   message,
		Debts:     l.Debts(),
		CreatedAt: s.now().UTC(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish ledger event",
			"type", typ,
			"group_id", groupID,
			logging.Err(err),
		)
	}

	return event
}
