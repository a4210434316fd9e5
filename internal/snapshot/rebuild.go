package snapshot

import (
	"fmt"

	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/internal/user"
)

// Rebuild computes a group's ledger from its document without touching any
// store. For the same history both modes yield the same ledger.
func Rebuild(g *Group, mode Mode) (*ledger.Ledger, error) {
	members := make(map[string]struct{}, len(g.Members))
	order := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		email := user.NormalizeEmail(m)
		members[email] = struct{}{}
		order = append(order, email)
	}
	member := func(email string) error {
		if _, ok := members[email]; !ok {
			return fmt.Errorf("%w: %s is not a member of group %q", ErrInvalidSnapshot, email, g.Name)
		}
		return nil
	}

	switch mode {
	case ModeReplay:
		l := ledger.New()
		for i, e := range g.Expenses {
			payer := user.NormalizeEmail(e.Payer)
			if err := member(payer); err != nil {
				return nil, err
			}
			participants := order
			if len(e.Participants) > 0 {
				participants = make([]string, len(e.Participants))
				for j, p := range e.Participants {
					participants[j] = user.NormalizeEmail(p)
					if err := member(participants[j]); err != nil {
						return nil, err
					}
				}
			}

			shares, err := split.Compute(e.Strategy, e.Amount, participants, e.Details)
			if err != nil {
				return nil, fmt.Errorf("group %q expense %d: %w", g.Name, i, err)
			}
			if err := l.ApplyExpense(payer, shares); err != nil {
				return nil, err
			}
		}
		return l, nil

	case ModeDebts:
		debts := make([]ledger.Debt, len(g.Debts))
		for i, d := range g.Debts {
			d.Debtor, d.Creditor = user.NormalizeEmail(d.Debtor), user.NormalizeEmail(d.Creditor)
			if err := member(d.Debtor); err != nil {
				return nil, err
			}
			if err := member(d.Creditor); err != nil {
				return nil, err
			}
			debts[i] = d
		}
		return ledger.FromDebts(debts)

	default:
		return nil, fmt.Errorf("unknown snapshot load mode %q", mode)
	}
}
