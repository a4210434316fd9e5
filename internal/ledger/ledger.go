// Package ledger keeps the directed pairwise debts of one group and nets them
// into a small set of settlement transfers.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/money"
)

var (
	// ErrInconsistent is returned when a stored debt amount is negative.
	ErrInconsistent = errors.New("ledger is internally inconsistent")
	// ErrNonPositiveSettlement is returned by SettleUp for amounts <= 0.
	ErrNonPositiveSettlement = errors.New("settlement amount must be positive")
)

// Key identifies a directed debt: Debtor owes Creditor.
type Key struct {
	Debtor   string
	Creditor string
}

// Debt is a directed obligation.
type Debt struct {
	Debtor   string       `json:"debtor"`
	Creditor string       `json:"creditor"`
	Amount   money.Amount `json:"amount"`
}

// Ledger holds at most one directed debt per ordered pair. After Collapse it
// also holds at most one direction per unordered pair.
//
// A Ledger is not safe for concurrent use; callers serialize access per group.
type Ledger struct {
	debts map[Key]money.Amount
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{debts: make(map[Key]money.Amount)}
}

// FromDebts loads raw debts (summing repeated pairs, ignoring self-debts) and
// collapses them once.
func FromDebts(debts []Debt) (*Ledger, error) {
	l := New()
	for _, d := range debts {
		if d.Debtor == d.Creditor {
			continue
		}
		l.debts[Key{d.Debtor, d.Creditor}] += d.Amount
	}
	if err := l.Collapse(); err != nil {
		return nil, err
	}
	return l, nil
}

// Clone returns an independent copy.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{debts: make(map[Key]money.Amount, len(l.debts))}
	for k, v := range l.debts {
		c.debts[k] = v
	}
	return c
}

// Len returns the number of stored debts.
func (l *Ledger) Len() int {
	return len(l.debts)
}

// Amount returns what debtor owes creditor, or zero.
func (l *Ledger) Amount(debtor, creditor string) money.Amount {
	return l.debts[Key{debtor, creditor}]
}

// Debts returns the stored debts sorted by debtor then creditor.
func (l *Ledger) Debts() []Debt {
	out := make([]Debt, 0, len(l.debts))
	for k, v := range l.debts {
		out = append(out, Debt{Debtor: k.Debtor, Creditor: k.Creditor, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Debtor != out[j].Debtor {
			return out[i].Debtor < out[j].Debtor
		}
		return out[i].Creditor < out[j].Creditor
	})
	return out
}

// Balances returns each participant's net position: positive means owed money.
// Participants whose net is zero are omitted.
func (l *Ledger) Balances() map[string]money.Amount {
	net := make(map[string]money.Amount)
	for k, v := range l.debts {
		net[k.Debtor] -= v
		net[k.Creditor] += v
	}
	for p, v := range net {
		if v == 0 {
			delete(net, p)
		}
	}
	return net
}

// add folds amount into debtor→creditor and drops the entry if it is no longer positive.
func (l *Ledger) add(debtor, creditor string, amount money.Amount) {
	if debtor == creditor {
		return
	}
	k := Key{debtor, creditor}
	v := l.debts[k] + amount
	if v <= 0 {
		delete(l.debts, k)
		return
	}
	l.debts[k] = v
}

// ApplyExpense records that every non-payer participant owes the payer their
// share, then collapses. On error the ledger is unchanged.
func (l *Ledger) ApplyExpense(payer string, shares split.Shares) error {
	next := l.Clone()
	for _, sh := range shares {
		if sh.Participant == payer {
			continue
		}
		next.add(sh.Participant, payer, sh.Amount)
	}
	if err := next.Collapse(); err != nil {
		return err
	}
	l.debts = next.debts
	return nil
}

// SettleUp records a payment from payer to receiver:
//   - if payer owes receiver, the debt is reduced and dropped once it reaches zero;
//   - else if receiver owes payer, that debt grows by amount;
//   - else a new debt receiver→payer of amount is recorded.
//
// The ledger is then collapsed. A payment to oneself is a no-op.
func (l *Ledger) SettleUp(payer, receiver string, amount money.Amount) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %s", ErrNonPositiveSettlement, amount)
	}
	if payer == receiver {
		return nil
	}

	next := l.Clone()
	forward := Key{payer, receiver}
	reverse := Key{receiver, payer}
	switch {
	case next.debts[forward] > 0:
		next.add(payer, receiver, -amount)
	case next.debts[reverse] > 0:
		next.debts[reverse] += amount
	default:
		next.debts[reverse] = amount
	}

	if err := next.Collapse(); err != nil {
		return err
	}
	l.debts = next.debts
	return nil
}

type position struct {
	who    string
	amount money.Amount
}

func sortPositions(ps []position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].amount != ps[j].amount {
			return ps[i].amount < ps[j].amount
		}
		return ps[i].who < ps[j].who
	})
}

// Collapse replaces the debt set with a greedy netting of the participants'
// balances. Debtors and creditors are each sorted by ascending magnitude (ties
// broken by key) and matched with two pointers. Collapse is idempotent.
func (l *Ledger) Collapse() error {
	net := make(map[string]money.Amount)
	for k, v := range l.debts {
		if v < 0 {
			return fmt.Errorf("%w: %s owes %s %s", ErrInconsistent, k.Debtor, k.Creditor, v)
		}
		net[k.Debtor] -= v
		net[k.Creditor] += v
	}

	var debtors, creditors []position
	for who, bal := range net {
		switch {
		case bal < 0:
			debtors = append(debtors, position{who, -bal})
		case bal > 0:
			creditors = append(creditors, position{who, bal})
		}
	}
	sortPositions(debtors)
	sortPositions(creditors)

	collapsed := make(map[Key]money.Amount, len(debtors))
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]
		pay := min(d.amount, c.amount)
		collapsed[Key{d.who, c.who}] += pay
		d.amount -= pay
		c.amount -= pay
		if d.amount == 0 {
			i++
		}
		if c.amount == 0 {
			j++
		}
	}

	l.debts = collapsed
	return nil
}

// Summarize renders one "X owes Y <amount>" line per debt, sorted by debtor
// then creditor key. names maps keys to display names; unknown keys are shown
// as-is.
func (l *Ledger) Summarize(names map[string]string, symbol string) []string {
	debts := l.Debts()
	if len(debts) == 0 {
		return []string{"No outstanding debts."}
	}

	display := func(key string) string {
		if n, ok := names[key]; ok && n != "" {
			return n
		}
		return key
	}

	lines := make([]string, 0, len(debts))
	for _, d := range debts {
		lines = append(lines, fmt.Sprintf("%s owes %s %s", display(d.Debtor), display(d.Creditor), d.Amount.Format(symbol)))
	}
	return lines
}
