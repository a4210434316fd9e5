package expense

import (
	"time"

	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/money"
)

// Expense is an immutable record of one payment shared by group members
type Expense struct {
	ID           string        `json:"id"`
	GroupID      string        `json:"group_id"`
	Seq          int           `json:"seq"`
	Description  string        `json:"description"`
	Amount       money.Amount  `json:"amount"`
	Payer        string        `json:"payer"`
	Participants []string      `json:"participants"` // supplied order; first absorbs Equal remainders
	SplitType    string        `json:"split_type"`   // selector as supplied, e.g. "unequal"
	Details      split.Details `json:"details"`
	CreatedAt    time.Time     `json:"created_at"`

	// Computed shares, listed in participant order
	Shares split.Shares `json:"shares"`

	// Canonical policy resolved from SplitType when the expense is recorded
	Policy split.Policy `json:"-"`
}
