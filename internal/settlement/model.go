package settlement

import (
	"time"

	"github.com/fkhayef/splitsmart/internal/money"
)

// Settlement is a payment from Payer to Receiver inside a group. It is
// applied to the ledger and not kept as history.
type Settlement struct {
	GroupID   string       `json:"group_id"`
	Payer     string       `json:"payer"`    // Who sends the money
	Receiver  string       `json:"receiver"` // Who receives the money
	Amount    money.Amount `json:"amount"`
	CreatedAt time.Time    `json:"created_at"`
}

// NetBalance is what one member owes another after collapse
type NetBalance struct {
	Email  string       `json:"email"`
	Name   string       `json:"name"`
	Amount money.Amount `json:"amount"` // Positive = you owe them, Negative = they owe you
}
