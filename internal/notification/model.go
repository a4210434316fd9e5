package notification

import (
	"encoding/json"
	"time"

	"github.com/fkhayef/splitsmart/internal/ledger"
)

// Type represents the kind of ledger change
type Type string

const (
	TypeExpenseAdded   Type = "EXPENSE_ADDED"
	TypeSettlement     Type = "SETTLEMENT"
	TypeLedgerImported Type = "LEDGER_IMPORTED"
)

// Event is published after a group's ledger changed and the change was committed.
// Debts is the group's full collapsed debt set after the change.
type Event struct {
	ID        string        `json:"id"`
	Type      Type          `json:"type"`
	GroupID   string        `json:"group_id"`
	GroupName string        `json:"group_name"`
	Message   string        `json:"message"`
	Debts     []ledger.Debt `json:"debts"`
	CreatedAt time.Time     `json:"created_at"`
}

// ToJSON encodes the event as a message body.
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
