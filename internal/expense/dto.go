package expense

import (
	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/group"
	"github.com/fkhayef/splitsmart/internal/money"
)

// CreateExpenseRequest represents the request to record an expense.
// An empty participant list means every group member, in membership order.
type CreateExpenseRequest struct {
	GroupID      string        `json:"group_id"`
	Description  string        `json:"description" example:"Dinner"`
	Amount       money.Amount  `json:"amount" swaggertype:"number" example:"100.00"`
	Payer        string        `json:"payer" example:"asha@example.com"`
	Participants []string      `json:"participants"`
	SplitType    string        `json:"split_type" example:"equal"`
	Details      split.Details `json:"details"`
}

// PreviewRequest asks for shares without touching any ledger
type PreviewRequest struct {
	Amount       money.Amount  `json:"amount" swaggertype:"number" example:"100.00"`
	Participants []string      `json:"participants"`
	SplitType    string        `json:"split_type" example:"percent"`
	Details      split.Details `json:"details"`
}

// ShareResponse is one participant's share
type ShareResponse struct {
	Participant string       `json:"participant"`
	Amount      money.Amount `json:"amount" swaggertype:"number"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID           string           `json:"id"`
	GroupID      string           `json:"group_id"`
	Description  string           `json:"description"`
	Amount       money.Amount     `json:"amount" swaggertype:"number"`
	Payer        string           `json:"payer"`
	Participants []string         `json:"participants"`
	SplitType    string           `json:"split_type"`
	Details      split.Details    `json:"details" swaggertype:"object"`
	Shares       []*ShareResponse `json:"shares"`
	CreatedAt    string           `json:"created_at"`
}

// CreateExpenseResponse carries the stored expense and the group's debts after it
type CreateExpenseResponse struct {
	Expense *ExpenseResponse      `json:"expense"`
	Debts   []*group.DebtResponse `json:"debts"`
}

// SharesToResponse converts computed shares to DTOs
func SharesToResponse(shares split.Shares) []*ShareResponse {
	out := make([]*ShareResponse, len(shares))
	for i, sh := range shares {
		out[i] = &ShareResponse{Participant: sh.Participant, Amount: sh.Amount}
	}
	return out
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:           e.ID,
		GroupID:      e.GroupID,
		Description:  e.Description,
		Amount:       e.Amount,
		Payer:        e.Payer,
		Participants: e.Participants,
		SplitType:    e.SplitType,
		Details:      e.Details,
		Shares:       SharesToResponse(e.Shares),
		CreatedAt:    e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
