package settlement

import (
	"github.com/fkhayef/splitsmart/internal/group"
	"github.com/fkhayef/splitsmart/internal/money"
)

// SettleUpRequest represents a payment between two group members
type SettleUpRequest struct {
	GroupID  string       `json:"group_id"`
	Payer    string       `json:"payer" example:"bilal@example.com"`
	Receiver string       `json:"receiver" example:"asha@example.com"`
	Amount   money.Amount `json:"amount" swaggertype:"number" example:"25.00"`
}

// SettlementResponse represents the applied payment and the resulting debts
type SettlementResponse struct {
	GroupID   string                `json:"group_id"`
	Payer     string                `json:"payer"`
	Receiver  string                `json:"receiver"`
	Amount    money.Amount          `json:"amount" swaggertype:"number"`
	CreatedAt string                `json:"created_at"`
	Debts     []*group.DebtResponse `json:"debts"`
}

// NetBalanceResponse represents the net balance with another member
type NetBalanceResponse struct {
	Email   string       `json:"email"`
	Name    string       `json:"name"`
	Amount  money.Amount `json:"amount" swaggertype:"number"`
	Message string       `json:"message"` // e.g., "You owe Asha ₹50.00" or "Asha owes you ₹30.00"
}

// ToResponse converts a Settlement model to a SettlementResponse DTO
func (s *Settlement) ToResponse(debts []*group.DebtResponse) *SettlementResponse {
	return &SettlementResponse{
		GroupID:   s.GroupID,
		Payer:     s.Payer,
		Receiver:  s.Receiver,
		Amount:    s.Amount,
		CreatedAt: s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Debts:     debts,
	}
}

// ToResponse converts a NetBalance to a NetBalanceResponse DTO
func (b *NetBalance) ToResponse(currency string) *NetBalanceResponse {
	msg := b.Name + " owes you " + (-b.Amount).Format(currency)
	if b.Amount > 0 {
		msg = "You owe " + b.Name + " " + b.Amount.Format(currency)
	}
	return &NetBalanceResponse{
		Email:   b.Email,
		Name:    b.Name,
		Amount:  b.Amount,
		Message: msg,
	}
}
