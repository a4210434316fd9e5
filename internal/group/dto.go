package group

import (
	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/internal/money"
)

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name    string   `json:"name" example:"Goa trip"`
	Members []string `json:"members" example:"asha@example.com,bilal@example.com"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	Email string `json:"email" example:"chen@example.com"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt string            `json:"created_at"`
	Members   []*MemberResponse `json:"members"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// DebtResponse is one directed debt
type DebtResponse struct {
	Debtor   string       `json:"debtor"`
	Creditor string       `json:"creditor"`
	Amount   money.Amount `json:"amount" swaggertype:"number"`
}

// BalanceResponse is a member's net position; positive means they are owed
type BalanceResponse struct {
	Email   string       `json:"email"`
	Balance money.Amount `json:"balance" swaggertype:"number"`
}

// SummaryResponse holds human-readable debt lines
type SummaryResponse struct {
	Lines []string `json:"lines"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	members := make([]*MemberResponse, len(g.Members))
	for i, m := range g.Members {
		members[i] = &MemberResponse{Email: m.Email, Name: m.Name}
	}
	return &GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Members:   members,
	}
}

// DebtsToResponse converts ledger debts to DTOs
func DebtsToResponse(debts []ledger.Debt) []*DebtResponse {
	out := make([]*DebtResponse, len(debts))
	for i, d := range debts {
		out[i] = &DebtResponse{Debtor: d.Debtor, Creditor: d.Creditor, Amount: d.Amount}
	}
	return out
}
