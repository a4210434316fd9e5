// Package snapshot saves and loads the whole store as one JSON document.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/internal/money"
)

// ErrInvalidSnapshot is returned for documents that reference unknown users
// or are otherwise malformed.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Document is the persisted form of users and groups.
type Document struct {
	Users  []User  `json:"users"`
	Groups []Group `json:"groups"`
}

// User is a participant entry
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Group holds members by email, the expense history and the collapsed debts.
type Group struct {
	Name     string        `json:"name"`
	Members  []string      `json:"members"`
	Expenses []Expense     `json:"expenses"`
	Debts    []ledger.Debt `json:"debts"`
}

// Expense is one recorded expense
type Expense struct {
	Description  string        `json:"description"`
	Amount       money.Amount  `json:"amount"`
	Payer        string        `json:"payer"`
	Participants []string      `json:"participants"`
	Strategy     string        `json:"strategy"`
	Details      split.Details `json:"details"`
}

// Mode selects how a group's ledger is rebuilt on load.
type Mode string

const (
	// ModeDebts loads the stored debts and collapses them once.
	ModeDebts Mode = "debts"
	// ModeReplay re-applies every expense in order and ignores stored debts.
	ModeReplay Mode = "replay"
)

// ParseMode resolves a mode name; empty means ModeDebts.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDebts:
		return ModeDebts, nil
	case ModeReplay:
		return ModeReplay, nil
	default:
		return "", fmt.Errorf("unknown snapshot load mode %q", s)
	}
}

// Decode reads a document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return &doc, nil
}

// Encode writes the document as indented JSON.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
