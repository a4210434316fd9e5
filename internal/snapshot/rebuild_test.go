package snapshot

import (
	"errors"
	"strings"
	"testing"

	isLib "github.com/matryer/is"

	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/ledger"
)

func tripGroup() *Group {
	return &Group{
		Name:    "Trip",
		Members: []string{"a@x", "b@x", "c@x"},
		Expenses: []Expense{
			{Description: "Hotel", Amount: 30000, Payer: "a@x", Strategy: "equal"},
			{Description: "Taxi", Amount: 30000, Payer: "B@X", Participants: []string{"a@x", "b@x", "c@x"}, Strategy: "Ratio",
				Details: split.Details{Shares: split.P("a@x", "1", "b@x", "1", "c@x", "1")}},
		},
		// pairwise obligations as they stood before netting
		Debts: []ledger.Debt{
			{Debtor: "b@x", Creditor: "a@x", Amount: 10000},
			{Debtor: "c@x", Creditor: "a@x", Amount: 10000},
			{Debtor: "a@x", Creditor: "b@x", Amount: 10000},
			{Debtor: "c@x", Creditor: "b@x", Amount: 10000},
		},
	}
}

func TestRebuildModesConverge(t *testing.T) {
	is := isLib.New(t)
	g := tripGroup()

	replayed, err := Rebuild(g, ModeReplay)
	is.NoErr(err)
	loaded, err := Rebuild(g, ModeDebts)
	is.NoErr(err)

	is.Equal(replayed.Debts(), loaded.Debts())
	is.Equal(replayed.Debts(), []ledger.Debt{
		{Debtor: "c@x", Creditor: "a@x", Amount: 10000},
		{Debtor: "c@x", Creditor: "b@x", Amount: 10000},
	})
}

func TestRebuildRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Group)
		mode   Mode
		want   error
	}{
		{
			name:   "payer not a member",
			mutate: func(g *Group) { g.Expenses[0].Payer = "z@x" },
			mode:   ModeReplay,
			want:   ErrInvalidSnapshot,
		},
		{
			name:   "participant not a member",
			mutate: func(g *Group) { g.Expenses[1].Participants = []string{"a@x", "z@x"} },
			mode:   ModeReplay,
			want:   ErrInvalidSnapshot,
		},
		{
			name:   "unknown strategy",
			mutate: func(g *Group) { g.Expenses[0].Strategy = "lottery" },
			mode:   ModeReplay,
			want:   split.ErrInvalidSplit,
		},
		{
			name:   "debt to a stranger",
			mutate: func(g *Group) { g.Debts[0].Creditor = "z@x" },
			mode:   ModeDebts,
			want:   ErrInvalidSnapshot,
		},
		{
			name:   "negative stored debt",
			mutate: func(g *Group) { g.Debts[0].Amount = -5 },
			mode:   ModeDebts,
			want:   ledger.ErrInconsistent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tripGroup()
			tt.mutate(g)
			_, err := Rebuild(g, tt.mode)
			if !errors.Is(err, tt.want) {
				t.Errorf("Rebuild() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRebuildIgnoresOtherModeInput(t *testing.T) {
	is := isLib.New(t)

	g := tripGroup()
	g.Debts = nil
	l, err := Rebuild(g, ModeReplay)
	is.NoErr(err)
	is.Equal(l.Len(), 2)

	g = tripGroup()
	g.Expenses[0].Strategy = "lottery"
	l, err = Rebuild(g, ModeDebts)
	is.NoErr(err)
	is.Equal(l.Len(), 2)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeDebts, false},
		{"debts", ModeDebts, false},
		{" Replay ", ModeReplay, false},
		{"both", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"users": 3}`))
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("Decode() error = %v, want ErrInvalidSnapshot", err)
	}
}
