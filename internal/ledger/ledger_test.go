package ledger

import (
	"errors"
	"math/rand"
	"strconv"
	"testing"

	isLib "github.com/matryer/is"

	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/money"
)

func mustCompute(t *testing.T, selector string, total money.Amount, participants []string, details split.Details) split.Shares {
	t.Helper()
	shares, err := split.Compute(selector, total, participants, details)
	if err != nil {
		t.Fatalf("split.Compute: %v", err)
	}
	return shares
}

func assertNoBidirectional(is *isLib.I, l *Ledger) {
	for k := range l.debts {
		_, reverse := l.debts[Key{k.Creditor, k.Debtor}]
		is.True(!reverse) // both directions present
		is.True(k.Debtor != k.Creditor)
	}
}

func TestApplyExpenseEqualSplit(t *testing.T) {
	is := isLib.New(t)
	l := New()

	shares := mustCompute(t, "equal", 12000, []string{"a", "b", "c"}, split.Details{})
	is.NoErr(l.ApplyExpense("a", shares))

	is.Equal(l.Debts(), []Debt{
		{Debtor: "b", Creditor: "a", Amount: 4000},
		{Debtor: "c", Creditor: "a", Amount: 4000},
	})
	is.Equal(l.Balances(), map[string]money.Amount{"a": 8000, "b": -4000, "c": -4000})
}

func TestApplyExpenseNetsOppositeDebts(t *testing.T) {
	is := isLib.New(t)
	l := New()

	is.NoErr(l.ApplyExpense("a", split.Shares{{Participant: "a", Amount: 5000}, {Participant: "b", Amount: 5000}}))
	is.NoErr(l.ApplyExpense("b", split.Shares{{Participant: "a", Amount: 3000}, {Participant: "b", Amount: 3000}}))

	is.Equal(l.Debts(), []Debt{{Debtor: "b", Creditor: "a", Amount: 2000}})
}

func TestCollapseChain(t *testing.T) {
	is := isLib.New(t)
	l := New()
	l.debts[Key{"a", "b"}] = 1000
	l.debts[Key{"b", "c"}] = 1000

	is.NoErr(l.Collapse())
	is.Equal(l.Debts(), []Debt{{Debtor: "a", Creditor: "c", Amount: 1000}})
}

func TestCollapseIsIdempotent(t *testing.T) {
	is := isLib.New(t)
	l := New()
	l.debts[Key{"a", "b"}] = 700
	l.debts[Key{"c", "b"}] = 300
	l.debts[Key{"b", "d"}] = 250
	l.debts[Key{"d", "a"}] = 100

	is.NoErr(l.Collapse())
	first := l.Debts()
	is.NoErr(l.Collapse())
	is.Equal(l.Debts(), first)
}

func TestCollapseRejectsNegativeAmount(t *testing.T) {
	is := isLib.New(t)
	l := New()
	l.debts[Key{"a", "b"}] = 500
	l.debts[Key{"c", "b"}] = -1

	err := l.Collapse()
	is.True(errors.Is(err, ErrInconsistent))
	is.Equal(l.Amount("a", "b"), money.Amount(500)) // untouched
}

func TestSettleUp(t *testing.T) {
	tests := []struct {
		name     string
		existing []Debt
		payer    string
		receiver string
		amount   money.Amount
		want     []Debt
	}{
		{
			name:     "partial payment reduces debt",
			existing: []Debt{{"b", "a", 4000}},
			payer:    "b", receiver: "a", amount: 1500,
			want: []Debt{{"b", "a", 2500}},
		},
		{
			name:     "exact payment removes debt",
			existing: []Debt{{"b", "a", 4000}},
			payer:    "b", receiver: "a", amount: 4000,
			want: []Debt{},
		},
		{
			name:     "overpayment excess is dropped",
			existing: []Debt{{"b", "a", 4000}},
			payer:    "b", receiver: "a", amount: 5000,
			want: []Debt{},
		},
		{
			name:     "paying a debtor grows their debt",
			existing: []Debt{{"a", "b", 3000}},
			payer:    "b", receiver: "a", amount: 2000,
			want: []Debt{{"a", "b", 5000}},
		},
		{
			name:     "payment without prior debt creates reverse debt",
			existing: nil,
			payer:    "a", receiver: "b", amount: 1000,
			want: []Debt{{"b", "a", 1000}},
		},
		{
			name:     "payment to self is a no-op",
			existing: []Debt{{"b", "a", 4000}},
			payer:    "a", receiver: "a", amount: 1000,
			want: []Debt{{"b", "a", 4000}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := isLib.New(t)
			l, err := FromDebts(tt.existing)
			is.NoErr(err)

			is.NoErr(l.SettleUp(tt.payer, tt.receiver, tt.amount))
			is.Equal(l.Debts(), tt.want)
		})
	}
}

func TestSettleUpRejectsNonPositive(t *testing.T) {
	is := isLib.New(t)
	l, err := FromDebts([]Debt{{"b", "a", 100}})
	is.NoErr(err)

	err = l.SettleUp("b", "a", 0)
	is.True(errors.Is(err, ErrNonPositiveSettlement))
	is.Equal(l.Amount("b", "a"), money.Amount(100))
}

func TestSettleUpAfterExpenses(t *testing.T) {
	is := isLib.New(t)
	l := New()

	is.NoErr(l.ApplyExpense("a", mustCompute(t, "equal", 9000, []string{"a", "b", "c"}, split.Details{})))
	is.NoErr(l.ApplyExpense("b", mustCompute(t, "percent", 6000, []string{"a", "b", "c"},
		split.Details{Percents: split.P("a", "50", "b", "25", "c", "25")})))

	// a: +6000 -3000, b: -3000 +4500, c: -3000 -1500
	is.Equal(l.Balances(), map[string]money.Amount{"a": 3000, "b": 1500, "c": -4500})

	is.NoErr(l.SettleUp("c", "a", 3000))
	is.Equal(l.Debts(), []Debt{{Debtor: "c", Creditor: "b", Amount: 1500}})
	assertNoBidirectional(is, l)
}

func TestFromDebtsMatchesReplay(t *testing.T) {
	is := isLib.New(t)

	replayed := New()
	is.NoErr(replayed.ApplyExpense("a", mustCompute(t, "shares", 10000, []string{"a", "b", "c"},
		split.Details{Shares: split.P("a", "2", "b", "1", "c", "1")})))
	is.NoErr(replayed.ApplyExpense("c", mustCompute(t, "amounts", 4000, []string{"a", "b"},
		split.Details{Amounts: split.P("a", "10", "b", "30")})))

	loaded, err := FromDebts(replayed.Debts())
	is.NoErr(err)
	is.Equal(loaded.Debts(), replayed.Debts())
}

func TestSummarize(t *testing.T) {
	is := isLib.New(t)

	is.Equal(New().Summarize(nil, "₹"), []string{"No outstanding debts."})

	l, err := FromDebts([]Debt{{"c@x", "a@x", 1250}, {"b@x", "a@x", 500}})
	is.NoErr(err)
	lines := l.Summarize(map[string]string{"a@x": "Asha", "b@x": "Bilal"}, "₹")
	is.Equal(lines, []string{
		"Bilal owes Asha ₹5.00",
		"c@x owes Asha ₹12.50",
	})
}

func TestRandomHistoriesPreserveBalances(t *testing.T) {
	is := isLib.New(t)
	rng := rand.New(rand.NewSource(42))
	people := []string{"a", "b", "c", "d", "e"}
	selectors := []string{"equal", "shares", "percent", "amounts"}

	for round := 0; round < 200; round++ {
		l := New()
		expected := map[string]money.Amount{}

		for step := 0; step < 12; step++ {
			if rng.Intn(4) == 0 {
				payer, receiver := people[rng.Intn(len(people))], people[rng.Intn(len(people))]
				if payer == receiver || l.Amount(payer, receiver) == 0 {
					continue
				}
				amount := money.Amount(rng.Int63n(int64(l.Amount(payer, receiver))) + 1)
				is.NoErr(l.SettleUp(payer, receiver, amount))
				expected[payer] += amount
				expected[receiver] -= amount
				assertNoBidirectional(is, l)
				continue
			}

			n := rng.Intn(len(people)) + 1
			participants := people[:n]
			payer := people[rng.Intn(len(people))]
			total := money.Amount(rng.Int63n(50000) + 100)
			details := split.Details{}
			selector := selectors[rng.Intn(len(selectors))]
			pairs := make([]string, 0, 2*n)
			switch selector {
			case "shares":
				for _, p := range participants {
					pairs = append(pairs, p, []string{"1", "2", "3"}[rng.Intn(3)])
				}
			case "percent":
				// whole percents with the leftover on a random participant
				base, extra := 100/n, rng.Intn(n)
				for i, p := range participants {
					pct := base
					if i == extra {
						pct += 100 - base*n
					}
					pairs = append(pairs, p, strconv.Itoa(pct))
				}
			case "amounts":
				var used money.Amount
				for i, p := range participants {
					v := total - used
					if i < n-1 {
						v = money.Amount(rng.Int63n(int64(total)/int64(n) + 1))
					}
					used += v
					pairs = append(pairs, p, v.String())
				}
			}
			rng.Shuffle(len(pairs)/2, func(i, j int) {
				pairs[2*i], pairs[2*j] = pairs[2*j], pairs[2*i]
				pairs[2*i+1], pairs[2*j+1] = pairs[2*j+1], pairs[2*i+1]
			})
			switch selector {
			case "shares":
				details.Shares = split.P(pairs...)
			case "percent":
				details.Percents = split.P(pairs...)
			case "amounts":
				details.Amounts = split.P(pairs...)
			}

			shares := mustCompute(t, selector, total, participants, details)
			is.Equal(shares.Total(), total)
			is.NoErr(l.ApplyExpense(payer, shares))
			for _, sh := range shares {
				if sh.Participant == payer {
					continue
				}
				expected[sh.Participant] -= sh.Amount
				expected[payer] += sh.Amount
			}
			assertNoBidirectional(is, l)
		}

		for p, v := range expected {
			if v == 0 {
				delete(expected, p)
			}
		}
		is.Equal(l.Balances(), expected)

		// at most one transfer fewer than the number of non-zero balances
		if len(expected) > 0 {
			is.True(l.Len() <= len(expected)-1)
		}
	}
}
