package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/internal/snapshot"
)

const tripJSON = `{
  "users": [
    {"name": "Asha", "email": "a@x"},
    {"name": "Bilal", "email": "b@x"},
    {"name": "Chen", "email": "c@x"}
  ],
  "groups": [
    {
      "name": "Trip",
      "members": ["a@x", "b@x", "c@x"],
      "expenses": [
        {"description": "Hotel", "amount": 300, "payer": "a@x", "participants": [], "strategy": "equal", "details": {}},
        {"description": "Taxi", "amount": "300.00", "payer": "b@x", "participants": ["a@x", "b@x", "c@x"],
         "strategy": "percent", "details": {"percents": {"c@x": 50, "a@x": 25, "b@x": 25}}}
      ],
      "debts": [
        {"debtor": "c@x", "creditor": "a@x", "amount": 125},
        {"debtor": "c@x", "creditor": "b@x", "amount": 125}
      ]
    }
  ]
}`

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunPrintsSummary(t *testing.T) {
	path := writeFixture(t, tripJSON)

	for _, mode := range []string{"debts", "replay"} {
		t.Run(mode, func(t *testing.T) {
			var out bytes.Buffer
			if err := run([]string{"-file", path, "-mode", mode, "-currency", "₹", "-check"}, &out); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			want := "== Trip ==\nChen owes Asha ₹125.00\nChen owes Bilal ₹125.00\n"
			if out.String() != want {
				t.Errorf("run() output = %q, want %q", out.String(), want)
			}
		})
	}
}

func TestRunCheckDetectsDrift(t *testing.T) {
	path := writeFixture(t, strings.Replace(tripJSON, `"amount": 125`, `"amount": 120`, 1))

	err := run([]string{"-check", path}, &bytes.Buffer{})
	if !errors.Is(err, ledger.ErrInconsistent) {
		t.Fatalf("run() error = %v, want ErrInconsistent", err)
	}
}

func TestRunSaveWritesRebuiltDebts(t *testing.T) {
	path := writeFixture(t, tripJSON)
	out := filepath.Join(t.TempDir(), "out.json")

	if err := run([]string{"-file", path, "-mode", "replay", "-save", out}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	doc, err := snapshot.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	want := []ledger.Debt{
		{Debtor: "c@x", Creditor: "a@x", Amount: 12500},
		{Debtor: "c@x", Creditor: "b@x", Amount: 12500},
	}
	got := doc.Groups[0].Debts
	if len(got) != len(want) {
		t.Fatalf("saved debts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("saved debt %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no file", nil},
		{"bad mode", []string{"-mode", "both", "x.json"}},
		{"missing file", []string{filepath.Join(os.TempDir(), "nope", "data.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args, &bytes.Buffer{}); err == nil {
				t.Error("run() expected error")
			}
		})
	}
}
