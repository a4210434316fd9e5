package money

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in  string
		out Amount
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half away from zero
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-1.5", -150, true},
		{"333.335", 33334, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFromDecimalRoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   string
		want Amount
	}{
		{"0.005", 1},
		{"-0.005", -1},
		{"33.333333", 3333},
		{"66.666666", 6667},
	}
	for _, tt := range tests {
		got, err := FromDecimal(decimal.RequireFromString(tt.in))
		if err != nil || got != tt.want {
			t.Errorf("FromDecimal(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFromFloat(t *testing.T) {
	if got, err := FromFloat(0.1 + 0.2); err != nil || got != 30 {
		t.Errorf("FromFloat(0.1+0.2) = %d, %v, want 30", got, err)
	}
	if got, err := FromFloat(1000); err != nil || got != 100000 {
		t.Errorf("FromFloat(1000) = %d, %v, want 100000", got, err)
	}
	if _, err := FromFloat(1e300); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("FromFloat(1e300) error = %v, want ErrInvalidAmount", err)
	}
}

func TestParseRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		in   string
		want Amount
		ok   bool
	}{
		{"10000000000000", Max, true},
		{"-10000000000000", -Max, true},
		{"9999999999999.994", Max - 1, true},
		{"10000000000000.01", 0, false},
		{"184467440737095516.17", 0, false},
		{"1e30", 0, false},
		{"-1e30", 0, false},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("Parse(%q) = %d, %v, want %d", tt.in, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Parse(%q) = %d, %v, want ErrInvalidAmount", tt.in, got, err)
		}
	}
}

func TestUnmarshalJSONRejectsOutOfRange(t *testing.T) {
	var a Amount
	if err := json.Unmarshal([]byte(`184467440737095516.17`), &a); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Unmarshal() error = %v, want ErrInvalidAmount", err)
	}
}

func TestFormat(t *testing.T) {
	if got := Amount(33334).String(); got != "333.34" {
		t.Errorf("String() = %q", got)
	}
	if got := Amount(5).Format("₹"); got != "₹0.05" {
		t.Errorf("Format() = %q", got)
	}
	if got := Amount(-1250).Format("$"); got != "-$12.50" {
		t.Errorf("Format() = %q", got)
	}
}

func TestJSON(t *testing.T) {
	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": 12.5, "b": "7,25"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != 1250 || v.B != 725 {
		t.Fatalf("got a=%d b=%d", v.A, v.B)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":12.50,"b":7.25}` {
		t.Errorf("marshal = %s", out)
	}
}
