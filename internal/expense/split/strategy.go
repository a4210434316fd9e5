package split

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fkhayef/splitsmart/internal/money"
)

// Policy identifies one of the closed set of split policies.
type Policy string

const (
	PolicyEqual   Policy = "equal"
	PolicyAmounts Policy = "amounts"
	PolicyPercent Policy = "percent"
	PolicyShares  Policy = "shares"
)

// aliases maps every accepted selector spelling onto its policy.
var aliases = map[string]Policy{
	"equal":      PolicyEqual,
	"unequal":    PolicyAmounts,
	"amounts":    PolicyAmounts,
	"exact":      PolicyAmounts,
	"percent":    PolicyPercent,
	"percentage": PolicyPercent,
	"percents":   PolicyPercent,
	"shares":     PolicyShares,
	"ratio":      PolicyShares,
}

// ParsePolicy resolves a selector string (case-insensitive, aliases allowed).
func ParsePolicy(selector string) (Policy, error) {
	p, ok := aliases[strings.ToLower(strings.TrimSpace(selector))]
	if !ok {
		return "", invalid("unknown split type %q", selector)
	}
	return p, nil
}

// Share is one participant's portion of an expense.
type Share struct {
	Participant string       `json:"participant"`
	Amount      money.Amount `json:"amount"`
}

// Shares is the result of a split. Order follows the participant list for
// Equal and the supplied parameter order for the other policies.
type Shares []Share

// Total returns the sum of all shares.
func (s Shares) Total() money.Amount {
	var total money.Amount
	for _, sh := range s {
		total += sh.Amount
	}
	return total
}

// Map returns the shares keyed by participant.
func (s Shares) Map() map[string]money.Amount {
	m := make(map[string]money.Amount, len(s))
	for _, sh := range s {
		m[sh.Participant] += sh.Amount
	}
	return m
}

// Strategy is implemented by exactly the four policies in this package.
type Strategy interface {
	// Policy returns the policy this strategy implements.
	Policy() Policy

	// Validate checks the inputs without computing anything.
	Validate(total money.Amount, participants []string, details Details) error

	// Calculate computes the shares; they always sum to total.
	Calculate(total money.Amount, participants []string, details Details) (Shares, error)
}

// Factory creates split strategies based on the requested policy
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy for a policy.
func (f *Factory) Create(policy Policy) (Strategy, error) {
	switch policy {
	case PolicyEqual:
		return &EqualStrategy{}, nil
	case PolicyAmounts:
		return &AmountsStrategy{}, nil
	case PolicyPercent:
		return &PercentageStrategy{}, nil
	case PolicyShares:
		return &SharesStrategy{}, nil
	default:
		return nil, invalid("unknown split type %q", policy)
	}
}

// CreateFromString creates a strategy from a selector string (useful for API requests)
func (f *Factory) CreateFromString(selector string) (Strategy, error) {
	policy, err := ParsePolicy(selector)
	if err != nil {
		return nil, err
	}
	return f.Create(policy)
}

// Compute resolves the selector and calculates the shares in one step.
func Compute(selector string, total money.Amount, participants []string, details Details) (Shares, error) {
	strategy, err := NewSplitStrategyFactory().CreateFromString(selector)
	if err != nil {
		return nil, err
	}
	return strategy.Calculate(total, participants, details)
}

// ErrInvalidSplit is the single error kind for every split validation failure.
var ErrInvalidSplit = errors.New("invalid split configuration")

var (
	ErrNoParticipants   = fmt.Errorf("%w: at least one participant is required", ErrInvalidSplit)
	ErrNonPositiveTotal = fmt.Errorf("%w: amount must be positive", ErrInvalidSplit)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSplit, fmt.Sprintf(format, args...))
}

// validateCommon checks the rules shared by every policy.
func validateCommon(total money.Amount, participants []string) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if total <= 0 {
		return ErrNonPositiveTotal
	}
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, dup := seen[p]; dup {
			return invalid("participant %q listed more than once", p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// checkCoverage enforces that params and participants name exactly the same keys.
func checkCoverage(name string, participants []string, params Params) error {
	if len(params) == 0 {
		return invalid("%s split requires details[%q]", name, name)
	}
	want := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		want[p] = struct{}{}
	}
	got := make(map[string]struct{}, len(params))
	var extra []string
	for _, e := range params {
		if _, dup := got[e.Key]; dup {
			return invalid("%s keys must be unique, %q repeated", name, e.Key)
		}
		got[e.Key] = struct{}{}
		if _, ok := want[e.Key]; !ok {
			extra = append(extra, e.Key)
		}
	}
	var missing []string
	for _, p := range participants {
		if _, ok := got[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return invalid("%s keys must match participants. Missing=%v, Extra=%v", name, missing, extra)
	}
	return nil
}

// absorbRemainder adds total-minus-sum to the first share.
func absorbRemainder(shares Shares, total money.Amount) Shares {
	if len(shares) == 0 {
		return shares
	}
	if rem := total - shares.Total(); rem != 0 {
		shares[0].Amount += rem
	}
	return shares
}
