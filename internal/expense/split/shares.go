package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitsmart/internal/money"
)

// =============================================================================
// RATIO SPLIT STRATEGY
// Divides the expense in proportion to integer weights
// =============================================================================

// SharesStrategy implements the Strategy interface for weighted splits
type SharesStrategy struct{}

// Policy returns the policy identifier
func (s *SharesStrategy) Policy() Policy {
	return PolicyShares
}

// Validate checks coverage, integer non-negative weights and a positive total weight.
func (s *SharesStrategy) Validate(total money.Amount, participants []string, details Details) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}
	if err := checkCoverage("shares", participants, details.Shares); err != nil {
		return err
	}

	weight := decimal.Zero
	for _, e := range details.Shares {
		if !e.Value.IsInteger() {
			return invalid("shares for %q must be a whole number, got %s", e.Key, e.Value.String())
		}
		if e.Value.IsNegative() {
			return invalid("shares for %q cannot be negative", e.Key)
		}
		weight = weight.Add(e.Value)
	}
	if !weight.IsPositive() {
		return invalid("total shares must be positive")
	}

	return nil
}

// Calculate computes round(total*w/W) per entry in supplied order; the first
// supplied key absorbs the remainder.
func (s *SharesStrategy) Calculate(total money.Amount, participants []string, details Details) (Shares, error) {
	if err := s.Validate(total, participants, details); err != nil {
		return nil, err
	}

	weight := decimal.Zero
	for _, e := range details.Shares {
		weight = weight.Add(e.Value)
	}

	cents := decimal.NewFromInt(total.Cents())
	shares := make(Shares, len(details.Shares))
	for i, e := range details.Shares {
		part := cents.Mul(e.Value).Div(weight).Round(0).IntPart()
		shares[i] = Share{Participant: e.Key, Amount: money.Amount(part)}
	}

	return absorbRemainder(shares, total), nil
}
