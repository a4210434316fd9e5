package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitsmart/internal/money"
)

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

var (
	hundred          = decimal.NewFromInt(100)
	percentTolerance = decimal.New(1, -6)
)

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Policy returns the policy identifier
func (s *PercentageStrategy) Policy() Policy {
	return PolicyPercent
}

// Validate checks coverage and that percentages sum to 100 (within 1e-6).
func (s *PercentageStrategy) Validate(total money.Amount, participants []string, details Details) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}
	if err := checkCoverage("percents", participants, details.Percents); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, e := range details.Percents {
		if e.Value.IsNegative() {
			return invalid("percent for %q cannot be negative", e.Key)
		}
		sum = sum.Add(e.Value)
	}
	if sum.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return invalid("percents must sum to 100, got %s", sum.String())
	}

	return nil
}

// Calculate computes round(total*pct/100) per entry in supplied order; the
// first supplied key absorbs the remainder.
func (s *PercentageStrategy) Calculate(total money.Amount, participants []string, details Details) (Shares, error) {
	if err := s.Validate(total, participants, details); err != nil {
		return nil, err
	}

	shares := make(Shares, len(details.Percents))
	for i, e := range details.Percents {
		part, err := money.FromDecimal(total.Decimal().Mul(e.Value).Div(hundred))
		if err != nil {
			return nil, invalid("percent for %q: %v", e.Key, err)
		}
		shares[i] = Share{Participant: e.Key, Amount: part}
	}

	return absorbRemainder(shares, total), nil
}
