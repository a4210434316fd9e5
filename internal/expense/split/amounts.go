package split

import (
	"github.com/fkhayef/splitsmart/internal/money"
)

// =============================================================================
// EXPLICIT AMOUNTS STRATEGY
// Each participant owes a specific exact amount (must sum to total)
// =============================================================================

// AmountsStrategy implements the Strategy interface for exact amount splits
type AmountsStrategy struct{}

// Policy returns the policy identifier
func (s *AmountsStrategy) Policy() Policy {
	return PolicyAmounts
}

// Validate checks coverage and that the rounded amounts sum to the total exactly.
func (s *AmountsStrategy) Validate(total money.Amount, participants []string, details Details) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}
	if err := checkCoverage("amounts", participants, details.Amounts); err != nil {
		return err
	}

	_, err := roundAmounts(total, details.Amounts)
	return err
}

// roundAmounts rounds each entry to the cent and checks the sum against total.
func roundAmounts(total money.Amount, params Params) (Shares, error) {
	shares := make(Shares, len(params))
	var sum money.Amount
	for i, e := range params {
		v, err := money.FromDecimal(e.Value)
		if err != nil {
			return nil, invalid("amount for %q: %v", e.Key, err)
		}
		if v < 0 {
			return nil, invalid("amount for %q cannot be negative", e.Key)
		}
		sum += v
		shares[i] = Share{Participant: e.Key, Amount: v}
	}
	if sum != total {
		return nil, invalid("amounts must sum to total: %s != %s", sum, total)
	}
	return shares, nil
}

// Calculate returns the supplied amounts, rounded to the cent, in supplied order.
func (s *AmountsStrategy) Calculate(total money.Amount, participants []string, details Details) (Shares, error) {
	if err := validateCommon(total, participants); err != nil {
		return nil, err
	}
	if err := checkCoverage("amounts", participants, details.Amounts); err != nil {
		return nil, err
	}

	return roundAmounts(total, details.Amounts)
}
