package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitsmart/internal/money"
)

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense equally; the first participant absorbs the rounding
// remainder
// =============================================================================

// EqualStrategy implements the Strategy interface for even splits
type EqualStrategy struct{}

// Policy returns the policy identifier
func (s *EqualStrategy) Policy() Policy {
	return PolicyEqual
}

// Validate checks if the inputs are valid for an equal split. Details are ignored.
func (s *EqualStrategy) Validate(total money.Amount, participants []string, _ Details) error {
	return validateCommon(total, participants)
}

// Calculate gives everybody round(total/n) and hands the leftover cents to
// participants[0], so the result always sums to total.
func (s *EqualStrategy) Calculate(total money.Amount, participants []string, details Details) (Shares, error) {
	if err := s.Validate(total, participants, details); err != nil {
		return nil, err
	}

	n := decimal.NewFromInt(int64(len(participants)))
	base := money.Amount(decimal.NewFromInt(total.Cents()).Div(n).Round(0).IntPart())

	shares := make(Shares, len(participants))
	for i, p := range participants {
		shares[i] = Share{Participant: p, Amount: base}
	}

	return absorbRemainder(shares, total), nil
}
