package validation

import (
	"fmt"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/iwvelando/mortgage-calculator/pkg/rules"
	"github.com/iwvelando/mortgage-calculator/pkg/scenarios"
)

// ValidateExtraPaymentScenario checks a scenario supplied from outside the
// engine before it drives a month-by-month simulation. The payoff time must
// lie within the projection ceiling so the work stays bounded.
func ValidateExtraPaymentScenario(s scenarios.ExtraPaymentScenario) error {
	if err := ValidateNonNegative("extra", s.Extra); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Label, err)
	}
	if err := ValidateNonNegative("monthlyPayment", s.MonthlyPayment); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Label, err)
	}
	if !mathutil.IsFinite(s.TotalInterest) || !mathutil.IsFinite(s.InterestSaved) {
		return fmt.Errorf("%w: scenario %q: interest amounts must be finite", ErrInvalidInput, s.Label)
	}

	payoff := s.TimeToPayoff
	if payoff.Years < 0 || payoff.Months < 0 || payoff.Months >= constants.MonthsPerYear {
		return fmt.Errorf("%w: scenario %q: invalid payoff time of %d years %d months",
			ErrInvalidInput, s.Label, payoff.Years, payoff.Months)
	}
	if payoff.Years > rules.MaxPayoffMonths/constants.MonthsPerYear || payoff.TotalMonths() > rules.MaxPayoffMonths {
		return fmt.Errorf("%w: scenario %q: payoff time exceeds %d months",
			ErrInvalidInput, s.Label, rules.MaxPayoffMonths)
	}
	return nil
}
