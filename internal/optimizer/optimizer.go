// Package optimizer searches for the smallest monthly payment that repays a
// loan within a target number of months.
package optimizer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"github.com/iwvelando/mortgage-calculator/pkg/loans"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/iwvelando/mortgage-calculator/pkg/optimization"
	"github.com/iwvelando/mortgage-calculator/pkg/rules"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
)

const (
	fieldMonthlyPayment = "monthlyPayment"
	maxIterations       = 200
)

// Target describes a payment search.
type Target struct {
	LoanAmount     float64 `json:"loanAmount"`
	InterestRate   float64 `json:"interestRate"`
	OneTimePayment float64 `json:"oneTimePayment"`
	TargetMonths   int     `json:"targetMonths"`
	CurrentPayment float64 `json:"currentPayment"`
}

// Runner performs payment searches.
type Runner struct {
	logger    *zap.Logger
	tolerance float64
}

// NewRunner creates a runner that resolves payments to the nearest öre.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, tolerance: constants.CurrencyTolerance}
}

// Run bisects between the interest-only payment, which never amortizes, and
// a payment that clears the loan in its first month. Payoff time is
// non-increasing in the payment, so the upper bound always stays feasible.
func (r *Runner) Run(t Target) (optimization.Summary, error) {
	if err := validate(t); err != nil {
		return optimization.Summary{}, err
	}

	summary := optimization.Summary{
		Field:        fieldMonthlyPayment,
		TargetMonths: t.TargetMonths,
		Original:     t.CurrentPayment,
	}

	balance := t.LoanAmount - t.OneTimePayment
	if balance < rules.PaidOffThreshold {
		summary.Converged = true
		summary.Notes = append(summary.Notes, "loan is repaid by the one-time payment")
		return summary, nil
	}

	feasible := func(payment float64) (loans.PayoffResult, bool) {
		result := loans.TimeToPayoff(t.LoanAmount, payment, t.InterestRate, t.OneTimePayment)
		return result, !result.NonAmortizing() && result.TotalMonths() <= t.TargetMonths
	}

	lower := loans.CalculateInterestPayment(balance, t.InterestRate)
	upper := balance + lower
	best, ok := feasible(upper)
	if !ok {
		return optimization.Summary{}, fmt.Errorf("payment of %s does not repay the loan within %d months", format.SEK(upper), t.TargetMonths)
	}

	for summary.Iterations < maxIterations && upper-lower > r.tolerance {
		summary.Iterations++
		mid := lower + (upper-lower)/2
		if result, ok := feasible(mid); ok {
			upper, best = mid, result
		} else {
			lower = mid
		}
	}

	summary.Value = upper
	summary.Payoff = best
	summary.Converged = upper-lower <= r.tolerance

	if t.CurrentPayment > 0 {
		summary.Extra = summary.Value - t.CurrentPayment
		if summary.Extra <= 0 {
			summary.Notes = append(summary.Notes, fmt.Sprintf("the current payment of %s already meets the target", format.SEK(t.CurrentPayment)))
		}
	}
	if !summary.Converged {
		summary.Notes = append(summary.Notes, fmt.Sprintf("search stopped after %d iterations", summary.Iterations))
	}

	r.logger.Debug("payment search complete",
		zap.String("op", "optimizer.Run"),
		zap.Int("targetMonths", t.TargetMonths),
		zap.Float64("payment", summary.Value),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)
	return summary, nil
}

func validate(t Target) error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"loanAmount", t.LoanAmount},
		{"interestRate", t.InterestRate},
		{"oneTimePayment", t.OneTimePayment},
		{"currentPayment", t.CurrentPayment},
	} {
		if err := validation.ValidateNonNegative(f.name, f.value); err != nil {
			return err
		}
	}
	if t.TargetMonths < 1 || t.TargetMonths > rules.MaxPayoffMonths {
		return fmt.Errorf("%w: targetMonths must be between 1 and %d, got %d",
			validation.ErrInvalidInput, rules.MaxPayoffMonths, t.TargetMonths)
	}
	if !mathutil.IsFinite(t.LoanAmount - t.OneTimePayment) {
		return errors.New("loan balance is not finite")
	}
	return nil
}
