// Package loans provides the month-by-month payoff projection used wherever
// the time to repay a loan under a fixed monthly payment is needed.
package loans

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/iwvelando/mortgage-calculator/pkg/rules"
)

// ErrNonAmortizing is returned by PayoffResult.Err when the monthly payment
// does not exceed the interest on the opening balance.
var ErrNonAmortizing = errors.New("monthly payment does not cover interest")

// PayoffResult is the time needed to repay a loan. The non-amortizing
// sentinel is {99, 0, balance} with NeverRepaid set; a loan that really
// takes 99 years leaves NeverRepaid false. Check NonAmortizing before
// treating the duration as finite.
type PayoffResult struct {
	Years        int     `json:"years" yaml:"years"`
	Months       int     `json:"months" yaml:"months"`
	FinalBalance float64 `json:"finalBalance" yaml:"finalBalance"`
	NeverRepaid  bool    `json:"neverRepaid,omitempty" yaml:"neverRepaid,omitempty"`
}

// TotalMonths returns the duration in months.
func (p PayoffResult) TotalMonths() int {
	return p.Years*constants.MonthsPerYear + p.Months
}

// NonAmortizing reports whether p is the sentinel for a payment that never
// repays the loan.
func (p PayoffResult) NonAmortizing() bool {
	return p.NeverRepaid
}

// Err returns ErrNonAmortizing for the sentinel result and nil otherwise.
func (p PayoffResult) Err() error {
	if p.NonAmortizing() {
		return fmt.Errorf("%w: remaining balance %.2f", ErrNonAmortizing, p.FinalBalance)
	}
	return nil
}

// MonthlyBalance is one month of a payoff projection.
type MonthlyBalance struct {
	Month            int     `json:"month"`
	Payment          float64 `json:"payment"`
	Interest         float64 `json:"interest"`
	Principal        float64 `json:"principal"`
	RemainingBalance float64 `json:"remainingBalance"`
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * mathutil.MonthlyRate(annualInterestRate)
}

// CoversInterest reports whether monthlyPayment repays any principal on the
// given opening balance.
func CoversInterest(balance, monthlyPayment, annualInterestRate float64) bool {
	return monthlyPayment > CalculateInterestPayment(balance, annualInterestRate)
}

// TimeToPayoff projects the loan month by month under a fixed payment after
// an optional one-time payment. The projection stops once the balance drops
// below one krona or after 1200 months. A payment that does not exceed the
// first month's interest returns the sentinel {99, 0, balance}.
func TimeToPayoff(loanAmount, monthlyPayment, annualInterestRate, oneTimePayment float64) PayoffResult {
	months, balance, _ := project(loanAmount, monthlyPayment, annualInterestRate, oneTimePayment, false)
	if months < 0 {
		return PayoffResult{Years: rules.NonAmortizingYears, Months: 0, FinalBalance: balance, NeverRepaid: true}
	}
	return PayoffResult{
		Years:        months / constants.MonthsPerYear,
		Months:       months % constants.MonthsPerYear,
		FinalBalance: balance,
	}
}

// ProjectBalances returns the month-by-month series behind TimeToPayoff. It
// is empty for a non-amortizing payment.
func ProjectBalances(loanAmount, monthlyPayment, annualInterestRate, oneTimePayment float64) []MonthlyBalance {
	_, _, series := project(loanAmount, monthlyPayment, annualInterestRate, oneTimePayment, true)
	if series == nil {
		return []MonthlyBalance{}
	}
	return series
}

// project runs the payoff loop. months is -1 for a non-amortizing payment.
func project(loanAmount, monthlyPayment, annualInterestRate, oneTimePayment float64, record bool) (int, float64, []MonthlyBalance) {
	balance := loanAmount - oneTimePayment
	if !CoversInterest(balance, monthlyPayment, annualInterestRate) {
		return -1, balance, nil
	}

	var series []MonthlyBalance
	months := 0
	for balance > 0 && months < rules.MaxPayoffMonths {
		interest := CalculateInterestPayment(balance, annualInterestRate)
		principal := math.Min(balance, monthlyPayment-interest)

		balance -= principal
		months++

		if balance < rules.PaidOffThreshold {
			balance = 0
		}
		if record {
			series = append(series, MonthlyBalance{
				Month:            months,
				Payment:          interest + principal,
				Interest:         interest,
				Principal:        principal,
				RemainingBalance: balance,
			})
		}
		if balance == 0 {
			break
		}
	}
	return months, balance, series
}

// ClosedFormPayoffMonths is the logarithmic annuity formula for the number of
// months needed to repay loanAmount. ok is false in exactly the cases where
// TimeToPayoff returns the non-amortizing sentinel.
func ClosedFormPayoffMonths(loanAmount, monthlyPayment, annualInterestRate float64) (months int, ok bool) {
	if !CoversInterest(loanAmount, monthlyPayment, annualInterestRate) {
		return 0, false
	}
	monthlyRate := mathutil.MonthlyRate(annualInterestRate)
	if monthlyRate == 0 {
		return int(math.Ceil(loanAmount / monthlyPayment)), true
	}
	n := math.Log(monthlyPayment/(monthlyPayment-loanAmount*monthlyRate)) / math.Log(1+monthlyRate)
	return int(math.Ceil(n)), true
}
