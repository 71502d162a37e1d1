// Package mortgage evaluates a single Swedish mortgage: the required
// amortization rate, the monthly payment breakdown, the bank stress test and
// a yearly amortization schedule.
//
// The functions in this package do not validate their inputs. A zero
// property value, income or original loan amount produces NaN or infinite
// ratios which propagate into the result; callers are expected to reject
// such input first (see pkg/validation).
package mortgage

import (
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/iwvelando/mortgage-calculator/pkg/rules"
)

// LoanScenario holds the inputs for one mortgage evaluation.
type LoanScenario struct {
	OriginalLoanAmount float64 `json:"originalLoanAmount" yaml:"originalLoanAmount"`
	CurrentLoanAmount  float64 `json:"currentLoanAmount" yaml:"currentLoanAmount"`
	PropertyValue      float64 `json:"propertyValue" yaml:"propertyValue"`
	AnnualIncome       float64 `json:"annualIncome" yaml:"annualIncome"`
	InterestRate       float64 `json:"interestRate" yaml:"interestRate"` // annual, percent
	LoanTermYears      int     `json:"loanTermYears" yaml:"loanTermYears"`
}

// YearEntry is one row of the yearly amortization schedule.
type YearEntry struct {
	Year               int     `json:"year" yaml:"year"`
	RemainingLoan      float64 `json:"remainingLoan" yaml:"remainingLoan"`
	YearlyAmortization float64 `json:"yearlyAmortization" yaml:"yearlyAmortization"`
	YearlyInterest     float64 `json:"yearlyInterest" yaml:"yearlyInterest"`
	TotalPayment       float64 `json:"totalPayment" yaml:"totalPayment"`
}

// Evaluation is the result of evaluating a LoanScenario. All amounts are
// unrounded.
type Evaluation struct {
	MonthlyAmortization      float64     `json:"monthlyAmortization" yaml:"monthlyAmortization"`
	MonthlyInterest          float64     `json:"monthlyInterest" yaml:"monthlyInterest"`
	TotalMonthlyPayment      float64     `json:"totalMonthlyPayment" yaml:"totalMonthlyPayment"`
	EffectiveInterestRate    float64     `json:"effectiveInterestRate" yaml:"effectiveInterestRate"`
	AmortizationRatePct      float64     `json:"amortizationRate" yaml:"amortizationRate"`
	DebtToIncomePct          float64     `json:"debtToIncome" yaml:"debtToIncome"`
	StressTestMonthlyPayment float64     `json:"stressTestMonthlyPayment" yaml:"stressTestMonthlyPayment"`
	IsAffordable             bool        `json:"isAffordable" yaml:"isAffordable"`
	YearlySchedule           []YearEntry `json:"schedule" yaml:"schedule"`
	LoanPercentage           float64     `json:"loanPercentage" yaml:"loanPercentage"`
}

// LoanToValue returns currentLoan / propertyValue.
func LoanToValue(currentLoan, propertyValue float64) float64 {
	return currentLoan / propertyValue
}

// DebtToIncome returns currentLoan / annualIncome.
func DebtToIncome(currentLoan, annualIncome float64) float64 {
	return currentLoan / annualIncome
}

// AmortizationRate resolves the required annual amortization rate as a
// fraction: the LTV band rate plus one percentage point when the loan
// exceeds 4.5 times the gross annual income.
func AmortizationRate(currentLoan, propertyValue, annualIncome float64) float64 {
	rate := rules.BandRate(LoanToValue(currentLoan, propertyValue))
	if DebtToIncome(currentLoan, annualIncome) > rules.DebtToIncomeLimit {
		rate += rules.DebtToIncomeAddOn
	}
	return rate
}

// StressTestPayment returns the monthly payment at the stressed rate,
// keeping the regular amortization.
func StressTestPayment(currentLoan, interestRatePct, monthlyAmortization float64) float64 {
	return currentLoan*mathutil.MonthlyRate(rules.StressRate(interestRatePct)) + monthlyAmortization
}

// IsAffordable reports whether the stressed payment stays strictly below
// 40 % of the gross monthly income.
func IsAffordable(stressPayment, annualIncome float64) bool {
	return stressPayment < annualIncome/constants.MonthsPerYear*rules.AffordabilityIncomeShare
}

// Evaluate computes the monthly breakdown, stress test and yearly schedule
// for a scenario.
func Evaluate(s LoanScenario) Evaluation {
	amortizationRate := AmortizationRate(s.CurrentLoanAmount, s.PropertyValue, s.AnnualIncome)

	monthlyAmortization := s.CurrentLoanAmount * amortizationRate / constants.MonthsPerYear
	monthlyInterest := s.CurrentLoanAmount * mathutil.MonthlyRate(s.InterestRate)
	stressPayment := StressTestPayment(s.CurrentLoanAmount, s.InterestRate, monthlyAmortization)

	return Evaluation{
		MonthlyAmortization:      monthlyAmortization,
		MonthlyInterest:          monthlyInterest,
		TotalMonthlyPayment:      monthlyAmortization + monthlyInterest,
		EffectiveInterestRate:    s.InterestRate,
		AmortizationRatePct:      amortizationRate * constants.PercentageMultiplier,
		DebtToIncomePct:          DebtToIncome(s.CurrentLoanAmount, s.AnnualIncome) * constants.PercentageMultiplier,
		StressTestMonthlyPayment: stressPayment,
		IsAffordable:             IsAffordable(stressPayment, s.AnnualIncome),
		YearlySchedule:           YearlySchedule(s.CurrentLoanAmount, s.InterestRate, amortizationRate, s.LoanTermYears),
		LoanPercentage:           s.CurrentLoanAmount / s.OriginalLoanAmount * constants.PercentageMultiplier,
	}
}

// YearlySchedule projects the loan one year at a time. Amortization and
// interest are both charged on the balance at the start of the year; the
// balance is not clamped at zero. This is deliberately coarser than the
// monthly projection in pkg/loans and the two must not be merged.
func YearlySchedule(initialLoan, interestRatePct, amortizationRate float64, years int) []YearEntry {
	if years <= 0 {
		return []YearEntry{}
	}

	schedule := make([]YearEntry, 0, years)
	remaining := initialLoan
	for year := 1; year <= years; year++ {
		amortization := remaining * amortizationRate
		interest := remaining * mathutil.PercentToFraction(interestRatePct)
		remaining -= amortization

		schedule = append(schedule, YearEntry{
			Year:               year,
			RemainingLoan:      remaining,
			YearlyAmortization: amortization,
			YearlyInterest:     interest,
			TotalPayment:       amortization + interest,
		})
	}
	return schedule
}
