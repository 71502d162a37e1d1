package validation

import (
	"errors"
	"fmt"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

// ErrInvalidInput is wrapped by every validation failure on calculation input.
var ErrInvalidInput = errors.New("invalid input")

// highLTVWarning is the loan-to-value above which Swedish lenders refuse new
// mortgages (bolånetaket).
const highLTVWarning = 0.85

// ValidateLoanScenario rejects input the calculation engine cannot handle
// meaningfully: non-finite numbers, non-positive denominators and negative
// amounts or rates.
func ValidateLoanScenario(s mortgage.LoanScenario) error {
	fields := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"originalLoanAmount", s.OriginalLoanAmount, true},
		{"currentLoanAmount", s.CurrentLoanAmount, false},
		{"propertyValue", s.PropertyValue, true},
		{"annualIncome", s.AnnualIncome, true},
		{"interestRate", s.InterestRate, false},
	}
	for _, f := range fields {
		if !mathutil.IsFinite(f.value) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, f.name)
		}
		if f.positive && f.value <= 0 {
			return fmt.Errorf("%w: %s must be greater than 0, got %v", ErrInvalidInput, f.name, f.value)
		}
		if f.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidInput, f.name, f.value)
		}
	}
	if s.LoanTermYears <= 0 {
		return fmt.Errorf("%w: loanTermYears must be greater than 0, got %d", ErrInvalidInput, s.LoanTermYears)
	}
	return nil
}

// ValidateInvestmentAssumptions checks the expected return and account type
// used by the mortgage-versus-investment comparison.
func ValidateInvestmentAssumptions(expectedReturn float64, accountType string) error {
	if !mathutil.IsFinite(expectedReturn) || expectedReturn <= -100 {
		return fmt.Errorf("%w: expectedReturn must be a finite percentage above -100, got %v", ErrInvalidInput, expectedReturn)
	}
	if accountType != constants.AccountTypeISK && accountType != constants.AccountTypeStandard {
		return fmt.Errorf("%w: expected account type of %s or %s, got %q",
			ErrInvalidInput, constants.AccountTypeISK, constants.AccountTypeStandard, accountType)
	}
	return nil
}

// ScenarioWarnings returns non-fatal observations about a valid scenario.
func ScenarioWarnings(s mortgage.LoanScenario) []string {
	var warnings []string
	if s.CurrentLoanAmount > s.OriginalLoanAmount {
		warnings = append(warnings, fmt.Sprintf("current loan amount %.0f exceeds original loan amount %.0f",
			s.CurrentLoanAmount, s.OriginalLoanAmount))
	}
	if ltv := mortgage.LoanToValue(s.CurrentLoanAmount, s.PropertyValue); ltv > highLTVWarning {
		warnings = append(warnings, fmt.Sprintf("loan-to-value %.1f%% is above the %.0f%% mortgage cap",
			ltv*constants.PercentageMultiplier, highLTVWarning*constants.PercentageMultiplier))
	}
	return warnings
}

// ValidateNonNegative checks that a named amount is finite and not negative.
func ValidateNonNegative(name string, value float64) error {
	if !mathutil.IsFinite(value) {
		return fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, name)
	}
	if value < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidInput, name, value)
	}
	return nil
}
