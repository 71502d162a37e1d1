// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/mortgage-calculator/pkg/finance"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/scenarios"
)

// ReferenceLoan is a typical Stockholm apartment loan: 62.5 % loan-to-value,
// 3.1 times income, 1 % amortization.
func ReferenceLoan() mortgage.LoanScenario {
	return mortgage.LoanScenario{
		OriginalLoanAmount: 3000000,
		CurrentLoanAmount:  2500000,
		PropertyValue:      4000000,
		AnnualIncome:       800000,
		InterestRate:       3.5,
		LoanTermYears:      30,
	}
}

// FindScenario finds a scenario by label in the results slice.
// Returns a pointer to the scenario if found, nil otherwise.
func FindScenario(results []scenarios.ExtraPaymentScenario, label string) *scenarios.ExtraPaymentScenario {
	for i := range results {
		if results[i].Label == label {
			return &results[i]
		}
	}
	return nil
}

// FindComparison finds a comparison by scenario label.
func FindComparison(results []finance.InvestmentComparison, label string) *finance.InvestmentComparison {
	for i := range results {
		if results[i].Label == label {
			return &results[i]
		}
	}
	return nil
}
