package scenarios

import (
	"testing"

	"github.com/iwvelando/mortgage-calculator/pkg/loans"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
)

func TestCatalog(t *testing.T) {
	expected := []string{
		"+1,000 SEK/month",
		"+2,000 SEK/month",
		"+5,000 SEK/month",
		"+50% payment",
		"Double payment",
	}
	offers := Catalog()
	if len(offers) != len(expected) {
		t.Fatalf("expected %d offers, got %d", len(expected), len(offers))
	}
	for i, label := range expected {
		if offers[i].Label != label {
			t.Errorf("offer %d label = %q, expected %q", i, offers[i].Label, label)
		}
	}

	offers[0].FlatAmount = 42
	if Catalog()[0].FlatAmount != 1000 {
		t.Error("mutating the returned catalog changed the offers")
	}
}

func TestExtraPaymentScenarios(t *testing.T) {
	const (
		loan = 2000000.0
		base = 7500.0
		rate = 3.5
	)
	result := ExtraPaymentScenarios(loan, base, rate)
	if len(result) != 5 {
		t.Fatalf("expected 5 scenarios, got %d", len(result))
	}

	extras := []float64{1000, 2000, 5000, 3750, 7500}
	baseline := loan * 0.035 * 30
	for i, scenario := range result {
		t.Run(scenario.Label, func(t *testing.T) {
			if scenario.Extra != extras[i] {
				t.Errorf("Extra = %v, expected %v", scenario.Extra, extras[i])
			}
			if scenario.MonthlyPayment != base+extras[i] {
				t.Errorf("MonthlyPayment = %v, expected %v", scenario.MonthlyPayment, base+extras[i])
			}

			payoff := loans.TimeToPayoff(loan, scenario.MonthlyPayment, rate, 0)
			if scenario.TimeToPayoff != payoff {
				t.Errorf("TimeToPayoff = %+v, expected %+v", scenario.TimeToPayoff, payoff)
			}

			months := payoff.TotalMonths()
			totalInterest := scenario.MonthlyPayment*float64(months) - loan
			if !mathutil.WithinTolerance(scenario.TotalInterest, totalInterest, 1e-6) {
				t.Errorf("TotalInterest = %v, expected %v", scenario.TotalInterest, totalInterest)
			}
			if !mathutil.WithinTolerance(scenario.InterestSaved, baseline-totalInterest, 1e-6) {
				t.Errorf("InterestSaved = %v, expected %v", scenario.InterestSaved, baseline-totalInterest)
			}
			if scenario.MonthsSaved != 360-months {
				t.Errorf("MonthsSaved = %d, expected %d", scenario.MonthsSaved, 360-months)
			}
		})
	}
}

func TestDoublePaymentSavesAtLeastAsMuchAsFlatThousand(t *testing.T) {
	tests := []struct {
		name string
		loan float64
		base float64
		rate float64
	}{
		{"Reference mortgage", 2000000, 7500, 3.5},
		{"Small base payment", 500000, 1200, 2.0},
		{"Large base payment", 3000000, 25000, 4.5},
		{"Base below interest", 2000000, 5000, 3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtraPaymentScenarios(tt.loan, tt.base, tt.rate)
			var plusThousand, double ExtraPaymentScenario
			for _, s := range result {
				switch s.Label {
				case "+1,000 SEK/month":
					plusThousand = s
				case "Double payment":
					double = s
				}
			}
			if double.MonthsSaved < plusThousand.MonthsSaved {
				t.Errorf("double payment saved %d months, +1,000 saved %d", double.MonthsSaved, plusThousand.MonthsSaved)
			}
		})
	}
}

func TestExtraPaymentScenariosNonAmortizing(t *testing.T) {
	// 1,000 SEK/month on a 2,000,000 loan at 3.5 % cannot cover 5,833 SEK interest.
	result := ExtraPaymentScenarios(2000000, 1000, 3.5)

	first := result[0]
	if !first.TimeToPayoff.NonAmortizing() {
		t.Fatalf("expected sentinel payoff for %s, got %+v", first.Label, first.TimeToPayoff)
	}
	if first.MonthsSaved != 360-99*12 {
		t.Errorf("MonthsSaved = %d, expected %d", first.MonthsSaved, 360-99*12)
	}

	third := result[2] // +5,000 => 6,000 > 5,833
	if third.TimeToPayoff.NonAmortizing() {
		t.Errorf("expected %s to amortize", third.Label)
	}
}
