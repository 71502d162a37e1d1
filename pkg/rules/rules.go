// Package rules holds the Swedish regulatory and tax constants used by the
// mortgage calculation engine. Everything here is read-only.
package rules

// RateBand maps a loan-to-value threshold to the required annual
// amortization rate. A loan qualifies for a band when its LTV is strictly
// greater than ThresholdLTV.
type RateBand struct {
	ThresholdLTV float64 `json:"thresholdLtv"`
	AnnualRate   float64 `json:"annualRate"` // fraction, 0.02 == 2 %
}

// AnnualRatePct returns the band rate in percent.
func (b RateBand) AnnualRatePct() float64 {
	return b.AnnualRate * 100
}

// Amortization requirements (Finansinspektionen).
var rateBands = [...]RateBand{
	{ThresholdLTV: 0.70, AnnualRate: 0.02},
	{ThresholdLTV: 0.50, AnnualRate: 0.01},
	{ThresholdLTV: 0, AnnualRate: 0},
}

const (
	// DebtToIncomeLimit is the loan to gross annual income ratio (450 %)
	// above which an extra amortization requirement applies.
	DebtToIncomeLimit = 4.5

	// DebtToIncomeAddOn is the extra annual amortization rate applied above
	// DebtToIncomeLimit.
	DebtToIncomeAddOn = 0.01
)

// Stress test and affordability.
const (
	// StressTestRateIncrease is added to the contract rate, in percentage points.
	StressTestRateIncrease = 3.0

	// StressTestMinRate is the floor for the stressed rate, in percent.
	StressTestMinRate = 6.0

	// AffordabilityIncomeShare is the share of gross monthly income the
	// stressed payment must stay strictly below.
	AffordabilityIncomeShare = 0.4
)

// Payoff projection.
const (
	// MaxPayoffMonths bounds every month-by-month projection (100 years).
	MaxPayoffMonths = 1200

	// PaidOffThreshold is the balance below which a loan counts as repaid.
	PaidOffThreshold = 1.0

	// NonAmortizingYears marks a payment that never repays the loan.
	NonAmortizingYears = 99
)

// Extra payment scenarios.
const (
	// BaselineHorizonYears is the reference horizon for interest savings.
	BaselineHorizonYears = 30

	// BaselineHorizonMonths is BaselineHorizonYears in months.
	BaselineHorizonMonths = BaselineHorizonYears * 12
)

// Investment taxation.
const (
	// ISKAnnualTaxRate is the yearly ISK standard tax on account value
	// (schablonintäkt 1.25 % taxed at 30 %).
	ISKAnnualTaxRate = 0.00375

	// CapitalGainsTaxRate applies to realized gains on a standard account.
	CapitalGainsTaxRate = 0.30

	// WinnerMargin is how much one strategy must beat the other by before it
	// is declared the winner.
	WinnerMargin = 0.05
)

// RateBands returns the LTV bands ordered from the highest threshold down.
func RateBands() []RateBand {
	bands := make([]RateBand, len(rateBands))
	copy(bands, rateBands[:])
	return bands
}

// BandRate returns the base amortization rate for a loan-to-value ratio.
func BandRate(ltv float64) float64 {
	for _, band := range rateBands {
		if ltv > band.ThresholdLTV {
			return band.AnnualRate
		}
	}
	return 0
}

// StressRate returns the stressed annual interest rate in percent.
func StressRate(interestRatePct float64) float64 {
	stressed := interestRatePct + StressTestRateIncrease
	if stressed < StressTestMinRate {
		return StressTestMinRate
	}
	return stressed
}
