// Package scenarios compares a fixed menu of extra monthly payments against
// the base mortgage payment.
package scenarios

import (
	"github.com/iwvelando/mortgage-calculator/pkg/loans"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/iwvelando/mortgage-calculator/pkg/rules"
)

// Offer is one entry of the extra payment catalog. Flat offers add a fixed
// amount; relative offers add a share of the base payment.
type Offer struct {
	Label       string
	FlatAmount  float64
	ShareOfBase float64
}

// Extra returns the extra monthly amount the offer adds to basePayment.
func (o Offer) Extra(basePayment float64) float64 {
	return o.FlatAmount + basePayment*o.ShareOfBase
}

var catalog = [...]Offer{
	{Label: "+1,000 SEK/month", FlatAmount: 1000},
	{Label: "+2,000 SEK/month", FlatAmount: 2000},
	{Label: "+5,000 SEK/month", FlatAmount: 5000},
	{Label: "+50% payment", ShareOfBase: 0.5},
	{Label: "Double payment", ShareOfBase: 1},
}

// Catalog returns the extra payment offers in display order.
func Catalog() []Offer {
	offers := make([]Offer, len(catalog))
	copy(offers, catalog[:])
	return offers
}

// ExtraPaymentScenario is the outcome of paying Extra on top of the base
// payment every month.
type ExtraPaymentScenario struct {
	Extra          float64            `json:"extra" yaml:"extra"`
	Label          string             `json:"label" yaml:"label"`
	MonthlyPayment float64            `json:"monthlyPayment" yaml:"monthlyPayment"`
	TimeToPayoff   loans.PayoffResult `json:"timeToPayoff" yaml:"timeToPayoff"`
	TotalInterest  float64            `json:"totalInterest" yaml:"totalInterest"`
	InterestSaved  float64            `json:"interestSaved" yaml:"interestSaved"`
	MonthsSaved    int                `json:"monthsSaved" yaml:"monthsSaved"`
}

// BaselineInterest is the reference interest cost: the full current loan
// charged at the annual rate for 30 years.
func BaselineInterest(currentLoan, annualInterestRate float64) float64 {
	return currentLoan * mathutil.PercentToFraction(annualInterestRate) * rules.BaselineHorizonYears
}

// ExtraPaymentScenarios evaluates every catalog offer independently. Savings
// are measured against the fixed 30-year baseline, not against a projection
// of the base payment. A non-amortizing total payment keeps the sentinel
// payoff result and its figures are computed from 99 years.
func ExtraPaymentScenarios(currentLoan, basePayment, annualInterestRate float64) []ExtraPaymentScenario {
	baseline := BaselineInterest(currentLoan, annualInterestRate)

	result := make([]ExtraPaymentScenario, 0, len(catalog))
	for _, offer := range catalog {
		extra := offer.Extra(basePayment)
		total := basePayment + extra

		payoff := loans.TimeToPayoff(currentLoan, total, annualInterestRate, 0)
		months := payoff.TotalMonths()
		totalInterest := total*float64(months) - currentLoan

		result = append(result, ExtraPaymentScenario{
			Extra:          extra,
			Label:          offer.Label,
			MonthlyPayment: total,
			TimeToPayoff:   payoff,
			TotalInterest:  totalInterest,
			InterestSaved:  baseline - totalInterest,
			MonthsSaved:    rules.BaselineHorizonMonths - months,
		})
	}
	return result
}
