package finance

import (
	"fmt"
	"math"
	"strconv"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/loans"
	"github.com/iwvelando/mortgage-calculator/pkg/rules"
	"github.com/iwvelando/mortgage-calculator/pkg/scenarios"
)

// Winner names the better of the two strategies.
type Winner string

const (
	WinnerMortgage   Winner = "mortgage"
	WinnerInvestment Winner = "investment"
	WinnerTie        Winner = "tie"
)

// MortgageStrategy is the outcome of putting the extra amount into the loan.
type MortgageStrategy struct {
	InterestSaved float64            `json:"interestSaved" yaml:"interestSaved"`
	MonthsSaved   int                `json:"monthsSaved" yaml:"monthsSaved"`
	TimeToPayoff  loans.PayoffResult `json:"timeToPayoff" yaml:"timeToPayoff"`
	NetWorth      float64            `json:"netWorth" yaml:"netWorth"`
}

// InvestmentStrategy is the outcome of investing the extra amount instead.
// ISKTaxPaid is set for ISK accounts; CapitalGains and TaxAmount for
// standard accounts.
type InvestmentStrategy struct {
	FinalValue    float64 `json:"finalValue" yaml:"finalValue"`
	TotalInvested float64 `json:"totalInvested" yaml:"totalInvested"`
	ISKTaxPaid    float64 `json:"iskTaxPaid,omitempty" yaml:"iskTaxPaid,omitempty"`
	CapitalGains  float64 `json:"capitalGains,omitempty" yaml:"capitalGains,omitempty"`
	TaxAmount     float64 `json:"taxAmount,omitempty" yaml:"taxAmount,omitempty"`
	AfterTaxValue float64 `json:"afterTaxValue" yaml:"afterTaxValue"`
	NetWorth      float64 `json:"netWorth" yaml:"netWorth"`
}

// InvestmentComparison extends an extra payment scenario with the
// invest-the-difference counterfactual.
type InvestmentComparison struct {
	scenarios.ExtraPaymentScenario `yaml:",inline"`

	MortgageStrategy     MortgageStrategy   `json:"mortgageStrategy" yaml:"mortgageStrategy"`
	InvestmentStrategy   InvestmentStrategy `json:"investmentStrategy" yaml:"investmentStrategy"`
	Winner               Winner             `json:"winner" yaml:"winner"`
	WinnerText           string             `json:"winnerText" yaml:"winnerText"`
	WinnerDescription    string             `json:"winnerDescription" yaml:"winnerDescription"`
	WinnerMarginPct      float64            `json:"winnerMarginPct" yaml:"winnerMarginPct"`
	MortgagePercentage   float64            `json:"mortgagePercentage" yaml:"mortgagePercentage"`
	InvestmentPercentage float64            `json:"investmentPercentage" yaml:"investmentPercentage"`
	Analysis             string             `json:"analysis" yaml:"analysis"`
}

// CompareStrategies runs the mortgage-versus-investment comparison for every
// scenario. The mortgage side is valued at the avoided debt (the current
// loan); the investment side at the after-tax account value once the
// scenario's payoff time has elapsed. Any account type other than "isk" is
// taxed as a standard account.
func CompareStrategies(extraScenarios []scenarios.ExtraPaymentScenario, currentLoan, annualInterestRate, expectedReturn float64, accountType string) []InvestmentComparison {
	monthlyRate := MonthlyReturnRate(expectedReturn)

	result := make([]InvestmentComparison, 0, len(extraScenarios))
	for _, scenario := range extraScenarios {
		mortgage := MortgageStrategy{
			InterestSaved: scenario.InterestSaved,
			MonthsSaved:   scenario.MonthsSaved,
			TimeToPayoff:  scenario.TimeToPayoff,
			NetWorth:      currentLoan,
		}
		investment := investmentStrategy(scenario, monthlyRate, accountType)

		comparison := InvestmentComparison{
			ExtraPaymentScenario: scenario,
			MortgageStrategy:     mortgage,
			InvestmentStrategy:   investment,
		}
		comparison.decide(expectedReturn)
		result = append(result, comparison)
	}
	return result
}

func investmentStrategy(scenario scenarios.ExtraPaymentScenario, monthlyRate float64, accountType string) InvestmentStrategy {
	months := scenario.TimeToPayoff.TotalMonths()

	if accountType == constants.AccountTypeISK {
		growth := SimulateMonthlySavings(scenario.Extra, months, monthlyRate, true)
		return InvestmentStrategy{
			FinalValue:    growth.FinalValue,
			TotalInvested: growth.TotalInvested,
			ISKTaxPaid:    growth.ISKTaxPaid,
			AfterTaxValue: growth.FinalValue,
			NetWorth:      growth.FinalValue,
		}
	}

	growth := SimulateMonthlySavings(scenario.Extra, months, monthlyRate, false)
	gains, tax := CapitalGainsTax(growth.FinalValue, growth.TotalInvested)
	afterTax := growth.FinalValue - tax
	return InvestmentStrategy{
		FinalValue:    growth.FinalValue,
		TotalInvested: growth.TotalInvested,
		CapitalGains:  gains,
		TaxAmount:     tax,
		AfterTaxValue: afterTax,
		NetWorth:      afterTax,
	}
}

// DecideWinner applies the 5 % margin rule and returns the winner together
// with how much better it is, in percent. The margin is 0 when the losing
// side is worth nothing, since no finite ratio exists.
func DecideWinner(mortgageNetWorth, investmentNetWorth float64) (Winner, float64) {
	switch {
	case mortgageNetWorth > investmentNetWorth*(1+rules.WinnerMargin):
		return WinnerMortgage, marginPct(mortgageNetWorth, investmentNetWorth)
	case investmentNetWorth > mortgageNetWorth*(1+rules.WinnerMargin):
		return WinnerInvestment, marginPct(investmentNetWorth, mortgageNetWorth)
	default:
		return WinnerTie, 0
	}
}

func marginPct(winner, loser float64) float64 {
	if loser <= 0 {
		return 0
	}
	return (winner/loser - 1) * 100
}

func (c *InvestmentComparison) decide(expectedReturn float64) {
	mortgageNW := c.MortgageStrategy.NetWorth
	investmentNW := c.InvestmentStrategy.NetWorth

	c.Winner, c.WinnerMarginPct = DecideWinner(mortgageNW, investmentNW)

	if top := math.Max(mortgageNW, investmentNW); top != 0 {
		c.MortgagePercentage = mortgageNW / top * 100
		c.InvestmentPercentage = investmentNW / top * 100
	}

	extra := formatNumber(c.Extra)
	years := c.TimeToPayoff.Years
	switch c.Winner {
	case WinnerMortgage:
		c.WinnerText = "Mortgage Wins"
		c.WinnerDescription = fmt.Sprintf("Better by %.1f%%", c.WinnerMarginPct)
		c.Analysis = fmt.Sprintf("Paying an extra %s SEK per month on your mortgage would save you %.0f SEK in interest "+
			"and help you pay off your mortgage %s earlier. This strategy outperforms investing in the stock market by "+
			"%.1f%% given the current interest rate and expected stock market returns.",
			extra, c.MortgageStrategy.InterestSaved, FormatTimeSaved(c.MortgageStrategy.MonthsSaved), c.WinnerMarginPct)
	case WinnerInvestment:
		c.WinnerText = "Investment Wins"
		c.WinnerDescription = fmt.Sprintf("Better by %.1f%%", c.WinnerMarginPct)
		c.Analysis = fmt.Sprintf("Investing %s SEK per month in the stock market while making minimum mortgage payments "+
			"would likely result in a higher net worth after %d years. The investment strategy outperforms the mortgage "+
			"payoff strategy by %.1f%% assuming a %s%% annual return.",
			extra, years, c.WinnerMarginPct, formatNumber(expectedReturn))
	default:
		c.WinnerText = "It's a Tie"
		c.WinnerDescription = "Both strategies are similar"
		c.Analysis = fmt.Sprintf("Both strategies yield similar results after %d years. Paying extra on your mortgage "+
			"offers guaranteed savings on interest, while investing offers potential for higher returns but with more "+
			"risk. Consider your risk tolerance and financial goals when deciding.", years)
	}
}

// FormatTimeSaved renders a month count as "N years and M months", ignoring
// the sign.
func FormatTimeSaved(months int) string {
	if months < 0 {
		months = -months
	}
	return fmt.Sprintf("%d years and %d months", months/constants.MonthsPerYear, months%constants.MonthsPerYear)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
