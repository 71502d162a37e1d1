// Package finance compares paying extra on the mortgage with investing the
// same amount in the stock market.
package finance

import (
	"math"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/rules"
)

const percentDivisor = 100.0

func percentToDecimal(percent float64) float64 {
	return percent / percentDivisor
}

// MonthlyReturnRate converts an expected annual return in percent into the
// equivalent compounded monthly rate.
func MonthlyReturnRate(expectedAnnualReturn float64) float64 {
	return math.Pow(1+percentToDecimal(expectedAnnualReturn), 1.0/constants.MonthsPerYear) - 1
}

// Growth is the outcome of investing a fixed amount every month.
type Growth struct {
	FinalValue    float64
	TotalInvested float64
	ISKTaxPaid    float64
}

// SimulateMonthlySavings compounds monthlyInvestment for totalMonths at the
// given monthly rate, depositing at the end of each month. When iskTax is
// set the yearly ISK tax on the account value is accumulated in ISKTaxPaid
// every twelfth month; it is paid from outside and never reduces the value.
func SimulateMonthlySavings(monthlyInvestment float64, totalMonths int, monthlyRate float64, iskTax bool) Growth {
	var growth Growth
	value := 0.0
	for month := 1; month <= totalMonths; month++ {
		value = value*(1+monthlyRate) + monthlyInvestment
		if iskTax && month%constants.MonthsPerYear == 0 {
			growth.ISKTaxPaid += value * rules.ISKAnnualTaxRate
		}
	}
	growth.FinalValue = value
	growth.TotalInvested = monthlyInvestment * float64(totalMonths)
	return growth
}

// CapitalGainsTax returns the tax due when a standard account worth value
// is sold after investing invested.
func CapitalGainsTax(value, invested float64) (gains, tax float64) {
	gains = math.Max(0, value-invested)
	return gains, gains * rules.CapitalGainsTaxRate
}
