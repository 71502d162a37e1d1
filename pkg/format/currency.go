// Package format renders calculation results for people. The calculation
// packages never round; rounding to whole kronor happens only here.
package format

import (
	"fmt"

	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Whole rounds amount to the nearest whole krona and groups thousands the
// Swedish way (e.g. "2 000 000"). NaN and infinities are printed as-is.
func Whole(amount float64) string {
	if !mathutil.IsFinite(amount) {
		return fmt.Sprint(amount)
	}
	rounded := decimal.NewFromFloat(amount).Round(0)
	return message.NewPrinter(language.Swedish).Sprintf("%d", rounded.IntPart())
}

// SEK returns Whole(amount) followed by the currency suffix.
func SEK(amount float64) string {
	return Whole(amount) + " kr"
}

// Percent renders a percentage with one decimal in Swedish notation
// (e.g. "3,5 %").
func Percent(value float64) string {
	if !mathutil.IsFinite(value) {
		return fmt.Sprint(value) + " %"
	}
	return message.NewPrinter(language.Swedish).Sprintf("%.1f %%", value)
}

// Duration renders a payoff time such as "25 år 3 mån".
func Duration(years, months int) string {
	return fmt.Sprintf("%d år %d mån", years, months)
}
