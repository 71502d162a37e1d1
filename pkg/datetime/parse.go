// Package datetime provides date helpers for payoff projections and saved
// calculations.
package datetime

import (
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/loans"
)

const (
	// DateLayout is the day format used for saved calculation names.
	DateLayout = "2006-01-02"

	// MonthLayout is the format of a projected debt-free month.
	MonthLayout = "2006-01"
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// OffsetMonths returns the first day of the month that lies the given number
// of months after from.
func OffsetMonths(from time.Time, months int) time.Time {
	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
	return start.AddDate(0, months, 0)
}

// DebtFreeMonth returns the month in which a projected payoff completes,
// formatted with MonthLayout. It returns false when the loan never amortizes.
func DebtFreeMonth(from time.Time, result loans.PayoffResult) (string, bool) {
	if result.NonAmortizing() {
		return "", false
	}
	return OffsetMonths(from, result.TotalMonths()).Format(MonthLayout), true
}

// ImportedName is the name given to an imported calculation without one.
func ImportedName(now time.Time) string {
	return "Imported " + now.Format(DateLayout)
}
