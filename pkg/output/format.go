// Package output provides utilities for formatting and displaying calculation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/mortgage-calculator/internal/calculator"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/finance"
	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"github.com/iwvelando/mortgage-calculator/pkg/loans"
)

// PrettyFormat writes a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, report calculator.Report) error {
	p := message.NewPrinter(language.Swedish)
	ev := report.Evaluation
	pw := &errWriter{w: w}

	pw.printf("--- Monthly payment ---\n")
	rows := [][2]string{
		{"Amortization", format.SEK(ev.MonthlyAmortization)},
		{"Interest", format.SEK(ev.MonthlyInterest)},
		{"Total", format.SEK(ev.TotalMonthlyPayment)},
		{"Interest rate", format.Percent(ev.EffectiveInterestRate)},
		{"Amortization rate", format.Percent(ev.AmortizationRatePct)},
		{"Debt-to-income", format.Percent(ev.DebtToIncomePct)},
		{"Loan remaining", format.Percent(ev.LoanPercentage)},
		{"Stress test", format.SEK(ev.StressTestMonthlyPayment) + " (" + affordability(ev.IsAffordable) + ")"},
		{"Payoff time", payoffText(report.Baseline)},
	}
	if report.DebtFreeBy != "" {
		rows = append(rows, [2]string{"Debt-free by", report.DebtFreeBy})
	}
	for _, row := range rows {
		pw.printf("%-17s | %s\n", row[0], row[1])
	}

	if len(report.Warnings) > 0 {
		pw.printf("\n--- Warnings ---\n")
		for _, warning := range report.Warnings {
			pw.printf("* %s\n", warning)
		}
	}

	if len(report.Scenarios) > 0 {
		pw.printf("\n--- Extra payment scenarios ---\n")
		pw.printf("Scenario         | Monthly payment | Payoff          | Interest saved  | Months saved\n")
		pw.printf("________         | _______________ | ______          | ______________  | ____________\n")
		for _, s := range report.Scenarios {
			pw.printf("%-16s | %15s | %-15s | %15s | %d\n",
				s.Label, format.SEK(s.MonthlyPayment), payoffText(s.TimeToPayoff), format.SEK(s.InterestSaved), s.MonthsSaved)
		}
	}

	if len(report.Comparisons) > 0 {
		pw.printf("\n--- Mortgage vs investment ---\n")
		for _, c := range report.Comparisons {
			pw.printf("%s: %s, %s\n", c.Label, c.WinnerText, c.WinnerDescription)
			pw.printf("  mortgage %s | investment %s\n", format.SEK(c.MortgageStrategy.NetWorth), format.SEK(c.InvestmentStrategy.NetWorth))
			pw.printf("  %s\n", c.Analysis)
		}
	}

	if len(ev.YearlySchedule) > 0 {
		pw.printf("\n--- Yearly schedule ---\n")
		pw.printf("Year | Remaining loan  | Amortization    | Interest        | Total\n")
		pw.printf("____ | ______________  | ____________    | ________        | _____\n")
		for _, y := range ev.YearlySchedule {
			pw.print(p.Sprintf("%4d | %15s | %15s | %15s | %s\n",
				y.Year, format.SEK(y.RemainingLoan), format.SEK(y.YearlyAmortization),
				format.SEK(y.YearlyInterest), format.SEK(y.TotalPayment)))
		}
	}
	return pw.err
}

// CsvFormat writes the yearly schedule and the scenario comparison as two
// comma-separated tables separated by an empty line.
func CsvFormat(w io.Writer, report calculator.Report) error {
	cw := csv.NewWriter(w)

	_ = cw.Write([]string{"year", "remaining loan", "yearly amortization", "yearly interest", "total payment"})
	for _, y := range report.Evaluation.YearlySchedule {
		_ = cw.Write([]string{
			strconv.Itoa(y.Year), money(y.RemainingLoan), money(y.YearlyAmortization),
			money(y.YearlyInterest), money(y.TotalPayment),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	winners := make(map[string]finance.InvestmentComparison, len(report.Comparisons))
	for _, c := range report.Comparisons {
		winners[c.Label] = c
	}

	_ = cw.Write([]string{
		"scenario", "extra", "monthly payment", "payoff years", "payoff months", "total interest",
		"interest saved", "months saved", "winner", "mortgage net worth", "investment net worth", "margin pct",
	})
	for _, s := range report.Scenarios {
		c := winners[s.Label]
		_ = cw.Write([]string{
			s.Label, money(s.Extra), money(s.MonthlyPayment),
			strconv.Itoa(s.TimeToPayoff.Years), strconv.Itoa(s.TimeToPayoff.Months),
			money(s.TotalInterest), money(s.InterestSaved), strconv.Itoa(s.MonthsSaved),
			string(c.Winner), money(c.MortgageStrategy.NetWorth), money(c.InvestmentStrategy.NetWorth),
			money(c.WinnerMarginPct),
		})
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat writes the report as indented JSON.
func JSONFormat(w io.Writer, report calculator.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// Write dispatches to the writer for the named output format.
func Write(w io.Writer, outputFormat string, report calculator.Report) error {
	switch strings.ToLower(outputFormat) {
	case constants.OutputFormatCSV:
		return CsvFormat(w, report)
	case constants.OutputFormatJSON:
		return JSONFormat(w, report)
	default:
		return PrettyFormat(w, report)
	}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func payoffText(r loans.PayoffResult) string {
	if r.NonAmortizing() {
		return "never"
	}
	return format.Duration(r.Years, r.Months)
}

func affordability(ok bool) string {
	if ok {
		return "affordable"
	}
	return "not affordable"
}

// errWriter keeps the first write error so the report body reads linearly.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(layout string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, layout, args...)
}

func (e *errWriter) print(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}
