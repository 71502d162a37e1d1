package calculator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/scenarios"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.uber.org/zap"
)

func referenceRequest() Request {
	return Request{
		Loan: mortgage.LoanScenario{
			OriginalLoanAmount: 2500000,
			CurrentLoanAmount:  2000000,
			PropertyValue:      3000000,
			AnnualIncome:       500000,
			InterestRate:       3.5,
			LoanTermYears:      30,
		},
		Investment: InvestmentAssumptions{ExpectedReturn: 7, AccountType: "isk"},
	}
}

func TestCalculate(t *testing.T) {
	svc := NewService(zap.NewNop())
	report, err := svc.Calculate(context.Background(), referenceRequest())
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	if !mathutil.WithinTolerance(report.Evaluation.TotalMonthlyPayment, 7500, 0.01) {
		t.Errorf("TotalMonthlyPayment = %.2f, expected 7500", report.Evaluation.TotalMonthlyPayment)
	}
	if report.Baseline.NonAmortizing() {
		t.Error("baseline payment of 7,500 must amortize")
	}
	if len(report.Scenarios) != 5 || len(report.Comparisons) != 5 {
		t.Fatalf("expected 5 scenarios and comparisons, got %d and %d", len(report.Scenarios), len(report.Comparisons))
	}
	for i := range report.Scenarios {
		if report.Comparisons[i].ExtraPaymentScenario != report.Scenarios[i] {
			t.Errorf("comparison %d does not match scenario %d", i, i)
		}
	}
	if len(report.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", report.Warnings)
	}
}

func TestCalculateInvalidInput(t *testing.T) {
	svc := NewService(nil)

	tests := []struct {
		name   string
		modify func(*Request)
	}{
		{"Zero property value", func(r *Request) { r.Loan.PropertyValue = 0 }},
		{"Zero income", func(r *Request) { r.Loan.AnnualIncome = 0 }},
		{"Unknown account type", func(r *Request) { r.Investment.AccountType = "crypto" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := referenceRequest()
			tt.modify(&req)
			_, err := svc.Calculate(context.Background(), req)
			if !errors.Is(err, validation.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCalculateZeroAmortizationBaselineIsSentinel(t *testing.T) {
	req := referenceRequest()
	req.Loan.CurrentLoanAmount = 1000000 // LTV 33 %, no amortization requirement
	report, err := NewService(zap.NewNop()).Calculate(context.Background(), req)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if !report.Baseline.NonAmortizing() {
		t.Errorf("interest-only payment should be non-amortizing, got %+v", report.Baseline)
	}
	if report.DebtFreeBy != "" {
		t.Errorf("DebtFreeBy = %q, want empty for a loan that is never repaid", report.DebtFreeBy)
	}
}

func TestCalculateDebtFreeBy(t *testing.T) {
	svc := NewService(zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC) }

	report, err := svc.Calculate(context.Background(), referenceRequest())
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	want := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, report.Baseline.TotalMonths(), 0).Format("2006-01")
	if report.DebtFreeBy != want {
		t.Errorf("DebtFreeBy = %q, want %q", report.DebtFreeBy, want)
	}
}

func TestPayoff(t *testing.T) {
	svc := NewService(zap.NewNop())

	report, err := svc.Payoff(context.Background(), PayoffRequest{
		LoanAmount:     2000000,
		MonthlyPayment: 7500,
		InterestRate:   3.5,
		IncludeSeries:  true,
	})
	if err != nil {
		t.Fatalf("Payoff() error = %v", err)
	}
	if report.NonAmortizing {
		t.Fatal("expected amortizing payoff")
	}
	if len(report.Series) != report.Result.TotalMonths() {
		t.Errorf("series length %d, expected %d", len(report.Series), report.Result.TotalMonths())
	}

	report, err = svc.Payoff(context.Background(), PayoffRequest{LoanAmount: 2000000, MonthlyPayment: 5000, InterestRate: 3.5, IncludeSeries: true})
	if err != nil {
		t.Fatalf("Payoff() error = %v", err)
	}
	if !report.NonAmortizing || report.Result.Years != 99 {
		t.Errorf("expected sentinel, got %+v", report.Result)
	}
	if len(report.Series) != 0 {
		t.Error("non-amortizing payoff must not include a series")
	}

	if _, err := svc.Payoff(context.Background(), PayoffRequest{LoanAmount: -1}); !errors.Is(err, validation.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScenariosAndCompare(t *testing.T) {
	svc := NewService(zap.NewNop())
	req := ScenarioRequest{CurrentLoanAmount: 2000000, BaseMonthlyPayment: 7500, InterestRate: 3.5}

	extra, err := svc.Scenarios(context.Background(), req)
	if err != nil {
		t.Fatalf("Scenarios() error = %v", err)
	}
	if len(extra) != 5 {
		t.Fatalf("expected 5 scenarios, got %d", len(extra))
	}

	comparisons, err := svc.Compare(context.Background(), CompareRequest{
		ScenarioRequest: req,
		Investment:      InvestmentAssumptions{ExpectedReturn: 7, AccountType: "standard"},
	})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(comparisons) != 5 {
		t.Fatalf("expected 5 comparisons, got %d", len(comparisons))
	}

	single, err := svc.Compare(context.Background(), CompareRequest{
		ScenarioRequest: req,
		Investment:      InvestmentAssumptions{ExpectedReturn: 7, AccountType: "isk"},
		Scenarios:       extra[:1],
	})
	if err != nil {
		t.Fatalf("Compare() with scenarios error = %v", err)
	}
	if len(single) != 1 || single[0].Label != extra[0].Label {
		t.Errorf("expected comparison for supplied scenario only, got %d", len(single))
	}

	unbounded := extra[0]
	unbounded.TimeToPayoff.Years = 200000000
	if _, err := svc.Compare(context.Background(), CompareRequest{
		ScenarioRequest: req,
		Investment:      InvestmentAssumptions{ExpectedReturn: 7, AccountType: "isk"},
		Scenarios:       []scenarios.ExtraPaymentScenario{unbounded},
	}); !errors.Is(err, validation.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for a payoff past the projection ceiling, got %v", err)
	}

	if _, err := svc.Scenarios(context.Background(), ScenarioRequest{BaseMonthlyPayment: -5}); !errors.Is(err, validation.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
