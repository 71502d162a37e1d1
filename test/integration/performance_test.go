package integration

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/mortgage-calculator/internal/calculator"
	"github.com/iwvelando/mortgage-calculator/pkg/loans"
	"github.com/iwvelando/mortgage-calculator/pkg/testutil"
)

// TestPerformance checks that a full calculation stays interactive even when
// every payoff projection runs to the 1200 month ceiling.
func TestPerformance(t *testing.T) {
	svc := calculator.NewService(zap.NewNop())
	loan := testutil.ReferenceLoan()

	start := time.Now()
	for i := 0; i < 100; i++ {
		if _, err := svc.Calculate(context.Background(), calculator.Request{
			Loan:       loan,
			Investment: calculator.InvestmentAssumptions{ExpectedReturn: 7, AccountType: "isk"},
		}); err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
	}
	elapsed := time.Since(start)
	t.Logf("100 calculations took %v", elapsed)

	if elapsed > 10*time.Second {
		t.Errorf("total processing time %v exceeds 10 second threshold", elapsed)
	}
}

func TestDataConsistency(t *testing.T) {
	svc := calculator.NewService(zap.NewNop())
	req := calculator.Request{
		Loan:       testutil.ReferenceLoan(),
		Investment: calculator.InvestmentAssumptions{ExpectedReturn: 7, AccountType: "isk"},
	}

	first, err := svc.Calculate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := svc.Calculate(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if again.Baseline != first.Baseline {
			t.Fatalf("run %d baseline %+v differs from %+v", i, again.Baseline, first.Baseline)
		}
		for j := range first.Comparisons {
			if again.Comparisons[j].InvestmentStrategy != first.Comparisons[j].InvestmentStrategy {
				t.Fatalf("run %d comparison %d differs", i, j)
			}
		}
	}
}

func BenchmarkCalculate(b *testing.B) {
	svc := calculator.NewService(zap.NewNop())
	req := calculator.Request{
		Loan:       testutil.ReferenceLoan(),
		Investment: calculator.InvestmentAssumptions{ExpectedReturn: 7, AccountType: "isk"},
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Calculate(ctx, req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTimeToPayoffCeiling(b *testing.B) {
	for i := 0; i < b.N; i++ {
		loans.TimeToPayoff(10000000, 25000.01, 3, 0)
	}
}
