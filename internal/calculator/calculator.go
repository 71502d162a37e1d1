// Package calculator wires the calculation engine into a single service used
// by the CLI and the HTTP API: it validates input, runs the calculations and
// records logs, metrics and traces around them.
package calculator

import (
	"context"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/metrics"
	"github.com/iwvelando/mortgage-calculator/pkg/datetime"
	"github.com/iwvelando/mortgage-calculator/pkg/finance"
	"github.com/iwvelando/mortgage-calculator/pkg/loans"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/scenarios"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/iwvelando/mortgage-calculator/internal/calculator"

// InvestmentAssumptions configures the mortgage-versus-investment comparison.
type InvestmentAssumptions struct {
	ExpectedReturn float64 `json:"expectedReturn" yaml:"expectedReturn"`
	AccountType    string  `json:"accountType" yaml:"accountType"`
}

// Request is the input for a full calculation.
type Request struct {
	Loan       mortgage.LoanScenario `json:"loan" yaml:"loan"`
	Investment InvestmentAssumptions `json:"investment" yaml:"investment"`
}

// Report is the outcome of a full calculation.
type Report struct {
	Loan        mortgage.LoanScenario            `json:"loan" yaml:"loan"`
	Evaluation  mortgage.Evaluation              `json:"evaluation" yaml:"evaluation"`
	Baseline    loans.PayoffResult               `json:"baseline" yaml:"baseline"`
	DebtFreeBy  string                           `json:"debtFreeBy,omitempty" yaml:"debtFreeBy,omitempty"`
	Scenarios   []scenarios.ExtraPaymentScenario `json:"scenarios" yaml:"scenarios"`
	Comparisons []finance.InvestmentComparison   `json:"comparisons" yaml:"comparisons"`
	Warnings    []string                         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// PayoffRequest is the input for a standalone payoff projection.
type PayoffRequest struct {
	LoanAmount     float64 `json:"loanAmount"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	InterestRate   float64 `json:"interestRate"`
	OneTimePayment float64 `json:"oneTimePayment"`
	IncludeSeries  bool    `json:"includeSeries"`
}

// PayoffReport is the result of a payoff projection.
type PayoffReport struct {
	Result        loans.PayoffResult     `json:"result"`
	NonAmortizing bool                   `json:"nonAmortizing"`
	Series        []loans.MonthlyBalance `json:"series,omitempty"`
}

// ScenarioRequest is the input for the extra payment comparison.
type ScenarioRequest struct {
	CurrentLoanAmount  float64 `json:"currentLoanAmount"`
	BaseMonthlyPayment float64 `json:"baseMonthlyPayment"`
	InterestRate       float64 `json:"interestRate"`
}

// CompareRequest is the input for the mortgage-versus-investment comparison.
// Scenarios are derived from the scenario fields when none are supplied.
type CompareRequest struct {
	ScenarioRequest
	Investment InvestmentAssumptions            `json:"investment"`
	Scenarios  []scenarios.ExtraPaymentScenario `json:"scenarios,omitempty"`
}

// Service runs calculations. It holds no state between calls and is safe
// for concurrent use.
type Service struct {
	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewService creates a calculator service.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, tracer: otel.Tracer(tracerName), now: time.Now}
}

// Evaluate validates and evaluates a single loan scenario.
func (s *Service) Evaluate(ctx context.Context, loan mortgage.LoanScenario) (result mortgage.Evaluation, err error) {
	ctx, finish := s.begin(ctx, "evaluate")
	defer func() { finish(err) }()

	if err = validation.ValidateLoanScenario(loan); err != nil {
		return mortgage.Evaluation{}, err
	}
	result = mortgage.Evaluate(loan)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Float64("amortization_rate_pct", result.AmortizationRatePct),
		attribute.Bool("affordable", result.IsAffordable),
	)
	s.logger.Debug("evaluated mortgage",
		zap.String("op", "calculator.Evaluate"),
		zap.Float64("amortizationRatePct", result.AmortizationRatePct),
		zap.Float64("totalMonthlyPayment", result.TotalMonthlyPayment),
		zap.Bool("affordable", result.IsAffordable),
	)
	return result, nil
}

// Payoff projects the time to repay a loan under a fixed monthly payment.
func (s *Service) Payoff(ctx context.Context, req PayoffRequest) (report PayoffReport, err error) {
	_, finish := s.begin(ctx, "payoff")
	defer func() { finish(err) }()

	for _, f := range []struct {
		name  string
		value float64
	}{
		{"loanAmount", req.LoanAmount},
		{"monthlyPayment", req.MonthlyPayment},
		{"interestRate", req.InterestRate},
		{"oneTimePayment", req.OneTimePayment},
	} {
		if err = validation.ValidateNonNegative(f.name, f.value); err != nil {
			return PayoffReport{}, err
		}
	}

	report.Result = loans.TimeToPayoff(req.LoanAmount, req.MonthlyPayment, req.InterestRate, req.OneTimePayment)
	report.NonAmortizing = report.Result.NonAmortizing()
	if report.NonAmortizing {
		s.warnNonAmortizing("calculator.Payoff", "payoff", req.MonthlyPayment, report.Result)
	} else if req.IncludeSeries {
		report.Series = loans.ProjectBalances(req.LoanAmount, req.MonthlyPayment, req.InterestRate, req.OneTimePayment)
	}
	return report, nil
}

// Scenarios evaluates the extra payment catalog.
func (s *Service) Scenarios(ctx context.Context, req ScenarioRequest) (result []scenarios.ExtraPaymentScenario, err error) {
	_, finish := s.begin(ctx, "scenarios")
	defer func() { finish(err) }()

	if err = validateScenarioRequest(req); err != nil {
		return nil, err
	}
	result = scenarios.ExtraPaymentScenarios(req.CurrentLoanAmount, req.BaseMonthlyPayment, req.InterestRate)
	s.reportNonAmortizing("calculator.Scenarios", result)
	return result, nil
}

// Compare runs the mortgage-versus-investment comparison.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (result []finance.InvestmentComparison, err error) {
	_, finish := s.begin(ctx, "compare")
	defer func() { finish(err) }()

	if err = validateScenarioRequest(req.ScenarioRequest); err != nil {
		return nil, err
	}
	if err = validation.ValidateInvestmentAssumptions(req.Investment.ExpectedReturn, req.Investment.AccountType); err != nil {
		return nil, err
	}
	for _, scenario := range req.Scenarios {
		if err = validation.ValidateExtraPaymentScenario(scenario); err != nil {
			return nil, err
		}
	}
	extra := req.Scenarios
	if len(extra) == 0 {
		extra = scenarios.ExtraPaymentScenarios(req.CurrentLoanAmount, req.BaseMonthlyPayment, req.InterestRate)
	}
	return finance.CompareStrategies(extra, req.CurrentLoanAmount, req.InterestRate,
		req.Investment.ExpectedReturn, req.Investment.AccountType), nil
}

// Calculate runs the full pipeline: evaluation, baseline payoff, extra
// payment scenarios and the investment comparison.
func (s *Service) Calculate(ctx context.Context, req Request) (report Report, err error) {
	ctx, finish := s.begin(ctx, "calculate")
	defer func() { finish(err) }()

	if err = validation.ValidateInvestmentAssumptions(req.Investment.ExpectedReturn, req.Investment.AccountType); err != nil {
		return Report{}, err
	}
	evaluation, err := s.Evaluate(ctx, req.Loan)
	if err != nil {
		return Report{}, err
	}

	loan := req.Loan
	base := evaluation.TotalMonthlyPayment
	report = Report{
		Loan:       loan,
		Evaluation: evaluation,
		Baseline:   loans.TimeToPayoff(loan.CurrentLoanAmount, base, loan.InterestRate, 0),
		Warnings:   validation.ScenarioWarnings(loan),
	}
	report.DebtFreeBy, _ = datetime.DebtFreeMonth(s.now(), report.Baseline)
	if report.Baseline.NonAmortizing() {
		s.warnNonAmortizing("calculator.Calculate", "baseline", base, report.Baseline)
	}

	report.Scenarios = scenarios.ExtraPaymentScenarios(loan.CurrentLoanAmount, base, loan.InterestRate)
	s.reportNonAmortizing("calculator.Calculate", report.Scenarios)
	report.Comparisons = finance.CompareStrategies(report.Scenarios, loan.CurrentLoanAmount, loan.InterestRate,
		req.Investment.ExpectedReturn, req.Investment.AccountType)

	s.logger.Info("calculation complete",
		zap.String("op", "calculator.Calculate"),
		zap.Int("scenarios", len(report.Scenarios)),
		zap.Int("warnings", len(report.Warnings)),
		zap.String("accountType", req.Investment.AccountType),
	)
	return report, nil
}

func (s *Service) begin(ctx context.Context, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "calculator."+operation)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.ObserveCalculation(operation, start, err)
	}
}

func (s *Service) reportNonAmortizing(op string, result []scenarios.ExtraPaymentScenario) {
	for _, scenario := range result {
		if scenario.TimeToPayoff.NonAmortizing() {
			s.warnNonAmortizing(op, scenario.Label, scenario.MonthlyPayment, scenario.TimeToPayoff)
		}
	}
}

func (s *Service) warnNonAmortizing(op, label string, payment float64, result loans.PayoffResult) {
	metrics.NonAmortizingTotal.Inc()
	s.logger.Warn("payment does not cover interest, loan never pays off",
		zap.String("op", op),
		zap.String("scenario", label),
		zap.Float64("monthlyPayment", payment),
		zap.Float64("balance", result.FinalBalance),
	)
}

func validateScenarioRequest(req ScenarioRequest) error {
	if err := validation.ValidateNonNegative("currentLoanAmount", req.CurrentLoanAmount); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("baseMonthlyPayment", req.BaseMonthlyPayment); err != nil {
		return err
	}
	return validation.ValidateNonNegative("interestRate", req.InterestRate)
}
