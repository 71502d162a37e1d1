package storage

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iwvelando/mortgage-calculator/internal/metrics"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

// Instrumented wraps a Store with operation counters and error logging.
// ErrNotFound is counted as "missing" and not logged.
type Instrumented struct {
	next    Store
	backend string
	logger  *zap.Logger
}

// NewInstrumented wraps next, labelling metrics with backend.
func NewInstrumented(next Store, backend string, logger *zap.Logger) *Instrumented {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented{next: next, backend: backend, logger: logger}
}

func (s *Instrumented) observe(operation string, err error) {
	status := metrics.Status(err)
	switch {
	case errors.Is(err, ErrNotFound):
		status = "missing"
	case err != nil:
		s.logger.Error("storage operation failed",
			zap.String("op", "storage."+operation),
			zap.String("backend", s.backend),
			zap.Error(err))
	}
	metrics.StorageOperationsTotal.WithLabelValues(s.backend, operation, status).Inc()
}

func (s *Instrumented) SaveValues(ctx context.Context, values mortgage.LoanScenario) error {
	err := s.next.SaveValues(ctx, values)
	s.observe("SaveValues", err)
	return err
}

func (s *Instrumented) LoadValues(ctx context.Context) (mortgage.LoanScenario, error) {
	values, err := s.next.LoadValues(ctx)
	s.observe("LoadValues", err)
	return values, err
}

func (s *Instrumented) List(ctx context.Context) ([]SavedCalculation, error) {
	calcs, err := s.next.List(ctx)
	s.observe("List", err)
	return calcs, err
}

func (s *Instrumented) Get(ctx context.Context, id string) (SavedCalculation, error) {
	calc, err := s.next.Get(ctx, id)
	s.observe("Get", err)
	return calc, err
}

func (s *Instrumented) Save(ctx context.Context, calc SavedCalculation) (SavedCalculation, error) {
	saved, err := s.next.Save(ctx, calc)
	s.observe("Save", err)
	return saved, err
}

func (s *Instrumented) Update(ctx context.Context, calc SavedCalculation) error {
	err := s.next.Update(ctx, calc)
	s.observe("Update", err)
	return err
}

func (s *Instrumented) Delete(ctx context.Context, id string) error {
	err := s.next.Delete(ctx, id)
	s.observe("Delete", err)
	return err
}
