package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

// MemoryStore implements Store in process memory. Used for testing and
// development; nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values *mortgage.LoanScenario
	calcs  []SavedCalculation
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) SaveValues(_ context.Context, values mortgage.LoanScenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = &values
	return nil
}

func (s *MemoryStore) LoadValues(_ context.Context) (mortgage.LoanScenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.values == nil {
		return mortgage.LoanScenario{}, fmt.Errorf("saved values: %w", ErrNotFound)
	}
	return *s.values, nil
}

func (s *MemoryStore) List(_ context.Context) ([]SavedCalculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calcs := make([]SavedCalculation, 0, len(s.calcs))
	for _, c := range s.calcs {
		calcs = append(calcs, clone(c))
	}
	return calcs, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (SavedCalculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return SavedCalculation{}, fmt.Errorf("calculation %s: %w", id, ErrNotFound)
	}
	return clone(s.calcs[i]), nil
}

func (s *MemoryStore) Save(_ context.Context, calc SavedCalculation) (SavedCalculation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	calc = prepare(calc, s.now)
	if s.index(calc.ID) >= 0 {
		return SavedCalculation{}, fmt.Errorf("calculation %s: %w", calc.ID, ErrConflict)
	}
	s.calcs = append(s.calcs, clone(calc))
	return calc, nil
}

func (s *MemoryStore) Update(_ context.Context, calc SavedCalculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(calc.ID)
	if i < 0 {
		return fmt.Errorf("calculation %s: %w", calc.ID, ErrNotFound)
	}
	s.calcs[i] = clone(calc)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("calculation %s: %w", id, ErrNotFound)
	}
	s.calcs = append(s.calcs[:i], s.calcs[i+1:]...)
	return nil
}

// index must be called with the lock held.
func (s *MemoryStore) index(id string) int {
	for i, c := range s.calcs {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// clone copies the schedule so callers cannot mutate stored records.
func clone(c SavedCalculation) SavedCalculation {
	if c.Results.YearlySchedule != nil {
		c.Results.YearlySchedule = append([]mortgage.YearEntry(nil), c.Results.YearlySchedule...)
	}
	return c
}
