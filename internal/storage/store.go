// Package storage persists saved calculations and the last entered loan
// inputs. The calculation engine never sees this package; it only produces
// the values and results that are stored here.
package storage

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

var (
	// ErrNotFound is returned when a calculation or saved input does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when saving a calculation whose ID already exists.
	ErrConflict = errors.New("already exists")
)

// SavedCalculation is a named snapshot of a loan scenario and its evaluation.
type SavedCalculation struct {
	ID      string                `json:"id" yaml:"id"`
	Date    time.Time             `json:"date" yaml:"date"`
	Name    string                `json:"name" yaml:"name"`
	Values  mortgage.LoanScenario `json:"values" yaml:"values"`
	Results mortgage.Evaluation   `json:"results" yaml:"results"`
}

// Store is the persistence interface.
type Store interface {
	// SaveValues remembers the most recently entered loan inputs.
	SaveValues(ctx context.Context, values mortgage.LoanScenario) error

	// LoadValues returns the inputs stored by SaveValues or ErrNotFound.
	LoadValues(ctx context.Context) (mortgage.LoanScenario, error)

	// List returns all saved calculations, oldest first.
	List(ctx context.Context) ([]SavedCalculation, error)

	// Get returns one saved calculation or ErrNotFound.
	Get(ctx context.Context, id string) (SavedCalculation, error)

	// Save stores a new calculation, assigning an ID and date when they are
	// empty, and returns the stored record.
	Save(ctx context.Context, calc SavedCalculation) (SavedCalculation, error)

	// Update replaces an existing calculation or returns ErrNotFound.
	Update(ctx context.Context, calc SavedCalculation) error

	// Delete removes a calculation or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// prepare fills the ID and date of a calculation about to be saved.
func prepare(calc SavedCalculation, now func() time.Time) SavedCalculation {
	if calc.ID == "" {
		calc.ID = uuid.NewString()
	}
	if calc.Date.IsZero() {
		calc.Date = now().UTC()
	}
	return calc
}

func sortByDate(calcs []SavedCalculation) {
	sort.SliceStable(calcs, func(i, j int) bool {
		if calcs[i].Date.Equal(calcs[j].Date) {
			return calcs[i].ID < calcs[j].ID
		}
		return calcs[i].Date.Before(calcs[j].Date)
	})
}
