package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// fakeRow serves one saved_calculations row to scanCalculation.
type fakeRow struct {
	id      string
	name    string
	date    time.Time
	values  []byte
	results []byte
	err     error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != 5 {
		return fmt.Errorf("expected 5 columns, got %d", len(dest))
	}
	*dest[0].(*string) = r.id
	*dest[1].(*string) = r.name
	*dest[2].(*time.Time) = r.date
	*dest[3].(*[]byte) = r.values
	*dest[4].(*[]byte) = r.results
	return nil
}

func rowFor(t *testing.T, calc SavedCalculation) fakeRow {
	t.Helper()
	values, results, err := encodeColumns(calc)
	if err != nil {
		t.Fatalf("encodeColumns() error = %v", err)
	}
	return fakeRow{id: calc.ID, name: calc.Name, date: calc.Date, values: []byte(values), results: []byte(results)}
}

func TestInsertError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantConflict bool
	}{
		{"unique violation", &pgconn.PgError{Code: uniqueViolation}, true},
		{"wrapped unique violation", fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolation}), true},
		{"other constraint", &pgconn.PgError{Code: "23502"}, false},
		{"connection failure", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := insertError("abc", tt.err)
			if errors.Is(err, ErrConflict) != tt.wantConflict {
				t.Fatalf("insertError() = %v, wantConflict %v", err, tt.wantConflict)
			}
			if !tt.wantConflict && !errors.Is(err, tt.err) {
				t.Errorf("expected the driver error to stay wrapped, got %v", err)
			}
		})
	}
}

func TestScanCalculation(t *testing.T) {
	calc := sampleCalculation("Radhus")
	calc.ID = "abc"
	calc.Date = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := scanCalculation(rowFor(t, calc))
	if err != nil {
		t.Fatalf("scanCalculation() error = %v", err)
	}
	if got.ID != calc.ID || got.Name != calc.Name || !got.Date.Equal(calc.Date) {
		t.Errorf("scanCalculation() = %+v", got)
	}
	if got.Values != calc.Values {
		t.Errorf("values = %+v, want %+v", got.Values, calc.Values)
	}
	if got.Results.TotalMonthlyPayment != calc.Results.TotalMonthlyPayment ||
		len(got.Results.YearlySchedule) != len(calc.Results.YearlySchedule) {
		t.Errorf("results did not survive the JSONB columns: %+v", got.Results)
	}
}

func TestScanCalculationErrors(t *testing.T) {
	valid := rowFor(t, sampleCalculation("Radhus"))

	badValues := valid
	badValues.values = []byte(`{"currentLoanAmount":"lots"}`)
	badResults := valid
	badResults.results = []byte(`[`)

	tests := []struct {
		name string
		row  fakeRow
	}{
		{"no rows", fakeRow{err: pgx.ErrNoRows}},
		{"bad values", badValues},
		{"bad results", badResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := scanCalculation(tt.row); err == nil {
				t.Fatal("expected an error")
			}
		})
	}

	if _, err := scanCalculation(fakeRow{err: pgx.ErrNoRows}); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("expected pgx.ErrNoRows to pass through for the not-found mapping, got %v", err)
	}
}

func TestEncodeColumns(t *testing.T) {
	calc := sampleCalculation("Villa")
	values, results, err := encodeColumns(calc)
	if err != nil {
		t.Fatalf("encodeColumns() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(values), &decoded); err != nil {
		t.Fatalf("values column is not JSON: %v", err)
	}
	if decoded["currentLoanAmount"] != 2500000.0 {
		t.Errorf("currentLoanAmount = %v", decoded["currentLoanAmount"])
	}
	if err := json.Unmarshal([]byte(results), &decoded); err != nil {
		t.Fatalf("results column is not JSON: %v", err)
	}
	if _, ok := decoded["schedule"]; !ok {
		t.Error("results column is missing the schedule")
	}
}

// TestPostgresStoreLive runs against a real database when
// MORTGAGE_TEST_DATABASE_URL is set.
func TestPostgresStoreLive(t *testing.T) {
	url := os.Getenv("MORTGAGE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MORTGAGE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("pgxpool.New() error = %v", err)
	}
	defer pool.Close()

	store := NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	calc := sampleCalculation("Live")
	calc.ID = uuid.NewString()
	saved, err := store.Save(ctx, calc)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	defer func() { _ = store.Delete(ctx, saved.ID) }()

	if _, err := store.Save(ctx, calc); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for a duplicate ID, got %v", err)
	}
	got, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Values != calc.Values {
		t.Errorf("Get() values = %+v, want %+v", got.Values, calc.Values)
	}
	if err := store.Update(ctx, SavedCalculation{ID: uuid.NewString(), Name: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound updating a missing calculation, got %v", err)
	}
}
