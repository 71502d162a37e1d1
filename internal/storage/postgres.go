package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

// uniqueViolation is the SQLSTATE for duplicate primary keys.
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS saved_calculations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	loan_values JSONB NOT NULL,
	results    JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS calculator_values (
	id          SMALLINT PRIMARY KEY,
	loan_values JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);`

// PostgresStore implements Store on PostgreSQL. Loan inputs and results are
// kept as JSONB so the record layout follows the Go types.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore creates a PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

// EnsureSchema creates the tables when they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveValues(ctx context.Context, values mortgage.LoanScenario) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO calculator_values (id, loan_values, updated_at)
		 VALUES (1, $1::JSONB, $2)
		 ON CONFLICT (id) DO UPDATE SET loan_values = EXCLUDED.loan_values, updated_at = EXCLUDED.updated_at`,
		string(data), s.now().UTC())
	if err != nil {
		return fmt.Errorf("save values: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadValues(ctx context.Context) (mortgage.LoanScenario, error) {
	var values mortgage.LoanScenario
	var data []byte

	err := s.pool.QueryRow(ctx, `SELECT loan_values FROM calculator_values WHERE id = 1`).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return values, fmt.Errorf("saved values: %w", ErrNotFound)
	}
	if err != nil {
		return values, fmt.Errorf("load values: %w", err)
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return values, fmt.Errorf("decode values: %w", err)
	}
	return values, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]SavedCalculation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, created_at, loan_values, results
		 FROM saved_calculations ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}
	defer rows.Close()

	calcs := make([]SavedCalculation, 0)
	for rows.Next() {
		calc, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, calc)
	}
	return calcs, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (SavedCalculation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at, loan_values, results
		 FROM saved_calculations WHERE id = $1`, id)
	calc, err := scanCalculation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return SavedCalculation{}, fmt.Errorf("calculation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return SavedCalculation{}, fmt.Errorf("get calculation %s: %w", id, err)
	}
	return calc, nil
}

func (s *PostgresStore) Save(ctx context.Context, calc SavedCalculation) (SavedCalculation, error) {
	calc = prepare(calc, s.now)
	values, results, err := encodeColumns(calc)
	if err != nil {
		return SavedCalculation{}, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO saved_calculations (id, name, created_at, loan_values, results)
		 VALUES ($1, $2, $3, $4::JSONB, $5::JSONB)`,
		calc.ID, calc.Name, calc.Date, values, results)
	if err != nil {
		return SavedCalculation{}, insertError(calc.ID, err)
	}
	return calc, nil
}

// insertError maps a duplicate primary key to ErrConflict.
func insertError(id string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("calculation %s: %w", id, ErrConflict)
	}
	return fmt.Errorf("save calculation %s: %w", id, err)
}

func (s *PostgresStore) Update(ctx context.Context, calc SavedCalculation) error {
	values, results, err := encodeColumns(calc)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE saved_calculations
		 SET name = $2, created_at = $3, loan_values = $4::JSONB, results = $5::JSONB
		 WHERE id = $1`,
		calc.ID, calc.Name, calc.Date, values, results)
	if err != nil {
		return fmt.Errorf("update calculation %s: %w", calc.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("calculation %s: %w", calc.ID, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM saved_calculations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete calculation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("calculation %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanCalculation(row pgx.Row) (SavedCalculation, error) {
	var calc SavedCalculation
	var values, results []byte

	if err := row.Scan(&calc.ID, &calc.Name, &calc.Date, &values, &results); err != nil {
		return SavedCalculation{}, err
	}
	if err := json.Unmarshal(values, &calc.Values); err != nil {
		return SavedCalculation{}, fmt.Errorf("decode values of %s: %w", calc.ID, err)
	}
	if err := json.Unmarshal(results, &calc.Results); err != nil {
		return SavedCalculation{}, fmt.Errorf("decode results of %s: %w", calc.ID, err)
	}
	return calc, nil
}

func encodeColumns(calc SavedCalculation) (string, string, error) {
	values, err := json.Marshal(calc.Values)
	if err != nil {
		return "", "", fmt.Errorf("encode values: %w", err)
	}
	results, err := json.Marshal(calc.Results)
	if err != nil {
		return "", "", fmt.Errorf("encode results: %w", err)
	}
	return string(values), string(results), nil
}
