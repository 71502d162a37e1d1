package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

func sampleCalculation(name string) SavedCalculation {
	values := mortgage.LoanScenario{
		OriginalLoanAmount: 3000000,
		CurrentLoanAmount:  2500000,
		PropertyValue:      4000000,
		AnnualIncome:       800000,
		InterestRate:       3.5,
		LoanTermYears:      3,
	}
	return SavedCalculation{
		Name:    name,
		Values:  values,
		Results: mortgage.Evaluate(values),
	}
}

func TestMemoryStoreSaveAssignsIDAndDate(t *testing.T) {
	store := NewMemoryStore()
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	saved, err := store.Save(context.Background(), sampleCalculation("Villa"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID == "" {
		t.Fatal("Save() did not assign an ID")
	}
	if !saved.Date.Equal(fixed) {
		t.Errorf("Save() date = %v, want %v", saved.Date, fixed)
	}

	got, err := store.Get(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Villa" || got.Values != saved.Values {
		t.Errorf("Get() = %+v, want %+v", got, saved)
	}
}

func TestMemoryStoreSaveKeepsExplicitID(t *testing.T) {
	store := NewMemoryStore()
	calc := sampleCalculation("Imported")
	calc.ID = "fixed-id"

	saved, err := store.Save(context.Background(), calc)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID != "fixed-id" {
		t.Errorf("Save() ID = %q, want fixed-id", saved.ID)
	}

	if _, err := store.Save(context.Background(), calc); !errors.Is(err, ErrConflict) {
		t.Errorf("second Save() error = %v, want ErrConflict", err)
	}
}

func TestMemoryStoreListOrderAndCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, _ := store.Save(ctx, sampleCalculation("first"))
	if _, err := store.Save(ctx, sampleCalculation("second")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	calcs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(calcs) != 2 {
		t.Fatalf("List() returned %d calculations, want 2", len(calcs))
	}
	if calcs[0].Name != "first" || calcs[1].Name != "second" {
		t.Errorf("List() order = %q, %q", calcs[0].Name, calcs[1].Name)
	}

	calcs[0].Name = "mutated"
	calcs[0].Results.YearlySchedule[0].RemainingLoan = -1

	got, _ := store.Get(ctx, first.ID)
	if got.Name != "first" {
		t.Errorf("stored name changed to %q", got.Name)
	}
	if got.Results.YearlySchedule[0].RemainingLoan == -1 {
		t.Error("stored schedule was mutated through List()")
	}
}

func TestMemoryStoreUpdateAndDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	saved, _ := store.Save(ctx, sampleCalculation("draft"))
	saved.Name = "final"
	if err := store.Update(ctx, saved); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ := store.Get(ctx, saved.ID)
	if got.Name != "final" {
		t.Errorf("Update() name = %q, want final", got.Name)
	}

	if err := store.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	tests := []struct {
		name string
		call func() error
	}{
		{"get", func() error { _, err := store.Get(ctx, saved.ID); return err }},
		{"update", func() error { return store.Update(ctx, saved) }},
		{"delete", func() error { return store.Delete(ctx, saved.ID) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestMemoryStoreValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.LoadValues(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadValues() on empty store error = %v, want ErrNotFound", err)
	}

	values := sampleCalculation("").Values
	if err := store.SaveValues(ctx, values); err != nil {
		t.Fatalf("SaveValues() error = %v", err)
	}
	got, err := store.LoadValues(ctx)
	if err != nil {
		t.Fatalf("LoadValues() error = %v", err)
	}
	if got != values {
		t.Errorf("LoadValues() = %+v, want %+v", got, values)
	}
}

func TestSortByDate(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calcs := []SavedCalculation{
		{ID: "c", Date: base.Add(time.Hour)},
		{ID: "b", Date: base},
		{ID: "a", Date: base},
	}
	sortByDate(calcs)

	want := []string{"a", "b", "c"}
	for i, id := range want {
		if calcs[i].ID != id {
			t.Errorf("position %d = %q, want %q", i, calcs[i].ID, id)
		}
	}
}
