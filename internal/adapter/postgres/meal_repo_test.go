package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"

	"mealdiet/internal/domain"
)

func TestDietFlagScan(t *testing.T) {
	tests := []struct {
		src     any
		want    bool
		wantErr bool
	}{
		{int64(1), true, false},
		{int64(0), false, false},
		{true, true, false},
		{[]byte("1"), true, false},
		{"f", false, false},
		{nil, false, true},
	}
	for _, tc := range tests {
		var f dietFlag
		err := f.Scan(tc.src)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Scan(%v): expected error", tc.src)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Scan(%v): %v", tc.src, err)
		}
		if bool(f) != tc.want {
			t.Errorf("Scan(%v) = %v; want %v", tc.src, f, tc.want)
		}
	}
}

func TestDietValue(t *testing.T) {
	if dietValue(true) != 1 || dietValue(false) != 0 {
		t.Fatal("expected 1/0 encoding")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Error("expected unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Error("plain error is not a unique violation")
	}
}

// Malformed ids never reach the database.
func TestMalformedMealIDIsNotFound(t *testing.T) {
	d := &DB{}
	ctx := context.Background()
	if _, err := d.GetMeal(ctx, "u1", "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetMeal: expected ErrNotFound, got %v", err)
	}
	if _, err := d.UpdateMeal(ctx, "u1", "42", domain.MealFields{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateMeal: expected ErrNotFound, got %v", err)
	}
	if err := d.DeleteMeal(ctx, "u1", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteMeal: expected ErrNotFound, got %v", err)
	}
}
