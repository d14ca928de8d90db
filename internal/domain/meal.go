package domain

import (
	"context"
	"strings"
	"time"
)

const (
	maxNameLen        = 120
	maxDescriptionLen = 2000
)

// MealRecord is a single logged meal.
type MealRecord struct {
	ID          string
	UserID      string
	Name        string
	Description string
	IsOnDiet    bool
	Date        time.Time
	// Seq is the store-assigned creation order, used to break ties on Date.
	Seq       int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MealFields is the mutable part of a meal, supplied on create and update.
type MealFields struct {
	Name        string
	Description string
	IsOnDiet    bool
	Date        time.Time
}

// Validate trims text fields in place and checks required values.
func (f *MealFields) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	if f.Name == "" {
		return invalid("name", "is required")
	}
	if len(f.Name) > maxNameLen {
		return invalid("name", "is too long")
	}
	if len(f.Description) > maxDescriptionLen {
		return invalid("description", "is too long")
	}
	if f.Date.IsZero() {
		return invalid("date", "is required")
	}
	return nil
}

// NormalizeDate reduces t to the millisecond precision meals are stored with.
func NormalizeDate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// MealRepository is the port for meal persistence. Every operation is scoped
// to userID; a meal owned by someone else behaves as if it did not exist.
type MealRepository interface {
	CreateMeal(ctx context.Context, userID string, f MealFields) (*MealRecord, error)
	// ListMeals returns a snapshot ordered by Date descending, ties by Seq
	// descending.
	ListMeals(ctx context.Context, userID string) ([]MealRecord, error)
	GetMeal(ctx context.Context, userID, mealID string) (*MealRecord, error)
	UpdateMeal(ctx context.Context, userID, mealID string, f MealFields) (*MealRecord, error)
	DeleteMeal(ctx context.Context, userID, mealID string) error
}
