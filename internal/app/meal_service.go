package app

import (
	"context"

	"mealdiet/internal/domain"
)

// MealService encapsulates meal-logging use cases.
type MealService struct {
	repo domain.MealRepository
}

// NewMealService creates a MealService backed by the given repository.
func NewMealService(repo domain.MealRepository) *MealService {
	return &MealService{repo: repo}
}

// Create validates f and stores a new meal owned by userID.
func (s *MealService) Create(ctx context.Context, userID string, f domain.MealFields) (*domain.MealRecord, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f.Date = domain.NormalizeDate(f.Date)
	return s.repo.CreateMeal(ctx, userID, f)
}

// List returns the user's meals, most recent first.
func (s *MealService) List(ctx context.Context, userID string) ([]domain.MealRecord, error) {
	return s.repo.ListMeals(ctx, userID)
}

// Get returns a single meal owned by userID.
func (s *MealService) Get(ctx context.Context, userID, mealID string) (*domain.MealRecord, error) {
	return s.owned(ctx, userID, mealID)
}

// Update replaces the mutable fields of a meal owned by userID.
func (s *MealService) Update(ctx context.Context, userID, mealID string, f domain.MealFields) (*domain.MealRecord, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f.Date = domain.NormalizeDate(f.Date)
	if _, err := s.owned(ctx, userID, mealID); err != nil {
		return nil, err
	}
	return s.repo.UpdateMeal(ctx, userID, mealID, f)
}

// Delete removes a meal owned by userID.
func (s *MealService) Delete(ctx context.Context, userID, mealID string) error {
	if _, err := s.owned(ctx, userID, mealID); err != nil {
		return err
	}
	return s.repo.DeleteMeal(ctx, userID, mealID)
}

// Metrics computes the user's meal statistics from a single listing.
func (s *MealService) Metrics(ctx context.Context, userID string) (domain.Metrics, error) {
	meals, err := s.repo.ListMeals(ctx, userID)
	if err != nil {
		return domain.Metrics{}, err
	}
	return domain.ComputeMetrics(meals), nil
}

func (s *MealService) owned(ctx context.Context, userID, mealID string) (*domain.MealRecord, error) {
	if mealID == "" {
		return nil, domain.ErrNotFound
	}
	meal, err := s.repo.GetMeal(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(meal, userID); err != nil {
		return nil, err
	}
	return meal, nil
}
