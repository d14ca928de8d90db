package app

import "mealdiet/internal/domain"

// ensureOwner rejects any meal not owned by userID with ErrNotFound, so
// callers cannot tell foreign meals from missing ones.
func ensureOwner(meal *domain.MealRecord, userID string) error {
	if meal == nil || userID == "" || meal.UserID != userID {
		return domain.ErrNotFound
	}
	return nil
}
