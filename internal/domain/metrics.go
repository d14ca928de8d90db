package domain

import (
	"slices"
)

// Metrics summarizes a user's meal history.
type Metrics struct {
	TotalMeals         int `json:"totalMeals"`
	TotalMealsOnDiet   int `json:"totalMealsOnDiet"`
	TotalMealsOffDiet  int `json:"totalMealsOffDiet"`
	BestOnDietSequence int `json:"bestOnDietSequence"`
}

// ComputeMetrics aggregates meals supplied in any order. The longest on-diet
// run is measured over meals ordered by (Date, Seq) ascending; meals equal on
// both keep their relative input order. meals is not modified.
func ComputeMetrics(meals []MealRecord) Metrics {
	ordered := slices.Clone(meals)
	slices.SortStableFunc(ordered, compareChronological)

	var m Metrics
	current := 0
	for _, meal := range ordered {
		m.TotalMeals++
		if meal.IsOnDiet {
			m.TotalMealsOnDiet++
			current++
			m.BestOnDietSequence = max(m.BestOnDietSequence, current)
			continue
		}
		m.TotalMealsOffDiet++
		current = 0
	}
	return m
}

func compareChronological(a, b MealRecord) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	switch {
	case a.Seq < b.Seq:
		return -1
	case a.Seq > b.Seq:
		return 1
	}
	return 0
}

// SortForListing orders meals most recent first, ties by latest-created first.
func SortForListing(meals []MealRecord) {
	slices.SortStableFunc(meals, func(a, b MealRecord) int {
		return compareChronological(b, a)
	})
}
