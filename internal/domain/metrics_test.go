package domain_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealdiet/internal/domain"
)

var base = time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)

// chronological builds meals whose dates increase with their index.
func chronological(flags ...bool) []domain.MealRecord {
	meals := make([]domain.MealRecord, len(flags))
	for i, on := range flags {
		meals[i] = domain.MealRecord{
			ID:       string(rune('a' + i)),
			IsOnDiet: on,
			Date:     base.Add(time.Duration(i) * time.Hour),
			Seq:      int64(i + 1),
		}
	}
	return meals
}

func TestComputeMetrics_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		flags []bool
		want  domain.Metrics
	}{
		{"empty", nil, domain.Metrics{}},
		{"single on-diet", []bool{true}, domain.Metrics{1, 1, 0, 1}},
		{"single off-diet", []bool{false}, domain.Metrics{1, 0, 1, 0}},
		{"run of three", []bool{true, false, true, true, true}, domain.Metrics{5, 4, 1, 3}},
		{"all off", []bool{false, false, false}, domain.Metrics{3, 0, 3, 0}},
		{"all on", []bool{true, true, true, true}, domain.Metrics{4, 4, 0, 4}},
		{"alternating", []bool{true, false, true, false, true}, domain.Metrics{5, 3, 2, 1}},
		{"early run wins", []bool{true, true, true, false, true, true}, domain.Metrics{6, 5, 1, 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.ComputeMetrics(chronological(tc.flags...)))
		})
	}
}

func TestComputeMetrics_SortsByDateNotInputOrder(t *testing.T) {
	// Listing order (most recent first) for on, on, off, on, on.
	meals := chronological(true, true, false, true, true)
	domain.SortForListing(meals)
	require.Equal(t, "e", meals[0].ID)

	got := domain.ComputeMetrics(meals)
	assert.Equal(t, 2, got.BestOnDietSequence)
	assert.Equal(t, "e", meals[0].ID, "input must not be reordered")
}

func TestComputeMetrics_TiesBrokenBySeq(t *testing.T) {
	// Same instant; creation order is off, on, on. A second on-diet meal at an
	// earlier instant precedes them all.
	meals := []domain.MealRecord{
		{ID: "late-on-2", IsOnDiet: true, Date: base, Seq: 3},
		{ID: "off", IsOnDiet: false, Date: base, Seq: 1},
		{ID: "early-on", IsOnDiet: true, Date: base.Add(-time.Hour), Seq: 4},
		{ID: "late-on-1", IsOnDiet: true, Date: base, Seq: 2},
	}
	got := domain.ComputeMetrics(meals)
	assert.Equal(t, domain.Metrics{4, 3, 1, 2}, got)
}

func TestComputeMetrics_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		n := rng.Intn(25)
		flags := make([]bool, n)
		for i := range flags {
			flags[i] = rng.Intn(3) > 0
		}
		meals := chronological(flags...)
		// Introduce shared timestamps so tie-breaking is exercised.
		for i := range meals {
			if rng.Intn(4) == 0 && i > 0 {
				meals[i].Date = meals[i-1].Date
			}
		}

		m := domain.ComputeMetrics(meals)
		require.Equal(t, m.TotalMeals, m.TotalMealsOnDiet+m.TotalMealsOffDiet)
		require.LessOrEqual(t, m.BestOnDietSequence, m.TotalMeals)
		require.Equal(t, m.TotalMealsOnDiet == 0, m.BestOnDietSequence == 0)
		require.Equal(t, m.TotalMealsOffDiet == 0, m.BestOnDietSequence == m.TotalMeals)
		require.Equal(t, m, domain.ComputeMetrics(meals), "idempotent")

		shuffled := append([]domain.MealRecord(nil), meals...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		require.Equal(t, m, domain.ComputeMetrics(shuffled), "permutation invariant")
	}
}

func TestSortForListing(t *testing.T) {
	meals := []domain.MealRecord{
		{ID: "d1", Date: base, Seq: 1},
		{ID: "d2", Date: base.Add(24 * time.Hour), Seq: 2},
		{ID: "d1-later", Date: base, Seq: 3},
	}
	domain.SortForListing(meals)
	ids := []string{meals[0].ID, meals[1].ID, meals[2].ID}
	assert.Equal(t, []string{"d2", "d1-later", "d1"}, ids)
}
