package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealdiet/internal/domain"
)

func meal(name string, onDiet bool, date time.Time) domain.MealFields {
	return domain.MealFields{Name: name, Description: name, IsOnDiet: onDiet, Date: date}
}

func TestMealRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	d1 := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	d2 := d1.Add(24 * time.Hour)

	breakfast, err := db.CreateMeal(ctx, "u1", meal("Breakfast", true, d1))
	require.NoError(t, err)
	require.NotEmpty(t, breakfast.ID)

	lunch, err := db.CreateMeal(ctx, "u1", meal("Lunch", true, d2))
	require.NoError(t, err)
	assert.Greater(t, lunch.Seq, breakfast.Seq)

	meals, err := db.ListMeals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, "Lunch", meals[0].Name)
	assert.Equal(t, "Breakfast", meals[1].Name)

	// Other user sees nothing
	other, err := db.ListMeals(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)

	got, err := db.GetMeal(ctx, "u1", breakfast.ID)
	require.NoError(t, err)
	assert.Equal(t, "Breakfast", got.Name)

	updated, err := db.UpdateMeal(ctx, "u1", breakfast.ID, meal("Dinner", false, d2.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "Dinner", updated.Name)
	assert.False(t, updated.IsOnDiet)
	assert.Equal(t, breakfast.Seq, updated.Seq, "update keeps creation order")

	meals, _ = db.ListMeals(ctx, "u1")
	assert.Equal(t, "Dinner", meals[0].Name)

	require.NoError(t, db.DeleteMeal(ctx, "u1", breakfast.ID))
	_, err = db.GetMeal(ctx, "u1", breakfast.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, db.DeleteMeal(ctx, "u1", breakfast.ID), domain.ErrNotFound)
}

func TestMealRepository_Ownership(t *testing.T) {
	db := New()
	ctx := context.Background()

	m, err := db.CreateMeal(ctx, "owner", meal("Snack", true, time.Now()))
	require.NoError(t, err)

	_, err = db.GetMeal(ctx, "intruder", m.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = db.UpdateMeal(ctx, "intruder", m.ID, meal("Hacked", false, time.Now()))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, db.DeleteMeal(ctx, "intruder", m.ID), domain.ErrNotFound)

	got, err := db.GetMeal(ctx, "owner", m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Snack", got.Name)
}

func TestMealRepository_TiesListLatestCreatedFirst(t *testing.T) {
	db := New()
	ctx := context.Background()
	same := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, name := range []string{"first", "second", "third"} {
		_, err := db.CreateMeal(ctx, "u1", meal(name, true, same))
		require.NoError(t, err)
	}
	meals, err := db.ListMeals(ctx, "u1")
	require.NoError(t, err)
	names := []string{meals[0].Name, meals[1].Name, meals[2].Name}
	assert.Equal(t, []string{"third", "second", "first"}, names)
}

func TestMealRepository_ListIsSnapshot(t *testing.T) {
	db := New()
	ctx := context.Background()
	m, _ := db.CreateMeal(ctx, "u1", meal("Breakfast", true, time.Now()))

	meals, _ := db.ListMeals(ctx, "u1")
	meals[0].Name = "mutated"

	got, err := db.GetMeal(ctx, "u1", m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Breakfast", got.Name)
}

func TestMealRepository_ConcurrentCreates(t *testing.T) {
	db := New()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = db.CreateMeal(ctx, "u1", meal("m", true, time.Now()))
		}()
	}
	wg.Wait()

	meals, err := db.ListMeals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, meals, 50)
	seen := make(map[int64]bool)
	for _, m := range meals {
		assert.False(t, seen[m.Seq], "duplicate seq %d", m.Seq)
		seen[m.Seq] = true
	}
}

func TestUserRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.Create(ctx, "bob", "bob@example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Name)

	u2, err := db.GetByEmail(ctx, "BOB@example.com")
	require.NoError(t, err)
	require.NotNil(t, u2)
	assert.Equal(t, u.ID, u2.ID)

	u3, err := db.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, u3)

	_, err = db.Create(ctx, "bobby", "bob@example.com", "")
	assert.True(t, errors.Is(err, domain.ErrEmailTaken))

	missing, err := db.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSessionRepository(t *testing.T) {
	db := New()
	repo := db.NewSessionRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, "u1", "token123", "agent", time.Now().Add(time.Hour)))

	sess, err := repo.GetByToken(ctx, "token123")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "agent", sess.UserAgent)

	require.NoError(t, repo.Delete(ctx, "token123"))
	sess, _ = repo.GetByToken(ctx, "token123")
	assert.Nil(t, sess)
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	db := New()
	repo := db.NewSessionRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, "u1", "old", "", time.Now().Add(-time.Minute)))
	require.NoError(t, repo.Create(ctx, "u1", "fresh", "", time.Now().Add(time.Hour)))

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	s, _ := repo.GetByToken(ctx, "fresh")
	assert.NotNil(t, s)
}
