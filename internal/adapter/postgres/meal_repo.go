package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mealdiet/internal/domain"

	"github.com/google/uuid"
)

var _ domain.MealRepository = (*DB)(nil)

const mealColumns = "id, user_id, name, description, is_on_diet, date, seq, created_at, updated_at"

// dietFlag scans a persisted on-diet value of any truthy representation.
type dietFlag bool

// Scan implements sql.Scanner.
func (f *dietFlag) Scan(src any) error {
	b, err := domain.ParseDietFlag(src)
	if err != nil {
		return err
	}
	*f = dietFlag(b)
	return nil
}

func dietValue(on bool) int {
	if on {
		return 1
	}
	return 0
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeal(row rowScanner) (domain.MealRecord, error) {
	var (
		m    domain.MealRecord
		flag dietFlag
	)
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Description, &flag, &m.Date, &m.Seq, &m.CreatedAt, &m.UpdatedAt)
	m.IsOnDiet = bool(flag)
	m.Date = m.Date.UTC()
	return m, err
}

// CreateMeal inserts a new meal.
func (d *DB) CreateMeal(ctx context.Context, userID string, f domain.MealFields) (*domain.MealRecord, error) {
	now := time.Now().UTC()
	m, err := scanMeal(d.sql.QueryRowContext(ctx,
		"INSERT INTO meals (id, user_id, name, description, is_on_diet, date, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING "+mealColumns+";",
		uuid.NewString(), userID, f.Name, f.Description, dietValue(f.IsOnDiet), domain.NormalizeDate(f.Date), now,
	))
	if err != nil {
		return nil, domain.WrapStorage("create meal", err)
	}
	return &m, nil
}

// ListMeals returns the user's meals in one statement, most recent first.
func (d *DB) ListMeals(ctx context.Context, userID string) ([]domain.MealRecord, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+mealColumns+" FROM meals WHERE user_id=$1 ORDER BY date DESC, seq DESC;", userID)
	if err != nil {
		return nil, domain.WrapStorage("list meals", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.MealRecord, 0)
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, domain.WrapStorage("list meals", err)
		}
		out = append(out, m)
	}
	return out, domain.WrapStorage("list meals", rows.Err())
}

// GetMeal returns a meal owned by userID.
func (d *DB) GetMeal(ctx context.Context, userID, mealID string) (*domain.MealRecord, error) {
	if _, err := uuid.Parse(mealID); err != nil {
		return nil, domain.ErrNotFound
	}
	m, err := scanMeal(d.sql.QueryRowContext(ctx,
		"SELECT "+mealColumns+" FROM meals WHERE id=$1 AND user_id=$2;", mealID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.WrapStorage("get meal", err)
	}
	return &m, nil
}

// UpdateMeal replaces the mutable fields of a meal owned by userID.
func (d *DB) UpdateMeal(ctx context.Context, userID, mealID string, f domain.MealFields) (*domain.MealRecord, error) {
	if _, err := uuid.Parse(mealID); err != nil {
		return nil, domain.ErrNotFound
	}
	m, err := scanMeal(d.sql.QueryRowContext(ctx,
		"UPDATE meals SET name=$3, description=$4, is_on_diet=$5, date=$6, updated_at=$7 "+
			"WHERE id=$1 AND user_id=$2 RETURNING "+mealColumns+";",
		mealID, userID, f.Name, f.Description, dietValue(f.IsOnDiet), domain.NormalizeDate(f.Date), time.Now().UTC(),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.WrapStorage("update meal", err)
	}
	return &m, nil
}

// DeleteMeal removes a meal owned by userID.
func (d *DB) DeleteMeal(ctx context.Context, userID, mealID string) error {
	if _, err := uuid.Parse(mealID); err != nil {
		return domain.ErrNotFound
	}
	res, err := d.sql.ExecContext(ctx, "DELETE FROM meals WHERE id=$1 AND user_id=$2;", mealID, userID)
	if err != nil {
		return domain.WrapStorage("delete meal", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.WrapStorage("delete meal", fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
