package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealdiet/internal/domain"
)

func TestMealFieldsValidate(t *testing.T) {
	date := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		fields    domain.MealFields
		wantField string
	}{
		{"ok", domain.MealFields{Name: "Lunch", Date: date}, ""},
		{"blank name", domain.MealFields{Name: "   ", Date: date}, "name"},
		{"long name", domain.MealFields{Name: strings.Repeat("x", 121), Date: date}, "name"},
		{"long description", domain.MealFields{Name: "Lunch", Description: strings.Repeat("x", 2001), Date: date}, "description"},
		{"missing date", domain.MealFields{Name: "Lunch"}, "date"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fields.Validate()
			if tc.wantField == "" {
				require.NoError(t, err)
				return
			}
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.wantField, ve.Field)
		})
	}
}

func TestMealFieldsValidate_Trims(t *testing.T) {
	f := domain.MealFields{Name: "  Dinner ", Description: " pasta ", Date: time.Now()}
	require.NoError(t, f.Validate())
	assert.Equal(t, "Dinner", f.Name)
	assert.Equal(t, "pasta", f.Description)
}

func TestNormalizeDate(t *testing.T) {
	in := time.Date(2024, 3, 11, 12, 0, 0, 123456789, time.FixedZone("x", 3600))
	got := domain.NormalizeDate(in)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 123000000, got.Nanosecond())
	assert.True(t, got.Equal(in.Truncate(time.Millisecond)))
}

func TestParseDietFlag(t *testing.T) {
	tests := []struct {
		in      any
		want    bool
		wantErr bool
	}{
		{true, true, false},
		{false, false, false},
		{int64(1), true, false},
		{int64(0), false, false},
		{int64(2), true, false},
		{1, true, false},
		{float64(1), true, false},
		{[]byte("1"), true, false},
		{"0", false, false},
		{"t", true, false},
		{"false", false, false},
		{"yes", false, true},
		{nil, false, true},
		{struct{}{}, false, true},
	}
	for _, tc := range tests {
		got, err := domain.ParseDietFlag(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "%v", tc.in)
			continue
		}
		require.NoError(t, err, "%v", tc.in)
		assert.Equal(t, tc.want, got, "%v", tc.in)
	}
}

func TestWrapStorage(t *testing.T) {
	assert.NoError(t, domain.WrapStorage("op", nil))
	assert.ErrorIs(t, domain.WrapStorage("op", domain.ErrNotFound), domain.ErrNotFound)

	cause := errors.New("connection refused")
	err := domain.WrapStorage("list meals", cause)
	var se *domain.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "list meals", se.Op)
	assert.ErrorIs(t, err, cause)

	// Already wrapped errors keep their original operation.
	assert.Same(t, err, domain.WrapStorage("other", err))
}
