package adapthttp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"mealdiet/internal/domain"

	"github.com/go-chi/chi/v5"
)

// mealJSON is the wire form of a meal. Date is epoch milliseconds.
type mealJSON struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsOnDiet    bool      `json:"isOnDiet"`
	Date        int64     `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toMealJSON(m domain.MealRecord) mealJSON {
	return mealJSON{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Description: m.Description,
		IsOnDiet:    m.IsOnDiet,
		Date:        m.Date.UnixMilli(),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// mealRequest accepts isOnDiet as a boolean or 0/1, and date as epoch
// milliseconds or an RFC 3339 string.
type mealRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	IsOnDiet    json.RawMessage `json:"isOnDiet"`
	Date        json.RawMessage `json:"date"`
}

func (req mealRequest) fields() (domain.MealFields, error) {
	var f domain.MealFields
	if req.Name == nil {
		return f, &domain.ValidationError{Field: "name", Message: "is required"}
	}
	f.Name = *req.Name
	if req.Description != nil {
		f.Description = *req.Description
	}

	onDiet, err := decodeDietFlag(req.IsOnDiet)
	if err != nil {
		return f, err
	}
	f.IsOnDiet = onDiet

	date, err := decodeDate(req.Date)
	if err != nil {
		return f, err
	}
	f.Date = date
	return f, nil
}

func decodeDietFlag(raw json.RawMessage) (bool, error) {
	if isAbsent(raw) {
		return false, &domain.ValidationError{Field: "isOnDiet", Message: "is required"}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, &domain.ValidationError{Field: "isOnDiet", Message: "must be a boolean"}
	}
	if n, ok := v.(float64); ok && n != 0 && n != 1 {
		return false, &domain.ValidationError{Field: "isOnDiet", Message: "must be a boolean"}
	}
	if _, ok := v.(string); ok {
		return false, &domain.ValidationError{Field: "isOnDiet", Message: "must be a boolean"}
	}
	b, err := domain.ParseDietFlag(v)
	if err != nil {
		return false, &domain.ValidationError{Field: "isOnDiet", Message: "must be a boolean"}
	}
	return b, nil
}

func decodeDate(raw json.RawMessage) (time.Time, error) {
	if isAbsent(raw) {
		return time.Time{}, &domain.ValidationError{Field: "date", Message: "is required"}
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &domain.ValidationError{Field: "date", Message: "must be epoch milliseconds or an RFC 3339 timestamp"}
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (s *Server) decodeMeal(w http.ResponseWriter, r *http.Request) (domain.MealFields, bool) {
	var req mealRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return domain.MealFields{}, false
	}
	f, err := req.fields()
	if err != nil {
		s.fail(w, r, err)
		return domain.MealFields{}, false
	}
	return f, true
}

func (s *Server) handleMealCreate(w http.ResponseWriter, r *http.Request) {
	f, ok := s.decodeMeal(w, r)
	if !ok {
		return
	}
	user := userFrom(r.Context())
	meal, err := s.meals.Create(r.Context(), user.ID, f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.mealsLogged.Inc()
	writeJSON(w, http.StatusCreated, map[string]any{"id": meal.ID})
}

func (s *Server) handleMealList(w http.ResponseWriter, r *http.Request) {
	meals, err := s.meals.List(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items := make([]mealJSON, len(meals))
	for i, m := range meals {
		items[i] = toMealJSON(m)
	}
	writeJSON(w, http.StatusOK, map[string]any{"meals": items})
}

func (s *Server) handleMealGet(w http.ResponseWriter, r *http.Request) {
	meal, err := s.meals.Get(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "mealID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meal": toMealJSON(*meal)})
}

func (s *Server) handleMealUpdate(w http.ResponseWriter, r *http.Request) {
	f, ok := s.decodeMeal(w, r)
	if !ok {
		return
	}
	if _, err := s.meals.Update(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "mealID"), f); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMealDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.meals.Delete(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "mealID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMealMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.meals.Metrics(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
