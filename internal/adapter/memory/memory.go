// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"mealdiet/internal/domain"

	"github.com/google/uuid"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	meals    map[string]domain.MealRecord
	users    []*domain.User
	sessions map[string]*domain.Session

	mealSeq int64
	now     func() time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		meals:    make(map[string]domain.MealRecord),
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

// Ensure interfaces are met.
var _ domain.MealRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- MealRepository ---

// CreateMeal stores a new meal and assigns its id and creation sequence.
func (db *DB) CreateMeal(ctx context.Context, userID string, f domain.MealFields) (*domain.MealRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.mealSeq++
	now := db.now().UTC()
	meal := domain.MealRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        f.Name,
		Description: f.Description,
		IsOnDiet:    f.IsOnDiet,
		Date:        domain.NormalizeDate(f.Date),
		Seq:         db.mealSeq,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	db.meals[meal.ID] = meal
	return &meal, nil
}

// ListMeals returns a copy of the user's meals, most recent first.
func (db *DB) ListMeals(ctx context.Context, userID string) ([]domain.MealRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.MealRecord, 0)
	for _, m := range db.meals {
		if m.UserID == userID {
			result = append(result, m)
		}
	}
	domain.SortForListing(result)
	return result, nil
}

// GetMeal returns the meal if it exists and belongs to userID.
func (db *DB) GetMeal(ctx context.Context, userID, mealID string) (*domain.MealRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	m, ok := db.meals[mealID]
	if !ok || m.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

// UpdateMeal replaces the mutable fields of a meal owned by userID.
func (db *DB) UpdateMeal(ctx context.Context, userID, mealID string, f domain.MealFields) (*domain.MealRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	m, ok := db.meals[mealID]
	if !ok || m.UserID != userID {
		return nil, domain.ErrNotFound
	}
	m.Name = f.Name
	m.Description = f.Description
	m.IsOnDiet = f.IsOnDiet
	m.Date = domain.NormalizeDate(f.Date)
	m.UpdatedAt = db.now().UTC()
	db.meals[mealID] = m
	return &m, nil
}

// DeleteMeal removes a meal owned by userID.
func (db *DB) DeleteMeal(ctx context.Context, userID, mealID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	m, ok := db.meals[mealID]
	if !ok || m.UserID != userID {
		return domain.ErrNotFound
	}
	delete(db.meals, mealID)
	return nil
}

// --- UserRepository ---

// GetByEmail retrieves a user by email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, email) {
			return nil, domain.ErrEmailTaken
		}
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    db.now().UTC(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID, token, userAgent string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
		CreatedAt: r.db.now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := r.db.now()
	var n int64
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
			n++
		}
	}
	return n, nil
}
