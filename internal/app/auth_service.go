// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/mail"
	"strings"
	"time"

	"mealdiet/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionTTL is used when NewAuthService is given a non-positive TTL.
const DefaultSessionTTL = 7 * 24 * time.Hour

const minPasswordLen = 8

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// AuthService registers users and resolves session tokens to users.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	ttl      time.Duration
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
	}
}

// SessionTTL reports how long new sessions stay valid.
func (s *AuthService) SessionTTL() time.Duration { return s.ttl }

// Register creates a user and signs them in. password may be empty, in which
// case the user can only come back through the session cookie or SSO.
func (s *AuthService) Register(ctx context.Context, name, email, password, userAgent string) (*domain.User, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", &domain.ValidationError{Field: "name", Message: "is required"}
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}

	var hash string
	if password != "" {
		if len(password) < minPasswordLen {
			return nil, "", &domain.ValidationError{Field: "password", Message: "must be at least 8 characters"}
		}
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, "", err
		}
		hash = string(b)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", domain.ErrEmailTaken
	}

	user, err := s.users.Create(ctx, name, email, hash)
	if err != nil {
		return nil, "", err
	}

	token, err := s.openSession(ctx, user.ID, userAgent)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates a user by email and password and creates a session.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || user == nil || user.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.openSession(ctx, user.ID, userAgent)
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks if a session token is valid and matches the user agent.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (*domain.User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	if !ConstantTimeCompare(session.UserAgent, userAgent) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ValidateForwardAuth resolves a user from trusted reverse-proxy headers.
// Unknown users are provisioned on first sight.
func (s *AuthService) ValidateForwardAuth(ctx context.Context, remoteUser, remoteEmail string) (*domain.User, error) {
	if remoteUser == "" || remoteEmail == "" {
		return nil, errors.New("no remote user header")
	}
	return s.provision(ctx, remoteUser, remoteEmail)
}

// LoginWithUser creates a session for an already authenticated user (e.g. via SSO).
func (s *AuthService) LoginWithUser(ctx context.Context, name, email, userAgent string) (string, error) {
	user, err := s.provision(ctx, name, email)
	if err != nil {
		return "", err
	}
	return s.openSession(ctx, user.ID, userAgent)
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}

func (s *AuthService) provision(ctx context.Context, name, email string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	if name = strings.TrimSpace(name); name == "" {
		name = email
	}
	user, err = s.users.Create(ctx, name, email, "")
	if errors.Is(err, domain.ErrEmailTaken) {
		// Lost a race with a concurrent provision of the same email.
		user, err = s.users.GetByEmail(ctx, email)
		if err == nil && user == nil {
			err = ErrUserNotFound
		}
	}
	return user, err
}

func (s *AuthService) openSession(ctx context.Context, userID, userAgent string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.sessions.Create(ctx, userID, token, userAgent, time.Now().Add(s.ttl)); err != nil {
		return "", err
	}
	return token, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", &domain.ValidationError{Field: "email", Message: "is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", &domain.ValidationError{Field: "email", Message: "is not a valid address"}
	}
	return email, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
