package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrSessionNotFound    = errors.New("session not found")
)

// Identity is anything that resolves to a user. Session code only needs this.
type Identity interface {
	UserID() string
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) UserID() string { return u.ID }

type Session struct {
	ID        string
	OwnerID   string
	Remember  bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) UserID() string { return s.OwnerID }

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// NormalizeEmail is the single normalization point for emails: every lookup and
// every write goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
