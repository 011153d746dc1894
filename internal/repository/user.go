package repository

import (
	"context"

	"github.com/ErlanBelekov/notekeeper/internal/domain"
)

// UserRepository is the credential store. Emails passed in are already normalized.
type UserRepository interface {
	// Create inserts the user and returns it with its DB-generated ID.
	// Returns domain.ErrDuplicateEmail when the email is taken, whether that is
	// caught by the pre-check or by the unique index at insert time.
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
