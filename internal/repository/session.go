package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/notekeeper/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) (*domain.Session, error)
	// GetActive returns the session only if it exists and has not expired.
	GetActive(ctx context.Context, id string) (*domain.Session, error)
	// Delete is a no-op for unknown IDs.
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes up to limit sessions that expired before cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int, error)
}
