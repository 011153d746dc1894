package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/notekeeper/internal/domain"
)

type ListNotesInput struct {
	UserID     string
	CursorTime *time.Time // cursor on (created_at DESC, id DESC)
	CursorID   int64
	Limit      int
}

// NoteRepository is the note store. Every method that takes a note ID also takes
// the owner and filters on both in the same statement.
type NoteRepository interface {
	Create(ctx context.Context, userID, content string) (*domain.Note, error)
	GetByID(ctx context.Context, id int64, userID string) (*domain.Note, error)
	List(ctx context.Context, input ListNotesInput) ([]*domain.Note, error)
	Update(ctx context.Context, id int64, userID, content string) (*domain.Note, error)
	Delete(ctx context.Context, id int64, userID string) error
}
