package domain

import (
	"errors"
	"time"
)

// ErrNoteNotFound covers both "no such note" and "not yours".
var ErrNoteNotFound = errors.New("note not found or you don't have permission")

const MaxNoteLength = 10000

type Note struct {
	ID        int64
	UserID    string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
