package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ErlanBelekov/notekeeper/internal/domain"
	"github.com/ErlanBelekov/notekeeper/internal/metrics"
	"github.com/ErlanBelekov/notekeeper/internal/repository"
)

const (
	defaultNotesLimit = 50
	maxNotesLimit     = 100
)

// NoteUsecase mediates every note store call through the owning user's ID.
type NoteUsecase struct {
	repo repository.NoteRepository
}

func NewNoteUsecase(repo repository.NoteRepository) *NoteUsecase {
	return &NoteUsecase{repo: repo}
}

func (u *NoteUsecase) Create(ctx context.Context, userID, content string) (*domain.Note, error) {
	content, err := cleanContent(content)
	if err != nil {
		metrics.NoteOperationsTotal.WithLabelValues("create", "invalid").Inc()
		return nil, err
	}

	n, err := u.repo.Create(ctx, userID, content)
	if err != nil {
		metrics.NoteOperationsTotal.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("create note: %w: %w", domain.ErrStorage, err)
	}

	metrics.NoteOperationsTotal.WithLabelValues("create", "success").Inc()
	return n, nil
}

func (u *NoteUsecase) Get(ctx context.Context, userID string, noteID int64) (*domain.Note, error) {
	n, err := u.repo.GetByID(ctx, noteID, userID)
	if err != nil {
		return nil, ownedNoteErr("get note", err)
	}
	return n, nil
}

type ListNotesInput struct {
	UserID string
	Cursor string
	Limit  int
}

type ListNotesResult struct {
	Notes      []*domain.Note
	NextCursor *string
}

type noteCursor struct {
	CreatedAt time.Time `json:"c"`
	ID        int64     `json:"i"`
}

func decodeNoteCursor(s string) (*time.Time, int64, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, 0, fmt.Errorf("decode cursor: %w", err)
	}
	var c noteCursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, 0, fmt.Errorf("unmarshal cursor: %w", err)
	}
	return &c.CreatedAt, c.ID, nil
}

func encodeNoteCursor(createdAt time.Time, id int64) string {
	b, _ := json.Marshal(noteCursor{CreatedAt: createdAt, ID: id})
	return base64.RawURLEncoding.EncodeToString(b)
}

// List returns the user's notes newest first.
func (u *NoteUsecase) List(ctx context.Context, input ListNotesInput) (ListNotesResult, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultNotesLimit
	}
	if limit > maxNotesLimit {
		limit = maxNotesLimit
	}

	repoInput := repository.ListNotesInput{
		UserID: input.UserID,
		Limit:  limit + 1,
	}

	if input.Cursor != "" {
		cursorTime, cursorID, err := decodeNoteCursor(input.Cursor)
		if err != nil {
			v := &domain.ValidationError{}
			v.Add("cursor", "is malformed")
			return ListNotesResult{}, v
		}
		repoInput.CursorTime = cursorTime
		repoInput.CursorID = cursorID
	}

	notes, err := u.repo.List(ctx, repoInput)
	if err != nil {
		return ListNotesResult{}, fmt.Errorf("list notes: %w: %w", domain.ErrStorage, err)
	}

	var nextCursor *string
	if len(notes) == limit+1 {
		last := notes[limit-1]
		s := encodeNoteCursor(last.CreatedAt, last.ID)
		nextCursor = &s
		notes = notes[:limit]
	}

	return ListNotesResult{Notes: notes, NextCursor: nextCursor}, nil
}

func (u *NoteUsecase) Update(ctx context.Context, userID string, noteID int64, content string) (*domain.Note, error) {
	content, err := cleanContent(content)
	if err != nil {
		metrics.NoteOperationsTotal.WithLabelValues("update", "invalid").Inc()
		return nil, err
	}

	n, err := u.repo.Update(ctx, noteID, userID, content)
	if err != nil {
		metrics.NoteOperationsTotal.WithLabelValues("update", outcomeOf(err)).Inc()
		return nil, ownedNoteErr("update note", err)
	}

	metrics.NoteOperationsTotal.WithLabelValues("update", "success").Inc()
	return n, nil
}

func (u *NoteUsecase) Delete(ctx context.Context, userID string, noteID int64) error {
	if err := u.repo.Delete(ctx, noteID, userID); err != nil {
		metrics.NoteOperationsTotal.WithLabelValues("delete", outcomeOf(err)).Inc()
		return ownedNoteErr("delete note", err)
	}

	metrics.NoteOperationsTotal.WithLabelValues("delete", "success").Inc()
	return nil
}

func cleanContent(content string) (string, error) {
	content = strings.TrimSpace(content)

	v := &domain.ValidationError{}
	switch {
	case content == "":
		v.Add("content", "must not be empty")
	case utf8.RuneCountInString(content) > domain.MaxNoteLength:
		v.Add("content", fmt.Sprintf("must be at most %d characters", domain.MaxNoteLength))
	}
	if err := v.OrNil(); err != nil {
		return "", err
	}
	return content, nil
}

func ownedNoteErr(op string, err error) error {
	if errors.Is(err, domain.ErrNoteNotFound) {
		return domain.ErrNoteNotFound
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}

func outcomeOf(err error) string {
	if errors.Is(err, domain.ErrNoteNotFound) {
		return "not_found"
	}
	return "error"
}
