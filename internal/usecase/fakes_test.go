package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ErlanBelekov/notekeeper/internal/domain"
	"github.com/ErlanBelekov/notekeeper/internal/repository"
)

// memUserRepo is an in-memory UserRepository keyed by normalized email.
type memUserRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	nextID int
	calls  int
	err    error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, email, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.nextID++
	now := time.Now()
	u := &domain.User{
		ID:           fmt.Sprintf("user-%d", r.nextID),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[u.ID] = u
	return u, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// memNoteRepo mirrors the SQL ownership predicate: every lookup matches on id
// and user_id together.
type memNoteRepo struct {
	mu     sync.Mutex
	notes  map[int64]*domain.Note
	nextID int64
	clock  time.Time
	calls  int
	err    error
}

func newMemNoteRepo() *memNoteRepo {
	return &memNoteRepo{
		notes: map[int64]*domain.Note{},
		clock: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (r *memNoteRepo) Create(_ context.Context, userID, content string) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	n := &domain.Note{ID: r.nextID, UserID: userID, Content: content, CreatedAt: r.clock, UpdatedAt: r.clock}
	r.notes[n.ID] = n
	cp := *n
	return &cp, nil
}

func (r *memNoteRepo) owned(id int64, userID string) (*domain.Note, bool) {
	n, ok := r.notes[id]
	if !ok || n.UserID != userID {
		return nil, false
	}
	return n, true
}

func (r *memNoteRepo) GetByID(_ context.Context, id int64, userID string) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	n, ok := r.owned(id, userID)
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *memNoteRepo) List(_ context.Context, input repository.ListNotesInput) ([]*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	var out []*domain.Note
	for _, n := range r.notes {
		if n.UserID != input.UserID {
			continue
		}
		if input.CursorTime != nil {
			before := n.CreatedAt.Before(*input.CursorTime) ||
				(n.CreatedAt.Equal(*input.CursorTime) && n.ID < input.CursorID)
			if !before {
				continue
			}
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > input.Limit {
		out = out[:input.Limit]
	}
	return out, nil
}

func (r *memNoteRepo) Update(_ context.Context, id int64, userID, content string) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	n, ok := r.owned(id, userID)
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	n.Content = content
	n.UpdatedAt = n.UpdatedAt.Add(time.Millisecond)
	cp := *n
	return &cp, nil
}

func (r *memNoteRepo) Delete(_ context.Context, id int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	if _, ok := r.owned(id, userID); !ok {
		return domain.ErrNoteNotFound
	}
	delete(r.notes, id)
	return nil
}

// raw reads a note bypassing ownership, for asserting it was left untouched.
func (r *memNoteRepo) raw(id int64) (domain.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return domain.Note{}, false
	}
	return *n, true
}

var errDBDown = errors.New("connection refused")
