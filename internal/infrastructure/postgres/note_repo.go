package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/notekeeper/internal/domain"
	"github.com/ErlanBelekov/notekeeper/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const noteColumns = `id, user_id, content, created_at, updated_at`

type NoteRepository struct {
	pool *pgxpool.Pool
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

func (r *NoteRepository) Create(ctx context.Context, userID, content string) (*domain.Note, error) {
	var created *domain.Note

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		n, err := scanNote(tx.QueryRow(ctx,
			`INSERT INTO notes (user_id, content) VALUES ($1, $2)
			 RETURNING `+noteColumns,
			userID, content,
		))
		if err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		created = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *NoteRepository) GetByID(ctx context.Context, id int64, userID string) (*domain.Note, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`,
		id, userID)
	return scanNote(row)
}

func (r *NoteRepository) List(ctx context.Context, input repository.ListNotesInput) ([]*domain.Note, error) {
	args := []any{input.UserID}
	where := []string{"user_id = $1"}

	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM notes
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`,
		noteColumns, strings.Join(where, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*domain.Note, 0, input.Limit)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

func (r *NoteRepository) Update(ctx context.Context, id int64, userID, content string) (*domain.Note, error) {
	var updated *domain.Note

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		n, err := scanNote(tx.QueryRow(ctx,
			`UPDATE notes SET content = $3, updated_at = clock_timestamp()
			 WHERE id = $1 AND user_id = $2
			 RETURNING `+noteColumns,
			id, userID, content,
		))
		if err != nil {
			return err
		}
		updated = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id int64, userID string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM notes WHERE id = $1 AND user_id = $2`,
			id, userID)
		if err != nil {
			return fmt.Errorf("delete note: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNoteNotFound
		}
		return nil
	})
}

func scanNote(row rowScanner) (*domain.Note, error) {
	var n domain.Note
	err := row.Scan(&n.ID, &n.UserID, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("scan note: %w", err)
	}
	return &n, nil
}
