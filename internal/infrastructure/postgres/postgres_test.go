package postgres

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ErlanBelekov/notekeeper/internal/domain"
	"github.com/ErlanBelekov/notekeeper/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool is nil when no database could be started; tests then skip.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(runWithPostgres(m))
}

func runWithPostgres(m *testing.M) int {
	flag.Parse()
	if testing.Short() {
		return m.Run()
	}

	dockerPool, err := dockertest.NewPool("")
	if err == nil {
		err = dockerPool.Client.Ping()
	}
	if err != nil {
		fmt.Printf("docker unavailable, skipping postgres tests: %s\n", err)
		return m.Run()
	}

	resource, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=notekeeper",
			"POSTGRES_PASSWORD=notekeeper",
			"POSTGRES_DB=notekeeper",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		fmt.Printf("could not start postgres: %s\n", err)
		return 1
	}
	defer func() {
		if err := dockerPool.Purge(resource); err != nil {
			fmt.Printf("could not purge postgres: %s\n", err)
		}
	}()
	_ = resource.Expire(300)

	dsn := fmt.Sprintf("postgres://notekeeper:notekeeper@%s/notekeeper?sslmode=disable",
		resource.GetHostPort("5432/tcp"))

	ctx := context.Background()
	dockerPool.MaxWait = 120 * time.Second
	if err := dockerPool.Retry(func() error {
		var err error
		testPool, err = NewPool(ctx, dsn)
		return err
	}); err != nil {
		fmt.Printf("could not connect to postgres: %s\n", err)
		return 1
	}
	defer testPool.Close()

	if err := Migrate(ctx, testPool); err != nil {
		fmt.Printf("migrate: %s\n", err)
		return 1
	}

	return m.Run()
}

func requireDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testPool == nil {
		t.Skip("postgres not available")
	}
	return testPool
}

func createUser(t *testing.T, repo *UserRepository) *domain.User {
	t.Helper()
	u, err := repo.Create(context.Background(), uuid.NewString()+"@example.com", "$2a$04$hash")
	require.NoError(t, err)
	return u
}

func TestMigrate_IsIdempotent(t *testing.T) {
	pool := requireDB(t)
	assert.NoError(t, Migrate(context.Background(), pool))
}

func TestUserRepository(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	u := createUser(t, repo)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := repo.FindByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)

	_, err = repo.Create(ctx, u.Email, "other")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_ConcurrentDuplicateRegistration(t *testing.T) {
	pool := requireDB(t)
	repo := NewUserRepository(pool)
	email := uuid.NewString() + "@example.com"

	const n = 5
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := repo.Create(context.Background(), email, "hash")
			errs <- err
		}()
	}

	var ok, dup int
	for i := 0; i < n; i++ {
		err := <-errs
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrDuplicateEmail):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
}

func TestNoteRepository_Ownership(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	notes := NewNoteRepository(pool)

	alice := createUser(t, users)
	bob := createUser(t, users)

	n, err := notes.Create(ctx, alice.ID, "alice's note")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, n.UserID)

	_, err = notes.GetByID(ctx, n.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	_, err = notes.Update(ctx, n.ID, bob.ID, "hijacked")
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	err = notes.Delete(ctx, n.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	got, err := notes.GetByID(ctx, n.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice's note", got.Content)

	updated, err := notes.Update(ctx, n.ID, alice.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.True(t, !updated.UpdatedAt.Before(updated.CreatedAt))

	require.NoError(t, notes.Delete(ctx, n.ID, alice.ID))
	assert.ErrorIs(t, notes.Delete(ctx, n.ID, alice.ID), domain.ErrNoteNotFound)
}

func TestNoteRepository_ListNewestFirstWithCursor(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	notes := NewNoteRepository(pool)

	alice := createUser(t, users)
	bob := createUser(t, users)

	var ids []int64
	for i := 0; i < 4; i++ {
		n, err := notes.Create(ctx, alice.ID, fmt.Sprintf("note %d", i))
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	_, err := notes.Create(ctx, bob.ID, "bob's")
	require.NoError(t, err)

	all, err := notes.List(ctx, repository.ListNotesInput{UserID: alice.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, n := range all {
		assert.Equal(t, ids[len(ids)-1-i], n.ID)
		assert.Equal(t, alice.ID, n.UserID)
	}

	page, err := notes.List(ctx, repository.ListNotesInput{
		UserID:     alice.ID,
		CursorTime: &all[1].CreatedAt,
		CursorID:   all[1].ID,
		Limit:      10,
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, all[2].ID, page[0].ID)
	assert.Equal(t, all[3].ID, page[1].ID)
}

func TestSessionRepository(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	sessions := NewSessionRepository(pool)
	u := createUser(t, users)

	live, err := sessions.Create(ctx, &domain.Session{
		ID:        uuid.NewString(),
		OwnerID:   u.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	expired, err := sessions.Create(ctx, &domain.Session{
		ID:        uuid.NewString(),
		OwnerID:   u.ID,
		Remember:  true,
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	got, err := sessions.GetActive(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID())

	_, err = sessions.GetActive(ctx, expired.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	n, err := sessions.DeleteExpired(ctx, time.Now(), 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	require.NoError(t, sessions.Delete(ctx, live.ID))
	require.NoError(t, sessions.Delete(ctx, live.ID))
	_, err = sessions.GetActive(ctx, live.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	u := createUser(t, NewUserRepository(pool))

	sentinel := errors.New("boom")
	err := withTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO notes (user_id, content) VALUES ($1, 'rolled back')`, u.ID); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM notes WHERE user_id = $1`, u.ID).Scan(&count))
	assert.Zero(t, count)
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	u := createUser(t, NewUserRepository(pool))

	assert.Panics(t, func() {
		_ = withTx(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, `INSERT INTO notes (user_id, content) VALUES ($1, 'rolled back')`, u.ID); err != nil {
				return err
			}
			panic("boom")
		})
	})

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM notes WHERE user_id = $1`, u.ID).Scan(&count))
	assert.Zero(t, count)
}
