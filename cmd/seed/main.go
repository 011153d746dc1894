// seed registers a demo user and a handful of notes in the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ErlanBelekov/notekeeper/internal/domain"
	"github.com/ErlanBelekov/notekeeper/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/notekeeper/internal/usecase"
	"github.com/joho/godotenv"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "seed-password"
)

var notes = []string{
	"Buy milk, eggs and coffee",
	"Call the dentist on Monday",
	"Ideas for the weekend: hike, museum, board games",
	"Renew passport before March",
	"Read chapter 4 of the Go book",
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		log.Fatalf("migrate: %v", err)
	}

	users := postgres.NewUserRepository(pool)
	auth := usecase.NewAuthUsecase(users, 8, 10)
	noteUC := usecase.NewNoteUsecase(postgres.NewNoteRepository(pool))

	// Re-runs reuse the existing account.
	user, err := auth.Register(ctx, usecase.RegisterInput{
		Email:           seedEmail,
		Password:        seedPassword,
		PasswordConfirm: seedPassword,
	})
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		user, err = auth.Login(ctx, seedEmail, seedPassword)
		if err != nil {
			pool.Close()
			log.Fatalf("login existing seed user: %v", err)
		}
	case err != nil:
		pool.Close()
		log.Fatalf("register seed user: %v", err)
	}

	for _, content := range notes {
		if _, err := noteUC.Create(ctx, user.ID, content); err != nil {
			pool.Close()
			log.Fatalf("create note: %v", err)
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:          %s\n", seedEmail)
	fmt.Printf("  Password:      %s\n", seedPassword)
	fmt.Printf("  User ID:       %s\n", user.ID)
	fmt.Printf("  Notes created: %d\n", len(notes))
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: log in and keep the session cookie:")
	fmt.Println()
	fmt.Printf("    curl -s -c cookies.txt -X POST http://localhost:8080/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println()
	fmt.Println("  Step 2: list notes, newest first:")
	fmt.Println()
	fmt.Println("    curl -s -b cookies.txt http://localhost:8080/notes")
	fmt.Println()
	fmt.Println("  Step 3: without the cookie you get 401 and a login_url:")
	fmt.Println()
	fmt.Println("    curl -s http://localhost:8080/notes")
}
