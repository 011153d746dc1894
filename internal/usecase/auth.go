package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/ErlanBelekov/notekeeper/internal/domain"
	"github.com/ErlanBelekov/notekeeper/internal/metrics"
	"github.com/ErlanBelekov/notekeeper/internal/repository"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultMinPasswordLength = 8

	// bcrypt ignores everything past 72 bytes; reject instead of silently truncating.
	maxPasswordBytes = 72
)

type AuthUsecase struct {
	users             repository.UserRepository
	validate          *validator.Validate
	minPasswordLength int
	bcryptCost        int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthUsecase(users repository.UserRepository, minPasswordLength, bcryptCost int) *AuthUsecase {
	if minPasswordLength <= 0 {
		minPasswordLength = defaultMinPasswordLength
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthUsecase{
		users:             users,
		validate:          validator.New(),
		minPasswordLength: minPasswordLength,
		bcryptCost:        bcryptCost,
	}
}

type RegisterInput struct {
	Email           string
	Password        string
	PasswordConfirm string
}

// Register validates the input, hashes the password and stores the user.
// It does not open a session; the caller has to log in afterwards.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := domain.NormalizeEmail(input.Email)

	if err := u.validateRegistration(email, input); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), u.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, email, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w: %w", domain.ErrStorage, err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	return user, nil
}

// Login returns the user owning email if password matches. An unknown email and
// a wrong password both yield domain.ErrInvalidCredentials.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)

	v := &domain.ValidationError{}
	if email == "" {
		v.Add("email", "is required")
	}
	if password == "" {
		v.Add("password", "is required")
	}
	if err := v.OrNil(); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Spend the same bcrypt work as a real comparison.
			_ = bcrypt.CompareHashAndPassword(u.dummy(), []byte(password))
			metrics.AuthAttemptsTotal.WithLabelValues("login", "rejected").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w: %w", domain.ErrStorage, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return user, nil
}

func (u *AuthUsecase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w: %w", domain.ErrStorage, err)
	}
	return user, nil
}

func (u *AuthUsecase) validateRegistration(email string, input RegisterInput) error {
	v := &domain.ValidationError{}

	switch {
	case email == "":
		v.Add("email", "is required")
	case u.validate.Var(email, "email") != nil:
		v.Add("email", "must be a valid email address")
	}

	switch {
	case input.Password == "":
		v.Add("password", "is required")
	case utf8.RuneCountInString(input.Password) < u.minPasswordLength:
		v.Add("password", fmt.Sprintf("must be at least %d characters", u.minPasswordLength))
	case len(input.Password) > maxPasswordBytes:
		v.Add("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}

	if input.PasswordConfirm != input.Password {
		v.Add("password_confirm", "does not match password")
	}

	return v.OrNil()
}

func (u *AuthUsecase) dummy() []byte {
	u.dummyOnce.Do(func() {
		u.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), u.bcryptCost)
	})
	return u.dummyHash
}
