package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/notekeeper/internal/domain"
	"github.com/ErlanBelekov/notekeeper/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultSessionTTL  = 12 * time.Hour
	defaultRememberTTL = 30 * 24 * time.Hour
)

// SessionUsecase binds a client to a user. The client holds a signed token
// naming a server-side session row; deleting the row ends the session even if
// the token itself has not expired yet.
type SessionUsecase struct {
	sessions    repository.SessionRepository
	key         []byte
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

func NewSessionUsecase(sessions repository.SessionRepository, key []byte, ttl, rememberTTL time.Duration) *SessionUsecase {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if rememberTTL <= 0 {
		rememberTTL = defaultRememberTTL
	}
	return &SessionUsecase{
		sessions:    sessions,
		key:         key,
		ttl:         ttl,
		rememberTTL: rememberTTL,
		now:         time.Now,
	}
}

type IssuedSession struct {
	Token   string
	Session *domain.Session
}

// Establish opens a new session for who. remember selects the long-lived TTL.
func (u *SessionUsecase) Establish(ctx context.Context, who domain.Identity, remember bool) (*IssuedSession, error) {
	now := u.now()
	ttl := u.ttl
	if remember {
		ttl = u.rememberTTL
	}

	created, err := u.sessions.Create(ctx, &domain.Session{
		ID:        uuid.NewString(),
		OwnerID:   who.UserID(),
		Remember:  remember,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w: %w", domain.ErrStorage, err)
	}

	claims := jwt.RegisteredClaims{
		Subject:   created.OwnerID,
		ID:        created.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(created.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.key)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &IssuedSession{Token: signed, Session: created}, nil
}

// CurrentUser resolves token to a user ID. ok is false for any token that does
// not name a live session; err is only set when the store fails.
func (u *SessionUsecase) CurrentUser(ctx context.Context, token string) (userID string, ok bool, err error) {
	claims, valid := u.parse(token, true)
	if !valid {
		return "", false, nil
	}

	s, err := u.sessions.GetActive(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get session: %w: %w", domain.ErrStorage, err)
	}

	if s.UserID() != claims.Subject || s.Expired(u.now()) {
		return "", false, nil
	}
	return s.UserID(), true, nil
}

// Terminate ends the session named by token. Unknown, expired or garbage tokens
// are not an error.
func (u *SessionUsecase) Terminate(ctx context.Context, token string) error {
	claims, valid := u.parse(token, false)
	if !valid {
		return nil
	}
	if err := u.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

// ReapExpired deletes up to limit sessions whose expiry has passed.
func (u *SessionUsecase) ReapExpired(ctx context.Context, limit int) (int, error) {
	n, err := u.sessions.DeleteExpired(ctx, u.now(), limit)
	if err != nil {
		return 0, fmt.Errorf("reap sessions: %w: %w", domain.ErrStorage, err)
	}
	return n, nil
}

func (u *SessionUsecase) parse(token string, checkExpiry bool) (*jwt.RegisteredClaims, bool) {
	if token == "" {
		return nil, false
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(u.now),
	}
	if checkExpiry {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return u.key, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, false
	}

	if claims.Subject == "" {
		return nil, false
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return nil, false
	}
	return claims, true
}
