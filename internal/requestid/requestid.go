package requestid

import (
	"context"

	"github.com/google/uuid"
)

const Header = "X-Request-ID"

// Incoming IDs longer than this are replaced; they end up in every log line.
const maxLen = 128

type ctxKey struct{}

// New generates a random UUID v4 request ID.
func New() string {
	return uuid.NewString()
}

// Sanitize returns id if it is usable as a request ID, or a fresh one.
func Sanitize(id string) string {
	if id == "" || len(id) > maxLen {
		return New()
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return New()
		}
	}
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID from ctx. Returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
