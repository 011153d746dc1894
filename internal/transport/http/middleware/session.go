package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ErlanBelekov/notekeeper/internal/authctx"
	"github.com/gin-gonic/gin"
)

const (
	// UserIDKey is the gin context key the session guard sets.
	UserIDKey = "userID"

	LoginPath = "/auth/login"

	errUnauthorized   = "Unauthorized"
	errInternalServer = "Internal server error"
)

// SessionResolver is the subset of SessionUsecase the guard needs.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (string, bool, error)
}

// RequireSession resolves the caller to a user before the handler runs. With no
// live session the request is aborted with 401 and a login_url that carries the
// original path as next.
func RequireSession(sessions SessionResolver, cookieName string, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "session_guard")

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, ok, err := sessions.CurrentUser(ctx, SessionToken(c, cookieName))
		if err != nil {
			logger.ErrorContext(ctx, "resolve session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": errInternalServer, "category": "error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     errUnauthorized,
				"category":  "error",
				"login_url": LoginURL(c.Request.URL.RequestURI()),
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(authctx.WithUserID(ctx, userID))
		c.Next()
	}
}

// SessionToken reads the session token from the cookie, falling back to a
// Bearer Authorization header for non-browser clients.
func SessionToken(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// LoginURL points at the login endpoint, carrying next only when it is safe.
func LoginURL(next string) string {
	if !IsSafeRedirect(next) {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}
