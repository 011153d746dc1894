package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/notekeeper/internal/domain"
	"github.com/ErlanBelekov/notekeeper/internal/transport/http/middleware"
	"github.com/ErlanBelekov/notekeeper/internal/usecase"
	"github.com/gin-gonic/gin"
)

const defaultRedirect = "/notes"

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

type sessionManager interface {
	Establish(ctx context.Context, who domain.Identity, remember bool) (*usecase.IssuedSession, error)
	Terminate(ctx context.Context, token string) error
}

type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	auth     authUsecaser
	sessions sessionManager
	cookie   CookieConfig
	logger   *slog.Logger
}

func NewAuthHandler(auth authUsecaser, sessions sessionManager, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		cookie:   cookie,
		logger:   logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
	Next     string `json:"next"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// POST /auth/register
// Creates the account only; the client logs in afterwards.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(errInvalidBody))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusBadRequest, validationBody(err))
		case errors.Is(err, domain.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, errorBody(errDuplicateEmail))
		default:
			h.logger.ErrorContext(c.Request.Context(), "register", "error", err)
			c.JSON(http.StatusInternalServerError, errorBody(errInternalServer))
		}
		return
	}

	h.logger.InfoContext(c.Request.Context(), "user registered", "user_id", user.ID)
	body := messageBody(categorySuccess, "Account created, please log in")
	body["id"] = user.ID
	body["email"] = user.Email
	c.JSON(http.StatusCreated, body)
}

// POST /auth/login
// Sets the session cookie and also returns the token for non-browser clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(errInvalidBody))
		return
	}
	if req.Next == "" {
		req.Next = c.Query("next")
	}

	ctx := c.Request.Context()

	user, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusBadRequest, validationBody(err))
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, errorBody(errInvalidCredentials))
		default:
			h.logger.ErrorContext(ctx, "login", "error", err)
			c.JSON(http.StatusInternalServerError, errorBody(errInternalServer))
		}
		return
	}

	issued, err := h.sessions.Establish(ctx, user, req.Remember)
	if err != nil {
		h.logger.ErrorContext(ctx, "establish session", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, errorBody(errInternalServer))
		return
	}

	h.setSessionCookie(c, issued)
	h.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "remember", req.Remember)

	body := messageBody(categorySuccess, "Logged in successfully")
	body["token"] = issued.Token
	body["expires_at"] = issued.Session.ExpiresAt
	body["redirect"] = middleware.SafeRedirect(req.Next, defaultRedirect)
	c.JSON(http.StatusOK, body)
}

// POST /auth/logout
// Always clears the cookie; logging out without a session is not an error.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.SessionToken(c, h.cookie.Name)
	h.clearSessionCookie(c)

	if err := h.sessions.Terminate(c.Request.Context(), token); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "terminate session", "error", err)
		c.JSON(http.StatusInternalServerError, errorBody(errInternalServer))
		return
	}

	c.Status(http.StatusNoContent)
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUser(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, errorBody(errUnauthorized))
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "get current user", "error", err)
		c.JSON(http.StatusInternalServerError, errorBody(errInternalServer))
		return
	}

	c.JSON(http.StatusOK, userResponse{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, issued *usecase.IssuedSession) {
	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    issued.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	// Without remember the cookie dies with the browser; the server-side expiry
	// applies either way.
	if issued.Session.Remember {
		cookie.Expires = issued.Session.ExpiresAt
		cookie.MaxAge = int(time.Until(issued.Session.ExpiresAt).Seconds())
	}
	http.SetCookie(c.Writer, cookie)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
