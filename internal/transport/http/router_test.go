package httptransport_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httptransport "github.com/ErlanBelekov/notekeeper/internal/transport/http"
	"github.com/ErlanBelekov/notekeeper/internal/transport/http/handler"
	"github.com/ErlanBelekov/notekeeper/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type noSessions struct{}

func (noSessions) CurrentUser(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func newTestRouter() *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authHandler := handler.NewAuthHandler(nil, nil, handler.CookieConfig{Name: "nk"}, logger)
	noteHandler := handler.NewNoteHandler(usecase.NewNoteUsecase(nil), logger)
	return httptransport.NewRouter(logger, authHandler, noteHandler, httptransport.SessionConfig{
		Resolver:   noSessions{},
		CookieName: "nk",
	})
}

func TestRouter_GuardsNoteRoutes(t *testing.T) {
	r := newTestRouter()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/notes"},
		{http.MethodPost, "/notes"},
		{http.MethodGet, "/notes/1"},
		{http.MethodPut, "/notes/1"},
		{http.MethodDelete, "/notes/1"},
		{http.MethodGet, "/auth/me"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouter_SetsCommonHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("X-Request-ID", "req-123")
	newTestRouter().ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
