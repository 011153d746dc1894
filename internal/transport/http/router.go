package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/notekeeper/internal/transport/http/handler"
	"github.com/ErlanBelekov/notekeeper/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type SessionConfig struct {
	Resolver   middleware.SessionResolver
	CookieName string
}

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, noteHandler *handler.NoteHandler, sessions SessionConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	requireSession := middleware.RequireSession(sessions.Resolver, sessions.CookieName, logger)

	auth := r.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", requireSession, authHandler.Me)

	// Protected note routes
	notes := r.Group("/notes", requireSession)
	notes.GET("", noteHandler.List)
	notes.POST("", noteHandler.Create)
	notes.GET("/:id", noteHandler.GetByID)
	notes.PUT("/:id", noteHandler.Update)
	notes.DELETE("/:id", noteHandler.Delete)

	return r
}
