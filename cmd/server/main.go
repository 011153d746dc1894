package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/notekeeper/config"
	"github.com/ErlanBelekov/notekeeper/internal/health"
	"github.com/ErlanBelekov/notekeeper/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/notekeeper/internal/log"
	"github.com/ErlanBelekov/notekeeper/internal/metrics"
	"github.com/ErlanBelekov/notekeeper/internal/scheduler"
	httptransport "github.com/ErlanBelekov/notekeeper/internal/transport/http"
	"github.com/ErlanBelekov/notekeeper/internal/transport/http/handler"
	"github.com/ErlanBelekov/notekeeper/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := postgres.Migrate(ctx, pool); err != nil {
			stop()
			pool.Close()
			log.Fatalf("migrate: %v", err)
		}
		logger.Info("migrations applied")
	}

	// Users and sessions
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	authUsecase := usecase.NewAuthUsecase(userRepo, cfg.MinPasswordLength, cfg.BcryptCost)
	sessionUsecase := usecase.NewSessionUsecase(sessionRepo, []byte(cfg.SessionSecret), cfg.SessionTTL, cfg.RememberTTL)
	authHandler := handler.NewAuthHandler(authUsecase, sessionUsecase, handler.CookieConfig{
		Name:   cfg.CookieName,
		Secure: cfg.CookieSecure,
	}, logger)

	// Notes
	noteRepo := postgres.NewNoteRepository(pool)
	noteUsecase := usecase.NewNoteUsecase(noteRepo)
	noteHandler := handler.NewNoteHandler(noteUsecase, logger)

	reaper, err := scheduler.NewReaper(sessionUsecase, cfg.SessionReapSpec, logger)
	if err != nil {
		stop()
		pool.Close()
		log.Fatalf("reaper: %v", err)
	}

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, noteHandler, httptransport.SessionConfig{
			Resolver:   sessionUsecase,
			CookieName: cfg.CookieName,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go reaper.Start(ctx)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
