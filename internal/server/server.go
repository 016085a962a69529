// Package server sets up the HTTP server, router, and all route
// definitions.
//
// This package is the "wiring" layer — the composition root where the
// whole dependency chain is assembled:
//
//	config → store (sqlite or postgres) → AccountService → AccountHandler
//	       → PasswordService / TokenService
//
// Handlers never touch the database; the service never touches HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/account-service/internal/auth"
	"github.com/sakif/account-service/internal/config"
	"github.com/sakif/account-service/internal/handler"
	"github.com/sakif/account-service/internal/middleware"
	"github.com/sakif/account-service/internal/repository"
	"github.com/sakif/account-service/internal/repository/postgres"
	"github.com/sakif/account-service/internal/repository/sqlite"
	"github.com/sakif/account-service/internal/service"
)

// Server owns the router and the store. The store is process-wide state
// initialized once here and closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  repository.Store
}

// New creates a Server with its full dependency graph wired.
//
// STORE SELECTION:
// DATABASE_URL set → Postgres via pgx; otherwise the embedded SQLite file
// at DB_PATH. Both implement repository.Store, so nothing downstream
// knows which backend it's on.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		store.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func newStore(cfg config.Config) (repository.Store, error) {
	if cfg.DatabaseURL != "" {
		return postgres.New(context.Background(), cfg.DatabaseURL)
	}
	return sqlite.New(cfg.DBPath)
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST /users/register → create an account
//	POST /users/login    → verify credentials, issue a token
//	GET  /users/profile  → caller's own profile (bearer token required)
//
// MIDDLEWARE ORDER MATTERS — RequestID and RealIP first so the logger
// sees them, Recoverer so a panicking handler becomes a 500 instead of a
// dead process.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	accountService := service.NewAccountService(s.store, passwords, tokens, s.logger)
	accountHandler := handler.NewAccountHandler(accountService, s.logger)

	s.router.Route("/users", func(r chi.Router) {
		r.Post("/register", accountHandler.HandleRegister)
		r.Post("/login", accountHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/profile", accountHandler.HandleProfile)
		})
	})

	return nil
}

// Start starts the HTTP server and blocks until shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections on SIGINT/SIGTERM
//  2. Wait up to 30s for in-flight requests to finish
//  3. Close the store (flushes SQLite's WAL / drains the pgx pool)
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
