// Package server wires the HTTP router, middleware, and all route
// definitions. It is the composition root: main.go creates a config and
// a logger, and everything else — database, services, handlers — is
// assembled here.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sajal/inkpad/internal/auth"
	"github.com/sajal/inkpad/internal/config"
	"github.com/sajal/inkpad/internal/handler"
	"github.com/sajal/inkpad/internal/middleware"
	sqliteRepo "github.com/sajal/inkpad/internal/repository/sqlite"
	"github.com/sajal/inkpad/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed and the file
// lock released.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, token and password
// services, the service layer, and handlers, then mounts the routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and mounts every route.
//
// Route table:
//
//	POST   /api/auth/register     → create an account
//	POST   /api/auth/login        → issue a token (body + cookie)
//	GET    /api/auth/check        → validate the current token
//	POST   /api/auth/logout       → clear the session cookie
//	GET    /api/notes             → list notes, position order
//	POST   /api/notes             → create a note
//	PUT    /api/notes/positions   → bulk reorder
//	PUT    /api/notes/{id}        → update title/body
//	DELETE /api/notes/{id}        → delete and renumber
//	GET    /api/users/theme       → read dark-mode preference
//	PUT    /api/users/theme       → set dark-mode preference
//	GET    /static/*, /           → SPA assets
//
// /api/notes/positions is registered before /api/notes/{id} so the
// literal segment wins over the parameter.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	noteService := service.NewNoteService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.config.Production(), s.config.TokenTTL, s.logger)
	noteHandler := handler.NewNoteHandler(noteService, s.logger)
	userHandler := handler.NewUserHandler(authService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/auth/check", authHandler.HandleAuthCheck)
		r.Post("/auth/logout", authHandler.HandleLogout)

		// Everything below requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/notes", noteHandler.HandleList)
			r.Post("/notes", noteHandler.HandleCreate)
			r.Put("/notes/positions", noteHandler.HandleReposition)
			r.Put("/notes/{id}", noteHandler.HandleUpdate)
			r.Delete("/notes/{id}", noteHandler.HandleDelete)

			r.Get("/users/theme", userHandler.HandleGetTheme)
			r.Put("/users/theme", userHandler.HandleSetTheme)
		})
	})

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, s.config.StaticDir+"/index.html")
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, wait for in-flight requests,
// close the database.
func (s *Server) Start() error {
	defer s.db.Close()

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
			slog.String("env", s.config.Env),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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
