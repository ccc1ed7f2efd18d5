// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: New opens the store, builds the services
// and handlers on top of it, and mounts them on a chi router. Nothing below
// this package knows which database is in use or how routes are grouped.
//
//	config.Config → store (sqlite or postgres)
//	             → VoteService / CommentService / ProfileService
//	             → handlers → routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/pawpoll/internal/auth"
	"github.com/sakif/pawpoll/internal/config"
	"github.com/sakif/pawpoll/internal/handler"
	"github.com/sakif/pawpoll/internal/middleware"
	"github.com/sakif/pawpoll/internal/places"
	"github.com/sakif/pawpoll/internal/repository"
	pgRepo "github.com/sakif/pawpoll/internal/repository/postgres"
	sqliteRepo "github.com/sakif/pawpoll/internal/repository/sqlite"
	"github.com/sakif/pawpoll/internal/service"
)

// store bundles the three repositories of one backend with its lifecycle.
type store struct {
	repository.Backend
	votes    repository.VoteRepository
	comments repository.CommentRepository
	profiles repository.ProfileRepository
	name     string
}

// openStore picks postgres when DATABASE_URL is set, SQLite otherwise.
func openStore(ctx context.Context, cfg config.Config) (*store, error) {
	if cfg.DatabaseURL != "" {
		db, err := pgRepo.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		return &store{
			Backend:  db,
			votes:    db.Votes(),
			comments: db.Comments(),
			profiles: db.Profiles(),
			name:     "postgres",
		}, nil
	}

	if cfg.DBPath != ":memory:" {
		// mkdir -p for the database file's directory
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	return &store{
		Backend:  db,
		votes:    db.Votes(),
		comments: db.Comments(),
		profiles: db.Profiles(),
		name:     "sqlite",
	}, nil
}

// Server represents the HTTP server and all its dependencies.
// The server owns the store and closes it when Start returns.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  *store
}

// New opens the store and wires every layer on top of it.
//
// Sign-in is optional: without JWT_SECRET and Google credentials the auth
// routes are not mounted and every protected route answers 401, while the
// public reads keep working.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  st,
	}

	if err := s.setupRoutes(); err != nil {
		st.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store. Start calls it on the way out.
func (s *Server) Close() error {
	return s.store.Close()
}

// setupRoutes configures middleware and routes.
//
// MIDDLEWARE ORDER:
//  1. RequestID, so the logger can print it
//  2. RealIP
//  3. Logger
//  4. Recoverer, inside the logger so a panic still logs as a 500
//  5. CORS, so preflights never reach auth
//  6. body size limit
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.NewCORSHandler(s.config.CORSOrigins))
	s.router.Use(middleware.NewMaxBodySizeHandler(s.config.MaxBodyBytes))

	profileService := service.NewProfileService(s.store.profiles, s.logger)
	voteHandler := handler.NewVoteHandler(service.NewVoteService(s.store.votes, s.logger), s.logger)
	commentHandler := handler.NewCommentHandler(service.NewCommentService(s.store.comments, s.logger), s.logger)
	profileHandler := handler.NewProfileHandler(profileService, s.logger)
	placesHandler := handler.NewPlacesHandler(places.New(s.config.GoogleMapsAPIKey, ""), s.logger)
	healthHandler := handler.NewHealthHandler(s.store, s.logger)

	if s.config.GoogleMapsAPIKey == "" {
		s.logger.Warn("GOOGLE_MAPS_API_KEY not set, /api/places will answer 502")
	}

	// A nil token service makes RequireAuth reject everything.
	var tokens *auth.TokenService
	if s.config.AuthEnabled() {
		var err error
		tokens, err = auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}

		authHandler := handler.NewAuthHandler(
			auth.NewGoogleProvider(s.config.GoogleClientID, s.config.GoogleClientSecret, s.config.GoogleCallbackURL),
			service.NewAuthService(profileService, tokens, s.logger),
			strings.HasPrefix(s.config.GoogleCallbackURL, "https://"),
			s.config.FrontendURL,
			s.logger,
		)

		s.router.Route("/auth", func(r chi.Router) {
			r.Get("/google/login", authHandler.HandleGoogleLogin)
			r.Get("/google/callback", authHandler.HandleGoogleCallback)
			r.Post("/logout", authHandler.HandleLogout)
		})
	} else {
		s.logger.Warn("JWT_SECRET or Google OAuth credentials not set, sign-in is disabled")
	}

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Public
		r.Get("/votes", voteHandler.HandleAggregate)
		r.Get("/places", placesHandler.HandleAutocomplete)
		r.Get("/places/{placeId}", placesHandler.HandleDetails)
		r.With(auth.OptionalAuth(tokens)).Get("/comments", commentHandler.HandleListForPlace)

		// Signed in
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Post("/votes", voteHandler.HandleSubmit)
			r.Get("/votes/user", voteHandler.HandleListOwn)
			r.Patch("/votes/user", voteHandler.HandleEdit)
			r.Delete("/votes/user", voteHandler.HandleDelete)

			r.Post("/comments", commentHandler.HandlePost)
			r.Get("/comments/user", commentHandler.HandleListOwn)
			r.Patch("/comments/user", commentHandler.HandleEdit)
			r.Delete("/comments/user", commentHandler.HandleDelete)

			r.Get("/user/profile", profileHandler.HandleGet)
			r.Patch("/user/profile", profileHandler.HandleUpdate)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT or SIGTERM.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections
//  2. Give in-flight requests 30 seconds to finish
//  3. Close the store
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
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.store.name),
			slog.Bool("auth", s.config.AuthEnabled()),
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
