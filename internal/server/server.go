// Package server wires handlers, middleware, and routes together.
//
// This is the composition root: the database, services, handlers, and
// the optional snippet runner are all assembled here, so main.go stays
// a thin entry point and the wiring is testable on its own.
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

	"github.com/sakif/snippets-library/internal/auth"
	"github.com/sakif/snippets-library/internal/handler"
	"github.com/sakif/snippets-library/internal/middleware"
	sqliteRepo "github.com/sakif/snippets-library/internal/repository/sqlite"
	"github.com/sakif/snippets-library/internal/runner"
	"github.com/sakif/snippets-library/internal/service"
)

// Config holds server configuration, loaded by main from the
// environment.
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string
	DBPath      string

	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the resources that must be released on
// shutdown: the database connection and, when available, the sandbox
// runner.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	runner runner.Runner
}

// New assembles the full dependency chain. runner may be nil when no
// Docker daemon is available; snippet execution then responds 503.
func New(cfg Config, r runner.Runner, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		runner: r,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// Middleware order: RequestID first so every later log line can carry
// it, then RealIP, Recoverer, request logging, and the anti-forgery
// cookie issuer.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.IssueAntiForgery)

	// Static files: GET /static/css/app.css → {StaticDir}/css/app.css
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// === Auth plumbing ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	github := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.GitHubCallbackURL,
	)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	// === Services ===
	// s.db implements every repository interface, so it is passed for
	// each dependency; the services only ever see the interfaces.
	snippetService := service.NewSnippetService(s.db, s.db, s.db, s.db, s.logger)
	catalogService := service.NewCatalogService(s.db, s.db, s.db, s.db, s.logger)
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)

	// === Handlers ===
	renderer, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	snippetHandler := handler.NewSnippetHandler(snippetService, catalogService, renderer, s.logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, s.logger)
	authHandler := handler.NewAuthHandler(github, authService, s.logger)
	runHandler := handler.NewRunHandler(snippetService, s.runner, s.logger)
	errorHandler := handler.NewErrorHandler(renderer)

	// === Snippet routes ===
	// The URL scheme is kept stable for existing bookmarks and the
	// front-end code that posts to these paths.
	s.router.Route("/Snippets", func(r chi.Router) {
		// Public pages, with the session picked up when present.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/AllSnippets", snippetHandler.HandleAllSnippets)
			r.Get("/Details/{id}", snippetHandler.HandleDetails)
			r.Get("/SearchAuthors", catalogHandler.HandleSearchAuthors)
			r.Get("/SearchTags", catalogHandler.HandleSearchTags)
			r.Get("/Error", errorHandler.HandleError)
		})

		// Everything below requires a session.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/MySnippets", snippetHandler.HandleMySnippets)
			r.Get("/FavoriteSnippets", snippetHandler.HandleFavoriteSnippets)
			r.Get("/AddSnippet", snippetHandler.HandleAddSnippetPage)
			r.Post("/CreateSnippetAsync", snippetHandler.HandleCreateSnippet)
			r.Get("/EditSnippet/{id}", snippetHandler.HandleEditSnippetPage)
			r.Post("/AddSnippetToSavedAsync", snippetHandler.HandleToggleSaved)
			r.Post("/RunSnippet/{id}", runHandler.HandleRunSnippet)

			// State-changing form posts additionally carry the
			// anti-forgery token.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAntiForgery)
				r.Post("/EditSnippet", snippetHandler.HandleEditSnippetSubmit)
				r.Post("/DeleteSnippet", snippetHandler.HandleDeleteSnippet)
			})
		})
	})

	// === Auth routes ===
	s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	s.router.Post("/auth/logout", authHandler.HandleLogout)

	// === JSON API ===
	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.HandleMe)
			r.Post("/tags/add", catalogHandler.HandleAddTag)
		})
	})

	// The listing is the natural landing page.
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/Snippets/AllSnippets", http.StatusFound)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, and
// finally close the database so the WAL is flushed.
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
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
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

// Router exposes the chi mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
