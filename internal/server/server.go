package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"aivan/internal/config"
	"aivan/internal/generate"
	"aivan/internal/logger"
	"aivan/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	cfg        *config.Config
	log        *slog.Logger
	renderer   *TemplateRenderer
	sessions   *session.Manager
	service    *generate.Service
}

// New creates a new HTTP server instance
func New(cfg *config.Config, service *generate.Service) *Server {
	log := logger.Get()

	renderer, err := NewTemplateRenderer(cfg.App.Debug, cfg.Server.TemplatesDir)
	if err != nil {
		log.Warn("Failed to initialize template renderer, web pages may not work", "error", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		cfg:      cfg,
		log:      log,
		renderer: renderer,
		sessions: session.NewManager(cfg.Generate.HistoryLimit),
		service:  service,
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // generation calls are slow
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(5 * time.Minute))
	s.router.Use(securityHeaders)
	s.router.Use(requirePassword)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/status", s.handleStatus)

	// Web pages
	s.router.Get("/", s.handleHomePage)
	s.router.Get("/history", s.handleHistoryPage)
	s.router.Get("/history/{id}", s.handleHistoryEntryPage)

	// Actions
	s.router.Post("/generate", s.handleGenerate)
	s.router.Post("/revise", s.handleRevise)
	s.router.Post("/title", s.handleTitle)
	s.router.Post("/history/{id}/restore", s.handleHistoryRestore)
	s.router.Get("/download/{variant}", s.handleDownload)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
