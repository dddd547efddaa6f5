// Package server provides the HTTP server and route configuration
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/larderapp/larder/internal/infrastructure/config"
	"github.com/larderapp/larder/internal/infrastructure/http/handlers"
	"github.com/larderapp/larder/internal/infrastructure/http/middleware"
)

// Server wraps the HTTP server with its router and dependencies
type Server struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
}

// Handlers bundles the handler groups the router mounts
type Handlers struct {
	Recipes  *handlers.RecipeHandlers
	Imports  *handlers.ImportHandlers
	Chat     *handlers.ChatHandlers
	Progress *handlers.ProgressHandler
}

// NewServer creates a new HTTP server with all routes configured
func NewServer(cfg *config.Config, logger *zap.Logger, h Handlers) *Server {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, cfg.App.Version)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.Recipes.List)
			r.Post("/", h.Recipes.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Recipes.Get)
				r.Patch("/", h.Recipes.Update)
				r.Delete("/", h.Recipes.Delete)
				r.Put("/rating", h.Recipes.Rate)
				r.Get("/portions", h.Recipes.Portions)
				r.Post("/scale", h.Recipes.Scale)
				r.Post("/reparse", h.Recipes.Reparse)

				r.Get("/chat", h.Chat.History)
				r.Post("/chat", h.Chat.Send)
				r.Delete("/chat", h.Chat.Clear)
				r.Post("/chat/apply", h.Chat.Apply)
			})
		})

		r.Route("/import", func(r chi.Router) {
			r.Post("/text", h.Imports.FromText)
			r.Post("/url", h.Imports.FromURL)
			r.Post("/photos", h.Imports.FromPhotos)
			r.Get("/{jobID}/progress", h.Progress.Watch)
		})

		r.Post("/generate", h.Imports.Generate)
	})

	return &Server{
		config: cfg,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

// Start begins listening; it blocks until the server stops
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains connections and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	ctx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
