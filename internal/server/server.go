// Package server provides the HTTP server and routing for Watchdeck.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/watchdeck/internal/config"
	"github.com/aristath/watchdeck/internal/events"
	"github.com/aristath/watchdeck/internal/persistence"
	"github.com/aristath/watchdeck/internal/store"
	"github.com/aristath/watchdeck/internal/toast"
)

// Config holds server configuration
type Config struct {
	Port    int
	DevMode bool
	Log     zerolog.Logger
	Config  *config.Config

	Store       *store.Store
	Toast       *toast.Controller
	Persistence *persistence.Repository
	EventBus    *events.Bus
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    *config.Config

	store       *store.Store
	toast       *toast.Controller
	persistence *persistence.Repository
	eventBus    *events.Bus

	systemHandlers *SystemHandlers
	eventsWS       *EventsWSHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		cfg:         cfg.Config,
		store:       cfg.Store,
		toast:       cfg.Toast,
		persistence: cfg.Persistence,
		eventBus:    cfg.EventBus,
	}

	s.systemHandlers = NewSystemHandlers(cfg.Store, cfg.Persistence, cfg.Config, cfg.Log)
	s.eventsWS = NewEventsWSHandler(cfg.EventBus, cfg.Log)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// Live store-change push for subscribed views
		r.Get("/events/ws", s.eventsWS.ServeHTTP)

		// Reference data
		r.Get("/stocks", s.handleListStocks)
		r.Get("/stocks/{id}", s.handleGetStock)

		// Alerts
		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", s.handleListAlerts)
			r.Post("/", s.handleCreateAlert)
			r.Patch("/{id}", s.handleUpdateAlert)
			r.Delete("/{id}", s.handleDeleteAlert)
			r.Post("/{id}/test", s.handleTestAlert)
		})

		// Notifications
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleListNotifications)
			r.Post("/", s.handleCreateNotification)
			r.Delete("/{id}", s.handleDismissNotification)
			r.Post("/{id}/read", s.handleMarkAsRead)
		})

		// Groups
		r.Route("/groups", func(r chi.Router) {
			r.Get("/", s.handleListGroups)
			r.Post("/", s.handleCreateGroup)
			r.Delete("/{id}", s.handleDeleteGroup)
			r.Post("/{id}/stocks", s.handleAddStockToGroup)
		})

		// Preferences
		r.Get("/preferences", s.handleGetPreferences)
		r.Patch("/preferences", s.handleUpdatePreferences)

		// Toast lifecycle
		r.Route("/toast", func(r chi.Router) {
			r.Get("/", s.handleGetToast)
			r.Post("/dismiss", s.handleDismissToast)
			r.Post("/read-more", s.handleToastReadMore)
			r.Post("/close-detail", s.handleCloseDetail)
		})

		// System operations
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Post("/reset", s.handleReset)
			r.Post("/seed", s.handleSeed)
			r.Post("/export", s.systemHandlers.HandleExportSnapshot)
			r.Post("/import", s.systemHandlers.HandleImportSnapshot)
		})
	})

	// Phone screens (lock -> home -> settings)
	s.router.Route("/screens", func(r chi.Router) {
		r.Get("/lock", s.handleLockScreen)
		r.Get("/home", s.handleHomeScreen)
		r.Get("/settings", s.handleSettingsScreen)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router returns the chi router (used by handler tests)
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
