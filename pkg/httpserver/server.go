package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mselser95/auctionflow/internal/registry"
	"github.com/mselser95/auctionflow/internal/router"
	"github.com/mselser95/auctionflow/pkg/cache"
	"github.com/mselser95/auctionflow/pkg/healthprobe"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server provides HTTP endpoints for metrics, health checks and the
// auction API.
type Server struct {
	server        *http.Server
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
}

// Config holds server configuration.
type Config struct {
	Port          string
	Logger        *zap.Logger
	HealthChecker *healthprobe.HealthChecker
	Registry      *registry.Registry
	Router        *router.Router
	QuoteCache    cache.Cache
	QuoteTTL      time.Duration
	Feed          http.Handler
}

// New creates a new HTTP server.
func New(cfg *Config) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/metrics", promhttp.Handler().ServeHTTP)
		r.Get("/health", cfg.HealthChecker.Health())
		r.Get("/ready", cfg.HealthChecker.Ready())

		// Auction API (if components provided)
		if cfg.Registry != nil {
			handler := NewPairHandler(cfg.Registry, cfg.Router, cfg.QuoteCache, cfg.QuoteTTL, cfg.Logger)
			r.Get("/api/pairs", handler.HandleListPairs)
			r.Get("/api/pairs/{pairID}", handler.HandleGetPair)
			r.Get("/api/pairs/{pairID}/quote", handler.HandleQuote)
			if cfg.Router != nil {
				r.Post("/api/pairs/{pairID}/swap", handler.HandleSwap)
			}
		}
	})

	// Live swap feed stays outside the timeout middleware so the
	// connection can be hijacked for the WebSocket upgrade.
	if cfg.Feed != nil {
		r.Get("/ws/swaps", cfg.Feed.ServeHTTP)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		server:        server,
		logger:        cfg.Logger,
		healthChecker: cfg.HealthChecker,
	}
}

// Start starts the HTTP server.
// This is a blocking call that returns when the server stops or encounters an error.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}
