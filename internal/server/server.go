// Package server exposes the scorer over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Kavirubc/gh-riskradar/internal/config"
	"github.com/Kavirubc/gh-riskradar/internal/logging"
	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

const shutdownTimeout = 10 * time.Second

// Engine is what the API serves
type Engine interface {
	ScorePR(ctx context.Context, pr models.PRRecord) (*models.RiskResult, error)
	Similar(ctx context.Context, text string, limit int) ([]models.Match, error)
	Summary(ctx context.Context) models.CorpusSummary
}

// Server is the HTTP API
type Server struct {
	engine Engine
	cfg    config.ServerConfig
	logger *zap.Logger
	router chi.Router
}

// New builds the router. Everything under /v1 shares one token bucket.
func New(engine Engine, cfg config.ServerConfig, logger *zap.Logger) *Server {
	s := &Server{
		engine: engine,
		cfg:    cfg,
		logger: logging.OrNop(logger),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	r.Route("/v1", func(r chi.Router) {
		r.Use(RateLimit(limiter))
		r.Use(MaxBody(cfg.MaxBodyBytes))
		r.Post("/score", s.handleScore)
		r.Post("/similar", s.handleSimilar)
		r.Get("/stats", s.handleStats)
	})

	s.router = r
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
