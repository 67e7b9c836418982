// Package server exposes the chat workflow over HTTP: a JSON chat
// endpoint with optional SSE streaming, health and status probes, an
// agent directory and prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/conversation"
	"github.com/vietbot-labs/ragcore/workflow"
)

// shutdownGrace bounds how long in-flight requests may drain on shutdown.
const shutdownGrace = 10 * time.Second

// Pipeline runs one chat turn, buffered or streamed.
type Pipeline interface {
	Run(ctx context.Context, question string, history []conversation.Turn) (workflow.Answer, error)
	RunStreaming(ctx context.Context, question string, history []conversation.Turn) <-chan workflow.Event
}

// ConnectionChecker probes the vector store for the health endpoints.
type ConnectionChecker interface {
	CheckConnection(ctx context.Context) (bool, map[string]int)
}

// ProviderCatalog enumerates the provider instances behind the current
// pipeline, keyed by kind, for the status endpoint.
type ProviderCatalog interface {
	ProviderNames() map[string][]string
}

// Server serves the chat API. The engine and search references are
// swappable so a config reload can replace the pipeline without
// restarting the listener; a nil engine keeps the API up and answers
// /chat with 503.
type Server struct {
	cfg *config.Config

	mu      sync.RWMutex
	engine  Pipeline
	search  ConnectionChecker
	catalog ProviderCatalog

	httpServer *http.Server
}

func New(cfg *config.Config, engine Pipeline, search ConnectionChecker, catalog ProviderCatalog) *Server {
	return &Server{cfg: cfg, engine: engine, search: search, catalog: catalog}
}

// Swap replaces the pipeline serving new requests. In-flight requests
// keep the engine they started with.
func (s *Server) Swap(engine Pipeline, search ConnectionChecker, catalog ProviderCatalog) {
	s.mu.Lock()
	s.engine = engine
	s.search = search
	s.catalog = catalog
	s.mu.Unlock()
}

func (s *Server) pipeline() (Pipeline, ConnectionChecker) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine, s.search
}

func (s *Server) providerCatalog() ProviderCatalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Handler builds the router. Middleware order: request ID -> request
// log -> metrics -> CORS, so logs and metrics see every request
// including preflights.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(metricsMiddleware)
	r.Use(corsMiddleware(s.cfg.Server.AllowedOrigins))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/agents", s.handleAgents)
	r.Get("/status", s.handleStatus)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Post("/chat", s.handleChat)

	return r
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.cfg.Server.Address(),
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server failed: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
