package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xnoubis/rosetta/pkg/core"
	"github.com/xnoubis/rosetta/pkg/embeddings"
	"github.com/xnoubis/rosetta/pkg/metrics"
	"github.com/xnoubis/rosetta/pkg/persistence"
)

// Server holds the HTTP interface and the underlying terrain engine.
// A single mutex serializes every engine access: walks mutate visit
// counts and hues, so even read-looking operations ride the lock.
type Server struct {
	mu     sync.Mutex
	engine *core.Engine

	cfg      Config
	embedder embeddings.Embedder
	runs     *runRegistry

	httpServer *http.Server
	authToken  string
}

// NewServer initializes the HTTP server. If a snapshot exists at the
// configured state path it is loaded; otherwise the server starts empty
// and waits for an ingest.
func NewServer(cfg Config) (*Server, error) {
	embedder, err := embeddings.New(cfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("resolving embedder: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		embedder:  embedder,
		runs:      newRunRegistry(),
		authToken: cfg.AuthToken,
	}

	if snap, err := persistence.Load(cfg.StatePath); err == nil {
		eng, err := core.FromSnapshot(snap)
		if err != nil {
			log.Printf("WARNING: saved state at %s is unusable: %v", cfg.StatePath, err)
		} else {
			s.engine = eng
			metrics.TotalFragments.Set(float64(eng.Graph().NodeCount()))
			log.Printf("Loaded terrain from %s (%d fragments, step %d)",
				cfg.StatePath, eng.Graph().NodeCount(), eng.State().Step)
		}
	} else if !errors.Is(err, persistence.ErrNoState) {
		return nil, err
	}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)

	// Chain middlewares: Recovery -> Logging -> Auth -> Mux
	// Order matters! Recovery must be outer-most to catch everything.
	var handler http.Handler = mux
	handler = s.authMiddleware(handler)
	handler = s.LoggingMiddleware(handler)
	handler = s.RecoveryMiddleware(handler)

	// Health and metrics stay outside the auth chain so probes and
	// scrapers need no token.
	rootMux := http.NewServeMux()
	rootMux.HandleFunc("GET /healthz", s.handleHealthz)
	rootMux.Handle("GET /metrics", promhttp.Handler())
	rootMux.Handle("/", handler)

	s.httpServer = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: rootMux,
	}

	return s, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server gracefully and persists the terrain.
func (s *Server) Shutdown() {
	log.Println("Starting graceful shutdown of HTTP Server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked()
}

// Handler exposes the full middleware-wrapped handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// persistLocked saves the current engine state. Callers hold s.mu.
// Persistence failures are logged, never fatal: the walk stays usable
// in memory.
func (s *Server) persistLocked() {
	if s.engine == nil || s.cfg.StatePath == "" {
		return
	}
	if err := persistence.Save(s.cfg.StatePath, s.engine.Snapshot()); err != nil {
		slog.Error("Failed to persist terrain state", "path", s.cfg.StatePath, "error", err)
	}
}
