// Package server exposes the pipeline over HTTP: a health probe, a multipart
// document-extraction endpoint, and a mapping-config reload hook.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cargoflow/intake/internal/mapping"
	"github.com/cargoflow/intake/internal/pipeline"
)

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// UploadDir is where uploaded documents are spooled; it must be the root
	// of the store the pipeline reads from.
	UploadDir string
	// Pipeline processes uploaded documents.
	Pipeline *pipeline.Pipeline
	// Mappings is the hot-reloadable mapping configuration.
	Mappings *mapping.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// Server is the intake HTTP server.
type Server struct {
	httpServer *http.Server
	pipeline   *pipeline.Pipeline
	mappings   *mapping.Manager
	uploadDir  string
	logger     *slog.Logger
}

// New creates the server and wires its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	if cfg.Mappings == nil {
		return nil, fmt.Errorf("mapping manager is required")
	}
	if cfg.UploadDir == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		pipeline:  cfg.Pipeline,
		mappings:  cfg.Mappings,
		uploadDir: cfg.UploadDir,
		logger:    cfg.Logger.With("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /documents/extract", s.handleExtract)
	mux.HandleFunc("POST /mappings/reload", s.handleReload)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start runs the server until ctx is cancelled or the listener fails, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}
