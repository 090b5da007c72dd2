package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
	"github.com/muurk/kioskcfg/internal/presets"
	"go.uber.org/zap"
)

// Config holds the server configuration
type Config struct {
	Host    string
	Port    int              // 0 picks a free port
	Catalog *presets.Catalog // Preset tables for the preset commands (optional)
}

// Server serves the form page, the JSON API and the live preview socket
// over one shared store.
type Server struct {
	config      *Config
	store       *kiosk.Store
	registry    *kiosk.Registry
	handler     http.Handler
	httpServer  *http.Server
	listener    net.Listener
	hub         *hub
	wg          sync.WaitGroup
	mu          sync.Mutex
	unsubscribe func()
}

// New creates a Server editing store. Every successful dispatch, from any
// source, is pushed to connected WebSocket clients.
func New(config *Config, store *kiosk.Store) *Server {
	s := &Server{
		config:   config,
		store:    store,
		registry: CommandRegistry(config.Catalog),
		hub:      newHub(),
	}
	s.handler = s.routes()
	s.unsubscribe = store.Subscribe(func(cfg kiosk.Configuration) {
		s.hub.broadcastPreview(BuildPreview(&cfg))
	})
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Listen binds the listening socket and returns its address.
func (s *Server) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr(), nil
	}
	addr := net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	return listener.Addr(), nil
}

// Start serves until ctx is cancelled, a shutdown signal arrives or the
// server fails, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	listener := s.listener
	s.mu.Unlock()

	logging.Info("Server listening for connections",
		zap.String("addr", addr.String()),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
	case <-ctx.Done():
		logging.Info("Context cancelled, stopping server...")
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests, closes WebSocket clients and waits for
// their goroutines to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if s.unsubscribe != nil {
		s.unsubscribe()
	}

	s.mu.Lock()
	srv := s.httpServer
	listener := s.listener
	s.mu.Unlock()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			logging.Error("Error shutting down HTTP server", zap.Error(err))
		}
	} else if listener != nil {
		if err := listener.Close(); err != nil {
			logging.Error("Error closing listener", zap.Error(err))
		}
	}

	// Hijacked connections are not closed by http.Server.Shutdown
	s.hub.closeAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()
	return nil
}

// GetActiveConnections returns the number of connected WebSocket clients
func (s *Server) GetActiveConnections() int {
	return s.hub.count()
}
