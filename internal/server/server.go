// internal/server/server.go
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"whatsnext/internal/observability/logging"
)

// Server represents an HTTP server
type Server struct {
	httpServer      *http.Server
	metricsServer   *http.Server
	logger          *logging.Logger
	shutdownTimeout time.Duration
	closers         []io.Closer
}

// Config holds server configuration
type Config struct {
	// Address is the address to listen on
	Address string

	// MetricsAddress is the address to listen on for metrics; empty disables the metrics server
	MetricsAddress string

	// TLSConfig enables HTTPS when set
	TLSConfig *tls.Config

	// ShutdownTimeout is the maximum time to wait for a graceful shutdown
	ShutdownTimeout time.Duration
}

// New creates a new server. closers are closed after the servers stop.
func New(config Config, handler http.Handler, metricsHandler http.Handler, logger *logging.Logger, closers ...io.Closer) *Server {
	httpServer := &http.Server{
		Addr:              config.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         config.TLSConfig,
	}

	var metricsServer *http.Server
	if config.MetricsAddress != "" {
		metricsServer = &http.Server{
			Addr:              config.MetricsAddress,
			Handler:           metricsHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return &Server{
		httpServer:      httpServer,
		metricsServer:   metricsServer,
		logger:          logger.WithModule("server"),
		shutdownTimeout: config.ShutdownTimeout,
		closers:         closers,
	}
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	if s.metricsServer != nil {
		go func() {
			s.logger.Info("Starting metrics server", "address", s.metricsServer.Addr)
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("Metrics server failed", logging.Err(err))
			}
		}()
	}

	if s.httpServer.TLSConfig != nil {
		s.logger.Info("Starting HTTPS server", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTPS server failed: %w", err)
		}
	} else {
		s.logger.Info("Starting HTTP server", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	return nil
}

// Stop stops the server gracefully and releases its resources
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping servers", "timeout", s.shutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shut down metrics server", logging.Err(err))
		} else {
			s.logger.Info("Metrics server stopped")
		}
	}

	err := s.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Error("Failed to shut down HTTP server", logging.Err(err))
	} else {
		s.logger.Info("HTTP server stopped")
	}

	for _, c := range s.closers {
		if cerr := c.Close(); cerr != nil {
			s.logger.Error("Failed to release resource", logging.Err(cerr))
		}
	}

	return err
}
