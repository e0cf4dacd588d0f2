// AngelaMos | 2026
// server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ulearner/ulearner-backend/internal/config"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	shutdown   config.ServerConfig
}

func New(
	cfg config.ServerConfig,
	handler http.Handler,
	logger *slog.Logger,
) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger:   logger,
		shutdown: cfg,
	}
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	drainCtx, cancel := context.WithTimeout(ctx, s.shutdown.ShutdownTimeout)
	defer cancel()

	s.logger.Info("http server draining",
		"timeout", s.shutdown.ShutdownTimeout,
	)

	if err := s.httpServer.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
