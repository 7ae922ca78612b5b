// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"loandoc-workers/internal/common/config"
	"loandoc-workers/internal/common/logger"
)

// Server wraps the validation API's http.Server with lifecycle management.
type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

func NewServer(cfg config.APIConfig, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.ListenAddress,
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
		},
		logger: log.WithFields(map[string]interface{}{"component": "api-server"}),
	}
}

// Start blocks serving requests until the listener closes.
func (s *Server) Start() error {
	s.logger.Info("validation API listening", map[string]interface{}{
		"address": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down validation API", nil)
	return s.httpServer.Shutdown(ctx)
}
