package api

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Server exposes StateHub over HTTP
type Server struct {
	httpServer *http.Server
	logger     *zap.SugaredLogger
}

// NewServer prepares server listening on addr
func NewServer(addr string, hub *StateHub, logger *zap.SugaredLogger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: SetRouter(hub),
		},
		logger: logger,
	}
}

// Run serves until context is cancelled
func (server *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		server.logger.Infow("http view started", "addr", server.httpServer.Addr)
		errCh <- server.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "can't shutdown http server")
	}
	server.logger.Infow("http view stopped")
	return nil
}
