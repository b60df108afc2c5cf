package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dropDatabas3/naiad/internal/observability/logger"
)

// Server envuelve http.Server con timeouts sanos y apagado ordenado.
type Server struct {
	srv *http.Server
}

// NewServer crea el server sobre el handler dado.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start bloquea sirviendo requests hasta Shutdown o error fatal.
func (s *Server) Start() error {
	logger.Named("http").Info("server listening", logger.Any("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drena las conexiones en curso dentro del deadline del contexto.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
