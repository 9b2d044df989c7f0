// Package server exposes the registry over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aitools/aitools/internal/bootstrap"
)

type Server struct {
	app  *bootstrap.App
	http *http.Server
}

func New(app *bootstrap.App) *Server {
	s := &Server{app: app}
	cfg := app.Config

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.setupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.AgentTimeout+30) * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully and closes
// the app's connections.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := s.http.Shutdown(shutdownCtx)
		s.app.Close()
		return err
	case err := <-errCh:
		s.app.Close()
		return err
	}
}
