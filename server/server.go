// Package server wires the date API: recognizer, cache, echo routes and lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/czdate/internal/profile"
	"github.com/hrygo/czdate/plugin/cache"
	"github.com/hrygo/czdate/server/internal/observability"
	apiv1 "github.com/hrygo/czdate/server/router/api/v1"
)

const (
	shutdownTimeout = 10 * time.Second
	pruneInterval   = 5 * time.Minute
)

// Server is the HTTP date service.
type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
	api        *apiv1.APIV1Service
	cache      *cache.Service
	logger     *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer builds the server from a validated profile.
func NewServer(p *profile.Profile, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	parser, store, err := NewParser(p, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create date parser")
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Server.ReadTimeout = 30 * time.Second
	echoServer.Server.WriteTimeout = 60 * time.Second
	echoServer.Server.IdleTimeout = 120 * time.Second

	api := apiv1.NewAPIV1Service(p, parser, observability.GlobalMetrics(), store, logger)
	api.RegisterRoutes(echoServer)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		Profile:    p,
		echoServer: echoServer,
		api:        api,
		cache:      store,
		logger:     logger,
		cancel:     cancel,
	}

	s.wg.Add(1)
	go s.pruneLoop(ctx)

	return s, nil
}

// Handler exposes the routes, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start listens on the profile address and serves until Shutdown.
// It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	address := net.JoinHostPort(s.Profile.Addr, fmt.Sprint(s.Profile.Port))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	s.echoServer.Listener = listener
	s.logger.Info("czdate server started",
		"addr", listener.Addr().String(),
		"mode", s.Profile.Mode,
		"oracle", s.Profile.Driver,
		"timezone", s.Profile.Timezone,
		"cache", s.cache != nil,
	)

	if err := s.echoServer.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server stopped")
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and releases resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	s.logger.Info("czdate server shutting down")

	var result error
	if err := s.echoServer.Shutdown(ctx); err != nil {
		result = errors.Wrap(err, "failed to shutdown server")
	}

	s.cancel()
	s.wg.Wait()

	if s.cache != nil {
		s.cache.Close()
	}
	return result
}

// pruneLoop drops rate limiter state of idle clients.
func (s *Server) pruneLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.api.RateLimiter().Prune(); n > 0 {
				s.logger.Debug("pruned idle rate limiters", "count", n)
			}
		}
	}
}
