package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/net/netutil"

	"github.com/tapqyr/analytics/internal/profile"
	"github.com/tapqyr/analytics/server/internal/observability"
	"github.com/tapqyr/analytics/server/middleware"
	apiv1 "github.com/tapqyr/analytics/server/router/api/v1"
	"github.com/tapqyr/analytics/store"
)

const (
	metricsSampleSize       = 10000
	maxOpenConnections      = 512
	rateLimitCleanupPeriod  = time.Minute
	serverReadHeaderTimeout = 10 * time.Second
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store
	Metrics *observability.Metrics

	echoServer  *echo.Echo
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
	cancel      context.CancelFunc
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Profile:     profile,
		Store:       store,
		Metrics:     observability.NewMetrics(metricsSampleSize),
		rateLimiter: middleware.NewRateLimiter(profile.RateLimitRPS, profile.RateLimitBurst),
		logger:      logger,
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	}))
	echoServer.Use(middleware.RequestLogger(logger, s.Metrics))
	echoServer.Use(s.rateLimiter.Middleware())
	s.echoServer = echoServer

	apiV1Service := apiv1.NewAPIV1Service(profile, store, s.Metrics)
	apiV1Service.RegisterRoutes(echoServer)

	return s, nil
}

// Start listens on the configured address and serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	address := net.JoinHostPort(s.Profile.Addr, fmt.Sprintf("%d", s.Profile.Port))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}

	ctx, s.cancel = context.WithCancel(ctx)
	go s.cleanupRateLimiter(ctx)

	s.echoServer.Listener = netutil.LimitListener(listener, maxOpenConnections)
	s.echoServer.Server.ReadHeaderTimeout = serverReadHeaderTimeout
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("failed to serve", "error", err)
		}
	}()
	s.logger.Info("analytics server started", "address", listener.Addr().String(), "mode", s.Profile.Mode)
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	s.logger.Info("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}

	if err := s.echoServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown server", "error", err)
	}

	if err := s.Store.Close(); err != nil {
		s.logger.Error("failed to close database", "error", err)
	}

	s.logger.Info("server stopped properly")
}

// Handler exposes the router for in-process use.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

func (s *Server) cleanupRateLimiter(ctx context.Context) {
	ticker := time.NewTicker(rateLimitCleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.rateLimiter.Cleanup(); removed > 0 {
				s.logger.Debug("evicted idle rate limiters", "count", removed)
			}
		}
	}
}
