// Package server собирает dev-бэкенд: хранилище SQLite, REST обработчики
// и цепочку middleware.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/jobtrail/internal/server/handlers"
	"github.com/iudanet/jobtrail/internal/server/jwt"
	"github.com/iudanet/jobtrail/internal/server/middleware"
	"github.com/iudanet/jobtrail/internal/server/storage/sqlite"
)

// HealthPath путь health check, доступный без токена
const HealthPath = "/health"

// Server is the development backend
type Server struct {
	logger  *slog.Logger
	store   *sqlite.Storage
	limiter *middleware.RateLimiter
	tokens  *jwt.Service
	handler http.Handler
	cfg     Config
}

// New opens storage and builds the HTTP handler
func New(ctx context.Context, cfg Config, version string, logger *slog.Logger) (*Server, error) {
	store, err := sqlite.New(ctx, cfg.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		store:  store,
		tokens: jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+HealthPath, handlers.NewHealthHandler(logger, store, version).Health)

	rest := http.NewServeMux()
	handlers.NewRestHandler(logger, store).Register(rest)
	mux.Handle("/rest/", middleware.Auth(s.tokens, logger)(rest))

	chain := []middleware.Middleware{
		middleware.Recovery(logger),
		middleware.Logging(logger, HealthPath),
	}
	if cfg.RateLimit.Requests > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		chain = append(chain, middleware.RateLimit(s.limiter, logger))
	}
	s.handler = middleware.Chain(mux, chain...)

	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Tokens returns the token service (used to mint tokens for local users)
func (s *Server) Tokens() *jwt.Service {
	return s.tokens
}

// Run serves on cfg.HTTP.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.HTTP.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close releases the rate limiter and the database
func (s *Server) Close() error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.store.Close()
}
