// Package server exposes expression evaluation over HTTP with JSON
// responses, Prometheus metrics and per-client rate limiting.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/bigcalc/internal/calculator"
	"github.com/agbru/bigcalc/internal/config"
	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/logging"
	"github.com/agbru/bigcalc/internal/service"
)

// Server is the bigcalc HTTP API.
type Server struct {
	factory        calculator.CalculatorFactory
	service        service.Service
	cfg            config.AppConfig
	httpServer     *http.Server
	logger         logging.Logger
	shutdownSignal chan os.Signal
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
}

// NewServer builds a server listening on cfg.Port. Options override the
// logger, service, timeouts, rate limiter and security settings.
func NewServer(factory calculator.CalculatorFactory, cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		factory:        factory,
		cfg:            cfg,
		logger:         logging.NewLogger(os.Stdout, "server"),
		shutdownSignal: make(chan os.Signal, 1),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
	}
	if cfg.MaxExprLength > 0 {
		s.securityConfig.MaxExprLength = cfg.MaxExprLength
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.service == nil {
		s.service = service.NewCalculatorService(s.factory, s.cfg, s.securityConfig.MaxExprLength)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = NewRateLimiter(DefaultRateLimiterConfig())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/evaluate", s.wrapWithMiddleware(s.handleEvaluate))
	mux.HandleFunc("/health", s.wrapWithMiddleware(s.handleHealth))
	mux.HandleFunc("/backends", s.wrapWithMiddleware(s.handleBackends))
	mux.HandleFunc("/functions", s.wrapWithMiddleware(s.handleFunctions))
	mux.HandleFunc("/metrics", s.wrapWithMiddleware(s.handleMetrics))

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}
	return s
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// wrapWithMiddleware applies Security, then RateLimit, then Logging, then
// Metrics around handler.
func (s *Server) wrapWithMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	wrapped := s.metricsMiddleware(handler)
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = RateLimitMiddleware(s.rateLimiter, wrapped)
	return SecurityMiddleware(s.securityConfig, wrapped)
}

// Start serves until SIGINT or SIGTERM, or until ctx is done, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	signal.Notify(s.shutdownSignal, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.shutdownSignal)
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			logging.String("addr", s.httpServer.Addr),
			logging.Uint64("max_bits", s.cfg.MaxBits),
			logging.Int("max_expr_len", s.securityConfig.MaxExprLength),
		)
		s.logger.Info("endpoints: GET|POST /evaluate, GET /health, GET /backends, GET /functions, GET /metrics")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-s.shutdownSignal:
		s.logger.Info("shutdown signal received, draining connections")
	case <-ctx.Done():
		s.logger.Info("context done, draining connections")
	case err := <-errCh:
		return apperrors.NewServerError("server failed to start", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
