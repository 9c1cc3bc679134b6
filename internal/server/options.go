package server

import (
	"log"
	"time"

	"github.com/agbru/bigcalc/internal/logging"
	"github.com/agbru/bigcalc/internal/service"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger. A nil logger keeps the default.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStdLogger routes server logs through a standard library logger.
func WithStdLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logging.NewStdLoggerAdapter(logger)
		}
	}
}

// WithService replaces the evaluation service, typically with a mock.
func WithService(svc service.Service) Option {
	return func(s *Server) {
		if svc != nil {
			s.service = svc
		}
	}
}

// WithTimeouts overrides the HTTP and request timeouts.
func WithTimeouts(timeouts Timeouts) Option {
	return func(s *Server) {
		s.timeouts = timeouts
	}
}

// WithRateLimiter sets the per-client rate limiter.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) {
		s.rateLimiter = rl
	}
}

// WithSecurityConfig replaces the security header and CORS settings.
func WithSecurityConfig(config SecurityConfig) Option {
	return func(s *Server) {
		s.securityConfig = config
	}
}

// WithMaxExprLength caps the byte length of accepted expressions.
func WithMaxExprLength(n int) Option {
	return func(s *Server) {
		s.securityConfig.MaxExprLength = n
	}
}

// Timeouts holds the server's timeout settings.
type Timeouts struct {
	// RequestTimeout bounds a single evaluation.
	RequestTimeout time.Duration
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

func DefaultServerTimeouts() Timeouts {
	return Timeouts{
		RequestTimeout:  time.Minute,
		ShutdownTimeout: 30 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    2 * time.Minute,
		IdleTimeout:     2 * time.Minute,
	}
}
