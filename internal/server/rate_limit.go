package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter grants each client a fixed number of requests per window.
// Clients are identified by IP.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	rate     int
	window   time.Duration
	cleanup  time.Duration
	now      func() time.Time
	stopOnce sync.Once
	stopChan chan struct{}
}

type clientLimiter struct {
	tokens      int
	windowStart time.Time
}

// RateLimiterConfig configures a RateLimiter. Zero fields take defaults.
type RateLimiterConfig struct {
	// RequestsPerMinute defaults to 120.
	RequestsPerMinute int
	// CleanupInterval defaults to 5 minutes.
	CleanupInterval time.Duration
}

func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerMinute: 120,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewRateLimiter starts a limiter and its background cleanup goroutine.
// Call Stop to release it.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	def := DefaultRateLimiterConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}

	rl := &RateLimiter{
		clients:  make(map[string]*clientLimiter),
		rate:     config.RequestsPerMinute,
		window:   time.Minute,
		cleanup:  config.CleanupInterval,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow consumes one token for clientIP and reports whether the request may
// proceed.
func (rl *RateLimiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	client, ok := rl.clients[clientIP]
	if !ok || now.Sub(client.windowStart) >= rl.window {
		rl.clients[clientIP] = &clientLimiter{tokens: rl.rate - 1, windowStart: now}
		return true
	}
	if client.tokens > 0 {
		client.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evict()
		case <-rl.stopChan:
			return
		}
	}
}

// evict drops clients idle for more than two windows.
func (rl *RateLimiter) evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, client := range rl.clients {
		if now.Sub(client.windowStart) > 2*rl.window {
			delete(rl.clients, ip)
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// RateLimitMiddleware rejects requests over the limit with 429.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(getClientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too Many Requests","message":"Rate limit exceeded. Please try again later."}`))
			return
		}
		next(w, r)
	}
}

// getClientIP prefers the first X-Forwarded-For entry, then X-Real-IP, then
// RemoteAddr without its port.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.Trim(r.RemoteAddr, "[]")
	}
	return host
}
