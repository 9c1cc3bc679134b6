package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 2})
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i, want := range []bool{true, true, false} {
		if got := rl.Allow("a"); got != want {
			t.Fatalf("call %d: Allow = %v, want %v", i, got, want)
		}
	}

	now = now.Add(59 * time.Second)
	if rl.Allow("a") {
		t.Error("window reset too early")
	}
	now = now.Add(time.Second)
	if !rl.Allow("a") {
		t.Error("window did not reset after a minute")
	}
}

func TestRateLimiterEvict(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 5, CleanupInterval: time.Hour})
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.Allow("old")
	now = now.Add(90 * time.Second)
	rl.Allow("recent")
	now = now.Add(45 * time.Second)

	rl.evict()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.clients["old"]; ok {
		t.Error("idle client not evicted")
	}
	if _, ok := rl.clients["recent"]; !ok {
		t.Error("recent client evicted")
	}
}

func TestRateLimiterDefaultsAndStop(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	if rl.rate != DefaultRateLimiterConfig().RequestsPerMinute {
		t.Errorf("rate = %d", rl.rate)
	}
	rl.Stop()
	rl.Stop()
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"RemoteAddr IPv4", "10.0.0.1:1234", nil, "10.0.0.1"},
		{"RemoteAddr IPv6", "[::1]:1234", nil, "::1"},
		{"RemoteAddr without port", "10.0.0.2", nil, "10.0.0.2"},
		{"X-Forwarded-For list", "10.0.0.1:1", map[string]string{"X-Forwarded-For": " 203.0.113.5 , 10.1.1.1"}, "203.0.113.5"},
		{"X-Forwarded-For single", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.6"}, "203.0.113.6"},
		{"X-Real-IP", "10.0.0.1:1", map[string]string{"X-Real-IP": " 198.51.100.9 "}, "198.51.100.9"},
		{"Forwarded wins over Real-IP", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "1.1.1.1", "X-Real-IP": "2.2.2.2"}, "1.1.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := getClientIP(r); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
