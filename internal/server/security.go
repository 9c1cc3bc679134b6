package server

import (
	"net/http"
	"strings"
)

// SecurityConfig controls response hardening headers, CORS and input size.
type SecurityConfig struct {
	EnableCORS bool
	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string
	AllowedMethods []string
	// MaxExprLength is the longest accepted expression in bytes.
	MaxExprLength int
	// MaxBodyBytes bounds POST bodies.
	MaxBodyBytes int64
}

func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		MaxExprLength:  4096,
		MaxBodyBytes:   1 << 20,
	}
}

// SecurityMiddleware sets hardening headers, answers CORS preflight
// requests and bounds request bodies.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if config.EnableCORS {
			origin := r.Header.Get("Origin")
			for _, allowed := range config.AllowedOrigins {
				if allowed == "*" || allowed == origin {
					h.Set("Access-Control-Allow-Origin", allowed)
					h.Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
					h.Set("Access-Control-Allow-Headers", "Content-Type, Accept")
					h.Set("Access-Control-Max-Age", "86400")
					break
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		if config.MaxBodyBytes > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, config.MaxBodyBytes)
		}
		next(w, r)
	}
}
