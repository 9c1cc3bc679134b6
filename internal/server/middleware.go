package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/bigcalc/internal/logging"
)

// RequestIDHeader carries the request identifier. A client-supplied value is
// echoed back; otherwise a random UUID is assigned.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds echoed client identifiers.
const maxRequestIDLength = 128

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" && len(id) <= maxRequestIDLength {
		return id
	}
	return uuid.NewString()
}

// loggingMiddleware tags the response with a request ID and logs the
// method, path, client, status and latency of each request.
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := requestID(r)
		w.Header().Set(RequestIDHeader, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		s.logger.Info("request",
			logging.String("request_id", id),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("client", getClientIP(r)),
			logging.Int("status", rec.status),
			logging.Duration("latency", time.Since(start)),
		)
	}
}
