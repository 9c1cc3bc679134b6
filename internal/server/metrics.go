package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	activeRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bigcalc_active_requests",
		Help: "Current number of in-flight HTTP requests.",
	})
	totalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bigcalc_requests_total",
		Help: "Total number of HTTP requests received.",
	})
	rejectedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bigcalc_http_rejected_total",
		Help: "Evaluation requests answered with an error status, by code.",
	}, []string{"code"})
)

// Metrics exposes the server's Prometheus collectors.
type Metrics struct {
	handler http.Handler
}

func NewMetrics() *Metrics {
	return &Metrics{handler: promhttp.Handler()}
}

func (m *Metrics) IncrementActiveRequests() {
	activeRequests.Inc()
	totalRequests.Inc()
}

func (m *Metrics) DecrementActiveRequests() {
	activeRequests.Dec()
}

// ObserveRejection counts a request that failed with the given status.
func (m *Metrics) ObserveRejection(status int) {
	rejectedRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.metrics.handler.ServeHTTP(w, r)
}

func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()
		next(w, r)
	}
}
