package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erosion_requests_total",
		Help: "Erosion calculation requests by outcome.",
	}, []string{"outcome"})

	components = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erosion_component_calculations_total",
		Help: "Component calculations by component type and status.",
	}, []string{"component_type", "status"})

	duration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "erosion_request_duration_seconds",
		Help:    "Wall time of one erosion calculation request.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	annualRate = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "erosion_annual_rate_mm_per_year",
		Help:    "Predicted annual erosion rates.",
		Buckets: []float64{1e-6, 1e-5, 1e-4, 1e-3, 0.01, 0.1, 0.4, 1, 10},
	}, []string{"component_type"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erosion_http_requests_total",
		Help: "HTTP requests by method and status code.",
	}, []string{"method", "code"})
)

func ObserveRequest(outcome string, d time.Duration) {
	requests.WithLabelValues(outcome).Inc()
	duration.Observe(d.Seconds())
}

func ObserveComponent(componentType, status string) {
	components.WithLabelValues(componentType, status).Inc()
}

func ObserveRate(componentType string, annual float64) {
	annualRate.WithLabelValues(componentType).Observe(annual)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	w.code = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware counts requests by method and status code.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)
		httpRequests.WithLabelValues(r.Method, strconv.Itoa(sw.code)).Inc()
	})
}
