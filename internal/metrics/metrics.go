package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"method", "route"},
	)

	// Store metrics
	storeInsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enquiry_store_inserts_total",
			Help: "Total number of enquiry inserts by backend",
		},
		[]string{"backend", "status"},
	)

	storeInsertDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enquiry_store_insert_duration_seconds",
			Help:    "Enquiry insert duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	// Business metrics
	enquirySubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enquiry_submissions_total",
			Help: "Total number of enquiry form submissions by outcome",
		},
		[]string{"result"}, // submitted, invalid, failed, ignored
	)

	enquiriesByEventType = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enquiries_by_event_type_total",
			Help: "Stored enquiries by event type",
		},
		[]string{"event_type"},
	)

	alertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enquiry_alerts_total",
			Help: "Staff alerts sent after a stored enquiry",
		},
		[]string{"channel", "status"},
	)
)

// Handler serves the Prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// PrometheusMiddleware records request metrics labelled by chi route pattern
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		route := routeLabel(r)
		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, route, statusCode).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route, statusCode).Observe(duration)
		httpResponseSize.WithLabelValues(r.Method, route).Observe(float64(wrapped.size))
	})
}

// routeLabel keeps label cardinality bounded: unknown paths collapse into one
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// responseWriter wraps http.ResponseWriter to capture status code and response size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// RecordSubmission records the outcome of one form submission
func RecordSubmission(result string) {
	enquirySubmissionsTotal.WithLabelValues(result).Inc()
}

// RecordStoreInsert records one insert against the enquiry store
func RecordStoreInsert(backend string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	storeInsertsTotal.WithLabelValues(backend, status).Inc()
	storeInsertDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// RecordEnquiry counts a stored enquiry by event type
func RecordEnquiry(eventType string) {
	enquiriesByEventType.WithLabelValues(eventType).Inc()
}

// RecordAlert records a staff alert attempt
func RecordAlert(channel string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	alertsTotal.WithLabelValues(channel, status).Inc()
}
