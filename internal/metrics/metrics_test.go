package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMiddleware)
	r.Get("/api/date-picker", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/date-picker", "418"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/date-picker?month=2026-10", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/date-picker", "418"))
	assert.Equal(t, before+1, after)
}

func TestPrometheusMiddleware_UnmatchedPath(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMiddleware)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))
	assert.Equal(t, before+1, after)
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(storeInsertsTotal.WithLabelValues("sqlite", "error"))
	RecordStoreInsert("sqlite", 10*time.Millisecond, errors.New("disk full"))
	assert.Equal(t, before+1, testutil.ToFloat64(storeInsertsTotal.WithLabelValues("sqlite", "error")))

	before = testutil.ToFloat64(enquirySubmissionsTotal.WithLabelValues("submitted"))
	RecordSubmission("submitted")
	assert.Equal(t, before+1, testutil.ToFloat64(enquirySubmissionsTotal.WithLabelValues("submitted")))

	before = testutil.ToFloat64(alertsTotal.WithLabelValues("telegram", "success"))
	RecordAlert("telegram", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(alertsTotal.WithLabelValues("telegram", "success")))
}

func TestHandler(t *testing.T) {
	RecordEnquiry("birthday")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `enquiries_by_event_type_total{event_type="birthday"}`)
}
