package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RequestAndSyncCounters(t *testing.T) {
	m := New()

	m.ObserveRequest("/api/v1/customers/otp", http.MethodPost, http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest("/api/v1/customers/otp", http.MethodPost, http.StatusOK, 10*time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/v1/customers/otp", "POST", "200")))

	m.Sync.Tick()
	m.Sync.Page(nil)
	m.Sync.Page(errors.New("db"))
	m.Sync.Rows(3, 1)
	m.Sync.Cursor(4, 3)
	m.Sync.PassCompleted()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sync.pages.WithLabelValues("failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Sync.rowsPushed))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Sync.offset))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sync.passesComplete))
}

func TestMetrics_HandlerExposesNamespace(t *testing.T) {
	m := New()
	m.SetBreakerState("auth", 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `customer_service_upstream_breaker_state{upstream="auth"} 1`))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("/", "GET", 200, time.Millisecond)
	m.UpstreamCall("auth", nil)

	var s *SyncMetrics
	s.Tick()
	s.Cursor(1, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
