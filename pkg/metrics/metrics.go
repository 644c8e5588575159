// Package metrics holds the Prometheus collectors for HTTP traffic, upstream
// breakers and the SSO sync loop.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "customer_service"

type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	breakerState    *prometheus.GaugeVec
	upstreamCalls   *prometheus.CounterVec

	Sync *SyncMetrics
}

// SyncMetrics tracks the SSO sync loop.
type SyncMetrics struct {
	ticks          prometheus.Counter
	pages          *prometheus.CounterVec
	rowsPushed     prometheus.Counter
	rowsFailed     prometheus.Counter
	passesComplete prometheus.Counter
	offset         prometheus.Gauge
	total          prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_breaker_state",
			Help:      "Circuit breaker state per upstream (0 closed, 1 open, 2 half-open).",
		}, []string{"upstream"}),
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_calls_total",
			Help:      "Outbound calls per upstream and outcome.",
		}, []string{"upstream", "outcome"}),
		Sync: &SyncMetrics{
			ticks: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace, Subsystem: "sso_sync", Name: "ticks_total",
				Help: "Scheduler ticks observed by the sync loop.",
			}),
			pages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace, Subsystem: "sso_sync", Name: "pages_total",
				Help: "Page fetches by result.",
			}, []string{"result"}),
			rowsPushed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace, Subsystem: "sso_sync", Name: "rows_pushed_total",
				Help: "Customer rows pushed to the auth service.",
			}),
			rowsFailed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace, Subsystem: "sso_sync", Name: "rows_failed_total",
				Help: "Customer rows whose push failed.",
			}),
			passesComplete: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace, Subsystem: "sso_sync", Name: "passes_completed_total",
				Help: "Full passes that advanced the watermark.",
			}),
			offset: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace, Subsystem: "sso_sync", Name: "offset",
				Help: "Current in-memory page offset.",
			}),
			total: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace, Subsystem: "sso_sync", Name: "total_rows",
				Help: "Rows counted at the start of the current pass.",
			}),
		},
	}

	registry.MustRegister(
		m.requestsTotal, m.requestDuration, m.breakerState, m.upstreamCalls,
		m.Sync.ticks, m.Sync.pages, m.Sync.rowsPushed, m.Sync.rowsFailed,
		m.Sync.passesComplete, m.Sync.offset, m.Sync.total,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// SetBreakerState records a breaker transition; state follows circuit.State values.
func (m *Metrics) SetBreakerState(upstream string, state int) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(upstream).Set(float64(state))
}

func (m *Metrics) UpstreamCall(upstream string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.upstreamCalls.WithLabelValues(upstream, outcome).Inc()
}

func (s *SyncMetrics) Tick() {
	if s == nil {
		return
	}
	s.ticks.Inc()
}

func (s *SyncMetrics) Page(err error) {
	if s == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	s.pages.WithLabelValues(result).Inc()
}

func (s *SyncMetrics) Rows(pushed, failed int) {
	if s == nil {
		return
	}
	s.rowsPushed.Add(float64(pushed))
	s.rowsFailed.Add(float64(failed))
}

func (s *SyncMetrics) PassCompleted() {
	if s == nil {
		return
	}
	s.passesComplete.Inc()
}

func (s *SyncMetrics) Cursor(offset int, total int64) {
	if s == nil {
		return
	}
	s.offset.Set(float64(offset))
	s.total.Set(float64(total))
}
