package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcome label values
const (
	LoginOutcomeSuccess   = "success"
	LoginOutcomeInvalid   = "invalid_credentials"
	LoginOutcomeThrottled = "throttled"
	LoginOutcomeInactive  = "inactive"
	LoginOutcomeError     = "error"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Auth metrics
	LoginAttemptsTotal        *prometheus.CounterVec
	ThrottleFailuresTotal     prometheus.Counter
	TokenRejectionsTotal      prometheus.Counter
	AuthorizationDenialsTotal *prometheus.CounterVec

	// Avatar cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
	DBConnectionsWait   prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamboard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "teamboard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "teamboard_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "route"},
		),

		LoginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamboard_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		ThrottleFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "teamboard_throttle_failures_recorded_total",
				Help: "Failed password verifications recorded by the login throttle",
			},
		),
		TokenRejectionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "teamboard_token_rejections_total",
				Help: "Bearer tokens rejected by the verifier",
			},
		),
		AuthorizationDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamboard_authorization_denials_total",
				Help: "Requests denied by the role gate",
			},
			[]string{"role"},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamboard_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamboard_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache"},
		),

		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "teamboard_db_connections_active",
				Help: "Number of in-use database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "teamboard_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
		DBConnectionsWait: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "teamboard_db_connections_wait_count",
				Help: "Total number of connections waited for",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.LoginAttemptsTotal,
		m.ThrottleFailuresTotal,
		m.TokenRejectionsTotal,
		m.AuthorizationDenialsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
		m.DBConnectionsWait,
	)

	return m
}

// RecordLogin counts a login attempt. Safe on a nil receiver.
func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordThrottleFailure counts a failure handed to the throttle. Safe on a nil receiver.
func (m *Metrics) RecordThrottleFailure() {
	if m == nil {
		return
	}
	m.ThrottleFailuresTotal.Inc()
}

// RecordTokenRejection counts a rejected bearer token. Safe on a nil receiver.
func (m *Metrics) RecordTokenRejection() {
	if m == nil {
		return
	}
	m.TokenRejectionsTotal.Inc()
}

// RecordAuthorizationDenial counts a role gate denial. Safe on a nil receiver.
func (m *Metrics) RecordAuthorizationDenial(role string) {
	if m == nil {
		return
	}
	m.AuthorizationDenialsTotal.WithLabelValues(role).Inc()
}

// RecordCacheLookup counts a hit or miss for the named cache. Safe on a nil receiver.
func (m *Metrics) RecordCacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// ObserveDBStats copies connection pool stats into the gauges
func (m *Metrics) ObserveDBStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.DBConnectionsActive.Set(float64(stats.InUse))
	m.DBConnectionsIdle.Set(float64(stats.Idle))
	m.DBConnectionsWait.Set(float64(stats.WaitCount))
}

// responseWriter wraps http.ResponseWriter to capture status and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// InstrumentHandler records request metrics under the route template, not the raw
// path, so ids in URLs do not explode label cardinality.
func (m *Metrics) InstrumentHandler(method, route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(rw.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		m.HTTPResponseSize.WithLabelValues(method, route).Observe(float64(rw.bytesWritten))
	})
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
