package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"livenotes/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveStorageOperation(backend, op string, duration time.Duration, err error)
	IncPointsRecorded(room string)
	IncCompactions(room string)
	SetStoreBytes(room string, size int)
}

type MetricsProvider struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	storageDuration  *prometheus.HistogramVec
	storageErrors    *prometheus.CounterVec
	pointsRecorded   *prometheus.CounterVec
	compactionsTotal *prometheus.CounterVec
	storeBytes       *prometheus.GaugeVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveStorageOperation(backend, op string, duration time.Duration, err error) {
	m.storageDuration.WithLabelValues(backend, op).Observe(duration.Seconds())
	if err != nil {
		m.storageErrors.WithLabelValues(backend, op).Inc()
	}
}

func (m *MetricsProvider) IncPointsRecorded(room string) {
	m.pointsRecorded.WithLabelValues(room).Inc()
}

func (m *MetricsProvider) IncCompactions(room string) {
	m.compactionsTotal.WithLabelValues(room).Inc()
}

func (m *MetricsProvider) SetStoreBytes(room string, size int) {
	m.storeBytes.WithLabelValues(room).Set(float64(size))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "livenotes_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "livenotes_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "livenotes_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "livenotes_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		storageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "livenotes_storage_operation_duration_seconds",
			Help:    "Duration of storage backend operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "op"}),

		storageErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "livenotes_storage_errors_total",
			Help: "Total number of failed storage backend operations",
		}, []string{"backend", "op"}),

		pointsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "livenotes_points_recorded_total",
			Help: "Total number of recorded points per room",
		}, []string{"room"}),

		compactionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "livenotes_compactions_total",
			Help: "Total number of store compactions per room",
		}, []string{"room"}),

		storeBytes: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "livenotes_store_bytes",
			Help: "Size of the last persisted store blob per room",
		}, []string{"room"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                              {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)              {}
func (n *noopMetrics) IncCacheHits()                                                 {}
func (n *noopMetrics) IncCacheMisses()                                               {}
func (n *noopMetrics) ObserveStorageOperation(_, _ string, _ time.Duration, _ error) {}
func (n *noopMetrics) IncPointsRecorded(_ string)                                    {}
func (n *noopMetrics) IncCompactions(_ string)                                       {}
func (n *noopMetrics) SetStoreBytes(_ string, _ int)                                 {}
