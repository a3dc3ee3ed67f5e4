package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the client-side Prometheus metrics. Pass to components
// that need to record them; a nil *Metrics records nothing.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CartMutations   *prometheus.CounterVec
	RollbacksTotal  prometheus.Counter
	MenuCacheHits   prometheus.Counter
	MenuCacheMisses prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tableside",
				Name:      "gateway_requests_total",
				Help:      "Total number of API requests issued",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tableside",
				Name:      "gateway_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		CartMutations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tableside",
				Name:      "cart_mutations_total",
				Help:      "Total cart mutations by operation and result",
			},
			[]string{"op", "result"}, // result=ok/error
		),
		RollbacksTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "tableside",
				Name:      "cart_rollbacks_total",
				Help:      "Total optimistic cart mutations rolled back on failure",
			},
		),
		MenuCacheHits: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "tableside",
				Name:      "menu_cache_hits_total",
				Help:      "Menu requests served from the client-side cache",
			},
		),
		MenuCacheMisses: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "tableside",
				Name:      "menu_cache_misses_total",
				Help:      "Menu requests that went to the API",
			},
		),
	}
}

func (m *Metrics) observeRequest(method, path, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveCartMutation records one cart mutation outcome.
func (m *Metrics) ObserveCartMutation(op string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.CartMutations.WithLabelValues(op, result).Inc()
}

// ObserveRollback records one optimistic-state rollback.
func (m *Metrics) ObserveRollback() {
	if m == nil {
		return
	}
	m.RollbacksTotal.Inc()
}

func (m *Metrics) observeMenuCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.MenuCacheHits.Inc()
	} else {
		m.MenuCacheMisses.Inc()
	}
}
