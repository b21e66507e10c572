package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	contentRejections   *prometheus.CounterVec
	reorderBatchesTotal *prometheus.CounterVec
	auditFailuresTotal  prometheus.Counter
	cacheLookupsTotal   *prometheus.CounterVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"})

		httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "backoffice",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"})

		contentRejections = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "page_content",
			Name:      "rejections_total",
			Help:      "Block or component submissions rejected by validation, by kind.",
		}, []string{"kind"})

		reorderBatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "ordering",
			Name:      "batches_total",
			Help:      "Reorder batches by collection and outcome.",
		}, []string{"collection", "outcome"})

		auditFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "audit",
			Name:      "write_failures_total",
			Help:      "Audit records that could not be written.",
		})

		cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by entity and result.",
		}, []string{"entity", "result"})
	})
}

func ObserveRequest(route, method string, status int, elapsed time.Duration) {
	initMetrics()
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ContentRejected counts a validation failure for a block type or "component_definition".
func ContentRejected(kind string) {
	initMetrics()
	contentRejections.WithLabelValues(kind).Inc()
}

func ReorderApplied(collection string, err error) {
	initMetrics()
	outcome := "applied"
	if err != nil {
		outcome = "rejected"
	}
	reorderBatchesTotal.WithLabelValues(collection, outcome).Inc()
}

func AuditWriteFailed() {
	initMetrics()
	auditFailuresTotal.Inc()
}

func CacheLookup(entity string, hit bool) {
	initMetrics()
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(entity, result).Inc()
}
