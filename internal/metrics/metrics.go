package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// StoreOps counts key-value operations by backend, op and outcome.
	StoreOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "store_operations_total",
		Help:      "Key-value store operations.",
	}, []string{"backend", "op", "result"})

	// StoreLatency observes key-value operation latency.
	StoreLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portal",
		Name:      "store_operation_seconds",
		Help:      "Key-value store operation latency.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"backend", "op"})

	// RecordWrites counts biodata and course mutations by outcome.
	RecordWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "record_writes_total",
		Help:      "Biodata and course writes.",
	}, []string{"record", "op", "result"})

	// CardExports counts card renders and document exports by format.
	CardExports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "card_exports_total",
		Help:      "Card renders and document exports by format.",
	}, []string{"format"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(StoreOps, StoreLatency, RecordWrites, CardExports, httpRequests)
}

// ObserveStore records one store call.
func ObserveStore(backend, op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreOps.WithLabelValues(backend, op, result).Inc()
	StoreLatency.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}

// GinMiddleware counts requests by matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
