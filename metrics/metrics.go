package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medshare",
		Name:      "transitions_total",
		Help:      "Lifecycle transitions applied, by entity and resulting status.",
	}, []string{"entity", "status"})

	Failures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medshare",
		Name:      "operation_failures_total",
		Help:      "Failed operations, by operation and error kind.",
	}, []string{"operation", "kind"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medshare",
		Name:      "http_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "route", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "medshare",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func Transition(entity, status string) {
	Transitions.WithLabelValues(entity, status).Inc()
}

func Failure(operation, kind string) {
	Failures.WithLabelValues(operation, kind).Inc()
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
