package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradesphere_http_requests_total",
			Help: "Total number of HTTP requests processed by the marketplace API.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradesphere_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tradesphere_ws_active_connections",
			Help: "Number of open live message websockets.",
		},
	)
	jobItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradesphere_job_items_total",
			Help: "Items processed by background jobs.",
		},
		[]string{"job"},
	)
	jobErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradesphere_job_errors_total",
			Help: "Background job runs that failed.",
		},
		[]string{"job"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		jobItemsTotal,
		jobErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

// RecordJob counts one run of a background job.
func RecordJob(job string, items int, err error) {
	if err != nil {
		jobErrorsTotal.WithLabelValues(job).Inc()
		return
	}
	jobItemsTotal.WithLabelValues(job).Add(float64(items))
}
