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
			Name: "marketplace_http_requests_total",
			Help: "Total number of HTTP requests processed by the marketplace service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	messagesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_messages_sent_total",
			Help: "Total number of chat messages stored.",
		},
	)
	blobWritesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_blob_writes_total",
			Help: "Total number of image blobs written.",
		},
	)
	blobDeletesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_blob_deletes_total",
			Help: "Total number of image blobs deleted.",
		},
	)
	blobDeleteErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_blob_delete_errors_total",
			Help: "Total number of best-effort blob deletions that failed.",
		},
	)
	reportsGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_reports_generated_total",
			Help: "Total number of admin reports generated.",
		},
		[]string{"kind"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		messagesSentTotal,
		blobWritesTotal,
		blobDeletesTotal,
		blobDeleteErrorsTotal,
		reportsGeneratedTotal,
		amqpPublishErrorsTotal,
	)
}

// HTTPMetricsMiddleware records request counts and latencies per route.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncMessageSent() {
	messagesSentTotal.Inc()
}

func IncBlobWrite() {
	blobWritesTotal.Inc()
}

func IncBlobDelete() {
	blobDeletesTotal.Inc()
}

func IncBlobDeleteError() {
	blobDeleteErrorsTotal.Inc()
}

func IncReportGenerated(kind string) {
	reportsGeneratedTotal.WithLabelValues(kind).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
