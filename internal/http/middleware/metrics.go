// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for HTTP traffic: request
// counts, latencies, in-flight concurrency and response sizes. Labels are
// bounded:
//
//   - method: HTTP method verb
//   - path:   the registered Gin route (e.g. /api/v1/catalog/entries/:id),
//     or "unmatched" when no route matched
//   - status: numeric status code as a string
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics holds the HTTP collectors.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	Inflight prometheus.Gauge
	RespSize *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP collectors on reg (the default registerer
// when nil).
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &HTTPMetrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waiterdb",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		// Status is left out of the latency histogram to keep its series count low.
		Latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "waiterdb",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		Inflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "waiterdb",
			Name:      "http_requests_inflight",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		// Catalog pages are JSON lists of a few KiB up to a full facet index.
		RespSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "waiterdb",
			Name:      "http_response_size_bytes",
			Help:      "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 2 << 10, 5 << 10,
				10 << 10, 25 << 10, 50 << 10,
				100 << 10, 250 << 10, 500 << 10,
				1 << 20, 2 << 20,
			},
		}, []string{"method", "path"}),
	}
}

// Handler returns a Gin middleware that instruments requests. Responses
// without a known size (e.g. 304 Not Modified) are not observed in the size
// histogram.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.Inflight.Inc()
		defer m.Inflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		method := c.Request.Method

		m.Requests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.Latency.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			m.RespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
