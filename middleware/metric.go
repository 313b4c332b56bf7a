package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HttpRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Requests currently being served",
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HttpRequestsTotal, HttpRequestDuration, HttpRequestsInFlight)
}

func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		HttpRequestsInFlight.Inc()
		defer HttpRequestsInFlight.Dec()
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		// Unmatched routes share one label.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		HttpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HttpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration.Seconds())
	}
}

// MetricsHandler serves the Prometheus registry. When allow is non-empty only
// those client IPs may scrape.
func MetricsHandler(allow []string) gin.HandlerFunc {
	h := promhttp.Handler()
	allowed := make(map[string]bool, len(allow))
	for _, ip := range allow {
		allowed[ip] = true
	}

	return func(c *gin.Context) {
		if len(allowed) > 0 {
			ip := c.ClientIP()
			if parsed := net.ParseIP(ip); parsed != nil && parsed.IsLoopback() {
				ip = "127.0.0.1"
			}
			if !allowed[ip] {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}
		h.ServeHTTP(c.Writer, c.Request)
	}
}
