package middleware

import (
	"strconv"
	"time"

	"restaurant-pos-api/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency keyed by route template, so
// /api/orders/1 and /api/orders/2 share a series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status()/100) + "xx"
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
