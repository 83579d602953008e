package middleware

import (
	"strconv"
	"time"

	"github.com/flixsy/backend/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request count, latency and in-flight gauge per
// route. The route template (c.FullPath) is used rather than the raw URL so
// /posts/42 and /posts/43 share a label.
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		method := c.Request.Method
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.HTTPActiveRequests.WithLabelValues(method, route).Inc()
		startTime := time.Now()

		c.Next()

		m.HTTPActiveRequests.WithLabelValues(method, route).Dec()

		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route, status).
			Observe(time.Since(startTime).Seconds())
	}
}
