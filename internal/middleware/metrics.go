// Package middleware holds gin middleware tied to internal services.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/naufalhakm/timetable-api/internal/service"
)

// Metrics records one duration observation per request, labelled by
// the matched route rather than the raw URL to keep cardinality low.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
