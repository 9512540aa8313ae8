package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMetrics is the part of the application metrics the router feeds.
type HTTPMetrics interface {
	RecordHTTPRequest(method, path string, statusCode int, d time.Duration)
	TrackActive(method string) func()
}

// Metrics records request counts and latencies.  The route template is used
// as the path label so ids do not explode cardinality; unmatched routes are
// grouped under "unmatched".
func Metrics(m HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := m.TrackActive(c.Request.Method)
		start := time.Now()
		c.Next()
		done()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
