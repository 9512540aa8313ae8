package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// Limiter decides whether key may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (redis.RateLimitResult, error)
}

// RateLimit limits requests per tenant, or per client IP before
// authentication.  Limiter failures let the request through.
func RateLimit(l Limiter, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if claims, ok := ClaimsFrom(c); ok && claims.TenantID != "" {
			key = "tenant:" + claims.TenantID
		}

		res, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("Rate limiter unavailable", logging.String("key", key), logging.Err(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			secs := int(res.ResetIn.Seconds())
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			AbortWithError(c, errors.New(errors.ErrCodeTooManyRequests, "Too many requests."))
			return
		}
		c.Next()
	}
}
