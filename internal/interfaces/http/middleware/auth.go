package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/auth/token"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

const claimsKey = "insuredoc.claims"

// TokenVerifier validates a raw bearer token.  The auth service satisfies it.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, raw string) (*token.Claims, error)
}

// Auth rejects requests without a valid bearer token and stores the verified
// claims on the context.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractBearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.Header("WWW-Authenticate", "Bearer")
			AbortWithError(c, errors.New(errors.ErrCodeUnauthorized, "Not authenticated"))
			return
		}
		claims, err := verifier.VerifyToken(c.Request.Context(), raw)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			AbortWithError(c, err)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func extractBearerToken(header string) string {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(raw)
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c *gin.Context) (*token.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.Claims)
	return claims, ok && claims != nil
}
