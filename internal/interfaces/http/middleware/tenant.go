package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// Identity is the caller resolved from the bearer token.
type Identity struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
}

// IdentityFrom resolves the authenticated caller.  Handlers behind Auth can
// rely on it succeeding for well-formed tokens.
func IdentityFrom(c *gin.Context) (Identity, error) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return Identity{}, errors.New(errors.ErrCodeUnauthorized, "Not authenticated")
	}
	uid, err := claims.UserID()
	if err != nil {
		return Identity{}, err
	}
	tid, err := claims.Tenant()
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: uid, TenantID: tid}, nil
}
