package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/InsureDoc-Intelligence/internal/application/claims"
	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/fraud"
	"github.com/turtacn/InsureDoc-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

type ClaimHandler struct {
	svc claims.Service
}

func NewClaimHandler(svc claims.Service) *ClaimHandler {
	return &ClaimHandler{svc: svc}
}

// Score handles POST /fraud-detection/score.
func (h *ClaimHandler) Score(c *gin.Context) {
	id, err := middleware.IdentityFrom(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var in fraud.ClaimInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, errors.New(errors.ErrCodeClaimInvalid, "invalid claim body"))
		return
	}
	a, err := h.svc.Score(c.Request.Context(), id.TenantID, id.UserID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// History handles GET /fraud-detection/assessments.
func (h *ClaimHandler) History(c *gin.Context) {
	id, err := middleware.IdentityFrom(c)
	if err != nil {
		respondError(c, err)
		return
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		respondError(c, err)
		return
	}
	recs, err := h.svc.History(c.Request.Context(), id.TenantID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": recs})
}
