package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	appdoc "github.com/turtacn/InsureDoc-Intelligence/internal/application/document"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

type AnnotationHandler struct {
	svc *appdoc.AnnotationService
}

func NewAnnotationHandler(svc *appdoc.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{svc: svc}
}

// annotateRequest keeps nulls distinguishable from empty strings.  Phrases
// are decoded per entry so that non-string entries can be skipped.
type annotateRequest struct {
	Text    *string           `json:"text"`
	Phrases []json.RawMessage `json:"phrases"`
}

// stringEntries keeps the string entries of raw at their positions.  Any
// other JSON value (null, number, object, array) becomes nil.
func stringEntries(raw []json.RawMessage) []*string {
	out := make([]*string, len(raw))
	for i, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out[i] = &s
		}
	}
	return out
}

// Annotate handles POST /annotate.
func (h *AnnotationHandler) Annotate(c *gin.Context) {
	var req annotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidArgument("invalid request body"))
		return
	}
	res, err := h.svc.AnnotateOptional(c.Request.Context(), req.Text, stringEntries(req.Phrases))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
