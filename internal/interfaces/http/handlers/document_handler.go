package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	appdoc "github.com/turtacn/InsureDoc-Intelligence/internal/application/document"
	domainDoc "github.com/turtacn/InsureDoc-Intelligence/internal/domain/document"
	"github.com/turtacn/InsureDoc-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

type DocumentHandler struct {
	docs           appdoc.Service
	annotations    *appdoc.AnnotationService
	maxUploadBytes int64
}

func NewDocumentHandler(docs appdoc.Service, annotations *appdoc.AnnotationService, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{docs: docs, annotations: annotations, maxUploadBytes: maxUploadBytes}
}

// Summarize handles POST /policy-summary/summarize.
func (h *DocumentHandler) Summarize(c *gin.Context) {
	up, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.docs.Summarize(c.Request.Context(), up)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Classify handles POST /doc-classify/classify.
func (h *DocumentHandler) Classify(c *gin.Context) {
	up, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.docs.Classify(c.Request.Context(), up)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Analyze handles POST /doc-classify/analyze.
func (h *DocumentHandler) Analyze(c *gin.Context) {
	up, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.docs.Analyze(c.Request.Context(), up)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// List handles GET /documents.
func (h *DocumentHandler) List(c *gin.Context) {
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
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.docs.ListDocuments(c.Request.Context(), id.TenantID, domainDoc.ListFilter{
		DocType: c.Query("doc_type"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Get handles GET /documents/:id.
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := middleware.IdentityFrom(c)
	if err != nil {
		respondError(c, err)
		return
	}
	docID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	doc, err := h.docs.GetDocument(c.Request.Context(), id.TenantID, docID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Download handles GET /documents/:id/download with a presigned URL.
func (h *DocumentHandler) Download(c *gin.Context) {
	id, err := middleware.IdentityFrom(c)
	if err != nil {
		respondError(c, err)
		return
	}
	docID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	link, err := h.docs.DownloadURL(c.Request.Context(), id.TenantID, docID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

type annotateDocumentRequest struct {
	Phrases []json.RawMessage `json:"phrases"`
}

// phrases flattens the request phrases.  Non-string entries become empty
// strings, which the annotator skips without shifting phrase indices.
func (r annotateDocumentRequest) phrases() []string {
	if len(r.Phrases) == 0 {
		return nil
	}
	out := make([]string, len(r.Phrases))
	for i, p := range stringEntries(r.Phrases) {
		if p != nil {
			out[i] = *p
		}
	}
	return out
}

// Annotate handles POST /documents/:id/annotate.  An empty body uses the
// document's own highlight phrases.
func (h *DocumentHandler) Annotate(c *gin.Context) {
	id, err := middleware.IdentityFrom(c)
	if err != nil {
		respondError(c, err)
		return
	}
	docID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req annotateDocumentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errors.InvalidArgument("invalid request body"))
			return
		}
	}
	res, err := h.annotations.AnnotateDocument(c.Request.Context(), id.TenantID, docID, req.phrases())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
