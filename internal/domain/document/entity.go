package document

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// Document is an uploaded file together with its latest analysis.
type Document struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	UserID      uuid.UUID `json:"user_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	ObjectKey   string    `json:"object_key,omitempty"`
	SHA256      string    `json:"sha256"`

	DocType          string   `json:"doc_type"`
	Confidence       float64  `json:"confidence"`
	KeywordsMatched  []string `json:"keywords_matched"`
	HighlightPhrases []string `json:"highlight_phrases"`
	QualityScore     float64  `json:"quality_score"`
	PageCount        int      `json:"page_count"`

	TextPreview string    `json:"text_preview,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDocument creates a document owned by the given tenant and user.
func NewDocument(tenantID, userID uuid.UUID, filename, contentType string, size int64, sha string) (*Document, error) {
	d := &Document{
		ID:          uuid.New(),
		TenantID:    tenantID,
		UserID:      userID,
		Filename:    SanitizeFilename(filename),
		ContentType: contentType,
		Size:        size,
		SHA256:      sha,
		CreatedAt:   time.Now().UTC(),
	}
	d.ObjectKey = ObjectKey(d.TenantID, d.ID, d.Filename)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// ObjectKey is the storage key of a document's original bytes.
func ObjectKey(tenantID, docID uuid.UUID, filename string) string {
	return fmt.Sprintf("tenants/%s/documents/%s/%s", tenantID, docID, filename)
}

// SanitizeFilename strips directory components so a client-supplied name
// cannot escape the document prefix.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

// Validate checks the document invariants.
func (d *Document) Validate() error {
	if d.ID == uuid.Nil {
		return errors.NewValidation("document id cannot be empty")
	}
	if d.TenantID == uuid.Nil {
		return errors.NewValidation("tenant id cannot be empty")
	}
	if d.Filename == "" {
		return errors.NewValidation("filename cannot be empty")
	}
	if d.Size < 0 {
		return errors.NewValidation("size cannot be negative")
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return errors.NewValidation("confidence must be within [0, 1]")
	}
	return nil
}

// Similar is a lightweight reference to a related document.
type Similar struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	DocType  string    `json:"doc_type"`
	Score    float64   `json:"similarity"`
}

// ListFilter narrows ListByTenant.
type ListFilter struct {
	DocType string
	Limit   int
	Offset  int
}

// Normalize clamps paging values.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
