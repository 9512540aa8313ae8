package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// IndexedDocument is the searchable projection of a stored document.
type IndexedDocument struct {
	ID               string    `json:"id"`
	TenantID         string    `json:"tenant_id"`
	Filename         string    `json:"filename"`
	DocType          string    `json:"doc_type"`
	Confidence       float64   `json:"confidence"`
	KeywordsMatched  []string  `json:"keywords_matched"`
	HighlightPhrases []string  `json:"highlight_phrases"`
	QualityScore     float64   `json:"quality_score"`
	TextPreview      string    `json:"text_preview"`
	CreatedAt        time.Time `json:"created_at"`
}

// DocumentIndexMapping is the mapping of the documents index.
func DocumentIndexMapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":                map[string]interface{}{"type": "keyword"},
				"tenant_id":         map[string]interface{}{"type": "keyword"},
				"filename":          map[string]interface{}{"type": "text"},
				"doc_type":          map[string]interface{}{"type": "keyword"},
				"confidence":        map[string]interface{}{"type": "float"},
				"keywords_matched":  map[string]interface{}{"type": "keyword"},
				"highlight_phrases": map[string]interface{}{"type": "text"},
				"quality_score":     map[string]interface{}{"type": "float"},
				"text_preview":      map[string]interface{}{"type": "text"},
				"created_at":        map[string]interface{}{"type": "date"},
			},
		},
	}
}

// Indexer writes documents into the index.
type Indexer struct {
	client  *Client
	refresh string
	logger  logging.Logger
}

// NewIndexer returns an Indexer.  refresh is passed through to index requests
// ("", "true" or "wait_for").
func NewIndexer(client *Client, refresh string, logger logging.Logger) *Indexer {
	return &Indexer{client: client, refresh: refresh, logger: logger}
}

// EnsureIndex creates the index with DocumentIndexMapping when missing.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	exists, err := i.IndexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	body, err := json.Marshal(DocumentIndexMapping())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal index mapping")
	}
	if _, err := i.client.api.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: i.client.index,
		Body:  bytes.NewReader(body),
	}); err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchError, "failed to create index "+i.client.index)
	}
	i.logger.Info("Index created", logging.String("index", i.client.index))
	return nil
}

// IndexExists reports whether the documents index exists.
func (i *Indexer) IndexExists(ctx context.Context) (bool, error) {
	resp, err := i.client.api.Indices.Exists(ctx, opensearchapi.IndicesExistsReq{Indices: []string{i.client.index}})
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeSearchError, "failed to check index existence")
	}
	return resp.StatusCode == http.StatusOK, nil
}

// IndexDocument upserts doc under its ID.
func (i *Indexer) IndexDocument(ctx context.Context, doc *IndexedDocument) error {
	if doc == nil || doc.ID == "" {
		return errors.New(errors.ErrCodeInvalidArgument, "document id is required")
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal document")
	}
	if _, err := i.client.api.Index(ctx, opensearchapi.IndexReq{
		Index:      i.client.index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
		Params:     opensearchapi.IndexParams{Refresh: i.refresh},
	}); err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchError, "failed to index document")
	}
	i.logger.Debug("Document indexed",
		logging.String("document_id", doc.ID),
		logging.String("doc_type", doc.DocType))
	return nil
}
