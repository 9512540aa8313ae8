package opensearch

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// SimilarQuery asks for documents of a tenant that resemble Text.
type SimilarQuery struct {
	TenantID  string
	ExcludeID string
	DocType   string
	Text      string
	Limit     int
}

// Hit is one similar document.
type Hit struct {
	ID       string
	Filename string
	DocType  string
	Score    float64
}

// Searcher runs similarity queries.
type Searcher struct {
	client *Client
	logger logging.Logger
}

func NewSearcher(client *Client, logger logging.Logger) *Searcher {
	return &Searcher{client: client, logger: logger}
}

// BuildSimilarQuery returns the query DSL for q.  Results are restricted to
// the tenant; a matching doc_type boosts the score but is not required.
func BuildSimilarQuery(q SimilarQuery) map[string]interface{} {
	boolQ := map[string]interface{}{
		"filter": []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"tenant_id": q.TenantID}},
		},
		"must": []interface{}{
			map[string]interface{}{
				"more_like_this": map[string]interface{}{
					"fields":          []string{"text_preview", "highlight_phrases"},
					"like":            q.Text,
					"min_term_freq":   1,
					"min_doc_freq":    1,
					"max_query_terms": 25,
				},
			},
		},
	}
	if q.ExcludeID != "" {
		boolQ["must_not"] = []interface{}{
			map[string]interface{}{"ids": map[string]interface{}{"values": []string{q.ExcludeID}}},
		}
	}
	if q.DocType != "" {
		boolQ["should"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"doc_type": map[string]interface{}{"value": q.DocType, "boost": 2}}},
		}
	}
	return map[string]interface{}{
		"size":    q.Limit,
		"_source": []string{"id", "filename", "doc_type"},
		"query":   map[string]interface{}{"bool": boolQ},
	}
}

// Similar returns up to q.Limit documents resembling q.Text, best first.
func (s *Searcher) Similar(ctx context.Context, q SimilarQuery) ([]Hit, error) {
	if q.TenantID == "" {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "tenant id is required")
	}
	if q.Text == "" {
		return []Hit{}, nil
	}
	if q.Limit <= 0 {
		q.Limit = 5
	}
	body, err := json.Marshal(BuildSimilarQuery(q))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal query")
	}

	resp, err := s.client.api.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{s.client.index},
		Body:    bytes.NewReader(body),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchError, "similar document search failed")
	}

	hits := make([]Hit, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		var src IndexedDocument
		if err := json.Unmarshal(h.Source, &src); err != nil {
			s.logger.Warn("Skipping undecodable hit", logging.String("id", h.ID), logging.Err(err))
			continue
		}
		id := src.ID
		if id == "" {
			id = h.ID
		}
		hits = append(hits, Hit{ID: id, Filename: src.Filename, DocType: src.DocType, Score: float64(h.Score)})
	}
	return hits, nil
}
