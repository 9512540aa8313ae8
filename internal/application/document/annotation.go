package document

import (
	"context"
	"time"

	"github.com/google/uuid"

	domainDoc "github.com/turtacn/InsureDoc-Intelligence/internal/domain/document"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/internal/intelligence/highlight"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// AnnotationResult is the annotated preview.
type AnnotationResult struct {
	Segments         []highlight.Segment `json:"segments"`
	HighlightedCount int                 `json:"highlighted_count"`
}

// AnnotationService memoizes highlight annotation in the cache.
type AnnotationService struct {
	docs    domainDoc.Repository
	cache   redis.Cache
	ttl     time.Duration
	metrics Metrics
	logger  logging.Logger
}

// NewAnnotationService creates the service.  docs, cache and metrics may be
// nil; AnnotateDocument then fails and results are not memoized.
func NewAnnotationService(docs domainDoc.Repository, cache redis.Cache, ttl time.Duration, metrics Metrics, logger logging.Logger) *AnnotationService {
	return &AnnotationService{docs: docs, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

// Annotate highlights phrases in text.
func (s *AnnotationService) Annotate(ctx context.Context, text string, phrases []string) (*AnnotationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.cache == nil {
		return s.annotate(text, phrases)
	}

	var res AnnotationResult
	err := s.cache.GetOrSet(ctx, highlight.CacheKey(text, phrases), &res, s.ttl, func(context.Context) (interface{}, error) {
		return s.annotate(text, phrases)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// AnnotateOptional is Annotate for decoded JSON where text or phrases may be
// null.  Null phrases keep their list position so phrase indices still refer
// to the caller's list.
func (s *AnnotationService) AnnotateOptional(ctx context.Context, text *string, phrases []*string) (*AnnotationResult, error) {
	if text == nil {
		return nil, errors.InvalidArgument("text is required")
	}
	flat := make([]string, len(phrases))
	for i, p := range phrases {
		if p != nil {
			flat[i] = *p
		}
	}
	return s.Annotate(ctx, *text, flat)
}

// AnnotateDocument annotates a stored document's preview.  Without phrases the
// document's own highlight phrases are used.
func (s *AnnotationService) AnnotateDocument(ctx context.Context, tenantID, id uuid.UUID, phrases []string) (*AnnotationResult, error) {
	if s.docs == nil {
		return nil, errors.New(errors.ErrCodeFeatureDisabled, "document storage is not configured")
	}
	doc, err := s.docs.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if len(phrases) == 0 {
		phrases = doc.HighlightPhrases
	}
	return s.Annotate(ctx, doc.TextPreview, phrases)
}

func (s *AnnotationService) annotate(text string, phrases []string) (*AnnotationResult, error) {
	start := time.Now()
	segs, err := highlight.Annotate(text, phrases)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordAnnotation(time.Since(start))
	}
	return &AnnotationResult{Segments: segs, HighlightedCount: highlight.HighlightedCount(segs)}, nil
}
