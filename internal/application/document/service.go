// Package document orchestrates the upload pipeline: text extraction,
// classification, storage, similarity lookup and event publication.
package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/InsureDoc-Intelligence/internal/config"
	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/classification"
	domainDoc "github.com/turtacn/InsureDoc-Intelligence/internal/domain/document"
	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/summary"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/InsureDoc-Intelligence/internal/intelligence/textextract"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

const eventSource = "insuredoc-apiserver"

// Service defines the document operations exposed to the interfaces layer.
type Service interface {
	Summarize(ctx context.Context, upload *Upload) (*SummaryResult, error)
	Classify(ctx context.Context, upload *Upload) (*classification.Result, error)
	Analyze(ctx context.Context, upload *Upload) (*AnalysisResult, error)
	ListDocuments(ctx context.Context, tenantID uuid.UUID, filter domainDoc.ListFilter) (*ListResult, error)
	GetDocument(ctx context.Context, tenantID, id uuid.UUID) (*domainDoc.Document, error)
	DownloadURL(ctx context.Context, tenantID, id uuid.UUID) (*DownloadLink, error)
}

// ObjectStore keeps the original uploaded bytes.
type ObjectStore interface {
	Put(ctx context.Context, req *minio.UploadRequest) (*minio.UploadResult, error)
	PresignedGetURL(ctx context.Context, key, filename string, expiry time.Duration) (string, error)
}

// SimilarIndex finds related documents by content.
type SimilarIndex interface {
	Similar(ctx context.Context, q opensearch.SimilarQuery) ([]opensearch.Hit, error)
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, env *kafka.EventEnvelope) error
}

// Metrics records pipeline outcomes.
type Metrics interface {
	RecordDocumentProcessed(operation string, ok bool)
	RecordDocumentAnalyzed(docType, format string, d time.Duration)
	RecordEventPublished(topic string, ok bool)
	RecordAnnotation(d time.Duration)
}

// Upload is a file received from a caller.
type Upload struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	Filename    string
	ContentType string
	Data        []byte
}

// SummaryResult is the policy summary response.
type SummaryResult struct {
	Filename  string `json:"filename"`
	Summary   string `json:"summary"`
	WordCount int    `json:"word_count"`
}

// AnalysisResult is the full analysis plus what the pipeline stored.
type AnalysisResult struct {
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	classification.Analysis
	SimilarDocs []domainDoc.Similar `json:"similar_docs"`
	TextPreview string              `json:"text_preview"`
}

// ListResult is one page of a tenant's documents.
type ListResult struct {
	Documents []*domainDoc.Document `json:"documents"`
	Total     int64                 `json:"total"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
}

// DownloadLink is a time-limited URL to the original file.
type DownloadLink struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
}

type serviceImpl struct {
	docs      domainDoc.Repository
	store     ObjectStore
	index     SimilarIndex
	publisher EventPublisher
	cache     redis.Cache
	metrics   Metrics
	cfg       config.AnalysisConfig
	presign   time.Duration
	logger    logging.Logger
}

// Option wires an optional backend.
type Option func(*serviceImpl)

func WithObjectStore(s ObjectStore, presignExpiry time.Duration) Option {
	return func(svc *serviceImpl) {
		svc.store = s
		svc.presign = presignExpiry
	}
}

func WithSimilarIndex(i SimilarIndex) Option {
	return func(svc *serviceImpl) { svc.index = i }
}

func WithPublisher(p EventPublisher) Option {
	return func(svc *serviceImpl) { svc.publisher = p }
}

func WithCache(c redis.Cache) Option {
	return func(svc *serviceImpl) { svc.cache = c }
}

func WithMetrics(m Metrics) Option {
	return func(svc *serviceImpl) { svc.metrics = m }
}

// NewService creates the document service.  Only the repository is required.
func NewService(docs domainDoc.Repository, cfg config.AnalysisConfig, logger logging.Logger, opts ...Option) Service {
	if cfg.SummaryMaxWords <= 0 {
		cfg.SummaryMaxWords = config.DefaultSummaryMaxWords
	}
	if cfg.PreviewChars <= 0 {
		cfg.PreviewChars = config.DefaultPreviewChars
	}
	if cfg.SimilarDocsLimit <= 0 {
		cfg.SimilarDocsLimit = config.DefaultSimilarDocsLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = config.DefaultAnalysisCacheTTL
	}
	s := &serviceImpl{docs: docs, cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) processed(op string, err error) {
	if s.metrics != nil {
		s.metrics.RecordDocumentProcessed(op, err == nil)
	}
}

// read extracts the upload's text.  Only an empty upload is rejected.
func (s *serviceImpl) read(ctx context.Context, upload *Upload) (*textextract.Extraction, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyFile, "Empty file.")
	}
	return textextract.Extract(ctx, upload.Filename, upload.ContentType, upload.Data)
}

// extract reads the upload and rejects documents without text.  noText is the
// message used for that case, which differs per endpoint.
func (s *serviceImpl) extract(ctx context.Context, upload *Upload, noText string) (*textextract.Extraction, error) {
	ext, err := s.read(ctx, upload)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(ext.Text) == "" {
		return nil, errors.New(errors.ErrCodeNoText, noText)
	}
	return ext, nil
}

func (s *serviceImpl) Summarize(ctx context.Context, upload *Upload) (res *SummaryResult, err error) {
	defer func() { s.processed("summarize", err) }()

	ext, err := s.extract(ctx, upload, "Could not extract text from the document.")
	if err != nil {
		return nil, err
	}
	sum := summary.Summarize(ext.Text, s.cfg.SummaryMaxWords)
	return &SummaryResult{
		Filename:  domainDoc.SanitizeFilename(upload.Filename),
		Summary:   sum.Summary,
		WordCount: sum.WordCount,
	}, nil
}

func (s *serviceImpl) Classify(ctx context.Context, upload *Upload) (res *classification.Result, err error) {
	defer func() { s.processed("classify", err) }()

	// Whitespace-only text is still text here and classifies as Other.
	ext, err := s.read(ctx, upload)
	if err != nil {
		return nil, err
	}
	if ext.Text == "" {
		return nil, errors.New(errors.ErrCodeNoText, "No text found in document.")
	}
	r := classification.Classify(ext.Text)
	return &r, nil
}

func analysisCacheKey(tenantID uuid.UUID, sha string) string {
	return tenantID.String() + ":" + sha
}

func (s *serviceImpl) Analyze(ctx context.Context, upload *Upload) (res *AnalysisResult, err error) {
	defer func() { s.processed("analyze", err) }()
	start := time.Now()

	ext, err := s.extract(ctx, upload, "No text found in document.")
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(upload.Data)
	sha := hex.EncodeToString(digest[:])

	key := analysisCacheKey(upload.TenantID, sha)
	if s.cache != nil {
		var cached AnalysisResult
		if cerr := s.cache.Get(ctx, key, &cached); cerr == nil {
			s.logger.Debug("Analysis served from cache", logging.String("document_id", cached.DocumentID.String()))
			return &cached, nil
		} else if !errors.Is(cerr, redis.ErrCacheMiss) {
			s.logger.Warn("Analysis cache read failed", logging.Err(cerr))
		}
	}

	analysis, err := classification.Analyze(ctx, classification.Input{Text: ext.Text, Pages: ext.Pages, Format: ext.Format})
	if err != nil {
		return nil, err
	}

	doc, err := domainDoc.NewDocument(upload.TenantID, upload.UserID, upload.Filename, upload.ContentType, int64(len(upload.Data)), sha)
	if err != nil {
		return nil, err
	}
	doc.DocType = analysis.DocType
	doc.Confidence = analysis.Confidence
	doc.KeywordsMatched = analysis.KeywordsMatched
	doc.HighlightPhrases = analysis.HighlightPhrases
	doc.QualityScore = analysis.QualityScore
	doc.PageCount = ext.PageCount()
	doc.TextPreview = textextract.Preview(ext.Text, s.cfg.PreviewChars)

	if s.store != nil {
		if _, err := s.store.Put(ctx, &minio.UploadRequest{
			ObjectKey:   doc.ObjectKey,
			Data:        upload.Data,
			ContentType: upload.ContentType,
			Metadata:    map[string]string{"tenant-id": doc.TenantID.String(), "sha256": sha},
		}); err != nil {
			return nil, err
		}
	} else {
		doc.ObjectKey = ""
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	res = &AnalysisResult{
		DocumentID:  doc.ID,
		Filename:    doc.Filename,
		Analysis:    *analysis,
		SimilarDocs: s.similar(ctx, doc),
		TextPreview: doc.TextPreview,
	}

	s.publishAnalyzed(ctx, doc)
	if s.metrics != nil {
		s.metrics.RecordDocumentAnalyzed(doc.DocType, ext.Format, time.Since(start))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("Analysis cache write failed", logging.Err(err))
		}
	}

	s.logger.Info("Document analyzed",
		logging.String("document_id", doc.ID.String()),
		logging.String("tenant_id", doc.TenantID.String()),
		logging.String("doc_type", doc.DocType),
		logging.Int("similar", len(res.SimilarDocs)),
		logging.Duration("elapsed", time.Since(start)))
	return res, nil
}

// similar prefers the search index and falls back to same-type documents from
// the database.  Failures only cost the suggestions.
func (s *serviceImpl) similar(ctx context.Context, doc *domainDoc.Document) []domainDoc.Similar {
	limit := s.cfg.SimilarDocsLimit
	if s.index != nil {
		hits, err := s.index.Similar(ctx, opensearch.SimilarQuery{
			TenantID:  doc.TenantID.String(),
			ExcludeID: doc.ID.String(),
			DocType:   doc.DocType,
			Text:      doc.TextPreview,
			Limit:     limit,
		})
		if err == nil {
			return fromHits(hits)
		}
		s.logger.Warn("Similarity search failed, using database", logging.Err(err))
	}

	out, err := s.docs.FindSimilar(ctx, doc.TenantID, doc.DocType, doc.ID, limit)
	if err != nil {
		s.logger.Warn("Similar document lookup failed", logging.Err(err))
		return []domainDoc.Similar{}
	}
	return out
}

// fromHits converts search hits, scaling scores to [0, 1] against the best hit.
func fromHits(hits []opensearch.Hit) []domainDoc.Similar {
	out := make([]domainDoc.Similar, 0, len(hits))
	var top float64
	for _, h := range hits {
		if h.Score > top {
			top = h.Score
		}
	}
	for _, h := range hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		score := 0.0
		if top > 0 {
			score = h.Score / top
		}
		out = append(out, domainDoc.Similar{ID: id, Filename: h.Filename, DocType: h.DocType, Score: score})
	}
	return out
}

func (s *serviceImpl) publishAnalyzed(ctx context.Context, doc *domainDoc.Document) {
	if s.publisher == nil {
		return
	}
	env, err := kafka.NewEventEnvelope(kafka.EventDocumentAnalyzed, eventSource, kafka.DocumentAnalyzedPayload{
		DocumentID:       doc.ID.String(),
		TenantID:         doc.TenantID.String(),
		UserID:           doc.UserID.String(),
		Filename:         doc.Filename,
		DocType:          doc.DocType,
		Confidence:       doc.Confidence,
		KeywordsMatched:  doc.KeywordsMatched,
		HighlightPhrases: doc.HighlightPhrases,
		QualityScore:     doc.QualityScore,
		TextPreview:      doc.TextPreview,
		AnalyzedAt:       doc.CreatedAt,
	})
	if err == nil {
		err = s.publisher.PublishEvent(ctx, kafka.TopicDocumentAnalyzed, doc.ID.String(), env)
	}
	if s.metrics != nil {
		s.metrics.RecordEventPublished(kafka.TopicDocumentAnalyzed, err == nil)
	}
	if err != nil {
		s.logger.Error("Failed to publish document event", logging.String("document_id", doc.ID.String()), logging.Err(err))
	}
}

func (s *serviceImpl) ListDocuments(ctx context.Context, tenantID uuid.UUID, filter domainDoc.ListFilter) (*ListResult, error) {
	filter = filter.Normalize()
	docs, total, err := s.docs.ListByTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []*domainDoc.Document{}
	}
	return &ListResult{Documents: docs, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *serviceImpl) GetDocument(ctx context.Context, tenantID, id uuid.UUID) (*domainDoc.Document, error) {
	return s.docs.GetByID(ctx, tenantID, id)
}

func (s *serviceImpl) DownloadURL(ctx context.Context, tenantID, id uuid.UUID) (*DownloadLink, error) {
	if s.store == nil {
		return nil, errors.New(errors.ErrCodeFeatureDisabled, "document storage is not configured")
	}
	doc, err := s.docs.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if doc.ObjectKey == "" {
		return nil, errors.New(errors.ErrCodeDocumentNotFound, "original file was not stored")
	}
	url, err := s.store.PresignedGetURL(ctx, doc.ObjectKey, doc.Filename, s.presign)
	if err != nil {
		return nil, err
	}
	expiry := s.presign
	if expiry <= 0 {
		expiry = config.DefaultMinIOPresignExpiry
	}
	return &DownloadLink{URL: url, ExpiresIn: int64(expiry.Seconds())}, nil
}
