// Package indexing consumes analysis events and keeps the search index in
// step with the document table.
package indexing

import (
	"context"
	"time"

	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// DocumentIndexer writes one document to the search index.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, doc *opensearch.IndexedDocument) error
}

// Locker serialises work on one document across worker replicas.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
}

// LockFactory returns the lock guarding name.
type LockFactory func(name string) Locker

// Metrics records consumed events.
type Metrics interface {
	RecordEventConsumed(topic string, ok bool)
}

// Handler indexes analysed documents.
type Handler struct {
	indexer DocumentIndexer
	locks   LockFactory
	metrics Metrics
	logger  logging.Logger
}

type Option func(*Handler)

func WithLocks(f LockFactory) Option {
	return func(h *Handler) { h.locks = f }
}

func WithMetrics(m Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func NewHandler(indexer DocumentIndexer, logger logging.Logger, opts ...Option) *Handler {
	h := &Handler{indexer: indexer, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle indexes the document carried by a document.analyzed envelope.  Other
// event types are skipped.
func (h *Handler) Handle(ctx context.Context, env *kafka.EventEnvelope) error {
	if env.EventType != kafka.EventDocumentAnalyzed {
		h.logger.Debug("Skipping event", logging.String("event_type", env.EventType))
		return nil
	}
	var p kafka.DocumentAnalyzedPayload
	if err := env.DecodePayload(&p); err != nil {
		return err
	}
	if p.DocumentID == "" || p.TenantID == "" {
		return errors.New(errors.ErrCodeValidation, "document event without document or tenant id")
	}

	if h.locks != nil {
		lock := h.locks("index:" + p.DocumentID)
		if err := lock.Lock(ctx); err != nil {
			return err
		}
		defer func() {
			if err := lock.Unlock(context.Background()); err != nil {
				h.logger.Warn("Failed to release index lock", logging.String("document_id", p.DocumentID), logging.Err(err))
			}
		}()
	}

	start := time.Now()
	err := h.indexer.IndexDocument(ctx, &opensearch.IndexedDocument{
		ID:               p.DocumentID,
		TenantID:         p.TenantID,
		Filename:         p.Filename,
		DocType:          p.DocType,
		Confidence:       p.Confidence,
		KeywordsMatched:  p.KeywordsMatched,
		HighlightPhrases: p.HighlightPhrases,
		QualityScore:     p.QualityScore,
		TextPreview:      p.TextPreview,
		CreatedAt:        p.AnalyzedAt,
	})
	if err != nil {
		return err
	}
	h.logger.Info("Document indexed",
		logging.String("document_id", p.DocumentID),
		logging.String("tenant_id", p.TenantID),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}

// MessageHandler adapts Handle to the Kafka consumer.
func (h *Handler) MessageHandler() kafka.MessageHandler {
	return func(ctx context.Context, msg *kafka.Message) error {
		env, err := kafka.MessageToEventEnvelope(msg)
		if err == nil {
			err = h.Handle(ctx, env)
		}
		if h.metrics != nil {
			h.metrics.RecordEventConsumed(msg.Topic, err == nil)
		}
		return err
	}
}
