// Package claims scores claims for fraud risk and keeps the tenant's history.
package claims

import (
	"context"

	"github.com/google/uuid"

	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/fraud"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
)

const (
	eventSource         = "insuredoc-apiserver"
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Service defines the claim operations.
type Service interface {
	// Score validates and scores a claim.  With a repository configured the
	// assessment is stored against the tenant.
	Score(ctx context.Context, tenantID, userID uuid.UUID, in fraud.ClaimInput) (*fraud.Assessment, error)
	History(ctx context.Context, tenantID uuid.UUID, limit int) ([]*fraud.Record, error)
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, env *kafka.EventEnvelope) error
}

// Metrics records scoring outcomes.
type Metrics interface {
	RecordClaimScored(level string)
	RecordEventPublished(topic string, ok bool)
}

type serviceImpl struct {
	repo      fraud.Repository
	publisher EventPublisher
	metrics   Metrics
	logger    logging.Logger
}

type Option func(*serviceImpl)

func WithRepository(r fraud.Repository) Option {
	return func(s *serviceImpl) { s.repo = r }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *serviceImpl) { s.publisher = p }
}

func WithMetrics(m Metrics) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

// NewService creates the claim service.  Without a repository it scores
// statelessly, which is how the CLI uses it.
func NewService(logger logging.Logger, opts ...Option) Service {
	s := &serviceImpl{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) Score(ctx context.Context, tenantID, userID uuid.UUID, in fraud.ClaimInput) (*fraud.Assessment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a := fraud.Score(in)
	if s.metrics != nil {
		s.metrics.RecordClaimScored(string(a.RiskLevel))
	}
	if s.repo == nil {
		return &a, nil
	}

	rec := fraud.NewRecord(tenantID, userID, in, a)
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}
	s.publishScored(ctx, rec)

	s.logger.Info("Claim scored",
		logging.String("assessment_id", rec.ID.String()),
		logging.String("tenant_id", tenantID.String()),
		logging.String("claim_id", a.ClaimID),
		logging.String("risk_level", string(a.RiskLevel)),
		logging.Float64("score", a.Score))
	return &a, nil
}

func (s *serviceImpl) publishScored(ctx context.Context, rec *fraud.Record) {
	if s.publisher == nil {
		return
	}
	env, err := kafka.NewEventEnvelope(kafka.EventClaimScored, eventSource, kafka.ClaimScoredPayload{
		AssessmentID: rec.ID.String(),
		TenantID:     rec.TenantID.String(),
		ClaimID:      rec.ClaimID,
		RiskLevel:    string(rec.RiskLevel),
		Score:        rec.Score,
		Reasons:      rec.Reasons,
		ScoredAt:     rec.CreatedAt,
	})
	if err == nil {
		err = s.publisher.PublishEvent(ctx, kafka.TopicClaimScored, rec.ClaimID, env)
	}
	if s.metrics != nil {
		s.metrics.RecordEventPublished(kafka.TopicClaimScored, err == nil)
	}
	if err != nil {
		s.logger.Error("Failed to publish claim event", logging.String("claim_id", rec.ClaimID), logging.Err(err))
	}
}

func (s *serviceImpl) History(ctx context.Context, tenantID uuid.UUID, limit int) ([]*fraud.Record, error) {
	if s.repo == nil {
		return []*fraud.Record{}, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	recs, err := s.repo.ListByTenant(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []*fraud.Record{}
	}
	return recs, nil
}
