package claims

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/fraud"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/internal/testutil"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Save(ctx context.Context, r *fraud.Record) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*fraud.Record, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fraud.Record), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic, key string, env *kafka.EventEnvelope) error {
	return m.Called(ctx, topic, key, env).Error(0)
}

type countingMetrics struct {
	levels    map[string]int
	published map[bool]int
}

func (c *countingMetrics) RecordClaimScored(level string)         { c.levels[level]++ }
func (c *countingMetrics) RecordEventPublished(_ string, ok bool) { c.published[ok]++ }

func newMetrics() *countingMetrics {
	return &countingMetrics{levels: map[string]int{}, published: map[bool]int{}}
}

func TestScore_Stateless(t *testing.T) {
	m := newMetrics()
	svc := NewService(logging.NewNopLogger(), WithMetrics(m))

	a, err := svc.Score(context.Background(), uuid.Nil, uuid.Nil, fraud.ClaimInput{
		ClaimID: "C-1", Amount: 600000, Description: "Sudden fire", PreviousClaimsCount: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, fraud.RiskHigh, a.RiskLevel)
	assert.Equal(t, 85.0, a.Score)
	assert.Equal(t, 1, m.levels["High"])
	assert.Empty(t, m.published)
}

func TestScore_InvalidInput(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(logging.NewNopLogger(), WithRepository(repo))

	_, err := svc.Score(context.Background(), uuid.New(), uuid.New(), fraud.ClaimInput{Amount: 10})
	assert.True(t, errors.IsCode(err, errors.ErrCodeClaimInvalid))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestScore_PersistsAndPublishes(t *testing.T) {
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()
	repo := new(mockRepository)
	pub := new(mockPublisher)
	m := newMetrics()

	repo.On("Save", ctx, mock.MatchedBy(func(r *fraud.Record) bool {
		return r.TenantID == tenantID && r.UserID == userID && r.Input.ClaimID == "C-2" && r.RiskLevel == fraud.RiskLow
	})).Return(nil)
	pub.On("PublishEvent", ctx, kafka.TopicClaimScored, "C-2", mock.MatchedBy(func(env *kafka.EventEnvelope) bool {
		var p kafka.ClaimScoredPayload
		return env.EventType == kafka.EventClaimScored && env.DecodePayload(&p) == nil &&
			p.TenantID == tenantID.String() && p.Reasons[0] == fraud.NoIndicatorsReason
	})).Return(nil)

	svc := NewService(logging.NewNopLogger(), WithRepository(repo), WithPublisher(pub), WithMetrics(m))
	a, err := svc.Score(ctx, tenantID, userID, fraud.ClaimInput{ClaimID: "C-2", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, 0.0, a.Score)
	assert.Equal(t, 1, m.published[true])
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestScore_SaveFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	pub := new(mockPublisher)
	repo.On("Save", ctx, mock.Anything).Return(errors.New(errors.ErrCodeDatabaseError, "down"))

	svc := NewService(logging.NewNopLogger(), WithRepository(repo), WithPublisher(pub))
	_, err := svc.Score(ctx, uuid.New(), uuid.New(), fraud.ClaimInput{ClaimID: "C-3"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatabaseError))
	pub.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScore_PublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	pub := new(mockPublisher)
	m := newMetrics()
	repo.On("Save", ctx, mock.Anything).Return(nil)
	pub.On("PublishEvent", ctx, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	logger := testutil.NewRecordingLogger()
	svc := NewService(logger, WithRepository(repo), WithPublisher(pub), WithMetrics(m))
	_, err := svc.Score(ctx, uuid.New(), uuid.New(), fraud.ClaimInput{ClaimID: "C-4", IsThirdParty: true})
	require.NoError(t, err)
	assert.Equal(t, 1, m.published[false])

	entry, ok := logger.Find("Failed to publish claim event")
	require.True(t, ok)
	assert.Equal(t, logging.LevelError, entry.Level)
	claimID, _ := entry.Field("claim_id")
	assert.Equal(t, "C-4", claimID)
}

func TestHistory_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(mockRepository)
	repo.On("ListByTenant", ctx, tenantID, DefaultHistoryLimit).Return(nil, nil)
	repo.On("ListByTenant", ctx, tenantID, MaxHistoryLimit).Return([]*fraud.Record{{ID: uuid.New()}}, nil)

	svc := NewService(logging.NewNopLogger(), WithRepository(repo))

	recs, err := svc.History(ctx, tenantID, 0)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)

	recs, err = svc.History(ctx, tenantID, 5000)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestHistory_NoRepository(t *testing.T) {
	recs, err := NewService(logging.NewNopLogger()).History(context.Background(), uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
