package indexing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) IndexDocument(ctx context.Context, doc *opensearch.IndexedDocument) error {
	return m.Called(ctx, doc).Error(0)
}

type consumedMetrics struct {
	ok, failed int
}

func (c *consumedMetrics) RecordEventConsumed(_ string, ok bool) {
	if ok {
		c.ok++
	} else {
		c.failed++
	}
}

func analyzedMessage(t *testing.T, p kafka.DocumentAnalyzedPayload) *kafka.Message {
	t.Helper()
	env, err := kafka.NewEventEnvelope(kafka.EventDocumentAnalyzed, "test", p)
	require.NoError(t, err)
	data, err := json.Marshal(env)
	require.NoError(t, err)
	return &kafka.Message{Topic: kafka.TopicDocumentAnalyzed, Value: data}
}

func TestHandle_IndexesDocument(t *testing.T) {
	idx := new(mockIndexer)
	at := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	idx.On("IndexDocument", mock.Anything, mock.MatchedBy(func(d *opensearch.IndexedDocument) bool {
		return d.ID == "doc-1" && d.TenantID == "t-1" && d.DocType == "Invoice" &&
			d.TextPreview == "GST invoice" && d.CreatedAt.Equal(at)
	})).Return(nil)
	m := &consumedMetrics{}

	h := NewHandler(idx, logging.NewNopLogger(), WithMetrics(m))
	err := h.MessageHandler()(context.Background(), analyzedMessage(t, kafka.DocumentAnalyzedPayload{
		DocumentID: "doc-1", TenantID: "t-1", DocType: "Invoice", TextPreview: "GST invoice", AnalyzedAt: at,
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, m.ok)
	idx.AssertExpectations(t)
}

func TestHandle_SkipsOtherEvents(t *testing.T) {
	idx := new(mockIndexer)
	env, err := kafka.NewEventEnvelope(kafka.EventClaimScored, "test", kafka.ClaimScoredPayload{ClaimID: "C-1"})
	require.NoError(t, err)

	require.NoError(t, NewHandler(idx, logging.NewNopLogger()).Handle(context.Background(), env))
	idx.AssertNotCalled(t, "IndexDocument", mock.Anything, mock.Anything)
}

func TestHandle_RejectsIncompletePayload(t *testing.T) {
	env, err := kafka.NewEventEnvelope(kafka.EventDocumentAnalyzed, "test", kafka.DocumentAnalyzedPayload{DocumentID: "doc-1"})
	require.NoError(t, err)

	err = NewHandler(new(mockIndexer), logging.NewNopLogger()).Handle(context.Background(), env)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestMessageHandler_BadMessage(t *testing.T) {
	m := &consumedMetrics{}
	h := NewHandler(new(mockIndexer), logging.NewNopLogger(), WithMetrics(m))

	err := h.MessageHandler()(context.Background(), &kafka.Message{Topic: kafka.TopicDocumentAnalyzed, Value: []byte("{")})
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
	assert.Equal(t, 1, m.failed)
}

func TestHandle_IndexerErrorPropagates(t *testing.T) {
	idx := new(mockIndexer)
	idx.On("IndexDocument", mock.Anything, mock.Anything).Return(errors.New(errors.ErrCodeSearchError, "index down"))

	err := NewHandler(idx, logging.NewNopLogger()).MessageHandler()(context.Background(),
		analyzedMessage(t, kafka.DocumentAnalyzedPayload{DocumentID: "doc-1", TenantID: "t-1"}))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSearchError))
}

func TestHandle_WithRedisLock(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	client := redis.NewClientFromUniversal(rdb, "test:", logging.NewNopLogger())

	idx := new(mockIndexer)
	idx.On("IndexDocument", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		assert.True(t, mr.Exists("test:lock:index:doc-9"))
	}).Return(nil)

	h := NewHandler(idx, logging.NewNopLogger(), WithLocks(func(name string) Locker {
		return redis.NewMutex(client, name, redis.WithLockTTL(time.Second))
	}))
	require.NoError(t, h.MessageHandler()(context.Background(),
		analyzedMessage(t, kafka.DocumentAnalyzedPayload{DocumentID: "doc-9", TenantID: "t-1"})))
	assert.False(t, mr.Exists("test:lock:index:doc-9"))
}

func TestHandle_LockHeldElsewhere(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	client := redis.NewClientFromUniversal(rdb, "test:", logging.NewNopLogger())

	holder := redis.NewMutex(client, "index:doc-5")
	require.NoError(t, holder.Lock(context.Background()))

	idx := new(mockIndexer)
	h := NewHandler(idx, logging.NewNopLogger(), WithLocks(func(name string) Locker {
		return redis.NewMutex(client, name)
	}))
	err := h.Handle(context.Background(), mustEnvelope(t, kafka.DocumentAnalyzedPayload{DocumentID: "doc-5", TenantID: "t-1"}))
	assert.ErrorIs(t, err, redis.ErrLockNotAcquired)
	idx.AssertNotCalled(t, "IndexDocument", mock.Anything, mock.Anything)
}

func mustEnvelope(t *testing.T, p kafka.DocumentAnalyzedPayload) *kafka.EventEnvelope {
	t.Helper()
	env, err := kafka.NewEventEnvelope(kafka.EventDocumentAnalyzed, "test", p)
	require.NoError(t, err)
	return env
}

func TestClaimAuditHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := &consumedMetrics{}
	handle := ClaimAuditHandler(logging.NewLoggerFromCore(core), m)

	for _, level := range []string{"High", "Low"} {
		env, err := kafka.NewEventEnvelope(kafka.EventClaimScored, "test", kafka.ClaimScoredPayload{ClaimID: "C-" + level, RiskLevel: level})
		require.NoError(t, err)
		data, err := json.Marshal(env)
		require.NoError(t, err)
		require.NoError(t, handle(context.Background(), &kafka.Message{Topic: kafka.TopicClaimScored, Value: data}))
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "High risk claim scored", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, 2, m.ok)
}
