package document

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"

	domainDoc "github.com/turtacn/InsureDoc-Intelligence/internal/domain/document"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/storage/minio"
)

type mockDocumentRepository struct {
	mock.Mock
}

func (m *mockDocumentRepository) Create(ctx context.Context, d *domainDoc.Document) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDocumentRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domainDoc.Document, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainDoc.Document), args.Error(1)
}

func (m *mockDocumentRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter domainDoc.ListFilter) ([]*domainDoc.Document, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domainDoc.Document), args.Get(1).(int64), args.Error(2)
}

func (m *mockDocumentRepository) FindSimilar(ctx context.Context, tenantID uuid.UUID, docType string, excludeID uuid.UUID, limit int) ([]domainDoc.Similar, error) {
	args := m.Called(ctx, tenantID, docType, excludeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainDoc.Similar), args.Error(1)
}

type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) Put(ctx context.Context, req *minio.UploadRequest) (*minio.UploadResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*minio.UploadResult), args.Error(1)
}

func (m *mockObjectStore) PresignedGetURL(ctx context.Context, key, filename string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, filename, expiry)
	return args.String(0), args.Error(1)
}

type mockSimilarIndex struct {
	mock.Mock
}

func (m *mockSimilarIndex) Similar(ctx context.Context, q opensearch.SimilarQuery) ([]opensearch.Hit, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]opensearch.Hit), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic, key string, env *kafka.EventEnvelope) error {
	return m.Called(ctx, topic, key, env).Error(0)
}

// fakeMetrics counts calls.
type fakeMetrics struct {
	mu          sync.Mutex
	processed   map[string]int
	analyzed    map[string]int
	published   map[bool]int
	annotations int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{processed: map[string]int{}, analyzed: map[string]int{}, published: map[bool]int{}}
}

func (f *fakeMetrics) RecordDocumentProcessed(op string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ok {
		f.processed[op+":ok"]++
	} else {
		f.processed[op+":fail"]++
	}
}

func (f *fakeMetrics) RecordDocumentAnalyzed(docType, _ string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed[docType]++
}

func (f *fakeMetrics) RecordEventPublished(_ string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[ok]++
}

func (f *fakeMetrics) RecordAnnotation(time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.annotations++
}

func newTestCache(t *testing.T, name string) redis.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	client := redis.NewClientFromUniversal(rdb, "test:", logging.NewNopLogger())
	return redis.NewRedisCache(client, logging.NewNopLogger(), redis.WithName(name), redis.WithTTLJitter(0))
}
