package minio

import (
	"context"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InsureDoc-Intelligence/internal/config"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]minio.BucketInfo), args.Error(1)
}

func (m *MockAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *MockAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *MockAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockAPI) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return m.Called(ctx, bucketName, objectName, opts).Error(0)
}

func (m *MockAPI) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	args := m.Called(ctx, bucketName, objectName, expiry, reqParams)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*url.URL), args.Error(1)
}

func newMockClient(api API) *Client {
	return NewClientWithAPI(api, config.MinIOConfig{Bucket: "docs"}, logging.NewNopLogger())
}

func TestApplyDefaults(t *testing.T) {
	cfg := config.MinIOConfig{}
	applyDefaults(&cfg)
	assert.Equal(t, defaultRegion, cfg.Region)
	assert.Equal(t, defaultBucket, cfg.Bucket)
	assert.Equal(t, defaultPresignExpiry, cfg.PresignExpiry)
}

func TestEnsureBucket_CreatesMissing(t *testing.T) {
	api := new(MockAPI)
	api.On("BucketExists", mock.Anything, "docs").Return(false, nil)
	api.On("MakeBucket", mock.Anything, "docs", minio.MakeBucketOptions{Region: defaultRegion}).Return(nil)

	require.NoError(t, newMockClient(api).EnsureBucket(context.Background()))
	api.AssertExpectations(t)
}

func TestEnsureBucket_Existing(t *testing.T) {
	api := new(MockAPI)
	api.On("BucketExists", mock.Anything, "docs").Return(true, nil)

	require.NoError(t, newMockClient(api).EnsureBucket(context.Background()))
	api.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestPing(t *testing.T) {
	api := new(MockAPI)
	api.On("BucketExists", mock.Anything, "docs").Return(false, nil).Once()
	api.On("BucketExists", mock.Anything, "docs").Return(false, assert.AnError).Once()
	c := newMockClient(api)

	err := c.Ping(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))

	status := c.HealthCheck(context.Background())
	assert.False(t, status.Healthy)
	assert.NotEmpty(t, status.Error)
}
