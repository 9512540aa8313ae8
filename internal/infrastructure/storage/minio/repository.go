package minio

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrInvalidRequest = errors.New(errors.ErrCodeInvalidArgument, "invalid request")
)

// UploadRequest describes one object to store.
type UploadRequest struct {
	ObjectKey   string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// UploadResult is what MinIO reports after a put.
type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	UploadedAt time.Time
}

// DocumentStore reads and writes document objects in the configured bucket.
type DocumentStore struct {
	client *Client
	logger logging.Logger
	now    func() time.Time
}

func NewDocumentStore(client *Client, log logging.Logger) *DocumentStore {
	return &DocumentStore{client: client, logger: log, now: time.Now}
}

// Put uploads the bytes under req.ObjectKey.  The content type is sniffed when
// not given.
func (s *DocumentStore) Put(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if req == nil || req.ObjectKey == "" {
		return nil, ErrInvalidRequest
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(req.Data)
	}

	info, err := s.client.api.PutObject(ctx, s.client.bucket, req.ObjectKey,
		bytes.NewReader(req.Data), int64(len(req.Data)),
		minio.PutObjectOptions{ContentType: contentType, UserMetadata: req.Metadata})
	if err != nil {
		s.logger.Error("Document upload failed", logging.String("key", req.ObjectKey), logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "upload failed")
	}

	s.logger.Debug("Document uploaded",
		logging.String("key", req.ObjectKey),
		logging.Int64("size", info.Size),
	)
	return &UploadResult{
		Bucket:     info.Bucket,
		ObjectKey:  info.Key,
		ETag:       info.ETag,
		Size:       info.Size,
		UploadedAt: s.now().UTC(),
	}, nil
}

// Exists reports whether key is stored.
func (s *DocumentStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.api.StatObject(ctx, s.client.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeStorageError, "stat failed")
	}
	return true, nil
}

// Delete removes key.  Removing a missing key is not an error.
func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	if err := s.client.api.RemoveObject(ctx, s.client.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "delete failed")
	}
	return nil
}

// PresignedGetURL returns a time-limited download URL that serves the object
// as an attachment named filename.
func (s *DocumentStore) PresignedGetURL(ctx context.Context, key, filename string, expiry time.Duration) (string, error) {
	if key == "" {
		return "", ErrInvalidRequest
	}
	if expiry <= 0 {
		expiry = s.client.presignExpiry
	}
	params := url.Values{}
	if filename != "" {
		params.Set("response-content-disposition", `attachment; filename="`+filename+`"`)
	}
	u, err := s.client.api.PresignedGetObject(ctx, s.client.bucket, key, expiry, params)
	if err != nil {
		if isNoSuchKey(err) {
			return "", ErrObjectNotFound
		}
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to presign download")
	}
	return u.String(), nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
