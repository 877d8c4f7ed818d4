// Package storage uploads rendered covers to an S3-compatible object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jmylchreest/covergen/internal/apperr"
	"github.com/jmylchreest/covergen/internal/security"
)

// ContentTypePNG is the content type of every stored cover.
const ContentTypePNG = "image/png"

// Uploader persists a single object. Implementations must not retry: a
// failure is surfaced to the caller immediately.
type Uploader interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
}

// Options configures a MinioStore.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Logger    hclog.Logger
}

// MinioStore is an Uploader backed by minio-go.
type MinioStore struct {
	client *minio.Client
	logger hclog.Logger
}

// NewMinioStore creates a client for the configured endpoint. No network
// traffic happens until the first call.
func NewMinioStore(opts Options) (*MinioStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, &apperr.StorageError{Op: "connect", Err: err}
	}
	return &MinioStore{client: client, logger: logger}, nil
}

// PutObject uploads exactly size bytes from r under bucket/key.
func (s *MinioStore) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	if err := security.ValidateObjectKey(key); err != nil {
		return &apperr.StorageError{Op: "put", Key: key, Err: err}
	}
	info, err := s.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return &apperr.StorageError{Op: "put", Key: key, Err: err}
	}
	s.logger.Debug("object stored", "bucket", bucket, "key", key, "size", info.Size, "etag", info.ETag)
	return nil
}

// Check verifies that bucket exists and the credentials can see it.
func (s *MinioStore) Check(ctx context.Context, bucket string) error {
	ok, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return &apperr.StorageError{Op: "check bucket", Err: err}
	}
	if !ok {
		return &apperr.StorageError{Op: "check bucket", Err: fmt.Errorf("bucket %q does not exist", bucket)}
	}
	return nil
}

// PublicURL returns https://{endpoint}/{bucket}/{key}. Each key segment is
// path-escaped; keys built by objectkey never need escaping.
func PublicURL(endpoint, bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("https://%s/%s/%s", strings.TrimSuffix(endpoint, "/"), bucket, strings.Join(segments, "/"))
}
