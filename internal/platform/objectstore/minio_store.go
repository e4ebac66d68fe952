// Package objectstore keeps generated assets in an S3 compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/phrazzld/wordeck-api/internal/asset"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
)

// ErrInvalidConfig is returned when the connection settings are incomplete.
var ErrInvalidConfig = errors.New("invalid object store configuration")

// Config holds connection settings for a bucket.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Prefix is prepended to every object name, e.g. "public/tts".
	Prefix string
}

// objectAPI is the subset of *minio.Client the store calls.
type objectAPI interface {
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
}

// Store implements asset.Blobs on a MinIO bucket.
type Store struct {
	client objectAPI
	bucket string
	prefix string
	logger *slog.Logger
}

// Ensure Store implements asset.Blobs
var _ asset.Blobs = (*Store)(nil)

// New connects to the endpoint and creates the bucket if it does not exist.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: endpoint and bucket are required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket %q exists: %w", cfg.Bucket, err)
	}
	if !exists {
		logger.Info("creating bucket", slog.String("bucket", cfg.Bucket))
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return newStore(client, cfg, logger), nil
}

func newStore(client objectAPI, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger.With(
			slog.String("component", "minio_blob_store"),
			slog.String("bucket", cfg.Bucket),
		),
	}
}

func (s *Store) objectName(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Exists implements asset.Blobs.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.objectName(name), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat object %q: %w", name, err)
}

// Put implements asset.Blobs.
func (s *Store) Put(ctx context.Context, name string, data []byte, contentType string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	info, err := s.client.PutObject(ctx, s.bucket, s.objectName(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload object %q: %w", name, err)
	}

	log.Debug("object uploaded", slog.String("object", info.Key), slog.Int64("size", info.Size))
	return nil
}

// Delete implements asset.Blobs. RemoveObject succeeds for absent keys.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, s.objectName(name), minio.RemoveObjectOptions{}); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete object %q: %w", name, err)
	}
	return nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
