package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore creates the bucket when it does not exist yet.
func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return &MinioStore{
		client:  client,
		bucket:  bucket,
		baseURL: fmt.Sprintf("%s://%s/%s/", scheme, endpoint, bucket),
	}, nil
}

func (s *MinioStore) Name() string { return "storage_minio" }

func (s *MinioStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return s.baseURL + key, nil
}

func (s *MinioStore) Delete(ctx context.Context, url string) error {
	key := strings.TrimPrefix(url, s.baseURL)
	if key == url || key == "" {
		return fmt.Errorf("invalid file URL")
	}
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *MinioStore) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s missing", s.bucket)
	}
	return nil
}
