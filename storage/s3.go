package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Store keeps uploads in a public-read S3 bucket.
type S3Store struct {
	s3Client *s3.S3
	bucket   string
	region   string
}

// NewS3Store falls back to the default credential chain when no static keys are set.
func NewS3Store(region, accessKeyID, secretAccessKey, bucket string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME is required for the s3 storage driver")
	}
	awsCfg := &aws.Config{Region: aws.String(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(accessKeyID, secretAccessKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	return &S3Store{
		s3Client: s3.New(sess),
		bucket:   bucket,
		region:   region,
	}, nil
}

func (s *S3Store) Name() string { return "storage_s3" }

func (s *S3Store) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %v", err)
		}
		body = bytes.NewReader(data)
	}

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}
	return s.publicURL(key), nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	key := s.extractKeyFromURL(url)
	if key == "" {
		return fmt.Errorf("invalid file URL")
	}
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.s3Client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

func (s *S3Store) publicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// extractKeyFromURL expects https://bucket.s3.region.amazonaws.com/path/to/file.ext
func (s *S3Store) extractKeyFromURL(url string) string {
	parts := strings.SplitN(url, ".amazonaws.com/", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
