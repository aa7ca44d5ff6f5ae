package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"collegeoffice_go/config"
	"collegeoffice_go/utils"
)

// Store persists uploaded files and returns the URL the front-end stores.
type Store interface {
	Name() string
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
	Ping(ctx context.Context) error
}

// NewFromConfig picks the driver named by STORAGE_DRIVER.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStore(cfg.UploadDir, "/uploads")
	case "s3":
		return NewS3Store(cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.S3BucketName)
	case "minio":
		return NewMinioStore(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// ObjectName builds "<id>-<field><ext>" with the id reduced to
// [a-zA-Z0-9-_]. An id that is empty after stripping becomes "Unknown".
func ObjectName(id, field, original string) string {
	safe := utils.SafeID(id)
	if safe == "" {
		safe = "Unknown"
	}
	return safe + "-" + field + strings.ToLower(filepath.Ext(original))
}

func isImageExt(ext string) bool {
	switch strings.TrimPrefix(strings.ToLower(ext), ".") {
	case "jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff":
		return true
	}
	return false
}

// ContentType returns the MIME type for a file extension.
func ContentType(ext string) string {
	switch strings.TrimPrefix(strings.ToLower(ext), ".") {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "pdf":
		return "application/pdf"
	case "doc":
		return "application/msword"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
