package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"collegeoffice_go/database"
	"collegeoffice_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// minArchiveAgeDays stops a misconfigured job from archiving recent activity.
const minArchiveAgeDays = 7

var ErrArchiveNotFound = errors.New("archive not found")

// ArchiveBucket stores archive files.
type ArchiveBucket interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// S3ArchiveBucket writes archives with the v2 AWS SDK.
type S3ArchiveBucket struct {
	client *s3.Client
	bucket string
}

func NewS3ArchiveBucket(ctx context.Context, region, bucket string) (*S3ArchiveBucket, error) {
	if region == "" || bucket == "" {
		return nil, errors.New("AWS region and bucket are required for log archives")
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &S3ArchiveBucket{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

func (b *S3ArchiveBucket) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	return err
}

func (b *S3ArchiveBucket) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(b.bucket), Key: aws.String(key)})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// LogArchiveService moves old activity logs out of the database into zip archives.
type LogArchiveService struct {
	db     *database.Database
	bucket ArchiveBucket
}

func NewLogArchiveService(db *database.Database, bucket ArchiveBucket) *LogArchiveService {
	return &LogArchiveService{db: db, bucket: bucket}
}

// ArchiveOldLogs archives logs older than daysOld and removes them from the
// database. The delete and the archive record commit together.
func (las *LogArchiveService) ArchiveOldLogs(ctx context.Context, daysOld int, now time.Time) (*models.LogArchive, error) {
	if daysOld < minArchiveAgeDays {
		return nil, fmt.Errorf("minimum archive age is %d days", minArchiveAgeDays)
	}
	if las.bucket == nil {
		return nil, errors.New("log archive storage not configured")
	}
	cutoff := now.AddDate(0, 0, -daysOld)

	var logs, batch []models.ActivityLog
	err := las.db.Conn(ctx).
		Where("created_at < ?", cutoff).
		FindInBatches(&batch, 1000, func(_ *gorm.DB, _ int) error {
			logs = append(logs, batch...)
			return nil
		}).Error
	if err != nil {
		return nil, fmt.Errorf("fetch logs for archiving: %w", err)
	}
	if len(logs) == 0 {
		logrus.Info("No logs to archive")
		return nil, nil
	}

	fileName := fmt.Sprintf("activity_logs_%s.zip", cutoff.Format(models.DateLayout))
	data, err := BuildLogArchive(logs, fileName, now)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("logs/archived/%d/%02d/%s", cutoff.Year(), cutoff.Month(), fileName)
	if err := las.bucket.Put(ctx, key, data, "application/zip"); err != nil {
		return nil, fmt.Errorf("upload archive: %w", err)
	}

	earliest := logs[0].CreatedAt
	for _, l := range logs[1:] {
		if l.CreatedAt.Before(earliest) {
			earliest = l.CreatedAt
		}
	}
	archive := models.LogArchive{
		FileName:    fileName,
		S3Key:       key,
		StartDate:   earliest,
		EndDate:     cutoff,
		RecordCount: len(logs),
		FileSize:    int64(len(data)),
		Status:      "completed",
	}
	lastID := logs[len(logs)-1].ID
	err = las.db.WithTx(ctx, func(tx *gorm.DB) error {
		// Rows inserted after the read are newer than lastID and stay in place.
		if err := tx.Where("created_at < ? AND id <= ?", cutoff, lastID).Delete(&models.ActivityLog{}).Error; err != nil {
			return err
		}
		return tx.Create(&archive).Error
	})
	if err != nil {
		return nil, fmt.Errorf("record archive: %w", err)
	}

	logrus.WithFields(logrus.Fields{"key": key, "records": len(logs)}).Info("Archived activity logs")
	return &archive, nil
}

type archivedLog struct {
	ID         uint            `json:"id"`
	UserID     uint            `json:"user_id"`
	Username   string          `json:"username,omitempty"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID string          `json:"resource_id"`
	Details    json.RawMessage `json:"details,omitempty"`
	IPAddress  string          `json:"ip_address"`
	UserAgent  string          `json:"user_agent"`
	CreatedAt  time.Time       `json:"created_at"`
}

// BuildLogArchive renders logs as a zip holding JSON, CSV and a metadata file.
func BuildLogArchive(logs []models.ActivityLog, fileName string, now time.Time) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	rows := make([]archivedLog, 0, len(logs))
	for _, l := range logs {
		a := archivedLog{
			ID: l.ID, UserID: l.UserID, Username: l.Username, Action: l.Action, Resource: l.Resource,
			ResourceID: l.ResourceID, IPAddress: l.IPAddress, UserAgent: l.UserAgent, CreatedAt: l.CreatedAt,
		}
		if len(l.Details) > 0 && json.Valid(l.Details) {
			a.Details = json.RawMessage(l.Details)
		}
		rows = append(rows, a)
	}

	logsFile, err := zw.Create("activity_logs.json")
	if err != nil {
		return nil, fmt.Errorf("create logs file in zip: %w", err)
	}
	enc := json.NewEncoder(logsFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"export_date":    now.UTC(),
		"record_count":   len(rows),
		"format_version": "1.0",
		"logs":           rows,
	}); err != nil {
		return nil, fmt.Errorf("encode logs: %w", err)
	}

	metaFile, err := zw.Create("metadata.json")
	if err != nil {
		return nil, fmt.Errorf("create metadata file in zip: %w", err)
	}
	meta := map[string]any{
		"file_name":      fileName,
		"created_at":     now.UTC(),
		"record_count":   len(rows),
		"schema_version": "1.0",
		"description":    "College Office Activity Logs Archive",
	}
	if len(rows) > 0 {
		meta["date_range"] = map[string]any{"start": rows[0].CreatedAt, "end": rows[len(rows)-1].CreatedAt}
	}
	if err := json.NewEncoder(metaFile).Encode(meta); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	csvFile, err := zw.Create("activity_logs.csv")
	if err != nil {
		return nil, fmt.Errorf("create csv file in zip: %w", err)
	}
	w := csv.NewWriter(csvFile)
	_ = w.Write([]string{"ID", "User ID", "Username", "Action", "Resource", "Resource ID", "IP Address", "User Agent", "Created At", "Details"})
	for _, r := range rows {
		_ = w.Write([]string{
			strconv.FormatUint(uint64(r.ID), 10),
			strconv.FormatUint(uint64(r.UserID), 10),
			r.Username, r.Action, r.Resource, r.ResourceID, r.IPAddress, r.UserAgent,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			string(r.Details),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// GetArchivedLogs lists archive records, newest first.
func (las *LogArchiveService) GetArchivedLogs(ctx context.Context) ([]models.LogArchive, error) {
	var archives []models.LogArchive
	if err := las.db.Conn(ctx).Order("created_at DESC").Find(&archives).Error; err != nil {
		return nil, fmt.Errorf("retrieve archived logs: %w", err)
	}
	return archives, nil
}

// DownloadArchive opens a stored archive by its record id.
func (las *LogArchiveService) DownloadArchive(ctx context.Context, id uint) (io.ReadCloser, string, error) {
	var archive models.LogArchive
	if err := las.db.Conn(ctx).First(&archive, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrArchiveNotFound
		}
		return nil, "", fmt.Errorf("retrieve archive: %w", err)
	}
	if las.bucket == nil {
		return nil, "", errors.New("log archive storage not configured")
	}
	body, err := las.bucket.Get(ctx, archive.S3Key)
	if err != nil {
		return nil, "", fmt.Errorf("download archive: %w", err)
	}
	return body, archive.FileName, nil
}
