package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"collegeoffice_go/database"
	"collegeoffice_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	activityQueueKey = "logs:queue"
	activityKeyTTL   = 24 * time.Hour
)

// ActivityLogQueue buffers activity logs in Redis and flushes them to
// activity_logs. Without Redis every entry is written straight to the database.
type ActivityLogQueue struct {
	db       *database.Database
	useRedis bool
}

func NewActivityLogQueue(db *database.Database, useRedis bool) *ActivityLogQueue {
	return &ActivityLogQueue{db: db, useRedis: useRedis}
}

func (q *ActivityLogQueue) redis() *redis.Client {
	if !q.useRedis || q.db == nil {
		return nil
	}
	return q.db.Redis
}

// Enqueue records one entry, falling back to a direct insert when the cache fails.
func (q *ActivityLogQueue) Enqueue(ctx context.Context, entry models.ActivityLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if rc := q.redis(); rc != nil {
		err := q.cache(ctx, rc, entry)
		if err == nil {
			return nil
		}
		logrus.WithError(err).Warn("Failed to cache activity log, saving directly to database")
	}
	if q.db == nil || q.db.DB == nil {
		return errors.New("database not initialised")
	}
	return q.db.Conn(ctx).Create(&entry).Error
}

func (q *ActivityLogQueue) cache(ctx context.Context, rc *redis.Client, entry models.ActivityLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal activity log: %w", err)
	}
	key := "log:" + uuid.NewString()

	pipe := rc.TxPipeline()
	pipe.Set(ctx, key, data, activityKeyTTL)
	pipe.ZAdd(ctx, activityQueueKey, &redis.Z{Score: float64(entry.CreatedAt.Unix()), Member: key})
	_, err = pipe.Exec(ctx)
	return err
}

// Pending returns the number of queued entries not yet flushed.
func (q *ActivityLogQueue) Pending(ctx context.Context) (int64, error) {
	rc := q.redis()
	if rc == nil {
		return 0, nil
	}
	return rc.ZCard(ctx, activityQueueKey).Result()
}

// Flush moves queued entries created at or before cutoff into the database.
func (q *ActivityLogQueue) Flush(ctx context.Context, cutoff time.Time) (int, error) {
	rc := q.redis()
	if rc == nil {
		return 0, nil
	}

	keys, err := rc.ZRangeByScore(ctx, activityQueueKey, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(cutoff.Unix(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("read activity queue: %w", err)
	}

	var processed, failed int
	for _, key := range keys {
		raw, err := rc.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			// Expired before it was flushed; drop the dangling queue member.
			rc.ZRem(ctx, activityQueueKey, key)
			continue
		}
		if err != nil {
			logrus.WithError(err).WithField("key", key).Error("Failed to read cached activity log")
			failed++
			continue
		}

		var entry models.ActivityLog
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			logrus.WithError(err).WithField("key", key).Error("Failed to decode cached activity log")
			rc.ZRem(ctx, activityQueueKey, key)
			failed++
			continue
		}
		entry.ID = 0
		if err := q.db.Conn(ctx).Create(&entry).Error; err != nil {
			logrus.WithError(err).WithField("key", key).Error("Failed to save activity log")
			failed++
			continue
		}

		pipe := rc.Pipeline()
		pipe.Del(ctx, key)
		pipe.ZRem(ctx, activityQueueKey, key)
		if _, err := pipe.Exec(ctx); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Failed to remove flushed activity log from cache")
		}
		processed++
	}

	logrus.WithFields(logrus.Fields{"flushed": processed, "errors": failed}).Info("Flushed cached activity logs")
	return processed, nil
}

// ActivityFilter narrows the activity log listing.
type ActivityFilter struct {
	Resource string
	Action   string
	Username string
	Page     int
	Limit    int
}

// List returns one page of persisted activity logs, newest first.
func (q *ActivityLogQueue) List(ctx context.Context, f ActivityFilter) ([]models.ActivityLog, int64, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	tx := q.db.Conn(ctx).Model(&models.ActivityLog{})
	if f.Resource != "" {
		tx = tx.Where("resource = ?", f.Resource)
	}
	if f.Action != "" {
		tx = tx.Where("action = ?", f.Action)
	}
	if f.Username != "" {
		tx = tx.Where("username ILIKE ?", "%"+f.Username+"%")
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []models.ActivityLog
	err := tx.Order("created_at DESC").Limit(f.Limit).Offset((f.Page - 1) * f.Limit).Find(&logs).Error
	return logs, total, err
}
