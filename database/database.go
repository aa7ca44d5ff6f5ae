package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"collegeoffice_go/config"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database bundles the connection handles shared by controllers and services.
// Redis is nil when the server could not reach it.
type Database struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// New wraps an existing gorm handle, used by tests and tools.
func New(db *gorm.DB, rc *redis.Client) *Database {
	return &Database{DB: db, Redis: rc}
}

// Connect opens the PostgreSQL pool and, optionally, Redis.
func Connect(ctx context.Context, cfg *config.Config) (*Database, error) {
	db, err := connectDatabase(cfg)
	if err != nil {
		return nil, err
	}
	return &Database{DB: db, Redis: connectRedis(ctx, cfg)}, nil
}

// connectDatabase initializes the database connection
func connectDatabase(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.AppEnv == "development" {
		level = logger.Info
	}

	var (
		db      *gorm.DB
		lastErr error
	)
	// Retry with quadratic backoff for a database that is still starting.
	for attempt := 1; attempt <= 8; attempt++ {
		db, lastErr = gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
			Logger: NewGormLogger(level, 200*time.Millisecond),
		})
		if lastErr == nil {
			break
		}
		logrus.WithError(lastErr).WithField("attempt", attempt).Warn("Database connect attempt failed")
		time.Sleep(time.Duration(attempt*attempt) * 300 * time.Millisecond)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("connect to database after retries: %w", lastErr)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(55 * time.Minute)

	logrus.Info("Database connected successfully")
	return db, nil
}

// connectRedis returns nil when Redis is unreachable so callers fall back to the database.
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis connection failed; continuing without Redis")
		_ = client.Close()
		return nil
	}

	logrus.Info("Redis connected successfully")
	return client
}

// WithTx runs fn inside one transaction on a single pooled connection. The
// transaction commits when fn returns nil and rolls back on error or panic.
func (d *Database) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if d == nil || d.DB == nil {
		return errors.New("database not initialised")
	}
	return d.DB.WithContext(ctx).Transaction(fn)
}

// Conn returns a handle bound to ctx.
func (d *Database) Conn(ctx context.Context) *gorm.DB {
	return d.DB.WithContext(ctx)
}

// Close closes the database connection
func (d *Database) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			logrus.WithError(err).Warn("Error closing Redis client")
		}
	}
	if d.DB == nil {
		return
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		logrus.WithError(err).Warn("Error getting database instance")
		return
	}
	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Warn("Error closing database connection")
		return
	}
	logrus.Info("Database connection closed")
}
