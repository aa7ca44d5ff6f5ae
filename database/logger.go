package database

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger routes gorm's SQL log through logrus.
type GormLogger struct {
	level         logger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(level logger.LogLevel, slow time.Duration) *GormLogger {
	return &GormLogger{level: level, slowThreshold: slow}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		logrus.WithContext(ctx).Infof(msg, args...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		logrus.WithContext(ctx).Warnf(msg, args...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		logrus.WithContext(ctx).Errorf(msg, args...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	entry := logrus.WithContext(ctx).WithFields(logrus.Fields{
		"duration_ms": elapsed.Milliseconds(),
		"rows":        rows,
		"sql":         sql,
	})
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		entry.WithError(err).Error("SQL error")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		entry.Warn("Slow SQL")
	case l.level >= logger.Info:
		entry.Debug("SQL")
	}
}
