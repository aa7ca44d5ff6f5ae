package services

import (
	"context"
	"fmt"
	"time"

	"collegeoffice_go/config"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ScheduleManager runs the periodic maintenance jobs.
type ScheduleManager struct {
	cron    *cron.Cron
	cfg     *config.Config
	logs    *ActivityLogQueue
	archive *LogArchiveService
	exams   *ExamService
	jobs    map[string]cron.EntryID
}

func NewScheduleManager(cfg *config.Config, logs *ActivityLogQueue, archive *LogArchiveService, exams *ExamService) *ScheduleManager {
	return &ScheduleManager{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		cfg:     cfg,
		logs:    logs,
		archive: archive,
		exams:   exams,
		jobs:    make(map[string]cron.EntryID),
	}
}

func (sm *ScheduleManager) add(name, spec string, timeout time.Duration, job func(ctx context.Context) error) error {
	if spec == "" || spec == "off" {
		logrus.WithField("job", name).Info("Scheduled job disabled")
		return nil
	}
	id, err := sm.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := time.Now()
		entry := logrus.WithField("job", name)
		if err := job(ctx); err != nil {
			entry.WithError(err).Warn("Scheduled job failed")
			return
		}
		entry.WithField("duration", time.Since(start).String()).Debug("Scheduled job finished")
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	sm.jobs[name] = id
	return nil
}

// Start registers every configured job and starts the cron runner.
func (sm *ScheduleManager) Start() error {
	if sm.logs != nil {
		err := sm.add("flush_activity_logs", sm.cfg.LogFlushCron, time.Minute, func(ctx context.Context) error {
			_, err := sm.logs.Flush(ctx, time.Now())
			return err
		})
		if err != nil {
			return err
		}
	}
	if sm.archive != nil {
		err := sm.add("archive_activity_logs", sm.cfg.LogArchiveCron, 10*time.Minute, func(ctx context.Context) error {
			_, err := sm.archive.ArchiveOldLogs(ctx, sm.cfg.LogArchiveDays, time.Now())
			return err
		})
		if err != nil {
			return err
		}
	}
	if sm.exams != nil {
		err := sm.add("complete_finished_exams", sm.cfg.ExamStatusCron, time.Minute, func(ctx context.Context) error {
			n, err := sm.exams.MarkFinished(ctx, time.Now())
			if n > 0 {
				logrus.WithField("exams", n).Info("Marked finished exams as completed")
			}
			return err
		})
		if err != nil {
			return err
		}
	}

	sm.cron.Start()
	logrus.WithField("jobs", len(sm.jobs)).Info("Schedule manager started")
	return nil
}

// Stop waits for running jobs up to ctx's deadline.
func (sm *ScheduleManager) Stop(ctx context.Context) {
	done := sm.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		logrus.Warn("Timed out waiting for scheduled jobs to finish")
	}
}

// Jobs lists registered job names with their next run time.
func (sm *ScheduleManager) Jobs() map[string]time.Time {
	out := make(map[string]time.Time, len(sm.jobs))
	for name, id := range sm.jobs {
		out[name] = sm.cron.Entry(id).Next
	}
	return out
}
