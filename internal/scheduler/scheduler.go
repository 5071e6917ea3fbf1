// Package scheduler runs the periodic outbox jobs: resubmitting queued dates,
// pulling remote statuses and purging rows that ran out of retries.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const cleanupSchedule = "@hourly"

// Jobs is the service side of the scheduled work.
type Jobs interface {
	RetryPending(ctx context.Context) (int, error)
	Sync(ctx context.Context) (int, error)
}

// Cleaner purges stale outbox rows.
type Cleaner interface {
	CleanupStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type Scheduler struct {
	cron     *cron.Cron
	schedule string
	maxAge   time.Duration
	jobs     Jobs
	cleaner  Cleaner
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(schedule string, maxAge time.Duration, jobs Jobs, cleaner Cleaner, logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		schedule: schedule,
		maxAge:   maxAge,
		jobs:     jobs,
		cleaner:  cleaner,
		logger:   logger,
	}
}

// Start registers the jobs and starts the cron loop. Jobs run with a context
// derived from ctx that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunRetry(s.ctx) }); err != nil {
		s.cancel()
		return fmt.Errorf("error scheduling retry job %q: %w", s.schedule, err)
	}
	if _, err := s.cron.AddFunc(cleanupSchedule, func() { s.RunCleanup(s.ctx) }); err != nil {
		s.cancel()
		return fmt.Errorf("error scheduling cleanup job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.String("retry_schedule", s.schedule),
		zap.Duration("max_age", s.maxAge),
	)
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunRetry pulls remote statuses, then resubmits queued dates.
func (s *Scheduler) RunRetry(ctx context.Context) {
	if n, err := s.jobs.Sync(ctx); err != nil {
		s.logger.Warn("Sync failed", zap.Error(err))
	} else if n > 0 {
		s.logger.Debug("Synced remote events", zap.Int("count", n))
	}

	n, err := s.jobs.RetryPending(ctx)
	if err != nil {
		s.logger.Error("Retry of pending submissions failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Pending submissions sent", zap.Int("count", n))
	}
}

// RunCleanup removes outbox rows older than the configured max age that ran
// out of retries.
func (s *Scheduler) RunCleanup(ctx context.Context) {
	if _, err := s.cleaner.CleanupStale(ctx, s.maxAge); err != nil {
		s.logger.Error("Cleanup of stale submissions failed", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
