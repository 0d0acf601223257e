// Package scheduler fires the daily batch synchronization at local midnight.
package scheduler

import (
	"context"
	"time"

	"golang.org/x/exp/slog"

	"finlink/internal/domain/sync"
)

// Runner runs one batch synchronization pass.
type Runner interface {
	RunAll(ctx context.Context) sync.Report
}

type Scheduler struct {
	runner  Runner
	log     *slog.Logger
	now     func() time.Time
	nextRun func(now time.Time) time.Time
}

func New(runner Runner, log *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:  runner,
		log:     log.With("component", "scheduler"),
		now:     time.Now,
		nextRun: nextMidnight,
	}
}

// Run blocks until ctx is cancelled, firing one batch run per scheduled
// tick. A run in progress is not interrupted mid-account; it completes and
// reports before the loop observes cancellation.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := s.nextRun(s.now())
		timer := time.NewTimer(next.Sub(s.now()))
		s.log.Info("next scheduled sync", "at", next)

		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("scheduler stopped")
			return
		case <-timer.C:
			report := s.runner.RunAll(ctx)
			s.log.Info("scheduled sync finished",
				"run_id", report.RunID,
				"total", report.Total,
				"succeeded", report.Succeeded,
				"failed", report.Failed,
				"skipped", report.Skipped,
			)
		}
	}
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}
