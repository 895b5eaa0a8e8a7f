// Package jobs runs the periodic review work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron"

	"alcyxob/coach-core/internal/config"
	"alcyxob/coach-core/internal/logger"
	"alcyxob/coach-core/internal/service"
)

// ReviewRunner is the part of the review service the scheduler drives.
type ReviewRunner interface {
	RunWeeklyBatch(ctx context.Context) (*service.BatchResult, error)
	CatchUpSweep(ctx context.Context) (*service.SweepResult, error)
}

type Scheduler struct {
	cron    *cron.Cron
	runner  ReviewRunner
	locker  Locker
	log     *logger.Logger
	timeout time.Duration

	weeklyRunning  atomic.Bool
	catchUpRunning atomic.Bool
}

// NewScheduler registers the weekly batch and the catch-up sweep. An empty schedule leaves
// that job out. Schedules have six fields, seconds first, and are evaluated in UTC.
// A nil locker runs every tick locally.
func NewScheduler(runner ReviewRunner, locker Locker, cfg config.ReviewConfig, log *logger.Logger) (*Scheduler, error) {
	if locker == nil {
		locker = LocalLocker{}
	}
	s := &Scheduler{
		cron:    cron.NewWithLocation(time.UTC),
		runner:  runner,
		locker:  locker,
		log:     log,
		timeout: 6 * time.Hour,
	}
	if err := s.register("weekly_review", cfg.WeeklySchedule, s.runWeekly); err != nil {
		return nil, err
	}
	if err := s.register("catch_up", cfg.CatchUpSchedule, s.runCatchUp); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) register(name, spec string, job func()) error {
	if spec == "" {
		s.log.Info("scheduled job disabled", "job", name)
		return nil
	}
	if _, err := cron.Parse(spec); err != nil {
		return fmt.Errorf("invalid %s schedule %q: %w", name, spec, err)
	}
	if err := s.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("failed to register %s: %w", name, err)
	}
	s.log.Info("scheduled job registered", "job", name, "schedule", spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule. Runs already in progress finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runWeekly() {
	if !s.weeklyRunning.CompareAndSwap(false, true) {
		s.log.Warn("weekly review still running, skipping this tick")
		return
	}
	defer s.weeklyRunning.Store(false)

	s.withLease("weekly_review", func(ctx context.Context) {
		if _, err := s.runner.RunWeeklyBatch(ctx); err != nil {
			s.log.Error("weekly review batch failed", "error", err)
		}
	})
}

func (s *Scheduler) runCatchUp() {
	if !s.catchUpRunning.CompareAndSwap(false, true) {
		s.log.Warn("catch-up sweep still running, skipping this tick")
		return
	}
	defer s.catchUpRunning.Store(false)

	s.withLease("catch_up", func(ctx context.Context) {
		if _, err := s.runner.CatchUpSweep(ctx); err != nil {
			s.log.Error("catch-up sweep failed", "error", err)
		}
	})
}

// withLease runs job only when this replica holds the job's lease for the tick.
func (s *Scheduler) withLease(name string, job func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	release, ok, err := s.locker.TryLock(ctx, name, s.timeout)
	if err != nil {
		s.log.Error("job lease unavailable, skipping this tick", "job", name, "error", err)
		return
	}
	if !ok {
		s.log.Info("job lease held by another replica", "job", name)
		return
	}
	defer release()
	job(ctx)
}
