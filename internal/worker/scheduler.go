// Package worker contains the long-running background jobs: the AMQP to
// spreadsheet mirror and the scheduled recurring transaction processor.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the job at the top of every hour.
const DefaultSchedule = "@hourly"

// Job is one scheduled run. The returned count is only logged.
type Job func(ctx context.Context) (int, error)

// Scheduler runs a Job on a cron schedule. Runs never overlap.
type Scheduler struct {
	name     string
	schedule string
	job      Job

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func NewScheduler(name, schedule string, job Job) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return &Scheduler{name: name, schedule: schedule, job: job}, nil
}

// Start runs the job once immediately and then on every tick. Returns an
// error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("%s scheduler is already running", s.name)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule %s: %w", s.name, err)
	}

	s.RunOnce(ctx)
	c.Start()
	s.cron = c
	s.running = true

	slog.InfoContext(ctx, "Scheduler started", "job", s.name, "schedule", s.schedule)
	return nil
}

// RunOnce runs the job synchronously and logs the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := s.job(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Scheduled job failed", "job", s.name, "error", err)
		return
	}
	slog.InfoContext(ctx, "Scheduled job complete", "job", s.name, "processed", n)
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	c := s.cron
	s.running = false
	s.cron = nil
	s.mu.Unlock()

	select {
	case <-c.Stop().Done():
		slog.InfoContext(ctx, "Scheduler stopped gracefully", "job", s.name)
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Scheduler stop timed out", "job", s.name)
		return ctx.Err()
	}
}

// IsRunning reports whether Start has been called without a matching Stop.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
