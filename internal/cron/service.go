package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/partnerz-backend/pkg/logger"
	"github.com/angelmondragon/partnerz-backend/pkg/metrics"
)

const defaultInterval = 5 * time.Minute

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service runs registered jobs on a fixed cadence while holding Lock.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run starts the loop until the context is canceled. The first cycle runs
// after one interval; call RunOnce to run immediately.
func (s *Service) Run(ctx context.Context) error {
	ctx = s.logg.WithField(ctx, "interval", s.interval.String())
	s.logg.Info(ctx, "scheduler started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				s.logg.Error(ctx, "scheduled run failed", err)
			}
		}
	}
}

// RunOnce runs every registered job one time.
func (s *Service) RunOnce(ctx context.Context) error {
	return s.runCycle(ctx)
}

// RunJob runs the named job once under the scheduler lock.
func (s *Service) RunJob(ctx context.Context, name string) error {
	job, ok := s.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("cron job %q not registered", name)
	}
	return s.withLock(ctx, func(ctx context.Context) error {
		if !s.runJob(ctx, job) {
			return fmt.Errorf("job %q failed", name)
		}
		return nil
	})
}

func (s *Service) runCycle(ctx context.Context) error {
	return s.withLock(ctx, func(ctx context.Context) error {
		var failed int
		for _, job := range s.registry.Jobs() {
			if !s.runJob(ctx, job) {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d job(s) failed", failed)
		}
		return nil
	})
}

// withLock skips fn without error when another process holds the lock.
func (s *Service) withLock(ctx context.Context, fn func(context.Context) error) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "lock held elsewhere; skipping cycle")
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "failed to release scheduler lock", relErr)
		}
	}()
	return fn(ctx)
}

func (s *Service) runJob(ctx context.Context, job Job) bool {
	jobCtx := s.logg.WithFields(ctx, map[string]any{"job": job.Name(), "event": "scheduler.job"})
	s.logg.Debug(jobCtx, "job start")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.observeDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.recordFailure(job.Name())
		return false
	}
	s.logg.Info(jobCtx, "job completed")
	s.recordSuccess(job.Name())
	return true
}

func (s *Service) observeDuration(job string, duration time.Duration) {
	s.metrics.ObserveDuration(job, duration)
}

func (s *Service) recordSuccess(job string) {
	s.metrics.IncSuccess(job)
}

func (s *Service) recordFailure(job string) {
	s.metrics.IncFailure(job)
}
