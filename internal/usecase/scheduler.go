package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"ASongADay/internal/ports"
)

// Scheduler feeds daily triggers from a driver into the pipeline. A trigger
// that fires while a run is still in progress is skipped.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
	running  atomic.Bool
}

// NewScheduler binds the driver to the pipeline.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the driver. A failed run leaves the
// persisted credential in place for the next trigger.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.trigger(ctx, trigger)
	})
}

func (s *Scheduler) trigger(ctx context.Context, at time.Time) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous run still in progress, trigger skipped", "trigger", at)
		return
	}
	defer s.running.Store(false)

	report, err := s.pipeline.Run(ctx, at)
	if err != nil {
		s.logger.Warn("scheduled run failed", "run_id", report.RunID, "stage", report.Stage, "trigger", at)
		return
	}
	s.logger.Info("scheduled run finished", "run_id", report.RunID, "stage", report.Stage,
		"post_id", report.PostID, "trigger", at)
}

// Stop tears down the driver and waits for an in-flight run.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
