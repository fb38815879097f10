package usecase

import (
	"context"
	"log/slog"
	"time"

	"ArticlesHarmonizer/internal/ports"
)

// Scheduler wires the interval driver with the pipeline use case.
type Scheduler struct {
	driver    ports.Scheduler
	pipeline  *Pipeline
	ingestors []ports.Ingestor
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, log *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, logger: log}
}

// WithIngest stages fresh rows from each ingestor before every scheduled run.
func (s *Scheduler) WithIngest(ingestors ...ports.Ingestor) *Scheduler {
	s.ingestors = append(s.ingestors, ingestors...)
	return s
}

// Start registers the pipeline with the provided scheduler. Ingest and run errors are
// logged, the schedule keeps going.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) { s.tick(ctx, trigger) })
}

func (s *Scheduler) tick(ctx context.Context, trigger time.Time) {
	for _, ing := range s.ingestors {
		n, err := ing.Load(ctx)
		if err != nil {
			s.log(slog.LevelWarn, "scheduled ingest failed", "trigger", trigger, "staged", n, "error", err)
			continue
		}
		s.log(slog.LevelInfo, "scheduled ingest finished", "trigger", trigger, "staged", n)
	}

	if _, err := s.pipeline.Run(ctx); err != nil {
		s.log(slog.LevelError, "scheduled run failed", "trigger", trigger, "error", err)
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

func (s *Scheduler) log(level slog.Level, msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Log(context.Background(), level, msg, args...)
	}
}
