package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/amishk599/ibwatch/internal/pipeline"
)

// Pass is one crawl pass, normally a *pipeline.Orchestrator.
type Pass interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

// Scheduler owns the daemon loop: one immediate pass, then one pass per
// cron activation. Passes never overlap; an activation that fires while a
// pass is still running is folded into the next one.
type Scheduler struct {
	pass     Pass
	spec     string
	schedule cron.Schedule
	now      func() time.Time
	logger   *slog.Logger
}

// NewScheduler parses spec (standard 5-field cron or a descriptor such as
// "@every 6h") and returns a scheduler for pass.
func NewScheduler(pass Pass, spec string, logger *slog.Logger) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", spec, err)
	}
	return &Scheduler{
		pass:     pass,
		spec:     spec,
		schedule: schedule,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// Run starts the loop. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "schedule", s.spec)

	// Run one immediate pass.
	s.runPass(ctx)

	for {
		next := s.schedule.Next(s.now())
		s.logger.Info("next crawl scheduled", "at", next.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(time.Until(next)):
			s.runPass(ctx)
		}
	}
}

// runPass executes one pass. A failed pass is logged and the loop keeps going.
func (s *Scheduler) runPass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report, err := s.pass.Run(ctx)
	if err != nil {
		attrs := []any{"error", err}
		if report != nil {
			attrs = append(attrs, "run_id", report.RunID, "failed", report.Failed())
		}
		s.logger.Error("crawl pass failed", attrs...)
	}
}
