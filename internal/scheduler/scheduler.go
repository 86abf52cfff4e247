// Package scheduler triggers reminder runs on a cron schedule and on demand.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hray3182/datekeeper/internal/logging"
	"github.com/hray3182/datekeeper/internal/pipeline"
)

type Runner interface {
	Run(ctx context.Context) (*pipeline.Summary, error)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

type Scheduler struct {
	runner   Runner
	expr     string
	schedule cron.Schedule
	location *time.Location
	logger   *slog.Logger
	cron     *cron.Cron
	notifyCh chan struct{}
}

// New validates the five-field cron expression expr and evaluates it in loc.
func New(runner Runner, expr string, loc *time.Location, logger *slog.Logger) (*Scheduler, error) {
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", expr, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	logger = logging.OrDiscard(logger).With("component", "scheduler")

	cl := cronLogger{logger: logger}
	return &Scheduler{
		runner:   runner,
		expr:     expr,
		schedule: schedule,
		location: loc,
		logger:   logger,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		notifyCh: make(chan struct{}, 1),
	}, nil
}

// Notify triggers an immediate run. Non-blocking if a run is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Next reports when the schedule fires after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.location))
}

// Start runs until ctx is cancelled. A scheduled run still in progress at
// that point is waited for.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Schedule(s.schedule, cron.FuncJob(func() { s.run(ctx, "schedule") }))
	s.cron.Start()
	s.logger.Info("scheduler started",
		"schedule", s.expr,
		"timezone", s.location.String(),
		"next_run", s.Next(time.Now()),
	)

	for {
		select {
		case <-ctx.Done():
			<-s.cron.Stop().Done()
			s.logger.Info("scheduler stopped")
			return
		case <-s.notifyCh:
			s.run(ctx, "notify")
		}
	}
}

func (s *Scheduler) run(ctx context.Context, trigger string) {
	logger := s.logger.With("trigger", trigger)

	sum, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		logger.Warn("reminder run skipped, previous run still active")
	case err != nil:
		logger.Error("reminder run failed", "err", err)
	default:
		logger.Info("reminder run completed",
			"run_id", sum.RunID.String(),
			"sent", sum.TotalSent,
			"failures", sum.TotalFailures,
		)
	}
}

// cronLogger routes robfig/cron's logging into slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}
