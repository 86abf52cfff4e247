// Package pipeline runs one reminder batch: every lookahead window, every
// due user, one dispatch each.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hray3182/datekeeper/internal/logging"
	"github.com/hray3182/datekeeper/internal/lookahead"
	"github.com/hray3182/datekeeper/internal/metrics"
	"github.com/hray3182/datekeeper/internal/models"
	"github.com/hray3182/datekeeper/internal/notify"
)

var ErrRunInProgress = errors.New("reminder run already in progress")

// DueSource finds users with events stored on a day inside the interval
// that carry the given reminder tag.
type DueSource interface {
	DueUsers(ctx context.Context, in lookahead.Interval, tag lookahead.Tag) ([]*models.DueUser, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, req notify.Request) notify.Result
}

type Orchestrator struct {
	source      DueSource
	deliverer   Deliverer
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
	metrics     *metrics.Metrics

	running atomic.Bool
}

type Option func(*Orchestrator)

// WithConcurrency caps how many users of one window are dispatched at once.
// The default of 1 dispatches sequentially.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func New(source DueSource, deliverer Deliverer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:      source,
		deliverer:   deliverer,
		concurrency: 1,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.OrDiscard(o.logger)
	return o
}

// Run processes all five windows in table order. A failed query aborts the
// remaining windows and is returned without a summary; delivery failures are
// only counted.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	if !o.running.CompareAndSwap(false, true) {
		o.metrics.ObserveRun("skipped", 0)
		return nil, ErrRunInProgress
	}
	defer o.running.Store(false)

	start := o.now()
	sum := &Summary{RunID: uuid.New(), StartedAt: start}
	logger := o.logger.With("run_id", sum.RunID.String())
	logger.Info("reminder run started")

	for _, w := range lookahead.All() {
		if err := o.runWindow(ctx, logger, sum, w, start); err != nil {
			o.metrics.ObserveRun("error", o.now().Sub(start))
			logger.Error("reminder run aborted", "window", w.Tag, "err", err)
			return nil, err
		}
	}

	sum.FinishedAt = o.now()
	o.metrics.ObserveRun("ok", sum.FinishedAt.Sub(start))
	logger.Info("reminder run finished",
		"sent", sum.TotalSent,
		"failures", sum.TotalFailures,
		"duration", sum.FinishedAt.Sub(start),
	)
	return sum, nil
}

func (o *Orchestrator) runWindow(ctx context.Context, logger *slog.Logger, sum *Summary, w lookahead.Window, now time.Time) error {
	interval := w.Interval(now)

	users, err := o.source.DueUsers(ctx, interval, w.Tag)
	if err != nil {
		return fmt.Errorf("query due users for %s: %w", w.Tag, err)
	}
	logger.Debug("window queried", "window", w.Tag, "start", interval.Start, "users", len(users))

	// One slot per user, so dispatches never share counters.
	results := make([]notify.Result, len(users))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, u := range users {
		g.Go(func() error {
			results[i] = o.deliverer.Deliver(ctx, request(u, w, interval.Start))
			return nil
		})
	}
	_ = g.Wait()

	sum.ProcessedWindows = append(sum.ProcessedWindows, w.Tag)
	for i, res := range results {
		if res.Success {
			n := eventCount(users[i])
			sum.TotalSent += n
			o.metrics.AddSent(string(w.Tag), n)
			continue
		}
		sum.TotalFailures++
		sum.FailureDetails = append(sum.FailureDetails, failureDetail(users[i], res))
		o.metrics.IncFailure(string(w.Tag))
	}
	return nil
}

func request(u *models.DueUser, w lookahead.Window, day time.Time) notify.Request {
	req := notify.Request{Window: w, Day: day}
	if u != nil {
		req.User = &u.User
		req.Events = u.Events
	}
	return req
}

func eventCount(u *models.DueUser) int {
	if u == nil {
		return 0
	}
	return len(u.Events)
}

func failureDetail(u *models.DueUser, res notify.Result) FailureDetail {
	d := FailureDetail{Error: res.Error, Attempts: res.TotalAttempts}
	if d.Error == "" {
		d.Error = res.Reason
	}
	if d.Error == "" {
		d.Error = notify.UnknownError
	}
	if u != nil {
		d.User = u.EmailAddress()
		if d.User == "" {
			d.User = u.UserID
		}
	}
	return d
}
