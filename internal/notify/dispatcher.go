// Package notify delivers one rendered reminder to one user, retrying
// failed sends with exponential backoff.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hray3182/datekeeper/internal/format"
	"github.com/hray3182/datekeeper/internal/lookahead"
	"github.com/hray3182/datekeeper/internal/logging"
	"github.com/hray3182/datekeeper/internal/mailer"
	"github.com/hray3182/datekeeper/internal/metrics"
	"github.com/hray3182/datekeeper/internal/models"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second

	ReasonNoRecipient = "No email or events"
	UnknownError      = "Unknown error"
)

type State string

const (
	StatePending           State = "pending"
	StateRetrying          State = "retrying"
	StateSucceeded         State = "succeeded"
	StateFailedPermanently State = "failed_permanently"
)

// Result is the outcome of one dispatch. Attempt is set on success,
// TotalAttempts on failure. Reason marks a dispatch that never reached the
// transport.
type Result struct {
	Success       bool   `json:"success"`
	MessageID     string `json:"messageId,omitempty"`
	Attempt       int    `json:"attempt,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Error         string `json:"error,omitempty"`
	TotalAttempts int    `json:"totalAttempts,omitempty"`
	State         State  `json:"state"`
}

// Request is one (user, window) reminder.
type Request struct {
	User   *models.User
	Window lookahead.Window
	Day    time.Time
	Events []*models.Event
}

type Dispatcher struct {
	transport   mailer.Transport
	renderer    *format.Renderer
	logger      *slog.Logger
	metrics     *metrics.Metrics
	maxAttempts int
	baseDelay   time.Duration
	newTimer    func() backoff.Timer
}

type Option func(*Dispatcher)

func WithMaxAttempts(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxAttempts = n
		}
	}
}

func WithBaseDelay(delay time.Duration) Option {
	return func(d *Dispatcher) {
		if delay > 0 {
			d.baseDelay = delay
		}
	}
}

// WithTimer replaces the timer used to wait between attempts. Tests use it
// to observe backoff delays without sleeping.
func WithTimer(newTimer func() backoff.Timer) Option {
	return func(d *Dispatcher) { d.newTimer = newTimer }
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func New(transport mailer.Transport, renderer *format.Renderer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		transport:   transport,
		renderer:    renderer,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.OrDiscard(d.logger)
	if d.renderer == nil {
		d.renderer = format.NewRenderer("")
	}
	return d
}

// MaxAttempts returns the configured attempt cap.
func (d *Dispatcher) MaxAttempts() int {
	return d.maxAttempts
}

// Deliver renders req into one message and sends it, retrying up to the
// attempt cap. Waits between attempts are 1x, 2x, 4x... the base delay.
func (d *Dispatcher) Deliver(ctx context.Context, req Request) Result {
	if !req.User.HasEmail() || len(req.Events) == 0 {
		return Result{Success: false, Reason: ErrNoRecipient.Error(), State: StateFailedPermanently}
	}

	rendered, err := d.renderer.Render(format.Reminder{
		RecipientName: req.User.DisplayName,
		WindowPhrase:  req.Window.Display,
		Day:           req.Day,
		Events:        req.Events,
	})
	if err != nil {
		return Result{Success: false, Error: errorMessage(err), State: StateFailedPermanently}
	}
	msg := mailer.Message{
		To:      req.User.EmailAddress(),
		ToName:  req.User.DisplayName,
		Subject: rendered.Subject,
		Text:    rendered.Text,
		HTML:    rendered.HTML,
	}

	state := StatePending
	attempt := 0
	var receipt mailer.Receipt

	send := func() error {
		attempt++
		r, err := d.send(ctx, msg)
		if err != nil {
			return err
		}
		receipt = r
		return nil
	}
	onRetry := func(err error, wait time.Duration) {
		state = StateRetrying
		d.metrics.IncRetry()
		d.logger.Warn("reminder delivery failed, retrying",
			"user_id", req.User.UserID,
			"window", req.Window.Tag,
			"attempt", attempt,
			"wait", wait,
			"rejected", mailer.IsRejected(err),
			"err", err,
		)
	}

	err = backoff.RetryNotifyWithTimer(send, d.policy(ctx), onRetry, d.timer())
	if err == nil {
		state = StateSucceeded
		d.logger.Info("reminder delivered",
			"user_id", req.User.UserID,
			"window", req.Window.Tag,
			"events", len(req.Events),
			"attempt", attempt,
			"message_id", receipt.MessageID,
		)
		return Result{Success: true, MessageID: receipt.MessageID, Attempt: attempt, State: state}
	}

	state = StateFailedPermanently
	d.logger.Error("reminder delivery failed permanently",
		"user_id", req.User.UserID,
		"window", req.Window.Tag,
		"attempts", attempt,
		"err", err,
	)
	return Result{Success: false, Error: errorMessage(err), TotalAttempts: attempt, State: state}
}

func (d *Dispatcher) policy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(d.maxAttempts-1)), ctx)
}

func (d *Dispatcher) timer() backoff.Timer {
	if d.newTimer == nil {
		return nil
	}
	return d.newTimer()
}

var (
	// ErrNoRecipient marks a request that had nobody or nothing to send.
	ErrNoRecipient = errors.New(ReasonNoRecipient)

	errUnknown = errors.New(UnknownError)
)

// send calls the transport, turning a panic into an error so one bad send
// cannot take down the run.
func (d *Dispatcher) send(ctx context.Context, msg mailer.Message) (r mailer.Receipt, err error) {
	defer func() {
		if p := recover(); p != nil {
			if perr, ok := p.(error); ok {
				err = fmt.Errorf("transport panic: %w", perr)
				return
			}
			err = errUnknown
		}
	}()
	return d.transport.Send(ctx, msg)
}

func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return UnknownError
	}
	return err.Error()
}
