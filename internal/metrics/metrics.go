package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "datekeeper"

// Metrics exposes Prometheus collectors for reminder runs and deliveries.
// All methods are safe on a nil receiver.
type Metrics struct {
	notificationsSent *prometheus.CounterVec
	dispatchFailures  *prometheus.CounterVec
	dispatchRetries   prometheus.Counter
	runs              *prometheus.CounterVec
	runDuration       prometheus.Histogram
}

// MustNewMetrics registers the collectors with reg, panicking on a
// registration conflict. Tests should pass a fresh prometheus.NewRegistry().
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		notificationsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reminders",
				Name:      "notifications_sent_total",
				Help:      "Events notified through successfully delivered emails.",
			},
			[]string{"window"},
		),
		dispatchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reminders",
				Name:      "dispatch_failures_total",
				Help:      "User/window dispatches that failed permanently.",
			},
			[]string{"window"},
		),
		dispatchRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reminders",
				Name:      "dispatch_retries_total",
				Help:      "Delivery attempts that were retried after a failure.",
			},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reminders",
				Name:      "runs_total",
				Help:      "Reminder runs by outcome.",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "reminders",
				Name:      "run_duration_seconds",
				Help:      "Wall time of a complete reminder run.",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
			},
		),
	}

	reg.MustRegister(m.notificationsSent, m.dispatchFailures, m.dispatchRetries, m.runs, m.runDuration)
	return m
}

func (m *Metrics) AddSent(window string, events int) {
	if m == nil {
		return
	}
	m.notificationsSent.WithLabelValues(window).Add(float64(events))
}

func (m *Metrics) IncFailure(window string) {
	if m == nil {
		return
	}
	m.dispatchFailures.WithLabelValues(window).Inc()
}

func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.dispatchRetries.Inc()
}

// ObserveRun records one run with status "ok", "error" or "skipped".
func (m *Metrics) ObserveRun(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	if status != "skipped" {
		m.runDuration.Observe(d.Seconds())
	}
}
