package subsystem

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/hupe1980/rocketsim/event"
	"github.com/hupe1980/rocketsim/resource"
)

// DefaultBackoff is the pause after a failed consume or an overflowing produce.
const DefaultBackoff = 20 * time.Millisecond

// Publisher receives the events a worker raises.
type Publisher interface {
	Push(e event.Event)
}

// MetricsObserver defines the interface for observing worker activity.
type MetricsObserver interface {
	// OnConsume is called after every consume attempt.
	OnConsume(subsystem string, status resource.Status)

	// OnProduce is called after every deposit attempt.
	OnProduce(subsystem string, status resource.Status, leftover int)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnConsume(string, resource.Status)      {}
func (NoopMetricsObserver) OnProduce(string, resource.Status, int) {}

// WorkerConfig configures a Worker.
type WorkerConfig struct {
	// Backoff is the pause after a failed attempt. Zero uses DefaultBackoff.
	Backoff time.Duration

	// Logger receives debug output. Nil discards.
	Logger *slog.Logger

	// Metrics observes attempts. Nil uses NoopMetricsObserver.
	Metrics MetricsObserver
}

// Worker drives a single subsystem.
//
// Each iteration first refills the stored buffer by consuming input and
// simulating work, then tries to deposit the buffer into the produced
// resource. Failures raise an event and back off; they never stop the
// worker. Only StatusTerminate or context cancellation does.
type Worker struct {
	sys     *Subsystem
	pub     Publisher
	backoff time.Duration
	logger  *slog.Logger
	metrics MetricsObserver
}

// NewWorker creates a worker for s that reports to pub.
func NewWorker(s *Subsystem, pub Publisher, cfg WorkerConfig) *Worker {
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NoopMetricsObserver{}
	}
	return &Worker{
		sys:     s,
		pub:     pub,
		backoff: cfg.Backoff,
		logger:  cfg.Logger.With("subsystem", s.Name()),
		metrics: cfg.Metrics,
	}
}

// Subsystem returns the driven subsystem.
func (w *Worker) Subsystem() *Subsystem { return w.sys }

// Run loops until the subsystem is terminated or ctx is done.
// It returns nil on termination and ctx.Err() on cancellation.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Debug("worker started")
	defer w.logger.Debug("worker stopped")

	for w.sys.Status() != StatusTerminate {
		if err := w.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Step executes one loop iteration.
// It returns a non-nil error only if ctx is done during a pause.
func (w *Worker) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if w.sys.Status() == StatusDisabled {
		return sleep(ctx, w.backoff)
	}

	if w.sys.stored == 0 {
		if err := w.convert(ctx); err != nil {
			return err
		}
	}

	if w.sys.stored > 0 {
		if err := w.store(ctx); err != nil {
			return err
		}
	}
	return nil
}

// convert consumes input, simulates processing and fills the buffer.
func (w *Worker) convert(ctx context.Context) error {
	in := w.sys.consumed

	st := in.Resource.TryConsume(in.Amount)
	if !in.IsNone() {
		w.metrics.OnConsume(w.sys.name, st)
	}

	if st != resource.StatusOK {
		w.raise(in.Resource, st, event.PriorityHigh)
		return sleep(ctx, w.backoff)
	}

	if err := sleep(ctx, w.sys.Status().Scale(w.sys.processingTime)); err != nil {
		return err
	}

	if !w.sys.produced.IsNone() {
		w.sys.stored += w.sys.produced.Amount
	}
	return nil
}

// store deposits the buffer and keeps whatever did not fit.
func (w *Worker) store(ctx context.Context) error {
	out := w.sys.produced.Resource

	leftover, st := out.TryProduce(w.sys.stored)
	w.metrics.OnProduce(w.sys.name, st, leftover)
	w.sys.stored = leftover

	if st != resource.StatusOK {
		w.raise(out, st, event.PriorityLow)
		return sleep(ctx, w.backoff)
	}
	return nil
}

func (w *Worker) raise(r *resource.Resource, st resource.Status, prio event.Priority) {
	e := event.New(w.sys, r, st, prio, r.Amount())
	w.logger.Debug("raising event",
		"resource", r.Name(),
		"status", st.String(),
		"priority", prio.String(),
		"amount", e.Amount,
	)
	w.pub.Push(e)
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
