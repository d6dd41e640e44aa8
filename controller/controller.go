package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/time/rate"

	"github.com/hupe1980/rocketsim/event"
	"github.com/hupe1980/rocketsim/resource"
	"github.com/hupe1980/rocketsim/subsystem"
)

const (
	// DefaultPollInterval is the pause between drain cycles.
	DefaultPollInterval = 5 * time.Millisecond

	// DefaultVitalResource names the resource whose depletion is a critical failure.
	DefaultVitalResource = "Oxygen"

	// DefaultGoalResource names the resource whose saturation completes the run.
	DefaultGoalResource = "Distance"
)

var (
	// ErrNilQueue is returned when no event queue is supplied.
	ErrNilQueue = errors.New("controller: queue must not be nil")

	// ErrUnknownSubsystemResource is returned when a subsystem references a
	// resource the controller does not manage.
	ErrUnknownSubsystemResource = errors.New("controller: subsystem references unmanaged resource")
)

// Queue is the event source drained by the controller.
type Queue interface {
	// Drain removes and returns all queued events in priority order.
	Drain() []event.Event
	// Len returns the number of queued events.
	Len() int
	// Ready is signalled after a push.
	Ready() <-chan struct{}
}

// Renderer displays simulation state.
type Renderer interface {
	// Render draws a full state snapshot.
	Render(s Snapshot)
	// RenderEvent reports a single drained event.
	RenderEvent(e event.Event)
}

// Snapshot is a point-in-time view of all resources and subsystems.
// It is taken without locks and may mix values from different instants.
type Snapshot struct {
	Resources  []resource.Snapshot  `json:"resources"`
	Subsystems []subsystem.Snapshot `json:"subsystems"`
}

// Config configures a Controller.
type Config struct {
	// PollInterval is the pause between drain cycles.
	// If 0, defaults to DefaultPollInterval.
	PollInterval time.Duration

	// VitalResource names the resource whose EMPTY event is a critical failure.
	// If empty, defaults to DefaultVitalResource.
	VitalResource string

	// GoalResource names the resource whose CAPACITY event completes the run.
	// If empty, defaults to DefaultGoalResource.
	GoalResource string

	// Renderer draws state each cycle. Nil disables rendering.
	Renderer Renderer

	// RenderInterval limits how often Render is called.
	// If 0, state is rendered every cycle.
	RenderInterval time.Duration

	// Logger receives controller decisions. Nil discards.
	Logger *slog.Logger

	// Metrics observes controller activity. Nil uses NoopMetricsObserver.
	Metrics MetricsObserver
}

// Controller drains the event queue and retunes subsystems.
type Controller struct {
	queue      Queue
	resources  []*resource.Resource
	subsystems []*subsystem.Subsystem

	// producers maps each resource to the indexes of subsystems depositing into it.
	producers map[*resource.Resource]*roaring.Bitmap

	poll     time.Duration
	vital    string
	goal     string
	renderer Renderer
	limiter  *rate.Limiter // nil renders every cycle
	logger   *slog.Logger
	metrics  MetricsObserver

	running   atomic.Bool
	outcome   atomic.Int32
	processed atomic.Int64
}

// New creates a controller for the given resources and subsystems.
// Every resource a subsystem consumes or produces must be in resources.
func New(q Queue, resources []*resource.Resource, subsystems []*subsystem.Subsystem, cfg Config) (*Controller, error) {
	if q == nil {
		return nil, ErrNilQueue
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.VitalResource == "" {
		cfg.VitalResource = DefaultVitalResource
	}
	if cfg.GoalResource == "" {
		cfg.GoalResource = DefaultGoalResource
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NoopMetricsObserver{}
	}

	c := &Controller{
		queue:      q,
		resources:  resources,
		subsystems: subsystems,
		producers:  make(map[*resource.Resource]*roaring.Bitmap, len(resources)),
		poll:       cfg.PollInterval,
		vital:      cfg.VitalResource,
		goal:       cfg.GoalResource,
		renderer:   cfg.Renderer,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}

	for _, r := range resources {
		c.producers[r] = roaring.New()
	}

	for i, s := range subsystems {
		if in := s.Consumed().Resource; in != nil {
			if _, ok := c.producers[in]; !ok {
				return nil, fmt.Errorf("%w: %s consumes %s", ErrUnknownSubsystemResource, s.Name(), in.Name())
			}
		}
		out := s.Produced().Resource
		if out == nil {
			continue
		}
		bm, ok := c.producers[out]
		if !ok {
			return nil, fmt.Errorf("%w: %s produces %s", ErrUnknownSubsystemResource, s.Name(), out.Name())
		}
		bm.Add(uint32(i))
	}

	if cfg.RenderInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.RenderInterval), 1)
	}

	c.running.Store(true)
	return c, nil
}

// Running reports whether the run has not reached a terminal outcome.
func (c *Controller) Running() bool {
	return c.running.Load()
}

// Outcome returns the current outcome.
func (c *Controller) Outcome() Outcome {
	return Outcome(c.outcome.Load())
}

// Processed returns the number of events handled so far.
func (c *Controller) Processed() int64 {
	return c.processed.Load()
}

// Producers returns the subsystems depositing into r.
func (c *Controller) Producers(r *resource.Resource) []*subsystem.Subsystem {
	bm, ok := c.producers[r]
	if !ok {
		return nil
	}
	ids := bm.ToArray()
	out := make([]*subsystem.Subsystem, 0, len(ids))
	for _, i := range ids {
		out = append(out, c.subsystems[i])
	}
	return out
}

// Run drives drain cycles until a terminal outcome is reached or ctx is done.
// Cancelling ctx terminates every subsystem with OutcomeCancelled.
// A final snapshot is rendered before returning.
func (c *Controller) Run(ctx context.Context) Outcome {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	c.logger.Debug("controller started",
		"poll", c.poll,
		"vital", c.vital,
		"goal", c.goal,
		"subsystems", len(c.subsystems),
	)

	for c.Running() {
		select {
		case <-ctx.Done():
			c.finish(OutcomeCancelled, "context done", "cause", context.Cause(ctx))
		case <-ticker.C:
		case <-c.queue.Ready():
		}
		c.Cycle()
	}

	c.render(true)
	return c.Outcome()
}

// Stop terminates every subsystem with OutcomeCancelled unless the run
// already ended.
func (c *Controller) Stop() {
	c.finish(OutcomeCancelled, "stopped")
}

// Cycle renders state, then drains the queue and handles every event in order.
func (c *Controller) Cycle() {
	c.render(false)

	start := time.Now()
	c.metrics.OnQueueDepth(c.queue.Len())

	events := c.queue.Drain()
	for _, e := range events {
		c.Handle(e)
	}

	if len(events) > 0 {
		c.metrics.OnDrain(len(events), time.Since(start))
	}
}

// Handle applies the reaction rules to a single event.
//
// After a terminal outcome, events are still counted and observed but no
// longer change any status.
func (c *Controller) Handle(e event.Event) {
	c.processed.Add(1)
	c.metrics.OnEvent(e)
	if c.renderer != nil {
		c.renderer.RenderEvent(e)
	}

	c.logger.Debug("handling event", "event", e.String(), "priority", e.Priority.String())

	if e.Resource == nil {
		return
	}
	name := e.Resource.Name()

	switch {
	case e.Status == resource.StatusEmpty && name == c.vital:
		c.finish(OutcomeCriticalFailure, "vital resource depleted", "resource", name, "reporter", e.SubsystemName())
	case e.Status == resource.StatusCapacity && name == c.goal:
		c.finish(OutcomeCompleted, "goal resource reached", "resource", name, "reporter", e.SubsystemName())
	case e.Status.NeedsMore():
		c.retune(e.Resource, subsystem.StatusFast)
	case e.Status == resource.StatusCapacity:
		c.retune(e.Resource, subsystem.StatusSlow)
	}
}

// Snapshot returns the current state of all resources and subsystems.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Resources:  make([]resource.Snapshot, 0, len(c.resources)),
		Subsystems: make([]subsystem.Snapshot, 0, len(c.subsystems)),
	}
	for _, r := range c.resources {
		s.Resources = append(s.Resources, r.Snapshot())
	}
	for _, sys := range c.subsystems {
		s.Subsystems = append(s.Subsystems, sys.Snapshot())
	}
	return s
}

func (c *Controller) retune(r *resource.Resource, to subsystem.Status) {
	if !c.Running() {
		return
	}
	bm, ok := c.producers[r]
	if !ok {
		return
	}
	for _, i := range bm.ToArray() {
		c.setStatus(c.subsystems[i], to)
	}
}

// finish records the first terminal outcome and terminates every subsystem.
func (c *Controller) finish(o Outcome, msg string, args ...any) {
	if !c.outcome.CompareAndSwap(int32(OutcomeRunning), int32(o)) {
		return
	}

	for _, s := range c.subsystems {
		c.setStatus(s, subsystem.StatusTerminate)
	}
	c.running.Store(false)

	c.logger.Info(msg, append([]any{"outcome", o.String()}, args...)...)
	c.metrics.OnOutcome(o)
}

func (c *Controller) setStatus(s *subsystem.Subsystem, to subsystem.Status) {
	from, changed := s.SetStatus(to)
	if !changed {
		return
	}
	c.logger.Debug("subsystem status changed",
		"subsystem", s.Name(),
		"from", from.String(),
		"to", to.String(),
	)
	c.metrics.OnStatusChange(s.Name(), from, to)
}

func (c *Controller) render(force bool) {
	if c.renderer == nil {
		return
	}
	if !force && c.limiter != nil && !c.limiter.Allow() {
		return
	}
	c.renderer.Render(c.Snapshot())
}
