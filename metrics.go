package rocketsim

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/rocketsim/controller"
	"github.com/hupe1980/rocketsim/event"
	"github.com/hupe1980/rocketsim/resource"
	"github.com/hupe1980/rocketsim/subsystem"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// see package metrics/prometheus for a ready-made adapter.
//
// Controller callbacks run on the controller goroutine. Worker callbacks
// run concurrently on every subsystem goroutine.
type MetricsCollector interface {
	controller.MetricsObserver
	subsystem.MetricsObserver
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct {
	controller.NoopMetricsObserver
}

// OnConsume implements MetricsCollector.
func (NoopMetricsCollector) OnConsume(string, resource.Status) {}

// OnProduce implements MetricsCollector.
func (NoopMetricsCollector) OnProduce(string, resource.Status, int) {}

var (
	_ MetricsCollector = NoopMetricsCollector{}
	_ MetricsCollector = (*BasicMetricsCollector)(nil)
)

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	Events          atomic.Int64
	HighEvents      atomic.Int64
	StatusChanges   atomic.Int64
	Drains          atomic.Int64
	DrainTotalNanos atomic.Int64
	MaxQueueDepth   atomic.Int64
	Consumes        atomic.Int64
	ConsumeFailures atomic.Int64
	Produces        atomic.Int64
	Overflows       atomic.Int64
	outcome         atomic.Int32
}

// OnEvent implements MetricsCollector.
func (b *BasicMetricsCollector) OnEvent(e event.Event) {
	b.Events.Add(1)
	if e.Priority == event.PriorityHigh {
		b.HighEvents.Add(1)
	}
}

// OnStatusChange implements MetricsCollector.
func (b *BasicMetricsCollector) OnStatusChange(string, subsystem.Status, subsystem.Status) {
	b.StatusChanges.Add(1)
}

// OnDrain implements MetricsCollector.
func (b *BasicMetricsCollector) OnDrain(_ int, elapsed time.Duration) {
	b.Drains.Add(1)
	b.DrainTotalNanos.Add(elapsed.Nanoseconds())
}

// OnQueueDepth implements MetricsCollector.
func (b *BasicMetricsCollector) OnQueueDepth(depth int) {
	d := int64(depth)
	for {
		cur := b.MaxQueueDepth.Load()
		if d <= cur || b.MaxQueueDepth.CompareAndSwap(cur, d) {
			return
		}
	}
}

// OnOutcome implements MetricsCollector.
func (b *BasicMetricsCollector) OnOutcome(o controller.Outcome) {
	b.outcome.Store(int32(o))
}

// OnConsume implements MetricsCollector.
func (b *BasicMetricsCollector) OnConsume(_ string, st resource.Status) {
	b.Consumes.Add(1)
	if st != resource.StatusOK {
		b.ConsumeFailures.Add(1)
	}
}

// OnProduce implements MetricsCollector.
func (b *BasicMetricsCollector) OnProduce(_ string, st resource.Status, _ int) {
	b.Produces.Add(1)
	if st == resource.StatusCapacity {
		b.Overflows.Add(1)
	}
}

// BasicMetricsStats is a point-in-time copy of BasicMetricsCollector.
type BasicMetricsStats struct {
	Events          int64
	HighEvents      int64
	StatusChanges   int64
	Drains          int64
	DrainAvgNanos   int64
	MaxQueueDepth   int64
	Consumes        int64
	ConsumeFailures int64
	Produces        int64
	Overflows       int64
	Outcome         controller.Outcome
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		Events:          b.Events.Load(),
		HighEvents:      b.HighEvents.Load(),
		StatusChanges:   b.StatusChanges.Load(),
		Drains:          b.Drains.Load(),
		DrainAvgNanos:   b.getAvgDrainNanos(),
		MaxQueueDepth:   b.MaxQueueDepth.Load(),
		Consumes:        b.Consumes.Load(),
		ConsumeFailures: b.ConsumeFailures.Load(),
		Produces:        b.Produces.Load(),
		Overflows:       b.Overflows.Load(),
		Outcome:         controller.Outcome(b.outcome.Load()),
	}
}

func (b *BasicMetricsCollector) getAvgDrainNanos() int64 {
	count := b.Drains.Load()
	if count == 0 {
		return 0
	}
	return b.DrainTotalNanos.Load() / count
}
