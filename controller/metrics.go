package controller

import (
	"time"

	"github.com/hupe1980/rocketsim/event"
	"github.com/hupe1980/rocketsim/subsystem"
)

// MetricsObserver defines the interface for observing controller activity.
type MetricsObserver interface {
	// OnEvent is called for every drained event, before it is handled.
	OnEvent(e event.Event)

	// OnStatusChange is called when the controller changes a subsystem status.
	OnStatusChange(subsystem string, from, to subsystem.Status)

	// OnDrain is called after each drain cycle.
	OnDrain(events int, elapsed time.Duration)

	// OnQueueDepth is called with the queue length observed at the start of a cycle.
	OnQueueDepth(depth int)

	// OnOutcome is called once, when the run reaches a terminal outcome.
	OnOutcome(o Outcome)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnEvent(event.Event)                                       {}
func (NoopMetricsObserver) OnStatusChange(string, subsystem.Status, subsystem.Status) {}
func (NoopMetricsObserver) OnDrain(int, time.Duration)                                {}
func (NoopMetricsObserver) OnQueueDepth(int)                                          {}
func (NoopMetricsObserver) OnOutcome(Outcome)                                         {}

// MultiObserver fans out to several observers in order.
type MultiObserver []MetricsObserver

func (m MultiObserver) OnEvent(e event.Event) {
	for _, o := range m {
		o.OnEvent(e)
	}
}

func (m MultiObserver) OnStatusChange(name string, from, to subsystem.Status) {
	for _, o := range m {
		o.OnStatusChange(name, from, to)
	}
}

func (m MultiObserver) OnDrain(events int, elapsed time.Duration) {
	for _, o := range m {
		o.OnDrain(events, elapsed)
	}
}

func (m MultiObserver) OnQueueDepth(depth int) {
	for _, o := range m {
		o.OnQueueDepth(depth)
	}
}

func (m MultiObserver) OnOutcome(out Outcome) {
	for _, o := range m {
		o.OnOutcome(out)
	}
}
