// Package prometheus exports simulation metrics through
// github.com/prometheus/client_golang.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/rocketsim/controller"
	"github.com/hupe1980/rocketsim/event"
	"github.com/hupe1980/rocketsim/resource"
	"github.com/hupe1980/rocketsim/subsystem"
)

const namespace = "rocketsim"

// Collector implements controller.MetricsObserver and subsystem.MetricsObserver.
type Collector struct {
	events        *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
	drainLatency  prometheus.Histogram
	drainedEvents prometheus.Histogram
	queueDepth    prometheus.Gauge
	outcomes      *prometheus.CounterVec
	consumes      *prometheus.CounterVec
	produces      *prometheus.CounterVec
	overflow      *prometheus.CounterVec
}

var (
	_ controller.MetricsObserver = (*Collector)(nil)
	_ subsystem.MetricsObserver  = (*Collector)(nil)
)

// New creates a collector and registers it with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Events drained by the controller",
		}, []string{"resource", "status", "priority"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Subsystem status changes made by the controller",
		}, []string{"subsystem", "to"}),
		drainLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "drain_duration_seconds",
			Help:      "Time spent handling one drained batch",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		drainedEvents: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "drain_batch_size",
			Help:      "Events handled per non-empty drain",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Event queue length at the start of the last cycle",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Terminal run outcomes",
		}, []string{"outcome"}),
		consumes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consume_attempts_total",
			Help:      "Consume attempts by subsystem workers",
		}, []string{"subsystem", "status"}),
		produces: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "produce_attempts_total",
			Help:      "Deposit attempts by subsystem workers",
		}, []string{"subsystem", "status"}),
		overflow: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overflow_units_total",
			Help:      "Produced units that did not fit and were kept back",
		}, []string{"subsystem"}),
	}

	for _, m := range []prometheus.Collector{
		c.events, c.statusChanges, c.drainLatency, c.drainedEvents,
		c.queueDepth, c.outcomes, c.consumes, c.produces, c.overflow,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// OnEvent implements controller.MetricsObserver.
func (c *Collector) OnEvent(e event.Event) {
	c.events.WithLabelValues(e.Resource.Name(), e.Status.String(), e.Priority.String()).Inc()
}

// OnStatusChange implements controller.MetricsObserver.
func (c *Collector) OnStatusChange(name string, _, to subsystem.Status) {
	c.statusChanges.WithLabelValues(name, to.String()).Inc()
}

// OnDrain implements controller.MetricsObserver.
func (c *Collector) OnDrain(events int, elapsed time.Duration) {
	c.drainLatency.Observe(elapsed.Seconds())
	c.drainedEvents.Observe(float64(events))
}

// OnQueueDepth implements controller.MetricsObserver.
func (c *Collector) OnQueueDepth(depth int) {
	c.queueDepth.Set(float64(depth))
}

// OnOutcome implements controller.MetricsObserver.
func (c *Collector) OnOutcome(o controller.Outcome) {
	c.outcomes.WithLabelValues(o.String()).Inc()
}

// OnConsume implements subsystem.MetricsObserver.
func (c *Collector) OnConsume(name string, st resource.Status) {
	c.consumes.WithLabelValues(name, st.String()).Inc()
}

// OnProduce implements subsystem.MetricsObserver.
func (c *Collector) OnProduce(name string, st resource.Status, leftover int) {
	c.produces.WithLabelValues(name, st.String()).Inc()
	if leftover > 0 {
		c.overflow.WithLabelValues(name).Add(float64(leftover))
	}
}
