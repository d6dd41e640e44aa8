package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rocketsim/controller"
	"github.com/hupe1980/rocketsim/event"
	"github.com/hupe1980/rocketsim/resource"
	"github.com/hupe1980/rocketsim/subsystem"
)

type named string

func (n named) Name() string { return string(n) }

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	energy, err := resource.New("Energy", 2, 50)
	require.NoError(t, err)

	e := event.New(named("Life Support"), energy, resource.StatusInsufficient, event.PriorityHigh, 2)
	c.OnEvent(e)
	c.OnEvent(e)
	c.OnStatusChange("Generator", subsystem.StatusStandard, subsystem.StatusFast)
	c.OnDrain(2, time.Millisecond)
	c.OnQueueDepth(4)
	c.OnOutcome(controller.OutcomeCompleted)
	c.OnConsume("Crew", resource.StatusOK)
	c.OnProduce("Propulsion", resource.StatusCapacity, 15)
	c.OnProduce("Propulsion", resource.StatusOK, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.events.WithLabelValues("Energy", "INSUFFICIENT", "HIGH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.statusChanges.WithLabelValues("Generator", "FAST")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.queueDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.outcomes.WithLabelValues("COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.consumes.WithLabelValues("Crew", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.produces.WithLabelValues("Propulsion", "CAPACITY")))
	assert.Equal(t, 15.0, testutil.ToFloat64(c.overflow.WithLabelValues("Propulsion")))

	n, err := testutil.GatherAndCount(reg, "rocketsim_drain_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCollectorDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}
