package subsystem

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rocketsim/event"
	"github.com/hupe1980/rocketsim/resource"
)

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Push(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

type countingMetrics struct {
	consumes map[resource.Status]int
	produces map[resource.Status]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		consumes: make(map[resource.Status]int),
		produces: make(map[resource.Status]int),
	}
}

func (m *countingMetrics) OnConsume(_ string, st resource.Status) { m.consumes[st]++ }

func (m *countingMetrics) OnProduce(_ string, st resource.Status, _ int) { m.produces[st]++ }

func newWorker(t *testing.T, s *Subsystem) (*Worker, *recorder) {
	t.Helper()
	rec := &recorder{}
	return NewWorker(s, rec, WorkerConfig{Backoff: time.Millisecond}), rec
}

func TestWorkerStep(t *testing.T) {
	ctx := context.Background()

	t.Run("ConvertAndStore", func(t *testing.T) {
		fuel := mustResource(t, "Fuel", 10, 10)
		dist := mustResource(t, "Distance", 0, 100)
		s, err := New("Propulsion", resource.Amount{Resource: fuel, Amount: 5}, resource.Amount{Resource: dist, Amount: 25}, 0)
		require.NoError(t, err)

		w, rec := newWorker(t, s)
		require.NoError(t, w.Step(ctx))

		assert.Equal(t, 5, fuel.Amount())
		assert.Equal(t, 25, dist.Amount())
		assert.Equal(t, 0, s.Stored())
		assert.Empty(t, rec.Events())
	})

	t.Run("Empty", func(t *testing.T) {
		fuel := mustResource(t, "Fuel", 0, 10)
		dist := mustResource(t, "Distance", 0, 100)
		s, err := New("Propulsion", resource.Amount{Resource: fuel, Amount: 5}, resource.Amount{Resource: dist, Amount: 25}, 0)
		require.NoError(t, err)

		w, rec := newWorker(t, s)
		require.NoError(t, w.Step(ctx))

		events := rec.Events()
		require.Len(t, events, 1)
		assert.Equal(t, resource.StatusEmpty, events[0].Status)
		assert.Equal(t, event.PriorityHigh, events[0].Priority)
		assert.Same(t, fuel, events[0].Resource)
		assert.Equal(t, "Propulsion", events[0].SubsystemName())
		assert.Equal(t, 0, events[0].Amount)
		assert.Equal(t, 0, dist.Amount())
	})

	t.Run("Insufficient", func(t *testing.T) {
		fuel := mustResource(t, "Fuel", 3, 10)
		s, err := New("Generator", resource.Amount{Resource: fuel, Amount: 5}, resource.None, 0)
		require.NoError(t, err)

		w, rec := newWorker(t, s)
		require.NoError(t, w.Step(ctx))

		events := rec.Events()
		require.Len(t, events, 1)
		assert.Equal(t, resource.StatusInsufficient, events[0].Status)
		assert.Equal(t, event.PriorityHigh, events[0].Priority)
		assert.Equal(t, 3, events[0].Amount)
		assert.Equal(t, 3, fuel.Amount())
	})

	t.Run("CapacityKeepsLeftover", func(t *testing.T) {
		fuel := mustResource(t, "Fuel", 10, 10)
		dist := mustResource(t, "Distance", 90, 100)
		s, err := New("Propulsion", resource.Amount{Resource: fuel, Amount: 5}, resource.Amount{Resource: dist, Amount: 25}, 0)
		require.NoError(t, err)

		w, rec := newWorker(t, s)
		require.NoError(t, w.Step(ctx))

		assert.Equal(t, 100, dist.Amount())
		assert.Equal(t, 15, s.Stored())

		events := rec.Events()
		require.Len(t, events, 1)
		assert.Equal(t, resource.StatusCapacity, events[0].Status)
		assert.Equal(t, event.PriorityLow, events[0].Priority)
		assert.Same(t, dist, events[0].Resource)
		assert.Equal(t, 100, events[0].Amount)

		// The buffer is retried before any more input is consumed.
		require.NoError(t, w.Step(ctx))
		assert.Equal(t, 5, fuel.Amount())
		assert.Equal(t, 15, s.Stored())
		assert.Len(t, rec.Events(), 2)
	})

	t.Run("PureSink", func(t *testing.T) {
		oxygen := mustResource(t, "Oxygen", 5, 50)
		s, err := New("Crew", resource.Amount{Resource: oxygen, Amount: 1}, resource.None, 0)
		require.NoError(t, err)

		w, rec := newWorker(t, s)
		for range 3 {
			require.NoError(t, w.Step(ctx))
		}

		assert.Equal(t, 2, oxygen.Amount())
		assert.Equal(t, 0, s.Stored())
		assert.Empty(t, rec.Events())
	})

	t.Run("PureSource", func(t *testing.T) {
		dist := mustResource(t, "Distance", 0, 50)
		s, err := New("Engine", resource.None, resource.Amount{Resource: dist, Amount: 20}, 0)
		require.NoError(t, err)

		w, _ := newWorker(t, s)
		require.NoError(t, w.Step(ctx))
		require.NoError(t, w.Step(ctx))
		assert.Equal(t, 40, dist.Amount())
	})

	t.Run("DisabledIdles", func(t *testing.T) {
		fuel := mustResource(t, "Fuel", 10, 10)
		s, err := New("Generator", resource.Amount{Resource: fuel, Amount: 5}, resource.None, 0)
		require.NoError(t, err)
		s.SetStatus(StatusDisabled)

		w, rec := newWorker(t, s)
		require.NoError(t, w.Step(ctx))

		assert.Equal(t, 10, fuel.Amount())
		assert.Empty(t, rec.Events())
	})
}

func TestWorkerMetrics(t *testing.T) {
	fuel := mustResource(t, "Fuel", 5, 10)
	dist := mustResource(t, "Distance", 90, 100)
	s, err := New("Propulsion", resource.Amount{Resource: fuel, Amount: 5}, resource.Amount{Resource: dist, Amount: 25}, 0)
	require.NoError(t, err)

	m := newCountingMetrics()
	w := NewWorker(s, &recorder{}, WorkerConfig{Backoff: time.Millisecond, Metrics: m})

	require.NoError(t, w.Step(context.Background())) // consume OK, produce CAPACITY
	require.NoError(t, w.Step(context.Background())) // produce CAPACITY again

	s.stored = 0
	require.NoError(t, w.Step(context.Background())) // consume EMPTY

	assert.Equal(t, 1, m.consumes[resource.StatusOK])
	assert.Equal(t, 1, m.consumes[resource.StatusEmpty])
	assert.Equal(t, 2, m.produces[resource.StatusCapacity])
}

func TestWorkerRun(t *testing.T) {
	t.Run("TerminatedBeforeStart", func(t *testing.T) {
		s, err := New("Crew", resource.None, resource.None, 0)
		require.NoError(t, err)
		s.SetStatus(StatusTerminate)

		w, _ := newWorker(t, s)
		assert.NoError(t, w.Run(context.Background()))
	})

	t.Run("StopsOnTerminate", func(t *testing.T) {
		oxygen := mustResource(t, "Oxygen", 1000, 1000)
		s, err := New("Crew", resource.Amount{Resource: oxygen, Amount: 1}, resource.None, time.Millisecond)
		require.NoError(t, err)

		w, _ := newWorker(t, s)
		done := make(chan error, 1)
		go func() { done <- w.Run(context.Background()) }()

		require.Eventually(t, func() bool { return oxygen.Amount() < 1000 }, time.Second, time.Millisecond)
		s.SetStatus(StatusTerminate)

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("worker did not stop after terminate")
		}
	})

	t.Run("StopsOnCancel", func(t *testing.T) {
		fuel := mustResource(t, "Fuel", 0, 10)
		s, err := New("Generator", resource.Amount{Resource: fuel, Amount: 5}, resource.None, 0)
		require.NoError(t, err)

		rec := &recorder{}
		w := NewWorker(s, rec, WorkerConfig{Backoff: time.Hour})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()

		require.Eventually(t, func() bool { return len(rec.Events()) == 1 }, time.Second, time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.True(t, errors.Is(err, context.Canceled))
		case <-time.After(time.Second):
			t.Fatal("worker did not stop after cancel")
		}
	})
}
