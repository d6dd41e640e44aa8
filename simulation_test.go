package rocketsim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rocketsim/blobstore"
	"github.com/hupe1980/rocketsim/controller"
	"github.com/hupe1980/rocketsim/event"
	"github.com/hupe1980/rocketsim/journal"
	"github.com/hupe1980/rocketsim/scenario"
	"github.com/hupe1980/rocketsim/subsystem"
)

const sprintYAML = `
name: sprint
resources:
  - {name: Oxygen, amount: 10, max_capacity: 10}
  - {name: Distance, amount: 0, max_capacity: 50}
subsystems:
  - name: Engine
    produces: {resource: Distance, amount: 25}
    processing_time: 1ms
`

const suffocateYAML = `
name: suffocate
resources:
  - {name: Oxygen, amount: 3, max_capacity: 10}
  - {name: Distance, amount: 0, max_capacity: 5000}
subsystems:
  - name: Crew
    consumes: {resource: Oxygen, amount: 1}
    processing_time: 1ms
`

const idleYAML = `
name: idle
resources:
  - {name: Oxygen, amount: 10, max_capacity: 10}
subsystems:
  - name: Sleeper
    consumes: {resource: Oxygen, amount: 1}
    processing_time: 1h
`

func mustParse(t *testing.T, doc string) *scenario.Scenario {
	t.Helper()
	scn, err := scenario.Parse([]byte(doc))
	require.NoError(t, err)
	return scn
}

func runWithTimeout(t *testing.T, sim *Simulation) (*Result, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return sim.Run(ctx)
}

func TestNew(t *testing.T) {
	t.Run("NilScenario", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, ErrNilScenario)
	})

	t.Run("InvalidScenario", func(t *testing.T) {
		_, err := New(&scenario.Scenario{Name: "empty"})
		assert.ErrorIs(t, err, scenario.ErrNoSubsystems)
	})

	t.Run("InvalidJournalCompression", func(t *testing.T) {
		_, err := New(scenario.Rocket(), WithJournal(blobstore.NewMemoryStore(),
			journal.WithCompression("brotli"),
		))
		assert.ErrorIs(t, err, journal.ErrUnknownCompression)
	})

	t.Run("Rocket", func(t *testing.T) {
		sim, err := New(scenario.Rocket())
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, sim.RunID())
		assert.False(t, sim.Running())
		assert.Equal(t, controller.OutcomeRunning, sim.Outcome())
		assert.Nil(t, sim.Journal())

		require.NotNil(t, sim.Resource("Fuel"))
		assert.Equal(t, 1000, sim.Resource("Fuel").Amount())
		require.NotNil(t, sim.Subsystem("Crew"))
		assert.Equal(t, subsystem.StatusStandard, sim.Subsystem("Crew").Status())
		assert.Nil(t, sim.Resource("Water"))

		snap := sim.Snapshot()
		assert.Len(t, snap.Resources, 4)
		assert.Len(t, snap.Subsystems, 4)
	})

	t.Run("RunID", func(t *testing.T) {
		id := uuid.MustParse("7b1e6c1a-3f1d-4c55-9a57-0d8a5f6e2b10")
		sim, err := New(scenario.Rocket(), WithRunID(id))
		require.NoError(t, err)
		assert.Equal(t, id, sim.RunID())
	})
}

func TestRunCompleted(t *testing.T) {
	sim, err := New(mustParse(t, sprintYAML), WithPollInterval(time.Millisecond))
	require.NoError(t, err)

	res, err := runWithTimeout(t, sim)
	require.NoError(t, err)

	assert.Equal(t, controller.OutcomeCompleted, res.Outcome)
	assert.Equal(t, sim.RunID(), res.RunID)
	assert.Positive(t, res.Events)
	assert.Positive(t, res.Duration)
	assert.Empty(t, res.JournalName)

	assert.Equal(t, 50, sim.Resource("Distance").Amount())
	assert.Equal(t, subsystem.StatusTerminate, sim.Subsystem("Engine").Status())
	assert.False(t, sim.Running())

	require.Len(t, res.Snapshot.Subsystems, 1)
	assert.Equal(t, subsystem.StatusTerminate, res.Snapshot.Subsystems[0].Status)
}

func TestRunCriticalFailure(t *testing.T) {
	sim, err := New(mustParse(t, suffocateYAML), WithPollInterval(time.Millisecond))
	require.NoError(t, err)

	res, err := runWithTimeout(t, sim)
	require.NoError(t, err)

	assert.Equal(t, controller.OutcomeCriticalFailure, res.Outcome)
	assert.Equal(t, 0, sim.Resource("Oxygen").Amount())
	assert.Equal(t, subsystem.StatusTerminate, sim.Subsystem("Crew").Status())
}

func TestRunVitalOverride(t *testing.T) {
	// With Fuel as the vital resource, running out of Oxygen is an ordinary
	// shortage and the run only ends when the context does.
	sim, err := New(mustParse(t, suffocateYAML),
		WithPollInterval(time.Millisecond),
		WithBackoff(time.Millisecond),
		WithVitalResource("Fuel"),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res, err := sim.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, controller.OutcomeCancelled, res.Outcome)
	assert.Equal(t, 0, sim.Resource("Oxygen").Amount())
}

func TestRunCancelled(t *testing.T) {
	sim, err := New(mustParse(t, idleYAML))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	res, err := sim.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, controller.OutcomeCancelled, res.Outcome)
	assert.Equal(t, subsystem.StatusTerminate, sim.Subsystem("Sleeper").Status())
}

func TestStop(t *testing.T) {
	sim, err := New(mustParse(t, idleYAML), WithBackoff(time.Millisecond))
	require.NoError(t, err)

	done := make(chan *Result, 1)
	go func() {
		res, _ := runWithTimeout(t, sim)
		done <- res
	}()

	require.Eventually(t, sim.Running, time.Second, time.Millisecond)
	sim.Stop()

	// The worker is inside its hour-long processing pause and must be
	// interrupted once the controller stops.
	select {
	case res := <-done:
		assert.Equal(t, controller.OutcomeCancelled, res.Outcome)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestRunTwice(t *testing.T) {
	sim, err := New(mustParse(t, sprintYAML), WithPollInterval(time.Millisecond))
	require.NoError(t, err)

	_, err = runWithTimeout(t, sim)
	require.NoError(t, err)

	_, err = runWithTimeout(t, sim)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestRunJournal(t *testing.T) {
	for _, comp := range []journal.Compression{journal.CompressionNone, journal.CompressionZstd, journal.CompressionLZ4} {
		t.Run(string(comp), func(t *testing.T) {
			store := blobstore.NewMemoryStore()
			sim, err := New(mustParse(t, sprintYAML),
				WithPollInterval(time.Millisecond),
				WithJournal(store, journal.WithCompression(comp)),
			)
			require.NoError(t, err)

			res, err := runWithTimeout(t, sim)
			require.NoError(t, err)
			assert.Equal(t, sim.Journal().Name(), res.JournalName)

			names, err := journal.List(context.Background(), store)
			require.NoError(t, err)
			assert.Equal(t, []string{res.JournalName}, names)

			records, err := journal.Read(context.Background(), store, res.JournalName, nil)
			require.NoError(t, err)
			require.NotEmpty(t, records)

			var outcomes, events int
			for i, r := range records {
				assert.Equal(t, sim.RunID().String(), r.RunID)
				assert.Equal(t, uint64(i+1), r.Seq)
				switch r.Kind {
				case journal.KindOutcome:
					outcomes++
					assert.Equal(t, controller.OutcomeCompleted.String(), r.Outcome)
				case journal.KindEvent:
					events++
				}
			}
			assert.Equal(t, 1, outcomes)
			assert.Equal(t, int(res.Events), events)
		})
	}
}

type failingStore struct {
	blobstore.Store
}

func (failingStore) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestRunJournalFlushError(t *testing.T) {
	sim, err := New(mustParse(t, sprintYAML),
		WithPollInterval(time.Millisecond),
		WithJournal(failingStore{}),
	)
	require.NoError(t, err)

	res, err := runWithTimeout(t, sim)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NotNil(t, res)
	assert.Equal(t, controller.OutcomeCompleted, res.Outcome)
}

func TestRunMetrics(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	sim, err := New(mustParse(t, sprintYAML),
		WithPollInterval(time.Millisecond),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)

	res, err := runWithTimeout(t, sim)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, controller.OutcomeCompleted, stats.Outcome)
	assert.Equal(t, res.Events, stats.Events)
	assert.Zero(t, stats.Consumes)
	assert.GreaterOrEqual(t, stats.Produces, int64(3))
	assert.GreaterOrEqual(t, stats.Overflows, int64(1))
	assert.Positive(t, stats.Drains)
	// Engine goes to TERMINATE.
	assert.GreaterOrEqual(t, stats.StatusChanges, int64(1))
}

type panicRenderer struct{}

func (panicRenderer) Render(controller.Snapshot) { panic("display unplugged") }
func (panicRenderer) RenderEvent(event.Event)    {}

func TestRunRecoversPanic(t *testing.T) {
	sim, err := New(mustParse(t, idleYAML), WithRenderer(panicRenderer{}))
	require.NoError(t, err)

	res, err := runWithTimeout(t, sim)
	require.Error(t, err)

	var perr *ErrPanic
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "controller", perr.Task)
	assert.Equal(t, "display unplugged", perr.Value)

	require.NotNil(t, res)
	assert.Equal(t, controller.OutcomeCancelled, res.Outcome)
	assert.False(t, sim.Running())
}
