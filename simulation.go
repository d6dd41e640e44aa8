package rocketsim

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/rocketsim/controller"
	"github.com/hupe1980/rocketsim/event"
	"github.com/hupe1980/rocketsim/journal"
	"github.com/hupe1980/rocketsim/resource"
	"github.com/hupe1980/rocketsim/scenario"
	"github.com/hupe1980/rocketsim/subsystem"
)

// journalFlushTimeout bounds the final journal write after the run ended.
const journalFlushTimeout = 30 * time.Second

// Result summarizes a finished run.
type Result struct {
	RunID       uuid.UUID
	Outcome     controller.Outcome
	Duration    time.Duration
	Snapshot    controller.Snapshot
	Events      int64  // events handled by the controller
	JournalName string // empty without a journal
}

// Simulation wires a scenario's resources and subsystems to an event queue,
// one worker per subsystem and a controller.
//
// A Simulation runs once.
type Simulation struct {
	name    string
	opts    options
	runID   uuid.UUID
	logger  *Logger
	world   *scenario.World
	queue   *event.Queue
	ctrl    *controller.Controller
	journal *journal.Journal
	started atomic.Bool
}

// New builds a simulation from scn.
//
// The vital and goal resources are taken from the options, then the
// scenario, then the controller defaults.
func New(scn *scenario.Scenario, optFns ...Option) (*Simulation, error) {
	if scn == nil {
		return nil, ErrNilScenario
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	world, err := scn.Build()
	if err != nil {
		return nil, err
	}

	runID := opts.runID
	if runID == uuid.Nil {
		runID = uuid.New()
	}

	s := &Simulation{
		name:   scn.Name,
		opts:   opts,
		runID:  runID,
		logger: opts.logger.WithRun(runID),
		world:  world,
		queue:  event.NewQueue(),
	}

	observers := controller.MultiObserver{opts.metricsCollector}
	if opts.journalStore != nil {
		j, err := journal.New(runID.String(), opts.journalStore, opts.journalOptions...)
		if err != nil {
			return nil, err
		}
		s.journal = j
		observers = append(observers, j)
	}

	vital := firstNonEmpty(opts.vitalResource, scn.Vital)
	goal := firstNonEmpty(opts.goalResource, scn.Goal)

	s.ctrl, err = controller.New(s.queue, world.Resources, world.Subsystems, controller.Config{
		PollInterval:   opts.pollInterval,
		VitalResource:  vital,
		GoalResource:   goal,
		Renderer:       opts.renderer,
		RenderInterval: opts.renderInterval,
		Logger:         s.logger.Logger,
		Metrics:        observers,
	})
	if err != nil {
		return nil, fmt.Errorf("build controller: %w", err)
	}

	return s, nil
}

// Run starts every worker and the controller and blocks until the run
// reaches a terminal outcome and all workers have exited.
//
// Cancelling ctx ends the run with controller.OutcomeCancelled. The
// returned error is non-nil only if a goroutine panicked or the journal
// could not be written; the Result is valid in both cases.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	if !s.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}

	start := time.Now()
	s.logger.LogStart(ctx, s.name, len(s.world.Resources), len(s.world.Subsystems))

	g, gctx := errgroup.WithContext(ctx)

	// Workers stop as soon as the controller has finished, even mid-pause.
	wctx, stopWorkers := context.WithCancel(gctx)
	defer stopWorkers()

	for _, sys := range s.world.Subsystems {
		w := subsystem.NewWorker(sys, s.queue, subsystem.WorkerConfig{
			Backoff: s.opts.backoff,
			Logger:  s.logger.Logger,
			Metrics: s.opts.metricsCollector,
		})
		goSafe(g, s.logger, "subsystem "+sys.Name(), func() error {
			if err := w.Run(wctx); err != nil && !isContextErr(err) {
				return err
			}
			return nil
		})
	}

	goSafe(g, s.logger, "controller", func() error {
		defer stopWorkers()
		s.ctrl.Run(gctx)
		return nil
	})

	err := g.Wait()
	if err != nil {
		s.ctrl.Stop()
	}

	res := &Result{
		RunID:    s.runID,
		Outcome:  s.ctrl.Outcome(),
		Duration: time.Since(start),
		Snapshot: s.ctrl.Snapshot(),
		Events:   s.ctrl.Processed(),
	}

	if s.journal != nil {
		res.JournalName = s.journal.Name()

		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalFlushTimeout)
		ferr := s.journal.Flush(flushCtx)
		cancel()

		s.logger.LogJournal(ctx, res.JournalName, s.journal.Len(), ferr)
		err = errors.Join(err, ferr)
	}

	s.logger.LogOutcome(ctx, res, err)
	return res, err
}

// Stop ends a running simulation with controller.OutcomeCancelled.
func (s *Simulation) Stop() {
	s.ctrl.Stop()
}

// Running reports whether Run has been called and the run has not ended.
func (s *Simulation) Running() bool {
	return s.started.Load() && s.ctrl.Running()
}

// Outcome returns the current outcome.
func (s *Simulation) Outcome() controller.Outcome {
	return s.ctrl.Outcome()
}

// RunID returns the run identifier.
func (s *Simulation) RunID() uuid.UUID {
	return s.runID
}

// Snapshot returns a lock-free view of all resources and subsystems.
func (s *Simulation) Snapshot() controller.Snapshot {
	return s.ctrl.Snapshot()
}

// Resource returns the named resource, or nil.
func (s *Simulation) Resource(name string) *resource.Resource {
	return s.world.Resource(name)
}

// Subsystem returns the named subsystem, or nil.
func (s *Simulation) Subsystem(name string) *subsystem.Subsystem {
	return s.world.Subsystem(name)
}

// Journal returns the run journal, or nil if none was configured.
func (s *Simulation) Journal() *journal.Journal {
	return s.journal
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
