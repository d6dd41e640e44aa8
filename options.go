package rocketsim

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/rocketsim/blobstore"
	"github.com/hupe1980/rocketsim/controller"
	"github.com/hupe1980/rocketsim/journal"
	"github.com/hupe1980/rocketsim/subsystem"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	pollInterval     time.Duration
	backoff          time.Duration
	vitalResource    string
	goalResource     string
	renderer         controller.Renderer
	renderInterval   time.Duration
	journalStore     blobstore.Store
	journalOptions   []journal.Option
	runID            uuid.UUID
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		pollInterval:     controller.DefaultPollInterval,
		backoff:          subsystem.DefaultBackoff,
	}
}

// Option configures a Simulation.
type Option func(*options)

// WithLogger configures structured logging for the run.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := rocketsim.NewJSONLogger(slog.LevelInfo)
//	sim, _ := rocketsim.New(scenario.Rocket(), rocketsim.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring the run.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &rocketsim.BasicMetricsCollector{}
//	sim, _ := rocketsim.New(scenario.Rocket(), rocketsim.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
//	fmt.Printf("Events: %d, Status changes: %d\n", stats.Events, stats.StatusChanges)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithPollInterval sets the pause between controller drain cycles.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithBackoff sets the pause after a failed consume or an overflowing produce.
func WithBackoff(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.backoff = d
		}
	}
}

// WithVitalResource overrides the vital resource named by the scenario.
func WithVitalResource(name string) Option {
	return func(o *options) {
		o.vitalResource = name
	}
}

// WithGoalResource overrides the goal resource named by the scenario.
func WithGoalResource(name string) Option {
	return func(o *options) {
		o.goalResource = name
	}
}

// WithRenderer draws state through r while the simulation runs.
//
// Example:
//
//	sim, _ := rocketsim.New(scenario.Rocket(), rocketsim.WithRenderer(render.New(os.Stdout)))
func WithRenderer(r controller.Renderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// WithRenderRate limits full redraws to one per interval.
// Zero redraws on every controller cycle.
func WithRenderRate(interval time.Duration) Option {
	return func(o *options) {
		o.renderInterval = interval
	}
}

// WithJournal records the run and flushes it to store when Run returns.
//
// Example:
//
//	store := blobstore.NewLocalStore("./journals")
//	sim, _ := rocketsim.New(scn, rocketsim.WithJournal(store,
//	    journal.WithCompression(journal.CompressionZstd),
//	))
func WithJournal(store blobstore.Store, optFns ...journal.Option) Option {
	return func(o *options) {
		o.journalStore = store
		o.journalOptions = optFns
	}
}

// WithRunID sets the run identifier instead of generating a random one.
func WithRunID(id uuid.UUID) Option {
	return func(o *options) {
		o.runID = id
	}
}
