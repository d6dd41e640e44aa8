// Package rocketsim runs a concurrent resource-flow simulation.
//
// A scenario describes bounded resources and the subsystems that convert
// between them. Each subsystem runs in its own goroutine, consuming an
// input resource, working for a while and depositing its output. Anomalies
// such as an empty input or a full output are reported to a priority event
// queue. A single controller drains the queue and retunes the producers of
// the affected resource: FAST when it runs low, SLOW when it fills up.
//
// The run ends when the vital resource (Oxygen by default) is depleted, the
// goal resource (Distance by default) is full, or the context is cancelled.
//
// # Quick Start
//
//	sim, err := rocketsim.New(scenario.Rocket(),
//	    rocketsim.WithRenderer(render.New(os.Stdout)),
//	    rocketsim.WithRenderRate(100*time.Millisecond),
//	)
//	if err != nil {
//	    return err
//	}
//	res, err := sim.Run(ctx)
//	fmt.Println(res.Outcome) // COMPLETED or CRITICAL_FAILURE
//
// # Custom Scenarios
//
// Scenarios are YAML documents:
//
//	name: rover
//	vital: Power
//	goal: Samples
//	resources:
//	  - {name: Power, amount: 40, max_capacity: 100}
//	  - {name: Samples, amount: 0, max_capacity: 20}
//	subsystems:
//	  - name: Drill
//	    consumes: {resource: Power, amount: 5}
//	    produces: {resource: Samples, amount: 1}
//	    processing_time: 30ms
//
// Load them with scenario.LoadFile and pass the result to New.
//
// # Journals
//
// WithJournal records every drained event, status change and the final
// outcome, and writes them as JSON lines to a blobstore.Store when Run
// returns. Local, in-memory, S3 and MinIO stores are provided:
//
//	store := blobstore.NewLocalStore("./journals")
//	sim, _ := rocketsim.New(scn, rocketsim.WithJournal(store,
//	    journal.WithCompression(journal.CompressionZstd),
//	))
//
// # Observability
//
// WithLogger attaches a slog-based Logger; every line carries the run id.
// WithMetricsCollector receives controller and worker callbacks. See
// BasicMetricsCollector for an in-memory collector and package
// metrics/prometheus for a Prometheus adapter.
package rocketsim
