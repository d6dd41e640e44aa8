// Command rocketsim runs a resource-flow scenario in the terminal.
//
// Usage:
//
//	rocketsim [flags]
//
// By default the built-in rocket scenario is run. The process exits with 0
// when the goal is reached, 2 on critical failure and 1 otherwise.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/rocketsim"
	"github.com/hupe1980/rocketsim/controller"
	"github.com/hupe1980/rocketsim/journal"
	promcollector "github.com/hupe1980/rocketsim/metrics/prometheus"
	"github.com/hupe1980/rocketsim/render"
	"github.com/hupe1980/rocketsim/resource"
	"github.com/hupe1980/rocketsim/scenario"
)

const (
	exitCompleted = 0
	exitError     = 1
	exitFailure   = 2
)

type config struct {
	scenario           string
	logLevel           string
	logFormat          string
	poll               time.Duration
	backoff            time.Duration
	render             time.Duration
	lowThreshold       float64
	plain              bool
	quiet              bool
	metricsAddr        string
	journal            string
	journalCompression string
	journalMaxRecords  int
	dump               bool
}

func main() {
	cfg := config{}
	fs := newFlagSet(&cfg, os.Stderr)
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(exitError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func newFlagSet(cfg *config, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("rocketsim", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.scenario, "scenario", "", "scenario YAML file (default: built-in rocket)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&cfg.logFormat, "log-format", "text", "log format: text or json")
	fs.DurationVar(&cfg.poll, "poll", controller.DefaultPollInterval, "controller poll interval")
	fs.DurationVar(&cfg.backoff, "backoff", 0, "worker backoff after a failed consume or overflow (default 20ms)")
	fs.DurationVar(&cfg.render, "render", 100*time.Millisecond, "minimum interval between redraws")
	fs.Float64Var(&cfg.lowThreshold, "low-threshold", resource.DefaultLowThreshold, "fill ratio below which a resource is flagged LOW")
	fs.BoolVar(&cfg.plain, "plain", false, "disable ANSI screen control")
	fs.BoolVar(&cfg.quiet, "quiet", false, "do not render state")
	fs.StringVar(&cfg.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :2112")
	fs.StringVar(&cfg.journal, "journal", "", "journal destination: mem://, file://dir, s3://bucket/prefix or minio://host/bucket/prefix")
	fs.StringVar(&cfg.journalCompression, "journal-compression", "zstd", "journal compression: none, zstd or lz4")
	fs.IntVar(&cfg.journalMaxRecords, "journal-max-records", 0, "keep at most this many event records in the journal (0: unlimited)")
	fs.BoolVar(&cfg.dump, "dump", false, "print the scenario as YAML and exit")
	return fs
}

func run(ctx context.Context, cfg config, stdout, stderr io.Writer) int {
	logger, err := newLogger(cfg.logLevel, cfg.logFormat, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	scn, err := loadScenario(cfg.scenario)
	if err != nil {
		logger.Error("load scenario", "path", cfg.scenario, "error", err)
		return exitError
	}

	if cfg.dump {
		data, err := scn.Marshal()
		if err != nil {
			logger.Error("marshal scenario", "error", err)
			return exitError
		}
		_, _ = stdout.Write(data)
		return exitCompleted
	}

	opts := []rocketsim.Option{
		rocketsim.WithLogger(logger),
		rocketsim.WithPollInterval(cfg.poll),
		rocketsim.WithBackoff(cfg.backoff),
		rocketsim.WithRenderRate(cfg.render),
	}

	if !cfg.quiet {
		var ropts []render.Option
		ropts = append(ropts, render.WithLowThreshold(cfg.lowThreshold))
		if cfg.plain {
			ropts = append(ropts, render.WithoutANSI())
		}
		opts = append(opts, rocketsim.WithRenderer(render.New(stdout, ropts...)))
	}

	if cfg.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())

		mc, err := promcollector.New(reg)
		if err != nil {
			logger.Error("register metrics", "error", err)
			return exitError
		}
		opts = append(opts, rocketsim.WithMetricsCollector(mc))

		srv, err := serveMetrics(cfg.metricsAddr, reg, logger)
		if err != nil {
			logger.Error("start metrics server", "addr", cfg.metricsAddr, "error", err)
			return exitError
		}
		defer shutdown(srv)
	}

	if cfg.journal != "" {
		comp, err := journal.ParseCompression(cfg.journalCompression)
		if err != nil {
			logger.Error("journal compression", "error", err)
			return exitError
		}
		target, err := parseStoreURL(cfg.journal)
		if err != nil {
			logger.Error("journal destination", "error", err)
			return exitError
		}
		store, err := openStore(ctx, target)
		if err != nil {
			logger.Error("open journal store", "scheme", target.Scheme, "error", err)
			return exitError
		}
		opts = append(opts, rocketsim.WithJournal(store,
			journal.WithCompression(comp),
			journal.WithMaxRecords(cfg.journalMaxRecords),
		))
	}

	sim, err := rocketsim.New(scn, opts...)
	if err != nil {
		logger.Error("build simulation", "error", err)
		return exitError
	}

	res, err := sim.Run(ctx)
	if err != nil {
		// Run already logged the failure.
		return exitError
	}

	fmt.Fprintln(stdout, res.Outcome)
	return exitCode(res.Outcome)
}

func exitCode(o controller.Outcome) int {
	switch o {
	case controller.OutcomeCompleted:
		return exitCompleted
	case controller.OutcomeCriticalFailure:
		return exitFailure
	default:
		return exitError
	}
}

func loadScenario(path string) (*scenario.Scenario, error) {
	if path == "" {
		return scenario.Rocket(), nil
	}
	return scenario.LoadFile(path)
}

func newLogger(level, format string, w io.Writer) (*rocketsim.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	hopts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text", "":
		return rocketsim.NewLogger(slog.NewTextHandler(w, hopts)), nil
	case "json":
		return rocketsim.NewLogger(slog.NewJSONHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *rocketsim.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	logger.Info("serving metrics", "addr", ln.Addr().String())
	return srv, nil
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
