package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"scopestats/internal/log"
	"scopestats/internal/meta"
	"scopestats/internal/metrics"
	"scopestats/internal/task"
	"scopestats/internal/web"

	"github.com/getsentry/raven-go"
)

func main() {
	configPath := flag.String(
		"config",
		os.Getenv("SCOPESTATSD_CONFIG"),
		"path to the configuration file on disk",
	)
	version := flag.Bool(
		"version",
		false,
		"print the compiled scopestatsd version SHA",
	)
	verbosity := flag.String(
		"verbosity",
		"error",
		"desired logging verbosity: one of error, warn, info, debug",
	)
	flag.Parse()

	// Report the compiled version and exit
	if *version {
		fmt.Printf("scopestatsd/%s\n", meta.VersionSHA)
		return
	}

	// Logging configuration; default to log.Error verbosity
	level, _ := log.ParseLevel(*verbosity)
	logger := log.NewConsoleLogger(level)
	logger.Debug("main: initialized logger: level=%v", level)

	// Parse application configuration
	logger.Debug("main: reading and parsing config: path=%s", *configPath)
	config, err := meta.ParseConfig(*configPath)
	if err != nil {
		panic(err)
	}

	// Configure error reporting
	if config.Application != nil && config.Application.SentryDSN != "" {
		raven.SetDSN(config.Application.SentryDSN)
		raven.SetRelease(meta.VersionSHA)
	}

	// Configure metrics reporting
	sink := metrics.NewNoopSink()
	strict := false
	trackPhases := false

	if config.Metrics != nil {
		strict = config.Metrics.Strict
		trackPhases = config.Metrics.TrackPhases
	}

	if config.Metrics != nil && config.Metrics.Statsd != nil {
		logger.Info(
			"main: configuring statsd metrics reporting: addr=%s sample_rate=%f prefix=%s",
			config.Metrics.Statsd.Address,
			config.SampleRate(),
			config.Metrics.Statsd.Prefix,
		)

		hostname, err := os.Hostname()
		if err != nil {
			panic(err)
		}

		if sink, err = metrics.NewStatsdSink(
			config.Metrics.Statsd.Address,
			config.Metrics.Statsd.Prefix,
			map[string]string{"host": hostname},
		); err != nil {
			panic(err)
		}
	} else {
		logger.Warn("main: no metrics output engine specified; disabling metrics")
	}

	recorder := metrics.NewRecorder(sink, logger, metrics.RecorderOpts{
		SampleRate: config.SampleRate(),
		Strict:     strict,
	})

	// Periodic heartbeat task exercising the task scope lifecycle
	runner := &task.Runner{Recorder: recorder, Logger: logger}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			runner.Run(context.Background(), "heartbeat", func(ctx context.Context) error {
				metrics.Incr(ctx, "beat", 1)
				return nil
			})
		}
	}()

	// Configure the instrumented HTTP listener
	middleware := &web.Middleware{
		Recorder: recorder,
		Logger:   logger,
		Opts:     web.MiddlewareOpts{TrackPhases: trackPhases},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		metrics.SetView(r.Context(), "scopestatsd.healthz")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		metrics.SetView(ctx, "scopestatsd.echo")

		defer metrics.Span(ctx, "render")()
		metrics.Incr(ctx, "echo", 1)

		fmt.Fprintf(w, "%s %s\n", r.Method, r.URL.Path)
	})

	logger.Info("main: configuring HTTP server listener: addr=%s", config.Listener.HTTP.Address)

	server := &http.Server{
		Addr:         config.Listener.HTTP.Address,
		Handler:      middleware.Handler(mux),
		ReadTimeout:  config.Listener.HTTP.ReadTimeout,
		WriteTimeout: config.Listener.HTTP.WriteTimeout,
	}

	logger.Info("main: serving indefinitely")
	if err := server.ListenAndServe(); err != nil {
		panic(err)
	}
}
