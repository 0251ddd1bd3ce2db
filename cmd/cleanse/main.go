package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"cleanse/internal/config"
	"cleanse/internal/metrics"
	"cleanse/internal/metrics/datadog"
	"cleanse/internal/metrics/prompush"
	"cleanse/internal/pipeline"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "cleanse/internal/storage/all"
)

// logFile is where the run log lands, alongside stderr.
const logFile = "cleanse.log"

// main is the entry point for the cleanse binary. It loads the pipeline
// config (or falls back to the built-in default), optionally initializes a
// metrics backend, and executes one cleaning run.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		dogstatsdAddrFlg  string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "pipeline config JSON path (empty: built-in defaults)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "http://localhost:9091", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&dogstatsdAddrFlg, "dogstatsd-addr", "127.0.0.1:8125", "DogStatsD address for the datadog backend")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	logger, closeLog := newLogger()
	defer closeLog()

	p := config.Default()
	if cfgPath != "" {
		var err error
		p, err = config.Load(cfgPath)
		if err != nil {
			fatalf("load config: %v", err)
		}
	}

	// Validate pipeline config.
	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		logger.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		logger.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	initMetrics(metricsBackendFlg, pushGatewayURLFlg, dogstatsdAddrFlg, p.Job, logger, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			logger.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		logger.Printf("pipeline: source=%s parser=%s storage=%s table=%s",
			p.Source.Kind, p.Parser.Kind, p.Storage.Kind, p.Storage.DB.Table)
	}

	_, rep, err := pipeline.Run(ctx, p, logger)
	if err != nil {
		logger.Printf("run failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("total_records=%d valid_records=%d invalid_records=%d\n",
		rep.TotalRecords, rep.ValidRecords, rep.InvalidRecords)
	fmt.Printf("cleaned data: %s\nreport: %s\n", p.Output.Data, p.Output.Report)

	if *verbose {
		logger.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// newLogger returns a logger writing to both stderr and the run log file.
// When the file cannot be opened, stderr alone is used.
func newLogger() (*log.Logger, func()) {
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		l := log.New(os.Stderr, "", log.LstdFlags)
		l.Printf("log file %s unavailable: %v", logFile, err)
		return l, func() {}
	}
	return log.New(io.MultiWriter(os.Stderr, f), "", log.LstdFlags), func() { f.Close() }
}

// initMetrics wires the requested metrics backend; the nop backend remains
// on any failure. Backend name resolution: flag → env → none.
func initMetrics(backendName, gatewayURL, dogstatsdAddr, job string, logger *log.Logger, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	if job == "" {
		job = "cleanse"
	}

	switch backendName {
	case "pushgateway":
		if gatewayURL == "" {
			gatewayURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gatewayURL == "" {
			gatewayURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gatewayURL)
		if err != nil {
			logger.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		logger.Printf("metrics: url=%v, backend=%v, job_name=%v", gatewayURL, backendName, job)
		metrics.SetBackend(b)

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       dogstatsdAddr,
			Namespace:  "cleanse",
			GlobalTags: []string{"job:" + job},
		})
		if err != nil {
			logger.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		logger.Printf("metrics: addr=%v, backend=%v, job_name=%v", dogstatsdAddr, backendName, job)
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains
		if verbose {
			logger.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		logger.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
