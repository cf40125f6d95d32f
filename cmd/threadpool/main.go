// Command threadpool runs a batch of checksum tasks on a thread pool and
// reports each result through the print serializer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tnr00071/threadpool"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	workers     int
	tasks       int
	verbose     bool
	metricsAddr string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("threadpool", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "path to YAML config file")
	fs.IntVar(&o.workers, "workers", -1, "number of workers (overrides config; -1 keeps config or CPU count)")
	fs.IntVar(&o.tasks, "tasks", 32, "number of tasks to run")
	fs.BoolVar(&o.verbose, "verbose", false, "trace the print serializer")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address until interrupted")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.tasks < 0 {
		return options{}, fmt.Errorf("tasks must not be negative: %d", o.tasks)
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	var cfg threadpool.Config
	if o.configPath != "" {
		if cfg, err = threadpool.LoadConfig(o.configPath); err != nil {
			return err
		}
	}
	if o.workers >= 0 {
		cfg.Workers = &o.workers
	}
	if o.verbose {
		cfg.Verbose = true
	}
	if o.metricsAddr != "" {
		cfg.Metrics.Enabled = true
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	reg := prometheus.NewRegistry()
	opts := append(cfg.Options(reg), threadpool.WithLogger(logger), threadpool.WithOutput(stdout))

	var done atomic.Int64
	start := time.Now()
	var workers int
	err = threadpool.Run(func(p *threadpool.Pool) error {
		workers = p.WorkerCount()
		for i := range o.tasks {
			p.Submit(func() {
				sum := checksum(i)
				done.Add(1)
				p.Printf("task %d: checksum %d\n", i, sum)
			})
		}
		return nil
	}, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "completed %d/%d tasks on %d workers in %s\n", done.Load(), o.tasks, workers, time.Since(start).Round(time.Microsecond))

	if o.metricsAddr == "" {
		return nil
	}
	return serveMetrics(o.metricsAddr, reg, logger)
}

// checksum is a deliberately CPU-bound stand-in for real work.
func checksum(seed int) uint64 {
	h := uint64(14695981039346656037)
	for i := range 10_000 + seed {
		h ^= uint64(i)
		h *= 1099511628211
	}
	return h
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
