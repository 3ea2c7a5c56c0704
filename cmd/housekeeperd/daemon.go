package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/livecart/housekeeper/internal/config"
	"github.com/livecart/housekeeper/internal/docstore"
	"github.com/livecart/housekeeper/internal/gc"
	"github.com/livecart/housekeeper/internal/logging"
	"github.com/livecart/housekeeper/internal/metrics"
	"github.com/livecart/housekeeper/internal/objectstore"
	"github.com/livecart/housekeeper/internal/scheduler"
	"github.com/livecart/housekeeper/internal/server"
	"github.com/livecart/housekeeper/internal/streams"
	"github.com/livecart/housekeeper/internal/usage"
)

// Job names used for scheduling, triggers and metrics.
const (
	JobExpiry  = "expiry"
	JobStorage = "storage"
)

// DaemonOptions holds configuration for creating a Daemon.
type DaemonOptions struct {
	Config   *config.Config
	Logger   *logging.Logger
	Registry *prometheus.Registry
	Version  string

	// DocStore and ObjectStore replace the configured backends when set.
	DocStore    docstore.Store
	ObjectStore objectstore.Store
}

// Daemon wires the stores, jobs, scheduler and HTTP server together.
type Daemon struct {
	opts    DaemonOptions
	logger  *logging.Logger
	docs    docstore.Store
	objects objectstore.Store
	sched   *scheduler.Scheduler
	http    *server.HealthServer

	heartbeatStop chan struct{}
	heartbeatDone chan struct{}

	mu      sync.Mutex
	started bool
}

// NewDaemon opens the stores and registers the jobs. Nothing runs until Start.
func NewDaemon(ctx context.Context, opts DaemonOptions) (*Daemon, error) {
	if opts.Logger == nil {
		opts.Logger = logging.DefaultLogger()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	cfg := opts.Config

	d := &Daemon{opts: opts, logger: opts.Logger}

	d.docs = opts.DocStore
	if d.docs == nil {
		docs, err := openDocStore(ctx, cfg.Database, opts.Registry)
		if err != nil {
			return nil, fmt.Errorf("open document store: %w", err)
		}
		d.docs = docs
	}

	d.objects = opts.ObjectStore
	if d.objects == nil {
		objects, err := openObjectStore(ctx, cfg.ObjectStore, opts.Registry)
		if err != nil {
			d.closeStores()
			return nil, fmt.Errorf("open object store: %w", err)
		}
		d.objects = objects
	}

	sched, err := scheduler.New(scheduler.Config{
		Timezone: cfg.Jobs.Timezone,
		Metrics:  metrics.NewJobMetricsWithRegistry(opts.Registry),
		Logger:   d.logger,
	})
	if err != nil {
		d.closeStores()
		return nil, err
	}
	d.sched = sched

	if err := d.registerJobs(); err != nil {
		d.closeStores()
		return nil, err
	}
	return d, nil
}

func (d *Daemon) registerJobs() error {
	cfg := d.opts.Config.Jobs
	reg := d.opts.Registry

	streamStore := streams.NewStore(d.docs)
	expiryMetrics := metrics.NewExpiryMetricsWithRegistry(reg)
	purger := gc.NewStreamPurger(streamStore, d.objects, gc.PurgerConfig{
		BatchSize: cfg.Expiry.BatchSize,
		Metrics:   expiryMetrics,
		Logger:    d.logger,
	})
	scanner := gc.NewExpiryScanner(streamStore, purger, gc.ExpiryConfig{
		Parallelism: cfg.Expiry.Parallelism,
		Metrics:     expiryMetrics,
		Logger:      d.logger,
	})

	monitor := gc.NewStorageSizeMonitor(d.objects, usage.NewStore(d.docs), gc.StorageConfig{
		Prefix:             cfg.Storage.Prefix,
		WarnThresholdBytes: cfg.Storage.WarnThresholdBytes,
		Metrics:            metrics.NewStorageMetricsWithRegistry(reg),
		Logger:             d.logger,
	})

	expiry := scheduler.Job{
		Name:    JobExpiry,
		Timeout: time.Duration(cfg.Expiry.TimeoutMs) * time.Millisecond,
		Run: func(ctx context.Context) (any, error) {
			return scanner.Run(ctx)
		},
	}
	if cfg.Expiry.Enabled {
		expiry.Schedule = cfg.Expiry.Schedule
	}

	storage := scheduler.Job{
		Name:    JobStorage,
		Timeout: time.Duration(cfg.Storage.TimeoutMs) * time.Millisecond,
		Run: func(ctx context.Context) (any, error) {
			return monitor.Run(ctx)
		},
	}
	if cfg.Storage.Enabled {
		storage.Schedule = cfg.Storage.Schedule
	}

	if err := d.sched.Register(expiry); err != nil {
		return err
	}
	return d.sched.Register(storage)
}

// RunJob runs one job immediately and returns its result.
func (d *Daemon) RunJob(ctx context.Context, name string) (scheduler.RunResult, error) {
	return d.sched.Trigger(ctx, name)
}

// Start starts the HTTP server and the cron scheduler.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return fmt.Errorf("daemon already started")
	}
	d.started = true
	d.mu.Unlock()

	cfg := d.opts.Config

	d.logger.Infof("starting housekeeper", map[string]any{
		"version":     d.opts.Version,
		"listenAddr":  cfg.Server.ListenAddr,
		"database":    cfg.Database.Backend,
		"objectStore": cfg.ObjectStore.Backend,
		"timezone":    cfg.Jobs.Timezone,
	})

	d.http = server.NewHealthServer(cfg.Server.ListenAddr, d.logger)
	d.http.SetReadinessTimeout(time.Duration(cfg.Server.ReadinessTimeoutMs) * time.Millisecond)
	d.http.RegisterReadinessCheck(server.NewDocStoreChecker(d.docs))
	d.http.RegisterReadinessCheck(server.NewObjectStoreChecker(d.objects))
	d.http.RegisterHandler("", "/cors", server.CORSHandler())
	d.http.RegisterHandler(http.MethodGet, "/metrics", server.MetricsHandler(d.opts.Registry))
	d.http.Mount("/jobs", server.JobsHandler(d.sched))
	if err := d.http.Start(); err != nil {
		return fmt.Errorf("failed to start http server: %w", err)
	}

	d.sched.Start()
	d.startHeartbeat()

	now := time.Now()
	for _, name := range d.sched.Jobs() {
		if next := d.sched.Next(name, now); !next.IsZero() {
			d.logger.Infof("job scheduled", map[string]any{
				"job":  name,
				"next": next.Format(time.RFC3339),
			})
		}
	}
	return nil
}

// startHeartbeat reports scheduler liveness to /healthz.
func (d *Daemon) startHeartbeat() {
	d.http.RegisterGoroutine("scheduler")
	d.heartbeatStop = make(chan struct{})
	d.heartbeatDone = make(chan struct{})

	go func() {
		defer close(d.heartbeatDone)
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.http.UpdateGoroutine("scheduler")
			case <-d.heartbeatStop:
				d.http.UnregisterGoroutine("scheduler")
				return
			}
		}
	}()
}

// Addr returns the bound HTTP address once started.
func (d *Daemon) Addr() string {
	if d.http == nil {
		return d.opts.Config.Server.ListenAddr
	}
	return d.http.Addr()
}

// Shutdown stops scheduling, waits for running jobs and closes everything.
func (d *Daemon) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		d.closeStores()
		return nil
	}
	d.started = false
	d.mu.Unlock()

	d.logger.Info("shutting down housekeeper")
	d.http.SetShuttingDown()

	if err := d.sched.Stop(ctx); err != nil {
		d.logger.Warnf("scheduled jobs still running at shutdown", map[string]any{
			"error": err.Error(),
		})
	}
	close(d.heartbeatStop)
	<-d.heartbeatDone

	timeout := time.Duration(d.opts.Config.Server.ShutdownTimeoutMs) * time.Millisecond
	if err := d.http.Close(timeout); err != nil {
		d.logger.Warnf("error closing http server", map[string]any{
			"error": err.Error(),
		})
	}

	d.closeStores()
	d.logger.Info("housekeeper shutdown complete")
	return nil
}

func (d *Daemon) closeStores() {
	if d.objects != nil {
		if err := d.objects.Close(); err != nil {
			d.logger.Warnf("error closing object store", map[string]any{"error": err.Error()})
		}
	}
	if d.docs != nil {
		if err := d.docs.Close(); err != nil {
			d.logger.Warnf("error closing document store", map[string]any{"error": err.Error()})
		}
	}
}
