package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/livecart/housekeeper/internal/config"
	"github.com/livecart/housekeeper/internal/logging"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	// Handle version flag before subcommand parsing
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-version") {
		fmt.Printf("housekeeperd version %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	subcommand := os.Args[1]
	switch subcommand {
	case "serve":
		runServe(os.Args[2:])
	case "run":
		os.Exit(runOnce(os.Args[2:]))
	case "version":
		fmt.Printf("housekeeperd version %s (built %s, commit %s)\n", version, buildTime, gitCommit)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: housekeeperd <command> [options]

Commands:
  serve       Run the scheduler and HTTP endpoints
  run         Run one job now and exit (expiry or storage)
  version     Print version information

Run 'housekeeperd <command> --help' for more information on a command.`)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.Configure(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	listenAddr := fs.String("listen", "", "Override HTTP listen address (e.g., :8080)")
	timezone := fs.String("timezone", "", "Override the zone schedules run in (e.g., Asia/Bangkok)")
	logLevel := fs.String("log-level", "", "Override log level (debug, info, warn, error)")

	fs.Usage = func() {
		fmt.Println(`Usage: housekeeperd serve [options]

Run the expiry and storage jobs on their cron schedules and serve
/healthz, /readyz, /metrics, /cors and POST /jobs/{name}/run.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Apply CLI overrides
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}
	if *timezone != "" {
		cfg.Jobs.Timezone = *timezone
	}
	if *logLevel != "" {
		cfg.Observability.LogLevel = *logLevel
	}

	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := NewDaemon(ctx, DaemonOptions{
		Config:   cfg,
		Logger:   logger,
		Registry: newRegistry(),
		Version:  version,
	})
	if err != nil {
		logger.Errorf("failed to create daemon", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if err := d.Start(ctx); err != nil {
		logger.Errorf("failed to start", map[string]any{"error": err.Error()})
		_ = d.Shutdown(ctx)
		os.Exit(1)
	}

	sig := <-sigCh
	logger.Infof("received shutdown signal", map[string]any{"signal": sig.String()})

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := d.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

// runOnce runs a single job for external schedulers and returns the exit code.
func runOnce(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")

	fs.Usage = func() {
		fmt.Println(`Usage: housekeeperd run [options] <expiry|storage>

Run one job immediately, print its result as JSON and exit.
Exits non-zero when the job fails.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	job := fs.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := NewDaemon(ctx, DaemonOptions{
		Config:  cfg,
		Logger:  logger,
		Version: version,
	})
	if err != nil {
		logger.Errorf("failed to create daemon", map[string]any{"error": err.Error()})
		return 1
	}
	defer d.Shutdown(context.Background())

	res, runErr := d.RunJob(ctx, job)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)

	if runErr != nil {
		logger.Errorf("job failed", map[string]any{"job": job, "error": runErr.Error()})
		return 1
	}
	return 0
}
