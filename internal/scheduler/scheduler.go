// Package scheduler runs housekeeping jobs on cron schedules and on demand.
//
// Every run gets a run ID, a logger tagged with the job name and run ID, and
// an optional deadline. Scheduled and manual runs of the same job may overlap;
// jobs are expected to be idempotent.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/livecart/housekeeper/internal/logging"
)

var (
	// ErrUnknownJob is returned when triggering a job that was never registered.
	ErrUnknownJob = errors.New("scheduler: unknown job")

	// ErrDuplicateJob is returned when registering a name twice.
	ErrDuplicateJob = errors.New("scheduler: job already registered")
)

// JobFunc performs one run and returns a JSON-encodable summary.
type JobFunc func(ctx context.Context) (any, error)

// Job describes a registered job.
type Job struct {
	// Name identifies the job in logs, metrics and triggers.
	Name string

	// Schedule is a standard five-field cron spec or a descriptor such as
	// "@daily". Empty registers the job for manual triggering only.
	Schedule string

	// Timeout bounds a single run. Zero means no deadline.
	Timeout time.Duration

	Run JobFunc
}

// RunRecorder records finished runs.
type RunRecorder interface {
	RecordRun(job string, durationSeconds float64, success bool)
}

// Config configures a Scheduler.
type Config struct {
	// Timezone is the IANA zone schedules are evaluated in. Default: UTC.
	Timezone string

	// Metrics receives run metrics. Optional.
	Metrics RunRecorder

	// Logger is the base logger for runs. Default: the global logger.
	Logger *logging.Logger
}

// RunResult describes one finished run.
type RunResult struct {
	Job        string    `json:"job"`
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMs int64     `json:"durationMs"`
	Result     any       `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Scheduler owns a cron instance and the registered jobs.
type Scheduler struct {
	cron    *cron.Cron
	loc     *time.Location
	metrics RunRecorder
	logger  *logging.Logger

	mu        sync.RWMutex
	jobs      map[string]Job
	schedules map[string]cron.Schedule
}

// New creates a stopped Scheduler.
func New(cfg Config) (*Scheduler, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("scheduler: load timezone %q: %w", cfg.Timezone, err)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Global()
	}

	cl := NewCronLogger(logger.WithJob("scheduler"))
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		loc:     loc,
		metrics: cfg.Metrics,
		logger:  logger,
		jobs:      make(map[string]Job),
		schedules: make(map[string]cron.Schedule),
	}, nil
}

// Location returns the zone schedules are evaluated in.
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// Register adds a job. A non-empty schedule is parsed and attached to cron.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" {
		return errors.New("scheduler: job name is required")
	}
	if job.Run == nil {
		return fmt.Errorf("scheduler: job %q has no run function", job.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name)
	}

	if job.Schedule != "" {
		sched, err := cron.ParseStandard(job.Schedule)
		if err != nil {
			return fmt.Errorf("scheduler: job %q: invalid schedule %q: %w", job.Name, job.Schedule, err)
		}
		name := job.Name
		s.schedules[name] = sched
		s.cron.Schedule(sched, cron.FuncJob(func() {
			res := s.execute(context.Background(), job)
			if res.Error != "" {
				s.logger.WithJob(name).WithRunID(res.RunID).Errorf("scheduled run failed", map[string]any{
					"error": res.Error,
				})
			}
		}))
	}
	s.jobs[job.Name] = job
	return nil
}

// Jobs returns the registered job names, sorted.
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Next returns the first activation of a job after from, in the scheduler's
// zone. Jobs without a schedule return the zero time.
func (s *Scheduler) Next(name string, from time.Time) time.Time {
	s.mu.RLock()
	sched, ok := s.schedules[name]
	s.mu.RUnlock()
	if !ok {
		return time.Time{}
	}
	return sched.Next(from.In(s.loc))
}

// Trigger runs a job now, on the caller's goroutine. The returned error is
// ErrUnknownJob or the job's own error; the RunResult is filled either way.
func (s *Scheduler) Trigger(ctx context.Context, name string) (RunResult, error) {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return RunResult{Job: name}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	res := s.execute(ctx, job)
	if res.Error != "" {
		return res, errors.New(res.Error)
	}
	return res, nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running scheduled jobs, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job) (res RunResult) {
	runID := uuid.NewString()
	log := s.logger.WithJob(job.Name).WithRunID(runID)

	ctx = logging.WithRunIDCtx(ctx, runID)
	ctx = logging.WithLoggerCtx(ctx, log)
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	res = RunResult{Job: job.Name, RunID: runID, StartedAt: start.UTC()}

	defer func() {
		if r := recover(); r != nil {
			res.Error = fmt.Sprintf("panic: %v", r)
		}
		elapsed := time.Since(start)
		res.DurationMs = elapsed.Milliseconds()
		if s.metrics != nil {
			s.metrics.RecordRun(job.Name, elapsed.Seconds(), res.Error == "")
		}
		log.Infof("run finished", map[string]any{
			"durationMs": res.DurationMs,
			"success":    res.Error == "",
		})
	}()

	log.Info("run started")
	out, err := job.Run(ctx)
	res.Result = out
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
