package scheduler

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// JobFunc is one run of a periodic job.
type JobFunc func(ctx context.Context) error

type Scheduler struct {
	jobs   map[string]*Job // job name -> job
	mu     sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type Job struct {
	name     string
	interval time.Duration
	run      JobFunc
	ticker   *time.Ticker
	cancel   context.CancelFunc

	mu      sync.Mutex
	runs    int
	lastErr error
}

// NewScheduler initializes a new Scheduler instance
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*Job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Stop cancels every job and waits for running ones to return.
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler")
	s.cancel()

	s.mu.Lock()
	for _, job := range s.jobs {
		job.ticker.Stop()
		job.cancel()
	}
	s.jobs = make(map[string]*Job)
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

// AddJob runs fn immediately and then every interval. A job with the same
// name is replaced.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		slog.Warn("Scheduler stopped, job not added", "job", name)
		return
	}

	if existing, exists := s.jobs[name]; exists {
		existing.ticker.Stop()
		existing.cancel()
	}

	jobCtx, jobCancel := context.WithCancel(s.ctx)

	job := &Job{
		name:     name,
		interval: interval,
		run:      fn,
		ticker:   time.NewTicker(interval),
		cancel:   jobCancel,
	}

	s.jobs[name] = job

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		job.execute(jobCtx)
		job.loop(jobCtx)
	}()

	slog.Info("Added job", "job", name, "interval", interval)
}

func (j *Job) loop(ctx context.Context) {
	defer j.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.ticker.C:
			j.execute(ctx)
		}
	}
}

func (j *Job) execute(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	err := j.run(ctx)

	j.mu.Lock()
	j.runs++
	j.lastErr = err
	j.mu.Unlock()

	if err != nil {
		slog.Error("Job failed", "job", j.name, "error", err)
		return
	}
	slog.Debug("Job finished", "job", j.name, "duration", time.Since(start))
}

type JobStatus struct {
	Name     string `json:"name"`
	Interval string `json:"interval"`
	Runs     int    `json:"runs"`
	LastErr  string `json:"lastError,omitempty"`
}

// Status reports every registered job, ordered by name.
func (s *Scheduler) Status() []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := make([]JobStatus, 0, len(s.jobs))
	for _, job := range s.jobs {
		job.mu.Lock()
		js := JobStatus{Name: job.name, Interval: job.interval.String(), Runs: job.runs}
		if job.lastErr != nil {
			js.LastErr = job.lastErr.Error()
		}
		job.mu.Unlock()
		status = append(status, js)
	}

	slices.SortFunc(status, func(a, b JobStatus) int { return strings.Compare(a.Name, b.Name) })

	return status
}
