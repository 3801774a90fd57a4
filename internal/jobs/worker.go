package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sjperalta/fintera-ops/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// ErrUnknownJob is returned by Trigger for a name that was never registered
var ErrUnknownJob = errors.New("unknown job")

// ErrJobRunning is returned when a named job is started while a previous run is still in progress
var ErrJobRunning = errors.New("job already running")

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	queue         chan Job
	asyncSem      chan struct{}
	maxConcurrent int
	stats         WorkerStats
	statsMu       sync.RWMutex

	named   map[string]Job
	runs    map[string]*JobRun
	namedMu sync.RWMutex
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	QueueLength   int   `json:"queue_length"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// JobRun describes the last execution of a named job
type JobRun struct {
	Name       string        `json:"name"`
	LastStart  time.Time     `json:"last_start"`
	LastFinish time.Time     `json:"last_finish"`
	Duration   time.Duration `json:"duration"`
	LastError  string        `json:"last_error,omitempty"`
	Runs       int64         `json:"runs"`
	Failures   int64         `json:"failures"`
	Running    bool          `json:"running"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	// Allow 2x workers for async jobs
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan Job, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		named:         make(map[string]Job),
		runs:          make(map[string]*JobRun),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool
func (w *Worker) Enqueue(job Job) {
	select {
	case w.queue <- job:
	default:
		logger.Warn("[Worker] Queue full, running job synchronously")
		if err := job(w.ctx); err != nil {
			logger.Error("[Worker] Job error", "error", err)
		}
	}
}

// EnqueueAsync runs a job in a new goroutine (fire-and-forget), bounded by semaphore
func (w *Worker) EnqueueAsync(job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()

		w.trackJobStart()
		defer w.trackJobEnd()

		defer func() {
			if r := recover(); r != nil {
				logger.Error("[Worker] Async job panic", "panic", fmt.Sprint(r))
				w.trackJobFailure()
			}
		}()

		if err := job(w.ctx); err != nil {
			logger.Error("[Worker] Async job error", "error", err)
			w.trackJobFailure()
		}
	}()
}

// process handles jobs from the queue
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.trackJobStart()
			start := time.Now()
			if err := job(w.ctx); err != nil {
				logger.Error(fmt.Sprintf("[Worker %d] Job error", workerID), "error", err)
				w.trackJobFailure()
			} else {
				logger.Debug(fmt.Sprintf("[Worker %d] Job completed", workerID), "duration", time.Since(start))
			}
			w.trackJobEnd()
		}
	}
}

// Register makes a job available to Trigger and the Schedule* helpers under name
func (w *Worker) Register(name string, job Job) {
	w.namedMu.Lock()
	defer w.namedMu.Unlock()
	w.named[name] = job
	if _, ok := w.runs[name]; !ok {
		w.runs[name] = &JobRun{Name: name}
	}
}

// Trigger runs a registered job once, in the background. It fails with ErrJobRunning
// when the job is already executing, whether scheduled or triggered.
func (w *Worker) Trigger(name string) error {
	w.namedMu.RLock()
	job, ok := w.named[name]
	w.namedMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	start := time.Now()
	if err := w.markRunStart(name, start); err != nil {
		return err
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.run(w.ctx, name, job, start); err != nil {
			logger.Error("[Scheduler] Job error", "job", name, "error", err)
		}
	}()
	return nil
}

// RunNow runs a registered job synchronously and returns its error
func (w *Worker) RunNow(ctx context.Context, name string) error {
	w.namedMu.RLock()
	job, ok := w.named[name]
	w.namedMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return w.execute(ctx, name, job)
}

// ScheduleEveryImmediate runs a job once at startup, then at fixed intervals. Use this when the process
// may restart between intervals so work due in the gap is not delayed.
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.Register(name, job)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.runScheduledJob(name, job)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.runScheduledJob(name, job)
			}
		}
	}()
}

// ScheduleDaily runs a job every day at hour:00 in loc. When runOnStart is set the job
// also runs once at startup; daily ticks are idempotent so a same-day rerun is harmless.
func (w *Worker) ScheduleDaily(name string, hour int, loc *time.Location, runOnStart bool, job Job) {
	if loc == nil {
		loc = time.UTC
	}
	w.Register(name, job)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if runOnStart {
			w.runScheduledJob(name, job)
		}
		for {
			timer := time.NewTimer(time.Until(NextDailyRun(time.Now(), hour, loc)))
			select {
			case <-w.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				w.runScheduledJob(name, job)
			}
		}
	}()
}

// NextDailyRun returns the first hour:00 in loc strictly after now
func NextDailyRun(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, 0, 0, 0, loc)
	}
	return next
}

func (w *Worker) runScheduledJob(name string, job Job) {
	err := w.execute(w.ctx, name, job)
	switch {
	case errors.Is(err, ErrJobRunning):
		logger.Warn("[Scheduler] Previous run still in progress, skipping", "job", name)
	case err != nil:
		logger.Error("[Scheduler] Job error", "job", name, "error", err)
	}
}

// execute claims name and runs job. At most one run per name is in flight.
func (w *Worker) execute(ctx context.Context, name string, job Job) error {
	start := time.Now()
	if err := w.markRunStart(name, start); err != nil {
		return err
	}
	return w.run(ctx, name, job, start)
}

// run executes a claimed job with stats, panic recovery and error reporting
func (w *Worker) run(ctx context.Context, name string, job Job, start time.Time) (err error) {
	w.trackJobStart()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", name, r)
		}
		if err != nil {
			w.trackJobFailure()
			captureJobError(name, err)
		} else {
			logger.Info("[Scheduler] Job completed", "job", name, "duration", time.Since(start))
		}
		w.markRunEnd(name, start, err)
		w.trackJobEnd()
	}()

	return job(ctx)
}

func captureJobError(name string, err error) {
	hub := sentry.CurrentHub().Clone()
	if hub.Client() == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("job", name)
		hub.CaptureException(err)
	})
}

// Shutdown gracefully stops all workers
func (w *Worker) Shutdown() {
	w.cancel()
	close(w.queue)
	w.wg.Wait()
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	return stats
}

// JobRuns returns the last-run summary of every registered job, sorted by name
func (w *Worker) JobRuns() []JobRun {
	w.namedMu.RLock()
	defer w.namedMu.RUnlock()
	runs := make([]JobRun, 0, len(w.runs))
	for _, r := range w.runs {
		runs = append(runs, *r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Name < runs[j].Name })
	return runs
}

func (w *Worker) markRunStart(name string, start time.Time) error {
	w.namedMu.Lock()
	defer w.namedMu.Unlock()
	run, ok := w.runs[name]
	if !ok {
		run = &JobRun{Name: name}
		w.runs[name] = run
	}
	if run.Running {
		return fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	run.LastStart = start
	run.Running = true
	return nil
}

func (w *Worker) markRunEnd(name string, start time.Time, err error) {
	w.namedMu.Lock()
	defer w.namedMu.Unlock()
	run := w.runs[name]
	run.LastFinish = time.Now()
	run.Duration = run.LastFinish.Sub(start)
	run.Running = false
	run.Runs++
	run.LastError = ""
	if err != nil {
		run.Failures++
		run.LastError = err.Error()
	}
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

// trackJobEnd counts every finished job; FailedJobs is a subset of CompletedJobs
func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
