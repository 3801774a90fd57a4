package services

import (
	"context"

	"github.com/sjperalta/fintera-ops/internal/jobs"
)

// Names of the scheduled finance jobs
const (
	JobRecurringObligations = "recurring_obligations"
	JobInvoiceLifecycle     = "invoice_lifecycle"
	JobPayrollScheduling    = "payroll_scheduling"
)

// JobNames lists the finance jobs in the order a full run executes them
var JobNames = []string{JobRecurringObligations, JobInvoiceLifecycle, JobPayrollScheduling}

type JobService struct {
	worker *jobs.Worker
}

func NewJobService(worker *jobs.Worker) *JobService {
	return &JobService{
		worker: worker,
	}
}

// RegisterTicks makes the three finance ticks available by name without scheduling them
func (s *JobService) RegisterTicks(svcs *Services) {
	s.worker.Register(JobRecurringObligations, svcs.Recurring.Tick)
	s.worker.Register(JobInvoiceLifecycle, svcs.InvoiceMonitor.Tick)
	s.worker.Register(JobPayrollScheduling, svcs.PayrollScheduler.Tick)
}

func (s *JobService) GetStatus() map[string]interface{} {
	stats := s.worker.GetStats()
	return map[string]interface{}{
		"active_jobs":    stats.ActiveJobs,
		"completed_jobs": stats.CompletedJobs,
		"failed_jobs":    stats.FailedJobs,
		"queue_length":   stats.QueueLength,
		"max_concurrent": stats.MaxConcurrent,
		"jobs":           s.worker.JobRuns(),
	}
}

// Trigger starts a registered job in the background
func (s *JobService) Trigger(name string) error {
	return s.worker.Trigger(name)
}

// Run executes a registered job synchronously
func (s *JobService) Run(ctx context.Context, name string) error {
	return s.worker.RunNow(ctx, name)
}
