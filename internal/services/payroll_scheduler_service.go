package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sjperalta/fintera-ops/internal/calendar"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/pkg/logger"
)

// PayrollTickSummary reports what one scheduling pass did
type PayrollTickSummary struct {
	Tenants   int `json:"tenants"`
	Triggered int `json:"triggered"`
	Created   int `json:"created"`
	Failed    int `json:"failed"`
}

// PayrollSchedulerService decides, per tenant and day, whether payroll generation is due
type PayrollSchedulerService struct {
	repos         *repository.Repositories
	payroll       *PayrollService
	notifications *NotificationService
	clock         Clock
}

func NewPayrollSchedulerService(repos *repository.Repositories, payroll *PayrollService, notifications *NotificationService, clock Clock) *PayrollSchedulerService {
	return &PayrollSchedulerService{repos: repos, payroll: payroll, notifications: notifications, clock: clock}
}

// ScheduleDecision is the outcome of evaluating one tenant's settings for a day
type ScheduleDecision struct {
	Due       bool
	Candidate time.Time
	Period    string
}

// Decide evaluates settings for today. The candidate is today shifted by the visibility lead
// time; generation is due when it lands on the payment day, for the month before it.
func Decide(settings models.PayrollSettings, today time.Time) ScheduleDecision {
	if !settings.AutoGenerate {
		return ScheduleDecision{}
	}
	candidate := calendar.StartOfDay(today).AddDate(0, 0, settings.ExpenseVisibilityDaysBefore)
	if !calendar.IsPaymentDay(candidate, settings.PaymentDay) {
		return ScheduleDecision{Candidate: candidate}
	}
	return ScheduleDecision{
		Due:       true,
		Candidate: candidate,
		Period:    calendar.PreviousPeriod(candidate),
	}
}

// RunForTenant generates the tenant's payrolls when today is its scheduling day and links
// each new payroll to a PENDING expense dated on the candidate payment date.
func (s *PayrollSchedulerService) RunForTenant(ctx context.Context, tenantID uint, settings models.PayrollSettings, today time.Time) ([]models.Payroll, error) {
	decision := Decide(settings.Normalize(), today)
	if !decision.Due {
		return nil, nil
	}

	candidate := decision.Candidate
	created, err := s.payroll.generate(ctx, tenantID, decision.Period, &candidate)

	if len(created) > 0 {
		s.notifications.NotifyAdmins(ctx, tenantID, NotificationInput{
			Title:   "Planilla generada",
			Message: fmt.Sprintf("Se generaron %d planillas del período %s con fecha de pago %s.", len(created), decision.Period, candidate.Format("02/01/2006")),
			Type:    models.NotificationTypePayrollCreated,
		})
	}
	return created, err
}

// TickPayrollScheduling runs RunForTenant for every active tenant. A failing tenant is
// logged and does not abort the others.
func (s *PayrollSchedulerService) TickPayrollScheduling(ctx context.Context) (PayrollTickSummary, error) {
	var summary PayrollTickSummary

	tenants, err := s.repos.Tenant.FindActive(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load tenants: %w", err)
	}
	summary.Tenants = len(tenants)
	today := s.clock.Today()

	for i := range tenants {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		tenant := &tenants[i]
		settings := tenant.PayrollSettings()
		if Decide(settings.Normalize(), today).Due {
			summary.Triggered++
		}

		created, err := s.runSafely(ctx, tenant.ID, settings, today)
		summary.Created += len(created)
		if err != nil {
			summary.Failed++
			logger.WithTenant(tenant.ID).Error("[Payroll] Scheduling failed for tenant", "error", err)
		}
	}
	return summary, nil
}

func (s *PayrollSchedulerService) runSafely(ctx context.Context, tenantID uint, settings models.PayrollSettings, today time.Time) (created []models.Payroll, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.RunForTenant(ctx, tenantID, settings, today)
}

// Tick adapts TickPayrollScheduling to the worker's job signature
func (s *PayrollSchedulerService) Tick(ctx context.Context) error {
	summary, err := s.TickPayrollScheduling(ctx)
	if err != nil {
		return err
	}
	logger.Info("[Payroll] Tick finished", "tenants", summary.Tenants, "triggered", summary.Triggered,
		"created", summary.Created, "failed", summary.Failed)
	return nil
}
