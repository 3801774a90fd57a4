package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/calendar"
	"github.com/sjperalta/fintera-ops/internal/jobs"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/internal/statemachine"
	"github.com/sjperalta/fintera-ops/pkg/logger"
	"gorm.io/gorm"
)

// PayrollService generates payrolls, nets advances and settles them
type PayrollService struct {
	repos         *repository.Repositories
	notifications *NotificationService
	email         *EmailService
	audit         *AuditService
	worker        *jobs.Worker
	clock         Clock
}

func NewPayrollService(repos *repository.Repositories, notifications *NotificationService, email *EmailService, audit *AuditService, worker *jobs.Worker, clock Clock) *PayrollService {
	return &PayrollService{
		repos:         repos,
		notifications: notifications,
		email:         email,
		audit:         audit,
		worker:        worker,
		clock:         clock,
	}
}

// UpdatePayrollInput is an explicit edit of a pending payroll
type UpdatePayrollInput struct {
	Bonus      *decimal.Decimal `json:"bonus"`
	Deductions *decimal.Decimal `json:"deductions"`
	Notes      *string          `json:"notes"`
}

// GeneratePayroll creates the payrolls of period for every active employee with a salary.
// Employees who already have one for the period are skipped, so reruns create nothing.
func (s *PayrollService) GeneratePayroll(ctx context.Context, tenantID uint, period string) ([]models.Payroll, error) {
	return s.generate(ctx, tenantID, period, nil)
}

// generate runs the per-employee generation. When pendingDate is set each new payroll is
// linked to a PENDING salary expense dated on it, written in the same unit as the payroll.
// One employee's failure is logged and does not stop the others.
func (s *PayrollService) generate(ctx context.Context, tenantID uint, period string, pendingDate *time.Time) ([]models.Payroll, error) {
	if _, err := calendar.ParsePeriod(period); err != nil {
		return nil, validationError("%v", err)
	}

	employees, err := s.repos.User.FindPayrollEligible(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}

	var created []models.Payroll
	var failures []error
	for i := range employees {
		emp := &employees[i]
		var payroll *models.Payroll
		err := s.repos.WithTransaction(ctx, func(tx *repository.Repositories) error {
			var err error
			payroll, err = generateForEmployee(ctx, tx, tenantID, emp, period, pendingDate)
			return err
		})
		if err != nil {
			if repository.IsUniqueViolation(err) {
				continue
			}
			failures = append(failures, fmt.Errorf("employee %d: %w", emp.ID, err))
			logger.WithTenant(tenantID).Error("[Payroll] Failed to generate payroll",
				"user_id", emp.ID, "period", period, "error", err)
			continue
		}
		if payroll != nil {
			payroll.User = *emp
			created = append(created, *payroll)
		}
	}

	if len(created) > 0 {
		logger.WithTenant(tenantID).Info("[Payroll] Payrolls generated", "period", period, "count", len(created))
	}
	return created, errors.Join(failures...)
}

// generateForEmployee is the unit of work shared by generation, scheduling and termination.
// It returns nil when the employee already has a payroll for period.
func generateForEmployee(ctx context.Context, tx *repository.Repositories, tenantID uint, emp *models.User, period string, pendingDate *time.Time) (*models.Payroll, error) {
	exists, err := tx.Payroll.ExistsForPeriod(ctx, tenantID, emp.ID, period)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	advances, err := tx.Advance.FindUndeducted(ctx, tenantID, emp.ID)
	if err != nil {
		return nil, err
	}
	deductions := decimal.Zero
	ids := make([]uint, 0, len(advances))
	for _, a := range advances {
		deductions = deductions.Add(a.Amount)
		ids = append(ids, a.ID)
	}

	payroll := &models.Payroll{
		TenantID:   tenantID,
		UserID:     emp.ID,
		Period:     period,
		BaseSalary: emp.Salary,
		Bonus:      decimal.Zero,
		Deductions: deductions,
		Status:     models.PayrollStatusPending,
	}
	payroll.RecalculateNet()
	if err := tx.Payroll.Create(ctx, payroll); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		if err := tx.Advance.MarkDeducted(ctx, ids, payroll.ID); err != nil {
			return nil, err
		}
	}

	if pendingDate != nil {
		if err := tx.Transaction.Create(ctx, salaryTransaction(payroll, emp, *pendingDate, models.TransactionStatusPending)); err != nil {
			return nil, err
		}
	}
	return payroll, nil
}

func salaryTransaction(p *models.Payroll, emp *models.User, date time.Time, status string) *models.Transaction {
	payrollID := p.ID
	name := emp.FullName
	if name == "" {
		name = emp.Email
	}
	return &models.Transaction{
		TenantID:    p.TenantID,
		Type:        models.TransactionTypeExpense,
		Category:    models.CategorySalary,
		Amount:      p.NetSalary,
		Description: fmt.Sprintf("Salario %s - %s", p.Period, name),
		Date:        date,
		Status:      status,
		PayrollID:   &payrollID,
	}
}

// Pay settles a payroll. Paying a PAID payroll is a no-op.
func (s *PayrollService) Pay(ctx context.Context, actor Actor, id uint) (*models.Payroll, error) {
	payroll, err := s.repos.Payroll.FindByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, mapStoreError(err, "payroll")
	}
	if payroll.IsPaid() {
		return payroll, nil
	}

	today := s.clock.Today()
	err = s.repos.WithTransaction(ctx, func(tx *repository.Repositories) error {
		linked, err := tx.Transaction.FindByPayrollID(ctx, payroll.ID)
		switch {
		case err == nil:
			if err := tx.Transaction.MarkPaid(ctx, linked.ID, today); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Transaction.Create(ctx, salaryTransaction(payroll, &payroll.User, today, models.TransactionStatusPaid)); err != nil {
				return err
			}
		default:
			return err
		}

		if err := statemachine.NewPayrollFSM(payroll).Pay(ctx); err != nil {
			return err
		}
		payroll.PaymentDate = &today
		return tx.Payroll.Update(ctx, payroll)
	})
	if err != nil {
		payroll.Status = models.PayrollStatusPending
		payroll.PaymentDate = nil
		return nil, fmt.Errorf("failed to pay payroll: %w", err)
	}

	s.audit.Logf(ctx, actor, AuditActionPay, "Payroll", payroll.ID, "period=%s net=%s", payroll.Period, payroll.NetSalary.StringFixed(2))

	if s.worker != nil && s.email != nil {
		paid := *payroll
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.email.SendPayrollPaid(ctx, &paid)
		})
	}
	return payroll, nil
}

// Update changes bonus, deductions or notes of a pending payroll and recomputes net.
// A linked pending transaction is replaced by one carrying the new amount.
func (s *PayrollService) Update(ctx context.Context, actor Actor, id uint, in UpdatePayrollInput) (*models.Payroll, error) {
	payroll, err := s.repos.Payroll.FindByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, mapStoreError(err, "payroll")
	}
	if payroll.IsPaid() {
		return nil, fmt.Errorf("%w: payroll already paid", ErrInvalidState)
	}

	if in.Bonus != nil {
		if in.Bonus.IsNegative() {
			return nil, validationError("la bonificación no puede ser negativa")
		}
		payroll.Bonus = in.Bonus.Round(2)
	}
	if in.Deductions != nil {
		if in.Deductions.IsNegative() {
			return nil, validationError("las deducciones no pueden ser negativas")
		}
		payroll.Deductions = in.Deductions.Round(2)
	}
	if in.Notes != nil {
		payroll.Notes = *in.Notes
	}
	payroll.RecalculateNet()

	err = s.repos.WithTransaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Payroll.Update(ctx, payroll); err != nil {
			return err
		}
		linked, err := tx.Transaction.FindByPayrollID(ctx, payroll.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if linked.Status != models.TransactionStatusPending || linked.Amount.Equal(payroll.NetSalary) {
			return nil
		}
		if err := tx.Transaction.DeleteByPayrollID(ctx, payroll.ID); err != nil {
			return err
		}
		return tx.Transaction.Create(ctx, salaryTransaction(payroll, &payroll.User, linked.Date, models.TransactionStatusPending))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update payroll: %w", err)
	}

	s.audit.Logf(ctx, actor, AuditActionUpdate, "Payroll", payroll.ID, "bonus=%s deductions=%s net=%s",
		payroll.Bonus.StringFixed(2), payroll.Deductions.StringFixed(2), payroll.NetSalary.StringFixed(2))
	return payroll, nil
}

// Delete removes a payroll and its linked transaction in one unit. Advances it consumed stay deducted.
func (s *PayrollService) Delete(ctx context.Context, actor Actor, id uint) error {
	payroll, err := s.repos.Payroll.FindByID(ctx, actor.TenantID, id)
	if err != nil {
		return mapStoreError(err, "payroll")
	}

	err = s.repos.WithTransaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Transaction.DeleteByPayrollID(ctx, payroll.ID); err != nil {
			return err
		}
		return tx.Payroll.Delete(ctx, payroll.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete payroll: %w", err)
	}

	s.audit.Logf(ctx, actor, AuditActionDelete, "Payroll", payroll.ID, "period=%s user_id=%d", payroll.Period, payroll.UserID)
	return nil
}

// Generate is the manual generation entry point
func (s *PayrollService) Generate(ctx context.Context, actor Actor, period string) ([]models.Payroll, error) {
	created, err := s.GeneratePayroll(ctx, actor.TenantID, period)
	if errors.Is(err, ErrValidation) {
		return nil, err
	}
	s.audit.Logf(ctx, actor, AuditActionGenerate, "Payroll", 0, "period=%s created=%d", period, len(created))
	return created, err
}

func (s *PayrollService) FindByID(ctx context.Context, tenantID, id uint) (*models.Payroll, error) {
	p, err := s.repos.Payroll.FindByID(ctx, tenantID, id)
	return p, mapStoreError(err, "payroll")
}

// List returns a tenant's payrolls, optionally restricted to one period
func (s *PayrollService) List(ctx context.Context, tenantID uint, period string) ([]models.Payroll, error) {
	if period != "" {
		if _, err := calendar.ParsePeriod(period); err != nil {
			return nil, validationError("%v", err)
		}
	}
	return s.repos.Payroll.ListByPeriod(ctx, tenantID, period)
}

// RecordAdvance stores a cash advance that the next generated payroll will net out
func (s *PayrollService) RecordAdvance(ctx context.Context, actor Actor, userID uint, amount decimal.Decimal, date time.Time, description string) (*models.EmployeeAdvance, error) {
	if !amount.IsPositive() {
		return nil, validationError("el monto debe ser mayor que cero")
	}
	if _, err := s.repos.User.FindByID(ctx, actor.TenantID, userID); err != nil {
		return nil, mapStoreError(err, "user")
	}
	if date.IsZero() {
		date = s.clock.Today()
	}
	advance := &models.EmployeeAdvance{
		TenantID:    actor.TenantID,
		UserID:      userID,
		Amount:      amount.Round(2),
		Date:        date,
		Description: description,
	}
	if err := s.repos.Advance.Create(ctx, advance); err != nil {
		return nil, err
	}
	s.audit.Logf(ctx, actor, AuditActionCreate, "EmployeeAdvance", advance.ID, "user_id=%d amount=%s", userID, advance.Amount.StringFixed(2))
	return advance, nil
}
