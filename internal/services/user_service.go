package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/calendar"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/pkg/logger"
)

// UserService handles tenant members: staff on payroll and client users of customers
type UserService struct {
	repos *repository.Repositories
	audit *AuditService
	clock Clock
}

func NewUserService(repos *repository.Repositories, audit *AuditService, clock Clock) *UserService {
	return &UserService{repos: repos, audit: audit, clock: clock}
}

// CreateUserInput holds the fields of a new tenant member
type CreateUserInput struct {
	Email      string          `json:"email" binding:"required,email"`
	FullName   string          `json:"full_name" binding:"required"`
	Phone      string          `json:"phone"`
	Role       string          `json:"role"`
	Salary     decimal.Decimal `json:"salary"`
	CustomerID *uint           `json:"customer_id"`
}

// TerminationResult describes what deactivating an employee produced
type TerminationResult struct {
	User        *models.User        `json:"user"`
	Payroll     *models.Payroll     `json:"payroll,omitempty"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
	PaymentDate string              `json:"payment_date,omitempty"`
}

func (s *UserService) FindByID(ctx context.Context, tenantID, id uint) (*models.User, error) {
	user, err := s.repos.User.FindByID(ctx, tenantID, id)
	return user, mapStoreError(err, "user")
}

func (s *UserService) List(ctx context.Context, tenantID uint, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.repos.User.ListByTenant(ctx, tenantID, query)
}

func (s *UserService) Create(ctx context.Context, actor Actor, in CreateUserInput) (*models.User, error) {
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = models.RoleEmployee
	}
	switch role {
	case models.RoleAdmin, models.RoleEmployee, models.RoleClient:
	default:
		return nil, validationError("rol inválido %q", in.Role)
	}
	if in.Salary.IsNegative() {
		return nil, validationError("el salario no puede ser negativo")
	}
	if role == models.RoleClient {
		if in.CustomerID == nil {
			return nil, validationError("un usuario cliente requiere customer_id")
		}
		if _, err := s.repos.Customer.FindByID(ctx, actor.TenantID, *in.CustomerID); err != nil {
			return nil, mapStoreError(err, "customer")
		}
	}

	user := &models.User{
		TenantID:   actor.TenantID,
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		FullName:   strings.TrimSpace(in.FullName),
		Phone:      in.Phone,
		Role:       role,
		Salary:     in.Salary.Round(2),
		Active:     true,
		CustomerID: in.CustomerID,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, mapStoreError(err, "user")
	}
	s.audit.Logf(ctx, actor, AuditActionCreate, "User", user.ID, "Usuario creado: %s (%s) - Rol: %s", user.FullName, user.Email, user.Role)
	return user, nil
}

// UpdateSalary changes an employee's base salary; payrolls already generated keep their amounts
func (s *UserService) UpdateSalary(ctx context.Context, actor Actor, id uint, salary decimal.Decimal) (*models.User, error) {
	if salary.IsNegative() {
		return nil, validationError("el salario no puede ser negativo")
	}
	user, err := s.repos.User.FindByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, mapStoreError(err, "user")
	}
	previous := user.Salary
	user.Salary = salary.Round(2)
	if err := s.repos.User.Update(ctx, user); err != nil {
		return nil, err
	}
	s.audit.Logf(ctx, actor, AuditActionUpdate, "User", user.ID, "salary %s -> %s", previous.StringFixed(2), user.Salary.StringFixed(2))
	return user, nil
}

// Deactivate terminates a member. For salaried staff the payroll of the current period is
// synthesized when missing: the payment date is this month's payment day if today is on or
// before it, otherwise next month's, and the period is the month before that payment date.
// The payroll is linked to a PENDING expense dated on the payment date.
func (s *UserService) Deactivate(ctx context.Context, actor Actor, id uint) (*TerminationResult, error) {
	user, err := s.repos.User.FindByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, mapStoreError(err, "user")
	}
	result := &TerminationResult{User: user}
	if !user.Active {
		return result, nil
	}

	tenant, err := s.repos.Tenant.FindByID(ctx, actor.TenantID)
	if err != nil {
		return nil, mapStoreError(err, "tenant")
	}
	settings := tenant.PayrollSettings().Normalize()
	payEligible := user.IsPayrollEligible()

	paymentDate := calendar.NextPaymentDate(s.clock.Today(), settings.PaymentDay)
	period := calendar.PreviousPeriod(paymentDate)

	err = s.repos.WithTransaction(ctx, func(tx *repository.Repositories) error {
		user.Active = false
		if err := tx.User.Update(ctx, user); err != nil {
			return err
		}
		if !payEligible {
			return nil
		}
		payroll, err := generateForEmployee(ctx, tx, actor.TenantID, user, period, &paymentDate)
		if err != nil {
			return err
		}
		if payroll == nil {
			return nil
		}
		result.Payroll = payroll
		linked, err := tx.Transaction.FindByPayrollID(ctx, payroll.ID)
		if err != nil {
			return err
		}
		result.Transaction = linked
		return nil
	})
	if err != nil {
		user.Active = true
		return nil, fmt.Errorf("failed to deactivate user: %w", err)
	}

	if result.Payroll != nil {
		result.PaymentDate = paymentDate.Format("2006-01-02")
		logger.WithTenant(actor.TenantID).Info("[Payroll] Final payroll created on termination",
			"user_id", user.ID, "period", period, "payment_date", result.PaymentDate)
	}
	s.audit.Logf(ctx, actor, AuditActionDeactivate, "User", user.ID, "final_payroll=%t period=%s", result.Payroll != nil, period)
	return result, nil
}
