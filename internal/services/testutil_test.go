package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/config"
	"github.com/sjperalta/fintera-ops/internal/database"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/internal/sms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	t      *testing.T
	ctx    context.Context
	db     *gorm.DB
	repos  *repository.Repositories
	audit  *AuditService
	notify *NotificationService
	tenant *models.Tenant
	admin  *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect("sqlite://file:"+uuid.NewString()+"?mode=memory&cache=shared", "test")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repos := repository.NewRepositories(db)
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		db:     db,
		repos:  repos,
		audit:  NewAuditService(repos.Audit),
		notify: NewNotificationService(repos.Notification, repos.User),
	}
	f.tenant = f.createTenant("Agencia Norte", 15, 0)
	f.admin = f.createUser(f.tenant.ID, "admin@norte.test", models.RoleAdmin, "0", nil)
	return f
}

func (f *fixture) actor() Actor {
	return Actor{TenantID: f.tenant.ID, UserID: f.admin.ID}
}

func (f *fixture) createTenant(name string, paymentDay, visibility int) *models.Tenant {
	f.t.Helper()
	tenant := &models.Tenant{
		Name:                        name,
		Status:                      models.TenantStatusActive,
		CalculationStartDay:         1,
		CalculationEndDay:           31,
		PaymentDay:                  paymentDay,
		ExpenseVisibilityDaysBefore: visibility,
	}
	require.NoError(f.t, f.repos.Tenant.Create(f.ctx, tenant))
	return tenant
}

func (f *fixture) createUser(tenantID uint, email, role, salary string, customerID *uint) *models.User {
	f.t.Helper()
	user := &models.User{
		TenantID:   tenantID,
		Email:      email,
		FullName:   email,
		Role:       role,
		Salary:     decimal.RequireFromString(salary),
		Active:     true,
		CustomerID: customerID,
	}
	require.NoError(f.t, f.repos.User.Create(f.ctx, user))
	return user
}

func (f *fixture) createEmployee(email, salary string) *models.User {
	return f.createUser(f.tenant.ID, email, models.RoleEmployee, salary, nil)
}

func (f *fixture) createCustomer(email string) *models.Customer {
	f.t.Helper()
	customer := &models.Customer{TenantID: f.tenant.ID, Name: "Cliente " + email, Email: email, Phone: "+50499990000"}
	require.NoError(f.t, f.repos.Customer.Create(f.ctx, customer))
	return customer
}

func (f *fixture) createInvoice(customer *models.Customer, status string, due time.Time, total string) *models.Invoice {
	f.t.Helper()
	amount := decimal.RequireFromString(total)
	inv := &models.Invoice{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		Subtotal:   amount,
		TaxRate:    decimal.Zero,
		TaxAmount:  decimal.Zero,
		Total:      amount,
		IssueDate:  due.AddDate(0, 0, -30),
		DueDate:    due,
		Status:     status,
		Items: []models.InvoiceItem{
			{Description: "Servicios", Quantity: decimal.NewFromInt(1), UnitPrice: amount, Total: amount},
		},
	}
	require.NoError(f.t, f.repos.Invoice.Create(f.ctx, inv))
	return inv
}

func (f *fixture) createAdvance(user *models.User, amount string, date time.Time) *models.EmployeeAdvance {
	f.t.Helper()
	advance := &models.EmployeeAdvance{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Amount:   decimal.RequireFromString(amount),
		Date:     date,
	}
	require.NoError(f.t, f.repos.Advance.Create(f.ctx, advance))
	return advance
}

func (f *fixture) reloadInvoice(id uint) *models.Invoice {
	f.t.Helper()
	inv, err := f.repos.Invoice.FindByID(f.ctx, f.tenant.ID, id)
	require.NoError(f.t, err)
	return inv
}

func (f *fixture) transactions() []models.Transaction {
	f.t.Helper()
	var txs []models.Transaction
	require.NoError(f.t, f.db.Order("id ASC").Find(&txs).Error)
	return txs
}

func (f *fixture) notifications() []models.Notification {
	f.t.Helper()
	var ns []models.Notification
	require.NoError(f.t, f.db.Order("id ASC").Find(&ns).Error)
	return ns
}

func (f *fixture) payrollService(clock Clock) *PayrollService {
	return NewPayrollService(f.repos, f.notify, NewEmailService(&config.Config{}), f.audit, nil, clock)
}

func (f *fixture) monitor(clock Clock, dispatcher sms.Dispatcher) *InvoiceMonitorService {
	return NewInvoiceMonitorService(f.repos, f.notify, dispatcher, clock)
}

// clockOn pins "today" to 10:00 UTC of the given date
func clockOn(y int, m time.Month, d int) Clock {
	return NewFixedClock(func() time.Time {
		return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
	}, time.UTC)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func assertSameDay(t *testing.T, expected, actual time.Time) {
	t.Helper()
	assert.Equal(t, expected.Format("2006-01-02"), actual.UTC().Format("2006-01-02"))
}
