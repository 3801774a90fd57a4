package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.repos, f.audit, clockOn(2024, time.January, 10))

	user, err := svc.Create(f.ctx, f.actor(), CreateUserInput{
		Email: " Ana@Norte.test ", FullName: "Ana López", Salary: decimal.RequireFromString("1200.555"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@norte.test", user.Email)
	assert.Equal(t, models.RoleEmployee, user.Role)
	assert.True(t, user.Active)
	assertDecimal(t, "1200.56", user.Salary)

	_, err = svc.Create(f.ctx, f.actor(), CreateUserInput{Email: "ana@norte.test", FullName: "Otra Ana"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = svc.Create(f.ctx, f.actor(), CreateUserInput{Email: "x@norte.test", FullName: "X", Role: "owner"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(f.ctx, f.actor(), CreateUserInput{Email: "y@norte.test", FullName: "Y", Salary: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(f.ctx, f.actor(), CreateUserInput{Email: "c@cliente.test", FullName: "C", Role: "client"})
	assert.ErrorIs(t, err, ErrValidation)

	customer := f.createCustomer("cliente@norte.test")
	client, err := svc.Create(f.ctx, f.actor(), CreateUserInput{Email: "c@cliente.test", FullName: "C", Role: "CLIENT", CustomerID: &customer.ID})
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, client.Role)
}

func TestDeactivate_BeforePaymentDay(t *testing.T) {
	f := newFixture(t)
	emp := f.createEmployee("ana@norte.test", "3000")
	f.createAdvance(emp, "500", day(2024, time.January, 2))
	svc := NewUserService(f.repos, f.audit, clockOn(2024, time.January, 10))

	result, err := svc.Deactivate(f.ctx, f.actor(), emp.ID)
	require.NoError(t, err)

	assert.False(t, result.User.Active)
	require.NotNil(t, result.Payroll)
	assert.Equal(t, "2023-12", result.Payroll.Period)
	assertDecimal(t, "2500", result.Payroll.NetSalary)
	assert.Equal(t, "2024-01-15", result.PaymentDate)

	require.NotNil(t, result.Transaction)
	assert.Equal(t, models.TransactionStatusPending, result.Transaction.Status)
	assertDecimal(t, "2500", result.Transaction.Amount)
	assertSameDay(t, day(2024, time.January, 15), result.Transaction.Date)

	stored, err := svc.FindByID(f.ctx, f.tenant.ID, emp.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestDeactivate_OnAndAfterPaymentDay(t *testing.T) {
	cases := []struct {
		name    string
		today   time.Time
		period  string
		payDate string
	}{
		{"on payment day", day(2024, time.January, 15), "2023-12", "2024-01-15"},
		{"after payment day", day(2024, time.January, 16), "2024-01", "2024-02-15"},
		{"year end rollover", day(2024, time.December, 20), "2024-12", "2025-01-15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			emp := f.createEmployee("ana@norte.test", "3000")
			clock := clockOn(tc.today.Year(), tc.today.Month(), tc.today.Day())

			result, err := NewUserService(f.repos, f.audit, clock).Deactivate(f.ctx, f.actor(), emp.ID)
			require.NoError(t, err)
			require.NotNil(t, result.Payroll)
			assert.Equal(t, tc.period, result.Payroll.Period)
			assert.Equal(t, tc.payDate, result.PaymentDate)
		})
	}
}

func TestDeactivate_ExistingPayrollIsNotDuplicated(t *testing.T) {
	f := newFixture(t)
	emp := f.createEmployee("ana@norte.test", "3000")
	clock := clockOn(2024, time.January, 10)
	_, err := f.payrollService(clock).GeneratePayroll(f.ctx, f.tenant.ID, "2023-12")
	require.NoError(t, err)

	result, err := NewUserService(f.repos, f.audit, clock).Deactivate(f.ctx, f.actor(), emp.ID)
	require.NoError(t, err)
	assert.False(t, result.User.Active)
	assert.Nil(t, result.Payroll)
	assert.Nil(t, result.Transaction)
	assert.Empty(t, f.transactions())
}

func TestDeactivate_ClientAndInactiveUsers(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	client := f.createUser(f.tenant.ID, "portal@cliente.test", models.RoleClient, "0", &customer.ID)
	svc := NewUserService(f.repos, f.audit, clockOn(2024, time.January, 10))

	result, err := svc.Deactivate(f.ctx, f.actor(), client.ID)
	require.NoError(t, err)
	assert.False(t, result.User.Active)
	assert.Nil(t, result.Payroll)

	// a second termination is a no-op
	again, err := svc.Deactivate(f.ctx, f.actor(), client.ID)
	require.NoError(t, err)
	assert.False(t, again.User.Active)

	_, err = svc.Deactivate(f.ctx, f.actor(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.transactions())
}

func TestUpdateSalary(t *testing.T) {
	f := newFixture(t)
	emp := f.createEmployee("ana@norte.test", "3000")
	svc := NewUserService(f.repos, f.audit, clockOn(2024, time.January, 10))

	_, err := svc.UpdateSalary(f.ctx, f.actor(), emp.ID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateSalary(f.ctx, f.actor(), emp.ID, decimal.RequireFromString("3500"))
	require.NoError(t, err)
	assertDecimal(t, "3500", updated.Salary)
}
