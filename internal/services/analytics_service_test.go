package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) createLedgerEntry(txType, status, amount string, date time.Time) {
	f.t.Helper()
	require.NoError(f.t, f.repos.Transaction.Create(f.ctx, &models.Transaction{
		TenantID: f.tenant.ID,
		Type:     txType,
		Category: "General",
		Amount:   decimal.RequireFromString(amount),
		Date:     date,
		Status:   status,
	}))
}

func TestAnalyticsSummary(t *testing.T) {
	f := newFixture(t)
	income, expense := models.TransactionTypeIncome, models.TransactionTypeExpense
	paid, pending := models.TransactionStatusPaid, models.TransactionStatusPending

	f.createLedgerEntry(income, paid, "500", day(2023, time.December, 12))
	f.createLedgerEntry(expense, paid, "300", day(2023, time.December, 28))
	f.createLedgerEntry(income, paid, "1000", day(2024, time.January, 1))
	f.createLedgerEntry(income, pending, "300", day(2024, time.January, 20))
	f.createLedgerEntry(expense, paid, "400.50", day(2024, time.January, 31))
	f.createLedgerEntry(expense, pending, "200", day(2024, time.January, 25))
	f.createLedgerEntry(income, paid, "999", day(2024, time.February, 1))

	customer := f.createCustomer("pagos@hotelsol.test")
	due := day(2024, time.February, 1)
	f.createInvoice(customer, models.InvoiceStatusSent, due, "250.00")
	f.createInvoice(customer, models.InvoiceStatusSent, due, "50.00")
	f.createInvoice(customer, models.InvoiceStatusOverdue, due, "100.00")
	f.createInvoice(customer, models.InvoiceStatusPaid, due, "999.00")

	svc := NewAnalyticsService(f.repos.Analytics, clockOn(2024, time.January, 10))
	summary, err := svc.Summary(f.ctx, f.tenant.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "2024-01", summary.Period)
	assertSameDay(t, day(2024, time.January, 31), summary.To)
	assertDecimal(t, "1000", summary.IncomePaid)
	assertDecimal(t, "300", summary.IncomePending)
	assertDecimal(t, "400.50", summary.ExpensePaid)
	assertDecimal(t, "200", summary.ExpensePending)
	assertDecimal(t, "599.50", summary.Net)
	assertDecimal(t, "200", summary.PreviousNet)
	assert.InDelta(t, 199.8, summary.NetChangePercentage, 0.001)

	require.Len(t, summary.Receivables, 2)
	assert.Equal(t, models.InvoiceStatusOverdue, summary.Receivables[0].Status)
	assert.Equal(t, int64(1), summary.Receivables[0].Count)
	assert.Equal(t, models.InvoiceStatusSent, summary.Receivables[1].Status)
	assert.Equal(t, int64(2), summary.Receivables[1].Count)
	assertDecimal(t, "300", summary.Receivables[1].Total)
}

func TestAnalyticsSummary_OtherTenantAndBadPeriod(t *testing.T) {
	f := newFixture(t)
	f.createLedgerEntry(models.TransactionTypeIncome, models.TransactionStatusPaid, "75", day(2024, time.March, 3))

	svc := NewAnalyticsService(f.repos.Analytics, clockOn(2024, time.March, 10))

	other := f.createTenant("Agencia Sur", 10, 0)
	summary, err := svc.Summary(f.ctx, other.ID, "2024-03")
	require.NoError(t, err)
	assert.True(t, summary.Net.IsZero())
	assert.Empty(t, summary.Receivables)

	summary, err = svc.Summary(f.ctx, f.tenant.ID, "2024-03")
	require.NoError(t, err)
	assertDecimal(t, "75", summary.Net)
	assert.Equal(t, 100.0, summary.NetChangePercentage)

	_, err = svc.Summary(f.ctx, f.tenant.ID, "03-2024")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCalculatePercentageChange(t *testing.T) {
	assert.Equal(t, 0.0, calculatePercentageChange(decimal.Zero, decimal.Zero))
	assert.Equal(t, 100.0, calculatePercentageChange(decimal.NewFromInt(5), decimal.Zero))
	assert.Equal(t, -50.0, calculatePercentageChange(decimal.NewFromInt(50), decimal.NewFromInt(100)))
	assert.Equal(t, 300.0, calculatePercentageChange(decimal.NewFromInt(100), decimal.NewFromInt(-50)))
}
