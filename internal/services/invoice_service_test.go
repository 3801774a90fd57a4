package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInvoiceService_CreateComputesTotals(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	svc := NewInvoiceService(f.repos, f.audit, clockOn(2024, time.January, 10))

	inv, err := svc.Create(f.ctx, f.actor(), CreateInvoiceInput{
		CustomerID: customer.ID,
		Number:     " F-001 ",
		TaxRate:    dec("15"),
		DueDate:    time.Date(2024, time.February, 10, 18, 30, 0, 0, time.UTC),
		Items: []InvoiceItemInput{
			{Description: "Diseño", Quantity: dec("2"), UnitPrice: dec("500")},
			{Description: "Hosting", Quantity: dec("1"), UnitPrice: dec("150")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.InvoiceStatusDraft, inv.Status)
	assert.Equal(t, "F-001", inv.Number)
	assertDecimal(t, "1150", inv.Subtotal)
	assertDecimal(t, "172.50", inv.TaxAmount)
	assertDecimal(t, "1322.50", inv.Total)
	assert.Equal(t, day(2024, time.February, 10), inv.DueDate)
	assert.Equal(t, day(2024, time.January, 10), inv.IssueDate)

	stored := f.reloadInvoice(inv.ID)
	assert.Len(t, stored.Items, 2)
	assertDecimal(t, "1322.50", stored.Total)
}

func TestInvoiceService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	svc := NewInvoiceService(f.repos, f.audit, clockOn(2024, time.January, 10))
	item := []InvoiceItemInput{{Description: "Servicio", Quantity: dec("1"), UnitPrice: dec("10")}}
	due := day(2024, time.February, 1)

	cases := []struct {
		name string
		in   CreateInvoiceInput
		want error
	}{
		{"unknown customer", CreateInvoiceInput{CustomerID: 9999, DueDate: due, Items: item}, ErrNotFound},
		{"no items", CreateInvoiceInput{CustomerID: customer.ID, DueDate: due}, ErrValidation},
		{"tax above 100", CreateInvoiceInput{CustomerID: customer.ID, TaxRate: dec("101"), DueDate: due, Items: item}, ErrValidation},
		{"missing due date", CreateInvoiceInput{CustomerID: customer.ID, Items: item}, ErrValidation},
		{"due before issue", CreateInvoiceInput{CustomerID: customer.ID, IssueDate: due, DueDate: due.AddDate(0, 0, -1), Items: item}, ErrValidation},
		{"zero quantity", CreateInvoiceInput{CustomerID: customer.ID, DueDate: due, Items: []InvoiceItemInput{{Description: "x", Quantity: dec("0"), UnitPrice: dec("1")}}}, ErrValidation},
		{"negative price", CreateInvoiceInput{CustomerID: customer.ID, DueDate: due, Items: []InvoiceItemInput{{Description: "x", Quantity: dec("1"), UnitPrice: dec("-1")}}}, ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(f.ctx, f.actor(), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestInvoiceService_UpdateReplacesItems(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	inv := f.createInvoice(customer, models.InvoiceStatusSent, day(2024, time.February, 1), "100")
	svc := NewInvoiceService(f.repos, f.audit, clockOn(2024, time.January, 10))

	tax := dec("10")
	updated, err := svc.Update(f.ctx, f.actor(), inv.ID, UpdateInvoiceInput{
		TaxRate: &tax,
		Items: []InvoiceItemInput{
			{Description: "Consultoría", Quantity: dec("3"), UnitPrice: dec("200")},
		},
	})
	require.NoError(t, err)
	assertDecimal(t, "600", updated.Subtotal)
	assertDecimal(t, "60", updated.TaxAmount)
	assertDecimal(t, "660", updated.Total)

	stored := f.reloadInvoice(inv.ID)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Consultoría", stored.Items[0].Description)
	assertDecimal(t, "660", stored.Total)
	assert.Equal(t, models.InvoiceStatusSent, stored.Status)

	// nil items keep the current lines
	notes := "ajuste"
	kept, err := svc.Update(f.ctx, f.actor(), inv.ID, UpdateInvoiceInput{Notes: &notes})
	require.NoError(t, err)
	assert.Len(t, kept.Items, 1)
	assertDecimal(t, "660", kept.Total)
}

func TestInvoiceService_TerminalInvoicesAreFrozen(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	paid := f.createInvoice(customer, models.InvoiceStatusPaid, day(2024, time.February, 1), "100")
	svc := NewInvoiceService(f.repos, f.audit, clockOn(2024, time.January, 10))

	notes := "x"
	_, err := svc.Update(f.ctx, f.actor(), paid.ID, UpdateInvoiceInput{Notes: &notes})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Cancel(f.ctx, f.actor(), paid.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, models.InvoiceStatusPaid, f.reloadInvoice(paid.ID).Status)
}

func TestInvoiceService_Cancel(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	inv := f.createInvoice(customer, models.InvoiceStatusOverdue, day(2024, time.January, 1), "100")
	svc := NewInvoiceService(f.repos, f.audit, clockOn(2024, time.January, 10))

	cancelled, err := svc.Cancel(f.ctx, f.actor(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusCancelled, cancelled.Status)
	assert.Equal(t, models.InvoiceStatusCancelled, f.reloadInvoice(inv.ID).Status)

	// cancelled invoices drop out of the lifecycle scan
	summary, err := f.monitor(clockOn(2024, time.January, 10), nil).TickInvoiceLifecycle(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Scanned)
}
