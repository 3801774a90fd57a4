package statemachine

import (
	"context"
	"testing"

	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceFSM_MarkOverdue(t *testing.T) {
	ctx := context.Background()

	for _, status := range []string{models.InvoiceStatusDraft, models.InvoiceStatusSent} {
		invoice := &models.Invoice{Status: status}
		require.NoError(t, NewInvoiceFSM(invoice).MarkOverdue(ctx))
		assert.Equal(t, models.InvoiceStatusOverdue, invoice.Status)
	}

	for _, status := range []string{models.InvoiceStatusOverdue, models.InvoiceStatusPaid, models.InvoiceStatusCancelled} {
		invoice := &models.Invoice{Status: status}
		assert.Error(t, NewInvoiceFSM(invoice).MarkOverdue(ctx), status)
		assert.Equal(t, status, invoice.Status)
	}
}

func TestInvoiceFSM_TerminalStates(t *testing.T) {
	ctx := context.Background()

	for _, status := range []string{models.InvoiceStatusPaid, models.InvoiceStatusCancelled} {
		f := NewInvoiceFSM(&models.Invoice{Status: status})
		assert.False(t, f.Can(InvoiceEventSend))
		assert.False(t, f.Can(InvoiceEventPay))
		assert.False(t, f.Can(InvoiceEventCancel))
		assert.Error(t, f.Pay(ctx))
	}
}

func TestInvoiceFSM_SendOnlyFromDraft(t *testing.T) {
	ctx := context.Background()

	draft := &models.Invoice{Status: models.InvoiceStatusDraft}
	require.NoError(t, NewInvoiceFSM(draft).Send(ctx))
	assert.Equal(t, models.InvoiceStatusSent, draft.Status)

	overdue := &models.Invoice{Status: models.InvoiceStatusOverdue}
	assert.Error(t, NewInvoiceFSM(overdue).Send(ctx))
}

func TestPayrollFSM_Pay(t *testing.T) {
	ctx := context.Background()

	payroll := &models.Payroll{Status: models.PayrollStatusPending}
	require.NoError(t, NewPayrollFSM(payroll).Pay(ctx))
	assert.Equal(t, models.PayrollStatusPaid, payroll.Status)

	assert.Error(t, NewPayrollFSM(payroll).Pay(ctx))
}

func TestInvoicePaymentFSM(t *testing.T) {
	ctx := context.Background()

	failed := &models.InvoicePayment{Status: models.InvoicePaymentStatusPending}
	require.NoError(t, NewInvoicePaymentFSM(failed).Fail(ctx, "timeout"))
	assert.Equal(t, models.InvoicePaymentStatusFailed, failed.Status)
	require.NotNil(t, failed.FailureReason)
	assert.Equal(t, "timeout", *failed.FailureReason)

	assert.Error(t, NewInvoicePaymentFSM(failed).Confirm(ctx))

	paid := &models.InvoicePayment{Status: models.InvoicePaymentStatusPending}
	require.NoError(t, NewInvoicePaymentFSM(paid).Confirm(ctx))
	assert.Equal(t, models.InvoicePaymentStatusPaid, paid.Status)
}
