package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProvider struct {
	calls    int
	requests []payments.LinkRequest
	err      error
}

func (p *fakeProvider) CreateLink(ctx context.Context, merchant payments.MerchantConfig, req payments.LinkRequest) (*payments.LinkResult, error) {
	p.calls++
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &payments.LinkResult{LinkID: "lnk_" + req.Reference, LinkURL: "https://pay.example/" + req.Reference}, nil
}

func (f *fixture) savePaymentConfig(active bool) {
	f.t.Helper()
	require.NoError(f.t, f.repos.Tenant.SavePaymentConfig(f.ctx, &models.PaymentProviderConfig{
		TenantID:   f.tenant.ID,
		Provider:   "pixelpay",
		MerchantID: "M-001",
		APIKey:     "secret",
		Currency:   "HNL",
		Active:     active,
	}))
}

func (f *fixture) paymentLinks(provider payments.Provider) *PaymentLinkService {
	return NewPaymentLinkService(f.repos, provider, nil, f.notify, f.audit, nil,
		clockOn(2024, time.January, 10), "https://api.example/callback", "USD")
}

func TestCreateLink_Success(t *testing.T) {
	f := newFixture(t)
	f.savePaymentConfig(true)
	customer := f.createCustomer("cliente@norte.test")
	inv := f.createInvoice(customer, models.InvoiceStatusDraft, day(2024, time.January, 20), "1150.50")

	provider := &fakeProvider{}
	payment, err := f.paymentLinks(provider).CreateLink(f.ctx, f.actor(), inv.ID, false)
	require.NoError(t, err)

	assert.Equal(t, models.InvoicePaymentStatusPending, payment.Status)
	assert.Equal(t, "HNL", payment.Currency)
	assert.Equal(t, "https://pay.example/"+payment.Reference, payment.LinkURL)
	assertDecimal(t, "1150.50", payment.Amount)
	assert.Equal(t, models.InvoiceStatusSent, f.reloadInvoice(inv.ID).Status)

	require.Len(t, provider.requests, 1)
	assert.Equal(t, "cliente@norte.test", provider.requests[0].CustomerEmail)
	assert.Equal(t, "https://api.example/callback", provider.requests[0].CallbackURL)
}

func TestCreateLink_Preconditions(t *testing.T) {
	f := newFixture(t)
	provider := &fakeProvider{}
	svc := f.paymentLinks(provider)

	noEmail := f.createCustomer("")
	inv := f.createInvoice(noEmail, models.InvoiceStatusDraft, day(2024, time.January, 20), "100")
	f.savePaymentConfig(true)
	_, err := svc.CreateLink(f.ctx, f.actor(), inv.ID, false)
	assert.ErrorIs(t, err, ErrMissingCustomerEmail)

	customer := f.createCustomer("cliente@norte.test")
	paid := f.createInvoice(customer, models.InvoiceStatusPaid, day(2024, time.January, 20), "100")
	_, err = svc.CreateLink(f.ctx, f.actor(), paid.ID, false)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.CreateLink(f.ctx, f.actor(), 9999, false)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, provider.calls)
}

func TestCreateLink_RequiresActiveConfig(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	inv := f.createInvoice(customer, models.InvoiceStatusDraft, day(2024, time.January, 20), "100")
	provider := &fakeProvider{}
	svc := f.paymentLinks(provider)

	_, err := svc.CreateLink(f.ctx, f.actor(), inv.ID, false)
	assert.ErrorIs(t, err, ErrPaymentConfigInactive)

	f.savePaymentConfig(false)
	_, err = svc.CreateLink(f.ctx, f.actor(), inv.ID, false)
	assert.ErrorIs(t, err, ErrPaymentConfigInactive)
	assert.Zero(t, provider.calls)
}

func TestCreateLink_ReusesPendingLink(t *testing.T) {
	f := newFixture(t)
	f.savePaymentConfig(true)
	customer := f.createCustomer("cliente@norte.test")
	inv := f.createInvoice(customer, models.InvoiceStatusDraft, day(2024, time.January, 20), "100")

	provider := &fakeProvider{}
	svc := f.paymentLinks(provider)
	first, err := svc.CreateLink(f.ctx, f.actor(), inv.ID, false)
	require.NoError(t, err)

	again, err := svc.CreateLink(f.ctx, f.actor(), inv.ID, true)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 1, provider.calls)

	fresh, err := svc.CreateLink(f.ctx, f.actor(), inv.ID, false)
	require.NoError(t, err)
	assert.NotEqual(t, first.Reference, fresh.Reference)
	assert.Equal(t, 2, provider.calls)
}

func TestCreateLink_ProviderFailure(t *testing.T) {
	f := newFixture(t)
	f.savePaymentConfig(true)
	customer := f.createCustomer("cliente@norte.test")
	inv := f.createInvoice(customer, models.InvoiceStatusDraft, day(2024, time.January, 20), "100")

	provider := &fakeProvider{err: errors.New("merchant disabled")}
	payment, err := f.paymentLinks(provider).CreateLink(f.ctx, f.actor(), inv.ID, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentProvider)

	require.NotNil(t, payment)
	stored, err := f.repos.InvoicePayment.FindByReference(f.ctx, payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaymentStatusFailed, stored.Status)
	require.NotNil(t, stored.FailureReason)
	assert.Contains(t, *stored.FailureReason, "merchant disabled")
	assert.Equal(t, models.InvoiceStatusDraft, f.reloadInvoice(inv.ID).Status)
}

func TestReconcile_PaidSettlesInvoice(t *testing.T) {
	f := newFixture(t)
	f.savePaymentConfig(true)
	customer := f.createCustomer("cliente@norte.test")
	inv := f.createInvoice(customer, models.InvoiceStatusDraft, day(2024, time.January, 20), "300")
	svc := f.paymentLinks(&fakeProvider{})

	payment, err := svc.CreateLink(f.ctx, f.actor(), inv.ID, false)
	require.NoError(t, err)

	reconciled, err := svc.Reconcile(f.ctx, payment.Reference, "paid")
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaymentStatusPaid, reconciled.Status)
	require.NotNil(t, reconciled.PaidAt)
	assert.Equal(t, models.InvoiceStatusPaid, f.reloadInvoice(inv.ID).Status)

	txs := f.transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, models.TransactionTypeIncome, txs[0].Type)
	assert.Equal(t, models.CategoryInvoicePayment, txs[0].Category)
	assert.Equal(t, models.TransactionStatusPaid, txs[0].Status)
	assertDecimal(t, "300", txs[0].Amount)
	require.NotNil(t, txs[0].InvoiceID)
	assert.Equal(t, inv.ID, *txs[0].InvoiceID)

	ns := f.notifications()
	require.Len(t, ns, 1)
	assert.Equal(t, f.admin.ID, ns[0].UserID)
	assert.Equal(t, models.NotificationTypeInvoicePaid, *ns[0].NotificationType)

	// a repeated callback changes nothing
	repeat, err := svc.Reconcile(f.ctx, payment.Reference, "PAID")
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaymentStatusPaid, repeat.Status)
	assert.Len(t, f.transactions(), 1)
	assert.Len(t, f.notifications(), 1)
}

func TestReconcile_Failed(t *testing.T) {
	f := newFixture(t)
	f.savePaymentConfig(true)
	customer := f.createCustomer("cliente@norte.test")
	inv := f.createInvoice(customer, models.InvoiceStatusDraft, day(2024, time.January, 20), "300")
	svc := f.paymentLinks(&fakeProvider{})

	payment, err := svc.CreateLink(f.ctx, f.actor(), inv.ID, false)
	require.NoError(t, err)

	reconciled, err := svc.Reconcile(f.ctx, payment.Reference, "FAILED")
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaymentStatusFailed, reconciled.Status)
	assert.Equal(t, models.InvoiceStatusSent, f.reloadInvoice(inv.ID).Status)
	assert.Empty(t, f.transactions())

	// a late success for a failed attempt is ignored
	late, err := svc.Reconcile(f.ctx, payment.Reference, "PAID")
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaymentStatusFailed, late.Status)
	assert.Empty(t, f.transactions())
}

func TestReconcile_Errors(t *testing.T) {
	f := newFixture(t)
	svc := f.paymentLinks(&fakeProvider{})

	_, err := svc.Reconcile(f.ctx, "missing", "PAID")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Reconcile(f.ctx, "missing", "REFUNDED")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReconcileSigned(t *testing.T) {
	f := newFixture(t)
	f.savePaymentConfig(true)
	customer := f.createCustomer("cliente@norte.test")
	inv := f.createInvoice(customer, models.InvoiceStatusDraft, day(2024, time.January, 20), "300")
	svc := f.paymentLinks(&fakeProvider{})

	payment, err := svc.CreateLink(f.ctx, f.actor(), inv.ID, false)
	require.NoError(t, err)
	body := []byte(`{"reference":"` + payment.Reference + `","status":"PAID"}`)

	_, err = svc.ReconcileSigned(f.ctx, payment.Reference, "PAID", body, payments.Sign("guessed", body))
	assert.ErrorIs(t, err, ErrInvalidSignature)
	_, err = svc.ReconcileSigned(f.ctx, payment.Reference, "PAID", body, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)
	_, err = svc.ReconcileSigned(f.ctx, "unknown", "PAID", body, payments.Sign("secret", body))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	assert.Equal(t, models.InvoiceStatusSent, f.reloadInvoice(inv.ID).Status)
	assert.Empty(t, f.transactions())

	reconciled, err := svc.ReconcileSigned(f.ctx, payment.Reference, "PAID", body, payments.Sign("secret", body))
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaymentStatusPaid, reconciled.Status)
	assert.Equal(t, models.InvoiceStatusPaid, f.reloadInvoice(inv.ID).Status)
	assert.Len(t, f.transactions(), 1)
}

func TestCreateLink_StoreFailureAfterProviderMarksRecordFailed(t *testing.T) {
	f := newFixture(t)
	f.savePaymentConfig(true)
	customer := f.createCustomer("cliente@norte.test")
	inv := f.createInvoice(customer, models.InvoiceStatusDraft, day(2024, time.January, 20), "100")

	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:fail_invoice_update", func(db *gorm.DB) {
		if db.Statement.Table == "invoices" {
			_ = db.AddError(errors.New("disk full"))
		}
	}))

	payment, err := f.paymentLinks(&fakeProvider{}).CreateLink(f.ctx, f.actor(), inv.ID, false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPaymentProvider)
	require.NotNil(t, payment)

	stored, err := f.repos.InvoicePayment.FindByReference(f.ctx, payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaymentStatusFailed, stored.Status)
	assert.Equal(t, "lnk_"+payment.Reference, stored.LinkID)
	assert.Equal(t, "https://pay.example/"+payment.Reference, stored.LinkURL)
	require.NotNil(t, stored.FailureReason)
	assert.Contains(t, *stored.FailureReason, "disk full")
	assert.Equal(t, models.InvoiceStatusDraft, f.reloadInvoice(inv.ID).Status)
}
