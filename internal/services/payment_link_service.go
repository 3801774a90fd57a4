package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sjperalta/fintera-ops/internal/jobs"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/payments"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/internal/statemachine"
	"github.com/sjperalta/fintera-ops/pkg/logger"
	"gorm.io/gorm"
)

// PaymentLinkService issues hosted payment links for invoices and reconciles gateway callbacks
type PaymentLinkService struct {
	repos           *repository.Repositories
	provider        payments.Provider
	email           *EmailService
	notifications   *NotificationService
	audit           *AuditService
	worker          *jobs.Worker
	clock           Clock
	callbackURL     string
	defaultCurrency string
}

func NewPaymentLinkService(
	repos *repository.Repositories,
	provider payments.Provider,
	email *EmailService,
	notifications *NotificationService,
	audit *AuditService,
	worker *jobs.Worker,
	clock Clock,
	callbackURL, defaultCurrency string,
) *PaymentLinkService {
	return &PaymentLinkService{
		repos:           repos,
		provider:        provider,
		email:           email,
		notifications:   notifications,
		audit:           audit,
		worker:          worker,
		clock:           clock,
		callbackURL:     callbackURL,
		defaultCurrency: defaultCurrency,
	}
}

// CreateLink returns a payment link for an invoice. With reuseExisting a pending link
// already issued for the invoice is returned instead of asking the gateway again.
// A gateway failure leaves a FAILED record behind and the invoice status untouched.
func (s *PaymentLinkService) CreateLink(ctx context.Context, actor Actor, invoiceID uint, reuseExisting bool) (*models.InvoicePayment, error) {
	inv, err := s.repos.Invoice.FindByID(ctx, actor.TenantID, invoiceID)
	if err != nil {
		return nil, mapStoreError(err, "invoice")
	}
	if inv.IsTerminal() {
		return nil, fmt.Errorf("%w: invoice is %s", ErrInvalidState, inv.Status)
	}
	if strings.TrimSpace(inv.Customer.Email) == "" {
		return nil, ErrMissingCustomerEmail
	}

	cfg, err := s.repos.Tenant.FindPaymentConfig(ctx, actor.TenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentConfigInactive
		}
		return nil, err
	}
	if !cfg.Active {
		return nil, ErrPaymentConfigInactive
	}

	if reuseExisting {
		existing, err := s.repos.InvoicePayment.FindPendingByInvoice(ctx, inv.ID)
		if err == nil && existing.HasLink() {
			return existing, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	currency := cfg.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	payment := &models.InvoicePayment{
		TenantID:  inv.TenantID,
		InvoiceID: inv.ID,
		Reference: uuid.NewString(),
		Provider:  cfg.Provider,
		Amount:    inv.Total,
		Currency:  currency,
		Status:    models.InvoicePaymentStatusPending,
	}
	if err := s.repos.InvoicePayment.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	result, err := s.provider.CreateLink(ctx, payments.MerchantConfig{
		Provider:   cfg.Provider,
		MerchantID: cfg.MerchantID,
		APIKey:     cfg.APIKey,
	}, payments.LinkRequest{
		Reference:     payment.Reference,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		CustomerEmail: inv.Customer.Email,
		Description:   "Factura " + invoiceLabel(inv),
		CallbackURL:   s.callbackURL,
	})
	if err != nil {
		s.recordFailure(ctx, payment, err)
		return payment, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	payment.LinkID = result.LinkID
	payment.LinkURL = result.LinkURL
	err = s.repos.WithTransaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.InvoicePayment.Update(ctx, payment); err != nil {
			return err
		}
		if inv.MaySend() {
			if err := statemachine.NewInvoiceFSM(inv).Send(ctx); err != nil {
				return err
			}
			if _, err := tx.Invoice.TransitionStatus(ctx, inv.ID, []string{models.InvoiceStatusDraft}, models.InvoiceStatusSent); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// the gateway already issued the link; keep it on a FAILED record so it can be traced
		s.recordFailure(ctx, payment, fmt.Errorf("link %s issued but not stored: %w", result.LinkID, err))
		return payment, fmt.Errorf("failed to store payment link: %w", err)
	}

	s.audit.Logf(ctx, actor, AuditActionLink, "Invoice", inv.ID, "reference=%s amount=%s", payment.Reference, payment.Amount.StringFixed(2))

	if s.worker != nil && s.email != nil {
		invCopy, paymentCopy := *inv, *payment
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.email.SendPaymentLink(ctx, &invCopy, &paymentCopy)
		})
	}
	return payment, nil
}

func (s *PaymentLinkService) recordFailure(ctx context.Context, payment *models.InvoicePayment, cause error) {
	log := logger.WithTenant(payment.TenantID)
	log.Error("[Payments] Payment link creation failed", "invoice_id", payment.InvoiceID, "reference", payment.Reference, "error", cause)

	if err := statemachine.NewInvoicePaymentFSM(payment).Fail(ctx, cause.Error()); err != nil {
		log.Error("[Payments] Unexpected payment state", "reference", payment.Reference, "error", err)
		return
	}
	if err := s.repos.InvoicePayment.Update(ctx, payment); err != nil {
		log.Error("[Payments] Failed to mark payment record as failed", "reference", payment.Reference, "error", err)
	}
}

// ReconcileSigned authenticates a raw gateway callback before applying it. The body must be
// signed with the API key of the tenant that issued the referenced link. Unknown references
// fail the same way as bad signatures.
func (s *PaymentLinkService) ReconcileSigned(ctx context.Context, reference, status string, body []byte, signature string) (*models.InvoicePayment, error) {
	payment, err := s.repos.InvoicePayment.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSignature
		}
		return nil, err
	}
	cfg, err := s.repos.Tenant.FindPaymentConfig(ctx, payment.TenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSignature
		}
		return nil, err
	}
	if !payments.VerifySignature(cfg.APIKey, body, signature) {
		logger.WithTenant(payment.TenantID).Warn("[Payments] Rejected callback with invalid signature",
			"reference", reference)
		return nil, ErrInvalidSignature
	}
	return s.Reconcile(ctx, reference, status)
}

// Reconcile applies a gateway callback. A successful payment settles the invoice and books
// an INCOME transaction; a failure only marks the record. Records already PAID or FAILED are
// returned unchanged.
func (s *PaymentLinkService) Reconcile(ctx context.Context, reference, status string) (*models.InvoicePayment, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != payments.CallbackStatusPaid && status != payments.CallbackStatusFailed {
		return nil, validationError("estado de pago desconocido %q", status)
	}

	payment, err := s.repos.InvoicePayment.FindByReference(ctx, reference)
	if err != nil {
		return nil, mapStoreError(err, "payment")
	}
	if payment.Status != models.InvoicePaymentStatusPending {
		return payment, nil
	}

	if status == payments.CallbackStatusFailed {
		if err := statemachine.NewInvoicePaymentFSM(payment).Fail(ctx, "rejected by payment provider"); err != nil {
			return nil, err
		}
		if err := s.repos.InvoicePayment.Update(ctx, payment); err != nil {
			return nil, err
		}
		logger.WithTenant(payment.TenantID).Warn("[Payments] Payment failed", "reference", reference, "invoice_id", payment.InvoiceID)
		return payment, nil
	}

	today := s.clock.Today()
	var inv *models.Invoice
	err = s.repos.WithTransaction(ctx, func(tx *repository.Repositories) error {
		if err := statemachine.NewInvoicePaymentFSM(payment).Confirm(ctx); err != nil {
			return err
		}
		payment.PaidAt = &today
		if err := tx.InvoicePayment.Update(ctx, payment); err != nil {
			return err
		}

		inv, err = tx.Invoice.FindByID(ctx, payment.TenantID, payment.InvoiceID)
		if err != nil {
			return err
		}
		if !inv.MayPay() {
			// Money arrived for a closed invoice: keep the record PAID, leave the invoice alone.
			logger.WithTenant(payment.TenantID).Warn("[Payments] Payment received for closed invoice",
				"invoice_id", inv.ID, "status", inv.Status, "reference", reference)
			return nil
		}
		from := inv.Status
		if err := statemachine.NewInvoiceFSM(inv).Pay(ctx); err != nil {
			return err
		}
		if _, err := tx.Invoice.TransitionStatus(ctx, inv.ID, []string{from}, models.InvoiceStatusPaid); err != nil {
			return err
		}

		invoiceID, customerID := inv.ID, inv.CustomerID
		return tx.Transaction.Create(ctx, &models.Transaction{
			TenantID:    inv.TenantID,
			Type:        models.TransactionTypeIncome,
			Category:    models.CategoryInvoicePayment,
			Amount:      payment.Amount,
			Description: "Pago factura " + invoiceLabel(inv),
			Date:        today,
			Status:      models.TransactionStatusPaid,
			InvoiceID:   &invoiceID,
			CustomerID:  &customerID,
		})
	})
	if err != nil {
		payment.Status = models.InvoicePaymentStatusPending
		payment.PaidAt = nil
		return nil, mapStoreError(err, "invoice")
	}

	if inv != nil && inv.Status == models.InvoiceStatusPaid {
		s.notifications.NotifyAdmins(ctx, inv.TenantID, NotificationInput{
			Title:         "Factura pagada",
			Message:       fmt.Sprintf("La factura %s fue pagada por %s.", invoiceLabel(inv), payment.Amount.StringFixed(2)),
			Type:          models.NotificationTypeInvoicePaid,
			ReferenceType: models.ReferenceTypeInvoice,
			ReferenceID:   inv.ID,
		})
	}
	return payment, nil
}
