package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sjperalta/fintera-ops/internal/calendar"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/internal/sms"
	"github.com/sjperalta/fintera-ops/internal/statemachine"
	"github.com/sjperalta/fintera-ops/pkg/logger"
)

// ReminderOffsets are the day distances to the due date on which reminders fire.
// Negative values are days past due.
var ReminderOffsets = []int{7, 3, 1, 0, -1, -7}

// IsReminderOffset reports whether diffDays is one of ReminderOffsets
func IsReminderOffset(diffDays int) bool {
	for _, o := range ReminderOffsets {
		if o == diffDays {
			return true
		}
	}
	return false
}

// InvoiceTickSummary reports what one lifecycle scan did
type InvoiceTickSummary struct {
	Scanned         int `json:"scanned"`
	MarkedOverdue   int `json:"marked_overdue"`
	RemindersSent   int `json:"reminders_sent"`
	NotificationsOK int `json:"notifications"`
	Failed          int `json:"failed"`
}

// InvoiceMonitorService runs the daily invoice scan
type InvoiceMonitorService struct {
	repos         *repository.Repositories
	notifications *NotificationService
	sms           sms.Dispatcher
	clock         Clock
}

func NewInvoiceMonitorService(repos *repository.Repositories, notifications *NotificationService, dispatcher sms.Dispatcher, clock Clock) *InvoiceMonitorService {
	return &InvoiceMonitorService{repos: repos, notifications: notifications, sms: dispatcher, clock: clock}
}

// TickInvoiceLifecycle scans open invoices, moves past-due ones to OVERDUE and sends
// the reminders due today. Running it twice on one day does not repeat reminders.
func (s *InvoiceMonitorService) TickInvoiceLifecycle(ctx context.Context) (InvoiceTickSummary, error) {
	var summary InvoiceTickSummary

	invoices, err := s.repos.Invoice.FindOpen(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load open invoices: %w", err)
	}
	summary.Scanned = len(invoices)
	today := s.clock.Today()

	for i := range invoices {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		inv := &invoices[i]
		if err := s.processInvoice(ctx, inv, today, &summary); err != nil {
			summary.Failed++
			logger.WithTenant(inv.TenantID).Error("[Invoices] Failed to process invoice",
				"invoice_id", inv.ID, "error", err)
		}
	}
	return summary, nil
}

// Tick adapts TickInvoiceLifecycle to the worker's job signature
func (s *InvoiceMonitorService) Tick(ctx context.Context) error {
	summary, err := s.TickInvoiceLifecycle(ctx)
	if err != nil {
		return err
	}
	logger.Info("[Invoices] Tick finished", "scanned", summary.Scanned, "overdue", summary.MarkedOverdue,
		"reminders", summary.RemindersSent, "failed", summary.Failed)
	return nil
}

func (s *InvoiceMonitorService) processInvoice(ctx context.Context, inv *models.Invoice, today time.Time, summary *InvoiceTickSummary) error {
	diffDays := calendar.DiffDays(inv.DueDate.UTC(), today)

	if diffDays < 0 && inv.MayMarkOverdue() {
		marked, err := s.markOverdue(ctx, inv)
		if err != nil {
			return err
		}
		if marked {
			summary.MarkedOverdue++
		}
	}

	if !IsReminderOffset(diffDays) || inv.IsTerminal() {
		return nil
	}

	sent, notified, err := s.sendReminder(ctx, inv, diffDays, today)
	if err != nil {
		return err
	}
	if sent {
		summary.RemindersSent++
		summary.NotificationsOK += notified
	}
	return nil
}

// markOverdue applies the transition with a conditional update so a payment or
// cancellation that landed after the scan loaded the invoice is never overwritten
func (s *InvoiceMonitorService) markOverdue(ctx context.Context, inv *models.Invoice) (bool, error) {
	from := inv.Status
	if err := statemachine.NewInvoiceFSM(inv).MarkOverdue(ctx); err != nil {
		return false, err
	}
	ok, err := s.repos.Invoice.TransitionStatus(ctx, inv.ID, []string{from}, models.InvoiceStatusOverdue)
	if err != nil {
		inv.Status = from
		return false, fmt.Errorf("failed to mark invoice overdue: %w", err)
	}
	if !ok {
		// Status moved underneath us; reload so reminders see the real state.
		fresh, err := s.repos.Invoice.FindByID(ctx, inv.TenantID, inv.ID)
		if err != nil {
			return false, mapStoreError(err, "invoice")
		}
		*inv = *fresh
		return false, nil
	}
	logger.WithTenant(inv.TenantID).Info("[Invoices] Invoice marked overdue", "invoice_id", inv.ID)
	return true, nil
}

func (s *InvoiceMonitorService) sendReminder(ctx context.Context, inv *models.Invoice, diffDays int, today time.Time) (bool, int, error) {
	dueKey := inv.DueDate.UTC().Format("2006-01-02")
	already, err := s.repos.InvoiceReminder.Exists(ctx, inv.ID, dueKey, diffDays)
	if err != nil {
		return false, 0, fmt.Errorf("failed to check reminder marker: %w", err)
	}
	if already {
		return false, 0, nil
	}

	recipients, err := s.reminderRecipients(ctx, inv)
	if err != nil {
		return false, 0, err
	}

	notifType := models.NotificationTypeInvoiceReminder
	eventKind := sms.EventInvoiceReminder
	if diffDays < 0 {
		notifType = models.NotificationTypeInvoiceOverdue
		eventKind = sms.EventInvoiceOverdue
	}

	marker := &models.InvoiceReminder{
		TenantID:      inv.TenantID,
		InvoiceID:     inv.ID,
		DueDate:       dueKey,
		DaysBeforeDue: diffDays,
		SentAt:        today,
	}

	// The marker is claimed first; a concurrent scan that lost the race rolls its notifications back.
	notified := 0
	err = s.repos.WithTransaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.InvoiceReminder.Create(ctx, marker); err != nil {
			return err
		}
		notified = s.notifications.WithRepositories(tx).NotifyUsers(ctx, inv.TenantID, recipients, NotificationInput{
			Title:         reminderTitle(diffDays),
			Message:       reminderMessage(inv, diffDays),
			Type:          notifType,
			ReferenceType: models.ReferenceTypeInvoice,
			ReferenceID:   inv.ID,
		})
		return nil
	})
	if repository.IsUniqueViolation(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to store reminder: %w", err)
	}

	if err := s.sms.TrySendEvent(ctx, inv.TenantID, eventKind, map[string]interface{}{
		"invoice_id":  inv.ID,
		"number":      inv.Number,
		"days":        diffDays,
		"total":       inv.Total.StringFixed(2),
		"due_date":    dueKey,
		"customer_id": inv.CustomerID,
		"phone":       inv.Customer.Phone,
	}); err != nil {
		logger.WithTenant(inv.TenantID).Warn("[Invoices] SMS dispatch failed", "invoice_id", inv.ID, "kind", eventKind, "error", err)
	}
	return true, notified, nil
}

// reminderRecipients returns the tenant's admins plus client users of the invoice customer
func (s *InvoiceMonitorService) reminderRecipients(ctx context.Context, inv *models.Invoice) ([]uint, error) {
	admins, err := s.repos.User.FindAdmins(ctx, inv.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load admins: %w", err)
	}
	clients, err := s.repos.User.FindClientsByCustomer(ctx, inv.TenantID, inv.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client users: %w", err)
	}

	ids := make([]uint, 0, len(admins)+len(clients))
	seen := make(map[uint]bool, cap(ids))
	for _, u := range append(admins, clients...) {
		if !seen[u.ID] {
			seen[u.ID] = true
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func reminderTitle(diffDays int) string {
	switch {
	case diffDays > 0:
		return "Recordatorio de factura"
	case diffDays == 0:
		return "Factura vence hoy"
	default:
		return "Factura vencida"
	}
}

func reminderMessage(inv *models.Invoice, diffDays int) string {
	label := invoiceLabel(inv)
	total := inv.Total.StringFixed(2)
	switch {
	case diffDays > 1:
		return fmt.Sprintf("La factura %s por %s vence en %d días.", label, total, diffDays)
	case diffDays == 1:
		return fmt.Sprintf("La factura %s por %s vence mañana.", label, total)
	case diffDays == 0:
		return fmt.Sprintf("La factura %s por %s vence hoy.", label, total)
	case diffDays == -1:
		return fmt.Sprintf("La factura %s por %s venció ayer.", label, total)
	default:
		return fmt.Sprintf("La factura %s por %s tiene %d días de atraso.", label, total, -diffDays)
	}
}

func invoiceLabel(inv *models.Invoice) string {
	if inv.Number != "" {
		return inv.Number
	}
	return fmt.Sprintf("#%d", inv.ID)
}
