package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/internal/sms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsReminderOffset(t *testing.T) {
	for _, d := range []int{7, 3, 1, 0, -1, -7} {
		assert.True(t, IsReminderOffset(d), "offset %d", d)
	}
	for _, d := range []int{8, 5, 2, -2, -6, -8} {
		assert.False(t, IsReminderOffset(d), "offset %d", d)
	}
}

func TestTickInvoiceLifecycle_OverdueBoundary(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	dueToday := f.createInvoice(customer, models.InvoiceStatusSent, day(2024, time.January, 10), "100")
	dueYesterday := f.createInvoice(customer, models.InvoiceStatusSent, day(2024, time.January, 9), "100")
	draftPastDue := f.createInvoice(customer, models.InvoiceStatusDraft, day(2024, time.January, 2), "100")

	svc := f.monitor(clockOn(2024, time.January, 10), sms.NewMemoryDispatcher())
	summary, err := svc.TickInvoiceLifecycle(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Scanned)
	assert.Equal(t, 2, summary.MarkedOverdue)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, models.InvoiceStatusSent, f.reloadInvoice(dueToday.ID).Status)
	assert.Equal(t, models.InvoiceStatusOverdue, f.reloadInvoice(dueYesterday.ID).Status)
	assert.Equal(t, models.InvoiceStatusOverdue, f.reloadInvoice(draftPastDue.ID).Status)
}

func TestTickInvoiceLifecycle_TerminalInvoicesUntouched(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	paid := f.createInvoice(customer, models.InvoiceStatusPaid, day(2024, time.January, 3), "100")
	cancelled := f.createInvoice(customer, models.InvoiceStatusCancelled, day(2024, time.January, 9), "100")

	dispatcher := sms.NewMemoryDispatcher()
	summary, err := f.monitor(clockOn(2024, time.January, 10), dispatcher).TickInvoiceLifecycle(f.ctx)
	require.NoError(t, err)

	assert.Zero(t, summary.Scanned)
	assert.Equal(t, models.InvoiceStatusPaid, f.reloadInvoice(paid.ID).Status)
	assert.Equal(t, models.InvoiceStatusCancelled, f.reloadInvoice(cancelled.ID).Status)
	assert.Empty(t, dispatcher.Events())
	assert.Empty(t, f.notifications())
}

func TestTickInvoiceLifecycle_RemindersReachAdminsAndClients(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	client := f.createUser(f.tenant.ID, "portal@cliente.test", models.RoleClient, "0", &customer.ID)
	f.createEmployee("empleado@norte.test", "1000")
	inv := f.createInvoice(customer, models.InvoiceStatusSent, day(2024, time.January, 17), "250")

	dispatcher := sms.NewMemoryDispatcher()
	summary, err := f.monitor(clockOn(2024, time.January, 10), dispatcher).TickInvoiceLifecycle(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.RemindersSent)
	assert.Equal(t, 2, summary.NotificationsOK)

	ns := f.notifications()
	require.Len(t, ns, 2)
	recipients := []uint{ns[0].UserID, ns[1].UserID}
	assert.ElementsMatch(t, []uint{f.admin.ID, client.ID}, recipients)
	require.NotNil(t, ns[0].NotificationType)
	assert.Equal(t, models.NotificationTypeInvoiceReminder, *ns[0].NotificationType)
	require.NotNil(t, ns[0].ReferenceID)
	assert.Equal(t, inv.ID, *ns[0].ReferenceID)
	assert.Contains(t, ns[0].Message, "vence en 7 días")

	events := dispatcher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, sms.EventInvoiceReminder, events[0].Kind)
	assert.Equal(t, f.tenant.ID, events[0].TenantID)
	assert.Equal(t, 7, events[0].Data["days"])
	assert.Equal(t, "250.00", events[0].Data["total"])
	assert.Equal(t, "2024-01-17", events[0].Data["due_date"])
	assert.Equal(t, customer.Phone, events[0].Data["phone"])
}

func TestTickInvoiceLifecycle_RemindersAreNotRepeatedWithinDay(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	f.createInvoice(customer, models.InvoiceStatusSent, day(2024, time.January, 13), "80")

	dispatcher := sms.NewMemoryDispatcher()
	svc := f.monitor(clockOn(2024, time.January, 10), dispatcher)

	first, err := svc.TickInvoiceLifecycle(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.RemindersSent)

	second, err := svc.TickInvoiceLifecycle(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, second.RemindersSent)

	assert.Len(t, dispatcher.Events(), 1)
	assert.Len(t, f.notifications(), 1)
}

// staleReminders reports every marker as missing, as a scan that read before a concurrent one committed
type staleReminders struct {
	repository.InvoiceReminderRepository
}

func (staleReminders) Exists(ctx context.Context, invoiceID uint, dueDate string, daysBeforeDue int) (bool, error) {
	return false, nil
}

func TestTickInvoiceLifecycle_MarkerIsClaimedWithNotifications(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	f.createInvoice(customer, models.InvoiceStatusSent, day(2024, time.January, 13), "80")

	dispatcher := sms.NewMemoryDispatcher()
	first, err := f.monitor(clockOn(2024, time.January, 10), dispatcher).TickInvoiceLifecycle(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.RemindersSent)

	repos := *f.repos
	repos.InvoiceReminder = staleReminders{f.repos.InvoiceReminder}
	late := NewInvoiceMonitorService(&repos, f.notify, dispatcher, clockOn(2024, time.January, 10))

	second, err := late.TickInvoiceLifecycle(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, second.RemindersSent)
	assert.Zero(t, second.Failed)
	assert.Len(t, f.notifications(), 1)
	assert.Len(t, dispatcher.Events(), 1)
}

func TestTickInvoiceLifecycle_NoReminderOffOffset(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	f.createInvoice(customer, models.InvoiceStatusSent, day(2024, time.January, 15), "80")
	f.createInvoice(customer, models.InvoiceStatusSent, day(2024, time.January, 8), "80")

	dispatcher := sms.NewMemoryDispatcher()
	summary, err := f.monitor(clockOn(2024, time.January, 10), dispatcher).TickInvoiceLifecycle(f.ctx)
	require.NoError(t, err)

	// five days out and two days late are not reminder offsets
	assert.Zero(t, summary.RemindersSent)
	assert.Equal(t, 1, summary.MarkedOverdue)
	assert.Empty(t, dispatcher.Events())
}

func TestTickInvoiceLifecycle_OverdueReminderKind(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	inv := f.createInvoice(customer, models.InvoiceStatusSent, day(2024, time.January, 3), "80")

	dispatcher := sms.NewMemoryDispatcher()
	summary, err := f.monitor(clockOn(2024, time.January, 10), dispatcher).TickInvoiceLifecycle(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.MarkedOverdue)
	assert.Equal(t, 1, summary.RemindersSent)
	assert.Equal(t, models.InvoiceStatusOverdue, f.reloadInvoice(inv.ID).Status)

	events := dispatcher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, sms.EventInvoiceOverdue, events[0].Kind)
	assert.Equal(t, -7, events[0].Data["days"])

	ns := f.notifications()
	require.Len(t, ns, 1)
	assert.Equal(t, models.NotificationTypeInvoiceOverdue, *ns[0].NotificationType)
	assert.Contains(t, ns[0].Message, "7 días de atraso")
}

func TestTickInvoiceLifecycle_SMSFailureDoesNotBlockReminder(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	f.createInvoice(customer, models.InvoiceStatusSent, day(2024, time.January, 11), "80")

	dispatcher := sms.NewMemoryDispatcher()
	dispatcher.Err = errors.New("gateway down")
	svc := f.monitor(clockOn(2024, time.January, 10), dispatcher)

	summary, err := svc.TickInvoiceLifecycle(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RemindersSent)
	assert.Zero(t, summary.Failed)
	assert.Len(t, f.notifications(), 1)

	// the marker was stored, so the retry on the same day stays quiet
	again, err := svc.TickInvoiceLifecycle(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, again.RemindersSent)
}

func TestMarkOverdue_StaleInvoiceIsReloaded(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer("cliente@norte.test")
	inv := f.createInvoice(customer, models.InvoiceStatusSent, day(2024, time.January, 9), "80")

	// the scan loaded the invoice as SENT, then a payment settled it
	stale := f.reloadInvoice(inv.ID)
	ok, err := f.repos.Invoice.TransitionStatus(f.ctx, inv.ID, []string{models.InvoiceStatusSent}, models.InvoiceStatusPaid)
	require.NoError(t, err)
	require.True(t, ok)

	dispatcher := sms.NewMemoryDispatcher()
	svc := f.monitor(clockOn(2024, time.January, 10), dispatcher)
	var summary InvoiceTickSummary
	require.NoError(t, svc.processInvoice(f.ctx, stale, clockOn(2024, time.January, 10).Today(), &summary))

	assert.Zero(t, summary.MarkedOverdue)
	assert.Zero(t, summary.RemindersSent)
	assert.Equal(t, models.InvoiceStatusPaid, stale.Status)
	assert.Equal(t, models.InvoiceStatusPaid, f.reloadInvoice(inv.ID).Status)
	assert.Empty(t, dispatcher.Events())
}
