package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/fintera-ops/internal/models"
)

// Invoice events
const (
	InvoiceEventSend        = "send"
	InvoiceEventMarkOverdue = "mark_overdue"
	InvoiceEventPay         = "pay"
	InvoiceEventCancel      = "cancel"
)

// InvoiceFSM wraps an invoice with its state machine
type InvoiceFSM struct {
	invoice *models.Invoice
	fsm     *fsm.FSM
}

// NewInvoiceFSM creates a new invoice state machine. PAID and CANCELLED have no outgoing events.
func NewInvoiceFSM(invoice *models.Invoice) *InvoiceFSM {
	ifsm := &InvoiceFSM{
		invoice: invoice,
	}

	ifsm.fsm = fsm.NewFSM(
		invoice.Status,
		fsm.Events{
			// draft → sent (payment link issued or sent manually)
			{Name: InvoiceEventSend, Src: []string{models.InvoiceStatusDraft}, Dst: models.InvoiceStatusSent},

			// draft/sent → overdue (daily scan)
			{Name: InvoiceEventMarkOverdue, Src: []string{models.InvoiceStatusDraft, models.InvoiceStatusSent}, Dst: models.InvoiceStatusOverdue},

			// draft/sent/overdue → paid
			{Name: InvoiceEventPay, Src: []string{models.InvoiceStatusDraft, models.InvoiceStatusSent, models.InvoiceStatusOverdue}, Dst: models.InvoiceStatusPaid},

			// draft/sent/overdue → cancelled
			{Name: InvoiceEventCancel, Src: []string{models.InvoiceStatusDraft, models.InvoiceStatusSent, models.InvoiceStatusOverdue}, Dst: models.InvoiceStatusCancelled},
		},
		fsm.Callbacks{},
	)

	return ifsm
}

// Send transitions a draft invoice to sent
func (i *InvoiceFSM) Send(ctx context.Context) error {
	return i.fire(ctx, InvoiceEventSend)
}

// MarkOverdue transitions a draft or sent invoice to overdue
func (i *InvoiceFSM) MarkOverdue(ctx context.Context) error {
	if !i.invoice.MayMarkOverdue() {
		return fmt.Errorf("invoice cannot be marked overdue in current state: %s", i.invoice.Status)
	}
	return i.fire(ctx, InvoiceEventMarkOverdue)
}

// Pay transitions an open invoice to paid
func (i *InvoiceFSM) Pay(ctx context.Context) error {
	if !i.invoice.MayPay() {
		return fmt.Errorf("invoice cannot be paid in current state: %s", i.invoice.Status)
	}
	return i.fire(ctx, InvoiceEventPay)
}

// Cancel transitions an open invoice to cancelled
func (i *InvoiceFSM) Cancel(ctx context.Context) error {
	return i.fire(ctx, InvoiceEventCancel)
}

func (i *InvoiceFSM) fire(ctx context.Context, event string) error {
	if err := i.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("failed to %s invoice: %w", event, err)
	}
	i.invoice.Status = i.fsm.Current()
	return nil
}

// Current returns the current state
func (i *InvoiceFSM) Current() string {
	return i.fsm.Current()
}

// Can checks if a transition is possible
func (i *InvoiceFSM) Can(event string) bool {
	return i.fsm.Can(event)
}
