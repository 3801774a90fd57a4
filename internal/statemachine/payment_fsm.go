package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/fintera-ops/internal/models"
)

// PayrollFSM wraps a payroll with its state machine
type PayrollFSM struct {
	payroll *models.Payroll
	fsm     *fsm.FSM
}

// NewPayrollFSM creates a new payroll state machine
func NewPayrollFSM(payroll *models.Payroll) *PayrollFSM {
	pfsm := &PayrollFSM{
		payroll: payroll,
	}

	pfsm.fsm = fsm.NewFSM(
		payroll.Status,
		fsm.Events{
			// pending → paid
			{Name: "pay", Src: []string{models.PayrollStatusPending}, Dst: models.PayrollStatusPaid},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Pay transitions payroll to paid state
func (p *PayrollFSM) Pay(ctx context.Context) error {
	if p.payroll.IsPaid() {
		return fmt.Errorf("payroll cannot be paid in current state: %s", p.payroll.Status)
	}

	if err := p.fsm.Event(ctx, "pay"); err != nil {
		return fmt.Errorf("failed to pay payroll: %w", err)
	}

	p.payroll.Status = p.fsm.Current()
	return nil
}

// Current returns the current state
func (p *PayrollFSM) Current() string {
	return p.fsm.Current()
}

// Can checks if a transition is possible
func (p *PayrollFSM) Can(event string) bool {
	return p.fsm.Can(event)
}

// InvoicePaymentFSM tracks a payment-link record through the gateway
type InvoicePaymentFSM struct {
	payment *models.InvoicePayment
	fsm     *fsm.FSM
}

// NewInvoicePaymentFSM creates a new invoice payment state machine
func NewInvoicePaymentFSM(payment *models.InvoicePayment) *InvoicePaymentFSM {
	pfsm := &InvoicePaymentFSM{
		payment: payment,
	}

	pfsm.fsm = fsm.NewFSM(
		payment.Status,
		fsm.Events{
			// pending → paid (gateway confirmed)
			{Name: "confirm", Src: []string{models.InvoicePaymentStatusPending}, Dst: models.InvoicePaymentStatusPaid},

			// pending → failed (gateway rejected or unreachable)
			{Name: "fail", Src: []string{models.InvoicePaymentStatusPending}, Dst: models.InvoicePaymentStatusFailed},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Confirm transitions the record to paid
func (p *InvoicePaymentFSM) Confirm(ctx context.Context) error {
	if err := p.fsm.Event(ctx, "confirm"); err != nil {
		return fmt.Errorf("failed to confirm payment: %w", err)
	}
	p.payment.Status = p.fsm.Current()
	return nil
}

// Fail transitions the record to failed and stores the reason
func (p *InvoicePaymentFSM) Fail(ctx context.Context, reason string) error {
	if err := p.fsm.Event(ctx, "fail"); err != nil {
		return fmt.Errorf("failed to mark payment as failed: %w", err)
	}
	p.payment.Status = p.fsm.Current()
	if reason != "" {
		p.payment.FailureReason = &reason
	}
	return nil
}
