package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a billing document addressed to a customer
type Invoice struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	TenantID   uint            `gorm:"not null;index" json:"tenant_id"`
	CustomerID uint            `gorm:"not null;index" json:"customer_id"`
	Number     string          `gorm:"index" json:"number"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"subtotal"`
	TaxRate    decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	TaxAmount  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"tax_amount"`
	Total      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total"`
	IssueDate  time.Time       `gorm:"not null" json:"issue_date"`
	DueDate    time.Time       `gorm:"not null;index" json:"due_date"`
	Status     string          `gorm:"default:DRAFT;not null;index" json:"status"`
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	// Associations
	Customer Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// TableName specifies the table name for Invoice
func (Invoice) TableName() string {
	return "invoices"
}

// Invoice status constants
const (
	InvoiceStatusDraft     = "DRAFT"
	InvoiceStatusSent      = "SENT"
	InvoiceStatusOverdue   = "OVERDUE"
	InvoiceStatusPaid      = "PAID"
	InvoiceStatusCancelled = "CANCELLED"
)

// OpenInvoiceStatuses are the statuses the daily lifecycle scan looks at
var OpenInvoiceStatuses = []string{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue}

// IsTerminal returns true for PAID and CANCELLED invoices
func (i *Invoice) IsTerminal() bool {
	return i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled
}

// MayMarkOverdue returns true if the invoice can transition to OVERDUE
func (i *Invoice) MayMarkOverdue() bool {
	return i.Status == InvoiceStatusDraft || i.Status == InvoiceStatusSent
}

// MaySend returns true if the invoice can transition to SENT
func (i *Invoice) MaySend() bool {
	return i.Status == InvoiceStatusDraft
}

// MayPay returns true if the invoice can be settled
func (i *Invoice) MayPay() bool {
	return !i.IsTerminal()
}

// Recalculate derives subtotal, tax amount and total from the line items
func (i *Invoice) Recalculate() {
	subtotal := decimal.Zero
	for idx := range i.Items {
		item := &i.Items[idx]
		item.Total = item.Quantity.Mul(item.UnitPrice).Round(2)
		subtotal = subtotal.Add(item.Total)
	}
	i.Subtotal = subtotal
	i.TaxAmount = subtotal.Mul(i.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	i.Total = i.Subtotal.Add(i.TaxAmount)
}

// InvoiceItem is a single billed line
type InvoiceItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	InvoiceID   uint            `gorm:"not null;index" json:"invoice_id"`
	Description string          `gorm:"not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for InvoiceItem
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// InvoicePayment tracks one payment-link attempt against the external gateway
type InvoicePayment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TenantID      uint            `gorm:"not null;index" json:"tenant_id"`
	InvoiceID     uint            `gorm:"not null;index" json:"invoice_id"`
	Reference     string          `gorm:"not null;uniqueIndex" json:"reference"`
	Provider      string          `gorm:"not null" json:"provider"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	Status        string          `gorm:"not null;index" json:"status"`
	LinkID        string          `json:"link_id"`
	LinkURL       string          `json:"link_url"`
	FailureReason *string         `gorm:"type:text" json:"failure_reason,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for InvoicePayment
func (InvoicePayment) TableName() string {
	return "invoice_payments"
}

// Invoice payment status constants
const (
	InvoicePaymentStatusPending = "PENDING"
	InvoicePaymentStatusPaid    = "PAID"
	InvoicePaymentStatusFailed  = "FAILED"
)

// HasLink returns true for a pending record the customer can still use
func (p *InvoicePayment) HasLink() bool {
	return p.Status == InvoicePaymentStatusPending && p.LinkURL != ""
}

// InvoiceReminder marks that the reminder for one offset of one due date was already sent
type InvoiceReminder struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TenantID      uint      `gorm:"not null;index" json:"tenant_id"`
	InvoiceID     uint      `gorm:"not null;uniqueIndex:idx_invoice_reminder_offset" json:"invoice_id"`
	DueDate       string    `gorm:"size:10;not null;uniqueIndex:idx_invoice_reminder_offset" json:"due_date"`
	DaysBeforeDue int       `gorm:"not null;uniqueIndex:idx_invoice_reminder_offset" json:"days_before_due"`
	SentAt        time.Time `gorm:"not null" json:"sent_at"`
}

// TableName specifies the table name for InvoiceReminder
func (InvoiceReminder) TableName() string {
	return "invoice_reminders"
}
