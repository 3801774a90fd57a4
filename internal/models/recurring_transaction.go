package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/calendar"
)

// RecurringTransaction is a template that periodically materializes a ledger transaction
type RecurringTransaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TenantID    uint            `gorm:"not null;index" json:"tenant_id"`
	Type        string          `gorm:"not null" json:"type"`
	Category    string          `gorm:"not null" json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Interval    string          `gorm:"not null" json:"interval"`
	NextDueDate time.Time       `gorm:"not null;index" json:"next_due_date"`
	Active      bool            `gorm:"not null;index" json:"active"`
	CustomerID  *uint           `gorm:"index" json:"customer_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for RecurringTransaction
func (RecurringTransaction) TableName() string {
	return "recurring_transactions"
}

// Interval constants
const (
	IntervalDaily   = calendar.Daily
	IntervalWeekly  = calendar.Weekly
	IntervalMonthly = calendar.Monthly
	IntervalYearly  = calendar.Yearly
)

// IsDue reports whether the obligation's next-due calendar date is today or earlier.
// NextDueDate is stored as a UTC date, so its Y/M/D is read in UTC while today keeps
// its own location.
func (r *RecurringTransaction) IsDue(today time.Time) bool {
	return r.Active && calendar.DiffDays(r.NextDueDate.UTC(), today) <= 0
}

// TransactionDescription returns the description copied onto materialized transactions
func (r *RecurringTransaction) TransactionDescription() string {
	if r.Description != "" {
		return r.Description
	}
	return "Recurring: " + r.Category
}
