package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a ledger entry. Amount and category are fixed at creation;
// only status and date change afterwards.
type Transaction struct {
	ID                     uint            `gorm:"primaryKey" json:"id"`
	TenantID               uint            `gorm:"not null;index" json:"tenant_id"`
	Type                   string          `gorm:"not null;index" json:"type"`
	Category               string          `gorm:"not null;index" json:"category"`
	Amount                 decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Description            string          `json:"description"`
	Date                   time.Time       `gorm:"not null;index" json:"date"`
	Status                 string          `gorm:"not null;index" json:"status"`
	InvoiceID              *uint           `gorm:"index" json:"invoice_id,omitempty"`
	PayrollID              *uint           `gorm:"index" json:"payroll_id,omitempty"`
	CustomerID             *uint           `gorm:"index" json:"customer_id,omitempty"`
	RecurringTransactionID *uint           `gorm:"index" json:"recurring_transaction_id,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}

// Flow direction constants
const (
	TransactionTypeIncome  = "INCOME"
	TransactionTypeExpense = "EXPENSE"
)

// Transaction status constants
const (
	TransactionStatusPending = "PENDING"
	TransactionStatusPaid    = "PAID"
)

// CategorySalary is the category used for payroll expenses
const CategorySalary = "Salary"

// CategoryInvoicePayment is the category used for reconciled invoice payments
const CategoryInvoicePayment = "Invoice Payment"

// ValidTransactionType reports whether t is INCOME or EXPENSE
func ValidTransactionType(t string) bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}
