package models

import (
	"time"
)

// AuditLog represents an audit entry for an explicit finance operation
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"not null;index" json:"tenant_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Action    string    `gorm:"size:50;not null" json:"action"` // CREATE, UPDATE, DELETE, PAY, DEACTIVATE
	Entity    string    `gorm:"size:50;not null" json:"entity"` // Payroll, Invoice, RecurringTransaction, etc.
	EntityID  uint      `json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AllModels lists every table owned by this service, in migration order
func AllModels() []interface{} {
	return []interface{}{
		&Tenant{},
		&PaymentProviderConfig{},
		&Customer{},
		&User{},
		&RecurringTransaction{},
		&Invoice{},
		&InvoiceItem{},
		&InvoicePayment{},
		&InvoiceReminder{},
		&Payroll{},
		&EmployeeAdvance{},
		&Transaction{},
		&Notification{},
		&AuditLog{},
	}
}
