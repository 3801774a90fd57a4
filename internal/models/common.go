package models

import (
	"time"
)

// Notification represents an in-app notification for a tenant user
type Notification struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TenantID         uint       `gorm:"not null;index" json:"tenant_id"`
	UserID           uint       `gorm:"not null;index" json:"user_id"`
	Title            string     `gorm:"not null" json:"title"`
	Message          string     `gorm:"not null" json:"message"`
	NotificationType *string    `gorm:"index" json:"notification_type"`
	ReferenceID      *uint      `json:"reference_id,omitempty"`
	ReferenceType    *string    `json:"reference_type,omitempty"`
	ReadAt           *time.Time `gorm:"index" json:"read_at"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// Notification type constants
const (
	NotificationTypeInvoiceReminder = "invoice_reminder"
	NotificationTypeInvoiceOverdue  = "invoice_overdue"
	NotificationTypeInvoicePaid     = "invoice_paid"
	NotificationTypePayrollCreated  = "payroll_created"
	NotificationTypeSystemError     = "system_error"
)

// Reference type constants
const (
	ReferenceTypeInvoice = "invoice"
	ReferenceTypePayroll = "payroll"
)

// IsRead returns true if notification has been read
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarkAsRead marks the notification as read
func (n *Notification) MarkAsRead() {
	now := time.Now()
	n.ReadAt = &now
}
