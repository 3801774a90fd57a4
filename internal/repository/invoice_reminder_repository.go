package repository

import (
	"context"

	"github.com/sjperalta/fintera-ops/internal/models"
	"gorm.io/gorm"
)

// InvoiceReminderRepository tracks which reminder offsets were already sent
type InvoiceReminderRepository interface {
	Exists(ctx context.Context, invoiceID uint, dueDate string, daysBeforeDue int) (bool, error)
	Create(ctx context.Context, reminder *models.InvoiceReminder) error
}

type invoiceReminderRepository struct {
	db *gorm.DB
}

// NewInvoiceReminderRepository creates a new invoice reminder repository
func NewInvoiceReminderRepository(db *gorm.DB) InvoiceReminderRepository {
	return &invoiceReminderRepository{db: db}
}

func (r *invoiceReminderRepository) Exists(ctx context.Context, invoiceID uint, dueDate string, daysBeforeDue int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceReminder{}).
		Where("invoice_id = ? AND due_date = ? AND days_before_due = ?", invoiceID, dueDate, daysBeforeDue).
		Count(&count).Error
	return count > 0, err
}

func (r *invoiceReminderRepository) Create(ctx context.Context, reminder *models.InvoiceReminder) error {
	return r.db.WithContext(ctx).Create(reminder).Error
}
