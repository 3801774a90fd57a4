package repository

import (
	"context"

	"github.com/sjperalta/fintera-ops/internal/models"
	"gorm.io/gorm"
)

// InvoicePaymentRepository defines the interface for payment-link record data access
type InvoicePaymentRepository interface {
	Create(ctx context.Context, payment *models.InvoicePayment) error
	Update(ctx context.Context, payment *models.InvoicePayment) error
	FindPendingByInvoice(ctx context.Context, invoiceID uint) (*models.InvoicePayment, error)
	FindByReference(ctx context.Context, reference string) (*models.InvoicePayment, error)
}

type invoicePaymentRepository struct {
	db *gorm.DB
}

// NewInvoicePaymentRepository creates a new invoice payment repository
func NewInvoicePaymentRepository(db *gorm.DB) InvoicePaymentRepository {
	return &invoicePaymentRepository{db: db}
}

func (r *invoicePaymentRepository) Create(ctx context.Context, payment *models.InvoicePayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *invoicePaymentRepository) Update(ctx context.Context, payment *models.InvoicePayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// FindPendingByInvoice returns the newest pending record that already carries a link
func (r *invoicePaymentRepository) FindPendingByInvoice(ctx context.Context, invoiceID uint) (*models.InvoicePayment, error) {
	var payment models.InvoicePayment
	err := r.db.WithContext(ctx).
		Where("invoice_id = ? AND status = ? AND link_url <> ''", invoiceID, models.InvoicePaymentStatusPending).
		Order("id DESC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *invoicePaymentRepository) FindByReference(ctx context.Context, reference string) (*models.InvoicePayment, error) {
	var payment models.InvoicePayment
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}
